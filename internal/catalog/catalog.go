// Package catalog maps input file formats to the output formats the
// conversion service can produce, and decides which advanced options a
// given conversion pair unlocks. All functions are pure lookups.
package catalog

import (
	"path/filepath"
	"sort"
	"strings"

	"docmorph/internal/domain"
)

// categories classifies every extension the service accepts.
var categories = map[string]domain.FormatCategory{
	"pdf":  domain.CategoryDocument,
	"docx": domain.CategoryDocument,
	"doc":  domain.CategoryDocument,
	"xlsx": domain.CategorySpreadsheet,
	"xls":  domain.CategorySpreadsheet,
	"pptx": domain.CategoryPresentation,
	"ppt":  domain.CategoryPresentation,
	"jpg":  domain.CategoryImage,
	"jpeg": domain.CategoryImage,
	"png":  domain.CategoryImage,
	"webp": domain.CategoryImage,
	"bmp":  domain.CategoryImage,
	"tiff": domain.CategoryImage,
	"gif":  domain.CategoryImage,
	"svg":  domain.CategoryImage,
	"txt":  domain.CategoryText,
	"html": domain.CategoryWeb,
	"csv":  domain.CategoryData,
	"json": domain.CategoryData,
}

// conversionMatrix lists, per input extension, the output formats the
// service can produce, in the order they are offered. An extension never
// lists itself.
var conversionMatrix = map[string][]string{
	"pdf":  {"docx", "jpg", "jpeg", "png", "txt", "html"},
	"docx": {"pdf", "txt"},
	"doc":  {"pdf", "txt"},
	"xlsx": {"pdf", "csv", "html"},
	"xls":  {"pdf", "csv", "html"},
	"pptx": {"pdf", "png", "jpg"},
	"ppt":  {"pdf", "png", "jpg"},
	"jpg":  {"pdf", "png", "webp", "bmp", "tiff", "gif"},
	"jpeg": {"pdf", "png", "webp", "bmp", "tiff", "gif"},
	"png":  {"pdf", "jpg", "jpeg", "webp", "bmp", "tiff", "gif"},
	"webp": {"pdf", "jpg", "jpeg", "png", "bmp", "tiff", "gif"},
	"bmp":  {"pdf", "jpg", "jpeg", "png", "webp", "tiff", "gif"},
	"tiff": {"pdf", "jpg", "jpeg", "png", "webp", "bmp", "gif"},
	"gif":  {"pdf", "jpg", "jpeg", "png", "webp", "bmp", "tiff"},
	"svg":  {"png", "jpg", "pdf"},
	"txt":  {"pdf", "docx", "html"},
	"html": {"pdf", "txt"},
	"csv":  {"xlsx"},
}

var labels = map[string]string{
	"pdf":  "PDF Document",
	"docx": "Word Document (DOCX)",
	"doc":  "Word Document (DOC)",
	"xlsx": "Excel Spreadsheet (XLSX)",
	"xls":  "Excel Spreadsheet (XLS)",
	"pptx": "PowerPoint Presentation (PPTX)",
	"ppt":  "PowerPoint Presentation (PPT)",
	"jpg":  "JPEG Image",
	"jpeg": "JPEG Image",
	"png":  "PNG Image",
	"webp": "WebP Image",
	"bmp":  "Bitmap Image",
	"tiff": "TIFF Image",
	"gif":  "GIF Image",
	"svg":  "SVG Image",
	"txt":  "Plain Text",
	"html": "HTML Document",
	"csv":  "CSV File",
	"json": "JSON File",
}

// NormalizeExt lowers an extension and strips a leading dot.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
}

// ExtOf extracts the normalized extension of a file name.
func ExtOf(name string) string {
	return NormalizeExt(filepath.Ext(name))
}

// Category returns the format category of an extension.
func Category(ext string) domain.FormatCategory {
	if c, ok := categories[NormalizeExt(ext)]; ok {
		return c
	}
	return domain.CategoryUnknown
}

// ValidTargets returns the ordered output formats for an input extension.
// Unknown extensions yield an empty list, which callers must treat as an
// unsupported input.
func ValidTargets(inputExt string) []domain.FormatTarget {
	input := NormalizeExt(inputExt)
	values, ok := conversionMatrix[input]
	if !ok {
		return nil
	}
	targets := make([]domain.FormatTarget, 0, len(values))
	for _, v := range values {
		if v == input {
			continue
		}
		targets = append(targets, domain.FormatTarget{Value: v, Label: Label(v)})
	}
	return targets
}

// SupportedInputs returns every input extension with at least one valid
// target, sorted alphabetically.
func SupportedInputs() []string {
	inputs := make([]string, 0, len(conversionMatrix))
	for ext := range conversionMatrix {
		inputs = append(inputs, ext)
	}
	sort.Strings(inputs)
	return inputs
}

// Label returns the display label of a format, falling back to the
// upper-cased extension.
func Label(ext string) string {
	if l, ok := labels[NormalizeExt(ext)]; ok {
		return l
	}
	return strings.ToUpper(NormalizeExt(ext))
}

// CanConvert reports whether a conversion pair is in the matrix.
func CanConvert(inputExt, outputExt string) bool {
	output := NormalizeExt(outputExt)
	for _, t := range ValidTargets(inputExt) {
		if t.Value == output {
			return true
		}
	}
	return false
}

// AdvancedOptionVisibility returns the option groups a conversion pair
// unlocks. Image options surface when either side is an image format, pdf
// options when either side is pdf, text options when either side is txt.
func AdvancedOptionVisibility(inputExt, outputExt string) map[domain.OptionGroup]bool {
	input := NormalizeExt(inputExt)
	output := NormalizeExt(outputExt)
	visible := make(map[domain.OptionGroup]bool)
	if Category(input) == domain.CategoryImage || Category(output) == domain.CategoryImage {
		visible[domain.OptionGroupImageQuality] = true
		visible[domain.OptionGroupImageResolution] = true
	}
	if input == "pdf" || output == "pdf" {
		visible[domain.OptionGroupPDF] = true
	}
	if input == "txt" || output == "txt" {
		visible[domain.OptionGroupText] = true
	}
	return visible
}

// AutoSelect returns the single valid target when exactly one exists.
func AutoSelect(targets []domain.FormatTarget) (domain.FormatTarget, bool) {
	if len(targets) == 1 {
		return targets[0], true
	}
	return domain.FormatTarget{}, false
}

// SuggestTarget proposes an output format from file-name keywords. It is
// purely cosmetic: the hint carries no analysis of the file content and
// callers must never treat it as authoritative.
func SuggestTarget(fileName string) (domain.FormatTarget, bool) {
	name := strings.ToLower(fileName)
	input := ExtOf(fileName)

	var candidate string
	switch {
	case strings.Contains(name, "report"), strings.Contains(name, "invoice"):
		candidate = "pdf"
	case strings.Contains(name, "table"), strings.Contains(name, "sheet"):
		candidate = "xlsx"
	case strings.Contains(name, "photo"), strings.Contains(name, "scan"):
		candidate = "png"
	case strings.Contains(name, "letter"), strings.Contains(name, "notes"):
		candidate = "docx"
	default:
		return domain.FormatTarget{}, false
	}

	if candidate == input || !CanConvert(input, candidate) {
		return domain.FormatTarget{}, false
	}
	return domain.FormatTarget{Value: candidate, Label: Label(candidate)}, true
}
