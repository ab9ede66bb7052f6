package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"docmorph/internal/catalog"
	"docmorph/internal/domain"
)

var (
	convertTo          string
	convertOCR         bool
	convertCompression string
	convertQuality     int
	convertResolution  int
	convertPreserve    bool
	convertEncoding    string
)

var convertCmd = &cobra.Command{
	Use:   "convert [file]",
	Short: "Upload a file and convert it to another format",
	Long: `Uploads the given file to the conversion service, converts it to the
format given with --to, and prints the download link.

When the file has exactly one possible target format, --to may be
omitted.

Examples:
  docmorph convert report.docx --to pdf
  docmorph convert data.csv
  docmorph convert scan.png --to pdf --ocr`,
	Args: cobra.ExactArgs(1),
	RunE: runConvert,
}

func init() {
	convertCmd.Flags().StringVarP(&convertTo, "to", "t", "", "output format (e.g. pdf, docx, png)")
	convertCmd.Flags().BoolVar(&convertOCR, "ocr", false, "run OCR on scanned pages")
	convertCmd.Flags().StringVar(&convertCompression, "compression", "", "pdf compression level (none, low, medium, high)")
	convertCmd.Flags().IntVar(&convertQuality, "quality", 0, "image quality, 1-100")
	convertCmd.Flags().IntVar(&convertResolution, "resolution", 0, "image resolution in DPI")
	convertCmd.Flags().BoolVar(&convertPreserve, "preserve-formatting", true, "preserve document formatting")
	convertCmd.Flags().StringVar(&convertEncoding, "encoding", "", "text encoding for plain-text output")
	rootCmd.AddCommand(convertCmd)
}

func runConvert(cmd *cobra.Command, args []string) error {
	path := args[0]
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("cannot read %s: %w", path, err)
	}

	// Best-effort pre-validation against the limits the service
	// advertises; a service that cannot be reached fails later anyway.
	if remote, cfgErr := container.Backend.FetchConfig(cmd.Context()); cfgErr == nil {
		if remote.MaxFileSize > 0 && info.Size() > remote.MaxFileSize {
			return fmt.Errorf("%s is larger than the service limit of %d bytes", path, remote.MaxFileSize)
		}
		if len(remote.AllowedExtensions) > 0 && !extensionAllowed(catalog.ExtOf(path), remote.AllowedExtensions) {
			return fmt.Errorf("the service does not accept %q files", catalog.ExtOf(path))
		}
	}

	orch := container.Orchestrator
	orch.SetObserver(func(s domain.ConversionSession) {
		switch s.Phase {
		case domain.PhaseUploading, domain.PhaseConverting:
			cmd.Printf("\r%-11s %3d%%", s.Phase, s.Progress)
		case domain.PhaseSucceeded:
			cmd.Printf("\r%-11s %3d%%\n", "done", s.Progress)
		}
	})

	if err := orch.SelectFile(domain.FileInfo{
		Name:      filepath.Base(path),
		SizeBytes: info.Size(),
		Path:      path,
	}); err != nil {
		return err
	}

	target := convertTo
	if target == "" {
		targets := orch.Targets()
		picked, ok := catalog.AutoSelect(targets)
		if !ok {
			if hint, ok := orch.Suggestion(); ok {
				cmd.Printf("Hint: judging by the file name alone, %s could fit.\n", hint.Label)
			}
			cmd.Println("Pick an output format with --to. Available:")
			for _, t := range targets {
				cmd.Printf("  %-6s %s\n", t.Value, t.Label)
			}
			return fmt.Errorf("no output format selected")
		}
		target = picked.Value
		cmd.Printf("Only one conversion available, using %s\n", picked.Label)
	}

	options := domain.DefaultOptions()
	options.OCREnabled = convertOCR
	options.PreserveFormatting = convertPreserve
	if convertCompression != "" {
		options.Compression = domain.CompressionLevel(convertCompression)
	}
	if convertQuality > 0 {
		options.ImageQuality = convertQuality
	}
	if convertResolution > 0 {
		options.ImageResolution = convertResolution
	}
	if convertEncoding != "" {
		options.TextEncoding = convertEncoding
	}

	if err := orch.RequestConversion(cmd.Context(), target, options); err != nil {
		cmd.Println()
		return err
	}

	snapshot := orch.Snapshot()
	cmd.Printf("Converted %s to %s\n", filepath.Base(path), target)
	cmd.Printf("Download: %s\n", snapshot.ResultURL)
	if snapshot.SessionURL != "" {
		cmd.Printf("Session:  %s\n", snapshot.SessionURL)
	}
	return nil
}

func extensionAllowed(ext string, allowed []string) bool {
	for _, a := range allowed {
		if catalog.NormalizeExt(a) == ext {
			return true
		}
	}
	return false
}
