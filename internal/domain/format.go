package domain

// FormatCategory classifies a file extension for catalog rules.
type FormatCategory string

const (
	CategoryDocument     FormatCategory = "document"
	CategoryImage        FormatCategory = "image"
	CategorySpreadsheet  FormatCategory = "spreadsheet"
	CategoryPresentation FormatCategory = "presentation"
	CategoryText         FormatCategory = "text"
	CategoryWeb          FormatCategory = "web"
	CategoryData         FormatCategory = "data"
	CategoryUnknown      FormatCategory = "unknown"
)

// FormatTarget is one selectable output format.
type FormatTarget struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// OptionGroup names a block of advanced options shown for a conversion pair.
type OptionGroup string

const (
	OptionGroupImageQuality    OptionGroup = "imageQuality"
	OptionGroupImageResolution OptionGroup = "imageResolution"
	OptionGroupPDF             OptionGroup = "pdfOptions"
	OptionGroupText            OptionGroup = "textOptions"
)
