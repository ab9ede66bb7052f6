package domain

// MaxUploadBytes is the largest file the conversion service accepts.
const MaxUploadBytes int64 = 100 * 1024 * 1024

// Phase is the lifecycle state of a conversion session.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseFileSelected
	PhaseUploading
	PhaseConverting
	PhaseSucceeded
	PhaseFailed
)

// String returns a human-readable phase name.
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseFileSelected:
		return "file_selected"
	case PhaseUploading:
		return "uploading"
	case PhaseConverting:
		return "converting"
	case PhaseSucceeded:
		return "succeeded"
	case PhaseFailed:
		return "failed"
	}
	return "unknown"
}

// Terminal reports whether the phase ends a conversion attempt.
func (p Phase) Terminal() bool {
	return p == PhaseSucceeded || p == PhaseFailed
}

// FileInfo describes the file selected for conversion.
type FileInfo struct {
	Name      string
	SizeBytes int64
	MIMEHint  string
	Path      string
}

// CompressionLevel controls output compression for formats that support it.
type CompressionLevel string

const (
	CompressionNone   CompressionLevel = "none"
	CompressionLow    CompressionLevel = "low"
	CompressionMedium CompressionLevel = "medium"
	CompressionHigh   CompressionLevel = "high"
)

// AdvancedOptions are the tunable conversion parameters sent to the service.
type AdvancedOptions struct {
	OCREnabled         bool             `json:"ocr"`
	Compression        CompressionLevel `json:"compression"`
	ImageQuality       int              `json:"imageQuality"`
	ImageResolution    int              `json:"imageResolution"`
	PreserveFormatting bool             `json:"preserveFormatting"`
	TextEncoding       string           `json:"textEncoding"`
}

// DefaultOptions returns the options applied when the user sets nothing.
func DefaultOptions() AdvancedOptions {
	return AdvancedOptions{
		Compression:        CompressionMedium,
		ImageQuality:       90,
		ImageResolution:    150,
		PreserveFormatting: true,
		TextEncoding:       "utf-8",
	}
}

// ConversionSession is a snapshot of one conversion's state. At most one
// session is active per orchestrator; RemoteFileID is only set once the
// upload phase has completed, ResultURL only on success.
type ConversionSession struct {
	SessionID    string
	SelectedFile *FileInfo
	OutputFormat string
	Options      AdvancedOptions
	Phase        Phase
	Progress     int
	RemoteFileID string
	ResultURL    string
	SessionURL   string
	LastError    error
}
