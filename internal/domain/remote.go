package domain

// RemoteConfig is the startup configuration advertised by the conversion
// service. It carries the identity-provider connection parameters and the
// server-side upload limits.
type RemoteConfig struct {
	SupabaseURL       string   `json:"supabaseUrl"`
	SupabaseAnonKey   string   `json:"supabaseAnonKey"`
	MaxFileSize       int64    `json:"maxFileSize"`
	AllowedExtensions []string `json:"allowedExtensions"`
}

// UploadResult is the response of the upload phase.
type UploadResult struct {
	FileID    string `json:"fileId"`
	SessionID string `json:"sessionId"`
	Name      string `json:"name"`
	Size      int64  `json:"size"`
	Type      string `json:"type"`
}

// ConvertRequest is the body of the convert phase.
type ConvertRequest struct {
	FileID       string          `json:"fileId"`
	OutputFormat string          `json:"outputFormat"`
	SessionID    string          `json:"sessionId"`
	Options      AdvancedOptions `json:"options"`
}

// ConvertResult is the response of the convert phase. URL points at the
// converted artifact and may be returned relative to the service base.
type ConvertResult struct {
	FileID     string `json:"fileId"`
	Name       string `json:"name"`
	Size       int64  `json:"size"`
	Type       string `json:"type"`
	MIMEType   string `json:"mimeType"`
	URL        string `json:"url"`
	SessionURL string `json:"sessionUrl"`
}

// SessionFile is one artifact held server-side for a session.
type SessionFile struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Size      int64   `json:"size"`
	Type      string  `json:"type"`
	Timestamp float64 `json:"timestamp"`
	URL       string  `json:"url,omitempty"`
}

// SessionInfo is the server-side view of a session.
type SessionInfo struct {
	SessionID string        `json:"sessionId"`
	Files     []SessionFile `json:"files"`
	ExpiresAt float64       `json:"expiresAt"`
}
