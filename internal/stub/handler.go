// Package stub is an in-process fake of the conversion service's wire
// contract. It validates requests the way the real service does and hands
// back the uploaded bytes as the "converted" artifact, which is enough to
// exercise the client end to end in development and integration tests.
package stub

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"docmorph/internal/catalog"
	"docmorph/internal/domain"
)

const (
	maxFilesPerSession = 50
	fileExpiry         = 24 * time.Hour
)

var idPattern = regexp.MustCompile(`^[a-zA-Z0-9-_]+$`)

var mimeTypes = map[string]string{
	"pdf":  "application/pdf",
	"docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	"xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	"pptx": "application/vnd.openxmlformats-officedocument.presentationml.presentation",
	"csv":  "text/csv",
	"html": "text/html",
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"png":  "image/png",
	"webp": "image/webp",
	"bmp":  "image/bmp",
	"tiff": "image/tiff",
	"gif":  "image/gif",
	"txt":  "text/plain",
}

type stubFile struct {
	name          string
	content       []byte
	ext           string
	mimeType      string
	created       time.Time
	convertedFrom string
}

type stubSession struct {
	files       map[string]*stubFile
	timestamp   time.Time
	uploadCount int
}

// Handler implements the service endpoints over in-memory session state.
type Handler struct {
	logger      domain.Logger
	maxFileSize int64
	supabaseURL string
	supabaseKey string

	mu       sync.Mutex
	sessions map[string]*stubSession
}

// NewHandler creates a stub service handler.
func NewHandler(config domain.Config, logger domain.Logger) *Handler {
	return &Handler{
		logger:      logger,
		maxFileSize: config.GetMaxFileSize(),
		supabaseURL: config.GetSupabaseURL(),
		supabaseKey: config.GetSupabaseKey(),
		sessions:    make(map[string]*stubSession),
	}
}

// GetConfig advertises the client configuration.
func (h *Handler) GetConfig(w http.ResponseWriter, r *http.Request) {
	extensions := make([]string, 0)
	for ext := range mimeTypes {
		extensions = append(extensions, ext)
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"supabaseUrl":       h.supabaseURL,
		"supabaseAnonKey":   h.supabaseKey,
		"maxFileSize":       h.maxFileSize,
		"allowedExtensions": extensions,
	})
}

// Upload accepts a multipart file plus sessionId and stores it in the
// session, mirroring the real service's validation order.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "No file part")
		return
	}
	defer file.Close()

	if header.Filename == "" {
		writeError(w, http.StatusBadRequest, "No file selected")
		return
	}

	name := sanitizeFilename(header.Filename)
	if name == "" {
		writeError(w, http.StatusBadRequest, "Invalid filename")
		return
	}

	ext := catalog.ExtOf(name)
	if _, ok := mimeTypes[ext]; !ok {
		writeError(w, http.StatusUnsupportedMediaType, "File type not supported")
		return
	}

	content, err := io.ReadAll(io.LimitReader(file, h.maxFileSize+1))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save file")
		return
	}
	if len(content) == 0 {
		writeError(w, http.StatusBadRequest, "File is empty")
		return
	}
	if int64(len(content)) > h.maxFileSize {
		writeError(w, http.StatusRequestEntityTooLarge, "File too large")
		return
	}

	sessionID := r.FormValue("sessionId")
	if sessionID == "" || !idPattern.MatchString(sessionID) {
		sessionID = uuid.NewString()
	}

	h.mu.Lock()
	session, ok := h.sessions[sessionID]
	if !ok {
		session = &stubSession{files: make(map[string]*stubFile)}
		h.sessions[sessionID] = session
	}
	if len(session.files) >= maxFilesPerSession {
		h.mu.Unlock()
		writeError(w, http.StatusBadRequest, "Session storage full. Please start a new session.")
		return
	}

	fileID := uuid.NewString()
	session.files[fileID] = &stubFile{
		name:     name,
		content:  content,
		ext:      ext,
		mimeType: mimeTypes[ext],
		created:  time.Now(),
	}
	session.timestamp = time.Now()
	session.uploadCount++
	h.mu.Unlock()

	h.logger.Info("File uploaded", "name", name, "size", len(content), "session_id", sessionID)

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"fileId":    fileID,
		"sessionId": sessionID,
		"name":      name,
		"size":      len(content),
		"type":      ext,
	})
}

// Convert validates the conversion pair against the catalog and registers
// a "converted" artifact for download.
func (h *Handler) Convert(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FileID       string                 `json:"fileId"`
		OutputFormat string                 `json:"outputFormat"`
		SessionID    string                 `json:"sessionId"`
		Options      map[string]interface{} `json:"options"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON format")
		return
	}
	if req.FileID == "" || req.OutputFormat == "" || req.SessionID == "" {
		writeError(w, http.StatusBadRequest, "Missing required parameters: fileId, outputFormat, sessionId")
		return
	}
	if !idPattern.MatchString(req.FileID) {
		writeError(w, http.StatusBadRequest, "Invalid file ID")
		return
	}
	if !idPattern.MatchString(req.SessionID) {
		writeError(w, http.StatusBadRequest, "Invalid session ID")
		return
	}

	outputFormat := catalog.NormalizeExt(req.OutputFormat)

	h.mu.Lock()
	session, ok := h.sessions[req.SessionID]
	if !ok {
		h.mu.Unlock()
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}
	source, ok := session.files[req.FileID]
	if !ok {
		h.mu.Unlock()
		writeError(w, http.StatusNotFound, "File not found")
		return
	}

	if source.ext == outputFormat {
		h.mu.Unlock()
		writeError(w, http.StatusBadRequest, "Source and target formats are the same")
		return
	}
	if !catalog.CanConvert(source.ext, outputFormat) {
		h.mu.Unlock()
		writeError(w, http.StatusUnsupportedMediaType, fmt.Sprintf("Cannot convert %s to %s", source.ext, outputFormat))
		return
	}

	convertedID := uuid.NewString()
	baseName := strings.TrimSuffix(source.name, filepath.Ext(source.name))
	converted := &stubFile{
		name:          baseName + "." + outputFormat,
		content:       source.content,
		ext:           outputFormat,
		mimeType:      mimeTypes[outputFormat],
		created:       time.Now(),
		convertedFrom: req.FileID,
	}
	session.files[convertedID] = converted
	session.timestamp = time.Now()
	h.mu.Unlock()

	h.logger.Info("Conversion registered", "from", source.ext, "to", outputFormat, "session_id", req.SessionID)

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"fileId":     convertedID,
		"name":       converted.name,
		"size":       len(converted.content),
		"type":       converted.ext,
		"mimeType":   converted.mimeType,
		"url":        fmt.Sprintf("/api/download/%s?session_id=%s", convertedID, req.SessionID),
		"sessionUrl": fmt.Sprintf("/?session=%s", req.SessionID),
	})
}

// Download serves a stored artifact.
func (h *Handler) Download(w http.ResponseWriter, r *http.Request) {
	fileID := mux.Vars(r)["id"]
	sessionID := r.URL.Query().Get("session_id")

	h.mu.Lock()
	session, ok := h.sessions[sessionID]
	if !ok {
		h.mu.Unlock()
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}
	file, ok := session.files[fileID]
	h.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "File not found")
		return
	}

	w.Header().Set("Content-Type", file.mimeType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.name))
	w.WriteHeader(http.StatusOK)
	w.Write(file.content)
}

// GetSession lists a session's artifacts, newest first.
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	h.mu.Lock()
	session, ok := h.sessions[sessionID]
	if !ok {
		h.mu.Unlock()
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}

	files := make([]map[string]interface{}, 0, len(session.files))
	for id, file := range session.files {
		files = append(files, map[string]interface{}{
			"id":        id,
			"name":      file.name,
			"size":      len(file.content),
			"type":      file.ext,
			"timestamp": float64(file.created.Unix()),
			"url":       fmt.Sprintf("/api/download/%s?session_id=%s", id, sessionID),
		})
	}
	expiresAt := float64(session.timestamp.Add(fileExpiry).Unix())
	h.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"sessionId": sessionID,
		"files":     files,
		"expiresAt": expiresAt,
	})
}

// ResetSession drops a session's artifacts but keeps the session.
func (h *Handler) ResetSession(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	h.mu.Lock()
	session, ok := h.sessions[sessionID]
	if !ok {
		h.mu.Unlock()
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}
	removed := len(session.files)
	session.files = make(map[string]*stubFile)
	session.timestamp = time.Now()
	session.uploadCount = 0
	h.mu.Unlock()

	h.logger.Info("Session reset", "session_id", sessionID, "files_removed", removed)

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":      "Session reset successfully",
		"filesRemoved": removed,
		"sessionId":    sessionID,
	})
}

// sanitizeFilename strips path components and characters the service
// refuses.
func sanitizeFilename(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	name = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_', r == ' ':
			return r
		}
		return -1
	}, name)
	name = strings.TrimSpace(name)
	if name == "" || name == "." || name == ".." {
		return ""
	}
	return name
}

func writeJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(payload)
}

// writeError writes an error response (helper function)
func writeError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
