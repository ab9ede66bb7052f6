package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"docmorph/internal/domain"
	apperrors "docmorph/pkg/errors"
)

type nopLogger struct{}

func (nopLogger) Info(msg string, fields ...interface{})             {}
func (nopLogger) Error(msg string, err error, fields ...interface{}) {}
func (nopLogger) Debug(msg string, fields ...interface{})            {}
func (nopLogger) Warn(msg string, fields ...interface{})             {}

func TestFetchConfig(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/config" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"supabaseUrl":       "https://project.supabase.co",
			"supabaseAnonKey":   "anon-key",
			"maxFileSize":       104857600,
			"allowedExtensions": []string{"pdf", "docx"},
		})
	}))
	defer server.Close()

	config, err := NewClient(server.URL, nopLogger{}).FetchConfig(context.Background())
	if err != nil {
		t.Fatalf("failed to fetch config: %v", err)
	}
	if config.SupabaseURL != "https://project.supabase.co" {
		t.Fatalf("unexpected supabase url %s", config.SupabaseURL)
	}
	if config.MaxFileSize != 104857600 {
		t.Fatalf("unexpected max file size %d", config.MaxFileSize)
	}
}

func TestUpload_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/upload" || r.Method != http.MethodPost {
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("failed to parse multipart: %v", err)
		}
		if got := r.FormValue("sessionId"); got != "sess-1" {
			t.Fatalf("expected sessionId sess-1, got %s", got)
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			t.Fatalf("expected file part: %v", err)
		}
		file.Close()
		if header.Filename != "report.pdf" {
			t.Fatalf("unexpected filename %s", header.Filename)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"fileId":    "f1",
			"sessionId": "sess-1",
			"name":      "report.pdf",
			"size":      11,
			"type":      "pdf",
		})
	}))
	defer server.Close()

	content := strings.NewReader("pdf content")
	result, err := NewClient(server.URL, nopLogger{}).Upload(context.Background(), "sess-1", "report.pdf", 11, content)
	if err != nil {
		t.Fatalf("failed to upload: %v", err)
	}
	if result.FileID != "f1" {
		t.Fatalf("expected file id f1, got %s", result.FileID)
	}
}

func TestUpload_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"Internal server error"}`))
	}))
	defer server.Close()

	_, err := NewClient(server.URL, nopLogger{}).Upload(context.Background(), "sess-1", "report.pdf", 3, strings.NewReader("abc"))
	if !apperrors.IsKind(err, apperrors.KindUploadFailed) {
		t.Fatalf("expected upload_failed, got %v", err)
	}
	if !apperrors.IsTransient(err) {
		t.Fatal("expected a 500 to be classified transient")
	}
	if apperrors.StatusOf(err) != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", apperrors.StatusOf(err))
	}
}

func TestUpload_NetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // refuse connections

	_, err := NewClient(server.URL, nopLogger{}).Upload(context.Background(), "sess-1", "a.pdf", 1, strings.NewReader("x"))
	if !apperrors.IsKind(err, apperrors.KindNetwork) {
		t.Fatalf("expected network error, got %v", err)
	}
}

func TestConvert_NormalizesRelativeURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/convert" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		var req domain.ConvertRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("failed to decode request: %v", err)
		}
		if req.FileID != "f1" || req.OutputFormat != "docx" || req.SessionID != "sess-1" {
			t.Fatalf("unexpected request %+v", req)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"fileId":     "f2",
			"name":       "report.docx",
			"size":       42,
			"type":       "docx",
			"mimeType":   "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
			"url":        "/files/f1.docx",
			"sessionUrl": "/?session=sess-1",
		})
	}))
	defer server.Close()

	result, err := NewClient(server.URL, nopLogger{}).Convert(context.Background(), domain.ConvertRequest{
		FileID:       "f1",
		OutputFormat: "docx",
		SessionID:    "sess-1",
		Options:      domain.DefaultOptions(),
	})
	if err != nil {
		t.Fatalf("failed to convert: %v", err)
	}
	if result.URL != server.URL+"/files/f1.docx" {
		t.Fatalf("expected absolute url, got %s", result.URL)
	}
	if !strings.HasSuffix(result.URL, "f1.docx") {
		t.Fatalf("expected url ending in f1.docx, got %s", result.URL)
	}
}

func TestConvert_UnsupportedType(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnsupportedMediaType)
		w.Write([]byte(`{"error":"Cannot convert pdf to exe"}`))
	}))
	defer server.Close()

	_, err := NewClient(server.URL, nopLogger{}).Convert(context.Background(), domain.ConvertRequest{
		FileID: "f1", OutputFormat: "exe", SessionID: "sess-1",
	})
	if !apperrors.IsKind(err, apperrors.KindConvertFailed) {
		t.Fatalf("expected convert_failed, got %v", err)
	}
	if apperrors.IsTransient(err) {
		t.Fatal("expected a 415 to be classified permanent")
	}
}

func TestResetSession(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/session/sess-1/reset" || r.Method != http.MethodPost {
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"message":"Session reset successfully","filesRemoved":3,"sessionId":"sess-1"}`))
	}))
	defer server.Close()

	removed, err := NewClient(server.URL, nopLogger{}).ResetSession(context.Background(), "sess-1")
	if err != nil {
		t.Fatalf("failed to reset session: %v", err)
	}
	if removed != 3 {
		t.Fatalf("expected 3 files removed, got %d", removed)
	}
}
