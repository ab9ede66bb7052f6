// Package backend is the HTTP client for the conversion service: config
// discovery, the two-phase upload/convert exchange, and session
// management. Failures are classified into the application error taxonomy
// at this boundary so callers never see raw transport errors.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"docmorph/internal/domain"
	apperrors "docmorph/pkg/errors"
)

const defaultRequestTimeout = 5 * time.Minute

// Client implements domain.Backend against a service base URL.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     domain.Logger
}

// NewClient creates a backend client. baseURL is the service root, e.g.
// http://localhost:8080.
func NewClient(baseURL string, logger domain.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultRequestTimeout},
		logger:     logger,
	}
}

// errorBody is the failure payload the service returns on every endpoint.
type errorBody struct {
	Error string `json:"error"`
}

// FetchConfig retrieves the service configuration, including the identity
// provider connection parameters. It must succeed before any auth
// operation.
func (c *Client) FetchConfig(ctx context.Context) (*domain.RemoteConfig, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/config", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build config request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperrors.NewNetworkError("could not reach the conversion service", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, apperrors.NewNetworkError(fmt.Sprintf("config endpoint returned status %d", resp.StatusCode), nil)
	}

	var config domain.RemoteConfig
	if err := json.NewDecoder(resp.Body).Decode(&config); err != nil {
		return nil, fmt.Errorf("failed to decode service config: %w", err)
	}
	return &config, nil
}

// Upload sends the file bytes and the session identifier as multipart form
// data and returns the remote file identifier.
func (c *Client) Upload(ctx context.Context, sessionID, name string, size int64, content io.Reader) (*domain.UploadResult, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", name)
	if err != nil {
		return nil, fmt.Errorf("failed to build multipart body: %w", err)
	}
	if _, err := io.Copy(part, content); err != nil {
		return nil, fmt.Errorf("failed to read file content: %w", err)
	}
	if err := writer.WriteField("sessionId", sessionID); err != nil {
		return nil, fmt.Errorf("failed to write session field: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/upload", &body)
	if err != nil {
		return nil, fmt.Errorf("failed to build upload request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	c.logger.Debug("Uploading file", "name", name, "size", size, "session_id", sessionID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperrors.NewNetworkError("upload did not reach the service", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, apperrors.NewUploadFailed(resp.StatusCode, c.readErrorMessage(resp.Body))
	}

	var result domain.UploadResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode upload response: %w", err)
	}
	return &result, nil
}

// Convert asks the service to convert a previously uploaded file. The
// returned URL is normalized to an absolute URL when the service answered
// with a relative path.
func (c *Client) Convert(ctx context.Context, convReq domain.ConvertRequest) (*domain.ConvertResult, error) {
	payload, err := json.Marshal(convReq)
	if err != nil {
		return nil, fmt.Errorf("failed to encode convert request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/convert", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build convert request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	c.logger.Debug("Requesting conversion", "file_id", convReq.FileID, "output_format", convReq.OutputFormat)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperrors.NewNetworkError("convert did not reach the service", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, apperrors.NewConvertFailed(resp.StatusCode, c.readErrorMessage(resp.Body))
	}

	var result domain.ConvertResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode convert response: %w", err)
	}
	result.URL = c.absoluteURL(result.URL)
	result.SessionURL = c.absoluteURL(result.SessionURL)
	return &result, nil
}

// SessionInfo lists the artifacts the service still holds for a session.
func (c *Client) SessionInfo(ctx context.Context, sessionID string) (*domain.SessionInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/session/"+url.PathEscape(sessionID), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build session request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperrors.NewNetworkError("session lookup did not reach the service", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, apperrors.NewUploadFailed(resp.StatusCode, c.readErrorMessage(resp.Body))
	}

	var info domain.SessionInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("failed to decode session response: %w", err)
	}
	return &info, nil
}

// ResetSession discards the server-side artifacts of a session and
// returns how many files were removed.
func (c *Client) ResetSession(ctx context.Context, sessionID string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/session/"+url.PathEscape(sessionID)+"/reset", nil)
	if err != nil {
		return 0, fmt.Errorf("failed to build reset request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, apperrors.NewNetworkError("session reset did not reach the service", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return 0, apperrors.NewUploadFailed(resp.StatusCode, c.readErrorMessage(resp.Body))
	}

	var result struct {
		Message      string `json:"message"`
		FilesRemoved int    `json:"filesRemoved"`
		SessionID    string `json:"sessionId"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return 0, fmt.Errorf("failed to decode reset response: %w", err)
	}
	return result.FilesRemoved, nil
}

// readErrorMessage extracts the {"error": ...} body, tolerating anything
// else the service might send.
func (c *Client) readErrorMessage(body io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(body, 4096))
	if err != nil {
		return ""
	}
	var parsed errorBody
	if err := json.Unmarshal(raw, &parsed); err == nil && parsed.Error != "" {
		return parsed.Error
	}
	return strings.TrimSpace(string(raw))
}

// absoluteURL resolves a possibly relative service URL against the base.
func (c *Client) absoluteURL(raw string) string {
	if raw == "" {
		return raw
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	if parsed.IsAbs() {
		return raw
	}
	base, err := url.Parse(c.baseURL)
	if err != nil {
		return raw
	}
	return base.ResolveReference(parsed).String()
}

var _ domain.Backend = (*Client)(nil)
