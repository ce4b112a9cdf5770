// Package backend talks to the external Spaces API: a thin HTTP client
// with per-call timeouts plus the completion poller for asynchronous
// download and transcription jobs.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

type requestIDKey struct{}

// WithRequestID attaches a correlation ID that the client forwards to
// the backend as X-Request-ID.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestIDFrom returns the correlation ID carried by ctx, minting a
// fresh one when none is present.
func RequestIDFrom(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey{}).(string); ok && id != "" {
		return id
	}

	return uuid.NewString()
}

// Client issues single HTTP requests against the Spaces backend.
// Retry policy lives entirely in the Poller; the client never retries.
type Client struct {
	baseURL string
	timeout time.Duration
	http    *http.Client
	log     *slog.Logger
}

// NewClient creates a backend client. The timeout applies per request
// and is enforced with a context deadline armed at call start.
func NewClient(baseURL string, timeout time.Duration, log *slog.Logger) *Client {
	if log == nil {
		log = slog.Default()
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: timeout,
		// The transport applies no timeout of its own; the armed
		// context deadline is the single source of truth.
		http: &http.Client{},
		log:  log.With("component", "backend"),
	}
}

// do performs one request and returns the raw response body.
// Failures are normalized: non-2xx becomes *RequestError, an elapsed
// per-call deadline becomes *TimeoutError.
func (c *Client) do(ctx context.Context, method, path string, body any) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", RequestIDFrom(ctx))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			c.log.Warn("backend request timed out",
				"method", method, "path", path, "timeout", c.timeout)

			return nil, &TimeoutError{Timeout: c.timeout}
		}

		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	c.log.Debug("backend request",
		"method", method, "path", path,
		"status", resp.StatusCode, "elapsed", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &RequestError{
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(data)),
		}
	}

	return data, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	data, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response from %s: %w", path, err)
	}

	return nil
}

func (c *Client) postJSON(ctx context.Context, path string, body, out any) error {
	data, err := c.do(ctx, http.MethodPost, path, body)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response from %s: %w", path, err)
	}

	return nil
}

// CheckSpace reads availability and metadata for a space.
func (c *Client) CheckSpace(ctx context.Context, spaceID string) (*CheckSpaceResponse, error) {
	var out CheckSpaceResponse
	if err := c.getJSON(ctx, "/api/check-space/"+url.PathEscape(spaceID), &out); err != nil {
		return nil, err
	}

	return &out, nil
}

// StartDownload asks the backend to begin downloading a space and
// returns the operation handle to poll.
func (c *Client) StartDownload(ctx context.Context, spaceURL string) (*StartDownloadResponse, error) {
	var out StartDownloadResponse
	body := map[string]string{"space_url": spaceURL}
	if err := c.postJSON(ctx, "/api/download", body, &out); err != nil {
		return nil, err
	}

	return &out, nil
}

// StartTranscription asks the backend to begin transcribing a
// downloaded space and returns the operation handle to poll.
func (c *Client) StartTranscription(ctx context.Context, spaceID string) (*StartTranscriptionResponse, error) {
	var out StartTranscriptionResponse
	body := map[string]string{"space_id": spaceID}
	if err := c.postJSON(ctx, "/api/transcribe", body, &out); err != nil {
		return nil, err
	}

	return &out, nil
}

// FetchStatus reads one status snapshot from an arbitrary status path.
// The Poller calls this once per tick.
func (c *Client) FetchStatus(ctx context.Context, path string) (*StatusSnapshot, error) {
	var out StatusSnapshot
	if err := c.getJSON(ctx, path, &out); err != nil {
		return nil, err
	}

	return &out, nil
}

// DownloadStatusPath returns the poll path for a download handle.
func DownloadStatusPath(downloadID string) string {
	return "/api/status/" + url.PathEscape(downloadID)
}

// TranscriptionStatusPath returns the poll path for a transcription handle.
func TranscriptionStatusPath(transcriptionID string) string {
	return "/api/transcription/status/" + url.PathEscape(transcriptionID)
}

// Transcript fetches a formatted transcript document. The backend
// serves the document as a raw text body, not JSON.
func (c *Client) Transcript(ctx context.Context, spaceID, format string) (string, error) {
	path := "/api/transcript/" + url.PathEscape(spaceID) + "/download/" + url.PathEscape(format)
	data, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return "", err
	}

	return string(data), nil
}

// ListSpaces lists spaces held in the backend's durable storage.
func (c *Client) ListSpaces(ctx context.Context) (*ListSpacesResponse, error) {
	var out ListSpacesResponse
	if err := c.getJSON(ctx, "/api/spaces", &out); err != nil {
		return nil, err
	}

	return &out, nil
}
