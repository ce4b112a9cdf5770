package spaces_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spaces-mcp/internal/backend"
	"spaces-mcp/internal/config"
	"spaces-mcp/internal/spaces"
)

const testSpaceURL = "https://x.com/i/spaces/1ZkKzYLnWOLxv"

// backendStub is a scriptable fake of the Spaces backend API. Status
// endpoints walk through their sequence one entry per call, sticking
// on the last entry.
type backendStub struct {
	mu sync.Mutex

	checkBody      string
	downloadBody   string
	transcribeBody string
	statusSeq      []string
	txStatusSeq    []string
	spacesBody     string
	transcript     string

	calls       map[string]int
	total       int
	statusIdx   int
	txStatusIdx int
}

func newBackendStub() *backendStub {
	return &backendStub{calls: map[string]int{}}
}

func (b *backendStub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.total++
	path := r.URL.Path

	switch {
	case path == "/api/download":
		b.calls["download"]++
		io.WriteString(w, b.downloadBody)
	case path == "/api/transcribe":
		b.calls["transcribe"]++
		var req map[string]string
		_ = json.NewDecoder(r.Body).Decode(&req)
		b.calls["transcribe space_id "+req["space_id"]]++
		io.WriteString(w, b.transcribeBody)
	case path == "/api/spaces":
		b.calls["spaces"]++
		io.WriteString(w, b.spacesBody)
	case strings.HasPrefix(path, "/api/check-space/"):
		b.calls["check"]++
		io.WriteString(w, b.checkBody)
	case strings.HasPrefix(path, "/api/transcription/status/"):
		b.calls["tx_status"]++
		idx := b.txStatusIdx
		if idx >= len(b.txStatusSeq) {
			idx = len(b.txStatusSeq) - 1
		}
		b.txStatusIdx++
		io.WriteString(w, b.txStatusSeq[idx])
	case strings.HasPrefix(path, "/api/status/"):
		b.calls["status"]++
		idx := b.statusIdx
		if idx >= len(b.statusSeq) {
			idx = len(b.statusSeq) - 1
		}
		b.statusIdx++
		io.WriteString(w, b.statusSeq[idx])
	case strings.HasPrefix(path, "/api/transcript/"):
		b.calls["transcript "+path]++
		io.WriteString(w, b.transcript)
	default:
		http.NotFound(w, r)
	}
}

func (b *backendStub) count(key string) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.calls[key]
}

func (b *backendStub) totalCalls() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.total
}

func newTestService(t *testing.T, stub *backendStub) *spaces.Service {
	t.Helper()

	srv := httptest.NewServer(stub)
	t.Cleanup(srv.Close)

	cfg := config.Config{
		Backend: config.BackendConfig{BaseURL: srv.URL, TimeoutSeconds: 5},
		Polling: config.PollingConfig{
			Download:      config.PollParams{MaxAttempts: 5, IntervalSeconds: 0},
			Transcription: config.PollParams{MaxAttempts: 5, IntervalSeconds: 0},
		},
	}

	return spaces.NewService(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestDownloadWaitsForCompletion(t *testing.T) {
	stub := newBackendStub()
	stub.downloadBody = `{"download_id":"d1","status":"pending"}`
	stub.statusSeq = []string{
		`{"status":"processing"}`,
		`{"status":"completed","space_id":"1ZkKzYLnWOLxv","filename":"spaces/1ZkKzYLnWOLxv.mp3"}`,
	}
	svc := newTestService(t, stub)

	text, err := svc.Download(context.Background(), testSpaceURL, true)
	require.NoError(t, err)

	// Terminal snapshot reached on the second status call.
	assert.Equal(t, 2, stub.count("status"))
	assert.Contains(t, text, "1ZkKzYLnWOLxv")
	assert.Contains(t, text, "spaces/1ZkKzYLnWOLxv.mp3")
}

func TestDownloadNoWaitReturnsHandle(t *testing.T) {
	stub := newBackendStub()
	stub.downloadBody = `{"download_id":"d1","status":"pending","message":"queued"}`
	svc := newTestService(t, stub)

	text, err := svc.Download(context.Background(), testSpaceURL, false)
	require.NoError(t, err)

	assert.Contains(t, text, "d1")
	assert.Contains(t, text, "pending")
	assert.Zero(t, stub.count("status"), "no-wait download must not poll")
}

func TestDownloadFailureSurfacesBackendReason(t *testing.T) {
	stub := newBackendStub()
	stub.downloadBody = `{"download_id":"d1","status":"pending"}`
	stub.statusSeq = []string{`{"status":"failed","error":"space audio no longer hosted"}`}
	svc := newTestService(t, stub)

	_, err := svc.Download(context.Background(), testSpaceURL, true)

	var opErr *backend.OperationFailedError
	require.ErrorAs(t, err, &opErr)
	assert.Contains(t, opErr.Error(), "space audio no longer hosted")
	assert.Equal(t, 1, stub.count("status"))
}

func TestDownloadPollBudgetExhausted(t *testing.T) {
	stub := newBackendStub()
	stub.downloadBody = `{"download_id":"d1","status":"pending"}`
	stub.statusSeq = []string{`{"status":"processing"}`}
	svc := newTestService(t, stub)

	_, err := svc.Download(context.Background(), testSpaceURL, true)

	var timeoutErr *backend.PollTimeoutError
	require.ErrorAs(t, err, &timeoutErr)
	assert.Equal(t, 5, timeoutErr.Attempts)
	assert.Equal(t, 5, stub.count("status"))
}

func TestCheckAvailability(t *testing.T) {
	tests := []struct {
		name      string
		checkBody string
		contains  []string
	}{
		{
			name:      "available with metadata",
			checkBody: `{"available":true,"title":"Late Night Dev Talk","state":"ended"}`,
			contains:  []string{"is available", "Late Night Dev Talk", "ended"},
		},
		{
			name:      "unavailable with reason",
			checkBody: `{"available":false,"error":"space not found"}`,
			contains:  []string{"not available", "space not found"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stub := newBackendStub()
			stub.checkBody = tt.checkBody
			svc := newTestService(t, stub)

			text, err := svc.CheckAvailability(context.Background(), testSpaceURL)
			require.NoError(t, err)
			for _, want := range tt.contains {
				assert.Contains(t, text, want)
			}
			assert.Equal(t, 1, stub.count("check"))
		})
	}
}

func TestCheckAvailabilityInvalidURLMakesNoCalls(t *testing.T) {
	stub := newBackendStub()
	svc := newTestService(t, stub)

	_, err := svc.CheckAvailability(context.Background(), "https://x.com/someuser/status/123")

	require.ErrorIs(t, err, spaces.ErrInvalidSpaceURL)
	assert.Zero(t, stub.totalCalls())
}

func TestTranscribeWaitsForCompletion(t *testing.T) {
	stub := newBackendStub()
	stub.transcribeBody = `{"transcription_id":"t1","status":"queued"}`
	stub.txStatusSeq = []string{
		`{"status":"processing"}`,
		`{"status":"completed","space_id":"1ZkKzYLnWOLxv"}`,
	}
	svc := newTestService(t, stub)

	text, err := svc.Transcribe(context.Background(), "1ZkKzYLnWOLxv", true)
	require.NoError(t, err)
	assert.Equal(t, 2, stub.count("tx_status"))
	assert.Contains(t, text, "Transcription completed")
	assert.Contains(t, text, "get_transcript")
}

func TestTranscribeNoWaitReturnsHandle(t *testing.T) {
	stub := newBackendStub()
	stub.transcribeBody = `{"transcription_id":"t1","status":"queued"}`
	svc := newTestService(t, stub)

	text, err := svc.Transcribe(context.Background(), "1ZkKzYLnWOLxv", false)
	require.NoError(t, err)
	assert.Contains(t, text, "t1")
	assert.Zero(t, stub.count("tx_status"))
}

func TestTranscriptDefaultsToTxtFormat(t *testing.T) {
	stub := newBackendStub()
	stub.transcript = "full transcript text"
	svc := newTestService(t, stub)

	doc, err := svc.Transcript(context.Background(), "1ZkKzYLnWOLxv", "")
	require.NoError(t, err)
	assert.Equal(t, "full transcript text", doc)
	assert.Equal(t, 1, stub.count("transcript /api/transcript/1ZkKzYLnWOLxv/download/txt"))
}

func TestListSpaces(t *testing.T) {
	tests := []struct {
		name       string
		spacesBody string
		contains   string
	}{
		{
			name:       "no durable storage, spaces absent",
			spacesBody: `{"r2_configured":false}`,
			contains:   "No durable storage",
		},
		{
			name:       "storage configured but empty",
			spacesBody: `{"r2_configured":true,"spaces":[]}`,
			contains:   "No spaces stored yet",
		},
		{
			name:       "stored spaces listed",
			spacesBody: `{"r2_configured":true,"spaces":[{"space_id":"1ZkKzYLnWOLxv","filename":"spaces/1ZkKzYLnWOLxv.mp3","size":1048576}]}`,
			contains:   "1ZkKzYLnWOLxv.mp3",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stub := newBackendStub()
			stub.spacesBody = tt.spacesBody
			svc := newTestService(t, stub)

			text, err := svc.ListSpaces(context.Background())
			require.NoError(t, err)
			assert.Contains(t, text, tt.contains)
		})
	}
}

func TestDownloadAndTranscribeUnavailableFailsFast(t *testing.T) {
	stub := newBackendStub()
	stub.checkBody = `{"available":false,"error":"space was deleted"}`
	svc := newTestService(t, stub)

	_, err := svc.DownloadAndTranscribe(context.Background(), testSpaceURL)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "not available")
	assert.Contains(t, err.Error(), "space was deleted")
	assert.Equal(t, 1, stub.totalCalls(), "only the availability check may hit the backend")
}

func TestDownloadAndTranscribeRunsBothStages(t *testing.T) {
	stub := newBackendStub()
	stub.checkBody = `{"available":true,"title":"Late Night Dev Talk"}`
	stub.downloadBody = `{"download_id":"d1","status":"pending"}`
	stub.statusSeq = []string{
		`{"status":"processing"}`,
		`{"status":"completed","space_id":"1ZkKzYLnWOLxv","filename":"spaces/1ZkKzYLnWOLxv.mp3"}`,
	}
	stub.transcribeBody = `{"transcription_id":"t1","status":"queued"}`
	stub.txStatusSeq = []string{`{"status":"completed","space_id":"1ZkKzYLnWOLxv"}`}
	svc := newTestService(t, stub)

	text, err := svc.DownloadAndTranscribe(context.Background(), testSpaceURL)
	require.NoError(t, err)

	assert.Equal(t, 1, stub.count("check"))
	assert.Equal(t, 1, stub.count("download"))
	assert.Equal(t, 2, stub.count("status"))
	assert.Equal(t, 1, stub.count("transcribe"))
	// The transcription stage uses the space ID reported by the
	// completed download, not a re-parse of the URL.
	assert.Equal(t, 1, stub.count("transcribe space_id 1ZkKzYLnWOLxv"))
	assert.Equal(t, 1, stub.count("tx_status"))

	assert.Contains(t, text, "Download and transcription completed")
	assert.Contains(t, text, "spaces/1ZkKzYLnWOLxv.mp3")
}

func TestDownloadAndTranscribeDownloadFailureAbortsWorkflow(t *testing.T) {
	stub := newBackendStub()
	stub.checkBody = `{"available":true}`
	stub.downloadBody = `{"download_id":"d1","status":"pending"}`
	stub.statusSeq = []string{`{"status":"failed","error":"audio fetch failed"}`}
	svc := newTestService(t, stub)

	_, err := svc.DownloadAndTranscribe(context.Background(), testSpaceURL)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "audio fetch failed")
	assert.Zero(t, stub.count("transcribe"), "transcription must not start after a failed download")
}
