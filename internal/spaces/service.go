// Package spaces implements the tool handlers: each one composes
// backend client calls and at most one completion poll loop (the
// combined workflow runs two, strictly in sequence) into a
// user-facing text result.
package spaces

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"spaces-mcp/internal/backend"
	"spaces-mcp/internal/config"
)

// Terminal status sets per operation type. Anything outside both sets
// counts as still in progress and keeps the poll loop running.
var (
	downloadCompleted = []string{"completed"}
	downloadFailed    = []string{"failed", "error"}

	transcriptionCompleted = []string{"completed"}
	transcriptionFailed    = []string{"failed", "error"}
)

// TranscriptFormats is the closed set of formats the get_transcript
// tool advertises. The backend rejects anything else; the adapter does
// not validate locally.
var TranscriptFormats = []string{"json", "txt", "paragraphs", "timecoded", "summary"}

// DefaultTranscriptFormat is used when the caller omits format.
const DefaultTranscriptFormat = "txt"

// Service orchestrates backend calls for the exposed tools. It holds
// no mutable state; concurrent invocations are fully independent.
type Service struct {
	client *backend.Client
	poller *backend.Poller
	cfg    config.Config
	log    *slog.Logger
}

// NewService wires a service against the configured backend.
func NewService(cfg config.Config, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}

	client := backend.NewClient(cfg.Backend.BaseURL, cfg.Backend.Timeout(), log)

	return &Service{
		client: client,
		poller: backend.NewPoller(client, log),
		cfg:    cfg,
		log:    log,
	}
}

// begin stamps the invocation with a correlation ID and returns the
// scoped logger alongside the derived context.
func (s *Service) begin(ctx context.Context, tool string) (context.Context, *slog.Logger) {
	id := uuid.NewString()
	log := s.log.With("tool", tool, "request_id", id)

	return backend.WithRequestID(ctx, id), log
}

func (s *Service) downloadPoll(downloadID string) backend.PollRequest {
	return backend.PollRequest{
		Path:        backend.DownloadStatusPath(downloadID),
		Completed:   downloadCompleted,
		Failed:      downloadFailed,
		MaxAttempts: s.cfg.Polling.Download.MaxAttempts,
		Interval:    s.cfg.Polling.Download.Interval(),
	}
}

func (s *Service) transcriptionPoll(transcriptionID string) backend.PollRequest {
	return backend.PollRequest{
		Path:        backend.TranscriptionStatusPath(transcriptionID),
		Completed:   transcriptionCompleted,
		Failed:      transcriptionFailed,
		MaxAttempts: s.cfg.Polling.Transcription.MaxAttempts,
		Interval:    s.cfg.Polling.Transcription.Interval(),
	}
}

// CheckAvailability reports whether a space can be downloaded, plus
// whatever metadata the backend knows. Single-shot, never polls.
func (s *Service) CheckAvailability(ctx context.Context, spaceURL string) (string, error) {
	ctx, log := s.begin(ctx, "check_availability")

	spaceID, err := ExtractSpaceID(spaceURL)
	if err != nil {
		return "", err
	}

	resp, err := s.client.CheckSpace(ctx, spaceID)
	if err != nil {
		return "", err
	}

	log.Info("checked space", "space_id", spaceID, "available", resp.Available)

	return renderAvailability(spaceID, resp), nil
}

// Download starts a space download. With wait=false it returns the
// operation handle immediately; with wait=true it polls the status
// endpoint to a terminal state and reports the resulting file.
func (s *Service) Download(ctx context.Context, spaceURL string, wait bool) (string, error) {
	ctx, log := s.begin(ctx, "download")

	start, err := s.client.StartDownload(ctx, spaceURL)
	if err != nil {
		return "", err
	}

	log.Info("download started", "download_id", start.DownloadID, "status", start.Status)

	if !wait {
		return renderStarted("Download", start.DownloadID, start.Status, start.Message), nil
	}

	snapshot, err := s.poller.Wait(ctx, s.downloadPoll(start.DownloadID))
	if err != nil {
		return "", err
	}

	log.Info("download completed", "space_id", snapshot.SpaceID, "filename", snapshot.Filename)

	return renderDownloadResult(snapshot), nil
}

// Transcribe starts transcription of a downloaded space, polling to a
// terminal state when wait is set. Transcription jobs run long, so the
// poll budget is double the download budget.
func (s *Service) Transcribe(ctx context.Context, spaceID string, wait bool) (string, error) {
	ctx, log := s.begin(ctx, "transcribe")

	start, err := s.client.StartTranscription(ctx, spaceID)
	if err != nil {
		return "", err
	}

	log.Info("transcription started",
		"transcription_id", start.TranscriptionID, "status", start.Status)

	if !wait {
		return renderStarted("Transcription", start.TranscriptionID, start.Status, start.Message), nil
	}

	snapshot, err := s.poller.Wait(ctx, s.transcriptionPoll(start.TranscriptionID))
	if err != nil {
		return "", err
	}

	log.Info("transcription completed", "space_id", snapshot.SpaceID)

	return renderTranscriptionResult(spaceID, snapshot), nil
}

// Transcript fetches a formatted transcript document. Format defaults
// to txt; invalid formats are rejected by the backend.
func (s *Service) Transcript(ctx context.Context, spaceID, format string) (string, error) {
	ctx, log := s.begin(ctx, "get_transcript")

	if format == "" {
		format = DefaultTranscriptFormat
	}

	doc, err := s.client.Transcript(ctx, spaceID, format)
	if err != nil {
		return "", err
	}

	log.Info("transcript fetched", "space_id", spaceID, "format", format, "bytes", len(doc))

	return doc, nil
}

// ListSpaces lists stored spaces. A backend without durable storage
// configured yields an explanatory empty result, not an error.
func (s *Service) ListSpaces(ctx context.Context) (string, error) {
	ctx, log := s.begin(ctx, "list_spaces")

	resp, err := s.client.ListSpaces(ctx)
	if err != nil {
		return "", err
	}

	log.Info("listed spaces", "r2_configured", resp.R2Configured, "count", len(resp.Spaces))

	return renderSpacesList(resp), nil
}

// DownloadAndTranscribe chains the full workflow: availability check,
// download to completion, then transcription to completion. The first
// failing stage aborts the rest; nothing local needs rolling back.
func (s *Service) DownloadAndTranscribe(ctx context.Context, spaceURL string) (string, error) {
	ctx, log := s.begin(ctx, "download_and_transcribe")

	spaceID, err := ExtractSpaceID(spaceURL)
	if err != nil {
		return "", err
	}

	check, err := s.client.CheckSpace(ctx, spaceID)
	if err != nil {
		return "", err
	}
	if !check.Available {
		reason := check.Error
		if reason == "" {
			reason = check.Message
		}
		if reason == "" {
			return "", fmt.Errorf("space %s is not available for download", spaceID)
		}

		return "", fmt.Errorf("space %s is not available for download: %s", spaceID, reason)
	}

	start, err := s.client.StartDownload(ctx, spaceURL)
	if err != nil {
		return "", err
	}

	log.Info("download started", "download_id", start.DownloadID)

	downloaded, err := s.poller.Wait(ctx, s.downloadPoll(start.DownloadID))
	if err != nil {
		return "", fmt.Errorf("download stage: %w", err)
	}

	// Later stages key off the backend's own idea of the space ID when
	// the snapshot carries one.
	if downloaded.SpaceID != "" {
		spaceID = downloaded.SpaceID
	}

	startTx, err := s.client.StartTranscription(ctx, spaceID)
	if err != nil {
		return "", fmt.Errorf("transcription stage: %w", err)
	}

	log.Info("transcription started", "transcription_id", startTx.TranscriptionID)

	transcribed, err := s.poller.Wait(ctx, s.transcriptionPoll(startTx.TranscriptionID))
	if err != nil {
		return "", fmt.Errorf("transcription stage: %w", err)
	}

	log.Info("workflow completed", "space_id", spaceID)

	return renderWorkflowResult(spaceID, downloaded, transcribed), nil
}

func renderAvailability(spaceID string, resp *backend.CheckSpaceResponse) string {
	var b strings.Builder

	if resp.Available {
		fmt.Fprintf(&b, "Space %s is available for download.\n", spaceID)
	} else {
		fmt.Fprintf(&b, "Space %s is not available for download.\n", spaceID)
	}

	if resp.Title != "" {
		fmt.Fprintf(&b, "Title: %s\n", resp.Title)
	}
	if resp.State != "" {
		fmt.Fprintf(&b, "State: %s\n", resp.State)
	}
	if !resp.Available {
		if reason := firstNonEmpty(resp.Error, resp.Message); reason != "" {
			fmt.Fprintf(&b, "Reason: %s\n", reason)
		}
	}

	return strings.TrimRight(b.String(), "\n")
}

func renderStarted(op, handle, status, message string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s started.\n", op)
	fmt.Fprintf(&b, "Operation ID: %s\n", handle)
	fmt.Fprintf(&b, "Status: %s\n", firstNonEmpty(status, "pending"))
	if message != "" {
		fmt.Fprintf(&b, "%s\n", message)
	}
	b.WriteString("Call the tool again with wait=true, or poll later using the operation ID.")

	return b.String()
}

func renderDownloadResult(s *backend.StatusSnapshot) string {
	var b strings.Builder

	b.WriteString("Download completed.\n")
	if s.SpaceID != "" {
		fmt.Fprintf(&b, "Space ID: %s\n", s.SpaceID)
	}
	if s.Filename != "" {
		fmt.Fprintf(&b, "File: %s\n", s.Filename)
	}
	if s.URL != "" {
		fmt.Fprintf(&b, "URL: %s\n", s.URL)
	}
	if s.AudioSize > 0 {
		fmt.Fprintf(&b, "Audio size: %d bytes\n", s.AudioSize)
	}
	if s.Message != "" {
		fmt.Fprintf(&b, "%s\n", s.Message)
	}

	return strings.TrimRight(b.String(), "\n")
}

func renderTranscriptionResult(spaceID string, s *backend.StatusSnapshot) string {
	var b strings.Builder

	b.WriteString("Transcription completed.\n")
	fmt.Fprintf(&b, "Space ID: %s\n", firstNonEmpty(s.SpaceID, spaceID))
	if s.Message != "" {
		fmt.Fprintf(&b, "%s\n", s.Message)
	}
	b.WriteString("Fetch the text with get_transcript (formats: " +
		strings.Join(TranscriptFormats, ", ") + ").")

	return b.String()
}

func renderSpacesList(resp *backend.ListSpacesResponse) string {
	if !resp.R2Configured {
		return "No durable storage is configured on the backend, so there are no stored spaces to list."
	}

	if len(resp.Spaces) == 0 {
		return "No spaces stored yet."
	}

	var b strings.Builder

	fmt.Fprintf(&b, "%d stored space(s):\n", len(resp.Spaces))
	for _, sp := range resp.Spaces {
		fmt.Fprintf(&b, "- %s", sp.SpaceID)
		if sp.Filename != "" {
			fmt.Fprintf(&b, " (%s", sp.Filename)
			if sp.Size > 0 {
				fmt.Fprintf(&b, ", %d bytes", sp.Size)
			}
			b.WriteString(")")
		}
		if sp.UploadedAt != "" {
			fmt.Fprintf(&b, " uploaded %s", sp.UploadedAt)
		}
		b.WriteString("\n")
	}

	return strings.TrimRight(b.String(), "\n")
}

func renderWorkflowResult(spaceID string, downloaded, transcribed *backend.StatusSnapshot) string {
	var b strings.Builder

	b.WriteString("Download and transcription completed.\n")
	fmt.Fprintf(&b, "Space ID: %s\n", spaceID)
	if downloaded.Filename != "" {
		fmt.Fprintf(&b, "Audio file: %s\n", downloaded.Filename)
	}
	if downloaded.URL != "" {
		fmt.Fprintf(&b, "Audio URL: %s\n", downloaded.URL)
	}
	if transcribed.Message != "" {
		fmt.Fprintf(&b, "%s\n", transcribed.Message)
	}
	b.WriteString("Fetch the text with get_transcript (formats: " +
		strings.Join(TranscriptFormats, ", ") + ").")

	return b.String()
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}

	return ""
}
