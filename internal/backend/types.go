package backend

// Response shapes for the Spaces backend API. The backend serves
// loosely-typed JSON; optional fields decode to zero values and are
// defaulted by callers when rendered.

// CheckSpaceResponse is returned by GET /api/check-space/{space_id}.
type CheckSpaceResponse struct {
	Available bool   `json:"available"`
	SpaceID   string `json:"space_id,omitempty"`
	Title     string `json:"title,omitempty"`
	State     string `json:"state,omitempty"`
	Message   string `json:"message,omitempty"`
	Error     string `json:"error,omitempty"`
}

// StartDownloadResponse is returned by POST /api/download.
type StartDownloadResponse struct {
	DownloadID string `json:"download_id"`
	Status     string `json:"status"`
	Message    string `json:"message,omitempty"`
}

// StartTranscriptionResponse is returned by POST /api/transcribe.
type StartTranscriptionResponse struct {
	TranscriptionID string `json:"transcription_id"`
	Status          string `json:"status"`
	Message         string `json:"message,omitempty"`
}

// StatusSnapshot is a point-in-time read of an asynchronous operation,
// as served by the download and transcription status endpoints. It is
// re-fetched on every poll tick and never cached.
type StatusSnapshot struct {
	Status    string  `json:"status"`
	Message   string  `json:"message,omitempty"`
	Error     string  `json:"error,omitempty"`
	SpaceID   string  `json:"space_id,omitempty"`
	Filename  string  `json:"filename,omitempty"`
	URL       string  `json:"url,omitempty"`
	AudioSize int64   `json:"audio_size,omitempty"`
	State     string  `json:"state,omitempty"`
	Progress  float64 `json:"progress,omitempty"`
}

// FailureReason returns the most specific explanation the snapshot
// carries for a failed operation.
func (s *StatusSnapshot) FailureReason() string {
	if s.Error != "" {
		return s.Error
	}

	return s.Message
}

// SpaceEntry describes one stored space in GET /api/spaces.
type SpaceEntry struct {
	SpaceID    string `json:"space_id"`
	Filename   string `json:"filename,omitempty"`
	Size       int64  `json:"size,omitempty"`
	UploadedAt string `json:"uploaded_at,omitempty"`
}

// ListSpacesResponse is returned by GET /api/spaces.
type ListSpacesResponse struct {
	R2Configured bool         `json:"r2_configured"`
	Spaces       []SpaceEntry `json:"spaces,omitempty"`
	Message      string       `json:"message,omitempty"`
}
