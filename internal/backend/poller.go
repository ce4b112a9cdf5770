package backend

import (
	"context"
	"log/slog"
	"slices"
	"time"
)

// StatusFetcher reads one status snapshot per call. *Client satisfies
// this; tests substitute scripted fetchers.
type StatusFetcher interface {
	FetchStatus(ctx context.Context, path string) (*StatusSnapshot, error)
}

// PollRequest describes one wait-for-terminal-state loop. A status
// outside both terminal sets means the operation is still in progress.
type PollRequest struct {
	Path        string
	Completed   []string
	Failed      []string
	MaxAttempts int
	Interval    time.Duration
}

// Poller drives a bounded fixed-interval retry loop against a status
// endpoint. It carries no state across ticks beyond the attempt
// counter; every snapshot is re-fetched and consumed exactly once.
type Poller struct {
	fetcher StatusFetcher
	sleep   func(ctx context.Context, d time.Duration) error
	log     *slog.Logger
}

// NewPoller creates a poller over the given fetcher.
func NewPoller(fetcher StatusFetcher, log *slog.Logger) *Poller {
	if log == nil {
		log = slog.Default()
	}

	return &Poller{
		fetcher: fetcher,
		sleep:   sleepContext,
		log:     log.With("component", "poller"),
	}
}

// Wait polls req.Path until a terminal status is observed or the
// attempt budget is exhausted. A completed status returns the snapshot
// immediately; a failed status returns *OperationFailedError with the
// snapshot's error or message; exhausting MaxAttempts returns
// *PollTimeoutError. The interval is fixed, with no backoff or jitter:
// the backend jobs are batch work measured in tens of seconds, and a
// generous flat interval keeps status traffic predictable.
func (p *Poller) Wait(ctx context.Context, req PollRequest) (*StatusSnapshot, error) {
	for attempt := 1; attempt <= req.MaxAttempts; attempt++ {
		snapshot, err := p.fetcher.FetchStatus(ctx, req.Path)
		if err != nil {
			return nil, err
		}

		switch {
		case slices.Contains(req.Completed, snapshot.Status):
			p.log.Debug("operation completed",
				"path", req.Path, "status", snapshot.Status, "attempt", attempt)

			return snapshot, nil

		case slices.Contains(req.Failed, snapshot.Status):
			p.log.Debug("operation failed",
				"path", req.Path, "status", snapshot.Status, "attempt", attempt)

			return nil, &OperationFailedError{
				Status: snapshot.Status,
				Reason: snapshot.FailureReason(),
			}
		}

		// Still in progress. Skip the sleep after the final attempt;
		// the budget is spent either way.
		if attempt == req.MaxAttempts {
			break
		}

		if err := p.sleep(ctx, req.Interval); err != nil {
			return nil, err
		}
	}

	return nil, &PollTimeoutError{Attempts: req.MaxAttempts}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
