package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/galinborisov10-art/Crypto-signal-bot-sub007/internal/domain"
)

// ArchiveRunner periodically exports terminated position timelines that fell
// out of the retention window to cold storage. It never deletes from the
// primary store.
type ArchiveRunner struct {
	archiver  domain.Archiver
	interval  time.Duration
	retention time.Duration
	logger    *slog.Logger
}

// NewArchiveRunner creates an ArchiveRunner that archives positions terminated
// more than retentionDays ago, checking every interval.
func NewArchiveRunner(archiver domain.Archiver, interval time.Duration, retentionDays int, logger *slog.Logger) *ArchiveRunner {
	if interval <= 0 {
		interval = 6 * time.Hour
	}
	if retentionDays < 1 {
		retentionDays = 1
	}
	return &ArchiveRunner{
		archiver:  archiver,
		interval:  interval,
		retention: time.Duration(retentionDays) * 24 * time.Hour,
		logger:    logger.With(slog.String("component", "archive_runner")),
	}
}

// Run executes archive passes until ctx is cancelled. One pass runs
// immediately on start so a long-stopped bot catches up without waiting a full
// interval.
func (r *ArchiveRunner) Run(ctx context.Context) error {
	r.logger.Info("archive runner started",
		slog.Duration("interval", r.interval),
		slog.Duration("retention", r.retention),
	)
	defer r.logger.Info("archive runner stopped")

	r.runOnce(ctx)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			r.runOnce(ctx)
		}
	}
}

func (r *ArchiveRunner) runOnce(ctx context.Context) {
	cutoff := time.Now().UTC().Add(-r.retention)

	count, err := r.archiver.ArchiveTimelines(ctx, cutoff)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		r.logger.ErrorContext(ctx, "archive pass failed",
			slog.String("error", err.Error()),
		)
		return
	}
	if count > 0 {
		r.logger.InfoContext(ctx, "archive pass complete",
			slog.Int64("archived", count),
			slog.String("cutoff", cutoff.Format(time.RFC3339)),
		)
	}
}
