package s3blob

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/galinborisov10-art/Crypto-signal-bot-sub007/internal/domain"
)

// ---------------------------------------------------------------------------
// Narrow store interfaces required by the archiver.
//
// The archiver only requires the query methods it actually calls, not the
// full domain store interfaces. The Postgres stores satisfy these implicitly.
// ---------------------------------------------------------------------------

// PositionArchiveStore provides read access to terminated positions for
// archival purposes.
type PositionArchiveStore interface {
	// ListTerminatedBefore returns completed or invalidated positions last
	// evaluated strictly before the given cutoff time.
	ListTerminatedBefore(ctx context.Context, before time.Time) ([]domain.VirtualPosition, error)
}

// TimelineArchiveStore provides read access to position timelines for
// archival purposes.
type TimelineArchiveStore interface {
	Get(ctx context.Context, positionID string) (domain.VirtualPositionTimeline, error)
}

// archivedTimeline is the JSONL record written per terminated position: the
// final snapshot together with its full observation history.
type archivedTimeline struct {
	Position domain.VirtualPosition         `json:"position"`
	Timeline domain.VirtualPositionTimeline `json:"timeline"`
}

// ArchiveImpl implements domain.Archiver by querying the stores for
// terminated positions, serializing each with its timeline to JSONL, and
// uploading the result to S3.
//
// Deletion of the archived records from the primary store is intentionally
// NOT performed here -- that is a separate, explicit step to be executed
// after the archive has been verified.
type ArchiveImpl struct {
	writer    domain.BlobWriter
	positions PositionArchiveStore
	timelines TimelineArchiveStore
	audit     domain.AuditStore
}

// NewArchiver creates a new ArchiveImpl.
func NewArchiver(
	writer domain.BlobWriter,
	positions PositionArchiveStore,
	timelines TimelineArchiveStore,
	audit domain.AuditStore,
) *ArchiveImpl {
	return &ArchiveImpl{
		writer:    writer,
		positions: positions,
		timelines: timelines,
		audit:     audit,
	}
}

// ArchiveTimelines queries all terminated positions last evaluated before the
// cutoff, serializes each with its full timeline to JSONL, and uploads the
// file to S3 at archive/timelines/YYYY-MM.jsonl. The archival event is
// recorded in the audit log and the count of archived positions is returned.
func (a *ArchiveImpl) ArchiveTimelines(ctx context.Context, before time.Time) (int64, error) {
	positions, err := a.positions.ListTerminatedBefore(ctx, before)
	if err != nil {
		return 0, fmt.Errorf("s3blob: archive timelines query: %w", err)
	}
	if len(positions) == 0 {
		return 0, nil
	}

	records := make([]archivedTimeline, 0, len(positions))
	for _, pos := range positions {
		tl, err := a.timelines.Get(ctx, pos.ID)
		if err != nil {
			return 0, fmt.Errorf("s3blob: archive timeline for %s: %w", pos.ID, err)
		}
		records = append(records, archivedTimeline{Position: pos, Timeline: tl})
	}

	buf, err := marshalJSONL(records)
	if err != nil {
		return 0, fmt.Errorf("s3blob: archive timelines marshal: %w", err)
	}

	path := archivePath("timelines", before)
	if err := a.writer.Put(ctx, path, bytes.NewReader(buf), "application/x-ndjson"); err != nil {
		return 0, fmt.Errorf("s3blob: archive timelines upload: %w", err)
	}

	count := int64(len(records))

	if err := a.audit.Log(ctx, "archive.timelines", map[string]any{
		"path":   path,
		"count":  count,
		"before": before.Format(time.RFC3339),
	}); err != nil {
		return count, fmt.Errorf("s3blob: archive timelines audit log: %w", err)
	}

	return count, nil
}

// archivePath builds the S3 key for an archive file, partitioned by the
// year-month of the cutoff time.
//
//	archive/timelines/2025-06.jsonl
func archivePath(kind string, before time.Time) string {
	return fmt.Sprintf("archive/%s/%s.jsonl", kind, before.Format("2006-01"))
}

// marshalJSONL serialises a slice of values as newline-delimited JSON (JSONL).
// Each element is marshalled as a single compact JSON line followed by '\n'.
func marshalJSONL[T any](records []T) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	for i, rec := range records {
		if err := enc.Encode(rec); err != nil {
			return nil, fmt.Errorf("jsonl encode record %d: %w", i, err)
		}
	}
	return buf.Bytes(), nil
}

// Compile-time interface check.
var _ domain.Archiver = (*ArchiveImpl)(nil)
