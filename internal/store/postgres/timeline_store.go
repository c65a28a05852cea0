package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/galinborisov10-art/Crypto-signal-bot-sub007/internal/domain"
)

// TimelineStore implements domain.TimelineStore using PostgreSQL. Rows are
// insert-only; the seq column preserves append order for entries sharing a
// timestamp.
type TimelineStore struct {
	pool *pgxpool.Pool
}

// NewTimelineStore creates a new TimelineStore backed by the given connection pool.
func NewTimelineStore(pool *pgxpool.Pool) *TimelineStore {
	return &TimelineStore{pool: pool}
}

// Append inserts one timeline entry for the given position.
func (s *TimelineStore) Append(ctx context.Context, positionID string, entry domain.TimelineEntry) error {
	const query = `
		INSERT INTO timeline_entries (
			position_id, evaluated_at, progress_percent,
			status, validity, invalidation_reason, guidance
		) VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := s.pool.Exec(ctx, query,
		positionID, entry.EvaluatedAt, entry.ProgressPercent,
		string(entry.Status), string(entry.Validity),
		string(entry.InvalidationReason), string(entry.Guidance),
	)
	if err != nil {
		return fmt.Errorf("postgres: append timeline entry for %s: %w", positionID, err)
	}
	return nil
}

// Get returns the full timeline for a position in append order.
func (s *TimelineStore) Get(ctx context.Context, positionID string) (domain.VirtualPositionTimeline, error) {
	const query = `
		SELECT evaluated_at, progress_percent, status, validity, invalidation_reason, guidance
		FROM timeline_entries
		WHERE position_id = $1
		ORDER BY seq ASC`

	rows, err := s.pool.Query(ctx, query, positionID)
	if err != nil {
		return domain.VirtualPositionTimeline{}, fmt.Errorf("postgres: get timeline for %s: %w", positionID, err)
	}
	defer rows.Close()

	tl := domain.VirtualPositionTimeline{PositionID: positionID}
	for rows.Next() {
		var e domain.TimelineEntry
		var status, validity, reason, guidance string

		if err := rows.Scan(&e.EvaluatedAt, &e.ProgressPercent, &status, &validity, &reason, &guidance); err != nil {
			return domain.VirtualPositionTimeline{}, fmt.Errorf("postgres: scan timeline entry: %w", err)
		}
		e.Status = domain.PositionStatus(status)
		e.Validity = domain.Validity(validity)
		e.InvalidationReason = domain.InvalidationReason(reason)
		e.Guidance = domain.Guidance(guidance)
		tl.Entries = append(tl.Entries, e)
	}
	if err := rows.Err(); err != nil {
		return domain.VirtualPositionTimeline{}, fmt.Errorf("postgres: get timeline rows for %s: %w", positionID, err)
	}
	return tl, nil
}
