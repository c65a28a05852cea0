package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/galinborisov10-art/Crypto-signal-bot-sub007/internal/domain"
)

// DecisionStore implements domain.DecisionStore using PostgreSQL.
type DecisionStore struct {
	pool *pgxpool.Pool
}

// NewDecisionStore creates a new DecisionStore backed by the given connection pool.
func NewDecisionStore(pool *pgxpool.Pool) *DecisionStore {
	return &DecisionStore{pool: pool}
}

const decisionSelectCols = `id, position_id, stance, confidence, permission, action, reason, evaluated_at`

func scanDecisionRows(rows pgx.Rows) ([]domain.DecisionRecord, error) {
	var records []domain.DecisionRecord
	for rows.Next() {
		var r domain.DecisionRecord
		var stance, confidence, permission, action, reason string

		if err := rows.Scan(
			&r.ID, &r.PositionID,
			&stance, &confidence, &permission, &action, &reason,
			&r.EvaluatedAt,
		); err != nil {
			return nil, err
		}
		r.Stance = domain.Stance(stance)
		r.Confidence = domain.Confidence(confidence)
		r.Permission = domain.Permission(permission)
		r.Action = domain.Action(action)
		r.Reason = domain.GuardrailReason(reason)
		records = append(records, r)
	}
	return records, rows.Err()
}

// Insert persists one pipeline decision.
func (s *DecisionStore) Insert(ctx context.Context, rec domain.DecisionRecord) error {
	const query = `
		INSERT INTO decisions (
			id, position_id, stance, confidence, permission, action, reason, evaluated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := s.pool.Exec(ctx, query,
		rec.ID, rec.PositionID,
		string(rec.Stance), string(rec.Confidence),
		string(rec.Permission), string(rec.Action), string(rec.Reason),
		rec.EvaluatedAt,
	)
	if err != nil {
		return fmt.Errorf("postgres: insert decision %s: %w", rec.ID, err)
	}
	return nil
}

// ListRecent returns the most recent decisions across all positions.
func (s *DecisionStore) ListRecent(ctx context.Context, limit int) ([]domain.DecisionRecord, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.pool.Query(ctx,
		`SELECT `+decisionSelectCols+` FROM decisions
		 ORDER BY evaluated_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("postgres: list recent decisions: %w", err)
	}
	defer rows.Close()

	records, err := scanDecisionRows(rows)
	if err != nil {
		return nil, fmt.Errorf("postgres: scan recent decisions: %w", err)
	}
	return records, nil
}

// ListByPosition returns decisions for one position with pagination and
// optional time filtering.
func (s *DecisionStore) ListByPosition(ctx context.Context, positionID string, opts domain.ListOpts) ([]domain.DecisionRecord, error) {
	query := `SELECT ` + decisionSelectCols + ` FROM decisions WHERE position_id = $1`
	args := []any{positionID}
	argIdx := 2

	if opts.Since != nil {
		query += fmt.Sprintf(" AND evaluated_at >= $%d", argIdx)
		args = append(args, *opts.Since)
		argIdx++
	}
	if opts.Until != nil {
		query += fmt.Sprintf(" AND evaluated_at <= $%d", argIdx)
		args = append(args, *opts.Until)
		argIdx++
	}

	query += " ORDER BY evaluated_at DESC"

	if opts.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argIdx)
		args = append(args, opts.Limit)
		argIdx++
	}
	if opts.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argIdx)
		args = append(args, opts.Offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: list decisions for %s: %w", positionID, err)
	}
	defer rows.Close()

	records, err := scanDecisionRows(rows)
	if err != nil {
		return nil, fmt.Errorf("postgres: scan decisions for %s: %w", positionID, err)
	}
	return records, nil
}
