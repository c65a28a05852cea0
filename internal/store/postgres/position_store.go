package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/galinborisov10-art/Crypto-signal-bot-sub007/internal/domain"
)

// PositionStore implements domain.PositionStore using PostgreSQL.
type PositionStore struct {
	pool *pgxpool.Pool
}

// NewPositionStore creates a new PositionStore backed by the given connection pool.
func NewPositionStore(pool *pgxpool.Pool) *PositionStore {
	return &PositionStore{pool: pool}
}

const positionSelectCols = `id, asset_id, scenario_id, scenario_type, score, grade,
	risk_valid, stop_loss_poi, take_profit_pois, risk_reward,
	status, progress_percent, reached_targets, opened_at, last_evaluated_at`

func scanPositionRow(row pgx.Row) (domain.VirtualPosition, error) {
	var p domain.VirtualPosition
	var status string
	var reached []string

	err := row.Scan(
		&p.ID, &p.AssetID, &p.ScenarioID, &p.ScenarioType,
		&p.Score.Score, &p.Score.Grade,
		&p.Risk.Valid, &p.Risk.StopLossPOI, &p.Risk.TakeProfitPOIs, &p.Risk.RiskReward,
		&status, &p.ProgressPercent, &reached,
		&p.OpenedAt, &p.LastEvaluatedAt,
	)
	if err != nil {
		return domain.VirtualPosition{}, err
	}
	p.Status = domain.PositionStatus(status)
	p.ReachedTargets = toTargetIDs(reached)
	return p, nil
}

func scanPositionRows(rows pgx.Rows) ([]domain.VirtualPosition, error) {
	var positions []domain.VirtualPosition
	for rows.Next() {
		p, err := scanPositionRow(rows)
		if err != nil {
			return nil, err
		}
		positions = append(positions, p)
	}
	return positions, rows.Err()
}

func toTargetIDs(values []string) []domain.TargetID {
	if len(values) == 0 {
		return nil
	}
	out := make([]domain.TargetID, len(values))
	for i, v := range values {
		out[i] = domain.TargetID(v)
	}
	return out
}

func fromTargetIDs(targets []domain.TargetID) []string {
	out := make([]string, len(targets))
	for i, t := range targets {
		out[i] = string(t)
	}
	return out
}

// Create inserts a new virtual position snapshot.
func (s *PositionStore) Create(ctx context.Context, p domain.VirtualPosition) error {
	const query = `
		INSERT INTO virtual_positions (
			id, asset_id, scenario_id, scenario_type, score, grade,
			risk_valid, stop_loss_poi, take_profit_pois, risk_reward,
			status, progress_percent, reached_targets,
			opened_at, last_evaluated_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6,
			$7, $8, $9, $10,
			$11, $12, $13,
			$14, $15, NOW()
		)`

	_, err := s.pool.Exec(ctx, query,
		p.ID, p.AssetID, p.ScenarioID, p.ScenarioType,
		p.Score.Score, p.Score.Grade,
		p.Risk.Valid, p.Risk.StopLossPOI, p.Risk.TakeProfitPOIs, p.Risk.RiskReward,
		string(p.Status), p.ProgressPercent, fromTargetIDs(p.ReachedTargets),
		p.OpenedAt, p.LastEvaluatedAt,
	)
	if err != nil {
		return fmt.Errorf("postgres: create position %s: %w", p.ID, err)
	}
	return nil
}

// Update replaces the mutable fields of a position snapshot.
func (s *PositionStore) Update(ctx context.Context, p domain.VirtualPosition) error {
	const query = `
		UPDATE virtual_positions SET
			status            = $2,
			progress_percent  = $3,
			reached_targets   = $4,
			last_evaluated_at = $5,
			updated_at        = NOW()
		WHERE id = $1`

	tag, err := s.pool.Exec(ctx, query,
		p.ID, string(p.Status), p.ProgressPercent,
		fromTargetIDs(p.ReachedTargets), p.LastEvaluatedAt,
	)
	if err != nil {
		return fmt.Errorf("postgres: update position %s: %w", p.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// GetByID retrieves a single position by its ID.
func (s *PositionStore) GetByID(ctx context.Context, id string) (domain.VirtualPosition, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+positionSelectCols+` FROM virtual_positions WHERE id = $1`, id)

	p, err := scanPositionRow(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return domain.VirtualPosition{}, domain.ErrNotFound
		}
		return domain.VirtualPosition{}, fmt.Errorf("postgres: get position %s: %w", id, err)
	}
	return p, nil
}

// ListActive returns all positions that have not reached a terminal status.
func (s *PositionStore) ListActive(ctx context.Context) ([]domain.VirtualPosition, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+positionSelectCols+` FROM virtual_positions
		 WHERE status NOT IN ('completed', 'invalidated')
		 ORDER BY opened_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("postgres: list active positions: %w", err)
	}
	defer rows.Close()

	positions, err := scanPositionRows(rows)
	if err != nil {
		return nil, fmt.Errorf("postgres: scan active positions: %w", err)
	}
	return positions, nil
}

// ListActiveByAsset returns all non-terminated positions observed on the given
// asset. The evaluation feeder uses this to route price events.
func (s *PositionStore) ListActiveByAsset(ctx context.Context, assetID string) ([]domain.VirtualPosition, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+positionSelectCols+` FROM virtual_positions
		 WHERE asset_id = $1 AND status NOT IN ('completed', 'invalidated')
		 ORDER BY opened_at ASC`, assetID)
	if err != nil {
		return nil, fmt.Errorf("postgres: list active positions for %s: %w", assetID, err)
	}
	defer rows.Close()

	positions, err := scanPositionRows(rows)
	if err != nil {
		return nil, fmt.Errorf("postgres: scan active positions for %s: %w", assetID, err)
	}
	return positions, nil
}

// ListTerminatedBefore returns completed or invalidated positions last
// evaluated before the given cutoff. The archiver uses this to select cold
// history.
func (s *PositionStore) ListTerminatedBefore(ctx context.Context, before time.Time) ([]domain.VirtualPosition, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+positionSelectCols+` FROM virtual_positions
		 WHERE status IN ('completed', 'invalidated') AND last_evaluated_at < $1
		 ORDER BY last_evaluated_at ASC`, before)
	if err != nil {
		return nil, fmt.Errorf("postgres: list terminated positions: %w", err)
	}
	defer rows.Close()

	positions, err := scanPositionRows(rows)
	if err != nil {
		return nil, fmt.Errorf("postgres: scan terminated positions: %w", err)
	}
	return positions, nil
}

// ListHistory returns positions with pagination and optional time filtering.
func (s *PositionStore) ListHistory(ctx context.Context, opts domain.ListOpts) ([]domain.VirtualPosition, error) {
	query := `SELECT ` + positionSelectCols + ` FROM virtual_positions WHERE 1=1`
	args := []any{}
	argIdx := 1

	if opts.Since != nil {
		query += fmt.Sprintf(" AND opened_at >= $%d", argIdx)
		args = append(args, *opts.Since)
		argIdx++
	}
	if opts.Until != nil {
		query += fmt.Sprintf(" AND opened_at <= $%d", argIdx)
		args = append(args, *opts.Until)
		argIdx++
	}

	query += " ORDER BY opened_at DESC"

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
		return nil, fmt.Errorf("postgres: list position history: %w", err)
	}
	defer rows.Close()

	positions, err := scanPositionRows(rows)
	if err != nil {
		return nil, fmt.Errorf("postgres: scan position history: %w", err)
	}
	return positions, nil
}
