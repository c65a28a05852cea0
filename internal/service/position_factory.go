// Package service orchestrates the position lifecycle around the evaluation
// core: opening virtual positions, running evaluation ticks under per-position
// locks, persisting the results, and fanning decisions out to the bus and the
// notification channels.
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/galinborisov10-art/Crypto-signal-bot-sub007/internal/domain"
)

// OpenPositionInput carries everything needed to open a virtual position: the
// upstream entry scenario, its confluence score, the risk contract, and the
// asset the scenario was observed on.
type OpenPositionInput struct {
	AssetID  string
	Scenario domain.EntryScenario
	Score    domain.ConfluenceScore
	Risk     domain.RiskContract
}

// PositionFactory opens virtual positions from upstream entry scenarios.
type PositionFactory struct {
	positions domain.PositionStore
	snapshots domain.SnapshotCache
	bus       domain.SignalBus
	audit     domain.AuditStore
	logger    *slog.Logger
}

// NewPositionFactory creates a PositionFactory with all required dependencies.
func NewPositionFactory(
	positions domain.PositionStore,
	snapshots domain.SnapshotCache,
	bus domain.SignalBus,
	audit domain.AuditStore,
	logger *slog.Logger,
) *PositionFactory {
	return &PositionFactory{
		positions: positions,
		snapshots: snapshots,
		bus:       bus,
		audit:     audit,
		logger:    logger.With(slog.String("component", "position_factory")),
	}
}

// OpenPosition validates the scenario and risk contract and creates a new
// virtual position tracking them. It refuses to open on an invalid scenario
// (domain.ErrScenarioNotValid) or on a risk contract that is invalid or below
// the minimum risk/reward ratio (domain.ErrRiskNotValid). A fresh position
// starts open with zero progress and no reached targets.
func (f *PositionFactory) OpenPosition(ctx context.Context, in OpenPositionInput) (domain.VirtualPosition, error) {
	if !in.Scenario.Valid {
		return domain.VirtualPosition{}, domain.ErrScenarioNotValid
	}
	if !in.Risk.Valid || in.Risk.RiskReward < domain.MinRiskReward {
		return domain.VirtualPosition{}, domain.ErrRiskNotValid
	}

	now := time.Now().UTC()
	pos := domain.VirtualPosition{
		ID:              uuid.New().String(),
		AssetID:         in.AssetID,
		ScenarioID:      in.Scenario.ID,
		ScenarioType:    in.Scenario.Type,
		Score:           in.Score,
		Risk:            in.Risk,
		Status:          domain.StatusOpen,
		ProgressPercent: 0,
		OpenedAt:        now,
		LastEvaluatedAt: now,
	}

	if err := f.positions.Create(ctx, pos); err != nil {
		return domain.VirtualPosition{}, fmt.Errorf("service: create position: %w", err)
	}

	if cacheErr := f.snapshots.Set(ctx, pos); cacheErr != nil {
		f.logger.WarnContext(ctx, "snapshot cache set failed",
			slog.String("position_id", pos.ID),
			slog.String("error", cacheErr.Error()),
		)
	}

	evt, _ := json.Marshal(map[string]any{
		"event":         "position_opened",
		"position_id":   pos.ID,
		"asset_id":      pos.AssetID,
		"scenario_id":   pos.ScenarioID,
		"scenario_type": pos.ScenarioType,
		"risk_reward":   pos.Risk.RiskReward,
	})
	if pubErr := f.bus.Publish(ctx, "positions", evt); pubErr != nil {
		f.logger.WarnContext(ctx, "publish position_opened failed",
			slog.String("position_id", pos.ID),
			slog.String("error", pubErr.Error()),
		)
	}

	if auditErr := f.audit.Log(ctx, "position_opened", map[string]any{
		"position_id":   pos.ID,
		"asset_id":      pos.AssetID,
		"scenario_id":   pos.ScenarioID,
		"scenario_type": pos.ScenarioType,
		"risk_reward":   pos.Risk.RiskReward,
		"score":         pos.Score.Score,
		"grade":         pos.Score.Grade,
	}); auditErr != nil {
		f.logger.WarnContext(ctx, "audit log failed",
			slog.String("position_id", pos.ID),
			slog.String("error", auditErr.Error()),
		)
	}

	f.logger.InfoContext(ctx, "position opened",
		slog.String("position_id", pos.ID),
		slog.String("asset_id", pos.AssetID),
		slog.String("scenario_type", pos.ScenarioType),
		slog.Float64("risk_reward", pos.Risk.RiskReward),
	)

	return pos, nil
}
