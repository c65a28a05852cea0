package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/galinborisov10-art/Crypto-signal-bot-sub007/internal/domain"
	"github.com/galinborisov10-art/Crypto-signal-bot-sub007/internal/evaluate"
)

// DecisionNotifier is the slice of the notifier the evaluation service needs.
type DecisionNotifier interface {
	NotifyDecision(ctx context.Context, rec domain.DecisionRecord) error
	Notify(ctx context.Context, event, title, message string) error
}

// Notification event types the evaluation service emits.
const (
	eventPositionInvalidated = "position_invalidated"
	eventPositionCompleted   = "position_completed"
)

// Config holds the evaluation loop parameters.
type Config struct {
	// Interval is how often EvaluateAll re-runs over the active set.
	Interval time.Duration
	// LockTTL bounds how long a per-position evaluation lock is held.
	LockTTL time.Duration
	// MaxConcurrent bounds parallel position evaluations.
	MaxConcurrent int
}

// EvaluationService drives the evaluation pipeline over persisted positions.
// Each tick runs under a per-position distributed lock so the append-only
// timeline always has a single writer, then persists the new snapshot, the
// timeline entry, and the decision, and fans the decision out to the bus and
// the notifier.
type EvaluationService struct {
	positions domain.PositionStore
	timelines domain.TimelineStore
	decisions domain.DecisionStore
	snapshots domain.SnapshotCache
	states    domain.MarketStateCache
	prices    domain.PriceCache
	locks     domain.LockManager
	bus       domain.SignalBus
	audit     domain.AuditStore
	notifier  DecisionNotifier

	cfg    Config
	logger *slog.Logger
}

// NewEvaluationService creates an EvaluationService. notifier may be nil when
// no notification channels are configured.
func NewEvaluationService(
	positions domain.PositionStore,
	timelines domain.TimelineStore,
	decisions domain.DecisionStore,
	snapshots domain.SnapshotCache,
	states domain.MarketStateCache,
	prices domain.PriceCache,
	locks domain.LockManager,
	bus domain.SignalBus,
	audit domain.AuditStore,
	notifier DecisionNotifier,
	cfg Config,
	logger *slog.Logger,
) *EvaluationService {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Minute
	}
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = 30 * time.Second
	}
	if cfg.MaxConcurrent < 1 {
		cfg.MaxConcurrent = 1
	}
	return &EvaluationService{
		positions: positions,
		timelines: timelines,
		decisions: decisions,
		snapshots: snapshots,
		states:    states,
		prices:    prices,
		locks:     locks,
		bus:       bus,
		audit:     audit,
		notifier:  notifier,
		cfg:       cfg,
		logger:    logger.With(slog.String("component", "evaluation_service")),
	}
}

// HandlePrice evaluates every active position tracking the given asset against
// the new price. It implements the feed's price handler.
func (s *EvaluationService) HandlePrice(ctx context.Context, assetID string, price float64, at time.Time) error {
	positions, err := s.positions.ListActiveByAsset(ctx, assetID)
	if err != nil {
		return fmt.Errorf("service: list positions for %s: %w", assetID, err)
	}
	if len(positions) == 0 {
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.MaxConcurrent)
	for _, pos := range positions {
		id := pos.ID
		g.Go(func() error {
			if tickErr := s.evaluateOne(gctx, id, price, at); tickErr != nil {
				s.logger.ErrorContext(gctx, "evaluate position failed",
					slog.String("position_id", id),
					slog.String("asset_id", assetID),
					slog.String("error", tickErr.Error()),
				)
			}
			return nil
		})
	}
	return g.Wait()
}

// Run re-evaluates the whole active set on a fixed interval using the latest
// cached prices. It complements the price-driven path for quiet markets where
// stall and time-decay checks must still advance.
func (s *EvaluationService) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	s.logger.Info("evaluation loop started",
		slog.Duration("interval", s.cfg.Interval),
	)
	defer s.logger.Info("evaluation loop stopped")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := s.EvaluateAll(ctx); err != nil && !errors.Is(err, context.Canceled) {
				s.logger.ErrorContext(ctx, "interval evaluation failed",
					slog.String("error", err.Error()),
				)
			}
		}
	}
}

// EvaluateAll runs one evaluation pass over every active position using the
// latest cached price per asset. Positions whose asset has no cached price or
// market state are skipped until data arrives.
func (s *EvaluationService) EvaluateAll(ctx context.Context) error {
	positions, err := s.positions.ListActive(ctx)
	if err != nil {
		return fmt.Errorf("service: list active positions: %w", err)
	}
	if len(positions) == 0 {
		return nil
	}

	seen := make(map[string]bool, len(positions))
	assets := make([]string, 0, len(positions))
	for _, pos := range positions {
		if !seen[pos.AssetID] {
			seen[pos.AssetID] = true
			assets = append(assets, pos.AssetID)
		}
	}
	prices, err := s.prices.GetPrices(ctx, assets)
	if err != nil {
		return fmt.Errorf("service: get cached prices: %w", err)
	}

	now := time.Now().UTC()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.MaxConcurrent)
	for _, pos := range positions {
		price, ok := prices[pos.AssetID]
		if !ok {
			s.logger.DebugContext(ctx, "no cached price, skipping",
				slog.String("position_id", pos.ID),
				slog.String("asset_id", pos.AssetID),
			)
			continue
		}
		g.Go(func() error {
			if err := s.evaluateOne(gctx, pos.ID, price, now); err != nil {
				s.logger.ErrorContext(gctx, "evaluate position failed",
					slog.String("position_id", pos.ID),
					slog.String("error", err.Error()),
				)
			}
			return nil
		})
	}
	return g.Wait()
}

// evaluateOne runs the full pipeline for a single position under its lock and
// persists every output. A held lock means another writer is already on this
// position; the tick is skipped, not queued.
func (s *EvaluationService) evaluateOne(ctx context.Context, positionID string, price float64, at time.Time) error {
	unlock, err := s.locks.Acquire(ctx, "eval:"+positionID, s.cfg.LockTTL)
	if err != nil {
		if errors.Is(err, domain.ErrLockHeld) {
			s.logger.DebugContext(ctx, "evaluation lock held, skipping tick",
				slog.String("position_id", positionID),
			)
			return nil
		}
		return fmt.Errorf("service: acquire lock for %s: %w", positionID, err)
	}
	defer unlock()

	// Reload inside the lock so the tick always starts from the latest
	// persisted snapshot.
	pos, err := s.positions.GetByID(ctx, positionID)
	if err != nil {
		return fmt.Errorf("service: load position %s: %w", positionID, err)
	}
	if pos.Terminated() {
		return nil
	}

	state, err := s.states.Get(ctx, pos.AssetID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.logger.DebugContext(ctx, "no market state, skipping tick",
				slog.String("position_id", pos.ID),
				slog.String("asset_id", pos.AssetID),
			)
			return nil
		}
		return fmt.Errorf("service: load market state for %s: %w", pos.AssetID, err)
	}

	timeline, err := s.timelines.Get(ctx, pos.ID)
	if err != nil {
		return fmt.Errorf("service: load timeline for %s: %w", pos.ID, err)
	}

	res := evaluate.Tick(evaluate.TickInput{
		Position: pos,
		Price:    price,
		Market:   state,
		Timeline: timeline,
		At:       at,
	})

	for _, d := range res.Diagnostics {
		s.logger.WarnContext(ctx, "evaluation diagnostic",
			slog.String("position_id", pos.ID),
			slog.String("code", string(d.Code)),
			slog.String("detail", d.Detail),
		)
	}

	next := res.Position
	// A completed run beats a same-tick structural invalidation; otherwise the
	// invalidation verdict is applied to the stored snapshot.
	if res.Reanalysis.Validity == domain.ValidityInvalidated && next.Status != domain.StatusCompleted {
		next.Status = domain.StatusInvalidated
	}

	if err := s.positions.Update(ctx, next); err != nil {
		return fmt.Errorf("service: update position %s: %w", pos.ID, err)
	}

	// Persist the grown tail. A stale observation leaves the timeline
	// unchanged and nothing new to store.
	if len(res.Timeline.Entries) > len(timeline.Entries) {
		entry := res.Timeline.Entries[len(res.Timeline.Entries)-1]
		if err := s.timelines.Append(ctx, pos.ID, entry); err != nil {
			return fmt.Errorf("service: append timeline entry for %s: %w", pos.ID, err)
		}
	}

	rec := domain.DecisionRecord{
		ID:          uuid.New().String(),
		PositionID:  pos.ID,
		Stance:      res.Policy.Stance,
		Confidence:  res.Policy.Confidence,
		Permission:  res.Guardrail.Permission,
		Action:      res.Decision.Action,
		Reason:      res.Decision.Reason,
		EvaluatedAt: at,
	}

	prevStance := s.lastStance(ctx, pos.ID)

	if err := s.decisions.Insert(ctx, rec); err != nil {
		return fmt.Errorf("service: insert decision for %s: %w", pos.ID, err)
	}

	// Terminated positions leave the hot set; everything else refreshes it.
	if next.Terminated() {
		if cacheErr := s.snapshots.Invalidate(ctx, pos.ID); cacheErr != nil {
			s.logger.WarnContext(ctx, "snapshot cache invalidate failed",
				slog.String("position_id", pos.ID),
				slog.String("error", cacheErr.Error()),
			)
		}
	} else if cacheErr := s.snapshots.Set(ctx, next); cacheErr != nil {
		s.logger.WarnContext(ctx, "snapshot cache set failed",
			slog.String("position_id", pos.ID),
			slog.String("error", cacheErr.Error()),
		)
	}

	s.publishDecision(ctx, next, rec)
	s.notifyTransitions(ctx, pos, next, rec, prevStance)

	s.logger.InfoContext(ctx, "position evaluated",
		slog.String("position_id", pos.ID),
		slog.String("status", string(next.Status)),
		slog.Float64("progress", next.ProgressPercent),
		slog.String("stance", string(rec.Stance)),
		slog.String("action", string(rec.Action)),
	)

	return nil
}

// lastStance returns the stance of the most recent stored decision, or ""
// when the position has no decisions yet.
func (s *EvaluationService) lastStance(ctx context.Context, positionID string) domain.Stance {
	prev, err := s.decisions.ListByPosition(ctx, positionID, domain.ListOpts{Limit: 1})
	if err != nil || len(prev) == 0 {
		return ""
	}
	return prev[0].Stance
}

// decisionsStream is the durable Redis stream decisions are appended to, so
// consumers that were down when a decision fired can still catch up.
const decisionsStream = "decisions"

// publishDecision emits the decision on the "decisions" pub/sub channel and
// appends it to the durable decisions stream.
func (s *EvaluationService) publishDecision(ctx context.Context, pos domain.VirtualPosition, rec domain.DecisionRecord) {
	evt, err := json.Marshal(map[string]any{
		"event":       "decision",
		"decision_id": rec.ID,
		"position_id": rec.PositionID,
		"asset_id":    pos.AssetID,
		"stance":      string(rec.Stance),
		"confidence":  string(rec.Confidence),
		"permission":  string(rec.Permission),
		"action":      string(rec.Action),
		"reason":      string(rec.Reason),
		"status":      string(pos.Status),
		"progress":    pos.ProgressPercent,
		"at":          rec.EvaluatedAt.Format(time.RFC3339Nano),
	})
	if err != nil {
		return
	}
	if pubErr := s.bus.Publish(ctx, decisionsStream, evt); pubErr != nil {
		s.logger.WarnContext(ctx, "publish decision failed",
			slog.String("position_id", rec.PositionID),
			slog.String("error", pubErr.Error()),
		)
	}
	if appendErr := s.bus.StreamAppend(ctx, decisionsStream, evt); appendErr != nil {
		s.logger.WarnContext(ctx, "append decision to stream failed",
			slog.String("position_id", rec.PositionID),
			slog.String("error", appendErr.Error()),
		)
	}
}

// notifyTransitions sends operator notifications when the stance changes and
// when the position reaches a terminal status, and records terminal
// transitions in the audit log.
func (s *EvaluationService) notifyTransitions(ctx context.Context, before, after domain.VirtualPosition, rec domain.DecisionRecord, prevStance domain.Stance) {
	terminalEvent := ""
	if !before.Terminated() && after.Terminated() {
		switch after.Status {
		case domain.StatusCompleted:
			terminalEvent = eventPositionCompleted
		case domain.StatusInvalidated:
			terminalEvent = eventPositionInvalidated
		}
	}

	if terminalEvent != "" {
		if auditErr := s.audit.Log(ctx, terminalEvent, map[string]any{
			"position_id": after.ID,
			"asset_id":    after.AssetID,
			"status":      string(after.Status),
			"progress":    after.ProgressPercent,
			"stance":      string(rec.Stance),
		}); auditErr != nil {
			s.logger.WarnContext(ctx, "audit log failed",
				slog.String("position_id", after.ID),
				slog.String("error", auditErr.Error()),
			)
		}
	}

	if s.notifier == nil {
		return
	}

	if rec.Stance != prevStance {
		if err := s.notifier.NotifyDecision(ctx, rec); err != nil {
			s.logger.WarnContext(ctx, "decision notification failed",
				slog.String("position_id", rec.PositionID),
				slog.String("error", err.Error()),
			)
		}
	}

	if terminalEvent != "" {
		title := fmt.Sprintf("Position %s", after.Status)
		msg := fmt.Sprintf("position %s on %s finished at %.1f%% progress",
			after.ID, after.AssetID, after.ProgressPercent)
		if err := s.notifier.Notify(ctx, terminalEvent, title, msg); err != nil {
			s.logger.WarnContext(ctx, "terminal notification failed",
				slog.String("position_id", after.ID),
				slog.String("error", err.Error()),
			)
		}
	}
}
