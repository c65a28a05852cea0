package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/galinborisov10-art/Crypto-signal-bot-sub007/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// ---------------------------------------------------------------------------
// In-memory fakes for the domain ports.
// ---------------------------------------------------------------------------

type fakePositionStore struct {
	mu        sync.Mutex
	positions map[string]domain.VirtualPosition
}

func newFakePositionStore() *fakePositionStore {
	return &fakePositionStore{positions: make(map[string]domain.VirtualPosition)}
}

func (s *fakePositionStore) Create(_ context.Context, pos domain.VirtualPosition) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.positions[pos.ID]; ok {
		return domain.ErrAlreadyExists
	}
	s.positions[pos.ID] = pos.Clone()
	return nil
}

func (s *fakePositionStore) Update(_ context.Context, pos domain.VirtualPosition) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.positions[pos.ID]; !ok {
		return domain.ErrNotFound
	}
	s.positions[pos.ID] = pos.Clone()
	return nil
}

func (s *fakePositionStore) GetByID(_ context.Context, id string) (domain.VirtualPosition, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	pos, ok := s.positions[id]
	if !ok {
		return domain.VirtualPosition{}, domain.ErrNotFound
	}
	return pos.Clone(), nil
}

func (s *fakePositionStore) ListActive(_ context.Context) ([]domain.VirtualPosition, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.VirtualPosition
	for _, p := range s.positions {
		if !p.Terminated() {
			out = append(out, p.Clone())
		}
	}
	return out, nil
}

func (s *fakePositionStore) ListActiveByAsset(_ context.Context, assetID string) ([]domain.VirtualPosition, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.VirtualPosition
	for _, p := range s.positions {
		if p.AssetID == assetID && !p.Terminated() {
			out = append(out, p.Clone())
		}
	}
	return out, nil
}

func (s *fakePositionStore) ListTerminatedBefore(_ context.Context, before time.Time) ([]domain.VirtualPosition, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.VirtualPosition
	for _, p := range s.positions {
		if p.Terminated() && p.LastEvaluatedAt.Before(before) {
			out = append(out, p.Clone())
		}
	}
	return out, nil
}

func (s *fakePositionStore) ListHistory(_ context.Context, _ domain.ListOpts) ([]domain.VirtualPosition, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.VirtualPosition
	for _, p := range s.positions {
		out = append(out, p.Clone())
	}
	return out, nil
}

type fakeTimelineStore struct {
	mu        sync.Mutex
	timelines map[string][]domain.TimelineEntry
}

func newFakeTimelineStore() *fakeTimelineStore {
	return &fakeTimelineStore{timelines: make(map[string][]domain.TimelineEntry)}
}

func (s *fakeTimelineStore) Append(_ context.Context, positionID string, entry domain.TimelineEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.timelines[positionID] = append(s.timelines[positionID], entry)
	return nil
}

func (s *fakeTimelineStore) Get(_ context.Context, positionID string) (domain.VirtualPositionTimeline, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries := append([]domain.TimelineEntry(nil), s.timelines[positionID]...)
	return domain.VirtualPositionTimeline{PositionID: positionID, Entries: entries}, nil
}

type fakeDecisionStore struct {
	mu      sync.Mutex
	records []domain.DecisionRecord
}

func (s *fakeDecisionStore) Insert(_ context.Context, rec domain.DecisionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, rec)
	return nil
}

func (s *fakeDecisionStore) ListRecent(_ context.Context, limit int) ([]domain.DecisionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := append([]domain.DecisionRecord(nil), s.records...)
	if limit > 0 && len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

func (s *fakeDecisionStore) ListByPosition(_ context.Context, positionID string, opts domain.ListOpts) ([]domain.DecisionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	// Newest first, like the real store.
	var out []domain.DecisionRecord
	for i := len(s.records) - 1; i >= 0; i-- {
		if s.records[i].PositionID == positionID {
			out = append(out, s.records[i])
		}
	}
	if opts.Limit > 0 && len(out) > opts.Limit {
		out = out[:opts.Limit]
	}
	return out, nil
}

type fakeSnapshotCache struct {
	mu        sync.Mutex
	snapshots map[string]domain.VirtualPosition
}

func newFakeSnapshotCache() *fakeSnapshotCache {
	return &fakeSnapshotCache{snapshots: make(map[string]domain.VirtualPosition)}
}

func (c *fakeSnapshotCache) Set(_ context.Context, pos domain.VirtualPosition) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.snapshots[pos.ID] = pos.Clone()
	return nil
}

func (c *fakeSnapshotCache) Get(_ context.Context, id string) (domain.VirtualPosition, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	pos, ok := c.snapshots[id]
	if !ok {
		return domain.VirtualPosition{}, domain.ErrNotFound
	}
	return pos.Clone(), nil
}

func (c *fakeSnapshotCache) Invalidate(_ context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.snapshots, id)
	return nil
}

type fakeMarketStateCache struct {
	mu     sync.Mutex
	states map[string]domain.MarketState
}

func newFakeMarketStateCache() *fakeMarketStateCache {
	return &fakeMarketStateCache{states: make(map[string]domain.MarketState)}
}

func (c *fakeMarketStateCache) Set(_ context.Context, assetID string, state domain.MarketState) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.states[assetID] = state
	return nil
}

func (c *fakeMarketStateCache) Get(_ context.Context, assetID string) (domain.MarketState, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	state, ok := c.states[assetID]
	if !ok {
		return domain.MarketState{}, domain.ErrNotFound
	}
	return state, nil
}

type fakePriceCache struct {
	mu             sync.Mutex
	prices         map[string]float64
	getPricesCalls int
}

func newFakePriceCache() *fakePriceCache {
	return &fakePriceCache{prices: make(map[string]float64)}
}

func (c *fakePriceCache) SetPrice(_ context.Context, assetID string, price float64, _ time.Time) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.prices[assetID] = price
	return nil
}

func (c *fakePriceCache) GetPrice(_ context.Context, assetID string) (float64, time.Time, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	price, ok := c.prices[assetID]
	if !ok {
		return 0, time.Time{}, domain.ErrNotFound
	}
	return price, time.Now(), nil
}

func (c *fakePriceCache) GetPrices(_ context.Context, assetIDs []string) (map[string]float64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.getPricesCalls++
	out := make(map[string]float64, len(assetIDs))
	for _, id := range assetIDs {
		if price, ok := c.prices[id]; ok {
			out[id] = price
		}
	}
	return out, nil
}

// fakeLockManager grants every acquire unless a key is marked held.
type fakeLockManager struct {
	mu       sync.Mutex
	held     map[string]bool
	acquired []string
}

func newFakeLockManager() *fakeLockManager {
	return &fakeLockManager{held: make(map[string]bool)}
}

func (lm *fakeLockManager) Acquire(_ context.Context, key string, _ time.Duration) (func(), error) {
	lm.mu.Lock()
	defer lm.mu.Unlock()
	if lm.held[key] {
		return nil, domain.ErrLockHeld
	}
	lm.acquired = append(lm.acquired, key)
	return func() {}, nil
}

type fakeBus struct {
	mu       sync.Mutex
	messages map[string][][]byte
	streams  map[string][][]byte
}

func newFakeBus() *fakeBus {
	return &fakeBus{
		messages: make(map[string][][]byte),
		streams:  make(map[string][][]byte),
	}
}

func (b *fakeBus) Publish(_ context.Context, channel string, payload []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.messages[channel] = append(b.messages[channel], payload)
	return nil
}

func (b *fakeBus) Subscribe(_ context.Context, _ string) (<-chan []byte, error) {
	ch := make(chan []byte)
	close(ch)
	return ch, nil
}

func (b *fakeBus) StreamAppend(_ context.Context, stream string, payload []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.streams[stream] = append(b.streams[stream], payload)
	return nil
}

func (b *fakeBus) StreamRead(_ context.Context, stream string, _ string, count int) ([]domain.StreamMessage, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []domain.StreamMessage
	for i, payload := range b.streams[stream] {
		if count > 0 && len(out) >= count {
			break
		}
		out = append(out, domain.StreamMessage{
			ID:      fmt.Sprintf("%d-0", i+1),
			Payload: payload,
		})
	}
	return out, nil
}

func (b *fakeBus) published(channel string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.messages[channel])
}

func (b *fakeBus) appended(stream string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.streams[stream])
}

type fakeAudit struct {
	mu     sync.Mutex
	events []string
}

func (a *fakeAudit) Log(_ context.Context, event string, _ map[string]any) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.events = append(a.events, event)
	return nil
}

func (a *fakeAudit) List(_ context.Context, _ domain.ListOpts) ([]domain.AuditEntry, error) {
	return nil, nil
}

type fakeNotifier struct {
	mu        sync.Mutex
	decisions []domain.DecisionRecord
	events    []string
}

func (n *fakeNotifier) NotifyDecision(_ context.Context, rec domain.DecisionRecord) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.decisions = append(n.decisions, rec)
	return nil
}

func (n *fakeNotifier) Notify(_ context.Context, event, _, _ string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
	return nil
}
