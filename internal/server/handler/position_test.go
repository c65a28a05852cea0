package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/galinborisov10-art/Crypto-signal-bot-sub007/internal/domain"
)

func testPosition(id string, progress float64) domain.VirtualPosition {
	return domain.VirtualPosition{
		ID:           id,
		AssetID:      "btcusdt",
		ScenarioID:   "scn-1",
		ScenarioType: "liquidity_sweep_reversal",
		Score:        domain.ConfluenceScore{Score: 82.5, Grade: "A"},
		Risk: domain.RiskContract{
			Valid:          true,
			StopLossPOI:    "sl",
			TakeProfitPOIs: []string{"t1", "t2"},
			RiskReward:     3.0,
		},
		Status:          domain.StatusProgressing,
		ProgressPercent: progress,
		OpenedAt:        time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		LastEvaluatedAt: time.Date(2025, 6, 1, 12, 5, 0, 0, time.UTC),
	}
}

type stubPositionReader struct {
	positions map[string]domain.VirtualPosition
	getCalls  int
}

func (s *stubPositionReader) GetByID(_ context.Context, id string) (domain.VirtualPosition, error) {
	s.getCalls++
	pos, ok := s.positions[id]
	if !ok {
		return domain.VirtualPosition{}, domain.ErrNotFound
	}
	return pos, nil
}

func (s *stubPositionReader) ListActive(context.Context) ([]domain.VirtualPosition, error) {
	var out []domain.VirtualPosition
	for _, p := range s.positions {
		out = append(out, p)
	}
	return out, nil
}

func (s *stubPositionReader) ListHistory(context.Context, domain.ListOpts) ([]domain.VirtualPosition, error) {
	return s.ListActive(context.Background())
}

type stubTimelineReader struct{}

func (stubTimelineReader) Get(_ context.Context, positionID string) (domain.VirtualPositionTimeline, error) {
	return domain.VirtualPositionTimeline{PositionID: positionID}, nil
}

type stubSnapshots struct {
	snapshots map[string]domain.VirtualPosition
	getCalls  int
}

func (s *stubSnapshots) Get(_ context.Context, id string) (domain.VirtualPosition, error) {
	s.getCalls++
	pos, ok := s.snapshots[id]
	if !ok {
		return domain.VirtualPosition{}, domain.ErrNotFound
	}
	return pos, nil
}

func getPositionRequest(id string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/api/positions/"+id, nil)
	req.SetPathValue("id", id)
	return req
}

func TestGetPosition_ServesFromSnapshotCache(t *testing.T) {
	store := &stubPositionReader{positions: map[string]domain.VirtualPosition{
		"pos-1": testPosition("pos-1", 10),
	}}
	cache := &stubSnapshots{snapshots: map[string]domain.VirtualPosition{
		"pos-1": testPosition("pos-1", 42),
	}}
	h := NewPositionHandler(store, stubTimelineReader{}, cache, slog.New(slog.DiscardHandler))

	rec := httptest.NewRecorder()
	h.GetPosition(rec, getPositionRequest("pos-1"))

	require.Equal(t, http.StatusOK, rec.Code)
	var view struct {
		ProgressPercent float64 `json:"progress_percent"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	// The cached snapshot wins; the store is never consulted.
	assert.Equal(t, 42.0, view.ProgressPercent)
	assert.Equal(t, 1, cache.getCalls)
	assert.Equal(t, 0, store.getCalls)
}

func TestGetPosition_FallsBackToStoreOnCacheMiss(t *testing.T) {
	store := &stubPositionReader{positions: map[string]domain.VirtualPosition{
		"pos-1": testPosition("pos-1", 10),
	}}
	cache := &stubSnapshots{snapshots: map[string]domain.VirtualPosition{}}
	h := NewPositionHandler(store, stubTimelineReader{}, cache, slog.New(slog.DiscardHandler))

	rec := httptest.NewRecorder()
	h.GetPosition(rec, getPositionRequest("pos-1"))

	require.Equal(t, http.StatusOK, rec.Code)
	var view struct {
		ID              string  `json:"id"`
		ProgressPercent float64 `json:"progress_percent"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.Equal(t, "pos-1", view.ID)
	assert.Equal(t, 10.0, view.ProgressPercent)
	assert.Equal(t, 1, store.getCalls)
}

func TestGetPosition_UnknownIDIs404(t *testing.T) {
	h := NewPositionHandler(
		&stubPositionReader{positions: map[string]domain.VirtualPosition{}},
		stubTimelineReader{},
		&stubSnapshots{snapshots: map[string]domain.VirtualPosition{}},
		slog.New(slog.DiscardHandler),
	)

	rec := httptest.NewRecorder()
	h.GetPosition(rec, getPositionRequest("missing"))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetPosition_NilCacheReadsStore(t *testing.T) {
	store := &stubPositionReader{positions: map[string]domain.VirtualPosition{
		"pos-1": testPosition("pos-1", 10),
	}}
	h := NewPositionHandler(store, stubTimelineReader{}, nil, slog.New(slog.DiscardHandler))

	rec := httptest.NewRecorder()
	h.GetPosition(rec, getPositionRequest("pos-1"))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, store.getCalls)
}
