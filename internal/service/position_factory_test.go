package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/galinborisov10-art/Crypto-signal-bot-sub007/internal/domain"
)

func validOpenInput() OpenPositionInput {
	return OpenPositionInput{
		AssetID:  "btcusdt",
		Scenario: domain.EntryScenario{ID: "scn-1", Type: "liquidity_sweep_reversal", Valid: true},
		Score:    domain.ConfluenceScore{Score: 82.5, Grade: "A"},
		Risk: domain.RiskContract{
			Valid:          true,
			StopLossPOI:    "sl",
			TakeProfitPOIs: []string{"t1", "t2", "t3"},
			RiskReward:     3.0,
		},
	}
}

func newTestFactory() (*PositionFactory, *fakePositionStore, *fakeSnapshotCache, *fakeBus, *fakeAudit) {
	positions := newFakePositionStore()
	snapshots := newFakeSnapshotCache()
	bus := newFakeBus()
	audit := &fakeAudit{}
	f := NewPositionFactory(positions, snapshots, bus, audit, testLogger())
	return f, positions, snapshots, bus, audit
}

func TestOpenPosition_Succeeds(t *testing.T) {
	f, positions, snapshots, bus, audit := newTestFactory()

	pos, err := f.OpenPosition(context.Background(), validOpenInput())
	require.NoError(t, err)

	assert.NotEmpty(t, pos.ID)
	assert.Equal(t, "btcusdt", pos.AssetID)
	assert.Equal(t, "scn-1", pos.ScenarioID)
	assert.Equal(t, domain.StatusOpen, pos.Status)
	assert.Zero(t, pos.ProgressPercent)
	assert.Empty(t, pos.ReachedTargets)
	assert.Equal(t, pos.OpenedAt, pos.LastEvaluatedAt)

	stored, err := positions.GetByID(context.Background(), pos.ID)
	require.NoError(t, err)
	assert.Equal(t, pos, stored)

	cached, err := snapshots.Get(context.Background(), pos.ID)
	require.NoError(t, err)
	assert.Equal(t, pos.ID, cached.ID)

	assert.Equal(t, 1, bus.published("positions"))
	assert.Contains(t, audit.events, "position_opened")
}

func TestOpenPosition_RejectsInvalidScenario(t *testing.T) {
	f, positions, _, bus, _ := newTestFactory()

	in := validOpenInput()
	in.Scenario.Valid = false

	_, err := f.OpenPosition(context.Background(), in)
	assert.ErrorIs(t, err, domain.ErrScenarioNotValid)

	active, _ := positions.ListActive(context.Background())
	assert.Empty(t, active)
	assert.Zero(t, bus.published("positions"))
}

func TestOpenPosition_RejectsInvalidRiskContract(t *testing.T) {
	f, _, _, _, _ := newTestFactory()

	in := validOpenInput()
	in.Risk.Valid = false

	_, err := f.OpenPosition(context.Background(), in)
	assert.ErrorIs(t, err, domain.ErrRiskNotValid)
}

func TestOpenPosition_RejectsLowRiskReward(t *testing.T) {
	f, _, _, _, _ := newTestFactory()

	in := validOpenInput()
	in.Risk.RiskReward = 1.5

	_, err := f.OpenPosition(context.Background(), in)
	assert.ErrorIs(t, err, domain.ErrRiskNotValid)
}

func TestOpenPosition_UniqueIDs(t *testing.T) {
	f, _, _, _, _ := newTestFactory()

	a, err := f.OpenPosition(context.Background(), validOpenInput())
	require.NoError(t, err)
	b, err := f.OpenPosition(context.Background(), validOpenInput())
	require.NoError(t, err)

	assert.NotEqual(t, a.ID, b.ID)
}
