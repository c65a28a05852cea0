package evaluate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/galinborisov10-art/Crypto-signal-bot-sub007/internal/domain"
)

// --- InferDirection ---

func TestInferDirection_Long(t *testing.T) {
	dir, diags := InferDirection(longPosition().Risk, longPOIs())

	assert.Equal(t, domain.DirectionLong, dir)
	assert.Empty(t, diags)
}

func TestInferDirection_Short(t *testing.T) {
	dir, diags := InferDirection(shortPosition().Risk, shortPOIs())

	assert.Equal(t, domain.DirectionShort, dir)
	assert.Empty(t, diags)
}

func TestInferDirection_MissingStopLoss(t *testing.T) {
	pois := longPOIs()
	delete(pois, "sl")

	dir, diags := InferDirection(longPosition().Risk, pois)

	assert.Equal(t, domain.DirectionLong, dir)
	require.Len(t, diags, 1)
	assert.Equal(t, DiagPOIMissing, diags[0].Code)
}

func TestInferDirection_NoTargets(t *testing.T) {
	risk := longPosition().Risk
	risk.TakeProfitPOIs = nil

	dir, diags := InferDirection(risk, longPOIs())

	assert.Equal(t, domain.DirectionLong, dir)
	require.Len(t, diags, 1)
	assert.Equal(t, DiagNoTargets, diags[0].Code)
}

func TestInferDirection_OverlappingRanges(t *testing.T) {
	pois := domain.POILookup{
		"sl": {ID: "sl", RangeLow: 100, RangeHigh: 120},
		"t1": {ID: "t1", RangeLow: 110, RangeHigh: 130},
	}
	risk := domain.RiskContract{StopLossPOI: "sl", TakeProfitPOIs: []string{"t1"}}

	dir, diags := InferDirection(risk, pois)

	assert.Equal(t, domain.DirectionLong, dir)
	require.Len(t, diags, 1)
	assert.Equal(t, DiagDirectionAmbiguous, diags[0].Code)
}

// --- Advance ---

func TestAdvance_LongRunToCompletion(t *testing.T) {
	pois := longPOIs()
	pos := longPosition()

	// Entry reference 112.5, furthest boundary 180, span 67.5.
	pos, diags := Advance(pos, 130, pois, t0.Add(5*time.Minute))
	assert.Empty(t, diags)
	assert.InDelta(t, 25.926, pos.ProgressPercent, 0.001)
	assert.Equal(t, domain.StatusProgressing, pos.Status)
	assert.Equal(t, []domain.TargetID{domain.TargetTP1}, pos.ReachedTargets)

	pos, _ = Advance(pos, 150, pois, t0.Add(10*time.Minute))
	assert.InDelta(t, 55.556, pos.ProgressPercent, 0.001)
	assert.Equal(t, []domain.TargetID{domain.TargetTP1, domain.TargetTP2}, pos.ReachedTargets)

	pos, _ = Advance(pos, 180, pois, t0.Add(15*time.Minute))
	assert.InDelta(t, 100, pos.ProgressPercent, 0.001)
	assert.Equal(t, domain.StatusCompleted, pos.Status)
	assert.Equal(t, []domain.TargetID{domain.TargetTP1, domain.TargetTP2, domain.TargetTP3}, pos.ReachedTargets)
}

func TestAdvance_ProgressNeverRegresses(t *testing.T) {
	pois := longPOIs()
	pos := longPosition()

	pos, _ = Advance(pos, 150, pois, t0.Add(5*time.Minute))
	high := pos.ProgressPercent

	pos, _ = Advance(pos, 120, pois, t0.Add(10*time.Minute))

	assert.Equal(t, high, pos.ProgressPercent)
	assert.Equal(t, []domain.TargetID{domain.TargetTP1, domain.TargetTP2}, pos.ReachedTargets)
}

func TestAdvance_TargetSkipping(t *testing.T) {
	pois := longPOIs()
	pos := longPosition()

	// Price gaps straight past every target.
	pos, _ = Advance(pos, 200, pois, t0.Add(time.Minute))

	assert.Equal(t, domain.StatusCompleted, pos.Status)
	assert.InDelta(t, 100, pos.ProgressPercent, 0.001)
	assert.Equal(t, []domain.TargetID{domain.TargetTP1, domain.TargetTP2, domain.TargetTP3}, pos.ReachedTargets)
}

func TestAdvance_PriceBelowEntryClampsToZero(t *testing.T) {
	pos, diags := Advance(longPosition(), 100, longPOIs(), t0.Add(time.Minute))

	assert.Empty(t, diags)
	assert.Zero(t, pos.ProgressPercent)
	assert.Equal(t, domain.StatusOpen, pos.Status)
	assert.Empty(t, pos.ReachedTargets)
}

func TestAdvance_StallAfterThreshold(t *testing.T) {
	pois := longPOIs()
	pos := longPosition()

	pos, _ = Advance(pos, 130, pois, t0.Add(5*time.Minute))
	require.Equal(t, domain.StatusProgressing, pos.Status)

	// Same price within the threshold is not yet a stall.
	pos, _ = Advance(pos, 130, pois, t0.Add(35*time.Minute))
	assert.Equal(t, domain.StatusProgressing, pos.Status)

	pos, _ = Advance(pos, 130, pois, t0.Add(2*time.Hour))
	assert.Equal(t, domain.StatusStalled, pos.Status)
}

func TestAdvance_ShortDirection(t *testing.T) {
	pois := shortPOIs()
	pos := shortPosition()

	// Entry reference (205+170)/2 = 187.5, furthest boundary 150, span 37.5.
	pos, diags := Advance(pos, 170, pois, t0.Add(5*time.Minute))
	assert.Empty(t, diags)
	assert.InDelta(t, 46.667, pos.ProgressPercent, 0.001)
	assert.Equal(t, []domain.TargetID{domain.TargetTP1}, pos.ReachedTargets)

	pos, _ = Advance(pos, 150, pois, t0.Add(10*time.Minute))
	assert.Equal(t, domain.StatusCompleted, pos.Status)
	assert.InDelta(t, 100, pos.ProgressPercent, 0.001)
}

func TestAdvance_MissingStopLossIsDiagnosedNotFatal(t *testing.T) {
	pois := longPOIs()
	delete(pois, "sl")

	pos, diags := Advance(longPosition(), 150, pois, t0.Add(time.Minute))

	require.NotEmpty(t, diags)
	assert.Equal(t, DiagPOIMissing, diags[0].Code)
	assert.Zero(t, pos.ProgressPercent)
}

func TestAdvance_DegenerateRange(t *testing.T) {
	// A misordered contract: the furthest target sits below the entry
	// reference, so the travel span collapses.
	pois := domain.POILookup{
		"sl": {ID: "sl", RangeLow: 90, RangeHigh: 95},
		"t1": {ID: "t1", RangeLow: 130, RangeHigh: 135},
		"t2": {ID: "t2", RangeLow: 100, RangeHigh: 101},
	}
	pos := longPosition()
	pos.Risk = domain.RiskContract{StopLossPOI: "sl", TakeProfitPOIs: []string{"t1", "t2"}}

	pos2, diags := Advance(pos, 120, pois, t0.Add(time.Minute))

	require.Len(t, diags, 1)
	assert.Equal(t, DiagDegenerateRange, diags[0].Code)
	assert.Zero(t, pos2.ProgressPercent)
}

func TestAdvance_DoesNotMutateInput(t *testing.T) {
	pois := longPOIs()
	pos := longPosition()
	pos.ReachedTargets = []domain.TargetID{domain.TargetTP1}
	before := pos.Clone()

	_, _ = Advance(pos, 180, pois, t0.Add(time.Minute))

	assert.Equal(t, before, pos)
}

func TestAdvance_ReachedTargetsStayDeduplicated(t *testing.T) {
	pois := longPOIs()
	pos := longPosition()
	pos.ReachedTargets = []domain.TargetID{domain.TargetTP1}

	pos, _ = Advance(pos, 131, pois, t0.Add(time.Minute))

	assert.Equal(t, []domain.TargetID{domain.TargetTP1}, pos.ReachedTargets)
}
