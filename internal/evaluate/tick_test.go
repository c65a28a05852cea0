package evaluate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/galinborisov10-art/Crypto-signal-bot-sub007/internal/domain"
)

// slowingInput builds a tick whose appended entry turns the progress deltas
// into +30, +20, +10: a slowing but otherwise healthy history.
func slowingInput() TickInput {
	pos := longPosition()
	pos.Status = domain.StatusProgressing
	pos.ProgressPercent = 60
	pos.ReachedTargets = []domain.TargetID{domain.TargetTP1, domain.TargetTP2}
	pos.LastEvaluatedAt = t0.Add(2 * time.Minute)

	return TickInput{
		Position: pos,
		Price:    159.75, // entry 112.5 + 70% of the 67.5 span
		Market:   calmMarket(longPOIs()),
		Timeline: entriesFromProgress(10, 40, 60),
		At:       t0.Add(3 * time.Minute),
	}
}

func TestTick_SlowingHistoryEndsInManualReview(t *testing.T) {
	res := Tick(slowingInput())

	assert.InDelta(t, 70, res.Position.ProgressPercent, 0.001)
	assert.Equal(t, domain.StatusProgressing, res.Position.Status)
	assert.Equal(t, domain.ValidityStillValid, res.Reanalysis.Validity)
	assert.Equal(t, domain.GuidanceHoldThesis, res.Guidance)
	require.Len(t, res.Timeline.Entries, 4)

	assert.Equal(t, domain.TrajectorySlowing, res.Interpretation.Trajectory)
	assert.Equal(t, domain.StabilityStructurallyStable, res.Interpretation.Stability)
	assert.Equal(t, domain.ConsistencyConsistent, res.Interpretation.GuidanceConsistency)

	assert.Equal(t, domain.StanceWeakeningThesis, res.Policy.Stance)
	assert.Equal(t, domain.ConfidenceMedium, res.Policy.Confidence)
	assert.Equal(t, domain.PermissionManualReviewOnly, res.Guardrail.Permission)
	assert.Equal(t, domain.ReasonWeakeningPolicy, res.Guardrail.Reason)
	assert.Equal(t, domain.ActionRequestManualReview, res.Decision.Action)
	assert.Equal(t, domain.ReasonWeakeningPolicy, res.Decision.Reason)
}

func TestTick_CompletionEndsBlocked(t *testing.T) {
	in := slowingInput()
	in.Price = 185

	res := Tick(in)

	assert.Equal(t, domain.StatusCompleted, res.Position.Status)
	assert.Equal(t, domain.StanceCompletedThesis, res.Policy.Stance)
	assert.Equal(t, domain.PermissionBlocked, res.Guardrail.Permission)
	assert.Equal(t, domain.ActionNoAction, res.Decision.Action)
}

func TestTick_InvalidationEndsBlocked(t *testing.T) {
	in := slowingInput()
	in.Market.StructureIntact = false

	res := Tick(in)

	assert.Equal(t, domain.ValidityInvalidated, res.Reanalysis.Validity)
	assert.Equal(t, domain.ReasonStructureBroken, res.Reanalysis.Reason)
	assert.Equal(t, domain.GuidanceStructureAtRisk, res.Guidance)
	assert.Equal(t, domain.StanceInvalidThesis, res.Policy.Stance)
	assert.Equal(t, domain.PermissionBlocked, res.Guardrail.Permission)
	assert.Equal(t, domain.ActionNoAction, res.Decision.Action)
}

func TestTick_FirstObservationIsInsufficientData(t *testing.T) {
	in := slowingInput()
	in.Timeline = timelineOf()

	res := Tick(in)

	require.Len(t, res.Timeline.Entries, 1)
	assert.Equal(t, domain.TrajectoryNoData, res.Interpretation.Trajectory)
	assert.Equal(t, domain.StanceInsufficientData, res.Policy.Stance)
	assert.Equal(t, domain.ConfidenceUnknown, res.Policy.Confidence)
	assert.Equal(t, domain.ActionNoAction, res.Decision.Action)
}

func TestTick_Deterministic(t *testing.T) {
	a := Tick(slowingInput())
	b := Tick(slowingInput())

	assert.Equal(t, a, b)
}

func TestTick_DoesNotMutateInputs(t *testing.T) {
	in := slowingInput()
	posBefore := in.Position.Clone()
	tlBefore := in.Timeline.Clone()

	_ = Tick(in)

	assert.Equal(t, posBefore, in.Position)
	assert.Equal(t, tlBefore, in.Timeline)
}

func TestTick_StaleObservationLeavesTimelineUnchanged(t *testing.T) {
	in := slowingInput()
	in.At = t0.Add(-time.Hour)

	res := Tick(in)

	// The snapshot still advances, but the out-of-order entry is dropped.
	assert.Len(t, res.Timeline.Entries, 3)
	assert.Equal(t, in.Timeline.Entries, res.Timeline.Entries)
}
