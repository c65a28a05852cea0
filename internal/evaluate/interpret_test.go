package evaluate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/galinborisov10-art/Crypto-signal-bot-sub007/internal/domain"
)

// entries builds a still-valid progressing timeline from progress values,
// spaced one minute apart.
func entriesFromProgress(values ...float64) domain.VirtualPositionTimeline {
	tl := timelineOf()
	for i, v := range values {
		tl.Entries = append(tl.Entries,
			entryAt(t0.Add(time.Duration(i)*time.Minute), v, domain.StatusProgressing, domain.GuidanceHoldThesis))
	}
	return tl
}

// --- Trajectory ---

func TestInterpret_NoData(t *testing.T) {
	interp := Interpret(entriesFromProgress(10))

	assert.Equal(t, domain.TrajectoryNoData, interp.Trajectory)
}

func TestInterpret_StableProgress(t *testing.T) {
	interp := Interpret(entriesFromProgress(10, 20, 35, 55))

	assert.Equal(t, domain.TrajectoryStable, interp.Trajectory)
}

func TestInterpret_SlowingProgress(t *testing.T) {
	// Deltas +30, +20, +10: every step positive but shrinking.
	interp := Interpret(entriesFromProgress(10, 40, 60, 70))

	assert.Equal(t, domain.TrajectorySlowing, interp.Trajectory)
}

func TestInterpret_StalledTrajectory(t *testing.T) {
	interp := Interpret(entriesFromProgress(40, 40, 40))

	assert.Equal(t, domain.TrajectoryStalled, interp.Trajectory)
}

func TestInterpret_RegressingProgress(t *testing.T) {
	// Should be unreachable under progress monotonicity; classified anyway.
	interp := Interpret(entriesFromProgress(40, 30))

	assert.Equal(t, domain.TrajectoryRegressing, interp.Trajectory)
}

func TestInterpret_MostlyFlatIsStalled(t *testing.T) {
	// One positive delta out of three does not make a stable trajectory.
	interp := Interpret(entriesFromProgress(10, 10, 20, 20))

	assert.Equal(t, domain.TrajectoryStalled, interp.Trajectory)
}

// --- Stability ---

func TestInterpret_TerminatedOnCompletedEntry(t *testing.T) {
	tl := entriesFromProgress(10, 60)
	tl.Entries = append(tl.Entries,
		entryAt(t0.Add(2*time.Minute), 100, domain.StatusCompleted, domain.GuidanceHoldThesis))

	interp := Interpret(tl)

	assert.Equal(t, domain.StabilityTerminated, interp.Stability)
}

func TestInterpret_TerminatedOnInvalidatedEntry(t *testing.T) {
	tl := entriesFromProgress(10, 20)
	e := entryAt(t0.Add(2*time.Minute), 20, domain.StatusProgressing, domain.GuidanceStructureAtRisk)
	e.Validity = domain.ValidityInvalidated
	e.InvalidationReason = domain.ReasonStructureBroken
	tl.Entries = append(tl.Entries, e)

	interp := Interpret(tl)

	assert.Equal(t, domain.StabilityTerminated, interp.Stability)
	assert.Equal(t, domain.InvalidationEarly, interp.InvalidationPattern)
}

func TestInterpret_RepeatedInstability(t *testing.T) {
	tl := timelineOf(
		entryAt(t0, 40, domain.StatusStalled, domain.GuidanceThesisWeakening),
		entryAt(t0.Add(time.Minute), 40, domain.StatusProgressing, domain.GuidanceHoldThesis),
		entryAt(t0.Add(2*time.Minute), 40, domain.StatusStalled, domain.GuidanceThesisWeakening),
	)

	interp := Interpret(tl)

	assert.Equal(t, domain.StabilityRepeatedInstability, interp.Stability)
}

func TestInterpret_EarlyWeakening(t *testing.T) {
	tl := timelineOf(
		entryAt(t0, 5, domain.StatusProgressing, domain.GuidanceWaitForConfirmation),
		entryAt(t0.Add(time.Minute), 10, domain.StatusProgressing, domain.GuidanceThesisWeakening),
	)

	interp := Interpret(tl)

	assert.Equal(t, domain.StabilityEarlyWeakening, interp.Stability)
}

func TestInterpret_StructurallyStable(t *testing.T) {
	interp := Interpret(entriesFromProgress(30, 50, 80))

	assert.Equal(t, domain.StabilityStructurallyStable, interp.Stability)
}

// --- Invalidation pattern ---

func TestInterpret_InvalidationBuckets(t *testing.T) {
	at := func(progress float64) domain.InvalidationPattern {
		e := entryAt(t0, progress, domain.StatusProgressing, domain.GuidanceStructureAtRisk)
		e.Validity = domain.ValidityInvalidated
		e.InvalidationReason = domain.ReasonPOIInvalidated
		return Interpret(timelineOf(e)).InvalidationPattern
	}

	assert.Equal(t, domain.InvalidationEarly, at(10))
	assert.Equal(t, domain.InvalidationEarly, at(24.9))
	assert.Equal(t, domain.InvalidationMid, at(25))
	assert.Equal(t, domain.InvalidationMid, at(74.9))
	assert.Equal(t, domain.InvalidationLate, at(75))
	assert.Equal(t, domain.InvalidationLate, at(90))
}

func TestInterpret_NoInvalidationLeavesPatternUndefined(t *testing.T) {
	interp := Interpret(entriesFromProgress(10, 30, 60))

	assert.Empty(t, interp.InvalidationPattern)
}

// --- Guidance consistency ---

func TestInterpret_ConsistencyUndefinedBelowThreeEntries(t *testing.T) {
	interp := Interpret(entriesFromProgress(10, 30))

	assert.Empty(t, interp.GuidanceConsistency)
}

func TestInterpret_FlipFlop(t *testing.T) {
	tl := timelineOf(
		entryAt(t0, 10, domain.StatusProgressing, domain.GuidanceHoldThesis),
		entryAt(t0.Add(time.Minute), 12, domain.StatusProgressing, domain.GuidanceThesisWeakening),
		entryAt(t0.Add(2*time.Minute), 14, domain.StatusProgressing, domain.GuidanceHoldThesis),
	)

	interp := Interpret(tl)

	assert.Equal(t, domain.ConsistencyFlipFlop, interp.GuidanceConsistency)
}

func TestInterpret_Degrading(t *testing.T) {
	tl := timelineOf(
		entryAt(t0, 10, domain.StatusProgressing, domain.GuidanceHoldThesis),
		entryAt(t0.Add(time.Minute), 12, domain.StatusProgressing, domain.GuidanceWaitForConfirmation),
		entryAt(t0.Add(2*time.Minute), 14, domain.StatusProgressing, domain.GuidanceThesisWeakening),
	)

	interp := Interpret(tl)

	assert.Equal(t, domain.ConsistencyDegrading, interp.GuidanceConsistency)
}

func TestInterpret_Consistent(t *testing.T) {
	interp := Interpret(entriesFromProgress(10, 30, 60, 90))

	assert.Equal(t, domain.ConsistencyConsistent, interp.GuidanceConsistency)
}
