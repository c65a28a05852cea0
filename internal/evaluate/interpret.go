package evaluate

import "github.com/galinborisov10-art/Crypto-signal-bot-sub007/internal/domain"

// guidanceStrength ranks guidance signals from strongest to weakest.
var guidanceStrength = map[domain.Guidance]int{
	domain.GuidanceHoldThesis:          4,
	domain.GuidanceWaitForConfirmation: 3,
	domain.GuidanceThesisWeakening:     2,
	domain.GuidanceStructureAtRisk:     1,
}

// Interpret pattern-recognizes a position's full timeline into trajectory,
// stability, invalidation timing, and guidance consistency. It is a pure
// reduction over the entries and can be recomputed at any time.
func Interpret(tl domain.VirtualPositionTimeline) domain.TimelineInterpretation {
	return domain.TimelineInterpretation{
		Trajectory:          classifyTrajectory(tl.Entries),
		Stability:           classifyStability(tl.Entries),
		InvalidationPattern: classifyInvalidation(tl.Entries),
		GuidanceConsistency: classifyConsistency(tl.Entries),
	}
}

// classifyTrajectory reduces the sequence of progress deltas. A negative delta
// should be structurally unreachable given progress monotonicity; it is kept
// as an explicit branch and treated as a consistency alarm by callers.
func classifyTrajectory(entries []domain.TimelineEntry) domain.Trajectory {
	if len(entries) < 2 {
		return domain.TrajectoryNoData
	}

	deltas := make([]float64, 0, len(entries)-1)
	for i := 1; i < len(entries); i++ {
		deltas = append(deltas, entries[i].ProgressPercent-entries[i-1].ProgressPercent)
	}

	allFlat := true
	allPositive := true
	positives := 0
	for _, d := range deltas {
		if d < -progressEpsilon {
			return domain.TrajectoryRegressing
		}
		if d > progressEpsilon {
			positives++
			allFlat = false
		} else {
			allPositive = false
		}
	}

	if allFlat {
		return domain.TrajectoryStalled
	}

	if allPositive {
		for i := 1; i < len(deltas); i++ {
			if deltas[i] <= deltas[i-1] {
				return domain.TrajectorySlowing
			}
		}
	}

	if positives*2 > len(deltas) {
		return domain.TrajectoryStable
	}
	return domain.TrajectoryStalled
}

// classifyStability applies the stability priority: any terminal entry wins,
// then repeated stalls, then weakness before the confirmation threshold.
func classifyStability(entries []domain.TimelineEntry) domain.Stability {
	stalls := 0
	earlyWeak := false
	for _, e := range entries {
		if e.Status == domain.StatusCompleted || e.Validity == domain.ValidityInvalidated {
			return domain.StabilityTerminated
		}
		if e.Status == domain.StatusStalled {
			stalls++
		}
		if e.ProgressPercent < ConfirmationThreshold &&
			(e.Status == domain.StatusStalled || e.Guidance == domain.GuidanceThesisWeakening) {
			earlyWeak = true
		}
	}

	if stalls >= 2 {
		return domain.StabilityRepeatedInstability
	}
	if earlyWeak {
		return domain.StabilityEarlyWeakening
	}
	return domain.StabilityStructurallyStable
}

// classifyInvalidation buckets the first invalidated entry by how far the
// position had progressed. Undefined (zero value) when nothing invalidated.
func classifyInvalidation(entries []domain.TimelineEntry) domain.InvalidationPattern {
	for _, e := range entries {
		if e.Validity != domain.ValidityInvalidated {
			continue
		}
		switch {
		case e.ProgressPercent < ConfirmationThreshold:
			return domain.InvalidationEarly
		case e.ProgressPercent < LateInvalidationThreshold:
			return domain.InvalidationMid
		default:
			return domain.InvalidationLate
		}
	}
	return ""
}

// classifyConsistency scans the guidance sequence. Undefined (zero value) for
// fewer than three entries. An A-B-A oscillation anywhere is a flip-flop; a
// net weakening with no intermediate upward step is degrading.
func classifyConsistency(entries []domain.TimelineEntry) domain.GuidanceConsistency {
	if len(entries) < 3 {
		return ""
	}

	for i := 2; i < len(entries); i++ {
		if entries[i].Guidance == entries[i-2].Guidance && entries[i].Guidance != entries[i-1].Guidance {
			return domain.ConsistencyFlipFlop
		}
	}

	first := guidanceStrength[entries[0].Guidance]
	last := guidanceStrength[entries[len(entries)-1].Guidance]
	if last < first {
		upward := false
		for i := 1; i < len(entries); i++ {
			if guidanceStrength[entries[i].Guidance] > guidanceStrength[entries[i-1].Guidance] {
				upward = true
				break
			}
		}
		if !upward {
			return domain.ConsistencyDegrading
		}
	}

	return domain.ConsistencyConsistent
}
