package evaluate

import "github.com/galinborisov10-art/Crypto-signal-bot-sub007/internal/domain"

// DecidePolicy maps an interpretation to a normative stance through a frozen
// priority cascade. Confidence is a fixed function of the stance and is never
// computed separately.
func DecidePolicy(interp domain.TimelineInterpretation) domain.PolicyResult {
	stance := decideStance(interp)
	return domain.PolicyResult{
		Stance:     stance,
		Confidence: confidenceFor(stance),
	}
}

func decideStance(interp domain.TimelineInterpretation) domain.Stance {
	// 1. Terminal history dominates: invalidation pattern present means the
	//    thesis died, otherwise it completed.
	if interp.Stability == domain.StabilityTerminated {
		if interp.InvalidationPattern != "" {
			return domain.StanceInvalidThesis
		}
		return domain.StanceCompletedThesis
	}

	// 2. Nothing to reason about yet.
	if interp.Trajectory == domain.TrajectoryNoData {
		return domain.StanceInsufficientData
	}

	// 3. Everything healthy at once.
	consistencyOK := interp.GuidanceConsistency == "" ||
		interp.GuidanceConsistency == domain.ConsistencyConsistent
	if interp.Trajectory == domain.TrajectoryStable &&
		interp.Stability == domain.StabilityStructurallyStable &&
		consistencyOK &&
		interp.InvalidationPattern == "" {
		return domain.StanceStrongThesis
	}

	// 4. Clear weakening signals.
	if interp.Trajectory == domain.TrajectorySlowing ||
		interp.GuidanceConsistency == domain.ConsistencyDegrading {
		return domain.StanceWeakeningThesis
	}

	// 5. Any instability marker.
	if interp.Stability == domain.StabilityEarlyWeakening ||
		interp.Stability == domain.StabilityRepeatedInstability ||
		interp.GuidanceConsistency == domain.ConsistencyFlipFlop ||
		interp.Trajectory == domain.TrajectoryStalled ||
		interp.Trajectory == domain.TrajectoryRegressing {
		return domain.StanceHighRiskThesis
	}

	// 6. Unclassifiable histories are treated as high risk.
	return domain.StanceHighRiskThesis
}

// confidenceFor is the frozen stance-to-confidence table.
func confidenceFor(stance domain.Stance) domain.Confidence {
	switch stance {
	case domain.StanceInvalidThesis, domain.StanceCompletedThesis, domain.StanceStrongThesis:
		return domain.ConfidenceHigh
	case domain.StanceWeakeningThesis:
		return domain.ConfidenceMedium
	case domain.StanceHighRiskThesis:
		return domain.ConfidenceLow
	case domain.StanceInsufficientData:
		return domain.ConfidenceUnknown
	default:
		return domain.ConfidenceUnknown
	}
}
