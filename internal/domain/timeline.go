package domain

import "time"

// Validity is the outcome of a structural reanalysis.
type Validity string

const (
	ValidityStillValid  Validity = "still_valid"
	ValidityInvalidated Validity = "invalidated"
)

// InvalidationReason names the single check that invalidated a position.
type InvalidationReason string

const (
	ReasonStructureBroken       InvalidationReason = "STRUCTURE_BROKEN"
	ReasonPOIInvalidated        InvalidationReason = "POI_INVALIDATED"
	ReasonLiquidityTakenAgainst InvalidationReason = "LIQUIDITY_TAKEN_AGAINST"
	ReasonHTFBiasFlipped        InvalidationReason = "HTF_BIAS_FLIPPED"
	ReasonTimeDecayExceeded     InvalidationReason = "TIME_DECAY_EXCEEDED"
)

// ReanalysisCheck names one structural check that a still-valid position
// passed.
type ReanalysisCheck string

const (
	CheckStructureIntact    ReanalysisCheck = "STRUCTURE_INTACT"
	CheckPOIRemainsValid    ReanalysisCheck = "POI_REMAINS_VALID"
	CheckNoCounterLiquidity ReanalysisCheck = "NO_COUNTER_LIQUIDITY"
	CheckHTFBiasAligned     ReanalysisCheck = "HTF_BIAS_ALIGNED"
)

// Guidance is the observational signal derived from one evaluation tick.
type Guidance string

const (
	GuidanceHoldThesis          Guidance = "HOLD_THESIS"
	GuidanceThesisWeakening     Guidance = "THESIS_WEAKENING"
	GuidanceStructureAtRisk     Guidance = "STRUCTURE_AT_RISK"
	GuidanceWaitForConfirmation Guidance = "WAIT_FOR_CONFIRMATION"
)

// ReanalysisResult is the outcome of re-checking a position against a market
// state: still valid with the checks that passed, or invalidated with exactly
// one reason.
type ReanalysisResult struct {
	Validity     Validity
	Reason       InvalidationReason // set only when invalidated
	ChecksPassed []ReanalysisCheck  // set only when still valid
}

// TimelineEntry is one per-tick observation of a position: a pure aggregation
// of the progress, reanalysis, and guidance outputs for that tick.
type TimelineEntry struct {
	EvaluatedAt        time.Time
	ProgressPercent    float64
	Status             PositionStatus
	Validity           Validity
	InvalidationReason InvalidationReason // empty unless invalidated
	Guidance           Guidance
}

// VirtualPositionTimeline is the append-only, time-ordered log of observations
// for one position. Entries are sorted by EvaluatedAt non-decreasing; entries
// sharing a timestamp keep append order. No entry is ever edited or removed.
//
// The timeline is a value; appends return a new value. Appending is not atomic
// across concurrent holders of the same value, so hosts must serialize updates
// per position id.
type VirtualPositionTimeline struct {
	PositionID string
	Entries    []TimelineEntry
}

// Last returns the most recent entry and whether the timeline is non-empty.
func (t VirtualPositionTimeline) Last() (TimelineEntry, bool) {
	if len(t.Entries) == 0 {
		return TimelineEntry{}, false
	}
	return t.Entries[len(t.Entries)-1], true
}

// Clone returns a deep copy of the timeline.
func (t VirtualPositionTimeline) Clone() VirtualPositionTimeline {
	out := t
	if t.Entries != nil {
		out.Entries = append([]TimelineEntry(nil), t.Entries...)
	}
	return out
}
