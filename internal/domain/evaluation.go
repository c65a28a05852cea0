package domain

// Trajectory classifies how a position's progress has been moving over its
// timeline.
type Trajectory string

const (
	TrajectoryNoData      Trajectory = "NO_DATA"
	TrajectoryRegressing  Trajectory = "REGRESSING_PROGRESS"
	TrajectoryStalled     Trajectory = "STALLED_TRAJECTORY"
	TrajectorySlowing     Trajectory = "SLOWING_PROGRESS"
	TrajectoryStable      Trajectory = "STABLE_PROGRESS"
)

// Stability classifies the structural stability of a position's history.
type Stability string

const (
	StabilityTerminated          Stability = "TERMINATED"
	StabilityRepeatedInstability Stability = "REPEATED_INSTABILITY"
	StabilityEarlyWeakening      Stability = "EARLY_WEAKENING"
	StabilityStructurallyStable  Stability = "STRUCTURALLY_STABLE"
)

// InvalidationPattern classifies when in a position's life the first
// invalidation occurred. The zero value means no invalidation was observed.
type InvalidationPattern string

const (
	InvalidationEarly InvalidationPattern = "EARLY_INVALIDATION"
	InvalidationMid   InvalidationPattern = "MID_INVALIDATION"
	InvalidationLate  InvalidationPattern = "LATE_INVALIDATION"
)

// GuidanceConsistency classifies how the guidance signal has behaved over the
// timeline. The zero value means the timeline is too short to classify.
type GuidanceConsistency string

const (
	ConsistencyFlipFlop   GuidanceConsistency = "FLIP_FLOP"
	ConsistencyDegrading  GuidanceConsistency = "DEGRADING"
	ConsistencyConsistent GuidanceConsistency = "CONSISTENT"
)

// TimelineInterpretation is the pattern-recognition output over a full
// timeline. InvalidationPattern and GuidanceConsistency are optional facets;
// their zero value means "not defined".
type TimelineInterpretation struct {
	Trajectory          Trajectory
	Stability           Stability
	InvalidationPattern InvalidationPattern
	GuidanceConsistency GuidanceConsistency
}

// Stance is the normative reading of an interpretation.
type Stance string

const (
	StanceStrongThesis     Stance = "STRONG_THESIS"
	StanceWeakeningThesis  Stance = "WEAKENING_THESIS"
	StanceHighRiskThesis   Stance = "HIGH_RISK_THESIS"
	StanceInvalidThesis    Stance = "INVALID_THESIS"
	StanceCompletedThesis  Stance = "COMPLETED_THESIS"
	StanceInsufficientData Stance = "INSUFFICIENT_DATA"
)

// Confidence grades a stance. It is a fixed function of the stance, never
// computed separately.
type Confidence string

const (
	ConfidenceHigh    Confidence = "HIGH"
	ConfidenceMedium  Confidence = "MEDIUM"
	ConfidenceLow     Confidence = "LOW"
	ConfidenceUnknown Confidence = "UNKNOWN"
)

// PolicyResult is the stance + confidence produced by the policy cascade.
type PolicyResult struct {
	Stance     Stance
	Confidence Confidence
}

// Permission is the gate a stance maps to: may the host act on this idea.
type Permission string

const (
	PermissionAllowed          Permission = "ALLOWED"
	PermissionManualReviewOnly Permission = "MANUAL_REVIEW_ONLY"
	PermissionBlocked          Permission = "BLOCKED"
	// PermissionEscalationOnly is declared in the permission set but is not
	// produced by the current stance mapping; it is reserved for a future
	// guardrail tier.
	PermissionEscalationOnly Permission = "ESCALATION_ONLY"
)

// GuardrailReason mirrors the stance that produced a permission, 1:1.
type GuardrailReason string

const (
	ReasonStrongPolicy           GuardrailReason = "STRONG_POLICY"
	ReasonWeakeningPolicy        GuardrailReason = "WEAKENING_POLICY"
	ReasonHighRiskPolicy         GuardrailReason = "HIGH_RISK_POLICY"
	ReasonInvalidPolicy          GuardrailReason = "INVALID_POLICY"
	ReasonCompletedPolicy        GuardrailReason = "COMPLETED_POLICY"
	ReasonInsufficientDataPolicy GuardrailReason = "INSUFFICIENT_DATA_POLICY"
)

// DecisionGuardrailResult is the permission gate with its mirroring reason.
type DecisionGuardrailResult struct {
	Permission Permission
	Reason     GuardrailReason
}

// Action is the closed set of action intents the pipeline can end in. None of
// them execute anything.
type Action string

const (
	ActionNoAction            Action = "NO_ACTION"
	ActionRequestManualReview Action = "REQUEST_MANUAL_REVIEW"
	ActionPrepareEntry        Action = "PREPARE_ENTRY"
	// ActionMonitor and ActionAbortIdea are declared in the action set but are
	// not reachable from the current permission mapping; kept as declared
	// values rather than removed.
	ActionMonitor   Action = "MONITOR"
	ActionAbortIdea Action = "ABORT_IDEA"
)

// DecisionResult is the final action intent; the reason is passed through from
// the guardrail unchanged.
type DecisionResult struct {
	Action Action
	Reason GuardrailReason
}
