package evaluate

import "github.com/galinborisov10-art/Crypto-signal-bot-sub007/internal/domain"

// SelectDecision maps a permission to the final action intent, passing the
// guardrail reason through unchanged. ActionMonitor and ActionAbortIdea are
// declared in the action set but unreachable from this table; they are kept
// as declared values rather than mapped speculatively.
func SelectDecision(gate domain.DecisionGuardrailResult) domain.DecisionResult {
	switch gate.Permission {
	case domain.PermissionAllowed:
		return domain.DecisionResult{Action: domain.ActionPrepareEntry, Reason: gate.Reason}
	case domain.PermissionManualReviewOnly:
		return domain.DecisionResult{Action: domain.ActionRequestManualReview, Reason: gate.Reason}
	case domain.PermissionEscalationOnly:
		return domain.DecisionResult{Action: domain.ActionRequestManualReview, Reason: gate.Reason}
	case domain.PermissionBlocked:
		return domain.DecisionResult{Action: domain.ActionNoAction, Reason: gate.Reason}
	default:
		return domain.DecisionResult{Action: domain.ActionNoAction, Reason: gate.Reason}
	}
}
