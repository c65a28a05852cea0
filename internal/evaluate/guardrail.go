package evaluate

import "github.com/galinborisov10-art/Crypto-signal-bot-sub007/internal/domain"

// ApplyGuardrail gates a stance into a permission. The mapping is a pure
// table; confidence is never consulted, and the reason mirrors the stance 1:1.
// PermissionEscalationOnly exists in the permission set but is not produced
// here.
func ApplyGuardrail(policy domain.PolicyResult) domain.DecisionGuardrailResult {
	switch policy.Stance {
	case domain.StanceStrongThesis:
		return domain.DecisionGuardrailResult{Permission: domain.PermissionAllowed, Reason: domain.ReasonStrongPolicy}
	case domain.StanceWeakeningThesis:
		return domain.DecisionGuardrailResult{Permission: domain.PermissionManualReviewOnly, Reason: domain.ReasonWeakeningPolicy}
	case domain.StanceHighRiskThesis:
		return domain.DecisionGuardrailResult{Permission: domain.PermissionManualReviewOnly, Reason: domain.ReasonHighRiskPolicy}
	case domain.StanceInvalidThesis:
		return domain.DecisionGuardrailResult{Permission: domain.PermissionBlocked, Reason: domain.ReasonInvalidPolicy}
	case domain.StanceCompletedThesis:
		return domain.DecisionGuardrailResult{Permission: domain.PermissionBlocked, Reason: domain.ReasonCompletedPolicy}
	case domain.StanceInsufficientData:
		return domain.DecisionGuardrailResult{Permission: domain.PermissionBlocked, Reason: domain.ReasonInsufficientDataPolicy}
	default:
		// Unknown stances never grant anything.
		return domain.DecisionGuardrailResult{Permission: domain.PermissionBlocked, Reason: domain.ReasonInsufficientDataPolicy}
	}
}
