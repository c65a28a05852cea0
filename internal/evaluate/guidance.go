package evaluate

import "github.com/galinborisov10-art/Crypto-signal-bot-sub007/internal/domain"

// DeriveGuidance collapses the progress and reanalysis outputs of one tick
// into a single observational signal. The priority is strict: completion
// dominates everything, including invalidation; then invalidity, then stall,
// then the confirmation threshold. Exactly 25% counts as confirmed.
func DeriveGuidance(pos domain.VirtualPosition, rean domain.ReanalysisResult) domain.Guidance {
	switch {
	case pos.Status == domain.StatusCompleted:
		return domain.GuidanceHoldThesis
	case rean.Validity == domain.ValidityInvalidated:
		return domain.GuidanceStructureAtRisk
	case pos.Status == domain.StatusStalled:
		return domain.GuidanceThesisWeakening
	case pos.ProgressPercent < ConfirmationThreshold:
		return domain.GuidanceWaitForConfirmation
	default:
		return domain.GuidanceHoldThesis
	}
}
