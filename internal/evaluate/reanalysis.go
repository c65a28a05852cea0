package evaluate

import (
	"time"

	"github.com/galinborisov10-art/Crypto-signal-bot-sub007/internal/domain"
)

// MaxThesisAge is the longest a thesis stays valid without completing.
// Strictly greater than: exactly 24h old is still valid.
const MaxThesisAge = 24 * time.Hour

// fullChecklist is returned when every reanalysis check passes.
var fullChecklist = []domain.ReanalysisCheck{
	domain.CheckStructureIntact,
	domain.CheckPOIRemainsValid,
	domain.CheckNoCounterLiquidity,
	domain.CheckHTFBiasAligned,
}

// Reanalyze re-checks a position's structural validity against an externally
// supplied market state. Checks run in a fixed order and short-circuit: the
// first failure wins and is the single invalidation reason. Completed
// positions are skipped entirely.
func Reanalyze(pos domain.VirtualPosition, market domain.MarketState, at time.Time) domain.ReanalysisResult {
	if pos.Status == domain.StatusCompleted {
		return domain.ReanalysisResult{Validity: domain.ValidityStillValid}
	}

	if !market.StructureIntact {
		return invalidated(domain.ReasonStructureBroken)
	}

	if contractPOIInvalidated(pos.Risk, market) {
		return invalidated(domain.ReasonPOIInvalidated)
	}

	if market.CounterLiquidityTaken {
		return invalidated(domain.ReasonLiquidityTakenAgainst)
	}

	dir, _ := InferDirection(pos.Risk, market.POIs)
	if !market.BiasAligned(dir) {
		return invalidated(domain.ReasonHTFBiasFlipped)
	}

	if at.Sub(pos.OpenedAt) > MaxThesisAge {
		return invalidated(domain.ReasonTimeDecayExceeded)
	}

	return domain.ReanalysisResult{
		Validity:     domain.ValidityStillValid,
		ChecksPassed: append([]domain.ReanalysisCheck(nil), fullChecklist...),
	}
}

func invalidated(reason domain.InvalidationReason) domain.ReanalysisResult {
	return domain.ReanalysisResult{
		Validity: domain.ValidityInvalidated,
		Reason:   reason,
	}
}

// contractPOIInvalidated reports whether the stop-loss or any take-profit POI
// of the risk contract appears in the market state's invalidated set.
func contractPOIInvalidated(risk domain.RiskContract, market domain.MarketState) bool {
	if market.POIInvalidated(risk.StopLossPOI) {
		return true
	}
	for _, id := range risk.TakeProfitPOIs {
		if market.POIInvalidated(id) {
			return true
		}
	}
	return false
}
