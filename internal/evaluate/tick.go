package evaluate

import (
	"time"

	"github.com/galinborisov10-art/Crypto-signal-bot-sub007/internal/domain"
)

// TickInput is everything one evaluation tick needs: the latest position
// snapshot, the new price, the upstream market state, the position's timeline
// so far, and the logical evaluation timestamp. The tick never reads the wall
// clock. POIs are resolved from the market state so progress measurement and
// reanalysis always see the same references.
type TickInput struct {
	Position domain.VirtualPosition
	Price    float64
	Market   domain.MarketState
	Timeline domain.VirtualPositionTimeline
	At       time.Time
}

// TickResult carries the output of every pipeline stage for one tick.
type TickResult struct {
	Position       domain.VirtualPosition
	Reanalysis     domain.ReanalysisResult
	Guidance       domain.Guidance
	Timeline       domain.VirtualPositionTimeline
	Interpretation domain.TimelineInterpretation
	Policy         domain.PolicyResult
	Guardrail      domain.DecisionGuardrailResult
	Decision       domain.DecisionResult
	Diagnostics    []Diagnostic
}

// Tick runs the full evaluation pipeline once: progress and reanalysis on the
// latest snapshot, guidance derivation, timeline append, then the
// interpretation → policy → guardrail → decision reduction over the grown
// timeline. Pure and deterministic: identical inputs produce structurally
// identical results, and no input is mutated.
func Tick(in TickInput) TickResult {
	next, diags := Advance(in.Position, in.Price, in.Market.POIs, in.At)

	rean := Reanalyze(next, in.Market, in.At)
	guidance := DeriveGuidance(next, rean)

	entry := domain.TimelineEntry{
		EvaluatedAt:        in.At,
		ProgressPercent:    next.ProgressPercent,
		Status:             next.Status,
		Validity:           rean.Validity,
		InvalidationReason: rean.Reason,
		Guidance:           guidance,
	}
	tl := AppendEntry(in.Timeline, entry)

	interp := Interpret(tl)
	policy := DecidePolicy(interp)
	gate := ApplyGuardrail(policy)
	decision := SelectDecision(gate)

	return TickResult{
		Position:       next,
		Reanalysis:     rean,
		Guidance:       guidance,
		Timeline:       tl,
		Interpretation: interp,
		Policy:         policy,
		Guardrail:      gate,
		Decision:       decision,
		Diagnostics:    diags,
	}
}
