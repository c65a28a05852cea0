package evaluate

import (
	"fmt"
	"sort"
	"time"

	"github.com/galinborisov10-art/Crypto-signal-bot-sub007/internal/domain"
)

const (
	// StallThreshold is how long progress may stay unchanged between
	// evaluations before a position is considered stalled.
	StallThreshold = time.Hour

	// ConfirmationThreshold is the progress percentage below which a healthy
	// position is still waiting for confirmation.
	ConfirmationThreshold = 25.0

	// LateInvalidationThreshold splits mid from late invalidations.
	LateInvalidationThreshold = 75.0

	// progressEpsilon bounds float comparison of progress deltas.
	progressEpsilon = 1e-9
)

// InferDirection derives the trade direction from the ordering of the
// stop-loss POI against the first take-profit POI: stop below target means
// long, stop above means short. Missing or overlapping POIs fall back to long
// with a diagnostic; this never fails.
func InferDirection(risk domain.RiskContract, pois domain.POILookup) (domain.TradeDirection, []Diagnostic) {
	var diags []Diagnostic

	sl, slOK := pois.Resolve(risk.StopLossPOI)
	if !slOK {
		diags = append(diags, diag(DiagPOIMissing, fmt.Sprintf("stop-loss poi %q not in lookup", risk.StopLossPOI)))
	}

	tp1ID, hasTP := risk.TargetPOI(domain.TargetTP1)
	if !hasTP {
		diags = append(diags, diag(DiagNoTargets, "risk contract has no take-profit targets"))
		return domain.DirectionLong, diags
	}
	tp1, tpOK := pois.Resolve(tp1ID)
	if !tpOK {
		diags = append(diags, diag(DiagPOIMissing, fmt.Sprintf("take-profit poi %q not in lookup", tp1ID)))
	}
	if !slOK || !tpOK {
		return domain.DirectionLong, diags
	}

	overlaps := sl.RangeHigh >= tp1.RangeLow && tp1.RangeHigh >= sl.RangeLow
	if overlaps || sl.Mid() == tp1.Mid() {
		diags = append(diags, diag(DiagDirectionAmbiguous,
			fmt.Sprintf("stop-loss %q and first target %q overlap", risk.StopLossPOI, tp1ID)))
		return domain.DirectionLong, diags
	}

	if sl.Mid() < tp1.Mid() {
		return domain.DirectionLong, diags
	}
	return domain.DirectionShort, diags
}

// entryReference is the structural entry approximation: the midpoint between
// the facing boundaries of the stop-loss range and the first target range. It
// is not an execution price.
func entryReference(dir domain.TradeDirection, sl, tp1 domain.POI) float64 {
	if dir == domain.DirectionShort {
		return (sl.RangeLow + tp1.RangeHigh) / 2
	}
	return (sl.RangeHigh + tp1.RangeLow) / 2
}

// targetBoundary is the price at which a target counts as fully travelled: the
// near edge of its range in the direction of travel.
func targetBoundary(dir domain.TradeDirection, target domain.POI) float64 {
	if dir == domain.DirectionShort {
		return target.RangeHigh
	}
	return target.RangeLow
}

// targetReached reports whether price has crossed into the target's range from
// the travel direction.
func targetReached(dir domain.TradeDirection, target domain.POI, price float64) bool {
	if dir == domain.DirectionShort {
		return price <= target.RangeHigh
	}
	return price >= target.RangeLow
}

// Advance computes the next position snapshot from a new price observation.
// The input position is never mutated; progress is monotone non-decreasing and
// the reached-target set only grows, stays de-duplicated, and stays in
// canonical TP1..TP3 order.
func Advance(pos domain.VirtualPosition, price float64, pois domain.POILookup, at time.Time) (domain.VirtualPosition, []Diagnostic) {
	next := pos.Clone()

	dir, diags := InferDirection(pos.Risk, pois)

	raw, rawDiags := rawProgress(dir, pos.Risk, pois, price)
	diags = append(diags, rawDiags...)

	if raw > next.ProgressPercent {
		next.ProgressPercent = raw
	}

	next.ReachedTargets = mergeReached(pos, dir, pois, price)

	next.Status = deriveStatus(pos, next, at)
	next.LastEvaluatedAt = at
	return next, diags
}

// rawProgress linearly interpolates price between the entry reference and the
// furthest configured target's boundary, clamped to [0,100]. Defensive inputs
// produce zero progress plus a diagnostic.
func rawProgress(dir domain.TradeDirection, risk domain.RiskContract, pois domain.POILookup, price float64) (float64, []Diagnostic) {
	sl, slOK := pois.Resolve(risk.StopLossPOI)
	tp1ID, hasTP := risk.TargetPOI(domain.TargetTP1)
	if !hasTP {
		return 0, nil // already diagnosed by InferDirection
	}
	tp1, tp1OK := pois.Resolve(tp1ID)
	if !slOK || !tp1OK {
		return 0, nil
	}

	furthest, _ := risk.FurthestTarget()
	furthestID, _ := risk.TargetPOI(furthest)
	fpoi, ok := pois.Resolve(furthestID)
	if !ok {
		return 0, []Diagnostic{diag(DiagPOIMissing, fmt.Sprintf("furthest target poi %q not in lookup", furthestID))}
	}

	entry := entryReference(dir, sl, tp1)
	boundary := targetBoundary(dir, fpoi)
	span := boundary - entry
	if dir == domain.DirectionShort {
		span = entry - boundary
	}
	if span <= 0 {
		return 0, []Diagnostic{diag(DiagDegenerateRange, "entry reference and target boundary coincide")}
	}

	travelled := price - entry
	if dir == domain.DirectionShort {
		travelled = entry - price
	}

	pct := travelled / span * 100
	if pct < 0 {
		return 0, nil
	}
	if pct > 100 {
		return 100, nil
	}
	return pct, nil
}

// mergeReached unions the previously reached targets with every configured
// target whose range the price has crossed into. Skipping is allowed: a jump
// straight into TP3 marks TP3 reached even if TP1/TP2 never were.
func mergeReached(pos domain.VirtualPosition, dir domain.TradeDirection, pois domain.POILookup, price float64) []domain.TargetID {
	seen := make(map[domain.TargetID]bool, 3)
	for _, t := range pos.ReachedTargets {
		seen[t] = true
	}
	for _, t := range []domain.TargetID{domain.TargetTP1, domain.TargetTP2, domain.TargetTP3} {
		id, ok := pos.Risk.TargetPOI(t)
		if !ok {
			continue
		}
		poi, ok := pois.Resolve(id)
		if !ok {
			continue
		}
		if targetReached(dir, poi, price) {
			seen[t] = true
		}
	}

	out := make([]domain.TargetID, 0, len(seen))
	for t := range seen {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		return domain.TargetRank(out[i]) < domain.TargetRank(out[j])
	})
	return out
}

// deriveStatus applies the strict status priority: completed when the
// furthest configured target has been reached; stalled when progress is
// unchanged past the stall threshold; progressing while progress is strictly
// between 0 and 100; open otherwise.
func deriveStatus(prev, next domain.VirtualPosition, at time.Time) domain.PositionStatus {
	if furthest, ok := next.Risk.FurthestTarget(); ok && next.HasReached(furthest) {
		return domain.StatusCompleted
	}

	unchanged := next.ProgressPercent-prev.ProgressPercent <= progressEpsilon
	if unchanged && !prev.LastEvaluatedAt.IsZero() && at.Sub(prev.LastEvaluatedAt) > StallThreshold {
		return domain.StatusStalled
	}

	if next.ProgressPercent > 0 && next.ProgressPercent < 100 {
		return domain.StatusProgressing
	}
	return domain.StatusOpen
}
