package domain

import "time"

// MinRiskReward is the minimum risk/reward ratio a risk contract must carry
// before a virtual position may be opened on it.
const MinRiskReward = 2.0

// PositionStatus tracks where a virtual position is in its observed life.
type PositionStatus string

const (
	StatusOpen        PositionStatus = "open"
	StatusProgressing PositionStatus = "progressing"
	StatusStalled     PositionStatus = "stalled"
	StatusInvalidated PositionStatus = "invalidated"
	StatusCompleted   PositionStatus = "completed"
)

// TargetID names the ordered take-profit levels of a risk contract.
type TargetID string

const (
	TargetTP1 TargetID = "TP1"
	TargetTP2 TargetID = "TP2"
	TargetTP3 TargetID = "TP3"
)

// targetRank orders targets canonically: TP1 < TP2 < TP3.
var targetRank = map[TargetID]int{
	TargetTP1: 1,
	TargetTP2: 2,
	TargetTP3: 3,
}

// TargetRank returns the canonical ordering rank of a target (TP1=1 .. TP3=3);
// unknown targets rank last.
func TargetRank(t TargetID) int {
	if r, ok := targetRank[t]; ok {
		return r
	}
	return len(targetRank) + 1
}

// EntryScenario is the upstream entry-scenario record a position is derived
// from. Validity is decided by upstream classification; this core only reads
// the flag.
type EntryScenario struct {
	ID    string
	Type  string
	Valid bool
}

// ConfluenceScore is an externally computed confluence score snapshot.
type ConfluenceScore struct {
	Score float64
	Grade string
}

// RiskContract is the risk framing of a trade idea: one stop-loss POI, up to
// three ordered take-profit POIs, and the already-validated risk/reward ratio.
type RiskContract struct {
	Valid          bool
	StopLossPOI    string
	TakeProfitPOIs []string // ordered: index 0 is TP1
	RiskReward     float64
}

// TargetPOI returns the POI id configured for the given target and whether it
// is configured at all.
func (r RiskContract) TargetPOI(t TargetID) (string, bool) {
	idx := TargetRank(t) - 1
	if idx < 0 || idx >= len(r.TakeProfitPOIs) {
		return "", false
	}
	return r.TakeProfitPOIs[idx], true
}

// FurthestTarget returns the furthest configured take-profit target (TP3 if
// present, else TP2, else TP1) and false when no target is configured.
func (r RiskContract) FurthestTarget() (TargetID, bool) {
	switch len(r.TakeProfitPOIs) {
	case 0:
		return "", false
	case 1:
		return TargetTP1, true
	case 2:
		return TargetTP2, true
	default:
		return TargetTP3, true
	}
}

// VirtualPosition is a non-executed, purely observational model of a trade
// idea. Snapshots are immutable: the progress engine never mutates a position,
// it returns a fresh one. ProgressPercent is non-decreasing across successive
// snapshots of the same logical position.
type VirtualPosition struct {
	ID           string
	AssetID      string // instrument the scenario was observed on, e.g. "btcusdt"
	ScenarioID   string
	ScenarioType string
	Score        ConfluenceScore
	Risk         RiskContract

	Status          PositionStatus
	ProgressPercent float64
	ReachedTargets  []TargetID // canonical order, no duplicates

	OpenedAt        time.Time
	LastEvaluatedAt time.Time
}

// Terminated reports whether the position has reached a terminal status.
func (p VirtualPosition) Terminated() bool {
	return p.Status == StatusCompleted || p.Status == StatusInvalidated
}

// HasReached reports whether the given target is in the reached set.
func (p VirtualPosition) HasReached(t TargetID) bool {
	for _, r := range p.ReachedTargets {
		if r == t {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the position. The only reference field is the
// reached-target slice.
func (p VirtualPosition) Clone() VirtualPosition {
	out := p
	if p.ReachedTargets != nil {
		out.ReachedTargets = append([]TargetID(nil), p.ReachedTargets...)
	}
	if p.Risk.TakeProfitPOIs != nil {
		out.Risk.TakeProfitPOIs = append([]string(nil), p.Risk.TakeProfitPOIs...)
	}
	return out
}
