package evaluate

import (
	"time"

	"github.com/galinborisov10-art/Crypto-signal-bot-sub007/internal/domain"
)

var t0 = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

// longPOIs is the canonical long setup used across the tests: stop below,
// three targets above. Entry reference = (95+130)/2 = 112.5, furthest
// boundary = 180, span = 67.5.
func longPOIs() domain.POILookup {
	return domain.POILookup{
		"sl": {ID: "sl", Type: domain.POITypeOrderBlock, Bias: domain.BiasBullish, RangeLow: 90, RangeHigh: 95},
		"t1": {ID: "t1", Type: domain.POITypeLiquidity, Bias: domain.BiasBearish, RangeLow: 130, RangeHigh: 135},
		"t2": {ID: "t2", Type: domain.POITypeLiquidity, Bias: domain.BiasBearish, RangeLow: 150, RangeHigh: 155},
		"t3": {ID: "t3", Type: domain.POITypeLiquidity, Bias: domain.BiasBearish, RangeLow: 180, RangeHigh: 185},
	}
}

func shortPOIs() domain.POILookup {
	return domain.POILookup{
		"sl": {ID: "sl", Type: domain.POITypeOrderBlock, Bias: domain.BiasBearish, RangeLow: 205, RangeHigh: 210},
		"t1": {ID: "t1", Type: domain.POITypeLiquidity, Bias: domain.BiasBullish, RangeLow: 165, RangeHigh: 170},
		"t2": {ID: "t2", Type: domain.POITypeLiquidity, Bias: domain.BiasBullish, RangeLow: 145, RangeHigh: 150},
	}
}

func longPosition() domain.VirtualPosition {
	return domain.VirtualPosition{
		ID:           "pos-1",
		ScenarioID:   "scn-1",
		ScenarioType: "liquidity_sweep_reversal",
		Score:        domain.ConfluenceScore{Score: 7.5, Grade: "A"},
		Risk: domain.RiskContract{
			Valid:          true,
			StopLossPOI:    "sl",
			TakeProfitPOIs: []string{"t1", "t2", "t3"},
			RiskReward:     3.0,
		},
		Status:          domain.StatusOpen,
		ProgressPercent: 0,
		OpenedAt:        t0,
		LastEvaluatedAt: t0,
	}
}

func shortPosition() domain.VirtualPosition {
	p := longPosition()
	p.ID = "pos-2"
	p.Risk.TakeProfitPOIs = []string{"t1", "t2"}
	return p
}

func calmMarket(pois domain.POILookup) domain.MarketState {
	return domain.MarketState{
		POIs:            pois,
		HTFBias:         domain.BiasNeutral,
		StructureIntact: true,
	}
}

func entryAt(at time.Time, progress float64, status domain.PositionStatus, guidance domain.Guidance) domain.TimelineEntry {
	return domain.TimelineEntry{
		EvaluatedAt:     at,
		ProgressPercent: progress,
		Status:          status,
		Validity:        domain.ValidityStillValid,
		Guidance:        guidance,
	}
}

func timelineOf(entries ...domain.TimelineEntry) domain.VirtualPositionTimeline {
	return domain.VirtualPositionTimeline{PositionID: "pos-1", Entries: entries}
}
