package domain

// MarketState is the externally supplied structural/liquidity snapshot a
// position is re-checked against. It is produced by upstream analysis; this
// core trusts it and never derives market structure itself.
type MarketState struct {
	POIs                  POILookup
	HTFBias               DirectionBias
	StructureIntact       bool
	CounterLiquidityTaken bool
	InvalidatedPOIs       []string
}

// POIInvalidated reports whether the given POI id appears in the invalidated
// set.
func (m MarketState) POIInvalidated(id string) bool {
	for _, inv := range m.InvalidatedPOIs {
		if inv == id {
			return true
		}
	}
	return false
}

// BiasAligned reports whether the higher-timeframe bias agrees with the given
// trade direction. Neutral never counts as a flip.
func (m MarketState) BiasAligned(dir TradeDirection) bool {
	switch m.HTFBias {
	case BiasNeutral:
		return true
	case BiasBullish:
		return dir == DirectionLong
	case BiasBearish:
		return dir == DirectionShort
	default:
		return false
	}
}
