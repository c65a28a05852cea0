// Package domain defines the data model shared by every layer of the signal
// bot: points of interest, risk contracts, virtual positions, their evaluation
// timelines, and the closed enum sets the evaluation pipeline is built on.
package domain

// POIType classifies a point of interest by the structure that produced it.
type POIType string

const (
	POITypeOrderBlock   POIType = "order_block"
	POITypeFairValueGap POIType = "fair_value_gap"
	POITypeLiquidity    POIType = "liquidity_pool"
	POITypeBreaker      POIType = "breaker_block"
)

// DirectionBias is the directional reading attached to a POI or a higher
// timeframe: bullish, bearish, or neutral.
type DirectionBias string

const (
	BiasBullish DirectionBias = "bullish"
	BiasBearish DirectionBias = "bearish"
	BiasNeutral DirectionBias = "neutral"
)

// TradeDirection is the direction a virtual position is modelled in.
type TradeDirection string

const (
	DirectionLong  TradeDirection = "long"
	DirectionShort TradeDirection = "short"
)

// POI is a price range with a type and directional bias, used as a structural
// reference (stop-loss anchor or take-profit target). It is produced by
// upstream structure analysis and treated as immutable here.
type POI struct {
	ID        string
	Type      POIType
	Bias      DirectionBias
	RangeLow  float64
	RangeHigh float64
}

// Mid returns the midpoint of the POI's price range.
func (p POI) Mid() float64 {
	return (p.RangeLow + p.RangeHigh) / 2
}

// Contains reports whether price falls inside the POI's range (inclusive).
func (p POI) Contains(price float64) bool {
	return price >= p.RangeLow && price <= p.RangeHigh
}

// POILookup resolves POI ids to their definitions. Evaluation treats a missing
// entry as a defensive condition, never a failure.
type POILookup map[string]POI

// Resolve returns the POI for id and whether it exists.
func (l POILookup) Resolve(id string) (POI, bool) {
	p, ok := l[id]
	return p, ok
}
