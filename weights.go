package banibs

// WeightTable maps each tier to a numeric weight. The two tables below
// serve two unrelated purposes and must never be merged: reach scoring
// aggregates a user's outgoing circle, feed weighting biases the shadow
// ranking of a viewer's timeline.
type WeightTable map[Tier]float64

// Weight looks a tier up in the table. Unrecognized tiers fail closed
// to the BLOCKED weight.
func (w WeightTable) Weight(t Tier) float64 {
	if v, ok := w[t]; ok {
		return v
	}
	return w[TierBlocked]
}

// DefaultReachWeights feeds TrustGraphStore edge weights and reach
// scores.
var DefaultReachWeights = WeightTable{
	TierPeoples:        100,
	TierCool:           75,
	TierChill:          50,
	TierAlright:        25,
	TierOthers:         5,
	TierOthersSafeMode: 0,
	TierBlocked:        -100,
}

// DefaultFeedWeights is used only inside the feed-ranking engine.
var DefaultFeedWeights = WeightTable{
	TierPeoples:        100,
	TierCool:           60,
	TierChill:          40,
	TierAlright:        20,
	TierOthers:         10,
	TierOthersSafeMode: 0.1,
	TierBlocked:        -1000,
}
