package valuation

// DeviationThreshold is the margin separating BUY/SELL from HOLD for
// fair-value methods: a fair value more than 20% above the market price is a
// BUY, more than 20% below is a SELL.
const DeviationThreshold = 0.20

// Deviation computes the relative gap between a fair value and the market
// price. currentPrice is positive by snapshot invariant.
//
// FORMULA: d = (fairValue - currentPrice) / currentPrice
func Deviation(fairValue, currentPrice float64) float64 {
	return (fairValue - currentPrice) / currentPrice
}

// Classify maps a (fair value, price) pair to a signal using the deviation
// margin. The boundaries are inclusive HOLD: a deviation of exactly +0.20 or
// -0.20 is HOLD, so the same inputs always produce the same signal.
//
// Band methods (payback, owner earnings yield, P/E, P/B, PEG) do not use
// this; they carry their own thresholds.
func Classify(fairValue, currentPrice float64) Signal {
	d := Deviation(fairValue, currentPrice)
	switch {
	case d > DeviationThreshold:
		return SignalBuy
	case d < -DeviationThreshold:
		return SignalSell
	default:
		return SignalHold
	}
}
