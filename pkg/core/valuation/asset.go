package valuation

import (
	"fmt"

	"consensus_valuation/pkg/core/metrics"
)

// CalculateAssetBased values the company at its book value per share and
// signals on the price-to-book multiple.
//
// FORMULA: fair value = book value / shares outstanding
//
// Signal bands: P/B <1 BUY, <3 HOLD, otherwise SELL. The book value per
// share is reported as the fair value even though the band, not the
// deviation, drives the signal.
func CalculateAssetBased(m *metrics.CompanyMetrics) Result {
	if m.BookValue == nil || *m.BookValue <= 0 {
		return notApplicable(MethodAssetBased, "no positive book value reported")
	}

	fairValue := *m.BookValue / m.SharesOutstanding

	pb, ok := m.PB()
	if !ok {
		pb = m.CurrentPrice / fairValue
	}

	var sig Signal
	switch {
	case pb < 1:
		sig = SignalBuy
	case pb < 3:
		sig = SignalHold
	default:
		sig = SignalSell
	}

	reason := fmt.Sprintf("book value $%.2f/share, trading at %.2fx book", fairValue, pb)
	return applicableResult(MethodAssetBased, fairValue, sig, reason, map[string]float64{"pb": pb})
}
