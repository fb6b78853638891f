package valuation

import (
	"fmt"

	"consensus_valuation/pkg/core/metrics"
)

// CalculateOwnerEarningsYield expresses trailing free cash flow as a
// percentage of market capitalization.
//
// FORMULA: yield = FCF / market cap x 100
//
// Signal bands: >=10% BUY, >=5% HOLD, otherwise SELL. A negative yield is
// still a yield, so only a missing FCF figure rules the method out.
func CalculateOwnerEarningsYield(m *metrics.CompanyMetrics) Result {
	if m.FreeCashFlowTTM == nil {
		return notApplicable(MethodOwnerEarningsYield, "free cash flow not reported")
	}

	marketCap := m.MarketCapOrDerived()
	if marketCap <= 0 {
		return notApplicable(MethodOwnerEarningsYield, "market capitalization unavailable")
	}

	yieldPct := *m.FreeCashFlowTTM / marketCap * 100

	var sig Signal
	switch {
	case yieldPct >= 10:
		sig = SignalBuy
	case yieldPct >= 5:
		sig = SignalHold
	default:
		sig = SignalSell
	}

	reason := fmt.Sprintf("owner earnings yield %.2f%% on $%.0f market cap", yieldPct, marketCap)
	return bandedResult(MethodOwnerEarningsYield, sig, reason, map[string]float64{"yield_pct": yieldPct})
}
