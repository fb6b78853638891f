package valuation

import (
	"fmt"

	"consensus_valuation/pkg/core/metrics"
)

// paybackCapYears bounds the projection; beyond it the earnings never
// recover the purchase price at the assumed growth rate.
const paybackCapYears = 100

// CalculatePaybackTime counts the years of compounding owner earnings needed
// to recover the full market capitalization.
//
// FORMULA: payback = min { n : sum_{t=1..n} FCF x (1 + g)^t >= market cap }
//
// Signal bands: <=10 years BUY, <=20 years HOLD, otherwise SELL. The method
// yields no fair value; the band itself is the verdict.
func CalculatePaybackTime(m *metrics.CompanyMetrics) Result {
	if m.FreeCashFlowTTM == nil || *m.FreeCashFlowTTM <= 0 {
		return notApplicable(MethodPaybackTime, "no positive free cash flow reported")
	}

	marketCap := m.MarketCapOrDerived()
	if marketCap <= 0 {
		return notApplicable(MethodPaybackTime, "market capitalization unavailable")
	}

	growth := m.GrowthOrDefault()
	earnings := *m.FreeCashFlowTTM
	cumulative := 0.0
	years := 0
	for years < paybackCapYears {
		earnings *= 1 + growth
		cumulative += earnings
		years++
		if cumulative >= marketCap {
			break
		}
	}

	var sig Signal
	switch {
	case cumulative < marketCap:
		sig = SignalSell
	case years <= 10:
		sig = SignalBuy
	case years <= 20:
		sig = SignalHold
	default:
		sig = SignalSell
	}

	var reason string
	if cumulative < marketCap {
		reason = fmt.Sprintf("owner earnings do not recover the $%.0f market cap within %d years at %.1f%% growth",
			marketCap, paybackCapYears, growth*100)
	} else {
		reason = fmt.Sprintf("%d years of owner earnings at %.1f%% growth recover the $%.0f market cap",
			years, growth*100, marketCap)
	}
	return bandedResult(MethodPaybackTime, sig, reason, map[string]float64{"years": float64(years)})
}
