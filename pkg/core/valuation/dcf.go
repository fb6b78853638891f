package valuation

import (
	"fmt"
	"math"

	"consensus_valuation/pkg/core/metrics"
)

// Two-stage DCF parameters. Years 1-5 compound at the reported growth rate;
// years 6-10 decay that rate by 10% per year but never below the terminal
// rate, which also drives the Gordon terminal value.
const (
	dcfHorizonYears   = 10
	dcfTerminalGrowth = 0.03
	dcfGrowthDecay    = 0.9
)

// CalculateDCF values equity as the present value of ten projected years of
// free cash flow plus a terminal value, adjusted for net cash.
//
// FORMULA: FCF_t = FCF_{t-1} x (1 + g_t)
//
//	g_t = g                              (t <= 5)
//	g_t = max(g x 0.9^(t-5), g_term)     (t > 5)
//
// FORMULA: TV = FCF_10 x (1 + g_term) / (r - g_term)
//
// FORMULA: fair value = (PV(FCF_1..10) + PV(TV) + cash - debt) / shares
//
// Not applicable without positive free cash flow, or when r <= g (the spread
// that funds the valuation is gone and the terminal value diverges).
func CalculateDCF(m *metrics.CompanyMetrics) Result {
	if m.FreeCashFlowTTM == nil || *m.FreeCashFlowTTM <= 0 {
		return notApplicable(MethodDCF, "no positive free cash flow reported")
	}

	growth := m.GrowthOrDefault()
	discount := m.DiscountOrDefault()
	if discount <= growth {
		return notApplicable(MethodDCF, fmt.Sprintf(
			"discount rate %.1f%% does not exceed growth rate %.1f%%", discount*100, growth*100))
	}
	if discount <= dcfTerminalGrowth {
		return notApplicable(MethodDCF, fmt.Sprintf(
			"discount rate %.1f%% does not exceed terminal growth %.1f%%", discount*100, dcfTerminalGrowth*100))
	}

	var pv float64
	fcf := *m.FreeCashFlowTTM
	for year := 1; year <= dcfHorizonYears; year++ {
		g := growth
		if year > 5 {
			g = growth * math.Pow(dcfGrowthDecay, float64(year-5))
			if g < dcfTerminalGrowth {
				g = dcfTerminalGrowth
			}
		}
		fcf *= 1 + g
		pv += fcf / math.Pow(1+discount, float64(year))
	}

	terminalValue := fcf * (1 + dcfTerminalGrowth) / (discount - dcfTerminalGrowth)
	pv += terminalValue / math.Pow(1+discount, float64(dcfHorizonYears))

	equityValue := pv + m.CashValue() - m.DebtValue()
	fairValue := equityValue / m.SharesOutstanding

	sig := Classify(fairValue, m.CurrentPrice)
	reason := fmt.Sprintf("10yr FCF at %.1f%% growth, %.0f%% discount: fair value $%.2f vs price $%.2f (%+.1f%%)",
		growth*100, discount*100, fairValue, m.CurrentPrice, Deviation(fairValue, m.CurrentPrice)*100)
	return applicableResult(MethodDCF, fairValue, sig, reason, nil)
}
