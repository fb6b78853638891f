package valuation

import (
	"fmt"

	"consensus_valuation/pkg/core/metrics"
)

// grahamBaseMultiple is the P/E a no-growth company deserves under the
// revised 1974 formulation; grahamRefYield is the 4.4% AAA corporate bond
// yield the formula was normalized against.
const (
	grahamBaseMultiple = 8.5
	grahamGrowthWeight = 2.0
	grahamRefYield     = 4.4
)

// CalculateGraham applies Benjamin Graham's revised intrinsic value formula,
// rescaled by the current AAA corporate bond yield.
//
// FORMULA: V = EPS x (8.5 + 2g) x 4.4 / Y
//
// where g is the growth rate in percent and Y the AAA bond yield in percent.
// Not applicable without positive earnings per share.
func CalculateGraham(m *metrics.CompanyMetrics) Result {
	eps, ok := m.EPSValue()
	if !ok || eps <= 0 {
		return notApplicable(MethodGraham, "no positive earnings per share")
	}

	growthPct := m.GrowthOrDefault() * 100
	bondYield := m.BondYieldOrDefault()

	fairValue := eps * (grahamBaseMultiple + grahamGrowthWeight*growthPct) * grahamRefYield / bondYield

	sig := Classify(fairValue, m.CurrentPrice)
	reason := fmt.Sprintf("EPS $%.2f at %.1f%% growth, %.2f%% AAA yield: fair value $%.2f vs price $%.2f (%+.1f%%)",
		eps, growthPct, bondYield, fairValue, m.CurrentPrice, Deviation(fairValue, m.CurrentPrice)*100)
	return applicableResult(MethodGraham, fairValue, sig, reason, nil)
}
