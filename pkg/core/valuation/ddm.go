package valuation

import (
	"fmt"

	"consensus_valuation/pkg/core/metrics"
)

// ddmGrowthMargin keeps the Gordon denominator open: dividend growth is
// capped at the discount rate minus this margin.
const ddmGrowthMargin = 0.01

// CalculateDDM runs the Gordon growth dividend discount model.
//
// FORMULA: D0 = price x dividend yield
//
// FORMULA: V = D0 x (1 + g) / (r - g), with g capped at r - 0.01
//
// The cap makes the model defined for any positive yield; fast growers
// simply converge to the capped perpetuity. Not applicable without a
// positive dividend yield.
func CalculateDDM(m *metrics.CompanyMetrics) Result {
	if m.DividendYield == nil || *m.DividendYield <= 0 {
		return notApplicable(MethodDDM, "no dividend paid")
	}

	discount := m.DiscountOrDefault()
	growth := m.GrowthOrDefault()
	if capped := discount - ddmGrowthMargin; growth > capped {
		growth = capped
	}

	d0 := m.CurrentPrice * *m.DividendYield
	fairValue := d0 * (1 + growth) / (discount - growth)

	sig := Classify(fairValue, m.CurrentPrice)
	reason := fmt.Sprintf("dividend $%.2f growing %.1f%%, discounted at %.0f%%: fair value $%.2f vs price $%.2f (%+.1f%%)",
		d0, growth*100, discount*100, fairValue, m.CurrentPrice, Deviation(fairValue, m.CurrentPrice)*100)
	return applicableResult(MethodDDM, fairValue, sig, reason, nil)
}
