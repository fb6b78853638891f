package valuation

import "consensus_valuation/pkg/core/metrics"

// CAPM market assumptions used when deriving a discount rate from beta.
const (
	capmRiskFreeRate  = 0.04
	capmEquityPremium = 0.05
	capmFloor         = 0.06
)

// CostOfEquityCAPM derives a discount rate from the company's beta.
//
// FORMULA: Ke = Rf + beta x ERP
//
// The result is floored so a near-zero beta cannot collapse the discount
// rate below the terminal growth assumption. Returns false when beta is
// not reported; callers then stay on the configured discount rate.
func CostOfEquityCAPM(m *metrics.CompanyMetrics) (float64, bool) {
	if m.Beta == nil || *m.Beta <= 0 {
		return 0, false
	}
	ke := capmRiskFreeRate + *m.Beta*capmEquityPremium
	if ke < capmFloor {
		ke = capmFloor
	}
	return ke, true
}
