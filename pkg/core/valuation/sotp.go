package valuation

import (
	"fmt"

	"consensus_valuation/pkg/core/metrics"
)

// CalculateSOTP backs equity value out of the reported enterprise value.
//
// FORMULA: fair value = (EV + cash - debt) / shares outstanding
//
// A true sum-of-the-parts would value each segment separately; with only
// consolidated figures the enterprise value stands in for the parts total.
// Not applicable without a positive enterprise value.
func CalculateSOTP(m *metrics.CompanyMetrics) Result {
	if m.EnterpriseValue == nil || *m.EnterpriseValue <= 0 {
		return notApplicable(MethodSOTP, "no positive enterprise value reported")
	}

	equityValue := *m.EnterpriseValue + m.CashValue() - m.DebtValue()
	fairValue := equityValue / m.SharesOutstanding

	sig := Classify(fairValue, m.CurrentPrice)
	reason := fmt.Sprintf("enterprise value less net debt: fair value $%.2f vs price $%.2f (%+.1f%%)",
		fairValue, m.CurrentPrice, Deviation(fairValue, m.CurrentPrice)*100)
	return applicableResult(MethodSOTP, fairValue, sig, reason, nil)
}
