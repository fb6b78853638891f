package valuation

import (
	"fmt"

	"consensus_valuation/pkg/core/metrics"
)

// CalculatePEMultiples judges the price against earnings multiples.
//
// The trailing P/E carries the signal: <15 BUY, <25 HOLD, otherwise SELL.
// When EV/EBITDA is available it colors the reasoning (<10 cheap, <15
// reasonable) but never overrides the P/E band.
//
// Not applicable when no positive P/E can be reported or derived.
func CalculatePEMultiples(m *metrics.CompanyMetrics) Result {
	pe, ok := m.PE()
	if !ok {
		return notApplicable(MethodPEMultiples, "no positive earnings to form a P/E ratio")
	}

	var sig Signal
	switch {
	case pe < 15:
		sig = SignalBuy
	case pe < 25:
		sig = SignalHold
	default:
		sig = SignalSell
	}

	extras := map[string]float64{"pe": pe}
	reason := fmt.Sprintf("trailing P/E %.1f", pe)
	if evEbitda, ok := m.EVEbitda(); ok {
		extras["ev_ebitda"] = evEbitda
		switch {
		case evEbitda < 10:
			reason += fmt.Sprintf(", EV/EBITDA %.1f (cheap)", evEbitda)
		case evEbitda < 15:
			reason += fmt.Sprintf(", EV/EBITDA %.1f (reasonable)", evEbitda)
		default:
			reason += fmt.Sprintf(", EV/EBITDA %.1f (rich)", evEbitda)
		}
	}

	return bandedResult(MethodPEMultiples, sig, reason, extras)
}
