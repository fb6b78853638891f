package valuation

import (
	"fmt"
	"sort"
	"strings"

	"consensus_valuation/pkg/core/metrics"
)

// CalculatePEGRatios averages growth-adjusted multiples.
//
// FORMULA: PEG_x = multiple_x / (g x 100)  for x in {P/E, P/S, P/B, P/FCF}
//
// Only multiples that are positive and derivable participate. The average
// PEG carries the signal: <1 BUY, <2 HOLD, otherwise SELL. Not applicable
// without positive growth or without any usable multiple.
func CalculatePEGRatios(m *metrics.CompanyMetrics) Result {
	growthPct := m.GrowthOrDefault() * 100
	if growthPct <= 0 {
		return notApplicable(MethodPEGRatios, "no positive growth rate to adjust against")
	}

	components := map[string]float64{}
	if pe, ok := m.PE(); ok {
		components["peg_pe"] = pe / growthPct
	}
	if ps, ok := m.PS(); ok {
		components["peg_ps"] = ps / growthPct
	}
	if pb, ok := m.PB(); ok {
		components["peg_pb"] = pb / growthPct
	}
	if pfcf, ok := m.PFCF(); ok {
		components["peg_pfcf"] = pfcf / growthPct
	}
	if len(components) == 0 {
		return notApplicable(MethodPEGRatios, "no positive multiples to growth-adjust")
	}

	sum := 0.0
	names := make([]string, 0, len(components))
	for name, v := range components {
		sum += v
		names = append(names, strings.TrimPrefix(name, "peg_"))
	}
	sort.Strings(names)
	avg := sum / float64(len(components))

	var sig Signal
	switch {
	case avg < 1:
		sig = SignalBuy
	case avg < 2:
		sig = SignalHold
	default:
		sig = SignalSell
	}

	extras := components
	extras["peg"] = avg
	reason := fmt.Sprintf("average PEG %.2f across %s at %.1f%% growth", avg, strings.Join(names, "/"), growthPct)
	return bandedResult(MethodPEGRatios, sig, reason, extras)
}
