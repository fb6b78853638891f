// Package report renders analysis output into its two delivery shapes: the
// fixed-structure markdown document and the flat quick-metrics JSON.
//
// Rendering is pure formatting. Every number in a report was computed
// upstream; nothing here does arithmetic beyond display rounding.
package report

import (
	"fmt"
	"strings"

	"consensus_valuation/pkg/core/consensus"
	"consensus_valuation/pkg/core/valuation"
)

// NarrativeItem is one bold-titled point in a considerations section.
type NarrativeItem struct {
	Title  string `json:"title"`
	Detail string `json:"detail"`
}

// Narrative carries the prose sections of a report. It is produced by a
// narrator (templated or LLM-backed) and consumed verbatim here; the
// renderer never lets narrative text override a computed number.
type Narrative struct {
	Strengths      []NarrativeItem `json:"strengths"`
	Risks          []NarrativeItem `json:"risks"`
	GrowthAnalysis string          `json:"growth_analysis"`
	Recommendation string          `json:"recommendation"`
}

// Render produces the full markdown report in the fixed section order:
// decision matrix, final assessment with vote tally, key considerations,
// growth-adjusted analysis, recommendation with target range, vintage footer.
func Render(a *consensus.Analysis, n *Narrative) string {
	rec := a.Recommendation
	verdict := string(rec.OverallSignal)
	primary := titleSignal(rec.OverallSignal)
	alternative := titleSignal(rec.Tally.RunnerUp(rec.OverallSignal))

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("# Investment Analysis Report: %s\n\n", a.Metrics.CompanyName))

	sb.WriteString("## Investment Decision Matrix\n\n")
	sb.WriteString("| Method | Signal | Reason |\n")
	sb.WriteString("|--------|--------|---------|\n")
	for _, res := range a.Results {
		sb.WriteString(fmt.Sprintf("| %s | **%s** | %s |\n", res.Method.DisplayName(), res.Signal, res.Reasoning))
	}
	sb.WriteString("\n")

	sb.WriteString(fmt.Sprintf("## Final Assessment: **%s**\n\n", verdict))
	sb.WriteString("### Vote Tally:\n")
	sb.WriteString(fmt.Sprintf("- **BUY:** %d methods\n", rec.Tally.Buy))
	sb.WriteString(fmt.Sprintf("- **HOLD:** %d methods\n", rec.Tally.Hold))
	sb.WriteString(fmt.Sprintf("- **SELL:** %d methods\n", rec.Tally.Sell))
	sb.WriteString(fmt.Sprintf("- **N/A:** %d methods\n\n", rec.Tally.NotApplicable))

	sb.WriteString("## Key Considerations:\n\n")
	sb.WriteString(fmt.Sprintf("### Why %s Rather Than %s:\n", primary, alternative))
	writeItems(&sb, n.Strengths)
	sb.WriteString("\n### Why Caution Is Warranted:\n")
	writeItems(&sb, n.Risks)
	sb.WriteString("\n")

	sb.WriteString("## Growth-Adjusted Analysis:\n")
	sb.WriteString(n.GrowthAnalysis)
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("## Recommendation: **%s**\n", verdict))
	sb.WriteString(n.Recommendation)
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("**Risk-Adjusted Target:** $%.2f-$%.2f range represents more attractive entry points.\n\n",
		rec.TargetLow, rec.TargetHigh))

	sb.WriteString(fmt.Sprintf("*Time horizon: %s. Data as of %s.*\n",
		rec.TimeHorizon, a.Metrics.AsOf.Format("2006-01-02")))

	return sb.String()
}

// Filename returns the conventional report filename for a ticker.
func Filename(ticker string) string {
	return fmt.Sprintf("%s_investment_report.md", ticker)
}

func writeItems(sb *strings.Builder, items []NarrativeItem) {
	for i, item := range items {
		sb.WriteString(fmt.Sprintf("%d. **%s:** %s\n", i+1, item.Title, item.Detail))
	}
}

func titleSignal(sig valuation.Signal) string {
	switch sig {
	case valuation.SignalBuy:
		return "Buy"
	case valuation.SignalHold:
		return "Hold"
	case valuation.SignalSell:
		return "Sell"
	}
	return string(sig)
}
