package narrative

import (
	"context"
	"fmt"
	"strings"

	"consensus_valuation/pkg/core/consensus"
	"consensus_valuation/pkg/core/report"
	"consensus_valuation/pkg/core/valuation"
)

// TemplateNarrator derives every sentence from the analysis itself. It is
// the default narrator and the fallback when an LLM narrator fails; output
// is deterministic for a given analysis.
type TemplateNarrator struct{}

var _ Narrator = (*TemplateNarrator)(nil)

func (t *TemplateNarrator) Generate(_ context.Context, a *consensus.Analysis) (*report.Narrative, error) {
	rec := a.Recommendation
	overall := rec.OverallSignal

	return &report.Narrative{
		Strengths:      strengthItems(a, overall),
		Risks:          riskItems(a, overall),
		GrowthAnalysis: growthAnalysis(a),
		Recommendation: recommendationText(a),
	}, nil
}

// strengthItems lists the methods agreeing with the verdict, then summary
// facts, capped at the template's four points.
func strengthItems(a *consensus.Analysis, overall valuation.Signal) []report.NarrativeItem {
	var items []report.NarrativeItem
	for _, res := range a.Results {
		if !res.Applicable || res.Signal != overall || len(items) == 3 {
			continue
		}
		items = append(items, report.NarrativeItem{
			Title:  fmt.Sprintf("%s Support", res.Method.DisplayName()),
			Detail: res.Reasoning,
		})
	}

	tally := a.Recommendation.Tally
	applicable := tally.Sum() - tally.NotApplicable
	items = append(items, report.NarrativeItem{
		Title: "Method Coverage",
		Detail: fmt.Sprintf("%d of %d methods reached a verdict and %d of those back %s",
			applicable, tally.Sum(), tally.Count(overall), overall),
	})
	if len(items) < maxItems {
		items = append(items, report.NarrativeItem{
			Title: "Valuation Range",
			Detail: fmt.Sprintf("fair-value estimates consistent with the verdict span $%.2f-$%.2f",
				a.Recommendation.TargetLow, a.Recommendation.TargetHigh),
		})
	}
	return items
}

// riskItems lists the dissenting methods and data gaps.
func riskItems(a *consensus.Analysis, overall valuation.Signal) []report.NarrativeItem {
	var items []report.NarrativeItem
	for _, res := range a.Results {
		if !res.Applicable || res.Signal == overall || len(items) == 3 {
			continue
		}
		items = append(items, report.NarrativeItem{
			Title:  fmt.Sprintf("%s Dissent", res.Method.DisplayName()),
			Detail: res.Reasoning,
		})
	}

	var gaps []string
	for _, res := range a.Results {
		if !res.Applicable {
			gaps = append(gaps, res.Method.DisplayName())
		}
	}
	if len(gaps) > 0 && len(items) < maxItems {
		items = append(items, report.NarrativeItem{
			Title:  "Data Gaps",
			Detail: fmt.Sprintf("%d methods could not run: %s", len(gaps), strings.Join(gaps, ", ")),
		})
	}
	if len(items) < maxItems {
		items = append(items, report.NarrativeItem{
			Title: "Assumption Sensitivity",
			Detail: fmt.Sprintf("estimates lean on a %.1f%% growth and %.1f%% discount assumption; small changes move every model in the same direction",
				a.Metrics.GrowthOrDefault()*100, a.Metrics.DiscountOrDefault()*100),
		})
	}
	return items
}

func growthAnalysis(a *consensus.Analysis) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("The analysis assumes %.1f%% annual growth.", a.Metrics.GrowthOrDefault()*100))

	if res, ok := a.ResultFor(valuation.MethodPEGRatios); ok {
		if res.Applicable {
			sb.WriteString(fmt.Sprintf(" Growth-adjusted multiples average a %.2f PEG, reading %s.",
				res.Extras["peg"], res.Signal))
		} else {
			sb.WriteString(" Growth-adjusted multiples were not computable for this snapshot.")
		}
	}
	if res, ok := a.ResultFor(valuation.MethodDCF); ok && res.HasFairValue() {
		sb.WriteString(fmt.Sprintf(" Compounding cash flows at that rate puts DCF fair value at $%.2f against the $%.2f price.",
			*res.FairValue, a.Metrics.CurrentPrice))
	}
	return sb.String()
}

func recommendationText(a *consensus.Analysis) string {
	rec := a.Recommendation
	return fmt.Sprintf("%s %s. %d of %d methods support this reading; the fair-value work points to a $%.2f-$%.2f range over %s.",
		rec.OverallSignal, a.Metrics.Ticker, rec.Tally.Count(rec.OverallSignal), rec.Tally.Sum(),
		rec.TargetLow, rec.TargetHigh, rec.TimeHorizon)
}
