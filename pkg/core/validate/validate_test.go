package validate

import (
	"math"
	"strings"
	"testing"
	"time"

	"consensus_valuation/pkg/core/consensus"
	"consensus_valuation/pkg/core/metrics"
	"consensus_valuation/pkg/core/report"
	"consensus_valuation/pkg/core/valuation"
)

func fv(v float64) *float64 { return &v }

func fixtureAnalysis() *consensus.Analysis {
	m := &metrics.CompanyMetrics{
		Ticker:            "ACME",
		CompanyName:       "Acme Corp",
		AsOf:              time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC),
		CurrentPrice:      100,
		SharesOutstanding: 1000,
	}
	results := []valuation.Result{
		{Method: valuation.MethodDCF, Applicable: true, FairValue: fv(130), Signal: valuation.SignalBuy, Reasoning: "Fair value $130.00 vs price $100.00"},
		{Method: valuation.MethodPaybackTime, Applicable: true, Signal: valuation.SignalBuy, Reasoning: "Payback in 8 years"},
		{Method: valuation.MethodOwnerEarningsYield, Applicable: true, Signal: valuation.SignalHold, Reasoning: "Yield 6.5%"},
		{Method: valuation.MethodGrahamFormula, Applicable: true, FairValue: fv(102), Signal: valuation.SignalHold, Reasoning: "Fair value $102.00"},
		{Method: valuation.MethodPEMultiples, Applicable: true, Signal: valuation.SignalHold, Reasoning: "P/E 18.2"},
		{Method: valuation.MethodAssetBased, Applicable: true, FairValue: fv(95), Signal: valuation.SignalHold, Reasoning: "Book value $95.00 per share"},
		{Method: valuation.MethodSOTP, Applicable: false, Signal: valuation.SignalNA, Reasoning: "Enterprise value unavailable"},
		{Method: valuation.MethodDDM, Applicable: false, Signal: valuation.SignalNA, Reasoning: "No dividend"},
		{Method: valuation.MethodPEGRatios, Applicable: true, Signal: valuation.SignalSell, Reasoning: "Average PEG 2.3"},
	}
	return &consensus.Analysis{
		Metrics: m,
		Results: results,
		Recommendation: &consensus.Recommendation{
			OverallSignal: valuation.SignalHold,
			TargetLow:     95,
			TargetHigh:    102,
			TimeHorizon:   consensus.DefaultTimeHorizon,
			Tally:         consensus.Tally{Buy: 2, Hold: 4, Sell: 1, NotApplicable: 2},
		},
	}
}

func fixtureNarrative() *report.Narrative {
	return &report.Narrative{
		Strengths: []report.NarrativeItem{
			{Title: "Cash Generation", Detail: "Free cash flow covers the valuation."},
		},
		Risks: []report.NarrativeItem{
			{Title: "Growth Premium", Detail: "PEG pricing embeds optimistic growth."},
		},
		GrowthAnalysis: "Growth assumptions are mid single digit.",
		Recommendation: "Hold at current levels.",
	}
}

func TestValidateAnalysisClean(t *testing.T) {
	rep := ValidateAnalysis(fixtureAnalysis())
	if !rep.AllPassed {
		t.Fatalf("Expected clean analysis to pass, failed checks: %v", rep.FailedChecks)
	}
	if rep.ResultCount != 9 {
		t.Errorf("Expected 9 results, got %d", rep.ResultCount)
	}
	if !rep.Tally.IsConsistent || !rep.Signal.IsLinked {
		t.Error("Expected tally and signal checks to pass")
	}
}

func TestValidateAnalysisDetectsTallyDrift(t *testing.T) {
	a := fixtureAnalysis()
	a.Recommendation.Tally.Buy = 5

	rep := ValidateAnalysis(a)
	if rep.AllPassed {
		t.Fatal("Expected tampered tally to fail")
	}
	if rep.Tally.IsConsistent {
		t.Error("Expected tally check to flag the drift")
	}
	if !rep.Signal.IsLinked {
		t.Error("Signal check recounts votes itself and should still pass")
	}
}

func TestValidateAnalysisDetectsVerdictDrift(t *testing.T) {
	a := fixtureAnalysis()
	a.Recommendation.OverallSignal = valuation.SignalBuy

	rep := ValidateAnalysis(a)
	if rep.AllPassed {
		t.Fatal("Expected mismatched verdict to fail")
	}
	if rep.Signal.IsLinked {
		t.Error("Expected signal check to flag the mismatch")
	}
	if rep.Signal.Rederived != valuation.SignalHold {
		t.Errorf("Expected re-derived HOLD, got %s", rep.Signal.Rederived)
	}
}

func TestValidateAnalysisBadTargetRange(t *testing.T) {
	a := fixtureAnalysis()
	a.Recommendation.TargetLow = 120
	a.Recommendation.TargetHigh = 90

	rep := ValidateAnalysis(a)
	if rep.AllPassed {
		t.Fatal("Expected inverted range to fail")
	}
	if rep.TargetRange.IsOrdered {
		t.Error("Expected range check to flag low > high")
	}
}

func TestValidateAnalysisBadFairValues(t *testing.T) {
	a := fixtureAnalysis()
	a.Results[0].FairValue = fv(math.NaN())
	a.Results[6].FairValue = fv(50) // SOTP did not run

	rep := ValidateAnalysis(a)
	if rep.AllPassed {
		t.Fatal("Expected bad fair values to fail")
	}
	if len(rep.FairValues.BadValues) != 2 {
		t.Errorf("Expected 2 flagged values, got %v", rep.FairValues.BadValues)
	}
}

func TestValidateReportOutputClean(t *testing.T) {
	a := fixtureAnalysis()
	markdown := report.Render(a, fixtureNarrative())

	link := ValidateReportOutput(markdown, a)
	if !link.AllPassed {
		t.Fatalf("Expected rendered report to pass, failed checks: %v", link.FailedChecks)
	}
	if link.MatrixRows != 9 {
		t.Errorf("Expected 9 matrix rows, got %d", link.MatrixRows)
	}
	if !link.VerdictLinked {
		t.Error("Expected verdict to appear in both headings")
	}
}

func TestValidateReportOutputDetectsVerdictTamper(t *testing.T) {
	a := fixtureAnalysis()
	markdown := report.Render(a, fixtureNarrative())
	markdown = strings.Replace(markdown, "## Recommendation: **HOLD**", "## Recommendation: **BUY**", 1)

	link := ValidateReportOutput(markdown, a)
	if link.AllPassed {
		t.Fatal("Expected tampered verdict to fail")
	}
	if link.VerdictLinked {
		t.Error("Expected verdict linkage to flag the edit")
	}
}

func TestValidateReportOutputDetectsMissingRow(t *testing.T) {
	a := fixtureAnalysis()
	markdown := report.Render(a, fixtureNarrative())
	markdown = strings.Replace(markdown, "| DCF | **BUY** | Fair value $130.00 vs price $100.00 |\n", "", 1)

	link := ValidateReportOutput(markdown, a)
	if link.AllPassed {
		t.Fatal("Expected missing matrix row to fail")
	}
	if link.MatrixRows != 8 {
		t.Errorf("Expected 8 rows after removal, got %d", link.MatrixRows)
	}
}
