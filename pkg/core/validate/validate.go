// Package validate re-derives the bookkeeping of a completed analysis and
// checks it against what the analysis records. These functions can be called
// from tests, API handlers, or the pipeline before a report is persisted.
package validate

import (
	"fmt"
	"math"

	"consensus_valuation/pkg/core/consensus"
	"consensus_valuation/pkg/core/valuation"
)

// =============================================================================
// ANALYSIS SELF-CONSISTENCY
// Every check recomputes its figure from the per-method results rather than
// trusting the recorded aggregate.
// =============================================================================

// TallyCheck compares the recorded vote tally against a recount.
type TallyCheck struct {
	Recorded     consensus.Tally `json:"recorded"`
	Computed     consensus.Tally `json:"computed"`
	IsConsistent bool            `json:"is_consistent"`
}

// SignalCheck re-derives the overall signal from the recount. Ties keep the
// conservative order: HOLD beats SELL beats BUY.
type SignalCheck struct {
	Recorded  valuation.Signal `json:"recorded"`
	Rederived valuation.Signal `json:"rederived"`
	IsLinked  bool             `json:"is_linked"`
}

// TargetRangeCheck verifies the price target interval is usable.
type TargetRangeCheck struct {
	Low        float64 `json:"low"`
	High       float64 `json:"high"`
	IsOrdered  bool    `json:"is_ordered"`
	IsFinite   bool    `json:"is_finite"`
	IsPositive bool    `json:"is_positive"`
}

// FairValueCheck verifies per-method fair values: finite when present,
// absent on methods that did not run.
type FairValueCheck struct {
	BadValues []string `json:"bad_values,omitempty"`
	IsClean   bool     `json:"is_clean"`
}

// AnalysisReport aggregates all self-consistency checks for one analysis.
type AnalysisReport struct {
	Ticker       string            `json:"ticker"`
	ResultCount  int               `json:"result_count"`
	Tally        *TallyCheck       `json:"tally"`
	Signal       *SignalCheck      `json:"signal"`
	TargetRange  *TargetRangeCheck `json:"target_range"`
	FairValues   *FairValueCheck   `json:"fair_values"`
	AllPassed    bool              `json:"all_passed"`
	FailedChecks []string          `json:"failed_checks,omitempty"`
}

// ValidateAnalysis recomputes tally, signal, and value sanity for a
// completed analysis.
func ValidateAnalysis(a *consensus.Analysis) *AnalysisReport {
	report := &AnalysisReport{
		Ticker:      a.Metrics.Ticker,
		ResultCount: len(a.Results),
		AllPassed:   true,
	}

	report.Tally = checkTally(a)
	if !report.Tally.IsConsistent {
		report.fail("tally recount does not match recorded tally")
	}

	report.Signal = checkSignal(a, report.Tally.Computed)
	if !report.Signal.IsLinked {
		report.fail(fmt.Sprintf("overall signal %s does not follow from the votes (re-derived %s)",
			report.Signal.Recorded, report.Signal.Rederived))
	}

	report.TargetRange = checkTargetRange(a)
	if !report.TargetRange.IsOrdered || !report.TargetRange.IsFinite || !report.TargetRange.IsPositive {
		report.fail(fmt.Sprintf("unusable target range %.2f-%.2f",
			report.TargetRange.Low, report.TargetRange.High))
	}

	report.FairValues = checkFairValues(a)
	if !report.FairValues.IsClean {
		report.fail(fmt.Sprintf("bad fair values: %v", report.FairValues.BadValues))
	}

	return report
}

func (r *AnalysisReport) fail(reason string) {
	r.AllPassed = false
	r.FailedChecks = append(r.FailedChecks, reason)
}

func checkTally(a *consensus.Analysis) *TallyCheck {
	var computed consensus.Tally
	for _, res := range a.Results {
		switch res.Signal {
		case valuation.SignalBuy:
			computed.Buy++
		case valuation.SignalHold:
			computed.Hold++
		case valuation.SignalSell:
			computed.Sell++
		default:
			computed.NotApplicable++
		}
	}
	recorded := a.Recommendation.Tally
	return &TallyCheck{
		Recorded:     recorded,
		Computed:     computed,
		IsConsistent: recorded == computed,
	}
}

func checkSignal(a *consensus.Analysis, computed consensus.Tally) *SignalCheck {
	rederived := valuation.SignalHold
	best := -1
	for _, sig := range []valuation.Signal{valuation.SignalHold, valuation.SignalSell, valuation.SignalBuy} {
		if n := computed.Count(sig); n > best {
			best = n
			rederived = sig
		}
	}
	recorded := a.Recommendation.OverallSignal
	return &SignalCheck{
		Recorded:  recorded,
		Rederived: rederived,
		IsLinked:  recorded == rederived,
	}
}

func checkTargetRange(a *consensus.Analysis) *TargetRangeCheck {
	low := a.Recommendation.TargetLow
	high := a.Recommendation.TargetHigh
	return &TargetRangeCheck{
		Low:        low,
		High:       high,
		IsOrdered:  low <= high,
		IsFinite:   !math.IsNaN(low) && !math.IsInf(low, 0) && !math.IsNaN(high) && !math.IsInf(high, 0),
		IsPositive: low > 0,
	}
}

func checkFairValues(a *consensus.Analysis) *FairValueCheck {
	check := &FairValueCheck{IsClean: true}
	for _, res := range a.Results {
		if !res.Applicable {
			if res.FairValue != nil {
				check.BadValues = append(check.BadValues,
					fmt.Sprintf("%s: fair value on a method that did not run", res.Method))
			}
			continue
		}
		if res.FairValue == nil {
			continue
		}
		if v := *res.FairValue; math.IsNaN(v) || math.IsInf(v, 0) {
			check.BadValues = append(check.BadValues,
				fmt.Sprintf("%s: non-finite fair value", res.Method))
		}
	}
	check.IsClean = len(check.BadValues) == 0
	return check
}
