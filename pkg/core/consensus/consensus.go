// Package consensus turns nine per-method verdicts into one recommendation.
package consensus

import (
	"errors"

	"consensus_valuation/pkg/core/valuation"
)

// ErrInsufficientData is returned when every method came back not applicable.
// A recommendation built from zero applicable methods would be vacuous.
var ErrInsufficientData = errors.New("insufficient data: all valuation methods returned N/A")

// DefaultTimeHorizon is the horizon attached to every recommendation.
const DefaultTimeHorizon = "12-18 months"

// Tally counts votes per signal. For a full run the four counts sum to
// exactly the number of methods.
type Tally struct {
	Buy           int `json:"buy"`
	Hold          int `json:"hold"`
	Sell          int `json:"sell"`
	NotApplicable int `json:"not_applicable"`
}

// Sum returns the total number of votes counted.
func (t Tally) Sum() int {
	return t.Buy + t.Hold + t.Sell + t.NotApplicable
}

// Count returns the votes for one signal.
func (t Tally) Count(sig valuation.Signal) int {
	switch sig {
	case valuation.SignalBuy:
		return t.Buy
	case valuation.SignalHold:
		return t.Hold
	case valuation.SignalSell:
		return t.Sell
	case valuation.SignalNA:
		return t.NotApplicable
	}
	return 0
}

// RunnerUp returns the strongest losing signal, used to frame the verdict
// against its nearest alternative. Ties follow the same conservative
// precedence as the plurality itself.
func (t Tally) RunnerUp(winner valuation.Signal) valuation.Signal {
	runner := valuation.SignalHold
	best := -1
	for _, sig := range pluralityOrder {
		if sig == winner {
			continue
		}
		if n := t.Count(sig); n > best {
			runner = sig
			best = n
		}
	}
	return runner
}

// TallySignals counts one vote per result.
func TallySignals(results []valuation.Result) Tally {
	var t Tally
	for _, res := range results {
		switch res.Signal {
		case valuation.SignalBuy:
			t.Buy++
		case valuation.SignalHold:
			t.Hold++
		case valuation.SignalSell:
			t.Sell++
		default:
			t.NotApplicable++
		}
	}
	return t
}

// Recommendation is the aggregate verdict over one snapshot.
type Recommendation struct {
	OverallSignal valuation.Signal `json:"overall_signal"`
	TargetLow     float64          `json:"target_low"`
	TargetHigh    float64          `json:"target_high"`
	TimeHorizon   string           `json:"time_horizon"`
	Tally         Tally            `json:"tally"`
}

// pluralityOrder breaks ties conservatively: the less extreme action wins.
var pluralityOrder = []valuation.Signal{
	valuation.SignalHold,
	valuation.SignalSell,
	valuation.SignalBuy,
}

// Aggregate derives the overall recommendation from the per-method results.
//
// The overall signal is the plurality winner among BUY, HOLD and SELL; N/A
// votes never win. Ties resolve HOLD over SELL over BUY. The target range
// spans the fair values of the methods that agree with the winning signal,
// widening to all fair-value methods and finally to a +/-10% band around the
// current price when no method priced the company.
func Aggregate(results []valuation.Result, currentPrice float64) (*Recommendation, error) {
	tally := TallySignals(results)
	if tally.NotApplicable == len(results) {
		return nil, ErrInsufficientData
	}

	overall := pluralityOrder[0]
	best := -1
	for _, sig := range pluralityOrder {
		if n := tally.Count(sig); n > best {
			overall = sig
			best = n
		}
	}

	low, high, ok := fairValueRange(results, overall)
	if !ok {
		low, high, ok = fairValueRange(results, "")
	}
	if !ok {
		low, high = currentPrice*0.9, currentPrice*1.1
	}

	return &Recommendation{
		OverallSignal: overall,
		TargetLow:     low,
		TargetHigh:    high,
		TimeHorizon:   DefaultTimeHorizon,
		Tally:         tally,
	}, nil
}

// fairValueRange spans the fair values of methods voting sig; an empty sig
// matches every fair-value method.
func fairValueRange(results []valuation.Result, sig valuation.Signal) (low, high float64, ok bool) {
	for _, res := range results {
		if !res.HasFairValue() {
			continue
		}
		if sig != "" && res.Signal != sig {
			continue
		}
		fv := *res.FairValue
		if !ok {
			low, high, ok = fv, fv, true
			continue
		}
		if fv < low {
			low = fv
		}
		if fv > high {
			high = fv
		}
	}
	return low, high, ok
}
