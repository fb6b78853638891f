package report

import (
	"math"
	"strconv"

	"consensus_valuation/pkg/core/consensus"
	"consensus_valuation/pkg/core/valuation"
)

// QuickMetrics is the flat screening surface: the four headline methods plus
// the common ratios, without the full report. Values stay absent when their
// method was not applicable; only signals always render.
type QuickMetrics struct {
	Ticker       string  `json:"ticker"`
	CurrentPrice float64 `json:"current_price"`

	DCFValue  *float64         `json:"dcf_value,omitempty"`
	DCFSignal valuation.Signal `json:"dcf_signal"`

	PaybackYears  *float64         `json:"payback_years,omitempty"`
	PaybackSignal valuation.Signal `json:"payback_signal"`

	OwnerEarningsYield string           `json:"owner_earnings_yield,omitempty"`
	YieldSignal        valuation.Signal `json:"yield_signal"`

	GrahamValue  *float64         `json:"graham_value,omitempty"`
	GrahamSignal valuation.Signal `json:"graham_signal"`

	PERatio     *float64 `json:"pe_ratio,omitempty"`
	PriceToBook *float64 `json:"price_to_book,omitempty"`

	Recommendation valuation.Signal `json:"recommendation"`
}

// BuildQuickMetrics flattens an analysis into the screening shape.
func BuildQuickMetrics(a *consensus.Analysis) QuickMetrics {
	qm := QuickMetrics{
		Ticker:         a.Metrics.Ticker,
		CurrentPrice:   round2(a.Metrics.CurrentPrice),
		DCFSignal:      valuation.SignalNA,
		PaybackSignal:  valuation.SignalNA,
		YieldSignal:    valuation.SignalNA,
		GrahamSignal:   valuation.SignalNA,
		Recommendation: a.Recommendation.OverallSignal,
	}

	if res, ok := a.ResultFor(valuation.MethodDCF); ok {
		qm.DCFSignal = res.Signal
		if res.FairValue != nil {
			qm.DCFValue = roundPtr(*res.FairValue, 2)
		}
	}
	if res, ok := a.ResultFor(valuation.MethodPaybackTime); ok {
		qm.PaybackSignal = res.Signal
		if years, present := res.Extras["years"]; present {
			qm.PaybackYears = roundPtr(years, 1)
		}
	}
	if res, ok := a.ResultFor(valuation.MethodOwnerEarningsYield); ok {
		qm.YieldSignal = res.Signal
		if pct, present := res.Extras["yield_pct"]; present {
			qm.OwnerEarningsYield = percentString(pct)
		}
	}
	if res, ok := a.ResultFor(valuation.MethodGraham); ok {
		qm.GrahamSignal = res.Signal
		if res.FairValue != nil {
			qm.GrahamValue = roundPtr(*res.FairValue, 2)
		}
	}

	if pe, ok := a.Metrics.PE(); ok {
		qm.PERatio = roundPtr(pe, 2)
	}
	if pb, ok := a.Metrics.PB(); ok {
		qm.PriceToBook = roundPtr(pb, 2)
	}

	return qm
}

// percentString renders "8.75%" style values, trimming trailing zeros the
// way the screening consumers expect ("8.7%", not "8.70%").
func percentString(pct float64) string {
	return strconv.FormatFloat(roundTo(pct, 2), 'f', -1, 64) + "%"
}

func round2(v float64) float64 { return roundTo(v, 2) }

func roundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

func roundPtr(v float64, places int) *float64 {
	r := roundTo(v, places)
	return &r
}
