package consensus

import (
	"consensus_valuation/pkg/core/metrics"
	"consensus_valuation/pkg/core/valuation"
)

// Analysis bundles everything one report needs: the snapshot the methods
// ran against, the nine results in matrix order, and the aggregate verdict.
type Analysis struct {
	Metrics        *metrics.CompanyMetrics `json:"metrics"`
	Results        []valuation.Result      `json:"results"`
	Recommendation *Recommendation         `json:"recommendation"`
}

// Analyze runs the full engine against one snapshot: all nine methods, then
// aggregation. Returns ErrInsufficientData when nothing was applicable.
func Analyze(m *metrics.CompanyMetrics) (*Analysis, error) {
	results := valuation.EvaluateAll(m)
	rec, err := Aggregate(results, m.CurrentPrice)
	if err != nil {
		return nil, err
	}
	return &Analysis{
		Metrics:        m,
		Results:        results,
		Recommendation: rec,
	}, nil
}

// ResultFor returns the result for one method, if present.
func (a *Analysis) ResultFor(method valuation.Method) (valuation.Result, bool) {
	for _, res := range a.Results {
		if res.Method == method {
			return res, true
		}
	}
	return valuation.Result{}, false
}
