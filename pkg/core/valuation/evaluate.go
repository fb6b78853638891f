package valuation

import "consensus_valuation/pkg/core/metrics"

// methodFuncs maps each method to its calculator. Order is fixed by
// AllMethods so every caller sees the same decision matrix.
var methodFuncs = map[Method]func(*metrics.CompanyMetrics) Result{
	MethodDCF:                CalculateDCF,
	MethodPaybackTime:        CalculatePaybackTime,
	MethodOwnerEarningsYield: CalculateOwnerEarningsYield,
	MethodGraham:             CalculateGraham,
	MethodPEMultiples:        CalculatePEMultiples,
	MethodAssetBased:         CalculateAssetBased,
	MethodSOTP:               CalculateSOTP,
	MethodDDM:                CalculateDDM,
	MethodPEGRatios:          CalculatePEGRatios,
}

// EvaluateAll runs every valuation method against the same metrics snapshot
// and returns one result per method in matrix order. Methods never fail;
// what a method cannot price it reports as not applicable.
func EvaluateAll(m *metrics.CompanyMetrics) []Result {
	results := make([]Result, 0, MethodCount)
	for _, method := range AllMethods() {
		results = append(results, methodFuncs[method](m))
	}
	return results
}

// Evaluate runs a single method by name.
func Evaluate(method Method, m *metrics.CompanyMetrics) (Result, bool) {
	fn, ok := methodFuncs[method]
	if !ok {
		return Result{}, false
	}
	return fn(m), true
}
