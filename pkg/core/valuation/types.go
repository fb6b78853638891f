// Package valuation implements the nine-method fair-value engine.
//
// Each method is a pure function over one immutable metrics snapshot. A method
// that cannot run returns an explicit not-applicable result; inapplicability
// is data for the aggregator, never an error and never a zero placeholder.
package valuation

// =============================================================================
// METHODS
// Fixed enumeration, fixed report order. The order is the decision-matrix row
// order and must stay stable so repeated runs render identical reports.
// =============================================================================

// Method identifies one of the nine valuation methods.
type Method string

const (
	MethodDCF                Method = "dcf"
	MethodPaybackTime        Method = "payback_time"
	MethodOwnerEarningsYield Method = "owner_earnings_yield"
	MethodGraham             Method = "graham"
	MethodPEMultiples        Method = "pe_multiples"
	MethodAssetBased         Method = "asset_based"
	MethodSOTP               Method = "sotp"
	MethodDDM                Method = "ddm"
	MethodPEGRatios          Method = "peg_ratios"
)

// MethodCount is the size of a full evaluation run.
const MethodCount = 9

// AllMethods returns the nine methods in decision-matrix order.
func AllMethods() []Method {
	return []Method{
		MethodDCF,
		MethodPaybackTime,
		MethodOwnerEarningsYield,
		MethodGraham,
		MethodPEMultiples,
		MethodAssetBased,
		MethodSOTP,
		MethodDDM,
		MethodPEGRatios,
	}
}

// DisplayName returns the report label for a method.
func (m Method) DisplayName() string {
	switch m {
	case MethodDCF:
		return "DCF"
	case MethodPaybackTime:
		return "Payback Time"
	case MethodOwnerEarningsYield:
		return "Owner Earnings Yield"
	case MethodGraham:
		return "Ben Graham Formula"
	case MethodPEMultiples:
		return "P/E Multiples"
	case MethodAssetBased:
		return "Asset-Based"
	case MethodSOTP:
		return "SOTP"
	case MethodDDM:
		return "DDM"
	case MethodPEGRatios:
		return "PEG Ratios"
	}
	return string(m)
}

// =============================================================================
// SIGNALS
// =============================================================================

// Signal is a per-method verdict. N/A is reserved for methods without an
// applicable result; it never means "unknown".
type Signal string

const (
	SignalBuy  Signal = "BUY"
	SignalHold Signal = "HOLD"
	SignalSell Signal = "SELL"
	SignalNA   Signal = "N/A"
)

// =============================================================================
// RESULTS
// Tagged variant: Applicable is the tag. FairValue stays nil both for
// not-applicable results and for band methods that classify directly from a
// ratio without estimating a fair value.
// =============================================================================

// Result is one method's output for one snapshot.
type Result struct {
	Method     Method             `json:"method"`
	Applicable bool               `json:"applicable"`
	FairValue  *float64           `json:"fair_value,omitempty"`
	Signal     Signal             `json:"signal"`
	Reasoning  string             `json:"reasoning"`
	Extras     map[string]float64 `json:"extras,omitempty"`
}

// HasFairValue reports whether the method produced a per-share estimate.
func (r Result) HasFairValue() bool {
	return r.Applicable && r.FairValue != nil
}

// applicableResult builds a fair-value result. sig must come from Classify
// or a method's own band.
func applicableResult(m Method, fairValue float64, sig Signal, reasoning string, extras map[string]float64) Result {
	fv := fairValue
	return Result{
		Method:     m,
		Applicable: true,
		FairValue:  &fv,
		Signal:     sig,
		Reasoning:  reasoning,
		Extras:     extras,
	}
}

// bandedResult builds a result for methods that classify from a ratio band
// and carry no fair-value estimate.
func bandedResult(m Method, sig Signal, reasoning string, extras map[string]float64) Result {
	return Result{
		Method:     m,
		Applicable: true,
		Signal:     sig,
		Reasoning:  reasoning,
		Extras:     extras,
	}
}

// notApplicable is the explicit sentinel for a method whose precondition
// failed. Signal is always N/A here and only here.
func notApplicable(m Method, reasoning string) Result {
	return Result{
		Method:     m,
		Applicable: false,
		Signal:     SignalNA,
		Reasoning:  reasoning,
	}
}
