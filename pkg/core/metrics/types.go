// Package metrics normalizes raw per-company financial inputs into the
// canonical snapshot consumed by the valuation methods.
//
// Absence and zero are different facts: a company with a zero dividend is not
// a company whose dividend was never reported. Optional fields are therefore
// pointers, and nothing in this package substitutes zero for nil.
package metrics

import (
	"math"
	"time"
)

// =============================================================================
// CANONICAL SNAPSHOT
// One immutable record per analysis request. Constructed by Extract, read by
// every valuation method, never mutated afterwards.
// =============================================================================

// CompanyMetrics is the canonical input record for one valuation run.
// CurrentPrice and SharesOutstanding are required and validated by Extract;
// everything else is optional. Monetary fields share one currency unit.
type CompanyMetrics struct {
	Ticker      string
	CompanyName string
	AsOf        time.Time // data vintage of the snapshot

	CurrentPrice      float64 // > 0
	SharesOutstanding float64 // > 0

	MarketCap       *float64
	EnterpriseValue *float64
	RevenueTTM      *float64
	EbitdaTTM       *float64
	EarningsTTM     *float64
	FreeCashFlowTTM *float64
	BookValue       *float64 // total common equity, not per share
	EPS             *float64 // reported trailing EPS; derived from earnings when absent
	DividendYield   *float64 // fraction, e.g. 0.0065
	GrowthRate      *float64 // fraction; negative allowed
	Beta            *float64
	Debt            *float64
	Cash            *float64
	BondYield       *float64 // AAA corporate yield in percent, e.g. 4.4
	DiscountRate    *float64 // fraction

	// Reported ratios, kept when the source supplies them so derived values
	// only serve as fallbacks.
	PERatio      *float64
	PriceToBook  *float64
	PriceToSales *float64
	EVToEbitda   *float64
}

// RawMetrics is the provider-facing bag of fields. JSON keys follow the data
// layer's snake_case vocabulary so manual snapshots and provider payloads
// share one shape.
type RawMetrics struct {
	CompanyName string `json:"company_name,omitempty"`

	CurrentPrice      *float64 `json:"current_price"`
	SharesOutstanding *float64 `json:"shares_outstanding"`

	MarketCap       *float64 `json:"market_cap,omitempty"`
	EnterpriseValue *float64 `json:"enterprise_value,omitempty"`
	RevenueTTM      *float64 `json:"revenue_ttm,omitempty"`
	EbitdaTTM       *float64 `json:"ebitda_ttm,omitempty"`
	EarningsTTM     *float64 `json:"earnings_ttm,omitempty"`
	FreeCashFlowTTM *float64 `json:"free_cash_flow_ttm,omitempty"`
	BookValue       *float64 `json:"book_value,omitempty"`
	EPS             *float64 `json:"eps,omitempty"`
	DividendYield   *float64 `json:"dividend_yield,omitempty"`
	GrowthRate      *float64 `json:"growth_rate,omitempty"`
	Beta            *float64 `json:"beta,omitempty"`
	Debt            *float64 `json:"debt,omitempty"`
	Cash            *float64 `json:"cash,omitempty"`
	BondYield       *float64 `json:"bond_yield,omitempty"`
	DiscountRate    *float64 `json:"discount_rate,omitempty"`

	PERatio      *float64 `json:"pe_ratio,omitempty"`
	PriceToBook  *float64 `json:"price_to_book,omitempty"`
	PriceToSales *float64 `json:"price_to_sales,omitempty"`
	EVToEbitda   *float64 `json:"ev_to_ebitda,omitempty"`
}

// Merge fills nil fields of r from other, leaving present fields untouched.
// Lets a quote feed, a statement scraper, and a manual override compose into
// one snapshot.
func (r *RawMetrics) Merge(other *RawMetrics) {
	if other == nil {
		return
	}
	if r.CompanyName == "" {
		r.CompanyName = other.CompanyName
	}
	fill := func(dst **float64, src *float64) {
		if *dst == nil && src != nil {
			v := *src
			*dst = &v
		}
	}
	fill(&r.CurrentPrice, other.CurrentPrice)
	fill(&r.SharesOutstanding, other.SharesOutstanding)
	fill(&r.MarketCap, other.MarketCap)
	fill(&r.EnterpriseValue, other.EnterpriseValue)
	fill(&r.RevenueTTM, other.RevenueTTM)
	fill(&r.EbitdaTTM, other.EbitdaTTM)
	fill(&r.EarningsTTM, other.EarningsTTM)
	fill(&r.FreeCashFlowTTM, other.FreeCashFlowTTM)
	fill(&r.BookValue, other.BookValue)
	fill(&r.EPS, other.EPS)
	fill(&r.DividendYield, other.DividendYield)
	fill(&r.GrowthRate, other.GrowthRate)
	fill(&r.Beta, other.Beta)
	fill(&r.Debt, other.Debt)
	fill(&r.Cash, other.Cash)
	fill(&r.BondYield, other.BondYield)
	fill(&r.DiscountRate, other.DiscountRate)
	fill(&r.PERatio, other.PERatio)
	fill(&r.PriceToBook, other.PriceToBook)
	fill(&r.PriceToSales, other.PriceToSales)
	fill(&r.EVToEbitda, other.EVToEbitda)
}

// =============================================================================
// DERIVED ACCESSORS
// Reported values win; derivation is the fallback. Each accessor returns
// ok=false when neither path produces a usable number.
// =============================================================================

// Default assumptions used when the snapshot does not report a value. They
// mirror the data layer's own fallbacks: modest growth, a 10% hurdle rate,
// and Graham's 4.4 AAA normalization constant.
const (
	DefaultGrowthRate   = 0.05
	DefaultDiscountRate = 0.10
	DefaultBondYield    = 4.4
)

// MarketCapOrDerived returns the reported market cap, or price x shares.
// Always derivable because both required fields are validated positive.
func (m *CompanyMetrics) MarketCapOrDerived() float64 {
	if m.MarketCap != nil && *m.MarketCap > 0 {
		return *m.MarketCap
	}
	return m.CurrentPrice * m.SharesOutstanding
}

// EPSValue returns reported trailing EPS, or earningsTTM / shares.
func (m *CompanyMetrics) EPSValue() (float64, bool) {
	if m.EPS != nil {
		return *m.EPS, true
	}
	if m.EarningsTTM != nil {
		return *m.EarningsTTM / m.SharesOutstanding, true
	}
	return 0, false
}

// PE returns the reported trailing P/E, or price / EPS when EPS > 0.
func (m *CompanyMetrics) PE() (float64, bool) {
	if m.PERatio != nil && *m.PERatio > 0 {
		return *m.PERatio, true
	}
	if eps, ok := m.EPSValue(); ok && eps > 0 {
		return m.CurrentPrice / eps, true
	}
	return 0, false
}

// PB returns the reported price-to-book, or price / book value per share.
func (m *CompanyMetrics) PB() (float64, bool) {
	if m.PriceToBook != nil && *m.PriceToBook > 0 {
		return *m.PriceToBook, true
	}
	if m.BookValue != nil && *m.BookValue > 0 {
		bvps := *m.BookValue / m.SharesOutstanding
		return m.CurrentPrice / bvps, true
	}
	return 0, false
}

// PS returns the reported price-to-sales, or market cap / revenue.
func (m *CompanyMetrics) PS() (float64, bool) {
	if m.PriceToSales != nil && *m.PriceToSales > 0 {
		return *m.PriceToSales, true
	}
	if m.RevenueTTM != nil && *m.RevenueTTM > 0 {
		return m.MarketCapOrDerived() / *m.RevenueTTM, true
	}
	return 0, false
}

// PFCF returns market cap / free cash flow when FCF > 0.
func (m *CompanyMetrics) PFCF() (float64, bool) {
	if m.FreeCashFlowTTM != nil && *m.FreeCashFlowTTM > 0 {
		return m.MarketCapOrDerived() / *m.FreeCashFlowTTM, true
	}
	return 0, false
}

// EVEbitda returns the reported EV/EBITDA, or EV / EBITDA when both present
// and EBITDA > 0.
func (m *CompanyMetrics) EVEbitda() (float64, bool) {
	if m.EVToEbitda != nil && *m.EVToEbitda > 0 {
		return *m.EVToEbitda, true
	}
	if m.EnterpriseValue != nil && m.EbitdaTTM != nil && *m.EbitdaTTM > 0 {
		return *m.EnterpriseValue / *m.EbitdaTTM, true
	}
	return 0, false
}

// GrowthOrDefault returns the reported growth rate, or DefaultGrowthRate.
func (m *CompanyMetrics) GrowthOrDefault() float64 {
	if m.GrowthRate != nil {
		return *m.GrowthRate
	}
	return DefaultGrowthRate
}

// DiscountOrDefault returns the reported discount rate, or DefaultDiscountRate.
func (m *CompanyMetrics) DiscountOrDefault() float64 {
	if m.DiscountRate != nil {
		return *m.DiscountRate
	}
	return DefaultDiscountRate
}

// BondYieldOrDefault returns the reported AAA yield (percent), or Graham's 4.4.
func (m *CompanyMetrics) BondYieldOrDefault() float64 {
	if m.BondYield != nil {
		return *m.BondYield
	}
	return DefaultBondYield
}

// CashValue and DebtValue treat absence as zero contribution in sums. This is
// a computation-edge convenience only; the record itself keeps the nil.
func (m *CompanyMetrics) CashValue() float64 { return zeroIfNil(m.Cash) }

func (m *CompanyMetrics) DebtValue() float64 { return zeroIfNil(m.Debt) }

func zeroIfNil(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
