package metrics

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// =============================================================================
// EXTRACTION & VALIDATION
// The only door into a CompanyMetrics. Record-level failures are errors;
// everything survivable is left to the per-method applicability checks.
// =============================================================================

var (
	// ErrMissingRequiredField: currentPrice or sharesOutstanding absent or
	// non-positive. Nothing downstream can run without them.
	ErrMissingRequiredField = errors.New("missing required field")

	// ErrInvalidMetric: a provided field violates its domain (negative price,
	// NaN, negative dividend yield, ...). Rejected at the boundary so the
	// methods never see malformed numbers.
	ErrInvalidMetric = errors.New("invalid metric")
)

// Extract validates raw provider fields and produces the immutable snapshot.
// asOf records the data vintage; a zero time is replaced with the current time.
func Extract(ticker string, asOf time.Time, raw *RawMetrics) (*CompanyMetrics, error) {
	if raw == nil {
		return nil, fmt.Errorf("%w: empty payload for %s", ErrMissingRequiredField, ticker)
	}
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	if ticker == "" {
		return nil, fmt.Errorf("%w: ticker", ErrMissingRequiredField)
	}

	if raw.CurrentPrice == nil || !isFinite(*raw.CurrentPrice) || *raw.CurrentPrice <= 0 {
		return nil, fmt.Errorf("%w: current_price", ErrMissingRequiredField)
	}
	if raw.SharesOutstanding == nil || !isFinite(*raw.SharesOutstanding) || *raw.SharesOutstanding <= 0 {
		return nil, fmt.Errorf("%w: shares_outstanding", ErrMissingRequiredField)
	}

	if err := validateOptional(raw); err != nil {
		return nil, err
	}

	if asOf.IsZero() {
		asOf = time.Now().UTC()
	}
	name := strings.TrimSpace(raw.CompanyName)
	if name == "" {
		name = ticker
	}

	m := &CompanyMetrics{
		Ticker:            ticker,
		CompanyName:       name,
		AsOf:              asOf,
		CurrentPrice:      *raw.CurrentPrice,
		SharesOutstanding: *raw.SharesOutstanding,
		MarketCap:         clone(raw.MarketCap),
		EnterpriseValue:   clone(raw.EnterpriseValue),
		RevenueTTM:        clone(raw.RevenueTTM),
		EbitdaTTM:         clone(raw.EbitdaTTM),
		EarningsTTM:       clone(raw.EarningsTTM),
		FreeCashFlowTTM:   clone(raw.FreeCashFlowTTM),
		BookValue:         clone(raw.BookValue),
		EPS:               clone(raw.EPS),
		DividendYield:     clone(raw.DividendYield),
		GrowthRate:        clone(raw.GrowthRate),
		Beta:              clone(raw.Beta),
		Debt:              clone(raw.Debt),
		Cash:              clone(raw.Cash),
		BondYield:         clone(raw.BondYield),
		DiscountRate:      clone(raw.DiscountRate),
		PERatio:           clone(raw.PERatio),
		PriceToBook:       clone(raw.PriceToBook),
		PriceToSales:      clone(raw.PriceToSales),
		EVToEbitda:        clone(raw.EVToEbitda),
	}
	return m, nil
}

// ExtractMap adapts a flat key/value record into the snapshot. Keys use the
// same snake_case vocabulary as RawMetrics; a key's presence in the map is
// its presence in the record, so a reported zero stays distinguishable from
// an absent field. Unknown keys are ignored.
func ExtractMap(ticker string, asOf time.Time, values map[string]float64) (*CompanyMetrics, error) {
	raw := &RawMetrics{}
	fields := map[string]**float64{
		"current_price":      &raw.CurrentPrice,
		"shares_outstanding": &raw.SharesOutstanding,
		"market_cap":         &raw.MarketCap,
		"enterprise_value":   &raw.EnterpriseValue,
		"revenue_ttm":        &raw.RevenueTTM,
		"ebitda_ttm":         &raw.EbitdaTTM,
		"earnings_ttm":       &raw.EarningsTTM,
		"free_cash_flow_ttm": &raw.FreeCashFlowTTM,
		"book_value":         &raw.BookValue,
		"eps":                &raw.EPS,
		"dividend_yield":     &raw.DividendYield,
		"growth_rate":        &raw.GrowthRate,
		"beta":               &raw.Beta,
		"debt":               &raw.Debt,
		"cash":               &raw.Cash,
		"bond_yield":         &raw.BondYield,
		"discount_rate":      &raw.DiscountRate,
		"pe_ratio":           &raw.PERatio,
		"price_to_book":      &raw.PriceToBook,
		"price_to_sales":     &raw.PriceToSales,
		"ev_to_ebitda":       &raw.EVToEbitda,
	}
	for key, dst := range fields {
		if v, ok := values[key]; ok {
			val := v
			*dst = &val
		}
	}
	return Extract(ticker, asOf, raw)
}

// validateOptional checks domains of the fields that are present. Negative
// earnings, FCF, growth and book value are legitimate data (losses, declines,
// negative equity) and pass through.
func validateOptional(raw *RawMetrics) error {
	checks := []struct {
		name        string
		v           *float64
		nonNegative bool // field domain is [0, inf)
		positive    bool // field domain is (0, inf)
	}{
		{"market_cap", raw.MarketCap, true, false},
		{"enterprise_value", raw.EnterpriseValue, false, false},
		{"revenue_ttm", raw.RevenueTTM, true, false},
		{"ebitda_ttm", raw.EbitdaTTM, false, false},
		{"earnings_ttm", raw.EarningsTTM, false, false},
		{"free_cash_flow_ttm", raw.FreeCashFlowTTM, false, false},
		{"book_value", raw.BookValue, false, false},
		{"eps", raw.EPS, false, false},
		{"dividend_yield", raw.DividendYield, true, false},
		{"growth_rate", raw.GrowthRate, false, false},
		{"beta", raw.Beta, false, false},
		{"debt", raw.Debt, true, false},
		{"cash", raw.Cash, true, false},
		{"bond_yield", raw.BondYield, false, true},
		{"discount_rate", raw.DiscountRate, false, true},
		{"pe_ratio", raw.PERatio, false, false},
		{"price_to_book", raw.PriceToBook, false, false},
		{"price_to_sales", raw.PriceToSales, false, false},
		{"ev_to_ebitda", raw.EVToEbitda, false, false},
	}

	for _, c := range checks {
		if c.v == nil {
			continue
		}
		if !isFinite(*c.v) {
			return fmt.Errorf("%w: %s is not a finite number", ErrInvalidMetric, c.name)
		}
		if c.nonNegative && *c.v < 0 {
			return fmt.Errorf("%w: %s must not be negative, got %g", ErrInvalidMetric, c.name, *c.v)
		}
		if c.positive && *c.v <= 0 {
			return fmt.Errorf("%w: %s must be positive, got %g", ErrInvalidMetric, c.name, *c.v)
		}
	}
	return nil
}

func clone(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

// Ptr is a convenience for building RawMetrics literals in callers and tests.
func Ptr(v float64) *float64 { return &v }
