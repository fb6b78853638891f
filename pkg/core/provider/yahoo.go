package provider

import (
	"context"
	"fmt"
	"strings"

	"github.com/piquette/finance-go/equity"

	"consensus_valuation/pkg/core/metrics"
)

// YahooProvider reads quote-level fundamentals from Yahoo Finance. The quote
// endpoint carries price, shares, trailing EPS and the reported ratios;
// statement-level figures (revenue, FCF, debt) come from other sources in
// the chain.
type YahooProvider struct{}

func NewYahooProvider() *YahooProvider { return &YahooProvider{} }

func (y *YahooProvider) Name() string { return "yahoo" }

func (y *YahooProvider) Fetch(ctx context.Context, ticker string) (*metrics.RawMetrics, error) {
	symbol := strings.ToUpper(strings.TrimSpace(ticker))
	if symbol == "" {
		return nil, fmt.Errorf("empty ticker")
	}

	q, err := equity.Get(symbol)
	if err != nil {
		return nil, fmt.Errorf("failed to get quote for %s: %w", symbol, err)
	}
	if q == nil {
		return nil, fmt.Errorf("no quote returned for %s", symbol)
	}

	name := strings.TrimSpace(q.LongName)
	if name == "" {
		name = strings.TrimSpace(q.ShortName)
	}
	raw := &metrics.RawMetrics{CompanyName: name}

	// Yahoo reports 0 for fields it does not have. Zero is not a real price,
	// share count or multiple, so values are only taken when positive.
	setPositive(&raw.CurrentPrice, q.RegularMarketPrice)
	setPositive(&raw.SharesOutstanding, float64(q.SharesOutstanding))
	setPositive(&raw.MarketCap, float64(q.MarketCap))
	setPositive(&raw.PERatio, q.TrailingPE)
	setPositive(&raw.PriceToBook, q.PriceToBook)
	setPositive(&raw.DividendYield, q.TrailingAnnualDividendYield)

	// Trailing EPS is meaningful when negative, unlike the ratios above.
	if q.EpsTrailingTwelveMonths != 0 {
		eps := q.EpsTrailingTwelveMonths
		raw.EPS = &eps
	}

	// Implied growth from the analyst forward estimate. Only meaningful when
	// both EPS figures are positive; the implied rate itself may be negative.
	if q.EpsForward > 0 && q.EpsTrailingTwelveMonths > 0 {
		g := q.EpsForward/q.EpsTrailingTwelveMonths - 1
		raw.GrowthRate = &g
	}

	// Yahoo's book value is per share; the extraction layer wants the total.
	if q.BookValue > 0 && q.SharesOutstanding > 0 {
		total := q.BookValue * float64(q.SharesOutstanding)
		raw.BookValue = &total
	}

	return raw, nil
}

func setPositive(dst **float64, v float64) {
	if v > 0 {
		val := v
		*dst = &val
	}
}
