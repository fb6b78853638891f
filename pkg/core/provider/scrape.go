package provider

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"consensus_valuation/pkg/core/metrics"
)

const (
	scrapeUserAgent = "consensus-valuation/1.0 research@consensusvaluation.dev"

	// Statistics pages present fundamentals as two-column label/value tables.
	defaultStatsURL = "https://stockanalysis.com/stocks/%s/statistics/"
)

// ScrapeProvider pulls statement-level figures from a public statistics page.
// It complements the quote feed: revenue, EBITDA, cash flow and balance sheet
// totals that the quote endpoint does not carry.
type ScrapeProvider struct {
	client   *http.Client
	statsURL string
}

func NewScrapeProvider() *ScrapeProvider {
	return &ScrapeProvider{
		client:   &http.Client{Timeout: 30 * time.Second},
		statsURL: defaultStatsURL,
	}
}

func (s *ScrapeProvider) Name() string { return "scrape" }

func (s *ScrapeProvider) Fetch(ctx context.Context, ticker string) (*metrics.RawMetrics, error) {
	symbol := strings.ToLower(strings.TrimSpace(ticker))
	if symbol == "" {
		return nil, fmt.Errorf("empty ticker")
	}

	url := fmt.Sprintf(s.statsURL, symbol)
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", scrapeUserAgent)
	req.Header.Set("Accept", "text/html")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch statistics page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d from statistics page", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse statistics page: %w", err)
	}

	raw := parseStatsDocument(doc)
	if raw == nil {
		return nil, fmt.Errorf("no recognizable statistics for %s", ticker)
	}
	return raw, nil
}

// parseStatsDocument walks every two-cell table row and maps known labels
// onto metric fields. Unknown labels are ignored, so layout drift in the
// long tail of the page does not break the provider.
func parseStatsDocument(doc *goquery.Document) *metrics.RawMetrics {
	raw := &metrics.RawMetrics{}
	matched := 0
	var bookPerShare *float64

	doc.Find("table tr").Each(func(i int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < 2 {
			return
		}
		label := normalizeLabel(cells.First().Text())
		value := strings.TrimSpace(cells.Last().Text())
		if assignStat(raw, &bookPerShare, label, value) {
			matched++
		}
	})

	// The page reports book value per share; extraction wants the total.
	if bookPerShare != nil && raw.SharesOutstanding != nil {
		total := *bookPerShare * *raw.SharesOutstanding
		raw.BookValue = &total
	}

	if matched == 0 {
		return nil
	}
	return raw
}

func assignStat(raw *metrics.RawMetrics, bookPerShare **float64, label, value string) bool {
	v, ok := parseStatValue(value)
	if !ok {
		return false
	}

	set := func(dst **float64, val float64) bool {
		if *dst == nil {
			*dst = &val
		}
		return true
	}

	switch label {
	case "current stock price", "last close price", "stock price":
		return set(&raw.CurrentPrice, v)
	case "market cap", "market capitalization":
		return set(&raw.MarketCap, v)
	case "enterprise value":
		return set(&raw.EnterpriseValue, v)
	case "shares outstanding":
		return set(&raw.SharesOutstanding, v)
	case "revenue", "revenue ttm":
		return set(&raw.RevenueTTM, v)
	case "revenue growth", "revenue growth yoy":
		return set(&raw.GrowthRate, v/100)
	case "ebitda":
		return set(&raw.EbitdaTTM, v)
	case "net income":
		return set(&raw.EarningsTTM, v)
	case "free cash flow":
		return set(&raw.FreeCashFlowTTM, v)
	case "eps ttm", "eps":
		return set(&raw.EPS, v)
	case "book value per share":
		if *bookPerShare == nil {
			val := v
			*bookPerShare = &val
		}
		return true
	case "total debt":
		return set(&raw.Debt, v)
	case "total cash", "cash and equivalents", "cash and cash equivalents":
		return set(&raw.Cash, v)
	case "dividend yield":
		return set(&raw.DividendYield, v/100)
	case "beta", "beta 5y":
		return set(&raw.Beta, v)
	case "pe ratio":
		return set(&raw.PERatio, v)
	case "pb ratio", "price to book":
		return set(&raw.PriceToBook, v)
	case "ps ratio", "price to sales":
		return set(&raw.PriceToSales, v)
	case "ev ebitda", "ev to ebitda":
		return set(&raw.EVToEbitda, v)
	}
	return false
}

// normalizeLabel lowercases a row label and strips the punctuation variants
// sites use, so "EV / EBITDA" and "EV/EBITDA" match the same case.
func normalizeLabel(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, "(", " ")
	s = strings.ReplaceAll(s, ")", " ")
	s = strings.ReplaceAll(s, "/", " ")
	s = strings.ReplaceAll(s, "&", "and")
	s = strings.ReplaceAll(s, ".", "")
	return strings.Join(strings.Fields(s), " ")
}

// parseStatValue reads one table value: currency symbols and separators are
// stripped, parentheses mean negative, and B/M/T/K suffixes scale.
func parseStatValue(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" || s == "-" || s == "—" || strings.EqualFold(s, "n/a") {
		return 0, false
	}

	isNegative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		isNegative = true
		s = strings.Trim(s, "()")
	}

	s = strings.ReplaceAll(s, ",", "")
	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, "%", "")
	s = strings.ReplaceAll(s, " ", "")

	scale := 1.0
	switch {
	case strings.HasSuffix(s, "T"):
		scale = 1e12
		s = strings.TrimSuffix(s, "T")
	case strings.HasSuffix(s, "B"):
		scale = 1e9
		s = strings.TrimSuffix(s, "B")
	case strings.HasSuffix(s, "M"):
		scale = 1e6
		s = strings.TrimSuffix(s, "M")
	case strings.HasSuffix(s, "K"):
		scale = 1e3
		s = strings.TrimSuffix(s, "K")
	}

	val, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	if isNegative {
		val = -val
	}
	return val * scale, true
}
