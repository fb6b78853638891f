package provider

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"

	"consensus_valuation/pkg/core/metrics"
)

type fakeProvider struct {
	name string
	raw  *metrics.RawMetrics
	err  error
}

func (f *fakeProvider) Name() string { return f.name }

func (f *fakeProvider) Fetch(ctx context.Context, ticker string) (*metrics.RawMetrics, error) {
	return f.raw, f.err
}

func fptr(v float64) *float64 { return &v }

func TestChainMergesInOrder(t *testing.T) {
	first := &fakeProvider{name: "a", raw: &metrics.RawMetrics{
		CurrentPrice: fptr(100),
		PERatio:      fptr(20),
	}}
	second := &fakeProvider{name: "b", raw: &metrics.RawMetrics{
		CompanyName:       "Acme Corp",
		CurrentPrice:      fptr(999),
		SharesOutstanding: fptr(50),
	}}

	raw, err := NewChain(first, second).Fetch(context.Background(), "ACME")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if *raw.CurrentPrice != 100 {
		t.Errorf("Expected first provider's price 100 to win, got %v", *raw.CurrentPrice)
	}
	if *raw.PERatio != 20 {
		t.Errorf("Expected PE 20, got %v", *raw.PERatio)
	}
	if *raw.SharesOutstanding != 50 {
		t.Errorf("Expected shares 50 filled from second provider, got %v", *raw.SharesOutstanding)
	}
	if raw.CompanyName != "Acme Corp" {
		t.Errorf("Expected company name from second provider, got %q", raw.CompanyName)
	}
}

func TestChainSkipsFailedSource(t *testing.T) {
	failing := &fakeProvider{name: "down", err: fmt.Errorf("connection refused")}
	working := &fakeProvider{name: "up", raw: &metrics.RawMetrics{CurrentPrice: fptr(42)}}

	raw, err := NewChain(failing, working).Fetch(context.Background(), "ACME")
	if err != nil {
		t.Fatalf("chain should survive one failing source: %v", err)
	}
	if *raw.CurrentPrice != 42 {
		t.Errorf("Expected price 42, got %v", *raw.CurrentPrice)
	}
}

func TestChainAllSourcesFail(t *testing.T) {
	a := &fakeProvider{name: "a", err: fmt.Errorf("boom")}
	b := &fakeProvider{name: "b", err: fmt.Errorf("bust")}

	_, err := NewChain(a, b).Fetch(context.Background(), "ACME")
	if !errors.Is(err, ErrNoData) {
		t.Fatalf("Expected ErrNoData, got %v", err)
	}
	if !strings.Contains(err.Error(), "boom") || !strings.Contains(err.Error(), "bust") {
		t.Errorf("Expected joined source errors, got %v", err)
	}
}

func TestChainEmpty(t *testing.T) {
	_, err := NewChain().Fetch(context.Background(), "ACME")
	if !errors.Is(err, ErrNoData) {
		t.Fatalf("Expected ErrNoData from empty chain, got %v", err)
	}
}

func TestFileProviderJSON(t *testing.T) {
	dir := t.TempDir()
	snapshot := `{
		"company_name": "Acme Corp",
		"current_price": 123.45,
		"shares_outstanding": 1000000,
		"free_cash_flow_ttm": 250000,
		"growth_rate": 0.07
	}`
	if err := os.WriteFile(filepath.Join(dir, "ACME.json"), []byte(snapshot), 0644); err != nil {
		t.Fatal(err)
	}

	raw, err := NewFileProvider(dir).Fetch(context.Background(), "acme")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if raw.CompanyName != "Acme Corp" {
		t.Errorf("Expected company name Acme Corp, got %q", raw.CompanyName)
	}
	if *raw.CurrentPrice != 123.45 {
		t.Errorf("Expected price 123.45, got %v", *raw.CurrentPrice)
	}
	if *raw.GrowthRate != 0.07 {
		t.Errorf("Expected growth 0.07, got %v", *raw.GrowthRate)
	}
	if raw.Debt != nil {
		t.Errorf("Expected absent debt to stay nil, got %v", *raw.Debt)
	}
}

func TestFileProviderHjson(t *testing.T) {
	dir := t.TempDir()
	snapshot := `{
  # analyst-maintained snapshot
  company_name: Acme Corp
  current_price: 50
  shares_outstanding: 2000
  book_value: 40000
}`
	if err := os.WriteFile(filepath.Join(dir, "acme.hjson"), []byte(snapshot), 0644); err != nil {
		t.Fatal(err)
	}

	raw, err := NewFileProvider(dir).Fetch(context.Background(), "ACME")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if *raw.CurrentPrice != 50 {
		t.Errorf("Expected price 50, got %v", *raw.CurrentPrice)
	}
	if *raw.BookValue != 40000 {
		t.Errorf("Expected book value 40000, got %v", *raw.BookValue)
	}
}

func TestFileProviderMissingSnapshot(t *testing.T) {
	if _, err := NewFileProvider(t.TempDir()).Fetch(context.Background(), "NOPE"); err == nil {
		t.Fatal("Expected error for missing snapshot")
	}
}

func TestStaticProvider(t *testing.T) {
	p := &StaticProvider{Raw: &metrics.RawMetrics{DiscountRate: fptr(0.12)}}
	raw, err := p.Fetch(context.Background(), "ANY")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if *raw.DiscountRate != 0.12 {
		t.Errorf("Expected discount 0.12, got %v", *raw.DiscountRate)
	}
}

func TestParseStatValue(t *testing.T) {
	cases := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"$1,234.56", 1234.56, true},
		{"2.50T", 2.5 * 1e12, true},
		{"12.5B", 12.5 * 1e9, true},
		{"(3.2M)", -3.2 * 1e6, true},
		{"850K", 850 * 1e3, true},
		{"0.44%", 0.44, true},
		{"28.40", 28.40, true},
		{"-", 0, false},
		{"—", 0, false},
		{"n/a", 0, false},
		{"", 0, false},
	}
	for _, c := range cases {
		got, ok := parseStatValue(c.in)
		if ok != c.ok {
			t.Errorf("parseStatValue(%q): expected ok=%v, got %v", c.in, c.ok, ok)
			continue
		}
		if ok && math.Abs(got-c.want) > 0.0001 {
			t.Errorf("parseStatValue(%q): expected %v, got %v", c.in, c.want, got)
		}
	}
}

const statsFixtureHTML = `<html><body>
<h1>Acme Corp (ACME) Statistics</h1>
<table><tbody>
<tr><td>Market Cap</td><td>$2.50T</td></tr>
<tr><td>Enterprise Value</td><td>$2.55T</td></tr>
<tr><td>Shares Outstanding</td><td>15.20B</td></tr>
<tr><td>Revenue</td><td>$385.60B</td></tr>
<tr><td>Revenue Growth (YoY)</td><td>8.10%</td></tr>
<tr><td>EBITDA</td><td>$125.00B</td></tr>
<tr><td>Net Income</td><td>$95.40B</td></tr>
<tr><td>Free Cash Flow</td><td>$99.80B</td></tr>
<tr><td>EPS (ttm)</td><td>6.42</td></tr>
<tr><td>Book Value Per Share</td><td>4.25</td></tr>
<tr><td>Total Debt</td><td>$108.00B</td></tr>
<tr><td>Total Cash</td><td>$62.50B</td></tr>
<tr><td>Dividend Yield</td><td>0.44%</td></tr>
<tr><td>Beta (5Y)</td><td>1.25</td></tr>
<tr><td>PE Ratio</td><td>28.40</td></tr>
<tr><td>PB Ratio</td><td>45.10</td></tr>
<tr><td>PS Ratio</td><td>7.80</td></tr>
<tr><td>EV / EBITDA</td><td>20.40</td></tr>
<tr><td>52-Week High</td><td>$212.00</td></tr>
</tbody></table>
</body></html>`

func TestParseStatsDocument(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(statsFixtureHTML))
	if err != nil {
		t.Fatal(err)
	}

	raw := parseStatsDocument(doc)
	if raw == nil {
		t.Fatal("Expected parsed metrics, got nil")
	}

	if got, expected := *raw.MarketCap, 2.5*1e12; math.Abs(got-expected) > 0.0001 {
		t.Errorf("Expected market cap %v, got %v", expected, got)
	}
	if got, expected := *raw.SharesOutstanding, 15.2*1e9; math.Abs(got-expected) > 0.0001 {
		t.Errorf("Expected shares %v, got %v", expected, got)
	}
	if got, expected := *raw.GrowthRate, 8.10/100; math.Abs(got-expected) > 0.0001 {
		t.Errorf("Expected growth %v, got %v", expected, got)
	}
	if got, expected := *raw.DividendYield, 0.44/100; math.Abs(got-expected) > 0.0001 {
		t.Errorf("Expected dividend yield %v, got %v", expected, got)
	}
	// 4.25 per share scaled by the share count parsed above.
	if got, expected := *raw.BookValue, 4.25*(15.2*1e9); math.Abs(got-expected) > 0.0001 {
		t.Errorf("Expected book value %v, got %v", expected, got)
	}
	if *raw.PERatio != 28.40 {
		t.Errorf("Expected PE 28.40, got %v", *raw.PERatio)
	}
	if got, expected := *raw.EVToEbitda, 20.40; got != expected {
		t.Errorf("Expected EV/EBITDA %v, got %v", expected, got)
	}
	// Unmapped rows must not leak into the payload.
	if raw.CurrentPrice != nil {
		t.Errorf("Expected no price from statistics table, got %v", *raw.CurrentPrice)
	}
}

func TestScrapeProviderFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/stocks/acme/statistics/" {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, statsFixtureHTML)
	}))
	defer srv.Close()

	p := &ScrapeProvider{
		client:   srv.Client(),
		statsURL: srv.URL + "/stocks/%s/statistics/",
	}

	raw, err := p.Fetch(context.Background(), "ACME")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got, expected := *raw.RevenueTTM, 385.6*1e9; math.Abs(got-expected) > 0.0001 {
		t.Errorf("Expected revenue %v, got %v", expected, got)
	}
	if got, expected := *raw.FreeCashFlowTTM, 99.8*1e9; math.Abs(got-expected) > 0.0001 {
		t.Errorf("Expected FCF %v, got %v", expected, got)
	}
}

func TestScrapeProviderHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	p := &ScrapeProvider{
		client:   srv.Client(),
		statsURL: srv.URL + "/stocks/%s/statistics/",
	}
	if _, err := p.Fetch(context.Background(), "ACME"); err == nil {
		t.Fatal("Expected error on HTTP 503")
	}
}
