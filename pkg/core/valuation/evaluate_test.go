package valuation

import (
	"reflect"
	"testing"
	"time"

	"consensus_valuation/pkg/core/metrics"
)

func richCompany() *metrics.CompanyMetrics {
	return &metrics.CompanyMetrics{
		Ticker:            "RICH",
		CompanyName:       "Rich Metrics Inc",
		AsOf:              time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
		CurrentPrice:      100.0,
		SharesOutstanding: 1000.0,
		MarketCap:         metrics.Ptr(100000.0),
		EnterpriseValue:   metrics.Ptr(110000.0),
		RevenueTTM:        metrics.Ptr(50000.0),
		EbitdaTTM:         metrics.Ptr(12000.0),
		EarningsTTM:       metrics.Ptr(8000.0),
		FreeCashFlowTTM:   metrics.Ptr(7000.0),
		BookValue:         metrics.Ptr(30000.0),
		DividendYield:     metrics.Ptr(0.015),
		GrowthRate:        metrics.Ptr(0.08),
		Beta:              metrics.Ptr(1.1),
		Debt:              metrics.Ptr(20000.0),
		Cash:              metrics.Ptr(10000.0),
	}
}

func TestEvaluateAllOrderAndCount(t *testing.T) {
	results := EvaluateAll(richCompany())
	if len(results) != MethodCount {
		t.Fatalf("Expected %d results, got %d", MethodCount, len(results))
	}
	for i, method := range AllMethods() {
		if results[i].Method != method {
			t.Errorf("Position %d: expected %s, got %s", i, method, results[i].Method)
		}
	}
	// A snapshot this complete leaves no method inapplicable.
	for _, res := range results {
		if !res.Applicable {
			t.Errorf("%s: unexpected N/A: %s", res.Method, res.Reasoning)
		}
		if res.Reasoning == "" {
			t.Errorf("%s: empty reasoning", res.Method)
		}
	}
}

func TestEvaluateAllIdempotent(t *testing.T) {
	m := richCompany()
	first := EvaluateAll(m)
	second := EvaluateAll(m)
	if !reflect.DeepEqual(first, second) {
		t.Error("Same snapshot must produce identical results on every run")
	}
}

func TestEvaluateAllSparse(t *testing.T) {
	// Price and shares only: every method that needs optional data bows out,
	// but Graham-adjacent defaults never invent earnings, FCF or dividends.
	m := &metrics.CompanyMetrics{
		Ticker:            "BARE",
		CompanyName:       "Bare Shell",
		AsOf:              time.Now().UTC(),
		CurrentPrice:      5.0,
		SharesOutstanding: 100.0,
	}
	results := EvaluateAll(m)
	if len(results) != MethodCount {
		t.Fatalf("Expected %d results, got %d", MethodCount, len(results))
	}
	for _, res := range results {
		if res.Applicable {
			t.Errorf("%s: expected N/A on a bare snapshot, got %s", res.Method, res.Signal)
		}
		if res.Signal != SignalNA {
			t.Errorf("%s: N/A result with signal %s", res.Method, res.Signal)
		}
		if res.FairValue != nil {
			t.Errorf("%s: N/A result carries a fair value", res.Method)
		}
	}
}

func TestEvaluateSingle(t *testing.T) {
	res, ok := Evaluate(MethodGraham, richCompany())
	if !ok {
		t.Fatal("Expected Graham to be a known method")
	}
	if res.Method != MethodGraham {
		t.Errorf("Expected graham result, got %s", res.Method)
	}
	if _, ok := Evaluate(Method("magic_eight_ball"), richCompany()); ok {
		t.Error("Expected unknown method to be rejected")
	}
}
