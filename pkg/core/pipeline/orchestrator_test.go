package pipeline

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"testing"

	"consensus_valuation/pkg/core/consensus"
	"consensus_valuation/pkg/core/metrics"
	"consensus_valuation/pkg/core/store"
)

// --- Mocks ---

type MockSource struct {
	FetchFunc func(ctx context.Context, ticker string) (*metrics.RawMetrics, error)
}

func (m *MockSource) Name() string { return "mock" }

func (m *MockSource) Fetch(ctx context.Context, ticker string) (*metrics.RawMetrics, error) {
	if m.FetchFunc != nil {
		return m.FetchFunc(ctx, ticker)
	}
	return richRaw(), nil
}

func p(v float64) *float64 { return &v }

// richRaw returns a snapshot complete enough for every method to run.
func richRaw() *metrics.RawMetrics {
	return &metrics.RawMetrics{
		CompanyName:       "Acme Corp",
		CurrentPrice:      p(100),
		SharesOutstanding: p(1000),
		FreeCashFlowTTM:   p(8000),
		GrowthRate:        p(0.06),
		DiscountRate:      p(0.10),
		Cash:              p(5000),
		Debt:              p(2000),
		EarningsTTM:       p(6000),
		RevenueTTM:        p(50000),
		BookValue:         p(40000),
		EnterpriseValue:   p(98000),
		EbitdaTTM:         p(12000),
		DividendYield:     p(0.02),
		Beta:              p(1.1),
	}
}

// --- Tests ---

func TestPipelineRunFullFlow(t *testing.T) {
	repo := store.NewMemoryReportRepository()
	orch := NewOrchestrator(&MockSource{}, nil, repo)

	outcome, err := orch.Run(context.Background(), "acme")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(outcome.Analysis.Results) != 9 {
		t.Errorf("Expected 9 method results, got %d", len(outcome.Analysis.Results))
	}
	if outcome.Analysis.Recommendation.Tally.NotApplicable != 0 {
		t.Errorf("Expected every method applicable, got %d N/A", outcome.Analysis.Recommendation.Tally.NotApplicable)
	}
	if !outcome.Checks.AllPassed {
		t.Errorf("Expected analysis checks to pass: %v", outcome.Checks.FailedChecks)
	}
	if !outcome.Linkage.AllPassed {
		t.Errorf("Expected report linkage to pass: %v", outcome.Linkage.FailedChecks)
	}
	if !strings.Contains(outcome.Markdown, "# Investment Analysis Report: Acme Corp") {
		t.Error("Expected report title in markdown")
	}
	if outcome.Record == nil {
		t.Fatal("Expected persisted record")
	}

	stored, err := repo.LatestByTicker(context.Background(), "ACME")
	if err != nil {
		t.Fatalf("Expected stored report: %v", err)
	}
	if stored.Markdown != outcome.Markdown {
		t.Error("Stored markdown differs from rendered markdown")
	}
	if stored.OverallSignal != string(outcome.Analysis.Recommendation.OverallSignal) {
		t.Errorf("Stored signal %s differs from analysis %s",
			stored.OverallSignal, outcome.Analysis.Recommendation.OverallSignal)
	}
}

func TestPipelineRunWithoutRepo(t *testing.T) {
	orch := NewOrchestrator(&MockSource{}, nil, nil)

	outcome, err := orch.Run(context.Background(), "ACME")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome.Record != nil {
		t.Error("Expected no record without a repository")
	}
}

func TestPipelineFetchFailure(t *testing.T) {
	src := &MockSource{FetchFunc: func(ctx context.Context, ticker string) (*metrics.RawMetrics, error) {
		return nil, fmt.Errorf("feed offline")
	}}
	orch := NewOrchestrator(src, nil, nil)

	_, err := orch.Run(context.Background(), "ACME")
	if err == nil || !strings.Contains(err.Error(), "fetch failed") {
		t.Fatalf("Expected fetch failure, got %v", err)
	}
}

func TestPipelineExtractionFailure(t *testing.T) {
	src := &MockSource{FetchFunc: func(ctx context.Context, ticker string) (*metrics.RawMetrics, error) {
		return &metrics.RawMetrics{SharesOutstanding: p(1000)}, nil
	}}
	orch := NewOrchestrator(src, nil, nil)

	_, err := orch.Run(context.Background(), "ACME")
	if !errors.Is(err, metrics.ErrMissingRequiredField) {
		t.Fatalf("Expected missing-field error, got %v", err)
	}
}

func TestPipelineInsufficientData(t *testing.T) {
	src := &MockSource{FetchFunc: func(ctx context.Context, ticker string) (*metrics.RawMetrics, error) {
		return &metrics.RawMetrics{CurrentPrice: p(50), SharesOutstanding: p(1000)}, nil
	}}
	orch := NewOrchestrator(src, nil, nil)

	_, err := orch.Run(context.Background(), "ACME")
	if !errors.Is(err, consensus.ErrInsufficientData) {
		t.Fatalf("Expected insufficient-data error, got %v", err)
	}
}

func TestPipelineCAPMDiscount(t *testing.T) {
	orch := NewOrchestrator(&MockSource{}, nil, nil)
	orch.SetCAPMDiscount(true)

	outcome, err := orch.Run(context.Background(), "ACME")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := 0.04 + 1.1*0.05
	got := outcome.Analysis.Metrics.DiscountOrDefault()
	if math.Abs(got-expected) > 0.0001 {
		t.Errorf("Expected CAPM discount rate %.4f, got %.4f", expected, got)
	}

	// Without a beta the configured rate stays in force.
	src := &MockSource{FetchFunc: func(ctx context.Context, ticker string) (*metrics.RawMetrics, error) {
		raw := richRaw()
		raw.Beta = nil
		return raw, nil
	}}
	orch = NewOrchestrator(src, nil, nil)
	orch.SetCAPMDiscount(true)

	outcome, err = orch.Run(context.Background(), "ACME")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := outcome.Analysis.Metrics.DiscountOrDefault(); math.Abs(got-0.10) > 0.0001 {
		t.Errorf("Expected configured rate 0.10 without beta, got %.4f", got)
	}
}
