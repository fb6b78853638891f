// Package pipeline runs the end-to-end analysis flow:
// Fetch -> Extract -> Evaluate/Aggregate -> Narrate -> Render -> Validate -> Store
package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"consensus_valuation/pkg/core/consensus"
	"consensus_valuation/pkg/core/metrics"
	"consensus_valuation/pkg/core/narrative"
	"consensus_valuation/pkg/core/provider"
	"consensus_valuation/pkg/core/report"
	"consensus_valuation/pkg/core/store"
	"consensus_valuation/pkg/core/validate"
	"consensus_valuation/pkg/core/valuation"
)

// ValidationConfig controls how self-consistency failures are handled.
type ValidationConfig struct {
	StrictValidation bool // If true, validation failures stop the pipeline
}

// Outcome is everything one run produced. Validation results ride along even
// on success so callers can log or surface them.
type Outcome struct {
	Analysis  *consensus.Analysis
	Narrative *report.Narrative
	Markdown  string
	Checks    *validate.AnalysisReport
	Linkage   *validate.ReportLinkage
	Record    *store.ReportRecord
}

// Orchestrator manages the end-to-end flow for one ticker at a time.
type Orchestrator struct {
	source           provider.MetricsProvider
	narrator         narrative.Narrator
	repo             store.ReportRepository
	validationConfig ValidationConfig
	useCAPMDiscount  bool
}

// NewOrchestrator creates an orchestrator reading from source.
// narrator: nil selects the deterministic template narrator.
// repo: nil skips persistence.
func NewOrchestrator(source provider.MetricsProvider, narrator narrative.Narrator, repo store.ReportRepository) *Orchestrator {
	if narrator == nil {
		narrator = &narrative.TemplateNarrator{}
	}
	return &Orchestrator{
		source:   source,
		narrator: narrator,
		repo:     repo,
		validationConfig: ValidationConfig{
			StrictValidation: false, // Default: log failures but deliver the report
		},
	}
}

// SetRepository allows injecting a custom repository (e.g., for testing).
func (o *Orchestrator) SetRepository(repo store.ReportRepository) {
	o.repo = repo
}

// SetValidationConfig updates the validation configuration.
func (o *Orchestrator) SetValidationConfig(config ValidationConfig) {
	o.validationConfig = config
}

// SetCAPMDiscount derives the discount rate from beta instead of using the
// reported or default rate. Companies without a beta keep the usual rate.
func (o *Orchestrator) SetCAPMDiscount(enabled bool) {
	o.useCAPMDiscount = enabled
}

// Run executes the full pipeline for a single ticker.
func (o *Orchestrator) Run(ctx context.Context, ticker string) (*Outcome, error) {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	fmt.Printf("[PIPELINE] Starting analysis for %s...\n", ticker)
	start := time.Now()

	// 1. Fetch raw fundamentals
	raw, err := o.source.Fetch(ctx, ticker)
	if err != nil {
		return nil, fmt.Errorf("fetch failed for %s: %w", ticker, err)
	}

	// 2. Extract the validated snapshot
	m, err := metrics.Extract(ticker, time.Time{}, raw)
	if err != nil {
		return nil, fmt.Errorf("extraction failed for %s: %w", ticker, err)
	}
	if o.useCAPMDiscount {
		if ke, ok := valuation.CostOfEquityCAPM(m); ok {
			fmt.Printf("[PIPELINE] %s: CAPM discount rate %.1f%%\n", ticker, ke*100)
			m.DiscountRate = &ke
		}
	}

	// 3. Evaluate all methods and aggregate the verdict
	analysis, err := consensus.Analyze(m)
	if err != nil {
		return nil, fmt.Errorf("analysis failed for %s: %w", ticker, err)
	}
	applicable := len(analysis.Results) - analysis.Recommendation.Tally.NotApplicable
	fmt.Printf("[PIPELINE] %s: %d/%d methods applicable, verdict %s\n",
		ticker, applicable, len(analysis.Results), analysis.Recommendation.OverallSignal)

	// 4. Narrate
	narr, err := o.narrator.Generate(ctx, analysis)
	if err != nil {
		return nil, fmt.Errorf("narrative failed for %s: %w", ticker, err)
	}

	// 5. Render
	markdown := report.Render(analysis, narr)

	outcome := &Outcome{
		Analysis:  analysis,
		Narrative: narr,
		Markdown:  markdown,
	}

	// 6. Validate the analysis and the rendered report against each other
	outcome.Checks = validate.ValidateAnalysis(analysis)
	outcome.Linkage = validate.ValidateReportOutput(markdown, analysis)
	if !outcome.Checks.AllPassed || !outcome.Linkage.AllPassed {
		failed := append(append([]string{}, outcome.Checks.FailedChecks...), outcome.Linkage.FailedChecks...)
		fmt.Printf("[PIPELINE] Validation issues for %s: %v\n", ticker, failed)
		if o.validationConfig.StrictValidation {
			return outcome, fmt.Errorf("validation failed for %s: %s", ticker, strings.Join(failed, "; "))
		}
	}

	// 7. Persist
	if o.repo != nil {
		rec := &store.ReportRecord{
			Ticker:        ticker,
			AsOf:          m.AsOf,
			OverallSignal: string(analysis.Recommendation.OverallSignal),
			Analysis:      analysis,
			Markdown:      markdown,
		}
		if err := o.repo.Save(ctx, rec); err != nil {
			return outcome, fmt.Errorf("storage failed for %s: %w", ticker, err)
		}
		outcome.Record = rec
	}

	fmt.Printf("[PIPELINE] Completed analysis for %s in %v\n", ticker, time.Since(start))
	return outcome, nil
}
