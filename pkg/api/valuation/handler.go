package valuation

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"consensus_valuation/pkg/core/agent"
	"consensus_valuation/pkg/core/consensus"
	"consensus_valuation/pkg/core/metrics"
	"consensus_valuation/pkg/core/narrative"
	"consensus_valuation/pkg/core/pipeline"
	"consensus_valuation/pkg/core/provider"
	"consensus_valuation/pkg/core/report"
	"consensus_valuation/pkg/core/store"
)

var (
	agentManager *agent.Manager
	baseSource   provider.MetricsProvider
	reportRepo   store.ReportRepository
	narrator     narrative.Narrator
)

// InitHandler wires the handler dependencies. source feeds the pipeline,
// repo (optional) persists completed reports, mgr (optional) enables the
// LLM narrator; without it reports use the template narrator.
func InitHandler(mgr *agent.Manager, source provider.MetricsProvider, repo store.ReportRepository) {
	agentManager = mgr
	baseSource = source
	reportRepo = repo
	if mgr != nil {
		narrator = narrative.NewLLMNarrator(mgr.ForRole("narrator"))
	} else {
		narrator = &narrative.TemplateNarrator{}
	}
}

type AnalyzeRequest struct {
	Ticker string `json:"ticker"`
	// Metrics overrides ride ahead of the configured sources in the chain.
	Metrics *metrics.RawMetrics `json:"metrics,omitempty"`
	Async   bool                `json:"async,omitempty"`
}

type AnalyzeResponse struct {
	Ticker       string               `json:"ticker"`
	Filename     string               `json:"filename"`
	Report       string               `json:"report"`
	Analysis     *consensus.Analysis  `json:"analysis"`
	QuickMetrics *report.QuickMetrics `json:"quick_metrics"`
}

type JobQueuedResponse struct {
	JobID  string `json:"job_id"`
	Ticker string `json:"ticker"`
	Status string `json:"status"`
}

func writeCORS(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
}

// sourceFor builds the provider chain for one request: overrides first, then
// the configured sources.
func sourceFor(req *AnalyzeRequest) provider.MetricsProvider {
	if req.Metrics == nil {
		return baseSource
	}
	return provider.NewChain(&provider.StaticProvider{Raw: req.Metrics}, baseSource)
}

// HandleAnalyze runs the full pipeline for one ticker. With "async": true it
// queues a background job and returns the job ID immediately.
func HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	writeCORS(w)
	if r.Method == "OPTIONS" {
		w.WriteHeader(http.StatusOK)
		return
	}
	if r.Method != "POST" {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	ticker := strings.ToUpper(strings.TrimSpace(req.Ticker))
	if ticker == "" {
		http.Error(w, "ticker is required", http.StatusBadRequest)
		return
	}

	orch := pipeline.NewOrchestrator(sourceFor(&req), narrator, reportRepo)

	if req.Async {
		id := pipeline.GetJobManager().StartJob(orch, ticker)
		fmt.Printf("[VALUATION] Queued job %s for %s\n", id, ticker)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusAccepted)
		json.NewEncoder(w).Encode(JobQueuedResponse{JobID: id, Ticker: ticker, Status: string(pipeline.StatusQueued)})
		return
	}

	fmt.Printf("[VALUATION] Request: %s\n", ticker)
	outcome, err := orch.Run(r.Context(), ticker)
	if err != nil {
		http.Error(w, fmt.Sprintf("Analysis failed: %v", err), http.StatusInternalServerError)
		return
	}

	respondWithOutcome(w, outcome)
}

// HandleQuickMetrics returns the flat key-figure payload without rendering
// or persisting a report.
func HandleQuickMetrics(w http.ResponseWriter, r *http.Request) {
	writeCORS(w)
	if r.Method == "OPTIONS" {
		w.WriteHeader(http.StatusOK)
		return
	}
	if r.Method != "POST" {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	ticker := strings.ToUpper(strings.TrimSpace(req.Ticker))
	if ticker == "" {
		http.Error(w, "ticker is required", http.StatusBadRequest)
		return
	}

	analysis, err := analyzeOnly(r.Context(), sourceFor(&req), ticker)
	if err != nil {
		http.Error(w, fmt.Sprintf("Analysis failed: %v", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(report.BuildQuickMetrics(analysis))
}

// HandleJobStatus reports one background job, including the finished report
// once the job completes.
func HandleJobStatus(w http.ResponseWriter, r *http.Request) {
	writeCORS(w)
	if r.Method == "OPTIONS" {
		w.WriteHeader(http.StatusOK)
		return
	}

	id := r.URL.Query().Get("id")
	if id == "" {
		http.Error(w, "id is required", http.StatusBadRequest)
		return
	}

	job, ok := pipeline.GetJobManager().GetJob(id)
	if !ok {
		http.Error(w, "Job not found", http.StatusNotFound)
		return
	}

	resp := map[string]interface{}{"job": job}
	if job.Status == pipeline.StatusComplete && job.Outcome != nil {
		resp["report"] = job.Outcome.Markdown
		resp["quick_metrics"] = report.BuildQuickMetrics(job.Outcome.Analysis)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// HandleHistory serves persisted reports: ?ticker=X for the latest report of
// one company, no query for the most recent runs overall.
func HandleHistory(w http.ResponseWriter, r *http.Request) {
	writeCORS(w)
	if r.Method == "OPTIONS" {
		w.WriteHeader(http.StatusOK)
		return
	}
	if reportRepo == nil {
		http.Error(w, "Persistence not configured", http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if ticker := r.URL.Query().Get("ticker"); ticker != "" {
		rec, err := reportRepo.LatestByTicker(r.Context(), ticker)
		if err != nil {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		json.NewEncoder(w).Encode(rec)
		return
	}

	records, err := reportRepo.ListRecent(r.Context(), 20)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	json.NewEncoder(w).Encode(records)
}

func analyzeOnly(ctx context.Context, source provider.MetricsProvider, ticker string) (*consensus.Analysis, error) {
	raw, err := source.Fetch(ctx, ticker)
	if err != nil {
		return nil, err
	}
	m, err := metrics.Extract(ticker, time.Time{}, raw)
	if err != nil {
		return nil, err
	}
	return consensus.Analyze(m)
}

func respondWithOutcome(w http.ResponseWriter, outcome *pipeline.Outcome) {
	qm := report.BuildQuickMetrics(outcome.Analysis)
	resp := AnalyzeResponse{
		Ticker:       outcome.Analysis.Metrics.Ticker,
		Filename:     report.Filename(outcome.Analysis.Metrics.Ticker),
		Report:       outcome.Markdown,
		Analysis:     outcome.Analysis,
		QuickMetrics: &qm,
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}
