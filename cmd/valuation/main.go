package main

import (
	"consensus_valuation/pkg/core/agent"
	"consensus_valuation/pkg/core/metrics"
	"consensus_valuation/pkg/core/narrative"
	"consensus_valuation/pkg/core/pipeline"
	"consensus_valuation/pkg/core/provider"
	"consensus_valuation/pkg/core/report"
	"consensus_valuation/pkg/core/utils"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

func main() {
	ticker := flag.String("ticker", "", "Ticker symbol to analyze (required)")
	input := flag.String("input", "", "Metrics snapshot file or directory (JSON or Hjson)")
	outDir := flag.String("out", "reports", "Directory for the rendered report")
	offline := flag.Bool("offline", false, "Skip network sources; requires -input")
	capm := flag.Bool("capm", false, "Derive the discount rate from beta via CAPM")
	useLLM := flag.Bool("llm", false, "Narrate with the configured LLM instead of the template")
	strict := flag.Bool("strict", false, "Fail on validation issues instead of logging them")
	flag.Parse()

	if *ticker == "" {
		fmt.Println("Error: -ticker is required")
		flag.Usage()
		os.Exit(1)
	}

	// Load environment variables
	godotenv.Load()

	source, err := buildSource(*input, *offline)
	if err != nil {
		log.Fatalf("Error: %v", err)
	}

	var narrator narrative.Narrator
	if *useLLM {
		configData, _ := os.ReadFile("config/models.yaml")
		var agentCfg agent.Config
		yaml.Unmarshal(configData, &agentCfg)
		mgr := agent.NewManager(agentCfg)
		narrator = narrative.NewLLMNarrator(mgr.ForRole("narrator"))
	}

	orch := pipeline.NewOrchestrator(source, narrator, nil)
	orch.SetCAPMDiscount(*capm)
	orch.SetValidationConfig(pipeline.ValidationConfig{StrictValidation: *strict})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	outcome, err := orch.Run(ctx, *ticker)
	if err != nil {
		log.Fatalf("Analysis failed: %v", err)
	}

	if err := os.MkdirAll(*outDir, 0755); err != nil {
		log.Fatalf("Failed to create output directory: %v", err)
	}
	path := filepath.Join(*outDir, report.Filename(outcome.Analysis.Metrics.Ticker))
	if err := os.WriteFile(path, []byte(outcome.Markdown), 0644); err != nil {
		log.Fatalf("Failed to write report: %v", err)
	}

	rec := outcome.Analysis.Recommendation
	fmt.Printf("\nReport written to %s\n", path)
	fmt.Printf("Verdict: %s (%d BUY / %d HOLD / %d SELL, %d not applicable)\n",
		rec.OverallSignal, rec.Tally.Buy, rec.Tally.Hold, rec.Tally.Sell, rec.Tally.NotApplicable)
	fmt.Printf("Target range: $%.2f - $%.2f over %s\n", rec.TargetLow, rec.TargetHigh, rec.TimeHorizon)
}

// buildSource assembles the provider chain: the local snapshot first, then
// the network sources unless -offline.
func buildSource(input string, offline bool) (provider.MetricsProvider, error) {
	var sources []provider.MetricsProvider
	if input != "" {
		info, err := os.Stat(input)
		if err != nil {
			return nil, fmt.Errorf("input %s: %w", input, err)
		}
		if info.IsDir() {
			sources = append(sources, provider.NewFileProvider(input))
		} else {
			raw, err := loadSnapshot(input)
			if err != nil {
				return nil, err
			}
			sources = append(sources, &provider.StaticProvider{Raw: raw})
		}
	}
	if offline {
		if len(sources) == 0 {
			return nil, fmt.Errorf("-offline requires -input")
		}
	} else {
		sources = append(sources, provider.NewYahooProvider(), provider.NewScrapeProvider())
	}
	return provider.NewChain(sources...), nil
}

func loadSnapshot(path string) (*metrics.RawMetrics, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot %s: %w", path, err)
	}
	raw := &metrics.RawMetrics{}
	if strings.HasSuffix(path, ".hjson") {
		if err := utils.ParseHJSONToStruct(string(data), raw); err != nil {
			return nil, err
		}
		return raw, nil
	}
	if _, err := utils.SmartParse(string(data), raw); err != nil {
		return nil, err
	}
	return raw, nil
}
