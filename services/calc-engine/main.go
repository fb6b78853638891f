package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"consensus_valuation/pkg/core/consensus"
	"consensus_valuation/pkg/core/metrics"
	"consensus_valuation/pkg/core/report"
	"consensus_valuation/pkg/core/validate"
)

// Stateless calculation engine: metrics JSON in, analysis JSON out. Lets
// other runtimes call the valuation methods without linking Go.
func main() {
	mode := flag.String("mode", "analyze", "Mode: analyze, quick or check")
	ticker := flag.String("ticker", "", "Ticker symbol for the payload")
	dataStr := flag.String("data", "", "JSON data payload")
	flag.Parse()

	if *dataStr == "" {
		fmt.Println("Error: No data provided")
		os.Exit(1)
	}

	switch *mode {
	case "analyze":
		emit(runAnalysis(*ticker, *dataStr))
	case "quick":
		emit(report.BuildQuickMetrics(runAnalysis(*ticker, *dataStr)))
	case "check":
		var analysis consensus.Analysis
		if err := json.Unmarshal([]byte(*dataStr), &analysis); err != nil {
			fmt.Printf("Error unmarshaling analysis: %v\n", err)
			os.Exit(1)
		}
		emit(validate.ValidateAnalysis(&analysis))
	default:
		fmt.Printf("Unknown mode: %s\n", *mode)
		os.Exit(1)
	}
}

func runAnalysis(ticker, dataStr string) *consensus.Analysis {
	if ticker == "" {
		fmt.Println("Error: -ticker is required for this mode")
		os.Exit(1)
	}

	var raw metrics.RawMetrics
	if err := json.Unmarshal([]byte(dataStr), &raw); err != nil {
		fmt.Printf("Error unmarshaling data: %v\n", err)
		os.Exit(1)
	}

	m, err := metrics.Extract(ticker, time.Time{}, &raw)
	if err != nil {
		fmt.Printf("Error extracting metrics: %v\n", err)
		os.Exit(1)
	}
	analysis, err := consensus.Analyze(m)
	if err != nil {
		fmt.Printf("Error running analysis: %v\n", err)
		os.Exit(1)
	}
	return analysis
}

func emit(v interface{}) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Printf("Error encoding output: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(string(out))
}
