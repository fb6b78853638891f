package main

import (
	"consensus_valuation/pkg/api/config"
	"consensus_valuation/pkg/api/valuation"
	"consensus_valuation/pkg/core/agent"
	"consensus_valuation/pkg/core/prompt"
	"consensus_valuation/pkg/core/provider"
	"consensus_valuation/pkg/core/store"
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

var agentMgr *agent.Manager

func main() {
	// Load environment variables
	godotenv.Load()

	// Initialize Prompt Library
	// Determine resources path (relative to executable or working directory)
	resourcesPath := "resources"
	if _, err := os.Stat(resourcesPath); os.IsNotExist(err) {
		// Try from executable directory
		exePath, _ := os.Executable()
		resourcesPath = filepath.Join(filepath.Dir(exePath), "resources")
	}
	if err := prompt.LoadFromDirectory(resourcesPath); err != nil {
		fmt.Printf("[WARNING] Failed to load prompt library: %v\n", err)
		fmt.Println("  Falling back to built-in prompts")
	}

	// Initialize manager from config
	configData, _ := os.ReadFile("config/models.yaml")
	var agentCfg agent.Config
	yaml.Unmarshal(configData, &agentCfg)
	agentMgr = agent.NewManager(agentCfg)

	// Metrics sources: optional local snapshots, then Yahoo, then the
	// statistics scraper. First source to supply a field wins.
	var sources []provider.MetricsProvider
	if dir := os.Getenv("METRICS_SNAPSHOT_DIR"); dir != "" {
		fmt.Printf("[API] Using metrics snapshots from %s\n", dir)
		sources = append(sources, provider.NewFileProvider(dir))
	}
	sources = append(sources, provider.NewYahooProvider(), provider.NewScrapeProvider())
	source := provider.NewChain(sources...)

	// Persistence: Postgres when DATABASE_URL is set, in-memory otherwise.
	var repo store.ReportRepository
	if os.Getenv("DATABASE_URL") != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		err := store.InitDB(ctx)
		cancel()
		if err != nil {
			fmt.Printf("[WARNING] Database unavailable: %v\n", err)
			fmt.Println("  Falling back to in-memory report history")
			repo = store.NewMemoryReportRepository()
		} else {
			repo = store.NewPgReportRepository()
		}
	} else {
		fmt.Println("[API] DATABASE_URL not set, report history is in-memory")
		repo = store.NewMemoryReportRepository()
	}

	// Config endpoints
	configHandler := config.NewHandler(agentMgr)
	http.HandleFunc("/api/config", configHandler.HandleConfig)
	http.HandleFunc("/api/config/switch", configHandler.HandleSwitch)

	// Valuation endpoints
	valuation.InitHandler(agentMgr, source, repo)
	http.HandleFunc("/api/valuation/report", valuation.HandleAnalyze)
	http.HandleFunc("/api/valuation/quick", valuation.HandleQuickMetrics)
	http.HandleFunc("/api/valuation/job", valuation.HandleJobStatus)
	http.HandleFunc("/api/valuation/history", valuation.HandleHistory)

	fmt.Println("API server starting on :8080...")
	fmt.Println("  - GET  /api/config")
	fmt.Println("  - POST /api/config/switch")
	fmt.Println("  - POST /api/valuation/report  (sync, or async with \"async\": true)")
	fmt.Println("  - POST /api/valuation/quick")
	fmt.Println("  - GET  /api/valuation/job?id=...")
	fmt.Println("  - GET  /api/valuation/history[?ticker=...]")

	if err := http.ListenAndServe(":8080", nil); err != nil {
		fmt.Printf("[FATAL] Server failed to start: %v\n", err)
		os.Exit(1)
	}
}
