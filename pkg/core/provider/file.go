package provider

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"consensus_valuation/pkg/core/metrics"
	"consensus_valuation/pkg/core/utils"
)

// FileProvider reads snapshots from a local directory, one file per ticker.
// Files may be strict JSON or Hjson and use the RawMetrics key vocabulary.
// Serves offline runs and pinned review inputs.
type FileProvider struct {
	Dir string
}

func NewFileProvider(dir string) *FileProvider { return &FileProvider{Dir: dir} }

func (f *FileProvider) Name() string { return "file" }

func (f *FileProvider) Fetch(ctx context.Context, ticker string) (*metrics.RawMetrics, error) {
	symbol := strings.ToUpper(strings.TrimSpace(ticker))
	if symbol == "" {
		return nil, fmt.Errorf("empty ticker")
	}

	path, err := f.locate(symbol)
	if err != nil {
		return nil, err
	}

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

func (f *FileProvider) locate(symbol string) (string, error) {
	candidates := []string{
		symbol + ".json",
		symbol + ".hjson",
		strings.ToLower(symbol) + ".json",
		strings.ToLower(symbol) + ".hjson",
	}
	for _, name := range candidates {
		path := filepath.Join(f.Dir, name)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("no snapshot for %s in %s", symbol, f.Dir)
}

// StaticProvider serves one fixed payload regardless of ticker. Carries
// request-supplied overrides into a chain ahead of the live sources.
type StaticProvider struct {
	Raw *metrics.RawMetrics
}

func (s *StaticProvider) Name() string { return "static" }

func (s *StaticProvider) Fetch(ctx context.Context, ticker string) (*metrics.RawMetrics, error) {
	if s.Raw == nil {
		return nil, fmt.Errorf("no static payload")
	}
	clone := *s.Raw
	return &clone, nil
}
