// Package provider fetches raw company fundamentals from external sources
// and composes them into a single payload for extraction. Sources never
// overwrite each other: the first provider to supply a field wins, and later
// providers only fill the gaps.
package provider

import (
	"context"
	"errors"
	"fmt"

	"consensus_valuation/pkg/core/metrics"
)

// ErrNoData reports that no configured source produced a payload for the
// requested ticker.
var ErrNoData = errors.New("no data from any provider")

// MetricsProvider is one source of raw fundamentals. Implementations return
// only the fields they actually observed and leave the rest nil.
type MetricsProvider interface {
	Name() string
	Fetch(ctx context.Context, ticker string) (*metrics.RawMetrics, error)
}

// Chain queries providers in order and merges their payloads. A failing
// source is logged and skipped; the chain fails only when every source does.
type Chain struct {
	providers []MetricsProvider
}

func NewChain(providers ...MetricsProvider) *Chain {
	return &Chain{providers: providers}
}

func (c *Chain) Name() string { return "chain" }

func (c *Chain) Fetch(ctx context.Context, ticker string) (*metrics.RawMetrics, error) {
	merged := &metrics.RawMetrics{}
	fetched := 0
	var errs []error

	for _, p := range c.providers {
		raw, err := p.Fetch(ctx, ticker)
		if err != nil {
			fmt.Printf("[PROVIDER] %s failed for %s: %v\n", p.Name(), ticker, err)
			errs = append(errs, fmt.Errorf("%s: %w", p.Name(), err))
			continue
		}
		if raw == nil {
			continue
		}
		merged.Merge(raw)
		fetched++
	}

	if fetched == 0 {
		if len(errs) > 0 {
			return nil, fmt.Errorf("%w for %s: %w", ErrNoData, ticker, errors.Join(errs...))
		}
		return nil, fmt.Errorf("%w for %s: chain has no providers", ErrNoData, ticker)
	}
	return merged, nil
}
