package store

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryReportRepository keeps records in process memory. Backs tests and
// runs without a DATABASE_URL; contents do not survive a restart.
type MemoryReportRepository struct {
	mu      sync.RWMutex
	records map[string][]*ReportRecord // ticker -> records
}

func NewMemoryReportRepository() *MemoryReportRepository {
	return &MemoryReportRepository{records: make(map[string][]*ReportRecord)}
}

var _ ReportRepository = (*MemoryReportRepository)(nil)

func (m *MemoryReportRepository) Save(ctx context.Context, rec *ReportRecord) error {
	if rec == nil {
		return fmt.Errorf("nil record")
	}
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	rec.Ticker = strings.ToUpper(strings.TrimSpace(rec.Ticker))

	m.mu.Lock()
	defer m.mu.Unlock()

	stored := *rec
	existing := m.records[rec.Ticker]
	for i, old := range existing {
		if sameDay(old.AsOf, rec.AsOf) {
			existing[i] = &stored
			return nil
		}
	}
	m.records[rec.Ticker] = append(existing, &stored)
	return nil
}

func (m *MemoryReportRepository) LatestByTicker(ctx context.Context, ticker string) (*ReportRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	records := m.records[ticker]
	if len(records) == 0 {
		return nil, fmt.Errorf("no report found for ticker %s", ticker)
	}

	latest := records[0]
	for _, rec := range records[1:] {
		if rec.AsOf.After(latest.AsOf) {
			latest = rec
		}
	}
	out := *latest
	return &out, nil
}

func (m *MemoryReportRepository) ListRecent(ctx context.Context, limit int) ([]*ReportRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if limit <= 0 {
		limit = 20
	}

	var all []*ReportRecord
	for _, records := range m.records {
		for _, rec := range records {
			out := *rec
			all = append(all, &out)
		}
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

// sameDay compares the calendar date only; two runs on the same vintage
// replace rather than accumulate, matching the Postgres unique key.
func sameDay(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}
