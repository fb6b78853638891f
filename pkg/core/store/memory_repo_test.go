package store

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestMemoryRepoSaveAndLatest(t *testing.T) {
	repo := NewMemoryReportRepository()
	ctx := context.Background()

	older := &ReportRecord{Ticker: "acme", AsOf: day(2026, 1, 10), OverallSignal: "HOLD", Markdown: "old"}
	newer := &ReportRecord{Ticker: "ACME", AsOf: day(2026, 1, 15), OverallSignal: "BUY", Markdown: "new"}

	if err := repo.Save(ctx, older); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := repo.Save(ctx, newer); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if older.ID == uuid.Nil || newer.ID == uuid.Nil {
		t.Error("Expected Save to assign record IDs")
	}

	got, err := repo.LatestByTicker(ctx, "acme")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Markdown != "new" {
		t.Errorf("Expected latest record by vintage, got %q", got.Markdown)
	}
	if got.Ticker != "ACME" {
		t.Errorf("Expected normalized ticker ACME, got %q", got.Ticker)
	}
}

func TestMemoryRepoSameVintageReplaces(t *testing.T) {
	repo := NewMemoryReportRepository()
	ctx := context.Background()

	first := &ReportRecord{Ticker: "ACME", AsOf: day(2026, 1, 10), Markdown: "first"}
	second := &ReportRecord{Ticker: "ACME", AsOf: day(2026, 1, 10), Markdown: "second"}
	if err := repo.Save(ctx, first); err != nil {
		t.Fatal(err)
	}
	if err := repo.Save(ctx, second); err != nil {
		t.Fatal(err)
	}

	all, err := repo.ListRecent(ctx, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("Expected same-vintage save to replace, got %d records", len(all))
	}
	if all[0].Markdown != "second" {
		t.Errorf("Expected replacement record, got %q", all[0].Markdown)
	}
}

func TestMemoryRepoListRecent(t *testing.T) {
	repo := NewMemoryReportRepository()
	ctx := context.Background()

	base := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	for i, ticker := range []string{"AAA", "BBB", "CCC"} {
		rec := &ReportRecord{
			Ticker:    ticker,
			AsOf:      day(2026, 2, 1),
			Markdown:  ticker,
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		}
		if err := repo.Save(ctx, rec); err != nil {
			t.Fatal(err)
		}
	}

	recent, err := repo.ListRecent(ctx, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(recent))
	}
	if recent[0].Ticker != "CCC" || recent[1].Ticker != "BBB" {
		t.Errorf("Expected newest-first order CCC, BBB; got %s, %s", recent[0].Ticker, recent[1].Ticker)
	}
}

func TestMemoryRepoMissingTicker(t *testing.T) {
	repo := NewMemoryReportRepository()
	if _, err := repo.LatestByTicker(context.Background(), "NOPE"); err == nil {
		t.Fatal("Expected error for unknown ticker")
	}
}

func TestMemoryRepoReturnsCopies(t *testing.T) {
	repo := NewMemoryReportRepository()
	ctx := context.Background()

	rec := &ReportRecord{Ticker: "ACME", AsOf: day(2026, 1, 10), Markdown: "original"}
	if err := repo.Save(ctx, rec); err != nil {
		t.Fatal(err)
	}

	got, err := repo.LatestByTicker(ctx, "ACME")
	if err != nil {
		t.Fatal(err)
	}
	got.Markdown = "mutated"

	again, err := repo.LatestByTicker(ctx, "ACME")
	if err != nil {
		t.Fatal(err)
	}
	if again.Markdown != "original" {
		t.Errorf("Expected stored record to be isolated from caller mutation, got %q", again.Markdown)
	}
}
