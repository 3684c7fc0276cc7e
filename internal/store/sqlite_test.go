package store

import (
	"context"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/jobradar/job-radar/internal/posting"
)

func openTestStore(t *testing.T) (*SQLite, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "postings.db")
	s, err := OpenSQLite(context.Background(), path)
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s, path
}

func TestSQLiteUpsertAndListRoundTrip(t *testing.T) {
	ctx := context.Background()
	s, _ := openTestStore(t)

	items := []*posting.Posting{
		{
			ID: "1", Title: "Go Developer", Company: "Acme", Location: "Berlin",
			RawSkillText: "go, sql", ScrapedAt: "2026-08-01T10:00:00Z",
			Enrichment: &posting.Enrichment{Vector: []float64{1, 0, 0.5}, Cluster: 2, Generation: "gen-a"},
		},
		{ID: "2", Title: "Data Engineer", Company: "Globex", RawSkillText: "python, sql"},
	}

	if err := s.UpsertPostings(ctx, items); err != nil {
		t.Fatalf("upserting: %v", err)
	}

	loaded, err := s.ListPostings(ctx)
	if err != nil {
		t.Fatalf("listing: %v", err)
	}
	if loaded.Len() != 2 {
		t.Fatalf("expected 2 postings, got %d", loaded.Len())
	}

	first := loaded.FindByID("1")
	if first == nil || first.Enrichment == nil {
		t.Fatalf("enriched posting lost its enrichment: %+v", first)
	}
	if !reflect.DeepEqual(first.Enrichment.Vector, []float64{1, 0, 0.5}) {
		t.Fatalf("vector changed across round trip: %v", first.Enrichment.Vector)
	}
	if first.Enrichment.Cluster != 2 || first.Enrichment.Generation != "gen-a" {
		t.Fatalf("assignment changed across round trip: %+v", first.Enrichment)
	}

	second := loaded.FindByID("2")
	if second == nil || second.Enrichment != nil {
		t.Fatalf("unassigned posting must stay unassigned: %+v", second)
	}
}

func TestSQLiteUpsertReplacesByID(t *testing.T) {
	ctx := context.Background()
	s, _ := openTestStore(t)

	if err := s.UpsertPostings(ctx, []*posting.Posting{
		{ID: "1", Title: "Go Developer", Company: "Acme", RawSkillText: "go"},
	}); err != nil {
		t.Fatalf("first upsert: %v", err)
	}

	if err := s.UpsertPostings(ctx, []*posting.Posting{
		{ID: "1", Title: "Senior Go Developer", Company: "Acme", RawSkillText: "go, kubernetes",
			Enrichment: &posting.Enrichment{Vector: []float64{1, 1}, Cluster: 0, Generation: "gen-a"}},
	}); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	loaded, err := s.ListPostings(ctx)
	if err != nil {
		t.Fatalf("listing: %v", err)
	}
	if loaded.Len() != 1 {
		t.Fatalf("re-ingested id must update, not duplicate: %d rows", loaded.Len())
	}

	got := loaded.FindByID("1")
	if got.Title != "Senior Go Developer" || got.Enrichment == nil {
		t.Fatalf("update did not replace the row: %+v", got)
	}
}

func TestSQLiteSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	s, path := openTestStore(t)

	if err := s.UpsertPostings(ctx, []*posting.Posting{
		{ID: "1", Title: "Go Developer", Company: "Acme", RawSkillText: "go"},
	}); err != nil {
		t.Fatalf("upserting: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("closing: %v", err)
	}

	reopened, err := OpenSQLite(ctx, path)
	if err != nil {
		t.Fatalf("reopening: %v", err)
	}
	defer reopened.Close()

	loaded, err := reopened.ListPostings(ctx)
	if err != nil {
		t.Fatalf("listing after reopen: %v", err)
	}
	if loaded.Len() != 1 {
		t.Fatalf("postings lost across reopen: %d", loaded.Len())
	}
}

func TestSQLiteStats(t *testing.T) {
	ctx := context.Background()
	s, _ := openTestStore(t)

	if err := s.UpsertPostings(ctx, []*posting.Posting{
		{ID: "1", Title: "Go Developer", Company: "Acme", RawSkillText: "go, sql", ScrapedAt: "2026-08-02T10:00:00Z",
			Enrichment: &posting.Enrichment{Vector: []float64{1}, Cluster: 0, Generation: "gen-a"}},
		{ID: "2", Title: "Data Engineer", Company: "Globex", RawSkillText: "python, sql", ScrapedAt: "2026-08-01T10:00:00Z"},
		{ID: "3", Title: "Platform Engineer", Company: "Acme", RawSkillText: "go, kubernetes"},
	}); err != nil {
		t.Fatalf("upserting: %v", err)
	}

	stats, err := s.Stats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}

	if stats.PostingCount != 3 || stats.Companies != 2 || stats.Assigned != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	if got := stats.LastScraped.Format("2006-01-02"); got != "2026-08-02" {
		t.Fatalf("unexpected last scraped date: %s", got)
	}
	if len(stats.TopSkills) == 0 || stats.TopSkills[0] != "sql" {
		// "sql" appears twice, "go" is two characters and is filtered out.
		t.Fatalf("unexpected top skills: %v", stats.TopSkills)
	}
}
