package store

import (
	"context"
	"reflect"
	"testing"

	"github.com/jobradar/job-radar/internal/posting"
)

func TestMemoryUpsertAndList(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	if err := m.UpsertPostings(ctx, []*posting.Posting{
		{ID: "2", Title: "Data Engineer", Company: "Globex"},
		{ID: "1", Title: "Go Developer", Company: "Acme"},
	}); err != nil {
		t.Fatalf("upserting: %v", err)
	}

	if err := m.UpsertPostings(ctx, []*posting.Posting{
		{ID: "1", Title: "Senior Go Developer", Company: "Acme"},
	}); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	loaded, err := m.ListPostings(ctx)
	if err != nil {
		t.Fatalf("listing: %v", err)
	}

	if loaded.Len() != 2 {
		t.Fatalf("expected 2 postings, got %d", loaded.Len())
	}
	// Listing is ordered by id for stable output.
	if loaded.Items[0].ID != "1" || loaded.Items[1].ID != "2" {
		t.Fatalf("expected id-ordered listing, got %v", loaded.IDs())
	}
	if loaded.Items[0].Title != "Senior Go Developer" {
		t.Fatalf("duplicate id must update, got %q", loaded.Items[0].Title)
	}
}

func TestTopSkills(t *testing.T) {
	postings := &posting.Postings{Items: []*posting.Posting{
		{ID: "1", RawSkillText: "python, sql, docker"},
		{ID: "2", RawSkillText: "python, sql"},
		{ID: "3", RawSkillText: "python, go"},
	}}

	got := TopSkills(postings, 2)
	want := []string{"python", "sql"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected top skills: %v, want %v", got, want)
	}
}
