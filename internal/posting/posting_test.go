package posting

import (
	"encoding/json"
	"os"
	"testing"
)

func TestUpsertTreatsDuplicateIDsAsUpdates(t *testing.T) {
	postings := &Postings{}
	postings.Upsert(&Posting{ID: "1", Title: "Go Developer", Company: "Acme"})
	postings.Upsert(&Posting{ID: "2", Title: "Data Engineer", Company: "Globex"})
	postings.Upsert(&Posting{ID: "1", Title: "Senior Go Developer", Company: "Acme"})

	if postings.Len() != 2 {
		t.Fatalf("expected 2 postings after duplicate upsert, got %d", postings.Len())
	}

	got := postings.FindByID("1")
	if got == nil || got.Title != "Senior Go Developer" {
		t.Fatalf("duplicate id must replace the posting, got %+v", got)
	}
}

func TestInClusterFiltersByGeneration(t *testing.T) {
	postings := &Postings{Items: []*Posting{
		{ID: "1", Enrichment: &Enrichment{Vector: []float64{1}, Cluster: 0, Generation: "gen-a"}},
		{ID: "2", Enrichment: &Enrichment{Vector: []float64{1}, Cluster: 0, Generation: "gen-b"}},
		{ID: "3", Enrichment: &Enrichment{Vector: []float64{1}, Cluster: 1, Generation: "gen-a"}},
		{ID: "4"},
	}}

	members := postings.InCluster(0, "gen-a")
	if len(members) != 1 || members[0].ID != "1" {
		t.Fatalf("expected only the current-generation member of cluster 0, got %+v", members)
	}
}

func TestReportByClusterGroupsUnassigned(t *testing.T) {
	postings := &Postings{Items: []*Posting{
		{ID: "1", Title: "Go Developer", Company: "Acme", Enrichment: &Enrichment{Cluster: 2, Generation: "gen-a"}},
		{ID: "2", Title: "Data Engineer", Company: "Globex"},
		{ID: "3", Title: "ML Engineer", Company: "Initech", Enrichment: &Enrichment{Cluster: 2, Generation: "stale"}},
	}}

	report := postings.ReportByCluster("gen-a")

	if entries := report["cluster 2"]; len(entries) != 1 || entries[0]["id"] != "1" {
		t.Fatalf("unexpected cluster 2 entries: %+v", entries)
	}
	if entries := report["unassigned"]; len(entries) != 2 {
		t.Fatalf("stale and missing assignments must both report as unassigned, got %+v", entries)
	}
}

func TestCompaniesDeduplicatesAndSorts(t *testing.T) {
	postings := &Postings{Items: []*Posting{
		{ID: "1", Company: "Globex"},
		{ID: "2", Company: "Acme"},
		{ID: "3", Company: "Globex"},
		{ID: "4"},
	}}

	companies := postings.Companies()
	if len(companies) != 2 || companies[0] != "Acme" || companies[1] != "Globex" {
		t.Fatalf("unexpected companies: %v", companies)
	}
}

func TestDumpToTmpFile(t *testing.T) {
	postings := &Postings{Items: []*Posting{
		{ID: "1", Title: "Go Developer", Company: "Acme", RawSkillText: "go, sql"},
	}}

	filename, err := postings.DumpToTmpFile()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer os.Remove(filename)

	data, err := os.ReadFile(filename)
	if err != nil {
		t.Fatalf("reading dump: %v", err)
	}

	var loaded Postings
	if err := json.Unmarshal(data, &loaded); err != nil {
		t.Fatalf("parsing dump: %v", err)
	}
	if loaded.Len() != 1 || loaded.Items[0].ID != "1" {
		t.Fatalf("unexpected dump contents: %+v", loaded)
	}
}
