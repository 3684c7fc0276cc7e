package cluster

import (
	"reflect"
	"testing"

	"github.com/jobradar/job-radar/internal/posting"
)

func TestBuildInsights(t *testing.T) {
	model := &Model{
		K:         2,
		Centroids: [][]float64{{1, 0}, {0, 1}},
	}
	model.Generation = model.fingerprint()

	postings := &posting.Postings{Items: []*posting.Posting{
		{ID: "1", Title: "ML Engineer", Company: "Acme", RawSkillText: "python, machine learning",
			Enrichment: &posting.Enrichment{Cluster: 0, Generation: model.Generation}},
		{ID: "2", Title: "Data Scientist", Company: "Globex", RawSkillText: "python, pandas",
			Enrichment: &posting.Enrichment{Cluster: 0, Generation: model.Generation}},
		{ID: "3", Title: "Java Developer", Company: "Initech", RawSkillText: "java, spring",
			Enrichment: &posting.Enrichment{Cluster: 1, Generation: model.Generation}},
		{ID: "4", Title: "Stale Posting", Company: "Hooli", RawSkillText: "cobol",
			Enrichment: &posting.Enrichment{Cluster: 1, Generation: "older-fit"}},
	}}

	insights, err := model.BuildInsights(postings)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(insights) != 2 {
		t.Fatalf("expected one insight per cluster, got %d", len(insights))
	}

	first := insights[0]
	if first.PostingCount != 2 {
		t.Fatalf("expected 2 postings in cluster 0, got %d", first.PostingCount)
	}
	if first.TopSkills[0] != "python" {
		t.Fatalf("expected python to dominate cluster 0, got %v", first.TopSkills)
	}
	if first.Name != "Data Science & ML Engineering" {
		t.Fatalf("unexpected cluster 0 name: %q", first.Name)
	}
	if !reflect.DeepEqual(first.Companies, []string{"Acme", "Globex"}) {
		t.Fatalf("unexpected companies: %v", first.Companies)
	}

	second := insights[1]
	if second.PostingCount != 1 {
		t.Fatalf("the stale posting must not count, got %d", second.PostingCount)
	}
	if second.Name != "Backend Development" {
		t.Fatalf("unexpected cluster 1 name: %q", second.Name)
	}
}

func TestBuildInsightsUntrained(t *testing.T) {
	var m *Model
	if _, err := m.BuildInsights(&posting.Postings{}); err != ErrNotTrained {
		t.Fatalf("expected ErrNotTrained, got %v", err)
	}
}

func TestHeuristicName(t *testing.T) {
	cases := []struct {
		name   string
		skills []string
		titles []string
		want   string
	}{
		{"empty", nil, nil, "General"},
		{"devops", []string{"docker", "terraform"}, nil, "DevOps & Cloud Engineering"},
		{"frontend", []string{"react", "css"}, nil, "Frontend Development"},
		{"management by title", []string{"communication"}, []string{"Product Manager"}, "Management & Leadership"},
		{"fallback", []string{"embedded c", "rtos"}, nil, "embedded c Specialist"},
	}

	for _, tc := range cases {
		if got := HeuristicName(tc.skills, tc.titles); got != tc.want {
			t.Fatalf("%s: got %q, want %q", tc.name, got, tc.want)
		}
	}
}
