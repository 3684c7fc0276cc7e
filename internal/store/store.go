package store

import (
	"context"
	"sort"
	"time"

	"github.com/jobradar/job-radar/internal/feature"
	"github.com/jobradar/job-radar/internal/posting"
)

// Store persists postings between runs. The clustering and matching engine
// never touches storage directly: postings go in enriched, come out for
// ranking, and that is the whole contract.
type Store interface {
	// UpsertPostings writes the batch, replacing postings that share an id.
	UpsertPostings(ctx context.Context, items []*posting.Posting) error
	// ListPostings returns every stored posting.
	ListPostings(ctx context.Context) (*posting.Postings, error)
	// Stats summarizes the stored corpus.
	Stats(ctx context.Context) (*Stats, error)
	Close() error
}

// Stats describes the stored corpus for reporting.
type Stats struct {
	PostingCount int       `json:"posting_count"`
	Companies    int       `json:"companies"`
	Assigned     int       `json:"assigned"`
	LastScraped  time.Time `json:"last_scraped,omitempty"`
	TopSkills    []string  `json:"top_skills,omitempty"`
}

const topSkillsLimit = 10

// buildStats derives the stats from a loaded posting list. Both backends
// share it; the corpus is small enough that counting in Go beats keeping
// aggregate queries in sync.
func buildStats(postings *posting.Postings) *Stats {
	stats := &Stats{
		PostingCount: postings.Len(),
		Companies:    len(postings.Companies()),
		TopSkills:    TopSkills(postings, topSkillsLimit),
	}

	for _, item := range postings.Items {
		if item.Enrichment != nil {
			stats.Assigned++
		}
		if t := item.ScrapedTime(); t.After(stats.LastScraped) {
			stats.LastScraped = t
		}
	}

	return stats
}

// TopSkills returns the most frequent normalized skill tokens across the
// postings, ties broken alphabetically. Tokens of one or two characters are
// noise and are dropped.
func TopSkills(postings *posting.Postings, limit int) []string {
	counts := make(map[string]int)
	for _, item := range postings.Items {
		for _, tok := range feature.Tokenize(item.RawSkillText) {
			if len(tok) <= 2 {
				continue
			}
			counts[tok]++
		}
	}

	skills := make([]string, 0, len(counts))
	for skill := range counts {
		skills = append(skills, skill)
	}
	sort.Slice(skills, func(i, j int) bool {
		if counts[skills[i]] != counts[skills[j]] {
			return counts[skills[i]] > counts[skills[j]]
		}
		return skills[i] < skills[j]
	})

	if limit > 0 && len(skills) > limit {
		skills = skills[:limit]
	}
	return skills
}
