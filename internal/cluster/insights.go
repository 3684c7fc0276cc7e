package cluster

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jobradar/job-radar/internal/feature"
	"github.com/jobradar/job-radar/internal/posting"
)

const (
	topSkillsPerCluster = 8
	samplesPerCluster   = 3
)

// Insight summarizes one cluster for reporting: how many postings it holds,
// which skills dominate it and a few example postings. The name is a human
// label; cluster ids themselves stay opaque.
type Insight struct {
	Cluster      int      `json:"cluster"`
	Name         string   `json:"name"`
	PostingCount int      `json:"posting_count"`
	TopSkills    []string `json:"top_skills"`
	SampleTitles []string `json:"sample_titles"`
	Companies    []string `json:"companies"`
}

// BuildInsights summarizes every cluster of the model over the postings
// assigned under its generation.
func (m *Model) BuildInsights(postings *posting.Postings) ([]*Insight, error) {
	if !m.Trained() {
		return nil, ErrNotTrained
	}

	insights := make([]*Insight, 0, m.K)
	for c := 0; c < m.K; c++ {
		members := postings.InCluster(c, m.Generation)

		skills := topSkills(members, topSkillsPerCluster)

		titles := make([]string, 0, samplesPerCluster)
		companySet := make(map[string]struct{})
		companies := make([]string, 0, samplesPerCluster)
		for _, member := range members {
			if len(titles) < samplesPerCluster && member.Title != "" {
				titles = append(titles, member.Title)
			}
			if len(companies) < samplesPerCluster && member.Company != "" {
				if _, ok := companySet[member.Company]; !ok {
					companySet[member.Company] = struct{}{}
					companies = append(companies, member.Company)
				}
			}
		}

		insights = append(insights, &Insight{
			Cluster:      c,
			Name:         HeuristicName(skills, titles),
			PostingCount: len(members),
			TopSkills:    skills,
			SampleTitles: titles,
			Companies:    companies,
		})
	}

	return insights, nil
}

// topSkills counts normalized skill tokens across the postings and returns
// the most frequent ones. Ties resolve alphabetically for stable output.
func topSkills(members []*posting.Posting, limit int) []string {
	counts := make(map[string]int)
	for _, member := range members {
		for _, tok := range feature.Tokenize(member.RawSkillText) {
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

	if len(skills) > limit {
		skills = skills[:limit]
	}
	return skills
}

// HeuristicName labels a cluster from its dominant skills, falling back to
// job titles and finally to the single most frequent skill.
func HeuristicName(skills []string, titles []string) string {
	if len(skills) == 0 {
		return "General"
	}

	skillText := strings.Join(skills, " ")
	titleText := strings.ToLower(strings.Join(titles, " "))

	switch {
	case containsAny(skillText, "python", "machine learning", "data science", "analytics"):
		return "Data Science & ML Engineering"
	case containsAny(skillText, "backend", "api", "java", "spring"):
		return "Backend Development"
	case containsAny(skillText, "frontend", "react", "javascript", "html"):
		return "Frontend Development"
	case containsAny(skillText, "aws", "docker", "kubernetes", "devops"):
		return "DevOps & Cloud Engineering"
	case containsAny(skillText, "design", "ui", "ux"):
		return "Design & Product"
	case containsAny(titleText, "manager", "product", "lead"):
		return "Management & Leadership"
	default:
		return fmt.Sprintf("%s Specialist", skills[0])
	}
}

func containsAny(text string, keywords ...string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
