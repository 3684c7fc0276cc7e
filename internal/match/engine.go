package match

import (
	"errors"
	"fmt"
	"sort"

	"github.com/jobradar/job-radar/internal/cluster"
	"github.com/jobradar/job-radar/internal/feature"
	"github.com/jobradar/job-radar/internal/logger"
	"github.com/jobradar/job-radar/internal/posting"

	"go.uber.org/zap"
)

// ErrNoSignal is returned when a query contains no skills the vocabulary
// recognizes. It marks a valid empty result, not a failure: callers should
// render an empty ranked list.
var ErrNoSignal = errors.New("query has no recognized skills")

// DefaultClusterBoost is added to the similarity of postings sharing the
// query's cluster. Cosine similarity is bounded by 1, so the boost keeps
// same-cluster postings ahead of marginally-more-similar outsiders without
// drowning the fine-grained ordering inside the cluster.
const DefaultClusterBoost = 0.25

// Result is one ranked entry of a match response.
type Result struct {
	PostingID string  `json:"posting_id"`
	Score     float64 `json:"score"`
	Cluster   int     `json:"cluster"`
}

// Engine ranks stored postings against a free-text skill query by combining
// cluster membership with cosine similarity over feature vectors.
type Engine struct {
	model  *cluster.Model
	vocab  *feature.Vocabulary
	boost  float64
	logger *zap.Logger
}

func NewEngine(model *cluster.Model, vocab *feature.Vocabulary, boost float64, log *zap.Logger) *Engine {
	if boost <= 0 {
		boost = DefaultClusterBoost
	}

	gen := ""
	vocabVersion := ""
	if model != nil {
		gen = model.Generation
	}
	if vocab != nil {
		vocabVersion = vocab.Version
	}

	return &Engine{
		model:  model,
		vocab:  vocab,
		boost:  boost,
		logger: logger.WithModelFields(log, gen, vocabVersion),
	}
}

// Match encodes the query skills, finds their nearest cluster and returns
// postings ranked by combined score (cluster boost + cosine similarity),
// descending, ties broken by posting id ascending. The list is capped at
// topN when topN is positive. Postings without an assignment from the
// engine's model generation are skipped, not failed on.
func (e *Engine) Match(querySkillText string, postings *posting.Postings, topN int) ([]Result, error) {
	if !e.model.Trained() {
		return nil, cluster.ErrNotTrained
	}
	if e.vocab == nil {
		return nil, fmt.Errorf("vocabulary is required")
	}
	if e.model.VocabVersion != e.vocab.Version {
		return nil, fmt.Errorf("%w: model fitted on vocabulary %s, encoder has %s",
			cluster.ErrVocabularyMismatch, e.model.VocabVersion, e.vocab.Version)
	}

	queryVec := e.vocab.Encode(querySkillText)
	if IsZero(queryVec) {
		return nil, ErrNoSignal
	}

	queryCluster, err := e.model.Assign(queryVec)
	if err != nil {
		return nil, fmt.Errorf("assigning query: %w", err)
	}

	e.logger.Debug("query assigned",
		zap.Int("cluster", queryCluster),
		zap.String("query", logger.TruncateForLog(querySkillText, 120)),
	)

	results := make([]Result, 0, postings.Len())
	skipped := 0
	for _, p := range postings.Items {
		if p.Enrichment == nil || p.Enrichment.Generation != e.model.Generation {
			skipped++
			continue
		}

		score := Cosine(queryVec, p.Enrichment.Vector)
		if p.Enrichment.Cluster == queryCluster {
			score += e.boost
		}

		results = append(results, Result{
			PostingID: p.ID,
			Score:     score,
			Cluster:   p.Enrichment.Cluster,
		})
	}

	if skipped > 0 {
		e.logger.Debug("postings without a current assignment were skipped", zap.Int("skipped", skipped))
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].PostingID < results[j].PostingID
	})

	if topN > 0 && len(results) > topN {
		results = results[:topN]
	}

	return results, nil
}

// QueryCluster returns the cluster the query skills fall into without
// ranking anything. It shares Match's signal and vocabulary checks.
func (e *Engine) QueryCluster(querySkillText string) (int, error) {
	if !e.model.Trained() {
		return 0, cluster.ErrNotTrained
	}
	if e.vocab == nil {
		return 0, fmt.Errorf("vocabulary is required")
	}
	if e.model.VocabVersion != e.vocab.Version {
		return 0, fmt.Errorf("%w: model fitted on vocabulary %s, encoder has %s",
			cluster.ErrVocabularyMismatch, e.model.VocabVersion, e.vocab.Version)
	}

	queryVec := e.vocab.Encode(querySkillText)
	if IsZero(queryVec) {
		return 0, ErrNoSignal
	}

	return e.model.Assign(queryVec)
}
