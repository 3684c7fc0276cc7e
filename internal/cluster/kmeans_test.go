package cluster

import (
	"errors"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/jobradar/job-radar/internal/feature"

	"go.uber.org/zap"
)

// exampleVectors encodes the corpus ["python, sql", "java, sql",
// "python, pandas"] over its own fitted vocabulary.
func exampleVectors(t *testing.T) [][]float64 {
	t.Helper()

	corpus := []string{"python, sql", "java, sql", "python, pandas"}
	vocab, err := feature.Fit(corpus)
	if err != nil {
		t.Fatalf("fitting vocabulary: %v", err)
	}

	vectors := make([][]float64, 0, len(corpus))
	for _, text := range corpus {
		vectors = append(vectors, vocab.Encode(text))
	}
	return vectors
}

func fitExample(t *testing.T, seed int64) (*Model, []int) {
	t.Helper()

	model, assignments, err := Fit(exampleVectors(t), FitParams{K: 2, Seed: seed, VocabVersion: "v1"}, zap.NewNop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return model, assignments
}

func TestFitIsDeterministic(t *testing.T) {
	first, firstAssign := fitExample(t, 0)
	second, secondAssign := fitExample(t, 0)

	if !reflect.DeepEqual(first.Centroids, second.Centroids) {
		t.Fatalf("repeated fits produced different centroids:\n%v\n%v", first.Centroids, second.Centroids)
	}
	if !reflect.DeepEqual(firstAssign, secondAssign) {
		t.Fatalf("repeated fits produced different assignments: %v vs %v", firstAssign, secondAssign)
	}
	if first.Generation != second.Generation {
		t.Fatalf("repeated fits produced different generations")
	}
}

func TestFitAssignsEveryVectorToExactlyOneCluster(t *testing.T) {
	model, assignments := fitExample(t, 0)

	if len(assignments) != 3 {
		t.Fatalf("expected 3 assignments, got %d", len(assignments))
	}
	for i, c := range assignments {
		if c < 0 || c >= model.K {
			t.Fatalf("vector %d assigned to out-of-range cluster %d", i, c)
		}
	}
}

func TestFitLeavesNoEmptyCluster(t *testing.T) {
	model, assignments := fitExample(t, 0)

	members := make([]int, model.K)
	for _, c := range assignments {
		members[c]++
	}
	for c, count := range members {
		if count == 0 {
			t.Fatalf("cluster %d has no members", c)
		}
	}
}

func TestFitSeparatesDissimilarPostings(t *testing.T) {
	// "java, sql" and "python, pandas" share no skills; a 2-way partition
	// must never group them together, whatever the seed picks first.
	for seed := int64(0); seed < 5; seed++ {
		_, assignments := fitExample(t, seed)
		if assignments[1] == assignments[2] {
			t.Fatalf("seed %d grouped the disjoint postings together: %v", seed, assignments)
		}
	}
}

func TestFitValidation(t *testing.T) {
	if _, _, err := Fit(nil, FitParams{K: 2, Seed: 0}, zap.NewNop()); !errors.Is(err, ErrEmptyCorpus) {
		t.Fatalf("expected ErrEmptyCorpus, got %v", err)
	}

	vectors := [][]float64{{1, 0}, {0, 1}}
	if _, _, err := Fit(vectors, FitParams{K: 0, Seed: 0}, zap.NewNop()); err == nil {
		t.Fatalf("expected error for non-positive K")
	}
	if _, _, err := Fit(vectors, FitParams{K: 3, Seed: 0}, zap.NewNop()); err == nil {
		t.Fatalf("expected error for K larger than corpus")
	}

	ragged := [][]float64{{1, 0}, {0, 1, 1}}
	if _, _, err := Fit(ragged, FitParams{K: 2, Seed: 0}, zap.NewNop()); !errors.Is(err, ErrVocabularyMismatch) {
		t.Fatalf("expected ErrVocabularyMismatch for ragged vectors, got %v", err)
	}
}

func TestAssignIsIdempotent(t *testing.T) {
	model, _ := fitExample(t, 0)
	vec := exampleVectors(t)[0]

	first, err := model.Assign(vec)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 0; i < 10; i++ {
		got, err := model.Assign(vec)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != first {
			t.Fatalf("assign changed answer on call %d: %d vs %d", i, got, first)
		}
	}
}

func TestAssignTieBreaksToLowerIndex(t *testing.T) {
	model := &Model{K: 2, Centroids: [][]float64{{0}, {2}}}

	got, err := model.Assign([]float64{1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 0 {
		t.Fatalf("equidistant vector must go to the lower-indexed centroid, got %d", got)
	}
}

func TestAssignUntrainedModel(t *testing.T) {
	var m *Model
	if _, err := m.Assign([]float64{1}); !errors.Is(err, ErrNotTrained) {
		t.Fatalf("expected ErrNotTrained on nil model, got %v", err)
	}

	empty := &Model{}
	if _, err := empty.Assign([]float64{1}); !errors.Is(err, ErrNotTrained) {
		t.Fatalf("expected ErrNotTrained on empty model, got %v", err)
	}
}

func TestAssignDimensionMismatch(t *testing.T) {
	model, _ := fitExample(t, 0)

	if _, err := model.Assign([]float64{1}); !errors.Is(err, ErrVocabularyMismatch) {
		t.Fatalf("expected ErrVocabularyMismatch, got %v", err)
	}
}

func TestModelRoundTrip(t *testing.T) {
	model, _ := fitExample(t, 0)

	path := filepath.Join(t.TempDir(), "model.json")
	if err := model.ToFile(path); err != nil {
		t.Fatalf("saving model: %v", err)
	}

	loaded, err := FromFile(path)
	if err != nil {
		t.Fatalf("loading model: %v", err)
	}

	if !reflect.DeepEqual(loaded.Centroids, model.Centroids) {
		t.Fatalf("centroids changed across round trip")
	}
	if loaded.K != model.K || loaded.Generation != model.Generation || loaded.VocabVersion != model.VocabVersion {
		t.Fatalf("model metadata changed across round trip")
	}

	// Identical behavior on assign for any test vector.
	for _, vec := range exampleVectors(t) {
		want, err := model.Assign(vec)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		got, err := loaded.Assign(vec)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != want {
			t.Fatalf("loaded model assigns differently: %d vs %d", got, want)
		}
	}
}

func TestHolderSwapPublishesAtomically(t *testing.T) {
	first, _ := fitExample(t, 0)
	second, _ := fitExample(t, 1)

	holder := NewHolder(first)
	if holder.Current() != first {
		t.Fatalf("holder did not publish the initial model")
	}

	previous := holder.Swap(second)
	if previous != first {
		t.Fatalf("swap did not return the previous model")
	}
	if holder.Current() != second {
		t.Fatalf("swap did not publish the new model")
	}
}
