package cluster

import (
	"crypto/sha1"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"math"
	"math/rand"

	"go.uber.org/zap"
)

// DefaultMaxIterations bounds the Lloyd's loop so a fit always terminates,
// even on pathological inputs.
const DefaultMaxIterations = 50

// Model is a fitted set of K centroids partitioning the feature space. The
// VocabVersion tag binds it to the vocabulary its training vectors were
// encoded with; Generation identifies this particular fit so downstream
// assignments can be recognized as stale after a re-fit.
type Model struct {
	K            int         `json:"k"`
	Centroids    [][]float64 `json:"centroids"`
	VocabVersion string      `json:"vocab_version"`
	Generation   string      `json:"generation"`
}

// FitParams describes one training request.
type FitParams struct {
	K             int
	Seed          int64
	MaxIterations int
	VocabVersion  string
}

// Fit runs seeded Lloyd's iterations over the vectors and returns the fitted
// model together with the final cluster assignment of every input vector.
// The same seed over the same vectors always produces identical centroids.
func Fit(vectors [][]float64, params FitParams, logger *zap.Logger) (*Model, []int, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	if len(vectors) == 0 {
		return nil, nil, ErrEmptyCorpus
	}
	if params.K <= 0 {
		return nil, nil, fmt.Errorf("cluster count must be positive, got %d", params.K)
	}
	if params.K > len(vectors) {
		return nil, nil, fmt.Errorf("cluster count %d exceeds corpus size %d", params.K, len(vectors))
	}

	dim := len(vectors[0])
	for i, vec := range vectors {
		if len(vec) != dim {
			return nil, nil, fmt.Errorf("%w: vector %d has dimension %d, want %d", ErrVocabularyMismatch, i, len(vec), dim)
		}
	}

	maxIter := params.MaxIterations
	if maxIter <= 0 {
		maxIter = DefaultMaxIterations
	}

	rng := rand.New(rand.NewSource(params.Seed))
	centroids := initialCentroids(vectors, params.K, rng)

	assignments := make([]int, len(vectors))
	for i := range assignments {
		assignments[i] = -1
	}

	iterations := 0
	for ; iterations < maxIter; iterations++ {
		changed := false
		for i, vec := range vectors {
			c := nearestCentroid(vec, centroids)
			if c != assignments[i] {
				assignments[i] = c
				changed = true
			}
		}

		if !changed {
			break
		}

		recomputeCentroids(centroids, vectors, assignments)
		reseedEmptyClusters(centroids, vectors, assignments)
	}

	model := &Model{
		K:            params.K,
		Centroids:    centroids,
		VocabVersion: params.VocabVersion,
	}
	model.Generation = model.fingerprint()

	logger.Debug("kmeans fit finished",
		zap.Int("k", params.K),
		zap.Int64("seed", params.Seed),
		zap.Int("iterations", iterations),
		zap.Int("vectors", len(vectors)),
		zap.String("generation", model.Generation),
	)

	return model, assignments, nil
}

// Assign maps a feature vector to the id of its nearest centroid. The model
// must be fitted and the vector must share the model's dimensionality.
func (m *Model) Assign(vec []float64) (int, error) {
	if m == nil || len(m.Centroids) == 0 {
		return 0, ErrNotTrained
	}
	if len(vec) != len(m.Centroids[0]) {
		return 0, fmt.Errorf("%w: vector dimension %d, model dimension %d", ErrVocabularyMismatch, len(vec), len(m.Centroids[0]))
	}
	return nearestCentroid(vec, m.Centroids), nil
}

// Trained reports whether the model holds a fitted centroid set.
func (m *Model) Trained() bool {
	return m != nil && len(m.Centroids) > 0
}

// initialCentroids copies K distinct seed vectors chosen by the rng.
func initialCentroids(vectors [][]float64, k int, rng *rand.Rand) [][]float64 {
	perm := rng.Perm(len(vectors))
	centroids := make([][]float64, k)
	for i := 0; i < k; i++ {
		centroids[i] = append([]float64(nil), vectors[perm[i]]...)
	}
	return centroids
}

// nearestCentroid returns the index of the closest centroid by Euclidean
// distance. On a tie the lower-indexed centroid wins.
func nearestCentroid(vec []float64, centroids [][]float64) int {
	best := 0
	bestDist := math.Inf(1)
	for i, centroid := range centroids {
		d := squaredDistance(vec, centroid)
		if d < bestDist {
			best = i
			bestDist = d
		}
	}
	return best
}

func squaredDistance(a, b []float64) float64 {
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}

func recomputeCentroids(centroids [][]float64, vectors [][]float64, assignments []int) {
	counts := make([]int, len(centroids))
	for i := range centroids {
		for j := range centroids[i] {
			centroids[i][j] = 0
		}
	}

	for i, vec := range vectors {
		c := assignments[i]
		counts[c]++
		for j, val := range vec {
			centroids[c][j] += val
		}
	}

	for i, count := range counts {
		if count == 0 {
			continue
		}
		for j := range centroids[i] {
			centroids[i][j] /= float64(count)
		}
	}
}

// reseedEmptyClusters moves the vector currently farthest from its own
// centroid into each cluster that ended the iteration with no members,
// preventing empty-cluster collapse.
func reseedEmptyClusters(centroids [][]float64, vectors [][]float64, assignments []int) {
	counts := make([]int, len(centroids))
	for _, c := range assignments {
		counts[c]++
	}

	for c := range centroids {
		if counts[c] > 0 {
			continue
		}

		farthest := -1
		farthestDist := -1.0
		for i, vec := range vectors {
			// Stealing from a singleton would just move the hole around.
			if counts[assignments[i]] <= 1 {
				continue
			}
			d := squaredDistance(vec, centroids[assignments[i]])
			if d > farthestDist {
				farthest = i
				farthestDist = d
			}
		}

		if farthest < 0 {
			continue
		}

		counts[assignments[farthest]]--
		assignments[farthest] = c
		counts[c] = 1
		copy(centroids[c], vectors[farthest])
	}
}

// fingerprint derives the generation tag from the fitted state, so identical
// fits share a tag and any re-fit produces a new one.
func (m *Model) fingerprint() string {
	h := sha1.New()

	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(m.K))
	h.Write(buf[:])
	h.Write([]byte(m.VocabVersion))

	for _, centroid := range m.Centroids {
		for _, val := range centroid {
			binary.LittleEndian.PutUint64(buf[:], math.Float64bits(val))
			h.Write(buf[:])
		}
	}

	return hex.EncodeToString(h.Sum(nil))
}
