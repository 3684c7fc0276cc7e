package feature

import (
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"sort"
	"strings"
)

// ErrEmptyCorpus is returned when a vocabulary fit is requested over zero
// usable documents. There is nothing to learn from.
var ErrEmptyCorpus = errors.New("empty corpus")

// Vocabulary is the ordered set of distinct skill tokens observed during the
// last fit, each mapped to a stable feature-vector column. It is frozen
// between fits: encoding drops tokens it does not know about, keeping vector
// dimensionality fixed.
type Vocabulary struct {
	Terms   []string `json:"terms"`
	Version string   `json:"version"`

	index map[string]int
}

// Fit builds a vocabulary from the union of tokens across the corpus.
// Column indices follow sorted term order, so repeated fits on identical
// input produce an identical vocabulary.
func Fit(corpus []string) (*Vocabulary, error) {
	if len(corpus) == 0 {
		return nil, ErrEmptyCorpus
	}

	seen := make(map[string]struct{})
	for _, text := range corpus {
		for _, tok := range Tokenize(text) {
			seen[tok] = struct{}{}
		}
	}

	if len(seen) == 0 {
		return nil, ErrEmptyCorpus
	}

	terms := make([]string, 0, len(seen))
	for term := range seen {
		terms = append(terms, term)
	}
	sort.Strings(terms)

	v := &Vocabulary{Terms: terms}
	v.Version = termsVersion(terms)
	v.buildIndex()

	return v, nil
}

// Tokenize splits raw skill text on commas, semicolons and pipes,
// lowercases and trims each token and drops duplicates. Token order follows
// first appearance in the input.
func Tokenize(text string) []string {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return r == ',' || r == ';' || r == '|'
	})

	seen := make(map[string]struct{}, len(fields))
	tokens := make([]string, 0, len(fields))
	for _, field := range fields {
		tok := strings.ToLower(strings.TrimSpace(field))
		if tok == "" {
			continue
		}
		if _, ok := seen[tok]; ok {
			continue
		}
		seen[tok] = struct{}{}
		tokens = append(tokens, tok)
	}
	return tokens
}

// Encode turns raw skill text into a fixed-length presence vector over the
// vocabulary. The weighting policy is binary: tokens are deduplicated per
// posting, so a recognized skill contributes 1 and everything else 0.
// Unknown tokens are dropped and an input with no recognized tokens yields
// the zero vector rather than an error.
func (v *Vocabulary) Encode(text string) []float64 {
	vec := make([]float64, len(v.Terms))
	for _, tok := range Tokenize(text) {
		if idx, ok := v.lookup(tok); ok {
			vec[idx] = 1
		}
	}
	return vec
}

// Dimension returns the length of vectors produced by Encode.
func (v *Vocabulary) Dimension() int {
	return len(v.Terms)
}

func (v *Vocabulary) lookup(term string) (int, bool) {
	if v.index == nil {
		v.buildIndex()
	}
	idx, ok := v.index[term]
	return idx, ok
}

func (v *Vocabulary) buildIndex() {
	v.index = make(map[string]int, len(v.Terms))
	for i, term := range v.Terms {
		v.index[term] = i
	}
}

func termsVersion(terms []string) string {
	h := sha1.New()
	for _, term := range terms {
		h.Write([]byte(term))
		h.Write([]byte{'|'})
	}
	return hex.EncodeToString(h.Sum(nil))
}
