package cluster

import "errors"

var (
	// ErrNotTrained is returned when an assignment is requested from a model
	// that has never been fitted. Recoverable by running a training pass.
	ErrNotTrained = errors.New("model not trained")

	// ErrVocabularyMismatch is returned when a vector or vocabulary does not
	// belong to the vocabulary the model was fitted on. Distances computed
	// across vocabularies are meaningless, so the mismatch is a checked
	// condition. Recoverable by re-fitting or reloading matching artifacts.
	ErrVocabularyMismatch = errors.New("vocabulary mismatch")

	// ErrEmptyCorpus is returned when a fit is requested over zero vectors.
	ErrEmptyCorpus = errors.New("empty corpus")
)
