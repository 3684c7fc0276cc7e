package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jobradar/job-radar/internal/cluster"
	"github.com/jobradar/job-radar/internal/feature"
	"github.com/jobradar/job-radar/internal/store"

	"go.uber.org/zap"
)

// openStore opens the configured sqlite posting store, creating parent
// directories on first use.
func openStore(ctx context.Context, config *Config, logger *zap.Logger) (store.Store, error) {
	if config == nil || config.Store == nil || config.Store.Path == "" {
		return nil, fmt.Errorf("store path is required under store.path")
	}

	if dir := filepath.Dir(config.Store.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating store directory: %w", err)
		}
	}

	s, err := store.OpenSQLite(ctx, config.Store.Path)
	if err != nil {
		return nil, err
	}

	logger.Debug("opened posting store", zap.String("path", config.Store.Path))
	return s, nil
}

// loadArtifacts restores the persisted vocabulary and model pair and
// publishes the model through a holder, so every reader in the process works
// against the same snapshot.
func loadArtifacts(config *Config, logger *zap.Logger) (*feature.Vocabulary, *cluster.Holder, error) {
	if config == nil || config.Artifacts == nil {
		return nil, nil, fmt.Errorf("artifact paths are required under artifacts")
	}

	vocab, err := feature.FromFile(config.Artifacts.VocabFile)
	if err != nil {
		return nil, nil, fmt.Errorf("loading vocabulary (run train first?): %w", err)
	}

	model, err := cluster.FromFile(config.Artifacts.ModelFile)
	if err != nil {
		return nil, nil, fmt.Errorf("loading model (run train first?): %w", err)
	}

	if model.VocabVersion != vocab.Version {
		return nil, nil, fmt.Errorf("%w: model fitted on vocabulary %s, loaded vocabulary is %s",
			cluster.ErrVocabularyMismatch, model.VocabVersion, vocab.Version)
	}

	logger.Debug("loaded artifacts",
		zap.String("model_file", config.Artifacts.ModelFile),
		zap.String("vocab_file", config.Artifacts.VocabFile),
		zap.String("generation", model.Generation),
		zap.Int("vocabulary_size", vocab.Dimension()),
	)

	return vocab, cluster.NewHolder(model), nil
}

// saveArtifacts persists the vocabulary and model pair.
func saveArtifacts(config *Config, vocab *feature.Vocabulary, model *cluster.Model) error {
	for _, path := range []string{config.Artifacts.ModelFile, config.Artifacts.VocabFile} {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("creating artifacts directory: %w", err)
			}
		}
	}

	if err := vocab.ToFile(config.Artifacts.VocabFile); err != nil {
		return fmt.Errorf("saving vocabulary: %w", err)
	}
	if err := model.ToFile(config.Artifacts.ModelFile); err != nil {
		return fmt.Errorf("saving model: %w", err)
	}
	return nil
}
