package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/jobradar/job-radar/internal/ai"
	"github.com/jobradar/job-radar/internal/ai/gemini"
	"github.com/jobradar/job-radar/internal/cluster"
	"github.com/jobradar/job-radar/internal/feature"
	"github.com/jobradar/job-radar/internal/ingest"
	"github.com/jobradar/job-radar/internal/logger"
	"github.com/jobradar/job-radar/internal/posting"
	"github.com/jobradar/job-radar/internal/secrets"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var trainCmd = &cobra.Command{
	Use:   "train <postings-file>",
	Short: "Fit the vocabulary and cluster model over a postings batch and store the enriched postings",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		train(cmd, args[0])
	},
}

func init() {
	rootCmd.AddCommand(trainCmd)

	trainCmd.Flags().IntP("clusters", "k", 0, "number of role categories to fit (default from config)")
	trainCmd.Flags().Int64("seed", -1, "seed for deterministic centroid initialization (default from config)")
}

// train is the full training pass: ingest, fit, assign everything, persist.
// A re-fit produces a new model generation; prior assignments become stale
// and are rewritten wholesale.
func train(cmd *cobra.Command, postingsFile string) {
	ctx := context.Background()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting a training pass", zap.String("version", version))

	params := trainParams(cmd, config)

	postings, _, err := ingest.FromFile(postingsFile, logger)
	if err != nil {
		logger.Fatal("ingesting postings", zap.Error(err))
	}

	if postings.Len() == 0 {
		logger.Fatal("nothing to train on", zap.String("reason", "no valid postings in batch"))
	}

	corpus := make([]string, 0, postings.Len())
	for _, p := range postings.Items {
		corpus = append(corpus, p.RawSkillText)
	}

	vocab, err := feature.Fit(corpus)
	if err != nil {
		logger.Fatal("fitting vocabulary", zap.Error(err))
	}

	logger.Info("fitted vocabulary",
		zap.Int("size", vocab.Dimension()),
		zap.String("version", vocab.Version),
	)

	vectors := make([][]float64, 0, postings.Len())
	for _, p := range postings.Items {
		vectors = append(vectors, vocab.Encode(p.RawSkillText))
	}

	params.VocabVersion = vocab.Version
	model, assignments, err := cluster.Fit(vectors, params, logger)
	if err != nil {
		logger.Fatal("fitting cluster model", zap.Error(err))
	}

	for i, p := range postings.Items {
		p.Enrichment = &posting.Enrichment{
			Vector:     vectors[i],
			Cluster:    assignments[i],
			Generation: model.Generation,
		}
	}

	logger.Info("fitted cluster model",
		zap.Int("clusters", model.K),
		zap.Int64("seed", params.Seed),
		zap.String("generation", model.Generation),
	)

	if err := saveArtifacts(config, vocab, model); err != nil {
		logger.Fatal("saving artifacts", zap.Error(err))
	}

	s, err := openStore(ctx, config, logger)
	if err != nil {
		logger.Fatal("opening posting store", zap.Error(err))
	}
	defer s.Close()

	if err := s.UpsertPostings(ctx, postings.Items); err != nil {
		logger.Fatal("storing postings", zap.Error(err))
	}

	logger.Info("stored enriched postings", zap.Int("count", postings.Len()))

	insights, err := model.BuildInsights(postings)
	if err != nil {
		logger.Fatal("building cluster insights", zap.Error(err))
	}

	nameInsights(ctx, config, insights, logger)

	pretty, _ := json.MarshalIndent(insights, "", "  ")
	logger.Info(fmt.Sprintf("cluster insights:\n%s", pretty))
}

func trainParams(cmd *cobra.Command, config *Config) cluster.FitParams {
	params := cluster.FitParams{
		K:             4,
		Seed:          42,
		MaxIterations: cluster.DefaultMaxIterations,
	}

	if config != nil && config.Train != nil {
		if config.Train.Clusters > 0 {
			params.K = config.Train.Clusters
		}
		params.Seed = config.Train.Seed
		if config.Train.MaxIterations > 0 {
			params.MaxIterations = config.Train.MaxIterations
		}
	}

	if cmd != nil {
		if k, err := cmd.Flags().GetInt("clusters"); err == nil && k > 0 {
			params.K = k
		}
		if seed, err := cmd.Flags().GetInt64("seed"); err == nil && seed >= 0 {
			params.Seed = seed
		}
	}

	return params
}

// nameInsights replaces the built-in heuristic names with Gemini labels when
// the ai section is enabled. A naming failure keeps the heuristic name; the
// labels are annotation, not engine state.
func nameInsights(ctx context.Context, config *Config, insights []*cluster.Insight, logger *zap.Logger) {
	namer, err := newClusterNamer(ctx, config, logger)
	if err != nil {
		logger.Warn("skipping ai cluster naming", zap.Error(err))
		return
	}
	if namer == nil {
		return
	}

	for _, insight := range insights {
		name, err := namer.NameCluster(ctx, insight)
		if err != nil {
			logger.Warn("naming cluster",
				zap.Int("cluster", insight.Cluster),
				zap.Error(err),
			)
			continue
		}
		insight.Name = name
	}
}

func newClusterNamer(ctx context.Context, config *Config, logger *zap.Logger) (ai.Namer, error) {
	if config == nil || config.AI == nil || !config.AI.Enabled {
		return nil, nil
	}

	if config.AI.Gemini == nil {
		return nil, fmt.Errorf("gemini configuration is required when ai naming is enabled")
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name: "gemini api key",
		File: strings.TrimSpace(config.AI.Gemini.APIKeyFile),
	})
	if err != nil {
		return nil, fmt.Errorf("%w (set ai.gemini.api-key-file or GEMINI_API_KEY_FILE)", err)
	}

	generator, err := gemini.NewGenerator(ctx, apiKey, config.AI.Gemini.Model)
	if err != nil {
		return nil, err
	}

	namerLogger := logger.With(
		zap.String("provider", "gemini"),
		zap.String("model", generator.Model()),
	)

	return gemini.NewNamer(generator, namerLogger, config.AI.Gemini.MaxLogLength), nil
}
