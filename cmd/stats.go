package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/jobradar/job-radar/internal/logger"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Report stored corpus statistics and cluster insights",
	Run: func(_ *cobra.Command, _ []string) {
		stats()
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func stats() {
	ctx := context.Background()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	s, err := openStore(ctx, config, logger)
	if err != nil {
		logger.Fatal("opening posting store", zap.Error(err))
	}
	defer s.Close()

	storeStats, err := s.Stats(ctx)
	if err != nil {
		logger.Fatal("reading store stats", zap.Error(err))
	}

	pretty, _ := json.MarshalIndent(storeStats, "", "  ")
	logger.Info(fmt.Sprintf("store statistics:\n%s", pretty))

	// Cluster insights need trained artifacts; stats on a fresh store still
	// reports the corpus numbers above.
	_, holder, err := loadArtifacts(config, logger)
	if err != nil {
		logger.Info("skipping cluster insights", zap.Error(err))
		return
	}
	model := holder.Current()

	postings, err := s.ListPostings(ctx)
	if err != nil {
		logger.Fatal("loading postings", zap.Error(err))
	}

	insights, err := model.BuildInsights(postings)
	if err != nil {
		logger.Fatal("building cluster insights", zap.Error(err))
	}

	pretty, _ = json.MarshalIndent(insights, "", "  ")
	logger.Info(fmt.Sprintf("cluster insights:\n%s", pretty),
		zap.String("model_generation", model.Generation),
	)
}
