package cmd

import (
	"context"
	"log"

	"github.com/jobradar/job-radar/internal/ingest"
	"github.com/jobradar/job-radar/internal/logger"
	"github.com/jobradar/job-radar/internal/posting"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var assignCmd = &cobra.Command{
	Use:   "assign <postings-file>",
	Short: "Assign a postings batch to existing clusters without refitting the model",
	Args:  cobra.ExactArgs(1),
	Run: func(_ *cobra.Command, args []string) {
		assign(args[0])
	},
}

func init() {
	rootCmd.AddCommand(assignCmd)
}

// assign encodes new postings with the frozen vocabulary and places them
// into the persisted model's clusters. Postings whose skills are entirely
// out of vocabulary still get a cluster: the zero vector lands on whichever
// centroid is nearest, which is as good as any answer without signal.
func assign(postingsFile string) {
	ctx := context.Background()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	vocab, holder, err := loadArtifacts(config, logger)
	if err != nil {
		logger.Fatal("loading artifacts", zap.Error(err))
	}
	model := holder.Current()

	postings, report, err := ingest.FromFile(postingsFile, logger)
	if err != nil {
		logger.Fatal("ingesting postings", zap.Error(err))
	}

	if postings.Len() == 0 {
		logger.Info("exiting", zap.String("reason", "no valid postings in batch"))
		return
	}

	for _, p := range postings.Items {
		vec := vocab.Encode(p.RawSkillText)
		clusterID, err := model.Assign(vec)
		if err != nil {
			logger.Fatal("assigning posting",
				zap.String("posting_id", p.ID),
				zap.Error(err),
			)
		}

		p.Enrichment = &posting.Enrichment{
			Vector:     vec,
			Cluster:    clusterID,
			Generation: model.Generation,
		}
	}

	s, err := openStore(ctx, config, logger)
	if err != nil {
		logger.Fatal("opening posting store", zap.Error(err))
	}
	defer s.Close()

	if err := s.UpsertPostings(ctx, postings.Items); err != nil {
		logger.Fatal("storing postings", zap.Error(err))
	}

	logger.Info("assigned postings batch",
		zap.Int("assigned", postings.Len()),
		zap.Int("skipped", len(report.Skipped)),
		zap.String("model_generation", model.Generation),
	)
}
