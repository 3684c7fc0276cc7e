package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/jobradar/job-radar/internal/logger"
	"github.com/jobradar/job-radar/internal/match"
	"github.com/jobradar/job-radar/internal/posting"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	PromptExit            = "Exit"
	PromptReportByCluster = "Report by cluster"
	PromptMatchesToFile   = "Dump matches to file"
)

var errExit = errors.New("exit requested")

var matchPrompt = promptui.Select{
	Label: "What next?",
	Items: []string{PromptExit, PromptReportByCluster, PromptMatchesToFile},
}

var matchCmd = &cobra.Command{
	Use:   "match <skills...>",
	Short: "Rank stored postings against a skill query",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runMatch(cmd, strings.Join(args, ", "))
	},
}

func init() {
	rootCmd.AddCommand(matchCmd)

	matchCmd.Flags().IntP("top", "n", 0, "cap the ranked list (default from config)")
	matchCmd.Flags().BoolP("no-prompt", "y", false, "print the ranked list and exit without the action prompt")
}

func runMatch(cmd *cobra.Command, query string) {
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

	s, err := openStore(ctx, config, logger)
	if err != nil {
		logger.Fatal("opening posting store", zap.Error(err))
	}
	defer s.Close()

	postings, err := s.ListPostings(ctx)
	if err != nil {
		logger.Fatal("loading postings", zap.Error(err))
	}

	topN := 0
	boost := 0.0
	if config.Match != nil {
		topN = config.Match.TopN
		boost = config.Match.ClusterBoost
	}
	if n, err := cmd.Flags().GetInt("top"); err == nil && n > 0 {
		topN = n
	}

	engine := match.NewEngine(holder.Current(), vocab, boost, logger)

	results, err := engine.Match(query, postings, topN)
	if err != nil {
		if errors.Is(err, match.ErrNoSignal) {
			logger.Info("no matches",
				zap.String("reason", "query contains no skills from the trained vocabulary"),
				zap.String("query", query),
			)
			return
		}
		logger.Fatal("matching failed", zap.Error(err))
	}

	if len(results) == 0 {
		logger.Info("no matches", zap.String("reason", "no postings carry a current assignment"))
		return
	}

	printResults(results, postings)

	if noPrompt, err := cmd.Flags().GetBool("no-prompt"); err == nil && noPrompt {
		return
	}

	generation := holder.Current().Generation
	for {
		_, action, err := matchPrompt.Run()
		if err != nil {
			logger.Fatal("exiting", zap.Error(err))
		}

		if err := handleMatchAction(action, logger, results, postings, generation); err != nil {
			if errors.Is(err, errExit) {
				return
			}
			logger.Fatal("exiting", zap.Error(err))
		}
	}
}

func handleMatchAction(action string, logger *zap.Logger, results []match.Result, postings *posting.Postings, generation string) error {
	switch action {
	case PromptExit:
		return errExit
	case PromptReportByCluster:
		pretty, _ := json.MarshalIndent(postings.ReportByCluster(generation), "", "  ")
		logger.Info(string(pretty), zap.Int("postings_count", postings.Len()))
		return nil
	case PromptMatchesToFile:
		matched := &posting.Postings{}
		for _, result := range results {
			if p := postings.FindByID(result.PostingID); p != nil {
				matched.Items = append(matched.Items, p)
			}
		}
		filename, err := matched.DumpToTmpFile()
		if err != nil {
			return fmt.Errorf("dump matches to file: %w", err)
		}
		logger.Info("dumped matches to file", zap.String("filename", filename))
		return nil
	default:
		return fmt.Errorf("invalid action: %s", action)
	}
}

// printResults renders the ranked list with display metadata from the store.
func printResults(results []match.Result, postings *posting.Postings) {
	for i, result := range results {
		p := postings.FindByID(result.PostingID)
		if p == nil {
			continue
		}
		fmt.Printf("%2d. [%.3f] %s / %s / %s (cluster %d)\n",
			i+1, result.Score, p.Title, p.Company, p.Location, result.Cluster)
	}
}
