package cmd

import (
	"errors"
	"log"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	app = "job-radar"
)

type Config struct {
	Store     *StoreConfig     `mapstructure:"store"`
	Artifacts *ArtifactsConfig `mapstructure:"artifacts"`
	Train     *TrainConfig     `mapstructure:"train"`
	Match     *MatchConfig     `mapstructure:"match"`
	AI        *AIConfig        `mapstructure:"ai"`
}

type StoreConfig struct {
	Path string `mapstructure:"path"`
}

type ArtifactsConfig struct {
	ModelFile string `mapstructure:"model-file"`
	VocabFile string `mapstructure:"vocab-file"`
}

type TrainConfig struct {
	Clusters      int   `mapstructure:"clusters"`
	Seed          int64 `mapstructure:"seed"`
	MaxIterations int   `mapstructure:"max-iterations"`
}

type MatchConfig struct {
	TopN         int     `mapstructure:"top-n"`
	ClusterBoost float64 `mapstructure:"cluster-boost"`
}

type AIConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	Gemini  *GeminiConfig `mapstructure:"gemini"`
}

type GeminiConfig struct {
	APIKeyFile   string `mapstructure:"api-key-file"`
	Model        string `mapstructure:"model"`
	MaxLogLength int    `mapstructure:"max-log-length"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "job-radar clusters scraped job postings into role categories and matches skills against them",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	if err := viper.BindEnv("ai.gemini.api-key-file", "GEMINI_API_KEY_FILE"); err != nil {
		log.Fatalf("binding GEMINI_API_KEY_FILE environment variable: %v", err)
	}

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is job-radar.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func initConfig() {
	viper.SetDefault("store.path", "data/job-radar.db")
	viper.SetDefault("artifacts.model-file", "data/model.json")
	viper.SetDefault("artifacts.vocab-file", "data/vocabulary.json")
	viper.SetDefault("train.clusters", 4)
	viper.SetDefault("train.seed", 42)
	viper.SetDefault("train.max-iterations", 50)
	viper.SetDefault("match.top-n", 10)
	viper.SetDefault("match.cluster-boost", 0.25)

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app + ".yaml")
	}

	// Defaults cover everything, so a missing config file is fine. A config
	// file that exists but cannot be parsed is not.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			log.Fatal(err)
		}
	}
}

func getConfig() (*Config, error) {
	var config *Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	return config, nil
}
