package cli

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ppiankov/trustie/internal/logging"
	"github.com/ppiankov/trustie/internal/model"
	"github.com/ppiankov/trustie/internal/pipeline"
)

// Version is set at build time
var Version = "v0.1.0"

var (
	cfgFile   string
	verbose   bool
	logLevel  string
	logFormat string
	provider  string
	modelName string
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "trustie",
	Short: "Trustie - claim verification and trust scoring for AI-generated text",
	Long: `Trustie checks the factual claims in AI-generated text against web
evidence and keeps running reliability statistics per AI source.

It extracts atomic claims, retrieves evidence through a web-search capable
model, adjudicates each claim as supported, contradicted or unverified, and
scores answers by the quality and agreement of their sources.

Verdicts are only as good as the sources found. Treat them as a starting
point for your own checking.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("trustie %s\n", Version)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.trustie/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (trace, debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format (json, text)")
	rootCmd.PersistentFlags().StringVar(&provider, "provider", "", "backend provider (anthropic, openai, ollama)")
	rootCmd.PersistentFlags().StringVar(&modelName, "model", "", "backend model name")

	// Bind flags to viper
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("log.format", rootCmd.PersistentFlags().Lookup("log-format"))
	_ = viper.BindPFlag("backend.provider", rootCmd.PersistentFlags().Lookup("provider"))
	_ = viper.BindPFlag("backend.model", rootCmd.PersistentFlags().Lookup("model"))

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in config file and ENV variables
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}

		viper.AddConfigPath(filepath.Join(home, ".trustie"))
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// Read in environment variables that match TRUSTIE_* (TRUSTIE_BACKEND_MODEL)
	configureEnv(viper.GetViper())

	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// setup loads configuration and builds the logger and pipeline shared by
// every command that talks to the backend
func setup() (*model.Config, *pipeline.Pipeline, *slog.Logger, error) {
	cfg, err := LoadConfig(viper.GetViper())
	if err != nil {
		return nil, nil, nil, err
	}

	level := cfg.Log.Level
	if verbose && logLevel == "" {
		level = "debug"
	}
	logger, _, err := logging.New(level, cfg.Log.Format, os.Stderr)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("configure logging: %w", err)
	}
	slog.SetDefault(logger)

	p, err := pipeline.NewFromConfig(cfg, nil, logger)
	if err != nil {
		return nil, nil, nil, err
	}
	return cfg, p, logger, nil
}
