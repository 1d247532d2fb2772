package cmd

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	configFile string
	storeURL   string
	logLevel   string
	logFormat  string
)

var rootCmd = &cobra.Command{
	Use:   "featurematch",
	Short: "Feature matching and translation tooling for map rendering pipelines",
	Long: `featurematch matches map features against tag expression rules and
maintains a local cache of wikidata name translations for tagged elements.`,
	PersistentPreRunE: setupLogging,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path")
	rootCmd.PersistentFlags().StringVar(&storeURL, "store-url", "", "translation store URL (file path, sqlite://path or postgres://...)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "json", "log format (json, text)")
}

func setupLogging(cmd *cobra.Command, args []string) error {
	level, err := zerolog.ParseLevel(logLevel)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", logLevel, err)
	}
	zerolog.SetGlobalLevel(level)
	if logFormat == "text" {
		logger = logger.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
	return nil
}

var logger = zerolog.New(os.Stderr).With().Timestamp().Logger()

func Execute() error {
	return rootCmd.Execute()
}
