package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/flowmaps/featurematch/internal/config"
	"github.com/flowmaps/featurematch/internal/translate"
)

const Version = "0.1.0"

var fetchWikidataCmd = &cobra.Command{
	Use:   "fetch-wikidata <elements.ndjson>",
	Short: "Download wikidata name translations for tagged elements",
	Long: `Reads newline-delimited JSON elements, collects every parseable
wikidata tag, and downloads name translations for them in batches from the
wikidata SPARQL service. Previously stored translations are kept, so reruns
only fetch what is new.`,
	Args: cobra.ExactArgs(1),
	RunE: runFetchWikidata,
}

func init() {
	rootCmd.AddCommand(fetchWikidataCmd)
	fetchWikidataCmd.Flags().Int("batch-size", 0, "QIDs per SPARQL request (default from config)")
	fetchWikidataCmd.Flags().Int("threads", 0, "filter worker count (default from config)")
}

func runFetchWikidata(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadFetchConfig(configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if storeURL != "" {
		cfg.StoreURL = storeURL
	}
	if cmd.Flags().Changed("batch-size") {
		cfg.BatchSize, _ = cmd.Flags().GetInt("batch-size")
	}
	if cmd.Flags().Changed("threads") {
		cfg.Threads, _ = cmd.Flags().GetInt("threads")
	}

	store, err := translate.OpenStore(cfg.StoreURL)
	if err != nil {
		return fmt.Errorf("failed to open translation store: %w", err)
	}
	defer store.Close()

	fetcher := translate.NewFetcher(store, translate.Options{
		Endpoint:  cfg.Endpoint,
		UserAgent: cfg.UserAgent,
		BatchSize: cfg.BatchSize,
		Client:    &http.Client{Timeout: cfg.HTTPTimeout},
		Logger:    logger,
	})

	if err := fetcher.LoadExisting(ctx); err != nil {
		return err
	}

	logger.Info().
		Str("version", Version).
		Str("source", args[0]).
		Str("store", cfg.StoreURL).
		Int("threads", cfg.Threads).
		Msg("starting wikidata fetch")

	source := translate.NewNDJSONSource(args[0])
	if err := fetcher.Run(ctx, source, cfg.Threads); err != nil {
		return fmt.Errorf("fetch failed: %w", err)
	}

	logger.Info().
		Int("translations", fetcher.Translations().Len()).
		Msg("wikidata fetch complete")
	return nil
}
