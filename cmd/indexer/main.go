package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/zatekoja/mindcare/internal/adapters/database"
	"github.com/zatekoja/mindcare/internal/adapters/search"
	"github.com/zatekoja/mindcare/internal/application/services"
	"github.com/zatekoja/mindcare/internal/infrastructure/clients/postgres"
	"github.com/zatekoja/mindcare/internal/infrastructure/clients/typesense"
	"github.com/zatekoja/mindcare/internal/infrastructure/observability"
	"github.com/zatekoja/mindcare/pkg/config"
	"github.com/zatekoja/mindcare/pkg/secrets"
	"github.com/zatekoja/mindcare/pkg/utils"
)

func main() {
	var reset bool
	var intervalFlag string
	var batchSize int
	flag.BoolVar(&reset, "reset", false, "delete the Typesense centers collection before reindexing")
	flag.StringVar(&intervalFlag, "interval", "", "repeat interval for reindexing (e.g. 6h, 30m)")
	flag.IntVar(&batchSize, "batch", 100, "centers loaded per page")
	flag.Parse()

	intervalValue := strings.TrimSpace(intervalFlag)
	if intervalValue == "" {
		intervalValue = strings.TrimSpace(os.Getenv("REINDEX_INTERVAL"))
	}

	var interval time.Duration
	if intervalValue != "" {
		var err error
		interval, err = time.ParseDuration(intervalValue)
		if err != nil || interval <= 0 {
			log.Fatal().Str("interval", intervalValue).Msg("Interval must be a positive duration")
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if _, err := secrets.NewVaultLoader(secrets.VaultConfigFromEnv()).Apply(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to load Vault secrets")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	observability.InitLogger(cfg.OTEL.ServiceName+"-indexer", cfg.Server.Environment)

	for {
		if err := indexOnce(ctx, cfg, reset, batchSize); err != nil {
			log.Error().Err(err).Msg("Reindex failed")
		}

		if interval <= 0 {
			break
		}

		reset = false
		log.Info().Dur("interval", interval).Msg("Reindex complete, waiting for next run")

		select {
		case <-ctx.Done():
			log.Info().Msg("Reindexer shutting down")
			return
		case <-time.After(interval):
		}
	}
}

func indexOnce(ctx context.Context, cfg *config.Config, reset bool, batchSize int) error {
	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		return err
	}
	defer pgClient.Close()

	tsClient, err := typesense.NewClient(&cfg.Typesense)
	if err != nil {
		return err
	}

	if reset {
		log.Warn().Str("collection", typesense.CentersCollection).Msg("Deleting collection before reindex")
		if _, err := tsClient.Client().Collection(typesense.CentersCollection).Delete(ctx); err != nil {
			log.Warn().Err(err).Msg("Failed to delete collection")
		}
	}

	index := search.NewTypesenseAdapter(tsClient)
	if err := index.InitSchema(ctx); err != nil {
		return err
	}

	normalizer, err := utils.NewCategoryNormalizer("config/category_aliases.json")
	if err != nil {
		log.Warn().Err(err).Msg("Using built-in category aliases")
		normalizer = utils.DefaultCategoryNormalizer()
	}

	centers := database.NewCenterAdapter(pgClient, normalizer)
	stats, err := services.NewCenterIndexService(centers, index).Reindex(ctx, batchSize)
	if err != nil {
		return err
	}

	log.Info().Int("indexed", stats.Indexed).Int("failed", stats.Failed).Msg("Indexing complete")
	return nil
}
