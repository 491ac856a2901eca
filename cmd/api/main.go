package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/rs/zerolog/log"

	"github.com/zatekoja/mindcare/internal/adapters/cache"
	"github.com/zatekoja/mindcare/internal/adapters/database"
	"github.com/zatekoja/mindcare/internal/adapters/search"
	"github.com/zatekoja/mindcare/internal/api/handlers"
	"github.com/zatekoja/mindcare/internal/api/routes"
	"github.com/zatekoja/mindcare/internal/application/services"
	"github.com/zatekoja/mindcare/internal/domain/providers"
	"github.com/zatekoja/mindcare/internal/domain/repositories"
	"github.com/zatekoja/mindcare/internal/infrastructure/clients/postgres"
	"github.com/zatekoja/mindcare/internal/infrastructure/clients/redis"
	"github.com/zatekoja/mindcare/internal/infrastructure/clients/typesense"
	"github.com/zatekoja/mindcare/internal/infrastructure/observability"
	"github.com/zatekoja/mindcare/internal/scoring"
	"github.com/zatekoja/mindcare/pkg/config"
	"github.com/zatekoja/mindcare/pkg/secrets"
	"github.com/zatekoja/mindcare/pkg/utils"
)

const categoryAliasesPath = "config/category_aliases.json"

func main() {
	// Set up context for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Vault secrets land in the environment before config is read
	if _, err := secrets.NewVaultLoader(secrets.VaultConfigFromEnv()).Apply(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to load Vault secrets")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	observability.InitLogger(cfg.OTEL.ServiceName, cfg.Server.Environment)

	// Initialize OpenTelemetry if enabled
	if cfg.OTEL.Enabled && cfg.OTEL.Endpoint != "" {
		shutdown, err := observability.Setup(ctx, cfg.OTEL.ServiceName, cfg.OTEL.ServiceVersion, cfg.OTEL.Endpoint)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to set up OpenTelemetry")
		} else {
			observability.EnableLogExport(cfg.OTEL.ServiceName)
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(ctx); err != nil {
					log.Error().Err(err).Msg("Error shutting down OpenTelemetry")
				}
			}()
			log.Info().Str("endpoint", cfg.OTEL.Endpoint).Msg("OpenTelemetry initialized")
		}
	}

	metrics, err := observability.InitMetrics()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize metrics")
	}

	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize PostgreSQL client")
	}
	defer pgClient.Close()

	checks := map[string]handlers.Pinger{"postgres": pgClient}

	normalizer, err := utils.NewCategoryNormalizer(categoryAliasesPath)
	if err != nil {
		log.Warn().Err(err).Str("path", categoryAliasesPath).Msg("Using built-in category aliases")
		normalizer = utils.DefaultCategoryNormalizer()
	}

	centerAdapter := database.NewCenterAdapter(pgClient, normalizer)
	var centers repositories.CenterRepository = centerAdapter

	// Typesense narrows candidates before Postgres hydrates them
	if cfg.Typesense.Enabled {
		tsClient, err := typesense.NewClient(&cfg.Typesense)
		if err != nil {
			log.Warn().Err(err).Msg("Typesense unavailable, using PostgreSQL bounding-box search")
		} else {
			index := search.NewTypesenseAdapter(tsClient)
			if err := index.InitSchema(ctx); err != nil {
				log.Warn().Err(err).Msg("Failed to init Typesense schema")
			}
			centers = search.NewGeoPrefilterRepository(centers, centerAdapter, index, 0)
			checks["typesense"] = tsClient
		}
	}

	// Wrap with caching if Redis is available
	if cfg.Redis.Enabled {
		redisClient, err := redis.NewClient(&cfg.Redis)
		if err != nil {
			log.Warn().Err(err).Msg("Redis unavailable, center lookups are not cached")
		} else {
			defer redisClient.Close()
			cached := database.NewCachedCenterAdapter(
				centers,
				cache.NewRedisAdapter(redisClient),
				time.Duration(cfg.Recommendation.CandidateCacheTTL)*time.Second,
			)
			cached.SetMetrics(metrics)
			centers = cached
			checks["redis"] = redisClient
		}
	}

	aggregator := scoring.NewAggregator(cfg.Recommendation.Workers, log.Logger)
	recommendationService, err := services.NewRecommendationService(centers, aggregator, providers.SystemClock{}, cfg.Recommendation)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize recommendation service")
	}
	recommendationService.SetHolidayRepository(database.NewHolidayAdapter(pgClient))
	recommendationService.SetLogRepository(database.NewRecommendationLogAdapter(pgClient))
	recommendationService.SetMetrics(metrics)

	router := routes.NewRouter(
		handlers.NewRecommendationHandler(recommendationService),
		handlers.NewHealthHandler(checks),
		cfg.Server.AllowedOrigins,
		metrics,
	)

	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      router.SetupRoutes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info().Str("addr", serverAddr).Msg("Server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("Server shutting down...")
	case err := <-serverErr:
		log.Error().Err(err).Msg("Server failed")
	}

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error during server shutdown")
	}

	log.Info().Msg("Server stopped")
}
