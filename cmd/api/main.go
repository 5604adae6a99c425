package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"stockstudio/internal/analytics"
	"stockstudio/internal/batch"
	"stockstudio/internal/http/handlers"
	httpapi "stockstudio/internal/http/httpapi"
	"stockstudio/internal/infra"
	"stockstudio/internal/infra/credentials"
	"stockstudio/internal/infra/geoip"
	"stockstudio/internal/middleware"
	"stockstudio/internal/providers/insight"
	"stockstudio/internal/providers/metadata"
	"stockstudio/internal/storage"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx := context.Background()

	// Postgres is optional: without DATABASE_URL the credential store and
	// usage analytics stay disabled and keys come from the environment only.
	var (
		credStore *credentials.Store
		usage     *analytics.Recorder
	)
	if strings.TrimSpace(cfg.DatabaseURL) != "" {
		pool, err := infra.NewDBPool(ctx, cfg)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect database")
		}
		defer pool.Close()
		runner := infra.NewSQLRunner(pool, logger)
		credStore = credentials.NewStore(runner)
		usage = analytics.NewRecorder(runner, logger)
	} else {
		logger.Warn().Msg("DATABASE_URL not set, credential store and usage analytics disabled")
	}

	storagePath := cfg.StoragePath
	if !filepath.IsAbs(storagePath) {
		if abs, err := filepath.Abs(storagePath); err == nil {
			storagePath = abs
		}
	}
	fileStore, err := storage.NewFileStore(storagePath)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to configure storage")
	}

	httpClient := &http.Client{Timeout: 90 * time.Second}

	generator := buildGenerator(ctx, cfg, credStore, httpClient, logger)
	scout := buildScout(ctx, cfg, credStore, httpClient, logger)

	queue := batch.NewStore()
	processor := batch.NewProcessor(batch.ProcessorOptions{
		Store:     queue,
		Generator: generator,
		Assets:    fileStore,
		Logger:    logger,
	})

	var country middleware.CountryLookup
	if resolver, err := geoip.NewResolver(cfg.GeoIPDBPath); err != nil {
		logger.Warn().Err(err).Msg("geoip lookups disabled")
	} else if resolver != nil {
		defer resolver.Close()
		country = resolver.CountryCode
	}

	app := &handlers.App{
		Log:            logger,
		Queue:          queue,
		Processor:      processor,
		Files:          fileStore,
		Scout:          scout,
		Usage:          usage,
		Provider:       generator.Name(),
		DefaultDelayMS: cfg.ItemDelayMS,
	}

	router := httpapi.NewRouter(app, httpapi.RouterOptions{
		Logger:          logger,
		AllowedOrigins:  cfg.AllowedOrigins,
		RateLimitPerMin: cfg.RateLimitPerMin,
		Country:         country,
	})

	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Msgf("API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	processor.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}

// providerKeys resolves the key blob for a provider: the environment wins,
// the credential store fills in when the environment is empty.
func providerKeys(ctx context.Context, envBlob string, store *credentials.Store, provider string, logger infra.Logger) *credentials.Pool {
	blob := strings.TrimSpace(envBlob)
	if blob == "" && store != nil {
		fromStore, err := store.Token(ctx, provider)
		if err != nil {
			logger.Warn().Err(err).Str("provider", provider).Msg("failed to load api keys from store")
		} else {
			blob = fromStore
		}
	}
	return credentials.NewPool(credentials.ParseKeys(blob), nil)
}

func buildGenerator(ctx context.Context, cfg *infra.Config, store *credentials.Store, httpClient *http.Client, logger infra.Logger) metadata.Generator {
	switch cfg.MetadataProvider {
	case credentials.ProviderGroq:
		keys := providerKeys(ctx, cfg.GroqAPIKeys, store, credentials.ProviderGroq, logger)
		if keys.Empty() {
			logger.Warn().Msg("groq api key missing, using static metadata generation")
			return metadata.NewStaticGenerator()
		}
		generator, err := metadata.NewGroqGenerator(metadata.GroqOptions{
			Keys:       keys,
			Model:      cfg.GroqModel,
			BaseURL:    cfg.GroqBaseURL,
			HTTPClient: httpClient,
		})
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to configure groq generator")
		}
		return generator
	default:
		keys := providerKeys(ctx, cfg.GeminiAPIKeys, store, credentials.ProviderGemini, logger)
		if keys.Empty() {
			logger.Warn().Msg("gemini api key missing, using static metadata generation")
			return metadata.NewStaticGenerator()
		}
		generator, err := metadata.NewGeminiGenerator(metadata.GeminiOptions{
			Keys:       keys,
			Model:      cfg.GeminiModel,
			BaseURL:    cfg.GeminiBaseURL,
			HTTPClient: httpClient,
		})
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to configure gemini generator")
		}
		return generator
	}
}

func buildScout(ctx context.Context, cfg *infra.Config, store *credentials.Store, httpClient *http.Client, logger infra.Logger) insight.Scout {
	offline := insight.NewOfflineScout()
	keys := providerKeys(ctx, cfg.GeminiAPIKeys, store, credentials.ProviderGemini, logger)
	if keys.Empty() {
		logger.Warn().Msg("gemini api key missing, trend insights run offline")
		return offline
	}
	scout, err := insight.NewGeminiScout(insight.GeminiScoutOptions{
		Keys:       keys,
		Model:      cfg.GeminiTrendModel,
		BaseURL:    cfg.GeminiBaseURL,
		HTTPClient: httpClient,
		Fallback:   offline,
		OnFallback: func(operation string, err error) {
			logger.Warn().Err(err).Str("operation", operation).Msg("trend fetch degraded to offline data")
		},
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to configure trend scout")
	}
	return scout
}
