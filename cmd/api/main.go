package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"myootd/config"
	"myootd/controllers"
	"myootd/dbhelper"
	"myootd/logging"
	"myootd/models"
	"myootd/services"
	"myootd/tasks"
	"myootd/telegram"

	"github.com/getsentry/sentry-go"
	sentryecho "github.com/getsentry/sentry-go/echo"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

func wardrobeLoader(cfg config.Config) services.WardrobeLoader {
	if cfg.Catalog.Source != "database" {
		return services.NewRemoteCatalogLoader(cfg.Catalog)
	}
	db, err := dbhelper.SetupDB(cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("catalog database unavailable")
	}
	return services.DBCatalogLoader{Repo: services.GormCatalogRepository{DB: db}}
}

func outfitRanker(ctx context.Context, cfg config.GeminiConfig) services.OutfitRanker {
	if cfg.APIKey == "" {
		return services.UnavailableRanker{Reason: "GEMINI_API_KEY is not set"}
	}
	client, err := services.NewGenaiClient(ctx, cfg.APIKey)
	if err != nil {
		log.Error().Err(err).Msg("genai client init failed, ranking disabled")
		return services.UnavailableRanker{Reason: err.Error()}
	}
	return services.NewGeminiOutfitRanker(client, services.ParseLLMModelName(cfg.RankingModel))
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config")
	}
	logging.Setup(cfg.Env, cfg.LogLevel)

	err = sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.SentryDSN,
		Environment:      cfg.Env,
		Release:          "myootd@1.0.0",
		TracesSampleRate: 1.0,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("sentry.Init")
	}
	defer sentry.Flush(2 * time.Second)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store := services.NewWardrobeStore(wardrobeLoader(cfg))
	if err := store.Refresh(ctx); err != nil {
		// the periodic refresh retries, requests see an empty wardrobe until then
		log.Error().Err(err).Msg("initial wardrobe load failed")
	}
	go store.Run(ctx, cfg.Catalog.RefreshInterval)

	recommendations, err := services.NewRecommendationCache(cfg.CacheTTL, cfg.FallbackCacheTTL)
	if err != nil {
		log.Fatal().Err(err).Msg("recommendation cache")
	}
	store.OnRefresh(func(ctx context.Context) {
		if err := recommendations.Clear(ctx); err != nil {
			log.Ctx(ctx).Warn().Err(err).Msg("recommendation cache not cleared")
		}
	})

	var awsService *services.AWSService
	var images services.ImageURLResolver = services.StaticAssetResolver{BaseURL: cfg.Catalog.AssetsBaseURL}
	if cfg.R2.Enabled() {
		// presign client is initialized by SetupServer, urls are only signed on demand
		awsService = &services.AWSService{Config: cfg.R2}
		urlCache, err := services.NewURLCacheService(awsService, cfg.R2.BucketName)
		if err != nil {
			log.Fatal().Err(err).Msg("url cache")
		}
		images = urlCache
	}

	recommender := &services.Recommender{
		Weather:     services.NewOpenMeteoService(cfg.Weather),
		Wardrobe:    store,
		Ranker:      outfitRanker(ctx, cfg.Gemini),
		Cache:       recommendations,
		Images:      images,
		TopK:        cfg.Gemini.RankTopK,
		RankTimeout: cfg.Gemini.RankTimeout,
	}

	asynqClient := tasks.NewClient(cfg.AsyncBrokerAddress)
	defer asynqClient.Close()

	var provider services.AWSServiceProvider
	if awsService != nil {
		provider = awsService
	}
	e := controllers.SetupServer(recommender, store, images, provider, asynqClient, cfg)
	e.Use(middleware.RateLimiter(middleware.NewRateLimiterMemoryStore(rate.Limit(cfg.RateLimit))))
	e.Use(middleware.Recover())
	e.Use(sentryecho.New(sentryecho.Options{Repanic: true}))

	if cfg.TelegramBot {
		formality, ok := models.ParseFormality(cfg.DefaultFormality)
		if !ok {
			formality = models.FormalityCasual
		}
		bot := &telegram.OutfitBot{Recommender: recommender, DefaultCity: cfg.DefaultCity, DefaultFormality: formality}
		go func() {
			if err := telegram.RunOutfitBot(ctx, cfg.TelegramToken, bot); err != nil {
				log.Error().Err(err).Msg("telegram bot stopped")
			}
		}()
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = e.Shutdown(shutdownCtx)
	}()

	log.Info().Str("address", cfg.Address).Str("catalog", cfg.Catalog.Source).Msg("starting api")
	if err := e.Start(cfg.Address); err != nil {
		log.Info().Err(err).Msg("api stopped")
	}
}
