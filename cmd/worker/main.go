package main

import (
	"context"
	"time"

	"myootd/config"
	"myootd/dbhelper"
	"myootd/logging"
	"myootd/services"
	"myootd/tasks"

	"github.com/getsentry/sentry-go"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"
)

func runScheduler(cfg config.Config) {
	scheduler := asynq.NewScheduler(asynq.RedisClientOpt{Addr: cfg.AsyncBrokerAddress}, &asynq.SchedulerOpts{
		LogLevel: asynq.InfoLevel,
	})

	syncTask, err := tasks.NewCatalogSyncTask()
	if err != nil {
		log.Fatal().Err(err).Msg("catalog sync task")
	}
	entries := []struct {
		cron string
		task *asynq.Task
		desc string
	}{
		{
			cron: cfg.Catalog.SyncCron,
			task: syncTask,
			desc: "Remote catalog sync",
		},
	}

	for _, entry := range entries {
		entryID, err := scheduler.Register(entry.cron, entry.task, asynq.Queue("catalog"))
		if err != nil {
			log.Fatal().Err(err).Str("task", entry.desc).Msg("failed to register periodic task")
		}
		log.Info().Str("task", entry.desc).Str("entry", entryID).Str("cron", entry.cron).Msg("registered periodic task")
	}

	if err := scheduler.Run(); err != nil {
		log.Fatal().Err(err).Msg("scheduler failed")
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config")
	}
	logging.Setup(cfg.Env, cfg.LogLevel)

	if err := sentry.Init(sentry.ClientOptions{Dsn: cfg.SentryDSN, Environment: cfg.Env, Release: "myootd@1.0.0"}); err != nil {
		log.Fatal().Err(err).Msg("sentry.Init")
	}
	defer sentry.Flush(2 * time.Second)

	srv := asynq.NewServer(
		asynq.RedisClientOpt{Addr: cfg.AsyncBrokerAddress},
		asynq.Config{Concurrency: 4, Queues: map[string]int{
			"catalog": 5,
			"default": 1,
		}},
	)

	db, err := dbhelper.SetupDB(cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("[Queue] catalog database unavailable")
	}
	repo := services.GormCatalogRepository{DB: db}

	awsService := &services.AWSService{Config: cfg.R2}
	if err := awsService.InitPresignClient(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("[Queue] Failed to initialize AWS provider: S3")
	}
	genaiClient, err := services.NewGenaiClient(context.Background(), cfg.Gemini.APIKey)
	if err != nil {
		log.Fatal().Err(err).Msg("[Queue] genai client")
	}
	analyzer := services.NewGeminiCatalogAnalyzer(genaiClient, services.ParseLLMModelName(cfg.Gemini.CatalogModel))
	remote := services.NewRemoteCatalogLoader(cfg.Catalog)

	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeCatalogItemAnalysis, func(ctx context.Context, t *asynq.Task) error {
		return tasks.HandleCatalogItemAnalysisTask(ctx, t, awsService, cfg.R2.BucketName, analyzer, repo)
	})
	mux.HandleFunc(tasks.TypeCatalogSync, func(ctx context.Context, t *asynq.Task) error {
		return tasks.HandleCatalogSyncTask(ctx, t, remote, repo)
	})

	go runScheduler(cfg)
	if err := srv.Run(mux); err != nil {
		log.Fatal().Err(err).Msg("worker stopped")
	}
}
