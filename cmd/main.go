package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"newsbrief/internal/api"
	"newsbrief/internal/bot"
	"newsbrief/internal/config"
	"newsbrief/internal/database"
	"newsbrief/internal/feed"
	"newsbrief/internal/metrics"
	"newsbrief/internal/mongostore"
	"newsbrief/internal/redisstore"
	"newsbrief/internal/scheduler"
	"newsbrief/internal/summarizer"
	"newsbrief/internal/summary"
)

const storeInitTimeout = 15 * time.Second

// backend is a summary store owned by main.
type backend interface {
	summary.Store
	io.Closer
}

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(log)

	start := time.Now()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.WarnContext(ctx, "Failed to load .env file",
			"error", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.ErrorContext(ctx, "Failed to load config",
			"error", err)

		return
	}

	store, pruner, err := initStore(ctx, cfg, log)
	if err != nil {
		log.ErrorContext(ctx, "Failed to initialize store",
			"error", err,
			"backend", cfg.CacheBackend)

		return
	}
	defer func() {
		if err = store.Close(); err != nil {
			log.ErrorContext(ctx, "Failed to close store",
				"error", err,
				"backend", cfg.CacheBackend)
		}
	}()

	generator, err := summarizer.New(ctx, summarizer.Config{
		Provider: cfg.LLMProvider,
		APIKey:   cfg.APIKey(),
		Model:    cfg.LLMModel,
	})
	if err != nil {
		log.ErrorContext(ctx, "Failed to initialize generator",
			"error", err,
			"provider", cfg.LLMProvider)

		return
	}
	if closer, ok := generator.(io.Closer); ok {
		defer func() {
			if err = closer.Close(); err != nil {
				log.ErrorContext(ctx, "Failed to close generator",
					"error", err,
					"provider", cfg.LLMProvider)
			}
		}()
	}
	if cfg.APIKey() == "" {
		log.WarnContext(ctx, "LLM API key is missing so every generation will fail",
			"provider", cfg.LLMProvider)
	}
	log.InfoContext(ctx, "Generator is initialized",
		"provider", cfg.LLMProvider,
		"model", cfg.LLMModel)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	service := summary.NewService(
		summary.NewMemoryCache(store, cfg.MemoryCacheSize, cfg.MemoryCacheExpiry()),
		generator,
		log,
		summary.WithGenerationTimeout(cfg.GenerationTimeout),
		summary.WithMetrics(m),
	)

	if pruner != nil && cfg.SummaryTTL > 0 {
		sched, schedErr := scheduler.New(ctx, pruner, cfg.RetentionSpec, cfg.SummaryTTL, log)
		if schedErr == nil {
			schedErr = sched.Start()
		}
		if schedErr != nil {
			log.ErrorContext(ctx, "Failed to start scheduler",
				"error", schedErr,
				"spec", cfg.RetentionSpec)

			return
		}
		defer sched.Stop()
		log.InfoContext(ctx, "Scheduler is started",
			"spec", cfg.RetentionSpec,
			"summaryTTL", cfg.SummaryTTL)
	}

	var wg sync.WaitGroup

	if cfg.Token != "" {
		botInst, botErr := bot.New(cfg.Token, service, feed.NewFetcher(nil, log), cfg.AllowedUsers, log)
		if botErr != nil {
			log.ErrorContext(ctx, "Failed to initialize bot",
				"error", botErr,
				"allowedUsersCount", len(cfg.AllowedUsers))

			return
		}
		defer botInst.Stop()

		wg.Go(func() { botInst.Start(ctx) })
		log.InfoContext(ctx, "Bot is started",
			"updateTimeoutSeconds", bot.BotUpdateTimeout,
			"allowedUsersCount", len(cfg.AllowedUsers))
	} else {
		log.InfoContext(ctx, "TOKEN is empty so the bot is disabled")
	}

	server := api.NewServer(cfg.HTTPAddr, api.NewRouter(service, reg, m, log), log)
	if err = server.Run(ctx); err != nil {
		log.ErrorContext(ctx, "Failed to run HTTP server",
			"error", err,
			"addr", cfg.HTTPAddr)
		cancel()
	}

	wg.Wait()

	log.InfoContext(ctx, "Exiting...",
		"uptimeSeconds", time.Since(start).Seconds())
}

// initStore returns the configured backend and, when it supports bulk
// deletion, the pruner used by the retention scheduler.
func initStore(ctx context.Context, cfg config.Config, log *slog.Logger) (backend, scheduler.Pruner, error) {
	ctx, cancel := context.WithTimeout(ctx, storeInitTimeout)
	defer cancel()

	switch cfg.CacheBackend {
	case config.BackendMongo:
		s, err := mongostore.New(ctx, mongostore.Config{
			URI:        cfg.MongoURI,
			Database:   cfg.MongoDatabase,
			Collection: cfg.MongoCollection,
			TTL:        cfg.SummaryTTL,
		}, log)
		if err != nil {
			return nil, nil, fmt.Errorf("mongo: %w", err)
		}

		// The TTL index expires documents on its own.
		return s, nil, nil

	case config.BackendRedis:
		s, err := redisstore.New(ctx, cfg.RedisURL, cfg.SummaryTTL, log)
		if err != nil {
			return nil, nil, fmt.Errorf("redis: %w", err)
		}

		return s, nil, nil

	default:
		db, err := database.New(ctx, cfg.DBPath, log)
		if err != nil {
			return nil, nil, fmt.Errorf("sqlite: %w", err)
		}
		log.InfoContext(ctx, "DB is initialized",
			"dbPath", cfg.DBPath)

		return db, db, nil
	}
}
