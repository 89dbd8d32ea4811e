package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"sjsage522/buildorderworker/config"
	"sjsage522/buildorderworker/internal"
	"sjsage522/buildorderworker/internal/crawler"
	"sjsage522/buildorderworker/logger"
	"sjsage522/buildorderworker/services/cache"
	"sjsage522/buildorderworker/services/exporter"
	"sjsage522/buildorderworker/services/publisher"
	"sjsage522/buildorderworker/services/worker"
)

const cachePrefix = "buildorderworker:"

func main() {
	// Load environment variables
	_ = godotenv.Load()

	// Initialize logger first
	logger.Init()
	log := logger.Default

	// Load and validate configuration
	cfg := config.LoadConfig()
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	tags, err := config.LoadTagTable(cfg.TagTablePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load tag table")
	}

	log.Info().
		Str("environment", cfg.Environment).
		Str("base_url", cfg.BaseURL).
		Int("max_concurrent", cfg.MaxConcurrent).
		Int("max_pages", cfg.MaxPages).
		Dur("run_interval", cfg.RunInterval).
		Msg("Starting application")

	// Cancel everything on SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err = run(ctx, cfg, tags, os.Stdout)
	stop()
	if err != nil {
		log.Error().Err(err).Msg("Worker exited with error")
		os.Exit(1)
	}
	log.Info().Msg("Worker exited normally")
}

// run wires the services together and drives the worker until it is done
func run(ctx context.Context, cfg *config.Config, tags config.TagTable, summary io.Writer) error {
	deps, err := initializeServices(ctx, cfg)
	if err != nil {
		return err
	}
	defer deps.Cleanup()

	scraper, players := crawler.CreateScraper(cfg, tags, deps.Cache)
	if len(players) == 0 {
		logger.Warn("None of the target players %v has a known tag", cfg.TargetPlayers)
	}

	exp, err := exporter.New(cfg.ResolvedOutputFormat())
	if err != nil {
		return err
	}

	w := worker.NewWorker(ctx, scraper, players, exp, deps.Publisher, worker.Options{
		OutputPath: cfg.OutputPath,
		Interval:   cfg.RunInterval,
		Summary:    summary,
	})
	return w.Start()
}

// initializeServices initializes the cooldown cache and the optional publisher
func initializeServices(ctx context.Context, cfg *config.Config) (*internal.Dependencies, error) {
	deps := &internal.Dependencies{}

	if cfg.MemcacheAddr != "" {
		memcacheService := cache.NewMemcacheService(cfg.MemcacheAddr, cachePrefix)
		if err := memcacheService.Ping(); err != nil {
			logger.ForCache().Warn().Err(err).Str("addr", cfg.MemcacheAddr).Msg("Memcache unreachable, using in-process cache")
			deps.Cache = cache.NewMemoryService()
		} else {
			logger.Info("Connected to Memcache at %s", cfg.MemcacheAddr)
			deps.Cache = memcacheService
		}
	} else {
		deps.Cache = cache.NewMemoryService()
	}

	if cfg.RedisPublish {
		redisPublisher := publisher.NewRedisPublisher(publisher.RedisOptions{
			Addr:            cfg.RedisAddr,
			DB:              cfg.RedisDB,
			StreamPrefix:    cfg.RedisStream,
			StreamCount:     cfg.RedisStreamCount,
			StreamMaxLength: cfg.RedisStreamMaxLength,
		})
		if err := redisPublisher.Ping(ctx); err != nil {
			redisPublisher.Close()
			return nil, err
		}
		deps.Publisher = redisPublisher

		logger.Info("Connected to Redis at %s (DB: %d, Stream: %s)",
			cfg.RedisAddr, cfg.RedisDB, cfg.RedisStream)
	}

	return deps, nil
}
