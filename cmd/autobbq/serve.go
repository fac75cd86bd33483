package main

import (
	"context"
	"fmt"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gofrs/flock"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"autobbq/internal/api"
	"autobbq/internal/config"
	"autobbq/internal/logging"
	"autobbq/internal/media/ffmpeg"
	"autobbq/internal/processor"
	"autobbq/internal/providers"
	"autobbq/internal/queue"
	"autobbq/internal/render"
	"autobbq/internal/videos"
)

func newServeCommand(configFlag *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the API server and job workers",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(*configFlag)
		},
	}
}

func runServe(configPath string) error {
	// A .env beside the binary is a development convenience; absence is
	// not an error.
	_ = godotenv.Load()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, path, exists, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return fmt.Errorf("ensure directories: %w", err)
	}

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	if exists {
		logger.Info("configuration loaded", logging.String("path", path))
	} else {
		logger.Info("no configuration file; using defaults", logging.String("path", path))
	}

	// One process per storage directory. A second instance would race the
	// workers on the shared queue database.
	lock := flock.New(filepath.Join(cfg.DataDir(), "autobbq.lock"))
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire storage lock: %w", err)
	}
	if !locked {
		return fmt.Errorf("another autobbq instance is already using %s", cfg.Paths.StorageDir)
	}
	defer lock.Unlock() //nolint:errcheck

	store, err := queue.Open(cfg)
	if err != nil {
		return fmt.Errorf("open queue store: %w", err)
	}
	defer store.Close()

	videoStore, err := videos.NewStore(store.DB())
	if err != nil {
		return fmt.Errorf("open video store: %w", err)
	}
	videoService := videos.NewService(cfg, videoStore, logger)

	asr, translator := providers.Build(cfg, logger)
	runner := ffmpeg.NewCommandRunner(cfg.Tools.FFmpeg)
	engine := render.NewEngine(runner, logger)

	hub := api.NewHub(logger)
	pool := queue.NewPool(store, logger,
		cfg.Queue.Workers,
		time.Duration(cfg.Queue.PollInterval)*time.Second,
		queue.WithUpdateListener(hub.BroadcastJob),
	)
	processor.New(cfg, videoService, asr, translator, engine, logger).Register(pool)

	if err := pool.Start(ctx); err != nil {
		return fmt.Errorf("start worker pool: %w", err)
	}
	defer pool.Stop()

	server := api.NewServer(cfg, videoService, pool, hub, logger)
	if err := server.Run(ctx); err != nil {
		return fmt.Errorf("http server: %w", err)
	}

	logger.Info("autobbq shutting down")
	return nil
}
