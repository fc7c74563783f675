package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"unsritalk/internal/cache"
	"unsritalk/internal/config"
	"unsritalk/internal/log"
	"unsritalk/internal/queue"
	"unsritalk/internal/storage"
	"unsritalk/internal/tasks"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := log.New(cfg.Environment, cfg.Logging.Level).With().Str("component", "worker").Logger()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client, err := cache.Connect(ctx, cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("redis connection failed")
	}
	defer client.Close()

	var backups tasks.BackupWriter
	if cfg.ObjectStore.Endpoint != "" {
		store, err := storage.NewBackupStore(cfg.ObjectStore, cfg.Security.SignatureSecret)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to init object store")
		}
		if err := store.EnsureBucket(ctx); err != nil {
			logger.Warn().Err(err).Msg("ensure bucket failed")
		}
		backups = store
	} else {
		logger.Info().Msg("no object store configured, backups will be skipped")
	}

	processor := tasks.NewProcessor(client, backups, tasks.Options{
		Secret:   cfg.Security.SignatureSecret,
		MaxSkew:  cfg.Queues.MaxSkew,
		NonceTTL: cfg.Queues.NonceTTL,
	}, logger)

	consumer := queue.NewConsumer(client, queue.Options{
		Stream:        cfg.Redis.Stream,
		Group:         cfg.Redis.Group,
		Consumer:      cfg.Redis.Consumer,
		ClaimInterval: cfg.Queues.ClaimInterval,
	}, logger, processor)

	logger.Info().Str("stream", cfg.Redis.Stream).Msg("worker started")
	if err := consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal().Err(err).Msg("consumer stopped unexpectedly")
	}
	logger.Info().Msg("worker exited cleanly")
}
