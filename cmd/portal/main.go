package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"unsritalk/internal/cache"
	"unsritalk/internal/chat"
	"unsritalk/internal/config"
	"unsritalk/internal/dashboard"
	"unsritalk/internal/database"
	"unsritalk/internal/events"
	"unsritalk/internal/handlers"
	"unsritalk/internal/ids"
	"unsritalk/internal/jobs"
	"unsritalk/internal/log"
	"unsritalk/internal/metrics"
	"unsritalk/internal/models"
	"unsritalk/internal/repository"
	"unsritalk/internal/seed"
	"unsritalk/internal/server"
	"unsritalk/internal/service"
	"unsritalk/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := log.New(cfg.Environment, cfg.Logging.Level)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	backend := openBackend(ctx, cfg, logger)
	defer backend.close(logger)

	data, err := seed.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to decode seed data")
	}

	st := store.New(
		repository.NewStateRepository(backend.kv, cfg.Storage.Namespace),
		func() (models.Snapshot, error) {
			fresh, err := seed.Load()
			return fresh.Snapshot, err
		},
		models.Theme(cfg.Portal.DefaultTheme),
		logger.With().Str("component", "store").Logger(),
	)
	if backend.failure != nil {
		st.MarkDegraded(backend.failure)
	}
	if err := st.Load(ctx); err != nil {
		logger.Fatal().Err(err).Msg("failed to load portal state")
	}

	var publisher service.TaskPublisher = events.Nop{}
	if backend.redis != nil {
		publisher = events.NewPublisher(backend.redis, cfg.Redis.Stream, cfg.Security.SignatureSecret)
	}

	catalog := dashboard.Catalog{Specialists: data.Specialists, Jobs: data.JobPostings}
	policy := service.NewProvisioningPolicy(cfg.Security.AdminProvisioning, cfg.Security.AdminPrefix)

	handlerSet := handlers.NewHandlerSet(handlers.Deps{
		Config:        cfg,
		Log:           logger,
		Store:         st,
		Selector:      dashboard.NewSelector(st, catalog),
		Auth:          service.NewAuthService(st, policy, ids.WithPrefix, cfg, logger),
		Chats:         service.NewChatService(st, chat.NewProtocol(ids.WithPrefix, time.Now), data.Specialists, logger),
		Announcements: service.NewAnnouncementService(st, ids.WithPrefix, time.Now, publisher, logger),
		Avatars:       service.NewAvatarService(cfg.Portal.MaxAvatarBytes),
		Redis:         backend.redis,
		Postgres:      backend.pool,
	})
	httpServer := server.NewHTTPServer(cfg, logger, handlerSet, metrics.New(st))

	scheduler := jobs.NewScheduler(st, publisher, cfg.Storage.Namespace, cfg.Jobs, logger)
	if backend.redis == nil {
		logger.Info().Msg("no task stream, scheduled jobs not started")
	} else if err := scheduler.Start(); err != nil {
		logger.Error().Err(err).Msg("scheduler start failed")
	}

	if err := httpServer.Run(ctx, 10*time.Second); err != nil {
		logger.Error().Err(err).Msg("http server failed")
	}

	stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	scheduler.Stop(stopCtx)

	logger.Info().Msg("portal exited cleanly")
}

// backend holds the connections behind the configured storage driver. redis is also
// used for the task stream when reachable. failure is set when the configured driver could
// not be opened and kv fell back to memory.
type backend struct {
	kv      repository.KV
	redis   *redis.Client
	pool    *pgxpool.Pool
	failure error
}

// openBackend never fails: an unreachable durable backend leaves the portal serving from
// memory, the same way a storage failure after startup does.
func openBackend(ctx context.Context, cfg *config.AppConfig, logger zerolog.Logger) *backend {
	b := &backend{}

	switch cfg.Storage.Driver {
	case "redis":
		client, err := cache.Connect(ctx, cfg.Redis)
		if err != nil {
			b.failure = err
			break
		}
		b.redis = client
		b.kv = repository.NewRedisKV(client)
	case "postgres":
		pool, err := database.Open(ctx, cfg.Postgres)
		if err != nil {
			b.failure = err
			break
		}
		kv := repository.NewPostgresKV(pool)
		if err := kv.EnsureSchema(ctx); err != nil {
			pool.Close()
			b.failure = err
			break
		}
		b.pool = pool
		b.kv = kv
	case "memory":
		b.kv = repository.NewMemoryKV()
	default:
		b.failure = fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}

	if b.failure != nil {
		logger.Error().Err(b.failure).Str("driver", cfg.Storage.Driver).Msg("storage unavailable, serving from memory")
		b.kv = repository.NewMemoryKV()
	}

	// A redis driver that just failed is not retried for the task stream.
	if b.redis == nil && !(cfg.Storage.Driver == "redis" && b.failure != nil) {
		b.redis = cache.Optional(ctx, cfg.Redis, logger)
	}
	return b
}

func (b *backend) close(logger zerolog.Logger) {
	if b.pool != nil {
		b.pool.Close()
	}
	if b.redis != nil {
		if err := b.redis.Close(); err != nil {
			logger.Error().Err(err).Msg("redis close error")
		}
	}
}
