// Package jobs enqueues the periodic backup and digest tasks of the portal.
package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"unsritalk/internal/config"
	"unsritalk/internal/events"
	"unsritalk/internal/models"
)

// Source is the live portal state. The store satisfies it.
type Source interface {
	Snapshot() models.Snapshot
	Degraded() bool
}

type Publisher interface {
	Publish(ctx context.Context, taskType string, payload any) error
}

type Scheduler struct {
	cron      *cron.Cron
	source    Source
	publisher Publisher
	namespace string
	cfg       config.JobsConfig
	now       func() time.Time
	log       zerolog.Logger
}

func NewScheduler(source Source, publisher Publisher, namespace string, cfg config.JobsConfig, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		cron:      cron.New(cron.WithSeconds()),
		source:    source,
		publisher: publisher,
		namespace: namespace,
		cfg:       cfg,
		now:       time.Now,
		log:       log,
	}
}

func (s *Scheduler) Start() error {
	if !s.cfg.Enabled {
		s.log.Info().Msg("scheduled jobs disabled")
		return nil
	}

	if _, err := s.cron.AddFunc(s.cfg.BackupSpec, s.run(events.TaskBackup, s.EnqueueBackup)); err != nil {
		return err
	}
	if _, err := s.cron.AddFunc(s.cfg.DigestSpec, s.run(events.TaskDigest, s.EnqueueDigest)); err != nil {
		return err
	}

	s.cron.Start()
	return nil
}

// Stop waits for running jobs, up to the context deadline.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop().Done()
	select {
	case <-done:
	case <-ctx.Done():
		s.log.Warn().Msg("scheduler stop timed out")
	}
}

func (s *Scheduler) run(name string, fn func(context.Context) error) func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := fn(ctx); err != nil {
			s.log.Error().Err(err).Str("task", name).Msg("enqueue failed")
		}
	}
}

// EnqueueBackup publishes the full current snapshot.
func (s *Scheduler) EnqueueBackup(ctx context.Context) error {
	return s.publisher.Publish(ctx, events.TaskBackup, events.BackupPayload{
		Namespace: s.namespace,
		TakenAt:   s.now().UTC(),
		Snapshot:  s.source.Snapshot(),
	})
}

// EnqueueDigest publishes activity totals.
func (s *Scheduler) EnqueueDigest(ctx context.Context) error {
	snap := s.source.Snapshot()

	messages := 0
	for _, c := range snap.Chats {
		messages += len(c.Messages)
	}

	return s.publisher.Publish(ctx, events.TaskDigest, events.DigestPayload{
		Namespace:     s.namespace,
		TakenAt:       s.now().UTC(),
		Users:         len(snap.Users),
		Chats:         len(snap.Chats),
		Messages:      messages,
		Announcements: len(snap.Announcements),
		Degraded:      s.source.Degraded(),
	})
}
