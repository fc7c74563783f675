// Package tasks runs the background work the portal enqueues: snapshot backups,
// activity digests and announcement fan-out.
package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"unsritalk/internal/events"
)

// BackupWriter stores a serialized snapshot and returns where it went.
type BackupWriter interface {
	PutBackup(ctx context.Context, namespace string, takenAt time.Time, body []byte) (string, error)
}

type Options struct {
	Secret   string
	MaxSkew  time.Duration
	NonceTTL time.Duration
}

type Processor struct {
	nonces  *redis.Client
	backups BackupWriter
	opts    Options
	now     func() time.Time
	logger  zerolog.Logger
}

// NewProcessor wires a processor. backups may be nil, in which case backup tasks are
// acknowledged and skipped.
func NewProcessor(nonces *redis.Client, backups BackupWriter, opts Options, logger zerolog.Logger) *Processor {
	return &Processor{
		nonces:  nonces,
		backups: backups,
		opts:    opts,
		now:     time.Now,
		logger:  logger,
	}
}

// Handle returns an error only for failures worth retrying. Forged, stale, replayed or
// malformed envelopes are logged and dropped.
func (p *Processor) Handle(ctx context.Context, msg redis.XMessage) error {
	env, err := events.DecodeEnvelope(msg.Values)
	if err != nil {
		p.logger.Error().Err(err).Str("message_id", msg.ID).Msg("dropping malformed task")
		return nil
	}

	log := p.logger.With().Str("message_id", msg.ID).Str("type", env.Type).Logger()

	if !env.Verify(p.opts.Secret) {
		log.Error().Msg("dropping task with invalid signature")
		return nil
	}

	issued, err := env.IssuedAt()
	if err != nil {
		log.Error().Err(err).Msg("dropping task with bad date")
		return nil
	}
	if skew := p.now().Sub(issued); p.opts.MaxSkew > 0 && (skew > p.opts.MaxSkew || skew < -p.opts.MaxSkew) {
		log.Warn().Dur("skew", skew).Msg("dropping stale task")
		return nil
	}

	fresh, err := p.claimNonce(ctx, env.Nonce)
	if err != nil {
		return fmt.Errorf("claim nonce: %w", err)
	}
	if !fresh {
		log.Warn().Str("nonce", env.Nonce).Msg("dropping replayed task")
		return nil
	}

	switch env.Type {
	case events.TaskBackup:
		err = p.handleBackup(ctx, env.Payload, log)
	case events.TaskDigest:
		err = p.handleDigest(env.Payload, log)
	case events.TaskAnnouncement:
		err = p.handleAnnouncement(env.Payload, log)
	default:
		log.Warn().Msg("unknown task type")
		return nil
	}
	if err != nil {
		p.releaseNonce(ctx, env.Nonce)
	}
	return err
}

func nonceKey(nonce string) string {
	return "portal:nonce:" + nonce
}

func (p *Processor) claimNonce(ctx context.Context, nonce string) (bool, error) {
	if p.nonces == nil {
		return true, nil
	}
	return p.nonces.SetNX(ctx, nonceKey(nonce), 1, p.opts.NonceTTL).Result()
}

// releaseNonce lets a retried delivery of the same message run again.
func (p *Processor) releaseNonce(ctx context.Context, nonce string) {
	if p.nonces == nil {
		return
	}
	if err := p.nonces.Del(ctx, nonceKey(nonce)).Err(); err != nil {
		p.logger.Error().Err(err).Msg("release nonce failed")
	}
}

var errUndecodable = errors.New("undecodable payload")

func decode(payload []byte, out any) error {
	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("%w: %v", errUndecodable, err)
	}
	return nil
}

func (p *Processor) handleBackup(ctx context.Context, payload []byte, log zerolog.Logger) error {
	var backup events.BackupPayload
	if err := decode(payload, &backup); err != nil {
		log.Error().Err(err).Msg("dropping backup task")
		return nil
	}
	if p.backups == nil {
		log.Info().Msg("no object store configured, backup skipped")
		return nil
	}

	body, err := json.MarshalIndent(backup.Snapshot, "", "  ")
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	key, err := p.backups.PutBackup(ctx, backup.Namespace, backup.TakenAt, body)
	if err != nil {
		return err
	}

	log.Info().
		Str("key", key).
		Int("bytes", len(body)).
		Int("users", len(backup.Snapshot.Users)).
		Msg("snapshot backed up")
	return nil
}

func (p *Processor) handleDigest(payload []byte, log zerolog.Logger) error {
	var digest events.DigestPayload
	if err := decode(payload, &digest); err != nil {
		log.Error().Err(err).Msg("dropping digest task")
		return nil
	}

	log.Info().
		Str("namespace", digest.Namespace).
		Time("taken_at", digest.TakenAt).
		Int("users", digest.Users).
		Int("chats", digest.Chats).
		Int("messages", digest.Messages).
		Int("announcements", digest.Announcements).
		Bool("degraded", digest.Degraded).
		Msg("activity digest")
	return nil
}

func (p *Processor) handleAnnouncement(payload []byte, log zerolog.Logger) error {
	var a events.AnnouncementPayload
	if err := decode(payload, &a); err != nil {
		log.Error().Err(err).Msg("dropping announcement task")
		return nil
	}

	log.Info().
		Str("announcement_id", a.Announcement.ID).
		Str("category", a.Announcement.Category).
		Str("author", a.Announcement.Author).
		Int("audience", a.Audience).
		Msg("announcement delivered")
	return nil
}
