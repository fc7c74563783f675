package jobs

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"unsritalk/internal/config"
	"unsritalk/internal/events"
	"unsritalk/internal/models"
	"unsritalk/internal/seed"
)

type staticSource struct {
	snap     models.Snapshot
	degraded bool
}

func (s staticSource) Snapshot() models.Snapshot { return s.snap }
func (s staticSource) Degraded() bool            { return s.degraded }

type capture struct {
	types    []string
	payloads []any
}

func (c *capture) Publish(_ context.Context, taskType string, payload any) error {
	c.types = append(c.types, taskType)
	c.payloads = append(c.payloads, payload)
	return nil
}

func newTestScheduler(t *testing.T, cfg config.JobsConfig) (*Scheduler, *capture) {
	t.Helper()
	data, err := seed.Load()
	require.NoError(t, err)

	pub := &capture{}
	s := NewScheduler(staticSource{snap: data.Snapshot, degraded: true}, pub, "unsri-talk-", cfg, zerolog.Nop())
	s.now = func() time.Time { return time.Date(2024, time.July, 20, 0, 0, 0, 0, time.UTC) }
	return s, pub
}

func TestEnqueueBackup(t *testing.T) {
	s, pub := newTestScheduler(t, config.JobsConfig{})

	require.NoError(t, s.EnqueueBackup(context.Background()))
	require.Equal(t, []string{events.TaskBackup}, pub.types)

	payload := pub.payloads[0].(events.BackupPayload)
	assert.Equal(t, "unsri-talk-", payload.Namespace)
	assert.Len(t, payload.Snapshot.Users, 12)
}

func TestEnqueueDigestCountsSeed(t *testing.T) {
	s, pub := newTestScheduler(t, config.JobsConfig{})

	require.NoError(t, s.EnqueueDigest(context.Background()))
	payload := pub.payloads[0].(events.DigestPayload)
	assert.Equal(t, 12, payload.Users)
	assert.Equal(t, 4, payload.Chats)
	assert.Equal(t, 11, payload.Messages)
	assert.True(t, payload.Degraded)
}

func TestStartRejectsBadSpec(t *testing.T) {
	s, _ := newTestScheduler(t, config.JobsConfig{Enabled: true, BackupSpec: "every day", DigestSpec: "0 0 * * * *"})
	assert.Error(t, s.Start())
}

func TestStartDisabledIsNoop(t *testing.T) {
	s, _ := newTestScheduler(t, config.JobsConfig{Enabled: false, BackupSpec: "bogus"})
	require.NoError(t, s.Start())

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	s.Stop(ctx)
}
