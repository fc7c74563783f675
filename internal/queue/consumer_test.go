package queue

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	seen []string
	fail bool
}

func (r *recorder) Handle(_ context.Context, msg redis.XMessage) error {
	r.seen = append(r.seen, msg.Values["type"].(string))
	if r.fail {
		return errors.New("boom")
	}
	return nil
}

func setup(t *testing.T, handler MessageHandler) (*Consumer, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	c := NewConsumer(client, Options{
		Stream:        "portal:tasks",
		Group:         "portal-workers",
		Consumer:      "worker-test",
		ClaimInterval: time.Millisecond,
		Block:         10 * time.Millisecond,
	}, zerolog.Nop(), handler)
	require.NoError(t, c.EnsureGroup(context.Background()))
	return c, client
}

func add(t *testing.T, client *redis.Client, taskType string) {
	t.Helper()
	require.NoError(t, client.XAdd(context.Background(), &redis.XAddArgs{
		Stream: "portal:tasks",
		Values: map[string]any{"type": taskType},
	}).Err())
}

func pendingCount(t *testing.T, client *redis.Client) int64 {
	t.Helper()
	p, err := client.XPending(context.Background(), "portal:tasks", "portal-workers").Result()
	require.NoError(t, err)
	return p.Count
}

func TestEnsureGroupIsIdempotent(t *testing.T) {
	c, _ := setup(t, &recorder{})
	assert.NoError(t, c.EnsureGroup(context.Background()))
}

func TestReadHandlesAndAcks(t *testing.T) {
	rec := &recorder{}
	c, client := setup(t, rec)
	add(t, client, "backup")
	add(t, client, "digest")

	require.NoError(t, c.read(context.Background()))
	assert.Equal(t, []string{"backup", "digest"}, rec.seen)
	assert.Zero(t, pendingCount(t, client))
}

func TestFailedMessagesStayPendingUntilClaimed(t *testing.T) {
	rec := &recorder{fail: true}
	c, client := setup(t, rec)
	add(t, client, "backup")

	require.NoError(t, c.read(context.Background()))
	assert.Equal(t, int64(1), pendingCount(t, client))

	rec.fail = false
	time.Sleep(5 * time.Millisecond)
	require.NoError(t, c.claimStalled(context.Background()))
	assert.Equal(t, []string{"backup", "backup"}, rec.seen)
	assert.Zero(t, pendingCount(t, client))
}

func TestStartStopsDuringReadBackoff(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { client.Close() })

	c := NewConsumer(client, Options{
		Stream:     "portal:tasks",
		Group:      "portal-workers",
		Consumer:   "worker-test",
		Block:      10 * time.Millisecond,
		RetryDelay: time.Hour,
	}, zerolog.Nop(), &recorder{})
	require.NoError(t, c.EnsureGroup(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Start(ctx) }()

	// Reads start failing once redis goes away; the consumer is then in its retry wait.
	time.Sleep(50 * time.Millisecond)
	mr.Close()
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("consumer kept sleeping after cancellation")
	}
}
