package store

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"unsritalk/internal/models"
	"unsritalk/internal/repository"
	"unsritalk/internal/seed"
)

const namespace = "unsri-talk-"

type failingKV struct {
	failGet bool
	failSet bool
	sets    int
}

func (f *failingKV) Get(context.Context, string) (string, error) {
	if f.failGet {
		return "", errors.New("storage offline")
	}
	return "", repository.ErrKeyNotFound
}

func (f *failingKV) Set(context.Context, string, string) error {
	f.sets++
	if f.failSet {
		return errors.New("quota exceeded")
	}
	return nil
}

func (f *failingKV) Delete(context.Context, string) error { return nil }

func seedSnapshot() (models.Snapshot, error) {
	data, err := seed.Load()
	if err != nil {
		return models.Snapshot{}, err
	}
	return data.Snapshot, nil
}

func newStore(kv repository.KV) *Store {
	return New(repository.NewStateRepository(kv, namespace), seedSnapshot, models.ThemeNavy, zerolog.Nop())
}

func TestLoadSeedsAndPersistsImmediately(t *testing.T) {
	ctx := context.Background()
	kv := repository.NewMemoryKV()
	s := newStore(kv)

	require.NoError(t, s.Load(ctx))

	assert.Len(t, s.Snapshot().Users, 12)
	assert.Equal(t, models.ThemeNavy, s.Theme())
	_, ok := s.Session()
	assert.False(t, ok)

	_, err := kv.Get(ctx, namespace+"db")
	assert.NoError(t, err)
}

func TestLoadKeepsExistingDatabase(t *testing.T) {
	ctx := context.Background()
	kv := repository.NewMemoryKV()
	repo := repository.NewStateRepository(kv, namespace)
	require.NoError(t, repo.SaveDatabase(ctx, models.Snapshot{
		Users: map[string]models.User{"u1": {ID: "u1", Name: "Only"}},
	}))

	s := newStore(kv)
	require.NoError(t, s.Load(ctx))

	assert.Len(t, s.Snapshot().Users, 1)
}

func TestLoadRestoresThemeAndSession(t *testing.T) {
	ctx := context.Background()
	kv := repository.NewMemoryKV()
	repo := repository.NewStateRepository(kv, namespace)
	require.NoError(t, kv.Set(ctx, namespace+"theme", "dark"))
	require.NoError(t, repo.SaveSession(ctx, models.User{ID: "s1", Name: "stale"}))

	s := newStore(kv)
	require.NoError(t, s.Load(ctx))

	assert.Equal(t, models.ThemeDark, s.Theme())
	user, ok := s.Session()
	require.True(t, ok)
	assert.Equal(t, "Budi Santoso", user.Name)
	assert.Empty(t, user.Password)
}

func TestLoadFallsBackOnUnknownTheme(t *testing.T) {
	ctx := context.Background()
	kv := repository.NewMemoryKV()
	require.NoError(t, kv.Set(ctx, namespace+"theme", "purple"))

	s := newStore(kv)
	require.NoError(t, s.Load(ctx))

	assert.Equal(t, models.ThemeNavy, s.Theme())
}

func TestLoadDropsSessionOfUnknownUser(t *testing.T) {
	ctx := context.Background()
	kv := repository.NewMemoryKV()
	repo := repository.NewStateRepository(kv, namespace)
	require.NoError(t, repo.SaveSession(ctx, models.User{ID: "ghost"}))

	s := newStore(kv)
	require.NoError(t, s.Load(ctx))

	_, ok := s.Session()
	assert.False(t, ok)
	_, err := repo.LoadSession(ctx)
	assert.ErrorIs(t, err, repository.ErrKeyNotFound)
}

func TestMutationsBeforeLoadAreRejected(t *testing.T) {
	ctx := context.Background()
	kv := &failingKV{}
	s := newStore(kv)

	err := s.Update(ctx, func(*models.Snapshot) error { return nil })
	assert.ErrorIs(t, err, ErrNotLoaded)
	assert.ErrorIs(t, s.SetTheme(ctx, models.ThemeDark), ErrNotLoaded)
	_, err = s.SetSession(ctx, "s1")
	assert.ErrorIs(t, err, ErrNotLoaded)
	assert.Zero(t, kv.sets)
}

func TestUpdateCommitsAndWritesThrough(t *testing.T) {
	ctx := context.Background()
	kv := repository.NewMemoryKV()
	s := newStore(kv)
	require.NoError(t, s.Load(ctx))

	err := s.Update(ctx, func(snap *models.Snapshot) error {
		snap.Announcements = append([]models.Announcement{{ID: "new", Title: "T"}}, snap.Announcements...)
		return nil
	})
	require.NoError(t, err)

	assert.Equal(t, "new", s.Snapshot().Announcements[0].ID)

	persisted, err := repository.NewStateRepository(kv, namespace).LoadDatabase(ctx)
	require.NoError(t, err)
	assert.Equal(t, "new", persisted.Announcements[0].ID)
}

func TestUpdateFailureCommitsNothing(t *testing.T) {
	ctx := context.Background()
	s := newStore(repository.NewMemoryKV())
	require.NoError(t, s.Load(ctx))
	before := s.Snapshot()

	boom := errors.New("boom")
	err := s.Update(ctx, func(snap *models.Snapshot) error {
		delete(snap.Users, "s1")
		snap.Chats = nil
		return boom
	})

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, before, s.Snapshot())
}

func TestSnapshotIsIndependentCopy(t *testing.T) {
	ctx := context.Background()
	s := newStore(repository.NewMemoryKV())
	require.NoError(t, s.Load(ctx))

	snap := s.Snapshot()
	delete(snap.Users, "s1")
	snap.Chats[0].ID = "mutated"

	fresh := s.Snapshot()
	assert.Contains(t, fresh.Users, "s1")
	assert.Equal(t, "chat1", fresh.Chats[0].ID)
}

func TestUpdateRefreshesSessionUser(t *testing.T) {
	ctx := context.Background()
	kv := repository.NewMemoryKV()
	s := newStore(kv)
	require.NoError(t, s.Load(ctx))
	_, err := s.SetSession(ctx, "s1")
	require.NoError(t, err)

	err = s.Update(ctx, func(snap *models.Snapshot) error {
		u := snap.Users["s1"]
		u.Name = "Budi S."
		snap.Users["s1"] = u
		return nil
	})
	require.NoError(t, err)

	current, ok := s.Session()
	require.True(t, ok)
	assert.Equal(t, "Budi S.", current.Name)

	persisted, err := repository.NewStateRepository(kv, namespace).LoadSession(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Budi S.", persisted.Name)
	assert.Empty(t, persisted.Password)
}

func TestSetSessionRequiresKnownUser(t *testing.T) {
	ctx := context.Background()
	s := newStore(repository.NewMemoryKV())
	require.NoError(t, s.Load(ctx))

	_, err := s.SetSession(ctx, "nobody")
	assert.ErrorIs(t, err, ErrUnknownUser)
}

func TestClearSession(t *testing.T) {
	ctx := context.Background()
	kv := repository.NewMemoryKV()
	s := newStore(kv)
	require.NoError(t, s.Load(ctx))
	_, err := s.SetSession(ctx, "l1")
	require.NoError(t, err)

	require.NoError(t, s.ClearSession(ctx))

	_, ok := s.Session()
	assert.False(t, ok)
	_, err = kv.Get(ctx, namespace+"currentUser")
	assert.ErrorIs(t, err, repository.ErrKeyNotFound)
}

func TestSetTheme(t *testing.T) {
	ctx := context.Background()
	kv := repository.NewMemoryKV()
	s := newStore(kv)
	require.NoError(t, s.Load(ctx))

	assert.ErrorIs(t, s.SetTheme(ctx, "purple"), ErrInvalidTheme)
	require.NoError(t, s.SetTheme(ctx, models.ThemeLight))

	raw, err := kv.Get(ctx, namespace+"theme")
	require.NoError(t, err)
	assert.Equal(t, "light", raw)
}

func TestWriteFailureDegradesToMemory(t *testing.T) {
	ctx := context.Background()
	kv := &failingKV{failSet: true}
	s := newStore(kv)

	require.NoError(t, s.Load(ctx))
	assert.True(t, s.Degraded())
	writes := kv.sets

	err := s.Update(ctx, func(snap *models.Snapshot) error {
		snap.Announcements = nil
		return nil
	})
	require.NoError(t, err)
	assert.Empty(t, s.Snapshot().Announcements)
	assert.Equal(t, writes, kv.sets)
}

func TestReadFailureSeedsInMemoryWithoutOverwriting(t *testing.T) {
	ctx := context.Background()
	kv := &failingKV{failGet: true}
	s := newStore(kv)

	require.NoError(t, s.Load(ctx))
	assert.True(t, s.Degraded())
	assert.Len(t, s.Snapshot().Users, 12)
	assert.Zero(t, kv.sets)
}

func TestMarkDegradedBeforeLoadNeverWrites(t *testing.T) {
	ctx := context.Background()
	kv := &failingKV{}
	s := newStore(kv)

	s.MarkDegraded(errors.New("dial tcp 127.0.0.1:6379: connection refused"))
	require.NoError(t, s.Load(ctx))

	assert.True(t, s.Degraded())
	assert.Len(t, s.Snapshot().Users, 12)

	require.NoError(t, s.SetTheme(ctx, models.ThemeDark))
	assert.Equal(t, models.ThemeDark, s.Theme())
	assert.Zero(t, kv.sets)
}
