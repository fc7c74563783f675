package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"unsritalk/internal/chat"
	"unsritalk/internal/config"
	"unsritalk/internal/dashboard"
	"unsritalk/internal/ids"
	"unsritalk/internal/models"
	"unsritalk/internal/repository"
	"unsritalk/internal/seed"
	"unsritalk/internal/store"
)

var fixedNow = time.Date(2024, time.July, 20, 14, 5, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

func sequentialIDs() ids.Generator {
	var (
		mu sync.Mutex
		n  int
	)
	return func(prefix string) string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("%s%d", prefix, n)
	}
}

type recordedTask struct {
	taskType string
	payload  any
}

type stubPublisher struct {
	tasks []recordedTask
	err   error
}

func (p *stubPublisher) Publish(_ context.Context, taskType string, payload any) error {
	p.tasks = append(p.tasks, recordedTask{taskType: taskType, payload: payload})
	return p.err
}

type fixture struct {
	cfg           *config.AppConfig
	kv            *repository.MemoryKV
	store         *store.Store
	catalog       dashboard.Catalog
	publisher     *stubPublisher
	auth          *AuthService
	chats         *ChatService
	announcements *AnnouncementService
}

func testConfig() *config.AppConfig {
	return &config.AppConfig{
		Storage: config.StorageConfig{Driver: "memory", Namespace: "unsri-talk-"},
		Security: config.SecurityConfig{
			SessionSecret:     "test-secret",
			SessionTTL:        time.Hour,
			AdminPrefix:       "ADMSRV_",
			AdminProvisioning: true,
		},
		Portal: config.PortalConfig{
			EmailDomain:    "unsri.ac.id",
			DefaultTheme:   "navy",
			MaxAvatarBytes: 1024,
		},
	}
}

func newFixture(t *testing.T, mutate ...func(*config.AppConfig)) *fixture {
	t.Helper()

	cfg := testConfig()
	for _, fn := range mutate {
		fn(cfg)
	}

	data, err := seed.Load()
	require.NoError(t, err)

	kv := repository.NewMemoryKV()
	repo := repository.NewStateRepository(kv, cfg.Storage.Namespace)
	st := store.New(repo, func() (models.Snapshot, error) {
		fresh, err := seed.Load()
		return fresh.Snapshot, err
	}, models.ThemeNavy, zerolog.Nop())
	require.NoError(t, st.Load(context.Background()))

	newID := sequentialIDs()
	publisher := &stubPublisher{}
	policy := NewProvisioningPolicy(cfg.Security.AdminProvisioning, cfg.Security.AdminPrefix)

	return &fixture{
		cfg:           cfg,
		kv:            kv,
		store:         st,
		catalog:       dashboard.Catalog{Specialists: data.Specialists, Jobs: data.JobPostings},
		publisher:     publisher,
		auth:          NewAuthService(st, policy, newID, cfg, zerolog.Nop()),
		chats:         NewChatService(st, chat.NewProtocol(newID, fixedClock), data.Specialists, zerolog.Nop()),
		announcements: NewAnnouncementService(st, newID, fixedClock, publisher, zerolog.Nop()),
	}
}

// actor returns the dashboard of a seeded or registered user.
func (f *fixture) actor(t *testing.T, userID string) dashboard.Dashboard {
	t.Helper()
	user, ok := f.store.Snapshot().Users[userID]
	require.True(t, ok, "unknown user %s", userID)
	d, err := dashboard.For(user, f.store, f.catalog)
	require.NoError(t, err)
	return d
}
