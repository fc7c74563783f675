package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"unsritalk/internal/config"
	"unsritalk/internal/handlers"
	"unsritalk/internal/metrics"
	"unsritalk/internal/models"
	"unsritalk/internal/repository"
	"unsritalk/internal/seed"
	"unsritalk/internal/store"
)

func testServer(t *testing.T) *HTTPServer {
	t.Helper()
	cfg := &config.AppConfig{
		Environment: "test",
		HTTP:        config.HTTPConfig{Host: "127.0.0.1", Port: 0},
		Storage:     config.StorageConfig{Driver: "memory", Namespace: "unsri-talk-"},
		Portal:      config.PortalConfig{MaxAvatarBytes: 1024},
	}
	st := store.New(repository.NewStateRepository(repository.NewMemoryKV(), "unsri-talk-"), func() (models.Snapshot, error) {
		data, err := seed.Load()
		return data.Snapshot, err
	}, models.ThemeNavy, zerolog.Nop())
	require.NoError(t, st.Load(context.Background()))

	return NewHTTPServer(cfg, zerolog.Nop(), handlers.NewHandlerSet(handlers.Deps{
		Config: cfg,
		Log:    zerolog.Nop(),
		Store:  st,
	}), metrics.New(st))
}

func TestEngineServesHealthWithRequestID(t *testing.T) {
	srv := testServer(t)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
}

func TestEngineUnknownRoute(t *testing.T) {
	srv := testServer(t)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v2/nothing", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"not_found"}`, rec.Body.String())
}

func TestRunStopsOnCancel(t *testing.T) {
	srv := testServer(t)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx, time.Second) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestEngineExposesMetrics(t *testing.T) {
	srv := testServer(t)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/healthz", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `unsritalk_http_requests_total{method="GET",route="/api/healthz",status="200"} 1`)
	assert.Contains(t, rec.Body.String(), "unsritalk_portal_users 12")
}
