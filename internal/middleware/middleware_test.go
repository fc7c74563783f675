package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"unsritalk/internal/dashboard"
	"unsritalk/internal/models"
)

type emptySource struct{}

func (emptySource) Snapshot() models.Snapshot { return models.Snapshot{Users: map[string]models.User{}} }

type tokenTable map[string]models.User

func (t tokenTable) Authenticate(token string) (models.User, error) {
	if u, ok := t[token]; ok {
		return u, nil
	}
	return models.User{}, errors.New("unknown token")
}

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(engine *gin.Engine, method, path string, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range header {
		req.Header[k] = v
	}
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func TestRequestID(t *testing.T) {
	engine := gin.New()
	engine.Use(RequestID())
	engine.GET("/", func(c *gin.Context) { c.String(http.StatusOK, RequestIDFrom(c)) })

	rec := serve(engine, http.MethodGet, "/", nil)
	generated := rec.Header().Get(requestIDHeader)
	assert.Len(t, generated, 36)
	assert.Equal(t, generated, rec.Body.String())

	rec = serve(engine, http.MethodGet, "/", http.Header{requestIDHeader: {"abc"}})
	assert.Equal(t, "abc", rec.Header().Get(requestIDHeader))

	rec = serve(engine, http.MethodGet, "/", http.Header{requestIDHeader: {strings.Repeat("x", 200)}})
	assert.Len(t, rec.Header().Get(requestIDHeader), 36)
}

func TestCORS(t *testing.T) {
	engine := gin.New()
	engine.Use(CORS([]string{"https://talk.unsri.ac.id"}))
	engine.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	rec := serve(engine, http.MethodOptions, "/", http.Header{"Origin": {"https://talk.unsri.ac.id"}})
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "https://talk.unsri.ac.id", rec.Header().Get("Access-Control-Allow-Origin"))

	rec = serve(engine, http.MethodGet, "/", http.Header{"Origin": {"https://evil.example"}})
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRecovery(t *testing.T) {
	engine := gin.New()
	engine.Use(RequestID(), Logger(zerolog.Nop()), Recovery(zerolog.Nop()))
	engine.GET("/boom", func(c *gin.Context) { panic("boom") })

	rec := serve(engine, http.MethodGet, "/boom", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"internal_server_error"}`, rec.Body.String())
}

func authEngine(t *testing.T) *gin.Engine {
	t.Helper()
	tokens := tokenTable{
		"student": {ID: "s1", Role: models.RoleStudent},
		"ops":     {ID: "sa2", Role: models.RoleServerAdmin, Permissions: []models.Permission{models.PermissionMonitorChats}},
		"ghost":   {ID: "x", Role: "Rektor"},
	}
	selector := dashboard.NewSelector(emptySource{}, dashboard.Catalog{})

	engine := gin.New()
	engine.Use(Auth(tokens, selector))
	engine.GET("/me", func(c *gin.Context) {
		user, ok := CurrentUser(c)
		require.True(t, ok)
		d, ok := CurrentDashboard(c)
		require.True(t, ok)
		c.String(http.StatusOK, user.ID+":"+string(d.Role()))
	})
	engine.GET("/users", RequirePermissions(models.PermissionManageUsers), func(c *gin.Context) { c.Status(http.StatusOK) })
	engine.GET("/monitor", RequireCapability(dashboard.Dashboard.CanMonitorChats), func(c *gin.Context) { c.Status(http.StatusOK) })
	return engine
}

func bearer(token string) http.Header {
	return http.Header{"Authorization": {"Bearer " + token}}
}

func TestAuth(t *testing.T) {
	engine := authEngine(t)

	assert.Equal(t, http.StatusUnauthorized, serve(engine, http.MethodGet, "/me", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, serve(engine, http.MethodGet, "/me", bearer("nope")).Code)
	assert.Equal(t, http.StatusForbidden, serve(engine, http.MethodGet, "/me", bearer("ghost")).Code)

	rec := serve(engine, http.MethodGet, "/me", bearer("student"))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "s1:Mahasiswa", rec.Body.String())
}

func TestAuthorization(t *testing.T) {
	engine := authEngine(t)

	assert.Equal(t, http.StatusForbidden, serve(engine, http.MethodGet, "/users", bearer("ops")).Code)
	assert.Equal(t, http.StatusOK, serve(engine, http.MethodGet, "/monitor", bearer("ops")).Code)
	assert.Equal(t, http.StatusForbidden, serve(engine, http.MethodGet, "/monitor", bearer("student")).Code)
}
