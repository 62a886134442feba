package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/aura-meet/backend/internal/auth"
	"github.com/aura-meet/backend/pkg/response"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func perform(r http.Handler, method, path string, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRateLimit(t *testing.T) {
	r := gin.New()
	r.Use(RateLimit(60, 2, zap.NewNop()))
	r.POST("/bookings", func(c *gin.Context) { c.Status(http.StatusCreated) })

	assert.Equal(t, http.StatusCreated, perform(r, http.MethodPost, "/bookings", nil).Code)
	assert.Equal(t, http.StatusCreated, perform(r, http.MethodPost, "/bookings", nil).Code)
	w := perform(r, http.MethodPost, "/bookings", nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), `"error":"Rate limit exceeded. Try again later."`)
}

func TestRateLimit_NilLogger(t *testing.T) {
	r := gin.New()
	r.Use(RateLimit(60, 1, nil))
	r.POST("/bookings", func(c *gin.Context) { c.Status(http.StatusCreated) })

	assert.Equal(t, http.StatusCreated, perform(r, http.MethodPost, "/bookings", nil).Code)
	assert.NotPanics(t, func() {
		assert.Equal(t, http.StatusTooManyRequests, perform(r, http.MethodPost, "/bookings", nil).Code)
	})
}

func TestRateLimiterStore_EvictsIdleClients(t *testing.T) {
	clock := time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)
	store := newRateLimiterStore(rate.Every(time.Second), 1, func() time.Time { return clock })

	first := store.get("10.0.0.1")
	store.get("10.0.0.2")
	assert.Equal(t, 2, store.size())

	clock = clock.Add(5 * time.Minute)
	assert.Same(t, first, store.get("10.0.0.1"), "active client keeps its bucket")

	clock = clock.Add(limiterIdleTTL - 6*time.Minute)
	store.get("10.0.0.1")
	assert.Equal(t, 2, store.size(), "10.0.0.2 idle for less than the ttl")

	clock = clock.Add(2 * time.Minute)
	store.get("10.0.0.3")
	assert.Equal(t, 2, store.size(), "10.0.0.2 evicted")
}

func TestRateLimit_Disabled(t *testing.T) {
	r := gin.New()
	r.Use(RateLimit(0, 0, zap.NewNop()))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })
	for i := 0; i < 10; i++ {
		require.Equal(t, http.StatusOK, perform(r, http.MethodGet, "/", nil).Code)
	}
}

func TestJWTAndRole(t *testing.T) {
	svc := auth.NewJWTService("secret", 1)
	r := gin.New()
	r.POST("/event-types", JWT(svc), RequireRole(auth.RoleHost), func(c *gin.Context) {
		id, _ := c.Get(ContextHostID)
		c.String(http.StatusOK, id.(uuid.UUID).String())
	})

	assert.Equal(t, http.StatusUnauthorized, perform(r, http.MethodPost, "/event-types", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, perform(r, http.MethodPost, "/event-types",
		map[string]string{"Authorization": "Token abc"}).Code)

	expired, err := auth.NewJWTService("secret", -1).Generate(uuid.New(), "h@example.com", auth.RoleHost)
	require.NoError(t, err)
	w := perform(r, http.MethodPost, "/event-types", map[string]string{"Authorization": "Bearer " + expired})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "token expired")

	guestTok, err := svc.Generate(uuid.New(), "g@example.com", "guest")
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, perform(r, http.MethodPost, "/event-types",
		map[string]string{"Authorization": "Bearer " + guestTok}).Code)

	host := uuid.New()
	hostTok, err := svc.Generate(host, "h@example.com", auth.RoleHost)
	require.NoError(t, err)
	w = perform(r, http.MethodPost, "/event-types", map[string]string{"Authorization": "bearer " + hostTok})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, host.String(), w.Body.String())
}

func TestCORS_Preflight(t *testing.T) {
	r := gin.New()
	r.Use(CORS("http://localhost:3000"))
	r.GET("/api/embed/:slug", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := perform(r, http.MethodOptions, "/api/embed/x", map[string]string{"Origin": "http://localhost:3000"})
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))

	assert.Equal(t, "Origin", w.Header().Get("Vary"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), HeaderRequestID)

	w = perform(r, http.MethodGet, "/api/embed/x", map[string]string{"Origin": "http://evil.test"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))

	w = perform(r, http.MethodOptions, "/api/embed/x", map[string]string{"Origin": "http://evil.test"})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestCORS_Wildcard(t *testing.T) {
	r := gin.New()
	r.Use(CORS("*"))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := perform(r, http.MethodGet, "/", map[string]string{"Origin": "https://anywhere.test"})
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestLogger_RequestID(t *testing.T) {
	r := gin.New()
	r.Use(Logger(zap.NewNop()))
	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(ContextRequestID))
	})

	w := perform(r, http.MethodGet, "/", nil)
	generated := w.Header().Get(HeaderRequestID)
	_, err := uuid.Parse(generated)
	require.NoError(t, err)
	assert.Equal(t, generated, w.Body.String())

	w = perform(r, http.MethodGet, "/", map[string]string{HeaderRequestID: "abc-123"})
	assert.Equal(t, "abc-123", w.Header().Get(HeaderRequestID))
	assert.Equal(t, "abc-123", w.Body.String())
}

func TestErrorBodyCarriesRequestID(t *testing.T) {
	r := gin.New()
	r.Use(Logger(zap.NewNop()))
	r.GET("/", func(c *gin.Context) { response.NotFound(c, "Event not found") })

	w := perform(r, http.MethodGet, "/", map[string]string{HeaderRequestID: "req-1"})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"success":false,"error":"Event not found","requestId":"req-1"}`, w.Body.String())
}
