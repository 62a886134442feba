package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aura-meet/backend/internal/models"
)

type memHosts struct {
	byEmail map[string]*models.Host
}

func (m *memHosts) GetByEmail(ctx context.Context, email string) (*models.Host, error) {
	h, ok := m.byEmail[email]
	if !ok {
		return nil, ErrHostNotFound
	}
	return h, nil
}

func (m *memHosts) Create(ctx context.Context, email, passwordHash, fullName string) (*models.Host, error) {
	if _, ok := m.byEmail[email]; ok {
		return nil, ErrEmailTaken
	}
	h := &models.Host{ID: uuid.New(), Email: email, Password: passwordHash, FullName: fullName, CreatedAt: time.Now()}
	m.byEmail[email] = h
	return h, nil
}

func newAuthRouter() (*gin.Engine, *JWTService) {
	gin.SetMode(gin.TestMode)
	svc := NewJWTService("secret", 1)
	h := NewHandler(&memHosts{byEmail: map[string]*models.Host{}}, svc, nil)
	r := gin.New()
	r.POST("/auth/register", h.Register)
	r.POST("/auth/login", h.Login)
	return r, svc
}

func post(r http.Handler, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRegisterAndLogin(t *testing.T) {
	r, svc := newAuthRouter()

	w := post(r, "/auth/register", `{"email":"Host@Example.com","password":"s3cret-pass","fullName":"Grace"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.NotContains(t, w.Body.String(), "s3cret-pass")
	assert.NotContains(t, w.Body.String(), "password")

	w = post(r, "/auth/register", `{"email":"host@example.com","password":"another-pass","fullName":"Grace"}`)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = post(r, "/auth/login", `{"email":"host@example.com","password":"s3cret-pass"}`)
	require.Equal(t, http.StatusOK, w.Code)
	var tok TokenResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &tok))
	claims, err := svc.Validate(tok.Token)
	require.NoError(t, err)
	assert.Equal(t, RoleHost, claims.Role)
	assert.Equal(t, "host@example.com", claims.Email)

	assert.Equal(t, http.StatusUnauthorized, post(r, "/auth/login", `{"email":"host@example.com","password":"wrong"}`).Code)
	assert.Equal(t, http.StatusUnauthorized, post(r, "/auth/login", `{"email":"nobody@example.com","password":"x"}`).Code)
	assert.Equal(t, http.StatusBadRequest, post(r, "/auth/register", `{"email":"a@b.co","password":"short","fullName":"x"}`).Code)
}
