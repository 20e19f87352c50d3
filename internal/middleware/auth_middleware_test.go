package middleware

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/ironforge/gym-admin-backend/internal/access"
	"github.com/ironforge/gym-admin-backend/internal/services"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeResolver struct {
	identities map[string]access.Identity
	err        error
}

func (f *fakeResolver) ResolveSession(_ context.Context, token string) (access.Identity, error) {
	if f.err != nil {
		return access.Identity{}, f.err
	}
	identity, ok := f.identities[token]
	if !ok {
		return access.Identity{}, &services.AuthenticationError{Reason: services.AuthInvalid}
	}
	return identity, nil
}

var trainer = access.Identity{
	SubjectID: uuid.MustParse("22222222-2222-2222-2222-222222222222"),
	Role:      access.RoleTrainer,
	Email:     "trainer@ironforge.test",
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func setupTestRouter(resolver SessionResolver) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/protected", AuthMiddleware(resolver, testLogger()), func(c *gin.Context) {
		identity := MustGetIdentity(c)
		c.JSON(http.StatusOK, gin.H{
			"message": "success",
			"email":   identity.Email,
			"role":    identity.Role,
		})
	})
	return router
}

func doGet(router *gin.Engine, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware_Success(t *testing.T) {
	router := setupTestRouter(&fakeResolver{identities: map[string]access.Identity{"good-token": trainer}})

	w := doGet(router, "Bearer good-token")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "success")
	assert.Contains(t, w.Body.String(), trainer.Email)
	assert.Contains(t, w.Body.String(), "Trainer")
}

func TestAuthMiddleware_MissingAuthHeader(t *testing.T) {
	router := setupTestRouter(&fakeResolver{})

	w := doGet(router, "")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Authorization header is required")
	assert.Contains(t, w.Body.String(), "MISSING_AUTH_HEADER")
}

func TestAuthMiddleware_InvalidAuthFormat(t *testing.T) {
	router := setupTestRouter(&fakeResolver{})

	tests := []struct {
		name   string
		header string
	}{
		{"Missing Bearer", "some-token"},
		{"Wrong prefix", "Basic some-token"},
		{"Empty Bearer", "Bearer "},
		{"No token", "Bearer"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doGet(router, tt.header)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Contains(t, w.Body.String(), "INVALID_AUTH_FORMAT")
		})
	}
}

func TestAuthMiddleware_InvalidToken(t *testing.T) {
	router := setupTestRouter(&fakeResolver{identities: map[string]access.Identity{}})

	w := doGet(router, "Bearer invalid.token.here")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_TOKEN")
}

func TestAuthMiddleware_ExpiredSession(t *testing.T) {
	router := setupTestRouter(&fakeResolver{err: &services.AuthenticationError{Reason: services.AuthExpired}})

	w := doGet(router, "Bearer stale-token")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "TOKEN_EXPIRED")
}

func TestAuthMiddleware_StorageFailure(t *testing.T) {
	router := setupTestRouter(&fakeResolver{err: &services.StorageError{
		Op:            "resolve session",
		CorrelationID: "corr-123",
		Err:           errors.New("connection refused"),
	}})

	w := doGet(router, "Bearer any-token")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "corr-123")
	assert.NotContains(t, w.Body.String(), "connection refused")
}

func TestGetIdentity(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("Identity exists", func(t *testing.T) {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Set(IdentityContextKey, trainer)

		identity, exists := GetIdentity(c)
		assert.True(t, exists)
		assert.Equal(t, trainer.SubjectID, identity.SubjectID)
		assert.Equal(t, access.RoleTrainer, identity.Role)
	})

	t.Run("Identity not found", func(t *testing.T) {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		identity, exists := GetIdentity(c)
		assert.False(t, exists)
		assert.Equal(t, access.Identity{}, identity)
	})

	t.Run("Identity wrong type", func(t *testing.T) {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Set(IdentityContextKey, "wrong type")
		_, exists := GetIdentity(c)
		assert.False(t, exists)
	})
}

func TestMustGetIdentity(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("Identity exists - no panic", func(t *testing.T) {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Set(IdentityContextKey, trainer)

		assert.NotPanics(t, func() {
			assert.Equal(t, trainer.SubjectID, MustGetIdentity(c).SubjectID)
		})
	})

	t.Run("Identity not found - panic", func(t *testing.T) {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		assert.Panics(t, func() {
			MustGetIdentity(c)
		})
	})
}

func TestClientInfo(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	var captured services.ClientInfo
	router.GET("/ping", ClientInfo(), func(c *gin.Context) {
		captured = services.ClientInfoFrom(c.Request.Context())
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("X-Real-IP", "203.0.113.7")
	req.Header.Set("User-Agent", "front-desk/1.0")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "203.0.113.7", captured.IPAddress)
	assert.Equal(t, "front-desk/1.0", captured.UserAgent)
}

func TestRequestLogger_PassesThrough(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RequestLogger(testLogger()))
	router.GET("/missing", func(c *gin.Context) {
		c.Status(http.StatusNotFound)
	})

	req := httptest.NewRequest(http.MethodGet, "/missing", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
