package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"property-marketplace/internal/config"
	domainUser "property-marketplace/internal/domain/user"
	"property-marketplace/internal/logger"
	appErrors "property-marketplace/pkg/errors"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type authenticatorFunc func(ctx context.Context, token string) (*domainUser.User, error)

func (f authenticatorFunc) Authenticate(ctx context.Context, token string) (*domainUser.User, error) {
	return f(ctx, token)
}

var (
	seller = &domainUser.User{ID: 1, Email: "seller@x.com", IsSeller: true}
	buyer  = &domainUser.User{ID: 2, Email: "buyer@x.com"}
)

func stubAuthenticator() Authenticator {
	return authenticatorFunc(func(_ context.Context, token string) (*domainUser.User, error) {
		switch token {
		case "seller-token":
			return seller, nil
		case "buyer-token":
			return buyer, nil
		case "expired-token":
			return nil, appErrors.ErrTokenExpired
		case "orphan-token":
			return nil, appErrors.ErrUnknownSubject
		case "broken-store":
			return nil, errors.New("connection refused")
		default:
			return nil, appErrors.ErrInvalidToken
		}
	})
}

func newProtectedRouter(extra ...gin.HandlerFunc) *gin.Engine {
	router := gin.New()
	router.Use(RequestIDMiddleware())
	handlers := append([]gin.HandlerFunc{AuthMiddleware(stubAuthenticator())}, extra...)
	handlers = append(handlers, func(c *gin.Context) {
		user, ok := GetIdentity(c)
		if !ok {
			c.Status(http.StatusTeapot)
			return
		}
		c.JSON(http.StatusOK, gin.H{"id": user.ID})
	})
	router.GET("/me", handlers...)
	return router
}

func perform(router http.Handler, method, path string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	router := newProtectedRouter()

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantBody   string
	}{
		{name: "valid", header: "Bearer seller-token", wantStatus: http.StatusOK, wantBody: `{"id":1}`},
		{name: "scheme is case insensitive", header: "bearer buyer-token", wantStatus: http.StatusOK, wantBody: `{"id":2}`},
		{name: "missing header", wantStatus: http.StatusUnauthorized, wantBody: "Not authenticated"},
		{name: "wrong scheme", header: "Basic dXNlcjpwYXNz", wantStatus: http.StatusUnauthorized, wantBody: "Not authenticated"},
		{name: "empty token", header: "Bearer ", wantStatus: http.StatusUnauthorized, wantBody: "Not authenticated"},
		{name: "invalid", header: "Bearer garbage", wantStatus: http.StatusUnauthorized, wantBody: "Could not validate credentials"},
		{name: "expired", header: "Bearer expired-token", wantStatus: http.StatusUnauthorized, wantBody: "Could not validate credentials"},
		{name: "unknown subject", header: "Bearer orphan-token", wantStatus: http.StatusUnauthorized, wantBody: "Could not validate credentials"},
		{name: "store failure", header: "Bearer broken-store", wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			headers := map[string]string{}
			if tt.header != "" {
				headers["Authorization"] = tt.header
			}
			w := perform(router, http.MethodGet, "/me", headers)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.wantBody)
			if tt.wantStatus == http.StatusUnauthorized {
				assert.Equal(t, "Bearer", w.Header().Get("WWW-Authenticate"))
			}
		})
	}
}

func TestAuthMiddleware_LogsRejection(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	defer logger.Replace(zap.New(core))()

	router := newProtectedRouter()
	perform(router, http.MethodGet, "/me", map[string]string{
		"Authorization": "Bearer expired-token",
		RequestIDHeader: "req-expired",
	})

	rejected := logs.FilterField(zap.String("event", "authentication_failed")).All()
	require.Len(t, rejected, 1)
	fields := rejected[0].ContextMap()
	assert.Equal(t, "req-expired", fields["request_id"])
	assert.Equal(t, appErrors.ErrTokenExpired.Error(), fields["reason"])
	assert.NotContains(t, fields, "token")
}

func TestSellerOnly(t *testing.T) {
	router := newProtectedRouter(SellerOnly())

	w := perform(router, http.MethodGet, "/me", map[string]string{"Authorization": "Bearer seller-token"})
	assert.Equal(t, http.StatusOK, w.Code)

	w = perform(router, http.MethodGet, "/me", map[string]string{"Authorization": "Bearer buyer-token"})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Empty(t, w.Header().Get("WWW-Authenticate"))

	bare := gin.New()
	bare.GET("/", SellerOnly(), func(c *gin.Context) { c.Status(http.StatusOK) })
	w = perform(bare, http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequestIDMiddleware(t *testing.T) {
	router := gin.New()
	router.Use(RequestIDMiddleware())
	router.GET("/", func(c *gin.Context) { c.String(http.StatusOK, GetRequestID(c)) })

	w := perform(router, http.MethodGet, "/", map[string]string{RequestIDHeader: "abc-123"})
	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
	assert.Equal(t, "abc-123", w.Body.String())

	w = perform(router, http.MethodGet, "/", nil)
	assert.Len(t, w.Header().Get(RequestIDHeader), 36)

	w = perform(router, http.MethodGet, "/", map[string]string{RequestIDHeader: strings.Repeat("x", 500)})
	assert.Len(t, w.Body.String(), 36)

	w = perform(router, http.MethodGet, "/", map[string]string{RequestIDHeader: "two words"})
	assert.NotEqual(t, "two words", w.Body.String())
	assert.Len(t, w.Body.String(), 36)
}

func TestRateLimiter(t *testing.T) {
	limiter := NewRateLimiter(1, 2)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return now }
	limiter.lastCleanup = now

	assert.True(t, limiter.Allow("10.0.0.1"))
	assert.True(t, limiter.Allow("10.0.0.1"))
	assert.False(t, limiter.Allow("10.0.0.1"))
	assert.True(t, limiter.Allow("10.0.0.2"), "buckets are per client")

	now = now.Add(time.Second)
	assert.True(t, limiter.Allow("10.0.0.1"), "tokens refill over time")

	now = now.Add(limiterIdleTTL + limiterCleanupInterval)
	limiter.Allow("10.0.0.3")
	assert.Equal(t, 1, limiter.size(), "idle clients are evicted")
}

func TestRateLimitMiddleware(t *testing.T) {
	router := gin.New()
	router.Use(RateLimitMiddleware(0.001, 1))
	router.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, perform(router, http.MethodGet, "/", nil).Code)
	w := perform(router, http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "1", w.Header().Get("Retry-After"))

	disabled := gin.New()
	disabled.Use(RateLimitMiddleware(0, 0))
	disabled.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })
	for i := 0; i < 5; i++ {
		require.Equal(t, http.StatusOK, perform(disabled, http.MethodGet, "/", nil).Code)
	}
}

func TestRequestSizeLimitMiddleware(t *testing.T) {
	router := gin.New()
	router.Use(RequestSizeLimitMiddleware(8))
	router.POST("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("0123456789"))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Contains(t, w.Body.String(), "exceeds 8 bytes")

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader("01234567"))
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSecurityHeadersMiddleware(t *testing.T) {
	router := gin.New()
	router.Use(SecurityHeadersMiddleware(false))
	router.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := perform(router, http.MethodGet, "/", nil)
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
	assert.Empty(t, w.Header().Get("Strict-Transport-Security"))

	production := gin.New()
	production.Use(SecurityHeadersMiddleware(true))
	production.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })
	w = perform(production, http.MethodGet, "/", nil)
	assert.Equal(t, hstsValue, w.Header().Get("Strict-Transport-Security"))
}

func TestCORSMiddleware(t *testing.T) {
	newRouter := func(origins []string) *gin.Engine {
		router := gin.New()
		router.Use(CORSMiddleware(&config.CORSConfig{
			AllowedOrigins: origins,
			AllowedMethods: []string{"GET", "POST"},
			AllowedHeaders: []string{"Content-Type"},
			MaxAge:         600,
		}))
		router.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })
		return router
	}

	w := perform(newRouter(nil), http.MethodGet, "/", map[string]string{"Origin": "https://any.example"})
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))

	restricted := newRouter([]string{"https://app.example"})
	w = perform(restricted, http.MethodGet, "/", map[string]string{"Origin": "https://app.example"})
	assert.Equal(t, "https://app.example", w.Header().Get("Access-Control-Allow-Origin"))

	w = perform(restricted, http.MethodGet, "/", map[string]string{"Origin": "https://evil.example"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	preflight := httptest.NewRequest(http.MethodOptions, "/", nil)
	preflight.Header.Set("Origin", "https://app.example")
	preflight.Header.Set("Access-Control-Request-Method", http.MethodPost)
	preflight.Header.Set("Access-Control-Request-Headers", "Authorization")
	w = httptest.NewRecorder()
	restricted.ServeHTTP(w, preflight)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), "Authorization")
}
