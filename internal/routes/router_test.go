package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"property-marketplace/internal/auth"
	"property-marketplace/internal/config"
	"property-marketplace/internal/infrastructure/database/memory"
	"property-marketplace/internal/notification"
)

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []notification.InterestEvent
}

func (r *recordingNotifier) PublishInterest(_ context.Context, event notification.InterestEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

type testServer struct {
	t        *testing.T
	router   *gin.Engine
	notifier *recordingNotifier
	now      time.Time
	mu       sync.Mutex
}

func (s *testServer) clock() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now
}

func (s *testServer) advance(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = s.now.Add(d)
}

func newTestServer(t *testing.T, configure ...func(*config.Config)) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		Server:   config.ServerConfig{Environment: "test"},
		Database: config.DatabaseConfig{Driver: config.DriverMemory},
		JWT:      config.JWTConfig{Secret: "integration-secret", AccessTokenTTL: 30 * time.Minute},
		Password: config.PasswordConfig{BcryptCost: bcrypt.MinCost},
		CORS: config.CORSConfig{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{"GET", "POST", "PUT", "DELETE"},
			AllowedHeaders: []string{"Authorization", "Content-Type"},
		},
	}

	for _, fn := range configure {
		fn(cfg)
	}

	store := memory.NewStore()
	s := &testServer{
		t:        t,
		notifier: &recordingNotifier{},
		now:      time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC),
	}

	router, err := SetupRoutes(cfg, Dependencies{
		Users:        memory.NewUserRepository(store),
		Properties:   memory.NewPropertyRepository(store),
		Notifier:     s.notifier,
		Health:       store,
		TokenOptions: []auth.TokenOption{auth.WithClock(s.clock)},
	})
	require.NoError(t, err)
	s.router = router
	return s
}

func (s *testServer) do(method, path, token string, body any) (*httptest.ResponseRecorder, envelope) {
	s.t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(s.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return s.serve(req)
}

func (s *testServer) serve(req *http.Request) (*httptest.ResponseRecorder, envelope) {
	s.t.Helper()
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var env envelope
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(s.t, json.Unmarshal(w.Body.Bytes(), &env))
	}
	return w, env
}

func (s *testServer) register(email string, isSeller bool) int64 {
	s.t.Helper()
	w, env := s.do(http.MethodPost, "/api/v1/register", "", map[string]any{
		"first_name": "Test",
		"last_name":  "User",
		"email":      email,
		"phone":      "+1 (555) 010-0199",
		"password":   "secret1",
		"is_seller":  isSeller,
	})
	require.Equal(s.t, http.StatusCreated, w.Code, w.Body.String())

	var created struct {
		ID int64 `json:"id"`
	}
	require.NoError(s.t, json.Unmarshal(env.Data, &created))
	return created.ID
}

func (s *testServer) login(email, password string) string {
	s.t.Helper()
	w, env := s.do(http.MethodPost, "/api/v1/token", "", map[string]string{"email": email, "password": password})
	require.Equal(s.t, http.StatusOK, w.Code, w.Body.String())

	var token struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
	}
	require.NoError(s.t, json.Unmarshal(env.Data, &token))
	require.Equal(s.t, "bearer", token.TokenType)
	return token.AccessToken
}

func listingBody() map[string]any {
	return map[string]any{
		"title":           "Sunny flat",
		"description":     "Two rooms near the park",
		"place":           "Lisbon",
		"area":            "850 sqft",
		"bedrooms":        2,
		"bathrooms":       1,
		"hospital_nearby": 1,
		"school_nearby":   2,
		"price":           250000,
	}
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)

	w, _ := s.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "healthy")
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestRegistrationAndLogin(t *testing.T) {
	s := newTestServer(t)

	s.register("a@x.com", true)

	w, env := s.do(http.MethodPost, "/api/v1/register", "", map[string]any{
		"first_name": "Other",
		"last_name":  "Person",
		"email":      "A@X.com",
		"phone":      "+15550100100",
		"password":   "another1",
	})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.False(t, env.Success)

	w, _ = s.do(http.MethodPost, "/api/v1/register", "", map[string]any{"email": "bad"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	token := s.login("a@x.com", "secret1")
	assert.Len(t, strings.Split(token, "."), 3)

	form := url.Values{"username": {"a@x.com"}, "password": {"secret1"}}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/token", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w, env = s.serve(req)
	assert.Equal(t, http.StatusOK, w.Code, "OAuth2 password form is accepted")
	assert.Contains(t, string(env.Data), "access_token")

	wrongPassword, wrongEnv := s.do(http.MethodPost, "/api/v1/token", "", map[string]string{"email": "a@x.com", "password": "nope123"})
	unknownEmail, unknownEnv := s.do(http.MethodPost, "/api/v1/token", "", map[string]string{"email": "z@x.com", "password": "secret1"})
	assert.Equal(t, http.StatusUnauthorized, wrongPassword.Code)
	assert.Equal(t, http.StatusUnauthorized, unknownEmail.Code)
	assert.Equal(t, wrongEnv.Error, unknownEnv.Error)
	assert.Equal(t, "Bearer", wrongPassword.Header().Get("WWW-Authenticate"))
}

func TestCurrentUser(t *testing.T) {
	s := newTestServer(t)
	id := s.register("a@x.com", false)
	token := s.login("a@x.com", "secret1")

	w, env := s.do(http.MethodGet, "/api/v1/users/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var me struct {
		ID       int64  `json:"id"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &me))
	assert.Equal(t, id, me.ID)
	assert.Equal(t, "a@x.com", me.Email)
	assert.NotContains(t, string(env.Data), "hash")

	w, _ = s.do(http.MethodGet, "/api/v1/users/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	tampered := token[:len(token)-6] + "AAAAAA"
	if tampered == token {
		tampered = token[:len(token)-6] + "BBBBBB"
	}
	w, _ = s.do(http.MethodGet, "/api/v1/users/me", tampered, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	s.advance(31 * time.Minute)
	w, env = s.do(http.MethodGet, "/api/v1/users/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Could not validate credentials", env.Error)
}

func TestListingLifecycle(t *testing.T) {
	s := newTestServer(t)

	sellerID := s.register("seller@x.com", true)
	s.register("rival@x.com", true)
	s.register("buyer@x.com", false)
	seller := s.login("seller@x.com", "secret1")
	rival := s.login("rival@x.com", "secret1")
	buyer := s.login("buyer@x.com", "secret1")

	w, _ := s.do(http.MethodPost, "/api/v1/properties", "", listingBody())
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = s.do(http.MethodPost, "/api/v1/properties", buyer, listingBody())
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, env := s.do(http.MethodPost, "/api/v1/properties", seller, listingBody())
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var listing struct {
		ID      int64   `json:"id"`
		OwnerID int64   `json:"owner_id"`
		Title   string  `json:"title"`
		Place   string  `json:"place"`
		Price   float64 `json:"price"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &listing))
	assert.Equal(t, sellerID, listing.OwnerID)
	path := "/api/v1/properties/" + strconv.FormatInt(listing.ID, 10)

	w, env = s.do(http.MethodGet, "/api/v1/properties?skip=0&limit=5", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(env.Data), "Sunny flat")

	w, _ = s.do(http.MethodGet, "/api/v1/properties?limit=abc", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = s.do(http.MethodGet, path, "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w, _ = s.do(http.MethodGet, "/api/v1/properties/999", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w, _ = s.do(http.MethodGet, "/api/v1/properties/abc", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	update := map[string]any{"price": 199000}
	w, _ = s.do(http.MethodPut, path, rival, update)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w, _ = s.do(http.MethodPut, "/api/v1/properties/999", rival, update)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w, _ = s.do(http.MethodPut, path, "", update)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, env = s.do(http.MethodPut, path, seller, update)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(env.Data, &listing))
	assert.Equal(t, 199000.0, listing.Price)
	assert.Equal(t, "Lisbon", listing.Place)

	w, env = s.do(http.MethodPost, path+"/interested", buyer, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, string(env.Data), "seller@x.com")
	w, _ = s.do(http.MethodPost, path+"/interested", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	w, _ = s.do(http.MethodPost, "/api/v1/properties/999/interested", buyer, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	s.notifier.mu.Lock()
	require.Len(t, s.notifier.events, 1)
	assert.Equal(t, sellerID, s.notifier.events[0].SellerID)
	s.notifier.mu.Unlock()

	w, _ = s.do(http.MethodDelete, path, buyer, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w, _ = s.do(http.MethodDelete, path, seller, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w, _ = s.do(http.MethodGet, path, "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestTextIsStoredAsSent(t *testing.T) {
	s := newTestServer(t)

	w, _ := s.do(http.MethodPost, "/api/v1/register", "", map[string]any{
		"first_name": "Seán",
		"last_name":  "O'Brien",
		"email":      "sean@x.com",
		"phone":      "+353 1 555 0199",
		"password":   "secret1",
		"is_seller":  true,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	token := s.login("sean@x.com", "secret1")

	_, env := s.do(http.MethodGet, "/api/v1/users/me", token, nil)
	var me struct {
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &me))
	assert.Equal(t, "Seán", me.FirstName)
	assert.Equal(t, "O'Brien", me.LastName)

	body := listingBody()
	body["title"] = "Tom & Jerry's"
	body["description"] = "Garden & pool\n<quiet> street"
	w, env = s.do(http.MethodPost, "/api/v1/properties", token, body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var listing struct {
		ID          int64  `json:"id"`
		Title       string `json:"title"`
		Description string `json:"description"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &listing))
	assert.Equal(t, "Tom & Jerry's", listing.Title)
	assert.Equal(t, "Garden & pool\n<quiet> street", listing.Description)
	path := "/api/v1/properties/" + strconv.FormatInt(listing.ID, 10)

	for i := 0; i < 2; i++ {
		w, env = s.do(http.MethodPut, path, token, map[string]any{
			"title":       listing.Title,
			"description": listing.Description,
		})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		require.NoError(t, json.Unmarshal(env.Data, &listing))
	}

	_, env = s.do(http.MethodGet, path, "", nil)
	require.NoError(t, json.Unmarshal(env.Data, &listing))
	assert.Equal(t, "Tom & Jerry's", listing.Title, "echoing a value back does not change it")
	assert.Equal(t, "Garden & pool\n<quiet> street", listing.Description)

	full := strings.Repeat("&", 255)
	w, _ = s.do(http.MethodPut, path, token, map[string]any{"title": full})
	assert.Equal(t, http.StatusOK, w.Code, "length limits apply to the text as sent")
}

func TestUnbindableBody(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/register", strings.NewReader(`{"email":`))
	req.Header.Set("Content-Type", "application/json")
	w, env := s.serve(req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid request body", env.Error)
}

func TestRateLimitIgnoresForwardedForFromUntrustedPeers(t *testing.T) {
	s := newTestServer(t, func(cfg *config.Config) {
		cfg.RateLimit = config.RateLimitConfig{GeneralRPS: 0.001, GeneralBurst: 1}
	})

	send := func(forwardedFor string) int {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.RemoteAddr = "203.0.113.5:40000"
		req.Header.Set("X-Forwarded-For", forwardedFor)
		w, _ := s.serve(req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, send("198.51.100.1"))
	assert.Equal(t, http.StatusTooManyRequests, send("198.51.100.2"), "a fresh X-Forwarded-For is not a fresh bucket")
	assert.Equal(t, http.StatusTooManyRequests, send("198.51.100.3"))
}

func TestRateLimitHonoursForwardedForFromTrustedProxy(t *testing.T) {
	s := newTestServer(t, func(cfg *config.Config) {
		cfg.RateLimit = config.RateLimitConfig{GeneralRPS: 0.001, GeneralBurst: 1}
		cfg.Server.TrustedProxies = []string{"10.0.0.0/8"}
	})

	send := func(forwardedFor string) int {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.RemoteAddr = "10.1.2.3:40000"
		req.Header.Set("X-Forwarded-For", forwardedFor)
		w, _ := s.serve(req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, send("198.51.100.1"))
	assert.Equal(t, http.StatusOK, send("198.51.100.2"), "clients behind the proxy have their own buckets")
	assert.Equal(t, http.StatusTooManyRequests, send("198.51.100.1"))
}

func TestSetupRoutesRejectsBadTrustedProxies(t *testing.T) {
	cfg := &config.Config{
		Server:   config.ServerConfig{TrustedProxies: []string{"not-an-ip"}},
		JWT:      config.JWTConfig{Secret: "s", AccessTokenTTL: time.Minute},
		Password: config.PasswordConfig{BcryptCost: bcrypt.MinCost},
	}
	store := memory.NewStore()

	_, err := SetupRoutes(cfg, Dependencies{
		Users:      memory.NewUserRepository(store),
		Properties: memory.NewPropertyRepository(store),
		Health:     store,
	})
	assert.ErrorContains(t, err, "TRUSTED_PROXIES")
}
