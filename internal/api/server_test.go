package api

import (
	"context"
	"encoding/json/v2"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookdamapp/bookdam-server/internal/auth"
	"github.com/bookdamapp/bookdam-server/internal/config"
	"github.com/bookdamapp/bookdam-server/internal/domain"
	"github.com/bookdamapp/bookdam-server/internal/kv"
	"github.com/bookdamapp/bookdam-server/internal/recommend"
	"github.com/bookdamapp/bookdam-server/internal/search"
	"github.com/bookdamapp/bookdam-server/internal/service"
	"github.com/bookdamapp/bookdam-server/internal/store"
)

// testEnvelope mirrors the success envelope for decoding in tests.
type testEnvelope[T any] struct {
	Version int    `json:"v"`
	Success bool   `json:"success"`
	Data    T      `json:"data"`
	Error   string `json:"error"`
}

// testErrorEnvelope mirrors the detailed error envelope.
type testErrorEnvelope struct {
	Version int    `json:"v"`
	Success bool   `json:"success"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// testServer wraps the API server for handler testing.
type testServer struct {
	*Server
	api          humatest.TestAPI
	tokenService *auth.TokenService
}

// testCatalogBooks covers every emotion tag so the emotion pick set is
// never empty.
func testCatalogBooks() []domain.Book {
	books := make([]domain.Book, len(domain.EmotionTags))
	for i, tag := range domain.EmotionTags {
		books[i] = domain.Book{
			ISBN13:  fmt.Sprintf("979110001%04d", i),
			Title:   fmt.Sprintf("서가의 책 %d", i+1),
			Author:  "작가",
			Emotion: tag,
		}
	}
	books[0].Title = "아몬드"
	books[0].Author = "손원평"
	return books
}

// recommendTestBackend fakes the external recommendation service with
// five full pages of nine items.
func recommendTestBackend(t *testing.T) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/analyze":
			fmt.Fprint(w, `{"emotion":"흥미"}`)
		case "/v1/recommend":
			page := r.URL.Query().Get("page")
			items := make([]string, 0, 9)
			for i := 0; i < 9; i++ {
				items = append(items, fmt.Sprintf(
					`{"isbn13":"977%s%06d","title":"추천 %s-%d","author":"a","similarity":%.3f}`,
					page, i, page, i, 0.9-float64(i)/100,
				))
			}
			fmt.Fprintf(w, `{"items":[%s]}`, strings.Join(items, ","))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

// setupTestServer creates a test server with a seeded catalog.
func setupTestServer(t *testing.T) *testServer {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "bookdam-api-test-*")
	require.NoError(t, err)

	st, err := store.New(filepath.Join(tmpDir, "db"), nil)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = st.Close()
		_ = os.RemoveAll(tmpDir)
	})

	_, err = st.PutBooks(context.Background(), testCatalogBooks())
	require.NoError(t, err)

	cfg := &config.Config{
		Server: config.ServerConfig{Name: "Test Server", Port: "8080"},
		Auth:   config.AuthConfig{AccessTokenDuration: 15 * time.Minute},
	}

	authKey, err := auth.LoadOrGenerateKey(tmpDir)
	require.NoError(t, err)
	cfg.Auth.AccessTokenKey = authKey

	tokenService, err := auth.NewTokenService(authKey, cfg.Auth.AccessTokenDuration)
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	idx, err := search.NewIndex(search.Options{DataPath: tmpDir, Logger: logger})
	require.NoError(t, err)
	t.Cleanup(func() { _ = idx.Close() })

	backend := recommendTestBackend(t)
	client := recommend.NewClient(backend.URL, time.Second, logger)

	catalogService := service.NewCatalogService(st, logger)
	require.NoError(t, catalogService.Load(context.Background()))

	searchService := service.NewSearchService(idx, catalogService, logger)
	require.NoError(t, searchService.RebuildIndex(context.Background()))

	discoveryService := service.NewDiscoveryService(catalogService, kv.NewMemory(), logger, service.DiscoveryOptions{
		DailyCount:   10,
		PollInterval: 10 * time.Millisecond,
		MaxWait:      100 * time.Millisecond,
	})
	recommendService := service.NewRecommendService(client, kv.NewMemory(), logger, service.RecommendOptions{})
	bookshelfService := service.NewBookshelfService(st, catalogService, logger)
	authService := service.NewAuthService(st, tokenService, logger)

	services := &Services{
		Auth:      authService,
		Catalog:   catalogService,
		Discovery: discoveryService,
		Recommend: recommendService,
		Bookshelf: bookshelfService,
		Search:    searchService,
	}

	router := chi.NewRouter()

	// Add auth middleware before routes
	router.Use(authMiddleware(services.Auth))

	humaConfig := huma.DefaultConfig("Bookdam API Test", "1.0.0")
	humaConfig.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"bearer": {
			Type:         "http",
			Scheme:       "bearer",
			BearerFormat: "PASETO",
		},
	}
	humaConfig.Transformers = append(humaConfig.Transformers, EnvelopeTransformer)

	humaAPI := humachi.New(router, humaConfig)
	RegisterErrorHandler()

	s := &Server{
		store:           st,
		services:        services,
		config:          cfg,
		router:          router,
		api:             humaAPI,
		logger:          logger,
		authRateLimiter: NewRateLimiter(100, time.Minute, 50),
	}

	s.registerHealthRoutes()
	s.registerAuthRoutes()
	s.registerUserRoutes()
	s.registerBookRoutes()
	s.registerDiscoveryRoutes()
	s.registerSearchRoutes()
	s.registerRecommendRoutes()
	s.registerBookshelfRoutes()

	return &testServer{
		Server:       s,
		api:          humatest.Wrap(t, humaAPI),
		tokenService: tokenService,
	}
}

// registerUser creates an account and returns the access token and user ID.
func (ts *testServer) registerUser(t *testing.T, email string) (token string, userID string) {
	t.Helper()

	resp := ts.api.Post("/api/v1/auth/register", map[string]any{
		"email":    email,
		"password": "password123",
		"nickname": "책벌레",
	})
	require.Equal(t, http.StatusOK, resp.Code, "register failed: %s", resp.Body.String())

	var envelope testEnvelope[AuthResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))

	claims, err := ts.tokenService.VerifyAccessToken(envelope.Data.AccessToken)
	require.NoError(t, err)

	return envelope.Data.AccessToken, claims.UserID
}

func TestHealthCheck(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/health")
	assert.Equal(t, http.StatusOK, resp.Code)

	var envelope testEnvelope[HealthResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))

	assert.Equal(t, EnvelopeVersion, envelope.Version)
	assert.True(t, envelope.Success)
	assert.Equal(t, "ok", envelope.Data.Status)
	assert.Equal(t, len(domain.EmotionTags), envelope.Data.CatalogSize)
}

func TestProtectedRoutesRequireAuth(t *testing.T) {
	ts := setupTestServer(t)

	paths := []string{
		"/api/v1/books",
		"/api/v1/bookshelf",
		"/api/v1/discovery/daily",
		"/api/v1/search/recent",
		"/api/v1/users/me",
	}
	for _, path := range paths {
		resp := ts.api.Get(path)
		assert.Equal(t, http.StatusUnauthorized, resp.Code, "path %s", path)

		var envelope testErrorEnvelope
		require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
		assert.False(t, envelope.Success)
		assert.Equal(t, "UNAUTHORIZED", envelope.Code)
	}
}

func TestGarbageTokenRejected(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/api/v1/users/me", "Authorization: Bearer not-a-token")
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}
