package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/bookstore/internal/audit"
	"github.com/mrlokans/bookstore/internal/auth"
	"github.com/mrlokans/bookstore/internal/config"
	"github.com/mrlokans/bookstore/internal/database"
	auditstore "github.com/mrlokans/bookstore/internal/database/audit"
	"github.com/mrlokans/bookstore/internal/database/books"
	"github.com/mrlokans/bookstore/internal/database/relations"
	"github.com/mrlokans/bookstore/internal/database/users"
	"github.com/mrlokans/bookstore/internal/entities"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// apiEnv is a fully wired API backed by a fresh sqlite file.
type apiEnv struct {
	t         *testing.T
	router    *gin.Engine
	db        *database.Database
	books     *books.Repository
	relations *relations.Repository
	auth      *auth.Service
	audit     *audit.Service
}

type envOption func(*RouterConfig)

func withRateLimit(rps float64, burst int) envOption {
	return func(cfg *RouterConfig) {
		cfg.RateLimit = config.RateLimit{RPS: rps, Burst: burst}
	}
}

func newAPIEnv(t *testing.T, opts ...envOption) *apiEnv {
	t.Helper()

	db, err := database.NewDatabase(filepath.Join(t.TempDir(), "api.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	authCfg := config.Auth{
		SessionLifetime: time.Hour,
		BcryptCost:      4, // Low cost for faster tests
		CSRFEnabled:     false,
	}
	authService := auth.NewService(users.NewRepository(db.DB), authCfg)

	sqlDB, err := db.DB.DB()
	require.NoError(t, err)
	sm, err := auth.NewSessionManager(sqlDB, authCfg)
	require.NoError(t, err)

	env := &apiEnv{
		t:         t,
		db:        db,
		books:     books.NewRepository(db.DB),
		relations: relations.NewRepository(db.DB),
		auth:      authService,
		audit:     audit.NewService(auditstore.NewRepository(db.DB), true),
	}

	cfg := RouterConfig{
		Database:       db,
		Books:          env.books,
		Relations:      env.relations,
		Audit:          env.audit,
		AuthService:    authService,
		SessionManager: sm,
		AuthConfig:     authCfg,
		Version:        "test",
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	router, stop := NewRouter(cfg)
	t.Cleanup(stop)
	env.router = router
	return env
}

// user creates an account and returns it with a fresh API token.
func (e *apiEnv) user(username string, staff bool) (*entities.User, string) {
	e.t.Helper()
	ctx := context.Background()
	user, err := e.auth.CreateUser(ctx, username, "correct-horse-battery", staff)
	require.NoError(e.t, err)
	token, err := e.auth.GenerateToken(ctx, user.ID)
	require.NoError(e.t, err)
	return user, token
}

func (e *apiEnv) book(name string, price int64, author string, ownerID *uint) *entities.Book {
	e.t.Helper()
	book := &entities.Book{Name: name, Price: entities.NewPrice(price), AuthorName: author, OwnerID: ownerID}
	require.NoError(e.t, e.books.Create(context.Background(), book))
	return book
}

// request sends body (marshalled unless it is a string) with an optional bearer token.
func (e *apiEnv) request(method, path string, body any, token string) *httptest.ResponseRecorder {
	e.t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		require.NoError(e.t, json.NewEncoder(&buf).Encode(b))
	}

	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)
	return rr
}

func mustJSON(t *testing.T, v any) string {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return string(data)
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	return resp
}
