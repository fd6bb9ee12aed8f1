package auth

import (
	"bufio"
	"database/sql"
	"encoding/gob"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookstore/internal/config"
	"github.com/mrlokans/bookstore/internal/entities"
	"github.com/mrlokans/bookstore/internal/logger"
)

// SessionCookieName is the cookie carrying the session token.
const SessionCookieName = "bookstore_session"

const (
	sessionKeyUser         = "user"
	defaultSessionLifetime = 24 * time.Hour
)

// sessionsSchema is the table layout scs/sqlite3store expects.
const sessionsSchema = `CREATE TABLE IF NOT EXISTS sessions (
	token TEXT PRIMARY KEY,
	data BLOB NOT NULL,
	expiry REAL NOT NULL
);
CREATE INDEX IF NOT EXISTS sessions_expiry_idx ON sessions(expiry);`

// SessionUser is what a session remembers about the signed-in user.
// Staff status is re-read from the database on every request.
type SessionUser struct {
	ID       uint
	Username string
	LoginAt  time.Time
}

func init() {
	gob.Register(SessionUser{})
}

// SessionManager keeps cookie sessions in the application database.
type SessionManager struct {
	*scs.SessionManager
}

// NewSessionManager creates the sessions table if needed and returns a
// manager storing sessions in it. sqlDB is the connection behind gorm.
func NewSessionManager(sqlDB *sql.DB, cfg config.Auth) (*SessionManager, error) {
	if _, err := sqlDB.Exec(sessionsSchema); err != nil {
		return nil, fmt.Errorf("failed to create sessions table: %w", err)
	}

	lifetime := cfg.SessionLifetime
	if lifetime <= 0 {
		lifetime = defaultSessionLifetime
	}

	sm := scs.New()
	sm.Store = sqlite3store.New(sqlDB)
	sm.Lifetime = lifetime
	sm.IdleTimeout = lifetime / 2
	sm.Cookie = scs.SessionCookie{
		Name:     SessionCookieName,
		Path:     "/",
		HttpOnly: true,
		Secure:   cfg.SecureCookies,
		SameSite: http.SameSiteStrictMode,
		Persist:  true,
	}

	return &SessionManager{SessionManager: sm}, nil
}

// CreateSession stores user in a fresh session token, so a token planted
// before login is never promoted.
func (sm *SessionManager) CreateSession(r *http.Request, user *entities.User) error {
	ctx := r.Context()
	if err := sm.RenewToken(ctx); err != nil {
		return fmt.Errorf("failed to renew session token: %w", err)
	}
	sm.Put(ctx, sessionKeyUser, SessionUser{ID: user.ID, Username: user.Username, LoginAt: time.Now()})
	return nil
}

// DestroySession drops the session; the cookie is cleared on the response.
func (sm *SessionManager) DestroySession(r *http.Request) error {
	return sm.Destroy(r.Context())
}

// SessionUser returns the user stored in the request's session, if any.
func (sm *SessionManager) SessionUser(r *http.Request) (SessionUser, bool) {
	u, ok := sm.Get(r.Context(), sessionKeyUser).(SessionUser)
	return u, ok && u.ID != 0
}

// GetUserID returns the session's user id, or 0 for anonymous requests.
func (sm *SessionManager) GetUserID(r *http.Request) uint {
	u, _ := sm.SessionUser(r)
	return u.ID
}

// SessionLoadSave loads the session named by the request cookie and commits
// it just before the response headers are written. Handlers that touch the
// session must run after it.
func (sm *SessionManager) SessionLoadSave() gin.HandlerFunc {
	return func(c *gin.Context) {
		var token string
		if cookie, err := c.Request.Cookie(sm.Cookie.Name); err == nil {
			token = cookie.Value
		}

		ctx, err := sm.Load(c.Request.Context(), token)
		if err != nil {
			logger.For(c.Request.Context()).WithError(err).Error("Failed to load session")
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			return
		}
		c.Request = c.Request.WithContext(ctx)

		w := &committingWriter{ResponseWriter: c.Writer, commit: func(rw http.ResponseWriter) {
			sm.commit(c.Request, rw)
		}}
		c.Writer = w

		c.Next()

		// Nothing was written (e.g. a bare c.Status); commit anyway.
		w.flush()
	}
}

// commit persists a modified session and sets or clears its cookie.
func (sm *SessionManager) commit(r *http.Request, w http.ResponseWriter) {
	ctx := r.Context()
	switch sm.Status(ctx) {
	case scs.Modified:
		token, expiry, err := sm.Commit(ctx)
		if err != nil {
			logger.For(ctx).WithError(err).Error("Failed to commit session")
			return
		}
		sm.WriteSessionCookie(ctx, w, token, expiry)
	case scs.Destroyed:
		sm.WriteSessionCookie(ctx, w, "", time.Time{})
	}
}

// committingWriter runs commit once, before the first header or body byte.
type committingWriter struct {
	gin.ResponseWriter
	commit    func(http.ResponseWriter)
	committed bool
}

func (w *committingWriter) flush() {
	if w.committed {
		return
	}
	w.committed = true
	w.commit(w.ResponseWriter)
}

func (w *committingWriter) WriteHeader(code int) {
	w.flush()
	w.ResponseWriter.WriteHeader(code)
}

func (w *committingWriter) WriteHeaderNow() {
	w.flush()
	w.ResponseWriter.WriteHeaderNow()
}

func (w *committingWriter) Write(b []byte) (int, error) {
	w.flush()
	return w.ResponseWriter.Write(b)
}

func (w *committingWriter) WriteString(s string) (int, error) {
	w.flush()
	return w.ResponseWriter.WriteString(s)
}

func (w *committingWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	return w.ResponseWriter.Hijack()
}
