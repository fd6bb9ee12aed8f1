// Package auth authenticates API callers.
//
// Two credentials are accepted:
//   - Bearer API tokens ("Authorization: Bearer <token>"), stored as SHA-256 hashes
//   - Cookie sessions created by POST /api/auth/login and stored in sqlite via scs
//
// Anonymous requests pass through Middleware untouched; handlers that need a
// caller use RequireAuth or RequireStaff. A Bearer header that does not
// validate is rejected with 401 instead of falling back to the session.
//
// # Configuration
//
//	AUTH_SESSION_SECRET=<hex-32-bytes>  # CSRF key, auto-generated if empty
//	AUTH_SESSION_LIFETIME=24h           # Session duration
//	AUTH_TOKEN_EXPIRY=720h              # API token expiry (30 days default)
//	AUTH_BCRYPT_COST=12                 # bcrypt cost factor
//	AUTH_SECURE_COOKIES=true            # HTTPS-only cookies
//	AUTH_CSRF_ENABLED=true              # CSRF checks for cookie sessions
//
// # Usage
//
//	authService := auth.NewService(users.NewRepository(db), cfg.Auth)
//	router.Use(sessionManager.SessionLoadSave())
//	router.Use(auth.NewMiddleware(authService, sessionManager).Handler())
//
// Extract the caller in handlers:
//
//	caller := auth.GetCaller(c) // zero UserID for anonymous requests
package auth
