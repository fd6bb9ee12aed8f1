package auth

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/csrf"
)

// CSRFTokenHeader is the header name for CSRF token in AJAX requests.
const CSRFTokenHeader = "X-CSRF-Token"

const contextKeyCSRFToken = "csrf_token"

// CSRFMiddleware creates a Gin middleware for CSRF protection.
// Requests with a Bearer header skip the check: browsers never attach one
// cross-site, and Middleware rejects the header outright when it does not
// validate, so such a request can never fall back to the session cookie.
// gorilla/csrf itself lets safe methods (GET, HEAD, OPTIONS, TRACE) through.
func CSRFMiddleware(secret []byte, secure bool) gin.HandlerFunc {
	csrfProtect := csrf.Protect(
		secret,
		csrf.Secure(secure),
		csrf.HttpOnly(true),
		csrf.SameSite(csrf.SameSiteStrictMode),
		csrf.Path("/"),
		csrf.RequestHeader(CSRFTokenHeader),
		csrf.ErrorHandler(http.HandlerFunc(csrfErrorHandler)),
	)

	return func(c *gin.Context) {
		if _, ok := BearerToken(c.Request); ok {
			c.Next()
			return
		}

		passed := false
		handler := csrfProtect(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			passed = true
			c.Set(contextKeyCSRFToken, csrf.Token(r))
			c.Request = r
			c.Next()
		}))

		r := c.Request
		if !secure && r.TLS == nil {
			// gorilla/csrf assumes HTTPS and checks the Referer otherwise.
			r = csrf.PlaintextHTTPRequest(r)
		}
		handler.ServeHTTP(c.Writer, r)

		// Rejected requests never reach the inner handler.
		if !passed {
			c.Abort()
		}
	}
}

func csrfErrorHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusForbidden)
	body := map[string]string{"error": "CSRF token invalid or missing"}
	if reason := csrf.FailureReason(r); reason != nil {
		body["reason"] = reason.Error()
	}
	_ = json.NewEncoder(w).Encode(body)
}

// GetCSRFToken retrieves the CSRF token from the Gin context.
// It is empty when CSRF protection is disabled or bypassed.
func GetCSRFToken(c *gin.Context) string {
	return c.GetString(contextKeyCSRFToken)
}
