package http

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/mrlokans/bookstore/internal/auth"
	"github.com/mrlokans/bookstore/internal/logger"
	"github.com/mrlokans/bookstore/internal/metrics"
)

const requestIDHeader = "X-Request-Id"

// RequestIDMiddleware reuses the client's X-Request-Id or assigns a new one,
// echoes it back and stores it in the request context for logging.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(requestIDHeader)
		if requestID == "" || len(requestID) > 128 {
			requestID = uuid.New().String()
		}

		c.Header(requestIDHeader, requestID)
		c.Request = c.Request.WithContext(logger.ContextWithID(c.Request.Context(), requestID))
		c.Next()
	}
}

// AccessLogMiddleware logs one line per request once it has been handled.
func AccessLogMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		entry := logger.For(c.Request.Context()).WithFields(logrus.Fields{
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"status":      c.Writer.Status(),
			"duration_ms": time.Since(start).Milliseconds(),
			"client_ip":   c.ClientIP(),
		})
		if userID := auth.GetUserID(c); userID != 0 {
			entry = entry.WithField("user_id", userID)
		}

		switch {
		case c.Writer.Status() >= 500:
			entry.Error("access")
		case c.Writer.Status() >= 400:
			entry.Warn("access")
		default:
			entry.Info("access")
		}
	}
}

// MetricsMiddleware counts requests and observes their latency per route.
func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		metrics.HTTPRequestsTotal.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(path).Observe(time.Since(start).Seconds())
	}
}
