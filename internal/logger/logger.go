// Package logger configures logrus and hands out request-scoped entries.
package logger

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

type ctxKey string

const RequestIDKey ctxKey = "requestId"

// Setup applies the level ("debug", "info", ...) and format ("text" or
// "json") to the standard logrus logger.
func Setup(level, format string, out io.Writer) error {
	lvl, err := logrus.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}
	logrus.SetLevel(lvl)

	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "text":
		logrus.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05",
		})
	case "json":
		logrus.SetFormatter(&logrus.JSONFormatter{})
	default:
		return fmt.Errorf("invalid log format %q", format)
	}

	if out != nil {
		logrus.SetOutput(out)
	}
	return nil
}

// For returns an entry tagged with the request id carried by ctx, if any.
func For(ctx context.Context) *logrus.Entry {
	id := RequestIDFrom(ctx)
	if id == "" {
		return logrus.NewEntry(logrus.StandardLogger())
	}
	return logrus.WithField("request_id", id)
}

func ContextWithID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, RequestIDKey, id)
}

func RequestIDFrom(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(RequestIDKey).(string)
	return id
}

// Track logs msg with its elapsed time when the returned func is called.
func Track(ctx context.Context, msg string) func() {
	start := time.Now()
	return func() {
		dur := time.Since(start)
		entry := For(ctx).WithField("duration", dur.String())

		if dur > 500*time.Millisecond {
			entry.Warnf("%s completed (SLOW)", msg)
		} else {
			entry.Debugf("%s completed", msg)
		}
	}
}
