package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetup(t *testing.T) {
	defer logrus.SetLevel(logrus.InfoLevel)
	defer logrus.SetOutput(logrus.StandardLogger().Out)

	t.Run("json output carries request id", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, Setup("debug", "json", &buf))

		ctx := ContextWithID(context.Background(), "req-123")
		For(ctx).Info("hello")

		var line map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
		assert.Equal(t, "req-123", line["request_id"])
		assert.Equal(t, "hello", line["msg"])
		assert.Equal(t, logrus.DebugLevel, logrus.GetLevel())
	})

	t.Run("invalid level", func(t *testing.T) {
		assert.Error(t, Setup("loud", "text", nil))
	})

	t.Run("invalid format", func(t *testing.T) {
		assert.Error(t, Setup("info", "xml", nil))
	})
}

func TestRequestIDFrom(t *testing.T) {
	assert.Equal(t, "", RequestIDFrom(context.Background()))
	assert.Equal(t, "abc", RequestIDFrom(ContextWithID(context.Background(), "abc")))
}

func TestTrack(t *testing.T) {
	defer logrus.SetLevel(logrus.InfoLevel)
	defer logrus.SetOutput(logrus.StandardLogger().Out)

	var buf bytes.Buffer
	require.NoError(t, Setup("debug", "json", &buf))

	done := Track(ContextWithID(context.Background(), "req-9"), "list books")
	done()

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "list books completed", line["msg"])
	assert.Equal(t, "req-9", line["request_id"])
	assert.Equal(t, "debug", line["level"])
	assert.NotEmpty(t, line["duration"])
}
