package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigure_ProductionWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	Configure("production", &buf)
	defer Configure(os.Getenv("ENVIRONMENT"), os.Stderr)

	Info("signed in", "uid", "u-1")
	Debug("hidden in production")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Equal(t, "signed in", entry["msg"])
	assert.Equal(t, "u-1", entry["uid"])
	assert.NotContains(t, buf.String(), "hidden in production")
}

func TestConfigure_DevelopmentIncludesDebug(t *testing.T) {
	var buf bytes.Buffer
	Configure("development", &buf)
	defer Configure(os.Getenv("ENVIRONMENT"), os.Stderr)

	Debug("token refreshed", "uid", "u-2")

	assert.Contains(t, buf.String(), "token refreshed")
	assert.Contains(t, buf.String(), "uid=u-2")
}

func TestFromContext(t *testing.T) {
	var buf bytes.Buffer
	Configure("development", &buf)
	defer Configure(os.Getenv("ENVIRONMENT"), os.Stderr)

	assert.Equal(t, Default(), FromContext(context.Background()))

	scoped := With("op", "login")
	ctx := WithContext(context.Background(), scoped)
	assert.Same(t, scoped, FromContext(ctx))
}
