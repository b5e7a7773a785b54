package logging

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	level, err := ParseLevel("")
	require.NoError(t, err)
	assert.Equal(t, zerolog.InfoLevel, level)

	level, err = ParseLevel(" DEBUG ")
	require.NoError(t, err)
	assert.Equal(t, zerolog.DebugLevel, level)

	_, err = ParseLevel("loud")
	assert.Error(t, err)
}

func TestNewWriterFiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	log := NewWriter(&buf, zerolog.WarnLevel)
	log.Info().Msg("hidden")
	log.Warn().Str("key", "profile").Msg("shown")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `"message":"shown"`)
	assert.Contains(t, out, `"app":"tuiz"`)
}

func TestNewWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "tuiz.log")
	log, closer, err := New(Options{Level: "info", Path: path})
	require.NoError(t, err)
	log.Info().Msg("hello")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello")
}

func TestContextRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	ctx := IntoContext(context.Background(), NewWriter(&buf, zerolog.InfoLevel))
	log := FromContext(ctx)
	log.Info().Msg("via context")
	assert.Contains(t, buf.String(), "via context")

	nop := FromContext(context.Background())
	nop.Info().Msg("dropped")
	assert.NotContains(t, buf.String(), "dropped")
}
