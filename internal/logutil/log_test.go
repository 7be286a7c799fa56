package logutil

import (
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContextLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	ctx := WithLogger(context.Background(), logger.With().Str("request_id", "abc").Logger())

	l := GetOrDefault(ctx)
	l.Info().Msg("hello")
	assert.Contains(t, buf.String(), `"request_id":"abc"`)
	assert.Contains(t, buf.String(), `"message":"hello"`)
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, err := New("loud", "json")
	require.Error(t, err)

	l, err := New("warn", "json")
	require.NoError(t, err)
	assert.Equal(t, zerolog.WarnLevel, l.GetLevel())
}
