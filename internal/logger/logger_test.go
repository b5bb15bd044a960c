package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	return entry
}

func TestNewLogger_RoleField(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "test-role", zerolog.DebugLevel)

	l.Info().Msg("hello")

	entry := decode(t, &buf)
	assert.Equal(t, "test-role", entry["role"])
	assert.Equal(t, "hello", entry["message"])
	assert.Contains(t, entry, "time")
}

func TestNew_RespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "test", zerolog.WarnLevel)

	l.Info().Msg("dropped")
	assert.Zero(t, buf.Len())

	l.Warn().Msg("kept")
	assert.NotZero(t, buf.Len())
}

func TestParseLevel(t *testing.T) {
	level, err := ParseLevel("")
	require.NoError(t, err)
	assert.Equal(t, zerolog.InfoLevel, level)

	level, err = ParseLevel("debug")
	require.NoError(t, err)
	assert.Equal(t, zerolog.DebugLevel, level)

	_, err = ParseLevel("loud")
	assert.Error(t, err)
}

func TestNop_DiscardsOutput(t *testing.T) {
	l := Nop()
	require.NotNil(t, l)
	assert.NotPanics(t, func() { l.Error().Msg("nothing") })
}

func TestChildLoggerDoesNotTouchParent(t *testing.T) {
	var buf bytes.Buffer
	parent := New(&buf, "test", zerolog.DebugLevel)
	child := parent.WithStr("trace_id", "abc")

	child.Info().Msg("child")
	assert.Equal(t, "abc", decode(t, &buf)["trace_id"])

	buf.Reset()
	parent.Info().Msg("parent")
	assert.NotContains(t, decode(t, &buf), "trace_id")
}

func TestFromContext(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "ctx", zerolog.DebugLevel)
	ctx := l.WithContext(context.Background())

	FromContext(ctx).Info().Msg("from ctx")
	assert.Equal(t, "ctx", decode(t, &buf)["role"])

	buf.Reset()
	req := httptest.NewRequest("GET", "/", nil).WithContext(ctx)
	FromRequest(req).Info().Msg("from request")
	assert.Equal(t, "from request", decode(t, &buf)["message"])
}
