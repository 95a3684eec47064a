package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestSanitizeKVs(t *testing.T) {
	got := sanitizeKVs([]interface{}{"user_id", "u1", "db_password", "hunter2", "dangling"})
	assert.Equal(t, []interface{}{"user_id", "u1", "db_password", "[REDACTED]", "dangling"}, got)
}

func TestWithScopesFields(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	l := &Logger{SugaredLogger: zap.New(core).Sugar()}

	l.With("component", "linkdb").Info("bookmark created", "id", int64(3))

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "linkdb", fields["component"])
	assert.Equal(t, int64(3), fields["id"])
}

func TestNewRejectsBadLevel(t *testing.T) {
	_, err := New("dev", "loud")
	assert.Error(t, err)

	l, err := New("prod", "warn")
	require.NoError(t, err)
	assert.NotNil(t, l.SugaredLogger)
}
