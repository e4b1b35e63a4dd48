package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestSanitizeRedactsCredentials(t *testing.T) {
	out := sanitizeKVs([]interface{}{"api_token", "abc", "course", "MATH 222", "Authorization", "Token abc", "dangling"})
	assert.Equal(t, []interface{}{"api_token", "[REDACTED]", "course", "MATH 222", "Authorization", "[REDACTED]", "dangling"}, out)
}

func TestLoggerWritesRedactedFields(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	l := &Logger{SugaredLogger: zap.New(core).Sugar()}

	l.With("stage", "grades").Info("request", "db_password", "hunter2", "status", 404)

	entries := logs.All()
	if assert.Len(t, entries, 1) {
		fields := entries[0].ContextMap()
		assert.Equal(t, "[REDACTED]", fields["db_password"])
		assert.Equal(t, "grades", fields["stage"])
		assert.EqualValues(t, 404, fields["status"])
	}
}
