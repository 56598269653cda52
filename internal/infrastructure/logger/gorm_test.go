package logger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	gormlogger "gorm.io/gorm/logger"
)

func newObservedGormLogger(level gormlogger.LogLevel) (*GormLogger, *observer.ObservedLogs) {
	core, recorded := observer.New(zapcore.DebugLevel)
	return NewGormLogger(zap.New(core), level), recorded
}

func traceQuery(sql string, rows int64) func() (string, int64) {
	return func() (string, int64) { return sql, rows }
}

func TestGormLogger_LogMode(t *testing.T) {
	gl, _ := newObservedGormLogger(gormlogger.Info)

	clone, ok := gl.LogMode(gormlogger.Warn).(*GormLogger)
	require.True(t, ok)
	assert.Equal(t, gormlogger.Warn, clone.level)
	assert.Equal(t, gormlogger.Info, gl.level, "mode change must not touch the original")
}

func TestGormLogger_Levels(t *testing.T) {
	t.Run("info passes through with formatting", func(t *testing.T) {
		gl, recorded := newObservedGormLogger(gormlogger.Info)
		gl.Info(context.Background(), "migrating %s", "orders")

		logs := recorded.All()
		require.Len(t, logs, 1)
		assert.Equal(t, "migrating orders", logs[0].Message)
	})

	t.Run("silent suppresses everything", func(t *testing.T) {
		gl, recorded := newObservedGormLogger(gormlogger.Silent)
		gl.Info(context.Background(), "migrating")
		gl.Warn(context.Background(), "slow")
		gl.Error(context.Background(), "broken")
		assert.Empty(t, recorded.All())
	})

	t.Run("warn and error honor the level", func(t *testing.T) {
		gl, recorded := newObservedGormLogger(gormlogger.Error)
		gl.Warn(context.Background(), "suppressed")
		gl.Error(context.Background(), "constraint violated")

		logs := recorded.All()
		require.Len(t, logs, 1)
		assert.Equal(t, zapcore.ErrorLevel, logs[0].Level)
	})
}

func TestGormLogger_Trace(t *testing.T) {
	t.Run("logs failed queries with the error", func(t *testing.T) {
		gl, recorded := newObservedGormLogger(gormlogger.Error)
		gl.Trace(context.Background(), time.Now(), traceQuery("UPDATE orders SET status = ?", 0), errors.New("deadlock detected"))

		logs := recorded.All()
		require.Len(t, logs, 1)
		assert.Equal(t, "query failed", logs[0].Message)
		assert.Equal(t, zapcore.ErrorLevel, logs[0].Level)
	})

	t.Run("record-not-found is never an error", func(t *testing.T) {
		gl, recorded := newObservedGormLogger(gormlogger.Error)
		gl.Trace(context.Background(), time.Now(), traceQuery("SELECT * FROM orders WHERE id = ?", 0), gormlogger.ErrRecordNotFound)
		assert.Empty(t, recorded.All())
	})

	t.Run("warns on queries past the slow threshold", func(t *testing.T) {
		gl, recorded := newObservedGormLogger(gormlogger.Warn)
		gl.slowThreshold = time.Nanosecond

		gl.Trace(context.Background(), time.Now().Add(-time.Second), traceQuery("SELECT * FROM assignments", 40), nil)

		logs := recorded.All()
		require.Len(t, logs, 1)
		assert.Equal(t, "slow query", logs[0].Message)
		assert.Equal(t, zapcore.WarnLevel, logs[0].Level)
	})

	t.Run("traces healthy queries at debug", func(t *testing.T) {
		gl, recorded := newObservedGormLogger(gormlogger.Info)
		gl.Trace(context.Background(), time.Now(), traceQuery("SELECT * FROM qc_checks", 3), nil)

		logs := recorded.All()
		require.Len(t, logs, 1)
		assert.Equal(t, "query", logs[0].Message)
		assert.Equal(t, zapcore.DebugLevel, logs[0].Level)
	})

	t.Run("silent traces nothing", func(t *testing.T) {
		gl, recorded := newObservedGormLogger(gormlogger.Silent)
		gl.Trace(context.Background(), time.Now(), traceQuery("SELECT 1", 1), nil)
		assert.Empty(t, recorded.All())
	})

	t.Run("carries the request id from context", func(t *testing.T) {
		gl, recorded := newObservedGormLogger(gormlogger.Info)
		ctx := context.WithValue(context.Background(), RequestIDKey, "req-trace-7")

		gl.Trace(ctx, time.Now(), traceQuery("SELECT * FROM orders", 12), nil)

		logs := recorded.All()
		require.Len(t, logs, 1)

		found := false
		for _, field := range logs[0].Context {
			if field.Key == "request_id" {
				found = true
				assert.Equal(t, "req-trace-7", field.String)
			}
		}
		assert.True(t, found, "request_id should ride along on SQL traces")
	})
}

func TestMapGormLogLevel(t *testing.T) {
	tests := []struct {
		level    string
		expected gormlogger.LogLevel
	}{
		{"silent", gormlogger.Silent},
		{"error", gormlogger.Error},
		{"warn", gormlogger.Warn},
		{"info", gormlogger.Info},
		{"debug", gormlogger.Info},
		{"", gormlogger.Warn},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, MapGormLogLevel(tt.level), tt.level)
	}
}
