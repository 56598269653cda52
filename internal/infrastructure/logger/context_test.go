package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestWithContext_FromContext(t *testing.T) {
	logger := zap.NewNop()
	ctx := WithContext(context.Background(), logger)

	retrieved := FromContext(ctx)
	assert.Same(t, logger, retrieved)
}

func TestFromContext_NotFound(t *testing.T) {
	retrieved := FromContext(context.Background())
	assert.NotNil(t, retrieved)
}

func TestWithRequestID(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	logger := zap.New(core)

	ctx, reqLogger := WithRequestID(context.Background(), logger, "req-123")

	assert.Equal(t, "req-123", GetRequestID(ctx))
	assert.Same(t, reqLogger, FromContext(ctx))

	reqLogger.Info("test message")
	entries := logs.All()
	assert.Len(t, entries, 1)
	assert.Equal(t, "req-123", entries[0].ContextMap()["request_id"])
}

func TestWithActor(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	logger := zap.New(core)

	ctx, actorLogger := WithActor(context.Background(), logger, "user-456", "supplier")

	assert.Equal(t, "user-456", GetUserID(ctx))
	assert.Equal(t, "supplier", GetRole(ctx))

	actorLogger.Info("test")
	entries := logs.All()
	assert.Len(t, entries, 1)
	assert.Equal(t, "user-456", entries[0].ContextMap()["user_id"])
	assert.Equal(t, "supplier", entries[0].ContextMap()["role"])
}

func TestGetRequestID_NotFound(t *testing.T) {
	assert.Empty(t, GetRequestID(context.Background()))
}

func TestGetUserID_NotFound(t *testing.T) {
	assert.Empty(t, GetUserID(context.Background()))
}

func TestContextKeys_Distinct(t *testing.T) {
	assert.NotEqual(t, RequestIDKey, UserIDKey)
	assert.NotEqual(t, UserIDKey, RoleKey)
	assert.NotEqual(t, LoggerKey, RequestIDKey)
}

func TestEnrichmentChaining(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	logger := zap.New(core)

	ctx := context.Background()
	ctx, logger = WithRequestID(ctx, logger, "req-1")
	ctx, logger = WithActor(ctx, logger, "user-1", "admin")

	assert.Equal(t, "req-1", GetRequestID(ctx))
	assert.Equal(t, "user-1", GetUserID(ctx))
	assert.Equal(t, "admin", GetRole(ctx))

	logger.Info("chained")
	entries := logs.All()
	assert.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "req-1", fields["request_id"])
	assert.Equal(t, "user-1", fields["user_id"])
	assert.Equal(t, "admin", fields["role"])
}
