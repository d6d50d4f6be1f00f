package ctxlog

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromContext(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	ctx := WithLogger(context.Background(), logger)
	assert.Same(t, logger, FromContext(ctx))

	FromContext(ctx).Info("resolved", "feature", "base-tool")
	assert.Contains(t, buf.String(), "feature=base-tool")
}

func TestFromContext_Default(t *testing.T) {
	assert.Same(t, slog.Default(), FromContext(context.Background()))

	var nilLogger *slog.Logger
	ctx := WithLogger(context.Background(), nilLogger)
	assert.Same(t, slog.Default(), FromContext(ctx))
}
