package logger

import (
	"context"
	"testing"

	"go.uber.org/zap"
)

func TestContextRoundTrip(t *testing.T) {
	l := zap.NewExample()
	ctx := ContextWithLogger(context.Background(), l)

	if got := FromContext(ctx); got != l {
		t.Fatalf("FromContext returned a different logger: %p != %p", got, l)
	}
}

func TestFromContext_Fallback(t *testing.T) {
	l := FromContext(context.Background())
	if l == nil {
		t.Fatal("expected a no-op logger, got nil")
	}
	l.Info("must not panic")
}
