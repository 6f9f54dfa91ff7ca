package ctxutil

import (
	"context"
	"testing"
)

func TestWithRequestID_And_RequestIDFromCtx(t *testing.T) {
	t.Parallel()

	ctx := WithRequestID(context.Background(), "req-123")

	got := RequestIDFromCtx(ctx)
	if got != "req-123" {
		t.Fatalf("expected req-123, got %s", got)
	}
}

func TestRequestIDFromCtx_EmptyContext(t *testing.T) {
	t.Parallel()

	got := RequestIDFromCtx(context.Background())
	if got != "" {
		t.Fatalf("expected empty string, got %s", got)
	}
}

func TestRequestIDFromCtx_WrongType(t *testing.T) {
	t.Parallel()

	ctx := context.WithValue(context.Background(), ctxKey("request_id"), 42)

	if got := RequestIDFromCtx(ctx); got != "" {
		t.Fatalf("expected empty string, got %s", got)
	}
}

func TestLanguageSlot(t *testing.T) {
	t.Parallel()

	slot := &LanguageSlot{}
	ctx := WithLanguageSlot(context.Background(), slot)

	if got := LanguageFromCtx(ctx); got != "" {
		t.Fatalf("expected empty code before SetLanguage, got %s", got)
	}

	SetLanguage(ctx, "polish")

	if got := LanguageFromCtx(ctx); got != "polish" {
		t.Fatalf("expected pl, got %s", got)
	}
	if slot.Code != "polish" {
		t.Fatalf("expected slot to be filled, got %s", slot.Code)
	}
}

func TestSetLanguage_NoSlot(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	SetLanguage(ctx, "polish")

	if got := LanguageFromCtx(ctx); got != "" {
		t.Fatalf("expected empty string without slot, got %s", got)
	}
}
