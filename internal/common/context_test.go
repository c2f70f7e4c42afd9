package common

import (
	"context"
	"testing"
)

func TestRequestIDRoundTrip(t *testing.T) {
	ctx := WithRequestID(context.Background(), "abc-123")
	if got := RequestIDFromContext(ctx); got != "abc-123" {
		t.Fatalf("expected abc-123, got %q", got)
	}
	if got := RequestIDFromContext(context.Background()); got != "" {
		t.Fatalf("expected empty id on bare context, got %q", got)
	}
}

func TestEnsureRequestID(t *testing.T) {
	ctx, id := EnsureRequestID(context.Background())
	if id == "" {
		t.Fatal("expected a minted request id")
	}
	if got := RequestIDFromContext(ctx); got != id {
		t.Fatalf("context id %q does not match returned id %q", got, id)
	}

	// An existing id is kept, not replaced.
	ctx2, id2 := EnsureRequestID(ctx)
	if id2 != id {
		t.Fatalf("expected existing id %q preserved, got %q", id, id2)
	}
	if RequestIDFromContext(ctx2) != id {
		t.Fatalf("context lost its id")
	}
}
