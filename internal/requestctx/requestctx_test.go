package requestctx

import (
	"context"
	"testing"
)

func TestRequestIDRoundTrip(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req-42")
	if got := GetRequestID(ctx); got != "req-42" {
		t.Fatalf("request id = %q, want req-42", got)
	}
}

func TestRequestIDAbsent(t *testing.T) {
	if got := GetRequestID(context.Background()); got != "" {
		t.Fatalf("request id = %q, want empty for background work", got)
	}
}
