// Package requestctx carries the request id through context so domain
// services can stamp audit events without importing the HTTP layer.
package requestctx

import "context"

type ctxKey string

const requestIDKey ctxKey = "request_id"

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// GetRequestID returns the id set by the request-id middleware, or "" for
// work that did not originate from an HTTP request (jobs, seeds).
func GetRequestID(ctx context.Context) string {
	if value, ok := ctx.Value(requestIDKey).(string); ok {
		return value
	}
	return ""
}
