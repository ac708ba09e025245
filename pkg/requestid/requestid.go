// Package requestid threads a correlation id through one pipeline run. The id
// is generated when a notification arrives and attached to every log line,
// output artifact and outbound event produced by that run.
package requestid

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

type contextKey string

const RequestIDKey contextKey = "request_id"

// Generate creates a new unique correlation id.
func Generate() string {
	return uuid.New().String()
}

// ToContext adds a correlation id to the context.
func ToContext(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

// FromContext extracts the correlation id from the context.
// Returns empty string if none is set.
func FromContext(ctx context.Context) string {
	if requestID, ok := ctx.Value(RequestIDKey).(string); ok {
		return requestID
	}
	return ""
}

// FromContextOrNew returns the correlation id from the context, generating a
// fresh one when the context carries none.
func FromContextOrNew(ctx context.Context) string {
	if requestID := FromContext(ctx); requestID != "" {
		return requestID
	}
	return Generate()
}

// FromRequest extracts the correlation id from the HTTP request context.
// Returns empty string if none is set.
func FromRequest(r *http.Request) string {
	return FromContext(r.Context())
}
