package shared

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"strings"

	"github.com/google/uuid"
)

type contextKey struct{}

// TraceIDHeader carries the trace ID on every response and, when a client
// sends a well-formed one, on the request.
const TraceIDHeader = "X-Trace-ID"

// traceIDBytes gives 32 hex characters.
const traceIDBytes = 16

// SetTraceID stores a newly generated trace ID in ctx.
func SetTraceID(ctx context.Context) context.Context {
	return WithTraceID(ctx, newTraceID())
}

// WithTraceID stores traceID in ctx.
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, contextKey{}, traceID)
}

// GetTraceID returns the trace ID stored in ctx, or "".
func GetTraceID(ctx context.Context) string {
	id, _ := ctx.Value(contextKey{}).(string)
	return id
}

func newTraceID() string {
	b := make([]byte, traceIDBytes)
	if _, err := rand.Read(b); err != nil {
		return strings.ReplaceAll(uuid.NewString(), "-", "")
	}
	return hex.EncodeToString(b)
}
