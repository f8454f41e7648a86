// Package traceid threads a per-operation identifier through a
// context.Context so pool and manager log lines can be correlated across
// goroutines without a tracing backend. This supplements the spec's
// lastError ergonomics with the original implementation's notion of a
// current operation context.
package traceid

import (
	"context"

	"github.com/google/uuid"
)

type ctxKey struct{}

// New generates a fresh trace id and attaches it to ctx.
func New(ctx context.Context) context.Context {
	return context.WithValue(ctx, ctxKey{}, uuid.NewString())
}

// From returns the trace id attached to ctx, or "" if none was attached.
func From(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKey{}).(string); ok {
		return v
	}
	return ""
}
