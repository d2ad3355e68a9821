package logging

import (
	"context"
	"strings"

	"github.com/google/uuid"
)

// NoCorrelationID is reported when no correlation id has been assigned.
const NoCorrelationID = "-"

type correlationKey struct{}

// NewCorrelationID returns a fresh 12 hex character run identifier.
func NewCorrelationID() string {
	id := uuid.New()
	return strings.ReplaceAll(id.String(), "-", "")[:12]
}

// ContextWithCorrelationID returns a copy of ctx carrying cid.
func ContextWithCorrelationID(ctx context.Context, cid string) context.Context {
	return context.WithValue(ctx, correlationKey{}, cid)
}

// CorrelationIDFromContext returns the correlation id stored in ctx, or
// NoCorrelationID.
func CorrelationIDFromContext(ctx context.Context) string {
	if cid, ok := ctx.Value(correlationKey{}).(string); ok && cid != "" {
		return cid
	}
	return NoCorrelationID
}

// FromContext returns l tagged with the correlation id carried by ctx.
func (l *Logger) FromContext(ctx context.Context) *Logger {
	return l.WithCorrelationID(CorrelationIDFromContext(ctx))
}
