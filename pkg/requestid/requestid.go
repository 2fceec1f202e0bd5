package requestid

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type contextKey string

const RequestIDKey contextKey = "request_id"

// Header carries the request ID in both directions.
const Header = "X-Request-Id"

// Generate creates a new unique request ID
func Generate() string {
	return uuid.NewString()
}

// ToContext adds a request ID to the context
func ToContext(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

// FromContext extracts the request ID from the context.
// Returns empty string if request ID is not found.
func FromContext(ctx context.Context) string {
	if requestID, ok := ctx.Value(RequestIDKey).(string); ok {
		return requestID
	}
	return ""
}

func FromRequest(r *http.Request) string {
	return FromContext(r.Context())
}

// Logger returns the named logger, tagged with the request ID of ctx when there is one.
func Logger(ctx context.Context, name string) *zap.SugaredLogger {
	logger := zap.S().Named(name)
	if id := FromContext(ctx); id != "" {
		return logger.With("request_id", id)
	}
	return logger
}
