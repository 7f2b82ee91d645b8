package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

type contextKey string

// CorrelationIDContextKey is the context key under which the request
// correlation ID is stored.
const CorrelationIDContextKey contextKey = "correlation_id"

// WrapWithCorrelationID wraps an http.Handler with correlation ID middleware.
func WrapWithCorrelationID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		correlationID := extractCorrelationID(r)
		if correlationID == "" {
			correlationID = uuid.New().String()
		}

		w.Header().Set("X-Correlation-ID", correlationID)

		ctx := context.WithValue(r.Context(), CorrelationIDContextKey, correlationID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func extractCorrelationID(r *http.Request) string {
	headers := []string{"X-Correlation-ID", "X-Request-ID", "X-Trace-ID"}
	for _, header := range headers {
		if id := r.Header.Get(header); id != "" {
			return id
		}
	}
	return ""
}
