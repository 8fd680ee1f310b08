package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

// contextKey keeps middleware context values off the global string namespace.
type contextKey string

const (
	// RequestIDKey is the context key the request ID travels under.
	RequestIDKey contextKey = "request_id"
	// RequestIDHeader carries the request ID in and out of the service.
	RequestIDHeader = "X-Request-ID"
	// maxRequestIDLength caps inbound IDs. Anything longer is replaced
	// instead of being echoed into logs and response headers.
	maxRequestIDLength = 64
)

// RequestID tags every request with an ID for log correlation. An inbound
// X-Request-ID survives into this service's logs so traces minted by the
// dashboard frontend or a proxy stay joined up; oversized or missing IDs
// get a fresh UUID.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" || len(id) > maxRequestIDLength {
			id = uuid.NewString()
		}

		w.Header().Set(RequestIDHeader, id)

		ctx := context.WithValue(r.Context(), RequestIDKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetRequestID returns the request ID, or "" outside the middleware.
func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(RequestIDKey).(string)
	return id
}
