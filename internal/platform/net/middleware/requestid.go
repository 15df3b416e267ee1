// Package middleware holds in house middlewares for the listener
package middleware

import (
	"net/http"

	pnet "verigate/internal/platform/net"

	"github.com/google/uuid"
)

// RequestID assigns a uuid to every request lacking an X-Request-ID header and
// mirrors it back on the response
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r.WithContext(pnet.WithRequestID(r.Context(), id)))
	})
}
