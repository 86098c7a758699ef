package middleware

import (
	"net/http"

	"github.com/google/uuid"
)

// RequestID tags every request with an id, honoring one supplied by the
// caller so batch clients can correlate an upload with its audit entries.
// The id is echoed back in the X-Request-Id response header.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-Id")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		ctx := WithRequestID(r.Context(), requestID)
		w.Header().Set("X-Request-Id", requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
