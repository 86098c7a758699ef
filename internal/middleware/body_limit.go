package middleware

import (
	"net/http"
	"strings"
)

// BodyLimitOverride raises the request body cap for one path prefix. The
// CSV import route needs room for a whole upload while every other endpoint
// carries small JSON bodies.
type BodyLimitOverride struct {
	PathPrefix string
	MaxBytes   int64
}

// LimitBodyBytesWithOverrides caps request bodies at defaultMax bytes,
// except on paths matching an override. Prefixes are checked against the
// path both with and without the /api mount, so overrides work no matter
// where the sub-router is mounted.
func LimitBodyBytesWithOverrides(defaultMax int64, overrides []BodyLimitOverride) func(http.Handler) http.Handler {
	limitFor := func(path string) int64 {
		trimmed := strings.TrimPrefix(path, "/api")
		for _, o := range overrides {
			if o.PathPrefix == "" || o.MaxBytes <= 0 {
				continue
			}
			if strings.HasPrefix(path, o.PathPrefix) || strings.HasPrefix(trimmed, o.PathPrefix) {
				return o.MaxBytes
			}
		}
		return defaultMax
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if maxBytes := limitFor(r.URL.Path); maxBytes > 0 {
				r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			}
			next.ServeHTTP(w, r)
		})
	}
}
