package middleware

import (
	"net/http"
	"time"

	"github.com/zatekoja/medassist/internal/infrastructure/observability"
)

// PrometheusMiddleware records request count, latency and in-flight requests
func PrometheusMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		done := observability.TrackInFlight()
		defer done()

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rw, r)

		observability.ObserveHTTPRequest(r.Method, routeOf(r), rw.statusCode, time.Since(start))
	})
}
