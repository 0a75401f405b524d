package middleware

import (
	"context"
	"net/http"
)

const unmatchedRoute = "unmatched"

type routeKey struct{}

// routeHolder is filled in by CaptureRoute once the mux has matched. Outer
// middleware reads it after next.ServeHTTP returns.
type routeHolder struct {
	pattern string
}

func withRouteHolder(r *http.Request) *http.Request {
	if _, ok := r.Context().Value(routeKey{}).(*routeHolder); ok {
		return r
	}
	return r.WithContext(context.WithValue(r.Context(), routeKey{}, &routeHolder{}))
}

// CaptureRoute wraps the mux and records the matched pattern
func CaptureRoute(mux http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mux.ServeHTTP(w, r)
		if holder, ok := r.Context().Value(routeKey{}).(*routeHolder); ok {
			holder.pattern = r.Pattern
		}
	})
}

// routeOf returns the matched pattern as a low-cardinality label
func routeOf(r *http.Request) string {
	if holder, ok := r.Context().Value(routeKey{}).(*routeHolder); ok && holder.pattern != "" {
		return holder.pattern
	}
	if r.Pattern != "" {
		return r.Pattern
	}
	return unmatchedRoute
}
