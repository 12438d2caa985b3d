package middleware

import (
	"net/http"
	"time"
)

// RequestObserver records served requests.
type RequestObserver interface {
	ObserveRequest(method, path string, status int, elapsed time.Duration)
}

// Metrics records each request against the route pattern the mux matched.
// Requests that match no route share the "unmatched" label.
func Metrics(obs RequestObserver, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w}
		next.ServeHTTP(rec, r)
		if rec.status == 0 {
			rec.status = http.StatusOK
		}

		// ServeMux sets Pattern on the request it was handed.
		path := r.Pattern
		if path == "" {
			path = "unmatched"
		}
		obs.ObserveRequest(r.Method, path, rec.status, time.Since(start))
	})
}
