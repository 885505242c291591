package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"
)

// HTTPMetricsMiddleware records count and latency for every request. Paths
// are collapsed to their route shape first so the path label stays bounded
// by the route table instead of growing with customer and user ids.
func HTTPMetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(ww, r)
		ObserveHTTPRequest(r.Method, routeLabel(r.URL.Path), strconv.Itoa(ww.status), time.Since(start))
	})
}

// routeLabel replaces the record-id segment under the customers and users
// collections with {id}; every other path is its own label.
func routeLabel(path string) string {
	for _, prefix := range []string{"/api/customers/", "/api/users/"} {
		rest, ok := strings.CutPrefix(path, prefix)
		if !ok || rest == "" || rest == "invite" {
			continue
		}
		if i := strings.IndexByte(rest, '/'); i >= 0 {
			return prefix + "{id}" + rest[i:]
		}
		return prefix + "{id}"
	}
	return path
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}
