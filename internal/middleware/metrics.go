package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/student-profile-api/internal/service"
)

const unmatchedRoute = "unmatched"

// requestObserver is the subset of the metrics service the middleware feeds.
type requestObserver interface {
	ObserveHTTPRequest(method, path string, status int, duration time.Duration)
	ObserveStream(path string, duration time.Duration)
}

// Metrics records one observation per request. Event streams are reported by
// lifetime instead of latency and paths listed in skip are not recorded.
func Metrics(metricsSvc *service.MetricsService, skip ...string) gin.HandlerFunc {
	if metricsSvc == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return observe(metricsSvc, skip)
}

func observe(obs requestObserver, skip []string) gin.HandlerFunc {
	skipped := make(map[string]struct{}, len(skip))
	for _, p := range skip {
		skipped[p] = struct{}{}
	}

	return func(c *gin.Context) {
		if _, ok := skipped[c.Request.URL.Path]; ok {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()
		elapsed := time.Since(start)

		route := c.FullPath()
		if route == "" {
			route = unmatchedRoute
		}
		if isEventStream(c) {
			obs.ObserveStream(route, elapsed)
			return
		}
		obs.ObserveHTTPRequest(c.Request.Method, route, c.Writer.Status(), elapsed)
	}
}

func isEventStream(c *gin.Context) bool {
	return strings.HasPrefix(c.Writer.Header().Get("Content-Type"), "text/event-stream")
}
