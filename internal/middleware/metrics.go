package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
)

const unmatchedRoute = "unmatched"

// HTTPObserver receives request measurements. Paths are route patterns, never
// raw URLs, so label cardinality stays bounded.
type HTTPObserver interface {
	ObserveHTTPRequest(method, route string, status int, duration time.Duration)
	TrackInFlight(delta int)
}

// Metrics measures every request except the listed paths, typically the
// scrape endpoint itself.
func Metrics(observer HTTPObserver, skip ...string) gin.HandlerFunc {
	if observer == nil {
		return func(c *gin.Context) { c.Next() }
	}
	skipped := make(map[string]struct{}, len(skip))
	for _, p := range skip {
		skipped[p] = struct{}{}
	}

	return func(c *gin.Context) {
		if _, ok := skipped[c.Request.URL.Path]; ok {
			c.Next()
			return
		}

		observer.TrackInFlight(1)
		defer observer.TrackInFlight(-1)

		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = unmatchedRoute
		}
		observer.ObserveHTTPRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
