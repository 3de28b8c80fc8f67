package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
)

const (
	responseMetaKey  = "response_meta"
	processingTimeMs = "processing_time_ms"
)

// responseMeta collects the envelope's meta block while a request is handled.
type responseMeta struct {
	start  time.Time
	fields map[string]interface{}
}

// WithResponseMeta starts the clock and enables SetMeta for the route.
func WithResponseMeta() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(responseMetaKey, &responseMeta{start: time.Now(), fields: map[string]interface{}{}})
		c.Next()
	}
}

// SetMeta records one meta entry. Without WithResponseMeta the entry is still
// kept but no processing time is reported.
func SetMeta(c *gin.Context, key string, value interface{}) {
	if c == nil {
		return
	}
	meta := metaFrom(c)
	if meta == nil {
		meta = &responseMeta{fields: map[string]interface{}{}}
		c.Set(responseMetaKey, meta)
	}
	meta.fields[key] = value
}

// ExtractMeta returns the collected entries plus processing_time_ms, or nil
// when nothing was recorded for the request.
func ExtractMeta(c *gin.Context) map[string]interface{} {
	if c == nil {
		return nil
	}
	meta := metaFrom(c)
	if meta == nil {
		return nil
	}
	if !meta.start.IsZero() {
		meta.fields[processingTimeMs] = time.Since(meta.start).Milliseconds()
	}
	return meta.fields
}

func metaFrom(c *gin.Context) *responseMeta {
	v, ok := c.Get(responseMetaKey)
	if !ok {
		return nil
	}
	meta, _ := v.(*responseMeta)
	return meta
}
