package middleware

import (
	"github.com/gin-gonic/gin"
)

const (
	responseMetaKey = "response_meta"
	cacheHitKey     = "cache_hit"
	cacheHeader     = "X-Cache"
)

// Meta is the free-form "meta" object attached to an envelope.
type Meta = map[string]interface{}

// WithResponseMeta gives every request an empty meta object that handlers can fill in.
func WithResponseMeta() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(responseMetaKey, Meta{})
		c.Next()
	}
}

// SetMeta stores a single meta entry for the current response.
func SetMeta(c *gin.Context, key string, value interface{}) {
	if c == nil || key == "" {
		return
	}
	meta := ExtractMeta(c)
	if meta == nil {
		meta = Meta{}
		c.Set(responseMetaKey, meta)
	}
	meta[key] = value
}

// SetCacheHit marks whether the grade summary came from cache, both in meta and in the X-Cache header.
func SetCacheHit(c *gin.Context, hit bool) {
	SetMeta(c, cacheHitKey, hit)
	status := "MISS"
	if hit {
		status = "HIT"
	}
	c.Header(cacheHeader, status)
}

// ExtractMeta returns the meta object for the request, or nil when none was set.
func ExtractMeta(c *gin.Context) Meta {
	if c == nil {
		return nil
	}
	raw, ok := c.Get(responseMetaKey)
	if !ok {
		return nil
	}
	meta, _ := raw.(Meta)
	return meta
}
