package mw

import (
	"bytes"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
)

// CachedResponse is a stored GET response.
type CachedResponse struct {
	Status  int         `json:"status"`
	Headers http.Header `json:"headers"`
	Body    []byte      `json:"body"`
}

// ResponseCache stores responses keyed by request URI. Flush bumps the
// generation, and entries are keyed by the generation current when the request
// started, so a response computed before a flush is never served after it.
type ResponseCache interface {
	Get(key string) (CachedResponse, bool)
	Set(key string, resp CachedResponse, ttl time.Duration)
	Flush()
	Generation() int64
}

// MemoryCache is a process-local ResponseCache.
type MemoryCache struct {
	store      *cache.Cache
	generation atomic.Int64
}

// NewMemoryCache creates an in-memory cache with the given default expiration.
func NewMemoryCache(defaultExpiration time.Duration) *MemoryCache {
	return &MemoryCache{store: cache.New(defaultExpiration, 2*defaultExpiration)}
}

func (m *MemoryCache) Get(key string) (CachedResponse, bool) {
	v, found := m.store.Get(key)
	if !found {
		return CachedResponse{}, false
	}
	return v.(CachedResponse), true
}

func (m *MemoryCache) Set(key string, resp CachedResponse, ttl time.Duration) {
	m.store.Set(key, resp, ttl)
}

func (m *MemoryCache) Flush() {
	m.generation.Add(1)
	m.store.Flush()
}

func (m *MemoryCache) Generation() int64 {
	return m.generation.Load()
}

type bodyCacheWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w bodyCacheWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w bodyCacheWriter) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// Cache is a middleware for caching of GET requests.
func Cache(store ResponseCache, duration time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet {
			c.Next()
			return
		}

		key := strconv.FormatInt(store.Generation(), 10) + ":" + c.Request.RequestURI
		if cached, found := store.Get(key); found {
			for k, v := range cached.Headers {
				c.Writer.Header()[k] = v
			}
			c.Writer.Header().Set("X-Cache", "HIT")
			c.Writer.WriteHeader(cached.Status)
			c.Writer.Write(cached.Body)
			c.Abort()
			return
		}

		blw := &bodyCacheWriter{body: bytes.NewBuffer(nil), ResponseWriter: c.Writer}
		c.Writer = blw

		c.Next()

		// Only cache successful responses
		if blw.Status() >= 200 && blw.Status() < 300 {
			headers := blw.Header().Clone()
			// Per-request headers are set again by earlier middleware on a hit.
			headers.Del(RequestIDHeader)
			headers.Del("Access-Control-Allow-Origin")
			headers.Del("Vary")
			store.Set(key, CachedResponse{
				Status:  blw.Status(),
				Headers: headers,
				Body:    blw.body.Bytes(),
			}, duration)
		}
	}
}

// Invalidate flushes the cache after a successful mutating request.
func Invalidate(store ResponseCache) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		if c.Request.Method == http.MethodGet {
			return
		}
		if status := c.Writer.Status(); status >= 200 && status < 300 {
			store.Flush()
		}
	}
}
