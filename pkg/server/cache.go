package server

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"strconv"
	"time"

	"mercator-hq/routecost/pkg/config"
	"mercator-hq/routecost/pkg/telemetry/metrics"

	"github.com/dgraph-io/ristretto/v2"
)

const cacheName = "responses"

// CacheHeader reports whether a response was served from cache.
const CacheHeader = "X-Cache"

type cachedResponse struct {
	status int
	body   []byte
}

// responseCache holds rendered JSON responses. Every entry costs 1, so
// MaxEntries bounds the entry count.
type responseCache struct {
	c       *ristretto.Cache[string, cachedResponse]
	ttl     time.Duration
	metrics *metrics.Collector
}

func newResponseCache(cfg config.CacheConfig, collector *metrics.Collector) (*responseCache, error) {
	maxEntries := cfg.MaxEntries
	if maxEntries <= 0 {
		maxEntries = config.DefaultCacheMaxEntries
	}

	rc := &responseCache{ttl: cfg.TTL, metrics: collector}
	c, err := ristretto.NewCache(&ristretto.Config[string, cachedResponse]{
		NumCounters: maxEntries * 10,
		MaxCost:     maxEntries,
		BufferItems: 64,
		Metrics:     true,
		OnEvict: func(*ristretto.Item[cachedResponse]) {
			rc.metrics.RecordCacheEviction(cacheName)
		},
	})
	if err != nil {
		return nil, err
	}
	rc.c = c
	return rc, nil
}

func (rc *responseCache) get(key string) (cachedResponse, bool) {
	v, ok := rc.c.Get(key)
	if ok {
		rc.metrics.RecordCacheHit(cacheName)
	} else {
		rc.metrics.RecordCacheMiss(cacheName)
	}
	return v, ok
}

func (rc *responseCache) set(key string, v cachedResponse) {
	if rc.ttl > 0 {
		rc.c.SetWithTTL(key, v, 1, rc.ttl)
	} else {
		rc.c.Set(key, v, 1)
	}
	// Make the entry visible to the next request.
	rc.c.Wait()
	rc.metrics.UpdateCacheSize(cacheName, rc.len())
}

func (rc *responseCache) len() int {
	m := rc.c.Metrics
	if m == nil {
		return 0
	}
	return int(m.KeysAdded() - m.KeysEvicted())
}

// Clear drops every entry.
func (rc *responseCache) Clear() {
	rc.c.Clear()
	rc.metrics.UpdateCacheSize(cacheName, 0)
}

// Close releases the cache goroutines.
func (rc *responseCache) Close() {
	rc.c.Close()
}

// cacheKey combines the configuration generation, the operation and a hash
// of the request body and query.
func cacheKey(generation uint64, op string, r *http.Request, body []byte) string {
	h := sha256.New()
	h.Write([]byte(r.URL.RawQuery))
	h.Write([]byte{0})
	h.Write(body)
	return strconv.FormatUint(generation, 10) + ":" + op + ":" + hex.EncodeToString(h.Sum(nil))
}

// bufferedWriter records a handler's response so it can be cached.
type bufferedWriter struct {
	header http.Header
	status int
	body   bytes.Buffer
}

func (bw *bufferedWriter) Header() http.Header { return bw.header }

func (bw *bufferedWriter) WriteHeader(code int) {
	if bw.status == 0 {
		bw.status = code
	}
}

func (bw *bufferedWriter) Write(b []byte) (int, error) {
	if bw.status == 0 {
		bw.status = http.StatusOK
	}
	return bw.body.Write(b)
}

// cached serves successful responses of next from the response cache.
// Error responses are never stored.
func (s *Server) cached(op string, next http.HandlerFunc) http.HandlerFunc {
	if s.cache == nil {
		return next
	}

	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxBodyBytes()))
		if err != nil {
			writeBodyError(w, err)
			return
		}
		r.Body = io.NopCloser(bytes.NewReader(body))

		key := cacheKey(s.svc.Generation(), op, r, body)
		if hit, ok := s.cache.get(key); ok {
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set(CacheHeader, "HIT")
			w.WriteHeader(hit.status)
			_, _ = w.Write(hit.body)
			return
		}

		bw := &bufferedWriter{header: w.Header()}
		next(bw, r)
		if bw.status == 0 {
			bw.status = http.StatusOK
		}

		if bw.status == http.StatusOK {
			s.cache.set(key, cachedResponse{status: bw.status, body: bw.body.Bytes()})
		}
		w.Header().Set(CacheHeader, "MISS")
		w.WriteHeader(bw.status)
		_, _ = w.Write(bw.body.Bytes())
	}
}
