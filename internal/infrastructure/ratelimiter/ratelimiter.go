// package ratelimiter implements a per-source token bucket for the HTTP
// surface. Sources are identified by a header when present, falling back to
// the remote address.
package ratelimiter

import (
	"math"
	"net/http"
	"sync"
	"time"
)

const (
	defaultSourceKey = "X-RateLimit-Key"
	defaultIdleTTL   = 10 * time.Minute
	janitorInterval  = time.Minute
)

type Limiter interface {
	Allow(sourceKey string) bool
	Remaining(sourceKey string) int
	GetSourceKey(r *http.Request) string
	GetMaxBurst() int
}

type Options struct {
	MaxRatePerSecond int
	MaxBurst         int
	SourceHeaderKey  string

	// IdleTTL controls when an inactive source's bucket is evicted.
	IdleTTL time.Duration
}

type bucket struct {
	tokens     float64
	lastRefill time.Time
}

type tokenBucketLimiter struct {
	ratePerSecond   float64
	maxBurst        int
	sourceHeaderKey string
	idleTTL         time.Duration

	mu      sync.Mutex
	buckets map[string]*bucket
}

func New(options Options) Limiter {
	if options.MaxBurst <= 0 {
		options.MaxBurst = options.MaxRatePerSecond
	}
	if options.SourceHeaderKey == "" {
		options.SourceHeaderKey = defaultSourceKey
	}
	if options.IdleTTL <= 0 {
		options.IdleTTL = defaultIdleTTL
	}

	l := &tokenBucketLimiter{
		ratePerSecond:   float64(options.MaxRatePerSecond),
		maxBurst:        options.MaxBurst,
		sourceHeaderKey: options.SourceHeaderKey,
		idleTTL:         options.IdleTTL,
		buckets:         make(map[string]*bucket),
	}

	go l.janitor()

	return l
}

// Allow consumes one token for the source, refilling first. A source with no
// bucket starts full.
func (l *tokenBucketLimiter) Allow(sourceKey string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	b := l.refillLocked(sourceKey)
	if b.tokens < 1 {
		return false
	}

	b.tokens--
	return true
}

// Remaining reports the whole tokens currently available to the source.
func (l *tokenBucketLimiter) Remaining(sourceKey string) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	return int(math.Floor(l.refillLocked(sourceKey).tokens))
}

func (l *tokenBucketLimiter) GetMaxBurst() int {
	return l.maxBurst
}

func (l *tokenBucketLimiter) GetSourceKey(r *http.Request) string {
	if key := r.Header.Get(l.sourceHeaderKey); key != "" {
		return key
	}
	return r.RemoteAddr
}

func (l *tokenBucketLimiter) refillLocked(sourceKey string) *bucket {
	now := time.Now()

	b, ok := l.buckets[sourceKey]
	if !ok {
		b = &bucket{tokens: float64(l.maxBurst), lastRefill: now}
		l.buckets[sourceKey] = b
		return b
	}

	elapsed := now.Sub(b.lastRefill).Seconds()
	if elapsed > 0 {
		b.tokens = math.Min(float64(l.maxBurst), b.tokens+elapsed*l.ratePerSecond)
		b.lastRefill = now
	}

	return b
}

// janitor evicts buckets whose sources have gone quiet so the map cannot grow
// without bound.
func (l *tokenBucketLimiter) janitor() {
	ticker := time.NewTicker(janitorInterval)
	defer ticker.Stop()

	for range ticker.C {
		cutoff := time.Now().Add(-l.idleTTL)

		l.mu.Lock()
		for key, b := range l.buckets {
			if b.lastRefill.Before(cutoff) {
				delete(l.buckets, key)
			}
		}
		l.mu.Unlock()
	}
}
