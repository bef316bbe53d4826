package ratelimit

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"
)

// Settings configures the limiter. MaxRequests tokens are banked per bucket
// and refill greedily at MaxRequests per RefillPeriod.
type Settings struct {
	MaxRequests     int
	RefillPeriod    time.Duration
	CleanupInterval time.Duration
	Enabled         bool

	// AuthPathPrefix scopes limiting to authentication endpoints;
	// ExcludedPaths are substring-matched exceptions under that prefix.
	AuthPathPrefix string
	ExcludedPaths  []string
}

// bucketEntry is one client's token bucket plus its last-touch timestamp,
// updated atomically so the sweep never contends with admissions.
type bucketEntry struct {
	limiter      *rate.Limiter
	lastAccessed atomic.Int64 // unix nanos
}

func (e *bucketEntry) touch() {
	e.lastAccessed.Store(time.Now().UnixNano())
}

// Limiter keeps one token bucket per client identifier and evicts idle
// buckets on a background sweep. The bucket table is a sync.Map: creation is
// atomic via LoadOrStore and no global lock serializes admissions.
type Limiter struct {
	settings Settings
	buckets  sync.Map // clientKey -> *bucketEntry

	stopSweep chan struct{}
	wg        sync.WaitGroup
}

func NewLimiter(settings Settings) *Limiter {
	l := &Limiter{
		settings:  settings,
		stopSweep: make(chan struct{}),
	}

	if settings.Enabled && settings.CleanupInterval > 0 {
		l.wg.Add(1)
		go l.sweepLoop()
	}
	return l
}

// Admit consumes one token from the client's bucket, lazily creating it at
// full capacity. Returns false when the bucket is empty. A disabled limiter
// admits everything and creates no buckets.
func (l *Limiter) Admit(clientKey string) bool {
	if !l.settings.Enabled {
		return true
	}

	v, _ := l.buckets.LoadOrStore(clientKey, l.newBucketEntry())
	entry := v.(*bucketEntry)
	entry.touch()
	return entry.limiter.Allow()
}

// ShouldLimit reports whether the path is subject to admission control:
// it must be under the auth prefix and not match any excluded substring.
func (l *Limiter) ShouldLimit(path string) bool {
	if !strings.HasPrefix(path, l.settings.AuthPathPrefix) {
		return false
	}
	for _, excluded := range l.settings.ExcludedPaths {
		if strings.Contains(path, excluded) {
			return false
		}
	}
	return true
}

// BucketCount reports the number of live buckets.
func (l *Limiter) BucketCount() int {
	count := 0
	l.buckets.Range(func(_, _ any) bool {
		count++
		return true
	})
	return count
}

// Close stops the background sweep and waits for it to finish
func (l *Limiter) Close() error {
	close(l.stopSweep)
	l.wg.Wait()
	return nil
}

func (l *Limiter) newBucketEntry() *bucketEntry {
	refill := rate.Limit(float64(l.settings.MaxRequests) / l.settings.RefillPeriod.Seconds())
	entry := &bucketEntry{limiter: rate.NewLimiter(refill, l.settings.MaxRequests)}
	entry.touch()
	return entry
}

// sweepLoop periodically evicts buckets idle beyond the cleanup interval
func (l *Limiter) sweepLoop() {
	defer l.wg.Done()

	ticker := time.NewTicker(l.settings.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			l.evictIdle()
		case <-l.stopSweep:
			return
		}
	}
}

func (l *Limiter) evictIdle() {
	cutoff := time.Now().Add(-l.settings.CleanupInterval).UnixNano()
	l.buckets.Range(func(key, value any) bool {
		entry := value.(*bucketEntry)
		// Racing with a concurrent touch is tolerable: the client just
		// gets a fresh full bucket on its next request.
		if entry.lastAccessed.Load() < cutoff {
			l.buckets.Delete(key)
		}
		return true
	})
}

// ClientID derives the bucket key for a request: the first comma-separated
// X-Forwarded-For element, then X-Real-IP, then the connection address.
func ClientID(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		return strings.TrimSpace(strings.Split(xff, ",")[0])
	}
	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		return realIP
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
