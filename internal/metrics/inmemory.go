package metrics

import (
	"sync"
	"sync/atomic"
)

// Snapshot captures current in-memory counters.
type Snapshot struct {
	CacheHits          uint64
	CacheMisses        uint64
	CacheWriteFailures uint64
	CacheInvalidated   int64
	UserWrites         map[string]uint64
	ArticleWrites      map[string]uint64
	Logins             map[string]uint64
	SessionsRevoked    uint64
	SessionsSwept      int64
}

// InMemoryRecorder stores metrics in memory for tests.
type InMemoryRecorder struct {
	cacheHits          uint64
	cacheMisses        uint64
	cacheWriteFailures uint64
	cacheInvalidated   int64
	sessionsRevoked    uint64
	sessionsSwept      int64

	mu            sync.Mutex
	userWrites    map[string]uint64
	articleWrites map[string]uint64
	logins        map[string]uint64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{
		userWrites:    make(map[string]uint64),
		articleWrites: make(map[string]uint64),
		logins:        make(map[string]uint64),
	}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	return Snapshot{
		CacheHits:          atomic.LoadUint64(&m.cacheHits),
		CacheMisses:        atomic.LoadUint64(&m.cacheMisses),
		CacheWriteFailures: atomic.LoadUint64(&m.cacheWriteFailures),
		CacheInvalidated:   atomic.LoadInt64(&m.cacheInvalidated),
		UserWrites:         copyCounts(m.userWrites),
		ArticleWrites:      copyCounts(m.articleWrites),
		Logins:             copyCounts(m.logins),
		SessionsRevoked:    atomic.LoadUint64(&m.sessionsRevoked),
		SessionsSwept:      atomic.LoadInt64(&m.sessionsSwept),
	}
}

// IncCacheHit increments cache hit counter.
func (m *InMemoryRecorder) IncCacheHit() {
	atomic.AddUint64(&m.cacheHits, 1)
}

// IncCacheMiss increments cache miss counter.
func (m *InMemoryRecorder) IncCacheMiss() {
	atomic.AddUint64(&m.cacheMisses, 1)
}

// IncCacheWriteFailure increments the failed cache write counter.
func (m *InMemoryRecorder) IncCacheWriteFailure() {
	atomic.AddUint64(&m.cacheWriteFailures, 1)
}

// AddCacheInvalidated adds to the invalidated key counter.
func (m *InMemoryRecorder) AddCacheInvalidated(keys int64) {
	atomic.AddInt64(&m.cacheInvalidated, keys)
}

// IncUserWrite increments the user write counter for op.
func (m *InMemoryRecorder) IncUserWrite(op string) {
	m.inc(m.userWrites, op)
}

// IncArticleWrite increments the article write counter for op.
func (m *InMemoryRecorder) IncArticleWrite(op string) {
	m.inc(m.articleWrites, op)
}

// IncLogin increments the login counter for outcome.
func (m *InMemoryRecorder) IncLogin(outcome string) {
	m.inc(m.logins, outcome)
}

// IncSessionRevoked increments the logout counter.
func (m *InMemoryRecorder) IncSessionRevoked() {
	atomic.AddUint64(&m.sessionsRevoked, 1)
}

// AddSessionsSwept adds to the expired session counter.
func (m *InMemoryRecorder) AddSessionsSwept(n int64) {
	atomic.AddInt64(&m.sessionsSwept, n)
}

func (m *InMemoryRecorder) inc(counts map[string]uint64, label string) {
	m.mu.Lock()
	counts[label]++
	m.mu.Unlock()
}

func copyCounts(src map[string]uint64) map[string]uint64 {
	dst := make(map[string]uint64, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
