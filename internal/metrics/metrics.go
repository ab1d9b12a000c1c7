// Package metrics provides lightweight hooks for instrumentation.
package metrics

// Recorder captures metric events for the application.
// Implementations can expose these to Prometheus or keep them in memory.
type Recorder interface {
	// Cache-aside metrics
	IncCacheHit()
	IncCacheMiss()
	IncCacheWriteFailure()
	AddCacheInvalidated(keys int64)

	// Write metrics
	IncUserWrite(op string)    // op: "create", "update", "soft_delete", "hard_delete"
	IncArticleWrite(op string) // op: "create", "update", "delete"

	// Session metrics
	IncLogin(outcome string) // outcome: "success", "invalid_credentials", "not_found"
	IncSessionRevoked()
	AddSessionsSwept(n int64)
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}
