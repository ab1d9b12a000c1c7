package metrics

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

// NewNoop returns a Recorder that discards all metrics.
func NewNoop() Recorder {
	return &NoopRecorder{}
}

func (n *NoopRecorder) IncCacheHit() {}
func (n *NoopRecorder) IncCacheMiss() {}
func (n *NoopRecorder) IncCacheWriteFailure() {}
func (n *NoopRecorder) AddCacheInvalidated(keys int64) {}
func (n *NoopRecorder) IncUserWrite(op string) {}
func (n *NoopRecorder) IncArticleWrite(op string) {}
func (n *NoopRecorder) IncLogin(outcome string) {}
func (n *NoopRecorder) IncSessionRevoked() {}
func (n *NoopRecorder) AddSessionsSwept(count int64) {}
