package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusRecorder implements Recorder on top of Prometheus collectors.
type PrometheusRecorder struct {
	cacheHits          prometheus.Counter
	cacheMisses        prometheus.Counter
	cacheWriteFailures prometheus.Counter
	cacheInvalidated   prometheus.Counter
	userWrites         *prometheus.CounterVec
	articleWrites      *prometheus.CounterVec
	logins             *prometheus.CounterVec
	sessionsRevoked    prometheus.Counter
	sessionsSwept      prometheus.Counter
}

// NewPrometheus creates a PrometheusRecorder and registers its collectors.
func NewPrometheus(reg prometheus.Registerer) *PrometheusRecorder {
	p := &PrometheusRecorder{
		cacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "articlehub_cache_hits_total",
			Help: "Cache-aside lookups served from Redis.",
		}),
		cacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "articlehub_cache_misses_total",
			Help: "Cache-aside lookups that fell through to the database.",
		}),
		cacheWriteFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "articlehub_cache_write_failures_total",
			Help: "Cache writes after a miss that failed.",
		}),
		cacheInvalidated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "articlehub_cache_invalidated_keys_total",
			Help: "Cache keys removed by write invalidation.",
		}),
		userWrites: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "articlehub_user_writes_total",
			Help: "User writes by operation.",
		}, []string{"op"}),
		articleWrites: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "articlehub_article_writes_total",
			Help: "Article writes by operation.",
		}, []string{"op"}),
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "articlehub_logins_total",
			Help: "Login attempts by outcome.",
		}, []string{"outcome"}),
		sessionsRevoked: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "articlehub_sessions_revoked_total",
			Help: "Sessions revoked by logout.",
		}),
		sessionsSwept: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "articlehub_sessions_swept_total",
			Help: "Expired sessions removed by the sweeper.",
		}),
	}

	reg.MustRegister(
		p.cacheHits,
		p.cacheMisses,
		p.cacheWriteFailures,
		p.cacheInvalidated,
		p.userWrites,
		p.articleWrites,
		p.logins,
		p.sessionsRevoked,
		p.sessionsSwept,
	)

	return p
}

func (p *PrometheusRecorder) IncCacheHit() { p.cacheHits.Inc() }
func (p *PrometheusRecorder) IncCacheMiss() { p.cacheMisses.Inc() }
func (p *PrometheusRecorder) IncCacheWriteFailure() { p.cacheWriteFailures.Inc() }
func (p *PrometheusRecorder) IncSessionRevoked() { p.sessionsRevoked.Inc() }

func (p *PrometheusRecorder) AddCacheInvalidated(keys int64) {
	p.cacheInvalidated.Add(float64(keys))
}

func (p *PrometheusRecorder) IncUserWrite(op string) {
	p.userWrites.WithLabelValues(op).Inc()
}

func (p *PrometheusRecorder) IncArticleWrite(op string) {
	p.articleWrites.WithLabelValues(op).Inc()
}

func (p *PrometheusRecorder) IncLogin(outcome string) {
	p.logins.WithLabelValues(outcome).Inc()
}

func (p *PrometheusRecorder) AddSessionsSwept(n int64) {
	p.sessionsSwept.Add(float64(n))
}

// Handler returns the HTTP handler serving the Prometheus scrape endpoint.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
