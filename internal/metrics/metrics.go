package metrics

import (
	"fmt"
	"io"
	"time"

	"github.com/VictoriaMetrics/metrics"

	"github.com/amiyamandal-dev/blogapi/internal/domain"
	"github.com/amiyamandal-dev/blogapi/internal/repository"
)

// Registry holds the article store metrics
type Registry struct {
	set *metrics.Set
}

// New creates an empty registry
func New() *Registry {
	return &Registry{set: metrics.NewSet()}
}

// ObserveOperation counts an article operation by outcome and records its latency
func (r *Registry) ObserveOperation(op string, outcome domain.Outcome, start time.Time) {
	r.set.GetOrCreateCounter(fmt.Sprintf(`blogapi_article_operations_total{op=%q,outcome=%q}`, op, outcome.String())).Inc()
	r.set.GetOrCreateHistogram(fmt.Sprintf(`blogapi_article_operation_duration_seconds{op=%q}`, op)).UpdateDuration(start)
}

// ObserveRetry counts a retried article operation
func (r *Registry) ObserveRetry(op string) {
	r.set.GetOrCreateCounter(fmt.Sprintf(`blogapi_article_retries_total{op=%q}`, op)).Inc()
}

// RegisterPool exposes the pool's usage as gauges. It must be called once per pool.
func (r *Registry) RegisterPool(driver string, pool repository.Pool) {
	gauge := func(name string, value func(s repository.PoolStats) float64) {
		r.set.NewGauge(fmt.Sprintf(`%s{driver=%q}`, name, driver), func() float64 {
			return value(pool.Stats())
		})
	}

	gauge("blogapi_pool_size", func(s repository.PoolStats) float64 { return float64(s.Size) })
	gauge("blogapi_pool_in_use", func(s repository.PoolStats) float64 { return float64(s.InUse) })
	gauge("blogapi_pool_idle", func(s repository.PoolStats) float64 { return float64(s.Idle) })
	gauge("blogapi_pool_dialed_total", func(s repository.PoolStats) float64 { return float64(s.Dialed) })
	gauge("blogapi_pool_acquired_total", func(s repository.PoolStats) float64 { return float64(s.Acquired) })
	gauge("blogapi_pool_released_total", func(s repository.PoolStats) float64 { return float64(s.Released) })
	gauge("blogapi_pool_failed_total", func(s repository.PoolStats) float64 { return float64(s.Failed) })
}

// WritePrometheus writes the registry and process metrics in Prometheus text format
func (r *Registry) WritePrometheus(w io.Writer) {
	r.set.WritePrometheus(w)
	metrics.WriteProcessMetrics(w)
}
