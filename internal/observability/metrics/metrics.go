// Package metrics exposes Prometheus instrumentation for unsubscribe job runs.
// A nil *Recorder is valid and records nothing.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	obserrors "github.com/target/mmk-unsubscribe/internal/observability/errors"
)

// Result label values.
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
	ResultError   = "error"
)

const namespace = "unsubscribe"

// Recorder owns the collectors for job, item and strategy metrics.
type Recorder struct {
	runs          *prometheus.CounterVec
	runDuration   *prometheus.HistogramVec
	items         *prometheus.CounterVec
	attempts      *prometheus.CounterVec
	attemptTiming *prometheus.HistogramVec
	laneInFlight  *prometheus.GaugeVec
	retried       prometheus.Counter
}

// NewRecorder creates the collectors and registers them with reg.
func NewRecorder(reg prometheus.Registerer) (*Recorder, error) {
	r := &Recorder{
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "job_runs_total",
			Help:      "Finished job runs by terminal status and error class.",
		}, []string{"status", "error_class"}),
		runDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "job_run_duration_seconds",
			Help:      "Wall time of a job run from start to terminal status.",
			Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600, 1800},
		}, []string{"status"}),
		items: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "items_total",
			Help:      "Terminal item results by lane, recorded method and status.",
		}, []string{"lane", "method", "status"}),
		attempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "strategy_attempts_total",
			Help:      "Strategy attempts by method and result.",
		}, []string{"method", "result"}),
		attemptTiming: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "strategy_attempt_duration_seconds",
			Help:      "Duration of single strategy attempts.",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10),
		}, []string{"method"}),
		laneInFlight: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "lane_in_flight",
			Help:      "Items currently executing per lane.",
		}, []string{"lane"}),
		retried: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "items_retried_total",
			Help:      "Failed items reset to pending by retry requests.",
		}),
	}

	if reg == nil {
		return r, nil
	}
	for _, c := range []prometheus.Collector{
		r.runs, r.runDuration, r.items, r.attempts, r.attemptTiming, r.laneInFlight, r.retried,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// RunFinished records a run reaching a terminal status.
func (r *Recorder) RunFinished(status string, d time.Duration, err error) {
	if r == nil {
		return
	}
	r.runs.WithLabelValues(status, obserrors.Classify(err)).Inc()
	if d > 0 {
		r.runDuration.WithLabelValues(status).Observe(d.Seconds())
	}
}

// ItemRecorded records the terminal write of one item.
func (r *Recorder) ItemRecorded(lane, method, status string) {
	if r == nil {
		return
	}
	r.items.WithLabelValues(lane, method, status).Inc()
}

// StrategyAttempt records one strategy invocation.
func (r *Recorder) StrategyAttempt(method, result string, d time.Duration) {
	if r == nil {
		return
	}
	r.attempts.WithLabelValues(method, result).Inc()
	r.attemptTiming.WithLabelValues(method).Observe(d.Seconds())
}

// LaneStarted marks an item entering its lane; the returned func marks it leaving.
func (r *Recorder) LaneStarted(lane string) func() {
	if r == nil {
		return func() {}
	}
	g := r.laneInFlight.WithLabelValues(lane)
	g.Inc()
	return g.Dec
}

// ItemsRetried records items reset by a retry request.
func (r *Recorder) ItemsRetried(n int) {
	if r == nil || n <= 0 {
		return
	}
	r.retried.Add(float64(n))
}

// Handler serves the metrics registered with g in the Prometheus text format.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
