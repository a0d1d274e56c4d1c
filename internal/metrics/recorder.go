// Package metrics exposes Prometheus counters and histograms for the API,
// the write queues and the rollover job. A nil *Recorder is valid and records
// nothing.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "streak_engine"

type Recorder struct {
	registry *prom.Registry

	httpRequests    *prom.CounterVec
	httpDuration    *prom.HistogramVec
	toggles         *prom.CounterVec
	rollovers       *prom.CounterVec
	rolloverLatency prom.Histogram
	queueDepth      *prom.GaugeVec
	queueOps        *prom.CounterVec
	reminders       *prom.CounterVec
}

// NewRecorder registers every metric on reg. A nil reg gets a fresh registry.
func NewRecorder(reg *prom.Registry) *Recorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}

	r := &Recorder{
		registry: reg,
		httpRequests: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total HTTP requests",
		}, []string{"method", "path", "status"}),
		httpDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Request duration seconds",
			Buckets:   prom.DefBuckets,
		}, []string{"method", "path"}),
		toggles: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "toggles_total",
			Help:      "Habit toggles by resulting status",
		}, []string{"result"}),
		rollovers: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "rollover_runs_total",
			Help:      "Daily rollover runs by outcome",
		}, []string{"outcome"}),
		rolloverLatency: prom.NewHistogram(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "rollover_duration_seconds",
			Help:      "Duration of a daily rollover run including retries",
			Buckets:   prom.DefBuckets,
		}),
		queueDepth: prom.NewGaugeVec(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "write_queue_depth",
			Help:      "Pending operations in a write queue",
		}, []string{"queue"}),
		queueOps: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "write_queue_operations_total",
			Help:      "Write queue operations by result",
		}, []string{"queue", "result"}),
		reminders: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "reminders_sent_total",
			Help:      "Reminder notifications by slot and result",
		}, []string{"slot", "result"}),
	}

	reg.MustRegister(
		r.httpRequests, r.httpDuration, r.toggles, r.rollovers,
		r.rolloverLatency, r.queueDepth, r.queueOps, r.reminders,
	)
	return r
}

func result(ok bool) string {
	if ok {
		return "success"
	}
	return "failed"
}

func (r *Recorder) ObserveHTTPRequest(method, path string, status int, d time.Duration) {
	if r == nil {
		return
	}
	r.httpRequests.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	r.httpDuration.WithLabelValues(method, path).Observe(d.Seconds())
}

func (r *Recorder) IncToggle(done bool) {
	if r == nil {
		return
	}
	label := "undone"
	if done {
		label = "done"
	}
	r.toggles.WithLabelValues(label).Inc()
}

// ObserveRollover records one rollover run. outcome is success, skipped or failed.
func (r *Recorder) ObserveRollover(outcome string, d time.Duration) {
	if r == nil {
		return
	}
	r.rollovers.WithLabelValues(outcome).Inc()
	r.rolloverLatency.Observe(d.Seconds())
}

func (r *Recorder) SetQueueDepth(queue string, n int) {
	if r == nil {
		return
	}
	r.queueDepth.WithLabelValues(queue).Set(float64(n))
}

func (r *Recorder) IncQueueOp(queue string, ok bool) {
	if r == nil {
		return
	}
	r.queueOps.WithLabelValues(queue, result(ok)).Inc()
}

func (r *Recorder) IncReminder(slot string, ok bool) {
	if r == nil {
		return
	}
	r.reminders.WithLabelValues(slot, result(ok)).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return promhttp.HandlerFor(prom.NewRegistry(), promhttp.HandlerOpts{})
	}
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{EnableOpenMetrics: true})
}
