package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/vortex-fintech/contactform/contact"
	"github.com/vortex-fintech/contactform/submit"
)

// Collector records validation, submission and shutdown metrics. It
// implements submit.Recorder and shutdown.Metrics.
type Collector struct {
	validations       *prometheus.CounterVec
	submissions       *prometheus.CounterVec
	submitLatency     *prometheus.HistogramVec
	rateLimited       prometheus.Counter
	stopTotal         *prometheus.CounterVec
	serveErrors       *prometheus.CounterVec
	serverStopResult  *prometheus.CounterVec
	gracefulDurations prometheus.Histogram
}

var _ submit.Recorder = (*Collector)(nil)

func NewCollector(namespace string) *Collector {
	return &Collector{
		validations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "contact",
			Name:      "validations_total",
			Help:      "Field validations by field and result (ok or the failed rule).",
		}, []string{"field", "result"}),
		submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "contact",
			Name:      "submissions_total",
			Help:      "Submit attempts by outcome.",
		}, []string{"outcome"}),
		submitLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "contact",
			Name:      "submission_duration_seconds",
			Help:      "Time from submit to acknowledgment.",
			Buckets:   []float64{.05, .1, .25, .5, 1, 2, 2.5, 5, 10},
		}, []string{"outcome"}),
		rateLimited: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "rate_limited_total",
			Help:      "Requests rejected by the per-client rate limiter.",
		}),
		stopTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "graceful",
			Name:      "stop_total",
			Help:      "Shutdowns by result (success or force).",
		}, []string{"result"}),
		serveErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "graceful",
			Name:      "serve_errors_total",
			Help:      "Servers that exited with an error.",
		}, []string{"server"}),
		serverStopResult: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "graceful",
			Name:      "server_stop_total",
			Help:      "Per-server stop results.",
		}, []string{"server", "result"}),
		gracefulDurations: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "graceful",
			Name:      "stop_duration_seconds",
			Help:      "Duration of the whole stop sequence.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
}

// Register is shaped for Options.Register.
func (c *Collector) Register(reg prometheus.Registerer) error {
	for _, col := range []prometheus.Collector{
		c.validations, c.submissions, c.submitLatency, c.rateLimited,
		c.stopTotal, c.serveErrors, c.serverStopResult, c.gracefulDurations,
	} {
		if err := registerCollector(reg, col); err != nil {
			return err
		}
	}
	return nil
}

func (c *Collector) ObserveValidation(field contact.Field, res contact.Result) {
	result := "ok"
	if !res.Valid {
		result = string(res.Kind)
	}
	c.validations.WithLabelValues(string(field), result).Inc()
}

// ObserveSubmission counts every outcome; latency is only recorded for
// attempts that reached the submitter.
func (c *Collector) ObserveSubmission(outcome submit.Outcome, elapsed time.Duration) {
	c.submissions.WithLabelValues(string(outcome)).Inc()
	if elapsed > 0 {
		c.submitLatency.WithLabelValues(string(outcome)).Observe(elapsed.Seconds())
	}
}

func (c *Collector) IncRateLimited() { c.rateLimited.Inc() }

func (c *Collector) IncStopTotal(result string) { c.stopTotal.WithLabelValues(result).Inc() }

func (c *Collector) ObserveGracefulDuration(d time.Duration) {
	c.gracefulDurations.Observe(d.Seconds())
}

func (c *Collector) IncServeError(name string) { c.serveErrors.WithLabelValues(name).Inc() }

func (c *Collector) IncServerStopResult(name, result string) {
	c.serverStopResult.WithLabelValues(name, result).Inc()
}
