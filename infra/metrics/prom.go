package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PromSink records console data-path events as Prometheus metrics.
type PromSink struct {
	pollLatency  *prometheus.HistogramVec
	pollErrors   *prometheus.CounterVec
	pushMessages prometheus.Counter
	reconnects   prometheus.Counter
	ingests      prometheus.Counter
	changed      prometheus.Gauge
	promotions   prometheus.Counter
	fallbacks    prometheus.Counter
	overrides    *prometheus.CounterVec
}

// NewPromSink registers console metrics on the provided registerer. If reg
// is nil, the default registerer is used. Already-registered collectors are
// reused.
func NewPromSink(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := &PromSink{
		pollLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "console_poll_duration_seconds",
			Help:    "Duration of successful resource polls",
			Buckets: prometheus.DefBuckets,
		}, []string{"resource"}),
		pollErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "console_poll_errors_total",
			Help: "Total failed resource polls",
		}, []string{"resource"}),
		pushMessages: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "console_push_messages_total",
			Help: "Total applied push-channel position batches",
		}),
		reconnects: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "console_push_reconnects_total",
			Help: "Total push-channel reconnection attempts",
		}),
		ingests: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "console_snapshot_ingests_total",
			Help: "Total schedule snapshots ingested",
		}),
		changed: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "console_changed_trains",
			Help: "Trains changed between baseline and current snapshot",
		}),
		promotions: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "console_baseline_promotions_total",
			Help: "Total snapshot promotions to baseline",
		}),
		fallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "console_estimator_fallbacks_total",
			Help: "Total override estimates served by the local heuristic",
		}),
		overrides: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "console_override_commits_total",
			Help: "Total override commits by outcome",
		}, []string{"accepted"}),
	}
	collectors := []prometheus.Collector{
		s.pollLatency, s.pollErrors, s.pushMessages, s.reconnects,
		s.ingests, s.changed, s.promotions, s.fallbacks, s.overrides,
	}
	for i, cl := range collectors {
		if err := reg.Register(cl); err != nil {
			are, ok := err.(prometheus.AlreadyRegisteredError)
			if !ok {
				return nil, err
			}
			collectors[i] = are.ExistingCollector
		}
	}
	s.pollLatency = collectors[0].(*prometheus.HistogramVec)
	s.pollErrors = collectors[1].(*prometheus.CounterVec)
	s.pushMessages = collectors[2].(prometheus.Counter)
	s.reconnects = collectors[3].(prometheus.Counter)
	s.ingests = collectors[4].(prometheus.Counter)
	s.changed = collectors[5].(prometheus.Gauge)
	s.promotions = collectors[6].(prometheus.Counter)
	s.fallbacks = collectors[7].(prometheus.Counter)
	s.overrides = collectors[8].(*prometheus.CounterVec)
	return s, nil
}

func (s *PromSink) RecordPollSuccess(resource string, latency time.Duration) {
	s.pollLatency.WithLabelValues(resource).Observe(latency.Seconds())
}

func (s *PromSink) RecordPollError(resource string) {
	s.pollErrors.WithLabelValues(resource).Inc()
}

func (s *PromSink) RecordPushMessage() { s.pushMessages.Inc() }

func (s *PromSink) RecordPushReconnect() { s.reconnects.Inc() }

func (s *PromSink) RecordSnapshotIngest(changedTrains int) {
	s.ingests.Inc()
	s.changed.Set(float64(changedTrains))
}

func (s *PromSink) RecordBaselinePromotion() { s.promotions.Inc() }

func (s *PromSink) RecordEstimatorFallback() { s.fallbacks.Inc() }

func (s *PromSink) RecordOverrideCommit(accepted bool) {
	s.overrides.WithLabelValues(strconv.FormatBool(accepted)).Inc()
}
