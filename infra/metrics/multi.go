package metrics

import (
	"time"

	coremetrics "github.com/railops/console/core/metrics"
)

// MultiSink fans every event out to all configured sinks.
type MultiSink struct {
	sinks []coremetrics.Sink
}

// NewMultiSink combines sinks into one.
func NewMultiSink(sinks ...coremetrics.Sink) *MultiSink {
	return &MultiSink{sinks: sinks}
}

func (m *MultiSink) RecordPollSuccess(resource string, latency time.Duration) {
	for _, s := range m.sinks {
		s.RecordPollSuccess(resource, latency)
	}
}

func (m *MultiSink) RecordPollError(resource string) {
	for _, s := range m.sinks {
		s.RecordPollError(resource)
	}
}

func (m *MultiSink) RecordPushMessage() {
	for _, s := range m.sinks {
		s.RecordPushMessage()
	}
}

func (m *MultiSink) RecordPushReconnect() {
	for _, s := range m.sinks {
		s.RecordPushReconnect()
	}
}

func (m *MultiSink) RecordSnapshotIngest(changedTrains int) {
	for _, s := range m.sinks {
		s.RecordSnapshotIngest(changedTrains)
	}
}

func (m *MultiSink) RecordBaselinePromotion() {
	for _, s := range m.sinks {
		s.RecordBaselinePromotion()
	}
}

func (m *MultiSink) RecordEstimatorFallback() {
	for _, s := range m.sinks {
		s.RecordEstimatorFallback()
	}
}

func (m *MultiSink) RecordOverrideCommit(accepted bool) {
	for _, s := range m.sinks {
		s.RecordOverrideCommit(accepted)
	}
}
