package metrics

import "time"

// Sink receives operational events from the console's data paths. Recording
// must never block or fail the caller; implementations log and move on.
type Sink interface {
	RecordPollSuccess(resource string, latency time.Duration)
	RecordPollError(resource string)
	RecordPushMessage()
	RecordPushReconnect()
	RecordSnapshotIngest(changedTrains int)
	RecordBaselinePromotion()
	RecordEstimatorFallback()
	RecordOverrideCommit(accepted bool)
}

// NopSink discards all events.
type NopSink struct{}

func (NopSink) RecordPollSuccess(string, time.Duration) {}
func (NopSink) RecordPollError(string)                  {}
func (NopSink) RecordPushMessage()                      {}
func (NopSink) RecordPushReconnect()                    {}
func (NopSink) RecordSnapshotIngest(int)                {}
func (NopSink) RecordBaselinePromotion()                {}
func (NopSink) RecordEstimatorFallback()                {}
func (NopSink) RecordOverrideCommit(bool)               {}
