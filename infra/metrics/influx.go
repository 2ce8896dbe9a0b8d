package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/railops/console/core/metrics"
	"github.com/railops/console/infra/logger"
)

// InfluxSink writes console events to InfluxDB using the official client's
// non-blocking write API.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPI
	log      logger.Logger
}

// NewInfluxSink creates a sink for the given InfluxDB endpoint.
func NewInfluxSink(url, token, org, bucket string) *InfluxSink {
	client := influxdb2.NewClientWithOptions(url, token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPI(org, bucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback pings the InfluxDB instance and returns a
// NopSink if the health check fails, so a missing metrics store never takes
// the console down.
func NewInfluxSinkWithFallback(url, token, org, bucket string) coremetrics.Sink {
	sink := NewInfluxSink(url, token, org, bucket)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// Close flushes pending writes and releases the client.
func (s *InfluxSink) Close() {
	s.writeAPI.Flush()
	s.client.Close()
}

func (s *InfluxSink) write(p *write.Point) {
	s.writeAPI.WritePoint(p)
}

func (s *InfluxSink) RecordPollSuccess(resource string, latency time.Duration) {
	s.write(write.NewPointWithMeasurement("console_poll").
		AddTag("resource", resource).
		AddTag("outcome", "ok").
		AddField("duration_ms", float64(latency.Milliseconds())).
		SetTime(time.Now()))
}

func (s *InfluxSink) RecordPollError(resource string) {
	s.write(write.NewPointWithMeasurement("console_poll").
		AddTag("resource", resource).
		AddTag("outcome", "error").
		AddField("count", 1).
		SetTime(time.Now()))
}

func (s *InfluxSink) RecordPushMessage() {
	s.write(write.NewPointWithMeasurement("console_push").
		AddTag("event", "message").
		AddField("count", 1).
		SetTime(time.Now()))
}

func (s *InfluxSink) RecordPushReconnect() {
	s.write(write.NewPointWithMeasurement("console_push").
		AddTag("event", "reconnect").
		AddField("count", 1).
		SetTime(time.Now()))
}

func (s *InfluxSink) RecordSnapshotIngest(changedTrains int) {
	s.write(write.NewPointWithMeasurement("console_snapshot").
		AddTag("event", "ingest").
		AddField("changed_trains", changedTrains).
		SetTime(time.Now()))
}

func (s *InfluxSink) RecordBaselinePromotion() {
	s.write(write.NewPointWithMeasurement("console_snapshot").
		AddTag("event", "baseline_promotion").
		AddField("count", 1).
		SetTime(time.Now()))
}

func (s *InfluxSink) RecordEstimatorFallback() {
	s.write(write.NewPointWithMeasurement("console_estimator").
		AddTag("source", "heuristic").
		AddField("count", 1).
		SetTime(time.Now()))
}

func (s *InfluxSink) RecordOverrideCommit(accepted bool) {
	s.write(write.NewPointWithMeasurement("console_override").
		AddTag("accepted", strconv.FormatBool(accepted)).
		AddField("count", 1).
		SetTime(time.Now()))
}
