package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(Config{BaseURL: srv.URL, TimeoutSeconds: 2}), srv
}

func TestScheduleDecode(t *testing.T) {
	payload := `{
		"schedule": [
			{"train_id":"T1","station_id":"S1","assigned_platform":2,
			 "actual_arrival":"2025-06-01T08:05:00","actual_departure":"2025-06-01T08:15:00",
			 "reason":"OVERRIDE: fixed to P2 by controller"}
		],
		"delays_after_min":[5.0],"delays_before_min":[0.0],"reasons":["x"],"conflicts":[]
	}`
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/schedule", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(payload))
	}))

	snap, extras, err := client.Schedule(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, snap.Len())
	entry, ok := snap.ByTrain("T1")
	require.True(t, ok)
	assert.Equal(t, 2, entry.AssignedPlatform)
	assert.True(t, entry.Overridden, "override reason phrase must set the flag")
	assert.Equal(t, []float64{5.0}, extras.DelaysAfterMin)
}

func TestActiveDelaysKeyedByTrain(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"T7":{"delay_type":"weather","delay_minutes":12,"reason":"storm"}}`))
	}))
	delays, err := client.ActiveDelays(context.Background())
	require.NoError(t, err)
	require.Len(t, delays, 1)
	assert.Equal(t, "T7", delays[0].TrainID)
	assert.Equal(t, 12, delays[0].DelayMinutes)
}

func TestOverrideSuccess(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		_, _ = w.Write([]byte(`{
			"status":"success","message":"Override applied","reason":"re-optimized",
			"conflicts_caused":1,"affected_trains":["T2"],
			"updated_schedule":[{"train_id":"T1","station_id":"S1","assigned_platform":3,
				"actual_arrival":"2025-06-01T08:00:00","actual_departure":"2025-06-01T08:10:00"}]
		}`))
	}))
	res, err := client.Override(context.Background(), OverrideRequest{TrainID: "T1", StationID: "S1", NewPlatform: 3})
	require.NoError(t, err)
	assert.True(t, res.Accepted)
	assert.Equal(t, []string{"T2"}, res.AffectedTrains)
	require.NotNil(t, res.UpdatedSchedule)
	assert.Equal(t, 1, res.UpdatedSchedule.Len())
}

func TestOverrideRejectionIsNotAnError(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"detail":"Invalid platform","alternatives":[{"platform":2}],
			"delay_analysis":{"delay_impact_minutes":4.5,"affected_trains":["T2"]}}`))
	}))
	res, err := client.Override(context.Background(), OverrideRequest{TrainID: "T1", StationID: "S1", NewPlatform: 9})
	require.NoError(t, err, "rejection is an expected outcome")
	assert.False(t, res.Accepted)
	require.NotNil(t, res.Rejection)
	assert.Equal(t, "Invalid platform", res.Rejection.Detail)
	require.Len(t, res.Rejection.Alternatives, 1)
	assert.Equal(t, 4.5, res.Rejection.DelayAnalysis.DelayImpactMinutes)
}

func TestOverrideNetworkFailure(t *testing.T) {
	client := New(Config{BaseURL: "http://127.0.0.1:1", TimeoutSeconds: 1})
	_, err := client.Override(context.Background(), OverrideRequest{TrainID: "T1", StationID: "S1", NewPlatform: 2})
	require.Error(t, err, "transport failure must surface as an error")
}

func TestSimulateOverrideUsable(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{
			"status":"simulation_complete",
			"target_train_impact":{"current_delay":2,"predicted_delay":6,"delay_change":4},
			"conflicts_predicted":[{"train_id":"T2"}],
			"total_delay_impact":4,"affected_trains_count":1
		}`))
	}))
	sim, err := client.SimulateOverride(context.Background(), "T1", "S1", 2)
	require.NoError(t, err)
	assert.True(t, sim.Usable)
	assert.Equal(t, 4.0, sim.DeltaMinutes)
	assert.Equal(t, []string{"T2"}, sim.AffectedTrains)
}

func TestSimulateOverrideWithoutImpactBlock(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"status":"simulation_complete","conflicts_predicted":[]}`))
	}))
	sim, err := client.SimulateOverride(context.Background(), "T1", "S1", 2)
	require.NoError(t, err)
	assert.False(t, sim.Usable, "missing impact block must be reported unusable")
}

func TestStationsAndTrains(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/stations":
			_, _ = w.Write([]byte(`[{"id":"S1","platforms":4}]`))
		case "/trains":
			_, _ = w.Write([]byte(`[{"id":"T1","type":"express","priority":1,
				"scheduled_arrival":"2025-06-01T08:00:00","scheduled_departure":"2025-06-01T08:10:00"}]`))
		default:
			http.NotFound(w, r)
		}
	}))
	stations, err := client.Stations(context.Background())
	require.NoError(t, err)
	require.Len(t, stations, 1)
	assert.Equal(t, 4, stations[0].Platforms)

	trains, err := client.Trains(context.Background())
	require.NoError(t, err)
	require.Len(t, trains, 1)
	assert.Equal(t, "express", trains[0].Type)
}

func TestBaselineDecode(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/baseline", r.URL.Path)
		_, _ = w.Write([]byte(`[{"train_id":"T1","station_id":"S1","assigned_platform":1,
			"actual_arrival":"2025-06-01T08:00:00","actual_departure":"2025-06-01T08:10:00"}]`))
	}))
	snap, err := client.Baseline(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, snap.Len())
	entry, ok := snap.ByTrain("T1")
	require.True(t, ok)
	assert.Equal(t, 1, entry.AssignedPlatform)
}

func TestInjectDelayRequestBody(t *testing.T) {
	var got map[string]any
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/inject-delay", r.URL.Path)
		require.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"status":"success"}`))
	}))
	err := client.InjectDelay(context.Background(), "T3", "signal_failure", 8, "points failure at S2")
	require.NoError(t, err)
	assert.Equal(t, "T3", got["train_id"])
	assert.Equal(t, "signal_failure", got["delay_type"])
	assert.Equal(t, 8.0, got["delay_minutes"])
}

func TestClearDelaysUsesDelete(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/clear-delays", r.URL.Path)
		require.Equal(t, http.MethodDelete, r.Method)
		_, _ = w.Write([]byte(`{"status":"success"}`))
	}))
	require.NoError(t, client.ClearDelays(context.Background()))
}

func TestInjectDelayRejectedStatus(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"detail":"Train not found"}`))
	}))
	err := client.InjectDelay(context.Background(), "T9", "manual", 5, "")
	require.Error(t, err)
}

func TestFetchErrorIncludesBody(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`optimizer crashed`))
	}))
	_, err := client.AuditLog(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "optimizer crashed")
}
