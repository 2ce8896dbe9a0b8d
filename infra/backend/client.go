// Package backend is the typed HTTP client for the rail-traffic optimizer.
// The optimizer, conflict detector, and scheduling engines live behind this
// boundary; the console only consumes their REST surface.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/railops/console/core/model"
	"github.com/railops/console/infra/logger"
)

// Config defines the optimizer backend connection parameters.
type Config struct {
	BaseURL        string `json:"base_url"`
	TimeoutSeconds int    `json:"timeout_seconds"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = "http://localhost:8000"
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = 10
	}
}

// Validate checks mandatory fields.
func (c Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("base_url is required")
	}
	return nil
}

// Client talks to the optimizer backend over HTTP.
type Client struct {
	base   string
	client *http.Client
	log    logger.Logger
}

// New creates a Client from the configuration.
func New(cfg Config) *Client {
	cfg.SetDefaults()
	return &Client{
		base:   strings.TrimSuffix(cfg.BaseURL, "/"),
		client: &http.Client{Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second},
		log:    logger.New("backend-client"),
	}
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+path, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("fetch %s: %w", path, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("fetch %s: unexpected status %d, body: %s", path, resp.StatusCode, body)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func (c *Client) postJSON(ctx context.Context, method, path string, in, out any) (int, error) {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return 0, fmt.Errorf("encode %s: %w", path, err)
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("request %s: %w", path, err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, fmt.Errorf("read %s: %w", path, err)
	}
	if out != nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			return resp.StatusCode, fmt.Errorf("decode %s: %w", path, err)
		}
	}
	return resp.StatusCode, nil
}

// Trains fetches the loaded train dataset.
func (c *Client) Trains(ctx context.Context) ([]model.Train, error) {
	var trains []model.Train
	if err := c.getJSON(ctx, "/trains", &trains); err != nil {
		return nil, err
	}
	return trains, nil
}

// Stations fetches the station dataset.
func (c *Client) Stations(ctx context.Context) ([]model.Station, error) {
	var stations []model.Station
	if err := c.getJSON(ctx, "/stations", &stations); err != nil {
		return nil, err
	}
	return stations, nil
}

// SchedulePayload is the backend's /schedule response.
type SchedulePayload struct {
	Schedule        []model.ScheduleEntry `json:"schedule"`
	DelaysAfterMin  []float64             `json:"delays_after_min"`
	DelaysBeforeMin []float64             `json:"delays_before_min"`
	Reasons         []string              `json:"reasons"`
	Conflicts       []model.Conflict      `json:"conflicts"`
}

// Schedule fetches the current optimized schedule as a snapshot.
func (c *Client) Schedule(ctx context.Context) (*model.Snapshot, *SchedulePayload, error) {
	var payload SchedulePayload
	if err := c.getJSON(ctx, "/schedule", &payload); err != nil {
		return nil, nil, err
	}
	return model.NewSnapshot(payload.Schedule), &payload, nil
}

// Baseline fetches the pre-optimization reference schedule.
func (c *Client) Baseline(ctx context.Context) (*model.Snapshot, error) {
	var entries []model.ScheduleEntry
	if err := c.getJSON(ctx, "/baseline", &entries); err != nil {
		return nil, err
	}
	return model.NewSnapshot(entries), nil
}

// AuditLog fetches the backend's action log.
func (c *Client) AuditLog(ctx context.Context) ([]model.LogEntry, error) {
	var entries []model.LogEntry
	if err := c.getJSON(ctx, "/log", &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// ActiveDelays fetches currently injected delays. The backend keys them by
// train ID; the key wins over any train_id field in the record body.
func (c *Client) ActiveDelays(ctx context.Context) ([]model.DelayRecord, error) {
	var raw map[string]model.DelayRecord
	if err := c.getJSON(ctx, "/active-delays", &raw); err != nil {
		return nil, err
	}
	records := make([]model.DelayRecord, 0, len(raw))
	for trainID, rec := range raw {
		rec.TrainID = trainID
		records = append(records, rec)
	}
	return records, nil
}

// TrainPositions fetches the polled position list.
func (c *Client) TrainPositions(ctx context.Context) ([]model.TrainPosition, error) {
	var positions []model.TrainPosition
	if err := c.getJSON(ctx, "/train-positions", &positions); err != nil {
		return nil, err
	}
	return positions, nil
}

// ConflictReport is the backend's /conflicts response.
type ConflictReport struct {
	ActiveConflicts int                            `json:"active_conflicts"`
	ConflictLog     []model.Conflict               `json:"conflict_log"`
	TrackOccupancy  map[string]model.TrackOccupant `json:"track_occupancy"`
}

// Conflicts fetches the conflict report.
func (c *Client) Conflicts(ctx context.Context) (*ConflictReport, error) {
	var report ConflictReport
	if err := c.getJSON(ctx, "/conflicts", &report); err != nil {
		return nil, err
	}
	return &report, nil
}

// TrackStatus fetches the track occupancy summary.
func (c *Client) TrackStatus(ctx context.Context) (model.TrackStatus, error) {
	var ts model.TrackStatus
	if err := c.getJSON(ctx, "/track-status", &ts); err != nil {
		return model.TrackStatus{}, err
	}
	return ts, nil
}

// Reset asks the backend to clear all overrides and regenerate its baseline.
func (c *Client) Reset(ctx context.Context) error {
	status, err := c.postJSON(ctx, http.MethodPost, "/reset", nil, nil)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return fmt.Errorf("reset: unexpected status %d", status)
	}
	return nil
}

// InjectDelay reports a manual delay to the backend.
func (c *Client) InjectDelay(ctx context.Context, trainID, delayType string, minutes int, reason string) error {
	req := map[string]any{
		"train_id":      trainID,
		"delay_type":    delayType,
		"delay_minutes": minutes,
		"reason":        reason,
	}
	status, err := c.postJSON(ctx, http.MethodPost, "/inject-delay", req, nil)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return fmt.Errorf("inject-delay: unexpected status %d", status)
	}
	return nil
}

// ClearDelays removes all injected delays.
func (c *Client) ClearDelays(ctx context.Context) error {
	status, err := c.postJSON(ctx, http.MethodDelete, "/clear-delays", nil, nil)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return fmt.Errorf("clear-delays: unexpected status %d", status)
	}
	return nil
}
