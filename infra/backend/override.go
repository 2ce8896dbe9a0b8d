package backend

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/railops/console/core/impact"
	"github.com/railops/console/core/model"
)

// OverrideRequest is a controller-initiated platform reassignment.
type OverrideRequest struct {
	TrainID     string `json:"train_id"`
	StationID   string `json:"station_id"`
	NewPlatform int    `json:"new_platform"`
	Action      string `json:"action,omitempty"`
	Reason      string `json:"reason,omitempty"`
}

// Alternative is a backend-suggested substitute assignment attached to an
// override rejection.
type Alternative struct {
	Platform           int     `json:"platform,omitempty"`
	StationID          string  `json:"station_id,omitempty"`
	Description        string  `json:"description,omitempty"`
	DelayImpactMinutes float64 `json:"delay_impact_minutes,omitempty"`
}

// DelayAnalysis summarises the delay consequences the backend predicts for a
// rejected override.
type DelayAnalysis struct {
	DelayImpactMinutes float64  `json:"delay_impact_minutes"`
	AffectedTrains     []string `json:"affected_trains,omitempty"`
	Reasons            []string `json:"reasons,omitempty"`
}

// OverrideRejection is the structured "no" a controller sees. It is a normal
// expected outcome, not an error.
type OverrideRejection struct {
	Detail        string        `json:"detail,omitempty"`
	Alternatives  []Alternative `json:"alternatives,omitempty"`
	DelayAnalysis DelayAnalysis `json:"delay_analysis,omitempty"`
}

// OverrideResult is the outcome of an override commit.
type OverrideResult struct {
	Accepted        bool
	Status          string          `json:"status"`
	Message         string          `json:"message"`
	Reason          string          `json:"reason"`
	ConflictsCaused int             `json:"conflicts_caused"`
	AffectedTrains  []string        `json:"affected_trains"`
	UpdatedSchedule *model.Snapshot `json:"-"`
	Rejection       *OverrideRejection
}

type overridePayload struct {
	Status          string                `json:"status"`
	Message         string                `json:"message"`
	Reason          string                `json:"reason"`
	ConflictsCaused int                   `json:"conflicts_caused"`
	AffectedTrains  []string              `json:"affected_trains"`
	UpdatedSchedule []model.ScheduleEntry `json:"updated_schedule"`
}

// Override commits a platform override. A backend rejection is returned as a
// result with Accepted=false and the structured rejection body; only
// transport failures surface as errors, leaving state unchanged.
func (c *Client) Override(ctx context.Context, req OverrideRequest) (*OverrideResult, error) {
	if req.Action == "" {
		req.Action = "change_platform"
	}
	var raw json.RawMessage
	status, err := c.postJSON(ctx, http.MethodPost, "/override", req, &raw)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		rejection := &OverrideRejection{}
		if len(raw) > 0 {
			if err := json.Unmarshal(raw, rejection); err != nil {
				rejection.Detail = string(raw)
			}
		}
		c.log.Infof("override rejected for %s: %s", req.TrainID, rejection.Detail)
		return &OverrideResult{Accepted: false, Status: "rejected", Rejection: rejection}, nil
	}
	var payload overridePayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, err
	}
	res := &OverrideResult{
		Accepted:        true,
		Status:          payload.Status,
		Message:         payload.Message,
		Reason:          payload.Reason,
		ConflictsCaused: payload.ConflictsCaused,
		AffectedTrains:  payload.AffectedTrains,
	}
	if len(payload.UpdatedSchedule) > 0 {
		res.UpdatedSchedule = model.NewSnapshot(payload.UpdatedSchedule)
	}
	return res, nil
}

type simulationPayload struct {
	Status            string `json:"status"`
	TargetTrainImpact *struct {
		CurrentDelay   float64 `json:"current_delay"`
		PredictedDelay float64 `json:"predicted_delay"`
		DelayChange    float64 `json:"delay_change"`
	} `json:"target_train_impact"`
	ConflictsPredicted []struct {
		TrainID string `json:"train_id"`
	} `json:"conflicts_predicted"`
	TotalDelayImpact    float64 `json:"total_delay_impact"`
	AffectedTrainsCount int     `json:"affected_trains_count"`
}

// SimulateOverride runs the backend's override simulation. It satisfies
// impact.Simulator. A response without a target impact block is reported as
// unusable so callers fall back to the local heuristic.
func (c *Client) SimulateOverride(ctx context.Context, trainID, stationID string, newPlatform int) (impact.Simulation, error) {
	req := OverrideRequest{TrainID: trainID, StationID: stationID, NewPlatform: newPlatform, Action: "change_platform"}
	var payload simulationPayload
	status, err := c.postJSON(ctx, http.MethodPost, "/simulate-override", req, &payload)
	if err != nil {
		return impact.Simulation{}, err
	}
	if status != http.StatusOK || payload.TargetTrainImpact == nil {
		return impact.Simulation{Usable: false}, nil
	}
	sim := impact.Simulation{
		CurrentDelayMinutes:   payload.TargetTrainImpact.CurrentDelay,
		PredictedDelayMinutes: payload.TargetTrainImpact.PredictedDelay,
		DeltaMinutes:          payload.TargetTrainImpact.DelayChange,
		Usable:                true,
	}
	for _, cp := range payload.ConflictsPredicted {
		sim.AffectedTrains = append(sim.AffectedTrains, cp.TrainID)
	}
	return sim, nil
}
