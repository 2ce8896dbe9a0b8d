package view

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/railops/console/infra/backend"
)

type overrideRequest struct {
	TrainID     string `json:"train_id"`
	StationID   string `json:"station_id"`
	NewPlatform int    `json:"new_platform"`
	Reason      string `json:"reason,omitempty"`
}

func (r overrideRequest) validate() string {
	if r.TrainID == "" {
		return "train_id is required"
	}
	if r.StationID == "" {
		return "station_id is required"
	}
	if r.NewPlatform < 1 {
		return "new_platform must be at least 1"
	}
	return ""
}

// handleOverridePreview estimates the delay impact of a candidate override.
// The estimator degrades to its local heuristic when the backend simulation
// is unreachable, so this endpoint fails only for unknown trains.
func (h *Handler) handleOverridePreview(w http.ResponseWriter, r *http.Request) {
	var req overrideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "malformed request body", http.StatusBadRequest)
		return
	}
	if msg := req.validate(); msg != "" {
		http.Error(w, msg, http.StatusBadRequest)
		return
	}
	est := h.estimator.Estimate(r.Context(), h.store.Current(), h.store.Trains(), req.TrainID, req.StationID, req.NewPlatform)
	if est == nil {
		http.Error(w, "train not found in current schedule", http.StatusNotFound)
		return
	}
	h.writeJSON(w, http.StatusOK, est)
}

type overrideResponse struct {
	RequestID      string                     `json:"request_id"`
	Status         string                     `json:"status"`
	Message        string                     `json:"message,omitempty"`
	Reason         string                     `json:"reason,omitempty"`
	AffectedTrains []string                   `json:"affected_trains,omitempty"`
	Rejection      *backend.OverrideRejection `json:"rejection,omitempty"`
}

// handleOverride commits a platform override. Rejections come back with a
// 409 and the backend's alternatives; only transport failures produce a 502,
// leaving state unchanged for the controller to retry.
func (h *Handler) handleOverride(w http.ResponseWriter, r *http.Request) {
	var req overrideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "malformed request body", http.StatusBadRequest)
		return
	}
	if msg := req.validate(); msg != "" {
		http.Error(w, msg, http.StatusBadRequest)
		return
	}
	requestID := uuid.NewString()
	h.log.Infof("override %s: move %s to platform %d at %s", requestID, req.TrainID, req.NewPlatform, req.StationID)
	res, err := h.backend.Override(r.Context(), backend.OverrideRequest{
		TrainID:     req.TrainID,
		StationID:   req.StationID,
		NewPlatform: req.NewPlatform,
		Reason:      req.Reason,
	})
	if err != nil {
		h.log.Errorf("override %s: %v", requestID, err)
		http.Error(w, "backend unreachable, try again", http.StatusBadGateway)
		return
	}
	h.sink.RecordOverrideCommit(res.Accepted)
	if !res.Accepted {
		h.writeJSON(w, http.StatusConflict, overrideResponse{
			RequestID: requestID,
			Status:    res.Status,
			Rejection: res.Rejection,
		})
		return
	}
	if res.UpdatedSchedule != nil {
		h.store.Ingest(res.UpdatedSchedule)
	} else if cur := h.store.Current(); cur != nil {
		// Accepted but no schedule in the response: flag the entry locally
		// until the next schedule poll confirms it.
		h.store.Ingest(cur.WithOverride(req.TrainID, req.StationID, req.NewPlatform))
	}
	h.writeJSON(w, http.StatusOK, overrideResponse{
		RequestID:      requestID,
		Status:         res.Status,
		Message:        res.Message,
		Reason:         res.Reason,
		AffectedTrains: res.AffectedTrains,
	})
}

// handleReset clears overrides on the backend and drops the local baseline;
// the next differing snapshot re-establishes it.
func (h *Handler) handleReset(w http.ResponseWriter, r *http.Request) {
	if err := h.backend.Reset(r.Context()); err != nil {
		h.log.Errorf("reset: %v", err)
		http.Error(w, "backend unreachable, try again", http.StatusBadGateway)
		return
	}
	h.store.Reset()
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "success"})
}
