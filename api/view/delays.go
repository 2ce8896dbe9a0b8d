package view

import (
	"encoding/json"
	"net/http"
)

type injectDelayRequest struct {
	TrainID      string `json:"train_id"`
	DelayType    string `json:"delay_type"`
	DelayMinutes int    `json:"delay_minutes"`
	Reason       string `json:"reason,omitempty"`
}

// handleInjectDelay reports a manual delay to the optimizer. The delayed
// schedule arrives through the regular polls; nothing is applied locally.
func (h *Handler) handleInjectDelay(w http.ResponseWriter, r *http.Request) {
	var req injectDelayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "malformed request body", http.StatusBadRequest)
		return
	}
	if req.TrainID == "" {
		http.Error(w, "train_id is required", http.StatusBadRequest)
		return
	}
	if req.DelayMinutes < 1 {
		http.Error(w, "delay_minutes must be at least 1", http.StatusBadRequest)
		return
	}
	if req.DelayType == "" {
		req.DelayType = "manual"
	}
	if err := h.backend.InjectDelay(r.Context(), req.TrainID, req.DelayType, req.DelayMinutes, req.Reason); err != nil {
		h.log.Errorf("inject delay: %v", err)
		http.Error(w, "backend unreachable, try again", http.StatusBadGateway)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "success"})
}

// handleClearDelays removes every injected delay on the optimizer.
func (h *Handler) handleClearDelays(w http.ResponseWriter, r *http.Request) {
	if err := h.backend.ClearDelays(r.Context()); err != nil {
		h.log.Errorf("clear delays: %v", err)
		http.Error(w, "backend unreachable, try again", http.StatusBadGateway)
		return
	}
	h.store.SetDelays(nil)
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "success"})
}
