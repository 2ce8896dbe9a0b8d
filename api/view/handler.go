// Package view exposes the console's reconciled state as JSON endpoints for
// the UI shell. Handlers only read the store and call the backend for
// controller actions; they never mutate snapshots themselves.
package view

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/railops/console/core/impact"
	"github.com/railops/console/core/metrics"
	"github.com/railops/console/core/model"
	"github.com/railops/console/core/position"
	"github.com/railops/console/core/reconcile"
	"github.com/railops/console/core/stats"
	"github.com/railops/console/infra/backend"
	"github.com/railops/console/infra/logger"
	"github.com/railops/console/internal/eventbus"
)

// Handler serves the view API.
type Handler struct {
	store     *reconcile.Store
	estimator *impact.Estimator
	backend   *backend.Client
	bus       eventbus.EventBus
	sink      metrics.Sink
	log       logger.Logger
	now       func() time.Time
}

// NewHandler wires the view API over the store and backend client. bus feeds
// the event stream endpoint and must be the same bus the store publishes to.
func NewHandler(store *reconcile.Store, estimator *impact.Estimator, client *backend.Client, bus eventbus.EventBus, sink metrics.Sink) *Handler {
	if sink == nil {
		sink = metrics.NopSink{}
	}
	return &Handler{
		store:     store,
		estimator: estimator,
		backend:   client,
		bus:       bus,
		sink:      sink,
		log:       logger.New("view-api"),
		now:       time.Now,
	}
}

// Register attaches all view routes to the mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/api/view/schedule", h.get(h.handleSchedule))
	mux.HandleFunc("/api/view/gantt", h.get(h.handleGantt))
	mux.HandleFunc("/api/view/positions", h.get(h.handlePositions))
	mux.HandleFunc("/api/view/conflicts", h.get(h.handleConflicts))
	mux.HandleFunc("/api/view/delays", h.get(h.handleDelays))
	mux.HandleFunc("/api/view/log", h.get(h.handleLog))
	mux.HandleFunc("/api/view/stats", h.get(h.handleStats))
	mux.HandleFunc("/api/view/track-status", h.get(h.handleTrackStatus))
	mux.HandleFunc("/api/view/events", h.get(h.handleEvents))
	mux.HandleFunc("/api/view/override/preview", h.post(h.handleOverridePreview))
	mux.HandleFunc("/api/view/override", h.post(h.handleOverride))
	mux.HandleFunc("/api/view/delays/inject", h.post(h.handleInjectDelay))
	mux.HandleFunc("/api/view/delays/clear", h.post(h.handleClearDelays))
	mux.HandleFunc("/api/view/reset", h.post(h.handleReset))
}

func (h *Handler) get(fn http.HandlerFunc) http.HandlerFunc {
	return h.method(http.MethodGet, fn)
}

func (h *Handler) post(fn http.HandlerFunc) http.HandlerFunc {
	return h.method(http.MethodPost, fn)
}

func (h *Handler) method(m string, fn http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != m {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		fn(w, r)
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Errorf("encode response: %v", err)
	}
}

type scheduleResponse struct {
	Baseline      []model.ScheduleEntry `json:"baseline"`
	Current       []model.ScheduleEntry `json:"current"`
	ChangedTrains []string              `json:"changed_trains"`
	BaselineHeld  bool                  `json:"baseline_held"`
}

func (h *Handler) handleSchedule(w http.ResponseWriter, _ *http.Request) {
	base := h.store.ComparisonBase()
	cur := h.store.Current()
	h.writeJSON(w, http.StatusOK, scheduleResponse{
		Baseline:      base.Entries(),
		Current:       cur.Entries(),
		ChangedTrains: h.store.ChangedTrains(),
		BaselineHeld:  h.store.Baseline() != nil,
	})
}

func (h *Handler) handlePositions(w http.ResponseWriter, _ *http.Request) {
	interp := position.New(h.store.Stations())
	pushed := map[string]model.TrainPosition{}
	for _, p := range h.store.Positions() {
		pushed[p.TrainID] = p
	}
	points := interp.Render(h.store.Trains(), h.store.Current(), pushed, h.now())
	h.writeJSON(w, http.StatusOK, points)
}

func (h *Handler) handleConflicts(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, h.store.Conflicts())
}

func (h *Handler) handleDelays(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, h.store.Delays())
}

func (h *Handler) handleLog(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, h.store.AuditLog())
}

func (h *Handler) handleStats(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, stats.Summarize(h.store.Current(), h.store.Trains()))
}

func (h *Handler) handleTrackStatus(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, h.store.TrackStatus())
}
