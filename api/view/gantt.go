package view

import (
	"net/http"

	"github.com/railops/console/core/model"
	"github.com/railops/console/core/timeline"
)

// ganttBar is one placed entry in a comparison panel.
type ganttBar struct {
	TrainID    string  `json:"train_id"`
	StationID  string  `json:"station_id"`
	Platform   int     `json:"platform"`
	Left       float64 `json:"left_percent"`
	Width      float64 `json:"width_percent"`
	Overridden bool    `json:"overridden"`
	Changed    bool    `json:"changed"`
}

type ganttResponse struct {
	Window   timeline.Window `json:"window"`
	Ticks    []timeline.Tick `json:"ticks"`
	Baseline []ganttBar      `json:"baseline"`
	Current  []ganttBar      `json:"current"`
}

// handleGantt lays out both comparison panels against one shared window so
// bar widths stay comparable between before and after.
func (h *Handler) handleGantt(w http.ResponseWriter, _ *http.Request) {
	now := h.now()
	base := h.store.ComparisonBase()
	cur := h.store.Current()
	window := timeline.SharedWindow(
		timeline.ComputeWindow(base.Entries(), now),
		timeline.ComputeWindow(cur.Entries(), now),
	)
	changed := map[string]bool{}
	for _, id := range h.store.ChangedTrains() {
		changed[id] = true
	}
	h.writeJSON(w, http.StatusOK, ganttResponse{
		Window:   window,
		Ticks:    timeline.Ticks(window),
		Baseline: placeAll(base.Entries(), window, changed),
		Current:  placeAll(cur.Entries(), window, changed),
	})
}

func placeAll(entries []model.ScheduleEntry, window timeline.Window, changed map[string]bool) []ganttBar {
	bars := make([]ganttBar, 0, len(entries))
	for _, e := range entries {
		bar := timeline.PlaceBar(e, window)
		bars = append(bars, ganttBar{
			TrainID:    e.TrainID,
			StationID:  e.StationID,
			Platform:   e.AssignedPlatform,
			Left:       bar.LeftPercent,
			Width:      bar.WidthPercent,
			Overridden: e.Overridden,
			Changed:    changed[e.TrainID],
		})
	}
	return bars
}
