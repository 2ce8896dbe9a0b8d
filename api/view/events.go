package view

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/railops/console/internal/eventbus"
)

// handleEvents streams store updates to the UI shell as server-sent events.
// The subscription lives for the duration of the request; a slow consumer
// misses events rather than stalling the store.
func (h *Handler) handleEvents(w http.ResponseWriter, r *http.Request) {
	if h.bus == nil {
		http.Error(w, "event stream unavailable", http.StatusNotFound)
		return
	}
	fl, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}
	sub := h.bus.Subscribe()
	defer h.bus.Unsubscribe(sub)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	fl.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case e, open := <-sub:
			if !open {
				return
			}
			name, payload := encodeEvent(e)
			if name == "" {
				continue
			}
			if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", name, payload); err != nil {
				return
			}
			fl.Flush()
		}
	}
}

// encodeEvent maps a bus event to its stream name and JSON body. Unknown
// event types yield an empty name and are skipped.
func encodeEvent(e eventbus.Event) (string, []byte) {
	var name string
	switch e.(type) {
	case eventbus.ScheduleUpdated:
		name = "schedule_updated"
	case eventbus.BaselinePromoted:
		name = "baseline_promoted"
	case eventbus.PositionsUpdated:
		name = "positions_updated"
	case eventbus.ConflictsUpdated:
		name = "conflicts_updated"
	default:
		return "", nil
	}
	body, err := json.Marshal(e)
	if err != nil {
		return "", nil
	}
	return name, body
}
