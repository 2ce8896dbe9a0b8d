package position

import (
	"sort"
	"time"

	"github.com/railops/console/core/model"
)

// Render produces one point per renderable train. Push reports win when
// present; trains without push data fall back to itinerary interpolation
// against the current schedule snapshot.
func (ip *Interpolator) Render(trains map[string]model.Train, snap *model.Snapshot, pushed map[string]model.TrainPosition, now time.Time) []Point {
	points := make([]Point, 0, len(trains))
	rendered := map[string]struct{}{}
	for id, p := range pushed {
		if pt, ok := ip.FromPush(p); ok {
			points = append(points, pt)
			rendered[id] = struct{}{}
		}
	}
	for id, train := range trains {
		if _, done := rendered[id]; done {
			continue
		}
		if pt, ok := ip.FromItinerary(train, snap.Itinerary(id), now); ok {
			points = append(points, pt)
		}
	}
	sort.Slice(points, func(i, j int) bool { return points[i].TrainID < points[j].TrainID })
	return points
}
