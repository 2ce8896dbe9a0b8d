package reconcile

import (
	"sort"

	"github.com/railops/console/core/model"
)

// Diff returns the sorted IDs of trains present in after whose platform,
// arrival, or departure differ from their counterpart in before. Trains
// absent from before have no counterpart and are not counted as changed.
// Diff is pure: the same inputs always yield the same set.
func Diff(before, after *model.Snapshot) []string {
	if before == nil || after == nil {
		return nil
	}
	type key struct{ train, station string }
	prev := make(map[key]model.ScheduleEntry, before.Len())
	for _, e := range before.Entries() {
		prev[key{e.TrainID, e.StationID}] = e
	}
	changed := map[string]struct{}{}
	for _, e := range after.Entries() {
		p, ok := prev[key{e.TrainID, e.StationID}]
		if !ok {
			continue
		}
		if p.AssignedPlatform != e.AssignedPlatform ||
			!p.ActualArrival.Equal(e.ActualArrival.Time) ||
			!p.ActualDeparture.Equal(e.ActualDeparture.Time) {
			changed[e.TrainID] = struct{}{}
		}
	}
	if len(changed) == 0 {
		return nil
	}
	ids := make([]string, 0, len(changed))
	for id := range changed {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
