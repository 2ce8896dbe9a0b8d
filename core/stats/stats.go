// Package stats aggregates per-train delay figures into the KPI summary
// shown on the console's status strip.
package stats

import (
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/railops/console/core/model"
)

// onTimeToleranceMinutes is the delay under which a train counts as on time.
const onTimeToleranceMinutes = 2.0

// Summary holds delay KPIs for one schedule snapshot.
type Summary struct {
	TrainCount        int     `json:"train_count"`
	DelayedCount      int     `json:"delayed_count"`
	OverriddenCount   int     `json:"overridden_count"`
	OnTimePercent     float64 `json:"on_time_percent"`
	MeanDelayMinutes  float64 `json:"mean_delay_minutes"`
	MaxDelayMinutes   float64 `json:"max_delay_minutes"`
	P90DelayMinutes   float64 `json:"p90_delay_minutes"`
	TotalDelayMinutes float64 `json:"total_delay_minutes"`
}

// Summarize computes delay KPIs for the snapshot. Delay per train is actual
// minus scheduled arrival, floored at zero; trains missing from the dataset
// contribute zero delay. Empty snapshots yield a zero Summary.
func Summarize(snap *model.Snapshot, trains map[string]model.Train) Summary {
	ids := snap.TrainIDs()
	if len(ids) == 0 {
		return Summary{}
	}
	delays := make([]float64, 0, len(ids))
	var s Summary
	s.TrainCount = len(ids)
	seenOverride := map[string]struct{}{}
	for _, e := range snap.Entries() {
		if e.Overridden {
			if _, ok := seenOverride[e.TrainID]; !ok {
				seenOverride[e.TrainID] = struct{}{}
				s.OverriddenCount++
			}
		}
	}
	for _, id := range ids {
		entry, ok := snap.ByTrain(id)
		if !ok {
			continue
		}
		d := 0.0
		if train, ok := trains[id]; ok && !train.ScheduledArrival.IsZero() {
			if late := entry.ActualArrival.Sub(train.ScheduledArrival.Time); late > 0 {
				d = late.Minutes()
			}
		}
		delays = append(delays, d)
		s.TotalDelayMinutes += d
		if d > onTimeToleranceMinutes {
			s.DelayedCount++
		}
		if d > s.MaxDelayMinutes {
			s.MaxDelayMinutes = d
		}
	}
	if len(delays) > 0 {
		s.MeanDelayMinutes = stat.Mean(delays, nil)
		sorted := append([]float64(nil), delays...)
		sort.Float64s(sorted)
		s.P90DelayMinutes = stat.Quantile(0.9, stat.Empirical, sorted, nil)
		s.OnTimePercent = float64(len(delays)-s.DelayedCount) / float64(len(delays)) * 100
	}
	return s
}
