// Package impact previews the delay cost of a proposed platform override
// before the controller commits it. A server-side simulation is preferred;
// when the server is unreachable or returns nothing usable, a local
// conflict-counting heuristic supplies the estimate instead.
package impact

import (
	"context"

	"github.com/railops/console/core/metrics"
	"github.com/railops/console/core/model"
	"github.com/railops/console/infra/logger"
)

// Estimate sources.
const (
	SourceSimulation = "simulation"
	SourceHeuristic  = "heuristic"
)

// minutesPerConflict is the heuristic delay cost of each train already
// occupying the requested platform during the candidate's dwell.
const minutesPerConflict = 3.0

// Estimate is the predicted delay impact of one candidate override. The UI
// decides what delta warrants a confirmation step; this package only
// supplies the numbers.
type Estimate struct {
	TrainID               string   `json:"train_id"`
	CurrentDelayMinutes   float64  `json:"current_delay_minutes"`
	PredictedDelayMinutes float64  `json:"predicted_delay_minutes"`
	DeltaMinutes          float64  `json:"delta_minutes"`
	AffectedTrains        []string `json:"affected_trains,omitempty"`
	Source                string   `json:"source"`
}

// Simulation is a server-computed override preview. Usable is false when the
// response carried no impact block.
type Simulation struct {
	CurrentDelayMinutes   float64
	PredictedDelayMinutes float64
	DeltaMinutes          float64
	AffectedTrains        []string
	Usable                bool
}

// Simulator runs an override simulation against the backend.
type Simulator interface {
	SimulateOverride(ctx context.Context, trainID, stationID string, newPlatform int) (Simulation, error)
}

// Estimator produces override impact estimates.
type Estimator struct {
	sim  Simulator
	sink metrics.Sink
	log  logger.Logger
}

// New creates an Estimator. sim may be nil to force the local heuristic.
func New(sim Simulator, sink metrics.Sink, log logger.Logger) *Estimator {
	if sink == nil {
		sink = metrics.NopSink{}
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Estimator{sim: sim, sink: sink, log: log}
}

// Estimate previews moving trainID to newPlatform at stationID. It never
// fails on network errors; those degrade to the heuristic. The result is nil
// only when the train cannot be located in the current snapshot.
func (e *Estimator) Estimate(ctx context.Context, snap *model.Snapshot, trains map[string]model.Train, trainID, stationID string, newPlatform int) *Estimate {
	entry, ok := snap.At(trainID, stationID)
	if !ok {
		if entry, ok = snap.ByTrain(trainID); !ok {
			return nil
		}
	}
	if e.sim != nil {
		sim, err := e.sim.SimulateOverride(ctx, trainID, stationID, newPlatform)
		if err == nil && sim.Usable {
			return &Estimate{
				TrainID:               trainID,
				CurrentDelayMinutes:   sim.CurrentDelayMinutes,
				PredictedDelayMinutes: sim.PredictedDelayMinutes,
				DeltaMinutes:          sim.DeltaMinutes,
				AffectedTrains:        sim.AffectedTrains,
				Source:                SourceSimulation,
			}
		}
		if err != nil {
			e.log.Warnf("override simulation unavailable, using heuristic: %v", err)
		}
	}
	e.sink.RecordEstimatorFallback()
	return e.heuristic(snap, trains, entry, stationID, newPlatform)
}

// heuristic estimates the impact locally: the train's current delay plus a
// fixed cost per conflicting occupant of the requested platform.
func (e *Estimator) heuristic(snap *model.Snapshot, trains map[string]model.Train, entry model.ScheduleEntry, stationID string, newPlatform int) *Estimate {
	current := currentDelayMinutes(entry, trains)
	conflicts := 0
	var affected []string
	for _, other := range snap.Entries() {
		if other.TrainID == entry.TrainID {
			continue
		}
		if other.StationID != stationID || other.AssignedPlatform != newPlatform {
			continue
		}
		if other.Occupies(entry.ActualArrival, entry.ActualDeparture) {
			conflicts++
			affected = append(affected, other.TrainID)
		}
	}
	additional := minutesPerConflict * float64(conflicts)
	return &Estimate{
		TrainID:               entry.TrainID,
		CurrentDelayMinutes:   current,
		PredictedDelayMinutes: current + additional,
		DeltaMinutes:          additional,
		AffectedTrains:        affected,
		Source:                SourceHeuristic,
	}
}

func currentDelayMinutes(entry model.ScheduleEntry, trains map[string]model.Train) float64 {
	train, ok := trains[entry.TrainID]
	if !ok || train.ScheduledArrival.IsZero() {
		return 0
	}
	delay := entry.ActualArrival.Sub(train.ScheduledArrival.Time)
	if delay <= 0 {
		return 0
	}
	return delay.Minutes()
}
