// Package position maps schedule and push-channel data to renderable 2D
// train positions. Output is deterministic: identical inputs and the same
// clock reading always produce bit-identical coordinates, so animation
// frames never jitter.
package position

import (
	"time"

	"github.com/railops/console/core/model"
)

const (
	delayTolerance = 2 * time.Minute
	waitingLead    = 5 * time.Minute
)

// Point is a renderable train position.
type Point struct {
	TrainID    string  `json:"train_id"`
	Lat        float64 `json:"lat"`
	Lon        float64 `json:"lon"`
	Status     string  `json:"status"`
	Progress   float64 `json:"progress"`
	AtStation  string  `json:"at_station,omitempty"`
	LaneOffset float64 `json:"lane_offset"`
}

// Interpolator resolves station coordinates and derives train positions
// from push reports or, failing that, from schedule itineraries.
type Interpolator struct {
	stations map[string]model.Station
}

// New creates an Interpolator over the session's station set.
func New(stations map[string]model.Station) *Interpolator {
	if stations == nil {
		stations = map[string]model.Station{}
	}
	return &Interpolator{stations: stations}
}

// FromPush derives a position from a push-channel report. Unknown motion
// states and unknown stations yield ok=false and are not rendered. An
// "arrived" report renders at the destination even when no schedule entry
// matches the train.
func (ip *Interpolator) FromPush(p model.TrainPosition) (Point, bool) {
	switch p.Status {
	case model.StatusWaiting, model.StatusDelayed:
		st, ok := ip.stations[p.FromStation]
		if !ok {
			return Point{}, false
		}
		return ip.point(p.TrainID, st.Lat, st.Lon, p.Status, 0, p.FromStation, p.FromStation, p.ToStation), true
	case model.StatusMoving:
		from, okFrom := ip.stations[p.FromStation]
		to, okTo := ip.stations[p.ToStation]
		if !okFrom || !okTo {
			return Point{}, false
		}
		frac := clamp01(p.Progress)
		lat := from.Lat + (to.Lat-from.Lat)*frac
		lon := from.Lon + (to.Lon-from.Lon)*frac
		pt := ip.point(p.TrainID, lat, lon, model.StatusMoving, frac, "", p.FromStation, p.ToStation)
		return pt, true
	case model.StatusArrived:
		st, ok := ip.stations[p.ToStation]
		if !ok {
			return Point{}, false
		}
		return ip.point(p.TrainID, st.Lat, st.Lon, model.StatusArrived, 1, p.ToStation, p.FromStation, p.ToStation), true
	default:
		return Point{}, false
	}
}

// FromItinerary derives a position from the train's ordered stop sequence
// when no push data is available. Between two stops the position is the
// linear interpolation by elapsed fraction of the travel interval; otherwise
// the train renders stationary at the relevant station. A train whose
// itinerary does not overlap now at all renders at its last known station.
func (ip *Interpolator) FromItinerary(train model.Train, stops []model.ScheduleEntry, now time.Time) (Point, bool) {
	if len(stops) == 0 {
		return Point{}, false
	}
	for i, stop := range stops {
		if !now.After(stop.ActualDeparture.Time) {
			if i > 0 && now.Before(stop.ActualArrival.Time) {
				return ip.betweenStops(train, stops[i-1], stop, now)
			}
			return ip.atStation(train, stop, now)
		}
		if i+1 < len(stops) && now.Before(stops[i+1].ActualArrival.Time) {
			return ip.betweenStops(train, stop, stops[i+1], now)
		}
	}
	// Past the final departure: last known station.
	return ip.atStop(train, stops[len(stops)-1], now, model.StatusStopped)
}

func (ip *Interpolator) atStation(train model.Train, stop model.ScheduleEntry, now time.Time) (Point, bool) {
	status := model.StatusStopped
	switch {
	case stop.ActualArrival.Sub(train.ScheduledArrival.Time) > delayTolerance:
		status = model.StatusDelayed
	case train.ScheduledDeparture.Sub(now) > waitingLead:
		status = model.StatusWaiting
	}
	return ip.atStop(train, stop, now, status)
}

func (ip *Interpolator) atStop(train model.Train, stop model.ScheduleEntry, _ time.Time, status string) (Point, bool) {
	st, ok := ip.stations[stop.StationID]
	if !ok {
		return Point{}, false
	}
	return ip.point(train.ID, st.Lat, st.Lon, status, 0, stop.StationID, stop.StationID, ""), true
}

func (ip *Interpolator) betweenStops(train model.Train, from, to model.ScheduleEntry, now time.Time) (Point, bool) {
	a, okA := ip.stations[from.StationID]
	b, okB := ip.stations[to.StationID]
	if !okA || !okB {
		return Point{}, false
	}
	interval := to.ActualArrival.Sub(from.ActualDeparture.Time)
	frac := 0.0
	if interval > 0 {
		frac = clamp01(float64(now.Sub(from.ActualDeparture.Time)) / float64(interval))
	}
	lat := a.Lat + (b.Lat-a.Lat)*frac
	lon := a.Lon + (b.Lon-a.Lon)*frac
	pt := ip.point(train.ID, lat, lon, model.StatusMoving, frac, "", from.StationID, to.StationID)
	return pt, true
}

func (ip *Interpolator) point(trainID string, lat, lon float64, status string, progress float64, atStation, from, to string) Point {
	return Point{
		TrainID:    trainID,
		Lat:        lat,
		Lon:        lon,
		Status:     status,
		Progress:   progress,
		AtStation:  atStation,
		LaneOffset: LaneOffset(from, to, 0),
	}
}

func clamp01(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}
