package model

import "strings"

// Station represents a rail station with a fixed number of platforms.
// Stations are immutable once loaded for the session; the platform count
// bounds valid platform assignments.
type Station struct {
	ID        string  `json:"id"`
	Platforms int     `json:"platforms"`
	Name      string  `json:"name,omitempty"`
	Lat       float64 `json:"lat,omitempty"`
	Lon       float64 `json:"lon,omitempty"`
}

// Train describes one train of the loaded dataset. Identity is ID.
type Train struct {
	ID                 string `json:"id"`
	Type               string `json:"type,omitempty"`
	Priority           int    `json:"priority,omitempty"`
	Origin             string `json:"origin,omitempty"`
	Destination        string `json:"destination,omitempty"`
	ScheduledArrival   Time   `json:"scheduled_arrival"`
	ScheduledDeparture Time   `json:"scheduled_departure"`
	PlatformPref       int    `json:"platform_pref,omitempty"`
}

// overrideMarker is the phrase the optimizer embeds in an entry's reason when
// the assignment was forced by a controller. Decode-time sniffing exists only
// until the backend marks overridden entries structurally.
const overrideMarker = "override"

// ScheduleEntry is one stop of one train in a schedule snapshot.
// ActualDeparture is never before ActualArrival.
type ScheduleEntry struct {
	TrainID          string `json:"train_id"`
	StationID        string `json:"station_id"`
	AssignedPlatform int    `json:"assigned_platform"`
	ActualArrival    Time   `json:"actual_arrival"`
	ActualDeparture  Time   `json:"actual_departure"`
	Reason           string `json:"reason,omitempty"`
	Overridden       bool   `json:"overridden"`
}

// FlagOverride sets Overridden from the optimizer's reason phrase when the
// payload did not carry the flag itself.
func (e *ScheduleEntry) FlagOverride() {
	if !e.Overridden && strings.Contains(strings.ToLower(e.Reason), overrideMarker) {
		e.Overridden = true
	}
}

// Occupies reports whether the entry's platform occupancy overlaps the
// interval [arrival, departure).
func (e ScheduleEntry) Occupies(arrival, departure Time) bool {
	return e.ActualArrival.Before(departure.Time) && arrival.Before(e.ActualDeparture.Time)
}

// Motion states carried by push-channel position updates.
const (
	StatusWaiting = "waiting"
	StatusMoving  = "moving"
	StatusArrived = "arrived"
	StatusDelayed = "delayed"
	StatusStopped = "stopped"
)

// TrainPosition is an ephemeral push-channel position report. Each report
// supersedes the previous one for the same train entirely; fields are never
// merged across reports.
type TrainPosition struct {
	TrainID         string  `json:"train_id"`
	FromStation     string  `json:"from_station"`
	ToStation       string  `json:"to_station,omitempty"`
	CurrentPosition string  `json:"current_position,omitempty"`
	Status          string  `json:"status"`
	Progress        float64 `json:"progress,omitempty"`
	DelayMinutes    float64 `json:"delay_minutes,omitempty"`
}

// Conflict is a server-detected scheduling conflict. Presence or absence
// drives UI badges only; the console never resolves conflicts itself.
type Conflict struct {
	ID               string   `json:"id,omitempty"`
	Type             string   `json:"type"`
	StationID        string   `json:"station_id,omitempty"`
	Track            string   `json:"track,omitempty"`
	Platform         int      `json:"platform,omitempty"`
	TrainsInvolved   []string `json:"trains,omitempty"`
	RootCause        string   `json:"root_cause,omitempty"`
	Severity         string   `json:"severity,omitempty"`
	SuggestedActions []string `json:"suggested_actions,omitempty"`
	Timestamp        Time     `json:"timestamp,omitempty"`
	Resolved         bool     `json:"resolved,omitempty"`
}

// DelayRecord is one currently-active injected delay.
type DelayRecord struct {
	TrainID      string `json:"train_id"`
	DelayType    string `json:"delay_type"`
	DelayMinutes int    `json:"delay_minutes"`
	Reason       string `json:"reason,omitempty"`
	Timestamp    Time   `json:"timestamp,omitempty"`
}

// LogEntry is one audit-log line from the backend.
type LogEntry struct {
	Timestamp Time   `json:"timestamp"`
	Action    string `json:"action"`
	Details   string `json:"details"`
}

// TrackOccupant records which train holds a track segment and for how long.
type TrackOccupant struct {
	TrainID   string `json:"train_id"`
	StartTime Time   `json:"start_time"`
	EndTime   Time   `json:"end_time"`
}

// TrackStatus summarises track occupancy as reported by the backend.
type TrackStatus struct {
	TrackOccupancy    map[string]TrackOccupant `json:"track_occupancy"`
	ActiveMovements   int                      `json:"active_movements"`
	ConflictsDetected int                      `json:"conflicts_detected"`
}
