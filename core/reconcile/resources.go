package reconcile

import (
	"sort"

	"github.com/railops/console/core/model"
	"github.com/railops/console/internal/eventbus"
)

// SetTrains replaces the loaded train dataset.
func (s *Store) SetTrains(trains []model.Train) {
	m := make(map[string]model.Train, len(trains))
	for _, t := range trains {
		m[t.ID] = t
	}
	s.mu.Lock()
	s.trains = m
	s.mu.Unlock()
}

// Trains returns the loaded trains keyed by ID. Read-only.
func (s *Store) Trains() map[string]model.Train {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.trains
}

// Train looks up one train by ID.
func (s *Store) Train(id string) (model.Train, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.trains[id]
	return t, ok
}

// SetStations replaces the loaded station dataset.
func (s *Store) SetStations(stations []model.Station) {
	m := make(map[string]model.Station, len(stations))
	for _, st := range stations {
		m[st.ID] = st
	}
	s.mu.Lock()
	s.stations = m
	s.mu.Unlock()
}

// Stations returns the loaded stations keyed by ID. Read-only.
func (s *Store) Stations() map[string]model.Station {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stations
}

// SetPositions replaces the entire position set. Push reports supersede one
// another wholesale; fields are never merged with prior values.
func (s *Store) SetPositions(positions []model.TrainPosition) {
	m := make(map[string]model.TrainPosition, len(positions))
	for _, p := range positions {
		m[p.TrainID] = p
	}
	s.mu.Lock()
	s.positions = m
	s.mu.Unlock()
	s.publish(eventbus.PositionsUpdated{Count: len(m)})
}

// Positions returns the latest position per train, sorted by train ID.
func (s *Store) Positions() []model.TrainPosition {
	s.mu.RLock()
	res := make([]model.TrainPosition, 0, len(s.positions))
	for _, p := range s.positions {
		res = append(res, p)
	}
	s.mu.RUnlock()
	sort.Slice(res, func(i, j int) bool { return res[i].TrainID < res[j].TrainID })
	return res
}

// Position returns the latest push report for one train.
func (s *Store) Position(trainID string) (model.TrainPosition, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.positions[trainID]
	return p, ok
}

// SetConflicts replaces the active conflict set.
func (s *Store) SetConflicts(conflicts []model.Conflict) {
	cp := make([]model.Conflict, len(conflicts))
	copy(cp, conflicts)
	s.mu.Lock()
	s.conflicts = cp
	s.mu.Unlock()
	s.publish(eventbus.ConflictsUpdated{Active: len(cp)})
}

// Conflicts returns the active conflict set.
func (s *Store) Conflicts() []model.Conflict {
	s.mu.RLock()
	defer s.mu.RUnlock()
	res := make([]model.Conflict, len(s.conflicts))
	copy(res, s.conflicts)
	return res
}

// SetDelays replaces the active delay records.
func (s *Store) SetDelays(delays []model.DelayRecord) {
	cp := make([]model.DelayRecord, len(delays))
	copy(cp, delays)
	s.mu.Lock()
	s.delays = cp
	s.mu.Unlock()
}

// Delays returns the active delay records.
func (s *Store) Delays() []model.DelayRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	res := make([]model.DelayRecord, len(s.delays))
	copy(res, s.delays)
	return res
}

// SetAuditLog replaces the audit log entries.
func (s *Store) SetAuditLog(entries []model.LogEntry) {
	cp := make([]model.LogEntry, len(entries))
	copy(cp, entries)
	s.mu.Lock()
	s.auditLog = cp
	s.mu.Unlock()
}

// AuditLog returns the audit log entries.
func (s *Store) AuditLog() []model.LogEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	res := make([]model.LogEntry, len(s.auditLog))
	copy(res, s.auditLog)
	return res
}

// SetTrackStatus replaces the track occupancy summary.
func (s *Store) SetTrackStatus(ts model.TrackStatus) {
	s.mu.Lock()
	s.track = ts
	s.mu.Unlock()
}

// TrackStatus returns the track occupancy summary.
func (s *Store) TrackStatus() model.TrackStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.track
}
