package model

import "sort"

// Snapshot is one full schedule refresh: an immutable ordered sequence of
// schedule entries. Consumers must not mutate entries in place; any
// transformation produces a new Snapshot. Reference equality is therefore a
// valid cheap change check for holders of the same pointer.
type Snapshot struct {
	entries []ScheduleEntry
}

// NewSnapshot copies the given entries into a snapshot and normalises the
// override flag from the reason phrase where the payload lacked it.
func NewSnapshot(entries []ScheduleEntry) *Snapshot {
	cp := make([]ScheduleEntry, len(entries))
	copy(cp, entries)
	for i := range cp {
		cp[i].FlagOverride()
	}
	return &Snapshot{entries: cp}
}

// Entries returns the snapshot's entries. The returned slice is shared and
// must be treated as read-only.
func (s *Snapshot) Entries() []ScheduleEntry {
	if s == nil {
		return nil
	}
	return s.entries
}

// Len returns the number of entries.
func (s *Snapshot) Len() int {
	if s == nil {
		return 0
	}
	return len(s.entries)
}

// ByTrain returns the first entry for the given train, or false when the
// train does not appear in the snapshot.
func (s *Snapshot) ByTrain(trainID string) (ScheduleEntry, bool) {
	if s == nil {
		return ScheduleEntry{}, false
	}
	for _, e := range s.entries {
		if e.TrainID == trainID {
			return e, true
		}
	}
	return ScheduleEntry{}, false
}

// At returns the entry for the given train at the given station.
func (s *Snapshot) At(trainID, stationID string) (ScheduleEntry, bool) {
	if s == nil {
		return ScheduleEntry{}, false
	}
	for _, e := range s.entries {
		if e.TrainID == trainID && e.StationID == stationID {
			return e, true
		}
	}
	return ScheduleEntry{}, false
}

// WithOverride returns a copy of the snapshot with the train's entry at the
// station moved to the given platform and marked overridden. The receiver is
// left untouched; when the (train, station) pair is absent the receiver is
// returned as-is.
func (s *Snapshot) WithOverride(trainID, stationID string, platform int) *Snapshot {
	if s == nil {
		return nil
	}
	idx := -1
	for i, e := range s.entries {
		if e.TrainID == trainID && e.StationID == stationID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return s
	}
	cp := make([]ScheduleEntry, len(s.entries))
	copy(cp, s.entries)
	cp[idx].AssignedPlatform = platform
	cp[idx].Overridden = true
	return &Snapshot{entries: cp}
}

// Itinerary returns the train's entries ordered by actual arrival, forming
// its stop sequence for the refresh cycle.
func (s *Snapshot) Itinerary(trainID string) []ScheduleEntry {
	if s == nil {
		return nil
	}
	var stops []ScheduleEntry
	for _, e := range s.entries {
		if e.TrainID == trainID {
			stops = append(stops, e)
		}
	}
	sort.Slice(stops, func(i, j int) bool {
		return stops[i].ActualArrival.Before(stops[j].ActualArrival.Time)
	})
	return stops
}

// TrainIDs returns the set of trains appearing in the snapshot, sorted.
func (s *Snapshot) TrainIDs() []string {
	if s == nil {
		return nil
	}
	seen := make(map[string]struct{}, len(s.entries))
	var ids []string
	for _, e := range s.entries {
		if _, ok := seen[e.TrainID]; !ok {
			seen[e.TrainID] = struct{}{}
			ids = append(ids, e.TrainID)
		}
	}
	sort.Strings(ids)
	return ids
}

// Equal reports deep equality of two snapshots: same entries in the same
// order with identical assignment and timing fields.
func (s *Snapshot) Equal(other *Snapshot) bool {
	if s == nil || other == nil {
		return s.Len() == 0 && other.Len() == 0
	}
	if len(s.entries) != len(other.entries) {
		return false
	}
	for i, a := range s.entries {
		b := other.entries[i]
		if a.TrainID != b.TrainID || a.StationID != b.StationID ||
			a.AssignedPlatform != b.AssignedPlatform ||
			!a.ActualArrival.Equal(b.ActualArrival.Time) ||
			!a.ActualDeparture.Equal(b.ActualDeparture.Time) {
			return false
		}
	}
	return true
}
