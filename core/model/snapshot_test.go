package model

import (
	"encoding/json"
	"testing"
	"time"
)

func ts(min int) Time {
	return NewTime(time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC).Add(time.Duration(min) * time.Minute))
}

func entry(train, station string, platform, arrMin, depMin int) ScheduleEntry {
	return ScheduleEntry{
		TrainID:          train,
		StationID:        station,
		AssignedPlatform: platform,
		ActualArrival:    ts(arrMin),
		ActualDeparture:  ts(depMin),
	}
}

func TestSnapshotEqual(t *testing.T) {
	a := NewSnapshot([]ScheduleEntry{entry("T1", "S1", 1, 0, 5), entry("T2", "S1", 2, 10, 15)})
	b := NewSnapshot([]ScheduleEntry{entry("T1", "S1", 1, 0, 5), entry("T2", "S1", 2, 10, 15)})
	if !a.Equal(b) {
		t.Fatalf("identical snapshots reported unequal")
	}
	c := NewSnapshot([]ScheduleEntry{entry("T1", "S1", 3, 0, 5), entry("T2", "S1", 2, 10, 15)})
	if a.Equal(c) {
		t.Fatalf("platform change not detected")
	}
	if !a.Equal(a) {
		t.Fatalf("snapshot not equal to itself")
	}
}

func TestSnapshotEqualNil(t *testing.T) {
	var nilSnap *Snapshot
	empty := NewSnapshot(nil)
	if !nilSnap.Equal(empty) || !empty.Equal(nilSnap) {
		t.Fatalf("nil and empty snapshots should compare equal")
	}
}

func TestItineraryOrdering(t *testing.T) {
	snap := NewSnapshot([]ScheduleEntry{
		entry("T1", "S3", 1, 40, 45),
		entry("T1", "S1", 1, 0, 5),
		entry("T1", "S2", 2, 20, 25),
		entry("T2", "S1", 2, 10, 15),
	})
	stops := snap.Itinerary("T1")
	if len(stops) != 3 {
		t.Fatalf("expected 3 stops, got %d", len(stops))
	}
	for i, want := range []string{"S1", "S2", "S3"} {
		if stops[i].StationID != want {
			t.Fatalf("stop %d: expected %s got %s", i, want, stops[i].StationID)
		}
	}
}

func TestFlagOverrideFromReason(t *testing.T) {
	e := entry("T1", "S1", 1, 0, 5)
	e.Reason = "OVERRIDE: fixed to P1 by controller"
	snap := NewSnapshot([]ScheduleEntry{e})
	got, ok := snap.ByTrain("T1")
	if !ok || !got.Overridden {
		t.Fatalf("override marker in reason not flagged")
	}

	e.Reason = "assigned to preferred P1"
	e.Overridden = false
	snap = NewSnapshot([]ScheduleEntry{e})
	got, _ = snap.ByTrain("T1")
	if got.Overridden {
		t.Fatalf("plain reason wrongly flagged as override")
	}
}

func TestWithOverride(t *testing.T) {
	snap := NewSnapshot([]ScheduleEntry{
		entry("T1", "S1", 1, 0, 5),
		entry("T2", "S1", 2, 10, 15),
	})
	next := snap.WithOverride("T1", "S1", 3)
	if next == snap {
		t.Fatalf("expected a new snapshot")
	}
	got, _ := next.At("T1", "S1")
	if got.AssignedPlatform != 3 || !got.Overridden {
		t.Fatalf("override not applied: %+v", got)
	}
	other, _ := next.At("T2", "S1")
	if other.AssignedPlatform != 2 || other.Overridden {
		t.Fatalf("unrelated entry modified: %+v", other)
	}
	orig, _ := snap.At("T1", "S1")
	if orig.AssignedPlatform != 1 || orig.Overridden {
		t.Fatalf("receiver mutated: %+v", orig)
	}

	if snap.WithOverride("T9", "S1", 3) != snap {
		t.Fatalf("unknown pair should return the receiver")
	}
}

func TestTimeUnmarshalVariants(t *testing.T) {
	cases := []string{
		`"2025-06-01T08:00:00Z"`,
		`"2025-06-01T08:00:00"`,
		`"2025-06-01T08:00:00.123456"`,
	}
	for _, c := range cases {
		var parsed Time
		if err := json.Unmarshal([]byte(c), &parsed); err != nil {
			t.Fatalf("unmarshal %s: %v", c, err)
		}
		if parsed.IsZero() {
			t.Fatalf("unmarshal %s: zero time", c)
		}
	}
	var bad Time
	if err := json.Unmarshal([]byte(`"yesterday"`), &bad); err == nil {
		t.Fatalf("expected error for junk timestamp")
	}
}

func TestOccupies(t *testing.T) {
	e := entry("T1", "S1", 1, 10, 20)
	if !e.Occupies(ts(15), ts(25)) {
		t.Fatalf("overlapping interval not detected")
	}
	if e.Occupies(ts(20), ts(30)) {
		t.Fatalf("adjacent interval detected as overlap")
	}
}
