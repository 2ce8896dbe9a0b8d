package reconcile

import (
	"testing"
	"time"

	"github.com/railops/console/core/model"
	"github.com/railops/console/internal/eventbus"
)

func ts(min int) model.Time {
	return model.NewTime(time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC).Add(time.Duration(min) * time.Minute))
}

func entry(train, station string, platform, arrMin, depMin int) model.ScheduleEntry {
	return model.ScheduleEntry{
		TrainID:          train,
		StationID:        station,
		AssignedPlatform: platform,
		ActualArrival:    ts(arrMin),
		ActualDeparture:  ts(depMin),
	}
}

func snap(entries ...model.ScheduleEntry) *model.Snapshot {
	return model.NewSnapshot(entries)
}

func TestIngestBaselineOneCycleBehind(t *testing.T) {
	s := New(nil, nil, nil)
	a := snap(entry("T1", "S1", 1, 0, 5))
	b := snap(entry("T1", "S1", 2, 0, 5))

	s.Ingest(a)
	if s.Current() != a {
		t.Fatalf("first ingest did not set current")
	}
	if s.Baseline() != nil {
		t.Fatalf("baseline set on first ingest")
	}

	s.Ingest(b)
	if s.Baseline() != a {
		t.Fatalf("prior current not promoted to baseline")
	}
	if s.Current() != b {
		t.Fatalf("current not replaced")
	}

	s.Ingest(snap(entry("T1", "S1", 2, 0, 5)))
	if s.Baseline() != a || s.Current() != b {
		t.Fatalf("identical ingest must be a no-op")
	}
}

func TestIngestPreviousSlot(t *testing.T) {
	s := New(nil, nil, nil)
	a := snap(entry("T1", "S1", 1, 0, 5))
	b := snap(entry("T1", "S1", 2, 0, 5))
	c := snap(entry("T1", "S1", 3, 0, 5))

	s.Ingest(a)
	s.Ingest(b)
	s.Ingest(c)
	if s.Baseline() != a {
		t.Fatalf("baseline silently overwritten by routine polling")
	}
	if s.Previous() != b {
		t.Fatalf("displaced current not kept in previous slot")
	}
	if s.Current() != c {
		t.Fatalf("current not replaced")
	}
}

func TestResetReestablishesBaseline(t *testing.T) {
	s := New(nil, nil, nil)
	a := snap(entry("T1", "S1", 1, 0, 5))
	b := snap(entry("T1", "S1", 2, 0, 5))
	c := snap(entry("T1", "S1", 3, 0, 5))

	s.Ingest(a)
	s.Ingest(b)
	s.Reset()
	if s.Baseline() != nil || s.Previous() != nil {
		t.Fatalf("reset did not clear baseline and previous")
	}
	s.Ingest(c)
	if s.Baseline() != b {
		t.Fatalf("post-reset ingest should promote the held current")
	}
}

func TestSetBaselineOverridesPromotion(t *testing.T) {
	s := New(nil, nil, nil)
	a := snap(entry("T1", "S1", 1, 0, 5))
	b := snap(entry("T1", "S1", 2, 0, 5))
	ref := snap(entry("T1", "S1", 1, 0, 3))

	s.Ingest(a)
	s.SetBaseline(ref)
	if s.Baseline() != ref {
		t.Fatalf("explicit baseline not installed")
	}

	s.Ingest(b)
	if s.Baseline() != ref {
		t.Fatalf("ingest displaced the explicit baseline")
	}
	if s.Previous() != a {
		t.Fatalf("displaced current not kept in previous slot")
	}

	s.SetBaseline(nil)
	if s.Baseline() != ref {
		t.Fatalf("nil must not clear the baseline")
	}
}

func TestDiffIdentityEmpty(t *testing.T) {
	s := snap(entry("T1", "S1", 1, 0, 5), entry("T2", "S2", 2, 10, 20))
	if got := Diff(s, s); len(got) != 0 {
		t.Fatalf("diff(S,S) not empty: %v", got)
	}
}

func TestDiffDetectsChanges(t *testing.T) {
	before := snap(
		entry("T1", "S1", 1, 0, 5),
		entry("T2", "S1", 2, 10, 20),
		entry("T3", "S2", 1, 30, 40),
	)
	after := snap(
		entry("T1", "S1", 3, 0, 5),  // platform change
		entry("T2", "S1", 2, 12, 20), // arrival change
		entry("T3", "S2", 1, 30, 40), // unchanged
		entry("T4", "S2", 2, 50, 60), // new train, no counterpart
	)
	got := Diff(before, after)
	if len(got) != 2 || got[0] != "T1" || got[1] != "T2" {
		t.Fatalf("expected [T1 T2], got %v", got)
	}
	// Pure and order-independent: same inputs, same set.
	again := Diff(before, after)
	if len(again) != len(got) {
		t.Fatalf("diff not deterministic")
	}
}

func TestChangedTrainsFallsBackToPrevious(t *testing.T) {
	s := New(nil, nil, nil)
	s.Ingest(snap(entry("T1", "S1", 1, 0, 5)))
	if got := s.ChangedTrains(); got != nil {
		t.Fatalf("no comparison basis yet, got %v", got)
	}
	s.Ingest(snap(entry("T1", "S1", 2, 0, 5)))
	got := s.ChangedTrains()
	if len(got) != 1 || got[0] != "T1" {
		t.Fatalf("expected [T1], got %v", got)
	}
}

func TestIngestPublishesEvents(t *testing.T) {
	bus := eventbus.New()
	sub := bus.Subscribe()
	s := New(bus, nil, nil)

	s.Ingest(snap(entry("T1", "S1", 1, 0, 5)))
	select {
	case e := <-sub:
		if _, ok := e.(eventbus.ScheduleUpdated); !ok {
			t.Fatalf("expected ScheduleUpdated, got %T", e)
		}
	default:
		t.Fatalf("no event published on ingest")
	}
}

func TestPositionsSupersededWholesale(t *testing.T) {
	s := New(nil, nil, nil)
	s.SetPositions([]model.TrainPosition{
		{TrainID: "T1", Status: model.StatusMoving, FromStation: "S1", ToStation: "S2", Progress: 0.4},
		{TrainID: "T2", Status: model.StatusWaiting, FromStation: "S1"},
	})
	s.SetPositions([]model.TrainPosition{
		{TrainID: "T1", Status: model.StatusArrived, FromStation: "S1", ToStation: "S2"},
	})
	got := s.Positions()
	if len(got) != 1 {
		t.Fatalf("stale positions retained: %v", got)
	}
	if got[0].Status != model.StatusArrived || got[0].Progress != 0 {
		t.Fatalf("position merged instead of replaced: %+v", got[0])
	}
}
