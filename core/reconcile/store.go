package reconcile

import (
	"sync"

	"github.com/railops/console/core/metrics"
	"github.com/railops/console/core/model"
	"github.com/railops/console/infra/logger"
	"github.com/railops/console/internal/eventbus"
)

// Store owns the console's view of server state: the baseline and current
// schedule snapshots plus the auxiliary polled resources. It is the only
// component allowed to replace them; everything else reads.
//
// Snapshots are replaced, never mutated, so readers holding a *Snapshot see
// a consistent refresh regardless of concurrent ingests. Auxiliary resources
// follow a last-write-wins policy keyed on response arrival order; a failed
// fetch leaves the previous value untouched.
type Store struct {
	mu       sync.RWMutex
	baseline *model.Snapshot
	current  *model.Snapshot
	previous *model.Snapshot

	trains    map[string]model.Train
	stations  map[string]model.Station
	positions map[string]model.TrainPosition
	conflicts []model.Conflict
	delays    []model.DelayRecord
	auditLog  []model.LogEntry
	track     model.TrackStatus

	bus  eventbus.EventBus
	sink metrics.Sink
	log  logger.Logger
}

// New creates an empty Store. bus may be nil when no consumer needs update
// notifications; sink may be nil to disable metrics.
func New(bus eventbus.EventBus, sink metrics.Sink, log logger.Logger) *Store {
	if sink == nil {
		sink = metrics.NopSink{}
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Store{
		trains:    map[string]model.Train{},
		stations:  map[string]model.Station{},
		positions: map[string]model.TrainPosition{},
		bus:       bus,
		sink:      sink,
		log:       log,
	}
}

// Ingest installs a freshly fetched schedule snapshot as current.
//
// Baseline capture runs one fetch cycle behind: when no baseline exists and a
// current snapshot is already held, the held snapshot is promoted to baseline
// before being replaced, so the baseline records the last known state before
// the change rather than the very first observation. Once a baseline exists,
// the displaced current snapshot moves into the previous slot instead.
// Ingesting a snapshot equal to the current one is a no-op.
func (s *Store) Ingest(snap *model.Snapshot) {
	if snap == nil {
		return
	}
	s.mu.Lock()
	if s.current == nil {
		s.current = snap
		s.mu.Unlock()
		s.publish(eventbus.ScheduleUpdated{})
		return
	}
	if snap.Equal(s.current) {
		s.mu.Unlock()
		return
	}
	promoted := false
	if s.baseline == nil {
		s.baseline = s.current
		promoted = true
	} else {
		s.previous = s.current
	}
	s.current = snap
	base := s.baseline
	s.mu.Unlock()

	changed := Diff(base, snap)
	s.sink.RecordSnapshotIngest(len(changed))
	if promoted {
		s.sink.RecordBaselinePromotion()
		s.publish(eventbus.BaselinePromoted{})
	}
	s.log.Debugw("schedule ingested", map[string]any{
		"entries": snap.Len(),
		"changed": len(changed),
	})
	s.publish(eventbus.ScheduleUpdated{Changed: changed})
}

// SetBaseline installs an explicitly fetched baseline snapshot, replacing
// whatever promotion produced. Routine polling must never call this.
func (s *Store) SetBaseline(snap *model.Snapshot) {
	if snap == nil {
		return
	}
	s.mu.Lock()
	s.baseline = snap
	s.mu.Unlock()
	s.publish(eventbus.BaselinePromoted{})
}

// Reset clears the baseline and previous snapshots after an explicit system
// reset. The next differing Ingest re-establishes the baseline.
func (s *Store) Reset() {
	s.mu.Lock()
	s.baseline = nil
	s.previous = nil
	s.mu.Unlock()
	s.log.Infof("reconciliation state reset")
}

// Baseline returns the baseline snapshot, or nil when none is established.
func (s *Store) Baseline() *model.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.baseline
}

// Current returns the latest ingested snapshot.
func (s *Store) Current() *model.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Previous returns the snapshot displaced by the latest differing ingest.
func (s *Store) Previous() *model.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.previous
}

// ComparisonBase returns the best "before" snapshot for display: the
// baseline when one exists, else the previous snapshot, else current.
func (s *Store) ComparisonBase() *model.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.baseline != nil {
		return s.baseline
	}
	if s.previous != nil {
		return s.previous
	}
	return s.current
}

// ChangedTrains returns the IDs of trains whose assignment in the current
// snapshot differs from the comparison basis.
func (s *Store) ChangedTrains() []string {
	s.mu.RLock()
	base, cur := s.baseline, s.current
	if base == nil {
		base = s.previous
	}
	s.mu.RUnlock()
	if base == nil || cur == nil {
		return nil
	}
	return Diff(base, cur)
}

func (s *Store) publish(e eventbus.Event) {
	if s.bus != nil {
		s.bus.Publish(e)
	}
}
