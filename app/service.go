package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/railops/console/api/view"
	"github.com/railops/console/config"
	"github.com/railops/console/core/impact"
	coremetrics "github.com/railops/console/core/metrics"
	"github.com/railops/console/core/reconcile"
	"github.com/railops/console/infra/backend"
	"github.com/railops/console/infra/logger"
	"github.com/railops/console/infra/metrics"
	"github.com/railops/console/infra/poller"
	"github.com/railops/console/infra/push"
	"github.com/railops/console/internal/eventbus"
)

// Service owns the console's runtime: the reconciliation store, the push
// channel, the polling timers, and the view API server. All resources are
// acquired in New and released deterministically in Close.
type Service struct {
	Store *reconcile.Store

	cfg    *config.Config
	client *backend.Client
	push   *push.Channel
	poller *poller.Poller
	bus    *eventbus.Bus
	sink   coremetrics.Sink
	influx *metrics.InfluxSink
	log    logger.Logger

	promEnabled bool
	promPort    string
}

// New creates a Service from the configuration.
func New(cfg *config.Config) (*Service, error) {
	logg := logger.New("service")

	var sinks []coremetrics.Sink
	var influx *metrics.InfluxSink
	if cfg.Metrics.PrometheusEnabled {
		sink, err := metrics.NewPromSink(nil)
		if err != nil {
			return nil, fmt.Errorf("prom sink: %w", err)
		}
		sinks = append(sinks, sink)
	}
	if cfg.Metrics.InfluxEnabled {
		sink := metrics.NewInfluxSinkWithFallback(cfg.Metrics.InfluxURL, cfg.Metrics.InfluxToken, cfg.Metrics.InfluxOrg, cfg.Metrics.InfluxBucket)
		if is, ok := sink.(*metrics.InfluxSink); ok {
			influx = is
		}
		sinks = append(sinks, sink)
	}
	var sink coremetrics.Sink = coremetrics.NopSink{}
	if len(sinks) == 1 {
		sink = sinks[0]
	} else if len(sinks) > 1 {
		sink = metrics.NewMultiSink(sinks...)
	}

	bus := eventbus.New()
	store := reconcile.New(bus, sink, logger.New("reconcile-store"))
	client := backend.New(cfg.Backend)

	svc := &Service{
		Store:       store,
		cfg:         cfg,
		client:      client,
		bus:         bus,
		sink:        sink,
		influx:      influx,
		log:         logg,
		promEnabled: cfg.Metrics.PrometheusEnabled,
		promPort:    cfg.Metrics.PrometheusPort,
	}

	svc.push = push.New(cfg.Push, store.SetPositions, sink)

	tasks, err := svc.pollTasks()
	if err != nil {
		return nil, err
	}
	svc.poller, err = poller.New(tasks, sink)
	if err != nil {
		return nil, fmt.Errorf("poller: %w", err)
	}
	return svc, nil
}

// pollTasks maps each backend resource to its refresh task. Every fetch
// replaces store state only on success; failures keep the stale value.
func (s *Service) pollTasks() ([]poller.Task, error) {
	p := s.cfg.Poll
	return []poller.Task{
		{Name: "schedule", Interval: config.Interval(p.ScheduleSeconds), Run: func(ctx context.Context) error {
			snap, _, err := s.client.Schedule(ctx)
			if err != nil {
				return err
			}
			s.Store.Ingest(snap)
			return nil
		}},
		{Name: "log", Interval: config.Interval(p.LogSeconds), Run: func(ctx context.Context) error {
			entries, err := s.client.AuditLog(ctx)
			if err != nil {
				return err
			}
			s.Store.SetAuditLog(entries)
			return nil
		}},
		{Name: "conflicts", Interval: config.Interval(p.ConflictsSeconds), Run: func(ctx context.Context) error {
			report, err := s.client.Conflicts(ctx)
			if err != nil {
				return err
			}
			s.Store.SetConflicts(report.ConflictLog)
			return nil
		}},
		{Name: "track-status", Interval: config.Interval(p.TrackStatusSeconds), Run: func(ctx context.Context) error {
			ts, err := s.client.TrackStatus(ctx)
			if err != nil {
				return err
			}
			s.Store.SetTrackStatus(ts)
			return nil
		}},
		{Name: "active-delays", Interval: config.Interval(p.DelaysSeconds), Run: func(ctx context.Context) error {
			delays, err := s.client.ActiveDelays(ctx)
			if err != nil {
				return err
			}
			s.Store.SetDelays(delays)
			return nil
		}},
		{Name: "positions", Interval: config.Interval(p.PositionsSeconds), Run: func(ctx context.Context) error {
			// Polled positions back up the push channel while it is down.
			if s.push.Live() {
				return nil
			}
			positions, err := s.client.TrainPositions(ctx)
			if err != nil {
				return err
			}
			s.Store.SetPositions(positions)
			return nil
		}},
		{Name: "trains", Interval: config.Interval(p.DatasetSeconds), Run: func(ctx context.Context) error {
			trains, err := s.client.Trains(ctx)
			if err != nil {
				return err
			}
			s.Store.SetTrains(trains)
			return nil
		}},
		{Name: "stations", Interval: config.Interval(p.DatasetSeconds), Run: func(ctx context.Context) error {
			stations, err := s.client.Stations(ctx)
			if err != nil {
				return err
			}
			s.Store.SetStations(stations)
			return nil
		}},
	}, nil
}

// Run starts the pollers, the push channel, and the API servers, and blocks
// until the context is cancelled.
func (s *Service) Run(ctx context.Context) error {
	// The optimizer's own reference schedule seeds the comparison basis;
	// on failure promotion from polled snapshots takes over.
	if snap, err := s.client.Baseline(ctx); err != nil {
		s.log.Warnf("baseline fetch: %v", err)
	} else if snap.Len() > 0 {
		s.Store.SetBaseline(snap)
	}

	estimator := impact.New(s.client, s.sink, logger.New("impact-estimator"))
	handler := view.NewHandler(s.Store, estimator, s.client, s.bus, s.sink)
	mux := http.NewServeMux()
	handler.Register(mux)
	srv := &http.Server{Addr: s.cfg.API.Addr, Handler: mux}

	s.push.Start()
	s.poller.Start(ctx)
	if s.promEnabled {
		go func() {
			if err := metrics.StartPromServer(ctx, s.promPort); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.log.Errorf("api server shutdown: %v", err)
		}
	}()

	s.log.Infof("view API listening on %s", s.cfg.API.Addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	s.poller.Wait()
	return nil
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	s.push.Stop()
	s.bus.Close()
	if s.influx != nil {
		s.influx.Close()
	}
	return nil
}
