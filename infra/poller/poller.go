// Package poller runs the console's fixed-interval refresh timers, one per
// backend resource. Timers are independent: a failing resource never stalls
// or clears another, and a failed tick leaves the previously fetched value
// in place.
package poller

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/railops/console/core/metrics"
	"github.com/railops/console/infra/logger"
)

// Task is one polled resource: a name for logging/metrics and the fetch to
// run each tick.
type Task struct {
	Name     string
	Interval time.Duration
	Run      func(ctx context.Context) error
}

// Poller drives a set of tasks until its context is cancelled. Ticks for the
// same resource may overlap when a fetch outlasts the interval; the store's
// last-write-wins merge makes completion order safe.
type Poller struct {
	tasks []Task
	sink  metrics.Sink
	log   logger.Logger
	wg    sync.WaitGroup
}

// New creates a Poller over the given tasks.
func New(tasks []Task, sink metrics.Sink) (*Poller, error) {
	for _, t := range tasks {
		if t.Name == "" || t.Run == nil {
			return nil, fmt.Errorf("task needs a name and a run function")
		}
		if t.Interval <= 0 {
			return nil, fmt.Errorf("task %s: interval must be positive", t.Name)
		}
	}
	if sink == nil {
		sink = metrics.NopSink{}
	}
	return &Poller{tasks: tasks, sink: sink, log: logger.New("poller")}, nil
}

// Start launches one timer goroutine per task. Each task runs once
// immediately, then on every tick. Start returns right away; Wait blocks
// until all timers exit after ctx is cancelled.
func (p *Poller) Start(ctx context.Context) {
	for _, task := range p.tasks {
		p.wg.Add(1)
		go p.loop(ctx, task)
	}
}

// Wait blocks until all task loops have exited.
func (p *Poller) Wait() { p.wg.Wait() }

func (p *Poller) loop(ctx context.Context, task Task) {
	defer p.wg.Done()
	ticker := time.NewTicker(task.Interval)
	defer ticker.Stop()
	p.tick(ctx, task)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			// Fetches run detached so a slow response cannot delay the
			// next tick for this resource.
			go p.tick(ctx, task)
		}
	}
}

func (p *Poller) tick(ctx context.Context, task Task) {
	start := time.Now()
	if err := task.Run(ctx); err != nil {
		if ctx.Err() != nil {
			return
		}
		p.sink.RecordPollError(task.Name)
		p.log.Errorf("poll %s: %v", task.Name, err)
		return
	}
	p.sink.RecordPollSuccess(task.Name, time.Since(start))
}
