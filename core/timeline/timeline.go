// Package timeline computes the shared time axis and bar geometry for
// Gantt-style schedule comparison. Both comparison panels are laid out
// against one shared window so bar widths stay comparable.
package timeline

import (
	"time"

	"github.com/railops/console/core/model"
)

const (
	emptyPadding = 30 * time.Minute
	minPadding   = 30 * time.Minute
	maxPadding   = 2 * time.Hour

	// MinBarWidthPercent keeps zero-duration or clipped entries clickable.
	MinBarWidthPercent = 0.5

	// minSpan guards percentage math against a zero-width window.
	minSpan = time.Millisecond
)

// Window is a visible time range on the schedule axis.
type Window struct {
	Min time.Time `json:"min"`
	Max time.Time `json:"max"`
}

// Span returns the window's duration, never below minSpan.
func (w Window) Span() time.Duration {
	span := w.Max.Sub(w.Min)
	if span < minSpan {
		return minSpan
	}
	return span
}

// ComputeWindow derives the visible window for a set of entries. With no
// entries the window is centred on now with fixed padding on both sides;
// otherwise it spans the min/max of all arrivals and departures, padded by
// max(30min, min(2h, 10% of span)).
func ComputeWindow(entries []model.ScheduleEntry, now time.Time) Window {
	if len(entries) == 0 {
		return Window{Min: now.Add(-emptyPadding), Max: now.Add(emptyPadding)}
	}
	min := entries[0].ActualArrival.Time
	max := entries[0].ActualDeparture.Time
	for _, e := range entries[1:] {
		if e.ActualArrival.Before(min) {
			min = e.ActualArrival.Time
		}
		if e.ActualDeparture.After(max) {
			max = e.ActualDeparture.Time
		}
	}
	pad := max.Sub(min) / 10
	if pad < minPadding {
		pad = minPadding
	}
	if pad > maxPadding {
		pad = maxPadding
	}
	return Window{Min: min.Add(-pad), Max: max.Add(pad)}
}

// SharedWindow unions two windows so both comparison panels share one axis
// scale and tick positions. It is commutative.
func SharedWindow(a, b Window) Window {
	w := a
	if b.Min.Before(w.Min) {
		w.Min = b.Min
	}
	if b.Max.After(w.Max) {
		w.Max = b.Max
	}
	return w
}

// Tick is one axis mark, positioned as a percentage offset into the window.
type Tick struct {
	At      time.Time `json:"at"`
	Percent float64   `json:"percent"`
}

// Ticks emits axis marks at a span-dependent interval: 10 minutes for spans
// up to 2 hours, 30 minutes up to 8 hours, 60 minutes beyond. Marks run from
// the interval floor of the window start through its ceiling, so the first
// and last tick may sit just outside [0,100].
func Ticks(w Window) []Tick {
	span := w.Span()
	interval := time.Hour
	switch {
	case span <= 2*time.Hour:
		interval = 10 * time.Minute
	case span <= 8*time.Hour:
		interval = 30 * time.Minute
	}
	ivMs := interval.Milliseconds()
	start := (w.Min.UnixMilli() / ivMs) * ivMs
	if w.Min.UnixMilli() < 0 && w.Min.UnixMilli()%ivMs != 0 {
		start -= ivMs
	}
	end := w.Max.UnixMilli()
	if rem := end % ivMs; rem != 0 {
		end += ivMs - rem
	}
	spanMs := float64(span.Milliseconds())
	var ticks []Tick
	for t := start; t <= end; t += ivMs {
		ticks = append(ticks, Tick{
			At:      time.UnixMilli(t).UTC(),
			Percent: float64(t-w.Min.UnixMilli()) / spanMs * 100,
		})
	}
	return ticks
}

// Bar is the horizontal placement of one schedule entry, in percent of the
// window width.
type Bar struct {
	LeftPercent  float64 `json:"left_percent"`
	WidthPercent float64 `json:"width_percent"`
}

// PlaceBar positions an entry inside the window. Left is clamped at zero and
// width is floored at MinBarWidthPercent.
func PlaceBar(e model.ScheduleEntry, w Window) Bar {
	spanMs := float64(w.Span().Milliseconds())
	left := float64(e.ActualArrival.UnixMilli()-w.Min.UnixMilli()) / spanMs * 100
	if left < 0 {
		left = 0
	}
	width := float64(e.ActualDeparture.UnixMilli()-e.ActualArrival.UnixMilli()) / spanMs * 100
	if width < MinBarWidthPercent {
		width = MinBarWidthPercent
	}
	return Bar{LeftPercent: left, WidthPercent: width}
}
