package config

import (
	"fmt"
	"time"
)

// PollConfig sets the per-resource refresh intervals, in seconds. Exactly
// one timer per resource is active at a time.
type PollConfig struct {
	ScheduleSeconds    int `json:"schedule_seconds"`
	LogSeconds         int `json:"log_seconds"`
	ConflictsSeconds   int `json:"conflicts_seconds"`
	TrackStatusSeconds int `json:"track_status_seconds"`
	DelaysSeconds      int `json:"delays_seconds"`
	PositionsSeconds   int `json:"positions_seconds"`
	DatasetSeconds     int `json:"dataset_seconds"`
}

// SetDefaults applies the standard refresh cadence.
func (c *PollConfig) SetDefaults() {
	if c.ScheduleSeconds <= 0 {
		c.ScheduleSeconds = 10
	}
	if c.LogSeconds <= 0 {
		c.LogSeconds = 5
	}
	if c.ConflictsSeconds <= 0 {
		c.ConflictsSeconds = 5
	}
	if c.TrackStatusSeconds <= 0 {
		c.TrackStatusSeconds = 5
	}
	if c.DelaysSeconds <= 0 {
		c.DelaysSeconds = 10
	}
	if c.PositionsSeconds <= 0 {
		c.PositionsSeconds = 3
	}
	if c.DatasetSeconds <= 0 {
		c.DatasetSeconds = 30
	}
}

// Validate checks the configured cadence stays within the supported range.
func (c PollConfig) Validate() error {
	for name, secs := range map[string]int{
		"schedule_seconds":     c.ScheduleSeconds,
		"log_seconds":          c.LogSeconds,
		"conflicts_seconds":    c.ConflictsSeconds,
		"track_status_seconds": c.TrackStatusSeconds,
		"delays_seconds":       c.DelaysSeconds,
		"positions_seconds":    c.PositionsSeconds,
		"dataset_seconds":      c.DatasetSeconds,
	} {
		if secs < 1 || secs > 300 {
			return fmt.Errorf("%s: %d out of range [1,300]", name, secs)
		}
	}
	return nil
}

// Interval converts a configured value to a duration.
func Interval(seconds int) time.Duration {
	return time.Duration(seconds) * time.Second
}
