// SPDX-License-Identifier: MIT
// Package timing provides the wall-clock period recorder used for keep-alive
// heartbeats and for aligning irregular sample chunks to whole seconds.
package timing

import (
	"fmt"
	"time"
)

// Clock abstracts time.Now so period logic can be driven deterministically
// in tests.
type Clock interface {
	Now() time.Time
}

// SystemClock is the production Clock backed by time.Now.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// Recorder tracks elapsed wall-clock time and reports when a configured
// period has passed. Each positive PeriodPassed report advances the period
// boundary, so a caller polling every tick observes the transition exactly
// once per period. Not safe for concurrent use; each owner keeps its own.
type Recorder struct {
	clock      Clock
	period     time.Duration
	startedAt  time.Time
	boundaryAt time.Time
	started    bool
}

// NewRecorder returns a Recorder with the given period. A zero or negative
// period defaults to one second.
func NewRecorder(period time.Duration, clock Clock) *Recorder {
	if period <= 0 {
		period = time.Second
	}
	if clock == nil {
		clock = SystemClock{}
	}
	return &Recorder{clock: clock, period: period}
}

// StartIfNotStarted begins recording on the first call; later calls are no-ops.
func (r *Recorder) StartIfNotStarted() {
	if r.started {
		return
	}
	now := r.clock.Now()
	r.started = true
	r.startedAt = now
	r.boundaryAt = now
}

// PeriodPassed reports whether a full period elapsed since the last boundary,
// advancing the boundary when it did. Returns false before StartIfNotStarted.
func (r *Recorder) PeriodPassed() bool {
	if !r.started {
		return false
	}
	now := r.clock.Now()
	if now.Sub(r.boundaryAt) >= r.period {
		r.boundaryAt = r.boundaryAt.Add(r.period)
		// A long stall may leave the boundary more than one period behind;
		// snap forward so the next poll is not immediately positive again.
		if now.Sub(r.boundaryAt) >= r.period {
			r.boundaryAt = now
		}
		return true
	}
	return false
}

// Elapsed returns the time since recording started, zero if not started.
func (r *Recorder) Elapsed() time.Duration {
	if !r.started {
		return 0
	}
	return r.clock.Now().Sub(r.startedAt)
}

// ElapsedString formats the elapsed time as mm:ss for keep-alive logs.
func (r *Recorder) ElapsedString() string {
	e := r.Elapsed().Round(time.Second)
	return fmt.Sprintf("%02d:%02d", int(e.Minutes()), int(e.Seconds())%60)
}
