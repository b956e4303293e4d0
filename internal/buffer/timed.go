// SPDX-License-Identifier: MIT
package buffer

import (
	"fmt"
	"time"

	applog "nitemix/internal/log"
	"nitemix/internal/timing"
)

// Timed is a rolling buffer keyed by elapsed wall-clock second: each column
// holds the samples that arrived during one second, which keeps irregular
// capture chunk sizes aligned to real time. Columns are capped at a fixed
// per-second capacity and the oldest whole seconds are dropped on overflow.
type Timed struct {
	cols       [][]float64
	recorder   *timing.Recorder
	capPerSec  int
	maxSeconds int // stored as configured max + 1, matching the rotation rule
	minSeconds int // stored as configured min + 1
}

var _ Buffer = (*Timed)(nil)

// NewTimed constructs a second-bounded buffer. capPerSec is normally the
// audio sample rate. clock may be nil for the system clock.
func NewTimed(maxSeconds, minSeconds, capPerSec int, clock timing.Clock) (*Timed, error) {
	if maxSeconds < 1 {
		return nil, fmt.Errorf("%w: max seconds %d must be >= 1", ErrInvalidConfig, maxSeconds)
	}
	if maxSeconds < minSeconds {
		return nil, fmt.Errorf("%w: max seconds %d must be >= min seconds %d", ErrInvalidConfig, maxSeconds, minSeconds)
	}
	if capPerSec < 1 {
		return nil, fmt.Errorf("%w: per-second capacity %d must be >= 1", ErrInvalidConfig, capPerSec)
	}
	t := &Timed{
		recorder:   timing.NewRecorder(time.Second, clock),
		capPerSec:  capPerSec,
		maxSeconds: maxSeconds + 1,
		minSeconds: minSeconds + 1,
	}
	t.cols = [][]float64{make([]float64, 0, capPerSec)}
	return t, nil
}

// Add appends samples to the current second's column, opening a new column
// whenever a full second has elapsed. Samples beyond the per-second capacity
// are dropped with a warning rather than corrupting time alignment.
func (t *Timed) Add(samples []float64) {
	t.recorder.StartIfNotStarted()

	if t.recorder.PeriodPassed() {
		t.cols = append(t.cols, make([]float64, 0, t.capPerSec))
	}

	last := len(t.cols) - 1
	room := t.capPerSec - len(t.cols[last])
	if len(samples) > room {
		applog.Warnf("Buffer: per-second capacity %d exceeded, dropping %d samples", t.capPerSec, len(samples)-room)
		samples = samples[:room]
	}
	t.cols[last] = append(t.cols[last], samples...)

	t.rotate()
}

func (t *Timed) rotate() {
	if len(t.cols) > t.maxSeconds {
		t.cols = append(t.cols[:0], t.cols[len(t.cols)-t.maxSeconds:]...)
	}
}

// HasEnoughData reports whether the buffer spans the minimum number of
// seconds and holds at least one sample.
func (t *Timed) HasEnoughData() bool {
	total := 0
	for _, col := range t.cols {
		total += len(col)
	}
	return len(t.cols) >= t.minSeconds && total > 0
}

// Reset clears all columns. The second timer keeps running.
func (t *Timed) Reset() {
	t.cols = [][]float64{make([]float64, 0, t.capPerSec)}
}

// RemoveLeading drops the oldest whole second.
func (t *Timed) RemoveLeading() {
	if len(t.cols) > 1 {
		t.cols = append(t.cols[:0], t.cols[1:]...)
	} else {
		t.cols[0] = t.cols[0][:0]
	}
}

// Samples flattens the columns chronologically, preserving ragged per-second
// lengths. The returned slice is freshly allocated.
func (t *Timed) Samples() []float64 {
	total := 0
	for _, col := range t.cols {
		total += len(col)
	}
	out := make([]float64, 0, total)
	for _, col := range t.cols {
		out = append(out, col...)
	}
	return out
}

// Seconds returns the number of whole-second columns currently held.
func (t *Timed) Seconds() int {
	return len(t.cols)
}
