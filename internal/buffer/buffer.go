// SPDX-License-Identifier: MIT
// Package buffer implements the bounded rolling sample buffers backing the
// tempo and pitch detectors. Two disciplines exist: Sample is bounded by a
// raw element count, Timed is bounded by wall-clock seconds. Buffers are
// owned exclusively by one detector and are not safe for concurrent use.
package buffer

import (
	"errors"
	"fmt"
)

// ErrInvalidConfig is returned when buffer bounds are inconsistent.
var ErrInvalidConfig = errors.New("invalid buffer configuration")

// Buffer is the discipline shared by both variants.
type Buffer interface {
	// Add appends samples, dropping the oldest data on overflow.
	Add(samples []float64)
	// HasEnoughData reports whether the configured minimum is buffered.
	HasEnoughData() bool
	// Reset clears the buffer to empty.
	Reset()
	// RemoveLeading drops the configured amount of oldest data. Used to
	// throttle prediction frequency without discarding everything.
	RemoveLeading()
	// Samples returns the buffered data in chronological order. The slice
	// must be treated as read-only and is only valid until the next Add.
	Samples() []float64
}

// Sample is a count-bounded rolling buffer of float64 readings.
type Sample struct {
	data        []float64
	maxSize     int // 0 means unbounded
	minSize     int
	removeCount int
}

var _ Buffer = (*Sample)(nil)

// NewSample constructs a count-bounded buffer. maxSize of 0 means unbounded.
// removeCount is the number of oldest elements RemoveLeading drops.
func NewSample(maxSize, minSize, removeCount int) (*Sample, error) {
	if minSize < 0 {
		return nil, fmt.Errorf("%w: min size %d must be >= 0", ErrInvalidConfig, minSize)
	}
	if maxSize != 0 && maxSize < minSize {
		return nil, fmt.Errorf("%w: max size %d must be >= min size %d", ErrInvalidConfig, maxSize, minSize)
	}
	if removeCount < 0 {
		return nil, fmt.Errorf("%w: remove count %d must be >= 0", ErrInvalidConfig, removeCount)
	}
	return &Sample{maxSize: maxSize, minSize: minSize, removeCount: removeCount}, nil
}

// Add appends samples, then truncates from the front to maxSize. Truncation
// is O(size), acceptable because size is bounded.
func (b *Sample) Add(samples []float64) {
	b.data = append(b.data, samples...)
	if b.maxSize != 0 && len(b.data) > b.maxSize {
		b.data = append(b.data[:0], b.data[len(b.data)-b.maxSize:]...)
	}
}

// HasEnoughData reports whether at least minSize samples are buffered.
func (b *Sample) HasEnoughData() bool {
	return len(b.data) >= b.minSize
}

// Reset clears the buffer.
func (b *Sample) Reset() {
	b.data = b.data[:0]
}

// RemoveLeading drops the configured number of oldest samples.
func (b *Sample) RemoveLeading() {
	n := b.removeCount
	if n > len(b.data) {
		n = len(b.data)
	}
	b.data = append(b.data[:0], b.data[n:]...)
}

// Samples returns the buffered data, oldest first.
func (b *Sample) Samples() []float64 {
	return b.data
}

// Len returns the number of buffered samples.
func (b *Sample) Len() int {
	return len(b.data)
}
