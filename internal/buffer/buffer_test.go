// SPDX-License-Identifier: MIT
package buffer

import (
	"errors"
	"math"
	"testing"
)

func ones(n int) []float64 {
	s := make([]float64, n)
	for i := range s {
		s[i] = 1
	}
	return s
}

func newSampleT(t *testing.T) *Sample {
	t.Helper()
	b, err := NewSample(10, 5, 0)
	if err != nil {
		t.Fatalf("NewSample: %v", err)
	}
	return b
}

func TestSampleInitialState(t *testing.T) {
	b := newSampleT(t)
	if b.Len() != 0 {
		t.Errorf("Len = %d, expected 0", b.Len())
	}
	if b.HasEnoughData() {
		t.Error("empty buffer should not have enough data")
	}
}

func TestSampleInvalidConfiguration(t *testing.T) {
	tests := []struct {
		name                   string
		max, min, removeCount  int
	}{
		{"negative min", 10, -1, 0},
		{"max below min", 4, 5, 0},
		{"negative remove count", 10, 5, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSample(tt.max, tt.min, tt.removeCount)
			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("NewSample(%d, %d, %d) error = %v, expected ErrInvalidConfig",
					tt.max, tt.min, tt.removeCount, err)
			}
		})
	}
}

func TestSampleUnboundedMax(t *testing.T) {
	b, err := NewSample(0, 0, 0)
	if err != nil {
		t.Fatalf("NewSample: %v", err)
	}
	b.Add(ones(10000))
	if b.Len() != 10000 {
		t.Errorf("Len = %d, expected 10000 with unbounded max", b.Len())
	}
}

func TestSampleAdd(t *testing.T) {
	b := newSampleT(t)
	b.Add([]float64{1, 2, 3})

	got := b.Samples()
	want := []float64{1, 2, 3}
	if len(got) != len(want) {
		t.Fatalf("Samples length = %d, expected %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Samples[%d] = %v, expected %v", i, got[i], want[i])
		}
	}
}

func TestSampleRotationKeepsTail(t *testing.T) {
	b := newSampleT(t)
	// Add 12 samples into a max-10 buffer; expect the most recent 10.
	for i := 0; i < 12; i++ {
		b.Add([]float64{float64(i)})
	}

	got := b.Samples()
	if len(got) != 10 {
		t.Fatalf("Len = %d, expected 10 after rotation", len(got))
	}
	for i := 0; i < 10; i++ {
		if got[i] != float64(i+2) {
			t.Errorf("Samples[%d] = %v, expected %v", i, got[i], float64(i+2))
		}
	}
}

func TestSampleHasEnoughData(t *testing.T) {
	b := newSampleT(t)
	b.Add(ones(3))
	if b.HasEnoughData() {
		t.Error("3 of 5 samples should not be enough")
	}
	b.Add(ones(2))
	if !b.HasEnoughData() {
		t.Error("5 of 5 samples should be enough")
	}
}

func TestSampleReset(t *testing.T) {
	b := newSampleT(t)
	b.Add(ones(8))
	b.Reset()
	if b.Len() != 0 {
		t.Errorf("Len = %d after Reset, expected 0", b.Len())
	}
}

func TestSampleRemoveLeading(t *testing.T) {
	b, err := NewSample(0, 0, 3)
	if err != nil {
		t.Fatalf("NewSample: %v", err)
	}
	b.Add([]float64{1, 2, 3, 4, 5})
	b.RemoveLeading()

	got := b.Samples()
	want := []float64{4, 5}
	if len(got) != len(want) {
		t.Fatalf("Len = %d after RemoveLeading, expected %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Samples[%d] = %v, expected %v", i, got[i], want[i])
		}
	}

	// Removing more than remains empties the buffer without faulting.
	b.RemoveLeading()
	if b.Len() != 0 {
		t.Errorf("Len = %d, expected 0", b.Len())
	}
}

func TestSampleScalarReadings(t *testing.T) {
	// The BPM-history buffer stores one scalar per prediction.
	b, err := NewSample(4, 2, 0)
	if err != nil {
		t.Fatalf("NewSample: %v", err)
	}
	for _, bpm := range []float64{120, 121, 119, 120, 122} {
		b.Add([]float64{bpm})
	}
	got := b.Samples()
	if len(got) != 4 {
		t.Fatalf("Len = %d, expected 4", len(got))
	}
	if got[0] != 121 || got[3] != 122 {
		t.Errorf("Samples = %v, expected oldest=121 newest=122", got)
	}
	if math.IsNaN(got[0]) {
		t.Error("unexpected NaN in buffer")
	}
}
