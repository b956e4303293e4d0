// SPDX-License-Identifier: MIT
package analysis

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/interp"

	"nitemix/internal/buffer"
)

// DefaultHopLength is the analysis hop passed to the chroma oracle.
const DefaultHopLength = 512

// PitchDetector reduces buffered audio to a sequence of dominant pitch
// classes. In per-second mode (the default, used for song-file analysis) it
// emits one class per whole second of analyzed audio; in latest-only mode
// (live streaming) it emits just the newest analysis frame's class.
//
// Not safe for concurrent use; the detector owns its buffer exclusively.
type PitchDetector struct {
	estimator   ChromaEstimator
	audio       buffer.Buffer
	sampleRate  int
	hopLength   int
	latestOnly  bool
	removeAfter bool
}

// NewPitchDetector constructs a detector over a freshly created buffer.
// hopLength <= 0 selects DefaultHopLength.
func NewPitchDetector(estimator ChromaEstimator, audio buffer.Buffer, sampleRate, hopLength int, latestOnly, removeAfterPredict bool) (*PitchDetector, error) {
	if estimator == nil {
		return nil, fmt.Errorf("pitch detector: estimator must not be nil")
	}
	if audio == nil {
		return nil, fmt.Errorf("pitch detector: audio buffer must not be nil")
	}
	if sampleRate <= 0 {
		return nil, fmt.Errorf("pitch detector: sample rate %d must be positive", sampleRate)
	}
	if hopLength <= 0 {
		hopLength = DefaultHopLength
	}
	return &PitchDetector{
		estimator:   estimator,
		audio:       audio,
		sampleRate:  sampleRate,
		hopLength:   hopLength,
		latestOnly:  latestOnly,
		removeAfter: removeAfterPredict,
	}, nil
}

// Detect ingests one chunk of normalized samples and returns the detected
// pitch-class sequence, or nil while the buffer is still warming up.
func (d *PitchDetector) Detect(chunk []float64) ([]ChromaClass, error) {
	d.audio.Add(chunk)

	if !d.audio.HasEnoughData() {
		return nil, nil
	}

	chroma, err := d.estimator.EstimateChroma(d.audio.Samples(), d.sampleRate, d.hopLength)
	if err != nil {
		return nil, fmt.Errorf("chroma estimation failed: %w", err)
	}

	// Trim the analysis window only after the oracle has seen it, so a
	// throttled prediction still analyzes at least the configured minimum.
	if d.removeAfter {
		d.audio.RemoveLeading()
	}

	if len(chroma) != NumChromaClasses {
		return nil, fmt.Errorf("%w: chroma oracle returned %d rows, want %d", ErrUnexpectedOracleOutput, len(chroma), NumChromaClasses)
	}

	dominant := dominantPerFrame(chroma)
	if len(dominant) == 0 {
		return nil, nil
	}

	if d.latestOnly {
		return []ChromaClass{ChromaClass(math.Round(dominant[len(dominant)-1]))}, nil
	}
	return d.perSecond(dominant)
}

// dominantPerFrame reduces the 12xN chroma matrix to the row index with the
// highest energy in each frame (column-wise argmax).
func dominantPerFrame(chroma [][]float64) []float64 {
	frames := len(chroma[0])
	dominant := make([]float64, frames)
	for f := 0; f < frames; f++ {
		best, bestVal := 0, chroma[0][f]
		for row := 1; row < NumChromaClasses; row++ {
			if chroma[row][f] > bestVal {
				best, bestVal = row, chroma[row][f]
			}
		}
		dominant[f] = float64(best)
	}
	return dominant
}

// perSecond maps frame-indexed classes onto whole seconds: frame i is labeled
// with time i*hop/rate, and classes are linearly interpolated at each integer
// second from 0 up to (but excluding) the rounded last label.
func (d *PitchDetector) perSecond(dominant []float64) ([]ChromaClass, error) {
	frameTimes := make([]float64, len(dominant))
	for i := range dominant {
		frameTimes[i] = float64(i*d.hopLength) / float64(d.sampleRate)
	}

	lastSec := int(math.Round(frameTimes[len(frameTimes)-1]))
	if lastSec <= 0 {
		return nil, nil
	}

	out := make([]ChromaClass, lastSec)
	if len(dominant) == 1 {
		for sec := range out {
			out[sec] = ChromaClass(math.Round(dominant[0]))
		}
		return out, nil
	}

	var pl interp.PiecewiseLinear
	if err := pl.Fit(frameTimes, dominant); err != nil {
		return nil, fmt.Errorf("pitch interpolation failed: %w", err)
	}
	for sec := 0; sec < lastSec; sec++ {
		out[sec] = ChromaClass(math.Round(pl.Predict(float64(sec))))
	}
	return out, nil
}
