// SPDX-License-Identifier: MIT
package dsp

import (
	"fmt"
	"math"

	"nitemix/internal/analysis"
)

const (
	// Tempo search range in BPM.
	minTempoBPM = 30.0
	maxTempoBPM = 300.0
	// referenceBPM centers the log-domain tempo prior.
	referenceBPM = 120.0
	// priorSpread is the standard deviation of the prior in octaves.
	priorSpread = 1.0
)

// TempoOracle estimates tempo from an onset-strength envelope. The envelope
// is the half-wave rectified spectral flux of an STFT; its autocorrelation is
// scored against a log-normal prior centered at 120 BPM, and the winning lag
// is refined by parabolic interpolation.
type TempoOracle struct {
	fftSize   int
	hopLength int
}

var _ analysis.TempoEstimator = (*TempoOracle)(nil)

// NewTempoOracle uses the default frame size with the given hop. A hop of 0
// selects fftSize/4.
func NewTempoOracle(hopLength int) *TempoOracle {
	if hopLength < 1 {
		hopLength = DefaultFFTSize / 4
	}
	return &TempoOracle{fftSize: DefaultFFTSize, hopLength: hopLength}
}

// EstimateTempo returns a single BPM candidate for the samples. Audio too
// short for even one analysis frame is an error; a flat envelope (silence)
// yields a candidate of 0.
func (o *TempoOracle) EstimateTempo(samples []float64, sampleRate int) ([]float64, error) {
	if sampleRate < 1 {
		return nil, fmt.Errorf("tempo oracle: invalid sample rate %d", sampleRate)
	}
	stft, err := NewSTFT(o.fftSize, o.hopLength)
	if err != nil {
		return nil, err
	}
	if stft.NumFrames(len(samples)) < 2 {
		return nil, fmt.Errorf("tempo oracle: %d samples is too short for analysis", len(samples))
	}

	envelope := onsetEnvelope(stft.Magnitudes(samples))
	frameRate := float64(sampleRate) / float64(o.hopLength)

	bpm := estimateFromEnvelope(envelope, frameRate)
	return []float64{bpm}, nil
}

// onsetEnvelope reduces a frame-major magnitude spectrogram to one onset
// strength per frame: the mean of the positive per-bin magnitude increases
// since the previous frame. The first frame has no predecessor and is 0.
func onsetEnvelope(frames [][]float64) []float64 {
	envelope := make([]float64, len(frames))
	for f := 1; f < len(frames); f++ {
		var flux float64
		for bin := range frames[f] {
			if d := frames[f][bin] - frames[f-1][bin]; d > 0 {
				flux += d
			}
		}
		envelope[f] = flux / float64(len(frames[f]))
	}
	return envelope
}

// estimateFromEnvelope autocorrelates the envelope over the plausible lag
// range and picks the prior-weighted peak.
func estimateFromEnvelope(envelope []float64, frameRate float64) float64 {
	// Remove the DC component so the autocorrelation reflects periodicity,
	// not overall loudness.
	mean := 0.0
	for _, v := range envelope {
		mean += v
	}
	mean /= float64(len(envelope))
	centered := make([]float64, len(envelope))
	var energy float64
	for i, v := range envelope {
		centered[i] = v - mean
		energy += centered[i] * centered[i]
	}
	if energy == 0 {
		return 0
	}

	minLag := int(math.Max(1, math.Floor(60*frameRate/maxTempoBPM)))
	maxLag := int(math.Ceil(60 * frameRate / minTempoBPM))
	if maxLag >= len(centered) {
		maxLag = len(centered) - 1
	}
	if minLag > maxLag {
		return 0
	}

	ac := make([]float64, maxLag+1)
	for lag := minLag; lag <= maxLag; lag++ {
		var sum float64
		for i := 0; i+lag < len(centered); i++ {
			sum += centered[i] * centered[i+lag]
		}
		ac[lag] = sum
	}

	bestLag, bestScore := 0, math.Inf(-1)
	for lag := minLag; lag <= maxLag; lag++ {
		bpm := 60 * frameRate / float64(lag)
		score := ac[lag] * tempoPrior(bpm)
		if score > bestScore {
			bestScore = score
			bestLag = lag
		}
	}
	if bestLag == 0 || ac[bestLag] <= 0 {
		return 0
	}

	lag := refineLag(ac, bestLag, minLag, maxLag)
	return 60 * frameRate / lag
}

// tempoPrior is a log-normal weight over BPM, peaking at the reference tempo.
// It breaks ties between a tempo and its octave multiples.
func tempoPrior(bpm float64) float64 {
	octaves := math.Log2(bpm / referenceBPM)
	return math.Exp(-0.5 * (octaves / priorSpread) * (octaves / priorSpread))
}

// refineLag applies parabolic interpolation around the winning lag for
// sub-frame tempo resolution. A perfectly symmetric peak stays put.
func refineLag(ac []float64, lag, minLag, maxLag int) float64 {
	if lag <= minLag || lag >= maxLag {
		return float64(lag)
	}
	prev, cur, next := ac[lag-1], ac[lag], ac[lag+1]
	denom := prev - 2*cur + next
	if denom == 0 {
		return float64(lag)
	}
	delta := 0.5 * (prev - next) / denom
	if delta < -0.5 || delta > 0.5 {
		return float64(lag)
	}
	return float64(lag) + delta
}
