// SPDX-License-Identifier: MIT
package dsp

import (
	"fmt"
	"math"

	"nitemix/internal/analysis"
)

const (
	// Chroma folding only considers bins in the musically useful band.
	minChromaFreqHz = 27.5   // A0
	maxChromaFreqHz = 4186.0 // C8
	// a4FrequencyHz anchors the MIDI mapping.
	a4FrequencyHz = 440.0
)

// ChromaOracle folds STFT magnitude bins onto the 12 pitch classes. Each
// bin's energy lands on the class of its nearest equal-tempered note.
type ChromaOracle struct {
	fftSize int
}

var _ analysis.ChromaEstimator = (*ChromaOracle)(nil)

// NewChromaOracle uses the default analysis frame size.
func NewChromaOracle() *ChromaOracle {
	return &ChromaOracle{fftSize: DefaultFFTSize}
}

// EstimateChroma returns a 12-row matrix of per-class energy, one column per
// analysis frame. Audio too short for a single frame is an error.
func (o *ChromaOracle) EstimateChroma(samples []float64, sampleRate, hopLength int) ([][]float64, error) {
	if sampleRate < 1 {
		return nil, fmt.Errorf("chroma oracle: invalid sample rate %d", sampleRate)
	}
	stft, err := NewSTFT(o.fftSize, hopLength)
	if err != nil {
		return nil, err
	}
	numFrames := stft.NumFrames(len(samples))
	if numFrames < 1 {
		return nil, fmt.Errorf("chroma oracle: %d samples is too short for analysis", len(samples))
	}

	// Map each usable bin to its pitch class once.
	binClass := make([]int, stft.NumBins())
	for bin := range binClass {
		binClass[bin] = -1
		freq := stft.BinFrequency(bin, sampleRate)
		if freq < minChromaFreqHz || freq > maxChromaFreqHz {
			continue
		}
		midi := 69 + 12*math.Log2(freq/a4FrequencyHz)
		binClass[bin] = ((int(math.Round(midi)) % 12) + 12) % 12
	}

	chroma := make([][]float64, analysis.NumChromaClasses)
	for class := range chroma {
		chroma[class] = make([]float64, numFrames)
	}
	for f, magnitude := range stft.Magnitudes(samples) {
		for bin, class := range binClass {
			if class < 0 {
				continue
			}
			// Energy rather than magnitude sharpens the dominant class.
			chroma[class][f] += magnitude[bin] * magnitude[bin]
		}
	}
	return chroma, nil
}
