// SPDX-License-Identifier: MIT
// Package dsp implements the tempo and chroma estimators backing the
// analysis detectors. Everything here is offline batch processing over
// float64 sample slices; the streaming concerns live upstream.
package dsp

import (
	"fmt"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/dsp/window"

	"nitemix/pkg/bitint"
)

// DefaultFFTSize is the analysis frame length in samples.
const DefaultFFTSize = 2048

// STFT computes short-time magnitude spectra with pre-allocated buffers.
// One instance is not safe for concurrent use; detectors own their own.
type STFT struct {
	fftSize   int
	hopLength int
	fftObj    *fourier.FFT

	input     []float64
	fftOutput []complex128
	win       []float64
}

// NewSTFT pre-allocates the workspace. fftSize must be a power of two and
// hopLength must be positive.
func NewSTFT(fftSize, hopLength int) (*STFT, error) {
	if !bitint.IsPowerOfTwo(fftSize) {
		return nil, fmt.Errorf("stft: fft size %d must be a power of 2", fftSize)
	}
	if hopLength < 1 {
		return nil, fmt.Errorf("stft: hop length %d must be >= 1", hopLength)
	}

	win := make([]float64, fftSize)
	for i := range win {
		win[i] = 1
	}
	window.Hann(win)

	return &STFT{
		fftSize:   fftSize,
		hopLength: hopLength,
		fftObj:    fourier.NewFFT(fftSize),
		input:     make([]float64, fftSize),
		fftOutput: make([]complex128, fftSize/2+1),
		win:       win,
	}, nil
}

// NumBins returns the number of frequency bins per frame.
func (s *STFT) NumBins() int {
	return s.fftSize/2 + 1
}

// NumFrames returns how many full frames fit into n samples.
func (s *STFT) NumFrames(n int) int {
	if n < s.fftSize {
		return 0
	}
	return 1 + (n-s.fftSize)/s.hopLength
}

// BinFrequency returns the center frequency in Hz of bin i.
func (s *STFT) BinFrequency(i, sampleRate int) float64 {
	return s.fftObj.Freq(i) * float64(sampleRate)
}

// Magnitudes returns one magnitude spectrum per frame, frame-major. Frame f
// covers samples [f*hop, f*hop+fftSize).
func (s *STFT) Magnitudes(samples []float64) [][]float64 {
	numFrames := s.NumFrames(len(samples))
	frames := make([][]float64, numFrames)

	for f := 0; f < numFrames; f++ {
		offset := f * s.hopLength
		for i := 0; i < s.fftSize; i++ {
			s.input[i] = samples[offset+i] * s.win[i]
		}

		_ = s.fftObj.Coefficients(s.fftOutput, s.input)
		magnitude := make([]float64, len(s.fftOutput))
		for i := range s.fftOutput {
			magnitude[i] = cmplx.Abs(s.fftOutput[i])
		}
		frames[f] = magnitude
	}
	return frames
}
