// SPDX-License-Identifier: MIT
package analysis

import "errors"

// ErrUnexpectedOracleOutput indicates an estimator violated its contract
// (e.g. returned zero or several tempo candidates where exactly one scalar
// is required). It is fatal for the current detection call and never retried.
var ErrUnexpectedOracleOutput = errors.New("unexpected oracle output")

// TempoEstimator is the opaque tempo oracle. It returns candidate BPM values
// for the given mono samples; the detector requires exactly one candidate.
type TempoEstimator interface {
	EstimateTempo(samples []float64, sampleRate int) ([]float64, error)
}

// ChromaEstimator is the opaque chroma oracle. It returns a pitch-class
// energy matrix of NumChromaClasses rows by one column per analysis frame,
// where frame i covers samples starting at i*hopLength.
type ChromaEstimator interface {
	EstimateChroma(samples []float64, sampleRate, hopLength int) ([][]float64, error)
}
