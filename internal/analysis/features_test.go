// SPDX-License-Identifier: MIT
package analysis

import (
	"errors"
	"math"
	"testing"

	"nitemix/internal/buffer"
)

func TestProcessorRequiresADetector(t *testing.T) {
	if _, err := NewProcessor(nil, nil, 0); err == nil {
		t.Error("constructing a processor with no detectors should fail")
	}
}

func TestProcessorAssemblesSnapshot(t *testing.T) {
	tempoEst := &stubTempoEstimator{results: [][]float64{{128}}}
	tempo := newTempoT(t, tempoEst, 1, 1)

	chromaEst := &stubChromaEstimator{matrix: chromaMatrix(ChromaD, ChromaD, ChromaD)}
	pitch := newPitchT(t, chromaEst, 1, 1, false)

	p, err := NewProcessor(tempo, pitch, 0)
	if err != nil {
		t.Fatalf("NewProcessor: %v", err)
	}

	features, err := p.Process(make([]float64, 10))
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if !features.HasBPM || math.Abs(features.BPM-128) > 1e-9 {
		t.Errorf("BPM = %v (has=%v), expected 128", features.BPM, features.HasBPM)
	}
	if len(features.Pitches) == 0 || features.Pitches[0] != ChromaD {
		t.Errorf("Pitches = %v, expected leading D", features.Pitches)
	}
}

func TestProcessorTempoOnly(t *testing.T) {
	tempoEst := &stubTempoEstimator{results: [][]float64{{90}}}
	tempo := newTempoT(t, tempoEst, 1, 1)

	p, err := NewProcessor(tempo, nil, 0)
	if err != nil {
		t.Fatalf("NewProcessor: %v", err)
	}

	features, err := p.Process(make([]float64, 10))
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if !features.HasBPM {
		t.Error("expected BPM from tempo-only processor")
	}
	if features.Pitches != nil {
		t.Errorf("Pitches = %v, expected nil without a pitch detector", features.Pitches)
	}
}

func TestProcessorFirstErrorPropagates(t *testing.T) {
	tempoEst := &stubTempoEstimator{results: [][]float64{{120, 60}}} // ambiguous
	tempo := newTempoT(t, tempoEst, 1, 1)

	chromaEst := &stubChromaEstimator{matrix: chromaMatrix(ChromaC)}
	pitch := newPitchT(t, chromaEst, 44100, 512, true)

	p, err := NewProcessor(tempo, pitch, 0)
	if err != nil {
		t.Fatalf("NewProcessor: %v", err)
	}

	if _, err := p.Process(make([]float64, 10)); !errors.Is(err, ErrUnexpectedOracleOutput) {
		t.Errorf("Process error = %v, expected ErrUnexpectedOracleOutput", err)
	}
}

func TestProcessorNormalization(t *testing.T) {
	// Capture what the detector actually sees through a recording estimator.
	var seen []float64
	rec := tempoEstimatorFunc(func(samples []float64, sampleRate int) ([]float64, error) {
		seen = append(seen[:0], samples...)
		return []float64{120}, nil
	})

	audio, _ := buffer.NewSample(0, 1, 0)
	bpms, _ := buffer.NewSample(0, 1, 0)
	tempo, err := NewTempoDetector(rec, audio, bpms, 44100, 0, false)
	if err != nil {
		t.Fatalf("NewTempoDetector: %v", err)
	}

	p, err := NewProcessor(tempo, nil, 1.0/32768)
	if err != nil {
		t.Fatalf("NewProcessor: %v", err)
	}

	if _, err := p.Process([]float64{32768, -16384}); err != nil {
		t.Fatalf("Process: %v", err)
	}
	if len(seen) != 2 || math.Abs(seen[0]-1.0) > 1e-9 || math.Abs(seen[1]+0.5) > 1e-9 {
		t.Errorf("normalized samples = %v, expected [1, -0.5]", seen)
	}
}

// tempoEstimatorFunc adapts a function to the TempoEstimator interface.
type tempoEstimatorFunc func(samples []float64, sampleRate int) ([]float64, error)

func (f tempoEstimatorFunc) EstimateTempo(samples []float64, sampleRate int) ([]float64, error) {
	return f(samples, sampleRate)
}
