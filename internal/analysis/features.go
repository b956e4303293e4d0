// SPDX-License-Identifier: MIT
package analysis

import (
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Features is the immutable snapshot produced for one audio chunk. HasBPM is
// false and Pitches nil while the corresponding detector is still warming up
// or not configured at all.
type Features struct {
	BPM     float64
	HasBPM  bool
	Pitches []ChromaClass
}

// Processor orchestrates the tempo and pitch detectors over one chunk. The
// detectors share no mutable state, so they run as a fork-join pair; the
// first detector error cancels the snapshot.
type Processor struct {
	tempo      *TempoDetector
	pitch      *PitchDetector
	normFactor float64
}

// NewProcessor requires at least one detector. normFactor scales raw samples
// into [-1, 1] before detection; pass 0 (or 1) when the input is already
// normalized.
func NewProcessor(tempo *TempoDetector, pitch *PitchDetector, normFactor float64) (*Processor, error) {
	if tempo == nil && pitch == nil {
		return nil, fmt.Errorf("feature processor: at least one detector must be configured")
	}
	if normFactor < 0 {
		return nil, fmt.Errorf("feature processor: normalization factor %f must be >= 0", normFactor)
	}
	return &Processor{tempo: tempo, pitch: pitch, normFactor: normFactor}, nil
}

// Process runs the configured detectors concurrently over one chunk, waits
// for both and assembles the feature snapshot. Detector errors are contract
// violations for this chunk only; the caller decides whether to continue the
// stream.
func (p *Processor) Process(chunk []float64) (Features, error) {
	if p.normFactor != 0 && p.normFactor != 1 {
		normalized := make([]float64, len(chunk))
		for i, s := range chunk {
			normalized[i] = s * p.normFactor
		}
		chunk = normalized
	}

	var (
		features Features
		g        errgroup.Group
	)
	if p.tempo != nil {
		g.Go(func() error {
			bpm, ok, err := p.tempo.Detect(chunk)
			if err != nil {
				return err
			}
			features.BPM, features.HasBPM = bpm, ok
			return nil
		})
	}
	if p.pitch != nil {
		g.Go(func() error {
			pitches, err := p.pitch.Detect(chunk)
			if err != nil {
				return err
			}
			features.Pitches = pitches
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Features{}, err
	}
	return features, nil
}
