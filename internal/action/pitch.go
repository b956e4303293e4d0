// SPDX-License-Identifier: MIT
package action

import (
	"fmt"
	"math"

	applog "nitemix/internal/log"
	"nitemix/internal/analysis"
)

// PitchAction fires while the dominant pitch class at the current elapsed
// second lies inside an inclusive chroma range.
type PitchAction struct {
	minPitch analysis.ChromaClass
	maxPitch analysis.ChromaClass

	totalMS float64
	pitches []analysis.ChromaClass
}

var _ Action = (*PitchAction)(nil)

// NewPitchAction constructs a pitch-range trigger. The range is inclusive on
// both ends and must contain at least two classes.
func NewPitchAction(minPitch, maxPitch analysis.ChromaClass) (*PitchAction, error) {
	if !minPitch.Valid() || !maxPitch.Valid() {
		return nil, fmt.Errorf("%w: pitches must be chroma classes 0..%d", ErrInvalidRange, analysis.NumChromaClasses-1)
	}
	if minPitch >= maxPitch {
		return nil, fmt.Errorf("%w: min pitch %s must be below max pitch %s", ErrInvalidRange, minPitch, maxPitch)
	}
	applog.Infof("Action: pitch trigger (range: %s..%s)", minPitch, maxPitch)
	return &PitchAction{minPitch: minPitch, maxPitch: maxPitch}, nil
}

// SetPitches replaces the per-second chroma sequence from the latest
// feature snapshot.
func (a *PitchAction) SetPitches(pitches []analysis.ChromaClass) {
	a.pitches = pitches
}

// Act accumulates elapsed time and fires iff the chroma class at the rounded
// elapsed second is inside the configured range. Asking about a second past
// the analyzed sequence is a fatal ErrOutOfRangeSecond: it means the caller
// outran the analysis, and clamping would hide that bug.
func (a *PitchAction) Act(elapsedMS float64) (bool, error) {
	a.totalMS += elapsedMS
	if a.pitches == nil {
		return false, nil
	}

	sec := int(math.Round(a.totalMS / 1000))
	if sec >= len(a.pitches) {
		return false, fmt.Errorf("%w: second %d requested, %d seconds analyzed", ErrOutOfRangeSecond, sec, len(a.pitches))
	}

	chroma := a.pitches[sec]
	if a.minPitch <= chroma && chroma <= a.maxPitch {
		applog.Debugf("Action: pitch trigger fired (chroma: %s, range: %s..%s)", chroma, a.minPitch, a.maxPitch)
		return true, nil
	}
	return false, nil
}
