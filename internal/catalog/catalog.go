// SPDX-License-Identifier: MIT
// Package catalog persists the mixing presets: segments (a video pair plus
// its trigger and blend settings) and presentations (named timelines of
// segments at a fixed resolution).
package catalog

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"nitemix/internal/action"
	"nitemix/internal/analysis"
)

// Segment binds two videos and an optional alpha to the trigger and blend
// configuration used when the segment plays.
type Segment struct {
	ID     string
	Video1 string
	Video2 string
	Alpha  string

	// At least one trigger must be configured: a BPM frequency, a pitch
	// range, or both.
	BPMFrequency *action.Frequency
	MinPitch     *analysis.ChromaClass
	MaxPitch     *analysis.ChromaClass

	BlendOperation string
	BlendFalloff   float64

	UpdatedAt time.Time
	CreatedAt time.Time
}

// Validate enforces the trigger invariant.
func (s Segment) Validate() error {
	if s.Video1 == "" || s.Video2 == "" {
		return fmt.Errorf("catalog: segment needs two videos")
	}
	if s.BPMFrequency == nil && s.MinPitch == nil && s.MaxPitch == nil {
		return fmt.Errorf("catalog: segment needs a bpm frequency or a pitch range")
	}
	if (s.MinPitch == nil) != (s.MaxPitch == nil) {
		return fmt.Errorf("catalog: pitch range needs both min and max")
	}
	if s.BlendOperation == "" {
		return fmt.Errorf("catalog: segment needs a blend operation")
	}
	if s.BlendFalloff < 0 {
		return fmt.Errorf("catalog: blend falloff must be >= 0")
	}
	return nil
}

// Presentation is a named timeline at a fixed output resolution.
type Presentation struct {
	ID        string
	Name      string
	Width     int
	Height    int
	UpdatedAt time.Time
	CreatedAt time.Time
}

// TimelineEntry places a segment inside a presentation.
type TimelineEntry struct {
	SegmentID      string
	PresentationID string
	FromSeconds    float64
	ToSeconds      float64
	CreatedAt      time.Time
}

// NewID returns a random 32-hex-character identifier.
func NewID() string {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		panic(fmt.Sprintf("catalog: reading random id: %v", err))
	}
	return hex.EncodeToString(b[:])
}
