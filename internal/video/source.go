// SPDX-License-Identifier: MIT
package video

import (
	"fmt"

	"nitemix/internal/blend"
)

// FrameSource supplies the mixer with an endless sequence of frame pairs.
// The mask is nil when the pair has no alpha layer.
type FrameSource interface {
	NextFramePair() (a, b, mask *blend.Frame, err error)
}

// Clip is a fully decoded frame sequence.
type Clip struct {
	Metadata Metadata
	Frames   []*blend.Frame

	next int
}

// NewClip requires at least one frame, all of the same shape.
func NewClip(metadata Metadata, frames []*blend.Frame) (*Clip, error) {
	if len(frames) == 0 {
		return nil, fmt.Errorf("video: clip %q has no frames", metadata.Name)
	}
	for i, f := range frames {
		if !f.SameShape(frames[0]) {
			return nil, fmt.Errorf("video: clip %q frame %d shape differs from frame 0", metadata.Name, i)
		}
	}
	return &Clip{Metadata: metadata, Frames: frames}, nil
}

// NextFrame returns the next frame, wrapping at the end of the clip.
func (c *Clip) NextFrame() *blend.Frame {
	frame := c.Frames[c.next]
	c.next = (c.next + 1) % len(c.Frames)
	return frame
}

// PairSource cycles two clips in lockstep with an optional static mask. Both
// clips and the mask must already share the mixing resolution.
type PairSource struct {
	clipA *Clip
	clipB *Clip
	mask  *blend.Frame
}

var _ FrameSource = (*PairSource)(nil)

// NewPairSource validates that the clips agree on shape. A nil mask means
// full coverage; a non-nil mask must cover the same resolution (single or
// matching channel count).
func NewPairSource(clipA, clipB *Clip, mask *blend.Frame) (*PairSource, error) {
	if clipA == nil || clipB == nil {
		return nil, fmt.Errorf("video: both clips are required")
	}
	a, b := clipA.Frames[0], clipB.Frames[0]
	if !a.SameShape(b) {
		return nil, fmt.Errorf("video: clip shapes differ (%dx%dx%d vs %dx%dx%d)",
			a.Width, a.Height, a.Channels, b.Width, b.Height, b.Channels)
	}
	if mask != nil {
		if mask.Width != a.Width || mask.Height != a.Height {
			return nil, fmt.Errorf("video: mask %dx%d does not cover %dx%d clips",
				mask.Width, mask.Height, a.Width, a.Height)
		}
		if mask.Channels != 1 && mask.Channels != a.Channels {
			return nil, fmt.Errorf("video: mask must have 1 or %d channels, has %d", a.Channels, mask.Channels)
		}
	}
	return &PairSource{clipA: clipA, clipB: clipB, mask: mask}, nil
}

// NextFramePair advances both clips by one frame.
func (s *PairSource) NextFramePair() (*blend.Frame, *blend.Frame, *blend.Frame, error) {
	return s.clipA.NextFrame(), s.clipB.NextFrame(), s.mask, nil
}
