// SPDX-License-Identifier: MIT
// Package blend composites two 8-bit video frames under a blend strength.
// All operations allocate a fresh output frame and never mutate their inputs.
package blend

import "fmt"

// Frame is a packed 8-bit image, row-major with interleaved channels.
type Frame struct {
	Width    int
	Height   int
	Channels int
	Pix      []uint8
}

// NewFrame allocates a zeroed frame of the given shape.
func NewFrame(width, height, channels int) (*Frame, error) {
	if width < 1 || height < 1 || channels < 1 {
		return nil, fmt.Errorf("frame: invalid shape %dx%dx%d", width, height, channels)
	}
	return &Frame{
		Width:    width,
		Height:   height,
		Channels: channels,
		Pix:      make([]uint8, width*height*channels),
	}, nil
}

// SameShape reports whether two frames have identical dimensions.
func (f *Frame) SameShape(other *Frame) bool {
	return f.Width == other.Width && f.Height == other.Height && f.Channels == other.Channels
}

// Clone returns a deep copy.
func (f *Frame) Clone() *Frame {
	pix := make([]uint8, len(f.Pix))
	copy(pix, f.Pix)
	return &Frame{Width: f.Width, Height: f.Height, Channels: f.Channels, Pix: pix}
}

// alphaAt returns the mask value covering pixel element i. A single-channel
// mask broadcasts across the frame's channels.
func alphaAt(mask *Frame, i, channels int) uint8 {
	if mask.Channels == 1 && channels > 1 {
		return mask.Pix[i/channels]
	}
	return mask.Pix[i]
}
