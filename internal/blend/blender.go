// SPDX-License-Identifier: MIT
package blend

import (
	"fmt"
	"strings"

	applog "nitemix/internal/log"
)

// Mode names a compositing operation. The set mirrors the classic blend
// modes plus pick, which is a bypass rather than a real blend.
type Mode int

const (
	ModeNormal Mode = iota
	ModeDarken
	ModeLighten
	ModeMultiply
	ModeScreen
	ModeAdd
	ModeDifference
	ModePick
)

var modeNames = [...]string{"normal", "darken", "lighten", "multiply", "screen", "add", "difference", "pick"}

func (m Mode) String() string {
	if m < 0 || int(m) >= len(modeNames) {
		return fmt.Sprintf("Mode(%d)", int(m))
	}
	return modeNames[m]
}

// ParseMode converts a configuration name to a Mode.
func ParseMode(name string) (Mode, error) {
	want := strings.ToLower(strings.TrimSpace(name))
	for i, n := range modeNames {
		if n == want {
			return Mode(i), nil
		}
	}
	return 0, fmt.Errorf("unknown blend mode: %q", name)
}

// Blender applies one fixed compositing mode per instance.
type Blender struct {
	mode Mode
	fn   blendFunc
}

type blendFunc func(a, weighted uint8) uint8

// New constructs a blender for the given mode.
func New(mode Mode) (*Blender, error) {
	var fn blendFunc
	switch mode {
	case ModeNormal:
		fn = func(a, w uint8) uint8 { return w }
	case ModeDarken:
		fn = func(a, w uint8) uint8 {
			if a < w {
				return a
			}
			return w
		}
	case ModeLighten:
		fn = func(a, w uint8) uint8 {
			if a > w {
				return a
			}
			return w
		}
	case ModeMultiply:
		fn = func(a, w uint8) uint8 { return uint8(float64(a) * float64(w) / 255.0) }
	case ModeScreen:
		fn = blendScreen
	case ModeAdd:
		fn = func(a, w uint8) uint8 {
			sum := int(a) + int(w)
			if sum > 255 {
				return 255
			}
			return uint8(sum)
		}
	case ModeDifference:
		// Wrapping subtraction, matching the historical 8-bit arithmetic
		// this mode has always used. Not a true absolute difference.
		fn = func(a, w uint8) uint8 { return a - w }
	case ModePick:
		fn = nil
	default:
		return nil, fmt.Errorf("unknown blend mode: %d", int(mode))
	}
	applog.Infof("Blender: mode %s", mode)
	return &Blender{mode: mode, fn: fn}, nil
}

// blendScreen evaluates 255*(1-a)*(1-w) with every step in wrapping 8-bit
// arithmetic. The formula treats 0..255 pixels as if they were 0..1 floats;
// the literal behavior is kept for compatibility with existing presets.
func blendScreen(a, w uint8) uint8 {
	pa := 1 - a
	pw := 1 - w
	return uint8(255 * int(pa*pw))
}

// Mode returns the configured compositing mode.
func (b *Blender) Mode() Mode {
	return b.mode
}

// Blend composites frameB over frameA at the given strength. The optional
// mask weights frameB per pixel before the strength is applied; a nil mask
// means full coverage. Pick mode ignores strength and mask entirely and
// returns a copy of frameB.
func (b *Blender) Blend(frameA, frameB, mask *Frame, strength float64) (*Frame, error) {
	if frameA == nil || frameB == nil {
		return nil, fmt.Errorf("blend: both frames are required")
	}
	if !frameA.SameShape(frameB) {
		return nil, fmt.Errorf("blend: frame shapes differ (%dx%dx%d vs %dx%dx%d)",
			frameA.Width, frameA.Height, frameA.Channels, frameB.Width, frameB.Height, frameB.Channels)
	}
	if mask != nil && (mask.Width != frameA.Width || mask.Height != frameA.Height) {
		return nil, fmt.Errorf("blend: mask shape %dx%d does not cover %dx%d frames",
			mask.Width, mask.Height, frameA.Width, frameA.Height)
	}

	if b.mode == ModePick {
		return frameB.Clone(), nil
	}

	out := frameA.Clone()
	for i := range out.Pix {
		weighted := float64(frameB.Pix[i])
		if mask != nil {
			weighted *= float64(alphaAt(mask, i, frameA.Channels)) / 255.0
		}
		w := uint8(strength * weighted)
		out.Pix[i] = b.fn(frameA.Pix[i], w)
	}
	return out, nil
}

// BlendWithDecision applies the aggregated verdict: when blending is off the
// first frame passes through untouched without invoking the blend function.
func (b *Blender) BlendWithDecision(frameA, frameB, mask *Frame, shouldBlend bool, strength float64) (*Frame, error) {
	if !shouldBlend {
		return frameA, nil
	}
	return b.Blend(frameA, frameB, mask, strength)
}
