// SPDX-License-Identifier: MIT
package blend

import (
	"bytes"
	"testing"
)

func frameOf(t *testing.T, w, h, c int, pix ...uint8) *Frame {
	t.Helper()
	f, err := NewFrame(w, h, c)
	if err != nil {
		t.Fatalf("NewFrame: %v", err)
	}
	if len(pix) != len(f.Pix) {
		t.Fatalf("frame needs %d pixel values, got %d", len(f.Pix), len(pix))
	}
	copy(f.Pix, pix)
	return f
}

func blendOne(t *testing.T, mode Mode, a, b *Frame, mask *Frame, strength float64) *Frame {
	t.Helper()
	bl, err := New(mode)
	if err != nil {
		t.Fatalf("New(%v): %v", mode, err)
	}
	out, err := bl.Blend(a, b, mask, strength)
	if err != nil {
		t.Fatalf("Blend: %v", err)
	}
	return out
}

func TestBlendNormalIsWeightedB(t *testing.T) {
	a := frameOf(t, 2, 1, 1, 10, 20)
	b := frameOf(t, 2, 1, 1, 200, 100)

	out := blendOne(t, ModeNormal, a, b, nil, 0.5)
	if out.Pix[0] != 100 || out.Pix[1] != 50 {
		t.Errorf("normal at strength 0.5 = %v, expected [100 50]", out.Pix)
	}
}

func TestBlendDarkenLighten(t *testing.T) {
	a := frameOf(t, 2, 1, 1, 10, 200)
	b := frameOf(t, 2, 1, 1, 100, 100)

	dark := blendOne(t, ModeDarken, a, b, nil, 1)
	if dark.Pix[0] != 10 || dark.Pix[1] != 100 {
		t.Errorf("darken = %v, expected [10 100]", dark.Pix)
	}
	light := blendOne(t, ModeLighten, a, b, nil, 1)
	if light.Pix[0] != 100 || light.Pix[1] != 200 {
		t.Errorf("lighten = %v, expected [100 200]", light.Pix)
	}
}

func TestBlendMultiply(t *testing.T) {
	a := frameOf(t, 2, 1, 1, 255, 128)
	b := frameOf(t, 2, 1, 1, 128, 255)

	out := blendOne(t, ModeMultiply, a, b, nil, 1)
	if out.Pix[0] != 128 || out.Pix[1] != 128 {
		t.Errorf("multiply = %v, expected [128 128]", out.Pix)
	}
}

func TestBlendAddSaturates(t *testing.T) {
	a := frameOf(t, 2, 1, 1, 200, 10)
	b := frameOf(t, 2, 1, 1, 200, 20)

	out := blendOne(t, ModeAdd, a, b, nil, 1)
	if out.Pix[0] != 255 {
		t.Errorf("saturating add = %d, expected 255", out.Pix[0])
	}
	if out.Pix[1] != 30 {
		t.Errorf("in-range add = %d, expected 30", out.Pix[1])
	}
}

func TestBlendAddStaysInByteRange(t *testing.T) {
	a := frameOf(t, 4, 1, 1, 0, 255, 255, 17)
	b := frameOf(t, 4, 1, 1, 255, 255, 1, 200)

	bl, err := New(ModeAdd)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	for _, strength := range []float64{0, 0.33, 0.5, 1} {
		out, err := bl.Blend(a, b, nil, strength)
		if err != nil {
			t.Fatalf("Blend: %v", err)
		}
		for i, p := range out.Pix {
			if int(p) < int(a.Pix[i]) {
				t.Errorf("strength %v pixel %d = %d, below frame A value %d", strength, i, p, a.Pix[i])
			}
		}
	}
}

func TestBlendScreenKeepsWrappingArithmetic(t *testing.T) {
	// The screen formula runs on raw byte values as if they were unit
	// floats, so every step wraps mod 256. Expected values are computed by
	// hand: 255 * ((1-a) * (1-w) mod 256) mod 256.
	tests := []struct {
		a, b uint8
		want uint8
	}{
		{0, 0, 255},  // (1)(1)=1, 255*1
		{1, 1, 0},    // (0)(0)=0
		{2, 0, 1},    // (255)(1)=255, 255*255 mod 256 = 1
		{10, 20, 85}, // (247*237) mod 256 = 171, 255*171 mod 256 = 85
	}
	for _, tt := range tests {
		a := frameOf(t, 1, 1, 1, tt.a)
		b := frameOf(t, 1, 1, 1, tt.b)
		out := blendOne(t, ModeScreen, a, b, nil, 1)
		if out.Pix[0] != tt.want {
			t.Errorf("screen(%d, %d) = %d, expected %d", tt.a, tt.b, out.Pix[0], tt.want)
		}
	}
}

func TestBlendDifferenceWraps(t *testing.T) {
	a := frameOf(t, 2, 1, 1, 10, 200)
	b := frameOf(t, 2, 1, 1, 30, 50)

	out := blendOne(t, ModeDifference, a, b, nil, 1)
	if out.Pix[0] != 236 { // 10 - 30 wraps
		t.Errorf("wrapping difference = %d, expected 236", out.Pix[0])
	}
	if out.Pix[1] != 150 {
		t.Errorf("difference = %d, expected 150", out.Pix[1])
	}
}

func TestBlendPickIgnoresEverything(t *testing.T) {
	a := frameOf(t, 2, 1, 1, 1, 2)
	b := frameOf(t, 2, 1, 1, 77, 88)
	mask := frameOf(t, 2, 1, 1, 0, 0)

	out := blendOne(t, ModePick, a, b, mask, 0)
	if !bytes.Equal(out.Pix, b.Pix) {
		t.Errorf("pick = %v, expected frame B bit-for-bit %v", out.Pix, b.Pix)
	}
	// The copy must be independent of the input.
	out.Pix[0] = 0
	if b.Pix[0] != 77 {
		t.Error("pick mutated frame B")
	}
}

func TestBlendAlphaMaskWeights(t *testing.T) {
	a := frameOf(t, 2, 1, 1, 0, 0)
	b := frameOf(t, 2, 1, 1, 200, 200)
	mask := frameOf(t, 2, 1, 1, 255, 0)

	out := blendOne(t, ModeNormal, a, b, mask, 1)
	if out.Pix[0] != 200 || out.Pix[1] != 0 {
		t.Errorf("masked normal = %v, expected [200 0]", out.Pix)
	}
}

func TestBlendSingleChannelMaskBroadcasts(t *testing.T) {
	a := frameOf(t, 1, 1, 3, 0, 0, 0)
	b := frameOf(t, 1, 1, 3, 100, 150, 200)
	mask := frameOf(t, 1, 1, 1, 128)

	out := blendOne(t, ModeNormal, a, b, mask, 1)
	want := []uint8{50, 75, 100} // v * 128/255 truncated
	for i, p := range out.Pix {
		if p != want[i] {
			t.Errorf("broadcast channel %d = %d, expected %d", i, p, want[i])
		}
	}
}

func TestBlendShapeMismatch(t *testing.T) {
	a := frameOf(t, 2, 1, 1, 0, 0)
	b := frameOf(t, 1, 1, 1, 0)

	bl, err := New(ModeNormal)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := bl.Blend(a, b, nil, 1); err == nil {
		t.Error("mismatched frame shapes should be rejected")
	}
}

func TestBlendWithDecisionPassthrough(t *testing.T) {
	a := frameOf(t, 2, 1, 1, 1, 2)
	b := frameOf(t, 2, 1, 1, 77, 88)

	bl, err := New(ModeNormal)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	out, err := bl.BlendWithDecision(a, b, nil, false, 1)
	if err != nil {
		t.Fatalf("BlendWithDecision: %v", err)
	}
	if out != a {
		t.Error("should-blend=false must return frame A unmodified")
	}
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		name    string
		want    Mode
		wantErr bool
	}{
		{"normal", ModeNormal, false},
		{"SCREEN", ModeScreen, false},
		{" pick ", ModePick, false},
		{"overlay", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseMode(tt.name)
			if tt.wantErr {
				if err == nil {
					t.Errorf("ParseMode(%q) expected error", tt.name)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Errorf("ParseMode(%q) = %v, %v, expected %v", tt.name, got, err, tt.want)
			}
		})
	}
}
