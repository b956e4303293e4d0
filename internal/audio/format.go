// SPDX-License-Identifier: MIT
/*
Package audio provides the capture side of the pipeline:
- PortAudio input streaming with pre-allocated buffers
- Device discovery and listing
- WAV song decoding into fixed-size analysis chunks
*/
package audio

// Format describes the integer sample encoding of a capture stream.
type Format struct {
	Name          string
	BitsPerSample int
}

// MaxValue returns 2^bits, the divisor used for normalization.
func (f Format) MaxValue() int {
	return 1 << f.BitsPerSample
}

// NormalizationFactor converts raw integer samples toward [-0.5, 0.5).
// The full 2^bits range is used as the divisor, matching the scaling the
// detectors were tuned against.
func (f Format) NormalizationFactor() float64 {
	return 1 / float64(f.MaxValue())
}

var (
	// ShortFormat is 16-bit signed capture, the default.
	ShortFormat = Format{Name: "short", BitsPerSample: 16}
	// Int32Format matches PortAudio's native int32 callback buffers.
	Int32Format = Format{Name: "int32", BitsPerSample: 32}
)
