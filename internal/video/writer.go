// SPDX-License-Identifier: MIT
package video

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"

	"nitemix/internal/blend"
)

// DefaultZeroPadding is the frame filename padding used when the final frame
// count is not known up front.
const DefaultZeroPadding = 5

// PNGWriter writes composited frames to a directory as a zero-padded
// frame%0Nd.png sequence, the same layout LoadClip reads back.
type PNGWriter struct {
	dir     string
	padding int
	next    int
}

// NewPNGWriter creates the output directory if needed.
func NewPNGWriter(dir string, padding int) (*PNGWriter, error) {
	if padding < 1 {
		return nil, fmt.Errorf("video: zero padding %d must be >= 1", padding)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("video: creating output dir %s: %w", dir, err)
	}
	return &PNGWriter{dir: dir, padding: padding}, nil
}

// Display encodes one frame and advances the sequence counter.
func (w *PNGWriter) Display(frame *blend.Frame) error {
	img, err := frameToImage(frame)
	if err != nil {
		return err
	}

	name := fmt.Sprintf("frame%0*d.png", w.padding, w.next)
	f, err := os.Create(filepath.Join(w.dir, name))
	if err != nil {
		return fmt.Errorf("video: creating %s: %w", name, err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("video: encoding %s: %w", name, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("video: closing %s: %w", name, err)
	}
	w.next++
	return nil
}

// FramesWritten returns how many frames have been displayed so far.
func (w *PNGWriter) FramesWritten() int {
	return w.next
}

func frameToImage(frame *blend.Frame) (image.Image, error) {
	switch frame.Channels {
	case 1:
		img := image.NewGray(image.Rect(0, 0, frame.Width, frame.Height))
		copy(img.Pix, frame.Pix)
		return img, nil
	case 3:
		img := image.NewNRGBA(image.Rect(0, 0, frame.Width, frame.Height))
		src, dst := 0, 0
		for i := 0; i < frame.Width*frame.Height; i++ {
			img.Pix[dst] = frame.Pix[src]
			img.Pix[dst+1] = frame.Pix[src+1]
			img.Pix[dst+2] = frame.Pix[src+2]
			img.Pix[dst+3] = 0xff
			src += 3
			dst += 4
		}
		return img, nil
	default:
		return nil, fmt.Errorf("video: cannot encode a %d-channel frame", frame.Channels)
	}
}
