// SPDX-License-Identifier: MIT
package video

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"nitemix/internal/blend"
	applog "nitemix/internal/log"
)

// LoadClip reads a clip directory: the metadata sidecar plus its zero-padded
// frame%0Nd.png sequence, decoded into packed RGB frames.
func LoadClip(clipDir string) (*Clip, error) {
	metadata, err := LoadMetadata(clipDir)
	if err != nil {
		return nil, err
	}

	paths, err := framePaths(clipDir)
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("video: no frame files in %s", clipDir)
	}

	frames := make([]*blend.Frame, 0, len(paths))
	for _, path := range paths {
		frame, err := LoadFrame(path)
		if err != nil {
			return nil, err
		}
		frames = append(frames, frame)
	}
	applog.Infof("Video: %d frames of clip %q read from %s", len(frames), metadata.Name, clipDir)
	return NewClip(metadata, frames)
}

// framePaths lists frame*.png files ordered by their numeric suffix.
func framePaths(clipDir string) ([]string, error) {
	paths, err := filepath.Glob(filepath.Join(clipDir, "frame*.png"))
	if err != nil {
		return nil, fmt.Errorf("video: listing frames in %s: %w", clipDir, err)
	}
	sort.Slice(paths, func(i, j int) bool {
		return frameIndex(paths[i]) < frameIndex(paths[j])
	})
	return paths, nil
}

func frameIndex(path string) int {
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	n, err := strconv.Atoi(strings.TrimPrefix(stem, "frame"))
	if err != nil {
		return -1
	}
	return n
}

// LoadFrame decodes one PNG into a 3-channel frame. Also used for standalone
// alpha masks.
func LoadFrame(path string) (*blend.Frame, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("video: opening %s: %w", path, err)
	}
	defer f.Close()

	img, err := png.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("video: decoding %s: %w", path, err)
	}
	return frameFromImage(img), nil
}

func frameFromImage(img image.Image) *blend.Frame {
	bounds := img.Bounds()
	frame := &blend.Frame{
		Width:    bounds.Dx(),
		Height:   bounds.Dy(),
		Channels: 3,
		Pix:      make([]uint8, bounds.Dx()*bounds.Dy()*3),
	}
	i := 0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			frame.Pix[i] = uint8(r >> 8)
			frame.Pix[i+1] = uint8(g >> 8)
			frame.Pix[i+2] = uint8(b >> 8)
			i += 3
		}
	}
	return frame
}
