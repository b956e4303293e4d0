// SPDX-License-Identifier: MIT
// Package video provides the frame source feeding the mixer: clips stored as
// pre-rendered image sequences on disk, cycled forever. Frames arrive
// already sized to the mixing resolution; nothing here resizes.
package video

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	applog "nitemix/internal/log"
)

// MetadataFilename is the per-clip sidecar describing the frame sequence.
const MetadataFilename = "metadata.json"

// Metadata describes one extracted clip. NumFrames is fractional because
// upstream extraction tools report it that way for variable-rate sources.
type Metadata struct {
	Name      string  `json:"name"`
	NumFrames float64 `json:"num_frames"`
	FPS       float64 `json:"fps"`
	Extension string  `json:"extension"`
	Width     int     `json:"width"`
	Height    int     `json:"height"`
}

// ZeroPadding returns the digit count used in frame filenames, derived from
// the frame count rounded up.
func (m Metadata) ZeroPadding() int {
	n := int(m.NumFrames)
	if float64(n) != m.NumFrames {
		n++
	}
	return len(strconv.Itoa(n))
}

// FrameDuration returns the wall-clock time one frame covers, in
// milliseconds.
func (m Metadata) FrameDuration() float64 {
	if m.FPS <= 0 {
		return 0
	}
	return 1000.0 / m.FPS
}

// LoadMetadata reads the sidecar from a clip directory.
func LoadMetadata(clipDir string) (Metadata, error) {
	path := filepath.Join(clipDir, MetadataFilename)
	data, err := os.ReadFile(path)
	if err != nil {
		return Metadata{}, fmt.Errorf("video: reading %s: %w", path, err)
	}

	var m Metadata
	if err := json.Unmarshal(data, &m); err != nil {
		return Metadata{}, fmt.Errorf("video: parsing %s: %w", path, err)
	}
	applog.Infof("Video: metadata read for clip %q (%d frames at %.2f fps)", m.Name, int(m.NumFrames), m.FPS)
	return m, nil
}

// WriteMetadata writes the sidecar into a clip directory.
func (m Metadata) WriteMetadata(clipDir string) error {
	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("video: encoding metadata: %w", err)
	}
	path := filepath.Join(clipDir, MetadataFilename)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("video: writing %s: %w", path, err)
	}
	applog.Infof("Video: metadata of clip %q written to %s", m.Name, path)
	return nil
}
