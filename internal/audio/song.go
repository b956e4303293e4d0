// SPDX-License-Identifier: MIT
package audio

import (
	"fmt"
	"os"

	"github.com/go-audio/wav"

	applog "nitemix/internal/log"
)

// Song is a fully decoded mono track with raw integer-valued samples.
type Song struct {
	Name       string
	SampleRate int
	BitDepth   int
	Samples    []float64
}

// ReadSong decodes a WAV file, downmixing multi-channel audio to the first
// channel. Samples keep their integer scale; normalization happens in the
// feature processor.
func ReadSong(path string) (*Song, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("song: opening %s: %w", path, err)
	}
	defer f.Close()

	decoder := wav.NewDecoder(f)
	if !decoder.IsValidFile() {
		return nil, fmt.Errorf("song: %s is not a valid WAV file", path)
	}

	buf, err := decoder.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("song: decoding %s: %w", path, err)
	}

	channels := buf.Format.NumChannels
	if channels < 1 {
		return nil, fmt.Errorf("song: %s has no channels", path)
	}

	samples := make([]float64, 0, len(buf.Data)/channels)
	for i := 0; i < len(buf.Data); i += channels {
		samples = append(samples, float64(buf.Data[i]))
	}

	song := &Song{
		Name:       path,
		SampleRate: buf.Format.SampleRate,
		BitDepth:   int(decoder.BitDepth),
		Samples:    samples,
	}
	applog.Infof("Song: decoded %s (%d samples at %dHz, %d-bit)",
		path, len(song.Samples), song.SampleRate, song.BitDepth)
	return song, nil
}

// DurationSeconds returns the song length in seconds.
func (s *Song) DurationSeconds() float64 {
	if s.SampleRate <= 0 {
		return 0
	}
	return float64(len(s.Samples)) / float64(s.SampleRate)
}

// Chunks splits the song into consecutive chunks of chunkSize samples. The
// final partial chunk is kept; detectors handle short tails via their
// buffers.
func (s *Song) Chunks(chunkSize int) ([][]float64, error) {
	if chunkSize < 1 {
		return nil, fmt.Errorf("song: invalid chunk size %d", chunkSize)
	}
	var chunks [][]float64
	for start := 0; start < len(s.Samples); start += chunkSize {
		end := start + chunkSize
		if end > len(s.Samples) {
			end = len(s.Samples)
		}
		chunks = append(chunks, s.Samples[start:end])
	}
	return chunks, nil
}
