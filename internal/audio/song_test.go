// SPDX-License-Identifier: MIT
package audio

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// writeTestWAV encodes a mono 16-bit WAV with the given samples.
func writeTestWAV(t *testing.T, path string, sampleRate int, samples []int) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	defer f.Close()

	encoder := wav.NewEncoder(f, sampleRate, 16, 1, 1)
	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: 1, SampleRate: sampleRate},
		Data:           samples,
		SourceBitDepth: 16,
	}
	if err := encoder.Write(buf); err != nil {
		t.Fatalf("encoder.Write: %v", err)
	}
	if err := encoder.Close(); err != nil {
		t.Fatalf("encoder.Close: %v", err)
	}
}

func TestReadSongRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tone.wav")
	samples := make([]int, 2000)
	for i := range samples {
		samples[i] = int(10000 * math.Sin(2*math.Pi*440*float64(i)/8000))
	}
	writeTestWAV(t, path, 8000, samples)

	song, err := ReadSong(path)
	if err != nil {
		t.Fatalf("ReadSong: %v", err)
	}
	if song.SampleRate != 8000 {
		t.Errorf("SampleRate = %d, expected 8000", song.SampleRate)
	}
	if len(song.Samples) != len(samples) {
		t.Fatalf("decoded %d samples, expected %d", len(song.Samples), len(samples))
	}
	for i := range samples {
		if song.Samples[i] != float64(samples[i]) {
			t.Fatalf("sample %d = %v, expected %d", i, song.Samples[i], samples[i])
		}
	}
	if d := song.DurationSeconds(); math.Abs(d-0.25) > 1e-9 {
		t.Errorf("DurationSeconds = %v, expected 0.25", d)
	}
}

func TestReadSongRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "not.wav")
	if err := os.WriteFile(path, []byte("definitely not audio"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := ReadSong(path); err == nil {
		t.Error("garbage input should be rejected")
	}
}

func TestSongChunks(t *testing.T) {
	song := &Song{SampleRate: 10, Samples: []float64{1, 2, 3, 4, 5, 6, 7}}

	chunks, err := song.Chunks(3)
	if err != nil {
		t.Fatalf("Chunks: %v", err)
	}
	if len(chunks) != 3 {
		t.Fatalf("got %d chunks, expected 3", len(chunks))
	}
	if len(chunks[0]) != 3 || len(chunks[1]) != 3 || len(chunks[2]) != 1 {
		t.Errorf("chunk lengths = %d, %d, %d, expected 3, 3, 1", len(chunks[0]), len(chunks[1]), len(chunks[2]))
	}
	if chunks[2][0] != 7 {
		t.Errorf("tail chunk = %v, expected [7]", chunks[2])
	}

	if _, err := song.Chunks(0); err == nil {
		t.Error("chunk size 0 should be rejected")
	}
}
