package cmd

import (
	"testing"

	"nitemix/internal/analysis"
	"nitemix/internal/audio"
	"nitemix/internal/config"
	"nitemix/pkg/utils"
)

// Song analysis must cover the entire file: the frame loop later indexes the
// pitch sequence by playback second, so a song longer than the live buffer
// window still needs one pitch per second from 0 to song end.
func TestAnalyzeSongPitchesSpanWholeSong(t *testing.T) {
	cfg, err := config.LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	const (
		sampleRate  = 8000
		songSeconds = 12 // longer than the live window (10s)
	)
	if songSeconds <= config.DefaultMaxSecondsInBuffer {
		t.Fatal("test song must outlast the live buffer window")
	}

	// 440Hz raw 16-bit-scale samples; at fftSize 2048 the surrounding bins
	// (437.5Hz, 441.4Hz) both fold to pitch class A.
	samples := utils.GenerateSineWave(songSeconds*sampleRate, sampleRate, 440)
	for i := range samples {
		samples[i] *= 20000
	}
	song := &audio.Song{
		Name:       "sine",
		SampleRate: sampleRate,
		BitDepth:   16,
		Samples:    samples,
	}

	features, err := analyzeSong(cfg, song)
	if err != nil {
		t.Fatalf("analyzeSong: %v", err)
	}
	if len(features.Pitches) <= config.DefaultMaxSecondsInBuffer {
		t.Fatalf("analyzed %d seconds of pitches, expected more than the %ds live window",
			len(features.Pitches), config.DefaultMaxSecondsInBuffer)
	}
	for sec, pitch := range features.Pitches {
		if pitch != analysis.ChromaA {
			t.Errorf("second %d = %s, expected A", sec, pitch)
		}
	}
}
