// SPDX-License-Identifier: MIT
package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	tmp := t.TempDir()
	path := filepath.Join(tmp, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}
	return path
}

func TestLoadConfig_EmptyPath(t *testing.T) {
	cfg, err := LoadConfig("")
	if err != nil {
		t.Errorf("expected nil error, got %v", err)
	}
	if cfg == nil {
		t.Fatal("expected default config, got nil")
	}
	if cfg.Audio.SampleRate != DefaultSampleRate {
		t.Errorf("default sample rate = %v, expected %d", cfg.Audio.SampleRate, DefaultSampleRate)
	}
	if cfg.Actions.BPMFrequency != DefaultBPMFrequency {
		t.Errorf("default bpm frequency = %q, expected %q", cfg.Actions.BPMFrequency, DefaultBPMFrequency)
	}
}

func TestLoadConfig_FileNotFound(t *testing.T) {
	cfg, err := LoadConfig("nonexistent.yaml")
	if err == nil {
		t.Errorf("expected error for missing file, got nil")
	}
	if cfg != nil {
		t.Errorf("expected nil config on error, got %+v", cfg)
	}
}

func TestLoadConfig_UnmarshalError(t *testing.T) {
	path := writeTempConfig(t, ":\n:bad")
	_, err := LoadConfig(path)
	if err == nil || !strings.Contains(err.Error(), "failed to parse config file") {
		t.Error("expected unmarshal error, got nil or wrong error")
	}
}

func TestLoadConfig_FileOverridesDefaults(t *testing.T) {
	path := writeTempConfig(t, `
log_level: debug
audio:
  sample_rate: 48000
  frames_per_buffer: 2048
analysis:
  tolerance_bpm: 5
actions:
  bpm_frequency: kick
  min_pitch: C
  max_pitch: B
  blend_falloff_sec: 1.5
blend:
  operation: screen
`)
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Audio.SampleRate != 48000 || cfg.Audio.FramesPerBuffer != 2048 {
		t.Errorf("audio = %+v, expected file values", cfg.Audio)
	}
	if cfg.Analysis.ToleranceBPM != 5 {
		t.Errorf("tolerance = %v, expected 5", cfg.Analysis.ToleranceBPM)
	}
	if cfg.Blend.Operation != "screen" || cfg.Actions.BlendFalloff != 1.5 {
		t.Errorf("blend settings = %q/%v, expected screen/1.5", cfg.Blend.Operation, cfg.Actions.BlendFalloff)
	}
	// Untouched fields keep defaults.
	if cfg.Analysis.MaxSecondsInBuffer != DefaultMaxSecondsInBuffer {
		t.Errorf("max seconds = %d, expected default %d", cfg.Analysis.MaxSecondsInBuffer, DefaultMaxSecondsInBuffer)
	}
}

func TestLoadConfig_ValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad_sample_rate", "audio:\n  sample_rate: 100\n"},
		{"bad_blend_mode", "blend:\n  operation: overlay\n"},
		{"bad_frequency", "actions:\n  bpm_frequency: waltz\n"},
		{"inverted_pitch_range", "actions:\n  min_pitch: B\n  max_pitch: C\n"},
		{"half_pitch_range", "actions:\n  bpm_frequency: \"\"\n  min_pitch: C\n"},
		{"no_trigger", "actions:\n  bpm_frequency: \"\"\n"},
		{"buffer_bounds", "analysis:\n  min_seconds_in_buffer: 8\n  max_seconds_in_buffer: 4\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeTempConfig(t, tt.content)
			if _, err := LoadConfig(path); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("ENV_LOG_LEVEL", "debug")
	t.Setenv("ENV_UDP_ENABLED", "true")
	t.Setenv("ENV_UDP_TARGET_ADDRESS", "10.0.0.2:7000")

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("log level = %q, expected env override", cfg.LogLevel)
	}
	if !cfg.Transport.UDPEnabled || cfg.Transport.UDPTargetAddress != "10.0.0.2:7000" {
		t.Errorf("transport = %+v, expected env overrides", cfg.Transport)
	}
}
