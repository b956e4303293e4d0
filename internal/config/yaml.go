// SPDX-License-Identifier: MIT
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"nitemix/internal/action"
	"nitemix/internal/analysis"
	"nitemix/internal/blend"
)

// Config is the main application configuration, loaded from YAML.
type Config struct {
	Debug    bool   `yaml:"debug"`     // Enable debug mode.
	LogLevel string `yaml:"log_level"` // Logging level ("debug", "info", "warn", "error").

	Audio     AudioConfig     `yaml:"audio"`     // Capture settings.
	Analysis  AnalysisConfig  `yaml:"analysis"`  // Detector and buffer sizing.
	Actions   ActionsConfig   `yaml:"actions"`   // Trigger configuration.
	Blend     BlendConfig     `yaml:"blend"`     // Compositing configuration.
	Transport TransportConfig `yaml:"transport"` // Decision publishing.
	Catalog   CatalogConfig   `yaml:"catalog"`   // Preset storage.
}

// AudioConfig holds capture stream settings.
type AudioConfig struct {
	InputDevice     int     `yaml:"input_device"`      // PortAudio device index (-1 for default).
	SampleRate      float64 `yaml:"sample_rate"`       // Sample rate in Hz.
	FramesPerBuffer int     `yaml:"frames_per_buffer"` // Frames per capture chunk.
	LowLatency      bool    `yaml:"low_latency"`       // Request low latency from the device.
	InputChannels   int     `yaml:"input_channels"`    // Captured channels; analysis uses the first.
	BitsPerSample   int     `yaml:"bits_per_sample"`   // Sample encoding width for normalization.
}

// AnalysisConfig sizes the detector buffers.
type AnalysisConfig struct {
	MinSecondsInBuffer int     `yaml:"min_seconds_in_buffer"` // Audio seconds required before detecting.
	MaxSecondsInBuffer int     `yaml:"max_seconds_in_buffer"` // Audio seconds kept.
	BPMHistoryMin      int     `yaml:"bpm_history_min"`       // BPM readings required before averaging.
	BPMHistoryMax      int     `yaml:"bpm_history_max"`       // BPM readings kept.
	SamplesToRemove    int     `yaml:"samples_to_remove"`     // Oldest samples dropped per prediction.
	ToleranceBPM       float64 `yaml:"tolerance_bpm"`         // Song-change significance threshold.
	HopLength          int     `yaml:"hop_length"`            // Chroma analysis hop in samples.
	LatestPitchOnly    bool    `yaml:"latest_pitch_only"`     // Report only the newest pitch class.
}

// ActionsConfig configures the triggers.
type ActionsConfig struct {
	BPMFrequency string  `yaml:"bpm_frequency"`     // kick, compass, two_compass, four_compass, or "" to disable.
	BeatsPerBar  int     `yaml:"beats_per_bar"`     // Musical meter.
	MinPitch     string  `yaml:"min_pitch"`         // Chroma class name, or "" to disable the pitch trigger.
	MaxPitch     string  `yaml:"max_pitch"`         // Chroma class name.
	BlendFalloff float64 `yaml:"blend_falloff_sec"` // Linear strength decay window.
}

// BlendConfig selects the compositing operation.
type BlendConfig struct {
	Operation string `yaml:"operation"`
}

// TransportConfig holds settings for publishing blend decisions.
type TransportConfig struct {
	UDPEnabled       bool          `yaml:"udp_enabled"`        // Send strength packets over UDP.
	UDPTargetAddress string        `yaml:"udp_target_address"` // Target "host:port".
	UDPSendInterval  time.Duration `yaml:"udp_send_interval"`  // Interval between packets.
	WSEnabled        bool          `yaml:"ws_enabled"`         // Broadcast decisions over WebSocket.
	WSAddress        string        `yaml:"ws_address"`         // WebSocket listen address.
}

// CatalogConfig locates the preset database.
type CatalogConfig struct {
	Path string `yaml:"path"` // SQLite file, ":memory:" for ephemeral.
}

// LoadConfig loads configuration from a YAML file. If path is empty, it
// searches default locations ("config.yaml") and falls back to built-in
// defaults. Environment overrides apply after the file, then validation.
func LoadConfig(path string) (*Config, error) {
	cfg := Config{
		Debug:    false,
		LogLevel: "info",
		Audio: AudioConfig{
			InputDevice:     DefaultDeviceID,
			SampleRate:      DefaultSampleRate,
			FramesPerBuffer: DefaultFramesPerBuffer,
			LowLatency:      false,
			InputChannels:   DefaultChannels,
			BitsPerSample:   16,
		},
		Analysis: AnalysisConfig{
			MinSecondsInBuffer: DefaultMinSecondsInBuffer,
			MaxSecondsInBuffer: DefaultMaxSecondsInBuffer,
			BPMHistoryMin:      DefaultBPMHistoryMin,
			BPMHistoryMax:      DefaultBPMHistoryMax,
			SamplesToRemove:    0,
			ToleranceBPM:       DefaultToleranceBPM,
			HopLength:          DefaultHopLength,
			LatestPitchOnly:    false,
		},
		Actions: ActionsConfig{
			BPMFrequency: DefaultBPMFrequency,
			BeatsPerBar:  DefaultBeatsPerBar,
			BlendFalloff: DefaultBlendFalloff,
		},
		Blend: BlendConfig{
			Operation: DefaultBlendOperation,
		},
		Transport: TransportConfig{
			UDPEnabled:       false,
			UDPTargetAddress: "127.0.0.1:9090",
			UDPSendInterval:  33 * time.Millisecond,
			WSEnabled:        false,
			WSAddress:        ":8080",
		},
		Catalog: CatalogConfig{
			Path: "nitemix.db",
		},
	}

	if path == "" {
		candidates := []string{"config.yaml"}
		found := false
		for _, candidate := range candidates {
			if _, err := os.Stat(candidate); err == nil {
				path = candidate
				found = true
				break
			}
		}
		if !found {
			cfg.applyEnvOverrides()
			if err := cfg.Validate(); err != nil {
				return nil, fmt.Errorf("invalid default configuration: %w", err)
			}
			return &cfg, nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks ranges and cross-field invariants.
func (c *Config) Validate() error {
	if c.Audio.SampleRate < MinSampleRate || c.Audio.SampleRate > MaxSampleRate {
		return fmt.Errorf("audio.sample_rate %v out of range [%d, %d]", c.Audio.SampleRate, MinSampleRate, MaxSampleRate)
	}
	if c.Audio.FramesPerBuffer < 1 || c.Audio.FramesPerBuffer > MaxBufferFrames {
		return fmt.Errorf("audio.frames_per_buffer %d out of range [1, %d]", c.Audio.FramesPerBuffer, MaxBufferFrames)
	}
	if c.Audio.InputChannels < 1 {
		return fmt.Errorf("audio.input_channels %d must be >= 1", c.Audio.InputChannels)
	}
	if c.Audio.BitsPerSample < 8 || c.Audio.BitsPerSample > 32 {
		return fmt.Errorf("audio.bits_per_sample %d out of range [8, 32]", c.Audio.BitsPerSample)
	}

	if c.Analysis.MinSecondsInBuffer < 1 {
		return fmt.Errorf("analysis.min_seconds_in_buffer %d must be >= 1", c.Analysis.MinSecondsInBuffer)
	}
	if c.Analysis.MaxSecondsInBuffer < c.Analysis.MinSecondsInBuffer {
		return fmt.Errorf("analysis.max_seconds_in_buffer %d must be >= min %d",
			c.Analysis.MaxSecondsInBuffer, c.Analysis.MinSecondsInBuffer)
	}
	if c.Analysis.BPMHistoryMin < 1 || c.Analysis.BPMHistoryMax < c.Analysis.BPMHistoryMin {
		return fmt.Errorf("analysis bpm history bounds [%d, %d] are invalid",
			c.Analysis.BPMHistoryMin, c.Analysis.BPMHistoryMax)
	}
	if c.Analysis.SamplesToRemove < 0 {
		return fmt.Errorf("analysis.samples_to_remove %d must be >= 0", c.Analysis.SamplesToRemove)
	}
	if c.Analysis.ToleranceBPM < 0 {
		return fmt.Errorf("analysis.tolerance_bpm %v must be >= 0", c.Analysis.ToleranceBPM)
	}
	if c.Analysis.HopLength < 1 {
		return fmt.Errorf("analysis.hop_length %d must be >= 1", c.Analysis.HopLength)
	}

	if c.Actions.BPMFrequency == "" && c.Actions.MinPitch == "" {
		return fmt.Errorf("actions: at least one trigger (bpm_frequency or a pitch range) must be configured")
	}
	if c.Actions.BPMFrequency != "" {
		if _, err := action.ParseFrequency(c.Actions.BPMFrequency); err != nil {
			return fmt.Errorf("actions.bpm_frequency: %w", err)
		}
		if c.Actions.BeatsPerBar < 1 {
			return fmt.Errorf("actions.beats_per_bar %d must be >= 1", c.Actions.BeatsPerBar)
		}
	}
	if (c.Actions.MinPitch == "") != (c.Actions.MaxPitch == "") {
		return fmt.Errorf("actions: min_pitch and max_pitch must be set together")
	}
	if c.Actions.MinPitch != "" {
		minPitch, err := analysis.ParseChromaClass(c.Actions.MinPitch)
		if err != nil {
			return fmt.Errorf("actions.min_pitch: %w", err)
		}
		maxPitch, err := analysis.ParseChromaClass(c.Actions.MaxPitch)
		if err != nil {
			return fmt.Errorf("actions.max_pitch: %w", err)
		}
		if minPitch >= maxPitch {
			return fmt.Errorf("actions: min_pitch %s must be below max_pitch %s", minPitch, maxPitch)
		}
	}
	if c.Actions.BlendFalloff < 0 {
		return fmt.Errorf("actions.blend_falloff_sec %v must be >= 0", c.Actions.BlendFalloff)
	}

	if _, err := blend.ParseMode(c.Blend.Operation); err != nil {
		return fmt.Errorf("blend.operation: %w", err)
	}

	if c.Transport.UDPEnabled {
		if c.Transport.UDPTargetAddress == "" {
			return fmt.Errorf("transport.udp_target_address must be set when UDP is enabled")
		}
		if c.Transport.UDPSendInterval <= 0 {
			return fmt.Errorf("transport.udp_send_interval must be positive when UDP is enabled")
		}
	}
	if c.Transport.WSEnabled && c.Transport.WSAddress == "" {
		return fmt.Errorf("transport.ws_address must be set when WebSocket is enabled")
	}
	return nil
}

// applyEnvOverrides applies ENV_* variables on top of the loaded file.
func (cfg *Config) applyEnvOverrides() {
	if val, ok := os.LookupEnv("ENV_DEBUG"); ok {
		if bVal, err := strconv.ParseBool(val); err == nil {
			cfg.Debug = bVal
		}
	}
	if val, ok := os.LookupEnv("ENV_LOG_LEVEL"); ok {
		cfg.LogLevel = val
	}
	if val, ok := os.LookupEnv("ENV_UDP_ENABLED"); ok {
		if bVal, err := strconv.ParseBool(val); err == nil {
			cfg.Transport.UDPEnabled = bVal
		}
	}
	if val, ok := os.LookupEnv("ENV_UDP_TARGET_ADDRESS"); ok {
		cfg.Transport.UDPTargetAddress = val
	}
	if val, ok := os.LookupEnv("ENV_UDP_SEND_INTERVAL"); ok {
		if dur, err := time.ParseDuration(val); err == nil {
			cfg.Transport.UDPSendInterval = dur
		}
	}
	if val, ok := os.LookupEnv("ENV_CATALOG_PATH"); ok {
		cfg.Catalog.Path = val
	}
}
