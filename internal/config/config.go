// Package config loads the application configuration from YAML, applies
// environment overrides and validates the result.
package config

// Defaults and limits for the mixing pipeline.
const (
	DefaultSampleRate      = 44100
	DefaultFramesPerBuffer = 1024
	DefaultChannels        = 1
	DefaultDeviceID        = -1 // system default input device

	MinSampleRate   = 8000
	MaxSampleRate   = 192000
	MaxBufferFrames = 8192

	DefaultMinSecondsInBuffer = 4
	DefaultMaxSecondsInBuffer = 10
	DefaultBPMHistoryMin      = 4
	DefaultBPMHistoryMax      = 16
	DefaultToleranceBPM       = 10.0
	DefaultHopLength          = 512

	DefaultBlendOperation = "normal"
	DefaultBlendFalloff   = 2.0
	DefaultBPMFrequency   = "compass"
	DefaultBeatsPerBar    = 4
)
