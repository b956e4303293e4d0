// SPDX-License-Identifier: MIT
// Package action converts feature snapshots into timed blend decisions. Each
// trigger action owns its elapsed-time counters; the aggregator fans a tick
// out to every action, ORs the results and applies the blend-strength
// falloff.
package action

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidRange indicates an inverted or empty pitch range at
	// construction time.
	ErrInvalidRange = errors.New("invalid pitch range")
	// ErrOutOfRangeSecond indicates a tick asked about a second beyond the
	// analyzed chroma sequence. This signals a caller bug and is never
	// silently clamped.
	ErrOutOfRangeSecond = errors.New("second out of analyzed range")
	// ErrMissingFeature indicates a snapshot lacked a field a configured
	// action requires.
	ErrMissingFeature = errors.New("required audio feature missing")
)

// Action is the closed trigger-action variant: exactly *BPMAction and
// *PitchAction implement it. Feature routing switches over the concrete
// types, so adding a variant forces every switch to be revisited.
type Action interface {
	// Act advances the action's internal clock by elapsedMS and reports
	// whether the action fires on this tick.
	Act(elapsedMS float64) (bool, error)
}

// Frequency selects how often a BPM action fires relative to the musical
// structure: every beat, every bar, or every two or four bars.
type Frequency int

const (
	FrequencyKick       Frequency = 0
	FrequencyCompass    Frequency = 1
	FrequencyTwoCompass Frequency = 2
	// FrequencyFourCompass deliberately skips 3: the multiplier doubles.
	FrequencyFourCompass Frequency = 4
)

// String returns the configuration name of the frequency.
func (f Frequency) String() string {
	switch f {
	case FrequencyKick:
		return "kick"
	case FrequencyCompass:
		return "compass"
	case FrequencyTwoCompass:
		return "two_compass"
	case FrequencyFourCompass:
		return "four_compass"
	default:
		return fmt.Sprintf("Frequency(%d)", int(f))
	}
}

// Valid reports whether f is one of the defined frequencies.
func (f Frequency) Valid() bool {
	switch f {
	case FrequencyKick, FrequencyCompass, FrequencyTwoCompass, FrequencyFourCompass:
		return true
	}
	return false
}

// ParseFrequency converts a configuration name to a Frequency.
func ParseFrequency(name string) (Frequency, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "kick":
		return FrequencyKick, nil
	case "compass":
		return FrequencyCompass, nil
	case "two_compass":
		return FrequencyTwoCompass, nil
	case "four_compass":
		return FrequencyFourCompass, nil
	default:
		return 0, fmt.Errorf("unknown action frequency: %q", name)
	}
}
