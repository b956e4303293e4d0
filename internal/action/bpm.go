// SPDX-License-Identifier: MIT
package action

import (
	"fmt"
	"math"

	applog "nitemix/internal/log"
)

// DefaultBeatsPerCompass is the assumed musical meter.
const DefaultBeatsPerCompass = 4

// BPMAction fires periodically in time with the detected tempo. Until a
// tempo is known the period is infinite and the action never fires. The
// internal counter resets to the overshoot past the period rather than to
// zero, so per-tick rounding never accumulates into drift.
type BPMAction struct {
	frequency       Frequency
	beatsPerCompass int

	sinceLastFireMS float64
	bpm             float64
	hasBPM          bool
	periodSec       float64
}

var _ Action = (*BPMAction)(nil)

// NewBPMAction constructs an armed-without-tempo action. beatsPerCompass of
// 0 selects the default meter of 4.
func NewBPMAction(frequency Frequency, beatsPerCompass int) (*BPMAction, error) {
	if !frequency.Valid() {
		return nil, fmt.Errorf("bpm action: invalid frequency %d", int(frequency))
	}
	if beatsPerCompass == 0 {
		beatsPerCompass = DefaultBeatsPerCompass
	}
	if beatsPerCompass < 1 {
		return nil, fmt.Errorf("bpm action: beats per compass %d must be >= 1", beatsPerCompass)
	}
	applog.Infof("Action: BPM trigger (frequency: %s, beats per compass: %d)", frequency, beatsPerCompass)
	return &BPMAction{
		frequency:       frequency,
		beatsPerCompass: beatsPerCompass,
		periodSec:       math.Inf(1),
	}, nil
}

// SetBPM re-arms the action with a new tempo, recomputing the period
// immediately. The in-flight elapsed counter is preserved; only firing
// resets it.
func (a *BPMAction) SetBPM(bpm float64) {
	a.bpm = bpm
	a.hasBPM = true
	a.periodSec = periodSec(barDurationSec(bpm, a.beatsPerCompass), a.frequency, a.beatsPerCompass)
}

// Act accumulates elapsed time and fires once per action period.
func (a *BPMAction) Act(elapsedMS float64) (bool, error) {
	a.sinceLastFireMS += elapsedMS

	if !a.hasBPM {
		return false, nil
	}

	sinceLastFireSec := a.sinceLastFireMS / 1000
	if sinceLastFireSec >= a.periodSec {
		applog.Debugf("Action: BPM trigger fired (bpm: %.2f, frequency: %s, period: %.3fs)", a.bpm, a.frequency, a.periodSec)
		overshootSec := sinceLastFireSec - a.periodSec
		a.sinceLastFireMS = overshootSec * 1000
		return true, nil
	}
	return false, nil
}

// barDurationSec returns the duration of one bar. An unknown or non-positive
// bpm yields +Inf, which both avoids a division fault and guarantees the
// action never fires.
func barDurationSec(bpm float64, beatsPerCompass int) float64 {
	if bpm <= 0 || math.IsNaN(bpm) {
		return math.Inf(1)
	}
	return float64(beatsPerCompass) / bpm * 60
}

// periodSec converts a bar duration into the firing period for a frequency:
// one beat for kick, otherwise the frequency's bar multiple.
func periodSec(barDurationSec float64, frequency Frequency, beatsPerCompass int) float64 {
	if frequency == FrequencyKick {
		return barDurationSec / float64(beatsPerCompass)
	}
	return barDurationSec * float64(frequency)
}
