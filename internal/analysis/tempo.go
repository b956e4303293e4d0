// SPDX-License-Identifier: MIT
package analysis

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	applog "nitemix/internal/log"
	"nitemix/internal/buffer"
)

// DefaultToleranceBPM is the mean-distance threshold above which a new tempo
// reading is treated as a song change. An empirical constant inherited from
// the reference tuning; override via the constructor, not here.
const DefaultToleranceBPM = 10.0

// TempoDetector accumulates audio into a rolling buffer, re-estimates the
// tempo on every chunk and smooths the estimate over a second buffer of past
// readings. A reading far from the recorded history wipes both buffers so a
// track boundary does not drag stale tempo across songs.
//
// Not safe for concurrent use; each detector owns its buffers exclusively.
type TempoDetector struct {
	estimator    TempoEstimator
	audio        buffer.Buffer
	bpms         buffer.Buffer
	sampleRate   int
	toleranceBPM float64
	removeAfter  bool
}

// NewTempoDetector constructs a detector over the given buffers. The buffers
// must be freshly created for this detector and not shared with any other
// instance. A tolerance <= 0 selects DefaultToleranceBPM.
func NewTempoDetector(estimator TempoEstimator, audio, bpms buffer.Buffer, sampleRate int, toleranceBPM float64, removeAfterPredict bool) (*TempoDetector, error) {
	if estimator == nil {
		return nil, fmt.Errorf("tempo detector: estimator must not be nil")
	}
	if audio == nil || bpms == nil {
		return nil, fmt.Errorf("tempo detector: audio and bpm buffers must not be nil")
	}
	if sampleRate <= 0 {
		return nil, fmt.Errorf("tempo detector: sample rate %d must be positive", sampleRate)
	}
	if toleranceBPM <= 0 {
		toleranceBPM = DefaultToleranceBPM
	}
	return &TempoDetector{
		estimator:    estimator,
		audio:        audio,
		bpms:         bpms,
		sampleRate:   sampleRate,
		toleranceBPM: toleranceBPM,
		removeAfter:  removeAfterPredict,
	}, nil
}

// Detect ingests one chunk of normalized samples and returns the smoothed
// BPM. ok is false during cold start, when either buffer is still below its
// minimum; that is the normal warm-up path, not an error.
func (d *TempoDetector) Detect(chunk []float64) (bpm float64, ok bool, err error) {
	d.audio.Add(chunk)

	if !d.audio.HasEnoughData() {
		bpm, ok = d.average()
		return bpm, ok, nil
	}

	reading, err := d.estimate()
	if err != nil {
		return 0, false, err
	}

	// Trim the analysis window so predictions do not grow monotonically
	// more expensive.
	if d.removeAfter {
		d.audio.RemoveLeading()
	}

	if d.changedSignificantly(reading) {
		applog.Infof("Tempo: reading %.2f BPM far from history, assuming song change", reading)
		d.audio.Reset()
		d.bpms.Reset()
		d.audio.Add(chunk)
	}

	d.bpms.Add([]float64{reading})

	bpm, ok = d.average()
	return bpm, ok, nil
}

func (d *TempoDetector) estimate() (float64, error) {
	candidates, err := d.estimator.EstimateTempo(d.audio.Samples(), d.sampleRate)
	if err != nil {
		return 0, fmt.Errorf("tempo estimation failed: %w", err)
	}
	if len(candidates) != 1 {
		return 0, fmt.Errorf("%w: tempo oracle returned %d candidates, want 1", ErrUnexpectedOracleOutput, len(candidates))
	}
	return candidates[0], nil
}

// changedSignificantly reports whether the mean absolute distance between the
// new reading and all recorded readings exceeds the tolerance.
func (d *TempoDetector) changedSignificantly(reading float64) bool {
	if !d.bpms.HasEnoughData() {
		return false
	}
	history := d.bpms.Samples()
	if len(history) == 0 {
		return false
	}
	total := 0.0
	for _, recorded := range history {
		total += math.Abs(reading - recorded)
	}
	return total/float64(len(history)) > d.toleranceBPM
}

func (d *TempoDetector) average() (float64, bool) {
	if !d.bpms.HasEnoughData() {
		return 0, false
	}
	history := d.bpms.Samples()
	if len(history) == 0 {
		return 0, false
	}
	return stat.Mean(history, nil), true
}
