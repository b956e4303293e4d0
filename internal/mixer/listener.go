// SPDX-License-Identifier: MIT
package mixer

import (
	"errors"
	"fmt"

	"nitemix/internal/action"
	"nitemix/internal/analysis"
	applog "nitemix/internal/log"
	"nitemix/internal/timing"
	"nitemix/internal/transport"
)

// Listener is the analysis side of the live path: it turns capture chunks
// into feature snapshots, ticks the action clocks by the chunk duration and
// publishes the resulting strengths. A detection hiccup on one chunk is
// logged and skipped; the stream itself must keep running.
type Listener struct {
	processor  *analysis.Processor
	aggregator *action.Aggregator
	out        transport.Transport
	chunkMS    float64
	keepAlive  *timing.Recorder
}

// NewListener wires the chunk pipeline. chunkMS is the wall-clock duration
// one capture chunk covers.
func NewListener(processor *analysis.Processor, aggregator *action.Aggregator, out transport.Transport, chunkMS float64) (*Listener, error) {
	if processor == nil || aggregator == nil || out == nil {
		return nil, fmt.Errorf("listener: processor, aggregator and transport are required")
	}
	if chunkMS <= 0 {
		return nil, fmt.Errorf("listener: chunk duration %vms must be positive", chunkMS)
	}
	applog.Infof("Listener: chunk duration %.1fms", chunkMS)
	return &Listener{
		processor:  processor,
		aggregator: aggregator,
		out:        out,
		chunkMS:    chunkMS,
		keepAlive:  timing.NewRecorder(keepAlivePeriod, nil),
	}, nil
}

// HandleChunk processes one capture chunk end to end. Matches the
// audio.ChunkHandler signature.
func (l *Listener) HandleChunk(samples []float64) {
	l.keepAlive.StartIfNotStarted()

	features, err := l.processor.Process(samples)
	if err != nil {
		applog.Errorf("Listener: feature processing failed, skipping chunk: %v", err)
		return
	}

	if err := l.aggregator.SetFeatures(features); err != nil {
		if errors.Is(err, action.ErrMissingFeature) {
			// Cold start: the detectors have not buffered enough audio yet.
			applog.Debugf("Listener: features not ready: %v", err)
		} else {
			applog.Errorf("Listener: applying features failed: %v", err)
			return
		}
	}

	decision, err := l.aggregator.Act(l.chunkMS)
	if err != nil {
		applog.Errorf("Listener: action tick failed, skipping chunk: %v", err)
		return
	}
	if decision.ShouldBlend {
		if err := l.out.Send(transport.StrengthMessage(decision.Strength)); err != nil {
			applog.Errorf("Listener: publishing strength failed: %v", err)
		}
	}

	if l.keepAlive.PeriodPassed() {
		applog.Infof("Listener: keep-alive, elapsed time %s", l.keepAlive.ElapsedString())
	}
}

// Terminate publishes the shutdown sentinel to the frame loop.
func (l *Listener) Terminate() {
	if err := l.out.Send(transport.TerminateMessage()); err != nil {
		applog.Errorf("Listener: publishing terminate failed: %v", err)
	}
	applog.Infof("Listener: stopped, elapsed time %s", l.keepAlive.ElapsedString())
}
