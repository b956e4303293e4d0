// SPDX-License-Identifier: MIT
package action

import (
	"fmt"
	"math"

	"golang.org/x/sync/errgroup"

	"nitemix/internal/analysis"
	applog "nitemix/internal/log"
)

// Decision is the aggregated blend verdict for one tick.
type Decision struct {
	ShouldBlend bool
	Strength    float64
}

// Aggregator fans each tick out to every configured action, ORs the trigger
// results and converts time-since-last-trigger into a blend strength with a
// linear falloff.
type Aggregator struct {
	actions    []Action
	falloffSec float64

	sinceLastTriggerMS float64
}

// NewAggregator requires at least one action and a non-negative falloff.
// A falloff of zero means the blend cuts off the instant no action fires.
func NewAggregator(falloffSec float64, actions ...Action) (*Aggregator, error) {
	if len(actions) == 0 {
		return nil, fmt.Errorf("aggregator: at least one action is required")
	}
	if falloffSec < 0 || math.IsNaN(falloffSec) {
		return nil, fmt.Errorf("aggregator: falloff %.3fs must be >= 0", falloffSec)
	}
	applog.Infof("Aggregator: %d action(s), falloff %.2fs", len(actions), falloffSec)
	return &Aggregator{
		actions:    actions,
		falloffSec: falloffSec,
		// Never triggered yet, so strength starts fully decayed.
		sinceLastTriggerMS: math.Inf(1),
	}, nil
}

// Act advances every action by elapsedMS concurrently and combines their
// verdicts. The first action error aborts the tick.
func (g *Aggregator) Act(elapsedMS float64) (Decision, error) {
	fired := make([]bool, len(g.actions))
	var group errgroup.Group
	for i, a := range g.actions {
		i, a := i, a
		group.Go(func() error {
			triggered, err := a.Act(elapsedMS)
			if err != nil {
				return err
			}
			fired[i] = triggered
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return Decision{}, err
	}

	triggered := false
	for _, f := range fired {
		if f {
			triggered = true
			break
		}
	}

	if triggered {
		g.sinceLastTriggerMS = 0
		return Decision{ShouldBlend: true, Strength: 1.0}, nil
	}

	g.sinceLastTriggerMS += elapsedMS
	if g.falloffSec == 0 {
		return Decision{}, nil
	}

	strength := math.Max(0, 1-g.sinceLastTriggerMS/(g.falloffSec*1000))
	return Decision{ShouldBlend: strength > 0, Strength: strength}, nil
}

// SetFeatures pushes a feature snapshot into every contained action. An
// action whose required feature is absent fails loudly here rather than
// silently staying stale.
func (g *Aggregator) SetFeatures(features analysis.Features) error {
	for _, a := range g.actions {
		switch act := a.(type) {
		case *BPMAction:
			if !features.HasBPM {
				return fmt.Errorf("%w: bpm action needs a tempo estimate", ErrMissingFeature)
			}
			act.SetBPM(features.BPM)
		case *PitchAction:
			if features.Pitches == nil {
				return fmt.Errorf("%w: pitch action needs a chroma sequence", ErrMissingFeature)
			}
			act.SetPitches(features.Pitches)
		default:
			return fmt.Errorf("aggregator: unknown action type %T", a)
		}
	}
	return nil
}
