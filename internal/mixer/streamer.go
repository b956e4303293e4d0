// SPDX-License-Identifier: MIT
// Package mixer runs the frame-tick loops that pair blend decisions with
// frame pairs: one variant drives its own actions from a pre-analyzed song,
// the other consumes strengths published by a live capture process.
package mixer

import (
	"context"
	"fmt"
	"time"

	"nitemix/internal/action"
	"nitemix/internal/blend"
	applog "nitemix/internal/log"
	"nitemix/internal/timing"
	"nitemix/internal/transport"
	"nitemix/internal/video"
)

// keepAlivePeriod is the heartbeat logging cadence.
const keepAlivePeriod = 10 * time.Second

// Sink receives the composited output frames.
type Sink interface {
	Display(frame *blend.Frame) error
}

// streamer holds what both loop variants share.
type streamer struct {
	source    video.FrameSource
	blender   *blend.Blender
	sink      Sink
	interval  time.Duration
	keepAlive *timing.Recorder
}

func newStreamer(source video.FrameSource, blender *blend.Blender, sink Sink, fps float64) (streamer, error) {
	if source == nil || blender == nil || sink == nil {
		return streamer{}, fmt.Errorf("mixer: source, blender and sink are required")
	}
	if fps <= 0 {
		return streamer{}, fmt.Errorf("mixer: fps %v must be positive", fps)
	}
	interval := time.Duration(float64(time.Second) / fps)
	applog.Infof("Mixer: streaming at %.2f fps (%s between frames)", fps, interval)
	return streamer{
		source:    source,
		blender:   blender,
		sink:      sink,
		interval:  interval,
		keepAlive: timing.NewRecorder(keepAlivePeriod, nil),
	}, nil
}

// tick composites and displays one frame.
func (s *streamer) tick(shouldBlend bool, strength float64) error {
	frameA, frameB, mask, err := s.source.NextFramePair()
	if err != nil {
		return fmt.Errorf("mixer: next frame pair: %w", err)
	}
	frame, err := s.blender.BlendWithDecision(frameA, frameB, mask, shouldBlend, strength)
	if err != nil {
		return fmt.Errorf("mixer: blending: %w", err)
	}
	if err := s.sink.Display(frame); err != nil {
		return fmt.Errorf("mixer: displaying frame: %w", err)
	}

	if s.keepAlive.PeriodPassed() {
		applog.Infof("Mixer: keep-alive, elapsed time %s", s.keepAlive.ElapsedString())
	}
	return nil
}

// intervalMS returns the frame interval in milliseconds for action clocks.
func (s *streamer) intervalMS() float64 {
	return float64(s.interval) / float64(time.Millisecond)
}

// SongStreamer drives the aggregator directly: each frame tick advances the
// action clocks by one frame interval and composites with the verdict.
type SongStreamer struct {
	streamer
	aggregator *action.Aggregator
}

// NewSongStreamer wires the loop for the pre-analyzed song path.
func NewSongStreamer(source video.FrameSource, blender *blend.Blender, aggregator *action.Aggregator, sink Sink, fps float64) (*SongStreamer, error) {
	if aggregator == nil {
		return nil, fmt.Errorf("mixer: aggregator is required")
	}
	base, err := newStreamer(source, blender, sink, fps)
	if err != nil {
		return nil, err
	}
	return &SongStreamer{streamer: base, aggregator: aggregator}, nil
}

// Stream runs until the context is canceled or a fatal pipeline error
// occurs. Action errors are fatal here: they mean the song analysis and the
// clock disagree, which cannot resolve itself.
func (s *SongStreamer) Stream(ctx context.Context) error {
	applog.Infof("Mixer: starting song-driven stream")
	s.keepAlive.StartIfNotStarted()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			applog.Infof("Mixer: stream stopped, elapsed time %s", s.keepAlive.ElapsedString())
			return ctx.Err()
		case <-ticker.C:
			decision, err := s.aggregator.Act(s.intervalMS())
			if err != nil {
				return fmt.Errorf("mixer: action tick: %w", err)
			}
			if err := s.tick(decision.ShouldBlend, decision.Strength); err != nil {
				return err
			}
		}
	}
}

// QueueStreamer composites with whatever strength the capture process last
// published. An empty queue means "no trigger this tick", never an error, so
// playback outlives analysis hiccups.
type QueueStreamer struct {
	streamer
	queue *transport.StrengthQueue
}

// NewQueueStreamer wires the loop for the live capture path.
func NewQueueStreamer(source video.FrameSource, blender *blend.Blender, queue *transport.StrengthQueue, sink Sink, fps float64) (*QueueStreamer, error) {
	if queue == nil {
		return nil, fmt.Errorf("mixer: queue is required")
	}
	base, err := newStreamer(source, blender, sink, fps)
	if err != nil {
		return nil, err
	}
	return &QueueStreamer{streamer: base, queue: queue}, nil
}

// Stream runs until the context is canceled or the terminate sentinel
// arrives.
func (s *QueueStreamer) Stream(ctx context.Context) error {
	applog.Infof("Mixer: starting queue-driven stream")
	s.keepAlive.StartIfNotStarted()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			applog.Infof("Mixer: stream stopped, elapsed time %s", s.keepAlive.ElapsedString())
			return ctx.Err()
		case <-ticker.C:
			shouldBlend, strength := false, 0.0
			if msg, ok := s.queue.Poll(); ok {
				if msg.Kind == transport.KindTerminate {
					applog.Infof("Mixer: terminate received, elapsed time %s", s.keepAlive.ElapsedString())
					return nil
				}
				shouldBlend = true
				strength = msg.Strength
			}
			if err := s.tick(shouldBlend, strength); err != nil {
				return err
			}
		}
	}
}
