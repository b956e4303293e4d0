// SPDX-License-Identifier: MIT
package catalog

import (
	"errors"
	"testing"

	"nitemix/internal/action"
	"nitemix/internal/analysis"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func bpmSegment() Segment {
	freq := action.FrequencyKick
	return Segment{
		Video1:         "clips/ocean",
		Video2:         "clips/strobe",
		BPMFrequency:   &freq,
		BlendOperation: "screen",
		BlendFalloff:   2,
	}
}

func TestSegmentValidation(t *testing.T) {
	minPitch, maxPitch := analysis.ChromaC, analysis.ChromaB

	tests := []struct {
		name    string
		mutate  func(*Segment)
		wantErr bool
	}{
		{"bpm_only", func(s *Segment) {}, false},
		{"pitch_only", func(s *Segment) {
			s.BPMFrequency = nil
			s.MinPitch, s.MaxPitch = &minPitch, &maxPitch
		}, false},
		{"no_trigger", func(s *Segment) { s.BPMFrequency = nil }, true},
		{"half_pitch_range", func(s *Segment) { s.MinPitch = &minPitch }, true},
		{"missing_video", func(s *Segment) { s.Video2 = "" }, true},
		{"no_blend_operation", func(s *Segment) { s.BlendOperation = "" }, true},
		{"negative_falloff", func(s *Segment) { s.BlendFalloff = -1 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seg := bpmSegment()
			tt.mutate(&seg)
			err := seg.Validate()
			if tt.wantErr && err == nil {
				t.Error("expected a validation error")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("Validate: %v", err)
			}
		})
	}
}

func TestSegmentRoundTrip(t *testing.T) {
	store := openTestStore(t)

	minPitch, maxPitch := analysis.ChromaE, analysis.ChromaA
	seg := bpmSegment()
	seg.Alpha = "masks/diagonal"
	seg.MinPitch, seg.MaxPitch = &minPitch, &maxPitch

	created, err := store.CreateSegment(seg)
	if err != nil {
		t.Fatalf("CreateSegment: %v", err)
	}
	if created.ID == "" {
		t.Fatal("created segment has no ID")
	}

	got, err := store.GetSegment(created.ID)
	if err != nil {
		t.Fatalf("GetSegment: %v", err)
	}
	if got.Video1 != seg.Video1 || got.Video2 != seg.Video2 || got.Alpha != seg.Alpha {
		t.Errorf("videos = %q/%q/%q, expected %q/%q/%q",
			got.Video1, got.Video2, got.Alpha, seg.Video1, seg.Video2, seg.Alpha)
	}
	if got.BPMFrequency == nil || *got.BPMFrequency != action.FrequencyKick {
		t.Errorf("BPMFrequency = %v, expected kick", got.BPMFrequency)
	}
	if got.MinPitch == nil || *got.MinPitch != minPitch || got.MaxPitch == nil || *got.MaxPitch != maxPitch {
		t.Errorf("pitch range = %v..%v, expected %v..%v", got.MinPitch, got.MaxPitch, minPitch, maxPitch)
	}
	if got.BlendOperation != "screen" || got.BlendFalloff != 2 {
		t.Errorf("blend = %q/%v, expected screen/2", got.BlendOperation, got.BlendFalloff)
	}
}

func TestSegmentNullableTriggers(t *testing.T) {
	store := openTestStore(t)

	created, err := store.CreateSegment(bpmSegment())
	if err != nil {
		t.Fatalf("CreateSegment: %v", err)
	}
	got, err := store.GetSegment(created.ID)
	if err != nil {
		t.Fatalf("GetSegment: %v", err)
	}
	if got.MinPitch != nil || got.MaxPitch != nil {
		t.Errorf("pitch range = %v..%v, expected nil for a bpm-only segment", got.MinPitch, got.MaxPitch)
	}
	if got.Alpha != "" {
		t.Errorf("alpha = %q, expected empty", got.Alpha)
	}
}

func TestGetSegmentNotFound(t *testing.T) {
	store := openTestStore(t)
	if _, err := store.GetSegment("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetSegment error = %v, expected ErrNotFound", err)
	}
}

func TestListAndDeleteSegments(t *testing.T) {
	store := openTestStore(t)

	first, err := store.CreateSegment(bpmSegment())
	if err != nil {
		t.Fatalf("CreateSegment: %v", err)
	}
	if _, err := store.CreateSegment(bpmSegment()); err != nil {
		t.Fatalf("CreateSegment: %v", err)
	}

	segments, err := store.ListSegments()
	if err != nil {
		t.Fatalf("ListSegments: %v", err)
	}
	if len(segments) != 2 {
		t.Fatalf("listed %d segments, expected 2", len(segments))
	}

	if err := store.DeleteSegment(first.ID); err != nil {
		t.Fatalf("DeleteSegment: %v", err)
	}
	segments, err = store.ListSegments()
	if err != nil {
		t.Fatalf("ListSegments: %v", err)
	}
	if len(segments) != 1 {
		t.Errorf("listed %d segments after delete, expected 1", len(segments))
	}

	if err := store.DeleteSegment(first.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("double delete error = %v, expected ErrNotFound", err)
	}
}

func TestPresentationTimeline(t *testing.T) {
	store := openTestStore(t)

	p, err := store.CreatePresentation(Presentation{Name: "friday", Width: 1280, Height: 720})
	if err != nil {
		t.Fatalf("CreatePresentation: %v", err)
	}
	segA, err := store.CreateSegment(bpmSegment())
	if err != nil {
		t.Fatalf("CreateSegment: %v", err)
	}
	segB, err := store.CreateSegment(bpmSegment())
	if err != nil {
		t.Fatalf("CreateSegment: %v", err)
	}

	// Inserted out of order; the timeline must sort by start time.
	if err := store.AddSegmentToPresentation(segB.ID, p.ID, 60, 120); err != nil {
		t.Fatalf("AddSegmentToPresentation: %v", err)
	}
	if err := store.AddSegmentToPresentation(segA.ID, p.ID, 0, 60); err != nil {
		t.Fatalf("AddSegmentToPresentation: %v", err)
	}

	entries, err := store.Timeline(p.ID)
	if err != nil {
		t.Fatalf("Timeline: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("timeline has %d entries, expected 2", len(entries))
	}
	if entries[0].SegmentID != segA.ID || entries[1].SegmentID != segB.ID {
		t.Error("timeline entries are not ordered by start time")
	}

	fetched, err := store.GetPresentationByName("friday")
	if err != nil {
		t.Fatalf("GetPresentationByName: %v", err)
	}
	if fetched.ID != p.ID || fetched.Width != 1280 {
		t.Errorf("fetched %+v, expected the created presentation", fetched)
	}

	if _, err := store.GetPresentationByName("saturday"); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing presentation error = %v, expected ErrNotFound", err)
	}
}

func TestPresentationValidation(t *testing.T) {
	store := openTestStore(t)
	if _, err := store.CreatePresentation(Presentation{Name: "", Width: 10, Height: 10}); err == nil {
		t.Error("empty name should be rejected")
	}
	if _, err := store.CreatePresentation(Presentation{Name: "x", Width: 0, Height: 10}); err == nil {
		t.Error("invalid resolution should be rejected")
	}
	if err := store.AddSegmentToPresentation("s", "p", 10, 5); err == nil {
		t.Error("inverted timeline range should be rejected")
	}
}

func TestNewIDIsUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := NewID()
		if len(id) != 32 {
			t.Fatalf("id length = %d, expected 32", len(id))
		}
		if seen[id] {
			t.Fatal("duplicate id generated")
		}
		seen[id] = true
	}
}
