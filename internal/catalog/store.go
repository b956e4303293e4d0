// SPDX-License-Identifier: MIT
package catalog

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"nitemix/internal/action"
	"nitemix/internal/analysis"
	applog "nitemix/internal/log"
)

// ErrNotFound indicates the requested row does not exist.
var ErrNotFound = errors.New("catalog: not found")

const schema = `
CREATE TABLE IF NOT EXISTS segments (
    id TEXT PRIMARY KEY,
    video_1 TEXT NOT NULL,
    video_2 TEXT NOT NULL,
    alpha TEXT,
    bpm_frequency INTEGER,
    min_pitch INTEGER,
    max_pitch INTEGER,
    blend_operation TEXT NOT NULL,
    blend_falloff FLOAT NOT NULL,
    updated_at DATETIME NOT NULL,
    created_at DATETIME NOT NULL
);
CREATE TABLE IF NOT EXISTS presentations (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    width INTEGER NOT NULL,
    height INTEGER NOT NULL,
    updated_at DATETIME NOT NULL,
    created_at DATETIME NOT NULL,
    UNIQUE (name)
);
CREATE TABLE IF NOT EXISTS presentations_segments (
    segment_id TEXT NOT NULL,
    presentation_id TEXT NOT NULL,
    from_seconds FLOAT NOT NULL,
    to_seconds FLOAT NOT NULL,
    created_at DATETIME NOT NULL,
    FOREIGN KEY (segment_id) REFERENCES segments (id) ON DELETE CASCADE,
    FOREIGN KEY (presentation_id) REFERENCES presentations (id) ON DELETE CASCADE,
    PRIMARY KEY (segment_id, presentation_id)
);
CREATE INDEX IF NOT EXISTS fk_segment_id ON presentations_segments (segment_id);
CREATE INDEX IF NOT EXISTS fk_presentation_id ON presentations_segments (presentation_id);
`

// Store wraps the SQLite catalog database.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the catalog at path and applies the schema.
// Use ":memory:" for an ephemeral store.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("catalog: opening %s: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("catalog: applying schema: %w", err)
	}
	applog.Infof("Catalog: opened %s", path)
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// CreateSegment validates and inserts a segment, assigning an ID and
// timestamps. Returns the stored segment.
func (s *Store) CreateSegment(seg Segment) (Segment, error) {
	if err := seg.Validate(); err != nil {
		return Segment{}, err
	}
	seg.ID = NewID()
	now := time.Now().UTC()
	seg.CreatedAt = now
	seg.UpdatedAt = now

	_, err := s.db.Exec(`
        INSERT INTO segments (id, video_1, video_2, alpha, bpm_frequency, min_pitch, max_pitch,
                              blend_operation, blend_falloff, updated_at, created_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		seg.ID, seg.Video1, seg.Video2, nullString(seg.Alpha),
		nullFrequency(seg.BPMFrequency), nullChroma(seg.MinPitch), nullChroma(seg.MaxPitch),
		seg.BlendOperation, seg.BlendFalloff, seg.UpdatedAt, seg.CreatedAt)
	if err != nil {
		return Segment{}, fmt.Errorf("catalog: inserting segment: %w", err)
	}
	applog.Infof("Catalog: segment %s created (%s + %s)", seg.ID, seg.Video1, seg.Video2)
	return seg, nil
}

// GetSegment fetches one segment by ID.
func (s *Store) GetSegment(id string) (Segment, error) {
	row := s.db.QueryRow(`
        SELECT id, video_1, video_2, alpha, bpm_frequency, min_pitch, max_pitch,
               blend_operation, blend_falloff, updated_at, created_at
        FROM segments WHERE id = ?`, id)
	return scanSegment(row)
}

// ListSegments returns all segments ordered by creation time.
func (s *Store) ListSegments() ([]Segment, error) {
	rows, err := s.db.Query(`
        SELECT id, video_1, video_2, alpha, bpm_frequency, min_pitch, max_pitch,
               blend_operation, blend_falloff, updated_at, created_at
        FROM segments ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("catalog: listing segments: %w", err)
	}
	defer rows.Close()

	var segments []Segment
	for rows.Next() {
		seg, err := scanSegment(rows)
		if err != nil {
			return nil, err
		}
		segments = append(segments, seg)
	}
	return segments, rows.Err()
}

// DeleteSegment removes a segment and its timeline entries.
func (s *Store) DeleteSegment(id string) error {
	res, err := s.db.Exec(`DELETE FROM segments WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("catalog: deleting segment: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	// SQLite only honors ON DELETE CASCADE with foreign keys enabled, so
	// clean up the join table explicitly.
	if _, err := s.db.Exec(`DELETE FROM presentations_segments WHERE segment_id = ?`, id); err != nil {
		return fmt.Errorf("catalog: deleting segment timeline entries: %w", err)
	}
	return nil
}

// CreatePresentation inserts a presentation, assigning ID and timestamps.
func (s *Store) CreatePresentation(p Presentation) (Presentation, error) {
	if p.Name == "" {
		return Presentation{}, fmt.Errorf("catalog: presentation needs a name")
	}
	if p.Width < 1 || p.Height < 1 {
		return Presentation{}, fmt.Errorf("catalog: invalid resolution %dx%d", p.Width, p.Height)
	}
	p.ID = NewID()
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now

	_, err := s.db.Exec(`
        INSERT INTO presentations (id, name, width, height, updated_at, created_at)
        VALUES (?, ?, ?, ?, ?, ?)`,
		p.ID, p.Name, p.Width, p.Height, p.UpdatedAt, p.CreatedAt)
	if err != nil {
		return Presentation{}, fmt.Errorf("catalog: inserting presentation: %w", err)
	}
	applog.Infof("Catalog: presentation %q created (%dx%d)", p.Name, p.Width, p.Height)
	return p, nil
}

// GetPresentationByName fetches a presentation by its unique name.
func (s *Store) GetPresentationByName(name string) (Presentation, error) {
	var p Presentation
	err := s.db.QueryRow(`
        SELECT id, name, width, height, updated_at, created_at
        FROM presentations WHERE name = ?`, name).
		Scan(&p.ID, &p.Name, &p.Width, &p.Height, &p.UpdatedAt, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Presentation{}, ErrNotFound
	}
	if err != nil {
		return Presentation{}, fmt.Errorf("catalog: fetching presentation: %w", err)
	}
	return p, nil
}

// AddSegmentToPresentation places a segment on a presentation's timeline.
func (s *Store) AddSegmentToPresentation(segmentID, presentationID string, fromSeconds, toSeconds float64) error {
	if fromSeconds < 0 || toSeconds <= fromSeconds {
		return fmt.Errorf("catalog: invalid timeline range [%v, %v)", fromSeconds, toSeconds)
	}
	_, err := s.db.Exec(`
        INSERT INTO presentations_segments (segment_id, presentation_id, from_seconds, to_seconds, created_at)
        VALUES (?, ?, ?, ?, ?)`,
		segmentID, presentationID, fromSeconds, toSeconds, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("catalog: adding segment to presentation: %w", err)
	}
	return nil
}

// Timeline returns a presentation's segments ordered by start time.
func (s *Store) Timeline(presentationID string) ([]TimelineEntry, error) {
	rows, err := s.db.Query(`
        SELECT segment_id, presentation_id, from_seconds, to_seconds, created_at
        FROM presentations_segments
        WHERE presentation_id = ?
        ORDER BY from_seconds`, presentationID)
	if err != nil {
		return nil, fmt.Errorf("catalog: fetching timeline: %w", err)
	}
	defer rows.Close()

	var entries []TimelineEntry
	for rows.Next() {
		var e TimelineEntry
		if err := rows.Scan(&e.SegmentID, &e.PresentationID, &e.FromSeconds, &e.ToSeconds, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("catalog: scanning timeline entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSegment(row rowScanner) (Segment, error) {
	var seg Segment
	var alpha sql.NullString
	var freq, minPitch, maxPitch sql.NullInt64
	err := row.Scan(&seg.ID, &seg.Video1, &seg.Video2, &alpha, &freq, &minPitch, &maxPitch,
		&seg.BlendOperation, &seg.BlendFalloff, &seg.UpdatedAt, &seg.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Segment{}, ErrNotFound
	}
	if err != nil {
		return Segment{}, fmt.Errorf("catalog: scanning segment: %w", err)
	}

	seg.Alpha = alpha.String
	if freq.Valid {
		f := action.Frequency(freq.Int64)
		seg.BPMFrequency = &f
	}
	if minPitch.Valid {
		c := analysis.ChromaClass(minPitch.Int64)
		seg.MinPitch = &c
	}
	if maxPitch.Valid {
		c := analysis.ChromaClass(maxPitch.Int64)
		seg.MaxPitch = &c
	}
	return seg, nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullFrequency(f *action.Frequency) any {
	if f == nil {
		return nil
	}
	return int64(*f)
}

func nullChroma(c *analysis.ChromaClass) any {
	if c == nil {
		return nil
	}
	return int64(*c)
}
