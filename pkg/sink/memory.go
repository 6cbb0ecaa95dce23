package sink

import (
	"slices"

	"github.com/haivivi/oggextract/pkg/extractor"
)

// Memory is an extractor.Output that records every call.
type Memory struct {
	// TrackCalls counts Track calls; EndTracksCalls counts EndTracks calls.
	TrackCalls     int
	EndTracksCalls int
	DurationCalls  int
	DurationUs     int64

	tracks map[int]*MemoryTrack
	order  []int
}

// NewMemory returns an empty Memory output.
func NewMemory() *Memory {
	return &Memory{DurationUs: extractor.DurationUnknown, tracks: make(map[int]*MemoryTrack)}
}

// Track returns the track with the given id, creating it on first use.
func (m *Memory) Track(id int) extractor.TrackOutput {
	m.TrackCalls++
	if t, ok := m.tracks[id]; ok {
		return t
	}
	t := &MemoryTrack{ID: id}
	m.tracks[id] = t
	m.order = append(m.order, id)
	return t
}

func (m *Memory) EndTracks() { m.EndTracksCalls++ }

func (m *Memory) Duration(us int64) {
	m.DurationCalls++
	m.DurationUs = us
}

// Tracks returns the tracks in registration order.
func (m *Memory) Tracks() []*MemoryTrack {
	out := make([]*MemoryTrack, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.tracks[id])
	}
	return out
}

// Get returns the track with the given id or nil.
func (m *Memory) Get(id int) *MemoryTrack { return m.tracks[id] }

// MemoryTrack records the format and samples of one track.
type MemoryTrack struct {
	ID      int
	Formats []extractor.Format
	Samples []extractor.Sample

	// Err, if set, is returned by WriteSample instead of recording.
	Err error
}

func (t *MemoryTrack) Format(f extractor.Format) { t.Formats = append(t.Formats, f) }

func (t *MemoryTrack) WriteSample(s extractor.Sample) error {
	if t.Err != nil {
		return t.Err
	}
	s.Data = slices.Clone(s.Data)
	t.Samples = append(t.Samples, s)
	return nil
}

// Reset drops the recorded samples, keeping formats.
func (t *MemoryTrack) Reset() { t.Samples = nil }

var (
	_ extractor.Output      = (*Memory)(nil)
	_ extractor.TrackOutput = (*MemoryTrack)(nil)
)
