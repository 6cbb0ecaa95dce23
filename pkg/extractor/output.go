package extractor

import "time"

// Output receives the tracks produced by an extractor.
type Output interface {
	// Track registers the track with the given id and returns its handle.
	Track(id int) TrackOutput

	// EndTracks signals that no further tracks will be registered.
	EndTracks()

	// Duration reports the stream duration in microseconds once known.
	Duration(us int64)
}

// TrackOutput receives the format and samples of one track.
type TrackOutput interface {
	// Format sets the track format. Called once, before any sample.
	Format(f Format)

	// WriteSample delivers one timed sample.
	WriteSample(s Sample) error
}

// Well-known MIME types.
const (
	MimeOpus   = "audio/opus"
	MimeVorbis = "audio/vorbis"
	MimeFLAC   = "audio/flac"
)

// DurationUnknown marks an unknown duration or timestamp.
const DurationUnknown int64 = -1

// Format describes an elementary track.
type Format struct {
	MimeType      string   `json:"mime_type" yaml:"mime_type" msgpack:"mime_type"`
	SampleRate    int      `json:"sample_rate" yaml:"sample_rate" msgpack:"sample_rate"`
	Channels      int      `json:"channels" yaml:"channels" msgpack:"channels"`
	BitsPerSample int      `json:"bits_per_sample,omitempty" yaml:"bits_per_sample,omitempty" msgpack:"bits_per_sample,omitempty"`
	Bitrate       int      `json:"bitrate,omitempty" yaml:"bitrate,omitempty" msgpack:"bitrate,omitempty"`
	MaxInputSize  int      `json:"max_input_size,omitempty" yaml:"max_input_size,omitempty" msgpack:"max_input_size,omitempty"`
	DurationUs    int64    `json:"duration_us" yaml:"duration_us" msgpack:"duration_us"`
	InitData      [][]byte `json:"-" yaml:"-" msgpack:"init_data"`
}

// Sample flags.
const (
	SampleFlagKeyFrame = 1 << iota
)

// Sample is one timed unit of codec data.
type Sample struct {
	TimeUs int64
	Flags  int
	Data   []byte
}

// Duration returns the timestamp as a time.Duration.
func (s Sample) Duration() time.Duration {
	return time.Duration(s.TimeUs) * time.Microsecond
}
