package ogg

import (
	"context"
	"fmt"

	"github.com/haivivi/oggextract/pkg/extractor"
)

// Report summarizes a whole stream.
type Report struct {
	Codec       string           `json:"codec" yaml:"codec" msgpack:"codec"`
	Format      extractor.Format `json:"format" yaml:"format" msgpack:"format"`
	DurationUs  int64            `json:"duration_us" yaml:"duration_us" msgpack:"duration_us"`
	Samples     int              `json:"samples" yaml:"samples" msgpack:"samples"`
	Bytes       int64            `json:"bytes" yaml:"bytes" msgpack:"bytes"`
	FirstTimeUs int64            `json:"first_time_us" yaml:"first_time_us" msgpack:"first_time_us"`
	LastTimeUs  int64            `json:"last_time_us" yaml:"last_time_us" msgpack:"last_time_us"`
	Seeks       int              `json:"seeks" yaml:"seeks" msgpack:"seeks"`
}

// SeekableSource is a Source the caller can reposition.
type SeekableSource interface {
	extractor.Source
	extractor.Seeker
}

// Probe detects the stream in src and reads it to the end, collecting a
// Report. It returns ErrNotOgg if Detect refuses the stream.
func Probe(ctx context.Context, src SeekableSource, opts ...Option) (*Report, error) {
	ext := New(opts...)
	defer ext.Release()

	ok, err := ext.Detect(ctx, src)
	if err != nil {
		return nil, fmt.Errorf("ogg: probe: %w", err)
	}
	if !ok {
		return nil, ErrNotOgg
	}

	out := &reportOutput{rep: Report{
		Codec:       ext.Codec().String(),
		DurationUs:  extractor.DurationUnknown,
		FirstTimeUs: extractor.DurationUnknown,
		LastTimeUs:  extractor.DurationUnknown,
	}}
	if err := ext.Initialize(out); err != nil {
		return nil, err
	}

	var pos extractor.PositionHolder
	for {
		res, err := ext.Read(ctx, src, &pos)
		if err != nil {
			return nil, err
		}
		switch res {
		case extractor.ResultEndOfInput:
			if out.rep.DurationUs == extractor.DurationUnknown && out.rep.LastTimeUs >= 0 {
				out.rep.DurationUs = out.rep.LastTimeUs
			}
			return &out.rep, nil
		case extractor.ResultSeekRequired:
			if err := src.SeekTo(pos.Position); err != nil {
				return nil, fmt.Errorf("ogg: probe: %w", err)
			}
			out.rep.Seeks++
		}
	}
}

type reportOutput struct {
	rep Report
}

func (o *reportOutput) Track(int) extractor.TrackOutput { return o }

func (o *reportOutput) EndTracks() {}

func (o *reportOutput) Duration(us int64) { o.rep.DurationUs = us }

func (o *reportOutput) Format(f extractor.Format) {
	o.rep.Format = f
	if f.DurationUs != extractor.DurationUnknown {
		o.rep.DurationUs = f.DurationUs
	}
}

func (o *reportOutput) WriteSample(s extractor.Sample) error {
	if o.rep.Samples == 0 {
		o.rep.FirstTimeUs = s.TimeUs
	}
	o.rep.Samples++
	o.rep.Bytes += int64(len(s.Data))
	o.rep.LastTimeUs = s.TimeUs
	return nil
}
