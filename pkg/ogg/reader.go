package ogg

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/haivivi/oggextract/pkg/extractor"
)

// streamReader is the codec-specific half of an Extractor. It is implemented
// by flacReader, vorbisReader and opusReader only.
type streamReader interface {
	init(out extractor.Output, track extractor.TrackOutput)
	seek()
	read(ctx context.Context, src extractor.Source, pos *extractor.PositionHolder) (extractor.Result, error)
}

func newStreamReader(c Codec, o *options) streamReader {
	base := oggReader{
		codec:       c,
		log:         o.log.With("codec", c.String()),
		probe:       o.durationProbe,
		prevGranule: 0,
		packets:     packetReader{verify: o.verify, log: o.log},
	}
	switch c {
	case CodecFLAC:
		return &flacReader{oggReader: base}
	case CodecVorbis:
		return &vorbisReader{oggReader: base}
	case CodecOpus:
		return &opusReader{oggReader: base}
	}
	panic(fmt.Sprintf("ogg: no reader for %v", c))
}

// headerState is what a codec handler reports for a header packet.
type headerState int

const (
	// headerMore means more header packets follow.
	headerMore headerState = iota
	// headerDone means the packet was the last header packet.
	headerDone
	// headerAudio means the packet is not a header but the first audio
	// packet; the header set is complete.
	headerAudio
)

// codecHandler is implemented by each codec reader and called by
// oggReader.drive.
type codecHandler interface {
	headerPacket(n int, p []byte) (headerState, error)
	format() extractor.Format
	// knownDurationUs returns the duration carried by the headers, or
	// extractor.DurationUnknown.
	knownDurationUs() int64
	granuleUs(granule int64) int64
	// audio delivers the audio packets that completed on pg. prevGranule is
	// the granule position of the previous page, or -1 if unknown.
	audio(pg *page, packets [][]byte, prevGranule int64) error
}

type phase int

const (
	phaseHeaders phase = iota
	phaseProbePending
	phaseProbing
	phaseAudio
	// phaseResume follows Seek: the next page decides whether headers are
	// read again.
	phaseResume
)

func (p phase) String() string {
	switch p {
	case phaseHeaders:
		return "headers"
	case phaseProbePending:
		return "probe-pending"
	case phaseProbing:
		return "probing"
	case phaseAudio:
		return "audio"
	case phaseResume:
		return "resume"
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

// oggReader holds the state shared by the codec readers: paging, the
// header phase, the one-time duration probe and resumption after Seek.
type oggReader struct {
	codec   Codec
	log     *slog.Logger
	out     extractor.Output
	track   extractor.TrackOutput
	packets packetReader

	phase       phase
	headerIndex int
	headersDone bool
	formatSent  bool
	// silent suppresses header side effects when headers are re-read after
	// a seek to the stream start.
	silent bool

	probe       bool
	probeDone   bool
	audioStart  int64
	lastGranule int64

	prevGranule  int64
	startGranule int64
}

func (r *oggReader) init(out extractor.Output, track extractor.TrackOutput) {
	r.out = out
	r.track = track
}

func (r *oggReader) seek() {
	r.packets.reset()
	r.packets.tolerant = false
	r.silent = false
	if r.phase == phaseProbePending || r.phase == phaseProbing {
		r.log.Debug("ogg: duration probe canceled by seek")
		r.probeDone = true
	}
	if !r.headersDone {
		r.phase = phaseHeaders
		r.headerIndex = 0
		return
	}
	r.phase = phaseResume
	r.prevGranule = -1
}

// drive makes one step of progress for the codec reader h.
func (r *oggReader) drive(ctx context.Context, src extractor.Source, pos *extractor.PositionHolder, h codecHandler) (extractor.Result, error) {
	switch r.phase {
	case phaseProbePending:
		if !r.probeDone && src.Length() >= 0 {
			return r.startProbe(src, pos), nil
		}
		r.probeDone = true
		r.phase = phaseAudio
	case phaseProbing:
		return r.probeStep(ctx, src, pos, h)
	}

	pg, err := r.packets.next(ctx, src)
	if err == io.EOF {
		if !r.headersDone {
			return extractor.ResultContinue, &ParseError{Offset: src.Position(), Err: fmt.Errorf("stream ended before %v headers: %w", r.codec, io.ErrUnexpectedEOF)}
		}
		return extractor.ResultEndOfInput, nil
	}
	if err != nil {
		return extractor.ResultContinue, err
	}

	if r.phase == phaseResume {
		if pg.BOS() {
			r.log.Debug("ogg: resumed at stream start", "offset", pg.offset)
			r.phase = phaseHeaders
			r.headerIndex = 0
			r.silent = true
		} else {
			r.phase = phaseAudio
		}
	}

	packets := pg.packets
	for r.phase == phaseHeaders && len(packets) > 0 {
		st, err := h.headerPacket(r.headerIndex, packets[0])
		if err != nil {
			return extractor.ResultContinue, &ParseError{Offset: pg.offset, Err: err}
		}
		if st != headerAudio {
			r.headerIndex++
			packets = packets[1:]
		}
		if st != headerMore {
			r.finishHeaders(src, h)
		}
	}

	if len(packets) > 0 {
		if err := h.audio(pg, packets, r.prevGranule); err != nil {
			return extractor.ResultContinue, err
		}
	}
	r.updateGranule(pg)
	return extractor.ResultContinue, nil
}

func (r *oggReader) updateGranule(pg *page) {
	if pg.GranulePosition >= 0 {
		r.prevGranule = pg.GranulePosition
	}
}

// finishHeaders emits the format once and arms the duration probe.
func (r *oggReader) finishHeaders(src extractor.Source, h codecHandler) {
	r.audioStart = src.Position()
	if r.silent {
		r.silent = false
		r.phase = phaseAudio
		return
	}
	r.headersDone = true

	f := h.format()
	known := h.knownDurationUs()
	f.DurationUs = known
	if !r.formatSent {
		r.track.Format(f)
		r.formatSent = true
		r.log.Debug("ogg: format", "mime", f.MimeType, "rate", f.SampleRate, "channels", f.Channels)
	}
	if known != extractor.DurationUnknown {
		r.out.Duration(known)
		r.probeDone = true
	}
	if r.probe && !r.probeDone {
		r.phase = phaseProbePending
		return
	}
	r.probeDone = true
	r.phase = phaseAudio
}

func (r *oggReader) startProbe(src extractor.Source, pos *extractor.PositionHolder) extractor.Result {
	target := max(r.audioStart, src.Length()-probeWindow)
	r.log.Debug("ogg: duration probe", "from", target, "length", src.Length())
	r.phase = phaseProbing
	r.startGranule = r.prevGranule
	r.lastGranule = -1
	r.packets.reset()
	r.packets.tolerant = true
	pos.Position = target
	return extractor.ResultSeekRequired
}

// probeStep reads one page of the stream tail. At the end of the stream it
// reports the duration and asks for a seek back to the first audio page.
func (r *oggReader) probeStep(ctx context.Context, src extractor.Source, pos *extractor.PositionHolder, h codecHandler) (extractor.Result, error) {
	pg, err := r.packets.next(ctx, src)
	switch {
	case err == nil:
		if pg.GranulePosition >= 0 {
			r.lastGranule = pg.GranulePosition
		}
		return extractor.ResultContinue, nil
	case err == io.EOF, errors.Is(err, io.ErrUnexpectedEOF):
	default:
		return extractor.ResultContinue, err
	}

	if r.lastGranule >= 0 {
		us := h.granuleUs(r.lastGranule)
		r.log.Debug("ogg: duration probed", "granule", r.lastGranule, "duration_us", us)
		r.out.Duration(us)
	} else {
		r.log.Debug("ogg: duration probe found no granule position")
	}
	r.probeDone = true
	r.phase = phaseAudio
	r.packets.tolerant = false
	r.packets.reset()
	r.prevGranule = r.startGranule
	pos.Position = r.audioStart
	return extractor.ResultSeekRequired, nil
}

// writeSample delivers one packet to the track.
func (r *oggReader) writeSample(timeUs int64, data []byte) error {
	err := r.track.WriteSample(extractor.Sample{
		TimeUs: timeUs,
		Flags:  extractor.SampleFlagKeyFrame,
		Data:   data,
	})
	if err != nil {
		return fmt.Errorf("ogg: write sample: %w", err)
	}
	return nil
}

// samplesToUs converts a sample count at rate to microseconds.
func samplesToUs(samples int64, rate int) int64 {
	if rate <= 0 {
		return 0
	}
	return samples * 1_000_000 / int64(rate)
}
