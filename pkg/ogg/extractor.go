package ogg

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/haivivi/oggextract/pkg/extractor"
)

type state int

const (
	stateUndetected state = iota
	stateDetected
	stateInitialized
	stateRejected
)

func (s state) String() string {
	switch s {
	case stateUndetected:
		return "undetected"
	case stateDetected:
		return "detected"
	case stateInitialized:
		return "initialized"
	case stateRejected:
		return "rejected"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Extractor extracts the single elementary track of an Ogg FLAC, Vorbis or
// Opus stream. It implements extractor.Extractor.
//
// An Extractor is not safe for concurrent use. Its methods must be called in
// protocol order: Detect, then Initialize, then any sequence of Read and
// Seek. Calls out of order fail with ErrInvalidState.
type Extractor struct {
	opts  options
	log   *slog.Logger
	state state
	codec Codec

	reader streamReader
	track  extractor.TrackOutput
}

// New returns an Extractor in the undetected state.
func New(opts ...Option) *Extractor {
	o := newOptions(opts)
	return &Extractor{opts: o, log: o.log}
}

// Codec returns the detected codec, or CodecUnknown before a successful
// Detect.
func (e *Extractor) Codec() Codec { return e.codec }

// Detect reports whether src, at its current position, starts an Ogg FLAC,
// Vorbis or Opus stream. It never advances the position of src.
//
// A refusal is final: the Extractor cannot be probed again and further calls
// return ErrInvalidState. An error other than ErrInvalidState means the probe
// could not complete and leaves the Extractor untouched; after
// extractor.ErrNeedMoreData the host may call Detect again.
func (e *Extractor) Detect(ctx context.Context, src extractor.Source) (bool, error) {
	if e.state != stateUndetected {
		return false, fmt.Errorf("%w: detect in state %v", ErrInvalidState, e.state)
	}
	res, err := Sniff(ctx, src)
	if err != nil {
		return false, err
	}
	if res.Outcome != OutcomeMatched {
		e.log.Debug("ogg: stream refused", "outcome", res.Outcome.String(), "offset", src.Position())
		e.state = stateRejected
		return false, nil
	}
	e.codec = res.Codec
	e.reader = newStreamReader(res.Codec, &e.opts)
	e.state = stateDetected
	e.log.Debug("ogg: stream detected", "codec", res.Codec.String(), "serial", res.Header.SerialNumber)
	return true, nil
}

// Initialize registers the single track (id 0) with out and ends the track
// list. It must follow a successful Detect and may be called once.
func (e *Extractor) Initialize(out extractor.Output) error {
	if e.state != stateDetected {
		return fmt.Errorf("%w: initialize in state %v", ErrInvalidState, e.state)
	}
	e.track = out.Track(0)
	out.EndTracks()
	e.reader.init(out, e.track)
	e.state = stateInitialized
	return nil
}

// Seek tells the Extractor that the host repositioned the source. The next
// Read resumes at whatever page follows the new position; if that page starts
// the stream, the codec headers are consumed again without a second Format
// call. Seek is idempotent.
func (e *Extractor) Seek() error {
	if e.state != stateInitialized {
		return fmt.Errorf("%w: seek in state %v", ErrInvalidState, e.state)
	}
	e.reader.seek()
	return nil
}

// Read reads at most one page from src and delivers the packets completed on
// it. When it returns extractor.ResultSeekRequired the host must reposition
// src at pos.Position before the next Read; Seek must not be called for it.
//
// Corrupt or truncated data is reported as a *ParseError. Source errors such
// as extractor.ErrNeedMoreData are returned unchanged and leave the stream
// position at the page that could not be read.
func (e *Extractor) Read(ctx context.Context, src extractor.Source, pos *extractor.PositionHolder) (extractor.Result, error) {
	if e.state != stateInitialized {
		return extractor.ResultContinue, fmt.Errorf("%w: read in state %v", ErrInvalidState, e.state)
	}
	return e.reader.read(ctx, src, pos)
}

// Release is a no-op; an Extractor holds no resources.
func (e *Extractor) Release() {}

var _ extractor.Extractor = (*Extractor)(nil)
