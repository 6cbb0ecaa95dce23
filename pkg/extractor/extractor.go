// Package extractor defines the contracts between a container extractor and the
// host pipeline that drives it.
//
// A host feeds an Extractor from a Source, receives tracks through an Output,
// and calls the extractor one step at a time:
//
//	ok, err := ext.Detect(ctx, src)   // speculative probe
//	err = ext.Initialize(out)         // register the track
//	for {
//	    res, err := ext.Read(ctx, src, &pos)
//	    switch res {
//	    case extractor.ResultSeekRequired:
//	        // reposition src at pos.Position
//	    case extractor.ResultEndOfInput:
//	        return
//	    }
//	}
//
// Sources, sinks and codec readers live in their own packages; this package
// only holds the shared types.
package extractor

import (
	"context"
	"errors"
	"fmt"
)

// ErrNeedMoreData is returned by a Source when it cannot satisfy a request yet.
// The call had no effect; the caller may retry after more data is buffered.
var ErrNeedMoreData = errors.New("extractor: need more data")

// Result is the outcome of a single Read call.
type Result int

const (
	// ResultContinue means progress was made; call Read again.
	ResultContinue Result = iota
	// ResultEndOfInput means the source is exhausted.
	ResultEndOfInput
	// ResultSeekRequired means the host must reposition the source at the
	// offset written to the PositionHolder before calling Read again.
	ResultSeekRequired
)

// String returns a human-readable representation of the Result.
func (r Result) String() string {
	switch r {
	case ResultContinue:
		return "continue"
	case ResultEndOfInput:
		return "end_of_input"
	case ResultSeekRequired:
		return "seek_required"
	}
	return fmt.Sprintf("result(%d)", int(r))
}

// PositionHolder receives the target byte offset of a ResultSeekRequired.
type PositionHolder struct {
	Position int64
}

// Extractor is the surface a host pipeline programs against.
type Extractor interface {
	// Detect reports whether src holds a stream this extractor understands.
	// Refusals are reported as false, never as errors; an error means the
	// probe could not complete (need more data, cancellation, I/O failure).
	Detect(ctx context.Context, src Source) (bool, error)

	// Initialize registers the extractor's tracks with out.
	Initialize(out Output) error

	// Seek resets parsing state after the host repositioned the source.
	Seek() error

	// Read makes one step of progress.
	Read(ctx context.Context, src Source, pos *PositionHolder) (Result, error)

	// Release frees resources held by the extractor.
	Release()
}
