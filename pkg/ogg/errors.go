package ogg

import (
	"errors"
	"fmt"
)

var (
	// ErrNotAPage is returned when the capture pattern "OggS" is missing.
	ErrNotAPage = errors.New("ogg: not a page")

	// ErrMalformedPage is returned for a page with a valid capture pattern
	// but an invalid header.
	ErrMalformedPage = errors.New("ogg: malformed page")

	// ErrBOSMissing is returned by a probe-mode header parse when the page does
	// not start a logical bitstream.
	ErrBOSMissing = errors.New("ogg: beginning of stream flag missing")

	// ErrBadChecksum is returned when page checksum verification is enabled
	// and a page fails it.
	ErrBadChecksum = errors.New("ogg: bad page checksum")

	// ErrInvalidState is returned when an Extractor method is called out of
	// order, such as Read before Initialize.
	ErrInvalidState = errors.New("ogg: invalid extractor state")

	// ErrNotOgg is returned by Probe for streams Detect refuses.
	ErrNotOgg = errors.New("ogg: not an Ogg FLAC, Vorbis or Opus stream")

	// ErrPageTooLarge is returned by PageWriter when packets do not fit in one
	// page.
	ErrPageTooLarge = errors.New("ogg: packets exceed one page")
)

// ParseError reports corrupt or truncated data found after detection.
type ParseError struct {
	// Offset is the stream offset of the page being parsed.
	Offset int64
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("ogg: corrupt or truncated stream at offset %d: %v", e.Offset, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

func parseErrorf(offset int64, format string, args ...any) *ParseError {
	return &ParseError{Offset: offset, Err: fmt.Errorf(format, args...)}
}
