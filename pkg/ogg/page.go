package ogg

import (
	"context"
	"encoding/binary"
	"fmt"

	"github.com/haivivi/oggextract/pkg/extractor"
)

// Page header type flags.
const (
	FlagContinued = 0x01
	FlagBOS       = 0x02
	FlagEOS       = 0x04
)

const (
	// MinHeaderSize is the fixed part of a page header, before the lacing
	// values.
	MinHeaderSize = 27

	// MaxHeaderSize is the size of a header with 255 lacing values.
	MaxHeaderSize = MinHeaderSize + 255

	// MaxBodySize bounds the body of a single page.
	MaxBodySize = 255 * 255

	capturePattern = "OggS"
)

// Mode selects how Populate treats the page it reads.
type Mode int

const (
	// ModeProbe parses the first page of a candidate stream. The page must
	// carry the BOS flag.
	ModeProbe Mode = iota

	// ModeStream parses any page during steady-state reading.
	ModeStream
)

// PageHeader is a decoded Ogg page header.
type PageHeader struct {
	Version         byte
	Type            byte
	GranulePosition int64
	SerialNumber    uint32
	SequenceNumber  uint32
	Checksum        uint32
	Laces           []byte
}

// SegmentCount returns the number of lacing values.
func (h *PageHeader) SegmentCount() int { return len(h.Laces) }

// HeaderSize returns the encoded size of the header.
func (h *PageHeader) HeaderSize() int { return MinHeaderSize + len(h.Laces) }

// BodySize returns the sum of the lacing values.
func (h *PageHeader) BodySize() int {
	n := 0
	for _, l := range h.Laces {
		n += int(l)
	}
	return n
}

// Continued reports whether the page starts with the rest of a packet.
func (h *PageHeader) Continued() bool { return h.Type&FlagContinued != 0 }

// BOS reports whether the page is the first of its logical stream.
func (h *PageHeader) BOS() bool { return h.Type&FlagBOS != 0 }

// EOS reports whether the page is the last of its logical stream.
func (h *PageHeader) EOS() bool { return h.Type&FlagEOS != 0 }

// ParsePageHeader decodes a page header from the start of b.
//
// It returns ErrNotAPage if b does not start with "OggS" and an error
// wrapping ErrMalformedPage if the version is not 0 or b is shorter than the
// header it describes.
func ParsePageHeader(b []byte) (PageHeader, error) {
	var h PageHeader
	if len(b) < len(capturePattern) || string(b[:4]) != capturePattern {
		return h, ErrNotAPage
	}
	if len(b) < MinHeaderSize {
		return h, fmt.Errorf("%w: header truncated at %d bytes", ErrMalformedPage, len(b))
	}
	if err := h.decodeFixed(b[:MinHeaderSize]); err != nil {
		return h, err
	}
	n := int(b[26])
	if len(b) < MinHeaderSize+n {
		return h, fmt.Errorf("%w: lacing table truncated, want %d values", ErrMalformedPage, n)
	}
	h.Laces = append([]byte(nil), b[MinHeaderSize:MinHeaderSize+n]...)
	return h, nil
}

// decodeFixed decodes the 27-byte fixed prefix, leaving Laces sized but
// unfilled.
func (h *PageHeader) decodeFixed(b []byte) error {
	if string(b[:4]) != capturePattern {
		return ErrNotAPage
	}
	if b[4] != 0 {
		return fmt.Errorf("%w: version %d", ErrMalformedPage, b[4])
	}
	h.Version = b[4]
	h.Type = b[5]
	h.GranulePosition = int64(binary.LittleEndian.Uint64(b[6:14]))
	h.SerialNumber = binary.LittleEndian.Uint32(b[14:18])
	h.SequenceNumber = binary.LittleEndian.Uint32(b[18:22])
	h.Checksum = binary.LittleEndian.Uint32(b[22:26])
	h.Laces = h.Laces[:0]
	return nil
}

// Populate decodes the page header at the peek cursor of src.
//
// The header bytes are peeked, not consumed: on return the peek cursor sits
// at the first body byte, so the caller can peek the body and commit the
// whole page at once. Source errors are returned unchanged, which keeps
// extractor.ErrNeedMoreData and io.EOF distinct from ErrNotAPage.
//
// In ModeProbe a page without the BOS flag is reported as ErrBOSMissing
// after h is fully decoded.
func (h *PageHeader) Populate(ctx context.Context, src extractor.Source, mode Mode) error {
	var fixed [MinHeaderSize]byte
	if err := src.Peek(ctx, fixed[:]); err != nil {
		return err
	}
	if err := h.decodeFixed(fixed[:]); err != nil {
		return err
	}
	if n := int(fixed[26]); n > 0 {
		h.Laces = append(h.Laces[:0], make([]byte, n)...)
		if err := src.Peek(ctx, h.Laces); err != nil {
			return err
		}
	}
	if mode == ModeProbe && !h.BOS() {
		return ErrBOSMissing
	}
	return nil
}

// AppendBinary appends the encoded header to b. The checksum field is
// written as stored in h.
func (h *PageHeader) AppendBinary(b []byte) ([]byte, error) {
	if len(h.Laces) > 255 {
		return b, fmt.Errorf("%w: %d lacing values", ErrPageTooLarge, len(h.Laces))
	}
	b = append(b, capturePattern...)
	b = append(b, h.Version, h.Type)
	b = binary.LittleEndian.AppendUint64(b, uint64(h.GranulePosition))
	b = binary.LittleEndian.AppendUint32(b, h.SerialNumber)
	b = binary.LittleEndian.AppendUint32(b, h.SequenceNumber)
	b = binary.LittleEndian.AppendUint32(b, h.Checksum)
	b = append(b, byte(len(h.Laces)))
	return append(b, h.Laces...), nil
}
