package ogg

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/haivivi/oggextract/pkg/extractor"
)

// page is one committed page of the followed bitstream and the packets that
// completed on it.
type page struct {
	PageHeader
	offset  int64
	packets [][]byte
}

// packetReader turns pages read from a Source into packets.
//
// A page is peeked in full before it is committed with a single Skip, so an
// error while reading a page leaves both the source position and the
// reader's partial packet untouched.
type packetReader struct {
	verify bool
	log    *slog.Logger

	serial     uint32
	haveSerial bool

	partial []byte
	// resync is set after a reposition: the reader scans for a capture
	// pattern before the next page.
	resync bool
	// dropLead discards continued data until a packet boundary is seen
	// after a reposition.
	dropLead bool
	// tolerant makes malformed pages skippable instead of fatal.
	tolerant bool

	hdr  PageHeader
	scan [4]byte
}

// reset forgets any partial packet and arranges for the next page to be
// located by scanning.
func (r *packetReader) reset() {
	r.partial = r.partial[:0]
	r.resync = true
	r.dropLead = true
}

// next reads the next page of the followed bitstream.
//
// It returns io.EOF when the source ends at a page boundary. Corrupt and
// truncated pages are reported as *ParseError. Source errors such as
// extractor.ErrNeedMoreData and context errors are returned unchanged.
func (r *packetReader) next(ctx context.Context, src extractor.Source) (*page, error) {
	for {
		if r.resync || r.tolerant {
			if err := r.seekCapture(ctx, src); err != nil {
				return nil, err
			}
		}
		pg, body, err := r.readPage(ctx, src)
		if err != nil {
			var perr *ParseError
			if (r.tolerant || r.resync) && errors.As(err, &perr) && !errors.Is(err, io.ErrUnexpectedEOF) {
				// Step past the bogus capture pattern and scan again.
				if err := src.Skip(ctx, 1); err != nil {
					return nil, err
				}
				continue
			}
			return nil, err
		}
		if !r.haveSerial {
			r.serial, r.haveSerial = pg.SerialNumber, true
		}
		if pg.SerialNumber != r.serial {
			r.log.Debug("ogg: skipping page of other bitstream",
				"serial", pg.SerialNumber, "offset", pg.offset)
			continue
		}
		r.packetize(pg, body)
		r.resync = false
		return pg, nil
	}
}

// seekCapture skips bytes until src is positioned at "OggS". io.EOF is
// returned if the stream ends first.
func (r *packetReader) seekCapture(ctx context.Context, src extractor.Source) error {
	for {
		src.ResetPeek()
		err := src.Peek(ctx, r.scan[:])
		switch {
		case err == nil:
		case err == io.ErrUnexpectedEOF:
			return io.EOF
		default:
			return err
		}
		if string(r.scan[:]) == capturePattern {
			src.ResetPeek()
			return nil
		}
		if err := src.Skip(ctx, 1); err != nil {
			return err
		}
	}
}

func (r *packetReader) readPage(ctx context.Context, src extractor.Source) (*page, []byte, error) {
	offset := src.Position()
	src.ResetPeek()
	defer src.ResetPeek()

	h := &r.hdr
	if err := h.Populate(ctx, src, ModeStream); err != nil {
		return nil, nil, r.sourceError(offset, err, true)
	}
	body := make([]byte, h.BodySize())
	if err := src.Peek(ctx, body); err != nil {
		return nil, nil, r.sourceError(offset, err, false)
	}
	if r.verify {
		raw, _ := h.AppendBinary(make([]byte, 0, h.HeaderSize()))
		if got := Checksum(raw, body); got != h.Checksum {
			return nil, nil, parseErrorf(offset, "%w: stored %08x, computed %08x", ErrBadChecksum, h.Checksum, got)
		}
	}
	if err := src.Skip(ctx, h.HeaderSize()+len(body)); err != nil {
		return nil, nil, err
	}

	pg := &page{PageHeader: *h, offset: offset}
	pg.Laces = append([]byte(nil), h.Laces...)
	return pg, body, nil
}

// sourceError maps an error from reading the page at offset. Only an io.EOF
// on the very first header byte is a clean end of stream.
func (r *packetReader) sourceError(offset int64, err error, header bool) error {
	switch {
	case err == io.EOF && header:
		return io.EOF
	case err == io.EOF, err == io.ErrUnexpectedEOF:
		return &ParseError{Offset: offset, Err: io.ErrUnexpectedEOF}
	case errors.Is(err, ErrNotAPage), errors.Is(err, ErrMalformedPage):
		return &ParseError{Offset: offset, Err: err}
	}
	return err
}

// packetize splits body along the lacing values of pg, completing the
// pending partial packet and keeping a trailing fragment for the next page.
func (r *packetReader) packetize(pg *page, body []byte) {
	laces := pg.Laces
	if !pg.Continued() && len(r.partial) > 0 {
		r.log.Debug("ogg: dropping unterminated packet", "bytes", len(r.partial), "offset", pg.offset)
		r.partial = r.partial[:0]
	}
	if r.dropLead {
		if !pg.Continued() {
			r.dropLead = false
		}
		// The start of this packet was before the reposition point, possibly
		// several pages back.
		for r.dropLead && len(laces) > 0 {
			l := laces[0]
			laces = laces[1:]
			body = body[l:]
			if l < 255 {
				r.dropLead = false
			}
		}
	}

	pkt := r.partial
	for _, l := range laces {
		pkt = append(pkt, body[:l]...)
		body = body[l:]
		if l < 255 {
			pg.packets = append(pg.packets, pkt)
			pkt = nil
		}
	}
	r.partial = pkt
}
