package ogg

import (
	"encoding/binary"
	"fmt"
	"io"
)

// PageWriter writes the pages of one logical bitstream.
type PageWriter struct {
	w        io.Writer
	serial   uint32
	sequence uint32
	buf      []byte
}

// NewPageWriter returns a writer for the bitstream with the given serial
// number.
func NewPageWriter(w io.Writer, serial uint32) *PageWriter {
	return &PageWriter{w: w, serial: serial}
}

// Lacing returns the lacing values of a packet of n bytes. A packet whose
// size is a multiple of 255 ends with a zero lace.
func Lacing(n int) []byte {
	laces := make([]byte, 0, n/255+1)
	for ; n >= 255; n -= 255 {
		laces = append(laces, 255)
	}
	return append(laces, byte(n))
}

// WritePage writes one page holding the given complete packets.
func (w *PageWriter) WritePage(flags byte, granule int64, packets ...[]byte) error {
	var laces, body []byte
	for _, p := range packets {
		laces = append(laces, Lacing(len(p))...)
		body = append(body, p...)
	}
	return w.WriteSegments(flags, granule, laces, body)
}

// WriteSegments writes one page with explicit lacing values. It is used to
// split packets across pages: a trailing 255 lace continues the last packet
// onto the next page, which must then carry FlagContinued.
func (w *PageWriter) WriteSegments(flags byte, granule int64, laces, body []byte) error {
	if len(laces) > 255 {
		return fmt.Errorf("%w: %d lacing values", ErrPageTooLarge, len(laces))
	}
	h := PageHeader{
		Type:            flags,
		GranulePosition: granule,
		SerialNumber:    w.serial,
		SequenceNumber:  w.sequence,
		Laces:           laces,
	}
	if h.BodySize() != len(body) {
		return fmt.Errorf("ogg: lacing values sum to %d, body is %d bytes", h.BodySize(), len(body))
	}
	b, err := h.AppendBinary(w.buf[:0])
	if err != nil {
		return err
	}
	binary.LittleEndian.PutUint32(b[22:26], Checksum(b, body))
	b = append(b, body...)
	w.buf = b
	if _, err := w.w.Write(b); err != nil {
		return err
	}
	w.sequence++
	return nil
}

// Sequence returns the sequence number of the next page.
func (w *PageWriter) Sequence() uint32 { return w.sequence }
