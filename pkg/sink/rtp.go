package sink

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"iter"

	"github.com/pion/rtp"

	"github.com/haivivi/oggextract/pkg/extractor"
)

const (
	// PayloadTypeOpus is the payload type WebRTC peers commonly negotiate
	// for Opus.
	PayloadTypeOpus = 111

	// PayloadTypeDynamic is used for the other codecs.
	PayloadTypeDynamic = 96
)

var (
	// ErrNoFormat is returned by RTP.WriteSample before Format.
	ErrNoFormat = errors.New("sink: sample before format")

	// ErrPayloadTooLarge is returned for samples larger than MaxPayload.
	ErrPayloadTooLarge = errors.New("sink: sample exceeds max rtp payload")
)

// RTPOptions configures an RTP sink. Zero values pick defaults.
type RTPOptions struct {
	PayloadType uint8
	SSRC        uint32
	// Sequencer defaults to a random sequencer.
	Sequencer rtp.Sequencer
	// MaxPayload rejects larger samples when positive.
	MaxPayload int
}

// RTP packetizes the samples of one track into RTP packets, one sample per
// packet. Timestamps run at the codec clock rate: 48 kHz for Opus, the
// track sample rate otherwise. It is both the Output and its only track.
type RTP struct {
	opts   RTPOptions
	send   func(*rtp.Packet) error
	format *extractor.Format
	clock  uint32

	count      int
	durationUs int64
}

// NewRTP returns an RTP sink delivering packets to send.
func NewRTP(send func(*rtp.Packet) error, opts RTPOptions) *RTP {
	if opts.Sequencer == nil {
		opts.Sequencer = rtp.NewRandomSequencer()
	}
	return &RTP{opts: opts, send: send, durationUs: extractor.DurationUnknown}
}

func (r *RTP) Track(int) extractor.TrackOutput { return r }

func (r *RTP) EndTracks() {}

func (r *RTP) Duration(us int64) { r.durationUs = us }

// DurationUs returns the last reported duration.
func (r *RTP) DurationUs() int64 { return r.durationUs }

// Packets returns how many packets were sent.
func (r *RTP) Packets() int { return r.count }

// ClockRate returns the RTP clock rate, 0 before Format.
func (r *RTP) ClockRate() uint32 { return r.clock }

func (r *RTP) Format(f extractor.Format) {
	r.format = &f
	r.clock = uint32(f.SampleRate)
	if f.MimeType == extractor.MimeOpus {
		r.clock = 48000
	}
	if r.opts.PayloadType == 0 {
		r.opts.PayloadType = PayloadTypeDynamic
		if f.MimeType == extractor.MimeOpus {
			r.opts.PayloadType = PayloadTypeOpus
		}
	}
}

func (r *RTP) WriteSample(s extractor.Sample) error {
	if r.format == nil {
		return ErrNoFormat
	}
	if r.opts.MaxPayload > 0 && len(s.Data) > r.opts.MaxPayload {
		return fmt.Errorf("%w: %d > %d bytes", ErrPayloadTooLarge, len(s.Data), r.opts.MaxPayload)
	}
	ts := uint32(max(s.TimeUs, 0) * int64(r.clock) / 1_000_000)
	pkt := &rtp.Packet{
		Header: rtp.Header{
			Version:        2,
			Marker:         r.count == 0,
			PayloadType:    r.opts.PayloadType,
			SequenceNumber: r.opts.Sequencer.NextSequenceNumber(),
			Timestamp:      ts,
			SSRC:           r.opts.SSRC,
		},
		Payload: s.Data,
	}
	if err := r.send(pkt); err != nil {
		return fmt.Errorf("sink: send rtp: %w", err)
	}
	r.count++
	return nil
}

// RTPDumpWriter writes RTP packets to w, each prefixed with its length as a
// 16-bit big-endian integer.
type RTPDumpWriter struct {
	w   io.Writer
	buf []byte
}

// NewRTPDumpWriter returns a dump writer over w.
func NewRTPDumpWriter(w io.Writer) *RTPDumpWriter {
	return &RTPDumpWriter{w: w}
}

// WritePacket marshals and writes one packet. It matches the send function
// of NewRTP.
func (d *RTPDumpWriter) WritePacket(p *rtp.Packet) error {
	n := p.MarshalSize()
	if n > 0xFFFF {
		return fmt.Errorf("sink: rtp packet of %d bytes", n)
	}
	d.buf = binary.BigEndian.AppendUint16(d.buf[:0], uint16(n))
	b, err := p.Marshal()
	if err != nil {
		return fmt.Errorf("sink: marshal rtp: %w", err)
	}
	d.buf = append(d.buf, b...)
	_, err = d.w.Write(d.buf)
	return err
}

// ReadRTPDump iterates over the packets of a dump written by RTPDumpWriter.
func ReadRTPDump(r io.Reader) iter.Seq2[*rtp.Packet, error] {
	return func(yield func(*rtp.Packet, error) bool) {
		var hdr [2]byte
		for {
			if _, err := io.ReadFull(r, hdr[:]); err != nil {
				if err != io.EOF {
					yield(nil, fmt.Errorf("sink: read rtp dump: %w", err))
				}
				return
			}
			buf := make([]byte, binary.BigEndian.Uint16(hdr[:]))
			if _, err := io.ReadFull(r, buf); err != nil {
				yield(nil, fmt.Errorf("sink: read rtp dump: %w", err))
				return
			}
			var p rtp.Packet
			if err := p.Unmarshal(buf); err != nil {
				yield(nil, fmt.Errorf("sink: unmarshal rtp: %w", err))
				return
			}
			if !yield(&p, nil) {
				return
			}
		}
	}
}

var (
	_ extractor.Output      = (*RTP)(nil)
	_ extractor.TrackOutput = (*RTP)(nil)
)
