package ogg

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/haivivi/oggextract/pkg/audio/codec/opus"
	"github.com/haivivi/oggextract/pkg/extractor"
)

const (
	opusHeadSize = 19

	// opusSeekPreRollNs is the decoder convergence time RFC 7845 §4.6
	// recommends decoding before a seek target.
	opusSeekPreRollNs = 80_000_000
)

var opusTagsSignature = []byte("OpusTags")

var (
	errOpusHead = errors.New("ogg: invalid OpusHead")
	errOpusTags = errors.New("ogg: invalid OpusTags")
)

// OpusHead is the Ogg Opus identification header (RFC 7845 §5.1).
type OpusHead struct {
	Version       byte
	Channels      int
	PreSkip       int
	InputRate     int
	OutputGain    int16
	MappingFamily byte

	raw []byte
}

// ParseOpusHead decodes an OpusHead packet.
func ParseOpusHead(p []byte) (OpusHead, error) {
	var h OpusHead
	if Verify(CodecOpus, p) != Match {
		return h, fmt.Errorf("%w: bad signature", errOpusHead)
	}
	if len(p) < opusHeadSize {
		return h, fmt.Errorf("%w: %d bytes", errOpusHead, len(p))
	}
	h.Version = p[8]
	if h.Version>>4 != 0 {
		return h, fmt.Errorf("%w: unsupported version %d", errOpusHead, h.Version)
	}
	h.Channels = int(p[9])
	if h.Channels == 0 {
		return h, fmt.Errorf("%w: zero channels", errOpusHead)
	}
	h.PreSkip = int(binary.LittleEndian.Uint16(p[10:12]))
	h.InputRate = int(binary.LittleEndian.Uint32(p[12:16]))
	h.OutputGain = int16(binary.LittleEndian.Uint16(p[16:18]))
	h.MappingFamily = p[18]
	h.raw = append([]byte(nil), p...)
	return h, nil
}

type opusReader struct {
	oggReader
	head OpusHead
	// next is the granule position following the last emitted packet, or -1.
	next int64
}

func (r *opusReader) read(ctx context.Context, src extractor.Source, pos *extractor.PositionHolder) (extractor.Result, error) {
	return r.drive(ctx, src, pos, r)
}

func (r *opusReader) seek() {
	r.oggReader.seek()
	r.next = -1
}

func (r *opusReader) headerPacket(n int, p []byte) (headerState, error) {
	switch n {
	case 0:
		h, err := ParseOpusHead(p)
		if err != nil {
			return headerMore, err
		}
		r.head = h
		r.next = -1
		return headerMore, nil
	default:
		if len(p) < len(opusTagsSignature) || string(p[:8]) != string(opusTagsSignature) {
			return headerMore, errOpusTags
		}
		return headerDone, nil
	}
}

func (r *opusReader) format() extractor.Format {
	return extractor.Format{
		MimeType:   extractor.MimeOpus,
		SampleRate: opus.SampleRate,
		Channels:   r.head.Channels,
		InitData: [][]byte{
			r.head.raw,
			binary.LittleEndian.AppendUint64(nil, uint64(samplesToUs(int64(r.head.PreSkip), opus.SampleRate)*1000)),
			binary.LittleEndian.AppendUint64(nil, opusSeekPreRollNs),
		},
	}
}

func (r *opusReader) knownDurationUs() int64 { return extractor.DurationUnknown }

func (r *opusReader) granuleUs(g int64) int64 {
	return samplesToUs(max(g-int64(r.head.PreSkip), 0), opus.SampleRate)
}

func (r *opusReader) audio(pg *page, packets [][]byte, _ int64) error {
	counts := make([]int64, len(packets))
	var total int64
	for i, p := range packets {
		n, err := opus.Frame(p).Samples()
		if err != nil {
			r.log.Debug("ogg: opus packet without duration", "offset", pg.offset, "err", err)
		}
		counts[i] = int64(n)
		total += int64(n)
	}

	start := r.next
	if pg.GranulePosition >= 0 {
		start = pg.GranulePosition - total
	}
	if start < 0 && r.next < 0 {
		start = 0
	}
	for i, p := range packets {
		if err := r.writeSample(samplesToUs(start, opus.SampleRate), p); err != nil {
			return err
		}
		start += counts[i]
	}
	r.next = start
	return nil
}
