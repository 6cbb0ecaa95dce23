package ogg

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/haivivi/oggextract/pkg/extractor"
)

const (
	// flacHeadSize covers the mapping header, "fLaC", the metadata block
	// header and the STREAMINFO block.
	flacHeadSize       = 13 + 4 + flacStreamInfoSize
	flacStreamInfoSize = 34
)

var (
	errFLACHeader = errors.New("ogg: invalid FLAC header")
	errFLACFrame  = errors.New("ogg: invalid FLAC frame header")
)

// FLACStreamInfo is the STREAMINFO metadata block.
type FLACStreamInfo struct {
	MinBlockSize  int
	MaxBlockSize  int
	MinFrameSize  int
	MaxFrameSize  int
	SampleRate    int
	Channels      int
	BitsPerSample int
	// TotalSamples is the number of inter-channel samples, 0 if unknown.
	TotalSamples int64
}

// FLACHead is the first packet of an Ogg FLAC stream.
type FLACHead struct {
	MajorVersion byte
	MinorVersion byte
	// HeaderPackets is the number of metadata packets that follow, 0 if
	// unknown.
	HeaderPackets int
	StreamInfo    FLACStreamInfo

	raw []byte
}

// ParseFLACHead decodes the Ogg FLAC mapping header packet.
func ParseFLACHead(p []byte) (FLACHead, error) {
	var h FLACHead
	if Verify(CodecFLAC, p) != Match {
		return h, fmt.Errorf("%w: bad signature", errFLACHeader)
	}
	if len(p) < flacHeadSize {
		return h, fmt.Errorf("%w: %d bytes", errFLACHeader, len(p))
	}
	h.MajorVersion = p[5]
	h.MinorVersion = p[6]
	if h.MajorVersion != 1 {
		return h, fmt.Errorf("%w: mapping version %d.%d", errFLACHeader, h.MajorVersion, h.MinorVersion)
	}
	h.HeaderPackets = int(binary.BigEndian.Uint16(p[7:9]))
	if string(p[9:13]) != "fLaC" {
		return h, fmt.Errorf("%w: missing fLaC marker", errFLACHeader)
	}
	if p[13]&0x7F != 0 {
		return h, fmt.Errorf("%w: first metadata block is type %d", errFLACHeader, p[13]&0x7F)
	}
	if n := int(p[14])<<16 | int(p[15])<<8 | int(p[16]); n != flacStreamInfoSize {
		return h, fmt.Errorf("%w: STREAMINFO is %d bytes", errFLACHeader, n)
	}
	si, err := parseFLACStreamInfo(p[17 : 17+flacStreamInfoSize])
	if err != nil {
		return h, err
	}
	h.StreamInfo = si
	h.raw = append([]byte(nil), p[9:flacHeadSize]...)
	return h, nil
}

func parseFLACStreamInfo(b []byte) (FLACStreamInfo, error) {
	var si FLACStreamInfo
	si.MinBlockSize = int(binary.BigEndian.Uint16(b[0:2]))
	si.MaxBlockSize = int(binary.BigEndian.Uint16(b[2:4]))
	si.MinFrameSize = int(b[4])<<16 | int(b[5])<<8 | int(b[6])
	si.MaxFrameSize = int(b[7])<<16 | int(b[8])<<8 | int(b[9])
	// 20 bits rate, 3 bits channels-1, 5 bits bps-1, 36 bits total samples.
	x := binary.BigEndian.Uint64(b[10:18])
	si.SampleRate = int(x >> 44)
	si.Channels = int(x>>41&0x7) + 1
	si.BitsPerSample = int(x>>36&0x1F) + 1
	si.TotalSamples = int64(x & (1<<36 - 1))
	if si.SampleRate == 0 {
		return si, fmt.Errorf("%w: zero sample rate", errFLACHeader)
	}
	return si, nil
}

// FLACBlockSize returns the block size coded in a FLAC frame header.
func FLACBlockSize(frame []byte) (int, error) {
	if len(frame) < 4 || frame[0] != 0xFF || frame[1]&0xFE != 0xF8 {
		return 0, fmt.Errorf("%w: no frame sync", errFLACFrame)
	}
	code := frame[2] >> 4
	switch {
	case code == 0:
		return 0, fmt.Errorf("%w: reserved block size", errFLACFrame)
	case code == 1:
		return 192, nil
	case code <= 5:
		return 576 << (code - 2), nil
	case code >= 8:
		return 256 << (code - 8), nil
	}

	// Block sizes 6 and 7 are stored after the coded frame or sample number.
	if len(frame) < 5 {
		return 0, fmt.Errorf("%w: truncated", errFLACFrame)
	}
	n := utf8CodedLen(frame[4])
	if n == 0 {
		return 0, fmt.Errorf("%w: bad coded number", errFLACFrame)
	}
	off := 4 + n
	if code == 6 {
		if len(frame) < off+1 {
			return 0, fmt.Errorf("%w: truncated", errFLACFrame)
		}
		return int(frame[off]) + 1, nil
	}
	if len(frame) < off+2 {
		return 0, fmt.Errorf("%w: truncated", errFLACFrame)
	}
	return int(binary.BigEndian.Uint16(frame[off:])) + 1, nil
}

// utf8CodedLen returns the length of the UTF-8-style coded number starting
// with b, or 0 if b cannot start one.
func utf8CodedLen(b byte) int {
	switch {
	case b&0x80 == 0:
		return 1
	case b&0xE0 == 0xC0:
		return 2
	case b&0xF0 == 0xE0:
		return 3
	case b&0xF8 == 0xF0:
		return 4
	case b&0xFC == 0xF8:
		return 5
	case b&0xFE == 0xFC:
		return 6
	case b == 0xFE:
		return 7
	}
	return 0
}

type flacReader struct {
	oggReader
	head FLACHead
	next int64
}

func (r *flacReader) read(ctx context.Context, src extractor.Source, pos *extractor.PositionHolder) (extractor.Result, error) {
	return r.drive(ctx, src, pos, r)
}

func (r *flacReader) seek() {
	r.oggReader.seek()
	r.next = -1
}

func (r *flacReader) headerPacket(n int, p []byte) (headerState, error) {
	if n == 0 {
		h, err := ParseFLACHead(p)
		if err != nil {
			return headerMore, err
		}
		r.head = h
		r.next = -1
		if p[13]&0x80 != 0 {
			return headerDone, nil
		}
		return headerMore, nil
	}
	if len(p) > 0 && p[0] == 0xFF {
		return headerAudio, nil
	}
	if len(p) < 4 {
		return headerMore, fmt.Errorf("%w: metadata packet is %d bytes", errFLACHeader, len(p))
	}
	if p[0]&0x80 != 0 {
		return headerDone, nil
	}
	if r.head.HeaderPackets > 0 && n >= r.head.HeaderPackets {
		r.log.Debug("ogg: more FLAC metadata packets than announced", "announced", r.head.HeaderPackets)
	}
	return headerMore, nil
}

func (r *flacReader) format() extractor.Format {
	si := r.head.StreamInfo
	f := extractor.Format{
		MimeType:      extractor.MimeFLAC,
		SampleRate:    si.SampleRate,
		Channels:      si.Channels,
		BitsPerSample: si.BitsPerSample,
		InitData:      [][]byte{r.head.raw},
	}
	if si.MaxFrameSize > 0 {
		f.MaxInputSize = si.MaxFrameSize
	}
	return f
}

func (r *flacReader) knownDurationUs() int64 {
	if r.head.StreamInfo.TotalSamples == 0 {
		return extractor.DurationUnknown
	}
	return samplesToUs(r.head.StreamInfo.TotalSamples, r.head.StreamInfo.SampleRate)
}

func (r *flacReader) granuleUs(g int64) int64 {
	return samplesToUs(g, r.head.StreamInfo.SampleRate)
}

func (r *flacReader) audio(pg *page, packets [][]byte, _ int64) error {
	sizes := make([]int64, len(packets))
	var total int64
	for i, p := range packets {
		n, err := FLACBlockSize(p)
		if err != nil {
			return &ParseError{Offset: pg.offset, Err: err}
		}
		sizes[i] = int64(n)
		total += int64(n)
	}

	start := r.next
	if pg.GranulePosition >= 0 {
		start = pg.GranulePosition - total
	}
	if start < 0 {
		start = 0
	}
	rate := r.head.StreamInfo.SampleRate
	for i, p := range packets {
		if err := r.writeSample(samplesToUs(start, rate), p); err != nil {
			return err
		}
		start += sizes[i]
	}
	r.next = start
	return nil
}
