package ogg

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/haivivi/oggextract/pkg/extractor"
)

const vorbisIDSize = 30

var errVorbisHeader = errors.New("ogg: invalid vorbis header")

// VorbisID is the Vorbis identification header.
type VorbisID struct {
	Version        uint32
	Channels       int
	SampleRate     int
	BitrateMax     int32
	BitrateNominal int32
	BitrateMin     int32
	BlockSize0     int
	BlockSize1     int

	raw []byte
}

// ParseVorbisID decodes a Vorbis identification header packet.
func ParseVorbisID(p []byte) (VorbisID, error) {
	var id VorbisID
	if err := checkVorbisHeader(p, 1); err != nil {
		return id, err
	}
	if len(p) < vorbisIDSize {
		return id, fmt.Errorf("%w: identification header is %d bytes", errVorbisHeader, len(p))
	}
	id.Version = binary.LittleEndian.Uint32(p[7:11])
	if id.Version != 0 {
		return id, fmt.Errorf("%w: version %d", errVorbisHeader, id.Version)
	}
	id.Channels = int(p[11])
	id.SampleRate = int(binary.LittleEndian.Uint32(p[12:16]))
	if id.Channels == 0 || id.SampleRate == 0 {
		return id, fmt.Errorf("%w: %d channels at %d Hz", errVorbisHeader, id.Channels, id.SampleRate)
	}
	id.BitrateMax = int32(binary.LittleEndian.Uint32(p[16:20]))
	id.BitrateNominal = int32(binary.LittleEndian.Uint32(p[20:24]))
	id.BitrateMin = int32(binary.LittleEndian.Uint32(p[24:28]))
	id.BlockSize0 = 1 << (p[28] & 0x0F)
	id.BlockSize1 = 1 << (p[28] >> 4)
	if p[29]&1 == 0 {
		return id, fmt.Errorf("%w: framing bit unset", errVorbisHeader)
	}
	id.raw = append([]byte(nil), p...)
	return id, nil
}

// VorbisComment is the Vorbis comment header.
type VorbisComment struct {
	Vendor   string
	Comments []string
}

// ParseVorbisComment decodes a Vorbis comment header packet.
func ParseVorbisComment(p []byte) (VorbisComment, error) {
	var c VorbisComment
	if err := checkVorbisHeader(p, 3); err != nil {
		return c, err
	}
	rest := p[7:]
	next := func() (string, bool) {
		if len(rest) < 4 {
			return "", false
		}
		n := binary.LittleEndian.Uint32(rest)
		rest = rest[4:]
		if uint64(n) > uint64(len(rest)) {
			return "", false
		}
		s := string(rest[:n])
		rest = rest[n:]
		return s, true
	}
	vendor, ok := next()
	if !ok || len(rest) < 4 {
		return c, fmt.Errorf("%w: truncated comment header", errVorbisHeader)
	}
	c.Vendor = vendor
	count := binary.LittleEndian.Uint32(rest)
	rest = rest[4:]
	for range count {
		s, ok := next()
		if !ok {
			return c, fmt.Errorf("%w: truncated comment list", errVorbisHeader)
		}
		c.Comments = append(c.Comments, s)
	}
	return c, nil
}

func checkVorbisHeader(p []byte, typ byte) error {
	if len(p) < 7 || p[0] != typ || string(p[1:7]) != "vorbis" {
		return fmt.Errorf("%w: want header type %d", errVorbisHeader, typ)
	}
	return nil
}

// vorbisReader timestamps each packet at the granule position the previous
// page ended on. Packet durations would need the mode table of the setup
// header, so packets sharing a page share a timestamp.
type vorbisReader struct {
	oggReader
	id      VorbisID
	comment VorbisComment
	setup   []byte
}

func (r *vorbisReader) read(ctx context.Context, src extractor.Source, pos *extractor.PositionHolder) (extractor.Result, error) {
	return r.drive(ctx, src, pos, r)
}

func (r *vorbisReader) headerPacket(n int, p []byte) (headerState, error) {
	switch n {
	case 0:
		id, err := ParseVorbisID(p)
		if err != nil {
			return headerMore, err
		}
		r.id = id
		return headerMore, nil
	case 1:
		c, err := ParseVorbisComment(p)
		if err != nil {
			return headerMore, err
		}
		r.comment = c
		return headerMore, nil
	default:
		if err := checkVorbisHeader(p, 5); err != nil {
			return headerMore, err
		}
		r.setup = append([]byte(nil), p...)
		return headerDone, nil
	}
}

func (r *vorbisReader) format() extractor.Format {
	f := extractor.Format{
		MimeType:     extractor.MimeVorbis,
		SampleRate:   r.id.SampleRate,
		Channels:     r.id.Channels,
		MaxInputSize: 65025,
		InitData:     [][]byte{r.id.raw, r.setup},
	}
	if r.id.BitrateNominal > 0 {
		f.Bitrate = int(r.id.BitrateNominal)
	}
	return f
}

func (r *vorbisReader) knownDurationUs() int64 { return extractor.DurationUnknown }

func (r *vorbisReader) granuleUs(g int64) int64 { return samplesToUs(g, r.id.SampleRate) }

func (r *vorbisReader) audio(pg *page, packets [][]byte, prevGranule int64) error {
	g := prevGranule
	if g < 0 {
		g = max(pg.GranulePosition, 0)
	}
	ts := samplesToUs(g, r.id.SampleRate)
	for _, p := range packets {
		if err := r.writeSample(ts, p); err != nil {
			return err
		}
	}
	return nil
}
