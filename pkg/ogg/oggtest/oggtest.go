// Package oggtest builds synthetic Ogg streams for tests.
//
// Pages carry valid checksums, so the streams pass checksum verification.
// Builders panic on misuse, such as packets that do not fit in a page.
package oggtest

import (
	"bytes"
	"encoding/binary"

	"github.com/haivivi/oggextract/pkg/ogg"
)

// Serial is the serial number of the fixture streams.
const Serial = 0x0A11CE

// Builder accumulates the pages of one stream.
type Builder struct {
	buf bytes.Buffer
	pw  *ogg.PageWriter
}

// NewBuilder returns a builder for the bitstream with the given serial.
func NewBuilder(serial uint32) *Builder {
	b := &Builder{}
	b.pw = ogg.NewPageWriter(&b.buf, serial)
	return b
}

// Page appends a page of complete packets.
func (b *Builder) Page(flags byte, granule int64, packets ...[]byte) *Builder {
	if err := b.pw.WritePage(flags, granule, packets...); err != nil {
		panic(err)
	}
	return b
}

// Segments appends a page with explicit lacing values.
func (b *Builder) Segments(flags byte, granule int64, laces, body []byte) *Builder {
	if err := b.pw.WriteSegments(flags, granule, laces, body); err != nil {
		panic(err)
	}
	return b
}

// Raw appends bytes that are not a page.
func (b *Builder) Raw(p []byte) *Builder {
	b.buf.Write(p)
	return b
}

// Len returns the number of bytes written so far, which is the offset of the
// next page.
func (b *Builder) Len() int64 { return int64(b.buf.Len()) }

// Bytes returns the stream.
func (b *Builder) Bytes() []byte { return bytes.Clone(b.buf.Bytes()) }

// OpusHead returns an OpusHead packet.
func OpusHead(channels, preSkip, inputRate int) []byte {
	p := []byte("OpusHead")
	p = append(p, 1, byte(channels))
	p = binary.LittleEndian.AppendUint16(p, uint16(preSkip))
	p = binary.LittleEndian.AppendUint32(p, uint32(inputRate))
	p = binary.LittleEndian.AppendUint16(p, 0)
	return append(p, 0)
}

// OpusTags returns an OpusTags packet with no user comments.
func OpusTags(vendor string) []byte {
	p := []byte("OpusTags")
	p = binary.LittleEndian.AppendUint32(p, uint32(len(vendor)))
	p = append(p, vendor...)
	return binary.LittleEndian.AppendUint32(p, 0)
}

// OpusPacket returns a single-frame 20 ms CELT fullband packet whose payload
// identifies it by page and index.
func OpusPacket(page, index int) []byte {
	return []byte{31 << 3, byte(page), byte(index), 0xA5}
}

// VorbisID returns a Vorbis identification header.
func VorbisID(channels, rate int) []byte {
	p := []byte("\x01vorbis")
	p = binary.LittleEndian.AppendUint32(p, 0)
	p = append(p, byte(channels))
	p = binary.LittleEndian.AppendUint32(p, uint32(rate))
	p = binary.LittleEndian.AppendUint32(p, 0)
	p = binary.LittleEndian.AppendUint32(p, 128000)
	p = binary.LittleEndian.AppendUint32(p, 0)
	// blocksizes 256 and 2048, framing bit.
	return append(p, 0xB8, 0x01)
}

// VorbisComment returns a Vorbis comment header.
func VorbisComment(vendor string, comments ...string) []byte {
	p := []byte("\x03vorbis")
	p = binary.LittleEndian.AppendUint32(p, uint32(len(vendor)))
	p = append(p, vendor...)
	p = binary.LittleEndian.AppendUint32(p, uint32(len(comments)))
	for _, c := range comments {
		p = binary.LittleEndian.AppendUint32(p, uint32(len(c)))
		p = append(p, c...)
	}
	return append(p, 0x01)
}

// VorbisSetup returns a placeholder Vorbis setup header.
func VorbisSetup() []byte {
	return append([]byte("\x05vorbis"), 0x42, 0x43, 0x56, 0x01)
}

// VorbisPacket returns an audio packet whose payload identifies it.
func VorbisPacket(page, index int) []byte {
	return []byte{0x00, byte(page), byte(index), 0x5A}
}

// FLACHead returns the Ogg FLAC mapping header with a STREAMINFO block using
// 4096-sample blocks. headerPackets announces the metadata packets that
// follow; 0 marks STREAMINFO as the last metadata block.
func FLACHead(rate, channels, bps int, totalSamples int64, headerPackets int) []byte {
	p := []byte("\x7FFLAC")
	p = append(p, 1, 0)
	p = binary.BigEndian.AppendUint16(p, uint16(headerPackets))
	p = append(p, "fLaC"...)
	blockType := byte(0)
	if headerPackets == 0 {
		blockType |= 0x80
	}
	p = append(p, blockType, 0, 0, 34)
	p = binary.BigEndian.AppendUint16(p, 4096)
	p = binary.BigEndian.AppendUint16(p, 4096)
	p = append(p, 0, 0, 0, 0, 0, 0)
	x := uint64(rate)<<44 | uint64(channels-1)<<41 | uint64(bps-1)<<36 | uint64(totalSamples)&(1<<36-1)
	p = binary.BigEndian.AppendUint64(p, x)
	return append(p, make([]byte, 16)...)
}

// FLACComment returns a metadata packet holding an empty VORBIS_COMMENT
// block.
func FLACComment(last bool) []byte {
	t := byte(4)
	if last {
		t |= 0x80
	}
	return []byte{t, 0, 0, 8, 0, 0, 0, 0, 0, 0, 0, 0}
}

// FLACFrame returns a frame header for a 4096-sample block followed by a
// marker identifying it.
func FLACFrame(page, index int) []byte {
	return []byte{0xFF, 0xF8, 0xC9, 0x18, byte(index), byte(page), byte(index), 0xF1}
}

// Opus returns a mono Opus stream with pages audio pages of perPage 20 ms
// packets, a pre-skip of 312 and an EOS flag on the last page. It also
// returns the offset of the first audio page.
func Opus(pages, perPage int) ([]byte, int64) {
	b := NewBuilder(Serial).
		Page(ogg.FlagBOS, 0, OpusHead(1, 312, 48000)).
		Page(0, 0, OpusTags("oggtest"))
	start := b.Len()
	for i := 1; i <= pages; i++ {
		b.Page(eosIf(i == pages), int64(i*perPage*960), packets(i, perPage, OpusPacket)...)
	}
	return b.Bytes(), start
}

// Vorbis returns a stereo 44.1 kHz Vorbis stream with pages audio pages of
// perPage packets; granule positions advance by 1024 per packet.
func Vorbis(pages, perPage int) ([]byte, int64) {
	b := NewBuilder(Serial).
		Page(ogg.FlagBOS, 0, VorbisID(2, 44100)).
		Page(0, 0, VorbisComment("oggtest", "TITLE=fixture"), VorbisSetup())
	start := b.Len()
	for i := 1; i <= pages; i++ {
		b.Page(eosIf(i == pages), int64(i*perPage*1024), packets(i, perPage, VorbisPacket)...)
	}
	return b.Bytes(), start
}

// FLAC returns a 16-bit stereo 44.1 kHz FLAC stream with pages audio pages
// of perPage 4096-sample frames. When withTotal is set STREAMINFO carries
// the total sample count.
func FLAC(pages, perPage int, withTotal bool) ([]byte, int64) {
	var total int64
	if withTotal {
		total = int64(pages * perPage * 4096)
	}
	b := NewBuilder(Serial).
		Page(ogg.FlagBOS, 0, FLACHead(44100, 2, 16, total, 1)).
		Page(0, 0, FLACComment(true))
	start := b.Len()
	for i := 1; i <= pages; i++ {
		b.Page(eosIf(i == pages), int64(i*perPage*4096), packets(i, perPage, FLACFrame)...)
	}
	return b.Bytes(), start
}

func packets(page, n int, mk func(page, index int) []byte) [][]byte {
	out := make([][]byte, n)
	for i := range out {
		out[i] = mk(page, i)
	}
	return out
}

func eosIf(last bool) byte {
	if last {
		return ogg.FlagEOS
	}
	return 0
}
