// Package opus inspects Opus packets without decoding them.
//
// It parses the TOC byte and the frame count that RFC 6716 §3 places at the
// front of every packet, which is enough to know how much audio a packet
// carries. Ogg Opus granule positions always count 48 kHz samples, so sample
// counts here are at 48 kHz regardless of the coded bandwidth.
package opus

import (
	"fmt"
	"time"
)

// TOC is the table-of-contents byte that starts every Opus packet:
//
//	 0 1 2 3 4 5 6 7
//	+-+-+-+-+-+-+-+-+
//	| config  |s| c |
//	+-+-+-+-+-+-+-+-+
//
// https://datatracker.ietf.org/doc/html/rfc6716#section-3.1
type TOC byte

// Configuration is the 5-bit configuration number of a TOC byte. It selects
// mode, bandwidth and frame duration.
type Configuration byte

// ConfigurationMode is the coding layer combination of a configuration.
type ConfigurationMode byte

// Bandwidth is the coded audio bandwidth.
type Bandwidth byte

// FrameCode is the frame count code (c) of a TOC byte.
type FrameCode byte

// Configuration returns the configuration number.
func (t TOC) Configuration() Configuration { return Configuration(t >> 3) }

// IsStereo reports whether the stereo flag is set.
func (t TOC) IsStereo() bool { return t&0b100 != 0 }

// FrameCode returns the frame count code.
func (t TOC) FrameCode() FrameCode { return FrameCode(t & 0b11) }

func (t TOC) String() string {
	c := t.Configuration()
	return fmt.Sprintf("opus_toc: config=%d mode=%s bw=%s frame=%s code=%s stereo=%v",
		byte(c), c.Mode(), c.Bandwidth(), c.FrameDuration(), t.FrameCode(), t.IsStereo())
}

const (
	OneFrame FrameCode = iota
	TwoEqualFrames
	TwoDifferentFrames
	ArbitraryFrames
)

func (c FrameCode) String() string {
	switch c {
	case OneFrame:
		return "one"
	case TwoEqualFrames:
		return "two-equal"
	case TwoDifferentFrames:
		return "two-different"
	case ArbitraryFrames:
		return "arbitrary"
	}
	return fmt.Sprintf("frame_code(%d)", byte(c))
}

const (
	Silk ConfigurationMode = iota + 1
	Hybrid
	CELT
)

func (m ConfigurationMode) String() string {
	switch m {
	case Silk:
		return "silk"
	case Hybrid:
		return "hybrid"
	case CELT:
		return "celt"
	}
	return fmt.Sprintf("mode(%d)", byte(m))
}

// Mode returns the coding mode of c.
func (c Configuration) Mode() ConfigurationMode {
	switch {
	case c <= 11:
		return Silk
	case c <= 15:
		return Hybrid
	case c <= 31:
		return CELT
	}
	return 0
}

const (
	NB  Bandwidth = iota + 1 // narrowband, 8 kHz
	MB                       // medium-band, 12 kHz
	WB                       // wideband, 16 kHz
	SWB                      // super-wideband, 24 kHz
	FB                       // fullband, 48 kHz
)

func (b Bandwidth) String() string {
	switch b {
	case NB:
		return "NB"
	case MB:
		return "MB"
	case WB:
		return "WB"
	case SWB:
		return "SWB"
	case FB:
		return "FB"
	}
	return fmt.Sprintf("bandwidth(%d)", byte(b))
}

// SampleRate returns the effective sample rate of b in Hz.
func (b Bandwidth) SampleRate() int {
	switch b {
	case NB:
		return 8000
	case MB:
		return 12000
	case WB:
		return 16000
	case SWB:
		return 24000
	case FB:
		return 48000
	}
	return 0
}

// Bandwidth returns the coded bandwidth of c.
func (c Configuration) Bandwidth() Bandwidth {
	switch {
	case c <= 3:
		return NB
	case c <= 7:
		return MB
	case c <= 11:
		return WB
	case c <= 13:
		return SWB
	case c <= 15:
		return FB
	case c <= 19:
		return NB
	case c <= 23:
		return WB
	case c <= 27:
		return SWB
	case c <= 31:
		return FB
	}
	return 0
}

// frameSamples holds the per-frame sample count at 48 kHz of every
// configuration.
var frameSamples = [32]int{
	// SILK NB, MB, WB
	480, 960, 1920, 2880,
	480, 960, 1920, 2880,
	480, 960, 1920, 2880,
	// Hybrid SWB, FB
	480, 960,
	480, 960,
	// CELT NB, WB, SWB, FB
	120, 240, 480, 960,
	120, 240, 480, 960,
	120, 240, 480, 960,
	120, 240, 480, 960,
}

// FrameSamples returns the number of 48 kHz samples in one frame of c.
func (c Configuration) FrameSamples() int {
	if c > 31 {
		return 0
	}
	return frameSamples[c]
}

// FrameDuration returns the duration of one frame of c.
func (c Configuration) FrameDuration() time.Duration {
	return time.Duration(c.FrameSamples()) * time.Second / SampleRate
}
