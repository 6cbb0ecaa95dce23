package opus

import (
	"errors"
	"time"
)

// SampleRate is the rate at which Ogg Opus counts granule positions.
const SampleRate = 48000

// MaxPacketSamples is the longest packet duration RFC 6716 permits, 120 ms.
const MaxPacketSamples = 5760

var (
	// ErrEmptyPacket is returned for a zero-length packet.
	ErrEmptyPacket = errors.New("opus: empty packet")

	// ErrInvalidPacket is returned when the frame count cannot be read or the
	// packet would exceed MaxPacketSamples.
	ErrInvalidPacket = errors.New("opus: invalid packet")
)

// Frame is one raw Opus packet.
type Frame []byte

// TOC returns the TOC byte, or 0 for an empty frame.
func (f Frame) TOC() TOC {
	if len(f) == 0 {
		return 0
	}
	return TOC(f[0])
}

// Frames returns how many codec frames the packet holds.
func (f Frame) Frames() (int, error) {
	if len(f) == 0 {
		return 0, ErrEmptyPacket
	}
	switch f.TOC().FrameCode() {
	case OneFrame:
		return 1, nil
	case TwoEqualFrames, TwoDifferentFrames:
		return 2, nil
	}
	if len(f) < 2 {
		return 0, ErrInvalidPacket
	}
	// |v|p|     M     |
	n := int(f[1] & 0b00111111)
	if n == 0 {
		return 0, ErrInvalidPacket
	}
	return n, nil
}

// Samples returns the number of 48 kHz samples the packet decodes to.
func (f Frame) Samples() (int, error) {
	n, err := f.Frames()
	if err != nil {
		return 0, err
	}
	s := n * f.TOC().Configuration().FrameSamples()
	if s > MaxPacketSamples {
		return 0, ErrInvalidPacket
	}
	return s, nil
}

// Duration returns the audio duration of the packet, or 0 if it is invalid.
func (f Frame) Duration() time.Duration {
	s, err := f.Samples()
	if err != nil {
		return 0
	}
	return time.Duration(s) * time.Second / SampleRate
}
