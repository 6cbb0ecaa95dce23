package ogg

import (
	"bytes"
	"fmt"
)

// Codec is an elementary codec carried in Ogg.
type Codec int

const (
	CodecUnknown Codec = iota
	CodecFLAC
	CodecVorbis
	CodecOpus
)

func (c Codec) String() string {
	switch c {
	case CodecFLAC:
		return "flac"
	case CodecVorbis:
		return "vorbis"
	case CodecOpus:
		return "opus"
	case CodecUnknown:
		return "unknown"
	}
	return fmt.Sprintf("codec(%d)", int(c))
}

// Verdict is the outcome of a single codec verifier.
type Verdict int

const (
	// NoMatch means the body carries a different signature.
	NoMatch Verdict = iota
	// Match means the body starts with the codec's identification signature.
	Match
	// Malformed means the body is too short to hold the signature. Identify
	// treats it as NoMatch.
	Malformed
)

func (v Verdict) String() string {
	switch v {
	case NoMatch:
		return "no-match"
	case Match:
		return "match"
	case Malformed:
		return "malformed"
	}
	return fmt.Sprintf("verdict(%d)", int(v))
}

var (
	flacSignature   = []byte("\x7FFLAC")
	vorbisSignature = []byte("\x01vorbis")
	opusSignature   = []byte("OpusHead")
)

// cascade lists the codecs in evaluation order. The first match wins.
var cascade = [...]Codec{CodecFLAC, CodecVorbis, CodecOpus}

// Verify runs the verifier of one codec over the first packet bytes of a
// stream. body is never modified.
func Verify(c Codec, body []byte) Verdict {
	var sig []byte
	switch c {
	case CodecFLAC:
		sig = flacSignature
	case CodecVorbis:
		sig = vorbisSignature
	case CodecOpus:
		sig = opusSignature
	default:
		return NoMatch
	}
	if len(body) < len(sig) {
		return Malformed
	}
	if bytes.Equal(body[:len(sig)], sig) {
		return Match
	}
	return NoMatch
}

// Identify selects the codec of a stream from the body of its first page,
// trying FLAC, then Vorbis, then Opus.
func Identify(body []byte) (Codec, bool) {
	for _, c := range cascade {
		if Verify(c, body) == Match {
			return c, true
		}
	}
	return CodecUnknown, false
}
