package ogg

import "log/slog"

// probeWindow is how far before the end of the stream the duration probe
// starts scanning for the last granule position.
const probeWindow = 64 * 1024

type options struct {
	log           *slog.Logger
	verify        bool
	durationProbe bool
}

// Option configures an Extractor.
type Option func(*options)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.log = l
		}
	}
}

// WithChecksumVerification enables page CRC checks after detection. A page
// that fails is reported as a *ParseError wrapping ErrBadChecksum.
func WithChecksumVerification(on bool) Option {
	return func(o *options) { o.verify = on }
}

// WithDurationProbe controls whether Opus and Vorbis streams of known length
// are scanned for their last granule position to report a duration. The
// probe asks the host to seek twice. Enabled by default.
func WithDurationProbe(on bool) Option {
	return func(o *options) { o.durationProbe = on }
}

func newOptions(opts []Option) options {
	o := options{log: slog.Default(), durationProbe: true}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
