package source

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/haivivi/oggextract/pkg/buffer"
	"github.com/haivivi/oggextract/pkg/extractor"
)

// Stream is a push-fed extractor.Source of unknown length.
//
// A producer goroutine calls Write as data arrives and CloseWrite at the end.
// The extractor side never blocks: a request that runs past the written data
// fails with extractor.ErrNeedMoreData, and the host calls Wait before
// retrying. Bytes before Position are released as they are consumed.
type Stream struct {
	buf  *buffer.Buffer[byte]
	peek int64
	want int64
}

// NewStream returns an empty stream source.
func NewStream() *Stream {
	return &Stream{buf: buffer.N[byte](16 * 1024)}
}

// Write appends p to the stream.
func (s *Stream) Write(p []byte) (int, error) {
	return s.buf.Write(p)
}

// CloseWrite marks the end of the stream.
func (s *Stream) CloseWrite() error {
	return s.buf.CloseWrite()
}

// CloseWithError aborts the stream; pending and later calls fail with err.
func (s *Stream) CloseWithError(err error) error {
	return s.buf.CloseWithError(err)
}

// Wait blocks until the data the last failed request needed has arrived, the
// stream is closed, or ctx is done.
func (s *Stream) Wait(ctx context.Context) error {
	return s.buf.Wait(ctx, s.want)
}

func (s *Stream) fill(ctx context.Context, off int64, p []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(p) == 0 {
		return nil
	}
	n, err := s.buf.ReadAt(p, off)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, buffer.ErrPending):
		s.want = off + int64(len(p))
		return extractor.ErrNeedMoreData
	case err == io.EOF:
		if n == 0 {
			return io.EOF
		}
		return io.ErrUnexpectedEOF
	default:
		return fmt.Errorf("source: stream: %w", err)
	}
}

func (s *Stream) Read(ctx context.Context, p []byte) error {
	if err := s.fill(ctx, s.buf.Offset(), p); err != nil {
		return err
	}
	return s.commit(len(p))
}

func (s *Stream) Skip(ctx context.Context, n int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if n == 0 {
		return nil
	}
	pos, end, closed, err := s.buf.Stat()
	if err != nil {
		return fmt.Errorf("source: stream: %w", err)
	}
	if pos+int64(n) > end {
		switch {
		case !closed:
			s.want = pos + int64(n)
			return extractor.ErrNeedMoreData
		case pos == end:
			return io.EOF
		default:
			return io.ErrUnexpectedEOF
		}
	}
	return s.commit(n)
}

func (s *Stream) commit(n int) error {
	if err := s.buf.Discard(n); err != nil {
		return fmt.Errorf("source: stream: %w", err)
	}
	s.peek = s.buf.Offset()
	return nil
}

func (s *Stream) Peek(ctx context.Context, p []byte) error {
	if s.peek < s.buf.Offset() {
		s.peek = s.buf.Offset()
	}
	if err := s.fill(ctx, s.peek, p); err != nil {
		return err
	}
	s.peek += int64(len(p))
	return nil
}

func (s *Stream) ResetPeek() { s.peek = s.buf.Offset() }

func (s *Stream) Position() int64 { return s.buf.Offset() }

func (s *Stream) Length() int64 { return -1 }

var _ extractor.Source = (*Stream)(nil)
