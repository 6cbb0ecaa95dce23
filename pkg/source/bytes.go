package source

import (
	"context"
	"fmt"
	"io"

	"github.com/haivivi/oggextract/pkg/extractor"
)

// BytesSource is an extractor.Source over an in-memory byte slice.
type BytesSource struct {
	data []byte
	pos  int64
	peek int64
}

// Bytes returns a source reading from b. The slice is not copied.
func Bytes(b []byte) *BytesSource {
	return &BytesSource{data: b}
}

// span returns data[off:off+n] or the error a short request maps to.
func (s *BytesSource) span(ctx context.Context, off int64, n int) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	size := int64(len(s.data))
	if n == 0 {
		return nil, nil
	}
	if off >= size {
		return nil, io.EOF
	}
	if off+int64(n) > size {
		return nil, io.ErrUnexpectedEOF
	}
	return s.data[off : off+int64(n)], nil
}

func (s *BytesSource) Read(ctx context.Context, p []byte) error {
	b, err := s.span(ctx, s.pos, len(p))
	if err != nil {
		return err
	}
	copy(p, b)
	s.pos += int64(len(p))
	s.peek = s.pos
	return nil
}

func (s *BytesSource) Skip(ctx context.Context, n int) error {
	if _, err := s.span(ctx, s.pos, n); err != nil {
		return err
	}
	s.pos += int64(n)
	s.peek = s.pos
	return nil
}

func (s *BytesSource) Peek(ctx context.Context, p []byte) error {
	b, err := s.span(ctx, s.peek, len(p))
	if err != nil {
		return err
	}
	copy(p, b)
	s.peek += int64(len(p))
	return nil
}

func (s *BytesSource) ResetPeek() { s.peek = s.pos }

func (s *BytesSource) Position() int64 { return s.pos }

func (s *BytesSource) Length() int64 { return int64(len(s.data)) }

// SeekTo repositions the source at offset.
func (s *BytesSource) SeekTo(offset int64) error {
	if offset < 0 || offset > int64(len(s.data)) {
		return fmt.Errorf("source: seek to %d out of range [0, %d]", offset, len(s.data))
	}
	s.pos = offset
	s.peek = offset
	return nil
}

var (
	_ extractor.Source = (*BytesSource)(nil)
	_ extractor.Seeker = (*BytesSource)(nil)
)
