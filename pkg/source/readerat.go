package source

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/haivivi/oggextract/pkg/extractor"
)

// DefaultWindowSize is the read-ahead window of a ReaderAt source.
const DefaultWindowSize = 64 * 1024

// ContextReaderAt is an io.ReaderAt whose reads can be canceled. ReaderAt
// prefers it over ReadAt when the backend implements both.
type ContextReaderAt interface {
	ReadAtContext(ctx context.Context, p []byte, off int64) (int, error)
}

// ReaderAt is a seekable extractor.Source over an io.ReaderAt of known size.
//
// Reads go through a single read-ahead window so that small header reads do
// not each hit the backend.
type ReaderAt struct {
	ra     io.ReaderAt
	size   int64
	closer io.Closer

	pos  int64
	peek int64

	window    int
	winOff    int64
	winData   []byte
	backendRq int
}

// ReaderAtOption configures a ReaderAt source.
type ReaderAtOption func(*ReaderAt)

// WithWindowSize sets the read-ahead window size.
func WithWindowSize(n int) ReaderAtOption {
	return func(s *ReaderAt) {
		if n > 0 {
			s.window = n
		}
	}
}

// WithCloser attaches c, closed by Close.
func WithCloser(c io.Closer) ReaderAtOption {
	return func(s *ReaderAt) { s.closer = c }
}

// NewReaderAt returns a source reading size bytes from ra.
func NewReaderAt(ra io.ReaderAt, size int64, opts ...ReaderAtOption) *ReaderAt {
	s := &ReaderAt{ra: ra, size: size, window: DefaultWindowSize}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// fill copies len(p) bytes at off into p, refilling the window if needed.
func (s *ReaderAt) fill(ctx context.Context, off int64, p []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(p) == 0 {
		return nil
	}
	if off >= s.size {
		return io.EOF
	}
	if off+int64(len(p)) > s.size {
		return io.ErrUnexpectedEOF
	}
	if off >= s.winOff && off+int64(len(p)) <= s.winOff+int64(len(s.winData)) {
		copy(p, s.winData[off-s.winOff:])
		return nil
	}

	n := max(len(p), s.window)
	if rest := s.size - off; int64(n) > rest {
		n = int(rest)
	}
	buf := make([]byte, n)
	m, err := s.readAt(ctx, buf, off)
	s.backendRq++
	if m < len(p) {
		if err == nil || errors.Is(err, io.EOF) {
			if m == 0 {
				return io.EOF
			}
			return io.ErrUnexpectedEOF
		}
		return fmt.Errorf("source: read at %d: %w", off, err)
	}
	s.winOff = off
	s.winData = buf[:m]
	copy(p, s.winData)
	return nil
}

func (s *ReaderAt) readAt(ctx context.Context, p []byte, off int64) (int, error) {
	if cra, ok := s.ra.(ContextReaderAt); ok {
		return cra.ReadAtContext(ctx, p, off)
	}
	return s.ra.ReadAt(p, off)
}

func (s *ReaderAt) Read(ctx context.Context, p []byte) error {
	if err := s.fill(ctx, s.pos, p); err != nil {
		return err
	}
	s.pos += int64(len(p))
	s.peek = s.pos
	return nil
}

func (s *ReaderAt) Skip(ctx context.Context, n int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if n == 0 {
		return nil
	}
	if s.pos >= s.size {
		return io.EOF
	}
	if s.pos+int64(n) > s.size {
		return io.ErrUnexpectedEOF
	}
	s.pos += int64(n)
	s.peek = s.pos
	return nil
}

func (s *ReaderAt) Peek(ctx context.Context, p []byte) error {
	if err := s.fill(ctx, s.peek, p); err != nil {
		return err
	}
	s.peek += int64(len(p))
	return nil
}

func (s *ReaderAt) ResetPeek() { s.peek = s.pos }

func (s *ReaderAt) Position() int64 { return s.pos }

func (s *ReaderAt) Length() int64 { return s.size }

// SeekTo repositions the source at offset.
func (s *ReaderAt) SeekTo(offset int64) error {
	if offset < 0 || offset > s.size {
		return fmt.Errorf("source: seek to %d out of range [0, %d]", offset, s.size)
	}
	s.pos = offset
	s.peek = offset
	return nil
}

// BackendReads returns how many reads were issued to the underlying
// io.ReaderAt.
func (s *ReaderAt) BackendReads() int { return s.backendRq }

// Close closes the attached closer, if any.
func (s *ReaderAt) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer.Close()
}

var (
	_ extractor.Source = (*ReaderAt)(nil)
	_ extractor.Seeker = (*ReaderAt)(nil)
)
