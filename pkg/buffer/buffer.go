package buffer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
)

var (
	// ErrPending is returned by ReadAt when the requested range has not been
	// written yet and the write side is still open.
	ErrPending = errors.New("buffer: data pending")

	// ErrDiscarded is returned by ReadAt when the requested offset lies before
	// the retained window.
	ErrDiscarded = errors.New("buffer: offset already discarded")
)

// Buffer is a thread-safe growable window over a stream of elements.
//
// Elements are addressed by their absolute offset since the start of the
// stream. Offset reports the first retained element and End the offset just
// past the last written one. Writers may run on other goroutines while a
// single consumer reads.
type Buffer[T any] struct {
	writeNotify chan struct{}

	mu         sync.Mutex
	closeWrite bool
	closeErr   error
	base       int64
	buf        []T
}

// N creates a new Buffer with the specified initial capacity.
//
// The capacity is a hint; the buffer grows beyond it as needed.
func N[T any](n int) *Buffer[T] {
	return &Buffer[T]{
		writeNotify: make(chan struct{}, 1),
		buf:         make([]T, 0, n),
	}
}

// Write appends p to the end of the buffer and wakes a waiting consumer.
//
// Returns io.ErrClosedPipe (wrapped) once the write side is closed.
func (b *Buffer[T]) Write(p []T) (n int, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closeErr != nil {
		return 0, fmt.Errorf("buffer: write to closed buffer: %w", b.closeErr)
	}
	if b.closeWrite {
		return 0, fmt.Errorf("buffer: write to closed buffer: %w", io.ErrClosedPipe)
	}
	b.buf = append(b.buf, p...)
	select {
	case b.writeNotify <- struct{}{}:
	default:
	}
	return len(p), nil
}

// ReadAt copies retained elements starting at the absolute offset off into p.
//
// When fewer than len(p) elements are available it returns the number copied
// and ErrPending if more may still arrive, or io.EOF if the write side is
// closed. ReadAt does not remove anything from the buffer.
func (b *Buffer[T]) ReadAt(p []T, off int64) (n int, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closeErr != nil {
		return 0, fmt.Errorf("buffer: read from closed buffer: %w", b.closeErr)
	}
	if off < b.base {
		return 0, ErrDiscarded
	}
	rel := off - b.base
	if rel < int64(len(b.buf)) {
		n = copy(p, b.buf[rel:])
	}
	if n == len(p) {
		return n, nil
	}
	if b.closeWrite {
		return n, io.EOF
	}
	return n, ErrPending
}

// Discard releases the first n retained elements and advances Offset.
//
// Discarding more than is retained empties the buffer; the offset still
// advances by n so addressing stays consistent with the stream.
func (b *Buffer[T]) Discard(n int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closeErr != nil {
		return fmt.Errorf("buffer: discard from closed buffer: %w", b.closeErr)
	}
	if n > len(b.buf) {
		b.buf = b.buf[:0]
	} else {
		b.buf = b.buf[n:]
	}
	b.base += int64(n)
	return nil
}

// Wait blocks until the buffer holds data up to the absolute offset end, the
// write side is closed, or ctx is done.
func (b *Buffer[T]) Wait(ctx context.Context, end int64) error {
	for {
		b.mu.Lock()
		if b.closeErr != nil {
			err := b.closeErr
			b.mu.Unlock()
			return fmt.Errorf("buffer: wait on closed buffer: %w", err)
		}
		if b.closeWrite || b.base+int64(len(b.buf)) >= end {
			b.mu.Unlock()
			return nil
		}
		b.mu.Unlock()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-b.writeNotify:
		}
	}
}

// Offset returns the absolute offset of the first retained element.
func (b *Buffer[T]) Offset() int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.base
}

// End returns the absolute offset just past the last written element.
func (b *Buffer[T]) End() int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.base + int64(len(b.buf))
}

// Stat returns a consistent snapshot of the retained window, whether the
// write side is closed, and the close error, if any.
func (b *Buffer[T]) Stat() (offset, end int64, writeClosed bool, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.base, b.base + int64(len(b.buf)), b.closeWrite, b.closeErr
}

// Len returns the number of retained elements.
func (b *Buffer[T]) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.buf)
}

func (b *Buffer[T]) closeWithErrorLocked(err error) error {
	if b.closeErr != nil {
		return nil
	}
	b.closeErr = err
	b.buf = nil
	if !b.closeWrite {
		b.closeWrite = true
		close(b.writeNotify)
	}
	return nil
}

// CloseWithError closes both ends of the buffer. Subsequent operations fail
// with err (io.ErrClosedPipe when err is nil) and waiters are released.
func (b *Buffer[T]) CloseWithError(err error) error {
	if err == nil {
		err = io.ErrClosedPipe
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.closeWithErrorLocked(err)
}

// Close is CloseWithError(io.ErrClosedPipe).
func (b *Buffer[T]) Close() error {
	return b.CloseWithError(io.ErrClosedPipe)
}

// CloseWrite closes the write side. Retained data stays readable; reads past
// the end report io.EOF instead of ErrPending.
func (b *Buffer[T]) CloseWrite() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closeWrite {
		return nil
	}
	b.closeWrite = true
	close(b.writeNotify)
	return nil
}

// Error returns the error the buffer was closed with, if any.
func (b *Buffer[T]) Error() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.closeErr
}
