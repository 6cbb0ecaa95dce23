package extractor

import "context"

// Source supplies buffered, peekable stream data.
//
// Read, Peek and Skip either satisfy the whole request or fail:
//   - ErrNeedMoreData: nothing was consumed; retry later.
//   - io.EOF: the stream ended before the first requested byte.
//   - io.ErrUnexpectedEOF: the stream ended inside the request.
//
// Peek advances a peek cursor that starts at Position; only Read and Skip
// advance Position, and both reset the peek cursor to the new Position.
type Source interface {
	// Read fills p and advances the position.
	Read(ctx context.Context, p []byte) error

	// Skip discards n bytes and advances the position.
	Skip(ctx context.Context, n int) error

	// Peek fills p from the peek cursor and advances the cursor.
	Peek(ctx context.Context, p []byte) error

	// ResetPeek moves the peek cursor back to Position.
	ResetPeek()

	// Position returns the absolute byte offset of the next Read.
	Position() int64

	// Length returns the total stream length, or -1 if it is unknown.
	Length() int64
}

// Seeker is implemented by sources the host can reposition, which is what a
// ResultSeekRequired asks for.
type Seeker interface {
	SeekTo(offset int64) error
}
