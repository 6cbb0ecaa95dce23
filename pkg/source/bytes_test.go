package source

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/haivivi/oggextract/pkg/extractor"
)

// sourceContract exercises the Read/Peek/Skip semantics every seekable
// source shares. src must hold the bytes 0..9.
func sourceContract(t *testing.T, src interface {
	extractor.Source
	extractor.Seeker
}) {
	t.Helper()
	ctx := context.Background()

	if got := src.Length(); got != 10 {
		t.Fatalf("Length() = %d, want 10", got)
	}

	p := make([]byte, 3)
	if err := src.Peek(ctx, p); err != nil || p[0] != 0 || p[2] != 2 {
		t.Fatalf("Peek = %v, %v", p, err)
	}
	if err := src.Peek(ctx, p); err != nil || p[0] != 3 {
		t.Fatalf("second Peek = %v, %v", p, err)
	}
	if src.Position() != 0 {
		t.Errorf("Position() = %d after Peek", src.Position())
	}
	src.ResetPeek()
	if err := src.Peek(ctx, p[:1]); err != nil || p[0] != 0 {
		t.Errorf("Peek after ResetPeek = %v, %v", p[0], err)
	}

	if err := src.Skip(ctx, 4); err != nil {
		t.Fatal(err)
	}
	if err := src.Read(ctx, p); err != nil || p[0] != 4 || p[2] != 6 {
		t.Fatalf("Read = %v, %v", p, err)
	}
	if src.Position() != 7 {
		t.Errorf("Position() = %d, want 7", src.Position())
	}
	if err := src.Peek(ctx, p[:1]); err != nil || p[0] != 7 {
		t.Errorf("Peek after Read = %v, %v", p[0], err)
	}

	if err := src.Read(ctx, make([]byte, 5)); !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("Read past end error = %v, want ErrUnexpectedEOF", err)
	}
	if src.Position() != 7 {
		t.Errorf("failed Read moved position to %d", src.Position())
	}
	if err := src.Skip(ctx, 3); err != nil {
		t.Fatal(err)
	}
	if err := src.Read(ctx, p); err != io.EOF {
		t.Errorf("Read at end error = %v, want io.EOF", err)
	}
	if err := src.Skip(ctx, 1); err != io.EOF {
		t.Errorf("Skip at end error = %v, want io.EOF", err)
	}

	if err := src.SeekTo(2); err != nil {
		t.Fatal(err)
	}
	if err := src.Read(ctx, p[:1]); err != nil || p[0] != 2 {
		t.Errorf("Read after SeekTo = %v, %v", p[0], err)
	}
	if err := src.SeekTo(11); err == nil {
		t.Error("SeekTo past end succeeded")
	}

	canceled, cancel := context.WithCancel(ctx)
	cancel()
	if err := src.Read(canceled, p); !errors.Is(err, context.Canceled) {
		t.Errorf("Read with canceled context error = %v", err)
	}
}

func digits() []byte {
	b := make([]byte, 10)
	for i := range b {
		b[i] = byte(i)
	}
	return b
}

func TestBytes(t *testing.T) {
	sourceContract(t, Bytes(digits()))
}

func TestBytes_Empty(t *testing.T) {
	src := Bytes(nil)
	ctx := context.Background()
	if err := src.Peek(ctx, make([]byte, 1)); err != io.EOF {
		t.Errorf("Peek error = %v, want io.EOF", err)
	}
	if err := src.Read(ctx, nil); err != nil {
		t.Errorf("zero-length Read error = %v", err)
	}
}
