package source

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/haivivi/oggextract/pkg/extractor"
)

func TestStream(t *testing.T) {
	ctx := context.Background()
	s := NewStream()
	if s.Length() != -1 {
		t.Errorf("Length() = %d, want -1", s.Length())
	}

	p := make([]byte, 4)
	if err := s.Peek(ctx, p); !errors.Is(err, extractor.ErrNeedMoreData) {
		t.Fatalf("Peek on empty stream error = %v", err)
	}
	s.Write([]byte{1, 2, 3})
	if err := s.Read(ctx, p); !errors.Is(err, extractor.ErrNeedMoreData) {
		t.Fatalf("short Read error = %v", err)
	}
	if s.Position() != 0 {
		t.Errorf("failed Read moved position to %d", s.Position())
	}
	if err := s.Skip(ctx, 4); !errors.Is(err, extractor.ErrNeedMoreData) {
		t.Fatalf("short Skip error = %v", err)
	}

	s.Write([]byte{4, 5, 6})
	if err := s.Peek(ctx, p); err != nil || p[3] != 4 {
		t.Fatalf("Peek = %v, %v", p, err)
	}
	if err := s.Skip(ctx, 2); err != nil {
		t.Fatal(err)
	}
	if err := s.Read(ctx, p[:2]); err != nil || p[0] != 3 || p[1] != 4 {
		t.Fatalf("Read = %v, %v", p[:2], err)
	}
	if s.Position() != 4 {
		t.Errorf("Position() = %d, want 4", s.Position())
	}

	s.CloseWrite()
	if err := s.Read(ctx, p); !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("Read across end error = %v, want ErrUnexpectedEOF", err)
	}
	if err := s.Skip(ctx, 3); !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("Skip across end error = %v, want ErrUnexpectedEOF", err)
	}
	if err := s.Skip(ctx, 2); err != nil {
		t.Fatal(err)
	}
	if err := s.Peek(ctx, p[:1]); err != io.EOF {
		t.Errorf("Peek at end error = %v, want io.EOF", err)
	}
	if err := s.Skip(ctx, 1); err != io.EOF {
		t.Errorf("Skip at end error = %v, want io.EOF", err)
	}
}

func TestStream_Wait(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s := NewStream()

	p := make([]byte, 8)
	if err := s.Read(ctx, p); !errors.Is(err, extractor.ErrNeedMoreData) {
		t.Fatalf("Read error = %v", err)
	}
	go func() {
		s.Write([]byte{1, 2, 3, 4})
		s.Write([]byte{5, 6, 7, 8})
	}()
	for {
		if err := s.Wait(ctx); err != nil {
			t.Fatalf("Wait: %v", err)
		}
		err := s.Read(ctx, p)
		if err == nil {
			break
		}
		if !errors.Is(err, extractor.ErrNeedMoreData) {
			t.Fatalf("Read error = %v", err)
		}
	}
	if p[7] != 8 {
		t.Errorf("Read = %v", p)
	}
}

func TestStream_CloseWithError(t *testing.T) {
	s := NewStream()
	boom := errors.New("upstream reset")
	s.Write([]byte{1})
	s.CloseWithError(boom)
	if err := s.Peek(context.Background(), make([]byte, 4)); !errors.Is(err, boom) {
		t.Errorf("Peek error = %v, want upstream error", err)
	}
	if _, err := s.Write([]byte{2}); err == nil {
		t.Error("Write after close succeeded")
	}
}
