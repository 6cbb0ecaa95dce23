package buffer

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"
)

func TestBuffer_WriteReadAt(t *testing.T) {
	buf := N[byte](10)

	n, err := buf.Write([]byte{1, 2, 3, 4, 5})
	if err != nil {
		t.Fatalf("Write error: %v", err)
	}
	if n != 5 {
		t.Fatalf("Write returned %d, want 5", n)
	}
	if buf.Len() != 5 {
		t.Fatalf("Len() = %d, want 5", buf.Len())
	}

	got := make([]byte, 3)
	n, err = buf.ReadAt(got, 1)
	if err != nil {
		t.Fatalf("ReadAt error: %v", err)
	}
	if n != 3 || !bytes.Equal(got, []byte{2, 3, 4}) {
		t.Fatalf("ReadAt got %v (n=%d), want [2 3 4]", got, n)
	}

	// ReadAt does not consume.
	if buf.Len() != 5 {
		t.Fatalf("Len() after ReadAt = %d, want 5", buf.Len())
	}
}

func TestBuffer_ReadAtPending(t *testing.T) {
	buf := N[byte](4)
	buf.Write([]byte{1, 2})

	got := make([]byte, 4)
	n, err := buf.ReadAt(got, 0)
	if !errors.Is(err, ErrPending) {
		t.Fatalf("expected ErrPending, got %v", err)
	}
	if n != 2 {
		t.Fatalf("ReadAt returned %d, want 2", n)
	}

	buf.CloseWrite()
	n, err = buf.ReadAt(got, 0)
	if err != io.EOF {
		t.Fatalf("expected io.EOF after CloseWrite, got %v", err)
	}
	if n != 2 {
		t.Fatalf("ReadAt returned %d, want 2", n)
	}
}

func TestBuffer_Discard(t *testing.T) {
	buf := N[byte](10)
	buf.Write([]byte{1, 2, 3, 4, 5})

	if err := buf.Discard(2); err != nil {
		t.Fatalf("Discard error: %v", err)
	}
	if buf.Offset() != 2 {
		t.Fatalf("Offset() = %d, want 2", buf.Offset())
	}
	if buf.End() != 5 {
		t.Fatalf("End() = %d, want 5", buf.End())
	}

	if _, err := buf.ReadAt(make([]byte, 1), 1); !errors.Is(err, ErrDiscarded) {
		t.Fatalf("expected ErrDiscarded, got %v", err)
	}

	got := make([]byte, 3)
	if _, err := buf.ReadAt(got, 2); err != nil {
		t.Fatalf("ReadAt error: %v", err)
	}
	if !bytes.Equal(got, []byte{3, 4, 5}) {
		t.Fatalf("ReadAt got %v, want [3 4 5]", got)
	}

	// Over-discard empties the buffer but keeps offsets consistent.
	if err := buf.Discard(10); err != nil {
		t.Fatalf("Discard error: %v", err)
	}
	if buf.Len() != 0 || buf.Offset() != 12 {
		t.Fatalf("Len()=%d Offset()=%d, want 0 and 12", buf.Len(), buf.Offset())
	}
}

func TestBuffer_Wait(t *testing.T) {
	buf := N[byte](8)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 4; i++ {
			time.Sleep(5 * time.Millisecond)
			buf.Write([]byte{byte(i)})
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := buf.Wait(ctx, 4); err != nil {
		t.Fatalf("Wait error: %v", err)
	}
	if buf.End() < 4 {
		t.Fatalf("End() = %d after Wait, want >= 4", buf.End())
	}
	wg.Wait()
}

func TestBuffer_WaitCanceled(t *testing.T) {
	buf := N[byte](8)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := buf.Wait(ctx, 1); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestBuffer_WaitReleasedByCloseWrite(t *testing.T) {
	buf := N[byte](8)
	go func() {
		time.Sleep(5 * time.Millisecond)
		buf.CloseWrite()
	}()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := buf.Wait(ctx, 100); err != nil {
		t.Fatalf("Wait error: %v", err)
	}
}

func TestBuffer_CloseWithError(t *testing.T) {
	buf := N[byte](10)
	buf.Write([]byte{1, 2, 3})

	customErr := errors.New("custom error")
	if err := buf.CloseWithError(customErr); err != nil {
		t.Fatalf("CloseWithError returned error: %v", err)
	}
	if !errors.Is(buf.Error(), customErr) {
		t.Fatalf("Error() = %v, want %v", buf.Error(), customErr)
	}
	if _, err := buf.Write([]byte{4}); !errors.Is(err, customErr) {
		t.Fatalf("expected custom error on write, got %v", err)
	}
	if _, err := buf.ReadAt(make([]byte, 1), 0); !errors.Is(err, customErr) {
		t.Fatalf("expected custom error on read, got %v", err)
	}
	if err := buf.Wait(context.Background(), 10); !errors.Is(err, customErr) {
		t.Fatalf("expected custom error on wait, got %v", err)
	}
}

func TestBuffer_WriteAfterCloseWrite(t *testing.T) {
	buf := N[byte](10)
	buf.CloseWrite()
	if _, err := buf.Write([]byte{1}); !errors.Is(err, io.ErrClosedPipe) {
		t.Fatalf("expected io.ErrClosedPipe, got %v", err)
	}
}

func TestBuffer_DoubleClose(t *testing.T) {
	buf := N[byte](10)
	if err := buf.CloseWrite(); err != nil {
		t.Fatalf("first CloseWrite error: %v", err)
	}
	if err := buf.CloseWrite(); err != nil {
		t.Fatalf("second CloseWrite error: %v", err)
	}
	if err := buf.Close(); err != nil {
		t.Fatalf("Close after CloseWrite error: %v", err)
	}
	if err := buf.Close(); err != nil {
		t.Fatalf("second Close error: %v", err)
	}
}

func TestBuffer_Stat(t *testing.T) {
	buf := N[byte](4)
	buf.Write([]byte{1, 2, 3})
	buf.Discard(1)
	off, end, closed, err := buf.Stat()
	if off != 1 || end != 3 || closed || err != nil {
		t.Fatalf("Stat() = %d, %d, %v, %v; want 1, 3, false, nil", off, end, closed, err)
	}
	buf.CloseWrite()
	if _, _, closed, _ = buf.Stat(); !closed {
		t.Fatal("Stat() reports write side open after CloseWrite")
	}
}
