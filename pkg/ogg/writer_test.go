package ogg

import (
	"bytes"
	"errors"
	"testing"
)

func TestLacing(t *testing.T) {
	tests := []struct {
		n    int
		want []byte
	}{
		{0, []byte{0}},
		{1, []byte{1}},
		{254, []byte{254}},
		{255, []byte{255, 0}},
		{256, []byte{255, 1}},
		{600, []byte{255, 255, 90}},
	}
	for _, tt := range tests {
		if got := Lacing(tt.n); !bytes.Equal(got, tt.want) {
			t.Errorf("Lacing(%d) = %v, want %v", tt.n, got, tt.want)
		}
	}
}

func TestPageWriter(t *testing.T) {
	var buf bytes.Buffer
	w := NewPageWriter(&buf, 5)
	if err := w.WritePage(FlagBOS, 0, []byte("a"), bytes.Repeat([]byte{'b'}, 300)); err != nil {
		t.Fatal(err)
	}
	if err := w.WritePage(FlagEOS, 10); err != nil {
		t.Fatal(err)
	}
	if w.Sequence() != 2 {
		t.Errorf("Sequence() = %d, want 2", w.Sequence())
	}

	data := buf.Bytes()
	h, err := ParsePageHeader(data)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(h.Laces, []byte{1, 255, 45}) || h.BodySize() != 301 {
		t.Errorf("laces = %v, body %d", h.Laces, h.BodySize())
	}
	next, err := ParsePageHeader(data[h.HeaderSize()+h.BodySize():])
	if err != nil {
		t.Fatal(err)
	}
	if next.SequenceNumber != 1 || !next.EOS() || next.GranulePosition != 10 || next.SegmentCount() != 0 {
		t.Errorf("second page = %+v", next)
	}
}

func TestPageWriter_Errors(t *testing.T) {
	w := NewPageWriter(&bytes.Buffer{}, 1)
	if err := w.WriteSegments(0, 0, []byte{5}, []byte{1}); err == nil {
		t.Error("mismatched body accepted")
	}
	huge := make([][]byte, 256)
	if err := w.WritePage(0, 0, huge...); !errors.Is(err, ErrPageTooLarge) {
		t.Errorf("256 packets: error = %v, want ErrPageTooLarge", err)
	}
}
