package ogg

import (
	"errors"
	"testing"
)

func TestFLACBlockSize(t *testing.T) {
	tests := []struct {
		name  string
		frame []byte
		want  int
	}{
		{"192", []byte{0xFF, 0xF8, 0x19, 0x18}, 192},
		{"576", []byte{0xFF, 0xF8, 0x29, 0x18}, 576},
		{"4608", []byte{0xFF, 0xF8, 0x59, 0x18}, 4608},
		{"256", []byte{0xFF, 0xF8, 0x89, 0x18}, 256},
		{"4096", []byte{0xFF, 0xF8, 0xC9, 0x18}, 4096},
		{"32768", []byte{0xFF, 0xF8, 0xF9, 0x18}, 32768},
		{"variable blocking sync", []byte{0xFF, 0xF9, 0xC9, 0x18}, 4096},
		{"8-bit size", []byte{0xFF, 0xF8, 0x69, 0x18, 0x05, 0x0F}, 16},
		{"16-bit size", []byte{0xFF, 0xF8, 0x79, 0x18, 0x05, 0x01, 0x00}, 257},
		{"8-bit size after 2-byte number", []byte{0xFF, 0xF8, 0x69, 0x18, 0xC2, 0x80, 0x3F}, 64},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FLACBlockSize(tt.frame)
			if err != nil {
				t.Fatalf("FLACBlockSize() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("FLACBlockSize() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestFLACBlockSize_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		frame []byte
	}{
		{"empty", nil},
		{"short", []byte{0xFF, 0xF8, 0xC9}},
		{"no sync", []byte{0xFE, 0xF8, 0xC9, 0x18}},
		{"reserved size", []byte{0xFF, 0xF8, 0x09, 0x18}},
		{"8-bit size without number", []byte{0xFF, 0xF8, 0x69, 0x18}},
		{"16-bit size without number", []byte{0xFF, 0xF8, 0x79, 0x18}},
		{"8-bit size missing", []byte{0xFF, 0xF8, 0x69, 0x18, 0x05}},
		{"16-bit size half missing", []byte{0xFF, 0xF8, 0x79, 0x18, 0x05, 0x01}},
		{"coded number truncated", []byte{0xFF, 0xF8, 0x69, 0x18, 0xE0, 0x80}},
		{"bad coded number", []byte{0xFF, 0xF8, 0x69, 0x18, 0x80, 0x10}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := FLACBlockSize(tt.frame); !errors.Is(err, errFLACFrame) {
				t.Errorf("FLACBlockSize() error = %v, want errFLACFrame", err)
			}
		})
	}
}
