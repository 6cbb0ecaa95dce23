package cli

import "testing"

func TestFormatDurationUs(t *testing.T) {
	tests := []struct {
		us   int64
		want string
	}{
		{-1, "unknown"},
		{0, "0ms"},
		{113500, "113ms"},
		{1_500_000, "1.5s"},
		{59_900_000, "59.9s"},
		{61_500_000, "1m1.5s"},
		{3_725_000_000, "62m5.0s"},
	}
	for _, tt := range tests {
		if got := FormatDurationUs(tt.us); got != tt.want {
			t.Errorf("FormatDurationUs(%d) = %q, want %q", tt.us, got, tt.want)
		}
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{-1, "unknown"},
		{0, "0 B"},
		{1023, "1023 B"},
		{1024, "1.0 KiB"},
		{1536, "1.5 KiB"},
		{1 << 20, "1.0 MiB"},
		{24 << 20, "24 MiB"},
	}
	for _, tt := range tests {
		if got := FormatBytes(tt.n); got != tt.want {
			t.Errorf("FormatBytes(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}
