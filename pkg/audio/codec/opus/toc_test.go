package opus

import (
	"errors"
	"testing"
	"time"
)

func TestTOCConfiguration(t *testing.T) {
	tests := []struct {
		toc     TOC
		config  Configuration
		mode    ConfigurationMode
		bw      Bandwidth
		samples int
	}{
		{TOC(0 << 3), 0, Silk, NB, 480},
		{TOC(1 << 3), 1, Silk, NB, 960},
		{TOC(7 << 3), 7, Silk, MB, 2880},
		{TOC(9 << 3), 9, Silk, WB, 960},
		{TOC(13 << 3), 13, Hybrid, SWB, 960},
		{TOC(14 << 3), 14, Hybrid, FB, 480},
		{TOC(16 << 3), 16, CELT, NB, 120},
		{TOC(31 << 3), 31, CELT, FB, 960},
	}

	for _, tt := range tests {
		t.Run(tt.toc.String(), func(t *testing.T) {
			c := tt.toc.Configuration()
			if c != tt.config {
				t.Errorf("Configuration() = %v, want %v", c, tt.config)
			}
			if got := c.Mode(); got != tt.mode {
				t.Errorf("Mode() = %v, want %v", got, tt.mode)
			}
			if got := c.Bandwidth(); got != tt.bw {
				t.Errorf("Bandwidth() = %v, want %v", got, tt.bw)
			}
			if got := c.FrameSamples(); got != tt.samples {
				t.Errorf("FrameSamples() = %d, want %d", got, tt.samples)
			}
		})
	}
}

func TestTOCFlags(t *testing.T) {
	if TOC(0).IsStereo() {
		t.Error("mono TOC reported stereo")
	}
	if !TOC(0b100).IsStereo() {
		t.Error("stereo TOC reported mono")
	}
	for code := range 4 {
		if got := TOC(code).FrameCode(); got != FrameCode(code) {
			t.Errorf("FrameCode(%d) = %v", code, got)
		}
	}
}

func TestConfigurationFrameDuration(t *testing.T) {
	tests := []struct {
		config Configuration
		want   time.Duration
	}{
		{16, 2500 * time.Microsecond},
		{17, 5 * time.Millisecond},
		{0, 10 * time.Millisecond},
		{31, 20 * time.Millisecond},
		{2, 40 * time.Millisecond},
		{11, 60 * time.Millisecond},
	}
	for _, tt := range tests {
		if got := tt.config.FrameDuration(); got != tt.want {
			t.Errorf("Configuration(%d).FrameDuration() = %v, want %v", tt.config, got, tt.want)
		}
	}
}

func TestBandwidthSampleRate(t *testing.T) {
	want := map[Bandwidth]int{NB: 8000, MB: 12000, WB: 16000, SWB: 24000, FB: 48000, 0: 0}
	for bw, rate := range want {
		if got := bw.SampleRate(); got != rate {
			t.Errorf("%v.SampleRate() = %d, want %d", bw, got, rate)
		}
	}
}

func TestFrameSamples(t *testing.T) {
	tests := []struct {
		name    string
		frame   Frame
		want    int
		wantErr error
	}{
		{"empty", Frame{}, 0, ErrEmptyPacket},
		{"one 20ms", Frame{31 << 3, 0xAA}, 960, nil},
		{"two equal 10ms", Frame{30<<3 | 1}, 960, nil},
		{"two different 2.5ms", Frame{16<<3 | 2}, 240, nil},
		{"arbitrary 3x20ms", Frame{31<<3 | 3, 3}, 2880, nil},
		{"arbitrary vbr padded", Frame{31<<3 | 3, 0b11000010}, 1920, nil},
		{"arbitrary missing count", Frame{31<<3 | 3}, 0, ErrInvalidPacket},
		{"arbitrary zero frames", Frame{31<<3 | 3, 0}, 0, ErrInvalidPacket},
		{"over 120ms", Frame{3<<3 | 3, 3}, 0, ErrInvalidPacket},
		{"exactly 120ms", Frame{3<<3 | 3, 2}, 5760, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.frame.Samples()
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Samples() error = %v, want %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("Samples() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestFrameDuration(t *testing.T) {
	if got := (Frame{31 << 3}).Duration(); got != 20*time.Millisecond {
		t.Errorf("Duration() = %v, want 20ms", got)
	}
	if got := (Frame{}).Duration(); got != 0 {
		t.Errorf("empty Duration() = %v, want 0", got)
	}
}
