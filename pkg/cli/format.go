package cli

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
)

// FormatDurationUs renders a microsecond duration for table output. Negative
// values mean the duration is unknown.
func FormatDurationUs(us int64) string {
	if us < 0 {
		return "unknown"
	}
	d := time.Duration(us) * time.Microsecond
	switch {
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	case d < time.Minute:
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	m := d / time.Minute
	return fmt.Sprintf("%dm%.1fs", int64(m), (d - m*time.Minute).Seconds())
}

// FormatBytes renders a byte count with IEC units.
func FormatBytes(n int64) string {
	if n < 0 {
		return "unknown"
	}
	return humanize.IBytes(uint64(n))
}
