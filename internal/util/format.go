package util

import (
	"fmt"
	"math"
	"strings"

	"github.com/dustin/go-humanize"
)

// FormatBytes renders a byte count with binary units, e.g. "1.5 GiB".
func FormatBytes(b uint64) string {
	return humanize.IBytes(b)
}

// FormatRate renders a bytes-per-second rate, e.g. "12 KiB/s".
func FormatRate(bps float64) string {
	if bps <= 0 || math.IsNaN(bps) {
		return "0 B/s"
	}
	return humanize.IBytes(uint64(math.Round(bps))) + "/s"
}

// FormatPercent renders a percentage with one decimal.
func FormatPercent(p float64) string {
	return fmt.Sprintf("%.1f%%", p)
}

// FormatCelsius renders a temperature reading.
func FormatCelsius(c float64) string {
	return fmt.Sprintf("%.1f°C", c)
}

// FormatCount renders a count with thousands separators.
func FormatCount(n uint64) string {
	return humanize.Comma(int64(n))
}

// Compact drops the space humanize puts between value and unit, for
// narrow table cells.
func Compact(s string) string {
	return strings.Replace(s, " ", "", 1)
}
