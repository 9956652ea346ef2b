package monitor

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Braille character rendering for high-resolution terminal graphs.
//
// Braille patterns use a 2x4 dot matrix per character:
//
//	  Col 0  Col 1
//	Row 0:   ⠁      ⠈     (dots 1, 4)
//	Row 1:   ⠂      ⠐     (dots 2, 5)
//	Row 2:   ⠄      ⠠     (dots 3, 6)
//	Row 3:   ⡀      ⢀     (dots 7, 8)
//
// Unicode braille starts at U+2800 (empty) and uses bit patterns:
// bit 0 = dot 1, bit 1 = dot 2, bit 2 = dot 3, bit 3 = dot 4,
// bit 4 = dot 5, bit 5 = dot 6, bit 6 = dot 7, bit 7 = dot 8

const brailleBase = '\u2800'

// brailleDots maps row/column to the bit offset for braille pattern
// [row][col] where row is 0-3 (top to bottom) and col is 0-1 (left to right)
var brailleDots = [4][2]uint8{
	{0, 3}, // Row 0: dots 1 and 4
	{1, 4}, // Row 1: dots 2 and 5
	{2, 5}, // Row 2: dots 3 and 6
	{6, 7}, // Row 3: dots 7 and 8
}

// Graph describes one braille area chart.
type Graph struct {
	Data []float64

	// Max is the value drawn at full height. Zero scales to the data.
	Max float64

	// Color picks the color of a character column from its peak value.
	// Nil uses Base for every column.
	Color func(v float64) lipgloss.Color
	Base  lipgloss.Color
}

// Dots returns the braille grid for g without styling, one string per row.
// Each character represents 2 horizontal data points with 4 vertical
// levels. Data narrower than the graph is right-aligned.
func (g Graph) Dots(width, height int) ([]string, []float64) {
	if width <= 0 || height <= 0 {
		return nil, nil
	}

	grid := make([][]rune, height)
	for i := range grid {
		grid[i] = []rune(strings.Repeat(string(brailleBase), width))
	}
	colMax := make([]float64, width)

	targetPoints := width * 2
	data := g.Data
	if len(data) > targetPoints {
		data = resampleData(data, targetPoints)
	}
	top := g.Max
	if top <= 0 {
		top = maxOf(data)
	}
	totalDots := height * 4
	horizOffset := targetPoints - len(data)

	for i, val := range data {
		charCol := (i + horizOffset) / 2
		subCol := (i + horizOffset) % 2
		colMax[charCol] = max(colMax[charCol], val)

		dotHeight := 0
		if top > 0 {
			dotHeight = int(clampFloat(val/top, 0, 1) * float64(totalDots))
		}
		// A non-zero value always shows at least one dot.
		if val > 0 && dotHeight == 0 {
			dotHeight = 1
		}

		// Fill dots from bottom up
		for dot := 0; dot < dotHeight; dot++ {
			row := height - 1 - (dot / 4)
			subRow := 3 - (dot % 4)
			grid[row][charCol] |= rune(1 << brailleDots[subRow][subCol])
		}
	}

	rows := make([]string, height)
	for i, r := range grid {
		rows[i] = string(r)
	}
	return rows, colMax
}

// Render draws the graph with per-column coloring.
func (g Graph) Render(width, height int) []string {
	rows, colMax := g.Dots(width, height)
	out := make([]string, len(rows))
	for i, row := range rows {
		var b strings.Builder
		for col, ch := range []rune(row) {
			color := g.Base
			if g.Color != nil {
				color = g.Color(colMax[col])
			}
			b.WriteString(lipgloss.NewStyle().Foreground(color).Render(string(ch)))
		}
		out[i] = b.String()
	}
	return out
}

func maxOf(data []float64) float64 {
	var m float64
	for _, v := range data {
		m = max(m, v)
	}
	return m
}

// resampleData resamples data to the target size.
// When downsampling (compressing), uses max-based sampling to preserve peaks/spikes.
// When upsampling (expanding), uses linear interpolation.
func resampleData(data []float64, targetSize int) []float64 {
	if len(data) == 0 || targetSize <= 0 {
		return nil
	}

	if len(data) == targetSize {
		return data
	}

	result := make([]float64, targetSize)

	if len(data) == 1 {
		for i := range result {
			result[i] = data[0]
		}
		return result
	}

	// Downsampling: use max within each bucket to preserve peaks
	if len(data) > targetSize {
		bucketSize := float64(len(data)) / float64(targetSize)
		for i := 0; i < targetSize; i++ {
			start := int(float64(i) * bucketSize)
			end := min(int(float64(i+1)*bucketSize), len(data))
			if start >= end {
				start = max(end-1, 0)
			}

			maxVal := data[start]
			for j := start + 1; j < end; j++ {
				maxVal = max(maxVal, data[j])
			}
			result[i] = maxVal
		}
		return result
	}

	// Upsampling: linear interpolation
	scale := float64(len(data)-1) / float64(targetSize-1)
	for i := 0; i < targetSize; i++ {
		pos := float64(i) * scale
		idx := int(pos)
		frac := pos - float64(idx)

		if idx >= len(data)-1 {
			result[i] = data[len(data)-1]
		} else {
			result[i] = data[idx]*(1-frac) + data[idx+1]*frac
		}
	}

	return result
}
