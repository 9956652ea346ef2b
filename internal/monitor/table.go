package monitor

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// tableGapMinHeight is the smallest widget height that still gets a blank
// row under the table header.
const tableGapMinHeight = 7

// Scroll markers drawn in the reserved edge column.
const (
	markerLeft  = "<"
	markerRight = ">"
)

type tableColumn struct {
	Title string
	Right bool
}

type tableRow struct {
	Cells []string
	// Colors optionally colors individual cells; "" keeps the default.
	Colors []lipgloss.Color
}

type table struct {
	Columns []tableColumn
	Rows    []tableRow
}

// desiredWidths returns the widest entry of each column, header included.
func (t table) desiredWidths() []int {
	widths := make([]int, len(t.Columns))
	for i, c := range t.Columns {
		widths[i] = lipgloss.Width(c.Title)
	}
	for _, r := range t.Rows {
		for i, cell := range r.Cells {
			if i < len(widths) {
				widths[i] = max(widths[i], lipgloss.Width(cell))
			}
		}
	}
	return widths
}

// fitColumns lays out columns at their desired widths, separated by one
// space, taking them greedily from the left while they fit. When some do
// not fit, the layout is redone with one cell reserved for an overflow
// marker. Leftover width is handed out one cell at a time starting from the
// leftmost column. reserve cells are kept free for a scroll marker.
func fitColumns(desired []int, width, reserve int) (widths []int, overflow bool) {
	avail := width - reserve
	if avail <= 0 || len(desired) == 0 {
		return nil, len(desired) > 0
	}

	n, used := take(desired, avail)
	if n < len(desired) {
		overflow = true
		avail--
		n, used = take(desired, avail)
	}
	if n == 0 {
		// Not even the first column fits; show what we can of it.
		if avail <= 0 {
			return nil, true
		}
		return []int{avail}, true
	}

	widths = append([]int(nil), desired[:n]...)
	for left, i := avail-used, 0; left > 0; left, i = left-1, (i+1)%n {
		widths[i]++
	}
	return widths, overflow
}

// take returns how many leading columns fit in avail and the cells they use.
func take(desired []int, avail int) (n, used int) {
	for i, w := range desired {
		next := used + w
		if i > 0 {
			next++
		}
		if next > avail {
			break
		}
		n, used = i+1, next
	}
	return n, used
}

// clampOffset bounds a horizontal column offset.
func clampOffset(offset, columns int) int {
	return max(0, min(offset, columns-1))
}

// tableColumnAt maps a cell x (relative to the table's left edge) to a
// column index, or -1 for the gaps and markers.
func tableColumnAt(t table, width, offset, x int) int {
	offset = clampOffset(offset, len(t.Columns))
	reserve := 0
	if offset > 0 {
		reserve = 1
	}
	widths, _ := fitColumns(t.desiredWidths()[offset:], width, reserve)

	pos := reserve
	for i, w := range widths {
		if x >= pos && x < pos+w {
			return offset + i
		}
		pos += w + 1
	}
	return -1
}

// tableVisibleRows is how many data rows fit in a widget of the given outer
// height.
func tableVisibleRows(outerHeight int) int {
	n := outerHeight - 2 - 1
	if outerHeight >= tableGapMinHeight {
		n--
	}
	return max(0, n)
}

// renderTable draws t into a width x height content area. outerHeight is
// the widget height including its border, which decides the header gap.
func renderTable(t table, width, height, outerHeight int, ws *WidgetState, focused bool, theme *Theme) []string {
	lines := make([]string, 0, height)
	if width <= 0 || height <= 0 || len(t.Columns) == 0 {
		return lines
	}

	offset := clampOffset(ws.ColOffset, len(t.Columns))
	reserve := 0
	if offset > 0 {
		reserve = 1
	}
	widths, overflow := fitColumns(t.desiredWidths()[offset:], width, reserve)
	cols := t.Columns[offset:]

	row := func(cells []string, colors []lipgloss.Color, style lipgloss.Style) string {
		var b strings.Builder
		if reserve > 0 {
			b.WriteString(theme.mutedStyle().Render(markerLeft))
		}
		for i, w := range widths {
			if i > 0 {
				b.WriteString(style.Render(" "))
			}
			var cell string
			if offset+i < len(cells) {
				cell = cells[offset+i]
			}
			cellStyle := style
			if colors != nil && offset+i < len(colors) && colors[offset+i] != "" {
				cellStyle = cellStyle.Foreground(colors[offset+i])
			}
			b.WriteString(cellStyle.Render(align(cell, w, cols[i].Right)))
		}
		if overflow {
			b.WriteString(theme.mutedStyle().Render(markerRight))
		}
		return b.String()
	}

	titles := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		titles[i] = c.Title
	}
	lines = append(lines, row(titles, nil, theme.headerStyle()))
	if outerHeight >= tableGapMinHeight && len(lines) < height {
		lines = append(lines, "")
	}

	start := max(0, min(ws.Scroll.Start, len(t.Rows)))
	for i := start; i < len(t.Rows) && len(lines) < height; i++ {
		style := lipgloss.NewStyle().Foreground(theme.Text)
		if focused && i == ws.Scroll.Current {
			style = theme.selectedStyle()
		}
		lines = append(lines, row(t.Rows[i].Cells, t.Rows[i].Colors, style))
	}
	return lines
}

// align truncates s to w cells and pads it on the left or right.
func align(s string, w int, right bool) string {
	if w <= 0 {
		return ""
	}
	if lipgloss.Width(s) > w {
		s = ansi.Truncate(s, w, "")
	}
	pad := strings.Repeat(" ", w-lipgloss.Width(s))
	if right {
		return pad + s
	}
	return s + pad
}
