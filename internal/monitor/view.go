package monitor

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/rileyhilliard/rtop/internal/layout"
	"github.com/rileyhilliard/rtop/internal/store"
	"github.com/rileyhilliard/rtop/internal/util"
)

// headerHeight is the number of rows above the widget area.
const headerHeight = 1

// Render draws a complete frame: the header line followed by every widget of
// l, which covers the area below the header. It only reads its arguments.
func Render(state AppState, st *store.Store, l layout.Layout, widgets map[layout.WidgetID]*WidgetState, theme *Theme) string {
	if state.Width <= 0 || state.Height <= 0 {
		return ""
	}

	lines := make([]string, 0, state.Height)
	lines = append(lines, renderHeader(state, st, theme))

	boxes := make(map[layout.WidgetID][]string, len(l.Leaves()))
	for _, p := range l.Leaves() {
		ws := widgets[p.ID]
		if ws == nil {
			ws = &WidgetState{}
		}
		focused := p.ID == state.Focused
		inner := max(p.Rect.W-2, 0)
		innerH := max(p.Rect.H-2, 0)
		v := renderWidget(p.ID, st, ws, inner, innerH, p.Rect.H, focused, theme)
		boxes[p.ID] = box(v, p.Rect.W, p.Rect.H, focused, theme)
	}

	lines = append(lines, compose(l, boxes)...)
	for len(lines) < state.Height {
		lines = append(lines, strings.Repeat(" ", state.Width))
	}
	return strings.Join(lines[:state.Height], "\n")
}

// compose stitches widget boxes into screen rows. The rectangles tile the
// area, so concatenating the boxes crossing a row left to right yields the
// full row.
func compose(l layout.Layout, boxes map[layout.WidgetID][]string) []string {
	leaves := append([]layout.Placement(nil), l.Leaves()...)
	sort.SliceStable(leaves, func(i, j int) bool { return leaves[i].Rect.X < leaves[j].Rect.X })

	out := make([]string, l.H)
	for y := 0; y < l.H; y++ {
		var b strings.Builder
		for _, p := range leaves {
			r := p.Rect
			if y < r.Y || y >= r.Y+r.H {
				continue
			}
			b.WriteString(boxes[p.ID][y-r.Y])
		}
		out[y] = b.String()
	}
	return out
}

// box draws a rounded border around content with the title set into the
// top edge and the footer into the bottom edge. It always returns exactly
// h lines of w cells.
func box(v widgetView, w, h int, focused bool, theme *Theme) []string {
	out := make([]string, 0, max(h, 0))
	if w < 2 || h < 2 {
		for i := 0; i < h; i++ {
			out = append(out, strings.Repeat(" ", max(w, 0)))
		}
		return out
	}

	border := theme.borderStyle(focused)
	edge := func(left, right, label string, labelStyle lipgloss.Style) string {
		inner := w - 2
		if label == "" || inner < 5 {
			return border.Render(left + strings.Repeat("─", inner) + right)
		}
		label = ansi.Truncate(label, inner-4, "…")
		fill := inner - 3 - lipgloss.Width(label)
		return border.Render(left+"─ ") + labelStyle.Render(label) +
			border.Render(" "+strings.Repeat("─", fill)+right)
	}

	out = append(out, edge("╭", "╮", v.Title, theme.titleStyle(focused)))
	for i := 0; i < h-2; i++ {
		var line string
		if i < len(v.Lines) {
			line = v.Lines[i]
		}
		out = append(out, border.Render("│")+align(line, w-2, false)+border.Render("│"))
	}
	out = append(out, edge("╰", "╯", v.Footer, theme.labelStyle()))
	return out
}

// renderHeader draws the status line: the frozen indicator, the focused
// widget and the dropped snapshot count.
func renderHeader(state AppState, st *store.Store, theme *Theme) string {
	parts := []string{theme.fg(theme.Accent).Bold(true).Render("rtop")}

	if state.Frozen {
		parts = append(parts, theme.fg(theme.Warning).Bold(true).Render("FROZEN"))
	}
	if state.Focused != "" {
		focus := string(state.Focused)
		if state.Fullscreen {
			focus += " (fullscreen)"
		}
		parts = append(parts, theme.labelStyle().Render("focus "+focus))
	}
	if state.Overflow > 0 {
		n := int(state.Overflow)
		parts = append(parts, theme.fg(theme.Critical).Render(
			fmt.Sprintf("%d %s dropped", n, util.Pluralize(n, "snapshot", "snapshots"))))
	}
	if warnings := len(st.Warnings()); warnings > 0 {
		parts = append(parts, theme.fg(theme.Warning).Render(
			fmt.Sprintf("%d %s", warnings, util.Pluralize(warnings, "warning", "warnings"))))
	}
	if t := st.Updated(); !t.IsZero() {
		parts = append(parts, theme.mutedStyle().Render("updated "+t.Format("15:04:05")))
	}

	sep := theme.mutedStyle().Render(" | ")
	left := strings.Join(parts, sep)
	right := theme.mutedStyle().Render("? help")

	gap := state.Width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		return align(left, state.Width, false)
	}
	return left + strings.Repeat(" ", gap) + right
}
