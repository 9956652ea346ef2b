package monitor

import (
	"github.com/rileyhilliard/rtop/internal/harvest"
	"github.com/rileyhilliard/rtop/internal/layout"
	"github.com/rileyhilliard/rtop/internal/store"
)

// Widget identifiers usable in a layout.
const (
	WidgetCPU  layout.WidgetID = "cpu"
	WidgetMem  layout.WidgetID = "mem"
	WidgetNet  layout.WidgetID = "net"
	WidgetDisk layout.WidgetID = "disk"
	WidgetTemp layout.WidgetID = "temp"
	WidgetProc layout.WidgetID = "proc"
)

// Widgets lists every widget in default focus order.
var Widgets = []layout.WidgetID{WidgetCPU, WidgetMem, WidgetNet, WidgetDisk, WidgetTemp, WidgetProc}

// IsWidget reports whether id names a known widget.
func IsWidget(id layout.WidgetID) bool {
	for _, w := range Widgets {
		if w == id {
			return true
		}
	}
	return false
}

var widgetTitles = map[layout.WidgetID]string{
	WidgetCPU:  "CPU",
	WidgetMem:  "Memory",
	WidgetNet:  "Network",
	WidgetDisk: "Disks",
	WidgetTemp: "Temperatures",
	WidgetProc: "Processes",
}

// widgetCategories maps each widget to the metric category it draws.
var widgetCategories = map[layout.WidgetID]harvest.Category{
	WidgetCPU:  harvest.CategoryCPU,
	WidgetMem:  harvest.CategoryMemory,
	WidgetNet:  harvest.CategoryNetwork,
	WidgetDisk: harvest.CategoryDisk,
	WidgetTemp: harvest.CategoryTemperature,
	WidgetProc: harvest.CategoryProcesses,
}

// isTable reports whether the widget renders rows that scroll.
func isTable(id layout.WidgetID) bool {
	return id == WidgetDisk || id == WidgetTemp || id == WidgetProc
}

// AppState is the dashboard-wide state owned by the event loop.
type AppState struct {
	Frozen     bool
	Focused    layout.WidgetID
	Fullscreen bool
	ShowHelp   bool
	Quitting   bool

	// Editing is set while the process filter editor has the keyboard.
	Editing bool

	Width, Height int

	// Dirty marks the cached frame as stale.
	Dirty bool

	// Overflow is the number of snapshots dropped by the queue so far.
	Overflow uint64
}

// ScrollDirection is the direction of the last selection move.
type ScrollDirection int

const (
	ScrollDown ScrollDirection = iota
	ScrollUp
)

// ScrollState tracks the selected row of a table and the first visible one.
type ScrollState struct {
	Current   int
	Previous  int
	Direction ScrollDirection

	// Start is the index of the first visible row.
	Start int
}

// MoveTo selects row i, clamped to [0, rows), and records the direction.
func (s *ScrollState) MoveTo(i, rows int) {
	if rows <= 0 {
		*s = ScrollState{}
		return
	}
	i = max(0, min(i, rows-1))
	s.Previous = s.Current
	s.Current = i
	if i < s.Previous {
		s.Direction = ScrollUp
	} else if i > s.Previous {
		s.Direction = ScrollDown
	}
}

// Move selects the row delta away from the current one.
func (s *ScrollState) Move(delta, rows int) {
	s.MoveTo(s.Current+delta, rows)
}

// Fit clamps the selection to rows and recomputes Start so the selection
// is visible in a window of the given height. The window only moves when
// the selection leaves it.
func (s *ScrollState) Fit(rows, visible int) {
	if rows <= 0 || visible <= 0 {
		s.Current, s.Start = 0, 0
		return
	}
	s.Current = max(0, min(s.Current, rows-1))
	s.Start = startPosition(s.Current, s.Start, visible, s.Direction)
	s.Start = max(0, min(s.Start, rows-visible))
}

func startPosition(current, prevStart, visible int, dir ScrollDirection) int {
	switch dir {
	case ScrollUp:
		switch {
		case current <= prevStart:
			return current
		case current >= prevStart+visible:
			return current - visible + 1
		default:
			return prevStart
		}
	default:
		switch {
		case current >= prevStart && current < prevStart+visible:
			return prevStart
		case current >= visible:
			return current - visible + 1
		default:
			return 0
		}
	}
}

// WidgetState is the per-widget view state.
type WidgetState struct {
	Scroll ScrollState

	// ColOffset is the index of the first visible table column.
	ColOffset int

	Sort       store.Column
	Descending bool
	Filter     string
	Regex      bool
	Group      bool

	// Expanded shows a graph legend, or full command lines in the process table.
	Expanded bool

	// Draft is the rendered filter editor while it is open.
	Draft string

	// SelectedPID is the process under the selection. The selection follows
	// it when rows re-sort, as long as the row index was not moved since.
	SelectedPID int32
	selectedAt  int
	tracking    bool
}

// followSelection moves the selection to the row of the tracked process,
// then tracks whichever process ends up selected.
func (w *WidgetState) followSelection(rows []store.ProcessRow) {
	if len(rows) == 0 {
		w.SelectedPID, w.tracking = 0, false
		return
	}
	if w.tracking && w.Scroll.Current == w.selectedAt {
		for i, r := range rows {
			if r.PID == w.SelectedPID {
				w.Scroll.MoveTo(i, len(rows))
				break
			}
		}
	}
	cur := max(0, min(w.Scroll.Current, len(rows)-1))
	w.SelectedPID, w.selectedAt, w.tracking = rows[cur].PID, cur, true
}

// View returns the process view described by the state.
func (w *WidgetState) View() store.View {
	return store.View{
		Sort:       w.Sort,
		Descending: w.Descending,
		Filter:     w.Filter,
		Regex:      w.Regex,
		Group:      w.Group,
	}
}

// newWidgetStates creates the state for every leaf, seeding the process
// table from view.
func newWidgetStates(ids []layout.WidgetID, view store.View) map[layout.WidgetID]*WidgetState {
	out := make(map[layout.WidgetID]*WidgetState, len(ids))
	for _, id := range ids {
		ws := &WidgetState{Expanded: !isTable(id)}
		if id == WidgetProc {
			ws.Sort = view.Sort
			ws.Descending = view.Descending
			ws.Filter = view.Filter
			ws.Regex = view.Regex
			ws.Group = view.Group
		}
		out[id] = ws
	}
	return out
}
