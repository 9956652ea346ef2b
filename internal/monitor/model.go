package monitor

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rileyhilliard/rtop/internal/harvest"
	"github.com/rileyhilliard/rtop/internal/layout"
	"github.com/rileyhilliard/rtop/internal/logger"
	"github.com/rileyhilliard/rtop/internal/sampler"
	"github.com/rileyhilliard/rtop/internal/store"
)

// Model is the Bubble Tea model for the dashboard. It is the only owner of
// the store and of all view state, so nothing here is locked.
type Model struct {
	ctx   context.Context
	store *store.Store
	queue *sampler.Queue
	log   logger.Logger

	root    *layout.Node
	full    layout.Layout // the whole tree
	display layout.Layout // what is drawn: full, or the fullscreen widget

	theme  *Theme
	redraw time.Duration

	keys   KeyMap
	help   help.Model
	filter textinput.Model

	state   AppState
	widgets map[layout.WidgetID]*WidgetState

	// frame is the last rendered screen, reused until something is dirty.
	frame string

	// pendingG is set after a lone "g", waiting for the second one.
	pendingG bool
}

// snapshotMsg carries the next snapshot from the queue.
type snapshotMsg struct {
	snap    *harvest.Snapshot
	dropped uint64
}

// queueClosedMsg signals that no more snapshots will arrive.
type queueClosedMsg struct {
	err error
}

// redrawTickMsg forces a redraw.
type redrawTickMsg time.Time

// newModel builds the model for a store that already holds the probe
// snapshot. q may be nil, in which case no snapshots are received.
func newModel(ctx context.Context, st *store.Store, q *sampler.Queue, opts Options) Model {
	theme := opts.Theme
	if theme == nil {
		theme = Synthwave
	}
	log := opts.Logger
	if log == nil {
		log = logger.Noop()
	}

	filter := textinput.New()
	filter.Prompt = "/"
	filter.Placeholder = "filter"
	filter.Cursor.SetMode(cursor.CursorStatic)

	full := layout.Compute(opts.Layout, 0, 0)
	m := Model{
		ctx:     ctx,
		store:   st,
		queue:   q,
		log:     log,
		root:    opts.Layout,
		full:    full,
		display: full,
		theme:   theme,
		redraw:  opts.Redraw,
		keys:    DefaultKeyMap(),
		help:    newHelp(theme),
		filter:  filter,
		widgets: newWidgetStates(full.IDs(), opts.View),
	}
	if ids := full.IDs(); len(ids) > 0 {
		m.state.Focused = ids[0]
	}
	m.state.Dirty = true
	return m
}

// Init starts listening for snapshots and the forced redraw timer.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.waitForSnapshot(), m.redrawTick())
}

// Update handles messages and re-renders the frame when needed.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case snapshotMsg:
		if msg.dropped != m.state.Overflow {
			m.state.Overflow = msg.dropped
			m.state.Dirty = true
		}
		if !m.state.Frozen {
			m.store.Apply(msg.snap)
			m.state.Dirty = true
		}
		cmds = append(cmds, m.waitForSnapshot())

	case queueClosedMsg:
		m.log.Debug("monitor: snapshot queue closed: %v", msg.err)

	case redrawTickMsg:
		m.state.Dirty = true
		cmds = append(cmds, m.redrawTick())

	case tea.WindowSizeMsg:
		m.state.Width = msg.Width
		m.state.Height = msg.Height
		m.help.Width = msg.Width
		m.relayout()

	case tea.KeyMsg:
		cmds = append(cmds, m.handleKey(msg))

	case tea.MouseMsg:
		m.handleMouse(msg)
	}

	if m.state.Dirty {
		m.syncScroll()
		m.frame = m.render()
		m.state.Dirty = false
	}
	return m, tea.Batch(cmds...)
}

// View returns the cached frame.
func (m Model) View() string {
	if m.state.Quitting {
		return ""
	}
	return m.frame
}

// State returns a copy of the dashboard state.
func (m Model) State() AppState {
	return m.state
}

func (m Model) render() string {
	if m.state.ShowHelp {
		return renderHelpOverlay(m.help, m.keys, m.state.Width, m.state.Height, m.theme)
	}
	return Render(m.state, m.store, m.display, m.widgets, m.theme)
}

func (m Model) waitForSnapshot() tea.Cmd {
	if m.queue == nil {
		return nil
	}
	ctx, q := m.ctx, m.queue
	return func() tea.Msg {
		snap, err := q.Recv(ctx)
		if err != nil {
			return queueClosedMsg{err: err}
		}
		return snapshotMsg{snap: snap, dropped: q.Dropped()}
	}
}

func (m Model) redrawTick() tea.Cmd {
	if m.redraw <= 0 {
		return nil
	}
	return tea.Tick(m.redraw, func(t time.Time) tea.Msg {
		return redrawTickMsg(t)
	})
}

// relayout recomputes the widget rectangles for the current size.
func (m *Model) relayout() {
	h := max(m.state.Height-headerHeight, 0)
	m.full = layout.Compute(m.root, m.state.Width, h)
	m.display = m.full
	if m.state.Fullscreen {
		m.display = layout.Fullscreen(m.full, m.state.Focused, m.state.Width, h)
	}
	m.state.Dirty = true
}

func (m *Model) focus(id layout.WidgetID) {
	if id == m.state.Focused {
		return
	}
	m.state.Focused = id
	m.state.Dirty = true
	if m.state.Fullscreen {
		m.relayout()
	}
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	if key.Matches(msg, m.keys.ForceQuit) {
		m.state.Quitting = true
		return tea.Quit
	}
	if m.state.Editing {
		return m.handleEditorKey(msg)
	}
	if m.state.ShowHelp {
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.state.Quitting = true
			return tea.Quit
		case key.Matches(msg, m.keys.Help), key.Matches(msg, m.keys.Close):
			m.state.ShowHelp = false
			m.state.Dirty = true
		}
		return nil
	}

	// "gg" jumps to the top; a lone "g" waits for its partner.
	if msg.String() == "g" {
		if !m.pendingG {
			m.pendingG = true
			return nil
		}
		m.pendingG = false
		if ws := m.widgets[m.state.Focused]; ws != nil {
			ws.Scroll.MoveTo(0, m.rowCount(m.state.Focused))
			m.state.Dirty = true
		}
		return nil
	}
	m.pendingG = false

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.state.Quitting = true
		return tea.Quit
	case key.Matches(msg, m.keys.Freeze):
		m.state.Frozen = !m.state.Frozen
		m.state.Dirty = true
	case key.Matches(msg, m.keys.FocusLeft):
		m.focus(layout.Navigate(m.full, m.state.Focused, layout.Left))
	case key.Matches(msg, m.keys.FocusDown):
		m.focus(layout.Navigate(m.full, m.state.Focused, layout.Down))
	case key.Matches(msg, m.keys.FocusUp):
		m.focus(layout.Navigate(m.full, m.state.Focused, layout.Up))
	case key.Matches(msg, m.keys.FocusRight):
		m.focus(layout.Navigate(m.full, m.state.Focused, layout.Right))
	case key.Matches(msg, m.keys.Next):
		m.focus(layout.Cycle(m.full, m.state.Focused, 1))
	case key.Matches(msg, m.keys.Prev):
		m.focus(layout.Cycle(m.full, m.state.Focused, -1))
	case key.Matches(msg, m.keys.Fullscreen):
		m.state.Fullscreen = !m.state.Fullscreen
		m.relayout()
	case key.Matches(msg, m.keys.Help):
		m.state.ShowHelp = true
		m.state.Dirty = true
	case key.Matches(msg, m.keys.Close):
		if m.state.Fullscreen {
			m.state.Fullscreen = false
			m.relayout()
		}
	default:
		return m.handleWidgetKey(msg)
	}
	return nil
}

// handleWidgetKey applies a key to the focused widget.
func (m *Model) handleWidgetKey(msg tea.KeyMsg) tea.Cmd {
	id := m.state.Focused
	ws := m.widgets[id]
	if ws == nil {
		return nil
	}
	rows := m.rowCount(id)
	page := 1
	if r, ok := m.display.Rect(id); ok {
		page = max(tableVisibleRows(r.H), 1)
	}

	switch {
	case key.Matches(msg, m.keys.Up):
		ws.Scroll.Move(-1, rows)
	case key.Matches(msg, m.keys.Down):
		ws.Scroll.Move(1, rows)
	case key.Matches(msg, m.keys.PageUp):
		ws.Scroll.Move(-page, rows)
	case key.Matches(msg, m.keys.PageDown):
		ws.Scroll.Move(page, rows)
	case key.Matches(msg, m.keys.Top):
		ws.Scroll.MoveTo(0, rows)
	case key.Matches(msg, m.keys.End):
		ws.Scroll.MoveTo(rows-1, rows)
	case key.Matches(msg, m.keys.Left):
		ws.ColOffset = clampOffset(ws.ColOffset-1, columnCount(id))
	case key.Matches(msg, m.keys.Right):
		ws.ColOffset = clampOffset(ws.ColOffset+1, columnCount(id))
	case key.Matches(msg, m.keys.Expand):
		ws.Expanded = true
	case key.Matches(msg, m.keys.Collapse):
		ws.Expanded = false
	case id != WidgetProc:
		return nil
	case key.Matches(msg, m.keys.Sort):
		next := store.Columns[(int(ws.Sort)+1)%len(store.Columns)]
		ws.Sort, ws.Descending = next, defaultDescending(next)
	case key.Matches(msg, m.keys.Reverse):
		ws.Descending = !ws.Descending
	case key.Matches(msg, m.keys.Regex):
		ws.Regex = !ws.Regex
	case key.Matches(msg, m.keys.Group):
		ws.Group = !ws.Group
	case key.Matches(msg, m.keys.Filter):
		return m.openEditor(ws)
	default:
		return nil
	}
	m.state.Dirty = true
	return nil
}

func (m *Model) openEditor(ws *WidgetState) tea.Cmd {
	m.state.Editing = true
	m.state.Dirty = true
	m.filter.SetValue(ws.Filter)
	m.filter.CursorEnd()
	cmd := m.filter.Focus()
	ws.Draft = m.filter.View()
	return cmd
}

func (m *Model) handleEditorKey(msg tea.KeyMsg) tea.Cmd {
	ws := m.widgets[WidgetProc]
	if ws == nil {
		m.state.Editing = false
		return nil
	}
	m.state.Dirty = true

	switch {
	case key.Matches(msg, m.keys.Apply):
		ws.Filter = m.filter.Value()
		ws.Scroll = ScrollState{}
		m.closeEditor(ws)
		return nil
	case key.Matches(msg, m.keys.Cancel):
		m.closeEditor(ws)
		return nil
	}

	var cmd tea.Cmd
	m.filter, cmd = m.filter.Update(msg)
	ws.Draft = m.filter.View()
	return cmd
}

func (m *Model) closeEditor(ws *WidgetState) {
	m.state.Editing = false
	m.filter.Blur()
	ws.Draft = ""
}

func (m *Model) handleMouse(msg tea.MouseMsg) {
	if m.state.Editing || m.state.ShowHelp {
		return
	}
	y := msg.Y - headerHeight
	id, ok := m.display.At(msg.X, y)
	if !ok {
		return
	}
	ws := m.widgets[id]
	if ws == nil {
		return
	}

	switch msg.Button {
	case tea.MouseButtonWheelUp:
		ws.Scroll.Move(-1, m.rowCount(id))
		m.state.Dirty = true
	case tea.MouseButtonWheelDown:
		ws.Scroll.Move(1, m.rowCount(id))
		m.state.Dirty = true
	case tea.MouseButtonLeft:
		if msg.Action != tea.MouseActionPress {
			return
		}
		m.focus(id)
		if id == WidgetProc {
			m.clickHeader(ws, msg.X, y)
		}
	}
}

// clickHeader sorts the process table by the column under (x, y), which
// is relative to the widget area. Clicking the sorted column reverses it.
func (m *Model) clickHeader(ws *WidgetState, x, y int) {
	r, ok := m.display.Rect(WidgetProc)
	if !ok || y != r.Y+1 {
		return
	}
	t, err := procTable(m.store, ws, m.theme)
	if err != nil {
		return
	}
	col := tableColumnAt(t, r.W-2, ws.ColOffset, x-r.X-1)
	if col < 0 {
		return
	}
	c := store.Columns[col]
	if c == ws.Sort {
		ws.Descending = !ws.Descending
	} else {
		ws.Sort, ws.Descending = c, defaultDescending(c)
	}
	m.state.Dirty = true
}

// syncScroll keeps every table selection inside its visible window. The
// process table selection stays on the same pid across re-sorts.
func (m *Model) syncScroll() {
	for _, p := range m.display.Leaves() {
		if !isTable(p.ID) {
			continue
		}
		ws := m.widgets[p.ID]
		if ws == nil {
			continue
		}
		if p.ID == WidgetProc {
			rows, _ := m.store.Processes().Rows(ws.View())
			ws.followSelection(rows)
			ws.Scroll.Fit(len(rows), tableVisibleRows(p.Rect.H))
			continue
		}
		ws.Scroll.Fit(m.rowCount(p.ID), tableVisibleRows(p.Rect.H))
	}
}

// rowCount returns how many rows a table widget shows.
func (m *Model) rowCount(id layout.WidgetID) int {
	switch id {
	case WidgetDisk:
		return len(m.store.Disks())
	case WidgetTemp:
		return len(m.store.Temperatures())
	case WidgetProc:
		ws := m.widgets[id]
		if ws == nil {
			return 0
		}
		rows, err := m.store.Processes().Rows(ws.View())
		if err != nil {
			return 0
		}
		return len(rows)
	}
	return 0
}

func columnCount(id layout.WidgetID) int {
	switch id {
	case WidgetDisk:
		return len(diskColumns)
	case WidgetTemp:
		return len(tempColumns)
	case WidgetProc:
		return len(procColumns)
	}
	return 0
}

// defaultDescending reports whether a column sorts largest first when
// selected.
func defaultDescending(c store.Column) bool {
	switch c {
	case store.ColumnCPU, store.ColumnMem, store.ColumnRead, store.ColumnWrite:
		return true
	}
	return false
}
