package monitor

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines all key bindings of the dashboard. It implements
// help.KeyMap for the help overlay.
type KeyMap struct {
	// Global bindings, checked before the focused widget sees the key.
	ForceQuit  key.Binding
	Quit       key.Binding
	Freeze     key.Binding
	FocusLeft  key.Binding
	FocusDown  key.Binding
	FocusUp    key.Binding
	FocusRight key.Binding
	Next       key.Binding
	Prev       key.Binding
	Fullscreen key.Binding
	Help       key.Binding
	Close      key.Binding

	// Widget bindings.
	Up       key.Binding
	Down     key.Binding
	PageUp   key.Binding
	PageDown key.Binding
	Top      key.Binding
	End      key.Binding
	Left     key.Binding
	Right    key.Binding
	Sort     key.Binding
	Reverse  key.Binding
	Filter   key.Binding
	Regex    key.Binding
	Group    key.Binding
	Expand   key.Binding
	Collapse key.Binding

	// Filter editor.
	Apply  key.Binding
	Cancel key.Binding
}

// ShortHelp returns the compact set of bindings.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Help, k.Next, k.Freeze, k.Quit}
}

// FullHelp returns the binding groups shown in the help overlay.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Quit, k.Freeze, k.FocusLeft, k.FocusDown, k.FocusUp, k.FocusRight, k.Next, k.Prev, k.Fullscreen, k.Help, k.Close},
		{k.Up, k.Down, k.PageUp, k.PageDown, k.Top, k.End, k.Left, k.Right},
		{k.Sort, k.Reverse, k.Filter, k.Regex, k.Group, k.Expand, k.Collapse},
	}
}

// DefaultKeyMap returns the standard bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		ForceQuit:  key.NewBinding(key.WithKeys("ctrl+c")),
		Quit:       key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		Freeze:     key.NewBinding(key.WithKeys("f", " "), key.WithHelp("f/space", "freeze")),
		FocusLeft:  key.NewBinding(key.WithKeys("H", "shift+left"), key.WithHelp("H", "focus left")),
		FocusDown:  key.NewBinding(key.WithKeys("J", "shift+down"), key.WithHelp("J", "focus down")),
		FocusUp:    key.NewBinding(key.WithKeys("K", "shift+up"), key.WithHelp("K", "focus up")),
		FocusRight: key.NewBinding(key.WithKeys("L", "shift+right"), key.WithHelp("L", "focus right")),
		Next:       key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next widget")),
		Prev:       key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev widget")),
		Fullscreen: key.NewBinding(key.WithKeys("e", "enter"), key.WithHelp("e", "fullscreen")),
		Help:       key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Close:      key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "close")),

		Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("k/up", "up")),
		Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("j/dn", "down")),
		PageUp:   key.NewBinding(key.WithKeys("pgup"), key.WithHelp("pgup", "page up")),
		PageDown: key.NewBinding(key.WithKeys("pgdown"), key.WithHelp("pgdn", "page down")),
		Top:      key.NewBinding(key.WithKeys("g", "home"), key.WithHelp("gg", "top")),
		End:      key.NewBinding(key.WithKeys("G", "end"), key.WithHelp("G", "bottom")),
		Left:     key.NewBinding(key.WithKeys("h", "left"), key.WithHelp("h", "scroll left")),
		Right:    key.NewBinding(key.WithKeys("l", "right"), key.WithHelp("l", "scroll right")),
		Sort:     key.NewBinding(key.WithKeys("s", "f6"), key.WithHelp("s/F6", "sort column")),
		Reverse:  key.NewBinding(key.WithKeys("S"), key.WithHelp("S", "reverse sort")),
		Filter:   key.NewBinding(key.WithKeys("/", "ctrl+f"), key.WithHelp("/", "filter")),
		Regex:    key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("ctrl+r", "regex filter")),
		Group:    key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "group by name")),
		Expand:   key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "expand")),
		Collapse: key.NewBinding(key.WithKeys("-"), key.WithHelp("-", "collapse")),

		Apply:  key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "apply filter")),
		Cancel: key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
	}
}
