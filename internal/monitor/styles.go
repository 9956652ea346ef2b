package monitor

import (
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/rileyhilliard/rtop/internal/harvest"
)

// Thresholds for metric severity levels
const (
	WarningThreshold  = 70.0
	CriticalThreshold = 90.0
)

// Default temperature thresholds, used when a sensor reports none.
const (
	TempWarning  = 70.0
	TempCritical = 85.0
)

// Theme is a color palette for the dashboard. The event loop passes it
// through to rendering without looking inside.
type Theme struct {
	Name string

	Background lipgloss.Color
	Surface    lipgloss.Color
	Border     lipgloss.Color

	Healthy  lipgloss.Color
	Warning  lipgloss.Color
	Critical lipgloss.Color

	Text      lipgloss.Color
	TextDim   lipgloss.Color
	TextMuted lipgloss.Color

	Accent    lipgloss.Color
	AccentDim lipgloss.Color

	Graph    lipgloss.Color
	GraphAlt lipgloss.Color

	// Ascii disables color output entirely.
	Ascii bool
}

// Synthwave is the default neon palette.
var Synthwave = &Theme{
	Name:       "synthwave",
	Background: lipgloss.Color("#0A0A0F"), // Deep void
	Surface:    lipgloss.Color("#12121A"),
	Border:     lipgloss.Color("#2A2A4A"), // Glass border (purple tint)
	Healthy:    lipgloss.Color("#39FF14"), // Neon green
	Warning:    lipgloss.Color("#FFAA00"), // Electric amber
	Critical:   lipgloss.Color("#FF0055"), // Hot red-pink
	Text:       lipgloss.Color("#FFFFFF"),
	TextDim:    lipgloss.Color("#B4B4D0"), // Lavender gray
	TextMuted:  lipgloss.Color("#6B6B8D"),
	Accent:     lipgloss.Color("#FF2E97"), // Neon pink
	AccentDim:  lipgloss.Color("#BF40FF"), // Neon purple
	Graph:      lipgloss.Color("#00FFFF"), // Neon cyan
	GraphAlt:   lipgloss.Color("#FF2E97"),
}

// Nord is a muted arctic palette.
var Nord = &Theme{
	Name:       "nord",
	Background: lipgloss.Color("#2E3440"),
	Surface:    lipgloss.Color("#3B4252"),
	Border:     lipgloss.Color("#4C566A"),
	Healthy:    lipgloss.Color("#A3BE8C"),
	Warning:    lipgloss.Color("#EBCB8B"),
	Critical:   lipgloss.Color("#BF616A"),
	Text:       lipgloss.Color("#ECEFF4"),
	TextDim:    lipgloss.Color("#D8DEE9"),
	TextMuted:  lipgloss.Color("#7B88A1"),
	Accent:     lipgloss.Color("#88C0D0"),
	AccentDim:  lipgloss.Color("#81A1C1"),
	Graph:      lipgloss.Color("#8FBCBB"),
	GraphAlt:   lipgloss.Color("#B48EAD"),
}

// Mono renders without color.
var Mono = &Theme{
	Name:  "mono",
	Ascii: true,
}

var themes = map[string]*Theme{
	Synthwave.Name: Synthwave,
	Nord.Name:      Nord,
	Mono.Name:      Mono,
}

// ThemeByName looks up a built-in theme.
func ThemeByName(name string) (*Theme, bool) {
	t, ok := themes[strings.ToLower(strings.TrimSpace(name))]
	return t, ok
}

// ThemeNames lists the built-in themes, default first.
func ThemeNames() []string {
	names := make([]string, 0, len(themes))
	for name := range themes {
		if name != Synthwave.Name {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return append([]string{Synthwave.Name}, names...)
}

// Apply sets the global color profile the theme needs. Ascii themes force
// plain text even on color terminals.
func (t *Theme) Apply() {
	if t.Ascii {
		lipgloss.SetColorProfile(termenv.Ascii)
	}
}

// MetricColor returns the appropriate color for a percentage-based metric.
// Uses threshold-based coloring: green < 70%, yellow 70-90%, red > 90%.
func (t *Theme) MetricColor(percent float64) lipgloss.Color {
	return t.thresholdColor(percent, WarningThreshold, CriticalThreshold)
}

// TempColor colors a sensor reading by its own limits, or the defaults.
func (t *Theme) TempColor(temp harvest.Temperature) lipgloss.Color {
	warn, crit := TempWarning, TempCritical
	if temp.High > 0 {
		warn = temp.High
	}
	if temp.Critical > 0 {
		crit = temp.Critical
	}
	return t.thresholdColor(temp.Celsius, warn, crit)
}

func (t *Theme) thresholdColor(v, warning, critical float64) lipgloss.Color {
	switch {
	case v >= critical:
		return t.Critical
	case v >= warning:
		return t.Warning
	default:
		return t.Healthy
	}
}

func (t *Theme) fg(c lipgloss.Color) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(c)
}

func (t *Theme) borderStyle(focused bool) lipgloss.Style {
	if focused {
		return t.fg(t.Accent)
	}
	return t.fg(t.Border)
}

func (t *Theme) titleStyle(focused bool) lipgloss.Style {
	if focused {
		return t.fg(t.Accent).Bold(true)
	}
	return t.fg(t.TextDim).Bold(true)
}

func (t *Theme) headerStyle() lipgloss.Style {
	return t.fg(t.Text).Bold(true)
}

func (t *Theme) labelStyle() lipgloss.Style {
	return t.fg(t.TextDim)
}

func (t *Theme) mutedStyle() lipgloss.Style {
	return t.fg(t.TextMuted)
}

func (t *Theme) selectedStyle() lipgloss.Style {
	if t.Ascii {
		return lipgloss.NewStyle().Reverse(true)
	}
	return lipgloss.NewStyle().Foreground(t.Background).Background(t.Accent)
}

// Gauge renders a horizontal bar using the thin segment style.
// Uses ━ for filled segments and ─ for empty segments.
func (t *Theme) Gauge(width int, percent float64) string {
	if width < 1 {
		width = 1
	}
	percent = clampFloat(percent, 0, 100)
	filled := min(int(percent/100.0*float64(width)), width)

	return t.fg(t.MetricColor(percent)).Render(strings.Repeat("━", filled)) +
		t.mutedStyle().Render(strings.Repeat("─", width-filled))
}

func clampFloat(v, lo, hi float64) float64 {
	return max(lo, min(v, hi))
}
