package monitor

import (
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/lipgloss"
)

// newHelp builds the help renderer styled for theme.
func newHelp(theme *Theme) help.Model {
	h := help.New()
	h.ShowAll = true
	h.FullSeparator = "    "
	h.Styles.FullKey = theme.fg(theme.Text).Bold(true)
	h.Styles.FullDesc = theme.fg(theme.TextDim)
	h.Styles.FullSeparator = theme.mutedStyle()
	h.Styles.ShortKey = h.Styles.FullKey
	h.Styles.ShortDesc = h.Styles.FullDesc
	h.Styles.ShortSeparator = h.Styles.FullSeparator
	return h
}

// renderHelpOverlay renders a centered box listing every key binding.
func renderHelpOverlay(h help.Model, keys KeyMap, width, height int, theme *Theme) string {
	title := theme.fg(theme.Accent).Bold(true).Render("Keyboard Shortcuts")
	footer := theme.mutedStyle().Render("Press ? or esc to close")
	content := strings.Join([]string{title, "", h.View(keys), "", footer}, "\n")

	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Accent).
		Padding(1, 2)

	return lipgloss.Place(
		width,
		height,
		lipgloss.Center,
		lipgloss.Center,
		boxStyle.Render(content),
		lipgloss.WithWhitespaceChars(" "),
	)
}
