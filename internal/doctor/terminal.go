package doctor

import (
	"fmt"

	"golang.org/x/term"
)

// Smallest terminal the default layout renders legibly in.
const (
	MinWidth  = 80
	MinHeight = 24
)

// TerminalCheck verifies the output is a terminal large enough for the
// dashboard.
type TerminalCheck struct {
	Fd int

	// size overrides term.GetSize in tests.
	size func(fd int) (int, int, error)
}

func (c *TerminalCheck) Name() string     { return "terminal" }
func (c *TerminalCheck) Category() string { return CategoryTerminal }

func (c *TerminalCheck) Run() CheckResult {
	getSize := c.size
	if getSize == nil {
		if !term.IsTerminal(c.Fd) {
			return CheckResult{
				Status:     StatusFail,
				Message:    "Output is not a terminal",
				Suggestion: "Run rtop directly in a terminal instead of piping or redirecting its output.",
			}
		}
		getSize = term.GetSize
	}

	w, h, err := getSize(c.Fd)
	if err != nil {
		return CheckResult{
			Status:     StatusWarn,
			Message:    fmt.Sprintf("Can't read the terminal size: %v", err),
			Suggestion: "The dashboard sizes itself from resize events once it starts.",
		}
	}
	if w < MinWidth || h < MinHeight {
		return CheckResult{
			Status:     StatusWarn,
			Message:    fmt.Sprintf("Terminal is %dx%d, smaller than %dx%d", w, h, MinWidth, MinHeight),
			Suggestion: "Widgets still render but may be cramped. Enlarge the window or use a smaller layout.",
		}
	}
	return CheckResult{
		Status:  StatusPass,
		Message: fmt.Sprintf("Terminal is %dx%d", w, h),
	}
}
