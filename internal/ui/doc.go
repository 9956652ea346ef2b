// Package ui provides the styled terminal output rtop prints outside the
// full-screen dashboard: startup progress and one-line status messages.
//
// Colors are ANSI codes so they follow the user's terminal palette. Use
// DisableColors() to switch to monochrome output (for --no-color).
//
// The Spinner type animates while the metrics backend is probed:
//
//	s := ui.NewSpinner("Probing procfs backend", os.Stderr)
//	s.Start()
//	// ... do work ...
//	s.Success() // or s.Fail()
package ui
