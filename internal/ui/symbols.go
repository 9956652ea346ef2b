package ui

// Unicode symbols for status indicators.
const (
	SymbolSuccess  = "✓" // Step completed successfully
	SymbolFail     = "✗" // Step failed
	SymbolWarning  = "⚠" // Step passed with a problem
	SymbolPending  = "○" // Step not yet started
	SymbolComplete = "●" // Step done (alternative to success)
	SymbolArrow    = "→" // Points at a path or value
)
