// Package doctor runs the diagnostics behind 'rtop doctor': is the config
// usable, which metric categories the backend can collect, and whether the
// terminal can host the dashboard.
package doctor

import (
	"fmt"

	"github.com/rileyhilliard/rtop/internal/util"
)

// CheckStatus represents the result status of a check.
type CheckStatus int

const (
	StatusPass CheckStatus = iota
	StatusWarn
	StatusFail
)

// String returns a human-readable status string.
func (s CheckStatus) String() string {
	switch s {
	case StatusPass:
		return "pass"
	case StatusWarn:
		return "warn"
	case StatusFail:
		return "fail"
	default:
		return "unknown"
	}
}

// Check categories, in the order they are reported.
const (
	CategoryConfig   = "CONFIG"
	CategoryBackend  = "BACKEND"
	CategoryTerminal = "TERMINAL"
)

// Categories lists the check categories in report order.
var Categories = []string{CategoryConfig, CategoryBackend, CategoryTerminal}

// CheckResult contains the outcome of running a check.
type CheckResult struct {
	Name       string
	Category   string
	Status     CheckStatus
	Message    string
	Suggestion string
}

// Check defines the interface for diagnostic checks.
type Check interface {
	// Name returns the check's identifier.
	Name() string

	// Category returns the check's category (CONFIG, BACKEND or TERMINAL).
	Category() string

	// Run executes the check and returns the result.
	Run() CheckResult
}

// RunAll executes all checks in order and returns the results.
func RunAll(checks []Check) []CheckResult {
	results := make([]CheckResult, len(checks))
	for i, check := range checks {
		r := check.Run()
		r.Name = check.Name()
		r.Category = check.Category()
		results[i] = r
	}
	return results
}

// GroupByCategory organizes results by their category, keeping run order
// within each group.
func GroupByCategory(results []CheckResult) map[string][]CheckResult {
	grouped := make(map[string][]CheckResult)
	for _, r := range results {
		grouped[r.Category] = append(grouped[r.Category], r)
	}
	return grouped
}

// CountByStatus counts results by status.
func CountByStatus(results []CheckResult) map[CheckStatus]int {
	counts := make(map[CheckStatus]int)
	for _, r := range results {
		counts[r.Status]++
	}
	return counts
}

// HasFailures returns true if any result has a fail status.
func HasFailures(results []CheckResult) bool {
	for _, r := range results {
		if r.Status == StatusFail {
			return true
		}
	}
	return false
}

// Summary returns a summary string of the check results.
func Summary(results []CheckResult) string {
	counts := CountByStatus(results)
	warn := counts[StatusWarn]
	fail := counts[StatusFail]

	if fail == 0 && warn == 0 {
		return "Everything looks good"
	}

	total := warn + fail
	return fmt.Sprintf("%d %s found", total, util.Pluralize(total, "issue", "issues"))
}

// checkFunc adapts a function into a Check.
type checkFunc struct {
	name     string
	category string
	run      func() CheckResult
}

func (c checkFunc) Name() string     { return c.name }
func (c checkFunc) Category() string { return c.category }
func (c checkFunc) Run() CheckResult { return c.run() }

// Failed returns a check that always fails with err. It stands in for checks
// that could not be built, such as an unknown backend.
func Failed(name, category string, err error) Check {
	return checkFunc{name: name, category: category, run: func() CheckResult {
		return failure(err, "")
	}}
}
