package doctor

import (
	"context"
	stderrors "errors"
	"fmt"

	"github.com/rileyhilliard/rtop/internal/harvest"
	"github.com/rileyhilliard/rtop/internal/util"
)

// BackendChecks collects one snapshot from src and returns a check for the
// backend as a whole followed by one per metric category.
func BackendChecks(ctx context.Context, src harvest.Source) []Check {
	h := harvest.New(src)
	snap := h.Collect(ctx)

	checks := []Check{checkFunc{
		name:     "backend",
		category: CategoryBackend,
		run: func() CheckResult {
			n := len(h.Supported())
			if n == 0 {
				return CheckResult{
					Status:     StatusFail,
					Message:    fmt.Sprintf("The %s backend can't collect any metrics", src.Name()),
					Suggestion: "Try a different backend with --backend, or check that /proc and /sys are mounted.",
				}
			}
			return CheckResult{
				Status:  StatusPass,
				Message: fmt.Sprintf("%s backend, %d of %d categories available", src.Name(), n, len(harvest.AllCategories)),
			}
		},
	}}

	for _, c := range harvest.AllCategories {
		checks = append(checks, checkFunc{
			name:     c.String(),
			category: CategoryBackend,
			run:      func() CheckResult { return categoryResult(h, snap, c) },
		})
	}
	return checks
}

func categoryResult(h *harvest.Harvester, snap *harvest.Snapshot, c harvest.Category) CheckResult {
	if !h.IsSupported(c) {
		return CheckResult{
			Status:     StatusWarn,
			Message:    fmt.Sprintf("%s: not supported by the %s backend", c, h.SourceName()),
			Suggestion: "The widget will show 'not supported'. Another --backend may provide it.",
		}
	}
	if !snap.Has(c) {
		msg := fmt.Sprintf("%s: collection failed", c)
		if err := categoryWarning(snap, c); err != nil {
			msg = err.Error()
		}
		return CheckResult{
			Status:     StatusWarn,
			Message:    msg,
			Suggestion: "rtop retries every tick; run with RTOP_DEBUG=1 to log the failures.",
		}
	}
	if c == harvest.CategoryTemperature && len(snap.Temperatures) == 0 {
		return CheckResult{
			Status:     StatusWarn,
			Message:    "temperature: no sensors found",
			Suggestion: "Virtual machines and containers often expose no sensors.",
		}
	}
	return CheckResult{Status: StatusPass, Message: fmt.Sprintf("%s: %s", c, describe(snap, c))}
}

// categoryWarning returns the first transient failure recorded for c.
func categoryWarning(snap *harvest.Snapshot, c harvest.Category) error {
	for _, w := range snap.Warnings {
		var te *harvest.TransientError
		if stderrors.As(w, &te) && te.Category == c {
			return te
		}
	}
	return nil
}

func describe(snap *harvest.Snapshot, c harvest.Category) string {
	switch c {
	case harvest.CategoryCPU:
		return fmt.Sprintf("%d %s", snap.CPU.Cores, util.Pluralize(snap.CPU.Cores, "core", "cores"))
	case harvest.CategoryMemory:
		return util.FormatBytes(snap.Memory.TotalBytes) + " total"
	case harvest.CategoryNetwork:
		return count(len(snap.Network), "interface", "interfaces")
	case harvest.CategoryDisk:
		return count(len(snap.Disks), "filesystem", "filesystems")
	case harvest.CategoryTemperature:
		return count(len(snap.Temperatures), "sensor", "sensors")
	case harvest.CategoryProcesses:
		return count(len(snap.Processes), "process", "processes")
	}
	return "ok"
}

func count(n int, singular, plural string) string {
	return fmt.Sprintf("%d %s", n, util.Pluralize(n, singular, plural))
}
