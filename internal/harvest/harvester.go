package harvest

import (
	"context"
	"errors"
	"sync"
	"time"

	rterrors "github.com/rileyhilliard/rtop/internal/errors"
	"github.com/rileyhilliard/rtop/internal/logger"
)

// Harvester normalizes a Source into Snapshots. It remembers which
// capabilities are permanently unsupported so they are never retried, and
// never fails a collection as a whole.
type Harvester struct {
	src Source
	log logger.Logger
	now func() time.Time

	mu          sync.Mutex
	unsupported map[Category]bool
}

// Option configures a Harvester.
type Option func(*Harvester)

// WithLogger sets the logger used for transient failures.
func WithLogger(l logger.Logger) Option {
	return func(h *Harvester) {
		if l != nil {
			h.log = l
		}
	}
}

// WithClock overrides the snapshot timestamp source. Used by tests.
func WithClock(now func() time.Time) Option {
	return func(h *Harvester) {
		if now != nil {
			h.now = now
		}
	}
}

// New wraps src.
func New(src Source, opts ...Option) *Harvester {
	h := &Harvester{
		src:         src,
		log:         logger.Noop(),
		now:         time.Now,
		unsupported: make(map[Category]bool),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// SourceName returns the name of the wrapped backend.
func (h *Harvester) SourceName() string {
	return h.src.Name()
}

// Probe performs one full collection to discover which capabilities the
// backend supports. It returns a fatal startup error when none are.
func (h *Harvester) Probe(ctx context.Context) (*Snapshot, error) {
	snap := h.Collect(ctx)
	if len(h.Supported()) == 0 {
		return nil, rterrors.NewStartup(
			"No metrics can be collected with the "+h.src.Name()+" backend",
			"Try a different backend with --backend, or check that /proc and /sys are mounted")
	}
	return snap, nil
}

// Supported lists the categories not yet marked unsupported.
func (h *Harvester) Supported() []Category {
	h.mu.Lock()
	defer h.mu.Unlock()
	var out []Category
	for _, c := range AllCategories {
		if !h.unsupported[c] {
			out = append(out, c)
		}
	}
	return out
}

// Unsupported lists the categories disabled after returning ErrUnsupported.
func (h *Harvester) Unsupported() []Category {
	h.mu.Lock()
	defer h.mu.Unlock()
	var out []Category
	for _, c := range AllCategories {
		if h.unsupported[c] {
			out = append(out, c)
		}
	}
	return out
}

// IsSupported reports whether c is still being collected.
func (h *Harvester) IsSupported(c Category) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return !h.unsupported[c]
}

// Collect gathers the requested categories, or all of them when none are
// given. Per-item and per-category failures land in Snapshot.Warnings.
func (h *Harvester) Collect(ctx context.Context, categories ...Category) *Snapshot {
	if len(categories) == 0 {
		categories = AllCategories
	}

	snap := &Snapshot{Timestamp: h.now()}
	for _, c := range categories {
		if !h.IsSupported(c) {
			continue
		}
		if err := ctx.Err(); err != nil {
			snap.Warnings = append(snap.Warnings, &TransientError{Category: c, Err: err})
			continue
		}
		h.collectOne(ctx, c, snap)
	}
	snap.Unsupported = h.Unsupported()
	return snap
}

func (h *Harvester) collectOne(ctx context.Context, c Category, snap *Snapshot) {
	var err error

	switch c {
	case CategoryCPU:
		var v *CPUStats
		if v, err = h.src.CPU(ctx); v != nil && usable(err) {
			snap.CPU = v
		}
	case CategoryMemory:
		var v *MemoryStats
		if v, err = h.src.Memory(ctx); v != nil && usable(err) {
			snap.Memory = v
		}
	case CategoryNetwork:
		var v []NetInterface
		if v, err = h.src.Network(ctx); usable(err) {
			snap.Network = nonNil(v)
		}
	case CategoryDisk:
		var v []DiskStats
		if v, err = h.src.Disks(ctx); usable(err) {
			snap.Disks = nonNil(v)
		}
	case CategoryTemperature:
		var v []Temperature
		if v, err = h.src.Temperatures(ctx); usable(err) {
			snap.Temperatures = nonNil(v)
		}
	case CategoryProcesses:
		var v []ProcessEntry
		if v, err = h.src.Processes(ctx); usable(err) {
			snap.Processes = nonNil(v)
		}
	}

	if err == nil {
		return
	}

	var partial *PartialError
	switch {
	case errors.As(err, &partial):
		for _, item := range partial.Items {
			snap.Warnings = append(snap.Warnings, item)
		}
		h.log.Debug("%s: %v", h.src.Name(), err)
	case errors.Is(err, ErrUnsupported):
		h.mu.Lock()
		h.unsupported[c] = true
		h.mu.Unlock()
		h.log.Info("%s: %s not supported, disabling: %v", h.src.Name(), c, err)
	default:
		snap.Warnings = append(snap.Warnings, &TransientError{Category: c, Err: err})
		h.log.Debug("%s: %s collection failed: %v", h.src.Name(), c, err)
	}
}

// usable reports whether data returned alongside err belongs in the snapshot.
func usable(err error) bool {
	if err == nil {
		return true
	}
	var partial *PartialError
	return errors.As(err, &partial)
}

// nonNil turns a nil slice into an empty one so "collected but empty" is
// distinguishable from "not collected".
func nonNil[T any](v []T) []T {
	if v == nil {
		return []T{}
	}
	return v
}
