package harvest

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrUnsupported marks a capability that the backend can never provide on
// this OS or build. The harvester stops asking for it after the first time.
var ErrUnsupported = errors.New("capability not supported")

// Source is the per-OS capability interface consumed by the Harvester.
//
// Every method is independently optional: it returns data, or an error
// wrapping ErrUnsupported, or data together with a *PartialError listing the
// items that could not be read. A nil result with any other error means the
// whole category failed for this tick only.
type Source interface {
	Name() string
	CPU(ctx context.Context) (*CPUStats, error)
	Memory(ctx context.Context) (*MemoryStats, error)
	Network(ctx context.Context) ([]NetInterface, error)
	Disks(ctx context.Context) ([]DiskStats, error)
	Temperatures(ctx context.Context) ([]Temperature, error)
	Processes(ctx context.Context) ([]ProcessEntry, error)
}

// Unsupported returns an error wrapping ErrUnsupported for the category.
func Unsupported(c Category, reason string) error {
	if reason == "" {
		return fmt.Errorf("%s: %w", c, ErrUnsupported)
	}
	return fmt.Errorf("%s: %s: %w", c, reason, ErrUnsupported)
}

// TransientError is a single metric item that could not be read this tick.
type TransientError struct {
	Category Category
	Item     string
	Err      error
}

func (e *TransientError) Error() string {
	if e.Item == "" {
		return fmt.Sprintf("%s: %v", e.Category, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Category, e.Item, e.Err)
}

func (e *TransientError) Unwrap() error {
	return e.Err
}

// PartialError collects the items skipped while reading one category.
type PartialError struct {
	Category Category
	Items    []*TransientError
}

// Add records a skipped item.
func (p *PartialError) Add(item string, err error) {
	p.Items = append(p.Items, &TransientError{Category: p.Category, Item: item, Err: err})
}

// OrNil returns p when at least one item was skipped, nil otherwise.
func (p *PartialError) OrNil() error {
	if p == nil || len(p.Items) == 0 {
		return nil
	}
	return p
}

func (p *PartialError) Error() string {
	parts := make([]string, 0, len(p.Items))
	for _, it := range p.Items {
		parts = append(parts, it.Error())
	}
	return fmt.Sprintf("%d %s item(s) skipped: %s", len(p.Items), p.Category, strings.Join(parts, "; "))
}

// Unwrap exposes the individual item errors to errors.Is/errors.As.
func (p *PartialError) Unwrap() []error {
	out := make([]error, len(p.Items))
	for i, it := range p.Items {
		out[i] = it
	}
	return out
}
