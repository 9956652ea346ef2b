// Package testing provides test doubles for the harvest package.
package testing

import (
	"context"
	"sync"

	"github.com/rileyhilliard/rtop/internal/harvest"
)

// FakeSource is a scripted harvest.Source. Every category returns the value
// set on it, or the error set for it, and counts how often it was called.
type FakeSource struct {
	mu sync.Mutex

	CPUStats     *harvest.CPUStats
	MemoryStats  *harvest.MemoryStats
	Interfaces   []harvest.NetInterface
	DiskStats    []harvest.DiskStats
	Temps        []harvest.Temperature
	ProcessList  []harvest.ProcessEntry
	Errors       map[harvest.Category]error
	calls        map[harvest.Category]int
	beforeReturn func(harvest.Category)
}

// NewFakeSource returns a source that supports every category with empty data.
func NewFakeSource() *FakeSource {
	return &FakeSource{
		CPUStats:    &harvest.CPUStats{Cores: 4, PerCore: []float64{0, 0, 0, 0}},
		MemoryStats: &harvest.MemoryStats{TotalBytes: 8 << 30},
		Interfaces:  []harvest.NetInterface{},
		DiskStats:   []harvest.DiskStats{},
		Temps:       []harvest.Temperature{},
		ProcessList: []harvest.ProcessEntry{},
		Errors:      make(map[harvest.Category]error),
		calls:       make(map[harvest.Category]int),
	}
}

// Name implements harvest.Source.
func (f *FakeSource) Name() string { return "fake" }

// SetError makes category c fail with err. A nil err clears it.
func (f *FakeSource) SetError(c harvest.Category, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err == nil {
		delete(f.Errors, c)
		return
	}
	f.Errors[c] = err
}

// SetProcesses replaces the process list returned by Processes.
func (f *FakeSource) SetProcesses(entries []harvest.ProcessEntry) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ProcessList = entries
}

// OnCall registers a hook run inside every capability call, before it
// returns. Tests use it to block a collection mid-flight.
func (f *FakeSource) OnCall(fn func(harvest.Category)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.beforeReturn = fn
}

// Calls returns how many times category c was requested.
func (f *FakeSource) Calls(c harvest.Category) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[c]
}

func (f *FakeSource) enter(c harvest.Category) error {
	f.mu.Lock()
	f.calls[c]++
	hook := f.beforeReturn
	err := f.Errors[c]
	f.mu.Unlock()
	if hook != nil {
		hook(c)
	}
	return err
}

// CPU implements harvest.Source.
func (f *FakeSource) CPU(_ context.Context) (*harvest.CPUStats, error) {
	if err := f.enter(harvest.CategoryCPU); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.CPUStats == nil {
		return nil, nil
	}
	c := *f.CPUStats
	c.PerCore = append([]float64(nil), f.CPUStats.PerCore...)
	return &c, nil
}

// Memory implements harvest.Source.
func (f *FakeSource) Memory(_ context.Context) (*harvest.MemoryStats, error) {
	if err := f.enter(harvest.CategoryMemory); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.MemoryStats == nil {
		return nil, nil
	}
	m := *f.MemoryStats
	return &m, nil
}

// Network implements harvest.Source.
func (f *FakeSource) Network(_ context.Context) ([]harvest.NetInterface, error) {
	if err := f.enter(harvest.CategoryNetwork); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]harvest.NetInterface(nil), f.Interfaces...), nil
}

// Disks implements harvest.Source.
func (f *FakeSource) Disks(_ context.Context) ([]harvest.DiskStats, error) {
	if err := f.enter(harvest.CategoryDisk); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]harvest.DiskStats(nil), f.DiskStats...), nil
}

// Temperatures implements harvest.Source.
func (f *FakeSource) Temperatures(_ context.Context) ([]harvest.Temperature, error) {
	if err := f.enter(harvest.CategoryTemperature); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]harvest.Temperature(nil), f.Temps...), nil
}

// Processes implements harvest.Source.
func (f *FakeSource) Processes(_ context.Context) ([]harvest.ProcessEntry, error) {
	if err := f.enter(harvest.CategoryProcesses); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]harvest.ProcessEntry(nil), f.ProcessList...), nil
}

var _ harvest.Source = (*FakeSource)(nil)
