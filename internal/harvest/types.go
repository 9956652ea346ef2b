package harvest

import (
	"fmt"
	"strings"
	"time"
)

// TicksPerSecond is the clock tick rate used for cumulative process CPU time.
// Linux exposes utime/stime in USER_HZ (100 on every supported platform) and
// the portable backend converts CPU seconds into the same unit.
const TicksPerSecond = 100

// Category identifies one independently optional group of metrics.
type Category int

const (
	CategoryCPU Category = iota
	CategoryMemory
	CategoryNetwork
	CategoryDisk
	CategoryTemperature
	CategoryProcesses
)

// AllCategories lists every category in collection order.
var AllCategories = []Category{
	CategoryCPU,
	CategoryMemory,
	CategoryNetwork,
	CategoryDisk,
	CategoryTemperature,
	CategoryProcesses,
}

// String returns the lowercase category name.
func (c Category) String() string {
	switch c {
	case CategoryCPU:
		return "cpu"
	case CategoryMemory:
		return "memory"
	case CategoryNetwork:
		return "network"
	case CategoryDisk:
		return "disk"
	case CategoryTemperature:
		return "temperature"
	case CategoryProcesses:
		return "processes"
	default:
		return "unknown"
	}
}

// ParseCategory converts a name such as "cpu" or "temp" into a Category.
func ParseCategory(s string) (Category, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "cpu":
		return CategoryCPU, nil
	case "memory", "mem":
		return CategoryMemory, nil
	case "network", "net":
		return CategoryNetwork, nil
	case "disk", "disks":
		return CategoryDisk, nil
	case "temperature", "temp", "temps":
		return CategoryTemperature, nil
	case "processes", "proc", "procs":
		return CategoryProcesses, nil
	}
	return 0, fmt.Errorf("unknown metric category %q", s)
}

// Snapshot is one normalized, timestamped bundle of readings produced by a
// single harvest. A nil category was not collected on this tick.
type Snapshot struct {
	Timestamp    time.Time
	CPU          *CPUStats
	Memory       *MemoryStats
	Network      []NetInterface
	Disks        []DiskStats
	Temperatures []Temperature
	Processes    []ProcessEntry

	// Warnings holds transient per-item failures from this tick.
	Warnings []error

	// Unsupported lists every category the backend has disabled so far.
	Unsupported []Category
}

// Has reports whether the snapshot carries data for the category.
func (s *Snapshot) Has(c Category) bool {
	if s == nil {
		return false
	}
	switch c {
	case CategoryCPU:
		return s.CPU != nil
	case CategoryMemory:
		return s.Memory != nil
	case CategoryNetwork:
		return s.Network != nil
	case CategoryDisk:
		return s.Disks != nil
	case CategoryTemperature:
		return s.Temperatures != nil
	case CategoryProcesses:
		return s.Processes != nil
	}
	return false
}

// CPUStats contains CPU usage information.
type CPUStats struct {
	// Percent is the aggregate busy percentage since the previous reading.
	Percent float64
	// PerCore holds one busy percentage per logical core.
	PerCore []float64
	Cores   int
	LoadAvg [3]float64
}

// MemoryStats contains memory usage information in bytes.
type MemoryStats struct {
	UsedBytes  uint64
	TotalBytes uint64
	Available  uint64
	Cached     uint64
	SwapUsed   uint64
	SwapTotal  uint64
}

// UsedPercent returns used/total as a percentage.
func (m MemoryStats) UsedPercent() float64 {
	if m.TotalBytes == 0 {
		return 0
	}
	return float64(m.UsedBytes) / float64(m.TotalBytes) * 100
}

// SwapPercent returns swap used/total as a percentage.
func (m MemoryStats) SwapPercent() float64 {
	if m.SwapTotal == 0 {
		return 0
	}
	return float64(m.SwapUsed) / float64(m.SwapTotal) * 100
}

// NetInterface contains cumulative I/O counters for a single interface.
type NetInterface struct {
	Name      string
	RxBytes   uint64
	TxBytes   uint64
	RxPackets uint64
	TxPackets uint64
}

// IsLoopback reports whether the interface is a loopback device.
func (n NetInterface) IsLoopback() bool {
	return n.Name == "lo" || n.Name == "lo0"
}

// DiskStats describes one mounted filesystem and its backing device counters.
type DiskStats struct {
	Device     string
	Mount      string
	FSType     string
	TotalBytes uint64
	UsedBytes  uint64
	ReadBytes  uint64
	WriteBytes uint64
}

// UsedPercent returns used/total as a percentage.
func (d DiskStats) UsedPercent() float64 {
	if d.TotalBytes == 0 {
		return 0
	}
	return float64(d.UsedBytes) / float64(d.TotalBytes) * 100
}

// Temperature is a single sensor reading in degrees Celsius.
type Temperature struct {
	Sensor   string
	Celsius  float64
	High     float64
	Critical float64
}

// ProcessEntry is one process as seen by a single harvest.
// PPID is a plain pid value looked up on demand, never an owning link.
type ProcessEntry struct {
	PID        int32
	PPID       int32
	Name       string
	Command    string
	CPUTicks   uint64
	MemBytes   uint64
	ReadBytes  uint64
	WriteBytes uint64
	State      string
	User       string
}
