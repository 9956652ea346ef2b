package store

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rileyhilliard/rtop/internal/harvest"
)

// Channel names. Per-item channels append a suffix, e.g. "cpu-core-3" or
// "net-eth0-rx".
const (
	ChannelCPU  = "cpu"
	ChannelMem  = "mem"
	ChannelSwap = "swap"
)

// CoreChannel names the series of one CPU core.
func CoreChannel(i int) string { return "cpu-core-" + strconv.Itoa(i) }

// NetChannel names the receive or transmit rate series of an interface.
func NetChannel(iface string, tx bool) string {
	if tx {
		return "net-" + iface + "-tx"
	}
	return "net-" + iface + "-rx"
}

// DiskUsedChannel names the used-percent series of a mount.
func DiskUsedChannel(mount string) string { return "disk-" + mount + "-used" }

// DiskIOChannel names the read or write rate series of a device.
func DiskIOChannel(dev string, write bool) string {
	if write {
		return "disk-" + dev + "-write"
	}
	return "disk-" + dev + "-read"
}

// TempChannel names the series of a temperature sensor.
func TempChannel(sensor string) string { return "temp-" + sensor }

// Config sizes the store.
type Config struct {
	Retention  time.Duration
	MaxSamples int
	// CoreHint is the core count used for process CPU before the first CPU
	// reading arrives.
	CoreHint int
}

// NetRate is an interface with its current throughput.
type NetRate struct {
	harvest.NetInterface
	RxRate float64
	TxRate float64
}

// DiskUsage is a mounted filesystem with its current I/O throughput.
type DiskUsage struct {
	harvest.DiskStats
	ReadRate  float64
	WriteRate float64
}

type counterSample struct {
	a, b uint64
	at   time.Time
}

// Store turns snapshots into time series and keeps the latest value of
// every category.
type Store struct {
	cfg      Config
	series   map[string]*TimeSeries
	lastSeen map[string]time.Time
	counters map[string]counterSample

	cpu      *harvest.CPUStats
	memory   *harvest.MemoryStats
	nets     []NetRate
	disks    []DiskUsage
	temps    []harvest.Temperature
	warnings []error
	updated  time.Time

	unsupported map[harvest.Category]bool

	procs *ProcessTable
}

// New creates a store.
func New(cfg Config) *Store {
	if cfg.Retention <= 0 {
		cfg.Retention = DefaultRetention
	}
	if cfg.MaxSamples < 2 {
		cfg.MaxSamples = DefaultMaxSamples
	}
	if cfg.CoreHint < 1 {
		cfg.CoreHint = 1
	}
	return &Store{
		cfg:      cfg,
		series:   make(map[string]*TimeSeries),
		lastSeen: make(map[string]time.Time),
		counters: make(map[string]counterSample),
		procs:    NewProcessTable(),

		unsupported: make(map[harvest.Category]bool),
	}
}

// Apply folds a snapshot into the store. Categories missing from the
// snapshot keep their previous values.
func (s *Store) Apply(snap *harvest.Snapshot) {
	if snap == nil {
		return
	}

	now := snap.Timestamp
	s.updated = now
	s.warnings = snap.Warnings
	for _, c := range snap.Unsupported {
		s.unsupported[c] = true
	}

	if snap.CPU != nil {
		s.cpu = snap.CPU
		s.push(ChannelCPU, now, snap.CPU.Percent)
		for i, p := range snap.CPU.PerCore {
			s.push(CoreChannel(i), now, p)
		}
	}

	if snap.Memory != nil {
		s.memory = snap.Memory
		s.push(ChannelMem, now, snap.Memory.UsedPercent())
		if snap.Memory.SwapTotal > 0 {
			s.push(ChannelSwap, now, snap.Memory.SwapPercent())
		}
		s.procs.SetMemoryTotal(snap.Memory.TotalBytes)
	}

	if snap.Network != nil {
		s.nets = make([]NetRate, 0, len(snap.Network))
		for _, n := range snap.Network {
			rx, tx := s.rate("net-"+n.Name, now, n.RxBytes, n.TxBytes)
			s.push(NetChannel(n.Name, false), now, rx)
			s.push(NetChannel(n.Name, true), now, tx)
			s.nets = append(s.nets, NetRate{NetInterface: n, RxRate: rx, TxRate: tx})
		}
	}

	if snap.Disks != nil {
		s.disks = make([]DiskUsage, 0, len(snap.Disks))
		for _, d := range snap.Disks {
			s.push(DiskUsedChannel(d.Mount), now, d.UsedPercent())
			r, w := s.rate("disk-"+d.Device, now, d.ReadBytes, d.WriteBytes)
			s.push(DiskIOChannel(d.Device, false), now, r)
			s.push(DiskIOChannel(d.Device, true), now, w)
			s.disks = append(s.disks, DiskUsage{DiskStats: d, ReadRate: r, WriteRate: w})
		}
	}

	if snap.Temperatures != nil {
		s.temps = snap.Temperatures
		for _, t := range snap.Temperatures {
			s.push(TempChannel(t.Sensor), now, t.Celsius)
		}
	}

	if snap.Processes != nil {
		cores := s.cfg.CoreHint
		if s.cpu != nil && s.cpu.Cores > 0 {
			cores = s.cpu.Cores
		}
		s.procs.Update(snap.Processes, now, cores)
	}

	s.expire(now)
}

// push appends to the named series, creating it on first use.
func (s *Store) push(name string, t time.Time, v float64) {
	ts, ok := s.series[name]
	if !ok {
		ts = NewTimeSeries(s.cfg.Retention, s.cfg.MaxSamples)
		s.series[name] = ts
	}
	if ts.Append(t, v) {
		s.lastSeen[name] = t
	}
}

// rate converts a pair of cumulative counters into per-second rates against
// the previous reading under key. The first reading and counter resets
// report zero.
func (s *Store) rate(key string, now time.Time, a, b uint64) (float64, float64) {
	prev, ok := s.counters[key]
	s.counters[key] = counterSample{a: a, b: b, at: now}
	if !ok {
		return 0, 0
	}
	dt := now.Sub(prev.at).Seconds()
	if dt <= 0 {
		return 0, 0
	}
	return float64(delta(prev.a, a)) / dt, float64(delta(prev.b, b)) / dt
}

// expire drops channels that have not been written for a whole retention
// window.
func (s *Store) expire(now time.Time) {
	cutoff := now.Add(-s.cfg.Retention)
	for name, seen := range s.lastSeen {
		if seen.Before(cutoff) {
			delete(s.series, name)
			delete(s.lastSeen, name)
		}
	}
	for key, c := range s.counters {
		if c.at.Before(cutoff) {
			delete(s.counters, key)
		}
	}
}

// Series returns the named series, or nil.
func (s *Store) Series(name string) *TimeSeries {
	return s.series[name]
}

// Channels returns the sorted names of all series starting with prefix.
func (s *Store) Channels(prefix string) []string {
	var out []string
	for name := range s.series {
		if strings.HasPrefix(name, prefix) {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

// CPU returns the latest CPU reading, or nil.
func (s *Store) CPU() *harvest.CPUStats {
	return s.cpu
}

// Memory returns the latest memory reading, or nil.
func (s *Store) Memory() *harvest.MemoryStats {
	return s.memory
}

// Interfaces returns the latest interfaces with their rates.
func (s *Store) Interfaces() []NetRate {
	return s.nets
}

// Disks returns the latest filesystems with their I/O rates.
func (s *Store) Disks() []DiskUsage {
	return s.disks
}

// Temperatures returns the latest sensor readings.
func (s *Store) Temperatures() []harvest.Temperature {
	return s.temps
}

// Supports reports whether category c can still produce data. Once the
// backend disables a category it stays unsupported.
func (s *Store) Supports(c harvest.Category) bool {
	return !s.unsupported[c]
}

// Warnings returns the warnings of the last applied snapshot.
func (s *Store) Warnings() []error {
	return s.warnings
}

// Processes returns the process table.
func (s *Store) Processes() *ProcessTable {
	return s.procs
}

// Updated returns the timestamp of the last applied snapshot.
func (s *Store) Updated() time.Time {
	return s.updated
}

// Retention returns the configured retention window.
func (s *Store) Retention() time.Duration {
	return s.cfg.Retention
}
