// Package psutil implements harvest.Source on top of gopsutil, which covers
// macOS, the BSDs and Windows as well as Linux.
package psutil

import (
	"context"
	"math"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/rileyhilliard/rtop/internal/harvest"
	"github.com/rileyhilliard/rtop/internal/logger"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/load"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/net"
	"github.com/shirou/gopsutil/v3/process"
)

// notImplemented is the message gopsutil uses for calls with no
// implementation on the running OS. Its error value lives in an internal
// package, so the text is the only stable handle.
const notImplemented = "not implemented yet"

// Source collects metrics through gopsutil.
type Source struct {
	log logger.Logger

	mu      sync.Mutex
	jiffies *harvest.JiffyTracker
}

// New creates a gopsutil source.
func New(log logger.Logger) *Source {
	if log == nil {
		log = logger.Noop()
	}
	return &Source{log: log, jiffies: harvest.NewJiffyTracker()}
}

// Name implements harvest.Source.
func (s *Source) Name() string { return "psutil" }

// classify maps gopsutil's not-implemented error onto ErrUnsupported.
func classify(c harvest.Category, err error) error {
	if err == nil {
		return nil
	}
	if strings.Contains(err.Error(), notImplemented) {
		return harvest.Unsupported(c, err.Error())
	}
	return err
}

// toJiffies converts gopsutil's CPU seconds into clock ticks. Guest time is
// already included in user and nice.
func toJiffies(t cpu.TimesStat) harvest.Jiffies {
	idle := t.Idle + t.Iowait
	total := t.User + t.Nice + t.System + idle + t.Irq + t.Softirq + t.Steal
	return harvest.Jiffies{Total: secondsToTicks(total), Idle: secondsToTicks(idle)}
}

func secondsToTicks(sec float64) uint64 {
	if sec <= 0 {
		return 0
	}
	return uint64(math.Round(sec * harvest.TicksPerSecond))
}

// CPU implements harvest.Source.
func (s *Source) CPU(ctx context.Context) (*harvest.CPUStats, error) {
	total, err := cpu.TimesWithContext(ctx, false)
	if err != nil {
		return nil, classify(harvest.CategoryCPU, err)
	}
	if len(total) == 0 {
		return nil, harvest.Unsupported(harvest.CategoryCPU, "no cpu times")
	}
	perCore, err := cpu.TimesWithContext(ctx, true)
	if err != nil {
		s.log.Debug("psutil: per-core times: %v", err)
	}

	s.mu.Lock()
	stats := &harvest.CPUStats{
		Percent: s.jiffies.Percent(-1, toJiffies(total[0])),
		Cores:   len(perCore),
		PerCore: make([]float64, len(perCore)),
	}
	for i, t := range perCore {
		stats.PerCore[i] = s.jiffies.Percent(i, toJiffies(t))
	}
	s.mu.Unlock()

	if stats.Cores == 0 {
		if n, err := cpu.CountsWithContext(ctx, true); err == nil {
			stats.Cores = n
		}
	}
	if avg, err := load.AvgWithContext(ctx); err == nil && avg != nil {
		stats.LoadAvg = [3]float64{avg.Load1, avg.Load5, avg.Load15}
	}
	return stats, nil
}

// Memory implements harvest.Source.
func (s *Source) Memory(ctx context.Context) (*harvest.MemoryStats, error) {
	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return nil, classify(harvest.CategoryMemory, err)
	}
	stats := &harvest.MemoryStats{
		UsedBytes:  vm.Used,
		TotalBytes: vm.Total,
		Available:  vm.Available,
		Cached:     vm.Cached + vm.Buffers,
	}
	// Swap is optional; some systems run without it.
	if sw, err := mem.SwapMemoryWithContext(ctx); err == nil {
		stats.SwapUsed, stats.SwapTotal = sw.Used, sw.Total
	}
	return stats, nil
}

// Network implements harvest.Source.
func (s *Source) Network(ctx context.Context) ([]harvest.NetInterface, error) {
	counters, err := net.IOCountersWithContext(ctx, true)
	if err != nil {
		return nil, classify(harvest.CategoryNetwork, err)
	}
	out := make([]harvest.NetInterface, 0, len(counters))
	for _, c := range counters {
		out = append(out, harvest.NetInterface{
			Name:      c.Name,
			RxBytes:   c.BytesRecv,
			TxBytes:   c.BytesSent,
			RxPackets: c.PacketsRecv,
			TxPackets: c.PacketsSent,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Disks implements harvest.Source.
func (s *Source) Disks(ctx context.Context) ([]harvest.DiskStats, error) {
	parts, err := disk.PartitionsWithContext(ctx, false)
	if err != nil && len(parts) == 0 {
		return nil, classify(harvest.CategoryDisk, err)
	}

	io, err := disk.IOCountersWithContext(ctx)
	if err != nil {
		s.log.Debug("psutil: disk io counters: %v", err)
	}

	partial := &harvest.PartialError{Category: harvest.CategoryDisk}
	var disks []harvest.DiskStats
	seen := make(map[string]bool)
	for _, p := range parts {
		if seen[p.Device] {
			continue
		}
		seen[p.Device] = true

		usage, err := disk.UsageWithContext(ctx, p.Mountpoint)
		if err != nil {
			partial.Add(p.Mountpoint, err)
			continue
		}
		dev := deviceName(p.Device)
		d := harvest.DiskStats{
			Device:     dev,
			Mount:      p.Mountpoint,
			FSType:     p.Fstype,
			TotalBytes: usage.Total,
			UsedBytes:  usage.Used,
		}
		if c, ok := io[dev]; ok {
			d.ReadBytes, d.WriteBytes = c.ReadBytes, c.WriteBytes
		}
		disks = append(disks, d)
	}
	return disks, partial.OrNil()
}

// deviceName strips the directory from a device path, so "/dev/sda1"
// matches the "sda1" key gopsutil uses for I/O counters.
func deviceName(device string) string {
	if i := strings.LastIndexByte(device, '/'); i >= 0 {
		return device[i+1:]
	}
	return device
}

// Temperatures implements harvest.Source.
func (s *Source) Temperatures(ctx context.Context) ([]harvest.Temperature, error) {
	sensors, err := host.SensorsTemperaturesWithContext(ctx)
	if len(sensors) == 0 {
		if err == nil {
			return nil, harvest.Unsupported(harvest.CategoryTemperature, "no sensors found")
		}
		return nil, classify(harvest.CategoryTemperature, err)
	}

	temps := make([]harvest.Temperature, 0, len(sensors))
	for _, t := range sensors {
		temps = append(temps, harvest.Temperature{
			Sensor:   t.SensorKey,
			Celsius:  t.Temperature,
			High:     t.High,
			Critical: t.Critical,
		})
	}
	sort.SliceStable(temps, func(i, j int) bool { return temps[i].Sensor < temps[j].Sensor })

	// gopsutil returns the sensors it could read together with warnings for
	// the rest.
	if err != nil {
		partial := &harvest.PartialError{Category: harvest.CategoryTemperature}
		partial.Add("sensors", err)
		return temps, partial
	}
	return temps, nil
}

// Processes implements harvest.Source.
func (s *Source) Processes(ctx context.Context) ([]harvest.ProcessEntry, error) {
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return nil, classify(harvest.CategoryProcesses, err)
	}

	partial := &harvest.PartialError{Category: harvest.CategoryProcesses}
	out := make([]harvest.ProcessEntry, 0, len(procs))
	for _, p := range procs {
		if ctx.Err() != nil {
			return out, ctx.Err()
		}
		e, err := readProcess(ctx, p)
		if err != nil {
			partial.Add(strconv.Itoa(int(p.Pid)), err)
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PID < out[j].PID })
	return out, partial.OrNil()
}

// readProcess fills one entry. Only the name is required; the other fields
// are commonly denied for processes of other users and stay zero.
func readProcess(ctx context.Context, p *process.Process) (harvest.ProcessEntry, error) {
	e := harvest.ProcessEntry{PID: p.Pid}

	name, err := p.NameWithContext(ctx)
	if err != nil {
		return e, err
	}
	e.Name = name

	if ppid, err := p.PpidWithContext(ctx); err == nil {
		e.PPID = ppid
	}
	if cmd, err := p.CmdlineWithContext(ctx); err == nil {
		e.Command = cmd
	}
	if e.Command == "" {
		e.Command = "[" + name + "]"
	}
	if t, err := p.TimesWithContext(ctx); err == nil && t != nil {
		e.CPUTicks = secondsToTicks(t.User + t.System)
	}
	if m, err := p.MemoryInfoWithContext(ctx); err == nil && m != nil {
		e.MemBytes = m.RSS
	}
	if io, err := p.IOCountersWithContext(ctx); err == nil && io != nil {
		e.ReadBytes, e.WriteBytes = io.ReadBytes, io.WriteBytes
	}
	if st, err := p.StatusWithContext(ctx); err == nil {
		e.State = statusName(st)
	}
	if u, err := p.UsernameWithContext(ctx); err == nil {
		e.User = u
	}
	return e, nil
}

// statusName joins gopsutil's status list ("running", "sleep", ...) into
// the single word shown in the process table.
func statusName(status []string) string {
	switch len(status) {
	case 0:
		return ""
	case 1:
		if status[0] == process.Sleep {
			return "sleeping"
		}
		return status[0]
	}
	return strings.Join(status, ",")
}

var _ harvest.Source = (*Source)(nil)
