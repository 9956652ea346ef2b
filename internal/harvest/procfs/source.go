//go:build linux

package procfs

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"os/user"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/rileyhilliard/rtop/internal/harvest"
	"github.com/rileyhilliard/rtop/internal/logger"
	"golang.org/x/sys/unix"
)

// StatfsFunc reports total and free bytes of the filesystem mounted at path.
type StatfsFunc func(path string) (total, free uint64, err error)

// Source reads metrics from a procfs tree rooted at Root.
type Source struct {
	root     string
	log      logger.Logger
	statfs   StatfsFunc
	lookupID func(uid string) (string, error)
	pageSize uint64

	mu      sync.Mutex
	jiffies *harvest.JiffyTracker
	users   map[uint32]string
}

// Option configures a Source.
type Option func(*Source)

// WithRoot reads /proc and /sys relative to dir instead of "/".
func WithRoot(dir string) Option {
	return func(s *Source) { s.root = dir }
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Source) {
		if l != nil {
			s.log = l
		}
	}
}

// WithStatfs overrides how mount usage is measured.
func WithStatfs(fn StatfsFunc) Option {
	return func(s *Source) { s.statfs = fn }
}

// WithUserLookup overrides uid to user name resolution.
func WithUserLookup(fn func(uid string) (string, error)) Option {
	return func(s *Source) { s.lookupID = fn }
}

// New creates a procfs source.
func New(opts ...Option) *Source {
	s := &Source{
		root:     "/",
		log:      logger.Noop(),
		statfs:   unixStatfs,
		lookupID: lookupUsername,
		pageSize: uint64(os.Getpagesize()),
		jiffies:  harvest.NewJiffyTracker(),
		users:    make(map[uint32]string),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name implements harvest.Source.
func (s *Source) Name() string { return "procfs" }

func (s *Source) path(parts ...string) string {
	return filepath.Join(append([]string{s.root}, parts...)...)
}

func (s *Source) read(parts ...string) (string, error) {
	b, err := os.ReadFile(s.path(parts...))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// missing converts a file-not-found error into an unsupported capability.
func missing(c harvest.Category, err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return harvest.Unsupported(c, err.Error())
	}
	return err
}

// CPU implements harvest.Source.
func (s *Source) CPU(_ context.Context) (*harvest.CPUStats, error) {
	raw, err := s.read("proc", "stat")
	if err != nil {
		return nil, missing(harvest.CategoryCPU, err)
	}
	info, err := ParseStat(raw)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	stats := &harvest.CPUStats{
		Percent: s.jiffies.Percent(-1, info.Total),
		Cores:   len(info.PerCore),
		PerCore: make([]float64, len(info.PerCore)),
	}
	for i, j := range info.PerCore {
		stats.PerCore[i] = s.jiffies.Percent(i, j)
	}
	s.mu.Unlock()

	// Load average is a detail; the CPU category stands without it.
	if raw, err := s.read("proc", "loadavg"); err == nil {
		if avg, err := ParseLoadavg(raw); err == nil {
			stats.LoadAvg = avg
		}
	}
	return stats, nil
}

// Memory implements harvest.Source.
func (s *Source) Memory(_ context.Context) (*harvest.MemoryStats, error) {
	raw, err := s.read("proc", "meminfo")
	if err != nil {
		return nil, missing(harvest.CategoryMemory, err)
	}
	return ParseMeminfo(raw)
}

// Network implements harvest.Source.
func (s *Source) Network(_ context.Context) ([]harvest.NetInterface, error) {
	raw, err := s.read("proc", "net", "dev")
	if err != nil {
		return nil, missing(harvest.CategoryNetwork, err)
	}
	return ParseNetDev(raw)
}

// Disks implements harvest.Source.
func (s *Source) Disks(ctx context.Context) ([]harvest.DiskStats, error) {
	raw, err := s.read("proc", "mounts")
	if err != nil {
		return nil, missing(harvest.CategoryDisk, err)
	}

	io := map[string]DiskIO{}
	if rawIO, err := s.read("proc", "diskstats"); err == nil {
		if parsed, err := ParseDiskstats(rawIO); err == nil {
			io = parsed
		}
	}

	partial := &harvest.PartialError{Category: harvest.CategoryDisk}
	var disks []harvest.DiskStats
	for _, m := range ParseMounts(raw) {
		if ctx.Err() != nil {
			partial.Add(m.Point, ctx.Err())
			continue
		}
		total, free, err := s.statfs(m.Point)
		if err != nil {
			partial.Add(m.Point, err)
			continue
		}
		dev := strings.TrimPrefix(m.Device, "/dev/")
		d := harvest.DiskStats{
			Device:     dev,
			Mount:      m.Point,
			FSType:     m.FSType,
			TotalBytes: total,
			ReadBytes:  io[dev].ReadBytes,
			WriteBytes: io[dev].WriteBytes,
		}
		if free < total {
			d.UsedBytes = total - free
		}
		disks = append(disks, d)
	}
	return disks, partial.OrNil()
}

// Temperatures implements harvest.Source using the thermal zone class.
func (s *Source) Temperatures(_ context.Context) ([]harvest.Temperature, error) {
	zones, _ := filepath.Glob(s.path("sys", "class", "thermal", "thermal_zone*"))
	if len(zones) == 0 {
		return nil, harvest.Unsupported(harvest.CategoryTemperature, "no thermal zones")
	}
	sort.Strings(zones)

	partial := &harvest.PartialError{Category: harvest.CategoryTemperature}
	var temps []harvest.Temperature
	for _, zone := range zones {
		name := filepath.Base(zone)
		if b, err := os.ReadFile(filepath.Join(zone, "type")); err == nil {
			name = strings.TrimSpace(string(b))
		}
		b, err := os.ReadFile(filepath.Join(zone, "temp"))
		if err != nil {
			partial.Add(name, err)
			continue
		}
		milli, err := strconv.ParseFloat(strings.TrimSpace(string(b)), 64)
		if err != nil {
			partial.Add(name, err)
			continue
		}
		temps = append(temps, harvest.Temperature{Sensor: name, Celsius: milli / 1000})
	}
	return temps, partial.OrNil()
}

// Processes implements harvest.Source.
//
// A process that exits between the directory listing and the detail reads is
// skipped as a transient item. An unreadable /proc/[pid]/io (other users'
// processes) only leaves the I/O counters at zero.
func (s *Source) Processes(ctx context.Context) ([]harvest.ProcessEntry, error) {
	entries, err := os.ReadDir(s.path("proc"))
	if err != nil {
		return nil, missing(harvest.CategoryProcesses, err)
	}

	partial := &harvest.PartialError{Category: harvest.CategoryProcesses}
	var procs []harvest.ProcessEntry
	for _, e := range entries {
		pid, err := strconv.ParseInt(e.Name(), 10, 32)
		if err != nil || !e.IsDir() {
			continue
		}
		if ctx.Err() != nil {
			return procs, ctx.Err()
		}

		p, err := s.readProcess(e.Name())
		if err != nil {
			partial.Add(strconv.FormatInt(pid, 10), err)
			continue
		}
		procs = append(procs, *p)
	}

	sort.Slice(procs, func(i, j int) bool { return procs[i].PID < procs[j].PID })
	if n := len(partial.Items); n > 0 {
		s.log.Debug("read %d processes, skipped %d", len(procs), n)
	}
	return procs, partial.OrNil()
}

func (s *Source) readProcess(pid string) (*harvest.ProcessEntry, error) {
	rawStat, err := s.read("proc", pid, "stat")
	if err != nil {
		return nil, err
	}
	st, err := ParsePidStat(rawStat)
	if err != nil {
		return nil, err
	}

	p := &harvest.ProcessEntry{
		PID:      st.PID,
		PPID:     st.PPID,
		Name:     st.Comm,
		State:    StateName(st.State),
		CPUTicks: st.UTime + st.STime,
		MemBytes: st.RSSPages * s.pageSize,
	}

	if raw, err := s.read("proc", pid, "status"); err == nil {
		status := ParsePidStatus(raw)
		if status.RSSBytes > 0 {
			p.MemBytes = status.RSSBytes
		}
		if status.HasUID {
			p.User = s.username(status.UID)
		}
	}

	if raw, err := os.ReadFile(s.path("proc", pid, "cmdline")); err == nil {
		p.Command = ParseCmdline(raw)
	}
	if p.Command == "" {
		p.Command = "[" + p.Name + "]"
	}

	if raw, err := s.read("proc", pid, "io"); err == nil {
		io := ParsePidIO(raw)
		p.ReadBytes, p.WriteBytes = io.ReadBytes, io.WriteBytes
	}
	return p, nil
}

func (s *Source) username(uid uint32) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if name, ok := s.users[uid]; ok {
		return name
	}
	id := strconv.FormatUint(uint64(uid), 10)
	name, err := s.lookupID(id)
	if err != nil || name == "" {
		name = id
	}
	s.users[uid] = name
	return name
}

func lookupUsername(uid string) (string, error) {
	u, err := user.LookupId(uid)
	if err != nil {
		return "", err
	}
	return u.Username, nil
}

func unixStatfs(path string) (total, free uint64, err error) {
	var st unix.Statfs_t
	if err := unix.Statfs(path, &st); err != nil {
		return 0, 0, err
	}
	bsize := uint64(st.Bsize)
	return st.Blocks * bsize, st.Bfree * bsize, nil
}

var _ harvest.Source = (*Source)(nil)
