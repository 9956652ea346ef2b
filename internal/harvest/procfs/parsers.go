// Package procfs implements harvest.Source by reading the Linux /proc and
// /sys pseudo filesystems directly. The text parsers build on every OS so
// they can be tested anywhere; the reader itself is Linux only.
package procfs

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"

	"github.com/rileyhilliard/rtop/internal/harvest"
)

// StatInfo holds the cumulative CPU counters from /proc/stat.
type StatInfo struct {
	Total   harvest.Jiffies
	PerCore []harvest.Jiffies
}

// ParseStat parses the cpu lines of /proc/stat.
func ParseStat(procStat string) (*StatInfo, error) {
	info := &StatInfo{}
	found := false

	scanner := bufio.NewScanner(strings.NewReader(procStat))
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "cpu") {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < 5 {
			return nil, fmt.Errorf("invalid /proc/stat cpu line: %s", line)
		}

		// Fields: cpu user nice system idle iowait irq softirq steal guest guest_nice
		// guest and guest_nice are already counted in user and nice.
		var j harvest.Jiffies
		for i := 1; i < len(fields) && i <= 8; i++ {
			val, err := strconv.ParseUint(fields[i], 10, 64)
			if err != nil {
				return nil, fmt.Errorf("failed to parse cpu field %d: %w", i, err)
			}
			j.Total += val
			// idle is field 4, iowait is field 5
			if i == 4 || i == 5 {
				j.Idle += val
			}
		}

		if fields[0] == "cpu" {
			info.Total = j
			found = true
		} else {
			info.PerCore = append(info.PerCore, j)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error scanning /proc/stat: %w", err)
	}
	if !found {
		return nil, fmt.Errorf("no aggregate cpu line in /proc/stat")
	}
	return info, nil
}

// ParseLoadavg parses the first three fields of /proc/loadavg.
func ParseLoadavg(procLoadavg string) ([3]float64, error) {
	var out [3]float64
	fields := strings.Fields(strings.TrimSpace(procLoadavg))
	if len(fields) < 3 {
		return out, fmt.Errorf("invalid /proc/loadavg: %q", procLoadavg)
	}
	for i := 0; i < 3; i++ {
		val, err := strconv.ParseFloat(fields[i], 64)
		if err != nil {
			return out, fmt.Errorf("failed to parse loadavg field %d: %w", i, err)
		}
		out[i] = val
	}
	return out, nil
}

// ParseMeminfo parses memory and swap figures from /proc/meminfo.
func ParseMeminfo(procMeminfo string) (*harvest.MemoryStats, error) {
	var memTotal, memFree, memAvailable, buffers, cached, swapTotal, swapFree uint64
	foundFields := 0

	scanner := bufio.NewScanner(strings.NewReader(procMeminfo))
	for scanner.Scan() {
		parts := strings.Fields(scanner.Text())
		if len(parts) < 2 {
			continue
		}

		key := strings.TrimSuffix(parts[0], ":")
		val, err := strconv.ParseUint(parts[1], 10, 64)
		if err != nil {
			continue
		}
		// Values in /proc/meminfo are in kB
		valBytes := val * 1024

		switch key {
		case "MemTotal":
			memTotal = valBytes
			foundFields++
		case "MemFree":
			memFree = valBytes
			foundFields++
		case "MemAvailable":
			memAvailable = valBytes
		case "Buffers":
			buffers = valBytes
		case "Cached":
			cached = valBytes
		case "SwapTotal":
			swapTotal = valBytes
		case "SwapFree":
			swapFree = valBytes
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error scanning /proc/meminfo: %w", err)
	}
	if foundFields < 2 {
		return nil, fmt.Errorf("insufficient memory info found in /proc/meminfo")
	}

	stats := &harvest.MemoryStats{
		TotalBytes: memTotal,
		Available:  memAvailable,
		Cached:     cached + buffers,
		SwapTotal:  swapTotal,
	}
	if used := memFree + buffers + cached; used < memTotal {
		stats.UsedBytes = memTotal - used
	}
	if swapFree < swapTotal {
		stats.SwapUsed = swapTotal - swapFree
	}
	return stats, nil
}

// ParseNetDev parses per-interface counters from /proc/net/dev.
func ParseNetDev(procNetDev string) ([]harvest.NetInterface, error) {
	var interfaces []harvest.NetInterface
	scanner := bufio.NewScanner(strings.NewReader(procNetDev))

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		// Skip the two header lines
		if lineNum <= 2 {
			continue
		}

		// Format: "  iface: bytes packets errs drop fifo frame compressed multicast | bytes packets..."
		parts := strings.SplitN(scanner.Text(), ":", 2)
		if len(parts) != 2 {
			continue
		}

		name := strings.TrimSpace(parts[0])
		fields := strings.Fields(parts[1])
		if len(fields) < 16 {
			continue
		}

		var vals [4]uint64
		for i, idx := range []int{0, 1, 8, 9} {
			v, err := strconv.ParseUint(fields[idx], 10, 64)
			if err != nil {
				return nil, fmt.Errorf("failed to parse field %d for %s: %w", idx, name, err)
			}
			vals[i] = v
		}

		interfaces = append(interfaces, harvest.NetInterface{
			Name:      name,
			RxBytes:   vals[0],
			RxPackets: vals[1],
			TxBytes:   vals[2],
			TxPackets: vals[3],
		})
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error scanning /proc/net/dev: %w", err)
	}
	return interfaces, nil
}

// Mount is one line of /proc/mounts.
type Mount struct {
	Device string
	Point  string
	FSType string
}

// pseudoFS lists filesystem types that never back real storage.
var pseudoFS = map[string]bool{
	"proc": true, "sysfs": true, "devtmpfs": true, "devpts": true, "tmpfs": true,
	"cgroup": true, "cgroup2": true, "pstore": true, "securityfs": true, "debugfs": true,
	"tracefs": true, "configfs": true, "fusectl": true, "mqueue": true, "hugetlbfs": true,
	"bpf": true, "autofs": true, "binfmt_misc": true, "nsfs": true, "overlay": true,
	"squashfs": true, "efivarfs": true, "rpc_pipefs": true, "ramfs": true,
}

// ParseMounts returns the block-device backed mounts from /proc/mounts,
// keeping the first mount of each device.
func ParseMounts(procMounts string) []Mount {
	var mounts []Mount
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(strings.NewReader(procMounts))
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 3 {
			continue
		}
		dev, point, fstype := fields[0], unescapeMount(fields[1]), fields[2]
		if pseudoFS[fstype] || !strings.HasPrefix(dev, "/dev/") || seen[dev] {
			continue
		}
		seen[dev] = true
		mounts = append(mounts, Mount{Device: dev, Point: point, FSType: fstype})
	}
	return mounts
}

// unescapeMount decodes the octal escapes /proc/mounts uses for spaces and tabs.
func unescapeMount(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+3 < len(s) {
			if v, err := strconv.ParseUint(s[i+1:i+4], 8, 8); err == nil {
				b.WriteByte(byte(v))
				i += 3
				continue
			}
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

// DiskIO is the cumulative byte counters of one block device.
type DiskIO struct {
	ReadBytes  uint64
	WriteBytes uint64
}

// sectorSize is the fixed unit of /proc/diskstats sector counters.
const sectorSize = 512

// ParseDiskstats parses /proc/diskstats into per-device byte counters keyed
// by device name without the /dev/ prefix.
func ParseDiskstats(procDiskstats string) (map[string]DiskIO, error) {
	out := make(map[string]DiskIO)
	scanner := bufio.NewScanner(strings.NewReader(procDiskstats))
	for scanner.Scan() {
		// major minor name reads merged sectors_read ms writes merged sectors_written ...
		fields := strings.Fields(scanner.Text())
		if len(fields) < 10 {
			continue
		}
		read, err := strconv.ParseUint(fields[5], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("failed to parse sectors read for %s: %w", fields[2], err)
		}
		written, err := strconv.ParseUint(fields[9], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("failed to parse sectors written for %s: %w", fields[2], err)
		}
		out[fields[2]] = DiskIO{ReadBytes: read * sectorSize, WriteBytes: written * sectorSize}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error scanning /proc/diskstats: %w", err)
	}
	return out, nil
}

// PidStat is the subset of /proc/[pid]/stat used for the process table.
type PidStat struct {
	PID      int32
	Comm     string
	State    string
	PPID     int32
	UTime    uint64
	STime    uint64
	RSSPages uint64
}

// ParsePidStat parses /proc/[pid]/stat. The command name may contain spaces
// and parentheses, so it is delimited by the first '(' and the last ')'.
func ParsePidStat(stat string) (*PidStat, error) {
	open := strings.IndexByte(stat, '(')
	closeIdx := strings.LastIndexByte(stat, ')')
	if open < 0 || closeIdx < open {
		return nil, fmt.Errorf("malformed stat line: %q", stat)
	}

	pid, err := strconv.ParseInt(strings.TrimSpace(stat[:open]), 10, 32)
	if err != nil {
		return nil, fmt.Errorf("invalid pid in stat line: %w", err)
	}

	// After the comm: state(0) ppid(1) pgrp session tty tpgid flags minflt cminflt
	// majflt cmajflt utime(11) stime(12) cutime cstime priority nice threads
	// itrealvalue starttime vsize rss(21)
	fields := strings.Fields(stat[closeIdx+1:])
	if len(fields) < 22 {
		return nil, fmt.Errorf("stat line for pid %d has %d fields", pid, len(fields))
	}

	ppid, err := strconv.ParseInt(fields[1], 10, 32)
	if err != nil {
		return nil, fmt.Errorf("invalid ppid: %w", err)
	}
	utime, err := strconv.ParseUint(fields[11], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid utime: %w", err)
	}
	stime, err := strconv.ParseUint(fields[12], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid stime: %w", err)
	}
	rss, err := strconv.ParseInt(fields[21], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid rss: %w", err)
	}
	if rss < 0 {
		rss = 0
	}

	return &PidStat{
		PID:      int32(pid),
		Comm:     stat[open+1 : closeIdx],
		State:    fields[0],
		PPID:     int32(ppid),
		UTime:    utime,
		STime:    stime,
		RSSPages: uint64(rss),
	}, nil
}

// PidStatus is the subset of /proc/[pid]/status used for the process table.
type PidStatus struct {
	UID      uint32
	HasUID   bool
	RSSBytes uint64
}

// ParsePidStatus extracts the real uid and VmRSS from /proc/[pid]/status.
func ParsePidStatus(status string) PidStatus {
	var out PidStatus
	scanner := bufio.NewScanner(strings.NewReader(status))
	for scanner.Scan() {
		key, rest, ok := strings.Cut(scanner.Text(), ":")
		if !ok {
			continue
		}
		fields := strings.Fields(rest)
		if len(fields) == 0 {
			continue
		}
		switch key {
		case "Uid":
			if v, err := strconv.ParseUint(fields[0], 10, 32); err == nil {
				out.UID = uint32(v)
				out.HasUID = true
			}
		case "VmRSS":
			if v, err := strconv.ParseUint(fields[0], 10, 64); err == nil {
				out.RSSBytes = v * 1024
			}
		}
	}
	return out
}

// ParsePidIO extracts read_bytes and write_bytes from /proc/[pid]/io.
func ParsePidIO(io string) DiskIO {
	var out DiskIO
	scanner := bufio.NewScanner(strings.NewReader(io))
	for scanner.Scan() {
		key, rest, ok := strings.Cut(scanner.Text(), ":")
		if !ok {
			continue
		}
		v, err := strconv.ParseUint(strings.TrimSpace(rest), 10, 64)
		if err != nil {
			continue
		}
		switch key {
		case "read_bytes":
			out.ReadBytes = v
		case "write_bytes":
			out.WriteBytes = v
		}
	}
	return out
}

// ParseCmdline turns the NUL separated /proc/[pid]/cmdline into a single line.
func ParseCmdline(raw []byte) string {
	s := strings.TrimRight(string(raw), "\x00")
	return strings.ReplaceAll(s, "\x00", " ")
}

// StateName expands a single-letter process state.
func StateName(code string) string {
	switch code {
	case "R":
		return "running"
	case "S":
		return "sleeping"
	case "D":
		return "disk sleep"
	case "Z":
		return "zombie"
	case "T":
		return "stopped"
	case "t":
		return "tracing"
	case "I":
		return "idle"
	case "X", "x":
		return "dead"
	case "W":
		return "paging"
	}
	return code
}
