package procfs

import (
	"testing"

	"github.com/rileyhilliard/rtop/internal/harvest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStat(t *testing.T) {
	tests := []struct {
		name      string
		procStat  string
		wantCores int
		wantTotal harvest.Jiffies
		wantErr   bool
	}{
		{
			name: "two core system",
			procStat: `cpu  1000 100 300 8000 200 0 50 0 0 0
cpu0 500 50 150 4000 100 0 25 0 0 0
cpu1 500 50 150 4000 100 0 25 0 0 0
intr 12345
ctxt 67890`,
			wantCores: 2,
			wantTotal: harvest.Jiffies{Total: 9650, Idle: 8200},
		},
		{
			name: "guest time is not double counted",
			procStat: `cpu  100 0 0 100 0 0 0 0 40 10
cpu0 100 0 0 100 0 0 0 0 40 10`,
			wantCores: 1,
			wantTotal: harvest.Jiffies{Total: 200, Idle: 100},
		},
		{
			name:     "invalid cpu line",
			procStat: "cpu  invalid data here now",
			wantErr:  true,
		},
		{
			name:     "missing aggregate line",
			procStat: "cpu0 1 2 3 4 5",
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info, err := ParseStat(tt.procStat)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Len(t, info.PerCore, tt.wantCores)
			assert.Equal(t, tt.wantTotal, info.Total)
		})
	}
}

func TestParseLoadavg(t *testing.T) {
	avg, err := ParseLoadavg("1.23 2.34 3.45 1/234 5678\n")
	require.NoError(t, err)
	assert.Equal(t, [3]float64{1.23, 2.34, 3.45}, avg)

	_, err = ParseLoadavg("1.0")
	assert.Error(t, err)

	_, err = ParseLoadavg("a b c")
	assert.Error(t, err)
}

func TestParseMeminfo(t *testing.T) {
	meminfo := `MemTotal:       16384000 kB
MemFree:         4096000 kB
MemAvailable:    8192000 kB
Buffers:          512000 kB
Cached:          2048000 kB
SwapCached:            0 kB
SwapTotal:       2048000 kB
SwapFree:        1536000 kB`

	m, err := ParseMeminfo(meminfo)
	require.NoError(t, err)

	assert.Equal(t, uint64(16384000*1024), m.TotalBytes)
	assert.Equal(t, uint64(8192000*1024), m.Available)
	assert.Equal(t, uint64((512000+2048000)*1024), m.Cached)
	assert.Equal(t, uint64((16384000-4096000-512000-2048000)*1024), m.UsedBytes)
	assert.Equal(t, uint64(2048000*1024), m.SwapTotal)
	assert.Equal(t, uint64(512000*1024), m.SwapUsed)
}

func TestParseMeminfo_Insufficient(t *testing.T) {
	_, err := ParseMeminfo("Buffers: 10 kB\n")
	assert.Error(t, err)
}

func TestParseNetDev(t *testing.T) {
	netdev := `Inter-|   Receive                                                |  Transmit
 face |bytes    packets errs drop fifo frame compressed multicast|bytes    packets errs drop fifo colls carrier compressed
    lo: 1000 10 0 0 0 0 0 0 1000 10 0 0 0 0 0 0
  eth0: 123456789 98765 0 0 0 0 0 0 987654321 56789 0 0 0 0 0 0
 short: 1 2 3`

	ifaces, err := ParseNetDev(netdev)
	require.NoError(t, err)
	require.Len(t, ifaces, 2)

	assert.Equal(t, "lo", ifaces[0].Name)
	assert.True(t, ifaces[0].IsLoopback())

	assert.Equal(t, "eth0", ifaces[1].Name)
	assert.Equal(t, uint64(123456789), ifaces[1].RxBytes)
	assert.Equal(t, uint64(98765), ifaces[1].RxPackets)
	assert.Equal(t, uint64(987654321), ifaces[1].TxBytes)
	assert.Equal(t, uint64(56789), ifaces[1].TxPackets)
}

func TestParseNetDev_BadCounter(t *testing.T) {
	netdev := "h1\nh2\n  eth0: x 1 0 0 0 0 0 0 1 1 0 0 0 0 0 0"
	_, err := ParseNetDev(netdev)
	assert.Error(t, err)
}

func TestParseMounts(t *testing.T) {
	mounts := `sysfs /sys sysfs rw,nosuid 0 0
proc /proc proc rw 0 0
/dev/nvme0n1p2 / ext4 rw,relatime 0 0
tmpfs /run tmpfs rw 0 0
/dev/nvme0n1p1 /boot/efi vfat rw 0 0
/dev/nvme0n1p2 /var/lib/docker ext4 rw 0 0
/dev/sdb1 /mnt/my\040disk ext4 rw 0 0`

	got := ParseMounts(mounts)
	require.Len(t, got, 3)
	assert.Equal(t, Mount{Device: "/dev/nvme0n1p2", Point: "/", FSType: "ext4"}, got[0])
	assert.Equal(t, "/boot/efi", got[1].Point)
	assert.Equal(t, "/mnt/my disk", got[2].Point)
}

func TestParseDiskstats(t *testing.T) {
	stats := ` 259       0 nvme0n1 1000 0 2000 0 500 0 4000 0 0 0 0
 259       2 nvme0n1p2 800 0 1600 0 400 0 3200 0 0 0 0
   7       0 loop0`

	got, err := ParseDiskstats(stats)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, DiskIO{ReadBytes: 2000 * 512, WriteBytes: 4000 * 512}, got["nvme0n1"])
	assert.Equal(t, DiskIO{ReadBytes: 1600 * 512, WriteBytes: 3200 * 512}, got["nvme0n1p2"])
}

func TestParsePidStat(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		want    *PidStat
		wantErr bool
	}{
		{
			name: "plain command",
			line: "42 (bash) S 1 42 42 34816 42 4194560 2000 0 0 0 100 40 0 0 20 0 1 0 300 10000000 512 18446744073709551615",
			want: &PidStat{PID: 42, Comm: "bash", State: "S", PPID: 1, UTime: 100, STime: 40, RSSPages: 512},
		},
		{
			name: "command with spaces and parens",
			line: "7 (Web Content (x)) R 3 7 7 0 -1 0 0 0 0 0 5 6 0 0 20 0 1 0 300 10000000 64 0",
			want: &PidStat{PID: 7, Comm: "Web Content (x)", State: "R", PPID: 3, UTime: 5, STime: 6, RSSPages: 64},
		},
		{
			name:    "truncated",
			line:    "9 (x) S 1 2 3",
			wantErr: true,
		},
		{
			name:    "no comm",
			line:    "9 x S 1",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParsePidStat(tt.line)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParsePidStatus(t *testing.T) {
	status := `Name:	bash
State:	S (sleeping)
Uid:	1000	1000	1000	1000
Gid:	1000	1000	1000	1000
VmRSS:	    5120 kB`

	got := ParsePidStatus(status)
	assert.True(t, got.HasUID)
	assert.Equal(t, uint32(1000), got.UID)
	assert.Equal(t, uint64(5120*1024), got.RSSBytes)

	kernel := ParsePidStatus("Name:\tkthreadd\nUid:\t0\t0\t0\t0\n")
	assert.True(t, kernel.HasUID)
	assert.Equal(t, uint64(0), kernel.RSSBytes)
}

func TestParsePidIO(t *testing.T) {
	io := `rchar: 100
wchar: 200
read_bytes: 4096
write_bytes: 8192
cancelled_write_bytes: 0`

	assert.Equal(t, DiskIO{ReadBytes: 4096, WriteBytes: 8192}, ParsePidIO(io))
}

func TestParseCmdline(t *testing.T) {
	assert.Equal(t, "/usr/bin/python3 -m http.server", ParseCmdline([]byte("/usr/bin/python3\x00-m\x00http.server\x00")))
	assert.Equal(t, "", ParseCmdline(nil))
}

func TestStateName(t *testing.T) {
	assert.Equal(t, "running", StateName("R"))
	assert.Equal(t, "zombie", StateName("Z"))
	assert.Equal(t, "?", StateName("?"))
}
