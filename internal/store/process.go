package store

import (
	"cmp"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/rileyhilliard/rtop/internal/harvest"
)

// Column is a sortable process table column.
type Column int

const (
	ColumnPID Column = iota
	ColumnName
	ColumnCPU
	ColumnMem
	ColumnRead
	ColumnWrite
	ColumnUser
	ColumnState
)

// Columns lists every column in display order.
var Columns = []Column{ColumnPID, ColumnName, ColumnCPU, ColumnMem, ColumnRead, ColumnWrite, ColumnUser, ColumnState}

var columnNames = map[Column]string{
	ColumnPID:   "pid",
	ColumnName:  "name",
	ColumnCPU:   "cpu",
	ColumnMem:   "mem",
	ColumnRead:  "read",
	ColumnWrite: "write",
	ColumnUser:  "user",
	ColumnState: "state",
}

func (c Column) String() string {
	if name, ok := columnNames[c]; ok {
		return name
	}
	return "unknown"
}

// ParseColumn converts a column name into a Column.
func ParseColumn(s string) (Column, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for c, name := range columnNames {
		if name == s {
			return c, nil
		}
	}
	switch s {
	case "memory":
		return ColumnMem, nil
	case "command":
		return ColumnName, nil
	}
	return 0, fmt.Errorf("unknown sort column %q", s)
}

// View describes how the process rows are presented. It is applied on
// demand and never stored in the table.
type View struct {
	Sort       Column
	Descending bool
	Filter     string
	Regex      bool
	Group      bool
}

// DefaultView sorts by CPU, busiest first.
func DefaultView() View {
	return View{Sort: ColumnCPU, Descending: true}
}

// ProcessRow is a process with its per-tick rates.
type ProcessRow struct {
	harvest.ProcessEntry

	CPUPercent float64
	MemPercent float64
	ReadRate   float64
	WriteRate  float64

	// Fresh is set on the first tick a pid is seen, when no rate is known.
	Fresh bool

	// PIDs holds every member of a grouped row, lowest first. It is nil for
	// ungrouped rows.
	PIDs []int32
}

// Count returns how many processes the row stands for.
func (r ProcessRow) Count() int {
	if len(r.PIDs) == 0 {
		return 1
	}
	return len(r.PIDs)
}

type counters struct {
	ticks uint64
	read  uint64
	write uint64
}

// ProcessTable holds the latest process list and derives per-process rates
// from the previous one.
type ProcessTable struct {
	rows     []ProcessRow
	byPID    map[int32]int
	prev     map[int32]counters
	prevTime time.Time
	memTotal uint64
}

// NewProcessTable creates an empty table.
func NewProcessTable() *ProcessTable {
	return &ProcessTable{
		byPID: make(map[int32]int),
		prev:  make(map[int32]counters),
	}
}

// SetMemoryTotal sets the denominator for memory percentages.
func (t *ProcessTable) SetMemoryTotal(total uint64) {
	t.memTotal = total
}

// Update replaces the table with entries collected at now on a machine with
// the given number of cores. Pids missing from entries are forgotten.
func (t *ProcessTable) Update(entries []harvest.ProcessEntry, now time.Time, cores int) {
	if cores < 1 {
		cores = 1
	}
	var elapsed float64
	if !t.prevTime.IsZero() {
		elapsed = now.Sub(t.prevTime).Seconds()
	}

	rows := make([]ProcessRow, 0, len(entries))
	byPID := make(map[int32]int, len(entries))
	next := make(map[int32]counters, len(entries))

	for _, e := range entries {
		row := ProcessRow{ProcessEntry: e}
		prev, seen := t.prev[e.PID]
		if !seen || elapsed <= 0 {
			row.Fresh = !seen
		} else {
			// Ticks are hundredths of a second, so ticks per second is
			// already a percentage of one core.
			row.CPUPercent = float64(delta(prev.ticks, e.CPUTicks)) / elapsed / float64(cores)
			row.ReadRate = float64(delta(prev.read, e.ReadBytes)) / elapsed
			row.WriteRate = float64(delta(prev.write, e.WriteBytes)) / elapsed
		}
		if t.memTotal > 0 {
			row.MemPercent = float64(e.MemBytes) / float64(t.memTotal) * 100
		}

		next[e.PID] = counters{ticks: e.CPUTicks, read: e.ReadBytes, write: e.WriteBytes}
		if i, dup := byPID[e.PID]; dup {
			rows[i] = row
			continue
		}
		byPID[e.PID] = len(rows)
		rows = append(rows, row)
	}

	t.rows, t.byPID, t.prev, t.prevTime = rows, byPID, next, now
}

// delta is cur-prev, or zero when the counter went backwards.
func delta(prev, cur uint64) uint64 {
	if cur < prev {
		return 0
	}
	return cur - prev
}

// Len returns the number of processes.
func (t *ProcessTable) Len() int {
	return len(t.rows)
}

// Get returns the row for pid.
func (t *ProcessTable) Get(pid int32) (ProcessRow, bool) {
	i, ok := t.byPID[pid]
	if !ok {
		return ProcessRow{}, false
	}
	return t.rows[i], true
}

// Parent returns the parent of pid, if it is still running.
func (t *ProcessTable) Parent(pid int32) (ProcessRow, bool) {
	row, ok := t.Get(pid)
	if !ok || row.PPID == row.PID {
		return ProcessRow{}, false
	}
	return t.Get(row.PPID)
}

// Children returns the direct children of pid ordered by pid.
func (t *ProcessTable) Children(pid int32) []ProcessRow {
	var out []ProcessRow
	for _, r := range t.rows {
		if r.PPID == pid && r.PID != pid {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PID < out[j].PID })
	return out
}

// Rows derives the rows shown for v. An invalid regular expression yields
// no rows and the compile error.
func (t *ProcessTable) Rows(v View) ([]ProcessRow, error) {
	match, err := matcher(v)
	if err != nil {
		return nil, err
	}

	rows := make([]ProcessRow, 0, len(t.rows))
	for _, r := range t.rows {
		if match(r) {
			rows = append(rows, r)
		}
	}

	if v.Group {
		rows = group(rows)
	}
	sortRows(rows, v.Sort, v.Descending)
	return rows, nil
}

func matcher(v View) (func(ProcessRow) bool, error) {
	if v.Filter == "" {
		return func(ProcessRow) bool { return true }, nil
	}
	if v.Regex {
		re, err := regexp.Compile("(?i)" + v.Filter)
		if err != nil {
			return nil, fmt.Errorf("invalid filter: %w", err)
		}
		return func(r ProcessRow) bool {
			return re.MatchString(r.Name) || re.MatchString(r.Command)
		}, nil
	}
	needle := strings.ToLower(v.Filter)
	return func(r ProcessRow) bool {
		return strings.Contains(strings.ToLower(r.Name), needle) ||
			strings.Contains(strings.ToLower(r.Command), needle)
	}, nil
}

// group merges rows sharing a name. The lowest pid represents the group.
func group(rows []ProcessRow) []ProcessRow {
	byName := make(map[string]int)
	var out []ProcessRow
	for _, r := range rows {
		i, ok := byName[r.Name]
		if !ok {
			r.PIDs = []int32{r.PID}
			byName[r.Name] = len(out)
			out = append(out, r)
			continue
		}
		g := &out[i]
		g.PIDs = append(g.PIDs, r.PID)
		g.CPUTicks += r.CPUTicks
		g.MemBytes += r.MemBytes
		g.ReadBytes += r.ReadBytes
		g.WriteBytes += r.WriteBytes
		g.CPUPercent += r.CPUPercent
		g.MemPercent += r.MemPercent
		g.ReadRate += r.ReadRate
		g.WriteRate += r.WriteRate
		g.Fresh = g.Fresh && r.Fresh
		if r.PID < g.PID {
			g.PID, g.PPID, g.Command, g.User, g.State = r.PID, r.PPID, r.Command, r.User, r.State
		}
	}
	for i := range out {
		sort.Slice(out[i].PIDs, func(a, b int) bool { return out[i].PIDs[a] < out[i].PIDs[b] })
	}
	return out
}

// sortRows orders rows by col. Equal keys fall back to ascending pid in
// either direction so the order never flickers between ticks.
func sortRows(rows []ProcessRow, col Column, desc bool) {
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		c := compare(a, b, col)
		if c == 0 {
			return a.PID < b.PID
		}
		if desc {
			return c > 0
		}
		return c < 0
	})
}

func compare(a, b ProcessRow, col Column) int {
	switch col {
	case ColumnName:
		return strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
	case ColumnCPU:
		return cmp.Compare(a.CPUPercent, b.CPUPercent)
	case ColumnMem:
		return cmp.Compare(a.MemBytes, b.MemBytes)
	case ColumnRead:
		return cmp.Compare(a.ReadRate, b.ReadRate)
	case ColumnWrite:
		return cmp.Compare(a.WriteRate, b.WriteRate)
	case ColumnUser:
		return strings.Compare(a.User, b.User)
	case ColumnState:
		return strings.Compare(a.State, b.State)
	default:
		return cmp.Compare(a.PID, b.PID)
	}
}
