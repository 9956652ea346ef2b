package harvest

// Jiffies is one reading of cumulative CPU time counters.
type Jiffies struct {
	Total uint64
	Idle  uint64
}

// JiffyTracker turns cumulative CPU counters into busy percentages by
// diffing against the previous reading of the same core. Index -1 is the
// aggregate line.
type JiffyTracker struct {
	prev map[int]Jiffies
}

// NewJiffyTracker creates an empty tracker.
func NewJiffyTracker() *JiffyTracker {
	return &JiffyTracker{prev: make(map[int]Jiffies)}
}

// Percent records j for core and returns the busy percentage since the last
// call. The first reading of a core has no baseline and reports 0.
func (t *JiffyTracker) Percent(core int, j Jiffies) float64 {
	prev, ok := t.prev[core]
	t.prev[core] = j
	if !ok || j.Total <= prev.Total {
		return 0
	}
	totalDelta := j.Total - prev.Total
	var idleDelta uint64
	if j.Idle > prev.Idle {
		idleDelta = j.Idle - prev.Idle
	}
	if idleDelta > totalDelta {
		return 0
	}
	return float64(totalDelta-idleDelta) / float64(totalDelta) * 100
}
