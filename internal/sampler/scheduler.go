package sampler

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/rileyhilliard/rtop/internal/harvest"
	"github.com/rileyhilliard/rtop/internal/logger"
)

// Intervals holds the sampling period of each category. Zero entries use
// Base.
type Intervals struct {
	Base        time.Duration
	CPU         time.Duration
	Memory      time.Duration
	Network     time.Duration
	Disk        time.Duration
	Temperature time.Duration
	Processes   time.Duration
}

// DefaultIntervals samples every second, disks every two.
func DefaultIntervals() Intervals {
	return Intervals{Base: time.Second, Disk: 2 * time.Second}
}

// For returns the effective interval of category c.
func (iv Intervals) For(c harvest.Category) time.Duration {
	var d time.Duration
	switch c {
	case harvest.CategoryCPU:
		d = iv.CPU
	case harvest.CategoryMemory:
		d = iv.Memory
	case harvest.CategoryNetwork:
		d = iv.Network
	case harvest.CategoryDisk:
		d = iv.Disk
	case harvest.CategoryTemperature:
		d = iv.Temperature
	case harvest.CategoryProcesses:
		d = iv.Processes
	}
	if d <= 0 {
		return iv.Base
	}
	return d
}

// Tick returns the scheduler period: the smallest effective interval.
func (iv Intervals) Tick() time.Duration {
	tick := iv.Base
	for _, c := range harvest.AllCategories {
		if d := iv.For(c); d > 0 && (tick <= 0 || d < tick) {
			tick = d
		}
	}
	if tick <= 0 {
		return time.Second
	}
	return tick
}

// every returns how many ticks separate two collections of c.
func (iv Intervals) every(c harvest.Category) uint64 {
	n := math.Round(float64(iv.For(c)) / float64(iv.Tick()))
	if n < 1 {
		return 1
	}
	return uint64(n)
}

// Due lists the categories to collect on tick n. Tick 0 collects all.
func (iv Intervals) Due(n uint64) []harvest.Category {
	var out []harvest.Category
	for _, c := range harvest.AllCategories {
		if n%iv.every(c) == 0 {
			out = append(out, c)
		}
	}
	return out
}

// Scheduler runs the harvester on a ticker and pushes each snapshot into a
// Queue.
type Scheduler struct {
	h         *harvest.Harvester
	q         *Queue
	intervals Intervals
	timeout   time.Duration
	log       logger.Logger

	startOnce sync.Once
	stopOnce  sync.Once
	cancel    context.CancelFunc
	done      chan struct{}
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithLogger sets the scheduler logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Scheduler) {
		if l != nil {
			s.log = l
		}
	}
}

// WithTimeout bounds a single collection. Defaults to the tick period.
func WithTimeout(d time.Duration) Option {
	return func(s *Scheduler) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// New creates a scheduler feeding q from h.
func New(h *harvest.Harvester, q *Queue, intervals Intervals, opts ...Option) *Scheduler {
	s := &Scheduler{
		h:         h,
		q:         q,
		intervals: intervals,
		log:       logger.Noop(),
		done:      make(chan struct{}),
	}
	s.timeout = intervals.Tick()
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Intervals returns the configured intervals.
func (s *Scheduler) Intervals() Intervals { return s.intervals }

// Run collects immediately and then on every tick until ctx is done. A
// collection that has begun always completes and is delivered.
func (s *Scheduler) Run(ctx context.Context) {
	tick := s.intervals.Tick()
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	s.log.Debug("sampler: tick %s, backend %s", tick, s.h.SourceName())

	var n uint64
	for {
		s.collect(ctx, s.intervals.Due(n))
		n++

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (s *Scheduler) collect(ctx context.Context, due []harvest.Category) {
	if len(due) == 0 {
		return
	}
	cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
	defer cancel()

	snap := s.h.Collect(cctx, due...)
	before := s.q.Dropped()
	if s.q.Push(snap) && s.q.Dropped() > before {
		s.log.Debug("sampler: consumer behind, dropped oldest snapshot (%d total)", s.q.Dropped())
	}
}

// Start runs the scheduler in the background.
func (s *Scheduler) Start(ctx context.Context) {
	s.startOnce.Do(func() {
		ctx, s.cancel = context.WithCancel(ctx)
		go func() {
			defer close(s.done)
			defer s.q.Close()
			s.Run(ctx)
		}()
	})
}

// Stop cancels the scheduler and waits for any in-flight collection to
// finish. The queue is closed afterwards. Safe to call more than once and
// before Start.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		// Claim startOnce so a late Start becomes a no-op.
		s.startOnce.Do(func() {})
		if s.cancel == nil {
			s.q.Close()
			return
		}
		s.cancel()
		<-s.done
	})
}
