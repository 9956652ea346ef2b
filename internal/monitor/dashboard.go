package monitor

import (
	"context"
	stderrors "errors"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rileyhilliard/rtop/internal/errors"
	"github.com/rileyhilliard/rtop/internal/harvest"
	"github.com/rileyhilliard/rtop/internal/layout"
	"github.com/rileyhilliard/rtop/internal/logger"
	"github.com/rileyhilliard/rtop/internal/sampler"
	"github.com/rileyhilliard/rtop/internal/store"
)

// probeTimeout bounds the startup collection.
const probeTimeout = 10 * time.Second

// Options configures a Dashboard.
type Options struct {
	Intervals  sampler.Intervals
	Retention  time.Duration
	MaxSamples int

	// Layout is the widget tree. Nil uses DefaultLayout.
	Layout *layout.Node

	// View is the initial process table view.
	View store.View

	// Theme colors the dashboard. Nil uses Synthwave.
	Theme *Theme

	// Redraw forces a redraw at this interval even without new data. Zero
	// disables it.
	Redraw time.Duration

	Mouse     bool
	Logger    logger.Logger
	QueueSize int
}

// DefaultLayout is the cpu graph on top, memory and network beside each
// other, then disks, temperatures and a double-width process table.
func DefaultLayout() *layout.Node {
	return layout.Row(1,
		layout.Column(1, layout.Leaf(WidgetCPU, 1)),
		layout.Column(1, layout.Leaf(WidgetMem, 1), layout.Leaf(WidgetNet, 1)),
		layout.Column(2, layout.Leaf(WidgetDisk, 1), layout.Leaf(WidgetTemp, 1), layout.Leaf(WidgetProc, 2)),
	)
}

// Dashboard owns the sampling pipeline and the terminal UI.
type Dashboard struct {
	harvester *harvest.Harvester
	store     *store.Store
	opts      Options
	log       logger.Logger
}

// New validates opts, wraps src in a Harvester and probes it. The probe
// snapshot seeds the store so the first frame has data.
func New(src harvest.Source, opts Options) (*Dashboard, error) {
	if src == nil {
		return nil, errors.NewStartup("No metrics backend configured", "Pick a backend with --backend")
	}
	if opts.Layout == nil {
		opts.Layout = DefaultLayout()
	}
	if err := layout.Validate(opts.Layout); err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrLayout, "Invalid layout: "+err.Error(),
			"Each widget may appear once and every ratio must be at least 1.")
	}
	for _, id := range layout.Compute(opts.Layout, 0, 0).IDs() {
		if !IsWidget(id) {
			return nil, errors.New(errors.ErrLayout, "Unknown widget '"+string(id)+"'",
				"Use one of cpu, mem, net, disk, temp or proc.")
		}
	}
	if opts.Theme == nil {
		opts.Theme = Synthwave
	}
	if opts.Intervals == (sampler.Intervals{}) {
		opts.Intervals = sampler.DefaultIntervals()
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = sampler.DefaultQueueSize
	}
	if opts.Logger == nil {
		opts.Logger = logger.Noop()
	}

	h := harvest.New(src, harvest.WithLogger(opts.Logger))
	ctx, cancel := context.WithTimeout(context.Background(), probeTimeout)
	defer cancel()
	snap, err := h.Probe(ctx)
	if err != nil {
		return nil, err
	}
	opts.Logger.Info("monitor: %s backend supports %d categories", h.SourceName(), len(h.Supported()))

	cores := 0
	if snap.CPU != nil {
		cores = snap.CPU.Cores
	}
	st := store.New(store.Config{
		Retention:  opts.Retention,
		MaxSamples: opts.MaxSamples,
		CoreHint:   cores,
	})
	st.Apply(snap)

	return &Dashboard{harvester: h, store: st, opts: opts, log: opts.Logger}, nil
}

// Store returns the dashboard's metric store.
func (d *Dashboard) Store() *store.Store {
	return d.store
}

// Run starts sampling and blocks until the user quits or ctx is done. The
// scheduler finishes any in-flight collection before Run returns.
func (d *Dashboard) Run(ctx context.Context, opts ...tea.ProgramOption) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	q := sampler.NewQueue(d.opts.QueueSize)
	sched := sampler.New(d.harvester, q, d.opts.Intervals, sampler.WithLogger(d.log))
	sched.Start(ctx)
	defer sched.Stop()

	d.opts.Theme.Apply()

	programOpts := []tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}
	if d.opts.Mouse {
		programOpts = append(programOpts, tea.WithMouseCellMotion())
	}
	programOpts = append(programOpts, opts...)

	p := tea.NewProgram(newModel(ctx, d.store, q, d.opts), programOpts...)
	if _, err := p.Run(); err != nil {
		if ctx.Err() != nil && stderrors.Is(err, tea.ErrProgramKilled) {
			return nil
		}
		return errors.WrapWithCode(err, errors.ErrTerminal, "Dashboard stopped unexpectedly",
			"Make sure rtop is running in an interactive terminal.")
	}
	return nil
}
