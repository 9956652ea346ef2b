package monitor

import (
	"context"
	"io"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rileyhilliard/rtop/internal/errors"
	"github.com/rileyhilliard/rtop/internal/harvest"
	harvesttest "github.com/rileyhilliard/rtop/internal/harvest/testing"
	"github.com/rileyhilliard/rtop/internal/layout"
	"github.com/rileyhilliard/rtop/internal/sampler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	src := harvesttest.NewFakeSource()
	src.CPUStats.Percent = 12

	d, err := New(src, Options{})
	require.NoError(t, err)

	assert.Same(t, Synthwave, d.opts.Theme)
	assert.Equal(t, sampler.DefaultIntervals(), d.opts.Intervals)
	assert.Equal(t, sampler.DefaultQueueSize, d.opts.QueueSize)
	assert.Equal(t, layout.Compute(DefaultLayout(), 0, 0).IDs(), layout.Compute(d.opts.Layout, 0, 0).IDs())

	require.NotNil(t, d.Store().CPU(), "probe snapshot seeds the store")
	assert.Equal(t, 12.0, d.Store().CPU().Percent)
}

func TestNew_Errors(t *testing.T) {
	t.Run("no source", func(t *testing.T) {
		_, err := New(nil, Options{})
		require.Error(t, err)
		assert.True(t, errors.IsCode(err, errors.ErrStartup))
	})

	t.Run("duplicate widget", func(t *testing.T) {
		root := layout.Row(1, layout.Leaf(WidgetCPU, 1), layout.Leaf(WidgetCPU, 1))
		_, err := New(harvesttest.NewFakeSource(), Options{Layout: root})
		require.Error(t, err)
		assert.True(t, errors.IsCode(err, errors.ErrLayout))
	})

	t.Run("unknown widget", func(t *testing.T) {
		root := layout.Row(1, layout.Leaf("gpu", 1))
		_, err := New(harvesttest.NewFakeSource(), Options{Layout: root})
		require.Error(t, err)
		assert.True(t, errors.IsCode(err, errors.ErrLayout))
		assert.Contains(t, err.Error(), "gpu")
	})

	t.Run("nothing supported", func(t *testing.T) {
		src := harvesttest.NewFakeSource()
		for _, c := range harvest.AllCategories {
			src.SetError(c, harvest.ErrUnsupported)
		}
		_, err := New(src, Options{})
		require.Error(t, err)
		assert.True(t, errors.IsFatal(err))
	})
}

func TestNew_UnsupportedReachesStore(t *testing.T) {
	src := harvesttest.NewFakeSource()
	src.SetError(harvest.CategoryTemperature, harvest.Unsupported(harvest.CategoryTemperature, "no thermal zones"))

	d, err := New(src, Options{})
	require.NoError(t, err)

	assert.False(t, d.Store().Supports(harvest.CategoryTemperature))
	assert.True(t, d.Store().Supports(harvest.CategoryCPU))
}

func TestRun_ContextCancelled(t *testing.T) {
	d, err := New(harvesttest.NewFakeSource(), Options{})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// A cancelled context is a clean shutdown, not a terminal failure.
	assert.NoError(t, d.Run(ctx, testProgramOptions()...))
}

// testProgramOptions keeps the program off the real terminal.
func testProgramOptions() []tea.ProgramOption {
	return []tea.ProgramOption{tea.WithInput(nil), tea.WithOutput(io.Discard)}
}
