package layout

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// dashboard is the tree used by most tests:
//
//	+-----------------+
//	|       cpu       |
//	+--------+--------+
//	|  mem   |  net   |
//	+----+---+--------+
//	|disk|tmp| proc   |
//	+----+---+--------+
func dashboard() *Node {
	return Row(1,
		Leaf("cpu", 1),
		Column(1, Leaf("mem", 1), Leaf("net", 1)),
		Column(2, Leaf("disk", 1), Leaf("temp", 1), Leaf("proc", 2)),
	)
}

func TestCompute_RatioSplit(t *testing.T) {
	l := Compute(Row(1, Leaf("a", 1), Leaf("b", 2)), 80, 30)

	a, ok := l.Rect("a")
	require.True(t, ok)
	b, _ := l.Rect("b")
	assert.Equal(t, Rect{X: 0, Y: 0, W: 80, H: 10}, a)
	assert.Equal(t, Rect{X: 0, Y: 10, W: 80, H: 20}, b)
}

func TestCompute_RemainderGoesToLastChild(t *testing.T) {
	l := Compute(Column(1, Leaf("a", 1), Leaf("b", 1), Leaf("c", 1)), 10, 5)

	a, _ := l.Rect("a")
	b, _ := l.Rect("b")
	c, _ := l.Rect("c")
	assert.Equal(t, 3, a.W)
	assert.Equal(t, 3, b.W)
	assert.Equal(t, 4, c.W)
	assert.Equal(t, 6, c.X)
}

func TestCompute_Dashboard(t *testing.T) {
	l := Compute(dashboard(), 100, 40)

	assert.Equal(t, []WidgetID{"cpu", "mem", "net", "disk", "temp", "proc"}, l.IDs())

	cpu, _ := l.Rect("cpu")
	assert.Equal(t, Rect{W: 100, H: 10}, cpu)
	proc, _ := l.Rect("proc")
	assert.Equal(t, Rect{X: 50, Y: 20, W: 50, H: 20}, proc)
}

func TestCompute_Deterministic(t *testing.T) {
	root := dashboard()
	first := Compute(root, 123, 45)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, Compute(root, 123, 45))
	}
}

func TestCompute_ZeroArea(t *testing.T) {
	l := Compute(dashboard(), 0, 0)
	require.Len(t, l.Leaves(), 6)
	for _, p := range l.Leaves() {
		assert.Equal(t, 0, p.Rect.Area())
	}
	_, ok := l.At(0, 0)
	assert.False(t, ok)
}

// randomTree builds a valid tree with unique leaf ids.
func randomTree(r *rand.Rand, depth int, next *int) *Node {
	if depth == 0 || r.Intn(3) == 0 {
		*next++
		return Leaf(WidgetID(fmt.Sprintf("w%d", *next)), 1+r.Intn(4))
	}
	n := 1 + r.Intn(4)
	children := make([]*Node, n)
	for i := range children {
		children[i] = randomTree(r, depth-1, next)
	}
	if r.Intn(2) == 0 {
		return Row(1+r.Intn(3), children...)
	}
	return Column(1+r.Intn(3), children...)
}

func TestCompute_TilesAreaExactly(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	for iter := 0; iter < 200; iter++ {
		next := 0
		root := randomTree(r, 4, &next)
		require.NoError(t, Validate(root))

		w, h := 1+r.Intn(60), 1+r.Intn(30)
		l := Compute(root, w, h)

		covered := make([]int, w*h)
		area := 0
		for _, p := range l.Leaves() {
			rc := p.Rect
			require.GreaterOrEqual(t, rc.W, 0)
			require.GreaterOrEqual(t, rc.H, 0)
			area += rc.Area()
			for y := rc.Y; y < rc.Y+rc.H; y++ {
				for x := rc.X; x < rc.X+rc.W; x++ {
					require.True(t, x >= 0 && x < w && y >= 0 && y < h, "rect %v escapes %dx%d", rc, w, h)
					covered[y*w+x]++
				}
			}
		}
		assert.Equal(t, w*h, area, "iteration %d", iter)
		for i, c := range covered {
			if !assert.Equal(t, 1, c, "cell %d covered %d times (iteration %d)", i, c, iter) {
				break
			}
		}
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		root    *Node
		wantErr string
	}{
		{"valid", dashboard(), ""},
		{"nil tree", nil, "empty"},
		{"empty row", Row(1), "no children"},
		{"zero ratio", Row(1, Leaf("a", 0)), "ratio"},
		{"negative ratio", Column(-1, Leaf("a", 1)), "ratio"},
		{"duplicate widget", Row(1, Leaf("a", 1), Column(1, Leaf("a", 1))), "more than once"},
		{"unnamed leaf", Row(1, Leaf("", 1)), "no widget"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.root)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestAt(t *testing.T) {
	l := Compute(dashboard(), 100, 40)

	id, ok := l.At(5, 5)
	require.True(t, ok)
	assert.Equal(t, WidgetID("cpu"), id)

	id, _ = l.At(99, 39)
	assert.Equal(t, WidgetID("proc"), id)

	id, _ = l.At(60, 15)
	assert.Equal(t, WidgetID("net"), id)

	_, ok = l.At(100, 0)
	assert.False(t, ok)
}

func TestFullscreen(t *testing.T) {
	root := dashboard()
	l := Compute(root, 100, 40)

	fs := Fullscreen(l, "net", 100, 40)
	assert.Equal(t, []WidgetID{"net"}, fs.IDs())
	r, _ := fs.Rect("net")
	assert.Equal(t, Rect{W: 100, H: 40}, r)

	// The tree and the normal layout are untouched.
	assert.Len(t, Compute(root, 100, 40).Leaves(), 6)
	assert.Len(t, l.Leaves(), 6)

	assert.Equal(t, l, Fullscreen(l, "gpu", 100, 40), "unknown widget leaves layout as is")
}

func TestCycle(t *testing.T) {
	l := Compute(dashboard(), 100, 40)

	assert.Equal(t, WidgetID("mem"), Cycle(l, "cpu", 1))
	assert.Equal(t, WidgetID("cpu"), Cycle(l, "proc", 1))
	assert.Equal(t, WidgetID("proc"), Cycle(l, "cpu", -1))
	assert.Equal(t, WidgetID("cpu"), Cycle(l, "missing", 1))
	assert.Equal(t, WidgetID("x"), Cycle(Layout{}, "x", 1))
}

func TestRect(t *testing.T) {
	r := Rect{X: 2, Y: 3, W: 4, H: 2}
	assert.True(t, r.Contains(2, 3))
	assert.True(t, r.Contains(5, 4))
	assert.False(t, r.Contains(6, 4))
	assert.False(t, r.Contains(2, 5))
	assert.Equal(t, 8, r.Area())
	x, y := r.Center()
	assert.Equal(t, 4.0, x)
	assert.Equal(t, 4.0, y)
}
