// Package layout splits the terminal into widget rectangles from a tree of
// rows and columns, and answers focus navigation and mouse hit tests.
package layout

import (
	"fmt"
)

// WidgetID names a leaf of the layout tree.
type WidgetID string

// Rect is a cell rectangle on screen.
type Rect struct {
	X, Y, W, H int
}

// Contains reports whether the cell (x, y) is inside r.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.X+r.W && y >= r.Y && y < r.Y+r.H
}

// Center returns the centroid of r in half-cell precision.
func (r Rect) Center() (float64, float64) {
	return float64(r.X) + float64(r.W)/2, float64(r.Y) + float64(r.H)/2
}

// Area returns W*H.
func (r Rect) Area() int { return r.W * r.H }

// Kind is the type of a layout node.
type Kind int

const (
	// KindRow splits its height among its children, stacking them.
	KindRow Kind = iota
	// KindColumn splits its width among its children, side by side.
	KindColumn
	// KindLeaf holds a widget.
	KindLeaf
)

func (k Kind) String() string {
	switch k {
	case KindRow:
		return "row"
	case KindColumn:
		return "column"
	case KindLeaf:
		return "leaf"
	}
	return "unknown"
}

// Node is an element of the layout tree. Trees are built once with Row,
// Column and Leaf and not modified afterwards.
type Node struct {
	Kind     Kind
	Ratio    int
	Widget   WidgetID
	Children []*Node
}

// Row stacks children vertically.
func Row(ratio int, children ...*Node) *Node {
	return &Node{Kind: KindRow, Ratio: ratio, Children: children}
}

// Column places children side by side.
func Column(ratio int, children ...*Node) *Node {
	return &Node{Kind: KindColumn, Ratio: ratio, Children: children}
}

// Leaf holds the widget id.
func Leaf(id WidgetID, ratio int) *Node {
	return &Node{Kind: KindLeaf, Ratio: ratio, Widget: id}
}

// Validate checks the whole tree.
func Validate(root *Node) error {
	if root == nil {
		return fmt.Errorf("layout is empty")
	}
	seen := make(map[WidgetID]bool)
	return validate(root, seen, "root")
}

func validate(n *Node, seen map[WidgetID]bool, path string) error {
	if n == nil {
		return fmt.Errorf("%s: nil node", path)
	}
	if n.Ratio < 1 {
		return fmt.Errorf("%s: ratio must be at least 1, got %d", path, n.Ratio)
	}
	switch n.Kind {
	case KindLeaf:
		if n.Widget == "" {
			return fmt.Errorf("%s: leaf has no widget", path)
		}
		if seen[n.Widget] {
			return fmt.Errorf("%s: widget %q appears more than once", path, n.Widget)
		}
		seen[n.Widget] = true
		return nil
	case KindRow, KindColumn:
		if len(n.Children) == 0 {
			return fmt.Errorf("%s: %s has no children", path, n.Kind)
		}
		for i, c := range n.Children {
			if err := validate(c, seen, fmt.Sprintf("%s.%s[%d]", path, n.Kind, i)); err != nil {
				return err
			}
		}
		return nil
	}
	return fmt.Errorf("%s: unknown node kind %d", path, n.Kind)
}

// Placement is a widget and where it is drawn.
type Placement struct {
	ID   WidgetID
	Rect Rect
}

// Layout is the computed placement of every leaf, in tree order.
type Layout struct {
	W, H   int
	leaves []Placement
}

// Compute places the leaves of root in a w x h area. Each container gives
// every child floor(size*ratio/total) cells and the remainder to its last
// child, so the rectangles tile the area exactly.
func Compute(root *Node, w, h int) Layout {
	l := Layout{W: max(w, 0), H: max(h, 0)}
	if root != nil {
		split(root, Rect{W: l.W, H: l.H}, &l.leaves)
	}
	return l
}

func split(n *Node, r Rect, out *[]Placement) {
	if n.Kind == KindLeaf {
		*out = append(*out, Placement{ID: n.Widget, Rect: r})
		return
	}

	total := 0
	for _, c := range n.Children {
		total += c.Ratio
	}
	if total <= 0 {
		return
	}

	size := r.H
	if n.Kind == KindColumn {
		size = r.W
	}

	offset := 0
	for i, c := range n.Children {
		part := size * c.Ratio / total
		if i == len(n.Children)-1 {
			part = size - offset
		}
		child := r
		if n.Kind == KindRow {
			child.Y, child.H = r.Y+offset, part
		} else {
			child.X, child.W = r.X+offset, part
		}
		split(c, child, out)
		offset += part
	}
}

// Leaves returns the placements in tree order.
func (l Layout) Leaves() []Placement {
	return l.leaves
}

// IDs returns the widget ids in tree order.
func (l Layout) IDs() []WidgetID {
	ids := make([]WidgetID, len(l.leaves))
	for i, p := range l.leaves {
		ids[i] = p.ID
	}
	return ids
}

// Rect returns the rectangle of id.
func (l Layout) Rect(id WidgetID) (Rect, bool) {
	for _, p := range l.leaves {
		if p.ID == id {
			return p.Rect, true
		}
	}
	return Rect{}, false
}

// At returns the widget under the cell (x, y).
func (l Layout) At(x, y int) (WidgetID, bool) {
	for _, p := range l.leaves {
		if p.Rect.Contains(x, y) {
			return p.ID, true
		}
	}
	return "", false
}

func (l Layout) index(id WidgetID) int {
	for i, p := range l.leaves {
		if p.ID == id {
			return i
		}
	}
	return -1
}

// Fullscreen returns a layout in which id alone fills the w x h area. The
// source tree is left untouched.
func Fullscreen(l Layout, id WidgetID, w, h int) Layout {
	if l.index(id) < 0 {
		return l
	}
	return Layout{W: w, H: h, leaves: []Placement{{ID: id, Rect: Rect{W: w, H: h}}}}
}

// Cycle moves delta steps through the widgets in tree order, wrapping
// around.
func Cycle(l Layout, from WidgetID, delta int) WidgetID {
	n := len(l.leaves)
	if n == 0 {
		return from
	}
	i := l.index(from)
	if i < 0 {
		return l.leaves[0].ID
	}
	i = ((i+delta)%n + n) % n
	return l.leaves[i].ID
}
