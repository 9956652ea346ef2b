package layout

import "math"

// Direction is a focus movement.
type Direction int

const (
	Left Direction = iota
	Right
	Up
	Down
)

func (d Direction) String() string {
	switch d {
	case Left:
		return "left"
	case Right:
		return "right"
	case Up:
		return "up"
	case Down:
		return "down"
	}
	return "unknown"
}

// Navigate returns the widget reached by moving focus from in direction
// dir. Only widgets lying entirely on that side are considered. Neighbours
// sharing an edge win over distant ones, preferring the longest shared
// edge; otherwise the closest centroid wins. Remaining ties go to the
// earlier widget in tree order. With no candidate, from is returned.
func Navigate(l Layout, from WidgetID, dir Direction) WidgetID {
	src, ok := l.Rect(from)
	if !ok {
		return from
	}
	sx, sy := src.Center()

	var (
		best        WidgetID
		bestAdj     bool
		bestOverlap int
		bestDist    = math.Inf(1)
	)
	for _, p := range l.leaves {
		if p.ID == from || !beyond(src, p.Rect, dir) {
			continue
		}
		overlap, adjacent := touching(src, p.Rect, dir)
		cx, cy := p.Rect.Center()
		dist := math.Hypot(cx-sx, cy-sy)

		var better bool
		switch {
		case best == "":
			better = true
		case adjacent != bestAdj:
			better = adjacent
		case adjacent && overlap != bestOverlap:
			better = overlap > bestOverlap
		default:
			better = dist < bestDist
		}
		if better {
			best, bestAdj, bestOverlap, bestDist = p.ID, adjacent, overlap, dist
		}
	}
	if best == "" {
		return from
	}
	return best
}

// beyond reports whether r lies entirely on the dir side of src.
func beyond(src, r Rect, dir Direction) bool {
	switch dir {
	case Left:
		return r.X+r.W <= src.X
	case Right:
		return r.X >= src.X+src.W
	case Up:
		return r.Y+r.H <= src.Y
	case Down:
		return r.Y >= src.Y+src.H
	}
	return false
}

// touching returns the length of the edge src and r share on the dir side,
// and whether that length is positive.
func touching(src, r Rect, dir Direction) (int, bool) {
	var edge bool
	var overlap int
	switch dir {
	case Left:
		edge = r.X+r.W == src.X
		overlap = span(src.Y, src.H, r.Y, r.H)
	case Right:
		edge = r.X == src.X+src.W
		overlap = span(src.Y, src.H, r.Y, r.H)
	case Up:
		edge = r.Y+r.H == src.Y
		overlap = span(src.X, src.W, r.X, r.W)
	case Down:
		edge = r.Y == src.Y+src.H
		overlap = span(src.X, src.W, r.X, r.W)
	}
	if !edge || overlap <= 0 {
		return 0, false
	}
	return overlap, true
}

// span is the length of the intersection of [a, a+al) and [b, b+bl).
func span(a, al, b, bl int) int {
	return min(a+al, b+bl) - max(a, b)
}
