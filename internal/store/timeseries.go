// Package store keeps the rolling history the dashboard draws from: one
// time series per metric channel plus the live process table.
//
// Nothing in the package is safe for concurrent use. The dashboard event
// loop is the only writer and the only reader.
package store

import (
	"iter"
	"time"
)

// DefaultRetention is how far back a series reaches by default.
const DefaultRetention = 60 * time.Second

// DefaultMaxSamples caps a series regardless of retention.
const DefaultMaxSamples = 3600

// Point is one sample of a series.
type Point struct {
	Time  time.Time
	Value float64
}

// TimeSeries is a ring buffer of points with strictly increasing
// timestamps. Points older than the retention window, or beyond the sample
// cap, are evicted as new points arrive.
type TimeSeries struct {
	data      []Point
	head      int
	count     int
	retention time.Duration
}

// NewTimeSeries creates a series keeping retention worth of points, at most
// maxSamples of them.
func NewTimeSeries(retention time.Duration, maxSamples int) *TimeSeries {
	if retention <= 0 {
		retention = DefaultRetention
	}
	if maxSamples < 2 {
		maxSamples = DefaultMaxSamples
	}
	return &TimeSeries{
		data:      make([]Point, maxSamples),
		retention: retention,
	}
}

// Append adds a point. It returns false, leaving the series untouched, when
// t is not after the newest point.
func (s *TimeSeries) Append(t time.Time, v float64) bool {
	if s.count > 0 && !t.After(s.at(s.count-1).Time) {
		return false
	}

	cutoff := t.Add(-s.retention)
	for s.count > 0 && s.at(0).Time.Before(cutoff) {
		s.count--
	}

	size := len(s.data)
	s.data[s.head] = Point{Time: t, Value: v}
	s.head = (s.head + 1) % size
	if s.count < size {
		s.count++
	}
	return true
}

// at returns the i-th oldest point.
func (s *TimeSeries) at(i int) Point {
	size := len(s.data)
	return s.data[(s.head-s.count+i+size)%size]
}

// Len returns the number of retained points.
func (s *TimeSeries) Len() int {
	return s.count
}

// Latest returns the newest point.
func (s *TimeSeries) Latest() (Point, bool) {
	if s.count == 0 {
		return Point{}, false
	}
	return s.at(s.count - 1), true
}

// Last returns the values of the newest n points, oldest first.
func (s *TimeSeries) Last(n int) []float64 {
	if n <= 0 || s.count == 0 {
		return nil
	}
	if n > s.count {
		n = s.count
	}
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		out[i] = s.at(s.count - n + i).Value
	}
	return out
}

// Range yields the points with from <= Time <= to, oldest first. A zero
// from or to leaves that side open. The window is captured when iteration
// starts, so the consumer may append while ranging.
func (s *TimeSeries) Range(from, to time.Time) iter.Seq[Point] {
	return func(yield func(Point) bool) {
		pts := make([]Point, 0, s.count)
		for i := 0; i < s.count; i++ {
			p := s.at(i)
			if !from.IsZero() && p.Time.Before(from) {
				continue
			}
			if !to.IsZero() && p.Time.After(to) {
				break
			}
			pts = append(pts, p)
		}

		for _, p := range pts {
			if !yield(p) {
				return
			}
		}
	}
}
