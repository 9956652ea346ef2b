// Package sampler drives periodic metric collection and hands snapshots to
// the render loop through a bounded queue.
package sampler

import (
	"context"
	"errors"
	"sync"

	"github.com/rileyhilliard/rtop/internal/harvest"
)

// ErrClosed is returned by Recv once the queue is closed and drained.
var ErrClosed = errors.New("snapshot queue closed")

// DefaultQueueSize is the capacity used when a non-positive size is given.
const DefaultQueueSize = 4

// Queue is a bounded FIFO of snapshots between one producer and one
// consumer. When full, Push discards the oldest queued snapshot so the
// consumer always sees the freshest data.
type Queue struct {
	mu      sync.Mutex
	items   []*harvest.Snapshot
	size    int
	dropped uint64
	closed  bool
	notify  chan struct{}
}

// NewQueue creates a queue holding at most size snapshots.
func NewQueue(size int) *Queue {
	if size <= 0 {
		size = DefaultQueueSize
	}
	return &Queue{
		items:  make([]*harvest.Snapshot, 0, size),
		size:   size,
		notify: make(chan struct{}, 1),
	}
}

// Push enqueues s. It reports false when the queue is closed.
func (q *Queue) Push(s *harvest.Snapshot) bool {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return false
	}
	if len(q.items) == q.size {
		q.items[0] = nil
		q.items = q.items[1:]
		q.dropped++
	}
	q.items = append(q.items, s)
	q.mu.Unlock()

	q.signal()
	return true
}

func (q *Queue) signal() {
	select {
	case q.notify <- struct{}{}:
	default:
	}
}

// TryPop removes the oldest snapshot without blocking.
func (q *Queue) TryPop() (*harvest.Snapshot, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return nil, false
	}
	s := q.items[0]
	q.items[0] = nil
	q.items = q.items[1:]
	return s, true
}

// Recv blocks until a snapshot is available. Queued snapshots are still
// delivered after Close; ErrClosed follows once the queue is empty.
func (q *Queue) Recv(ctx context.Context) (*harvest.Snapshot, error) {
	for {
		if s, ok := q.TryPop(); ok {
			return s, nil
		}
		q.mu.Lock()
		closed := q.closed
		q.mu.Unlock()
		if closed {
			return nil, ErrClosed
		}

		select {
		case <-q.notify:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// Close stops accepting snapshots and wakes a blocked Recv.
func (q *Queue) Close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
	q.signal()
}

// Len returns the number of queued snapshots.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Cap returns the queue capacity.
func (q *Queue) Cap() int { return q.size }

// Dropped returns how many snapshots were discarded because the consumer
// fell behind.
func (q *Queue) Dropped() uint64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.dropped
}
