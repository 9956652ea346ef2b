package sampler

import (
	"context"
	"testing"
	"time"

	"github.com/rileyhilliard/rtop/internal/harvest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func snapAt(sec int) *harvest.Snapshot {
	return &harvest.Snapshot{Timestamp: time.Unix(int64(sec), 0)}
}

func TestQueue_DropsOldestWhenFull(t *testing.T) {
	q := NewQueue(2)
	a, b, c := snapAt(1), snapAt(2), snapAt(3)

	assert.True(t, q.Push(a))
	assert.True(t, q.Push(b))
	assert.True(t, q.Push(c))

	assert.Equal(t, 2, q.Len())
	assert.Equal(t, 2, q.Cap())
	assert.Equal(t, uint64(1), q.Dropped())

	got, ok := q.TryPop()
	require.True(t, ok)
	assert.Same(t, b, got)

	got, ok = q.TryPop()
	require.True(t, ok)
	assert.Same(t, c, got)

	_, ok = q.TryPop()
	assert.False(t, ok)
}

func TestQueue_DefaultSize(t *testing.T) {
	assert.Equal(t, DefaultQueueSize, NewQueue(0).Cap())
}

func TestQueue_PreservesOrder(t *testing.T) {
	q := NewQueue(10)
	for i := 0; i < 10; i++ {
		q.Push(snapAt(i))
	}
	for i := 0; i < 10; i++ {
		got, err := q.Recv(context.Background())
		require.NoError(t, err)
		assert.Equal(t, int64(i), got.Timestamp.Unix())
	}
}

func TestQueue_RecvBlocksUntilPush(t *testing.T) {
	q := NewQueue(1)
	want := snapAt(7)

	go func() {
		time.Sleep(20 * time.Millisecond)
		q.Push(want)
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	got, err := q.Recv(ctx)
	require.NoError(t, err)
	assert.Same(t, want, got)
}

func TestQueue_RecvHonorsContext(t *testing.T) {
	q := NewQueue(1)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := q.Recv(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestQueue_CloseDrainsThenFails(t *testing.T) {
	q := NewQueue(2)
	q.Push(snapAt(1))
	q.Close()

	assert.False(t, q.Push(snapAt(2)), "closed queue rejects pushes")

	got, err := q.Recv(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.Timestamp.Unix())

	_, err = q.Recv(context.Background())
	assert.ErrorIs(t, err, ErrClosed)
}

func TestQueue_CloseWakesReceiver(t *testing.T) {
	q := NewQueue(1)
	errc := make(chan error, 1)
	go func() {
		_, err := q.Recv(context.Background())
		errc <- err
	}()

	time.Sleep(20 * time.Millisecond)
	q.Close()

	select {
	case err := <-errc:
		assert.ErrorIs(t, err, ErrClosed)
	case <-time.After(2 * time.Second):
		t.Fatal("Recv did not return after Close")
	}
}
