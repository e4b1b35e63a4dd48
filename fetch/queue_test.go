package fetch

import (
	"context"
	"errors"
	"sort"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueBoundsConcurrency(t *testing.T) {
	q := NewQueue(context.Background(), QueueOptions{Concurrency: 3, IntervalCap: 100, Interval: time.Millisecond})

	var inFlight, peak, done int32
	for i := 0; i < 12; i++ {
		q.Enqueue(func(ctx context.Context) error {
			n := atomic.AddInt32(&inFlight, 1)
			for {
				p := atomic.LoadInt32(&peak)
				if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
					break
				}
			}
			time.Sleep(10 * time.Millisecond)
			atomic.AddInt32(&inFlight, -1)
			atomic.AddInt32(&done, 1)
			return nil
		})
	}
	require.NoError(t, q.Drain())

	assert.EqualValues(t, 12, atomic.LoadInt32(&done))
	assert.LessOrEqual(t, atomic.LoadInt32(&peak), int32(3))
}

func TestQueueBoundsRate(t *testing.T) {
	q := NewQueue(context.Background(), QueueOptions{Concurrency: 10, IntervalCap: 2, Interval: 100 * time.Millisecond})

	start := time.Now()
	for i := 0; i < 6; i++ {
		q.Enqueue(func(ctx context.Context) error { return nil })
	}
	require.NoError(t, q.Drain())

	// One start every 50ms.
	assert.GreaterOrEqual(t, time.Since(start), 250*time.Millisecond)
}

func TestQueueNeverExceedsCapPerInterval(t *testing.T) {
	opts := QueueOptions{Concurrency: 10, IntervalCap: 3, Interval: 150 * time.Millisecond}
	q := NewQueue(context.Background(), opts)

	var mu sync.Mutex
	var starts []time.Time
	for i := 0; i < 9; i++ {
		q.Enqueue(func(ctx context.Context) error {
			mu.Lock()
			starts = append(starts, time.Now())
			mu.Unlock()
			return nil
		})
	}
	require.NoError(t, q.Drain())
	require.Len(t, starts, 9)

	sort.Slice(starts, func(i, j int) bool { return starts[i].Before(starts[j]) })
	// Any IntervalCap+1 consecutive starts span at least one Interval.
	const slack = 15 * time.Millisecond
	for i := 0; i+opts.IntervalCap < len(starts); i++ {
		gap := starts[i+opts.IntervalCap].Sub(starts[i])
		assert.GreaterOrEqual(t, gap, opts.Interval-slack, "starts %d..%d", i, i+opts.IntervalCap)
	}
}

func TestQueueDeliversTaskErrorsWithoutCancellingSiblings(t *testing.T) {
	q := NewQueue(context.Background(), ScraperQueueOptions())
	boom := errors.New("boom")

	var ran int32
	failed := q.Enqueue(func(ctx context.Context) error { return boom })
	results := make([]<-chan error, 0, 4)
	for i := 0; i < 4; i++ {
		results = append(results, q.Enqueue(func(ctx context.Context) error {
			atomic.AddInt32(&ran, 1)
			return ctx.Err()
		}))
	}
	require.NoError(t, q.Drain())

	assert.ErrorIs(t, <-failed, boom)
	for _, r := range results {
		assert.NoError(t, <-r)
	}
	assert.EqualValues(t, 4, atomic.LoadInt32(&ran))
}

func TestQueueDrainReportsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	q := NewQueue(ctx, QueueOptions{Concurrency: 1, IntervalCap: 1, Interval: time.Hour})

	first := q.Enqueue(func(ctx context.Context) error { return nil })
	assert.NoError(t, <-first)

	second := q.Enqueue(func(ctx context.Context) error { return nil })
	cancel()

	assert.Error(t, <-second)
	assert.ErrorIs(t, q.Drain(), context.Canceled)
}
