// fetch/queue.go
package fetch

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// QueueOptions bounds how many tasks run at once and how many may start per interval.
type QueueOptions struct {
	Concurrency int
	IntervalCap int
	Interval    time.Duration
}

// ScraperQueueOptions: 3 concurrent, at most 3 starts per 500ms.
func ScraperQueueOptions() QueueOptions {
	return QueueOptions{Concurrency: 3, IntervalCap: 3, Interval: 500 * time.Millisecond}
}

// GradesQueueOptions: 5 concurrent, at most 5 starts per second.
func GradesQueueOptions() QueueOptions {
	return QueueOptions{Concurrency: 5, IntervalCap: 5, Interval: time.Second}
}

// Task is one unit of queued work.
type Task func(ctx context.Context) error

// Queue dispatches tasks under a concurrency ceiling and a request-rate ceiling.
// A failing task does not cancel its siblings; its error is delivered on the
// channel Enqueue returned. Tasks complete in no guaranteed order.
type Queue struct {
	ctx     context.Context
	group   errgroup.Group
	limiter *rate.Limiter
}

// NewQueue returns a queue bound to ctx. Starts are spaced Interval/IntervalCap
// apart, so no window of length Interval sees more than IntervalCap starts.
func NewQueue(ctx context.Context, opts QueueOptions) *Queue {
	if opts.Concurrency <= 0 {
		opts.Concurrency = 1
	}
	if opts.IntervalCap <= 0 {
		opts.IntervalCap = opts.Concurrency
	}

	limit := rate.Inf
	if opts.Interval > 0 {
		limit = rate.Every(opts.Interval / time.Duration(opts.IntervalCap))
	}

	q := &Queue{
		ctx:     ctx,
		limiter: rate.NewLimiter(limit, 1),
	}
	q.group.SetLimit(opts.Concurrency)
	return q
}

// Enqueue schedules task. It blocks while the queue is at its concurrency
// ceiling. The returned channel receives the task's result exactly once.
func (q *Queue) Enqueue(task Task) <-chan error {
	done := make(chan error, 1)
	q.group.Go(func() error {
		if err := q.limiter.Wait(q.ctx); err != nil {
			done <- err
			return nil
		}
		done <- task(q.ctx)
		return nil
	})
	return done
}

// Drain waits until every enqueued task has finished. It returns the queue
// context's error if the run was cancelled.
func (q *Queue) Drain() error {
	_ = q.group.Wait()
	return q.ctx.Err()
}
