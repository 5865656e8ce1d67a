package queue

import (
	"context"
	"sync"
	"time"

	"github.com/kart-io/notifycast/pkg/errors"
	"github.com/kart-io/notifycast/pkg/utils/idgen"
)

// MemoryQueue is an in-process channel-backed queue. Jobs do not survive
// a restart; it is the default backend for one-shot CLI use and tests.
type MemoryQueue struct {
	jobs chan *Job

	mu     sync.Mutex
	closed bool
}

// NewMemoryQueue creates a memory queue holding at most bufferSize jobs.
func NewMemoryQueue(bufferSize int) *MemoryQueue {
	if bufferSize < 1 {
		bufferSize = 1000
	}
	return &MemoryQueue{
		jobs: make(chan *Job, bufferSize),
	}
}

// Enqueue adds a job, assigning an ID and creation time when absent.
func (q *MemoryQueue) Enqueue(ctx context.Context, job *Job) (string, error) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return "", errors.New(errors.CodeInvalidConfiguration, "queue is closed")
	}
	q.mu.Unlock()

	if job.ID == "" {
		job.ID = idgen.NewJobID("job")
	}
	if job.CreatedAt.IsZero() {
		job.CreatedAt = time.Now()
	}

	select {
	case q.jobs <- job:
		return job.ID, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Dequeue blocks until a job arrives or ctx is done.
func (q *MemoryQueue) Dequeue(ctx context.Context) (*Job, error) {
	select {
	case job, ok := <-q.jobs:
		if !ok {
			return nil, errors.New(errors.CodeInvalidConfiguration, "queue is closed")
		}
		job.Attempts++
		return job, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Ack is a no-op: taking a job off the channel already removed it.
func (q *MemoryQueue) Ack(context.Context, *Job) error { return nil }

// Nack re-enqueues the job for another attempt, dropping it once the
// attempt budget is exhausted.
func (q *MemoryQueue) Nack(ctx context.Context, job *Job) error {
	max := job.MaxAttempts
	if max <= 0 {
		max = 3
	}
	if job.Attempts >= max {
		return nil
	}
	_, err := q.Enqueue(ctx, job)
	return err
}

// Size returns the number of buffered jobs.
func (q *MemoryQueue) Size(context.Context) int {
	return len(q.jobs)
}

// Health always succeeds while the queue is open.
func (q *MemoryQueue) Health(context.Context) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return errors.New(errors.CodeInvalidConfiguration, "queue is closed")
	}
	return nil
}

// Close closes the queue. Buffered jobs remain drainable.
func (q *MemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return nil
	}
	q.closed = true
	close(q.jobs)
	return nil
}
