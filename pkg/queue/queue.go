// Package queue provides asynchronous dispatch: jobs are enqueued with a
// message and its target URLs, and workers drain the queue through the
// dispatch coordinator. Two backends exist, an in-process channel queue
// and Redis Streams.
package queue

import (
	"context"
	"time"

	"github.com/kart-io/notifycast/pkg/message"
)

// Job is one queued dispatch request.
type Job struct {
	// ID uniquely identifies the job across retries.
	ID string `json:"id"`
	// Message is the notification payload.
	Message *message.Message `json:"message"`
	// URLs are the target service URLs.
	URLs []string `json:"urls"`
	// Attempts counts processing attempts so far.
	Attempts int `json:"attempts"`
	// MaxAttempts bounds retries; zero means the backend default.
	MaxAttempts int `json:"max_attempts,omitempty"`
	// CreatedAt is when the job was first enqueued.
	CreatedAt time.Time `json:"created_at"`

	// StreamID is the backend-native handle used for acknowledgment.
	// Empty for backends that acknowledge by job ID.
	StreamID string `json:"-"`
}

// Queue is the async job transport. Implementations must be safe for
// concurrent use.
type Queue interface {
	// Enqueue adds a job and returns the backend-native handle.
	Enqueue(ctx context.Context, job *Job) (string, error)

	// Dequeue blocks until a job is available, the context is done, or
	// the backend's poll interval elapses. A poll timeout is reported as
	// context.DeadlineExceeded so callers can distinguish "no work" from
	// transport errors.
	Dequeue(ctx context.Context) (*Job, error)

	// Ack marks the job as successfully processed.
	Ack(ctx context.Context, job *Job) error

	// Nack returns the job for another attempt.
	Nack(ctx context.Context, job *Job) error

	// Size returns the number of queued jobs, best effort.
	Size(ctx context.Context) int

	// Health verifies the backend is reachable.
	Health(ctx context.Context) error

	// Close releases backend resources. The queue is unusable afterward.
	Close() error
}
