package queue

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kart-io/notifycast/pkg/message"
)

func TestMemoryQueueEnqueueDequeue(t *testing.T) {
	q := NewMemoryQueue(10)
	defer q.Close()

	job := &Job{
		Message: message.New("Title", "Body"),
		URLs:    []string{"growl://host1"},
	}
	id, err := q.Enqueue(context.Background(), job)
	require.NoError(t, err)
	assert.NotEmpty(t, id)
	assert.False(t, job.CreatedAt.IsZero())
	assert.Equal(t, 1, q.Size(context.Background()))

	got, err := q.Dequeue(context.Background())
	require.NoError(t, err)
	assert.Equal(t, id, got.ID)
	assert.Equal(t, 1, got.Attempts)
	assert.Equal(t, "Title", got.Message.Title)
	assert.Zero(t, q.Size(context.Background()))
}

func TestMemoryQueueDequeueHonorsContext(t *testing.T) {
	q := NewMemoryQueue(1)
	defer q.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := q.Dequeue(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestMemoryQueueNackRetriesUntilBudgetSpent(t *testing.T) {
	q := NewMemoryQueue(10)
	defer q.Close()

	job := &Job{URLs: []string{"growl://a"}, MaxAttempts: 2}
	_, err := q.Enqueue(context.Background(), job)
	require.NoError(t, err)

	first, err := q.Dequeue(context.Background())
	require.NoError(t, err)
	require.NoError(t, q.Nack(context.Background(), first))
	assert.Equal(t, 1, q.Size(context.Background()), "first failure re-enqueues")

	second, err := q.Dequeue(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, second.Attempts)
	require.NoError(t, q.Nack(context.Background(), second))
	assert.Zero(t, q.Size(context.Background()), "budget spent, job dropped")
}

func TestMemoryQueueClose(t *testing.T) {
	q := NewMemoryQueue(10)
	require.NoError(t, q.Close())

	_, err := q.Enqueue(context.Background(), &Job{})
	assert.Error(t, err)
	assert.Error(t, q.Health(context.Background()))
	assert.NoError(t, q.Close(), "double close is safe")
}
