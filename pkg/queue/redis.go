package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/kart-io/notifycast/pkg/utils/idgen"
)

// RedisOptions configures the Redis Streams backend.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int

	// Stream is the stream key jobs are appended to.
	Stream string
	// Group is the consumer group workers read through.
	Group string
	// Consumer names this worker within the group. Defaults to a random
	// per-process name so several workers can share the group.
	Consumer string
	// MaxLen caps the stream length (approximate trimming).
	MaxLen int64
	// ClaimMinIdle is how long a pending job may sit with a dead consumer
	// before another worker claims it.
	ClaimMinIdle time.Duration
	// Block bounds one XREADGROUP poll.
	Block time.Duration
}

// DefaultRedisOptions returns local single-node defaults.
func DefaultRedisOptions() RedisOptions {
	return RedisOptions{
		Addr:         "localhost:6379",
		Stream:       "notifycast:jobs",
		Group:        "notifycast-workers",
		MaxLen:       10000,
		ClaimMinIdle: 5 * time.Minute,
		Block:        time.Second,
	}
}

// RedisQueue implements Queue on Redis Streams with a consumer group, so
// jobs survive process restarts and can be shared between workers.
type RedisQueue struct {
	client *redis.Client
	opts   RedisOptions
	closed bool
}

// NewRedisQueue connects to Redis and ensures the stream and consumer
// group exist.
func NewRedisQueue(ctx context.Context, opts RedisOptions) (*RedisQueue, error) {
	if opts.Stream == "" || opts.Group == "" {
		return nil, fmt.Errorf("redis queue requires a stream and group name")
	}
	if opts.Consumer == "" {
		opts.Consumer = "worker-" + idgen.NewID()
	}
	if opts.MaxLen <= 0 {
		opts.MaxLen = 10000
	}
	if opts.Block <= 0 {
		opts.Block = time.Second
	}
	if opts.ClaimMinIdle <= 0 {
		opts.ClaimMinIdle = 5 * time.Minute
	}

	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}

	q := &RedisQueue{client: client, opts: opts}
	if err := q.initGroup(ctx); err != nil {
		_ = client.Close()
		return nil, err
	}
	return q, nil
}

// initGroup creates the consumer group, tolerating "already exists".
func (q *RedisQueue) initGroup(ctx context.Context) error {
	err := q.client.XGroupCreateMkStream(ctx, q.opts.Stream, q.opts.Group, "0").Err()
	if err != nil && !strings.Contains(err.Error(), "BUSYGROUP") {
		return fmt.Errorf("create consumer group: %w", err)
	}
	return nil
}

// Enqueue appends the job to the stream.
func (q *RedisQueue) Enqueue(ctx context.Context, job *Job) (string, error) {
	if q.closed {
		return "", fmt.Errorf("queue is closed")
	}
	if job.ID == "" {
		job.ID = idgen.NewJobID("job")
	}
	if job.CreatedAt.IsZero() {
		job.CreatedAt = time.Now()
	}

	data, err := json.Marshal(job)
	if err != nil {
		return "", fmt.Errorf("serialize job: %w", err)
	}

	streamID, err := q.client.XAdd(ctx, &redis.XAddArgs{
		Stream: q.opts.Stream,
		MaxLen: q.opts.MaxLen,
		Approx: true,
		Values: map[string]interface{}{
			"id":   job.ID,
			"data": string(data),
		},
	}).Result()
	if err != nil {
		return "", fmt.Errorf("add to stream: %w", err)
	}
	return streamID, nil
}

// Dequeue reads one job through the consumer group. A poll with no work
// is reported as context.DeadlineExceeded.
func (q *RedisQueue) Dequeue(ctx context.Context) (*Job, error) {
	if q.closed {
		return nil, fmt.Errorf("queue is closed")
	}

	q.claimIdle(ctx)

	streams, err := q.client.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    q.opts.Group,
		Consumer: q.opts.Consumer,
		Streams:  []string{q.opts.Stream, ">"},
		Count:    1,
		Block:    q.opts.Block,
	}).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, context.DeadlineExceeded
		}
		return nil, fmt.Errorf("read from stream: %w", err)
	}
	if len(streams) == 0 || len(streams[0].Messages) == 0 {
		return nil, context.DeadlineExceeded
	}

	return parseStreamMessage(streams[0].Messages[0])
}

func parseStreamMessage(m redis.XMessage) (*Job, error) {
	data, ok := m.Values["data"].(string)
	if !ok {
		return nil, fmt.Errorf("stream message %s missing data field", m.ID)
	}
	var job Job
	if err := json.Unmarshal([]byte(data), &job); err != nil {
		return nil, fmt.Errorf("deserialize job: %w", err)
	}
	job.Attempts++
	job.StreamID = m.ID
	return &job, nil
}

// Ack acknowledges the job in the consumer group.
func (q *RedisQueue) Ack(ctx context.Context, job *Job) error {
	if job.StreamID == "" {
		return fmt.Errorf("job %s has no stream id", job.ID)
	}
	return q.client.XAck(ctx, q.opts.Stream, q.opts.Group, job.StreamID).Err()
}

// Nack leaves the job pending. It will be reclaimed by claimIdle once
// idle long enough, unless the attempt budget is spent, in which case it
// is acknowledged and dropped.
func (q *RedisQueue) Nack(ctx context.Context, job *Job) error {
	max := job.MaxAttempts
	if max <= 0 {
		max = 3
	}
	if job.Attempts >= max {
		return q.Ack(ctx, job)
	}
	return nil
}

// claimIdle takes over pending jobs whose consumer went away.
func (q *RedisQueue) claimIdle(ctx context.Context) {
	pending, err := q.client.XPendingExt(ctx, &redis.XPendingExtArgs{
		Stream: q.opts.Stream,
		Group:  q.opts.Group,
		Start:  "-",
		End:    "+",
		Count:  10,
	}).Result()
	if err != nil || len(pending) == 0 {
		return
	}

	var ids []string
	for _, p := range pending {
		if p.Idle >= q.opts.ClaimMinIdle {
			ids = append(ids, p.ID)
		}
	}
	if len(ids) > 0 {
		q.client.XClaim(ctx, &redis.XClaimArgs{
			Stream:   q.opts.Stream,
			Group:    q.opts.Group,
			Consumer: q.opts.Consumer,
			Messages: ids,
			MinIdle:  q.opts.ClaimMinIdle,
		})
	}
}

// Size returns the stream length.
func (q *RedisQueue) Size(ctx context.Context) int {
	n, err := q.client.XLen(ctx, q.opts.Stream).Result()
	if err != nil {
		return 0
	}
	return int(n)
}

// Health pings the server.
func (q *RedisQueue) Health(ctx context.Context) error {
	if q.closed {
		return fmt.Errorf("queue is closed")
	}
	return q.client.Ping(ctx).Err()
}

// Close closes the underlying client.
func (q *RedisQueue) Close() error {
	if q.closed {
		return nil
	}
	q.closed = true
	return q.client.Close()
}
