package events

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	ErrQueueFull   = errors.New("event queue full")
	ErrQueueClosed = errors.New("event queue closed")
)

type message struct {
	key  string
	body []byte
}

// Queue hands messages to a single background sender so publishers never
// wait on the broker. When the backlog is full new messages are dropped.
type Queue struct {
	pub     Publisher
	timeout time.Duration
	log     zerolog.Logger

	mu     sync.RWMutex
	closed bool
	ch     chan message
	done   chan struct{}
}

func NewQueue(pub Publisher, backlog int, log zerolog.Logger) *Queue {
	q := &Queue{
		pub:     pub,
		timeout: 2 * time.Second,
		log:     log,
		ch:      make(chan message, backlog),
		done:    make(chan struct{}),
	}
	go q.run()
	return q
}

// Publish enqueues body. The caller's ctx is not carried over; each send
// gets its own deadline.
func (q *Queue) Publish(_ context.Context, key string, body []byte) error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return ErrQueueClosed
	}
	select {
	case q.ch <- message{key: key, body: body}:
		return nil
	default:
		return ErrQueueFull
	}
}

func (q *Queue) run() {
	defer close(q.done)
	for m := range q.ch {
		ctx, cancel := context.WithTimeout(context.Background(), q.timeout)
		if err := q.pub.Publish(ctx, m.key, m.body); err != nil {
			q.log.Warn().Err(err).Str("rk", m.key).Msg("publish queued event")
		}
		cancel()
	}
}

// Close stops accepting messages and waits for the backlog to drain or ctx
// to end. A nil queue is a no-op.
func (q *Queue) Close(ctx context.Context) error {
	if q == nil {
		return nil
	}
	q.mu.Lock()
	if !q.closed {
		q.closed = true
		close(q.ch)
	}
	q.mu.Unlock()

	select {
	case <-q.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
