package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/Lixing-Zhang/room-orders/internal/metrics"
	"github.com/Lixing-Zhang/room-orders/internal/models"
)

// ErrCommitterClosed is returned when a commit is queued after Close
var ErrCommitterClosed = errors.New("committer closed")

const commitTimeout = 5 * time.Second

// OrderStore is the durability collaborator for room bills.
// A nil order is a tombstone: the room has no active bill.
type OrderStore interface {
	Commit(ctx context.Context, roomNumber int, order *models.RoomOrder) error
}

type commitJob struct {
	roomNumber int
	order      *models.RoomOrder
}

// AsyncCommitter hands commits to a single background worker so request
// handling never waits on the store. Commits are applied in the order they
// were queued. Failures are logged and counted, never retried.
type AsyncCommitter struct {
	store  OrderStore
	logger *slog.Logger
	jobs   chan commitJob
	done   chan struct{}

	mu     sync.RWMutex
	closed bool
}

// NewAsyncCommitter starts the background worker
func NewAsyncCommitter(store OrderStore, queueSize int, logger *slog.Logger) *AsyncCommitter {
	if queueSize < 1 {
		queueSize = 1
	}

	c := &AsyncCommitter{
		store:  store,
		logger: logger,
		jobs:   make(chan commitJob, queueSize),
		done:   make(chan struct{}),
	}
	go c.run()
	return c
}

// Commit queues the write. It blocks only while the queue is full.
func (c *AsyncCommitter) Commit(ctx context.Context, roomNumber int, order *models.RoomOrder) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.closed {
		return ErrCommitterClosed
	}

	job := commitJob{roomNumber: roomNumber}
	if order != nil {
		owned := order.Clone()
		job.order = &owned
	}

	select {
	case c.jobs <- job:
		metrics.SetCommitQueueDepth(len(c.jobs))
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *AsyncCommitter) run() {
	defer close(c.done)

	for job := range c.jobs {
		metrics.SetCommitQueueDepth(len(c.jobs))

		ctx, cancel := context.WithTimeout(context.Background(), commitTimeout)
		err := c.store.Commit(ctx, job.roomNumber, job.order)
		cancel()

		if err != nil {
			metrics.SideEffectFailed("commit")
			c.logger.Error("failed to commit room order",
				slog.Int("room", job.roomNumber),
				slog.String("error", err.Error()),
			)
		}
	}
}

// Close stops accepting commits and waits until queued ones are written
func (c *AsyncCommitter) Close() {
	c.mu.Lock()
	if !c.closed {
		c.closed = true
		close(c.jobs)
	}
	c.mu.Unlock()

	<-c.done
}
