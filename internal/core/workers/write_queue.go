package workers

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/comitanigiacomo/kanso-streak-engine/internal/logger"
	"github.com/comitanigiacomo/kanso-streak-engine/internal/metrics"
)

var ErrQueueClosed = errors.New("write queue is closed")

const DefaultQueueSize = 100

// Op is a single write. It runs on the queue's context, not the submitter's.
type Op = func(ctx context.Context) error

type queuedOp struct {
	op     Op
	result chan error
}

// WriteQueue runs submitted writes one at a time in submission order on a
// single background goroutine.
type WriteQueue struct {
	name    string
	ops     chan queuedOp
	log     *zap.Logger
	metrics *metrics.Recorder

	mu      sync.RWMutex
	closed  bool
	started bool
	done    chan struct{}
}

func NewWriteQueue(name string, size int, log *zap.Logger, rec *metrics.Recorder) *WriteQueue {
	if size < 1 {
		size = DefaultQueueSize
	}
	return &WriteQueue{
		name:    name,
		ops:     make(chan queuedOp, size),
		log:     logger.OrNop(log).With(zap.String("queue", name)),
		metrics: rec,
		done:    make(chan struct{}),
	}
}

func (q *WriteQueue) Name() string {
	return q.name
}

// Start launches the worker. Cancelling ctx closes the queue; writes already
// queued still run to completion.
func (q *WriteQueue) Start(ctx context.Context) {
	q.mu.Lock()
	if q.started {
		q.mu.Unlock()
		return
	}
	q.started = true
	q.mu.Unlock()

	opCtx := context.WithoutCancel(ctx)

	go func() {
		defer close(q.done)
		q.log.Info("write_queue_started")
		for item := range q.ops {
			q.metrics.SetQueueDepth(q.name, len(q.ops))
			err := q.run(opCtx, item.op)
			q.metrics.IncQueueOp(q.name, err == nil)
			if err != nil {
				q.log.Warn("write_failed", zap.Error(err))
			}
			item.result <- err
		}
		q.log.Info("write_queue_stopped")
	}()

	go func() {
		select {
		case <-ctx.Done():
			q.Close()
		case <-q.done:
		}
	}()
}

func (q *WriteQueue) run(ctx context.Context, op Op) (err error) {
	defer func() {
		if r := recover(); r != nil {
			q.log.Error("write_panic_recovered", zap.Any("panic", r))
			err = fmt.Errorf("write queue %s: panic: %v", q.name, r)
		}
	}()
	return op(ctx)
}

// Submit enqueues op and returns a channel that receives its result once it
// has run. ctx only bounds the wait for a free slot; once accepted the write
// is not cancellable.
func (q *WriteQueue) Submit(ctx context.Context, op Op) (<-chan error, error) {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return nil, ErrQueueClosed
	}

	item := queuedOp{op: op, result: make(chan error, 1)}
	select {
	case q.ops <- item:
		q.metrics.SetQueueDepth(q.name, len(q.ops))
		return item.result, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Do submits op and waits for its result. If ctx ends first the write still
// happens; only the wait is abandoned.
func (q *WriteQueue) Do(ctx context.Context, op Op) error {
	result, err := q.Submit(ctx, op)
	if err != nil {
		return err
	}
	select {
	case err := <-result:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Len reports the number of writes waiting to run.
func (q *WriteQueue) Len() int {
	return len(q.ops)
}

// Close stops accepting writes and waits for the pending ones to finish.
func (q *WriteQueue) Close() {
	q.mu.Lock()
	if !q.closed {
		q.closed = true
		close(q.ops)
	}
	started := q.started
	q.mu.Unlock()

	if started {
		<-q.done
	}
}
