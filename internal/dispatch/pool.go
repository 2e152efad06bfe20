// Package dispatch runs handler work asynchronously with bounded concurrency
// and per-identity ordering: messages from the same chat are processed one at
// a time in arrival order, while different chats proceed in parallel up to the
// pool's concurrency limit.
package dispatch

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"
)

var (
	// ErrQueueFull is returned by Submit when the identity already has the
	// maximum number of tasks waiting.
	ErrQueueFull = errors.New("dispatch queue full for identity")

	// ErrStopped is returned by Submit once the pool has begun shutting down.
	ErrStopped = errors.New("dispatch pool stopped")
)

// drainTimeout bounds how long Run waits for in-flight tasks after the
// context is cancelled.
const drainTimeout = 10 * time.Second

// Task is a unit of asynchronous work. The context it receives is cancelled
// only when the pool gives up waiting during shutdown.
type Task func(ctx context.Context)

type identityQueue struct {
	tasks    []Task
	draining bool
}

// Pool executes submitted tasks with a global concurrency bound and a FIFO
// queue per identity. At most one task per identity is in flight at any time.
type Pool struct {
	logger        *slog.Logger
	sem           *semaphore.Weighted
	maxConcurrent int64
	maxQueued     int

	// baseCtx outlives the run context so in-flight tasks can finish after
	// shutdown begins; it is cancelled once the drain completes or times out.
	baseCtx context.Context
	cancel  context.CancelFunc

	mu       sync.Mutex
	queues   map[string]*identityQueue
	stopping bool

	wg sync.WaitGroup
}

// NewPool creates a pool allowing maxConcurrent tasks in flight across all
// identities and maxQueued waiting tasks per identity. Non-positive values
// fall back to 1.
func NewPool(maxConcurrent int64, maxQueued int, logger *slog.Logger) *Pool {
	if logger == nil {
		logger = slog.Default()
	}
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	if maxQueued < 1 {
		maxQueued = 1
	}

	baseCtx, cancel := context.WithCancel(context.Background())

	return &Pool{
		logger:        logger.With("component", "dispatch_pool"),
		sem:           semaphore.NewWeighted(maxConcurrent),
		maxConcurrent: maxConcurrent,
		maxQueued:     maxQueued,
		baseCtx:       baseCtx,
		cancel:        cancel,
		queues:        make(map[string]*identityQueue),
	}
}

// Submit queues a task for the given identity. It returns ErrQueueFull when
// the identity's queue is at capacity and ErrStopped once shutdown has begun.
func (p *Pool) Submit(identity string, task Task) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stopping {
		return ErrStopped
	}

	q, ok := p.queues[identity]
	if !ok {
		q = &identityQueue{}
		p.queues[identity] = q
	}

	if len(q.tasks) >= p.maxQueued {
		return ErrQueueFull
	}
	q.tasks = append(q.tasks, task)

	// One drainer per identity. The drainer keeps the flag set while a
	// popped task is still executing, so later submissions ride it instead
	// of starting a second one.
	if !q.draining {
		q.draining = true
		p.wg.Add(1)
		go p.drain(identity, q)
	}
	return nil
}

// drain runs the identity's queued tasks in order and removes the queue once
// it is empty. Queued tasks are discarded when shutdown begins; the one
// already running is allowed to finish.
func (p *Pool) drain(identity string, q *identityQueue) {
	defer p.wg.Done()

	for {
		p.mu.Lock()
		if p.stopping && len(q.tasks) > 0 {
			p.logger.Warn("Discarding queued tasks on shutdown", "chat_id", identity, "discarded", len(q.tasks))
			q.tasks = nil
		}
		if len(q.tasks) == 0 {
			q.draining = false
			delete(p.queues, identity)
			p.mu.Unlock()
			return
		}
		task := q.tasks[0]
		q.tasks = q.tasks[1:]
		p.mu.Unlock()

		p.execute(identity, task)
	}
}

func (p *Pool) execute(identity string, task Task) {
	if err := p.sem.Acquire(p.baseCtx, 1); err != nil {
		p.logger.Warn("Pool stopped before task could run", "chat_id", identity)
		return
	}
	defer p.sem.Release(1)

	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("Dispatched task panicked", "chat_id", identity, "panic", r)
		}
	}()

	task(p.baseCtx)
}

// Run blocks until ctx is cancelled, then stops accepting work and waits up
// to drainTimeout for in-flight tasks before cancelling them.
func (p *Pool) Run(ctx context.Context) error {
	p.logger.Info("Dispatch pool running", "max_concurrent", p.maxConcurrent, "max_queued", p.maxQueued)

	<-ctx.Done()

	p.mu.Lock()
	p.stopping = true
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.logger.Info("Dispatch pool drained.")
	case <-time.After(drainTimeout):
		p.logger.Warn("Dispatch pool drain timed out, cancelling in-flight tasks.")
	}

	p.cancel()
	return nil
}
