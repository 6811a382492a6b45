// Package jobs runs background tasks on a small goroutine pool. A failed task is
// logged and dropped; the next enqueue of the same kind runs it again.
package jobs

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

var (
	// ErrQueueFull is returned by Enqueue when the buffer has no room.
	ErrQueueFull = errors.New("queue full")
	// ErrNotRunning is returned by Enqueue before Start or after Stop.
	ErrNotRunning = errors.New("queue not running")
)

// Task is a unit of background work. Tasks sharing a Kind and Key coalesce while one is pending.
type Task struct {
	Kind     string
	Key      string
	Enqueued time.Time
}

func (t Task) id() string {
	return t.Kind + ":" + t.Key
}

// Handler processes a task.
type Handler func(context.Context, Task) error

// Config configures worker pool behaviour.
type Config struct {
	Workers    int
	BufferSize int
	Logger     *zap.Logger
}

// Queue is an in-memory task dispatcher backed by goroutines.
type Queue struct {
	name    string
	handler Handler
	cfg     Config

	tasks   chan Task
	pending map[string]struct{}

	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	mu      sync.Mutex
	running bool
}

// New builds a queue named name that hands tasks to handler.
func New(name string, handler Handler, cfg Config) *Queue {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = cfg.Workers * 4
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	return &Queue{
		name:    name,
		handler: handler,
		cfg:     cfg,
		tasks:   make(chan Task, cfg.BufferSize),
		pending: make(map[string]struct{}),
	}
}

// Start launches the workers. Calling it twice is a no-op.
func (q *Queue) Start(ctx context.Context) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.running {
		return
	}
	q.ctx, q.cancel = context.WithCancel(ctx)
	for i := 0; i < q.cfg.Workers; i++ {
		q.wg.Add(1)
		go q.worker()
	}
	q.running = true
	q.cfg.Logger.Info("queue started", zap.String("queue", q.name), zap.Int("workers", q.cfg.Workers))
}

// Stop cancels the workers and waits for in-flight tasks to return.
func (q *Queue) Stop() {
	q.mu.Lock()
	if !q.running {
		q.mu.Unlock()
		return
	}
	q.running = false
	q.cancel()
	q.mu.Unlock()

	q.wg.Wait()
	q.cfg.Logger.Info("queue stopped", zap.String("queue", q.name))
}

// Enqueue schedules task without blocking. A task whose Kind and Key are already
// pending is dropped and reported as success.
func (q *Queue) Enqueue(task Task) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if !q.running {
		return fmt.Errorf("%s: %w", q.name, ErrNotRunning)
	}
	if _, dup := q.pending[task.id()]; dup {
		return nil
	}
	if task.Enqueued.IsZero() {
		task.Enqueued = time.Now().UTC()
	}

	select {
	case q.tasks <- task:
		q.pending[task.id()] = struct{}{}
		return nil
	default:
		return fmt.Errorf("%s: %w", q.name, ErrQueueFull)
	}
}

// Pending reports how many distinct tasks are waiting to run.
func (q *Queue) Pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

func (q *Queue) worker() {
	defer q.wg.Done()
	for {
		select {
		case <-q.ctx.Done():
			return
		case task := <-q.tasks:
			q.mu.Lock()
			delete(q.pending, task.id())
			q.mu.Unlock()

			if err := q.handler(q.ctx, task); err != nil {
				q.cfg.Logger.Error("task failed",
					zap.String("queue", q.name),
					zap.String("kind", task.Kind),
					zap.String("key", task.Key),
					zap.Duration("queued_for", time.Since(task.Enqueued)),
					zap.Error(err),
				)
			}
		}
	}
}
