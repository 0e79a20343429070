// Package workerpool runs the per-service child process tasks of a single
// command on a bounded set of goroutines.
package workerpool

import (
	"context"
	"errors"
	"runtime/debug"
	"sync"
	"sync/atomic"

	"github.com/breeze-rmm/svcctl/internal/logging"
)

var log = logging.L("workerpool")

var (
	// ErrClosed is returned by Submit after Shutdown.
	ErrClosed = errors.New("workerpool: closed")
	// ErrQueueFull is returned by Submit when the queue has no room.
	ErrQueueFull = errors.New("workerpool: queue full")
)

// Task is a unit of work submitted to the pool.
type Task func()

// Pool is a bounded goroutine pool with a fixed-size task queue.
type Pool struct {
	workers   int
	queue     chan Task
	wg        sync.WaitGroup
	accepting atomic.Bool
	closeOnce sync.Once
}

// New creates a pool with maxWorkers goroutines and a task queue of queueSize.
func New(maxWorkers, queueSize int) *Pool {
	if maxWorkers < 1 {
		maxWorkers = 1
	}
	if queueSize < 1 {
		queueSize = 1
	}

	p := &Pool{
		workers: maxWorkers,
		queue:   make(chan Task, queueSize),
	}
	p.accepting.Store(true)

	for i := 0; i < maxWorkers; i++ {
		go p.worker()
	}

	log.Debug("worker pool started", "workers", maxWorkers, "queueSize", queueSize)
	return p
}

// ForTargets sizes a pool for n tasks known up front. The queue always holds
// all n; limit caps the workers, and limit <= 0 runs every task at once.
func ForTargets(n, limit int) *Pool {
	workers := n
	if limit > 0 && limit < n {
		workers = limit
	}
	return New(workers, n)
}

// Workers returns the number of worker goroutines.
func (p *Pool) Workers() int {
	return p.workers
}

// Submit enqueues a task. wg.Add is called before enqueue so Shutdown never
// misses a task that Submit accepted.
func (p *Pool) Submit(task Task) error {
	if !p.accepting.Load() {
		return ErrClosed
	}

	p.wg.Add(1)
	select {
	case p.queue <- task:
		return nil
	default:
		p.wg.Done()
		log.Warn("worker pool queue full, task rejected")
		return ErrQueueFull
	}
}

// Shutdown stops accepting tasks and waits for queued and running tasks to
// finish, or for ctx to end. Workers exit once the queue is drained.
func (p *Pool) Shutdown(ctx context.Context) error {
	p.accepting.Store(false)

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	var err error
	select {
	case <-done:
		log.Debug("worker pool drained")
	case <-ctx.Done():
		log.Warn("worker pool drain timed out")
		err = ctx.Err()
	}

	p.closeOnce.Do(func() {
		close(p.queue)
	})
	return err
}

func (p *Pool) worker() {
	for task := range p.queue {
		p.runTask(task)
	}
}

// runTask executes a single task with panic recovery. wg.Done is called here
// to match the wg.Add in Submit.
func (p *Pool) runTask(task Task) {
	defer p.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			log.Error("task panicked", "panic", r, "stack", string(debug.Stack()))
		}
	}()
	task()
}
