package event

import (
	"context"
	"sync"
	"sync/atomic"
)

// asyncTask is one handler invocation queued for the worker pool.
type asyncTask struct {
	ctx context.Context
	ev  Event
	sub *subscription
}

// asyncPool executes async-marked handlers on a bounded worker pool.
// Enqueue never blocks; when the queue is full the task is dropped and
// reported to the caller.
type asyncPool struct {
	queueSize int
	workers   int
	invoke    func(asyncTask)

	mu      sync.Mutex // protects queue creation/teardown
	queue   chan asyncTask
	running atomic.Bool
	wg      sync.WaitGroup
}

func newAsyncPool(queueSize, workers int, invoke func(asyncTask)) *asyncPool {
	return &asyncPool{
		queueSize: queueSize,
		workers:   workers,
		invoke:    invoke,
	}
}

// start launches the worker goroutines.
func (p *asyncPool) start() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.running.Load() {
		return ErrAlreadyRunning
	}
	p.queue = make(chan asyncTask, p.queueSize)
	p.running.Store(true)

	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
	return nil
}

// stop drains the queue and waits for the workers to finish, or until
// the context is cancelled.
func (p *asyncPool) stop(ctx context.Context) error {
	p.mu.Lock()
	if !p.running.Load() {
		p.mu.Unlock()
		return ErrNotRunning
	}
	p.running.Store(false)
	close(p.queue)
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *asyncPool) worker() {
	defer p.wg.Done()
	for task := range p.queue {
		p.invoke(task)
	}
}

// enqueue adds a task without blocking.
func (p *asyncPool) enqueue(ctx context.Context, ev Event, sub *subscription) error {
	if !p.running.Load() {
		return ErrNotRunning
	}
	select {
	case p.queue <- asyncTask{ctx: ctx, ev: ev, sub: sub}:
		return nil
	default:
		return ErrQueueFull
	}
}

// depth returns the current queue depth, 0 when stopped.
func (p *asyncPool) depth() int {
	if !p.running.Load() {
		return 0
	}
	return len(p.queue)
}

func (p *asyncPool) isRunning() bool {
	return p.running.Load()
}
