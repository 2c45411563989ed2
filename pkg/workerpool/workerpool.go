package workerpool

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/vnykmshr/gochan/pkg/channel"
	"github.com/vnykmshr/gochan/pkg/common/validation"
)

// Submit adds a task to the pool for execution.
// The task will be executed with context.Background().
// Use SubmitWithContext to provide a custom context.
func (p *workerPool) Submit(task Task) error {
	return p.SubmitWithContext(context.Background(), task)
}

// SubmitWithContext adds a task to the pool for execution with the given
// context. The queuing operation itself blocks with the task channel's
// semantics: once the queue is full, Submit waits for a worker (or returns
// the context error if ctx fires first).
func (p *workerPool) SubmitWithContext(ctx context.Context, task Task) error {
	if err := validation.ValidateNotNil("workerpool", "task", task); err != nil {
		return err
	}
	if ctx == nil {
		ctx = context.Background()
	}

	p.mu.RLock()
	isShutdown := p.isShutdown
	p.mu.RUnlock()

	if isShutdown {
		return fmt.Errorf("cannot submit task: worker pool has been shut down")
	}

	err := p.tasks.Send(ctx, taskWithContext{task: task, ctx: ctx})
	if err != nil {
		// A Shutdown that raced with a blocked Submit closes the task
		// channel and wakes us with channel.ErrClosed.
		if err == channel.ErrClosed {
			return fmt.Errorf("cannot submit task: worker pool has been shut down")
		}
		return fmt.Errorf("cannot submit task: %w", err)
	}

	p.mu.Lock()
	p.totalSubmitted++
	p.mu.Unlock()
	return nil
}

// Results returns the channel of task results.
func (p *workerPool) Results() channel.Channel[Result] {
	return p.results
}

// Shutdown initiates a graceful shutdown of the pool. Closing the task
// channel rejects new submissions while the workers drain what is already
// queued; the result channel closes once the last worker exits.
func (p *workerPool) Shutdown() <-chan struct{} {
	p.shutdownOnce.Do(func() {
		p.mu.Lock()
		p.isShutdown = true
		p.mu.Unlock()

		p.log.Debug("worker pool shutting down")
		p.tasks.Close()

		go func() {
			p.workerWg.Wait()
			p.results.Close()
			close(p.shutdownDone)
			p.log.Debug("worker pool shut down")
		}()
	})

	return p.shutdownDone
}

// Size returns the number of workers in the pool.
func (p *workerPool) Size() int {
	return p.config.WorkerCount
}

// QueueSize returns the current number of queued tasks waiting for execution.
func (p *workerPool) QueueSize() int {
	return p.tasks.Len()
}

// ActiveWorkers returns the number of workers currently executing tasks.
func (p *workerPool) ActiveWorkers() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.activeWorkers
}

// TotalSubmitted returns the total number of tasks submitted to the pool.
func (p *workerPool) TotalSubmitted() int64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.totalSubmitted
}

// TotalCompleted returns the total number of tasks completed by the pool.
func (p *workerPool) TotalCompleted() int64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.totalCompleted
}

// runWorker is the main loop for a worker. It receives until the task
// channel is closed and fully drained.
func (p *workerPool) runWorker(id int) {
	defer p.workerWg.Done()

	p.log.Debugf("worker %d started", id)
	defer p.log.Debugf("worker %d stopped", id)

	for {
		twc, err := p.tasks.Receive(context.Background())
		if err != nil {
			return
		}
		p.executeTask(id, twc)
	}
}

// executeTask executes a single task with the provided context.
func (p *workerPool) executeTask(id int, twc taskWithContext) {
	p.mu.Lock()
	p.activeWorkers++
	p.mu.Unlock()

	start := time.Now()
	var err error

	defer func() {
		if r := recover(); r != nil {
			if p.config.PanicHandler != nil {
				p.config.PanicHandler(twc.task, r)
			} else {
				p.log.Errorf("worker %d: task panicked: %v\n%s", id, r, debug.Stack())
			}
			err = fmt.Errorf("task panicked: %v", r)
		}

		result := Result{
			Task:     twc.task,
			Error:    err,
			Duration: time.Since(start),
			WorkerID: id,
		}

		p.mu.Lock()
		p.activeWorkers--
		p.totalCompleted++
		p.mu.Unlock()

		if p.config.OnTaskComplete != nil {
			p.config.OnTaskComplete(id, result)
		}
		p.sendResult(result)
	}()

	err = twc.task.Execute(twc.ctx)
	if err != nil {
		p.log.Warnf("worker %d: task failed: %v", id, err)
	}
}

// sendResult delivers a task result without ever blocking a worker. A
// full result channel means nobody is consuming results; dropping is
// preferable to stalling the pool.
func (p *workerPool) sendResult(result Result) {
	if err := p.results.TrySend(result); err != nil {
		p.log.Debugf("result dropped: %v", err)
	}
}
