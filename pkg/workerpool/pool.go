package workerpool

import (
	"context"
	"sync"
	"time"

	"github.com/vnykmshr/gochan/pkg/channel"
	"github.com/vnykmshr/gochan/pkg/common/logging"
	"github.com/vnykmshr/gochan/pkg/common/validation"
)

// Task represents a unit of work that can be executed by a worker.
type Task interface {
	// Execute runs the task with the given context.
	// It should respect context cancellation and return any error encountered.
	Execute(ctx context.Context) error
}

// TaskFunc is a function type that implements the Task interface.
type TaskFunc func(ctx context.Context) error

// Execute implements the Task interface for TaskFunc.
func (f TaskFunc) Execute(ctx context.Context) error {
	return f(ctx)
}

// Result represents the result of a task execution.
type Result struct {
	// Task is the original task that was executed
	Task Task

	// Error is any error that occurred during task execution
	Error error

	// Duration is how long the task took to execute
	Duration time.Duration

	// WorkerID identifies which worker executed the task
	WorkerID int
}

// Pool represents a worker pool that can execute tasks concurrently. Its
// task and result queues are gochan channels, so submission blocks with
// the same rendezvous semantics the channel package documents.
type Pool interface {
	// Submit adds a task to the pool for execution.
	// Returns an error if the pool is shut down or if the task cannot be queued.
	Submit(task Task) error

	// SubmitWithContext submits a task with a context for cancellation.
	// The context applies to the queuing operation and is passed on to the
	// task's Execute method.
	SubmitWithContext(ctx context.Context, task Task) error

	// Results returns the channel of task results. Consume it promptly;
	// results that would block delivery are dropped.
	Results() channel.Channel[Result]

	// Shutdown initiates a graceful shutdown of the pool.
	// No new tasks are accepted; tasks already queued are drained and
	// completed. Returns a channel that closes when shutdown is complete.
	Shutdown() <-chan struct{}

	// Size returns the number of workers in the pool.
	Size() int

	// QueueSize returns the current number of queued tasks waiting for execution.
	QueueSize() int

	// ActiveWorkers returns the number of workers currently executing tasks.
	ActiveWorkers() int

	// TotalSubmitted returns the total number of tasks submitted to the pool.
	TotalSubmitted() int64

	// TotalCompleted returns the total number of tasks completed by the pool.
	TotalCompleted() int64
}

// Config holds configuration options for creating a worker pool.
type Config struct {
	// WorkerCount is the number of workers in the pool.
	// Must be greater than 0.
	WorkerCount int

	// QueueSize is the number of tasks that can queue without blocking
	// Submit. 0 means every Submit rendezvouses with an idle worker.
	QueueSize int

	// ResultBuffer is the capacity of the result channel. Defaults to
	// WorkerCount when 0.
	ResultBuffer int

	// Logger receives worker lifecycle and failure logs.
	// Defaults to a no-op logger.
	Logger logging.Logger

	// PanicHandler is called when a worker panics during task execution.
	// If nil, panics are recovered and logged as errors.
	PanicHandler func(task Task, recovered interface{})

	// OnTaskComplete is called after a task completes (success or failure).
	OnTaskComplete func(workerID int, result Result)
}

// workerPool implements the Pool interface.
type workerPool struct {
	config Config
	log    logging.Logger

	tasks   channel.Channel[taskWithContext]
	results channel.Channel[Result]

	shutdownOnce sync.Once
	shutdownDone chan struct{}

	mu             sync.RWMutex
	isShutdown     bool
	activeWorkers  int
	totalSubmitted int64
	totalCompleted int64

	workerWg sync.WaitGroup
}

// taskWithContext carries a task together with the context it was
// submitted under.
type taskWithContext struct {
	task Task
	ctx  context.Context
}

// New creates a new worker pool with the specified number of workers and
// queue size.
func New(workerCount, queueSize int) (Pool, error) {
	return NewWithConfig(Config{
		WorkerCount: workerCount,
		QueueSize:   queueSize,
	})
}

// NewWithConfig creates a new worker pool with the specified configuration.
func NewWithConfig(config Config) (Pool, error) {
	if err := validation.ValidatePositive("workerpool", "workers", config.WorkerCount); err != nil {
		return nil, err
	}
	if err := validation.ValidateNonNegative("workerpool", "queue", config.QueueSize); err != nil {
		return nil, err
	}

	if config.Logger == nil {
		config.Logger = logging.Nop()
	}
	if config.ResultBuffer <= 0 {
		config.ResultBuffer = config.WorkerCount
	}

	tasks, err := channel.New[taskWithContext](config.QueueSize)
	if err != nil {
		return nil, err
	}
	results, err := channel.New[Result](config.ResultBuffer)
	if err != nil {
		return nil, err
	}

	pool := &workerPool{
		config:       config,
		log:          config.Logger,
		tasks:        tasks,
		results:      results,
		shutdownDone: make(chan struct{}),
	}

	pool.workerWg.Add(config.WorkerCount)
	for i := 0; i < config.WorkerCount; i++ {
		go pool.runWorker(i)
	}

	return pool, nil
}
