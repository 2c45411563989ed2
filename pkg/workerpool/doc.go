/*
Package workerpool provides a worker pool built on gochan channels.

A worker pool manages a fixed number of worker goroutines that execute
tasks concurrently. Both the task queue and the result queue are
channel.Channel instances, so submission follows the channel package's
blocking semantics: with queue size 0 every Submit rendezvouses with an
idle worker, and with a bounded queue Submit blocks only once the queue
is full.

Basic usage:

	pool, err := workerpool.New(4, 100) // 4 workers, queue size 100
	if err != nil {
		log.Fatal(err)
	}
	defer func() { <-pool.Shutdown() }()

	task := workerpool.TaskFunc(func(ctx context.Context) error {
		// Do work
		return nil
	})

	if err := pool.Submit(task); err != nil {
		log.Printf("Failed to submit: %v", err)
	}

	// Process results
	result, err := pool.Results().Receive(ctx)
	if err == nil && result.Error != nil {
		log.Printf("Task failed: %v", result.Error)
	}

Shutdown closes the task channel: new submissions fail immediately while
tasks already queued are drained and completed by the workers. The result
channel closes after the last worker exits.

Workers never block on result delivery; if nobody consumes Results(),
results are dropped (and logged at debug level) rather than stalling the
pool.

Panics inside tasks are recovered and surfaced either through the
configured PanicHandler or the pool's logger, and reported as the task's
error in its Result.

For Prometheus instrumentation, construct the pool with NewWithMetrics or
NewWithConfigAndMetrics; see the pkg/metrics package for the exported
metric names.
*/
package workerpool
