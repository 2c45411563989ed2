// Package metrics provides Prometheus instrumentation for gochan components.
//
// This package enables monitoring and observability for gochan's channel
// and worker pool components through Prometheus metrics.
//
// # Quick Start
//
// Enable metrics by using the metrics-enabled constructors:
//
//	// Channel with metrics
//	ch, err := channel.NewWithMetrics[int](100, "jobs")
//
//	// Worker pool with metrics
//	pool, err := workerpool.NewWithMetrics(5, 100, "task_pool")
//
// Then expose metrics via HTTP:
//
//	http.Handle("/metrics", promhttp.Handler())
//	log.Fatal(http.ListenAndServe(":8080", nil))
//
// # Custom Registry
//
// Use a custom Prometheus registry for isolation:
//
//	registry := prometheus.NewRegistry()
//	config := metrics.Config{
//		Enabled:  true,
//		Registry: registry,
//	}
//
//	ch, err := channel.NewWithConfigAndMetrics[int](
//		channel.Config{Capacity: 100},
//		"jobs",
//		config,
//	)
//
// # Available Metrics
//
// ## Channel Metrics
//
//   - gochan_channel_sends_total: Total number of values accepted by the channel
//   - gochan_channel_receives_total: Total number of values delivered to receivers
//   - gochan_channel_send_errors_total: Total number of failed send operations
//   - gochan_channel_receive_errors_total: Total number of failed receive operations
//   - gochan_channel_blocked_total: Total number of operations that had to park
//   - gochan_channel_depth: Current number of buffered values
//   - gochan_channel_capacity: Fixed channel capacity
//   - gochan_channel_closed: 1 when the channel has been closed
//
// ## Worker Pool Metrics
//
//   - gochan_workerpool_size: Current worker pool size
//   - gochan_workerpool_active_workers: Number of active workers
//   - gochan_workerpool_queued_tasks: Number of queued tasks
//   - gochan_workerpool_tasks_executed_total: Total number of tasks executed
//   - gochan_workerpool_tasks_failed_total: Total number of tasks that failed
//   - gochan_workerpool_task_duration_seconds: Time spent executing tasks
//
// # Labels
//
// Metrics include relevant labels for filtering and aggregation:
//
//   - channel_name: User-provided name for the channel instance
//   - pool_name: User-provided name for the worker pool instance
//   - reason: Failure reason for error counters ("closed", "full", "canceled")
//
// # Performance
//
// Metrics collection is designed for minimal overhead: metrics are updated
// only when operations occur, with no background goroutines or timers.
package metrics
