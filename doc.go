/*
Package gochan provides generic, mutex-based channels with context-aware
blocking, plus components built on top of them.

Channels (pkg/channel):
  - Bounded FIFO buffer or unbuffered rendezvous handoff
  - Context-aware Send/Receive plus non-blocking Try variants
  - Close semantics that drain buffered values before reporting closed
  - Optional Prometheus instrumentation

Worker Pool (pkg/workerpool):
  - Background task processing with channel-backed task and result queues
  - Graceful shutdown that completes queued work

Metrics (pkg/metrics):
  - Prometheus collectors shared by the instrumented components

Example usage:

	import (
		"github.com/vnykmshr/gochan/pkg/channel"
		"github.com/vnykmshr/gochan/pkg/workerpool"
	)

	ch, _ := channel.New[int](10) // buffered, capacity 10
	pool, _ := workerpool.New(5, 100) // 5 workers, queue 100

	_ = ch.Send(ctx, 42)
	_ = pool.Submit(task)
*/
package gochan
