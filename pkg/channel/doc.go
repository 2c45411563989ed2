/*
Package channel implements a generic, mutex-and-condition-variable message
channel with Go-channel semantics: synchronous rendezvous when unbuffered,
bounded FIFO buffering otherwise.

The implementation is a single synchronized state machine. One mutex guards
a circular buffer, a closed flag, and two FIFO queues of parked operations.
Every blocked Send or Receive owns a private waiter record with its own
condition variable, so a handoff wakes exactly the one call it is meant
for; there is no herd wakeup and no polling.

Semantics:

  - Send on an unbuffered channel does not return until a Receive has taken
    the value. With capacity N, up to N values queue without blocking.
  - Both senders and receivers are served in strict arrival order. The n-th
    parked sender is the n-th to be unblocked, never reordered.
  - A value is handed off exactly once: directly sender-to-receiver when a
    receiver is already parked, through the buffer otherwise.
  - Close wakes every parked call with ErrClosed, rejects subsequent Sends,
    and lets Receives drain whatever the buffer still holds before they too
    report ErrClosed. Close is idempotent.
  - A parked call whose context fires is unhooked from its wait queue under
    the channel lock; a handoff that already committed wins over the
    cancellation, so no value is ever lost or delivered twice.

Basic usage:

	ch, err := channel.New[int](3)
	if err != nil {
		// invalid capacity
	}
	defer ch.Close()

	ctx := context.Background()

	go func() {
		for i := 0; i < 5; i++ {
			if err := ch.Send(ctx, i); err != nil {
				return
			}
		}
		ch.Close()
	}()

	for {
		v, err := ch.Receive(ctx)
		if err != nil {
			break // channel closed and drained
		}
		process(v)
	}

Unbuffered rendezvous:

	ch, _ := channel.New[string](0)

	go func() {
		// Blocks until the main goroutine receives.
		_ = ch.Send(ctx, "ping")
	}()

	msg, _ := ch.Receive(ctx)

Channels compose: the element type may itself be a channel, and sending one
transfers the reference, so the receiving goroutine keeps using it.

	inner, _ := channel.New[int](1)
	outer, _ := channel.New[channel.Channel[int]](0)
	_ = outer.Send(ctx, inner)

Non-blocking variants TrySend and TryReceive never park; TrySend returns
ErrFull when the channel cannot accept a value immediately.

For Prometheus instrumentation, wrap a channel via NewWithMetrics; see
metrics.go and the pkg/metrics package.

All operations are safe for concurrent use from any number of goroutines.
Lifetime is the caller's responsibility: close a channel when no more
values will be sent, and keep it referenced for as long as any goroutine
uses it.
*/
package channel
