package channel

import (
	"context"
	"errors"
	"sync"

	"github.com/vnykmshr/gochan/pkg/common/validation"
)

// ErrClosed is returned by Send on a closed channel, and by Receive once a
// closed channel has drained.
var ErrClosed = errors.New("channel is closed")

// ErrFull is returned by TrySend when the operation would have to block.
var ErrFull = errors.New("channel is full")

// ErrCorrupted reports a protocol violation: a parked receiver woke with
// neither a value nor a closed signal. It is unreachable under correct
// locking and any occurrence is a bug in this package, not a condition
// callers should handle.
var ErrCorrupted = errors.New("channel handoff corrupted")

// Channel is a thread-safe rendezvous channel generic over its element
// type. Capacity 0 gives synchronous handoff: Send blocks until a Receive
// takes the value. Capacity N > 0 lets up to N values queue before Send
// blocks. Both sides are served in strict FIFO order.
type Channel[T any] interface {
	// Send delivers value to the channel, blocking while the channel is
	// full (or, unbuffered, until a receiver arrives). It returns
	// ErrClosed if the channel was closed before the value was handed
	// off, or the context error if ctx fires first.
	Send(ctx context.Context, value T) error

	// TrySend delivers value only if that needs no blocking. It returns
	// ErrFull when the channel cannot accept the value right now and
	// ErrClosed on a closed channel.
	TrySend(value T) error

	// Receive takes the oldest value from the channel, blocking while the
	// channel is empty. On a closed channel it keeps returning buffered
	// values until the channel has drained, then returns ErrClosed.
	Receive(ctx context.Context) (T, error)

	// TryReceive takes a value only if one is immediately available. The
	// boolean reports whether a value was taken; a drained closed channel
	// yields ErrClosed.
	TryReceive() (T, bool, error)

	// Close closes the channel. Parked senders and receivers are woken
	// with the closed signal, subsequent Sends fail immediately, and
	// Receives drain the remaining buffered values. Closing an already
	// closed channel is a no-op.
	Close()

	// IsClosed reports whether Close has been called.
	IsClosed() bool

	// Len returns the current number of buffered values.
	Len() int

	// Cap returns the fixed capacity.
	Cap() int

	// Stats returns operation counters for this channel.
	Stats() Stats
}

// Stats holds counters describing a channel's traffic.
type Stats struct {
	// Sends is the number of values the channel has accepted custody of,
	// whether buffered or handed off directly.
	Sends int64

	// Receives is the number of values delivered to receivers.
	Receives int64

	// Rendezvous is the number of direct sender-to-receiver handoffs that
	// bypassed the buffer.
	Rendezvous int64

	// BlockedSends is the number of Send calls that had to park.
	BlockedSends int64

	// BlockedReceives is the number of Receive calls that had to park.
	BlockedReceives int64

	// BufferUtilization is the current buffer occupancy (0.0 to 1.0).
	// Always 0 for unbuffered channels.
	BufferUtilization float64
}

// Config holds configuration for a Channel.
type Config struct {
	// Capacity is the number of values that may queue without a receiver.
	// 0 means every Send rendezvouses with a Receive.
	Capacity int

	// OnBlock is called (with the channel lock held) each time a Send or
	// Receive is about to park. Intended for lightweight counters.
	OnBlock func()

	// OnClose is called once, after the close transition completed.
	OnClose func()
}

// DefaultConfig returns a default configuration: an unbuffered channel.
func DefaultConfig() Config {
	return Config{Capacity: 0}
}

// New creates a channel with the given capacity. Capacity must be
// non-negative; 0 creates an unbuffered channel.
func New[T any](capacity int) (Channel[T], error) {
	cfg := DefaultConfig()
	cfg.Capacity = capacity
	return NewWithConfig[T](cfg)
}

// NewWithConfig creates a channel from cfg.
func NewWithConfig[T any](cfg Config) (Channel[T], error) {
	if err := validation.ValidateNonNegative("channel", "capacity", cfg.Capacity); err != nil {
		return nil, err
	}

	ch := &channel[T]{config: cfg}
	if cfg.Capacity > 0 {
		ch.buf = make([]T, cfg.Capacity)
	}
	return ch, nil
}

// channel implements Channel. One mutex guards every field; the only
// blocking happens on per-waiter condition variables sharing that mutex,
// so parked calls release it while they sleep.
type channel[T any] struct {
	config Config

	mu sync.Mutex

	// Circular buffer, nil when unbuffered.
	buf   []T
	head  int
	tail  int
	count int

	closed bool

	// Parked operations, FIFO. At most one queue is non-empty at a time:
	// senders park only when the buffer is full, receivers only when it is
	// empty and no sender is parked.
	sendq waitq[*sendWaiter[T]]
	recvq waitq[*recvWaiter[T]]

	stats Stats
}

// Send implements Channel.Send.
func (ch *channel[T]) Send(ctx context.Context, value T) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	ch.mu.Lock()

	if ch.closed {
		ch.mu.Unlock()
		return ErrClosed
	}

	// Direct rendezvous: a parked receiver means the buffer is empty, so
	// the value skips it entirely.
	if rw, ok := ch.recvq.pop(); ok {
		rw.value = value
		rw.ok = true
		rw.done = true
		rw.cond.Signal()
		ch.stats.Sends++
		ch.stats.Receives++
		ch.stats.Rendezvous++
		ch.mu.Unlock()
		return nil
	}

	// Room in the buffer: non-blocking append.
	if ch.count < len(ch.buf) {
		ch.bufPush(value)
		ch.stats.Sends++
		ch.mu.Unlock()
		return nil
	}

	// Full (or unbuffered with nobody waiting): park until a receiver or
	// Close claims us.
	w := &sendWaiter[T]{value: value, cond: sync.NewCond(&ch.mu)}
	ch.sendq.push(w)
	ch.stats.BlockedSends++
	if ch.config.OnBlock != nil {
		ch.config.OnBlock()
	}

	stop := context.AfterFunc(ctx, func() {
		ch.mu.Lock()
		defer ch.mu.Unlock()
		// A waiter already claimed by a receiver or by Close keeps its
		// outcome; cancellation only wins while we are still queued.
		if !w.done && ch.sendq.remove(w) {
			w.done = true
			w.canceled = true
			w.cond.Signal()
		}
	})

	for !w.done {
		w.cond.Wait()
	}
	delivered, canceled := w.delivered, w.canceled
	ch.mu.Unlock()
	stop()

	switch {
	case delivered:
		// Handoff committed before any close or cancel could race past it.
		return nil
	case canceled:
		return ctx.Err()
	default:
		return ErrClosed
	}
}

// TrySend implements Channel.TrySend.
func (ch *channel[T]) TrySend(value T) error {
	ch.mu.Lock()
	defer ch.mu.Unlock()

	if ch.closed {
		return ErrClosed
	}

	if rw, ok := ch.recvq.pop(); ok {
		rw.value = value
		rw.ok = true
		rw.done = true
		rw.cond.Signal()
		ch.stats.Sends++
		ch.stats.Receives++
		ch.stats.Rendezvous++
		return nil
	}

	if ch.count < len(ch.buf) {
		ch.bufPush(value)
		ch.stats.Sends++
		return nil
	}

	return ErrFull
}

// Receive implements Channel.Receive.
func (ch *channel[T]) Receive(ctx context.Context) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, err
	}

	ch.mu.Lock()

	if v, ok := ch.takeLocked(); ok {
		ch.mu.Unlock()
		return v, nil
	}

	// Nothing buffered and no parked sender: a closed channel is fully
	// drained at this point.
	if ch.closed {
		ch.mu.Unlock()
		return zero, ErrClosed
	}

	w := &recvWaiter[T]{cond: sync.NewCond(&ch.mu)}
	ch.recvq.push(w)
	ch.stats.BlockedReceives++
	if ch.config.OnBlock != nil {
		ch.config.OnBlock()
	}

	stop := context.AfterFunc(ctx, func() {
		ch.mu.Lock()
		defer ch.mu.Unlock()
		if !w.done && ch.recvq.remove(w) {
			w.done = true
			w.canceled = true
			w.cond.Signal()
		}
	})

	for !w.done {
		w.cond.Wait()
	}
	value, filled, canceled := w.value, w.ok, w.canceled
	wasClosed := ch.closed
	ch.mu.Unlock()
	stop()

	switch {
	case filled:
		return value, nil
	case canceled:
		return zero, ctx.Err()
	case wasClosed:
		return zero, ErrClosed
	default:
		// Woken with an empty slot on an open channel: the handoff
		// protocol was violated.
		return zero, ErrCorrupted
	}
}

// TryReceive implements Channel.TryReceive.
func (ch *channel[T]) TryReceive() (T, bool, error) {
	ch.mu.Lock()
	defer ch.mu.Unlock()

	if v, ok := ch.takeLocked(); ok {
		return v, true, nil
	}

	var zero T
	if ch.closed {
		return zero, false, ErrClosed
	}
	return zero, false, nil
}

// takeLocked implements the non-parking half of the receive protocol:
// buffer head first, then a direct take from the oldest parked sender.
// Must hold ch.mu.
func (ch *channel[T]) takeLocked() (T, bool) {
	if ch.count > 0 {
		v := ch.bufPop()
		// The vacated slot is topped up from the oldest parked sender so
		// sender FIFO order survives the buffer boundary.
		if sw, ok := ch.sendq.pop(); ok {
			ch.bufPush(sw.value)
			sw.done = true
			sw.delivered = true
			sw.cond.Signal()
			ch.stats.Sends++
		}
		ch.stats.Receives++
		return v, true
	}

	if sw, ok := ch.sendq.pop(); ok {
		v := sw.value
		sw.done = true
		sw.delivered = true
		sw.cond.Signal()
		ch.stats.Sends++
		ch.stats.Receives++
		ch.stats.Rendezvous++
		return v, true
	}

	var zero T
	return zero, false
}

// Close implements Channel.Close.
func (ch *channel[T]) Close() {
	ch.mu.Lock()
	if ch.closed {
		ch.mu.Unlock()
		return
	}
	ch.closed = true

	// Every parked waiter observes closure instead of a handoff. Buffered
	// values stay put for draining receives.
	for _, w := range ch.sendq.drain() {
		w.done = true
		w.cond.Signal()
	}
	for _, w := range ch.recvq.drain() {
		w.done = true
		w.cond.Signal()
	}
	onClose := ch.config.OnClose
	ch.mu.Unlock()

	if onClose != nil {
		onClose()
	}
}

// IsClosed implements Channel.IsClosed.
func (ch *channel[T]) IsClosed() bool {
	ch.mu.Lock()
	defer ch.mu.Unlock()
	return ch.closed
}

// Len implements Channel.Len.
func (ch *channel[T]) Len() int {
	ch.mu.Lock()
	defer ch.mu.Unlock()
	return ch.count
}

// Cap implements Channel.Cap.
func (ch *channel[T]) Cap() int {
	return ch.config.Capacity
}

// Stats implements Channel.Stats.
func (ch *channel[T]) Stats() Stats {
	ch.mu.Lock()
	defer ch.mu.Unlock()

	stats := ch.stats
	if len(ch.buf) > 0 {
		stats.BufferUtilization = float64(ch.count) / float64(len(ch.buf))
	}
	return stats
}

// bufPush appends a value to the circular buffer (must hold lock).
func (ch *channel[T]) bufPush(value T) {
	ch.buf[ch.tail] = value
	ch.tail = (ch.tail + 1) % len(ch.buf)
	ch.count++
}

// bufPop removes the oldest value from the circular buffer (must hold lock).
func (ch *channel[T]) bufPop() T {
	value := ch.buf[ch.head]
	var zero T
	ch.buf[ch.head] = zero // Clear reference
	ch.head = (ch.head + 1) % len(ch.buf)
	ch.count--
	return value
}
