package channel

import "sync"

// sendWaiter is a parked Send call. It owns the payload being handed off
// and a private condition variable bound to the channel mutex. Exactly one
// of: an opposite-side Receive, Close, or the call's own cancellation marks
// it done.
type sendWaiter[T any] struct {
	value T

	done      bool // signaled, exactly once
	delivered bool // payload consumed by a receiver or moved into the buffer
	canceled  bool // removed from the queue by the caller's context
	cond      *sync.Cond
}

// recvWaiter is a parked Receive call. Its slot is filled by exactly one
// sender (or left empty by Close or cancellation).
type recvWaiter[T any] struct {
	value T

	done     bool
	ok       bool // slot holds a value
	canceled bool
	cond     *sync.Cond
}

// waitq is a FIFO of parked operations. All access happens under the
// channel mutex. Waiter records live on the stack frame of the blocked
// call; the queue only borrows them until they are signaled.
type waitq[W comparable] struct {
	items []W
}

func (q *waitq[W]) push(w W) {
	q.items = append(q.items, w)
}

// pop removes and returns the oldest waiter.
func (q *waitq[W]) pop() (W, bool) {
	var zero W
	if len(q.items) == 0 {
		return zero, false
	}
	w := q.items[0]
	q.items[0] = zero
	q.items = q.items[1:]
	return w, true
}

// remove deletes w from the queue preserving arrival order. Used only by
// cancellation, so the linear scan is off the hot path.
func (q *waitq[W]) remove(w W) bool {
	for i, item := range q.items {
		if item == w {
			var zero W
			copy(q.items[i:], q.items[i+1:])
			q.items[len(q.items)-1] = zero
			q.items = q.items[:len(q.items)-1]
			return true
		}
	}
	return false
}

// drain empties the queue and returns the waiters in arrival order.
func (q *waitq[W]) drain() []W {
	items := q.items
	q.items = nil
	return items
}
