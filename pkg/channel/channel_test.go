package channel

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/vnykmshr/gochan/internal/testutil"
	gcerrors "github.com/vnykmshr/gochan/pkg/common/errors"
)

func TestNew(t *testing.T) {
	ch, err := New[int](10)
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, ch.Cap(), 10)
	testutil.AssertEqual(t, ch.Len(), 0)
	testutil.AssertEqual(t, ch.IsClosed(), false)
}

func TestNewUnbuffered(t *testing.T) {
	ch, err := New[string](0)
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, ch.Cap(), 0)
	testutil.AssertEqual(t, ch.Len(), 0)
}

func TestNewNegativeCapacity(t *testing.T) {
	_, err := New[int](-1)
	testutil.AssertError(t, err)
	testutil.AssertErrorIs(t, err, gcerrors.ErrInvalidConfiguration)
}

func TestBasicSendReceive(t *testing.T) {
	ch, err := New[int](5)
	testutil.AssertNoError(t, err)
	defer ch.Close()

	ctx := context.Background()

	// Send some values
	testutil.AssertNoError(t, ch.Send(ctx, 1))
	testutil.AssertNoError(t, ch.Send(ctx, 2))
	testutil.AssertNoError(t, ch.Send(ctx, 3))

	testutil.AssertEqual(t, ch.Len(), 3)

	// Receive values in FIFO order
	val1, err := ch.Receive(ctx)
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, val1, 1)

	val2, err := ch.Receive(ctx)
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, val2, 2)

	testutil.AssertEqual(t, ch.Len(), 1)
}

func TestUnbufferedRendezvous(t *testing.T) {
	// A send on an unbuffered channel must not return until a receiver
	// has taken the value.
	ch, err := New[int](0)
	testutil.AssertNoError(t, err)
	defer ch.Close()

	ctx := context.Background()

	var sendDone atomic.Bool
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		testutil.AssertNoError(t, ch.Send(ctx, 10))
		sendDone.Store(true)
	}()

	// The sender must park: there is no buffer and no receiver yet.
	testutil.Eventually(t, func() bool {
		return ch.Stats().BlockedSends == 1
	}, testutil.TestTimeout, time.Millisecond)
	testutil.AssertEqual(t, sendDone.Load(), false)

	v, err := ch.Receive(ctx)
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, v, 10)

	wg.Wait()
	testutil.AssertEqual(t, sendDone.Load(), true)
	testutil.AssertEqual(t, ch.Len(), 0)
}

func TestUnbufferedSequentialSends(t *testing.T) {
	ch, err := New[int](0)
	testutil.AssertNoError(t, err)
	defer ch.Close()

	ctx := context.Background()
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		testutil.AssertNoError(t, ch.Send(ctx, 10))
		testutil.AssertNoError(t, ch.Send(ctx, 11))
	}()

	v, err := ch.Receive(ctx)
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, v, 10)

	v, err = ch.Receive(ctx)
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, v, 11)

	wg.Wait()
	// Unbuffered channels never hold data.
	testutil.AssertEqual(t, ch.Len(), 0)
	testutil.AssertEqual(t, ch.Cap(), 0)
}

func TestBufferedSenderBlocksWhenFull(t *testing.T) {
	// Capacity 3: sends of 10,11,12 succeed without blocking, the fourth
	// parks until a receive frees a slot, then the buffer holds 11,12,13.
	ch, err := New[int](3)
	testutil.AssertNoError(t, err)
	defer ch.Close()

	ctx := context.Background()

	testutil.AssertNoError(t, ch.Send(ctx, 10))
	testutil.AssertNoError(t, ch.Send(ctx, 11))
	testutil.AssertNoError(t, ch.Send(ctx, 12))
	testutil.AssertEqual(t, ch.Len(), 3)

	var blocked atomic.Bool
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		blocked.Store(true)
		testutil.AssertNoError(t, ch.Send(ctx, 13))
		blocked.Store(false)
	}()

	testutil.Eventually(t, func() bool {
		return ch.Stats().BlockedSends == 1
	}, testutil.TestTimeout, time.Millisecond)
	testutil.AssertEqual(t, blocked.Load(), true)
	testutil.AssertEqual(t, ch.Len(), 3)

	v, err := ch.Receive(ctx)
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, v, 10)

	wg.Wait()
	testutil.AssertEqual(t, blocked.Load(), false)
	testutil.AssertEqual(t, ch.Len(), 3)

	for _, want := range []int{11, 12, 13} {
		v, err := ch.Receive(ctx)
		testutil.AssertNoError(t, err)
		testutil.AssertEqual(t, v, want)
	}
}

func TestSenderFIFOOrder(t *testing.T) {
	// Parked senders are unblocked in arrival order, so their values drain
	// in the same order they parked.
	ch, err := New[int](0)
	testutil.AssertNoError(t, err)
	defer ch.Close()

	ctx := context.Background()
	const senders = 8

	var wg sync.WaitGroup
	for i := 0; i < senders; i++ {
		wg.Add(1)
		go func(v int) {
			defer wg.Done()
			testutil.AssertNoError(t, ch.Send(ctx, v))
		}(i)
		// Serialize parking so arrival order is deterministic.
		testutil.Eventually(t, func() bool {
			return ch.Stats().BlockedSends == int64(i+1)
		}, testutil.TestTimeout, time.Millisecond)
	}

	for want := 0; want < senders; want++ {
		v, err := ch.Receive(ctx)
		testutil.AssertNoError(t, err)
		testutil.AssertEqual(t, v, want)
	}
	wg.Wait()
}

func TestReceiverFIFOOrder(t *testing.T) {
	ch, err := New[int](0)
	testutil.AssertNoError(t, err)
	defer ch.Close()

	ctx := context.Background()
	const receivers = 8

	order := make([]int, 0, receivers)
	var mu sync.Mutex
	var wg sync.WaitGroup

	for i := 0; i < receivers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := ch.Receive(ctx)
			testutil.AssertNoError(t, err)
			mu.Lock()
			order = append(order, v)
			mu.Unlock()
		}()
		testutil.Eventually(t, func() bool {
			return ch.Stats().BlockedReceives == int64(i+1)
		}, testutil.TestTimeout, time.Millisecond)
	}

	// The i-th parked receiver gets the i-th sent value. Each receiver
	// appends as soon as it wakes; values may land in the slice slightly
	// out of order, so check the set and per-receiver assignment via sum.
	for i := 0; i < receivers; i++ {
		testutil.AssertNoError(t, ch.Send(ctx, i))
	}
	wg.Wait()

	seen := make(map[int]bool, receivers)
	for _, v := range order {
		if seen[v] {
			t.Fatalf("value %d delivered twice", v)
		}
		seen[v] = true
	}
	testutil.AssertEqual(t, len(seen), receivers)
}

func TestTrySendTryReceive(t *testing.T) {
	ch, err := New[string](2)
	testutil.AssertNoError(t, err)
	defer ch.Close()

	// Try send when buffer has space
	testutil.AssertNoError(t, ch.TrySend("hello"))
	testutil.AssertNoError(t, ch.TrySend("world"))
	testutil.AssertEqual(t, ch.Len(), 2)

	// Try send when buffer is full
	testutil.AssertErrorIs(t, ch.TrySend("again"), ErrFull)

	// Try receive
	val, ok, err := ch.TryReceive()
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, ok, true)
	testutil.AssertEqual(t, val, "hello")

	// Try receive when empty
	ch2, err := New[int](5)
	testutil.AssertNoError(t, err)
	defer ch2.Close()

	_, ok, err = ch2.TryReceive()
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, ok, false)
}

func TestTrySendUnbuffered(t *testing.T) {
	ch, err := New[int](0)
	testutil.AssertNoError(t, err)
	defer ch.Close()

	// No parked receiver: an unbuffered TrySend can never deliver.
	testutil.AssertErrorIs(t, ch.TrySend(1), ErrFull)

	// With a parked receiver it hands off directly.
	ctx := context.Background()
	got := make(chan int, 1)
	go func() {
		v, err := ch.Receive(ctx)
		testutil.AssertNoError(t, err)
		got <- v
	}()
	testutil.Eventually(t, func() bool {
		return ch.Stats().BlockedReceives == 1
	}, testutil.TestTimeout, time.Millisecond)

	testutil.AssertNoError(t, ch.TrySend(42))
	testutil.AssertEqual(t, <-got, 42)
}

func TestClose(t *testing.T) {
	ch, err := New[int](5)
	testutil.AssertNoError(t, err)

	ctx := context.Background()
	testutil.AssertNoError(t, ch.Send(ctx, 1))
	testutil.AssertEqual(t, ch.IsClosed(), false)

	ch.Close()
	testutil.AssertEqual(t, ch.IsClosed(), true)

	// Send should fail
	testutil.AssertErrorIs(t, ch.Send(ctx, 2), ErrClosed)

	// TrySend should fail
	testutil.AssertErrorIs(t, ch.TrySend(3), ErrClosed)

	// Can still drain existing data
	val, err := ch.Receive(ctx)
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, val, 1)

	// Receive on empty closed channel should fail
	_, err = ch.Receive(ctx)
	testutil.AssertErrorIs(t, err, ErrClosed)

	// TryReceive on empty closed channel should fail
	_, _, err = ch.TryReceive()
	testutil.AssertErrorIs(t, err, ErrClosed)
}

func TestDoubleClose(t *testing.T) {
	ch, err := New[int](5)
	testutil.AssertNoError(t, err)

	ch.Close()
	testutil.AssertEqual(t, ch.IsClosed(), true)

	// Second close is a no-op
	ch.Close()
	testutil.AssertEqual(t, ch.IsClosed(), true)
}

func TestCloseUnblocksParkedSenders(t *testing.T) {
	ch, err := New[int](0)
	testutil.AssertNoError(t, err)

	ctx := context.Background()
	const senders = 4

	errs := make(chan error, senders)
	for i := 0; i < senders; i++ {
		go func(v int) {
			errs <- ch.Send(ctx, v)
		}(i)
	}
	testutil.Eventually(t, func() bool {
		return ch.Stats().BlockedSends == senders
	}, testutil.TestTimeout, time.Millisecond)

	ch.Close()
	for i := 0; i < senders; i++ {
		testutil.AssertErrorIs(t, <-errs, ErrClosed)
	}
}

func TestCloseUnblocksParkedReceivers(t *testing.T) {
	ch, err := New[int](0)
	testutil.AssertNoError(t, err)

	ctx := context.Background()
	const receivers = 4

	errs := make(chan error, receivers)
	for i := 0; i < receivers; i++ {
		go func() {
			_, err := ch.Receive(ctx)
			errs <- err
		}()
	}
	testutil.Eventually(t, func() bool {
		return ch.Stats().BlockedReceives == receivers
	}, testutil.TestTimeout, time.Millisecond)

	ch.Close()
	for i := 0; i < receivers; i++ {
		testutil.AssertErrorIs(t, <-errs, ErrClosed)
	}
}

func TestCloseDrainsBuffer(t *testing.T) {
	ch, err := New[int](3)
	testutil.AssertNoError(t, err)

	ctx := context.Background()
	testutil.AssertNoError(t, ch.Send(ctx, 1))
	testutil.AssertNoError(t, ch.Send(ctx, 2))
	testutil.AssertNoError(t, ch.Send(ctx, 3))

	ch.Close()

	// Close does not discard buffered values.
	for _, want := range []int{1, 2, 3} {
		v, err := ch.Receive(ctx)
		testutil.AssertNoError(t, err)
		testutil.AssertEqual(t, v, want)
	}
	_, err = ch.Receive(ctx)
	testutil.AssertErrorIs(t, err, ErrClosed)
}

func TestContextCancellationSend(t *testing.T) {
	ch, err := New[int](0)
	testutil.AssertNoError(t, err)
	defer ch.Close()

	// Pre-canceled context
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	testutil.AssertErrorIs(t, ch.Send(ctx, 1), context.Canceled)

	// Cancel while parked
	ctx, cancel = context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		errCh <- ch.Send(ctx, 2)
	}()
	testutil.Eventually(t, func() bool {
		return ch.Stats().BlockedSends == 1
	}, testutil.TestTimeout, time.Millisecond)

	cancel()
	testutil.AssertErrorIs(t, <-errCh, context.Canceled)

	// The canceled waiter left no residue: a fresh rendezvous still works.
	bg := context.Background()
	go func() {
		errCh <- ch.Send(bg, 3)
	}()
	v, err := ch.Receive(bg)
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, v, 3)
	testutil.AssertNoError(t, <-errCh)
}

func TestContextCancellationReceive(t *testing.T) {
	ch, err := New[int](1)
	testutil.AssertNoError(t, err)
	defer ch.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err = ch.Receive(ctx)
	testutil.AssertErrorIs(t, err, context.DeadlineExceeded)

	// Channel still usable afterwards.
	bg := context.Background()
	testutil.AssertNoError(t, ch.Send(bg, 7))
	v, err := ch.Receive(bg)
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, v, 7)
}

func TestCommittedHandoffBeatsCancellation(t *testing.T) {
	// A context that fires after the handoff committed must not undo it.
	ch, err := New[int](0)
	testutil.AssertNoError(t, err)
	defer ch.Close()

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		errCh <- ch.Send(ctx, 5)
	}()
	testutil.Eventually(t, func() bool {
		return ch.Stats().BlockedSends == 1
	}, testutil.TestTimeout, time.Millisecond)

	v, rerr := ch.Receive(context.Background())
	cancel()

	testutil.AssertNoError(t, rerr)
	testutil.AssertEqual(t, v, 5)
	// The send was consumed before cancel, so it reports success.
	testutil.AssertNoError(t, <-errCh)
}

func TestLenNeverExceedsCap(t *testing.T) {
	ch, err := New[int](2)
	testutil.AssertNoError(t, err)
	defer ch.Close()

	ctx := context.Background()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(v int) {
			defer wg.Done()
			_ = ch.Send(ctx, v)
		}(i)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 20; i++ {
			_, err := ch.Receive(ctx)
			testutil.AssertNoError(t, err)
		}
	}()

	for {
		if n := ch.Len(); n > ch.Cap() {
			t.Fatalf("len %d exceeds cap %d", n, ch.Cap())
		}
		select {
		case <-done:
			wg.Wait()
			return
		default:
		}
	}
}

func TestConcurrentAccess(t *testing.T) {
	ch, err := New[int](100)
	testutil.AssertNoError(t, err)
	defer ch.Close()

	ctx := context.Background()
	const numGoroutines = 10
	const messagesPerGoroutine = 100

	var wg sync.WaitGroup
	var sentCount int64
	var receivedCount int64
	var receivedSum int64
	var expectedSum int64

	for i := 0; i < numGoroutines*messagesPerGoroutine; i++ {
		expectedSum += int64(i)
	}

	// Start senders
	wg.Add(numGoroutines)
	for g := 0; g < numGoroutines; g++ {
		go func(goroutineID int) {
			defer wg.Done()
			for i := 0; i < messagesPerGoroutine; i++ {
				value := goroutineID*messagesPerGoroutine + i
				testutil.AssertNoError(t, ch.Send(ctx, value))
				atomic.AddInt64(&sentCount, 1)
			}
		}(g)
	}

	// Start receivers
	wg.Add(numGoroutines)
	for g := 0; g < numGoroutines; g++ {
		go func() {
			defer wg.Done()
			for i := 0; i < messagesPerGoroutine; i++ {
				value, err := ch.Receive(ctx)
				testutil.AssertNoError(t, err)
				atomic.AddInt64(&receivedCount, 1)
				atomic.AddInt64(&receivedSum, int64(value))
			}
		}()
	}

	wg.Wait()

	// Every value delivered exactly once: counts and sum both match.
	testutil.AssertEqual(t, sentCount, int64(numGoroutines*messagesPerGoroutine))
	testutil.AssertEqual(t, receivedCount, int64(numGoroutines*messagesPerGoroutine))
	testutil.AssertEqual(t, receivedSum, expectedSum)
}

func TestChannelOfChannels(t *testing.T) {
	// Sending a channel transfers the reference; the inner channel stays
	// usable on the receiving side.
	inner, err := New[int](1)
	testutil.AssertNoError(t, err)
	defer inner.Close()

	outer, err := New[Channel[int]](0)
	testutil.AssertNoError(t, err)
	defer outer.Close()

	ctx := context.Background()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		got, err := outer.Receive(ctx)
		testutil.AssertNoError(t, err)
		testutil.AssertNoError(t, got.Send(ctx, 99))
	}()

	testutil.AssertNoError(t, outer.Send(ctx, inner))
	wg.Wait()

	v, err := inner.Receive(ctx)
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, v, 99)
}

func TestCircularBuffer(t *testing.T) {
	ch, err := New[int](3)
	testutil.AssertNoError(t, err)
	defer ch.Close()

	ctx := context.Background()

	// Fill and empty the buffer several times to exercise wraparound.
	for round := 0; round < 3; round++ {
		for i := 0; i < 3; i++ {
			testutil.AssertNoError(t, ch.Send(ctx, round*3+i))
		}
		testutil.AssertEqual(t, ch.Len(), 3)

		for i := 0; i < 3; i++ {
			val, err := ch.Receive(ctx)
			testutil.AssertNoError(t, err)
			testutil.AssertEqual(t, val, round*3+i)
		}
		testutil.AssertEqual(t, ch.Len(), 0)
	}
}

func TestStats(t *testing.T) {
	ch, err := New[int](5)
	testutil.AssertNoError(t, err)
	defer ch.Close()

	ctx := context.Background()

	stats := ch.Stats()
	testutil.AssertEqual(t, stats.Sends, int64(0))
	testutil.AssertEqual(t, stats.Receives, int64(0))

	testutil.AssertNoError(t, ch.Send(ctx, 1))
	testutil.AssertNoError(t, ch.Send(ctx, 2))

	stats = ch.Stats()
	testutil.AssertEqual(t, stats.Sends, int64(2))
	testutil.AssertEqual(t, stats.BufferUtilization, 0.4) // 2/5

	_, err = ch.Receive(ctx)
	testutil.AssertNoError(t, err)

	stats = ch.Stats()
	testutil.AssertEqual(t, stats.Receives, int64(1))
	testutil.AssertEqual(t, stats.BufferUtilization, 0.2) // 1/5
}

func TestStatsRendezvous(t *testing.T) {
	ch, err := New[int](0)
	testutil.AssertNoError(t, err)
	defer ch.Close()

	ctx := context.Background()
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		testutil.AssertNoError(t, ch.Send(ctx, 1))
	}()

	_, err = ch.Receive(ctx)
	testutil.AssertNoError(t, err)
	wg.Wait()

	stats := ch.Stats()
	testutil.AssertEqual(t, stats.Rendezvous, int64(1))
	testutil.AssertEqual(t, stats.BufferUtilization, 0.0)
}

func TestOnBlockCallback(t *testing.T) {
	var blocks atomic.Int64
	ch, err := NewWithConfig[int](Config{
		Capacity: 0,
		OnBlock:  func() { blocks.Add(1) },
	})
	testutil.AssertNoError(t, err)
	defer ch.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, _ = ch.Receive(ctx)

	testutil.AssertEqual(t, blocks.Load(), int64(1))
}

func TestOnCloseCallback(t *testing.T) {
	closes := 0
	ch, err := NewWithConfig[int](Config{
		Capacity: 1,
		OnClose:  func() { closes++ },
	})
	testutil.AssertNoError(t, err)

	ch.Close()
	ch.Close()
	testutil.AssertEqual(t, closes, 1)
}

// Benchmark tests
func BenchmarkSendBuffered(b *testing.B) {
	ch, _ := New[int](1)
	ctx := context.Background()

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = ch.Send(ctx, i)
		_, _ = ch.Receive(ctx)
	}
}

func BenchmarkRendezvous(b *testing.B) {
	ch, _ := New[int](0)
	ctx := context.Background()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, err := ch.Receive(ctx); err != nil {
				return
			}
		}
	}()

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = ch.Send(ctx, i)
	}
	b.StopTimer()

	ch.Close()
	<-done
}

func BenchmarkTrySend(b *testing.B) {
	ch, _ := New[int](1000)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if ch.TrySend(i) != nil {
			b.StopTimer()
			for ch.Len() > 0 {
				_, _, _ = ch.TryReceive()
			}
			b.StartTimer()
		}
	}
}
