package gate

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestWaitReturnsWhenPredicateAlreadyTrue(t *testing.T) {
	gate := New()

	done := make(chan struct{})
	go func() {
		gate.Wait(func() bool { return true })
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("wait did not return for an already-true predicate")
	}
}

func TestBroadcastWakesWaiter(t *testing.T) {
	gate := New()
	var ready atomic.Bool

	done := make(chan struct{})
	go func() {
		gate.Wait(ready.Load)
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("wait returned before the predicate became true")
	case <-time.After(20 * time.Millisecond):
	}

	ready.Store(true)
	gate.Broadcast()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("broadcast did not wake the waiter")
	}
}

func TestBroadcastBeforeWaitIsNotLost(t *testing.T) {
	gate := New()
	var ready atomic.Bool

	ready.Store(true)
	gate.Broadcast()

	done := make(chan struct{})
	go func() {
		gate.Wait(ready.Load)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("wait missed a state change that preceded it")
	}
}

func TestBroadcastWakesEveryWaiter(t *testing.T) {
	gate := New()
	var ready atomic.Bool

	const waiters = 8
	var wg sync.WaitGroup
	wg.Add(waiters)
	for i := 0; i < waiters; i++ {
		go func() {
			defer wg.Done()
			gate.Wait(ready.Load)
		}()
	}

	time.Sleep(20 * time.Millisecond)
	ready.Store(true)
	gate.Broadcast()

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("broadcast did not wake every waiter")
	}
}

func TestWaitTimeoutExpires(t *testing.T) {
	gate := New()

	start := time.Now()
	satisfied := gate.WaitTimeout(30*time.Millisecond, func() bool { return false })
	elapsed := time.Since(start)

	if satisfied {
		t.Fatal("expected the predicate to stay false")
	}
	if elapsed < 30*time.Millisecond {
		t.Fatalf("wait returned after %s, before the timeout", elapsed)
	}
}

func TestWaitTimeoutReturnsOnEventBroadcast(t *testing.T) {
	gate := New()

	result := make(chan bool, 1)
	go func() {
		result <- gate.WaitTimeout(5*time.Second, func() bool { return false })
	}()

	time.Sleep(20 * time.Millisecond)
	gate.Broadcast()

	select {
	case satisfied := <-result:
		if satisfied {
			t.Fatal("expected the predicate to stay false on an event wake")
		}
	case <-time.After(time.Second):
		t.Fatal("broadcast did not end the timed wait")
	}
}

func TestWaitTimeoutReturnsEarlyOnBroadcast(t *testing.T) {
	gate := New()
	var ready atomic.Bool

	result := make(chan bool, 1)
	go func() {
		result <- gate.WaitTimeout(5*time.Second, ready.Load)
	}()

	time.Sleep(20 * time.Millisecond)
	ready.Store(true)
	gate.Broadcast()

	select {
	case satisfied := <-result:
		if !satisfied {
			t.Fatal("expected the predicate to be reported satisfied")
		}
	case <-time.After(time.Second):
		t.Fatal("broadcast did not cut the timed wait short")
	}
}

func TestNilGateIsInert(t *testing.T) {
	var gate *Gate
	gate.Broadcast()
	gate.Wait(func() bool { return true })
	if gate.WaitTimeout(time.Millisecond, func() bool { return true }) {
		t.Fatal("nil gate reported a satisfied wait")
	}
}
