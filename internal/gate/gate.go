package gate

import (
	"sync"
	"time"
)

// Gate is the wakeup primitive a worker blocks on: a mutex paired with a
// condition variable. Waiters loop on a predicate, so spurious wakeups and
// broadcasts that happen before the wait begins are both harmless.
type Gate struct {
	mu   sync.Mutex
	cond *sync.Cond
}

func New() *Gate {
	gate := &Gate{}
	gate.cond = sync.NewCond(&gate.mu)
	return gate
}

// Wait blocks until the predicate holds. The predicate is evaluated under
// the gate's lock, once before waiting and again after every wake, so a
// state change that happened before Wait began is still observed.
func (gate *Gate) Wait(predicate func() bool) {
	if gate == nil || predicate == nil {
		return
	}
	gate.mu.Lock()
	for !predicate() {
		gate.cond.Wait()
	}
	gate.mu.Unlock()
}

// WaitTimeout blocks until a broadcast arrives, the duration elapses, or
// the predicate already holds, whichever comes first, and reports the
// predicate's value on return. Unlike Wait it does not loop: a worker's
// wait loop distinguishes an event wake from shutdown by the returned
// value. The predicate is checked under the lock before waiting, so a
// state change that preceded the call is never lost. sync.Cond has no
// timed wait, so a timer broadcasts on expiry.
func (gate *Gate) WaitTimeout(duration time.Duration, predicate func() bool) bool {
	if gate == nil || predicate == nil {
		return false
	}

	timer := time.AfterFunc(duration, gate.Broadcast)
	defer timer.Stop()

	gate.mu.Lock()
	defer gate.mu.Unlock()
	if predicate() {
		return true
	}
	gate.cond.Wait()
	return predicate()
}

// Broadcast wakes every goroutine currently waiting on the gate. The lock
// is held while signalling so a concurrent Wait either observes the state
// change through its predicate or receives the signal; there is no window
// for a lost wakeup. Safe to call from any goroutine, including watcher
// callbacks.
func (gate *Gate) Broadcast() {
	if gate == nil {
		return
	}
	gate.mu.Lock()
	gate.cond.Broadcast()
	gate.mu.Unlock()
}
