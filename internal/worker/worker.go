// Package worker holds the harness's task lifecycle: the generic worker
// contract, the two concrete workers (periodic idle and filesystem-event),
// the wake policy, and the pool that spawns, wakes, and joins them.
package worker

import (
	"sync/atomic"

	"fswake/internal/cancel"
	"fswake/internal/gate"
)

// State is a worker's position in its lifecycle, readable from any
// goroutine.
type State int32

const (
	StateInit State = iota
	StateWaiting
	StateProcessing
	StateDraining
	StateStopped
)

func (state State) String() string {
	switch state {
	case StateInit:
		return "init"
	case StateWaiting:
		return "waiting"
	case StateProcessing:
		return "processing"
	case StateDraining:
		return "draining"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Worker is a task bound to one gate and the shared cancellation token.
// Run blocks until the worker observes cancellation (or fails) and has
// finished draining; the error, if any, is handled by the pool.
type Worker interface {
	Name() string
	Gate() *gate.Gate
	State() State
	Run(token cancel.Token) error
}

type stateValue struct {
	value atomic.Int32
}

func (state *stateValue) set(next State) {
	state.value.Store(int32(next))
}

func (state *stateValue) get() State {
	return State(state.value.Load())
}
