// Package cancel implements the one-shot, cooperative shutdown switch
// shared by every worker: a monotonic cancelled flag with pull semantics
// (Cancelled), push semantics (Cancel), and callback registration for code
// that must react to cancellation while blocked inside foreign calls.
package cancel

import (
	"sync"
	"sync/atomic"
)

// Source produces the cancellation signal. Exactly one Source exists per
// process run; workers only ever see Tokens.
type Source struct {
	mu        sync.Mutex
	cancelled atomic.Bool
	callbacks []func()
	done      chan struct{}
}

func NewSource() *Source {
	return &Source{done: make(chan struct{})}
}

// Cancel requests cancellation. The first call sets the flag, closes the
// done channel, then invokes every registered callback synchronously in
// registration order on the calling goroutine. Subsequent calls are no-ops;
// under concurrent calls exactly one caller runs the callbacks.
func (source *Source) Cancel() {
	if source == nil {
		return
	}
	source.mu.Lock()
	if !source.cancelled.CompareAndSwap(false, true) {
		source.mu.Unlock()
		return
	}
	callbacks := source.callbacks
	source.callbacks = nil
	close(source.done)
	source.mu.Unlock()

	for _, callback := range callbacks {
		callback()
	}
}

// Token returns the shared read view handed to workers.
func (source *Source) Token() Token {
	return Token{source: source}
}

// Token is a worker's view of the shutdown switch. The zero Token is never
// cancelled.
type Token struct {
	source *Source
}

// Cancelled reports whether cancellation has been requested. Non-blocking,
// safe from any goroutine, and monotonic: once true, true forever.
func (token Token) Cancelled() bool {
	if token.source == nil {
		return false
	}
	return token.source.cancelled.Load()
}

// Done returns a channel closed on cancellation, for select-based code.
// The zero Token returns nil, which blocks forever in a select.
func (token Token) Done() <-chan struct{} {
	if token.source == nil {
		return nil
	}
	return token.source.done
}

// OnCancel registers a callback to run when cancellation is requested. If
// cancellation has already occurred the callback runs immediately and
// synchronously before OnCancel returns, so a registration can never miss
// the notification.
func (token Token) OnCancel(callback func()) {
	if token.source == nil || callback == nil {
		return
	}
	source := token.source
	source.mu.Lock()
	if source.cancelled.Load() {
		source.mu.Unlock()
		callback()
		return
	}
	source.callbacks = append(source.callbacks, callback)
	source.mu.Unlock()
}
