package watcher

import (
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// debouncer coalesces bursts of changes to the same path into one flush.
// Ops arriving within the window are OR-ed together so no kind is lost.
type debouncer struct {
	mu       sync.Mutex
	window   time.Duration
	flush    func(path string, op fsnotify.Op)
	pending  map[string]fsnotify.Op
	timers   map[string]*time.Timer
	disabled bool
}

func newDebouncer(window time.Duration, flush func(path string, op fsnotify.Op)) *debouncer {
	return &debouncer{
		window:  window,
		flush:   flush,
		pending: make(map[string]fsnotify.Op),
		timers:  make(map[string]*time.Timer),
	}
}

func (debouncer *debouncer) schedule(path string, op fsnotify.Op) {
	debouncer.mu.Lock()
	defer debouncer.mu.Unlock()

	if debouncer.disabled {
		return
	}
	debouncer.pending[path] |= op
	if timer, ok := debouncer.timers[path]; ok {
		timer.Reset(debouncer.window)
		return
	}
	debouncer.timers[path] = time.AfterFunc(debouncer.window, func() {
		debouncer.fire(path)
	})
}

func (debouncer *debouncer) fire(path string) {
	debouncer.mu.Lock()
	if debouncer.disabled {
		debouncer.mu.Unlock()
		return
	}
	op, ok := debouncer.pending[path]
	delete(debouncer.pending, path)
	delete(debouncer.timers, path)
	debouncer.mu.Unlock()

	if ok {
		debouncer.flush(path, op)
	}
}

func (debouncer *debouncer) stop() {
	debouncer.mu.Lock()
	defer debouncer.mu.Unlock()

	debouncer.disabled = true
	for _, timer := range debouncer.timers {
		timer.Stop()
	}
	debouncer.pending = make(map[string]fsnotify.Op)
	debouncer.timers = make(map[string]*time.Timer)
}
