package worker

import (
	"fmt"
	"os"
	"sync/atomic"

	"fswake/internal/cancel"
	"fswake/internal/gate"
	"fswake/internal/logging"
)

// WatchService is the foreign watcher collaborator as the worker sees it:
// a blocking Run and an idempotent Stop. Every call into it is treated as
// potentially long-blocking and potentially panicking.
type WatchService interface {
	Run(path string) error
	Stop()
}

// FSWatch is the filesystem-event worker. Its goroutine spends its life
// inside the watcher's blocking Run; a separate drain goroutine waits on
// the worker's gate for cancellation and then unblocks that foreign call.
type FSWatch struct {
	name    string
	gate    *gate.Gate
	logger  *logging.Logger
	service WatchService
	path    string
	state   stateValue
	failed  atomic.Bool
}

type FSWatchOptions struct {
	Name    string
	Path    string
	Service WatchService
	Logger  *logging.Logger
}

func NewFSWatch(options FSWatchOptions) *FSWatch {
	name := options.Name
	if name == "" {
		name = "fswatch"
	}
	return &FSWatch{
		name:    name,
		gate:    gate.New(),
		logger:  options.Logger,
		service: options.Service,
		path:    options.Path,
	}
}

func (worker *FSWatch) Name() string {
	return worker.name
}

func (worker *FSWatch) Gate() *gate.Gate {
	return worker.gate
}

func (worker *FSWatch) State() State {
	return worker.state.get()
}

func (worker *FSWatch) Run(token cancel.Token) error {
	worker.state.set(StateWaiting)

	// The drain goroutine blocks on the gate, not on the token, so a
	// cancellation that arrives while it waits must be turned into a
	// broadcast.
	token.OnCancel(worker.gate.Broadcast)

	drained := make(chan struct{})
	go worker.drain(token, drained)

	err := worker.runService()
	if err != nil {
		// A watcher failure must not leave the drain goroutine waiting for
		// a quit that may be far away.
		worker.failed.Store(true)
		worker.gate.Broadcast()
	}

	<-drained
	worker.state.set(StateStopped)
	worker.logger.Info("worker stopped", map[string]string{"worker": worker.name})
	return err
}

// runService confines the foreign blocking call: a panic inside the
// watcher surfaces as an error instead of killing the process.
func (worker *FSWatch) runService() (err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			err = fmt.Errorf("watcher panic: %v", recovered)
		}
	}()
	return worker.service.Run(worker.path)
}

func (worker *FSWatch) drain(token cancel.Token, drained chan struct{}) {
	defer close(drained)

	worker.gate.Wait(func() bool {
		return token.Cancelled() || worker.failed.Load()
	})

	worker.state.set(StateDraining)
	worker.logger.Info("worker draining", map[string]string{"worker": worker.name})
	worker.service.Stop()
	if !worker.failed.Load() {
		worker.poke()
	}
}

// poke performs a best-effort, self-inflicted mutation inside the watched
// path so a watcher backend that is itself blocked on a kernel event is
// guaranteed to wake and observe the stop. Stop above is the native
// cancel; this is the documented fallback.
func (worker *FSWatch) poke() {
	file, err := os.CreateTemp(worker.path, ".fswake-wakeup-*")
	if err != nil {
		worker.logger.Debug("wakeup poke skipped", map[string]string{
			"worker": worker.name,
			"error":  err.Error(),
		})
		return
	}
	name := file.Name()
	_, _ = file.WriteString("wakeup\n")
	_ = file.Close()
	_ = os.Remove(name)
}
