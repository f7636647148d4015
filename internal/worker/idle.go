package worker

import (
	"strconv"
	"sync/atomic"
	"time"

	"fswake/internal/cancel"
	"fswake/internal/gate"
	"fswake/internal/logging"
)

const DefaultIdleInterval = time.Second

// Idle is the periodic worker: it waits on its gate with a fixed timeout
// and performs a no-op tick on every wake that is not a shutdown request.
type Idle struct {
	name     string
	gate     *gate.Gate
	logger   *logging.Logger
	interval time.Duration
	onTick   func()
	state    stateValue
	ticks    atomic.Uint64
}

type IdleOptions struct {
	Name     string
	Interval time.Duration
	Logger   *logging.Logger
	// OnTick, when set, runs on every tick. Used by tests.
	OnTick func()
}

func NewIdle(options IdleOptions) *Idle {
	name := options.Name
	if name == "" {
		name = "idle"
	}
	interval := options.Interval
	if interval <= 0 {
		interval = DefaultIdleInterval
	}
	return &Idle{
		name:     name,
		gate:     gate.New(),
		logger:   options.Logger,
		interval: interval,
		onTick:   options.OnTick,
	}
}

func (worker *Idle) Name() string {
	return worker.name
}

func (worker *Idle) Gate() *gate.Gate {
	return worker.gate
}

func (worker *Idle) State() State {
	return worker.state.get()
}

// Ticks reports how many wait cycles completed without cancellation.
func (worker *Idle) Ticks() uint64 {
	return worker.ticks.Load()
}

func (worker *Idle) Run(token cancel.Token) error {
	worker.logger.Info("worker started", map[string]string{"worker": worker.name})

	for {
		worker.state.set(StateWaiting)
		cancelled := worker.gate.WaitTimeout(worker.interval, token.Cancelled)
		if cancelled {
			break
		}
		worker.state.set(StateProcessing)
		worker.ticks.Add(1)
		if worker.onTick != nil {
			worker.onTick()
		}
	}

	worker.state.set(StateDraining)
	worker.state.set(StateStopped)
	worker.logger.Info("worker stopped", map[string]string{
		"worker": worker.name,
		"ticks":  strconv.FormatUint(worker.ticks.Load(), 10),
	})
	return nil
}
