package worker

import (
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"fswake/internal/cancel"
	"fswake/internal/logging"
)

// Pool owns the fixed worker set and the single cancellation source. It
// spawns one goroutine per worker and guarantees every one of them is
// joined before Shutdown returns.
type Pool struct {
	logger   *logging.Logger
	source   *cancel.Source
	workers  []Worker
	group    errgroup.Group
	started  atomic.Bool
	stopOnce sync.Once
}

func NewPool(logger *logging.Logger, workers ...Worker) *Pool {
	return &Pool{
		logger:  logger,
		source:  cancel.NewSource(),
		workers: workers,
	}
}

// Token returns the shared cancellation token the workers run under.
func (pool *Pool) Token() cancel.Token {
	return pool.source.Token()
}

func (pool *Pool) Workers() []Worker {
	return pool.workers
}

// Start spawns every worker. Worker errors and panics are logged here at
// the worker boundary and never escape: a watcher failure must not prevent
// orderly shutdown of the rest of the process.
func (pool *Pool) Start() {
	if pool == nil || !pool.started.CompareAndSwap(false, true) {
		return
	}
	token := pool.source.Token()
	for _, instance := range pool.workers {
		instance := instance
		pool.group.Go(func() error {
			defer func() {
				if recovered := recover(); recovered != nil {
					pool.logger.Error("worker panicked", map[string]string{
						"worker": instance.Name(),
						"panic":  fmt.Sprint(recovered),
					})
				}
			}()
			if err := instance.Run(token); err != nil {
				pool.logger.Error("worker failed", map[string]string{
					"worker": instance.Name(),
					"error":  err.Error(),
				})
			}
			return nil
		})
	}
	pool.logger.Info("workers started", map[string]string{
		"count": strconv.Itoa(len(pool.workers)),
	})
}

// BroadcastAll wakes every gate, including gates whose worker has not yet
// begun waiting; such a worker observes the cancellation flag through its
// wait predicate instead of the signal.
func (pool *Pool) BroadcastAll() {
	if pool == nil {
		return
	}
	for _, instance := range pool.workers {
		instance.Gate().Broadcast()
	}
}

// Shutdown requests cancellation, wakes every gate, and joins every
// worker. Idempotent; concurrent callers all block until the first run
// completes.
func (pool *Pool) Shutdown() {
	if pool == nil {
		return
	}
	pool.stopOnce.Do(func() {
		pool.logger.Info("stop requested for all workers", nil)
		pool.source.Cancel()
		pool.BroadcastAll()
		if pool.started.Load() {
			_ = pool.group.Wait()
		}
		pool.logger.Info("all workers stopped", nil)
	})
}
