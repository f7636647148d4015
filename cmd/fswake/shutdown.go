package main

import (
	"errors"
	"sync"

	"fswake/internal/logging"
)

type shutdownPhase struct {
	name string
	stop func() error
}

// shutdownRunner executes named shutdown phases exactly once, in the order
// they were added, collecting phase errors instead of aborting on the
// first one.
type shutdownRunner struct {
	logger *logging.Logger
	once   sync.Once
	phases []shutdownPhase
}

func newShutdownRunner(logger *logging.Logger) *shutdownRunner {
	return &shutdownRunner{logger: logger}
}

func (runner *shutdownRunner) Add(name string, stop func() error) {
	if runner == nil || stop == nil {
		return
	}
	runner.phases = append(runner.phases, shutdownPhase{name: name, stop: stop})
}

func (runner *shutdownRunner) Run() error {
	if runner == nil {
		return nil
	}
	var runErr error
	runner.once.Do(func() {
		for _, phase := range runner.phases {
			runner.logger.Info("shutdown phase starting", map[string]string{
				"phase": phase.name,
			})
			if err := phase.stop(); err != nil {
				runErr = errors.Join(runErr, err)
				runner.logger.Warn("shutdown phase failed", map[string]string{
					"phase": phase.name,
					"error": err.Error(),
				})
			}
		}
	})
	return runErr
}
