package worker

import (
	"errors"
	"strings"
	"testing"
	"time"

	"fswake/internal/logging"
)

func TestPoolShutdownJoinsEveryWorker(t *testing.T) {
	service := newFakeService()
	idle := NewIdle(IdleOptions{Interval: 10 * time.Millisecond, Logger: testLogger(t)})
	fsWorker := NewFSWatch(FSWatchOptions{
		Path:    t.TempDir(),
		Service: service,
		Logger:  testLogger(t),
	})
	pool := NewPool(testLogger(t), idle, fsWorker)

	pool.Start()
	time.Sleep(50 * time.Millisecond)

	done := make(chan struct{})
	go func() {
		pool.Shutdown()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("shutdown did not join all workers")
	}

	for _, instance := range pool.Workers() {
		if state := instance.State(); state != StateStopped {
			t.Fatalf("worker %s not stopped after shutdown: %s", instance.Name(), state)
		}
	}
	if !pool.Token().Cancelled() {
		t.Fatal("token not cancelled after shutdown")
	}
}

func TestPoolShutdownIsIdempotent(t *testing.T) {
	idle := NewIdle(IdleOptions{Interval: 10 * time.Millisecond, Logger: testLogger(t)})
	pool := NewPool(testLogger(t), idle)

	pool.Start()
	pool.Shutdown()
	pool.Shutdown()

	if state := idle.State(); state != StateStopped {
		t.Fatalf("expected stopped, got %s", state)
	}
}

func TestPoolShutdownImmediatelyAfterStart(t *testing.T) {
	// Workers may not have entered their first wait yet; the cancellation
	// flag, not the broadcast, is what they must observe.
	service := newFakeService()
	idle := NewIdle(IdleOptions{Interval: time.Hour, Logger: testLogger(t)})
	fsWorker := NewFSWatch(FSWatchOptions{
		Path:    t.TempDir(),
		Service: service,
		Logger:  testLogger(t),
	})
	pool := NewPool(testLogger(t), idle, fsWorker)

	pool.Start()

	done := make(chan struct{})
	go func() {
		pool.Shutdown()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("shutdown raced a worker that had not begun waiting")
	}
}

func TestPoolLogsWorkerFailureAndStillShutsDown(t *testing.T) {
	buffer := logging.NewBuffer(128)
	logger := logging.NewLoggerWithOutput(buffer, logging.LevelDebug, nil)

	service := newFakeService()
	service.runErr = errors.New("watch setup failed")
	fsWorker := NewFSWatch(FSWatchOptions{
		Path:    t.TempDir(),
		Service: service,
		Logger:  logger,
	})
	idle := NewIdle(IdleOptions{Interval: 10 * time.Millisecond, Logger: logger})
	pool := NewPool(logger, idle, fsWorker)

	pool.Start()

	deadline := time.Now().Add(3 * time.Second)
	for fsWorker.State() != StateStopped {
		if time.Now().After(deadline) {
			t.Fatal("failed worker never reached stopped")
		}
		time.Sleep(10 * time.Millisecond)
	}

	pool.Shutdown()

	found := false
	for _, entry := range buffer.List() {
		if entry.Level == logging.LevelError && strings.Contains(entry.Message, "worker failed") {
			found = true
		}
	}
	if !found {
		t.Fatal("worker failure was not logged")
	}
	if state := idle.State(); state != StateStopped {
		t.Fatalf("healthy worker not stopped after shutdown: %s", state)
	}
}

func TestPoolShutdownWithoutStart(t *testing.T) {
	pool := NewPool(testLogger(t), NewIdle(IdleOptions{Logger: testLogger(t)}))
	pool.Shutdown()
	if !pool.Token().Cancelled() {
		t.Fatal("token not cancelled")
	}
}
