package watcher

import (
	"errors"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"

	"fswake/internal/event"
	"fswake/internal/logging"
)

const defaultDebounce = 50 * time.Millisecond

var (
	ErrAlreadyRunning = errors.New("watcher already running")
	ErrStopped        = errors.New("watcher stopped")
	errEventsClosed   = errors.New("watcher event channel closed")
)

type serviceState int

const (
	stateIdle serviceState = iota
	stateRunning
	stateStopped
)

// Options controls service behavior.
type Options struct {
	Logger    *logging.Logger
	Debounce  time.Duration
	QueueSize int
}

// Service watches one path and fans events out to registered callbacks.
type Service struct {
	fs        *fsnotify.Watcher
	bus       *event.Bus[Event]
	logger    *logging.Logger
	debouncer *debouncer

	mu       sync.Mutex
	state    serviceState
	stopOnce sync.Once
	stopped  chan struct{}
	ready    chan struct{}

	eventsSeen atomic.Uint64
	errorCount atomic.Uint64
}

func New(options Options) (*Service, error) {
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	logger := options.Logger
	if logger == nil {
		logger = logging.NewLoggerWithOutput(logging.NewBuffer(logging.DefaultBufferSize), logging.LevelInfo, nil)
	}

	debounce := options.Debounce
	if debounce <= 0 {
		debounce = defaultDebounce
	}

	service := &Service{
		fs:      fs,
		bus:     event.NewBus[Event](options.QueueSize),
		logger:  logger,
		stopped: make(chan struct{}),
		ready:   make(chan struct{}),
	}
	service.debouncer = newDebouncer(debounce, service.publish)
	return service, nil
}

// On registers a callback for the given event kinds. The callback runs on a
// service-owned goroutine. Registration is allowed before Run. The returned
// function cancels the registration.
func (service *Service) On(kinds []Kind, callback func(Event)) func() {
	if service == nil || callback == nil || len(kinds) == 0 {
		return func() {}
	}

	wanted := make(map[Kind]struct{}, len(kinds))
	for _, kind := range kinds {
		wanted[kind] = struct{}{}
	}

	events, cancel := service.bus.SubscribeFiltered(func(event Event) bool {
		_, ok := wanted[event.Kind]
		return ok
	})

	go func() {
		for event := range events {
			callback(event)
		}
	}()

	return cancel
}

// Run watches path and blocks until Stop is called or the watcher fails.
// It returns nil when stopped and the failure otherwise. A Service runs at
// most once.
func (service *Service) Run(path string) error {
	if service == nil {
		return ErrStopped
	}

	service.mu.Lock()
	switch service.state {
	case stateRunning:
		service.mu.Unlock()
		return ErrAlreadyRunning
	case stateStopped:
		service.mu.Unlock()
		return ErrStopped
	}
	service.state = stateRunning
	service.mu.Unlock()

	if err := service.fs.Add(path); err != nil {
		service.Stop()
		return err
	}
	service.logger.Info("watching path", map[string]string{"path": path})
	close(service.ready)

	for {
		select {
		case <-service.stopped:
			return nil
		case fsEvent, ok := <-service.fs.Events:
			if !ok {
				if service.stopRequested() {
					return nil
				}
				return errEventsClosed
			}
			service.handleEvent(fsEvent)
		case err, ok := <-service.fs.Errors:
			if !ok {
				if service.stopRequested() {
					return nil
				}
				return errEventsClosed
			}
			service.errorCount.Add(1)
			service.logger.Warn("watcher error", map[string]string{"error": err.Error()})
		}
	}
}

// Ready returns a channel closed once Run has established its watch.
// Changes made before readiness may not be observed; callers that mutate
// the watched path right after starting Run should wait on this first.
func (service *Service) Ready() <-chan struct{} {
	if service == nil {
		return nil
	}
	return service.ready
}

// Stop requests Run to return and releases the underlying watcher. This is
// the native, preferred stop; the filesystem poke performed by the
// filesystem worker exists only as a fallback for backends that wake solely
// on kernel events. Idempotent, callable from any goroutine.
func (service *Service) Stop() {
	if service == nil {
		return
	}
	service.stopOnce.Do(func() {
		service.mu.Lock()
		service.state = stateStopped
		service.mu.Unlock()

		close(service.stopped)
		if err := service.fs.Close(); err != nil {
			service.logger.Warn("watcher close failed", map[string]string{"error": err.Error()})
		}
		service.debouncer.stop()
		service.bus.Close()

		metrics := service.Metrics()
		service.logger.Info("watcher stopped", map[string]string{
			"events": strconv.FormatUint(metrics.Events, 10),
			"errors": strconv.FormatUint(metrics.Errors, 10),
		})
	})
}

// Metrics reports counters for tests and diagnostics.
type Metrics struct {
	Events  uint64
	Errors  uint64
	Dropped uint64
}

func (service *Service) Metrics() Metrics {
	if service == nil {
		return Metrics{}
	}
	return Metrics{
		Events:  service.eventsSeen.Load(),
		Errors:  service.errorCount.Load(),
		Dropped: service.bus.Dropped(),
	}
}

func (service *Service) stopRequested() bool {
	select {
	case <-service.stopped:
		return true
	default:
		return false
	}
}

func (service *Service) handleEvent(fsEvent fsnotify.Event) {
	service.eventsSeen.Add(1)
	service.debouncer.schedule(fsEvent.Name, fsEvent.Op)
}

// publish is the debouncer's flush target: split the coalesced op into
// kinds and fan each out through the bus.
func (service *Service) publish(path string, op fsnotify.Op) {
	now := time.Now().UTC()
	for _, kind := range kindsOf(op) {
		service.bus.Publish(Event{
			Path:      path,
			Kind:      kind,
			Timestamp: now,
		})
	}
}
