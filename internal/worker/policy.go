package worker

import (
	"fmt"
	"strings"

	"fswake/internal/watcher"
)

// WakePolicy decides which filesystem event kinds wake every worker rather
// than only the filesystem worker. The behavior is configuration, not a
// constant: by default no kind wakes everyone.
type WakePolicy struct {
	wakeAll map[watcher.Kind]struct{}
}

func NewWakePolicy(kinds ...watcher.Kind) WakePolicy {
	policy := WakePolicy{wakeAll: make(map[watcher.Kind]struct{}, len(kinds))}
	for _, kind := range kinds {
		policy.wakeAll[kind] = struct{}{}
	}
	return policy
}

// ParseWakePolicy reads a comma-separated list of kind names, for example
// "write,remove". An empty value yields the default policy.
func ParseWakePolicy(value string) (WakePolicy, error) {
	policy := WakePolicy{wakeAll: make(map[watcher.Kind]struct{})}
	for _, part := range strings.Split(value, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part == "" {
			continue
		}
		kind, ok := watcher.ParseKind(part)
		if !ok {
			return WakePolicy{}, fmt.Errorf("unknown event kind %q", part)
		}
		policy.wakeAll[kind] = struct{}{}
	}
	return policy, nil
}

// WakesAll reports whether an event of this kind broadcasts to every gate.
func (policy WakePolicy) WakesAll(kind watcher.Kind) bool {
	_, ok := policy.wakeAll[kind]
	return ok
}

// Notifier is the watcher-side registration surface consumed by
// RegisterWakeups; satisfied by *watcher.Service.
type Notifier interface {
	On(kinds []watcher.Kind, callback func(watcher.Event)) func()
}

// RegisterWakeups subscribes to every filesystem event kind and turns each
// delivery into gate broadcasts: kinds in the policy wake every worker,
// the rest wake only the filesystem worker. The callback runs on a
// watcher-owned goroutine; Gate.Broadcast is safe from there. Returns the
// registration's cancel function.
func RegisterWakeups(notifier Notifier, pool *Pool, fsWorker Worker, policy WakePolicy) func() {
	if notifier == nil || pool == nil || fsWorker == nil {
		return func() {}
	}
	return notifier.On(watcher.AllKinds(), func(event watcher.Event) {
		if policy.WakesAll(event.Kind) {
			pool.BroadcastAll()
			return
		}
		fsWorker.Gate().Broadcast()
	})
}
