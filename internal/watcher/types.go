package watcher

import (
	"time"

	"github.com/fsnotify/fsnotify"
)

// Kind classifies a filesystem change.
type Kind uint8

const (
	Create Kind = iota + 1
	Write
	Remove
	Rename
	Chmod
)

func (kind Kind) String() string {
	switch kind {
	case Create:
		return "create"
	case Write:
		return "write"
	case Remove:
		return "remove"
	case Rename:
		return "rename"
	case Chmod:
		return "chmod"
	default:
		return "unknown"
	}
}

// ParseKind maps a kind name back to its value.
func ParseKind(value string) (Kind, bool) {
	switch value {
	case "create":
		return Create, true
	case "write":
		return Write, true
	case "remove":
		return Remove, true
	case "rename":
		return Rename, true
	case "chmod":
		return Chmod, true
	default:
		return 0, false
	}
}

// AllKinds lists every event kind, for registrations that want everything.
func AllKinds() []Kind {
	return []Kind{Create, Write, Remove, Rename, Chmod}
}

// Event is a single filesystem change delivered to registered callbacks.
type Event struct {
	Path      string
	Kind      Kind
	Timestamp time.Time
}

// kindsOf splits a (possibly combined) fsnotify op into event kinds.
func kindsOf(op fsnotify.Op) []Kind {
	var kinds []Kind
	if op.Has(fsnotify.Create) {
		kinds = append(kinds, Create)
	}
	if op.Has(fsnotify.Write) {
		kinds = append(kinds, Write)
	}
	if op.Has(fsnotify.Remove) {
		kinds = append(kinds, Remove)
	}
	if op.Has(fsnotify.Rename) {
		kinds = append(kinds, Rename)
	}
	if op.Has(fsnotify.Chmod) {
		kinds = append(kinds, Chmod)
	}
	return kinds
}
