// Package watcher implements the filesystem watcher service on top of
// fsnotify. The service is deliberately shaped like a foreign collaborator:
// Run blocks until Stop is called or the watcher fails, and registered
// callbacks are invoked on service-owned goroutines, never on the caller's.
package watcher
