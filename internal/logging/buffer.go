package logging

import "sync"

const DefaultBufferSize = 1000

// Buffer keeps the most recent entries in a fixed-size ring.
type Buffer struct {
	mu      sync.Mutex
	entries []Entry
	next    int
	count   int
}

func NewBuffer(size int) *Buffer {
	if size <= 0 {
		size = DefaultBufferSize
	}
	return &Buffer{entries: make([]Entry, size)}
}

func (buffer *Buffer) Add(entry Entry) {
	if buffer == nil {
		return
	}
	buffer.mu.Lock()
	defer buffer.mu.Unlock()

	buffer.entries[buffer.next] = entry
	buffer.next = (buffer.next + 1) % len(buffer.entries)
	if buffer.count < len(buffer.entries) {
		buffer.count++
	}
}

// List returns the stored entries, oldest first.
func (buffer *Buffer) List() []Entry {
	if buffer == nil {
		return nil
	}
	buffer.mu.Lock()
	defer buffer.mu.Unlock()

	if buffer.count == 0 {
		return nil
	}
	start := 0
	if buffer.count == len(buffer.entries) {
		start = buffer.next
	}
	entries := make([]Entry, 0, buffer.count)
	for i := 0; i < buffer.count; i++ {
		entries = append(entries, buffer.entries[(start+i)%len(buffer.entries)])
	}
	return entries
}
