package navigator

import "sync"

// MemoryHistory is an in-process History. It keeps a stack of entries and a
// cursor so Go can move back and forward like a browser session history.
type MemoryHistory struct {
	mu        sync.Mutex
	entries   []string
	index     int
	listeners map[int]func(string)
	nextID    int
}

var _ History = (*MemoryHistory)(nil)

// NewMemoryHistory creates a history holding a single initial entry.
func NewMemoryHistory(initial string) *MemoryHistory {
	return &MemoryHistory{
		entries:   []string{initial},
		listeners: make(map[int]func(string)),
	}
}

func (h *MemoryHistory) Location() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.entries[h.index]
}

// Push adds an entry after the cursor, dropping any forward entries.
func (h *MemoryHistory) Push(location string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = append(h.entries[:h.index+1], location)
	h.index = len(h.entries) - 1
}

func (h *MemoryHistory) Replace(location string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries[h.index] = location
}

// Go moves the cursor by delta and notifies listeners. Out of range moves
// are ignored.
func (h *MemoryHistory) Go(delta int) {
	h.mu.Lock()
	target := h.index + delta
	if delta == 0 || target < 0 || target >= len(h.entries) {
		h.mu.Unlock()
		return
	}
	h.index = target
	location := h.entries[target]
	h.mu.Unlock()

	h.notify(location)
}

// Visit simulates a location change made outside the app, such as the user
// editing the address bar fragment. The entry is pushed and listeners run.
func (h *MemoryHistory) Visit(location string) {
	h.Push(location)
	h.notify(location)
}

func (h *MemoryHistory) Listen(fn func(string)) func() {
	h.mu.Lock()
	defer h.mu.Unlock()
	id := h.nextID
	h.nextID++
	h.listeners[id] = fn
	return func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		delete(h.listeners, id)
	}
}

// Len returns the number of entries in the history.
func (h *MemoryHistory) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.entries)
}

// Index returns the cursor position.
func (h *MemoryHistory) Index() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.index
}

func (h *MemoryHistory) notify(location string) {
	h.mu.Lock()
	listeners := make([]func(string), 0, len(h.listeners))
	for _, fn := range h.listeners {
		listeners = append(listeners, fn)
	}
	h.mu.Unlock()

	for _, fn := range listeners {
		fn(location)
	}
}
