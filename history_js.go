//go:build js && wasm

package navigator

import (
	"sync"
	"syscall/js"
)

// BrowserHistory binds the navigator to window.location and the session
// history of the page. In hash mode it also follows hashchange events so
// edits to the address bar fragment are picked up.
type BrowserHistory struct {
	mode   Mode
	window js.Value

	mu        sync.Mutex
	listeners map[int]func(string)
	nextID    int
	funcs     []js.Func
}

var _ History = (*BrowserHistory)(nil)

func NewBrowserHistory(mode Mode) *BrowserHistory {
	return &BrowserHistory{
		mode:      mode,
		window:    js.Global(),
		listeners: make(map[int]func(string)),
	}
}

func (h *BrowserHistory) Location() string {
	loc := h.window.Get("location")
	return loc.Get("pathname").String() + loc.Get("search").String() + loc.Get("hash").String()
}

func (h *BrowserHistory) Push(location string) {
	h.window.Get("history").Call("pushState", js.Null(), "", location)
}

func (h *BrowserHistory) Replace(location string) {
	h.window.Get("history").Call("replaceState", js.Null(), "", location)
}

func (h *BrowserHistory) Go(delta int) {
	h.window.Get("history").Call("go", delta)
}

func (h *BrowserHistory) Listen(fn func(string)) func() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.funcs) == 0 {
		h.bind()
	}

	id := h.nextID
	h.nextID++
	h.listeners[id] = fn

	return func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		delete(h.listeners, id)
		if len(h.listeners) == 0 {
			h.unbind()
		}
	}
}

func (h *BrowserHistory) bind() {
	events := []string{"popstate"}
	if h.mode == ModeHash {
		events = append(events, "hashchange")
	}

	for _, event := range events {
		cb := js.FuncOf(func(this js.Value, args []js.Value) any {
			h.notify(h.Location())
			return nil
		})
		h.window.Call("addEventListener", event, cb)
		h.funcs = append(h.funcs, cb)
	}
}

func (h *BrowserHistory) unbind() {
	events := []string{"popstate", "hashchange"}
	for i, cb := range h.funcs {
		h.window.Call("removeEventListener", events[i], cb)
		cb.Release()
	}
	h.funcs = nil
}

func (h *BrowserHistory) notify(location string) {
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
