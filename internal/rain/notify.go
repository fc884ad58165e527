package rain

import "sync"

// Notifier is a registry of resize listeners, the analogue of a window's
// "resize" event target.
type Notifier interface {
	// AddListener registers fn and returns a function that removes it.
	// The remove function is idempotent.
	AddListener(fn func()) (remove func())
}

// Broadcaster is a Notifier that calls every registered listener on Notify.
// The zero value is ready to use.
type Broadcaster struct {
	mu        sync.Mutex
	nextID    int
	listeners map[int]func()
}

// Compile-time check that Broadcaster implements Notifier.
var _ Notifier = (*Broadcaster)(nil)

// AddListener registers fn.
func (b *Broadcaster) AddListener(fn func()) func() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.listeners == nil {
		b.listeners = make(map[int]func())
	}
	id := b.nextID
	b.nextID++
	b.listeners[id] = fn
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.listeners, id)
	}
}

// Notify calls every listener. Listeners run outside the lock so they may
// remove themselves.
func (b *Broadcaster) Notify() {
	b.mu.Lock()
	fns := make([]func(), 0, len(b.listeners))
	for _, fn := range b.listeners {
		fns = append(fns, fn)
	}
	b.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

// Len returns the number of registered listeners.
func (b *Broadcaster) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.listeners)
}
