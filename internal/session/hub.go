// Package session tracks the live viewers of the page across transports
// (SSH, local terminal, browser) and coordinates graceful shutdown.
package session

import (
	"sync"
	"time"
)

// Registry is the interface page clients use to announce themselves.
// Decouples clients from the concrete Hub, enabling tests with fakes.
type Registry interface {
	Register(user, transport string) *Handle
	Unregister(id int)
	Active() int
	ActiveByTransport() map[string]int
}

// Hub manages the set of connected sessions.
type Hub struct {
	mu      sync.RWMutex
	clients map[int]*Handle
	nextID  int
	closing bool
}

// Compile-time check that Hub implements Registry.
var _ Registry = (*Hub)(nil)

// Handle represents one session's registration with the hub.
type Handle struct {
	ID        int
	User      string // Display name (SSH user, "local", or "browser")
	Transport string // "ssh", "local" or "web"
	Joined    time.Time
	Events    chan Event // Events sent to the session; closed on Unregister
}

// Event is sent from the hub to a session.
type Event struct {
	Type EventType
}

// EventType identifies the type of session event.
type EventType int

const (
	EventServerShutdown EventType = iota
)

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		clients: make(map[int]*Handle),
		nextID:  1,
	}
}

// Register adds a session and returns its handle. Sessions that join while
// the hub is shutting down are told so immediately.
func (h *Hub) Register(user, transport string) *Handle {
	h.mu.Lock()
	defer h.mu.Unlock()

	handle := &Handle{
		ID:        h.nextID,
		User:      user,
		Transport: transport,
		Joined:    time.Now(),
		Events:    make(chan Event, 4),
	}
	h.nextID++
	h.clients[handle.ID] = handle
	if h.closing {
		handle.Events <- Event{Type: EventServerShutdown}
	}
	return handle
}

// Unregister removes a session and closes its event channel. Unknown or
// already removed IDs are ignored.
func (h *Hub) Unregister(id int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if handle, ok := h.clients[id]; ok {
		close(handle.Events)
		delete(h.clients, id)
	}
}

// Active returns the number of registered sessions.
func (h *Hub) Active() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// ActiveByTransport returns the number of registered sessions per transport.
func (h *Hub) ActiveByTransport() map[string]int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	counts := make(map[string]int)
	for _, handle := range h.clients {
		counts[handle.Transport]++
	}
	return counts
}

// Shutdown notifies every session that the server is going away and waits
// for them to disconnect, up to timeout. It reports whether all sessions
// left in time.
func (h *Hub) Shutdown(timeout time.Duration) bool {
	h.mu.Lock()
	h.closing = true
	for _, handle := range h.clients {
		select {
		case handle.Events <- Event{Type: EventServerShutdown}:
		default:
		}
	}
	h.mu.Unlock()

	deadline := time.After(timeout)
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for {
		if h.Active() == 0 {
			return true
		}
		select {
		case <-deadline:
			return false
		case <-ticker.C:
		}
	}
}
