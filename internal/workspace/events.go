// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package workspace

import "sync"

// EventKind identifies a store change.
type EventKind int

const (
	EventAdded EventKind = iota
	EventReplaced
	EventRemoved
)

func (k EventKind) String() string {
	switch k {
	case EventAdded:
		return "added"
	case EventReplaced:
		return "replaced"
	case EventRemoved:
		return "removed"
	default:
		return "unknown"
	}
}

// Event describes one store change. Peaks is the peak count of the
// workspace that was added or replaced, and zero for removals.
type Event struct {
	Kind  EventKind
	Name  string
	Peaks int
}

// Handler receives store events. Handlers run synchronously on the
// goroutine that changed the store, in registration order, after the
// change is committed.
type Handler func(Event)

type notifier struct {
	mu       sync.Mutex
	handlers map[EventKind][]Handler
}

func (n *notifier) Subscribe(kind EventKind, h Handler) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.handlers == nil {
		n.handlers = make(map[EventKind][]Handler)
	}
	n.handlers[kind] = append(n.handlers[kind], h)
}

func (n *notifier) publish(ev Event) {
	n.mu.Lock()
	hs := append([]Handler(nil), n.handlers[ev.Kind]...)
	n.mu.Unlock()

	for _, h := range hs {
		h(ev)
	}
}
