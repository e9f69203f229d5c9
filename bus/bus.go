// Package bus carries process-wide auth notifications between the HTTP
// layer and the session controller. The bus is injected at construction
// time on both sides; there is no package-level singleton.
package bus

import (
	"sync"

	"github.com/golang/glog"
)

// Event is an auth notification kind.
type Event string

// Unauthorized is published when any API call gets a 401 response.
const Unauthorized Event = "UNAUTHORIZED"

// Handler is a zero-argument event callback.
type Handler func()

type Bus struct {
	sync.Mutex

	nextId int
	subs   map[Event]map[int]Handler
}

func New() *Bus {
	return &Bus{
		subs: make(map[Event]map[int]Handler),
	}
}

// Subscribe registers a handler, returns the func that unregisters it.
func (b *Bus) Subscribe(e Event, h Handler) (cancel func()) {
	b.Lock()
	defer b.Unlock()

	m, ok := b.subs[e]
	if !ok {
		m = make(map[int]Handler)
		b.subs[e] = m
	}

	id := b.nextId
	b.nextId++
	m[id] = h

	return func() {
		b.Lock()
		delete(m, id)
		b.Unlock()
	}
}

// Publish invokes every handler registered for the event, in caller's
// goroutine. Handlers registered or removed during delivery do not affect
// the current fan-out.
func (b *Bus) Publish(e Event) {
	b.Lock()
	handlers := make([]Handler, 0, len(b.subs[e]))
	for _, h := range b.subs[e] {
		handlers = append(handlers, h)
	}
	b.Unlock()

	glog.V(5).Infof("bus: publish %s to %d handlers", e, len(handlers))

	for _, h := range handlers {
		h()
	}
}
