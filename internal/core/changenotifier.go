package core

import (
	"fmt"
	"sync"
)

// ChangeNotifier fans collection-change notices out to every subscribed
// session in the process. Notices carry only the collection name; receivers
// re-read the collection.
type ChangeNotifier interface {
	Publish(collection string)
	Subscribe(handler func(collection string)) Subscription
}

// Subscription is the token returned by Subscribe.
type Subscription interface {
	// Unsubscribe stops delivery to the handler. Calling it more than once
	// is harmless.
	Unsubscribe()
}

type subscriber struct {
	id      uint64
	handler func(collection string)
}

type changeHub struct {
	mu     sync.Mutex
	nextID uint64
	subs   []subscriber
	events EventLogger
}

// NewChangeNotifier creates an in-process hub. Handler panics are recovered
// and recorded on events when it is non-nil.
func NewChangeNotifier(events EventLogger) ChangeNotifier {
	return &changeHub{events: events}
}

// Publish calls every handler subscribed at the time of the call on the
// caller's goroutine, including handlers owned by the publishing session.
func (h *changeHub) Publish(collection string) {
	h.mu.Lock()
	subs := make([]subscriber, len(h.subs))
	copy(subs, h.subs)
	h.mu.Unlock()

	// Handlers may publish or unsubscribe, so the lock is not held here.
	for _, s := range subs {
		h.deliver(s, collection)
	}
}

func (h *changeHub) deliver(s subscriber, collection string) {
	defer func() {
		if r := recover(); r != nil && h.events != nil {
			_ = h.events.LogEvent("notifier.handler_panic", map[string]any{
				"collection": collection,
				"panic":      fmt.Sprint(r),
			})
		}
	}()
	s.handler(collection)
}

// Subscribe registers handler for every future Publish.
func (h *changeHub) Subscribe(handler func(collection string)) Subscription {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.nextID++
	h.subs = append(h.subs, subscriber{id: h.nextID, handler: handler})
	return &hubSubscription{hub: h, id: h.nextID}
}

func (h *changeHub) remove(id uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for i, s := range h.subs {
		if s.id == id {
			h.subs = append(h.subs[:i:i], h.subs[i+1:]...)
			return
		}
	}
}

type hubSubscription struct {
	once sync.Once
	hub  *changeHub
	id   uint64
}

func (s *hubSubscription) Unsubscribe() {
	s.once.Do(func() { s.hub.remove(s.id) })
}
