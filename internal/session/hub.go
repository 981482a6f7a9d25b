package session

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

type EventType string

const (
	EventLogin  EventType = "login"
	EventLogout EventType = "logout"
	// EventExternal is a token change made by another process.
	EventExternal EventType = "external"
)

const subscriberBuffer = 16

type AuthEvent struct {
	Type EventType
	// User is nil after logout or when the new token cannot be decoded.
	User *UserProfile
	At   time.Time
}

type Subscriber struct {
	send chan AuthEvent
}

// Events is closed when the subscriber is removed or the hub stops.
func (s *Subscriber) Events() <-chan AuthEvent {
	return s.send
}

// Hub fans auth events out to subscribers. Run must be running for
// Subscribe, Unsubscribe and Publish to make progress.
type Hub struct {
	subscribers map[*Subscriber]bool
	register    chan *Subscriber
	unregister  chan *Subscriber
	broadcast   chan AuthEvent
	done        chan struct{}
	mu          sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		subscribers: make(map[*Subscriber]bool),
		register:    make(chan *Subscriber),
		unregister:  make(chan *Subscriber),
		broadcast:   make(chan AuthEvent, 64),
		done:        make(chan struct{}),
	}
}

func (h *Hub) Run(ctx context.Context) {
	defer h.shutdown()

	for {
		select {
		case <-ctx.Done():
			return

		case subscriber := <-h.register:
			h.registerSubscriber(subscriber)

		case subscriber := <-h.unregister:
			h.unregisterSubscriber(subscriber)

		case event := <-h.broadcast:
			h.broadcastEvent(event)
		}
	}
}

func (h *Hub) registerSubscriber(subscriber *Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.subscribers[subscriber] = true
	log.Debug().Int("subscribers", len(h.subscribers)).Msg("[AUTH] Subscriber registered")
}

func (h *Hub) unregisterSubscriber(subscriber *Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.subscribers[subscriber]; !ok {
		return
	}
	delete(h.subscribers, subscriber)
	close(subscriber.send)
	log.Debug().Int("subscribers", len(h.subscribers)).Msg("[AUTH] Subscriber unregistered")
}

func (h *Hub) broadcastEvent(event AuthEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for subscriber := range h.subscribers {
		select {
		case subscriber.send <- event:
		default:
			log.Warn().
				Str("event", string(event.Type)).
				Msg("[AUTH] Subscriber buffer full, dropping event")
		}
	}

	log.Debug().
		Str("event", string(event.Type)).
		Int("recipients", len(h.subscribers)).
		Msg("[AUTH] Event broadcast complete")
}

func (h *Hub) shutdown() {
	h.mu.Lock()
	defer h.mu.Unlock()

	close(h.done)
	for subscriber := range h.subscribers {
		close(subscriber.send)
	}
	h.subscribers = make(map[*Subscriber]bool)
}

// Subscribe returns a subscriber, or nil when the hub has stopped.
func (h *Hub) Subscribe() *Subscriber {
	subscriber := &Subscriber{send: make(chan AuthEvent, subscriberBuffer)}
	select {
	case h.register <- subscriber:
		return subscriber
	case <-h.done:
		return nil
	}
}

func (h *Hub) Unsubscribe(subscriber *Subscriber) {
	select {
	case h.unregister <- subscriber:
	case <-h.done:
	}
}

func (h *Hub) Publish(event AuthEvent) {
	if event.At.IsZero() {
		event.At = time.Now()
	}
	select {
	case h.broadcast <- event:
	case <-h.done:
	}
}
