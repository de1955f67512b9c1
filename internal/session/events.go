package session

import (
	"log"

	"github.com/sportbuddy/app/internal/models"
)

type EventKind string

const (
	EventMessage       EventKind = "message"
	EventTyping        EventKind = "typing"
	EventTypingStopped EventKind = "typing_stopped"
)

// Event reports a chat change to subscribers.
type Event struct {
	Kind    EventKind       `json:"kind"`
	BuddyID string          `json:"buddyId"`
	Message *models.Message `json:"message,omitempty"`
}

const subscriberBuffer = 32

// Subscribe returns a channel of session events and a function that ends
// the subscription. The channel is closed when either is called or the
// session closes.
func (s *Session) Subscribe() (<-chan Event, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := make(chan Event, subscriberBuffer)
	if s.closed {
		close(ch)
		return ch, func() {}
	}
	s.nextSub++
	id := s.nextSub
	s.subs[id] = ch

	return ch, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if sub, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(sub)
		}
	}
}

// emit must be called with s.mu held. Slow subscribers lose events rather
// than stall the session.
func (s *Session) emit(ev Event) {
	for id, ch := range s.subs {
		select {
		case ch <- ev:
		default:
			log.Printf("session %s: dropping %s event for subscriber %d", s.ID, ev.Kind, id)
		}
	}
}
