package realtime

import "sync"

const subscriptionBufferSize = 64

// Subscription is an in-process realtime consumer with an owned lifetime.
// Events arrive on Events() until Close is called; Close releases the hub
// registration and closes the channel. Closing twice is safe.
type Subscription struct {
	hub    *Hub
	stream string
	userID string
	events chan Message
	once   sync.Once
}

// Subscribe registers an in-process subscriber for the given stream and user.
func (h *Hub) Subscribe(stream, userID string) *Subscription {
	sub := &Subscription{
		hub:    h,
		stream: normalizeStream(stream),
		userID: userID,
		events: make(chan Message, subscriptionBufferSize),
	}
	h.register(sub.stream, userID, sub)
	return sub
}

// Events exposes the delivery channel. The channel is closed by Close.
func (s *Subscription) Events() <-chan Message {
	return s.events
}

// Close releases the hub registration and closes the events channel.
func (s *Subscription) Close() {
	s.once.Do(func() {
		s.hub.unregister(s.stream, s.userID, s)
		close(s.events)
	})
}

func (s *Subscription) deliver(message Message) bool {
	select {
	case s.events <- message:
		return true
	default:
		// A full buffer means the consumer stalled; the event is dropped and
		// the consumer recovers via rehydration.
		return false
	}
}

func (s *Subscription) shutdown() { s.Close() }
