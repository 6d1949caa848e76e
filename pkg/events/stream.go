package events

import (
	"log/slog"
	"sync"
)

// DefaultBufferSize is the ring buffer capacity used when none is configured.
// Subscriber queues mirror the buffer size.
const DefaultBufferSize = 100

// Stream holds the most recent events observed on one session and fans new
// events out to live subscribers. The ring buffer capacity is fixed at
// creation; when full, the oldest entry is evicted first. Delivery to
// subscribers is best-effort: a full subscriber queue drops that event for
// that subscriber only.
type Stream struct {
	sessionID string

	mu          sync.Mutex
	buf         []Event
	head        int // index of the oldest buffered event
	count       int
	subscribers map[string]chan Event
	stopped     bool
}

// NewStream creates a running stream for the given session.
func NewStream(sessionID string, bufferSize int) *Stream {
	if bufferSize <= 0 {
		bufferSize = DefaultBufferSize
	}
	return &Stream{
		sessionID:   sessionID,
		buf:         make([]Event, bufferSize),
		subscribers: make(map[string]chan Event),
	}
}

// SessionID returns the session this stream is keyed by.
func (s *Stream) SessionID() string {
	return s.sessionID
}

// Publish appends the event to the ring buffer and attempts non-blocking
// delivery to every current subscriber. It is a no-op once the stream has
// been stopped.
func (s *Stream) Publish(event Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return
	}

	tail := (s.head + s.count) % len(s.buf)
	s.buf[tail] = event
	if s.count == len(s.buf) {
		s.head = (s.head + 1) % len(s.buf)
	} else {
		s.count++
	}

	for subscriberID, ch := range s.subscribers {
		select {
		case ch <- event:
		default:
			slog.Warn("events: subscriber queue full, dropping event",
				"session_id", s.sessionID,
				"subscriber_id", subscriberID,
				"event_type", event.Type())
		}
	}
}

// Subscribe registers a bounded delivery queue under subscriberID and returns
// its receive side. Any prior queue for the same id is closed and replaced.
// The returned channel is closed when the stream stops.
func (s *Stream) Subscribe(subscriberID string) <-chan Event {
	s.mu.Lock()
	defer s.mu.Unlock()

	if prior, ok := s.subscribers[subscriberID]; ok {
		close(prior)
	}

	ch := make(chan Event, len(s.buf))
	if s.stopped {
		// Late subscribers observe immediate termination.
		close(ch)
		return ch
	}
	s.subscribers[subscriberID] = ch
	return ch
}

// Unsubscribe removes and closes the queue for subscriberID. Idempotent.
func (s *Stream) Unsubscribe(subscriberID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ch, ok := s.subscribers[subscriberID]; ok {
		delete(s.subscribers, subscriberID)
		close(ch)
	}
}

// Snapshot returns the buffered events in insertion order, oldest first.
func (s *Stream) Snapshot() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Event, 0, s.count)
	for i := 0; i < s.count; i++ {
		out = append(out, s.buf[(s.head+i)%len(s.buf)])
	}
	return out
}

// Stop marks the stream inert and closes every subscriber queue so blocked
// readers wake up and observe termination.
func (s *Stream) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return
	}
	s.stopped = true
	for _, ch := range s.subscribers {
		close(ch)
	}
	s.subscribers = make(map[string]chan Event)
	slog.Info("events: stream stopped", "session_id", s.sessionID)
}
