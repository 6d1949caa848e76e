package events

import (
	"sync"

	"github.com/ExilProductions/discord-mcp/pkg/errs"
)

// Manager owns the event streams for all active sessions, keyed by session id.
// It is constructed once at process start and shared by reference.
type Manager struct {
	mu         sync.RWMutex
	streams    map[string]*Stream
	bufferSize int
}

// NewManager creates a stream manager whose streams use the given buffer size.
func NewManager(bufferSize int) *Manager {
	if bufferSize <= 0 {
		bufferSize = DefaultBufferSize
	}
	return &Manager{
		streams:    make(map[string]*Stream),
		bufferSize: bufferSize,
	}
}

// Create returns the existing stream for sessionID, or builds a new one with
// the configured buffer size. Creation is idempotent.
func (m *Manager) Create(sessionID string) *Stream {
	m.mu.Lock()
	defer m.mu.Unlock()

	if stream, ok := m.streams[sessionID]; ok {
		return stream
	}
	stream := NewStream(sessionID, m.bufferSize)
	m.streams[sessionID] = stream
	return stream
}

// Get returns the stream for sessionID or a stream_not_found error.
func (m *Manager) Get(sessionID string) (*Stream, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stream, ok := m.streams[sessionID]
	if !ok {
		return nil, errs.Newf(errs.KindStreamNotFound, "no event stream for session %s", sessionID).
			WithDetail("session_id", sessionID)
	}
	return stream, nil
}

// Remove stops and discards the stream for sessionID. Idempotent.
func (m *Manager) Remove(sessionID string) {
	m.mu.Lock()
	stream := m.streams[sessionID]
	delete(m.streams, sessionID)
	m.mu.Unlock()

	if stream != nil {
		stream.Stop()
	}
}

// List returns the session ids of all active streams.
func (m *Manager) List() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := make([]string, 0, len(m.streams))
	for id := range m.streams {
		ids = append(ids, id)
	}
	return ids
}
