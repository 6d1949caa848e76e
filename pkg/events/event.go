// Package events provides per-session event streams: a bounded ring buffer
// of recent gateway events plus best-effort live fan-out to subscribers.
package events

// Event is a structured gateway event record. Every event carries at least
// a "type" tag and the "session_id" it was observed on; the remaining keys
// are type-specific.
type Event map[string]any

// Recognized event type values.
const (
	TypeReady         = "ready"
	TypeMessage       = "message"
	TypeMemberJoin    = "member_join"
	TypeMemberLeave   = "member_leave"
	TypeMemberUpdate  = "member_update"
	TypeChannelUpdate = "channel_update"
	TypeRoleUpdate    = "role_update"
)

// New creates an event with the required type and session id keys set.
func New(eventType, sessionID string) Event {
	return Event{
		"type":       eventType,
		"session_id": sessionID,
	}
}

// Type returns the event's type tag, or "" if unset.
func (e Event) Type() string {
	t, _ := e["type"].(string)
	return t
}

// SessionID returns the session the event was observed on, or "" if unset.
func (e Event) SessionID() string {
	id, _ := e["session_id"].(string)
	return id
}

// With sets a type-specific field and returns the event for chaining.
func (e Event) With(key string, value any) Event {
	e[key] = value
	return e
}
