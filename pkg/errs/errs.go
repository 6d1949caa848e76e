// Package errs defines the error taxonomy for the Discord MCP server.
// Every error carries a kind, a human-readable message, and a structured
// details map that is safe to serialize into tool results.
package errs

import (
	"errors"
	"fmt"
)

// Kind categorizes an error by the functional area that raised it.
type Kind string

const (
	// KindAuthenticationFailed indicates a missing or empty credential.
	KindAuthenticationFailed Kind = "authentication_failed"

	// KindSessionNotFound indicates a registry lookup miss.
	KindSessionNotFound Kind = "session_not_found"

	// KindSessionAlreadyExists indicates a registry creation conflict.
	KindSessionAlreadyExists Kind = "session_already_exists"

	// KindNoActiveSession indicates a handler ran outside a bound call context.
	KindNoActiveSession Kind = "no_active_session"

	// KindStreamNotFound indicates a lookup of a nonexistent event stream.
	KindStreamNotFound Kind = "stream_not_found"

	// KindDiscordAPI indicates an unclassified Discord API failure.
	KindDiscordAPI Kind = "discord_api"

	// Domain kinds, one per functional area of the tool surface.
	KindChannel    Kind = "channel"
	KindRole       Kind = "role"
	KindMessage    Kind = "message"
	KindPermission Kind = "permission"
	KindModeration Kind = "moderation"
	KindWebhook    Kind = "webhook"
	KindInvite     Kind = "invite"
	KindEmoji      Kind = "emoji"
	KindThread     Kind = "thread"
	KindEvent      Kind = "event"
	KindPoll       Kind = "poll"
	KindAutoMod    Kind = "automod"
	KindAuditLog   Kind = "audit_log"
	KindMember     Kind = "member"
	KindReaction   Kind = "reaction"
	KindValidation Kind = "validation"
)

// Error is the common error type for all server-raised failures.
type Error struct {
	Kind    Kind
	Message string
	Details map[string]any
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap returns the wrapped cause, if any.
func (e *Error) Unwrap() error {
	return e.Err
}

// WithDetail adds a single key/value pair to the details map.
func (e *Error) WithDetail(key string, value any) *Error {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates an error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Newf creates an error of the given kind with a formatted message.
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates an error of the given kind wrapping a cause. The cause is
// also recorded in the details map so it survives JSON serialization.
func Wrap(kind Kind, message string, err error) *Error {
	e := &Error{Kind: kind, Message: message, Err: err}
	if err != nil {
		e.WithDetail("cause", err.Error())
	}
	return e
}

// KindOf returns the kind of err if it is (or wraps) an *Error,
// or the empty Kind otherwise.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsKind reports whether err is (or wraps) an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
