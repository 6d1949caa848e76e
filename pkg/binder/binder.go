// Package binder translates raw bearer credentials into session ids,
// creating the session and its paired event stream on first use.
package binder

import (
	"context"
	"log/slog"

	"github.com/ExilProductions/discord-mcp/pkg/auth"
	"github.com/ExilProductions/discord-mcp/pkg/events"
	"github.com/ExilProductions/discord-mcp/pkg/session"
)

// Binder resolves credentials to sessions. Uniqueness of the credential →
// session mapping is guaranteed by the registry, whose Create re-checks
// ownership under its own lock.
type Binder struct {
	registry *session.Registry
	streams  *events.Manager
}

// New creates a binder over the given registry and stream manager.
func New(registry *session.Registry, streams *events.Manager) *Binder {
	return &Binder{registry: registry, streams: streams}
}

// Authenticate resolves a raw credential to a session id. A known scheme
// prefix ("Bearer " or "Bot ") is stripped first; an empty result fails. On
// first use the session is created (blocking on the connection's ready wait)
// and its event stream is started.
func (b *Binder) Authenticate(ctx context.Context, rawCredential string) (string, error) {
	token, err := auth.ExtractToken(rawCredential)
	if err != nil {
		return "", err
	}

	if existing := b.registry.FindByToken(token); existing != nil {
		slog.Debug("binder: existing session found", "session_id", existing.ID)
		return existing.ID, nil
	}

	sess, err := b.registry.Create(ctx, token)
	if err != nil {
		slog.Error("binder: session creation failed", "error", err)
		return "", err
	}

	// The publish callback may already have created the stream while the
	// connection was starting up; Create is idempotent either way.
	b.streams.Create(sess.ID)
	slog.Info("binder: authenticated", "session_id", sess.ID)
	return sess.ID, nil
}

// Deauthenticate removes the session and its event stream. Idempotent with
// respect to already-removed sessions.
func (b *Binder) Deauthenticate(sessionID string) {
	b.registry.Remove(sessionID)
	b.streams.Remove(sessionID)
	slog.Info("binder: deauthenticated", "session_id", sessionID)
}

// PublishCallback returns the event callback wired into new connection
// handles: observed gateway events are published into the stream keyed by
// the event's session id. The stream is created on first publish, so events
// fired during session startup (the ready event arrives before Create
// returns) are buffered rather than dropped.
func (b *Binder) PublishCallback() func(events.Event) {
	return func(ev events.Event) {
		b.streams.Create(ev.SessionID()).Publish(ev)
	}
}
