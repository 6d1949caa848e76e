// Package session binds one caller credential to one live Discord connection
// and tracks its activity. The Registry is the sole authority over which
// sessions exist.
package session

import (
	"context"
	"log/slog"
	"time"

	"github.com/ExilProductions/discord-mcp/pkg/discord"
)

// Session is the server-side record for one authenticated caller.
type Session struct {
	// ID is the opaque, unguessable session identifier. It is generated
	// server-side and never derived from the credential.
	ID string

	// Token is the bearer credential the session was created for.
	Token string

	// Client is the connection handle. Nil until Start has run.
	Client *discord.Client

	// CreatedAt is when the session was established.
	CreatedAt time.Time

	// LastActivity is refreshed on every successful lookup.
	LastActivity time.Time
}

// Start drives the connection handle's startup sequence: it begins connecting
// immediately and waits (bounded) for the ready signal. A ready timeout is
// not an error; callers check Active afterward. Records activity regardless
// of outcome.
func (s *Session) Start(ctx context.Context) error {
	slog.Info("session: starting", "session_id", s.ID, "token_prefix", tokenPrefix(s.Token))

	err := s.Client.Start(ctx)
	s.LastActivity = time.Now()
	if err != nil {
		return err
	}

	if s.Client.Ready() {
		slog.Info("session: bot ready", "session_id", s.ID, "user", userString(s))
	} else {
		slog.Error("session: bot failed to become ready", "session_id", s.ID)
	}
	return nil
}

// Stop tears down the connection handle.
func (s *Session) Stop() {
	if s.Client != nil {
		s.Client.Stop()
	}
	slog.Info("session: stopped", "session_id", s.ID)
}

// Touch refreshes the last-activity timestamp.
func (s *Session) Touch() {
	s.LastActivity = time.Now()
}

// Active reports whether the underlying connection is ready.
func (s *Session) Active() bool {
	return s.Client != nil && s.Client.Ready()
}

func tokenPrefix(token string) string {
	if len(token) > 10 {
		return token[:10] + "..."
	}
	return "short"
}

func userString(s *Session) string {
	if u := s.Client.User(); u != nil {
		return u.Username
	}
	return "unknown"
}
