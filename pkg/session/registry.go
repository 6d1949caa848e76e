package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ExilProductions/discord-mcp/pkg/discord"
	"github.com/ExilProductions/discord-mcp/pkg/errs"
)

// DefaultIdleTimeout is how long a session may sit without activity before
// the sweeper removes it.
const DefaultIdleTimeout = 300 * time.Second

// sessionIDBytes is the number of random bytes in a session identifier.
const sessionIDBytes = 16

// ClientFactory builds the connection handle for a new session. The factory
// receives the freshly generated session id so the handle can tag the events
// it emits.
type ClientFactory func(token, sessionID string) *discord.Client

// Registry is the authoritative table of active sessions, keyed by session
// id. All operations serialize on a single lock; Create holds it for the
// entire connection startup sequence, so concurrent creations are fully
// serialized. Session creation is rare, so this is an accepted tradeoff.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Session
	factory  ClientFactory

	cancel context.CancelFunc
	done   chan struct{}
}

// NewRegistry creates an empty registry whose sessions build their connection
// handles through factory.
func NewRegistry(factory ClientFactory) *Registry {
	return &Registry{
		sessions: make(map[string]*Session),
		factory:  factory,
	}
}

// Create generates a fresh session id, constructs a session for token,
// synchronously drives its startup sequence, registers it, and returns it.
// If another session already owns the token when the lock is acquired, that
// session is returned instead of creating a duplicate, making the
// check-and-create atomic for callers racing on a fresh credential.
func (r *Registry) Create(ctx context.Context, token string) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, sess := range r.sessions {
		if sess.Token == token {
			sess.Touch()
			return sess, nil
		}
	}

	id, err := generateSessionID()
	if err != nil {
		return nil, fmt.Errorf("generating session id: %w", err)
	}

	now := time.Now()
	sess := &Session{
		ID:           id,
		Token:        token,
		Client:       r.factory(token, id),
		CreatedAt:    now,
		LastActivity: now,
	}

	if err := sess.Start(ctx); err != nil {
		sess.Stop()
		return nil, fmt.Errorf("starting session: %w", err)
	}

	r.sessions[id] = sess
	slog.Info("session: created", "session_id", id)
	return sess, nil
}

// Get returns the session for id, refreshing its last-activity timestamp.
func (r *Registry) Get(id string) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	sess, ok := r.sessions[id]
	if !ok {
		return nil, errs.Newf(errs.KindSessionNotFound, "session %s not found", id).
			WithDetail("session_id", id)
	}
	sess.Touch()
	return sess, nil
}

// FindByToken scans for the session owning token. Returns nil when absent;
// refreshes last-activity on a hit.
func (r *Registry) FindByToken(token string) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, sess := range r.sessions {
		if sess.Token == token {
			sess.Touch()
			return sess
		}
	}
	return nil
}

// Remove deletes the session and tears down its connection handle.
// Idempotent: removing an absent id is not an error.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	sess := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()

	if sess != nil {
		sess.Stop()
		slog.Info("session: removed", "session_id", id)
	}
}

// Sweep removes and tears down every session idle for longer than idleFor.
// Returns the number of sessions removed.
func (r *Registry) Sweep(idleFor time.Duration) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := time.Now().Add(-idleFor)
	removed := 0
	for id, sess := range r.sessions {
		if sess.LastActivity.Before(cutoff) {
			delete(r.sessions, id)
			sess.Stop()
			removed++
			slog.Info("session: swept", "session_id", id, "reason", "inactive")
		}
	}
	return removed
}

// Len returns the number of active sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// StartSweeper starts a background goroutine that periodically sweeps idle
// sessions. Stopped by Close.
func (r *Registry) StartSweeper(interval, idleFor time.Duration) {
	ctx, cancel := context.WithCancel(context.Background())
	r.cancel = cancel
	r.done = make(chan struct{})

	go func() {
		defer close(r.done)

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				r.Sweep(idleFor)
			}
		}
	}()
}

// Close stops the sweeper goroutine, waits for it to exit, and tears down
// every remaining session. Safe to call when StartSweeper was never called.
func (r *Registry) Close() error {
	if r.cancel != nil {
		r.cancel()
		<-r.done
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for id, sess := range r.sessions {
		delete(r.sessions, id)
		sess.Stop()
	}
	return nil
}

// generateSessionID returns an unguessable URL-safe identifier.
func generateSessionID() (string, error) {
	b := make([]byte, sessionIDBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
