// Package mcpcontext provides context helpers for the session binding of the
// currently executing MCP call. It is a separate package to avoid import
// cycles between the middleware and toolkit packages.
//
// The binding is set by the auth middleware at call entry and is naturally
// scoped to that call's context: sibling calls never observe each other's
// binding, and nothing needs explicit clearing on exit.
package mcpcontext

import "context"

// contextKey is a private type for context keys.
type contextKey int

const sessionIDKey contextKey = iota

// WithSessionID binds a session id to the call's context.
func WithSessionID(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, sessionIDKey, sessionID)
}

// SessionID returns the bound session id, or "" when the call is unbound.
func SessionID(ctx context.Context) string {
	id, _ := ctx.Value(sessionIDKey).(string)
	return id
}
