// Package auth handles bearer credential extraction and context plumbing.
// The raw Authorization header value travels through the request context from
// the HTTP layer to the MCP protocol middleware.
package auth

import (
	"context"
	"strings"

	"github.com/ExilProductions/discord-mcp/pkg/errs"
)

// Literal scheme prefixes stripped from presented credentials. Matching is
// case-sensitive and includes the trailing space.
const (
	BearerPrefix = "Bearer "
	BotPrefix    = "Bot "
)

// contextKey is a private type for context keys.
type contextKey int

const tokenKey contextKey = iota

// WithToken stores the raw credential in the context.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey, token)
}

// TokenFromContext returns the raw credential from the context, or "".
func TokenFromContext(ctx context.Context) string {
	token, _ := ctx.Value(tokenKey).(string)
	return token
}

// ExtractToken normalizes a presented Authorization value: a known scheme
// prefix is stripped, surrounding whitespace trimmed. Values with neither
// prefix pass through unchanged. An empty result fails authentication.
func ExtractToken(authorization string) (string, error) {
	token := strings.TrimLeft(authorization, " \t")
	if after, ok := strings.CutPrefix(token, BearerPrefix); ok {
		token = after
	} else if after, ok := strings.CutPrefix(token, BotPrefix); ok {
		token = after
	}
	token = strings.TrimSpace(token)

	if token == "" {
		return "", errs.New(errs.KindAuthenticationFailed, "missing or empty credential")
	}
	return token, nil
}
