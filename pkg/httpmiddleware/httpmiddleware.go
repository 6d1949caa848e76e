// Package httpmiddleware provides HTTP middleware for the streamable MCP
// endpoint.
package httpmiddleware

import (
	"net/http"

	"github.com/ExilProductions/discord-mcp/pkg/auth"
)

// ExtractAuth copies the Authorization header into the request context so
// the MCP protocol middleware can resolve it to a session. Requests without
// the header pass through untouched; enforcement happens downstream, where
// handlers that require a session fail with no_active_session.
func ExtractAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if header := r.Header.Get("Authorization"); header != "" {
			r = r.WithContext(auth.WithToken(r.Context(), header))
		}
		next.ServeHTTP(w, r)
	})
}

// StaticToken injects a fixed credential into every request context. Used
// for single-tenant deployments where the bot token comes from configuration
// rather than the caller.
func StaticToken(token string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if token != "" && r.Header.Get("Authorization") == "" {
			r = r.WithContext(auth.WithToken(r.Context(), token))
		}
		next.ServeHTTP(w, r)
	})
}
