// Package admin exposes read-only operational endpoints over the audit log.
package admin

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/ExilProductions/discord-mcp/pkg/audit"
)

// Querier reads recorded audit events.
type Querier interface {
	Query(ctx context.Context, filter audit.QueryFilter) ([]audit.Event, error)
}

// Handler serves the audit query API. All routes require the configured
// admin key, presented as X-API-Key or a bearer credential.
type Handler struct {
	mux     *http.ServeMux
	querier Querier
	key     string
}

// NewHandler creates the admin API handler.
func NewHandler(querier Querier, key string) *Handler {
	h := &Handler{
		mux:     http.NewServeMux(),
		querier: querier,
		key:     key,
	}
	h.mux.HandleFunc("GET /api/v1/admin/audit/events", h.listAuditEvents)
	h.mux.HandleFunc("GET /api/v1/admin/audit/stats", h.auditStats)
	return h
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !h.authorized(r) {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	h.mux.ServeHTTP(w, r)
}

func (h *Handler) authorized(r *http.Request) bool {
	if h.key == "" {
		return false
	}
	key := r.Header.Get("X-API-Key")
	if key == "" {
		if token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); ok {
			key = token
		}
	}
	return subtle.ConstantTimeCompare([]byte(key), []byte(h.key)) == 1
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
