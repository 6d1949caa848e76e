package admin

import (
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/ExilProductions/discord-mcp/pkg/audit"
)

const (
	defaultAuditLimit = 50
	maxAuditLimit     = 500
	statsWindowLimit  = 1000
)

// auditEventResponse wraps a list of audit events.
type auditEventResponse struct {
	Data  []audit.Event `json:"data"`
	Count int           `json:"count"`
}

// auditStatsResponse aggregates over the most recent events.
type auditStatsResponse struct {
	Total    int            `json:"total"`
	Success  int            `json:"success"`
	Failures int            `json:"failures"`
	ByTool   map[string]int `json:"by_tool"`
}

// listAuditEvents handles GET /api/v1/admin/audit/events.
func (h *Handler) listAuditEvents(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := audit.QueryFilter{
		SessionID: q.Get("session_id"),
		ToolName:  q.Get("tool_name"),
		StartTime: parseTimeParam(q, "start_time"),
		EndTime:   parseTimeParam(q, "end_time"),
	}

	if v := q.Get("success"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			filter.Success = &b
		}
	}

	filter.Limit = defaultAuditLimit
	if n, err := strconv.Atoi(q.Get("limit")); err == nil && n > 0 {
		filter.Limit = min(n, maxAuditLimit)
	}

	events, err := h.querier.Query(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "querying audit events")
		return
	}
	if events == nil {
		events = []audit.Event{}
	}

	writeJSON(w, http.StatusOK, auditEventResponse{Data: events, Count: len(events)})
}

// auditStats handles GET /api/v1/admin/audit/stats. Aggregates are computed
// over the newest events within the stats window, not the full table.
func (h *Handler) auditStats(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := audit.QueryFilter{
		StartTime: parseTimeParam(q, "start_time"),
		EndTime:   parseTimeParam(q, "end_time"),
		Limit:     statsWindowLimit,
	}

	events, err := h.querier.Query(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "querying audit events")
		return
	}

	stats := auditStatsResponse{
		Total:  len(events),
		ByTool: map[string]int{},
	}
	for _, event := range events {
		if event.Success {
			stats.Success++
		} else {
			stats.Failures++
		}
		stats.ByTool[event.ToolName]++
	}
	writeJSON(w, http.StatusOK, stats)
}

// parseTimeParam parses an RFC 3339 query parameter, returning nil when the
// parameter is absent or malformed.
func parseTimeParam(q url.Values, key string) *time.Time {
	v := q.Get(key)
	if v == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return nil
	}
	return &t
}
