package admin

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ExilProductions/discord-mcp/pkg/audit"
)

const testAdminKey = "test-admin-key"

// fakeQuerier records the last filter and returns canned events.
type fakeQuerier struct {
	events []audit.Event
	err    error
	filter audit.QueryFilter
}

func (f *fakeQuerier) Query(_ context.Context, filter audit.QueryFilter) ([]audit.Event, error) {
	f.filter = filter
	return f.events, f.err
}

func doRequest(h *Handler, target, apiKey string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	if apiKey != "" {
		req.Header.Set("X-API-Key", apiKey)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestAuthorization(t *testing.T) {
	q := &fakeQuerier{}
	h := NewHandler(q, testAdminKey)

	t.Run("missing key is unauthorized", func(t *testing.T) {
		rec := doRequest(h, "/api/v1/admin/audit/events", "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("wrong key is unauthorized", func(t *testing.T) {
		rec := doRequest(h, "/api/v1/admin/audit/events", "nope")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("api key header is accepted", func(t *testing.T) {
		rec := doRequest(h, "/api/v1/admin/audit/events", testAdminKey)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("bearer credential is accepted", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/audit/events", nil)
		req.Header.Set("Authorization", "Bearer "+testAdminKey)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("empty configured key rejects everything", func(t *testing.T) {
		locked := NewHandler(q, "")
		rec := doRequest(locked, "/api/v1/admin/audit/events", "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestListAuditEvents(t *testing.T) {
	t.Run("returns events", func(t *testing.T) {
		q := &fakeQuerier{events: []audit.Event{
			{ID: "e1", ToolName: "send_message", Success: true},
			{ID: "e2", ToolName: "ban_member", Success: false},
		}}
		h := NewHandler(q, testAdminKey)

		rec := doRequest(h, "/api/v1/admin/audit/events", testAdminKey)
		require.Equal(t, http.StatusOK, rec.Code)

		var body auditEventResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, 2, body.Count)
		assert.Equal(t, "e1", body.Data[0].ID)
	})

	t.Run("empty result is an empty array", func(t *testing.T) {
		q := &fakeQuerier{}
		h := NewHandler(q, testAdminKey)

		rec := doRequest(h, "/api/v1/admin/audit/events", testAdminKey)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"data":[]`)
	})

	t.Run("filters are forwarded", func(t *testing.T) {
		q := &fakeQuerier{}
		h := NewHandler(q, testAdminKey)

		target := "/api/v1/admin/audit/events?session_id=s1&tool_name=send_message&success=false&limit=10&start_time=2026-08-01T00:00:00Z"
		rec := doRequest(h, target, testAdminKey)
		require.Equal(t, http.StatusOK, rec.Code)

		assert.Equal(t, "s1", q.filter.SessionID)
		assert.Equal(t, "send_message", q.filter.ToolName)
		require.NotNil(t, q.filter.Success)
		assert.False(t, *q.filter.Success)
		assert.Equal(t, 10, q.filter.Limit)
		require.NotNil(t, q.filter.StartTime)
		assert.Equal(t, time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC), q.filter.StartTime.UTC())
	})

	t.Run("limit is capped", func(t *testing.T) {
		q := &fakeQuerier{}
		h := NewHandler(q, testAdminKey)

		doRequest(h, "/api/v1/admin/audit/events?limit=9999", testAdminKey)
		assert.Equal(t, maxAuditLimit, q.filter.Limit)
	})

	t.Run("query failure is a 500", func(t *testing.T) {
		q := &fakeQuerier{err: errors.New("boom")}
		h := NewHandler(q, testAdminKey)

		rec := doRequest(h, "/api/v1/admin/audit/events", testAdminKey)
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}

func TestAuditStats(t *testing.T) {
	q := &fakeQuerier{events: []audit.Event{
		{ToolName: "send_message", Success: true},
		{ToolName: "send_message", Success: true},
		{ToolName: "ban_member", Success: false},
	}}
	h := NewHandler(q, testAdminKey)

	rec := doRequest(h, "/api/v1/admin/audit/stats", testAdminKey)
	require.Equal(t, http.StatusOK, rec.Code)

	var stats auditStatsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 2, stats.Success)
	assert.Equal(t, 1, stats.Failures)
	assert.Equal(t, 2, stats.ByTool["send_message"])
	assert.Equal(t, statsWindowLimit, q.filter.Limit)
}

func TestParseTimeParam(t *testing.T) {
	q := map[string][]string{
		"good": {"2026-08-31T12:00:00Z"},
		"bad":  {"yesterday"},
	}
	if got := parseTimeParam(q, "good"); got == nil {
		t.Error("valid timestamp was rejected")
	}
	if got := parseTimeParam(q, "bad"); got != nil {
		t.Errorf("malformed timestamp parsed to %v", got)
	}
	if got := parseTimeParam(q, "absent"); got != nil {
		t.Errorf("absent parameter parsed to %v", got)
	}
}
