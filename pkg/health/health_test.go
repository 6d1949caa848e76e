package health

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestChecker_States(t *testing.T) {
	c := NewChecker(nil)

	if c.State() != "starting" {
		t.Errorf("State() = %q, want starting", c.State())
	}
	if c.IsReady() {
		t.Error("IsReady() = true before SetReady")
	}

	c.SetReady()
	if !c.IsReady() || c.State() != "ready" {
		t.Errorf("after SetReady: IsReady() = %v, State() = %q", c.IsReady(), c.State())
	}

	c.SetDraining()
	if c.IsReady() || c.State() != "draining" {
		t.Errorf("after SetDraining: IsReady() = %v, State() = %q", c.IsReady(), c.State())
	}
}

func TestLivenessHandler(t *testing.T) {
	c := NewChecker(nil)

	rec := httptest.NewRecorder()
	c.LivenessHandler()(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("status field = %v, want ok", body["status"])
	}
}

func TestReadinessHandler(t *testing.T) {
	tests := []struct {
		name       string
		setup      func(*Checker)
		wantCode   int
		wantStatus string
	}{
		{"starting", func(*Checker) {}, http.StatusServiceUnavailable, "starting"},
		{"ready", func(c *Checker) { c.SetReady() }, http.StatusOK, "ready"},
		{"draining", func(c *Checker) { c.SetReady(); c.SetDraining() }, http.StatusServiceUnavailable, "draining"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewChecker(nil)
			tt.setup(c)

			rec := httptest.NewRecorder()
			c.ReadinessHandler()(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

			if rec.Code != tt.wantCode {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantCode)
			}
			var body map[string]any
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("decoding body: %v", err)
			}
			if body["status"] != tt.wantStatus {
				t.Errorf("status field = %v, want %q", body["status"], tt.wantStatus)
			}
		})
	}
}
