// Package health provides readiness tracking and HTTP health check handlers.
package health

import (
	"encoding/json"
	"net/http"
	"sync/atomic"

	"github.com/ExilProductions/discord-mcp/pkg/session"
)

// State constants for the readiness state machine.
const (
	stateStarting int32 = iota
	stateReady
	stateDraining
)

// Checker tracks server readiness and reports session counts.
// Safe for concurrent use.
type Checker struct {
	state    atomic.Int32
	registry *session.Registry
}

// NewChecker creates a Checker in the Starting state. The registry may be
// nil, in which case session counts are omitted.
func NewChecker(registry *session.Registry) *Checker {
	return &Checker{registry: registry}
}

// SetReady transitions to the Ready state.
func (c *Checker) SetReady() {
	c.state.Store(stateReady)
}

// SetDraining transitions to the Draining state.
func (c *Checker) SetDraining() {
	c.state.Store(stateDraining)
}

// IsReady returns true when the state is Ready.
func (c *Checker) IsReady() bool {
	return c.state.Load() == stateReady
}

// State returns the current state as a human-readable string.
func (c *Checker) State() string {
	switch c.state.Load() {
	case stateReady:
		return "ready"
	case stateDraining:
		return "draining"
	default:
		return "starting"
	}
}

// healthResponse is the JSON body returned by health endpoints.
type healthResponse struct {
	Status   string `json:"status"`
	Sessions int    `json:"sessions,omitempty"`
}

// LivenessHandler always responds 200 OK. Use for livenessProbe (/healthz).
func (c *Checker) LivenessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Sessions: c.sessionCount()})
	}
}

// ReadinessHandler responds 200 when ready and 503 otherwise. Use for
// readinessProbe (/readyz).
func (c *Checker) ReadinessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		status := http.StatusOK
		if !c.IsReady() {
			status = http.StatusServiceUnavailable
		}
		writeJSON(w, status, healthResponse{Status: c.State(), Sessions: c.sessionCount()})
	}
}

func (c *Checker) sessionCount() int {
	if c.registry == nil {
		return 0
	}
	return c.registry.Len()
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
