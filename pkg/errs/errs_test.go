package errs

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/bwmarrin/discordgo"
)

func TestError(t *testing.T) {
	t.Run("message format without cause", func(t *testing.T) {
		err := New(KindSessionNotFound, "no session abc")
		want := "session_not_found: no session abc"
		if err.Error() != want {
			t.Errorf("Error() = %q, want %q", err.Error(), want)
		}
	})

	t.Run("message format with cause", func(t *testing.T) {
		cause := errors.New("boom")
		err := Wrap(KindDiscordAPI, "calling gateway", cause)
		want := "discord_api: calling gateway: boom"
		if err.Error() != want {
			t.Errorf("Error() = %q, want %q", err.Error(), want)
		}
	})

	t.Run("wrap records cause detail", func(t *testing.T) {
		err := Wrap(KindChannel, "fetching", errors.New("timeout"))
		if err.Details["cause"] != "timeout" {
			t.Errorf("Details[cause] = %v, want timeout", err.Details["cause"])
		}
	})

	t.Run("wrap nil cause", func(t *testing.T) {
		err := Wrap(KindChannel, "fetching", nil)
		if _, ok := err.Details["cause"]; ok {
			t.Error("Details[cause] set for nil cause")
		}
	})

	t.Run("unwrap", func(t *testing.T) {
		cause := errors.New("boom")
		err := Wrap(KindDiscordAPI, "calling", cause)
		if !errors.Is(err, cause) {
			t.Error("errors.Is() did not find the wrapped cause")
		}
	})

	t.Run("with detail chains", func(t *testing.T) {
		err := New(KindRole, "creating").
			WithDetail("guild_id", "1").
			WithDetail("role", "mod")
		if err.Details["guild_id"] != "1" || err.Details["role"] != "mod" {
			t.Errorf("Details = %v", err.Details)
		}
	})
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"direct", New(KindAuthenticationFailed, "x"), KindAuthenticationFailed},
		{"wrapped in fmt", fmt.Errorf("outer: %w", New(KindSessionNotFound, "x")), KindSessionNotFound},
		{"plain error", errors.New("x"), ""},
		{"nil", nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.want {
				t.Errorf("KindOf() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestIsKind(t *testing.T) {
	err := New(KindStreamNotFound, "x")
	if !IsKind(err, KindStreamNotFound) {
		t.Error("IsKind() = false for matching kind")
	}
	if IsKind(err, KindSessionNotFound) {
		t.Error("IsKind() = true for mismatched kind")
	}
}

func restError(status int, code int, msg string) *discordgo.RESTError {
	return &discordgo.RESTError{
		Response: &http.Response{StatusCode: status},
		Message:  &discordgo.APIErrorMessage{Code: code, Message: msg},
	}
}

func TestFromREST(t *testing.T) {
	t.Run("forbidden becomes permission", func(t *testing.T) {
		err := FromREST(KindChannel, "deleting channel", restError(http.StatusForbidden, 50013, "Missing Permissions"))
		if err.Kind != KindPermission {
			t.Errorf("Kind = %q, want %q", err.Kind, KindPermission)
		}
		if err.Message != "deleting channel: missing permissions" {
			t.Errorf("Message = %q", err.Message)
		}
		if err.Details["status_code"] != http.StatusForbidden {
			t.Errorf("Details[status_code] = %v", err.Details["status_code"])
		}
	})

	t.Run("not found keeps kind with reason", func(t *testing.T) {
		err := FromREST(KindMessage, "fetching message", restError(http.StatusNotFound, 10008, "Unknown Message"))
		if err.Kind != KindMessage {
			t.Errorf("Kind = %q, want %q", err.Kind, KindMessage)
		}
		if err.Details["reason"] != "not_found" {
			t.Errorf("Details[reason] = %v, want not_found", err.Details["reason"])
		}
		if err.Details["discord_code"] != 10008 {
			t.Errorf("Details[discord_code] = %v, want 10008", err.Details["discord_code"])
		}
	})

	t.Run("rate limited reason", func(t *testing.T) {
		err := FromREST(KindMessage, "sending", restError(http.StatusTooManyRequests, 0, ""))
		if err.Details["reason"] != "rate_limited" {
			t.Errorf("Details[reason] = %v, want rate_limited", err.Details["reason"])
		}
	})

	t.Run("non REST error wraps plainly", func(t *testing.T) {
		err := FromREST(KindChannel, "fetching", errors.New("dial tcp: refused"))
		if err.Kind != KindChannel {
			t.Errorf("Kind = %q, want %q", err.Kind, KindChannel)
		}
		if _, ok := err.Details["status_code"]; ok {
			t.Error("status_code set for non-REST error")
		}
	})
}
