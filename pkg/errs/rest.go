package errs

import (
	"errors"
	"net/http"

	"github.com/bwmarrin/discordgo"
)

// FromREST classifies a Discord REST failure into a domain-tagged error.
// Permission failures and missing resources get distinct messages so callers
// can act on them; everything else keeps the domain kind with the raw cause
// captured in the details map.
func FromREST(kind Kind, message string, err error) *Error {
	var restErr *discordgo.RESTError
	if !errors.As(err, &restErr) || restErr.Response == nil {
		return Wrap(kind, message, err)
	}

	e := Wrap(kind, message, err)
	e.WithDetail("status_code", restErr.Response.StatusCode)
	if restErr.Message != nil {
		e.WithDetail("discord_code", restErr.Message.Code)
		e.WithDetail("discord_message", restErr.Message.Message)
	}

	switch restErr.Response.StatusCode {
	case http.StatusForbidden:
		e.Kind = KindPermission
		e.Message = message + ": missing permissions"
	case http.StatusNotFound:
		e.WithDetail("reason", "not_found")
	case http.StatusTooManyRequests:
		e.WithDetail("reason", "rate_limited")
	}
	return e
}
