// Package discord provides the MCP tool surface over a caller's bound
// Discord session: channels, messages, roles, members, moderation, webhooks,
// invites, emoji, threads, scheduled events, polls, automod, audit log, and
// session introspection.
package discord

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"sync"

	"github.com/bwmarrin/discordgo"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/ExilProductions/discord-mcp/pkg/binder"
	dc "github.com/ExilProductions/discord-mcp/pkg/discord"
	"github.com/ExilProductions/discord-mcp/pkg/errs"
	"github.com/ExilProductions/discord-mcp/pkg/events"
	"github.com/ExilProductions/discord-mcp/pkg/mcpcontext"
	"github.com/ExilProductions/discord-mcp/pkg/session"
)

// Toolkit registers and serves the Discord tools. Handlers obtain their
// session exclusively through the call's bound session id.
type Toolkit struct {
	registry *session.Registry
	streams  *events.Manager
	binder   *binder.Binder

	mu            sync.Mutex
	subscriptions map[string]subscription
}

// subscription tracks a live event subscription handed out by
// subscribe_session_events.
type subscription struct {
	sessionID string
	ch        <-chan events.Event
}

// New creates the toolkit over the shared registries.
func New(registry *session.Registry, streams *events.Manager, b *binder.Binder) *Toolkit {
	return &Toolkit{
		registry:      registry,
		streams:       streams,
		binder:        b,
		subscriptions: make(map[string]subscription),
	}
}

// Kind returns the toolkit kind.
func (*Toolkit) Kind() string {
	return "discord"
}

// RegisterTools registers every tool with the MCP server.
func (t *Toolkit) RegisterTools(s *mcp.Server) {
	t.registerSessionTools(s)
	t.registerChannelTools(s)
	t.registerMessageTools(s)
	t.registerReactionTools(s)
	t.registerRoleTools(s)
	t.registerPermissionTools(s)
	t.registerMemberTools(s)
	t.registerModerationTools(s)
	t.registerGuildTools(s)
	t.registerWebhookTools(s)
	t.registerInviteTools(s)
	t.registerEmojiTools(s)
	t.registerThreadTools(s)
	t.registerScheduledEventTools(s)
	t.registerPollTools(s)
	t.registerAutoModTools(s)
	t.registerAuditLogTools(s)
}

// session resolves the session bound to the current call. This is the only
// sanctioned way for handlers to obtain their session.
func (t *Toolkit) session(ctx context.Context) (*session.Session, error) {
	id := mcpcontext.SessionID(ctx)
	if id == "" {
		return nil, errs.New(errs.KindNoActiveSession,
			"no active session context, Authorization header required")
	}
	return t.registry.Get(id)
}

// discord resolves the current session's REST client.
func (t *Toolkit) discord(ctx context.Context) (*discordgo.Session, *session.Session, error) {
	sess, err := t.session(ctx)
	if err != nil {
		return nil, nil, err
	}
	if sess.Client == nil || sess.Client.Session() == nil {
		return nil, nil, errs.New(errs.KindNoActiveSession, "session client not initialized").
			WithDetail("session_id", sess.ID)
	}
	return sess.Client.Session(), sess, nil
}

// announce sets a transient presence for the duration of an operation. The
// returned func clears it and must run on every exit path.
func (t *Toolkit) announce(ctx context.Context, activity string) func() {
	sess, err := t.session(ctx)
	if err != nil {
		return func() {}
	}
	_ = sess.Client.SetPresence(activity, dc.ActivityPlaying, dc.StatusOnline)
	return func() {
		_ = sess.Client.ClearPresence()
	}
}

// jsonResult marshals v into an indented text content block.
func jsonResult(v any) (*mcp.CallToolResult, any, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errorResult("serializing result: " + err.Error()), nil, nil
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(data)}},
	}, nil, nil
}

// errorResult builds an IsError tool result.
func errorResult(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{&mcp.TextContent{Text: msg}},
	}
}

// toolError renders a domain error, including its details map, as an IsError
// result. Tool failures travel in the result, not as Go errors.
func toolError(err error) (*mcp.CallToolResult, any, error) {
	var e *errs.Error
	if errors.As(err, &e) && len(e.Details) > 0 {
		details, marshalErr := json.Marshal(e.Details)
		if marshalErr == nil {
			return errorResult(err.Error() + " " + string(details)), nil, nil
		}
	}
	return errorResult(err.Error()), nil, nil
}

func parseInt(s string) (int64, bool) {
	n, err := strconv.ParseInt(s, 10, 64)
	return n, err == nil
}
