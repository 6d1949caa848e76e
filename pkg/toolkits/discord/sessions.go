package discord

import (
	"context"

	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/ExilProductions/discord-mcp/pkg/events"
)

type emptyInput struct{}

type sessionEventsInput struct {
	Limit int `json:"limit,omitempty" jsonschema:"maximum number of events to return, newest last; 0 returns the full buffer"`
}

func (t *Toolkit) registerSessionTools(s *mcp.Server) {
	mcp.AddTool(s, &mcp.Tool{
		Name:        "get_bot_status",
		Description: "Get the status of all active bot sessions on this server.",
	}, t.handleBotStatus)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "get_session_events",
		Description: "Get recent gateway events observed on this session (messages, member joins/leaves, channel and role updates), oldest first.",
	}, t.handleSessionEvents)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "subscribe_session_events",
		Description: "Create a live event subscription for this session. Returns a subscriber id to poll with poll_session_events.",
	}, t.handleSubscribe)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "poll_session_events",
		Description: "Drain events queued on a live subscription created with subscribe_session_events.",
	}, t.handlePoll)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "unsubscribe_session_events",
		Description: "Remove a live event subscription.",
	}, t.handleUnsubscribe)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "disconnect_session",
		Description: "Disconnect this session's bot and discard its event stream.",
	}, t.handleDisconnect)
}

func (t *Toolkit) handleBotStatus(_ context.Context, _ *mcp.CallToolRequest, _ emptyInput) (*mcp.CallToolResult, any, error) {
	summaries := t.registry.ListSummaries()
	active := 0
	for _, s := range summaries {
		if s.IsActive {
			active++
		}
	}
	return jsonResult(map[string]any{
		"active_sessions": active,
		"total_sessions":  len(summaries),
		"sessions":        summaries,
	})
}

func (t *Toolkit) handleSessionEvents(ctx context.Context, _ *mcp.CallToolRequest, in sessionEventsInput) (*mcp.CallToolResult, any, error) {
	sess, err := t.session(ctx)
	if err != nil {
		return toolError(err)
	}
	stream, err := t.streams.Get(sess.ID)
	if err != nil {
		return toolError(err)
	}

	snapshot := stream.Snapshot()
	if in.Limit > 0 && in.Limit < len(snapshot) {
		snapshot = snapshot[len(snapshot)-in.Limit:]
	}
	return jsonResult(map[string]any{
		"session_id": sess.ID,
		"count":      len(snapshot),
		"events":     snapshot,
	})
}

type subscribeInput struct{}

type pollInput struct {
	SubscriberID string `json:"subscriber_id"`
	Limit        int    `json:"limit,omitempty" jsonschema:"maximum number of events to drain; defaults to the stream buffer size"`
}

type unsubscribeInput struct {
	SubscriberID string `json:"subscriber_id"`
}

func (t *Toolkit) handleSubscribe(ctx context.Context, _ *mcp.CallToolRequest, _ subscribeInput) (*mcp.CallToolResult, any, error) {
	sess, err := t.session(ctx)
	if err != nil {
		return toolError(err)
	}
	stream, err := t.streams.Get(sess.ID)
	if err != nil {
		return toolError(err)
	}

	subscriberID := uuid.NewString()
	ch := stream.Subscribe(subscriberID)

	t.mu.Lock()
	t.subscriptions[subscriberID] = subscription{sessionID: sess.ID, ch: ch}
	t.mu.Unlock()

	return jsonResult(map[string]any{"subscriber_id": subscriberID, "session_id": sess.ID})
}

func (t *Toolkit) handlePoll(ctx context.Context, _ *mcp.CallToolRequest, in pollInput) (*mcp.CallToolResult, any, error) {
	sess, err := t.session(ctx)
	if err != nil {
		return toolError(err)
	}

	t.mu.Lock()
	sub, ok := t.subscriptions[in.SubscriberID]
	t.mu.Unlock()
	if !ok || sub.sessionID != sess.ID {
		return errorResult("unknown subscriber id: " + in.SubscriberID), nil, nil
	}

	limit := in.Limit
	if limit <= 0 {
		limit = events.DefaultBufferSize
	}
	drained := subscriberEvents(sub.ch, limit)
	return jsonResult(map[string]any{
		"subscriber_id": in.SubscriberID,
		"count":         len(drained),
		"events":        drained,
	})
}

func (t *Toolkit) handleUnsubscribe(ctx context.Context, _ *mcp.CallToolRequest, in unsubscribeInput) (*mcp.CallToolResult, any, error) {
	sess, err := t.session(ctx)
	if err != nil {
		return toolError(err)
	}

	t.mu.Lock()
	sub, ok := t.subscriptions[in.SubscriberID]
	delete(t.subscriptions, in.SubscriberID)
	t.mu.Unlock()

	if ok && sub.sessionID == sess.ID {
		if stream, err := t.streams.Get(sess.ID); err == nil {
			stream.Unsubscribe(in.SubscriberID)
		}
	}
	return jsonResult(map[string]any{"unsubscribed": ok})
}

func (t *Toolkit) handleDisconnect(ctx context.Context, _ *mcp.CallToolRequest, _ emptyInput) (*mcp.CallToolResult, any, error) {
	sess, err := t.session(ctx)
	if err != nil {
		return toolError(err)
	}
	t.binder.Deauthenticate(sess.ID)
	return jsonResult(map[string]any{"disconnected": true, "session_id": sess.ID})
}

// subscriberEvents drains up to limit buffered events from a subscription
// channel without blocking. Exposed for the streaming surface.
func subscriberEvents(ch <-chan events.Event, limit int) []events.Event {
	out := make([]events.Event, 0, limit)
	for len(out) < limit {
		select {
		case ev, ok := <-ch:
			if !ok {
				return out
			}
			out = append(out, ev)
		default:
			return out
		}
	}
	return out
}
