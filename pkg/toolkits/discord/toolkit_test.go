package discord

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ExilProductions/discord-mcp/pkg/binder"
	dc "github.com/ExilProductions/discord-mcp/pkg/discord"
	"github.com/ExilProductions/discord-mcp/pkg/errs"
	"github.com/ExilProductions/discord-mcp/pkg/events"
	"github.com/ExilProductions/discord-mcp/pkg/mcpcontext"
	"github.com/ExilProductions/discord-mcp/pkg/session"
)

const testCredential = "aaaa.bbbb.cccc"

// newTestToolkit wires a toolkit whose sessions never reach the gateway,
// plus a context bound to a freshly authenticated session.
func newTestToolkit(t *testing.T) (*Toolkit, context.Context, string) {
	t.Helper()

	streams := events.NewManager(10)
	var b *binder.Binder
	registry := session.NewRegistry(func(token, sessionID string) *dc.Client {
		return dc.NewClient(token, sessionID, b.PublishCallback(),
			dc.WithReadyTimeout(5*time.Millisecond),
			dc.WithGatewayOpener(func(*discordgo.Session) error { return nil }),
		)
	})
	b = binder.New(registry, streams)
	t.Cleanup(func() { _ = registry.Close() })

	sessionID, err := b.Authenticate(context.Background(), testCredential)
	require.NoError(t, err)

	tk := New(registry, streams, b)
	return tk, mcpcontext.WithSessionID(context.Background(), sessionID), sessionID
}

// resultJSON unmarshals a text tool result.
func resultJSON(t *testing.T, result *mcp.CallToolResult) map[string]any {
	t.Helper()
	require.False(t, result.IsError, "unexpected tool error: %v", result.Content)
	text, ok := result.Content[0].(*mcp.TextContent)
	require.True(t, ok)
	var out map[string]any
	require.NoError(t, json.Unmarshal([]byte(text.Text), &out))
	return out
}

func TestSessionResolution(t *testing.T) {
	t.Run("unbound context fails with no_active_session", func(t *testing.T) {
		tk, _, _ := newTestToolkit(t)

		_, err := tk.session(context.Background())
		assert.True(t, errs.IsKind(err, errs.KindNoActiveSession))
	})

	t.Run("bound context resolves", func(t *testing.T) {
		tk, ctx, sessionID := newTestToolkit(t)

		sess, err := tk.session(ctx)
		require.NoError(t, err)
		assert.Equal(t, sessionID, sess.ID)
	})

	t.Run("stale binding fails with session_not_found", func(t *testing.T) {
		tk, _, _ := newTestToolkit(t)

		_, err := tk.session(mcpcontext.WithSessionID(context.Background(), "gone"))
		assert.True(t, errs.IsKind(err, errs.KindSessionNotFound))
	})
}

func TestHandleBotStatus(t *testing.T) {
	tk, ctx, sessionID := newTestToolkit(t)

	result, _, err := tk.handleBotStatus(ctx, nil, emptyInput{})
	require.NoError(t, err)

	body := resultJSON(t, result)
	assert.EqualValues(t, 1, body["total_sessions"])
	sessions, ok := body["sessions"].([]any)
	require.True(t, ok)
	require.Len(t, sessions, 1)
	entry, _ := sessions[0].(map[string]any)
	assert.Equal(t, sessionID, entry["session_id"])
}

func TestHandleSessionEvents(t *testing.T) {
	tk, ctx, sessionID := newTestToolkit(t)

	stream, err := tk.streams.Get(sessionID)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		stream.Publish(events.New(events.TypeMessage, sessionID).With("n", i))
	}

	t.Run("full buffer", func(t *testing.T) {
		result, _, err := tk.handleSessionEvents(ctx, nil, sessionEventsInput{})
		require.NoError(t, err)
		body := resultJSON(t, result)
		assert.EqualValues(t, 5, body["count"])
	})

	t.Run("limit returns newest tail", func(t *testing.T) {
		result, _, err := tk.handleSessionEvents(ctx, nil, sessionEventsInput{Limit: 2})
		require.NoError(t, err)
		body := resultJSON(t, result)
		assert.EqualValues(t, 2, body["count"])

		evs, _ := body["events"].([]any)
		require.Len(t, evs, 2)
		last, _ := evs[1].(map[string]any)
		assert.EqualValues(t, 4, last["n"])
	})
}

func TestSubscriptionLifecycle(t *testing.T) {
	tk, ctx, sessionID := newTestToolkit(t)

	result, _, err := tk.handleSubscribe(ctx, nil, subscribeInput{})
	require.NoError(t, err)
	subscriberID, _ := resultJSON(t, result)["subscriber_id"].(string)
	require.NotEmpty(t, subscriberID)

	stream, err := tk.streams.Get(sessionID)
	require.NoError(t, err)
	stream.Publish(events.New(events.TypeMessage, sessionID).With("n", 1))
	stream.Publish(events.New(events.TypeMessage, sessionID).With("n", 2))

	t.Run("poll drains queued events", func(t *testing.T) {
		result, _, err := tk.handlePoll(ctx, nil, pollInput{SubscriberID: subscriberID})
		require.NoError(t, err)
		body := resultJSON(t, result)
		assert.EqualValues(t, 2, body["count"])
	})

	t.Run("second poll finds the queue empty", func(t *testing.T) {
		result, _, err := tk.handlePoll(ctx, nil, pollInput{SubscriberID: subscriberID})
		require.NoError(t, err)
		body := resultJSON(t, result)
		assert.EqualValues(t, 0, body["count"])
	})

	t.Run("unknown subscriber id errors", func(t *testing.T) {
		result, _, err := tk.handlePoll(ctx, nil, pollInput{SubscriberID: "missing"})
		require.NoError(t, err)
		assert.True(t, result.IsError)
	})

	t.Run("unsubscribe removes the subscription", func(t *testing.T) {
		result, _, err := tk.handleUnsubscribe(ctx, nil, unsubscribeInput{SubscriberID: subscriberID})
		require.NoError(t, err)
		body := resultJSON(t, result)
		assert.Equal(t, true, body["unsubscribed"])

		polled, _, err := tk.handlePoll(ctx, nil, pollInput{SubscriberID: subscriberID})
		require.NoError(t, err)
		assert.True(t, polled.IsError)
	})
}

func TestHandleDisconnect(t *testing.T) {
	tk, ctx, sessionID := newTestToolkit(t)

	result, _, err := tk.handleDisconnect(ctx, nil, emptyInput{})
	require.NoError(t, err)
	body := resultJSON(t, result)
	assert.Equal(t, true, body["disconnected"])

	if _, err := tk.registry.Get(sessionID); !errs.IsKind(err, errs.KindSessionNotFound) {
		t.Errorf("session survived disconnect: %v", err)
	}
	if _, err := tk.streams.Get(sessionID); !errs.IsKind(err, errs.KindStreamNotFound) {
		t.Errorf("stream survived disconnect: %v", err)
	}
}

func TestResultHelpers(t *testing.T) {
	t.Run("jsonResult", func(t *testing.T) {
		result, _, err := jsonResult(map[string]any{"k": "v"})
		require.NoError(t, err)
		body := resultJSON(t, result)
		assert.Equal(t, "v", body["k"])
	})

	t.Run("errorResult", func(t *testing.T) {
		result := errorResult("broken")
		assert.True(t, result.IsError)
		text, _ := result.Content[0].(*mcp.TextContent)
		assert.Equal(t, "broken", text.Text)
	})

	t.Run("toolError includes details", func(t *testing.T) {
		err := errs.New(errs.KindChannel, "fetching channel").WithDetail("channel_id", "c1")
		result, _, callErr := toolError(err)
		require.NoError(t, callErr)
		assert.True(t, result.IsError)
		text, _ := result.Content[0].(*mcp.TextContent)
		assert.Contains(t, text.Text, "channel: fetching channel")
		assert.Contains(t, text.Text, "channel_id")
	})
}

func TestParseInt(t *testing.T) {
	if n, ok := parseInt("8192"); !ok || n != 8192 {
		t.Errorf("parseInt(8192) = (%d, %v)", n, ok)
	}
	if _, ok := parseInt("not-a-number"); ok {
		t.Error("parseInt accepted a non-number")
	}
}
