// Package discord owns the lifecycle of one Discord gateway connection per
// session: startup with a bounded ready wait, presence mutation, graceful
// shutdown, and translation of gateway events into structured event records.
package discord

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/ExilProductions/discord-mcp/pkg/events"
)

// DefaultReadyTimeout bounds how long Start waits for the gateway READY
// acknowledgment before proceeding in a not-ready state.
const DefaultReadyTimeout = 30 * time.Second

// EventCallback receives structured event records observed on the connection.
type EventCallback func(events.Event)

// Client owns exactly one Discord bot connection.
type Client struct {
	token     string
	sessionID string
	callback  EventCallback

	shardCount   int
	readyTimeout time.Duration
	openGateway  func(*discordgo.Session) error

	dg      *discordgo.Session
	readyCh chan struct{}

	mu       sync.Mutex
	ready    bool
	tornDown bool
	activity string
	status   string
	roles    map[string]*discordgo.Role
}

// Option configures a Client.
type Option func(*Client)

// WithShardCount sets the gateway shard count.
func WithShardCount(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.shardCount = n
		}
	}
}

// WithReadyTimeout overrides the ready wait timeout.
func WithReadyTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.readyTimeout = d
		}
	}
}

// WithGatewayOpener replaces the function that opens the gateway connection.
// Used by tests to exercise the lifecycle without the network.
func WithGatewayOpener(open func(*discordgo.Session) error) Option {
	return func(c *Client) {
		c.openGateway = open
	}
}

// NewClient creates an unstarted client for the given bot token. The callback
// may be nil, in which case observed events are discarded.
func NewClient(token, sessionID string, callback EventCallback, opts ...Option) *Client {
	c := &Client{
		token:        token,
		sessionID:    sessionID,
		callback:     callback,
		shardCount:   1,
		readyTimeout: DefaultReadyTimeout,
		openGateway:  func(s *discordgo.Session) error { return s.Open() },
		readyCh:      make(chan struct{}),
		roles:        make(map[string]*discordgo.Role),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Start constructs the underlying gateway client, opens the connection on a
// background goroutine, and blocks until the READY signal arrives or the
// ready timeout elapses. A timeout is not an error: the caller must check
// Ready() afterward. Context cancellation aborts the wait.
func (c *Client) Start(ctx context.Context) error {
	dg, err := discordgo.New("Bot " + c.token)
	if err != nil {
		return fmt.Errorf("creating discord client: %w", err)
	}

	dg.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMembers |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsMessageContent |
		discordgo.IntentsGuildMessageReactions |
		discordgo.IntentsGuildVoiceStates
	dg.ShardCount = c.shardCount
	if c.shardCount > 1 {
		dg.ShardID = 0
	}

	c.registerHandlers(dg)
	c.dg = dg

	go func() {
		if err := c.openGateway(dg); err != nil {
			slog.Error("discord: gateway open failed",
				"session_id", c.sessionID, "error", err)
		}
	}()

	select {
	case <-c.readyCh:
		slog.Info("discord: connection ready", "session_id", c.sessionID)
	case <-time.After(c.readyTimeout):
		slog.Warn("discord: ready wait timed out",
			"session_id", c.sessionID, "timeout", c.readyTimeout)
	case <-ctx.Done():
		return ctx.Err()
	}
	return nil
}

// Stop tears the connection down. When the connection was ready it performs a
// graceful gateway close; either way the handle never reports ready again.
func (c *Client) Stop() {
	c.mu.Lock()
	wasReady := c.ready
	c.ready = false
	c.tornDown = true
	dg := c.dg
	c.mu.Unlock()

	if dg == nil {
		return
	}
	if err := dg.Close(); err != nil {
		slog.Warn("discord: close failed", "session_id", c.sessionID, "error", err)
	}
	slog.Info("discord: connection stopped",
		"session_id", c.sessionID, "was_ready", wasReady)
}

// Ready reports whether the gateway READY signal has been observed and the
// handle has not been torn down.
func (c *Client) Ready() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ready
}

// Session exposes the underlying gateway session for REST calls. Nil until
// Start has run.
func (c *Client) Session() *discordgo.Session {
	return c.dg
}

// User returns the connected bot user once known, else nil.
func (c *Client) User() *discordgo.User {
	if c.dg == nil || c.dg.State == nil {
		return nil
	}
	return c.dg.State.User
}

// GuildCount returns the number of guilds visible on the connection.
func (c *Client) GuildCount() int {
	if c.dg == nil || c.dg.State == nil {
		return 0
	}
	return len(c.dg.State.Guilds)
}

// markReady flips the readiness flag exactly once per handle. Torn-down
// handles never become ready again.
func (c *Client) markReady() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.tornDown || c.ready {
		return
	}
	c.ready = true
	close(c.readyCh)
}

// emit delivers an event record to the registered callback.
func (c *Client) emit(event events.Event) {
	if c.callback != nil {
		c.callback(event)
	}
}
