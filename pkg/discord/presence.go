package discord

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
)

// Activity kinds accepted by SetPresence. Unknown kinds are treated as
// absent activity.
const (
	ActivityPlaying   = "playing"
	ActivityListening = "listening"
	ActivityWatching  = "watching"
	ActivityStreaming = "streaming"
	ActivityCompeting = "competing"
)

// Online states accepted by SetPresence. Unrecognized values default to
// online.
const (
	StatusOnline    = "online"
	StatusIdle      = "idle"
	StatusDND       = "dnd"
	StatusInvisible = "invisible"
)

// streamingURL is required by the gateway for streaming activities.
const streamingURL = "https://discord.com"

// SetPresence updates the bot's activity and online state. It is a no-op
// when the connection is not ready.
func (c *Client) SetPresence(activity, activityKind, status string) error {
	if !c.Ready() {
		return nil
	}

	data := discordgo.UpdateStatusData{Status: normalizeStatus(status)}
	if act := buildActivity(activity, activityKind); act != nil {
		data.Activities = []*discordgo.Activity{act}
	}

	if err := c.dg.UpdateStatusComplex(data); err != nil {
		return fmt.Errorf("updating presence: %w", err)
	}

	c.mu.Lock()
	c.activity = activity
	c.status = data.Status
	c.mu.Unlock()
	return nil
}

// ClearPresence removes the bot's activity and resets it to online. No-op
// when not ready.
func (c *Client) ClearPresence() error {
	if !c.Ready() {
		return nil
	}

	if err := c.dg.UpdateStatusComplex(discordgo.UpdateStatusData{Status: StatusOnline}); err != nil {
		return fmt.Errorf("clearing presence: %w", err)
	}

	c.mu.Lock()
	c.activity = ""
	c.status = StatusOnline
	c.mu.Unlock()
	return nil
}

// Presence returns the last presence this handle set.
func (c *Client) Presence() (activity, status string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.activity, c.status
}

func buildActivity(name, kind string) *discordgo.Activity {
	if name == "" {
		return nil
	}
	switch kind {
	case ActivityPlaying:
		return &discordgo.Activity{Name: name, Type: discordgo.ActivityTypeGame}
	case ActivityListening:
		return &discordgo.Activity{Name: name, Type: discordgo.ActivityTypeListening}
	case ActivityWatching:
		return &discordgo.Activity{Name: name, Type: discordgo.ActivityTypeWatching}
	case ActivityStreaming:
		return &discordgo.Activity{Name: name, Type: discordgo.ActivityTypeStreaming, URL: streamingURL}
	case ActivityCompeting:
		return &discordgo.Activity{Name: name, Type: discordgo.ActivityTypeCompeting}
	default:
		return nil
	}
}

func normalizeStatus(status string) string {
	switch status {
	case StatusOnline, StatusIdle, StatusDND, StatusInvisible:
		return status
	default:
		return StatusOnline
	}
}
