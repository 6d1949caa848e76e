package discord

import (
	"context"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/ExilProductions/discord-mcp/pkg/errs"
)

type createScheduledEventInput struct {
	GuildID     string `json:"guild_id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	StartTime   string `json:"start_time" jsonschema:"RFC 3339 timestamp"`
	EndTime     string `json:"end_time,omitempty" jsonschema:"RFC 3339 timestamp; required for external events"`
	ChannelID   string `json:"channel_id,omitempty" jsonschema:"voice or stage channel id; omit for an external event"`
	Location    string `json:"location,omitempty" jsonschema:"location for external events"`
}

type editScheduledEventInput struct {
	GuildID     string `json:"guild_id"`
	EventID     string `json:"event_id"`
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
	StartTime   string `json:"start_time,omitempty" jsonschema:"RFC 3339 timestamp"`
	EndTime     string `json:"end_time,omitempty" jsonschema:"RFC 3339 timestamp"`
	ChannelID   string `json:"channel_id,omitempty"`
	Location    string `json:"location,omitempty" jsonschema:"setting a location converts the event to external"`
}

type scheduledEventRefInput struct {
	GuildID string `json:"guild_id"`
	EventID string `json:"event_id"`
}

type scheduledEventUsersInput struct {
	GuildID string `json:"guild_id"`
	EventID string `json:"event_id"`
	Limit   int    `json:"limit,omitempty" jsonschema:"maximum subscribers to return, defaults to 100"`
}

func (t *Toolkit) registerScheduledEventTools(s *mcp.Server) {
	mcp.AddTool(s, &mcp.Tool{
		Name:        "create_scheduled_event",
		Description: "Create a guild scheduled event in a voice/stage channel or at an external location.",
	}, t.handleCreateScheduledEvent)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "edit_scheduled_event",
		Description: "Edit a guild scheduled event's name, description, times, channel or location.",
	}, t.handleEditScheduledEvent)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "delete_scheduled_event",
		Description: "Delete a guild scheduled event.",
	}, t.handleDeleteScheduledEvent)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "get_scheduled_event_users",
		Description: "List the users subscribed to a guild scheduled event.",
	}, t.handleScheduledEventUsers)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "list_scheduled_events",
		Description: "List a guild's scheduled events.",
	}, t.handleListScheduledEvents)
}

func (t *Toolkit) handleCreateScheduledEvent(ctx context.Context, _ *mcp.CallToolRequest, in createScheduledEventInput) (*mcp.CallToolResult, any, error) {
	dg, _, err := t.discord(ctx)
	if err != nil {
		return toolError(err)
	}

	start, err := time.Parse(time.RFC3339, in.StartTime)
	if err != nil {
		return errorResult("start_time must be RFC 3339: " + err.Error()), nil, nil
	}

	params := &discordgo.GuildScheduledEventParams{
		Name:               in.Name,
		Description:        in.Description,
		ScheduledStartTime: &start,
		PrivacyLevel:       discordgo.GuildScheduledEventPrivacyLevelGuildOnly,
	}
	if in.EndTime != "" {
		end, err := time.Parse(time.RFC3339, in.EndTime)
		if err != nil {
			return errorResult("end_time must be RFC 3339: " + err.Error()), nil, nil
		}
		params.ScheduledEndTime = &end
	}
	if in.ChannelID != "" {
		params.ChannelID = in.ChannelID
		params.EntityType = discordgo.GuildScheduledEventEntityTypeVoice
	} else {
		params.EntityType = discordgo.GuildScheduledEventEntityTypeExternal
		params.EntityMetadata = &discordgo.GuildScheduledEventEntityMetadata{Location: in.Location}
	}

	done := t.announce(ctx, "Creating scheduled event")
	defer done()

	event, err := dg.GuildScheduledEventCreate(in.GuildID, params)
	if err != nil {
		return toolError(errs.FromREST(errs.KindEvent, "creating scheduled event", err))
	}
	return jsonResult(scheduledEventInfo(event))
}

func (t *Toolkit) handleEditScheduledEvent(ctx context.Context, _ *mcp.CallToolRequest, in editScheduledEventInput) (*mcp.CallToolResult, any, error) {
	dg, _, err := t.discord(ctx)
	if err != nil {
		return toolError(err)
	}

	params := &discordgo.GuildScheduledEventParams{
		Name:        in.Name,
		Description: in.Description,
	}
	if in.StartTime != "" {
		start, err := time.Parse(time.RFC3339, in.StartTime)
		if err != nil {
			return errorResult("start_time must be RFC 3339: " + err.Error()), nil, nil
		}
		params.ScheduledStartTime = &start
	}
	if in.EndTime != "" {
		end, err := time.Parse(time.RFC3339, in.EndTime)
		if err != nil {
			return errorResult("end_time must be RFC 3339: " + err.Error()), nil, nil
		}
		params.ScheduledEndTime = &end
	}
	if in.ChannelID != "" {
		params.ChannelID = in.ChannelID
		params.EntityType = discordgo.GuildScheduledEventEntityTypeVoice
	}
	if in.Location != "" {
		params.EntityType = discordgo.GuildScheduledEventEntityTypeExternal
		params.EntityMetadata = &discordgo.GuildScheduledEventEntityMetadata{Location: in.Location}
	}

	done := t.announce(ctx, "Editing scheduled event")
	defer done()

	event, err := dg.GuildScheduledEventEdit(in.GuildID, in.EventID, params)
	if err != nil {
		return toolError(errs.FromREST(errs.KindEvent, "editing scheduled event", err))
	}
	return jsonResult(scheduledEventInfo(event))
}

func (t *Toolkit) handleScheduledEventUsers(ctx context.Context, _ *mcp.CallToolRequest, in scheduledEventUsersInput) (*mcp.CallToolResult, any, error) {
	dg, _, err := t.discord(ctx)
	if err != nil {
		return toolError(err)
	}

	limit := in.Limit
	if limit <= 0 || limit > 100 {
		limit = 100
	}

	users, err := dg.GuildScheduledEventUsers(in.GuildID, in.EventID, limit, true, "", "")
	if err != nil {
		return toolError(errs.FromREST(errs.KindEvent, "listing scheduled event users", err))
	}

	out := make([]map[string]any, 0, len(users))
	for _, u := range users {
		entry := map[string]any{"event_id": u.GuildScheduledEventID}
		if u.User != nil {
			entry["user_id"] = u.User.ID
			entry["username"] = u.User.Username
		}
		if u.Member != nil && u.Member.Nick != "" {
			entry["nickname"] = u.Member.Nick
		}
		out = append(out, entry)
	}
	return jsonResult(map[string]any{"event_id": in.EventID, "count": len(out), "users": out})
}

func (t *Toolkit) handleDeleteScheduledEvent(ctx context.Context, _ *mcp.CallToolRequest, in scheduledEventRefInput) (*mcp.CallToolResult, any, error) {
	dg, _, err := t.discord(ctx)
	if err != nil {
		return toolError(err)
	}

	done := t.announce(ctx, "Deleting scheduled event")
	defer done()

	if err := dg.GuildScheduledEventDelete(in.GuildID, in.EventID); err != nil {
		return toolError(errs.FromREST(errs.KindEvent, "deleting scheduled event", err))
	}
	return jsonResult(map[string]any{"deleted": true, "event_id": in.EventID})
}

func (t *Toolkit) handleListScheduledEvents(ctx context.Context, _ *mcp.CallToolRequest, in guildIDInput) (*mcp.CallToolResult, any, error) {
	dg, _, err := t.discord(ctx)
	if err != nil {
		return toolError(err)
	}

	events, err := dg.GuildScheduledEvents(in.GuildID, true)
	if err != nil {
		return toolError(errs.FromREST(errs.KindEvent, "listing scheduled events", err))
	}

	out := make([]map[string]any, 0, len(events))
	for _, ev := range events {
		out = append(out, scheduledEventInfo(ev))
	}
	return jsonResult(map[string]any{"guild_id": in.GuildID, "count": len(out), "events": out})
}

func scheduledEventInfo(ev *discordgo.GuildScheduledEvent) map[string]any {
	info := map[string]any{
		"id":          ev.ID,
		"name":        ev.Name,
		"description": ev.Description,
		"start_time":  ev.ScheduledStartTime,
		"status":      int(ev.Status),
		"channel_id":  ev.ChannelID,
		"user_count":  ev.UserCount,
	}
	if ev.ScheduledEndTime != nil {
		info["end_time"] = ev.ScheduledEndTime
	}
	if ev.EntityMetadata.Location != "" {
		info["location"] = ev.EntityMetadata.Location
	}
	return info
}
