package discord

import (
	"context"

	"github.com/bwmarrin/discordgo"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/ExilProductions/discord-mcp/pkg/errs"
)

type createChannelInput struct {
	GuildID    string `json:"guild_id"`
	Name       string `json:"name"`
	Type       string `json:"type,omitempty" jsonschema:"channel type: text, voice, category, announcement, forum, stage; defaults to text"`
	CategoryID string `json:"category_id,omitempty" jsonschema:"parent category channel id"`
	Topic      string `json:"topic,omitempty"`
	Position   int    `json:"position,omitempty"`
	NSFW       bool   `json:"nsfw,omitempty"`
}

type editChannelInput struct {
	ChannelID  string `json:"channel_id"`
	Name       string `json:"name,omitempty"`
	Topic      string `json:"topic,omitempty"`
	CategoryID string `json:"category_id,omitempty"`
	Position   *int   `json:"position,omitempty"`
}

type channelIDInput struct {
	ChannelID string `json:"channel_id"`
}

type guildIDInput struct {
	GuildID string `json:"guild_id"`
}

func (t *Toolkit) registerChannelTools(s *mcp.Server) {
	mcp.AddTool(s, &mcp.Tool{
		Name:        "create_channel",
		Description: "Create a channel in a guild. Supports text, voice, category, announcement, forum and stage channels.",
	}, t.handleCreateChannel)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "edit_channel",
		Description: "Edit a channel's name, topic, parent category or position.",
	}, t.handleEditChannel)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "delete_channel",
		Description: "Delete a channel.",
	}, t.handleDeleteChannel)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "get_channel",
		Description: "Get a single channel by id.",
	}, t.handleGetChannel)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "list_channels",
		Description: "List all channels in a guild.",
	}, t.handleListChannels)
}

var channelTypes = map[string]discordgo.ChannelType{
	"text":         discordgo.ChannelTypeGuildText,
	"voice":        discordgo.ChannelTypeGuildVoice,
	"category":     discordgo.ChannelTypeGuildCategory,
	"announcement": discordgo.ChannelTypeGuildNews,
	"forum":        discordgo.ChannelTypeGuildForum,
	"stage":        discordgo.ChannelTypeGuildStageVoice,
}

func (t *Toolkit) handleCreateChannel(ctx context.Context, _ *mcp.CallToolRequest, in createChannelInput) (*mcp.CallToolResult, any, error) {
	dg, _, err := t.discord(ctx)
	if err != nil {
		return toolError(err)
	}

	chType, ok := channelTypes[in.Type]
	if in.Type == "" {
		chType = discordgo.ChannelTypeGuildText
	} else if !ok {
		return errorResult("unknown channel type: " + in.Type), nil, nil
	}

	done := t.announce(ctx, "Creating channel "+in.Name)
	defer done()

	ch, err := dg.GuildChannelCreateComplex(in.GuildID, discordgo.GuildChannelCreateData{
		Name:     in.Name,
		Type:     chType,
		Topic:    in.Topic,
		ParentID: in.CategoryID,
		Position: in.Position,
		NSFW:     in.NSFW,
	})
	if err != nil {
		return toolError(errs.FromREST(errs.KindChannel, "creating channel", err))
	}
	return jsonResult(channelInfo(ch))
}

func (t *Toolkit) handleEditChannel(ctx context.Context, _ *mcp.CallToolRequest, in editChannelInput) (*mcp.CallToolResult, any, error) {
	dg, _, err := t.discord(ctx)
	if err != nil {
		return toolError(err)
	}

	edit := &discordgo.ChannelEdit{
		Name:     in.Name,
		Topic:    in.Topic,
		Position: in.Position,
	}
	if in.CategoryID != "" {
		edit.ParentID = in.CategoryID
	}

	done := t.announce(ctx, "Editing channel")
	defer done()

	ch, err := dg.ChannelEditComplex(in.ChannelID, edit)
	if err != nil {
		return toolError(errs.FromREST(errs.KindChannel, "editing channel", err))
	}
	return jsonResult(channelInfo(ch))
}

func (t *Toolkit) handleDeleteChannel(ctx context.Context, _ *mcp.CallToolRequest, in channelIDInput) (*mcp.CallToolResult, any, error) {
	dg, _, err := t.discord(ctx)
	if err != nil {
		return toolError(err)
	}

	done := t.announce(ctx, "Deleting channel")
	defer done()

	if _, err := dg.ChannelDelete(in.ChannelID); err != nil {
		return toolError(errs.FromREST(errs.KindChannel, "deleting channel", err))
	}
	return jsonResult(map[string]any{"deleted": true, "channel_id": in.ChannelID})
}

func (t *Toolkit) handleGetChannel(ctx context.Context, _ *mcp.CallToolRequest, in channelIDInput) (*mcp.CallToolResult, any, error) {
	dg, _, err := t.discord(ctx)
	if err != nil {
		return toolError(err)
	}

	ch, err := dg.Channel(in.ChannelID)
	if err != nil {
		return toolError(errs.FromREST(errs.KindChannel, "fetching channel", err))
	}
	return jsonResult(channelInfo(ch))
}

func (t *Toolkit) handleListChannels(ctx context.Context, _ *mcp.CallToolRequest, in guildIDInput) (*mcp.CallToolResult, any, error) {
	dg, _, err := t.discord(ctx)
	if err != nil {
		return toolError(err)
	}

	channels, err := dg.GuildChannels(in.GuildID)
	if err != nil {
		return toolError(errs.FromREST(errs.KindChannel, "listing channels", err))
	}

	out := make([]map[string]any, 0, len(channels))
	for _, ch := range channels {
		out = append(out, channelInfo(ch))
	}
	return jsonResult(map[string]any{"guild_id": in.GuildID, "count": len(out), "channels": out})
}

func channelInfo(ch *discordgo.Channel) map[string]any {
	return map[string]any{
		"id":          ch.ID,
		"name":        ch.Name,
		"type":        int(ch.Type),
		"guild_id":    ch.GuildID,
		"topic":       ch.Topic,
		"position":    ch.Position,
		"category_id": ch.ParentID,
		"nsfw":        ch.NSFW,
	}
}
