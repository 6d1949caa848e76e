package discord

import (
	"context"

	"github.com/bwmarrin/discordgo"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	dc "github.com/ExilProductions/discord-mcp/pkg/discord"
	"github.com/ExilProductions/discord-mcp/pkg/errs"
)

type editGuildInput struct {
	GuildID     string `json:"guild_id"`
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
}

type setPresenceInput struct {
	Activity string `json:"activity" jsonschema:"activity text shown under the bot's name"`
	Kind     string `json:"kind,omitempty" jsonschema:"playing, listening, watching, streaming or competing; defaults to playing"`
	Status   string `json:"status,omitempty" jsonschema:"online, idle, dnd or invisible; defaults to online"`
}

func (t *Toolkit) registerGuildTools(s *mcp.Server) {
	mcp.AddTool(s, &mcp.Tool{
		Name:        "list_guilds",
		Description: "List the guilds the bot is a member of.",
	}, t.handleListGuilds)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "get_guild",
		Description: "Get a guild's details.",
	}, t.handleGetGuild)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "edit_guild",
		Description: "Edit a guild's name or description.",
	}, t.handleEditGuild)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "set_presence",
		Description: "Set the bot's presence: activity text, activity kind and status.",
	}, t.handleSetPresence)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "clear_presence",
		Description: "Clear the bot's presence.",
	}, t.handleClearPresence)
}

func (t *Toolkit) handleListGuilds(ctx context.Context, _ *mcp.CallToolRequest, _ emptyInput) (*mcp.CallToolResult, any, error) {
	dg, _, err := t.discord(ctx)
	if err != nil {
		return toolError(err)
	}

	guilds, err := dg.UserGuilds(200, "", "", false)
	if err != nil {
		return toolError(errs.FromREST(errs.KindDiscordAPI, "listing guilds", err))
	}

	out := make([]map[string]any, 0, len(guilds))
	for _, g := range guilds {
		out = append(out, map[string]any{
			"id":    g.ID,
			"name":  g.Name,
			"owner": g.Owner,
		})
	}
	return jsonResult(map[string]any{"count": len(out), "guilds": out})
}

func (t *Toolkit) handleGetGuild(ctx context.Context, _ *mcp.CallToolRequest, in guildIDInput) (*mcp.CallToolResult, any, error) {
	dg, _, err := t.discord(ctx)
	if err != nil {
		return toolError(err)
	}

	guild, err := dg.Guild(in.GuildID)
	if err != nil {
		return toolError(errs.FromREST(errs.KindDiscordAPI, "fetching guild", err))
	}
	return jsonResult(guildInfo(guild))
}

func (t *Toolkit) handleEditGuild(ctx context.Context, _ *mcp.CallToolRequest, in editGuildInput) (*mcp.CallToolResult, any, error) {
	dg, _, err := t.discord(ctx)
	if err != nil {
		return toolError(err)
	}

	params := discordgo.GuildParams{Name: in.Name}
	if in.Description != "" {
		params.Description = in.Description
	}

	done := t.announce(ctx, "Editing guild")
	defer done()

	guild, err := dg.GuildEdit(in.GuildID, &params)
	if err != nil {
		return toolError(errs.FromREST(errs.KindDiscordAPI, "editing guild", err))
	}
	return jsonResult(guildInfo(guild))
}

func (t *Toolkit) handleSetPresence(ctx context.Context, _ *mcp.CallToolRequest, in setPresenceInput) (*mcp.CallToolResult, any, error) {
	sess, err := t.session(ctx)
	if err != nil {
		return toolError(err)
	}

	kind := in.Kind
	if kind == "" {
		kind = dc.ActivityPlaying
	}
	if err := sess.Client.SetPresence(in.Activity, kind, in.Status); err != nil {
		return toolError(errs.Wrap(errs.KindDiscordAPI, "setting presence", err))
	}

	activity, status := sess.Client.Presence()
	return jsonResult(map[string]any{"activity": activity, "status": status})
}

func (t *Toolkit) handleClearPresence(ctx context.Context, _ *mcp.CallToolRequest, _ emptyInput) (*mcp.CallToolResult, any, error) {
	sess, err := t.session(ctx)
	if err != nil {
		return toolError(err)
	}

	if err := sess.Client.ClearPresence(); err != nil {
		return toolError(errs.Wrap(errs.KindDiscordAPI, "clearing presence", err))
	}
	return jsonResult(map[string]any{"cleared": true})
}

func guildInfo(g *discordgo.Guild) map[string]any {
	return map[string]any{
		"id":           g.ID,
		"name":         g.Name,
		"description":  g.Description,
		"owner_id":     g.OwnerID,
		"member_count": g.MemberCount,
		"icon":         g.Icon,
	}
}
