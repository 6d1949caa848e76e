package discord

import (
	"context"

	"github.com/bwmarrin/discordgo"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/ExilProductions/discord-mcp/pkg/errs"
)

type createInviteInput struct {
	ChannelID string `json:"channel_id"`
	MaxAge    int    `json:"max_age,omitempty" jsonschema:"invite lifetime in seconds; 0 never expires"`
	MaxUses   int    `json:"max_uses,omitempty" jsonschema:"0 means unlimited uses"`
	Temporary bool   `json:"temporary,omitempty" jsonschema:"grant temporary membership"`
	Unique    bool   `json:"unique,omitempty" jsonschema:"always create a new invite instead of reusing one"`
}

type inviteCodeInput struct {
	Code string `json:"code"`
}

func (t *Toolkit) registerInviteTools(s *mcp.Server) {
	mcp.AddTool(s, &mcp.Tool{
		Name:        "create_invite",
		Description: "Create an invite for a channel.",
	}, t.handleCreateInvite)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "list_invites",
		Description: "List the active invites in a guild.",
	}, t.handleListInvites)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "delete_invite",
		Description: "Revoke an invite by code.",
	}, t.handleDeleteInvite)
}

func (t *Toolkit) handleCreateInvite(ctx context.Context, _ *mcp.CallToolRequest, in createInviteInput) (*mcp.CallToolResult, any, error) {
	dg, _, err := t.discord(ctx)
	if err != nil {
		return toolError(err)
	}

	done := t.announce(ctx, "Creating invite")
	defer done()

	invite, err := dg.ChannelInviteCreate(in.ChannelID, discordgo.Invite{
		MaxAge:    in.MaxAge,
		MaxUses:   in.MaxUses,
		Temporary: in.Temporary,
		Unique:    in.Unique,
	})
	if err != nil {
		return toolError(errs.FromREST(errs.KindInvite, "creating invite", err))
	}
	return jsonResult(inviteInfo(invite))
}

func (t *Toolkit) handleListInvites(ctx context.Context, _ *mcp.CallToolRequest, in guildIDInput) (*mcp.CallToolResult, any, error) {
	dg, _, err := t.discord(ctx)
	if err != nil {
		return toolError(err)
	}

	invites, err := dg.GuildInvites(in.GuildID)
	if err != nil {
		return toolError(errs.FromREST(errs.KindInvite, "listing invites", err))
	}

	out := make([]map[string]any, 0, len(invites))
	for _, inv := range invites {
		out = append(out, inviteInfo(inv))
	}
	return jsonResult(map[string]any{"guild_id": in.GuildID, "count": len(out), "invites": out})
}

func (t *Toolkit) handleDeleteInvite(ctx context.Context, _ *mcp.CallToolRequest, in inviteCodeInput) (*mcp.CallToolResult, any, error) {
	dg, _, err := t.discord(ctx)
	if err != nil {
		return toolError(err)
	}

	done := t.announce(ctx, "Deleting invite")
	defer done()

	if _, err := dg.InviteDelete(in.Code); err != nil {
		return toolError(errs.FromREST(errs.KindInvite, "deleting invite", err))
	}
	return jsonResult(map[string]any{"deleted": true, "code": in.Code})
}

func inviteInfo(inv *discordgo.Invite) map[string]any {
	info := map[string]any{
		"code":      inv.Code,
		"max_age":   inv.MaxAge,
		"max_uses":  inv.MaxUses,
		"uses":      inv.Uses,
		"temporary": inv.Temporary,
	}
	if inv.Channel != nil {
		info["channel_id"] = inv.Channel.ID
	}
	if inv.Inviter != nil {
		info["inviter"] = inv.Inviter.Username
	}
	return info
}
