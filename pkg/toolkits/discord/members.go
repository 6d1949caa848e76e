package discord

import (
	"context"

	"github.com/bwmarrin/discordgo"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/ExilProductions/discord-mcp/pkg/errs"
)

type memberRefInput struct {
	GuildID string `json:"guild_id"`
	UserID  string `json:"user_id"`
}

type listMembersInput struct {
	GuildID string `json:"guild_id"`
	Limit   int    `json:"limit,omitempty" jsonschema:"1 to 1000, defaults to 100"`
	After   string `json:"after,omitempty" jsonschema:"paginate after this user id"`
}

type editMemberInput struct {
	GuildID  string    `json:"guild_id"`
	UserID   string    `json:"user_id"`
	Nickname *string   `json:"nickname,omitempty" jsonschema:"new nickname; empty string clears it"`
	Roles    *[]string `json:"roles,omitempty" jsonschema:"replacement role id list"`
	Mute     *bool     `json:"mute,omitempty"`
	Deaf     *bool     `json:"deaf,omitempty"`
}

func (t *Toolkit) registerMemberTools(s *mcp.Server) {
	mcp.AddTool(s, &mcp.Tool{
		Name:        "get_member",
		Description: "Get a guild member by user id.",
	}, t.handleGetMember)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "list_members",
		Description: "List members of a guild with pagination.",
	}, t.handleListMembers)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "edit_member",
		Description: "Edit a member's nickname, roles or voice mute/deaf state.",
	}, t.handleEditMember)
}

func (t *Toolkit) handleGetMember(ctx context.Context, _ *mcp.CallToolRequest, in memberRefInput) (*mcp.CallToolResult, any, error) {
	dg, _, err := t.discord(ctx)
	if err != nil {
		return toolError(err)
	}

	member, err := dg.GuildMember(in.GuildID, in.UserID)
	if err != nil {
		return toolError(errs.FromREST(errs.KindMember, "fetching member", err))
	}
	return jsonResult(memberInfo(member))
}

func (t *Toolkit) handleListMembers(ctx context.Context, _ *mcp.CallToolRequest, in listMembersInput) (*mcp.CallToolResult, any, error) {
	dg, _, err := t.discord(ctx)
	if err != nil {
		return toolError(err)
	}

	limit := in.Limit
	if limit <= 0 {
		limit = 100
	}
	if limit > 1000 {
		limit = 1000
	}

	members, err := dg.GuildMembers(in.GuildID, in.After, limit)
	if err != nil {
		return toolError(errs.FromREST(errs.KindMember, "listing members", err))
	}

	out := make([]map[string]any, 0, len(members))
	for _, m := range members {
		out = append(out, memberInfo(m))
	}
	return jsonResult(map[string]any{"guild_id": in.GuildID, "count": len(out), "members": out})
}

func (t *Toolkit) handleEditMember(ctx context.Context, _ *mcp.CallToolRequest, in editMemberInput) (*mcp.CallToolResult, any, error) {
	dg, _, err := t.discord(ctx)
	if err != nil {
		return toolError(err)
	}

	params := &discordgo.GuildMemberParams{
		Roles: in.Roles,
		Mute:  in.Mute,
		Deaf:  in.Deaf,
	}
	if in.Nickname != nil {
		params.Nick = *in.Nickname
	}

	done := t.announce(ctx, "Editing member")
	defer done()

	member, err := dg.GuildMemberEdit(in.GuildID, in.UserID, params)
	if err != nil {
		return toolError(errs.FromREST(errs.KindMember, "editing member", err))
	}
	return jsonResult(memberInfo(member))
}

func memberInfo(m *discordgo.Member) map[string]any {
	info := map[string]any{
		"nickname":  m.Nick,
		"roles":     m.Roles,
		"joined_at": m.JoinedAt,
	}
	if m.User != nil {
		info["id"] = m.User.ID
		info["username"] = m.User.Username
		info["bot"] = m.User.Bot
	}
	if m.CommunicationDisabledUntil != nil {
		info["timeout_until"] = m.CommunicationDisabledUntil
	}
	return info
}
