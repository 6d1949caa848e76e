package discord

import (
	"context"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/ExilProductions/discord-mcp/pkg/errs"
)

type kickInput struct {
	GuildID string `json:"guild_id"`
	UserID  string `json:"user_id"`
	Reason  string `json:"reason,omitempty"`
}

type banInput struct {
	GuildID    string `json:"guild_id"`
	UserID     string `json:"user_id"`
	Reason     string `json:"reason,omitempty"`
	DeleteDays int    `json:"delete_days,omitempty" jsonschema:"delete the user's messages from the last 0 to 7 days"`
}

type timeoutInput struct {
	GuildID         string `json:"guild_id"`
	UserID          string `json:"user_id"`
	DurationMinutes int    `json:"duration_minutes" jsonschema:"timeout length in minutes; 0 clears an existing timeout"`
}

type rolePolicyInput struct {
	GuildID         string   `json:"guild_id"`
	UserID          string   `json:"user_id"`
	RequiredRoleIDs []string `json:"required_role_ids" jsonschema:"roles the member must hold"`
	Action          string   `json:"action" jsonschema:"kick or ban when a required role is missing"`
	Reason          string   `json:"reason,omitempty"`
}

func (t *Toolkit) registerModerationTools(s *mcp.Server) {
	mcp.AddTool(s, &mcp.Tool{
		Name:        "kick_member",
		Description: "Kick a member from a guild.",
	}, t.handleKick)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "ban_member",
		Description: "Ban a user from a guild, optionally deleting their recent messages.",
	}, t.handleBan)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "unban_member",
		Description: "Remove a user's ban.",
	}, t.handleUnban)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "list_bans",
		Description: "List the bans in a guild.",
	}, t.handleListBans)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "timeout_member",
		Description: "Time out a member for a number of minutes, or clear an existing timeout.",
	}, t.handleTimeout)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "get_member_timeout_status",
		Description: "Report whether a member is currently timed out and until when.",
	}, t.handleTimeoutStatus)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "enforce_role_policy",
		Description: "Kick or ban a member who is missing any of the required roles; a compliant member is left untouched.",
	}, t.handleEnforceRolePolicy)
}

func (t *Toolkit) handleKick(ctx context.Context, _ *mcp.CallToolRequest, in kickInput) (*mcp.CallToolResult, any, error) {
	dg, _, err := t.discord(ctx)
	if err != nil {
		return toolError(err)
	}

	done := t.announce(ctx, "Kicking member")
	defer done()

	if err := dg.GuildMemberDeleteWithReason(in.GuildID, in.UserID, in.Reason); err != nil {
		return toolError(errs.FromREST(errs.KindModeration, "kicking member", err))
	}
	return jsonResult(map[string]any{"kicked": true, "user_id": in.UserID})
}

func (t *Toolkit) handleBan(ctx context.Context, _ *mcp.CallToolRequest, in banInput) (*mcp.CallToolResult, any, error) {
	dg, _, err := t.discord(ctx)
	if err != nil {
		return toolError(err)
	}
	if in.DeleteDays < 0 || in.DeleteDays > 7 {
		return errorResult("delete_days must be between 0 and 7"), nil, nil
	}

	done := t.announce(ctx, "Banning user")
	defer done()

	if err := dg.GuildBanCreateWithReason(in.GuildID, in.UserID, in.Reason, in.DeleteDays); err != nil {
		return toolError(errs.FromREST(errs.KindModeration, "banning user", err))
	}
	return jsonResult(map[string]any{"banned": true, "user_id": in.UserID})
}

func (t *Toolkit) handleUnban(ctx context.Context, _ *mcp.CallToolRequest, in memberRefInput) (*mcp.CallToolResult, any, error) {
	dg, _, err := t.discord(ctx)
	if err != nil {
		return toolError(err)
	}

	done := t.announce(ctx, "Removing ban")
	defer done()

	if err := dg.GuildBanDelete(in.GuildID, in.UserID); err != nil {
		return toolError(errs.FromREST(errs.KindModeration, "removing ban", err))
	}
	return jsonResult(map[string]any{"unbanned": true, "user_id": in.UserID})
}

func (t *Toolkit) handleListBans(ctx context.Context, _ *mcp.CallToolRequest, in guildIDInput) (*mcp.CallToolResult, any, error) {
	dg, _, err := t.discord(ctx)
	if err != nil {
		return toolError(err)
	}

	bans, err := dg.GuildBans(in.GuildID, 0, "", "")
	if err != nil {
		return toolError(errs.FromREST(errs.KindModeration, "listing bans", err))
	}

	out := make([]map[string]any, 0, len(bans))
	for _, b := range bans {
		entry := map[string]any{"reason": b.Reason}
		if b.User != nil {
			entry["user_id"] = b.User.ID
			entry["username"] = b.User.Username
		}
		out = append(out, entry)
	}
	return jsonResult(map[string]any{"guild_id": in.GuildID, "count": len(out), "bans": out})
}

func (t *Toolkit) handleTimeout(ctx context.Context, _ *mcp.CallToolRequest, in timeoutInput) (*mcp.CallToolResult, any, error) {
	dg, _, err := t.discord(ctx)
	if err != nil {
		return toolError(err)
	}

	var until *time.Time
	if in.DurationMinutes > 0 {
		ts := time.Now().UTC().Add(time.Duration(in.DurationMinutes) * time.Minute)
		until = &ts
	}

	done := t.announce(ctx, "Updating member timeout")
	defer done()

	if err := dg.GuildMemberTimeout(in.GuildID, in.UserID, until); err != nil {
		return toolError(errs.FromREST(errs.KindModeration, "timing out member", err))
	}

	result := map[string]any{"user_id": in.UserID}
	if until != nil {
		result["timeout_until"] = until
	} else {
		result["timeout_cleared"] = true
	}
	return jsonResult(result)
}

func (t *Toolkit) handleTimeoutStatus(ctx context.Context, _ *mcp.CallToolRequest, in memberRefInput) (*mcp.CallToolResult, any, error) {
	dg, _, err := t.discord(ctx)
	if err != nil {
		return toolError(err)
	}

	member, err := dg.GuildMember(in.GuildID, in.UserID)
	if err != nil {
		return toolError(errs.FromREST(errs.KindModeration, "fetching member", err))
	}

	result := map[string]any{
		"user_id":      in.UserID,
		"guild_id":     in.GuildID,
		"is_timed_out": false,
	}
	if until := member.CommunicationDisabledUntil; until != nil && until.After(time.Now()) {
		result["is_timed_out"] = true
		result["timeout_until"] = until
	}
	return jsonResult(result)
}

func (t *Toolkit) handleEnforceRolePolicy(ctx context.Context, _ *mcp.CallToolRequest, in rolePolicyInput) (*mcp.CallToolResult, any, error) {
	dg, _, err := t.discord(ctx)
	if err != nil {
		return toolError(err)
	}
	if in.Action != "kick" && in.Action != "ban" {
		return errorResult("action must be kick or ban"), nil, nil
	}
	if len(in.RequiredRoleIDs) == 0 {
		return errorResult("required_role_ids must not be empty"), nil, nil
	}

	member, err := dg.GuildMember(in.GuildID, in.UserID)
	if err != nil {
		return toolError(errs.FromREST(errs.KindModeration, "fetching member", err))
	}

	held := make(map[string]bool, len(member.Roles))
	for _, id := range member.Roles {
		held[id] = true
	}
	missing := make([]string, 0)
	for _, id := range in.RequiredRoleIDs {
		if !held[id] {
			missing = append(missing, id)
		}
	}
	if len(missing) == 0 {
		return jsonResult(map[string]any{
			"action":   "policy_check_passed",
			"user_id":  in.UserID,
			"guild_id": in.GuildID,
		})
	}

	reason := in.Reason
	if reason == "" {
		reason = "Role policy enforcement: missing required roles"
	}

	done := t.announce(ctx, "Enforcing role policy")
	defer done()

	if in.Action == "kick" {
		if err := dg.GuildMemberDeleteWithReason(in.GuildID, in.UserID, reason); err != nil {
			return toolError(errs.FromREST(errs.KindModeration, "kicking member", err))
		}
	} else {
		if err := dg.GuildBanCreateWithReason(in.GuildID, in.UserID, reason, 0); err != nil {
			return toolError(errs.FromREST(errs.KindModeration, "banning user", err))
		}
	}

	return jsonResult(map[string]any{
		"action":        in.Action,
		"user_id":       in.UserID,
		"guild_id":      in.GuildID,
		"reason":        reason,
		"missing_roles": missing,
	})
}
