package discord

import (
	"context"

	"github.com/bwmarrin/discordgo"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/ExilProductions/discord-mcp/pkg/errs"
)

type setOverwriteInput struct {
	ChannelID  string `json:"channel_id"`
	TargetID   string `json:"target_id" jsonschema:"role id or user id the overwrite applies to"`
	TargetType string `json:"target_type" jsonschema:"role or member"`
	Allow      string `json:"allow,omitempty" jsonschema:"allowed permission bitfield as a decimal string"`
	Deny       string `json:"deny,omitempty" jsonschema:"denied permission bitfield as a decimal string"`
}

type deleteOverwriteInput struct {
	ChannelID string `json:"channel_id"`
	TargetID  string `json:"target_id"`
}

func (t *Toolkit) registerPermissionTools(s *mcp.Server) {
	mcp.AddTool(s, &mcp.Tool{
		Name:        "set_channel_permission",
		Description: "Set a permission overwrite on a channel for a role or member.",
	}, t.handleSetOverwrite)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "delete_channel_permission",
		Description: "Remove a permission overwrite from a channel.",
	}, t.handleDeleteOverwrite)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "list_channel_permissions",
		Description: "List the permission overwrites on a channel.",
	}, t.handleListOverwrites)
}

func (t *Toolkit) handleSetOverwrite(ctx context.Context, _ *mcp.CallToolRequest, in setOverwriteInput) (*mcp.CallToolResult, any, error) {
	dg, _, err := t.discord(ctx)
	if err != nil {
		return toolError(err)
	}

	var overwriteType discordgo.PermissionOverwriteType
	switch in.TargetType {
	case "role":
		overwriteType = discordgo.PermissionOverwriteTypeRole
	case "member":
		overwriteType = discordgo.PermissionOverwriteTypeMember
	default:
		return errorResult("target_type must be role or member"), nil, nil
	}

	var allow, deny int64
	if in.Allow != "" {
		n, ok := parseInt(in.Allow)
		if !ok {
			return errorResult("allow must be a decimal bitfield"), nil, nil
		}
		allow = n
	}
	if in.Deny != "" {
		n, ok := parseInt(in.Deny)
		if !ok {
			return errorResult("deny must be a decimal bitfield"), nil, nil
		}
		deny = n
	}

	done := t.announce(ctx, "Setting channel permission overwrite")
	defer done()

	if err := dg.ChannelPermissionSet(in.ChannelID, in.TargetID, overwriteType, allow, deny); err != nil {
		return toolError(errs.FromREST(errs.KindPermission, "setting channel permission", err))
	}
	return jsonResult(map[string]any{
		"channel_id": in.ChannelID,
		"target_id":  in.TargetID,
		"allow":      allow,
		"deny":       deny,
	})
}

func (t *Toolkit) handleDeleteOverwrite(ctx context.Context, _ *mcp.CallToolRequest, in deleteOverwriteInput) (*mcp.CallToolResult, any, error) {
	dg, _, err := t.discord(ctx)
	if err != nil {
		return toolError(err)
	}

	done := t.announce(ctx, "Deleting channel permission overwrite")
	defer done()

	if err := dg.ChannelPermissionDelete(in.ChannelID, in.TargetID); err != nil {
		return toolError(errs.FromREST(errs.KindPermission, "deleting channel permission", err))
	}
	return jsonResult(map[string]any{"deleted": true, "target_id": in.TargetID})
}

func (t *Toolkit) handleListOverwrites(ctx context.Context, _ *mcp.CallToolRequest, in channelIDInput) (*mcp.CallToolResult, any, error) {
	dg, _, err := t.discord(ctx)
	if err != nil {
		return toolError(err)
	}

	ch, err := dg.Channel(in.ChannelID)
	if err != nil {
		return toolError(errs.FromREST(errs.KindPermission, "fetching channel", err))
	}

	out := make([]map[string]any, 0, len(ch.PermissionOverwrites))
	for _, ow := range ch.PermissionOverwrites {
		out = append(out, map[string]any{
			"target_id": ow.ID,
			"type":      int(ow.Type),
			"allow":     ow.Allow,
			"deny":      ow.Deny,
		})
	}
	return jsonResult(map[string]any{"channel_id": in.ChannelID, "count": len(out), "overwrites": out})
}
