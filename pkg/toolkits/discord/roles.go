package discord

import (
	"context"

	"github.com/bwmarrin/discordgo"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/ExilProductions/discord-mcp/pkg/errs"
)

type createRoleInput struct {
	GuildID     string `json:"guild_id"`
	Name        string `json:"name"`
	Color       *int   `json:"color,omitempty" jsonschema:"RGB color as an integer"`
	Hoist       *bool  `json:"hoist,omitempty" jsonschema:"display role members separately in the sidebar"`
	Mentionable *bool  `json:"mentionable,omitempty"`
	Permissions string `json:"permissions,omitempty" jsonschema:"permission bitfield as a decimal string"`
}

type editRoleInput struct {
	GuildID     string `json:"guild_id"`
	RoleID      string `json:"role_id"`
	Name        string `json:"name,omitempty"`
	Color       *int   `json:"color,omitempty"`
	Hoist       *bool  `json:"hoist,omitempty"`
	Mentionable *bool  `json:"mentionable,omitempty"`
	Permissions string `json:"permissions,omitempty"`
}

type roleRefInput struct {
	GuildID string `json:"guild_id"`
	RoleID  string `json:"role_id"`
}

type memberRoleInput struct {
	GuildID string `json:"guild_id"`
	UserID  string `json:"user_id"`
	RoleID  string `json:"role_id"`
}

func (t *Toolkit) registerRoleTools(s *mcp.Server) {
	mcp.AddTool(s, &mcp.Tool{
		Name:        "create_role",
		Description: "Create a role in a guild.",
	}, t.handleCreateRole)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "edit_role",
		Description: "Edit a role's name, color, hoist, mentionable flag or permissions.",
	}, t.handleEditRole)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "delete_role",
		Description: "Delete a role from a guild.",
	}, t.handleDeleteRole)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "get_role",
		Description: "Get a single role by id.",
	}, t.handleGetRole)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "list_roles",
		Description: "List all roles in a guild.",
	}, t.handleListRoles)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "add_role_to_member",
		Description: "Assign a role to a guild member.",
	}, t.handleAddMemberRole)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "remove_role_from_member",
		Description: "Remove a role from a guild member.",
	}, t.handleRemoveMemberRole)
}

func roleParams(name string, color *int, hoist, mentionable *bool, permissions string) (*discordgo.RoleParams, error) {
	params := &discordgo.RoleParams{
		Name:        name,
		Color:       color,
		Hoist:       hoist,
		Mentionable: mentionable,
	}
	if permissions != "" {
		perms, ok := parseInt(permissions)
		if !ok {
			return nil, errs.New(errs.KindValidation, "permissions must be a decimal bitfield").
				WithDetail("permissions", permissions)
		}
		params.Permissions = &perms
	}
	return params, nil
}

func (t *Toolkit) handleCreateRole(ctx context.Context, _ *mcp.CallToolRequest, in createRoleInput) (*mcp.CallToolResult, any, error) {
	dg, _, err := t.discord(ctx)
	if err != nil {
		return toolError(err)
	}

	params, err := roleParams(in.Name, in.Color, in.Hoist, in.Mentionable, in.Permissions)
	if err != nil {
		return toolError(err)
	}

	done := t.announce(ctx, "Creating role "+in.Name)
	defer done()

	role, err := dg.GuildRoleCreate(in.GuildID, params)
	if err != nil {
		return toolError(errs.FromREST(errs.KindRole, "creating role", err))
	}
	return jsonResult(roleInfo(role))
}

func (t *Toolkit) handleEditRole(ctx context.Context, _ *mcp.CallToolRequest, in editRoleInput) (*mcp.CallToolResult, any, error) {
	dg, _, err := t.discord(ctx)
	if err != nil {
		return toolError(err)
	}

	params, err := roleParams(in.Name, in.Color, in.Hoist, in.Mentionable, in.Permissions)
	if err != nil {
		return toolError(err)
	}

	done := t.announce(ctx, "Editing role")
	defer done()

	role, err := dg.GuildRoleEdit(in.GuildID, in.RoleID, params)
	if err != nil {
		return toolError(errs.FromREST(errs.KindRole, "editing role", err))
	}
	return jsonResult(roleInfo(role))
}

func (t *Toolkit) handleGetRole(ctx context.Context, _ *mcp.CallToolRequest, in roleRefInput) (*mcp.CallToolResult, any, error) {
	dg, _, err := t.discord(ctx)
	if err != nil {
		return toolError(err)
	}

	roles, err := dg.GuildRoles(in.GuildID)
	if err != nil {
		return toolError(errs.FromREST(errs.KindRole, "fetching roles", err))
	}
	for _, r := range roles {
		if r.ID == in.RoleID {
			return jsonResult(roleInfo(r))
		}
	}
	return toolError(errs.New(errs.KindRole, "role not found").
		WithDetail("role_id", in.RoleID).
		WithDetail("guild_id", in.GuildID))
}

func (t *Toolkit) handleDeleteRole(ctx context.Context, _ *mcp.CallToolRequest, in roleRefInput) (*mcp.CallToolResult, any, error) {
	dg, _, err := t.discord(ctx)
	if err != nil {
		return toolError(err)
	}

	done := t.announce(ctx, "Deleting role")
	defer done()

	if err := dg.GuildRoleDelete(in.GuildID, in.RoleID); err != nil {
		return toolError(errs.FromREST(errs.KindRole, "deleting role", err))
	}
	return jsonResult(map[string]any{"deleted": true, "role_id": in.RoleID})
}

func (t *Toolkit) handleListRoles(ctx context.Context, _ *mcp.CallToolRequest, in guildIDInput) (*mcp.CallToolResult, any, error) {
	dg, _, err := t.discord(ctx)
	if err != nil {
		return toolError(err)
	}

	roles, err := dg.GuildRoles(in.GuildID)
	if err != nil {
		return toolError(errs.FromREST(errs.KindRole, "listing roles", err))
	}

	out := make([]map[string]any, 0, len(roles))
	for _, r := range roles {
		out = append(out, roleInfo(r))
	}
	return jsonResult(map[string]any{"guild_id": in.GuildID, "count": len(out), "roles": out})
}

func (t *Toolkit) handleAddMemberRole(ctx context.Context, _ *mcp.CallToolRequest, in memberRoleInput) (*mcp.CallToolResult, any, error) {
	dg, _, err := t.discord(ctx)
	if err != nil {
		return toolError(err)
	}

	done := t.announce(ctx, "Adding role to member")
	defer done()

	if err := dg.GuildMemberRoleAdd(in.GuildID, in.UserID, in.RoleID); err != nil {
		return toolError(errs.FromREST(errs.KindRole, "assigning role", err))
	}
	return jsonResult(map[string]any{"added": true, "user_id": in.UserID, "role_id": in.RoleID})
}

func (t *Toolkit) handleRemoveMemberRole(ctx context.Context, _ *mcp.CallToolRequest, in memberRoleInput) (*mcp.CallToolResult, any, error) {
	dg, _, err := t.discord(ctx)
	if err != nil {
		return toolError(err)
	}

	done := t.announce(ctx, "Removing role from member")
	defer done()

	if err := dg.GuildMemberRoleRemove(in.GuildID, in.UserID, in.RoleID); err != nil {
		return toolError(errs.FromREST(errs.KindRole, "removing role", err))
	}
	return jsonResult(map[string]any{"removed": true, "user_id": in.UserID, "role_id": in.RoleID})
}

func roleInfo(r *discordgo.Role) map[string]any {
	return map[string]any{
		"id":          r.ID,
		"name":        r.Name,
		"color":       r.Color,
		"hoist":       r.Hoist,
		"position":    r.Position,
		"permissions": r.Permissions,
		"mentionable": r.Mentionable,
		"managed":     r.Managed,
	}
}
