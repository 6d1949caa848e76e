package discord

import (
	"context"

	"github.com/bwmarrin/discordgo"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/ExilProductions/discord-mcp/pkg/errs"
)

type auditLogInput struct {
	GuildID    string `json:"guild_id"`
	UserID     string `json:"user_id,omitempty" jsonschema:"filter to actions by this user"`
	ActionType int    `json:"action_type,omitempty" jsonschema:"Discord audit log action type code"`
	Limit      int    `json:"limit,omitempty" jsonschema:"1 to 100, defaults to 50"`
}

func (t *Toolkit) registerAuditLogTools(s *mcp.Server) {
	mcp.AddTool(s, &mcp.Tool{
		Name:        "get_audit_log",
		Description: "Read a guild's audit log, optionally filtered by user or action type.",
	}, t.handleAuditLog)
}

func (t *Toolkit) handleAuditLog(ctx context.Context, _ *mcp.CallToolRequest, in auditLogInput) (*mcp.CallToolResult, any, error) {
	dg, _, err := t.discord(ctx)
	if err != nil {
		return toolError(err)
	}

	limit := in.Limit
	if limit <= 0 {
		limit = 50
	}
	if limit > 100 {
		limit = 100
	}

	log, err := dg.GuildAuditLog(in.GuildID, in.UserID, "", in.ActionType, limit)
	if err != nil {
		return toolError(errs.FromREST(errs.KindAuditLog, "reading audit log", err))
	}

	out := make([]map[string]any, 0, len(log.AuditLogEntries))
	for _, entry := range log.AuditLogEntries {
		out = append(out, auditEntryInfo(entry))
	}
	return jsonResult(map[string]any{"guild_id": in.GuildID, "count": len(out), "entries": out})
}

func auditEntryInfo(entry *discordgo.AuditLogEntry) map[string]any {
	info := map[string]any{
		"id":        entry.ID,
		"user_id":   entry.UserID,
		"target_id": entry.TargetID,
		"reason":    entry.Reason,
	}
	if entry.ActionType != nil {
		info["action_type"] = int(*entry.ActionType)
	}
	return info
}
