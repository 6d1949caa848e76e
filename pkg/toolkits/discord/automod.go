package discord

import (
	"context"

	"github.com/bwmarrin/discordgo"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/ExilProductions/discord-mcp/pkg/errs"
)

type createAutoModRuleInput struct {
	GuildID        string   `json:"guild_id"`
	Name           string   `json:"name"`
	Keywords       []string `json:"keywords" jsonschema:"keywords that trigger the rule"`
	TimeoutSeconds int      `json:"timeout_seconds,omitempty" jsonschema:"also time out the author for this many seconds"`
	Enabled        bool     `json:"enabled,omitempty"`
}

type editAutoModRuleInput struct {
	GuildID  string   `json:"guild_id"`
	RuleID   string   `json:"rule_id"`
	Name     string   `json:"name,omitempty"`
	Keywords []string `json:"keywords,omitempty" jsonschema:"replaces the rule's keyword filter"`
	Enabled  *bool    `json:"enabled,omitempty"`
}

type autoModRuleRefInput struct {
	GuildID string `json:"guild_id"`
	RuleID  string `json:"rule_id"`
}

func (t *Toolkit) registerAutoModTools(s *mcp.Server) {
	mcp.AddTool(s, &mcp.Tool{
		Name:        "create_automod_rule",
		Description: "Create a keyword auto-moderation rule that blocks matching messages.",
	}, t.handleCreateAutoModRule)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "edit_automod_rule",
		Description: "Edit an auto-moderation rule's name, keywords or enabled state.",
	}, t.handleEditAutoModRule)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "delete_automod_rule",
		Description: "Delete an auto-moderation rule.",
	}, t.handleDeleteAutoModRule)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "list_automod_rules",
		Description: "List a guild's auto-moderation rules.",
	}, t.handleListAutoModRules)
}

func (t *Toolkit) handleCreateAutoModRule(ctx context.Context, _ *mcp.CallToolRequest, in createAutoModRuleInput) (*mcp.CallToolResult, any, error) {
	dg, _, err := t.discord(ctx)
	if err != nil {
		return toolError(err)
	}
	if len(in.Keywords) == 0 {
		return errorResult("at least one keyword is required"), nil, nil
	}

	enabled := in.Enabled
	actions := []discordgo.AutoModerationAction{
		{Type: discordgo.AutoModerationRuleActionBlockMessage},
	}
	if in.TimeoutSeconds > 0 {
		actions = append(actions, discordgo.AutoModerationAction{
			Type:     discordgo.AutoModerationRuleActionTimeout,
			Metadata: &discordgo.AutoModerationActionMetadata{Duration: in.TimeoutSeconds},
		})
	}

	done := t.announce(ctx, "Creating automod rule")
	defer done()

	rule, err := dg.AutoModerationRuleCreate(in.GuildID, &discordgo.AutoModerationRule{
		Name:        in.Name,
		EventType:   discordgo.AutoModerationEventMessageSend,
		TriggerType: discordgo.AutoModerationEventTriggerKeyword,
		TriggerMetadata: &discordgo.AutoModerationTriggerMetadata{
			KeywordFilter: in.Keywords,
		},
		Actions: actions,
		Enabled: &enabled,
	})
	if err != nil {
		return toolError(errs.FromREST(errs.KindAutoMod, "creating automod rule", err))
	}
	return jsonResult(autoModRuleInfo(rule))
}

func (t *Toolkit) handleEditAutoModRule(ctx context.Context, _ *mcp.CallToolRequest, in editAutoModRuleInput) (*mcp.CallToolResult, any, error) {
	dg, _, err := t.discord(ctx)
	if err != nil {
		return toolError(err)
	}

	edit := &discordgo.AutoModerationRule{
		Name:    in.Name,
		Enabled: in.Enabled,
	}
	if len(in.Keywords) > 0 {
		edit.TriggerMetadata = &discordgo.AutoModerationTriggerMetadata{
			KeywordFilter: in.Keywords,
		}
	}

	done := t.announce(ctx, "Editing automod rule")
	defer done()

	rule, err := dg.AutoModerationRuleEdit(in.GuildID, in.RuleID, edit)
	if err != nil {
		return toolError(errs.FromREST(errs.KindAutoMod, "editing automod rule", err))
	}
	return jsonResult(autoModRuleInfo(rule))
}

func (t *Toolkit) handleDeleteAutoModRule(ctx context.Context, _ *mcp.CallToolRequest, in autoModRuleRefInput) (*mcp.CallToolResult, any, error) {
	dg, _, err := t.discord(ctx)
	if err != nil {
		return toolError(err)
	}

	done := t.announce(ctx, "Deleting automod rule")
	defer done()

	if err := dg.AutoModerationRuleDelete(in.GuildID, in.RuleID); err != nil {
		return toolError(errs.FromREST(errs.KindAutoMod, "deleting automod rule", err))
	}
	return jsonResult(map[string]any{"deleted": true, "rule_id": in.RuleID})
}

func (t *Toolkit) handleListAutoModRules(ctx context.Context, _ *mcp.CallToolRequest, in guildIDInput) (*mcp.CallToolResult, any, error) {
	dg, _, err := t.discord(ctx)
	if err != nil {
		return toolError(err)
	}

	rules, err := dg.AutoModerationRules(in.GuildID)
	if err != nil {
		return toolError(errs.FromREST(errs.KindAutoMod, "listing automod rules", err))
	}

	out := make([]map[string]any, 0, len(rules))
	for _, r := range rules {
		out = append(out, autoModRuleInfo(r))
	}
	return jsonResult(map[string]any{"guild_id": in.GuildID, "count": len(out), "rules": out})
}

func autoModRuleInfo(r *discordgo.AutoModerationRule) map[string]any {
	info := map[string]any{
		"id":   r.ID,
		"name": r.Name,
	}
	if r.Enabled != nil {
		info["enabled"] = *r.Enabled
	}
	if r.TriggerMetadata != nil {
		info["keywords"] = r.TriggerMetadata.KeywordFilter
	}
	return info
}
