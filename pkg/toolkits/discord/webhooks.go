package discord

import (
	"context"

	"github.com/bwmarrin/discordgo"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/ExilProductions/discord-mcp/pkg/errs"
)

type createWebhookInput struct {
	ChannelID string `json:"channel_id"`
	Name      string `json:"name"`
}

type webhookIDInput struct {
	WebhookID string `json:"webhook_id"`
}

type executeWebhookInput struct {
	WebhookID string `json:"webhook_id"`
	Token     string `json:"token"`
	Content   string `json:"content"`
	Username  string `json:"username,omitempty" jsonschema:"override the webhook's display name"`
}

func (t *Toolkit) registerWebhookTools(s *mcp.Server) {
	mcp.AddTool(s, &mcp.Tool{
		Name:        "create_webhook",
		Description: "Create a webhook on a channel.",
	}, t.handleCreateWebhook)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "list_webhooks",
		Description: "List the webhooks in a guild.",
	}, t.handleListWebhooks)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "delete_webhook",
		Description: "Delete a webhook.",
	}, t.handleDeleteWebhook)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "execute_webhook",
		Description: "Send a message through a webhook.",
	}, t.handleExecuteWebhook)
}

func (t *Toolkit) handleCreateWebhook(ctx context.Context, _ *mcp.CallToolRequest, in createWebhookInput) (*mcp.CallToolResult, any, error) {
	dg, _, err := t.discord(ctx)
	if err != nil {
		return toolError(err)
	}

	done := t.announce(ctx, "Creating webhook "+in.Name)
	defer done()

	hook, err := dg.WebhookCreate(in.ChannelID, in.Name, "")
	if err != nil {
		return toolError(errs.FromREST(errs.KindWebhook, "creating webhook", err))
	}
	return jsonResult(webhookInfo(hook))
}

func (t *Toolkit) handleListWebhooks(ctx context.Context, _ *mcp.CallToolRequest, in guildIDInput) (*mcp.CallToolResult, any, error) {
	dg, _, err := t.discord(ctx)
	if err != nil {
		return toolError(err)
	}

	hooks, err := dg.GuildWebhooks(in.GuildID)
	if err != nil {
		return toolError(errs.FromREST(errs.KindWebhook, "listing webhooks", err))
	}

	out := make([]map[string]any, 0, len(hooks))
	for _, h := range hooks {
		out = append(out, webhookInfo(h))
	}
	return jsonResult(map[string]any{"guild_id": in.GuildID, "count": len(out), "webhooks": out})
}

func (t *Toolkit) handleDeleteWebhook(ctx context.Context, _ *mcp.CallToolRequest, in webhookIDInput) (*mcp.CallToolResult, any, error) {
	dg, _, err := t.discord(ctx)
	if err != nil {
		return toolError(err)
	}

	done := t.announce(ctx, "Deleting webhook")
	defer done()

	if err := dg.WebhookDelete(in.WebhookID); err != nil {
		return toolError(errs.FromREST(errs.KindWebhook, "deleting webhook", err))
	}
	return jsonResult(map[string]any{"deleted": true, "webhook_id": in.WebhookID})
}

func (t *Toolkit) handleExecuteWebhook(ctx context.Context, _ *mcp.CallToolRequest, in executeWebhookInput) (*mcp.CallToolResult, any, error) {
	dg, _, err := t.discord(ctx)
	if err != nil {
		return toolError(err)
	}

	done := t.announce(ctx, "Executing webhook")
	defer done()

	msg, err := dg.WebhookExecute(in.WebhookID, in.Token, true, &discordgo.WebhookParams{
		Content:  in.Content,
		Username: in.Username,
	})
	if err != nil {
		return toolError(errs.FromREST(errs.KindWebhook, "executing webhook", err))
	}
	return jsonResult(messageInfo(msg))
}

func webhookInfo(h *discordgo.Webhook) map[string]any {
	return map[string]any{
		"id":         h.ID,
		"name":       h.Name,
		"channel_id": h.ChannelID,
		"guild_id":   h.GuildID,
		"token":      h.Token,
	}
}
