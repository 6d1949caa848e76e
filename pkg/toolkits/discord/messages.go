package discord

import (
	"context"

	"github.com/bwmarrin/discordgo"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/ExilProductions/discord-mcp/pkg/errs"
)

type sendMessageInput struct {
	ChannelID string `json:"channel_id"`
	Content   string `json:"content"`
	ReplyTo   string `json:"reply_to,omitempty" jsonschema:"message id to reply to"`
}

type editMessageInput struct {
	ChannelID string `json:"channel_id"`
	MessageID string `json:"message_id"`
	Content   string `json:"content"`
}

type messageRefInput struct {
	ChannelID string `json:"channel_id"`
	MessageID string `json:"message_id"`
}

type bulkDeleteInput struct {
	ChannelID  string   `json:"channel_id"`
	MessageIDs []string `json:"message_ids" jsonschema:"between 2 and 100 message ids, none older than 14 days"`
}

type listMessagesInput struct {
	ChannelID string `json:"channel_id"`
	Limit     int    `json:"limit,omitempty" jsonschema:"1 to 100, defaults to 50"`
	Before    string `json:"before,omitempty" jsonschema:"return messages before this message id"`
	After     string `json:"after,omitempty" jsonschema:"return messages after this message id"`
}

func (t *Toolkit) registerMessageTools(s *mcp.Server) {
	mcp.AddTool(s, &mcp.Tool{
		Name:        "send_message",
		Description: "Send a message to a channel, optionally as a reply.",
	}, t.handleSendMessage)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "edit_message",
		Description: "Edit a message previously sent by the bot.",
	}, t.handleEditMessage)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "delete_message",
		Description: "Delete a single message.",
	}, t.handleDeleteMessage)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "bulk_delete_messages",
		Description: "Delete multiple messages from a channel in one call.",
	}, t.handleBulkDelete)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "get_message",
		Description: "Fetch a single message by id.",
	}, t.handleGetMessage)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "read_messages",
		Description: "Read recent messages from a channel, newest first.",
	}, t.handleReadMessages)
}

func (t *Toolkit) handleSendMessage(ctx context.Context, _ *mcp.CallToolRequest, in sendMessageInput) (*mcp.CallToolResult, any, error) {
	dg, _, err := t.discord(ctx)
	if err != nil {
		return toolError(err)
	}

	send := &discordgo.MessageSend{Content: in.Content}
	if in.ReplyTo != "" {
		send.Reference = &discordgo.MessageReference{
			MessageID: in.ReplyTo,
			ChannelID: in.ChannelID,
		}
	}

	done := t.announce(ctx, "Sending message")
	defer done()

	msg, err := dg.ChannelMessageSendComplex(in.ChannelID, send)
	if err != nil {
		return toolError(errs.FromREST(errs.KindMessage, "sending message", err))
	}
	return jsonResult(messageInfo(msg))
}

func (t *Toolkit) handleEditMessage(ctx context.Context, _ *mcp.CallToolRequest, in editMessageInput) (*mcp.CallToolResult, any, error) {
	dg, _, err := t.discord(ctx)
	if err != nil {
		return toolError(err)
	}

	done := t.announce(ctx, "Editing message")
	defer done()

	msg, err := dg.ChannelMessageEdit(in.ChannelID, in.MessageID, in.Content)
	if err != nil {
		return toolError(errs.FromREST(errs.KindMessage, "editing message", err))
	}
	return jsonResult(messageInfo(msg))
}

func (t *Toolkit) handleDeleteMessage(ctx context.Context, _ *mcp.CallToolRequest, in messageRefInput) (*mcp.CallToolResult, any, error) {
	dg, _, err := t.discord(ctx)
	if err != nil {
		return toolError(err)
	}

	done := t.announce(ctx, "Deleting message")
	defer done()

	if err := dg.ChannelMessageDelete(in.ChannelID, in.MessageID); err != nil {
		return toolError(errs.FromREST(errs.KindMessage, "deleting message", err))
	}
	return jsonResult(map[string]any{"deleted": true, "message_id": in.MessageID})
}

func (t *Toolkit) handleBulkDelete(ctx context.Context, _ *mcp.CallToolRequest, in bulkDeleteInput) (*mcp.CallToolResult, any, error) {
	dg, _, err := t.discord(ctx)
	if err != nil {
		return toolError(err)
	}
	if len(in.MessageIDs) < 2 || len(in.MessageIDs) > 100 {
		return errorResult("bulk delete requires between 2 and 100 message ids"), nil, nil
	}

	done := t.announce(ctx, "Bulk deleting messages")
	defer done()

	if err := dg.ChannelMessagesBulkDelete(in.ChannelID, in.MessageIDs); err != nil {
		return toolError(errs.FromREST(errs.KindMessage, "bulk deleting messages", err))
	}
	return jsonResult(map[string]any{"deleted": len(in.MessageIDs), "channel_id": in.ChannelID})
}

func (t *Toolkit) handleGetMessage(ctx context.Context, _ *mcp.CallToolRequest, in messageRefInput) (*mcp.CallToolResult, any, error) {
	dg, _, err := t.discord(ctx)
	if err != nil {
		return toolError(err)
	}

	msg, err := dg.ChannelMessage(in.ChannelID, in.MessageID)
	if err != nil {
		return toolError(errs.FromREST(errs.KindMessage, "fetching message", err))
	}
	return jsonResult(messageInfo(msg))
}

func (t *Toolkit) handleReadMessages(ctx context.Context, _ *mcp.CallToolRequest, in listMessagesInput) (*mcp.CallToolResult, any, error) {
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

	msgs, err := dg.ChannelMessages(in.ChannelID, limit, in.Before, in.After, "")
	if err != nil {
		return toolError(errs.FromREST(errs.KindMessage, "reading messages", err))
	}

	out := make([]map[string]any, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, messageInfo(m))
	}
	return jsonResult(map[string]any{"channel_id": in.ChannelID, "count": len(out), "messages": out})
}

func messageInfo(m *discordgo.Message) map[string]any {
	info := map[string]any{
		"id":         m.ID,
		"channel_id": m.ChannelID,
		"content":    m.Content,
		"timestamp":  m.Timestamp,
	}
	if m.Author != nil {
		info["author"] = map[string]any{
			"id":       m.Author.ID,
			"username": m.Author.Username,
			"bot":      m.Author.Bot,
		}
	}
	if len(m.Attachments) > 0 {
		urls := make([]string, 0, len(m.Attachments))
		for _, a := range m.Attachments {
			urls = append(urls, a.URL)
		}
		info["attachments"] = urls
	}
	return info
}
