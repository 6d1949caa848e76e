package discord

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/ExilProductions/discord-mcp/pkg/errs"
)

type reactionInput struct {
	ChannelID string `json:"channel_id"`
	MessageID string `json:"message_id"`
	Emoji     string `json:"emoji" jsonschema:"unicode emoji or name:id for a custom emoji"`
}

type removeReactionInput struct {
	ChannelID string `json:"channel_id"`
	MessageID string `json:"message_id"`
	Emoji     string `json:"emoji"`
	UserID    string `json:"user_id,omitempty" jsonschema:"remove this user's reaction; defaults to the bot's own"`
}

func (t *Toolkit) registerReactionTools(s *mcp.Server) {
	mcp.AddTool(s, &mcp.Tool{
		Name:        "add_reaction",
		Description: "Add a reaction to a message.",
	}, t.handleAddReaction)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "remove_reaction",
		Description: "Remove a reaction from a message.",
	}, t.handleRemoveReaction)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "clear_reactions",
		Description: "Remove all reactions from a message.",
	}, t.handleClearReactions)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "get_reactions",
		Description: "List users who reacted to a message with a given emoji.",
	}, t.handleGetReactions)
}

func (t *Toolkit) handleAddReaction(ctx context.Context, _ *mcp.CallToolRequest, in reactionInput) (*mcp.CallToolResult, any, error) {
	dg, _, err := t.discord(ctx)
	if err != nil {
		return toolError(err)
	}

	done := t.announce(ctx, "Adding reaction")
	defer done()

	if err := dg.MessageReactionAdd(in.ChannelID, in.MessageID, in.Emoji); err != nil {
		return toolError(errs.FromREST(errs.KindReaction, "adding reaction", err))
	}
	return jsonResult(map[string]any{"added": true, "emoji": in.Emoji})
}

func (t *Toolkit) handleRemoveReaction(ctx context.Context, _ *mcp.CallToolRequest, in removeReactionInput) (*mcp.CallToolResult, any, error) {
	dg, _, err := t.discord(ctx)
	if err != nil {
		return toolError(err)
	}

	userID := in.UserID
	if userID == "" {
		userID = "@me"
	}
	done := t.announce(ctx, "Removing reaction")
	defer done()

	if err := dg.MessageReactionRemove(in.ChannelID, in.MessageID, in.Emoji, userID); err != nil {
		return toolError(errs.FromREST(errs.KindReaction, "removing reaction", err))
	}
	return jsonResult(map[string]any{"removed": true, "emoji": in.Emoji})
}

func (t *Toolkit) handleClearReactions(ctx context.Context, _ *mcp.CallToolRequest, in messageRefInput) (*mcp.CallToolResult, any, error) {
	dg, _, err := t.discord(ctx)
	if err != nil {
		return toolError(err)
	}

	done := t.announce(ctx, "Clearing reactions")
	defer done()

	if err := dg.MessageReactionsRemoveAll(in.ChannelID, in.MessageID); err != nil {
		return toolError(errs.FromREST(errs.KindReaction, "clearing reactions", err))
	}
	return jsonResult(map[string]any{"cleared": true, "message_id": in.MessageID})
}

func (t *Toolkit) handleGetReactions(ctx context.Context, _ *mcp.CallToolRequest, in reactionInput) (*mcp.CallToolResult, any, error) {
	dg, _, err := t.discord(ctx)
	if err != nil {
		return toolError(err)
	}

	users, err := dg.MessageReactions(in.ChannelID, in.MessageID, in.Emoji, 100, "", "")
	if err != nil {
		return toolError(errs.FromREST(errs.KindReaction, "listing reactions", err))
	}

	out := make([]map[string]any, 0, len(users))
	for _, u := range users {
		out = append(out, map[string]any{"id": u.ID, "username": u.Username, "bot": u.Bot})
	}
	return jsonResult(map[string]any{"emoji": in.Emoji, "count": len(out), "users": out})
}
