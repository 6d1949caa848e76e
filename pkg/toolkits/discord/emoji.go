package discord

import (
	"context"
	"encoding/json"

	"github.com/bwmarrin/discordgo"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/ExilProductions/discord-mcp/pkg/errs"
)

type createEmojiInput struct {
	GuildID string   `json:"guild_id"`
	Name    string   `json:"name"`
	Image   string   `json:"image" jsonschema:"data URI of the emoji image, e.g. data:image/png;base64,..."`
	Roles   []string `json:"roles,omitempty" jsonschema:"restrict the emoji to these role ids"`
}

type emojiRefInput struct {
	GuildID string `json:"guild_id"`
	EmojiID string `json:"emoji_id"`
}

func (t *Toolkit) registerEmojiTools(s *mcp.Server) {
	mcp.AddTool(s, &mcp.Tool{
		Name:        "create_emoji",
		Description: "Upload a custom emoji to a guild.",
	}, t.handleCreateEmoji)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "delete_emoji",
		Description: "Delete a custom emoji from a guild.",
	}, t.handleDeleteEmoji)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "list_emojis",
		Description: "List a guild's custom emojis.",
	}, t.handleListEmojis)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "list_stickers",
		Description: "List a guild's custom stickers.",
	}, t.handleListStickers)
}

func (t *Toolkit) handleCreateEmoji(ctx context.Context, _ *mcp.CallToolRequest, in createEmojiInput) (*mcp.CallToolResult, any, error) {
	dg, _, err := t.discord(ctx)
	if err != nil {
		return toolError(err)
	}

	done := t.announce(ctx, "Creating emoji "+in.Name)
	defer done()

	emoji, err := dg.GuildEmojiCreate(in.GuildID, &discordgo.EmojiParams{
		Name:  in.Name,
		Image: in.Image,
		Roles: in.Roles,
	})
	if err != nil {
		return toolError(errs.FromREST(errs.KindEmoji, "creating emoji", err))
	}
	return jsonResult(emojiInfo(emoji))
}

func (t *Toolkit) handleDeleteEmoji(ctx context.Context, _ *mcp.CallToolRequest, in emojiRefInput) (*mcp.CallToolResult, any, error) {
	dg, _, err := t.discord(ctx)
	if err != nil {
		return toolError(err)
	}

	done := t.announce(ctx, "Deleting emoji")
	defer done()

	if err := dg.GuildEmojiDelete(in.GuildID, in.EmojiID); err != nil {
		return toolError(errs.FromREST(errs.KindEmoji, "deleting emoji", err))
	}
	return jsonResult(map[string]any{"deleted": true, "emoji_id": in.EmojiID})
}

func (t *Toolkit) handleListEmojis(ctx context.Context, _ *mcp.CallToolRequest, in guildIDInput) (*mcp.CallToolResult, any, error) {
	dg, _, err := t.discord(ctx)
	if err != nil {
		return toolError(err)
	}

	emojis, err := dg.GuildEmojis(in.GuildID)
	if err != nil {
		return toolError(errs.FromREST(errs.KindEmoji, "listing emojis", err))
	}

	out := make([]map[string]any, 0, len(emojis))
	for _, e := range emojis {
		out = append(out, emojiInfo(e))
	}
	return jsonResult(map[string]any{"guild_id": in.GuildID, "count": len(out), "emojis": out})
}

// handleListStickers hits the sticker endpoint directly; discordgo exposes the
// endpoint constant but no Session wrapper for it.
func (t *Toolkit) handleListStickers(ctx context.Context, _ *mcp.CallToolRequest, in guildIDInput) (*mcp.CallToolResult, any, error) {
	dg, _, err := t.discord(ctx)
	if err != nil {
		return toolError(err)
	}

	body, err := dg.RequestWithBucketID("GET", discordgo.EndpointGuildStickers(in.GuildID), nil, discordgo.EndpointGuildStickers(in.GuildID))
	if err != nil {
		return toolError(errs.FromREST(errs.KindEmoji, "listing stickers", err))
	}
	var stickers []*discordgo.Sticker
	if err := json.Unmarshal(body, &stickers); err != nil {
		return toolError(errs.Wrap(errs.KindEmoji, "decoding sticker list", err))
	}

	out := make([]map[string]any, 0, len(stickers))
	for _, s := range stickers {
		out = append(out, map[string]any{
			"id":          s.ID,
			"name":        s.Name,
			"description": s.Description,
			"tags":        s.Tags,
			"format_type": s.FormatType,
			"available":   s.Available,
		})
	}
	return jsonResult(map[string]any{"guild_id": in.GuildID, "count": len(out), "stickers": out})
}

func emojiInfo(e *discordgo.Emoji) map[string]any {
	return map[string]any{
		"id":       e.ID,
		"name":     e.Name,
		"animated": e.Animated,
		"managed":  e.Managed,
		"roles":    e.Roles,
	}
}
