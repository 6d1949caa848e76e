package discord

import (
	"context"

	"github.com/bwmarrin/discordgo"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/ExilProductions/discord-mcp/pkg/errs"
)

type createThreadInput struct {
	ChannelID       string `json:"channel_id"`
	Name            string `json:"name"`
	ArchiveDuration int    `json:"archive_duration,omitempty" jsonschema:"auto-archive after 60, 1440, 4320 or 10080 minutes; defaults to 1440"`
	Invitable       bool   `json:"invitable,omitempty" jsonschema:"whether non-moderators can add members (private threads)"`
}

type forumPostInput struct {
	ChannelID       string `json:"channel_id" jsonschema:"forum channel id"`
	Name            string `json:"name" jsonschema:"post title"`
	Content         string `json:"content" jsonschema:"first message of the post"`
	ArchiveDuration int    `json:"archive_duration,omitempty"`
}

type editThreadInput struct {
	ThreadID        string `json:"thread_id"`
	Name            string `json:"name,omitempty"`
	Archived        *bool  `json:"archived,omitempty"`
	Locked          *bool  `json:"locked,omitempty"`
	SlowmodeSeconds *int   `json:"slowmode_seconds,omitempty" jsonschema:"rate limit per user in seconds"`
	ArchiveDuration int    `json:"archive_duration,omitempty"`
}

type threadIDInput struct {
	ThreadID string `json:"thread_id"`
}

type threadMemberInput struct {
	ThreadID string `json:"thread_id"`
	UserID   string `json:"user_id"`
}

func (t *Toolkit) registerThreadTools(s *mcp.Server) {
	mcp.AddTool(s, &mcp.Tool{
		Name:        "create_thread",
		Description: "Start a thread in a text channel.",
	}, t.handleCreateThread)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "create_forum_post",
		Description: "Create a post in a forum channel with an initial message.",
	}, t.handleForumPost)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "edit_thread",
		Description: "Edit a thread's name, archived or locked state, slowmode or auto-archive duration.",
	}, t.handleEditThread)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "delete_thread",
		Description: "Delete a thread.",
	}, t.handleDeleteThread)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "add_thread_member",
		Description: "Add a user to a thread.",
	}, t.handleAddThreadMember)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "remove_thread_member",
		Description: "Remove a user from a thread.",
	}, t.handleRemoveThreadMember)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "list_active_threads",
		Description: "List the active threads in a guild.",
	}, t.handleListActiveThreads)
}

func (t *Toolkit) handleCreateThread(ctx context.Context, _ *mcp.CallToolRequest, in createThreadInput) (*mcp.CallToolResult, any, error) {
	dg, _, err := t.discord(ctx)
	if err != nil {
		return toolError(err)
	}

	archive := in.ArchiveDuration
	if archive == 0 {
		archive = 1440
	}

	done := t.announce(ctx, "Creating thread")
	defer done()

	thread, err := dg.ThreadStartComplex(in.ChannelID, &discordgo.ThreadStart{
		Name:                in.Name,
		AutoArchiveDuration: archive,
		Invitable:           in.Invitable,
		Type:                discordgo.ChannelTypeGuildPublicThread,
	})
	if err != nil {
		return toolError(errs.FromREST(errs.KindThread, "creating thread", err))
	}
	return jsonResult(channelInfo(thread))
}

func (t *Toolkit) handleForumPost(ctx context.Context, _ *mcp.CallToolRequest, in forumPostInput) (*mcp.CallToolResult, any, error) {
	dg, _, err := t.discord(ctx)
	if err != nil {
		return toolError(err)
	}

	archive := in.ArchiveDuration
	if archive == 0 {
		archive = 1440
	}

	done := t.announce(ctx, "Creating forum post")
	defer done()

	thread, err := dg.ForumThreadStart(in.ChannelID, in.Name, archive, in.Content)
	if err != nil {
		return toolError(errs.FromREST(errs.KindThread, "creating forum post", err))
	}
	return jsonResult(channelInfo(thread))
}

func (t *Toolkit) handleEditThread(ctx context.Context, _ *mcp.CallToolRequest, in editThreadInput) (*mcp.CallToolResult, any, error) {
	dg, _, err := t.discord(ctx)
	if err != nil {
		return toolError(err)
	}

	done := t.announce(ctx, "Editing thread")
	defer done()

	edit := &discordgo.ChannelEdit{
		Name:                in.Name,
		Archived:            in.Archived,
		Locked:              in.Locked,
		RateLimitPerUser:    in.SlowmodeSeconds,
		AutoArchiveDuration: in.ArchiveDuration,
	}
	thread, err := dg.ChannelEditComplex(in.ThreadID, edit)
	if err != nil {
		return toolError(errs.FromREST(errs.KindThread, "editing thread", err))
	}
	return jsonResult(channelInfo(thread))
}

func (t *Toolkit) handleDeleteThread(ctx context.Context, _ *mcp.CallToolRequest, in threadIDInput) (*mcp.CallToolResult, any, error) {
	dg, _, err := t.discord(ctx)
	if err != nil {
		return toolError(err)
	}

	done := t.announce(ctx, "Deleting thread")
	defer done()

	if _, err := dg.ChannelDelete(in.ThreadID); err != nil {
		return toolError(errs.FromREST(errs.KindThread, "deleting thread", err))
	}
	return jsonResult(map[string]any{"deleted": true, "thread_id": in.ThreadID})
}

func (t *Toolkit) handleAddThreadMember(ctx context.Context, _ *mcp.CallToolRequest, in threadMemberInput) (*mcp.CallToolResult, any, error) {
	dg, _, err := t.discord(ctx)
	if err != nil {
		return toolError(err)
	}

	done := t.announce(ctx, "Adding thread member")
	defer done()

	if err := dg.ThreadMemberAdd(in.ThreadID, in.UserID); err != nil {
		return toolError(errs.FromREST(errs.KindThread, "adding thread member", err))
	}
	return jsonResult(map[string]any{"added": true, "thread_id": in.ThreadID, "user_id": in.UserID})
}

func (t *Toolkit) handleRemoveThreadMember(ctx context.Context, _ *mcp.CallToolRequest, in threadMemberInput) (*mcp.CallToolResult, any, error) {
	dg, _, err := t.discord(ctx)
	if err != nil {
		return toolError(err)
	}

	done := t.announce(ctx, "Removing thread member")
	defer done()

	if err := dg.ThreadMemberRemove(in.ThreadID, in.UserID); err != nil {
		return toolError(errs.FromREST(errs.KindThread, "removing thread member", err))
	}
	return jsonResult(map[string]any{"removed": true, "thread_id": in.ThreadID, "user_id": in.UserID})
}

func (t *Toolkit) handleListActiveThreads(ctx context.Context, _ *mcp.CallToolRequest, in guildIDInput) (*mcp.CallToolResult, any, error) {
	dg, _, err := t.discord(ctx)
	if err != nil {
		return toolError(err)
	}

	threads, err := dg.GuildThreadsActive(in.GuildID)
	if err != nil {
		return toolError(errs.FromREST(errs.KindThread, "listing active threads", err))
	}

	out := make([]map[string]any, 0, len(threads.Threads))
	for _, th := range threads.Threads {
		out = append(out, channelInfo(th))
	}
	return jsonResult(map[string]any{"guild_id": in.GuildID, "count": len(out), "threads": out})
}
