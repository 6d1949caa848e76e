package discord

import (
	"slices"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/ExilProductions/discord-mcp/pkg/events"
)

// registerHandlers attaches the gateway event handlers that feed the event
// callback. Update-type events report changed fields only; when a
// before/after comparison yields no differences, nothing is emitted.
func (c *Client) registerHandlers(dg *discordgo.Session) {
	dg.AddHandler(c.onReady)
	dg.AddHandler(c.onMessageCreate)
	dg.AddHandler(c.onGuildMemberAdd)
	dg.AddHandler(c.onGuildMemberRemove)
	dg.AddHandler(c.onGuildMemberUpdate)
	dg.AddHandler(c.onChannelUpdate)
	dg.AddHandler(c.onGuildCreate)
	dg.AddHandler(c.onGuildRoleCreate)
	dg.AddHandler(c.onGuildRoleUpdate)
	dg.AddHandler(c.onGuildRoleDelete)
}

func (c *Client) onReady(_ *discordgo.Session, r *discordgo.Ready) {
	c.markReady()

	bot := map[string]any{}
	if r.User != nil {
		bot["id"] = r.User.ID
		bot["username"] = r.User.Username
		bot["discriminator"] = r.User.Discriminator
	}
	c.emit(events.New(events.TypeReady, c.sessionID).With("bot", bot))
}

func (c *Client) onMessageCreate(_ *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot {
		return
	}
	c.emit(events.New(events.TypeMessage, c.sessionID).With("message", map[string]any{
		"id":         m.ID,
		"channel_id": m.ChannelID,
		"guild_id":   m.GuildID,
		"content":    m.Content,
		"timestamp":  m.Timestamp.Format(time.RFC3339),
		"author": map[string]any{
			"id":            m.Author.ID,
			"username":      m.Author.Username,
			"discriminator": m.Author.Discriminator,
		},
	}))
}

func (c *Client) onGuildMemberAdd(_ *discordgo.Session, m *discordgo.GuildMemberAdd) {
	if m.User == nil {
		return
	}
	c.emit(events.New(events.TypeMemberJoin, c.sessionID).With("member", map[string]any{
		"id":            m.User.ID,
		"username":      m.User.Username,
		"discriminator": m.User.Discriminator,
		"joined_at":     m.JoinedAt.Format(time.RFC3339),
		"guild_id":      m.GuildID,
	}))
}

func (c *Client) onGuildMemberRemove(_ *discordgo.Session, m *discordgo.GuildMemberRemove) {
	if m.User == nil {
		return
	}
	c.emit(events.New(events.TypeMemberLeave, c.sessionID).With("member", map[string]any{
		"id":            m.User.ID,
		"username":      m.User.Username,
		"discriminator": m.User.Discriminator,
		"guild_id":      m.GuildID,
	}))
}

func (c *Client) onGuildMemberUpdate(_ *discordgo.Session, m *discordgo.GuildMemberUpdate) {
	if m.User == nil || m.BeforeUpdate == nil {
		return
	}

	changes := map[string]any{}
	if before, after := displayName(m.BeforeUpdate), displayName(m.Member); before != after {
		changes["nickname"] = beforeAfter(before, after)
	}
	if !slices.Equal(m.BeforeUpdate.Roles, m.Roles) {
		changes["roles"] = beforeAfter(m.BeforeUpdate.Roles, m.Roles)
	}
	if len(changes) == 0 {
		return
	}

	c.emit(events.New(events.TypeMemberUpdate, c.sessionID).
		With("member_id", m.User.ID).
		With("guild_id", m.GuildID).
		With("changes", changes))
}

func (c *Client) onChannelUpdate(_ *discordgo.Session, ch *discordgo.ChannelUpdate) {
	if ch.Channel == nil || ch.BeforeUpdate == nil {
		return
	}
	before, after := ch.BeforeUpdate, ch.Channel

	changes := map[string]any{}
	if before.Name != after.Name {
		changes["name"] = beforeAfter(before.Name, after.Name)
	}
	if before.Position != after.Position {
		changes["position"] = beforeAfter(before.Position, after.Position)
	}
	if before.ParentID != after.ParentID {
		changes["category"] = beforeAfter(before.ParentID, after.ParentID)
	}
	if len(changes) == 0 {
		return
	}

	c.emit(events.New(events.TypeChannelUpdate, c.sessionID).
		With("channel_id", after.ID).
		With("guild_id", after.GuildID).
		With("changes", changes))
}

// The gateway carries no before-state for roles, so the client keeps its own
// role cache to diff against.

func (c *Client) onGuildCreate(_ *discordgo.Session, g *discordgo.GuildCreate) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, role := range g.Roles {
		c.roles[g.ID+"/"+role.ID] = role
	}
}

func (c *Client) onGuildRoleCreate(_ *discordgo.Session, r *discordgo.GuildRoleCreate) {
	if r.Role == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.roles[r.GuildID+"/"+r.Role.ID] = r.Role
}

func (c *Client) onGuildRoleDelete(_ *discordgo.Session, r *discordgo.GuildRoleDelete) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.roles, r.GuildID+"/"+r.RoleID)
}

func (c *Client) onGuildRoleUpdate(_ *discordgo.Session, r *discordgo.GuildRoleUpdate) {
	if r.Role == nil {
		return
	}
	after := r.Role

	c.mu.Lock()
	before := c.roles[r.GuildID+"/"+after.ID]
	c.roles[r.GuildID+"/"+after.ID] = after
	c.mu.Unlock()

	if before == nil {
		return
	}

	changes := map[string]any{}
	if before.Name != after.Name {
		changes["name"] = beforeAfter(before.Name, after.Name)
	}
	if before.Color != after.Color {
		changes["color"] = beforeAfter(before.Color, after.Color)
	}
	if before.Permissions != after.Permissions {
		changes["permissions"] = beforeAfter(before.Permissions, after.Permissions)
	}
	if before.Position != after.Position {
		changes["position"] = beforeAfter(before.Position, after.Position)
	}
	if len(changes) == 0 {
		return
	}

	c.emit(events.New(events.TypeRoleUpdate, c.sessionID).
		With("role_id", after.ID).
		With("guild_id", r.GuildID).
		With("changes", changes))
}

func displayName(m *discordgo.Member) string {
	if m == nil {
		return ""
	}
	if m.Nick != "" {
		return m.Nick
	}
	if m.User != nil {
		return m.User.Username
	}
	return ""
}

func beforeAfter(before, after any) map[string]any {
	return map[string]any{"before": before, "after": after}
}
