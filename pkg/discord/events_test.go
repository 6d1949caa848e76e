package discord

import (
	"testing"

	"github.com/bwmarrin/discordgo"

	"github.com/ExilProductions/discord-mcp/pkg/events"
)

// collector captures emitted events for assertions.
type collector struct {
	got []events.Event
}

func (c *collector) callback(ev events.Event) {
	c.got = append(c.got, ev)
}

func TestOnReady(t *testing.T) {
	col := &collector{}
	c := newTestClient(false, col.callback)

	c.onReady(nil, &discordgo.Ready{
		User: &discordgo.User{ID: "1", Username: "bot"},
	})

	if !c.Ready() {
		t.Error("Ready() = false after READY event")
	}
	if len(col.got) != 1 || col.got[0].Type() != events.TypeReady {
		t.Fatalf("emitted %v, want one ready event", col.got)
	}
	bot, _ := col.got[0]["bot"].(map[string]any)
	if bot["username"] != "bot" {
		t.Errorf("bot.username = %v, want bot", bot["username"])
	}
}

func TestOnMessageCreate(t *testing.T) {
	message := func(author *discordgo.User) *discordgo.MessageCreate {
		return &discordgo.MessageCreate{Message: &discordgo.Message{
			ID:        "m1",
			ChannelID: "c1",
			Content:   "hello",
			Author:    author,
		}}
	}

	t.Run("emits for user messages", func(t *testing.T) {
		col := &collector{}
		c := newTestClient(false, col.callback)

		c.onMessageCreate(nil, message(&discordgo.User{ID: "u1", Username: "alice"}))
		if len(col.got) != 1 || col.got[0].Type() != events.TypeMessage {
			t.Fatalf("emitted %v, want one message event", col.got)
		}
	})

	t.Run("skips bot authors", func(t *testing.T) {
		col := &collector{}
		c := newTestClient(false, col.callback)

		c.onMessageCreate(nil, message(&discordgo.User{ID: "u2", Bot: true}))
		if len(col.got) != 0 {
			t.Errorf("emitted %v for a bot author", col.got)
		}
	})

	t.Run("skips nil author", func(t *testing.T) {
		col := &collector{}
		c := newTestClient(false, col.callback)

		c.onMessageCreate(nil, message(nil))
		if len(col.got) != 0 {
			t.Errorf("emitted %v for nil author", col.got)
		}
	})
}

func TestOnGuildMemberUpdate(t *testing.T) {
	member := func(nick string, roles []string) *discordgo.Member {
		return &discordgo.Member{
			Nick:  nick,
			Roles: roles,
			User:  &discordgo.User{ID: "u1", Username: "alice"},
		}
	}

	t.Run("nickname change", func(t *testing.T) {
		col := &collector{}
		c := newTestClient(false, col.callback)

		c.onGuildMemberUpdate(nil, &discordgo.GuildMemberUpdate{
			Member:       member("new-nick", nil),
			BeforeUpdate: member("old-nick", nil),
		})

		if len(col.got) != 1 {
			t.Fatalf("emitted %d events, want 1", len(col.got))
		}
		changes, _ := col.got[0]["changes"].(map[string]any)
		nick, _ := changes["nickname"].(map[string]any)
		if nick["before"] != "old-nick" || nick["after"] != "new-nick" {
			t.Errorf("nickname change = %v", nick)
		}
	})

	t.Run("role change", func(t *testing.T) {
		col := &collector{}
		c := newTestClient(false, col.callback)

		c.onGuildMemberUpdate(nil, &discordgo.GuildMemberUpdate{
			Member:       member("", []string{"r1", "r2"}),
			BeforeUpdate: member("", []string{"r1"}),
		})

		if len(col.got) != 1 {
			t.Fatalf("emitted %d events, want 1", len(col.got))
		}
		changes, _ := col.got[0]["changes"].(map[string]any)
		if _, ok := changes["roles"]; !ok {
			t.Errorf("changes = %v, want roles entry", changes)
		}
	})

	t.Run("no differences emits nothing", func(t *testing.T) {
		col := &collector{}
		c := newTestClient(false, col.callback)

		c.onGuildMemberUpdate(nil, &discordgo.GuildMemberUpdate{
			Member:       member("same", []string{"r1"}),
			BeforeUpdate: member("same", []string{"r1"}),
		})
		if len(col.got) != 0 {
			t.Errorf("emitted %v for identical states", col.got)
		}
	})

	t.Run("missing before state emits nothing", func(t *testing.T) {
		col := &collector{}
		c := newTestClient(false, col.callback)

		c.onGuildMemberUpdate(nil, &discordgo.GuildMemberUpdate{
			Member: member("nick", nil),
		})
		if len(col.got) != 0 {
			t.Errorf("emitted %v without before state", col.got)
		}
	})
}

func TestOnChannelUpdate(t *testing.T) {
	channel := func(name, parent string, position int) *discordgo.Channel {
		return &discordgo.Channel{ID: "c1", GuildID: "g1", Name: name, ParentID: parent, Position: position}
	}

	t.Run("changed fields only", func(t *testing.T) {
		col := &collector{}
		c := newTestClient(false, col.callback)

		c.onChannelUpdate(nil, &discordgo.ChannelUpdate{
			Channel:      channel("renamed", "cat1", 3),
			BeforeUpdate: channel("original", "cat1", 3),
		})

		if len(col.got) != 1 {
			t.Fatalf("emitted %d events, want 1", len(col.got))
		}
		changes, _ := col.got[0]["changes"].(map[string]any)
		if len(changes) != 1 {
			t.Errorf("changes = %v, want only name", changes)
		}
		if _, ok := changes["name"]; !ok {
			t.Errorf("changes = %v, missing name", changes)
		}
	})

	t.Run("identical states emit nothing", func(t *testing.T) {
		col := &collector{}
		c := newTestClient(false, col.callback)

		c.onChannelUpdate(nil, &discordgo.ChannelUpdate{
			Channel:      channel("same", "cat1", 1),
			BeforeUpdate: channel("same", "cat1", 1),
		})
		if len(col.got) != 0 {
			t.Errorf("emitted %v for identical states", col.got)
		}
	})
}

func TestOnGuildRoleUpdate(t *testing.T) {
	role := func(name string, color int) *discordgo.Role {
		return &discordgo.Role{ID: "r1", Name: name, Color: color}
	}

	t.Run("diffs against cached role", func(t *testing.T) {
		col := &collector{}
		c := newTestClient(false, col.callback)

		c.onGuildRoleCreate(nil, &discordgo.GuildRoleCreate{
			GuildRole: &discordgo.GuildRole{GuildID: "g1", Role: role("mods", 1)},
		})
		c.onGuildRoleUpdate(nil, &discordgo.GuildRoleUpdate{
			GuildRole: &discordgo.GuildRole{GuildID: "g1", Role: role("admins", 2)},
		})

		if len(col.got) != 1 {
			t.Fatalf("emitted %d events, want 1", len(col.got))
		}
		changes, _ := col.got[0]["changes"].(map[string]any)
		if _, ok := changes["name"]; !ok {
			t.Errorf("changes = %v, missing name", changes)
		}
		if _, ok := changes["color"]; !ok {
			t.Errorf("changes = %v, missing color", changes)
		}
	})

	t.Run("uncached role emits nothing", func(t *testing.T) {
		col := &collector{}
		c := newTestClient(false, col.callback)

		c.onGuildRoleUpdate(nil, &discordgo.GuildRoleUpdate{
			GuildRole: &discordgo.GuildRole{GuildID: "g1", Role: role("mods", 1)},
		})
		if len(col.got) != 0 {
			t.Errorf("emitted %v for uncached role", col.got)
		}
	})

	t.Run("second update diffs against the first", func(t *testing.T) {
		col := &collector{}
		c := newTestClient(false, col.callback)

		c.onGuildRoleUpdate(nil, &discordgo.GuildRoleUpdate{
			GuildRole: &discordgo.GuildRole{GuildID: "g1", Role: role("a", 1)},
		})
		c.onGuildRoleUpdate(nil, &discordgo.GuildRoleUpdate{
			GuildRole: &discordgo.GuildRole{GuildID: "g1", Role: role("b", 1)},
		})

		if len(col.got) != 1 {
			t.Fatalf("emitted %d events, want 1", len(col.got))
		}
	})

	t.Run("deleted role drops from the cache", func(t *testing.T) {
		col := &collector{}
		c := newTestClient(false, col.callback)

		c.onGuildRoleCreate(nil, &discordgo.GuildRoleCreate{
			GuildRole: &discordgo.GuildRole{GuildID: "g1", Role: role("mods", 1)},
		})
		c.onGuildRoleDelete(nil, &discordgo.GuildRoleDelete{RoleID: "r1", GuildID: "g1"})
		c.onGuildRoleUpdate(nil, &discordgo.GuildRoleUpdate{
			GuildRole: &discordgo.GuildRole{GuildID: "g1", Role: role("other", 2)},
		})
		if len(col.got) != 0 {
			t.Errorf("emitted %v after role deletion", col.got)
		}
	})
}

func TestDisplayName(t *testing.T) {
	tests := []struct {
		name   string
		member *discordgo.Member
		want   string
	}{
		{"nil member", nil, ""},
		{"nickname wins", &discordgo.Member{Nick: "nick", User: &discordgo.User{Username: "user"}}, "nick"},
		{"falls back to username", &discordgo.Member{User: &discordgo.User{Username: "user"}}, "user"},
		{"no user", &discordgo.Member{}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := displayName(tt.member); got != tt.want {
				t.Errorf("displayName() = %q, want %q", got, tt.want)
			}
		})
	}
}
