package session

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/ExilProductions/discord-mcp/pkg/discord"
	"github.com/ExilProductions/discord-mcp/pkg/errs"
)

const (
	testToken      = "token-aaaa.bbbb.cccc"
	otherTestToken = "token-dddd.eeee.ffff"
)

// newTestRegistry builds a registry whose clients never touch the network
// and give up on the ready wait almost immediately.
func newTestRegistry() *Registry {
	return NewRegistry(func(token, sessionID string) *discord.Client {
		return discord.NewClient(token, sessionID, nil,
			discord.WithReadyTimeout(5*time.Millisecond),
			discord.WithGatewayOpener(func(*discordgo.Session) error { return nil }),
		)
	})
}

func TestRegistry_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("creates a session with generated id", func(t *testing.T) {
		r := newTestRegistry()
		sess, err := r.Create(ctx, testToken)
		if err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		if sess.ID == "" {
			t.Error("session id is empty")
		}
		if sess.Token != testToken {
			t.Errorf("Token = %q, want %q", sess.Token, testToken)
		}
		if r.Len() != 1 {
			t.Errorf("Len() = %d, want 1", r.Len())
		}
	})

	t.Run("same token returns existing session", func(t *testing.T) {
		r := newTestRegistry()
		first, err := r.Create(ctx, testToken)
		if err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		second, err := r.Create(ctx, testToken)
		if err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		if first.ID != second.ID {
			t.Errorf("duplicate create ids = (%q, %q), want equal", first.ID, second.ID)
		}
		if r.Len() != 1 {
			t.Errorf("Len() = %d, want 1", r.Len())
		}
	})

	t.Run("distinct tokens get distinct sessions", func(t *testing.T) {
		r := newTestRegistry()
		a, err := r.Create(ctx, testToken)
		if err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		b, err := r.Create(ctx, otherTestToken)
		if err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		if a.ID == b.ID {
			t.Error("sessions for distinct tokens share an id")
		}
		if r.Len() != 2 {
			t.Errorf("Len() = %d, want 2", r.Len())
		}
	})

	t.Run("cancelled context aborts startup", func(t *testing.T) {
		r := newTestRegistry()
		cancelled, cancel := context.WithCancel(context.Background())
		cancel()

		if _, err := r.Create(cancelled, testToken); err == nil {
			t.Fatal("Create() expected error for cancelled context")
		}
		if r.Len() != 0 {
			t.Errorf("Len() = %d, want 0 after failed create", r.Len())
		}
	})
}

func TestRegistry_Lookup(t *testing.T) {
	ctx := context.Background()

	t.Run("get refreshes activity", func(t *testing.T) {
		r := newTestRegistry()
		sess, err := r.Create(ctx, testToken)
		if err != nil {
			t.Fatalf("Create() error = %v", err)
		}

		sess.LastActivity = time.Now().Add(-time.Hour)
		got, err := r.Get(sess.ID)
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if time.Since(got.LastActivity) > time.Minute {
			t.Error("Get() did not refresh LastActivity")
		}
	})

	t.Run("get unknown id", func(t *testing.T) {
		r := newTestRegistry()
		_, err := r.Get("missing")
		if !errs.IsKind(err, errs.KindSessionNotFound) {
			t.Errorf("error kind = %q, want session_not_found", errs.KindOf(err))
		}
	})

	t.Run("find by token", func(t *testing.T) {
		r := newTestRegistry()
		sess, err := r.Create(ctx, testToken)
		if err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		if got := r.FindByToken(testToken); got == nil || got.ID != sess.ID {
			t.Errorf("FindByToken() = %v, want session %s", got, sess.ID)
		}
		if got := r.FindByToken(otherTestToken); got != nil {
			t.Errorf("FindByToken() = %v for absent token, want nil", got)
		}
	})
}

func TestRegistry_Remove(t *testing.T) {
	ctx := context.Background()

	t.Run("removes and tears down", func(t *testing.T) {
		r := newTestRegistry()
		sess, err := r.Create(ctx, testToken)
		if err != nil {
			t.Fatalf("Create() error = %v", err)
		}

		r.Remove(sess.ID)
		if r.Len() != 0 {
			t.Errorf("Len() = %d, want 0", r.Len())
		}
		if sess.Active() {
			t.Error("session still active after Remove")
		}
	})

	t.Run("removing absent id is a no-op", func(t *testing.T) {
		r := newTestRegistry()
		r.Remove("missing")
	})
}

func TestRegistry_Sweep(t *testing.T) {
	ctx := context.Background()

	t.Run("removes only idle sessions", func(t *testing.T) {
		r := newTestRegistry()
		idle, err := r.Create(ctx, testToken)
		if err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		fresh, err := r.Create(ctx, otherTestToken)
		if err != nil {
			t.Fatalf("Create() error = %v", err)
		}

		idle.LastActivity = time.Now().Add(-10 * time.Minute)
		fresh.LastActivity = time.Now()

		if got := r.Sweep(5 * time.Minute); got != 1 {
			t.Errorf("Sweep() = %d, want 1", got)
		}
		if _, err := r.Get(idle.ID); err == nil {
			t.Error("idle session survived sweep")
		}
		if _, err := r.Get(fresh.ID); err != nil {
			t.Errorf("fresh session removed by sweep: %v", err)
		}
	})

	t.Run("session at the threshold survives", func(t *testing.T) {
		r := newTestRegistry()
		sess, err := r.Create(ctx, testToken)
		if err != nil {
			t.Fatalf("Create() error = %v", err)
		}

		// Just inside the window: not strictly before the cutoff.
		sess.LastActivity = time.Now().Add(-5*time.Minute + time.Second)
		if got := r.Sweep(5 * time.Minute); got != 0 {
			t.Errorf("Sweep() = %d, want 0", got)
		}
	})
}

func TestRegistry_Sweeper(t *testing.T) {
	r := newTestRegistry()
	sess, err := r.Create(context.Background(), testToken)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	sess.LastActivity = time.Now().Add(-time.Hour)

	r.StartSweeper(10*time.Millisecond, 5*time.Minute)
	defer func() { _ = r.Close() }()

	deadline := time.After(time.Second)
	for r.Len() > 0 {
		select {
		case <-deadline:
			t.Fatal("sweeper did not remove the idle session")
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestRegistry_Close(t *testing.T) {
	r := newTestRegistry()
	if _, err := r.Create(context.Background(), testToken); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	r.StartSweeper(time.Minute, time.Minute)

	if err := r.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if r.Len() != 0 {
		t.Errorf("Len() = %d after Close, want 0", r.Len())
	}
}

func TestListSummaries(t *testing.T) {
	ctx := context.Background()
	r := newTestRegistry()

	if got := r.ListSummaries(); len(got) != 0 {
		t.Errorf("ListSummaries() len = %d on empty registry, want 0", len(got))
	}

	sess, err := r.Create(ctx, testToken)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	summaries := r.ListSummaries()
	if len(summaries) != 1 {
		t.Fatalf("ListSummaries() len = %d, want 1", len(summaries))
	}
	s := summaries[0]
	if s.SessionID != sess.ID {
		t.Errorf("SessionID = %q, want %q", s.SessionID, sess.ID)
	}
	// The test client never reaches the gateway.
	if s.IsActive {
		t.Error("IsActive = true for a connectionless client")
	}
	if s.Error != "" {
		t.Errorf("Error = %q, want empty", s.Error)
	}
}
