package mcpcontext

import (
	"context"
	"testing"
)

func TestSessionID(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		ctx := WithSessionID(context.Background(), "sess-1")
		if got := SessionID(ctx); got != "sess-1" {
			t.Errorf("SessionID() = %q, want sess-1", got)
		}
	})

	t.Run("unbound context", func(t *testing.T) {
		if got := SessionID(context.Background()); got != "" {
			t.Errorf("SessionID() = %q, want empty", got)
		}
	})

	t.Run("sibling contexts stay isolated", func(t *testing.T) {
		base := context.Background()
		a := WithSessionID(base, "sess-a")
		b := WithSessionID(base, "sess-b")

		if SessionID(a) != "sess-a" || SessionID(b) != "sess-b" {
			t.Errorf("sibling bindings = (%q, %q)", SessionID(a), SessionID(b))
		}
		if SessionID(base) != "" {
			t.Error("base context gained a binding")
		}
	})
}
