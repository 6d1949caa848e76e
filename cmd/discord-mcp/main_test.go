package main

import (
	"context"
	"testing"

	"github.com/ExilProductions/discord-mcp/pkg/auth"
)

func TestStdioContext(t *testing.T) {
	t.Run("configured token is carried", func(t *testing.T) {
		ctx := stdioContext(context.Background(), "stdio-bot-token")
		if got := auth.TokenFromContext(ctx); got != "stdio-bot-token" {
			t.Errorf("TokenFromContext() = %q, want %q", got, "stdio-bot-token")
		}
	})

	t.Run("empty token leaves the context bare", func(t *testing.T) {
		ctx := stdioContext(context.Background(), "")
		if got := auth.TokenFromContext(ctx); got != "" {
			t.Errorf("TokenFromContext() = %q, want empty", got)
		}
	})
}
