package auth

import (
	"context"
	"testing"

	"github.com/ExilProductions/discord-mcp/pkg/errs"
)

const rawToken = "MTAxOTkz.fake.token"

func TestExtractToken(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"bearer prefix", "Bearer " + rawToken, rawToken, false},
		{"bot prefix", "Bot " + rawToken, rawToken, false},
		{"no prefix", rawToken, rawToken, false},
		{"surrounding whitespace", "  Bearer " + rawToken + "  ", rawToken, false},
		{"empty", "", "", true},
		{"prefix only", "Bearer ", "", true},
		{"bot prefix only", "Bot ", "", true},
		{"prefix then whitespace", "Bearer    ", "", true},
		{"whitespace only", "   ", "", true},
		{"lowercase prefix passes through", "bearer " + rawToken, "bearer " + rawToken, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractToken(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatal("ExtractToken() expected error")
				}
				if !errs.IsKind(err, errs.KindAuthenticationFailed) {
					t.Errorf("error kind = %q, want authentication_failed", errs.KindOf(err))
				}
				return
			}
			if err != nil {
				t.Fatalf("ExtractToken() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("ExtractToken() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTokenContext(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		ctx := WithToken(context.Background(), rawToken)
		if got := TokenFromContext(ctx); got != rawToken {
			t.Errorf("TokenFromContext() = %q, want %q", got, rawToken)
		}
	})

	t.Run("unset context", func(t *testing.T) {
		if got := TokenFromContext(context.Background()); got != "" {
			t.Errorf("TokenFromContext() = %q, want empty", got)
		}
	})
}
