// Package middleware provides MCP protocol-level middleware: session
// binding, request logging, and audit capture.
package middleware

import (
	"context"
	"log/slog"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/ExilProductions/discord-mcp/pkg/auth"
	"github.com/ExilProductions/discord-mcp/pkg/binder"
	"github.com/ExilProductions/discord-mcp/pkg/mcpcontext"
)

// Auth creates MCP middleware that resolves the caller's bearer credential
// to a session and binds the session id into the call's context.
//
// On initialize, a missing credential is tolerated: the call proceeds
// unauthenticated and no session is bound. On tools/call, a missing
// credential also proceeds, but handlers that need a session will fail with
// no_active_session; a present credential that fails to authenticate turns
// into an IsError tool result.
func Auth(b *binder.Binder) mcp.Middleware {
	return func(next mcp.MethodHandler) mcp.MethodHandler {
		return func(ctx context.Context, method string, req mcp.Request) (mcp.Result, error) {
			switch method {
			case "initialize":
				return handleInitialize(ctx, b, next, method, req)
			case "tools/call":
				return handleToolCall(ctx, b, next, method, req)
			default:
				return next(ctx, method, req)
			}
		}
	}
}

func handleInitialize(ctx context.Context, b *binder.Binder, next mcp.MethodHandler, method string, req mcp.Request) (mcp.Result, error) {
	if raw := auth.TokenFromContext(ctx); raw != "" {
		sessionID, err := b.Authenticate(ctx, raw)
		if err != nil {
			slog.Error("middleware: bot start failed on initialize", "error", err)
		} else {
			ctx = mcpcontext.WithSessionID(ctx, sessionID)
			slog.Info("middleware: bot started on session initialize", "session_id", sessionID)
		}
	}
	return next(ctx, method, req)
}

func handleToolCall(ctx context.Context, b *binder.Binder, next mcp.MethodHandler, method string, req mcp.Request) (mcp.Result, error) {
	raw := auth.TokenFromContext(ctx)
	if raw == "" {
		return next(ctx, method, req)
	}

	sessionID, err := b.Authenticate(ctx, raw)
	if err != nil {
		slog.Error("middleware: tool call authentication failed", "error", err)
		return &mcp.CallToolResult{
			IsError: true,
			Content: []mcp.Content{
				&mcp.TextContent{Text: "authentication failed: " + err.Error()},
			},
		}, nil
	}

	return next(mcpcontext.WithSessionID(ctx, sessionID), method, req)
}
