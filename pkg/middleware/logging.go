package middleware

import (
	"context"
	"log/slog"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/ExilProductions/discord-mcp/pkg/mcpcontext"
)

const methodToolsCall = "tools/call"

// Logging creates MCP middleware that logs every tool call with its bound
// session and duration.
func Logging() mcp.Middleware {
	return func(next mcp.MethodHandler) mcp.MethodHandler {
		return func(ctx context.Context, method string, req mcp.Request) (mcp.Result, error) {
			if method != methodToolsCall {
				return next(ctx, method, req)
			}

			start := time.Now()
			result, err := next(ctx, method, req)

			attrs := []any{
				"tool", toolName(req),
				"session_id", mcpcontext.SessionID(ctx),
				"duration_ms", time.Since(start).Milliseconds(),
			}
			if err != nil {
				slog.Error("tool call failed", append(attrs, "error", err)...)
			} else {
				slog.Info("tool call", attrs...)
			}
			return result, err
		}
	}
}

// toolName extracts the tool name from a tools/call request, or "".
func toolName(req mcp.Request) string {
	params, ok := req.GetParams().(*mcp.CallToolParamsRaw)
	if !ok || params == nil {
		return ""
	}
	return params.Name
}
