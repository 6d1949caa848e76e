package middleware

import (
	"context"
	"encoding/json"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/ExilProductions/discord-mcp/pkg/audit"
	"github.com/ExilProductions/discord-mcp/pkg/mcpcontext"
)

// Audit creates MCP middleware that records every tools/call invocation.
// Events are logged asynchronously so a slow sink never delays responses.
func Audit(logger audit.Logger) mcp.Middleware {
	return func(next mcp.MethodHandler) mcp.MethodHandler {
		return func(ctx context.Context, method string, req mcp.Request) (mcp.Result, error) {
			if method != methodToolsCall {
				return next(ctx, method, req)
			}

			start := time.Now()
			result, err := next(ctx, method, req)

			event := buildAuditEvent(ctx, req, result, err, start)
			go func() {
				_ = logger.Log(context.Background(), event)
			}()

			return result, err
		}
	}
}

func buildAuditEvent(ctx context.Context, req mcp.Request, result mcp.Result, err error, start time.Time) audit.Event {
	event := audit.NewEvent(toolName(req))
	event.Timestamp = start
	event.DurationMS = time.Since(start).Milliseconds()
	event.SessionID = mcpcontext.SessionID(ctx)
	event.Parameters = extractParameters(req)

	event.Success = err == nil
	if err != nil {
		event.ErrorMessage = err.Error()
	} else if callResult, ok := result.(*mcp.CallToolResult); ok && callResult != nil && callResult.IsError {
		event.Success = false
		event.ErrorMessage = firstText(callResult)
	}
	return event
}

func extractParameters(req mcp.Request) map[string]any {
	params, ok := req.GetParams().(*mcp.CallToolParamsRaw)
	if !ok || params == nil || len(params.Arguments) == 0 {
		return nil
	}
	var out map[string]any
	if err := json.Unmarshal(params.Arguments, &out); err != nil {
		return nil
	}
	return out
}

func firstText(result *mcp.CallToolResult) string {
	for _, content := range result.Content {
		if text, ok := content.(*mcp.TextContent); ok {
			return text.Text
		}
	}
	return ""
}
