package github

import (
	"context"
	"encoding/json"
	"runtime"

	"github.com/gitpulse/gitpulse-mcp-server/pkg/inventory"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// ServerInfo describes the running server instance.
type ServerInfo struct {
	Name            string `json:"name"`
	Version         string `json:"version"`
	GoVersion       string `json:"go_version"`
	TokenConfigured bool   `json:"token_configured"`
}

// GetServerInfo creates a tool that reports the server name, version, and
// whether a GitHub token is configured. Useful for debugging client setups
// that unexpectedly hit anonymous rate limits.
func GetServerInfo() inventory.ServerTool {
	return NewTool(
		ToolsetMetadataContext,
		mcp.Tool{
			Name:        "get_server_info",
			Description: "Get information about this server: name, version, and whether a GitHub token is configured.",
			Annotations: &mcp.ToolAnnotations{
				Title:        "Get server info",
				ReadOnlyHint: true,
			},
			// Keep "properties" present even when empty for strict schema consumers.
			InputSchema: json.RawMessage(`{"type":"object","properties":{}}`),
		},
		func(_ context.Context, deps ToolDependencies, _ *mcp.CallToolRequest, _ map[string]any) (*mcp.CallToolResult, any, error) {
			info := ServerInfo{
				Name:            ServerName,
				Version:         deps.ServerVersion(),
				GoVersion:       runtime.Version(),
				TokenConfigured: deps.TokenConfigured(),
			}
			return MarshalledTextResult(info), nil, nil
		},
	)
}
