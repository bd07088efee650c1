package httpapi

import (
	"encoding/json"
	"net/http"
	"testing"

	gperrors "github.com/gitpulse/gitpulse-mcp-server/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONRPCPing(t *testing.T) {
	router := newTestServer(t, nil, false).Router()

	// both JSON-RPC paths share one dispatcher
	for _, path := range []string{"/", "/mcp"} {
		rec := doRequest(t, router, http.MethodPost, path, rpcBody(1, "ping", nil))
		assert.Equal(t, http.StatusOK, rec.Code)

		var resp jsonrpcResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Nil(t, resp.Error)
		assert.Equal(t, "1", string(resp.ID))
		assert.Equal(t, map[string]any{}, resp.Result)
	}
}

func TestJSONRPCInitialize(t *testing.T) {
	router := newTestServer(t, nil, false).Router()

	_, resp := doRPC(t, router, rpcBody(1, "initialize", map[string]any{}))
	require.Nil(t, resp.Error)

	result, ok := resp.Result.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, protocolVersion, result["protocolVersion"])

	serverInfo, ok := result["serverInfo"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "gitpulse-mcp-server", serverInfo["name"])
	assert.Equal(t, "test", serverInfo["version"])
}

func TestJSONRPCUnknownMethod(t *testing.T) {
	router := newTestServer(t, nil, false).Router()

	_, resp := doRPC(t, router, rpcBody(7, "tools/destroy", nil))
	require.NotNil(t, resp.Error)
	assert.Equal(t, gperrors.CodeMethodNotFound, resp.Error.Code)
	assert.Contains(t, resp.Error.Message, "tools/destroy")
	assert.Equal(t, "7", string(resp.ID))
}

func TestJSONRPCMalformedBody(t *testing.T) {
	router := newTestServer(t, nil, false).Router()

	rec, resp := doRPC(t, router, "{not json")
	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, resp.Error)
	assert.Equal(t, gperrors.CodeInvalidRequest, resp.Error.Code)
}

func TestJSONRPCWrongVersion(t *testing.T) {
	router := newTestServer(t, nil, false).Router()

	_, resp := doRPC(t, router, map[string]any{"jsonrpc": "1.0", "id": 1, "method": "ping"})
	require.NotNil(t, resp.Error)
	assert.Equal(t, gperrors.CodeInvalidRequest, resp.Error.Code)
}

func TestJSONRPCNotification(t *testing.T) {
	router := newTestServer(t, nil, false).Router()

	rec := doRequest(t, router, http.MethodPost, "/mcp", map[string]any{
		"jsonrpc": "2.0",
		"method":  "notifications/initialized",
	})
	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestJSONRPCToolsList(t *testing.T) {
	router := newTestServer(t, nil, false).Router()

	_, resp := doRPC(t, router, rpcBody(2, "tools/list", nil))
	require.Nil(t, resp.Error)

	result, ok := resp.Result.(map[string]any)
	require.True(t, ok)
	tools, ok := result["tools"].([]any)
	require.True(t, ok)
	require.NotEmpty(t, tools)

	names := make([]string, 0, len(tools))
	for _, raw := range tools {
		tool, ok := raw.(map[string]any)
		require.True(t, ok)
		names = append(names, tool["name"].(string))
	}
	assert.Contains(t, names, "list_commits")
	assert.Contains(t, names, "get_repository_info")
	assert.Contains(t, names, "add_issue_comment")
}

func TestJSONRPCToolsCall(t *testing.T) {
	handlers := map[string]http.HandlerFunc{
		"GET /repos/owner/repo/commits": jsonHandler(t, http.StatusOK, commitFixtures()),
	}
	router := newTestServer(t, handlers, false).Router()

	_, resp := doRPC(t, router, rpcBody(3, "tools/call", map[string]any{
		"name":      "list_commits",
		"arguments": map[string]any{"repository": "owner/repo"},
	}))
	require.Nil(t, resp.Error)

	result, ok := resp.Result.(map[string]any)
	require.True(t, ok)
	content, ok := result["content"].([]any)
	require.True(t, ok)
	require.Len(t, content, 1)

	text, ok := content[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "text", text["type"])
	assert.Contains(t, text["text"].(string), "abc1234")
}

func TestJSONRPCToolsCallUnknownTool(t *testing.T) {
	router := newTestServer(t, nil, false).Router()

	_, resp := doRPC(t, router, rpcBody(4, "tools/call", map[string]any{"name": "drop_database"}))
	require.NotNil(t, resp.Error)
	assert.Equal(t, gperrors.CodeMethodNotFound, resp.Error.Code)
	assert.Contains(t, resp.Error.Message, "drop_database")
}

func TestJSONRPCResourcesList(t *testing.T) {
	router := newTestServer(t, nil, false).Router()

	_, resp := doRPC(t, router, rpcBody(5, "resources/list", nil))
	require.Nil(t, resp.Error)

	result, ok := resp.Result.(map[string]any)
	require.True(t, ok)
	templates, ok := result["resourceTemplates"].([]any)
	require.True(t, ok)
	require.Len(t, templates, 1)

	template, ok := templates[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "gitpulse://activity/{owner}/{repo}", template["uriTemplate"])
}

func TestJSONRPCResourcesRead(t *testing.T) {
	handlers := map[string]http.HandlerFunc{
		"GET /repos/owner/repo/commits":  jsonHandler(t, http.StatusOK, commitFixtures()),
		"GET /repos/owner/repo/pulls":    jsonHandler(t, http.StatusOK, []any{}),
		"GET /repos/owner/repo/issues":   jsonHandler(t, http.StatusOK, []any{}),
		"GET /repos/owner/repo/releases": jsonHandler(t, http.StatusOK, []any{}),
	}
	router := newTestServer(t, handlers, false).Router()

	_, resp := doRPC(t, router, rpcBody(6, "resources/read", map[string]any{
		"uri": "gitpulse://activity/owner/repo",
	}))
	require.Nil(t, resp.Error)

	result, ok := resp.Result.(map[string]any)
	require.True(t, ok)
	contents, ok := result["contents"].([]any)
	require.True(t, ok)
	require.Len(t, contents, 1)

	entry, ok := contents[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "gitpulse://activity/owner/repo", entry["uri"])
	assert.Contains(t, entry["text"].(string), "# Repository Activity: owner/repo")
}

func TestJSONRPCResourcesReadUnmatchedURI(t *testing.T) {
	router := newTestServer(t, nil, false).Router()

	_, resp := doRPC(t, router, rpcBody(6, "resources/read", map[string]any{
		"uri": "gitpulse://nothing/here",
	}))
	require.NotNil(t, resp.Error)
	assert.Equal(t, gperrors.CodeInvalidRequest, resp.Error.Code)
}

func TestJSONRPCPrompts(t *testing.T) {
	router := newTestServer(t, nil, false).Router()

	_, resp := doRPC(t, router, rpcBody(8, "prompts/list", nil))
	require.Nil(t, resp.Error)
	result, ok := resp.Result.(map[string]any)
	require.True(t, ok)
	prompts, ok := result["prompts"].([]any)
	require.True(t, ok)
	require.Len(t, prompts, 1)

	_, resp = doRPC(t, router, rpcBody(9, "prompts/get", map[string]any{
		"name":      "repository_monitoring_plan",
		"arguments": map[string]string{"repositories": "golang/go"},
	}))
	require.Nil(t, resp.Error)
	result, ok = resp.Result.(map[string]any)
	require.True(t, ok)
	messages, ok := result["messages"].([]any)
	require.True(t, ok)
	require.Len(t, messages, 1)
}

func TestJSONRPCPromptsGetUnknown(t *testing.T) {
	router := newTestServer(t, nil, false).Router()

	_, resp := doRPC(t, router, rpcBody(10, "prompts/get", map[string]any{"name": "nope"}))
	require.NotNil(t, resp.Error)
	assert.Equal(t, gperrors.CodeInvalidRequest, resp.Error.Code)
}
