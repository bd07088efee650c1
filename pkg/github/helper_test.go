package github

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"

	gogithub "github.com/google/go-github/v79/github"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// GitHub API endpoint patterns used in HTTP mocking for tests.
const (
	GetReposByOwnerByRepo                             = "GET /repos/{owner}/{repo}"
	GetReposCommitsByOwnerByRepo                      = "GET /repos/{owner}/{repo}/commits"
	GetReposPullsByOwnerByRepo                        = "GET /repos/{owner}/{repo}/pulls"
	GetReposIssuesByOwnerByRepo                       = "GET /repos/{owner}/{repo}/issues"
	GetReposIssuesByOwnerByRepoByIssueNumber          = "GET /repos/{owner}/{repo}/issues/{issue_number}"
	GetReposIssuesCommentsByOwnerByRepoByIssueNumber  = "GET /repos/{owner}/{repo}/issues/{issue_number}/comments"
	PostReposIssuesCommentsByOwnerByRepoByIssueNumber = "POST /repos/{owner}/{repo}/issues/{issue_number}/comments"
	PatchReposIssuesCommentsByOwnerByRepoByCommentID  = "PATCH /repos/{owner}/{repo}/issues/comments/{comment_id}"
	GetReposReleasesByOwnerByRepo                     = "GET /repos/{owner}/{repo}/releases"
	GetReposActionsRunsByOwnerByRepo                  = "GET /repos/{owner}/{repo}/actions/runs"
)

// mockResponse creates a handler that returns a status code and marshaled body.
func mockResponse(t *testing.T, code int, body interface{}) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(code)
		s, ok := body.(string)
		if ok {
			_, _ = w.Write([]byte(s))
			return
		}

		b, err := json.Marshal(body)
		require.NoError(t, err)
		_, _ = w.Write(b)
	}
}

// expectQueryParams creates a partial mock asserting on request query
// parameters, with the ability to chain a response handler.
func expectQueryParams(t *testing.T, expected map[string]string) *partialMock {
	return &partialMock{t: t, expectedQueryParams: expected}
}

type partialMock struct {
	t                   *testing.T
	expectedQueryParams map[string]string
}

func (p *partialMock) andThen(responseHandler http.HandlerFunc) http.HandlerFunc {
	p.t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		for k, v := range p.expectedQueryParams {
			require.Equal(p.t, v, r.URL.Query().Get(k))
		}
		responseHandler(w, r)
	}
}

// createMCPRequest creates an MCP call request with the given arguments.
func createMCPRequest(args any) mcp.CallToolRequest {
	argsMap, ok := args.(map[string]interface{})
	if !ok {
		argsMap = make(map[string]interface{})
	}

	argsJSON, err := json.Marshal(argsMap)
	if err != nil {
		return mcp.CallToolRequest{}
	}

	return mcp.CallToolRequest{
		Params: &mcp.CallToolParamsRaw{
			Arguments: json.RawMessage(argsJSON),
		},
	}
}

// getTextResult returns the text content of a tool call result.
func getTextResult(t *testing.T, result *mcp.CallToolResult) *mcp.TextContent {
	t.Helper()
	assert.NotNil(t, result)
	require.Len(t, result.Content, 1)
	textContent, ok := result.Content[0].(*mcp.TextContent)
	require.True(t, ok, "expected content to be of type TextContent")
	return textContent
}

func getErrorResult(t *testing.T, result *mcp.CallToolResult) *mcp.TextContent {
	res := getTextResult(t, result)
	require.True(t, result.IsError, "expected tool call result to be an error")
	return res
}

// responseRecorder is a simple response recorder for the mock transport.
type responseRecorder struct {
	statusCode int
	header     http.Header
	body       *bytes.Buffer
}

func (r *responseRecorder) Header() http.Header { return r.header }

func (r *responseRecorder) Write(data []byte) (int, error) {
	if r.statusCode == 0 {
		r.statusCode = http.StatusOK
	}
	return r.body.Write(data)
}

func (r *responseRecorder) WriteHeader(statusCode int) { r.statusCode = statusCode }

func executeHandler(handler http.HandlerFunc, req *http.Request) *http.Response {
	recorder := &responseRecorder{
		header: make(http.Header),
		body:   &bytes.Buffer{},
	}
	handler(recorder, req)

	return &http.Response{
		StatusCode: recorder.statusCode,
		Header:     recorder.header,
		Body:       io.NopCloser(bytes.NewReader(recorder.body.Bytes())),
		Request:    req,
	}
}

// MockHTTPClientWithHandlers creates an HTTP client whose transport routes
// requests to handlers keyed by "METHOD /path/{param}" patterns.
func MockHTTPClientWithHandlers(handlers map[string]http.HandlerFunc) *http.Client {
	return &http.Client{Transport: &multiHandlerTransport{handlers: handlers}}
}

type multiHandlerTransport struct {
	handlers map[string]http.HandlerFunc
}

func (m *multiHandlerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	key := req.Method + " " + req.URL.Path
	if handler, ok := m.handlers[key]; ok {
		return executeHandler(handler, req), nil
	}

	for pattern, handler := range m.handlers {
		parts := strings.SplitN(pattern, " ", 2)
		if len(parts) != 2 || req.Method != parts[0] {
			continue
		}
		if matchPath(parts[1], req.URL.Path) {
			return executeHandler(handler, req), nil
		}
	}

	return &http.Response{
		StatusCode: http.StatusNotFound,
		Body:       io.NopCloser(bytes.NewReader([]byte(`{"message":"Not Found"}`))),
		Request:    req,
	}, nil
}

// matchPath checks if a request path matches a pattern with {param} segments.
func matchPath(pattern, path string) bool {
	patternParts := strings.Split(strings.Trim(pattern, "/"), "/")
	pathParts := strings.Split(strings.Trim(path, "/"), "/")

	if len(patternParts) != len(pathParts) {
		return false
	}

	for i := range patternParts {
		if strings.HasPrefix(patternParts[i], "{") && strings.HasSuffix(patternParts[i], "}") {
			continue
		}
		if patternParts[i] != pathParts[i] {
			return false
		}
	}

	return true
}

// testDeps builds ToolDependencies around a mocked HTTP client, matching
// how the servers build deps at startup.
func testDeps(client *http.Client, hasToken bool) ToolDependencies {
	return NewBaseDeps(gogithub.NewClient(client), hasToken, "test")
}

// testContext injects deps the way the servers do before dispatching.
func testContext(deps ToolDependencies) context.Context {
	return ContextWithDeps(context.Background(), deps)
}
