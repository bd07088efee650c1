package httpapi

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	gh "github.com/gitpulse/gitpulse-mcp-server/pkg/github"
	gogithub "github.com/google/go-github/v79/github"
	"github.com/stretchr/testify/require"
)

// stubTransport routes GitHub API calls to canned handlers keyed by
// "METHOD /path". Unmatched calls get a JSON 404.
type stubTransport struct {
	handlers map[string]http.HandlerFunc
}

func (s *stubTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	key := r.Method + " " + r.URL.Path
	handler, ok := s.handlers[key]
	if !ok {
		handler = func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"message":"Not Found"}`))
		}
	}
	rec := httptest.NewRecorder()
	handler(rec, r)
	return rec.Result(), nil
}

func jsonHandler(t *testing.T, status int, body any) http.HandlerFunc {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write(raw)
	}
}

func newTestServer(t *testing.T, handlers map[string]http.HandlerFunc, hasToken bool) *Server {
	t.Helper()
	httpClient := &http.Client{Transport: &stubTransport{handlers: handlers}}
	deps := gh.NewBaseDeps(gogithub.NewClient(httpClient), hasToken, "test")

	return NewServer(Config{
		Inventory: gh.NewInventory().Build(),
		Deps:      deps,
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		Version:   "test",
	})
}

func doRequest(t *testing.T, router http.Handler, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, reader)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func doRPC(t *testing.T, router http.Handler, body any) (*httptest.ResponseRecorder, jsonrpcResponse) {
	t.Helper()
	rec := doRequest(t, router, http.MethodPost, "/mcp", body)
	var resp jsonrpcResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return rec, resp
}

func rpcBody(id int, method string, params any) map[string]any {
	body := map[string]any{"jsonrpc": "2.0", "id": id, "method": method}
	if params != nil {
		body["params"] = params
	}
	return body
}

func commitFixtures() []*gogithub.RepositoryCommit {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	return []*gogithub.RepositoryCommit{
		{
			SHA: gogithub.Ptr("abc1234def"),
			Commit: &gogithub.Commit{
				Message: gogithub.Ptr("Fix flaky retry"),
				Author:  &gogithub.CommitAuthor{Name: gogithub.Ptr("alice"), Date: &gogithub.Timestamp{Time: now}},
			},
		},
	}
}
