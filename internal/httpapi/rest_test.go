package httpapi

import (
	"encoding/json"
	"net/http"
	"testing"

	gogithub "github.com/google/go-github/v79/github"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeAPIResponse(t *testing.T, raw []byte) apiResponse {
	t.Helper()
	var resp apiResponse
	require.NoError(t, json.Unmarshal(raw, &resp))
	return resp
}

func TestAPICommits(t *testing.T) {
	t.Run("success with clamped per_page", func(t *testing.T) {
		handlers := map[string]http.HandlerFunc{
			"GET /repos/owner/repo/commits": func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "100", r.URL.Query().Get("per_page"))
				jsonHandler(t, http.StatusOK, commitFixtures())(w, r)
			},
		}
		router := newTestServer(t, handlers, false).Router()

		rec := doRequest(t, router, http.MethodPost, "/api/commits", map[string]any{
			"repository": "owner/repo",
			"per_page":   500,
		})
		assert.Equal(t, http.StatusOK, rec.Code)

		resp := decodeAPIResponse(t, rec.Body.Bytes())
		assert.True(t, resp.Success)
		assert.Equal(t, http.StatusOK, resp.Status)
		assert.Equal(t, "commits", resp.Action)
		assert.NotEmpty(t, resp.Timestamp)
		assert.Empty(t, resp.Error)

		data, ok := resp.Data.([]any)
		require.True(t, ok)
		require.Len(t, data, 1)
		commit, ok := data[0].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "abc1234", commit["sha"])
	})

	t.Run("invalid since", func(t *testing.T) {
		router := newTestServer(t, nil, false).Router()

		rec := doRequest(t, router, http.MethodPost, "/api/commits", map[string]any{
			"repository": "owner/repo",
			"since":      "yesterday",
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		resp := decodeAPIResponse(t, rec.Body.Bytes())
		assert.False(t, resp.Success)
		assert.Contains(t, resp.Error, "invalid since parameter")
	})
}

func TestAPIIssuesForwardsFilters(t *testing.T) {
	handlers := map[string]http.HandlerFunc{
		"GET /repos/owner/repo/issues": func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "closed", r.URL.Query().Get("state"))
			assert.Equal(t, "bug,regression", r.URL.Query().Get("labels"))
			jsonHandler(t, http.StatusOK, []*gogithub.Issue{})(w, r)
		},
	}
	router := newTestServer(t, handlers, false).Router()

	rec := doRequest(t, router, http.MethodPost, "/api/issues", map[string]any{
		"repository": "owner/repo",
		"state":      "closed",
		"labels":     "bug, regression",
	})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decodeAPIResponse(t, rec.Body.Bytes()).Success)
}

func TestAPIRepoInfo(t *testing.T) {
	handlers := map[string]http.HandlerFunc{
		"GET /repos/owner/repo": jsonHandler(t, http.StatusOK, &gogithub.Repository{
			FullName:        gogithub.Ptr("owner/repo"),
			StargazersCount: gogithub.Ptr(42),
		}),
	}
	router := newTestServer(t, handlers, false).Router()

	rec := doRequest(t, router, http.MethodPost, "/api/repo-info", map[string]any{
		"repository": "owner/repo",
	})
	assert.Equal(t, http.StatusOK, rec.Code)

	resp := decodeAPIResponse(t, rec.Body.Bytes())
	require.True(t, resp.Success)
	info, ok := resp.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "owner/repo", info["full_name"])
	assert.Equal(t, float64(42), info["stars"])
}

func TestAPIInvalidRepository(t *testing.T) {
	router := newTestServer(t, nil, false).Router()

	rec := doRequest(t, router, http.MethodPost, "/api/prs", map[string]any{
		"repository": "not-a-repo",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	resp := decodeAPIResponse(t, rec.Body.Bytes())
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Error, "owner/repo")
}

func TestAPIUnknownAction(t *testing.T) {
	router := newTestServer(t, nil, false).Router()

	rec := doRequest(t, router, http.MethodPost, "/api/explode", map[string]any{
		"repository": "owner/repo",
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	resp := decodeAPIResponse(t, rec.Body.Bytes())
	assert.False(t, resp.Success)
	assert.Equal(t, "explode", resp.Action)
	assert.Contains(t, resp.Error, "valid actions")
}

func TestAPIUpstreamFailure(t *testing.T) {
	handlers := map[string]http.HandlerFunc{
		"GET /repos/owner/repo/releases": jsonHandler(t, http.StatusInternalServerError, map[string]string{"message": "boom"}),
	}
	router := newTestServer(t, handlers, false).Router()

	rec := doRequest(t, router, http.MethodPost, "/api/releases", map[string]any{
		"repository": "owner/repo",
	})
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.False(t, decodeAPIResponse(t, rec.Body.Bytes()).Success)
}

func TestAPIRepositoryNotFound(t *testing.T) {
	// no handler registered, so the stub replies with GitHub's JSON 404
	router := newTestServer(t, nil, false).Router()

	rec := doRequest(t, router, http.MethodPost, "/api/repo-info", map[string]any{
		"repository": "owner/missing",
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.False(t, decodeAPIResponse(t, rec.Body.Bytes()).Success)
}

func TestAPIMalformedBody(t *testing.T) {
	router := newTestServer(t, nil, false).Router()

	rec := doRequest(t, router, http.MethodPost, "/api/commits", "{broken")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeAPIResponse(t, rec.Body.Bytes()).Error, "invalid request body")
}
