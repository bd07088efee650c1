package github

import (
	"encoding/json"
	"net/http"
	"testing"

	gogithub "github.com/google/go-github/v79/github"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetRepositoryInfo(t *testing.T) {
	tool := GetRepositoryInfo()
	assert.Equal(t, "get_repository_info", tool.Tool.Name)
	assert.True(t, tool.IsReadOnly())

	t.Run("success", func(t *testing.T) {
		repo := &gogithub.Repository{
			FullName:        gogithub.Ptr("owner/repo"),
			Description:     gogithub.Ptr("A monitoring playground"),
			Language:        gogithub.Ptr("Go"),
			StargazersCount: gogithub.Ptr(420),
			ForksCount:      gogithub.Ptr(37),
			OpenIssuesCount: gogithub.Ptr(12),
			DefaultBranch:   gogithub.Ptr("main"),
			Topics:          []string{"monitoring", "mcp"},
			License:         &gogithub.License{Name: gogithub.Ptr("MIT License")},
			HTMLURL:         gogithub.Ptr("https://github.com/owner/repo"),
		}
		client := MockHTTPClientWithHandlers(map[string]http.HandlerFunc{
			GetReposByOwnerByRepo: mockResponse(t, http.StatusOK, repo),
		})
		handler := tool.Handler(nil)
		request := createMCPRequest(map[string]any{"repository": "owner/repo"})

		result, err := handler(testContext(testDeps(client, false)), &request)
		require.NoError(t, err)
		text := getTextResult(t, result)

		var info RepositoryInfo
		require.NoError(t, json.Unmarshal([]byte(text.Text), &info))
		assert.Equal(t, "owner/repo", info.FullName)
		assert.Equal(t, "A monitoring playground", info.Description)
		assert.Equal(t, "Go", info.Language)
		assert.Equal(t, 420, info.Stars)
		assert.Equal(t, "MIT License", info.License)
		assert.Equal(t, []string{"monitoring", "mcp"}, info.Topics)
	})

	t.Run("placeholders for missing fields", func(t *testing.T) {
		repo := &gogithub.Repository{
			FullName: gogithub.Ptr("owner/bare"),
		}
		client := MockHTTPClientWithHandlers(map[string]http.HandlerFunc{
			GetReposByOwnerByRepo: mockResponse(t, http.StatusOK, repo),
		})
		handler := tool.Handler(nil)
		request := createMCPRequest(map[string]any{"repository": "owner/bare"})

		result, err := handler(testContext(testDeps(client, false)), &request)
		require.NoError(t, err)
		text := getTextResult(t, result)

		var info RepositoryInfo
		require.NoError(t, json.Unmarshal([]byte(text.Text), &info))
		assert.Equal(t, "No description", info.Description)
		assert.Equal(t, "Not specified", info.Language)
	})

	t.Run("not found", func(t *testing.T) {
		client := MockHTTPClientWithHandlers(map[string]http.HandlerFunc{
			GetReposByOwnerByRepo: mockResponse(t, http.StatusNotFound, map[string]string{"message": "Not Found"}),
		})
		handler := tool.Handler(nil)
		request := createMCPRequest(map[string]any{"repository": "owner/missing"})

		result, err := handler(testContext(testDeps(client, false)), &request)
		require.NoError(t, err)
		text := getErrorResult(t, result)
		assert.Contains(t, text.Text, "failed to get repository")
	})
}
