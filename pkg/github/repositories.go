package github

import (
	"context"
	"time"

	gperrors "github.com/gitpulse/gitpulse-mcp-server/pkg/errors"
	"github.com/gitpulse/gitpulse-mcp-server/pkg/inventory"
	"github.com/gitpulse/gitpulse-mcp-server/pkg/sanitize"
	"github.com/gitpulse/gitpulse-mcp-server/pkg/utils"
	"github.com/google/go-github/v79/github"
	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// RepositoryInfo is the projection of repository metadata returned to callers.
type RepositoryInfo struct {
	FullName      string   `json:"full_name"`
	Description   string   `json:"description"`
	Language      string   `json:"language"`
	Stars         int      `json:"stars"`
	Forks         int      `json:"forks"`
	Watchers      int      `json:"watchers"`
	OpenIssues    int      `json:"open_issues"`
	DefaultBranch string   `json:"default_branch"`
	Topics        []string `json:"topics,omitempty"`
	License       string   `json:"license,omitempty"`
	Archived      bool     `json:"archived"`
	Homepage      string   `json:"homepage,omitempty"`
	CreatedAt     string   `json:"created_at,omitempty"`
	UpdatedAt     string   `json:"updated_at,omitempty"`
	PushedAt      string   `json:"pushed_at,omitempty"`
	URL           string   `json:"url"`
}

// FetchRepositoryInfo returns the metadata projection for a repository.
// Missing description and language get readable placeholders.
func FetchRepositoryInfo(ctx context.Context, client *github.Client, ref RepositoryRef) (*RepositoryInfo, error) {
	repo, _, err := client.Repositories.Get(ctx, ref.Owner, ref.Name)
	if err != nil {
		return nil, gperrors.NewUpstreamFailure("failed to get repository", err)
	}

	info := &RepositoryInfo{
		FullName:      repo.GetFullName(),
		Description:   sanitize.StripInvisible(repo.GetDescription()),
		Language:      repo.GetLanguage(),
		Stars:         repo.GetStargazersCount(),
		Forks:         repo.GetForksCount(),
		Watchers:      repo.GetSubscribersCount(),
		OpenIssues:    repo.GetOpenIssuesCount(),
		DefaultBranch: repo.GetDefaultBranch(),
		Topics:        repo.Topics,
		Archived:      repo.GetArchived(),
		Homepage:      repo.GetHomepage(),
		URL:           repo.GetHTMLURL(),
	}
	if info.Description == "" {
		info.Description = "No description"
	}
	if info.Language == "" {
		info.Language = "Not specified"
	}
	if license := repo.GetLicense(); license != nil {
		info.License = license.GetName()
	}
	if !repo.GetCreatedAt().IsZero() {
		info.CreatedAt = repo.GetCreatedAt().Format(time.RFC3339)
	}
	if !repo.GetUpdatedAt().IsZero() {
		info.UpdatedAt = repo.GetUpdatedAt().Format(time.RFC3339)
	}
	if !repo.GetPushedAt().IsZero() {
		info.PushedAt = repo.GetPushedAt().Format(time.RFC3339)
	}
	return info, nil
}

// GetRepositoryInfo creates a tool to get repository metadata.
func GetRepositoryInfo() inventory.ServerTool {
	return NewTool(
		ToolsetMetadataActivity,
		mcp.Tool{
			Name:        "get_repository_info",
			Description: "Get metadata for a GitHub repository: description, language, stars, forks, open issues, and more.",
			Annotations: &mcp.ToolAnnotations{
				Title:        "Get repository info",
				ReadOnlyHint: true,
			},
			InputSchema: &jsonschema.Schema{
				Type: "object",
				Properties: map[string]*jsonschema.Schema{
					"repository": RepositoryParamSchema(),
				},
				Required: []string{"repository"},
			},
		},
		func(ctx context.Context, deps ToolDependencies, _ *mcp.CallToolRequest, args map[string]any) (*mcp.CallToolResult, any, error) {
			repository, err := RequiredParam[string](args, "repository")
			if err != nil {
				return utils.NewToolResultError(err.Error()), nil, nil
			}
			ref, err := ParseRepository(repository)
			if err != nil {
				return utils.NewToolResultError(err.Error()), nil, nil
			}

			client, err := deps.GetClient(ctx)
			if err != nil {
				return utils.NewToolResultErrorFromErr("failed to get GitHub client", err), nil, nil
			}

			info, err := FetchRepositoryInfo(ctx, client, ref)
			if err != nil {
				return utils.NewToolResultError(err.Error()), nil, nil
			}

			return MarshalledTextResult(info), nil, nil
		},
	)
}
