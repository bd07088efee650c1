package github

import (
	"context"
	"strings"
	"time"

	gperrors "github.com/gitpulse/gitpulse-mcp-server/pkg/errors"
	"github.com/gitpulse/gitpulse-mcp-server/pkg/inventory"
	"github.com/gitpulse/gitpulse-mcp-server/pkg/sanitize"
	"github.com/gitpulse/gitpulse-mcp-server/pkg/utils"
	"github.com/google/go-github/v79/github"
	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// CommitSummary is the projection of a commit returned to callers.
type CommitSummary struct {
	SHA     string `json:"sha"`
	Message string `json:"message"`
	Author  string `json:"author"`
	Date    string `json:"date"`
	URL     string `json:"url"`
}

// CommitListOptions narrows a commit listing.
type CommitListOptions struct {
	// Since restricts results to commits after this time. Zero means no lower bound.
	Since time.Time
	// PerPage is the page size, already clamped by the caller.
	PerPage int
}

// FetchCommits lists recent commits for a repository, newest first.
func FetchCommits(ctx context.Context, client *github.Client, ref RepositoryRef, opts CommitListOptions) ([]CommitSummary, error) {
	listOpts := &github.CommitsListOptions{
		ListOptions: github.ListOptions{PerPage: opts.PerPage},
	}
	if !opts.Since.IsZero() {
		listOpts.Since = opts.Since
	}

	commits, _, err := client.Repositories.ListCommits(ctx, ref.Owner, ref.Name, listOpts)
	if err != nil {
		return nil, gperrors.NewUpstreamFailure("failed to list commits", err)
	}

	summaries := make([]CommitSummary, 0, len(commits))
	for _, c := range commits {
		summaries = append(summaries, summarizeCommit(c))
	}
	return summaries, nil
}

func summarizeCommit(c *github.RepositoryCommit) CommitSummary {
	summary := CommitSummary{
		SHA: c.GetSHA(),
		URL: c.GetHTMLURL(),
	}
	if len(summary.SHA) > 7 {
		summary.SHA = summary.SHA[:7]
	}
	if commit := c.GetCommit(); commit != nil {
		// first line of the message only
		summary.Message = sanitize.StripInvisible(strings.SplitN(commit.GetMessage(), "\n", 2)[0])
		if author := commit.GetAuthor(); author != nil {
			summary.Author = author.GetName()
			if !author.GetDate().IsZero() {
				summary.Date = author.GetDate().Format(time.RFC3339)
			}
		}
	}
	if summary.Author == "" {
		summary.Author = "Unknown"
	}
	return summary
}

// ListCommits creates a tool to list recent commits for a repository.
func ListCommits() inventory.ServerTool {
	return NewTool(
		ToolsetMetadataActivity,
		mcp.Tool{
			Name:        "list_commits",
			Description: "List recent commits for a GitHub repository, newest first.",
			Annotations: &mcp.ToolAnnotations{
				Title:        "List commits",
				ReadOnlyHint: true,
			},
			InputSchema: WithPerPage(&jsonschema.Schema{
				Type: "object",
				Properties: map[string]*jsonschema.Schema{
					"repository": RepositoryParamSchema(),
					"since": {
						Type:        "string",
						Description: "Only commits after this date (ISO 8601, e.g. '2024-01-01T00:00:00Z')",
					},
				},
				Required: []string{"repository"},
			}, DefaultPerPage),
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
			since, err := OptionalParam[string](args, "since")
			if err != nil {
				return utils.NewToolResultError(err.Error()), nil, nil
			}
			perPage, err := OptionalPerPageParam(args, DefaultPerPage)
			if err != nil {
				return utils.NewToolResultError(err.Error()), nil, nil
			}

			opts := CommitListOptions{PerPage: perPage}
			if since != "" {
				t, err := time.Parse(time.RFC3339, since)
				if err != nil {
					return utils.NewToolResultErrorFromErr("invalid since parameter, expected ISO 8601 timestamp", err), nil, nil
				}
				opts.Since = t
			}

			client, err := deps.GetClient(ctx)
			if err != nil {
				return utils.NewToolResultErrorFromErr("failed to get GitHub client", err), nil, nil
			}

			commits, err := FetchCommits(ctx, client, ref, opts)
			if err != nil {
				return utils.NewToolResultError(err.Error()), nil, nil
			}

			return MarshalledTextResult(commits), nil, nil
		},
	)
}
