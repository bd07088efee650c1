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

// PullRequestSummary is the projection of a pull request returned to callers.
type PullRequestSummary struct {
	Number    int    `json:"number"`
	Title     string `json:"title"`
	State     string `json:"state"`
	Author    string `json:"author"`
	Draft     bool   `json:"draft"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
	URL       string `json:"url"`
}

// PullRequestListOptions narrows a pull request listing.
type PullRequestListOptions struct {
	// State is "open", "closed", or "all". Empty means "open".
	State string
	// PerPage is the page size, already clamped by the caller.
	PerPage int
}

// FetchPullRequests lists pull requests for a repository, newest first.
func FetchPullRequests(ctx context.Context, client *github.Client, ref RepositoryRef, opts PullRequestListOptions) ([]PullRequestSummary, error) {
	state := opts.State
	if state == "" {
		state = "open"
	}
	if state != "open" && state != "closed" && state != "all" {
		return nil, gperrors.NewInvalidInput("state must be 'open', 'closed', or 'all', got %q", state)
	}

	listOpts := &github.PullRequestListOptions{
		State:       state,
		Sort:        "created",
		Direction:   "desc",
		ListOptions: github.ListOptions{PerPage: opts.PerPage},
	}

	prs, _, err := client.PullRequests.List(ctx, ref.Owner, ref.Name, listOpts)
	if err != nil {
		return nil, gperrors.NewUpstreamFailure("failed to list pull requests", err)
	}

	summaries := make([]PullRequestSummary, 0, len(prs))
	for _, pr := range prs {
		summaries = append(summaries, summarizePullRequest(pr))
	}
	return summaries, nil
}

func summarizePullRequest(pr *github.PullRequest) PullRequestSummary {
	summary := PullRequestSummary{
		Number: pr.GetNumber(),
		Title:  sanitize.StripInvisible(pr.GetTitle()),
		State:  pr.GetState(),
		Author: pr.GetUser().GetLogin(),
		Draft:  pr.GetDraft(),
		URL:    pr.GetHTMLURL(),
	}
	if !pr.GetCreatedAt().IsZero() {
		summary.CreatedAt = pr.GetCreatedAt().Format(time.RFC3339)
	}
	if !pr.GetUpdatedAt().IsZero() {
		summary.UpdatedAt = pr.GetUpdatedAt().Format(time.RFC3339)
	}
	return summary
}

// ListPullRequests creates a tool to list pull requests for a repository.
func ListPullRequests() inventory.ServerTool {
	return NewTool(
		ToolsetMetadataActivity,
		mcp.Tool{
			Name:        "list_pull_requests",
			Description: "List pull requests for a GitHub repository, newest first.",
			Annotations: &mcp.ToolAnnotations{
				Title:        "List pull requests",
				ReadOnlyHint: true,
			},
			InputSchema: WithPerPage(&jsonschema.Schema{
				Type: "object",
				Properties: map[string]*jsonschema.Schema{
					"repository": RepositoryParamSchema(),
					"state": {
						Type:        "string",
						Description: "Filter by state (default 'open')",
						Enum:        []any{"open", "closed", "all"},
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
			state, err := OptionalParam[string](args, "state")
			if err != nil {
				return utils.NewToolResultError(err.Error()), nil, nil
			}
			perPage, err := OptionalPerPageParam(args, DefaultPerPage)
			if err != nil {
				return utils.NewToolResultError(err.Error()), nil, nil
			}

			client, err := deps.GetClient(ctx)
			if err != nil {
				return utils.NewToolResultErrorFromErr("failed to get GitHub client", err), nil, nil
			}

			prs, err := FetchPullRequests(ctx, client, ref, PullRequestListOptions{State: state, PerPage: perPage})
			if err != nil {
				return utils.NewToolResultError(err.Error()), nil, nil
			}

			return MarshalledTextResult(prs), nil, nil
		},
	)
}
