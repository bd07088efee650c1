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

// IssueSummary is the projection of an issue returned by listings.
type IssueSummary struct {
	Number    int      `json:"number"`
	Title     string   `json:"title"`
	State     string   `json:"state"`
	Author    string   `json:"author"`
	Labels    []string `json:"labels"`
	Comments  int      `json:"comments"`
	CreatedAt string   `json:"created_at"`
	UpdatedAt string   `json:"updated_at"`
	URL       string   `json:"url"`
}

// IssueDetails is the full projection of a single issue.
type IssueDetails struct {
	IssueSummary
	Body      string   `json:"body"`
	Assignees []string `json:"assignees"`
	Milestone string   `json:"milestone,omitempty"`
	Locked    bool     `json:"locked"`
	ClosedAt  string   `json:"closed_at,omitempty"`
}

// IssueCommentSummary is the projection of an issue comment.
type IssueCommentSummary struct {
	ID        int64  `json:"id"`
	Author    string `json:"author"`
	Body      string `json:"body"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
	URL       string `json:"url"`
}

// IssueListOptions narrows an issue listing.
type IssueListOptions struct {
	// State is "open", "closed", or "all". Empty means "open".
	State string
	// Labels restricts results to issues carrying all of these labels.
	Labels []string
	// PerPage is the page size, already clamped by the caller.
	PerPage int
}

// FetchIssues lists issues for a repository, newest first. The GitHub
// issues endpoint also returns pull requests; those are filtered out here,
// so a page may contain fewer entries than requested.
func FetchIssues(ctx context.Context, client *github.Client, ref RepositoryRef, opts IssueListOptions) ([]IssueSummary, error) {
	state := opts.State
	if state == "" {
		state = "open"
	}
	if state != "open" && state != "closed" && state != "all" {
		return nil, gperrors.NewInvalidInput("state must be 'open', 'closed', or 'all', got %q", state)
	}

	listOpts := &github.IssueListByRepoOptions{
		State:       state,
		Labels:      opts.Labels,
		Sort:        "created",
		Direction:   "desc",
		ListOptions: github.ListOptions{PerPage: opts.PerPage},
	}

	issues, _, err := client.Issues.ListByRepo(ctx, ref.Owner, ref.Name, listOpts)
	if err != nil {
		return nil, gperrors.NewUpstreamFailure("failed to list issues", err)
	}

	summaries := make([]IssueSummary, 0, len(issues))
	for _, issue := range issues {
		if issue.IsPullRequest() {
			continue
		}
		summaries = append(summaries, summarizeIssue(issue))
	}
	return summaries, nil
}

// FetchIssue returns the full details of a single issue. References that
// resolve to a pull request are rejected, mirroring the listing filter.
func FetchIssue(ctx context.Context, client *github.Client, ref RepositoryRef, number int) (*IssueDetails, error) {
	issue, _, err := client.Issues.Get(ctx, ref.Owner, ref.Name, number)
	if err != nil {
		return nil, gperrors.NewUpstreamFailure("failed to get issue", err)
	}
	if issue.IsPullRequest() {
		return nil, gperrors.NewInvalidInput("#%d is a pull request, not an issue", number)
	}

	details := &IssueDetails{
		IssueSummary: summarizeIssue(issue),
		Body:         sanitize.Text(issue.GetBody()),
		Locked:       issue.GetLocked(),
	}
	for _, assignee := range issue.Assignees {
		details.Assignees = append(details.Assignees, assignee.GetLogin())
	}
	if milestone := issue.GetMilestone(); milestone != nil {
		details.Milestone = milestone.GetTitle()
	}
	if !issue.GetClosedAt().IsZero() {
		details.ClosedAt = issue.GetClosedAt().Format(time.RFC3339)
	}
	return details, nil
}

// FetchIssueComments lists comments on an issue, oldest first. The same
// pull request guard applies as for FetchIssue.
func FetchIssueComments(ctx context.Context, client *github.Client, ref RepositoryRef, number, perPage int) ([]IssueCommentSummary, error) {
	issue, _, err := client.Issues.Get(ctx, ref.Owner, ref.Name, number)
	if err != nil {
		return nil, gperrors.NewUpstreamFailure("failed to get issue", err)
	}
	if issue.IsPullRequest() {
		return nil, gperrors.NewInvalidInput("#%d is a pull request, not an issue", number)
	}

	comments, _, err := client.Issues.ListComments(ctx, ref.Owner, ref.Name, number, &github.IssueListCommentsOptions{
		ListOptions: github.ListOptions{PerPage: perPage},
	})
	if err != nil {
		return nil, gperrors.NewUpstreamFailure("failed to list issue comments", err)
	}

	summaries := make([]IssueCommentSummary, 0, len(comments))
	for _, c := range comments {
		summaries = append(summaries, summarizeIssueComment(c))
	}
	return summaries, nil
}

// CreateIssueComment posts a comment on an issue. Locked issues are
// rejected before the write is attempted.
func CreateIssueComment(ctx context.Context, client *github.Client, ref RepositoryRef, number int, body string) (*IssueCommentSummary, error) {
	if strings.TrimSpace(body) == "" {
		return nil, gperrors.NewInvalidInput("comment body must not be empty")
	}

	issue, _, err := client.Issues.Get(ctx, ref.Owner, ref.Name, number)
	if err != nil {
		return nil, gperrors.NewUpstreamFailure("failed to get issue", err)
	}
	if issue.IsPullRequest() {
		return nil, gperrors.NewInvalidInput("#%d is a pull request, not an issue", number)
	}
	if issue.GetLocked() {
		return nil, gperrors.NewInvalidInput("issue #%d is locked and cannot be commented on", number)
	}

	comment, _, err := client.Issues.CreateComment(ctx, ref.Owner, ref.Name, number, &github.IssueComment{
		Body: github.Ptr(body),
	})
	if err != nil {
		return nil, gperrors.NewUpstreamFailure("failed to create issue comment", err)
	}
	summary := summarizeIssueComment(comment)
	return &summary, nil
}

// EditIssueComment replaces the body of an existing issue comment.
func EditIssueComment(ctx context.Context, client *github.Client, ref RepositoryRef, commentID int64, body string) (*IssueCommentSummary, error) {
	if strings.TrimSpace(body) == "" {
		return nil, gperrors.NewInvalidInput("comment body must not be empty")
	}

	comment, _, err := client.Issues.EditComment(ctx, ref.Owner, ref.Name, commentID, &github.IssueComment{
		Body: github.Ptr(body),
	})
	if err != nil {
		return nil, gperrors.NewUpstreamFailure("failed to update issue comment", err)
	}
	summary := summarizeIssueComment(comment)
	return &summary, nil
}

func summarizeIssue(issue *github.Issue) IssueSummary {
	summary := IssueSummary{
		Number:   issue.GetNumber(),
		Title:    sanitize.StripInvisible(issue.GetTitle()),
		State:    issue.GetState(),
		Author:   issue.GetUser().GetLogin(),
		Labels:   make([]string, 0, len(issue.Labels)),
		Comments: issue.GetComments(),
		URL:      issue.GetHTMLURL(),
	}
	for _, label := range issue.Labels {
		summary.Labels = append(summary.Labels, label.GetName())
	}
	if !issue.GetCreatedAt().IsZero() {
		summary.CreatedAt = issue.GetCreatedAt().Format(time.RFC3339)
	}
	if !issue.GetUpdatedAt().IsZero() {
		summary.UpdatedAt = issue.GetUpdatedAt().Format(time.RFC3339)
	}
	return summary
}

func summarizeIssueComment(c *github.IssueComment) IssueCommentSummary {
	summary := IssueCommentSummary{
		ID:     c.GetID(),
		Author: c.GetUser().GetLogin(),
		Body:   sanitize.Text(c.GetBody()),
		URL:    c.GetHTMLURL(),
	}
	if !c.GetCreatedAt().IsZero() {
		summary.CreatedAt = c.GetCreatedAt().Format(time.RFC3339)
	}
	if !c.GetUpdatedAt().IsZero() {
		summary.UpdatedAt = c.GetUpdatedAt().Format(time.RFC3339)
	}
	return summary
}

// ParseLabels splits a comma-separated label list, dropping empty entries.
func ParseLabels(raw string) []string {
	if raw == "" {
		return nil
	}
	var labels []string
	for _, label := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(label); trimmed != "" {
			labels = append(labels, trimmed)
		}
	}
	return labels
}

// ListIssues creates a tool to list issues for a repository.
func ListIssues() inventory.ServerTool {
	return NewTool(
		ToolsetMetadataActivity,
		mcp.Tool{
			Name:        "list_issues",
			Description: "List issues for a GitHub repository, newest first. Pull requests are excluded.",
			Annotations: &mcp.ToolAnnotations{
				Title:        "List issues",
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
					"labels": {
						Type:        "string",
						Description: "Comma-separated list of labels to filter by (e.g. 'bug,help wanted')",
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
			labels, err := OptionalParam[string](args, "labels")
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

			issues, err := FetchIssues(ctx, client, ref, IssueListOptions{
				State:   state,
				Labels:  ParseLabels(labels),
				PerPage: perPage,
			})
			if err != nil {
				return utils.NewToolResultError(err.Error()), nil, nil
			}

			return MarshalledTextResult(issues), nil, nil
		},
	)
}

// GetIssueDetails creates a tool to get the full details of a single issue.
func GetIssueDetails() inventory.ServerTool {
	return NewTool(
		ToolsetMetadataIssues,
		mcp.Tool{
			Name:        "get_issue_details",
			Description: "Get the full details of a single issue, including body, labels, assignees, and milestone.",
			Annotations: &mcp.ToolAnnotations{
				Title:        "Get issue details",
				ReadOnlyHint: true,
			},
			InputSchema: &jsonschema.Schema{
				Type: "object",
				Properties: map[string]*jsonschema.Schema{
					"repository": RepositoryParamSchema(),
					"issue_number": {
						Type:        "number",
						Description: "Issue number",
					},
				},
				Required: []string{"repository", "issue_number"},
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
			number, err := RequiredInt(args, "issue_number")
			if err != nil {
				return utils.NewToolResultError(err.Error()), nil, nil
			}

			client, err := deps.GetClient(ctx)
			if err != nil {
				return utils.NewToolResultErrorFromErr("failed to get GitHub client", err), nil, nil
			}

			details, err := FetchIssue(ctx, client, ref, number)
			if err != nil {
				return utils.NewToolResultError(err.Error()), nil, nil
			}

			return MarshalledTextResult(details), nil, nil
		},
	)
}

// ListIssueComments creates a tool to list the comments on an issue.
func ListIssueComments() inventory.ServerTool {
	return NewTool(
		ToolsetMetadataIssues,
		mcp.Tool{
			Name:        "list_issue_comments",
			Description: "List the comments on an issue, oldest first.",
			Annotations: &mcp.ToolAnnotations{
				Title:        "List issue comments",
				ReadOnlyHint: true,
			},
			InputSchema: WithPerPage(&jsonschema.Schema{
				Type: "object",
				Properties: map[string]*jsonschema.Schema{
					"repository": RepositoryParamSchema(),
					"issue_number": {
						Type:        "number",
						Description: "Issue number",
					},
				},
				Required: []string{"repository", "issue_number"},
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
			number, err := RequiredInt(args, "issue_number")
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

			comments, err := FetchIssueComments(ctx, client, ref, number, perPage)
			if err != nil {
				return utils.NewToolResultError(err.Error()), nil, nil
			}

			return MarshalledTextResult(comments), nil, nil
		},
	)
}

// AddIssueComment creates a tool to post a comment on an issue.
func AddIssueComment() inventory.ServerTool {
	return NewTool(
		ToolsetMetadataIssues,
		mcp.Tool{
			Name:        "add_issue_comment",
			Description: "Add a comment to an issue. Requires a configured GitHub token.",
			Annotations: &mcp.ToolAnnotations{
				Title: "Add issue comment",
			},
			InputSchema: &jsonschema.Schema{
				Type: "object",
				Properties: map[string]*jsonschema.Schema{
					"repository": RepositoryParamSchema(),
					"issue_number": {
						Type:        "number",
						Description: "Issue number",
					},
					"body": {
						Type:        "string",
						Description: "Comment text",
					},
				},
				Required: []string{"repository", "issue_number", "body"},
			},
		},
		func(ctx context.Context, deps ToolDependencies, _ *mcp.CallToolRequest, args map[string]any) (*mcp.CallToolResult, any, error) {
			if !deps.TokenConfigured() {
				return utils.NewToolResultError("GITHUB_TOKEN is required for write operations"), nil, nil
			}

			repository, err := RequiredParam[string](args, "repository")
			if err != nil {
				return utils.NewToolResultError(err.Error()), nil, nil
			}
			ref, err := ParseRepository(repository)
			if err != nil {
				return utils.NewToolResultError(err.Error()), nil, nil
			}
			number, err := RequiredInt(args, "issue_number")
			if err != nil {
				return utils.NewToolResultError(err.Error()), nil, nil
			}
			body, err := RequiredParam[string](args, "body")
			if err != nil {
				return utils.NewToolResultError(err.Error()), nil, nil
			}

			client, err := deps.GetClient(ctx)
			if err != nil {
				return utils.NewToolResultErrorFromErr("failed to get GitHub client", err), nil, nil
			}

			comment, err := CreateIssueComment(ctx, client, ref, number, body)
			if err != nil {
				return utils.NewToolResultError(err.Error()), nil, nil
			}

			return MarshalledTextResult(comment), nil, nil
		},
	)
}

// UpdateIssueComment creates a tool to edit an existing issue comment.
func UpdateIssueComment() inventory.ServerTool {
	return NewTool(
		ToolsetMetadataIssues,
		mcp.Tool{
			Name:        "update_issue_comment",
			Description: "Update the body of an existing issue comment. Requires a configured GitHub token.",
			Annotations: &mcp.ToolAnnotations{
				Title: "Update issue comment",
			},
			InputSchema: &jsonschema.Schema{
				Type: "object",
				Properties: map[string]*jsonschema.Schema{
					"repository": RepositoryParamSchema(),
					"comment_id": {
						Type:        "number",
						Description: "Comment ID",
					},
					"body": {
						Type:        "string",
						Description: "Replacement comment text",
					},
				},
				Required: []string{"repository", "comment_id", "body"},
			},
		},
		func(ctx context.Context, deps ToolDependencies, _ *mcp.CallToolRequest, args map[string]any) (*mcp.CallToolResult, any, error) {
			if !deps.TokenConfigured() {
				return utils.NewToolResultError("GITHUB_TOKEN is required for write operations"), nil, nil
			}

			repository, err := RequiredParam[string](args, "repository")
			if err != nil {
				return utils.NewToolResultError(err.Error()), nil, nil
			}
			ref, err := ParseRepository(repository)
			if err != nil {
				return utils.NewToolResultError(err.Error()), nil, nil
			}
			commentID, err := RequiredBigInt(args, "comment_id")
			if err != nil {
				return utils.NewToolResultError(err.Error()), nil, nil
			}
			body, err := RequiredParam[string](args, "body")
			if err != nil {
				return utils.NewToolResultError(err.Error()), nil, nil
			}

			client, err := deps.GetClient(ctx)
			if err != nil {
				return utils.NewToolResultErrorFromErr("failed to get GitHub client", err), nil, nil
			}

			comment, err := EditIssueComment(ctx, client, ref, commentID, body)
			if err != nil {
				return utils.NewToolResultError(err.Error()), nil, nil
			}

			return MarshalledTextResult(comment), nil, nil
		},
	)
}
