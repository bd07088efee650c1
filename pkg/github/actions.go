package github

import (
	"context"
	"time"

	gperrors "github.com/gitpulse/gitpulse-mcp-server/pkg/errors"
	"github.com/gitpulse/gitpulse-mcp-server/pkg/inventory"
	"github.com/gitpulse/gitpulse-mcp-server/pkg/utils"
	"github.com/google/go-github/v79/github"
	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// WorkflowRunSummary is the projection of a workflow run returned to callers.
type WorkflowRunSummary struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	RunNumber  int    `json:"run_number"`
	Event      string `json:"event"`
	Status     string `json:"status"`
	Conclusion string `json:"conclusion,omitempty"`
	Branch     string `json:"branch"`
	CreatedAt  string `json:"created_at,omitempty"`
	URL        string `json:"url"`
}

// WorkflowRunListOptions narrows a workflow run listing.
type WorkflowRunListOptions struct {
	// Status filters by run status or conclusion (e.g. "completed", "failure").
	Status string
	// Branch restricts results to runs on this branch.
	Branch string
	// PerPage is the page size, already clamped by the caller.
	PerPage int
}

// FetchWorkflowRuns lists recent GitHub Actions workflow runs, newest first.
func FetchWorkflowRuns(ctx context.Context, client *github.Client, ref RepositoryRef, opts WorkflowRunListOptions) ([]WorkflowRunSummary, error) {
	listOpts := &github.ListWorkflowRunsOptions{
		Status:      opts.Status,
		Branch:      opts.Branch,
		ListOptions: github.ListOptions{PerPage: opts.PerPage},
	}

	runs, _, err := client.Actions.ListRepositoryWorkflowRuns(ctx, ref.Owner, ref.Name, listOpts)
	if err != nil {
		return nil, gperrors.NewUpstreamFailure("failed to list workflow runs", err)
	}

	summaries := make([]WorkflowRunSummary, 0, len(runs.WorkflowRuns))
	for _, run := range runs.WorkflowRuns {
		summary := WorkflowRunSummary{
			ID:         run.GetID(),
			Name:       run.GetName(),
			RunNumber:  run.GetRunNumber(),
			Event:      run.GetEvent(),
			Status:     run.GetStatus(),
			Conclusion: run.GetConclusion(),
			Branch:     run.GetHeadBranch(),
			URL:        run.GetHTMLURL(),
		}
		if !run.GetCreatedAt().IsZero() {
			summary.CreatedAt = run.GetCreatedAt().Format(time.RFC3339)
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

// ListWorkflowRuns creates a tool to list recent workflow runs for a repository.
func ListWorkflowRuns() inventory.ServerTool {
	return NewTool(
		ToolsetMetadataActions,
		mcp.Tool{
			Name:        "list_workflow_runs",
			Description: "List recent GitHub Actions workflow runs for a repository, newest first.",
			Annotations: &mcp.ToolAnnotations{
				Title:        "List workflow runs",
				ReadOnlyHint: true,
			},
			InputSchema: WithPerPage(&jsonschema.Schema{
				Type: "object",
				Properties: map[string]*jsonschema.Schema{
					"repository": RepositoryParamSchema(),
					"status": {
						Type:        "string",
						Description: "Filter by run status or conclusion (e.g. 'completed', 'in_progress', 'failure')",
					},
					"branch": {
						Type:        "string",
						Description: "Only runs on this branch",
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
			status, err := OptionalParam[string](args, "status")
			if err != nil {
				return utils.NewToolResultError(err.Error()), nil, nil
			}
			branch, err := OptionalParam[string](args, "branch")
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

			runs, err := FetchWorkflowRuns(ctx, client, ref, WorkflowRunListOptions{
				Status:  status,
				Branch:  branch,
				PerPage: perPage,
			})
			if err != nil {
				return utils.NewToolResultError(err.Error()), nil, nil
			}

			return MarshalledTextResult(runs), nil, nil
		},
	)
}
