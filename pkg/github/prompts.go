package github

import (
	"context"
	"fmt"

	"github.com/gitpulse/gitpulse-mcp-server/pkg/inventory"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const defaultMonitoringInterests = "commits, pull requests, issues, releases"

// AllPrompts returns all prompts provided by this server.
func AllPrompts() []inventory.ServerPrompt {
	return []inventory.ServerPrompt{
		RepositoryMonitoringPlanPrompt(),
	}
}

// RepositoryMonitoringPlanPrompt builds a monitoring plan request for a set
// of repositories. Pure templating, no API calls.
func RepositoryMonitoringPlanPrompt() inventory.ServerPrompt {
	return inventory.NewServerPrompt(
		ToolsetMetadataActivity,
		mcp.Prompt{
			Name:        "repository_monitoring_plan",
			Description: "Build a plan for monitoring activity across one or more GitHub repositories",
			Arguments: []*mcp.PromptArgument{
				{
					Name:        "repositories",
					Description: "Comma-separated list of repositories in 'owner/repo' format",
					Required:    true,
				},
				{
					Name:        "interests",
					Description: "Comma-separated list of activity types to focus on (default: " + defaultMonitoringInterests + ")",
					Required:    false,
				},
			},
		},
		func(_ context.Context, request *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
			// An empty repository list still renders a well-formed plan;
			// templating has no error cases.
			repositories := request.Params.Arguments["repositories"]

			interests := request.Params.Arguments["interests"]
			if interests == "" {
				interests = defaultMonitoringInterests
			}

			text := fmt.Sprintf(
				"You are a repository monitoring assistant. Create a monitoring plan for the following GitHub repositories: %s.\n\n"+
					"Focus on these activity types: %s.\n\n"+
					"For each repository:\n"+
					"1. Summarize the current state using the available tools (list_commits, list_pull_requests, list_issues, list_releases, get_repository_info).\n"+
					"2. Highlight anything that needs attention, such as stale pull requests or a growing issue backlog.\n"+
					"3. Suggest a cadence for checking each activity type.",
				repositories, interests)

			return &mcp.GetPromptResult{
				Description: fmt.Sprintf("Monitoring plan for %s", repositories),
				Messages: []*mcp.PromptMessage{
					{
						Role:    "user",
						Content: &mcp.TextContent{Text: text},
					},
				},
			}, nil
		},
	)
}
