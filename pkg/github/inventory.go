package github

import "github.com/gitpulse/gitpulse-mcp-server/pkg/inventory"

// AllTools returns every tool this server provides, across all toolsets.
func AllTools() []inventory.ServerTool {
	return []inventory.ServerTool{
		// Activity toolset
		ListCommits(),
		ListPullRequests(),
		ListIssues(),
		ListReleases(),
		GetRepositoryInfo(),

		// Issues toolset
		GetIssueDetails(),
		ListIssueComments(),
		AddIssueComment(),
		UpdateIssueComment(),

		// Actions toolset
		ListWorkflowRuns(),

		// Context toolset
		GetServerInfo(),
	}
}

// AllResources returns every resource template this server provides.
func AllResources() []inventory.ServerResourceTemplate {
	return []inventory.ServerResourceTemplate{
		GetActivityResource(),
	}
}

// NewInventory creates an inventory builder preloaded with every tool,
// resource, and prompt. It is the single source of truth for both the
// stdio MCP server and the HTTP surface: filters applied at Build time
// shape tools/list and dispatch identically.
func NewInventory() *inventory.Builder {
	return inventory.NewBuilder().
		SetTools(AllTools()).
		SetResources(AllResources()).
		SetPrompts(AllPrompts())
}
