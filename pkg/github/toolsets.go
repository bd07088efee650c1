package github

import "github.com/gitpulse/gitpulse-mcp-server/pkg/inventory"

// Toolset metadata shared by tools, resources, and prompts. The "activity"
// toolset is the monitoring core and is enabled by default.
var (
	ToolsetMetadataActivity = inventory.ToolsetMetadata{
		ID:          "activity",
		Description: "Repository activity: commits, pull requests, issues, releases, and repository info",
		Default:     true,
	}

	ToolsetMetadataIssues = inventory.ToolsetMetadata{
		ID:          "issues",
		Description: "Issue details and comment management",
		Default:     true,
	}

	ToolsetMetadataActions = inventory.ToolsetMetadata{
		ID:          "actions",
		Description: "GitHub Actions workflow runs",
		Default:     true,
	}

	ToolsetMetadataContext = inventory.ToolsetMetadata{
		ID:          "context",
		Description: "Server runtime information",
		Default:     true,
	}
)
