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

// DefaultReleasesPerPage is the default page size for release listings,
// smaller than the general default because releases are low-volume.
const DefaultReleasesPerPage = 10

// releaseBodyLimit is the length at which release notes are cut in text
// renderings. The underlying data always carries the full body.
const releaseBodyLimit = 200

// ReleaseSummary is the projection of a release returned to callers.
type ReleaseSummary struct {
	Tag         string `json:"tag"`
	Name        string `json:"name"`
	Author      string `json:"author"`
	Prerelease  bool   `json:"prerelease"`
	Draft       bool   `json:"draft"`
	PublishedAt string `json:"published_at,omitempty"`
	Body        string `json:"body"`
	URL         string `json:"url"`
}

// FetchReleases lists releases for a repository, newest first.
func FetchReleases(ctx context.Context, client *github.Client, ref RepositoryRef, perPage int) ([]ReleaseSummary, error) {
	releases, _, err := client.Repositories.ListReleases(ctx, ref.Owner, ref.Name, &github.ListOptions{PerPage: perPage})
	if err != nil {
		return nil, gperrors.NewUpstreamFailure("failed to list releases", err)
	}

	summaries := make([]ReleaseSummary, 0, len(releases))
	for _, r := range releases {
		summaries = append(summaries, summarizeRelease(r))
	}
	return summaries, nil
}

func summarizeRelease(r *github.RepositoryRelease) ReleaseSummary {
	summary := ReleaseSummary{
		Tag:        r.GetTagName(),
		Name:       r.GetName(),
		Author:     r.GetAuthor().GetLogin(),
		Prerelease: r.GetPrerelease(),
		Draft:      r.GetDraft(),
		Body:       sanitize.Text(r.GetBody()),
		URL:        r.GetHTMLURL(),
	}
	if summary.Name == "" {
		summary.Name = summary.Tag
	}
	if !r.GetPublishedAt().IsZero() {
		summary.PublishedAt = r.GetPublishedAt().Format(time.RFC3339)
	}
	return summary
}

// renderReleaseBody truncates release notes for text renderings. The cut
// falls on a rune boundary so multi-byte text stays valid UTF-8.
func renderReleaseBody(body string) string {
	runes := []rune(body)
	if len(runes) > releaseBodyLimit {
		return string(runes[:releaseBodyLimit]) + "..."
	}
	return body
}

// ListReleases creates a tool to list releases for a repository.
func ListReleases() inventory.ServerTool {
	return NewTool(
		ToolsetMetadataActivity,
		mcp.Tool{
			Name:        "list_releases",
			Description: "List releases for a GitHub repository, newest first.",
			Annotations: &mcp.ToolAnnotations{
				Title:        "List releases",
				ReadOnlyHint: true,
			},
			InputSchema: WithPerPage(&jsonschema.Schema{
				Type: "object",
				Properties: map[string]*jsonschema.Schema{
					"repository": RepositoryParamSchema(),
				},
				Required: []string{"repository"},
			}, DefaultReleasesPerPage),
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
			perPage, err := OptionalPerPageParam(args, DefaultReleasesPerPage)
			if err != nil {
				return utils.NewToolResultError(err.Error()), nil, nil
			}

			client, err := deps.GetClient(ctx)
			if err != nil {
				return utils.NewToolResultErrorFromErr("failed to get GitHub client", err), nil, nil
			}

			releases, err := FetchReleases(ctx, client, ref, perPage)
			if err != nil {
				return utils.NewToolResultError(err.Error()), nil, nil
			}

			return MarshalledTextResult(releases), nil, nil
		},
	)
}
