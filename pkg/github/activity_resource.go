package github

import (
	"context"
	"fmt"
	"strings"

	gperrors "github.com/gitpulse/gitpulse-mcp-server/pkg/errors"
	"github.com/gitpulse/gitpulse-mcp-server/pkg/inventory"
	"github.com/google/go-github/v79/github"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/yosida95/uritemplate/v3"
	"golang.org/x/sync/errgroup"
)

// ActivityResourceURITemplate matches the composite activity resource.
var ActivityResourceURITemplate = uritemplate.MustNew("gitpulse://activity/{owner}/{repo}")

// Section sizes for the activity overview. Releases get fewer slots
// because they are low-volume.
const (
	activityCommitCount  = 10
	activityPRCount      = 10
	activityIssueCount   = 10
	activityReleaseCount = 5
)

// RepositoryActivity aggregates the four activity feeds for one repository.
type RepositoryActivity struct {
	Repository   RepositoryRef
	Commits      []CommitSummary
	PullRequests []PullRequestSummary
	Issues       []IssueSummary
	Releases     []ReleaseSummary
}

// FetchRepositoryActivity gathers commits, open pull requests, open issues,
// and releases concurrently. The result is all-or-nothing: if any fetch
// fails, the whole aggregation fails with that error.
func FetchRepositoryActivity(ctx context.Context, client *github.Client, ref RepositoryRef) (*RepositoryActivity, error) {
	activity := &RepositoryActivity{Repository: ref}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		commits, err := FetchCommits(gctx, client, ref, CommitListOptions{PerPage: activityCommitCount})
		if err != nil {
			return err
		}
		activity.Commits = commits
		return nil
	})
	g.Go(func() error {
		prs, err := FetchPullRequests(gctx, client, ref, PullRequestListOptions{State: "open", PerPage: activityPRCount})
		if err != nil {
			return err
		}
		activity.PullRequests = prs
		return nil
	})
	g.Go(func() error {
		issues, err := FetchIssues(gctx, client, ref, IssueListOptions{State: "open", PerPage: activityIssueCount})
		if err != nil {
			return err
		}
		activity.Issues = issues
		return nil
	})
	g.Go(func() error {
		releases, err := FetchReleases(gctx, client, ref, activityReleaseCount)
		if err != nil {
			return err
		}
		activity.Releases = releases
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return activity, nil
}

// RenderActivityMarkdown renders the aggregated activity as a markdown
// overview with fixed section headings. Empty sections carry italicized
// placeholders instead of being omitted.
func RenderActivityMarkdown(activity *RepositoryActivity) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Repository Activity: %s\n\n", activity.Repository)

	fmt.Fprintf(&b, "## Recent Commits (%d)\n\n", len(activity.Commits))
	if len(activity.Commits) == 0 {
		b.WriteString("*No recent commits*\n")
	}
	for _, c := range activity.Commits {
		fmt.Fprintf(&b, "- `%s` %s (%s, %s)\n", c.SHA, c.Message, c.Author, c.Date)
	}

	fmt.Fprintf(&b, "\n## Open Pull Requests (%d)\n\n", len(activity.PullRequests))
	if len(activity.PullRequests) == 0 {
		b.WriteString("*No open pull requests*\n")
	}
	for _, pr := range activity.PullRequests {
		fmt.Fprintf(&b, "- #%d %s (@%s)\n", pr.Number, pr.Title, pr.Author)
	}

	fmt.Fprintf(&b, "\n## Open Issues (%d)\n\n", len(activity.Issues))
	if len(activity.Issues) == 0 {
		b.WriteString("*No open issues*\n")
	}
	for _, issue := range activity.Issues {
		fmt.Fprintf(&b, "- #%d %s (@%s)", issue.Number, issue.Title, issue.Author)
		if len(issue.Labels) > 0 {
			fmt.Fprintf(&b, " [%s]", strings.Join(issue.Labels, ", "))
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "\n## Recent Releases (%d)\n\n", len(activity.Releases))
	if len(activity.Releases) == 0 {
		b.WriteString("*No recent releases*\n")
	}
	for _, r := range activity.Releases {
		fmt.Fprintf(&b, "- %s %s (%s)\n", r.Tag, r.Name, r.PublishedAt)
		if body := renderReleaseBody(r.Body); body != "" {
			fmt.Fprintf(&b, "  %s\n", body)
		}
	}

	return b.String()
}

// GetActivityResource defines the composite activity resource template.
func GetActivityResource() inventory.ServerResourceTemplate {
	return inventory.NewServerResourceTemplate(
		ToolsetMetadataActivity,
		mcp.ResourceTemplate{
			Name:        "repository_activity",
			URITemplate: ActivityResourceURITemplate.Raw(),
			Description: "Markdown overview of recent repository activity: commits, open pull requests, open issues, and releases",
			MIMEType:    "text/markdown",
		},
		activityResourceHandlerFunc(),
	)
}

func activityResourceHandlerFunc() inventory.ResourceHandlerFunc {
	return func(deps any) mcp.ResourceHandler {
		d := deps.(ToolDependencies)
		return ActivityResourceHandler(d)
	}
}

// ActivityResourceHandler returns a handler for activity resource reads.
func ActivityResourceHandler(deps ToolDependencies) mcp.ResourceHandler {
	return func(ctx context.Context, request *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		uriValues := ActivityResourceURITemplate.Match(request.Params.URI)
		if uriValues == nil {
			return nil, gperrors.NewInvalidInput("failed to match URI: %s", request.Params.URI)
		}

		owner := uriValues.Get("owner").String()
		repo := uriValues.Get("repo").String()
		if owner == "" || repo == "" {
			return nil, gperrors.NewInvalidInput("owner and repo are required in URI: %s", request.Params.URI)
		}

		client, err := deps.GetClient(ctx)
		if err != nil {
			return nil, err
		}

		activity, err := FetchRepositoryActivity(ctx, client, RepositoryRef{Owner: owner, Name: repo})
		if err != nil {
			return nil, err
		}

		return &mcp.ReadResourceResult{
			Contents: []*mcp.ResourceContents{
				{
					URI:      request.Params.URI,
					MIMEType: "text/markdown",
					Text:     RenderActivityMarkdown(activity),
				},
			},
		}, nil
	}
}
