package github

import (
	"strings"

	gperrors "github.com/gitpulse/gitpulse-mcp-server/pkg/errors"
)

// RepositoryRef identifies a repository by its owner and name.
type RepositoryRef struct {
	Owner string
	Name  string
}

func (r RepositoryRef) String() string {
	return r.Owner + "/" + r.Name
}

// ParseRepository parses an "owner/repo" reference. Exactly two non-empty
// slash-separated segments are accepted; anything else is an InvalidInput
// error naming the offending value.
func ParseRepository(repository string) (RepositoryRef, error) {
	parts := strings.Split(repository, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return RepositoryRef{}, gperrors.NewInvalidInput("repository must be in 'owner/repo' format, got %q", repository)
	}
	return RepositoryRef{Owner: parts[0], Name: parts[1]}, nil
}
