// Package scopes inspects the OAuth scopes granted to a GitHub token.
// GitPulse runs fine without a token, so everything here is advisory:
// callers log what they learn and move on.
package scopes

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// OAuthScopesHeader carries the token's granted scopes on every
// authenticated API response. Fine-grained PATs omit it entirely.
const OAuthScopesHeader = "X-OAuth-Scopes"

const defaultAPIBase = "https://api.github.com"

const lookupTimeout = 10 * time.Second

// implies maps a scope to the scopes it grants transitively.
var implies = map[string][]string{
	"repo":      {"repo:status", "repo_deployment", "public_repo", "repo:invite", "security_events"},
	"admin:org": {"write:org", "read:org"},
	"write:org": {"read:org"},
	"user":      {"read:user", "user:email", "user:follow"},
}

// Fetcher looks up token scopes with a HEAD request against the API
// root, which needs no permissions and transfers no body.
type Fetcher struct {
	client  *http.Client
	baseURL string
}

func NewFetcher(client *http.Client, baseURL string) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: lookupTimeout}
	}
	if baseURL == "" {
		baseURL = defaultAPIBase
	}
	return &Fetcher{client: client, baseURL: strings.TrimSuffix(baseURL, "/")}
}

// Lookup returns the scopes granted to token. An empty slice with a nil
// error means the token is valid but carries no classic scopes, which
// is what fine-grained PATs look like.
func (f *Fetcher) Lookup(ctx context.Context, token string) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, f.baseURL+"/", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build scope lookup request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("X-GitHub-Api-Version", "2022-11-28")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("scope lookup failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, fmt.Errorf("token rejected by GitHub: invalid or expired")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("scope lookup returned status %d", resp.StatusCode)
	}

	return ParseHeader(resp.Header.Get(OAuthScopesHeader)), nil
}

// ParseHeader splits a comma-separated scope header into a clean list.
func ParseHeader(header string) []string {
	parts := strings.Split(header, ",")
	granted := make([]string, 0, len(parts))
	for _, part := range parts {
		if scope := strings.TrimSpace(part); scope != "" {
			granted = append(granted, scope)
		}
	}
	return granted
}

// Satisfies reports whether the granted scopes cover required, either
// directly or through a broader scope that implies it.
func Satisfies(granted []string, required string) bool {
	for _, scope := range granted {
		if scope == required {
			return true
		}
		for _, implied := range implies[scope] {
			if implied == required {
				return true
			}
		}
	}
	return false
}

// CanComment reports whether the granted scopes allow posting issue
// comments on public repositories.
func CanComment(granted []string) bool {
	return Satisfies(granted, "public_repo") || Satisfies(granted, "repo")
}
