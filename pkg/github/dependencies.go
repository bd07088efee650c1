package github

import (
	"context"
	"errors"

	"github.com/gitpulse/gitpulse-mcp-server/pkg/inventory"
	gogithub "github.com/google/go-github/v79/github"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// depsContextKey is the context key for ToolDependencies.
// Using a private type prevents collisions with other packages.
type depsContextKey struct{}

// ErrDepsNotInContext is returned when ToolDependencies is not found in context.
var ErrDepsNotInContext = errors.New("ToolDependencies not found in context; use ContextWithDeps to inject")

// ContextWithDeps returns a new context with the ToolDependencies stored in
// it. Dependencies are injected at request time rather than at registration
// time, so the same inventory serves both the stdio server (deps injected
// once at startup) and the HTTP dispatcher (deps injected per request).
func ContextWithDeps(ctx context.Context, deps ToolDependencies) context.Context {
	return context.WithValue(ctx, depsContextKey{}, deps)
}

// DepsFromContext retrieves ToolDependencies from the context.
// Returns the deps and true if found, or nil and false if not present.
func DepsFromContext(ctx context.Context) (ToolDependencies, bool) {
	deps, ok := ctx.Value(depsContextKey{}).(ToolDependencies)
	return deps, ok
}

// MustDepsFromContext retrieves ToolDependencies from the context.
// Panics if deps are not found - use this in handlers where deps are required.
func MustDepsFromContext(ctx context.Context) ToolDependencies {
	deps, ok := DepsFromContext(ctx)
	if !ok {
		panic(ErrDepsNotInContext)
	}
	return deps
}

// ToolDependencies defines the interface for dependencies that tool
// handlers need. Handlers never touch package-level state; everything comes
// through this interface, so tests can substitute a fake client.
type ToolDependencies interface {
	// GetClient returns a GitHub REST API client. The client is anonymous
	// when no token is configured; read operations still work against
	// public repositories, at lower rate limits.
	GetClient(ctx context.Context) (*gogithub.Client, error)

	// TokenConfigured reports whether an API token was available at
	// startup. Write operations require one.
	TokenConfigured() bool

	// ServerVersion returns the running server version.
	ServerVersion() string
}

// BaseDeps is the standard ToolDependencies implementation. It stores a
// pre-created client built once at process start.
type BaseDeps struct {
	Client   *gogithub.Client
	HasToken bool
	Version  string
}

// NewBaseDeps creates a BaseDeps with the provided client and configuration.
func NewBaseDeps(client *gogithub.Client, hasToken bool, version string) *BaseDeps {
	return &BaseDeps{
		Client:   client,
		HasToken: hasToken,
		Version:  version,
	}
}

// GetClient implements ToolDependencies.
func (d BaseDeps) GetClient(_ context.Context) (*gogithub.Client, error) {
	return d.Client, nil
}

// TokenConfigured implements ToolDependencies.
func (d BaseDeps) TokenConfigured() bool { return d.HasToken }

// ServerVersion implements ToolDependencies.
func (d BaseDeps) ServerVersion() string { return d.Version }

// NewTool creates a ServerTool that retrieves ToolDependencies from context
// at call time. Ensure ContextWithDeps is called before any tool handlers
// are invoked.
func NewTool[In, Out any](toolset inventory.ToolsetMetadata, tool mcp.Tool, handler func(ctx context.Context, deps ToolDependencies, req *mcp.CallToolRequest, args In) (*mcp.CallToolResult, Out, error)) inventory.ServerTool {
	return inventory.NewServerToolWithContextHandler(tool, toolset, func(ctx context.Context, req *mcp.CallToolRequest, args In) (*mcp.CallToolResult, Out, error) {
		deps := MustDepsFromContext(ctx)
		return handler(ctx, deps, req, args)
	})
}
