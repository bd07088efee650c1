package ghmcp

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gitpulse/gitpulse-mcp-server/internal/httpapi"
	gh "github.com/gitpulse/gitpulse-mcp-server/pkg/github"
	"github.com/gitpulse/gitpulse-mcp-server/pkg/inventory"
	"github.com/gitpulse/gitpulse-mcp-server/pkg/scopes"
	gogithub "github.com/google/go-github/v79/github"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const shutdownTimeout = 5 * time.Second

// MCPServerConfig is the shared configuration for both transports.
type MCPServerConfig struct {
	// Version of the server, reported in handshakes and the User-Agent.
	Version string

	// Token is the GitHub token. Empty is fine: the server runs
	// unauthenticated with lower rate limits, and write tools report a
	// clear error when invoked.
	Token string

	// EnabledToolsets restricts the inventory. Nil means defaults, and
	// the keywords "all" and "default" are understood.
	EnabledToolsets []string

	// ReadOnly filters out write tools entirely.
	ReadOnly bool

	Logger *slog.Logger
}

func (cfg *MCPServerConfig) logger() *slog.Logger {
	if cfg.Logger != nil {
		return cfg.Logger
	}
	return slog.Default()
}

// newGitHubClient builds the API client. Authentication is attached
// only when a token is present.
func newGitHubClient(cfg MCPServerConfig) *gogithub.Client {
	client := gogithub.NewClient(nil)
	if cfg.Token != "" {
		client = client.WithAuthToken(cfg.Token)
	}
	client.UserAgent = fmt.Sprintf("%s/%s", gh.ServerName, cfg.Version)
	return client
}

func buildInventory(cfg MCPServerConfig) *inventory.Inventory {
	inv := gh.NewInventory().
		WithReadOnly(cfg.ReadOnly).
		WithToolsets(cfg.EnabledToolsets).
		Build()

	if unrecognized := inv.UnrecognizedToolsets(); len(unrecognized) > 0 {
		cfg.logger().Warn("ignoring unrecognized toolsets",
			"requested", strings.Join(unrecognized, ", "),
			"known", fmt.Sprint(inv.ToolsetIDs()))
	}
	return inv
}

// NewMCPServer creates the MCP server with the full inventory
// registered and dependencies injected into every request context.
func NewMCPServer(cfg MCPServerConfig) (*mcp.Server, error) {
	if cfg.Version == "" {
		return nil, fmt.Errorf("server version must be set")
	}

	deps := gh.NewBaseDeps(newGitHubClient(cfg), cfg.Token != "", cfg.Version)
	server := gh.NewServer(cfg.Version, nil)

	// Handlers resolve dependencies from context at call time.
	server.AddReceivingMiddleware(func(next mcp.MethodHandler) mcp.MethodHandler {
		return func(ctx context.Context, method string, req mcp.Request) (mcp.Result, error) {
			return next(gh.ContextWithDeps(ctx, deps), method, req)
		}
	})

	buildInventory(cfg).RegisterAll(server, deps)
	return server, nil
}

// logTokenScopes reports the token's OAuth scopes at startup. Failures
// are logged and swallowed: scope visibility is a convenience, never a
// reason to refuse to start.
func logTokenScopes(ctx context.Context, cfg MCPServerConfig) {
	if cfg.Token == "" {
		cfg.logger().Info("no GitHub token configured; running unauthenticated with lower rate limits")
		return
	}

	lookupCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	granted, err := scopes.NewFetcher(nil, "").Lookup(lookupCtx, cfg.Token)
	if err != nil {
		cfg.logger().Warn("could not determine token scopes", "error", err)
		return
	}

	cfg.logger().Info("token scopes resolved", "scopes", strings.Join(granted, ","))
	if len(granted) > 0 && !scopes.CanComment(granted) {
		cfg.logger().Warn("token lacks repo access; comment tools will fail")
	}
}

// StdioServerConfig configures the stdio transport.
type StdioServerConfig struct {
	MCPServerConfig
}

// RunStdioServer serves MCP over stdin/stdout until the process is
// signalled or the transport closes.
func RunStdioServer(cfg StdioServerConfig) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	server, err := NewMCPServer(cfg.MCPServerConfig)
	if err != nil {
		return fmt.Errorf("failed to create MCP server: %w", err)
	}

	logTokenScopes(ctx, cfg.MCPServerConfig)

	errC := make(chan error, 1)
	go func() {
		errC <- server.Run(ctx, &mcp.StdioTransport{})
	}()

	cfg.logger().Info("GitPulse MCP server running on stdio", "version", cfg.Version)

	select {
	case <-ctx.Done():
		cfg.logger().Info("shutting down", "reason", "signal")
		return nil
	case err := <-errC:
		if err != nil {
			return fmt.Errorf("stdio server error: %w", err)
		}
		return nil
	}
}

// HTTPServerConfig configures the HTTP transport.
type HTTPServerConfig struct {
	MCPServerConfig

	// Port to listen on. The listener binds all interfaces.
	Port string
}

// newHTTPServer wires the HTTP surface. Request contexts derive from
// base so SSE streams end when base is cancelled.
func newHTTPServer(api *httpapi.Server, port string, base context.Context) *http.Server {
	return &http.Server{
		Addr:              ":" + port,
		Handler:           api.Router(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return base },
	}
}

// RunHTTPServer serves the JSON-RPC, REST, and SSE surfaces until the
// process is signalled, then drains connections.
func RunHTTPServer(cfg HTTPServerConfig) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Version == "" {
		return fmt.Errorf("server version must be set")
	}

	deps := gh.NewBaseDeps(newGitHubClient(cfg.MCPServerConfig), cfg.Token != "", cfg.Version)

	api := httpapi.NewServer(httpapi.Config{
		Inventory: buildInventory(cfg.MCPServerConfig),
		Deps:      deps,
		Logger:    cfg.logger(),
		Version:   cfg.Version,
	})

	streamCtx, stopStreams := context.WithCancel(context.Background())
	defer stopStreams()
	srv := newHTTPServer(api, cfg.Port, streamCtx)

	logTokenScopes(ctx, cfg.MCPServerConfig)

	errC := make(chan error, 1)
	go func() {
		errC <- srv.ListenAndServe()
	}()

	cfg.logger().Info("GitPulse MCP server listening", "addr", srv.Addr, "version", cfg.Version)

	select {
	case <-ctx.Done():
		cfg.logger().Info("shutting down", "reason", "signal")
		// Release long-lived SSE streams first, otherwise a connected
		// client holds the drain below open until it times out.
		stopStreams()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http shutdown error: %w", err)
		}
		return nil
	case err := <-errC:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("http server error: %w", err)
		}
		return nil
	}
}
