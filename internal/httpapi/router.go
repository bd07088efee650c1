package httpapi

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	gh "github.com/gitpulse/gitpulse-mcp-server/pkg/github"
	"github.com/gitpulse/gitpulse-mcp-server/pkg/inventory"
)

const defaultHeartbeatInterval = 15 * time.Second

// Server exposes the MCP inventory over HTTP: JSON-RPC at POST / and
// POST /mcp, a REST convenience surface under /api, and an SSE stream
// at GET /mcp.
type Server struct {
	inventory *inventory.Inventory
	deps      gh.ToolDependencies
	logger    *slog.Logger
	version   string
	heartbeat time.Duration
}

// Config carries the wiring for the HTTP surface.
type Config struct {
	Inventory *inventory.Inventory
	Deps      gh.ToolDependencies
	Logger    *slog.Logger
	Version   string

	// HeartbeatInterval controls SSE keepalive cadence. Zero means the
	// default of 15 seconds.
	HeartbeatInterval time.Duration
}

func NewServer(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	heartbeat := cfg.HeartbeatInterval
	if heartbeat <= 0 {
		heartbeat = defaultHeartbeatInterval
	}
	return &Server{
		inventory: cfg.Inventory,
		deps:      cfg.Deps,
		logger:    logger,
		version:   cfg.Version,
		heartbeat: heartbeat,
	}
}

// Router builds the chi router for the full HTTP surface.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(corsMiddleware)

	r.Get("/health", s.handleHealth)
	r.Get("/", s.handleDiscovery)
	r.Post("/", s.handleJSONRPC)
	r.Get("/mcp", s.handleMCPGet)
	r.Post("/mcp", s.handleJSONRPC)
	r.Post("/api/{action}", s.handleAPIAction)
	r.NotFound(s.handleNotFound)
	r.MethodNotAllowed(s.handleNotFound)

	return r
}

// corsMiddleware answers preflight requests and stamps every response,
// including errors, so browser-based clients can reach the server from
// any origin.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, Accept")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Error("failed to encode response", "error", err)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"status":           "ok",
		"service":          gh.ServerName,
		"version":          s.version,
		"capabilities":     []string{"tools", "resources", "prompts"},
		"token_configured": s.deps.TokenConfigured(),
	})
}

// handleDiscovery describes the server to clients probing GET / or
// GET /mcp without an event-stream Accept header.
func (s *Server) handleDiscovery(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"name":      gh.ServerName,
		"version":   s.version,
		"transport": "http",
		"protocol":  protocolVersion,
		"endpoints": map[string]string{
			"jsonrpc": "POST / or POST /mcp",
			"stream":  "GET /mcp (Accept: text/event-stream)",
			"rest":    "POST /api/{action}",
			"health":  "GET /health",
		},
	})
}

func (s *Server) handleMCPGet(w http.ResponseWriter, r *http.Request) {
	if acceptsEventStream(r) {
		s.handleSSE(w, r)
		return
	}
	s.handleDiscovery(w, r)
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusNotFound, map[string]any{
		"error": "not found: " + r.Method + " " + r.URL.Path,
		"available_endpoints": []string{
			"GET /",
			"POST /",
			"GET /mcp",
			"POST /mcp",
			"GET /health",
			"POST /api/{action}",
		},
	})
}
