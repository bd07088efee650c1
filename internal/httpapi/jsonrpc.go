package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	gperrors "github.com/gitpulse/gitpulse-mcp-server/pkg/errors"
	gh "github.com/gitpulse/gitpulse-mcp-server/pkg/github"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/yosida95/uritemplate/v3"
)

const protocolVersion = "2025-06-18"

// jsonrpcRequest is the JSON-RPC 2.0 request envelope.
type jsonrpcRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// jsonrpcResponse is the JSON-RPC 2.0 response envelope.
type jsonrpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  any             `json:"result,omitempty"`
	Error   *jsonrpcError   `json:"error,omitempty"`
}

type jsonrpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func rpcResult(id json.RawMessage, result any) jsonrpcResponse {
	return jsonrpcResponse{JSONRPC: "2.0", ID: id, Result: result}
}

func rpcError(id json.RawMessage, code int, message string) jsonrpcResponse {
	return jsonrpcResponse{JSONRPC: "2.0", ID: id, Error: &jsonrpcError{Code: code, Message: message}}
}

// handleJSONRPC serves POST / and POST /mcp. Both paths share this single
// dispatcher, and the dispatcher shares the inventory with the stdio
// server, so the two transports can never diverge.
func (s *Server) handleJSONRPC(w http.ResponseWriter, r *http.Request) {
	var req jsonrpcRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeJSON(w, http.StatusOK, rpcError(nil, gperrors.CodeInvalidRequest, "invalid JSON-RPC request: malformed body"))
		return
	}
	if req.JSONRPC != "2.0" || req.Method == "" {
		s.writeJSON(w, http.StatusOK, rpcError(req.ID, gperrors.CodeInvalidRequest, "invalid JSON-RPC request: expected jsonrpc 2.0 with a method"))
		return
	}

	// Notifications carry no id and get no response body.
	if req.ID == nil {
		s.logger.Debug("notification received", "method", req.Method)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusAccepted)
		return
	}

	s.writeJSON(w, http.StatusOK, s.dispatch(r.Context(), req))
}

// dispatch routes a single JSON-RPC request to the inventory. Handler
// panics are contained and reported as internal errors rather than
// tearing down the connection.
func (s *Server) dispatch(ctx context.Context, req jsonrpcRequest) (resp jsonrpcResponse) {
	defer func() {
		if rec := recover(); rec != nil {
			s.logger.Error("handler panic", "method", req.Method, "panic", rec)
			resp = rpcError(req.ID, gperrors.CodeInternalError, fmt.Sprintf("internal error: %v", rec))
		}
	}()

	switch req.Method {
	case "initialize":
		return rpcResult(req.ID, map[string]any{
			"protocolVersion": protocolVersion,
			"capabilities": map[string]any{
				"tools":     map[string]any{},
				"resources": map[string]any{},
				"prompts":   map[string]any{},
			},
			"serverInfo": map[string]any{
				"name":    gh.ServerName,
				"version": s.version,
			},
		})

	case "ping":
		return rpcResult(req.ID, map[string]any{})

	case "tools/list":
		return s.handleToolsList(req)

	case "tools/call":
		return s.handleToolsCall(ctx, req)

	case "resources/list", "resources/templates/list":
		return s.handleResourcesList(req)

	case "resources/read":
		return s.handleResourcesRead(ctx, req)

	case "prompts/list":
		return s.handlePromptsList(req)

	case "prompts/get":
		return s.handlePromptsGet(ctx, req)

	default:
		return rpcError(req.ID, gperrors.CodeMethodNotFound, fmt.Sprintf("method not found: %s", req.Method))
	}
}

func (s *Server) handleToolsList(req jsonrpcRequest) jsonrpcResponse {
	serverTools := s.inventory.AvailableTools()
	tools := make([]*mcp.Tool, 0, len(serverTools))
	for i := range serverTools {
		tools = append(tools, &serverTools[i].Tool)
	}
	return rpcResult(req.ID, map[string]any{"tools": tools})
}

func (s *Server) handleToolsCall(ctx context.Context, req jsonrpcRequest) jsonrpcResponse {
	var params struct {
		Name      string          `json:"name"`
		Arguments json.RawMessage `json:"arguments"`
	}
	if err := json.Unmarshal(req.Params, &params); err != nil || params.Name == "" {
		return rpcError(req.ID, gperrors.CodeInvalidRequest, "tools/call requires a tool name")
	}

	tool, _, err := s.inventory.FindToolByName(params.Name)
	if err != nil {
		return rpcError(req.ID, gperrors.CodeMethodNotFound, err.Error())
	}

	arguments := params.Arguments
	if len(arguments) == 0 {
		arguments = json.RawMessage(`{}`)
	}

	handler := tool.Handler(nil)
	result, err := handler(gh.ContextWithDeps(ctx, s.deps), &mcp.CallToolRequest{
		Params: &mcp.CallToolParamsRaw{
			Name:      params.Name,
			Arguments: arguments,
		},
	})
	if err != nil {
		return rpcError(req.ID, gperrors.JSONRPCCode(err), err.Error())
	}
	return rpcResult(req.ID, result)
}

func (s *Server) handleResourcesList(req jsonrpcRequest) jsonrpcResponse {
	serverResources := s.inventory.AvailableResourceTemplates()
	templates := make([]*mcp.ResourceTemplate, 0, len(serverResources))
	for i := range serverResources {
		templates = append(templates, &serverResources[i].Template)
	}
	return rpcResult(req.ID, map[string]any{"resourceTemplates": templates})
}

func (s *Server) handleResourcesRead(ctx context.Context, req jsonrpcRequest) jsonrpcResponse {
	var params struct {
		URI string `json:"uri"`
	}
	if err := json.Unmarshal(req.Params, &params); err != nil || params.URI == "" {
		return rpcError(req.ID, gperrors.CodeInvalidRequest, "resources/read requires a uri")
	}

	for _, res := range s.inventory.AvailableResourceTemplates() {
		template, err := uritemplate.New(res.Template.URITemplate)
		if err != nil || template.Match(params.URI) == nil {
			continue
		}

		handler := res.Handler(s.deps)
		result, err := handler(gh.ContextWithDeps(ctx, s.deps), &mcp.ReadResourceRequest{
			Params: &mcp.ReadResourceParams{URI: params.URI},
		})
		if err != nil {
			return rpcError(req.ID, gperrors.JSONRPCCode(err), err.Error())
		}
		return rpcResult(req.ID, result)
	}

	return rpcError(req.ID, gperrors.CodeInvalidRequest, fmt.Sprintf("no resource matches URI: %s", params.URI))
}

func (s *Server) handlePromptsList(req jsonrpcRequest) jsonrpcResponse {
	serverPrompts := s.inventory.AvailablePrompts()
	prompts := make([]*mcp.Prompt, 0, len(serverPrompts))
	for i := range serverPrompts {
		prompts = append(prompts, &serverPrompts[i].Prompt)
	}
	return rpcResult(req.ID, map[string]any{"prompts": prompts})
}

func (s *Server) handlePromptsGet(ctx context.Context, req jsonrpcRequest) jsonrpcResponse {
	var params struct {
		Name      string            `json:"name"`
		Arguments map[string]string `json:"arguments"`
	}
	if err := json.Unmarshal(req.Params, &params); err != nil || params.Name == "" {
		return rpcError(req.ID, gperrors.CodeInvalidRequest, "prompts/get requires a prompt name")
	}

	prompt, err := s.inventory.FindPromptByName(params.Name)
	if err != nil {
		return rpcError(req.ID, gperrors.CodeInvalidRequest, err.Error())
	}

	result, err := prompt.Handler(ctx, &mcp.GetPromptRequest{
		Params: &mcp.GetPromptParams{
			Name:      params.Name,
			Arguments: params.Arguments,
		},
	})
	if err != nil {
		return rpcError(req.ID, gperrors.JSONRPCCode(err), err.Error())
	}
	return rpcResult(req.ID, result)
}
