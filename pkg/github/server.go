package github

import (
	"fmt"

	"github.com/gitpulse/gitpulse-mcp-server/pkg/utils"
	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	// ServerName identifies this server in MCP handshakes and discovery payloads.
	ServerName = "gitpulse-mcp-server"

	// DefaultPerPage is the page size used when a caller omits per_page.
	DefaultPerPage = 30

	// MaxPerPage is the GitHub REST API page size ceiling.
	MaxPerPage = 100
)

// NewServer creates a new GitPulse MCP server.
func NewServer(version string, opts *mcp.ServerOptions) *mcp.Server {
	if opts == nil {
		opts = &mcp.ServerOptions{}
	}

	s := mcp.NewServer(&mcp.Implementation{
		Name:    ServerName,
		Title:   "GitPulse MCP Server",
		Version: version,
	}, opts)

	return s
}

// ClampPerPage normalizes a requested page size. Zero and negative values
// fall back to def, and everything is clamped into [1, 100] so upstream
// requests never carry an out-of-range page size.
func ClampPerPage(v, def int) int {
	if v <= 0 {
		v = def
	}
	if v < 1 {
		v = 1
	}
	if v > MaxPerPage {
		v = MaxPerPage
	}
	return v
}

// RequiredParam is a helper function that can be used to fetch a requested parameter from the request.
// It does the following checks:
// 1. Checks if the parameter is present in the request.
// 2. Checks if the parameter is of the expected type.
// 3. Checks if the parameter is not empty, i.e: non-zero value
func RequiredParam[T comparable](args map[string]any, p string) (T, error) {
	var zero T

	if _, ok := args[p]; !ok {
		return zero, fmt.Errorf("missing required parameter: %s", p)
	}

	val, ok := args[p].(T)
	if !ok {
		return zero, fmt.Errorf("parameter %s is not of type %T", p, zero)
	}

	if val == zero {
		return zero, fmt.Errorf("missing required parameter: %s", p)
	}

	return val, nil
}

// RequiredInt fetches a required integer parameter. JSON numbers arrive as
// float64, so the value is fetched as float64 and converted.
func RequiredInt(args map[string]any, p string) (int, error) {
	v, err := RequiredParam[float64](args, p)
	if err != nil {
		return 0, err
	}
	return int(v), nil
}

// RequiredBigInt fetches a required integer parameter as int64, rejecting
// values that cannot round-trip through float64 without truncation.
func RequiredBigInt(args map[string]any, p string) (int64, error) {
	v, err := RequiredParam[float64](args, p)
	if err != nil {
		return 0, err
	}

	result := int64(v)
	if float64(result) != v {
		return 0, fmt.Errorf("parameter %s value %f is too large to fit in int64", p, v)
	}
	return result, nil
}

// OptionalParam is a helper function that can be used to fetch a requested parameter from the request.
// It does the following checks:
// 1. Checks if the parameter is present in the request, if not, it returns its zero-value
// 2. If it is present, it checks if the parameter is of the expected type and returns it
func OptionalParam[T any](args map[string]any, p string) (T, error) {
	var zero T

	if _, ok := args[p]; !ok {
		return zero, nil
	}

	if _, ok := args[p].(T); !ok {
		return zero, fmt.Errorf("parameter %s is not of type %T, is %T", p, zero, args[p])
	}

	return args[p].(T), nil
}

// OptionalIntParam fetches an optional integer parameter, returning 0 when absent.
func OptionalIntParam(args map[string]any, p string) (int, error) {
	v, err := OptionalParam[float64](args, p)
	if err != nil {
		return 0, err
	}
	return int(v), nil
}

// OptionalIntParamWithDefault fetches an optional integer parameter,
// returning d when the parameter is absent or zero.
func OptionalIntParamWithDefault(args map[string]any, p string, d int) (int, error) {
	v, err := OptionalIntParam(args, p)
	if err != nil {
		return 0, err
	}
	if v == 0 {
		return d, nil
	}
	return v, nil
}

// OptionalPerPageParam fetches the per_page parameter and clamps it into
// the range the GitHub API accepts.
func OptionalPerPageParam(args map[string]any, def int) (int, error) {
	v, err := OptionalIntParam(args, "per_page")
	if err != nil {
		return 0, err
	}
	return ClampPerPage(v, def), nil
}

// WithPerPage adds the per_page parameter to a tool schema with the given default.
func WithPerPage(schema *jsonschema.Schema, def int) *jsonschema.Schema {
	schema.Properties["per_page"] = &jsonschema.Schema{
		Type:        "number",
		Description: fmt.Sprintf("Results per page (min 1, max 100, default %d)", def),
		Minimum:     jsonschema.Ptr(1.0),
		Maximum:     jsonschema.Ptr(100.0),
	}
	return schema
}

// RepositoryParamSchema is the schema for the repository parameter shared
// by every repository-scoped tool.
func RepositoryParamSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type:        "string",
		Description: "Repository in 'owner/repo' format (e.g. 'golang/go')",
	}
}

func MarshalledTextResult(v any) *mcp.CallToolResult {
	return utils.MarshalledTextResult(v)
}
