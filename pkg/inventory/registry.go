package inventory

import (
	"sort"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Inventory holds the full catalogue of tools, resource templates, and
// prompts with filtering applied at build time. It is the single source of
// truth for both registration (stdio MCP server) and dispatch (HTTP
// JSON-RPC surface): anything listed is callable and anything callable is
// listed.
//
// Create an Inventory using Builder:
//
//	inv := inventory.NewBuilder().
//	    SetTools(tools).
//	    WithReadOnly(true).
//	    WithToolsets([]string{"activity"}).
//	    Build()
type Inventory struct {
	tools             []ServerTool
	resourceTemplates []ServerResourceTemplate
	prompts           []ServerPrompt

	// readOnly when true filters out write tools
	readOnly bool
	// enabledToolsets when non-nil restricts items to these toolsets;
	// nil means all toolsets are enabled
	enabledToolsets map[ToolsetID]bool

	toolsetIDs           []ToolsetID
	defaultToolsetIDs    []ToolsetID
	unrecognizedToolsets []string
}

// Builder builds an Inventory. Chain the configuration methods and call
// Build to produce the final filtered inventory.
type Builder struct {
	tools             []ServerTool
	resourceTemplates []ServerResourceTemplate
	prompts           []ServerPrompt

	readOnly        bool
	toolsetIDs      []string
	toolsetIDsIsNil bool
}

// NewBuilder creates a new Builder.
func NewBuilder() *Builder {
	return &Builder{toolsetIDsIsNil: true}
}

// SetTools sets the tools for the inventory. Returns self for chaining.
func (b *Builder) SetTools(tools []ServerTool) *Builder {
	b.tools = tools
	return b
}

// SetResources sets the resource templates for the inventory. Returns self for chaining.
func (b *Builder) SetResources(resources []ServerResourceTemplate) *Builder {
	b.resourceTemplates = resources
	return b
}

// SetPrompts sets the prompts for the inventory. Returns self for chaining.
func (b *Builder) SetPrompts(prompts []ServerPrompt) *Builder {
	b.prompts = prompts
	return b
}

// WithReadOnly sets whether only read-only tools should be available.
// When true, write tools are filtered out. Returns self for chaining.
func (b *Builder) WithReadOnly(readOnly bool) *Builder {
	b.readOnly = readOnly
	return b
}

// WithToolsets specifies which toolsets should be enabled. The keyword
// "all" enables every toolset and "default" expands to toolsets marked
// Default in their metadata. Pass nil to use defaults. Returns self for
// chaining.
func (b *Builder) WithToolsets(toolsetIDs []string) *Builder {
	b.toolsetIDs = toolsetIDs
	b.toolsetIDsIsNil = toolsetIDs == nil
	return b
}

// Build creates the final Inventory with all configuration applied.
func (b *Builder) Build() *Inventory {
	r := &Inventory{
		tools:             b.tools,
		resourceTemplates: b.resourceTemplates,
		prompts:           b.prompts,
		readOnly:          b.readOnly,
	}
	r.processToolsets(b)
	return r
}

func (r *Inventory) processToolsets(b *Builder) {
	validIDs := make(map[ToolsetID]bool)
	defaultIDs := make(map[ToolsetID]bool)

	collect := func(tm ToolsetMetadata) {
		validIDs[tm.ID] = true
		if tm.Default {
			defaultIDs[tm.ID] = true
		}
	}
	for i := range b.tools {
		collect(b.tools[i].Toolset)
	}
	for i := range b.resourceTemplates {
		collect(b.resourceTemplates[i].Toolset)
	}
	for i := range b.prompts {
		collect(b.prompts[i].Toolset)
	}

	r.toolsetIDs = sortedIDs(validIDs)
	r.defaultToolsetIDs = sortedIDs(defaultIDs)

	requested := b.toolsetIDs
	if b.toolsetIDsIsNil {
		requested = []string{"default"}
	}

	enabled := make(map[ToolsetID]bool)
	for _, raw := range requested {
		id := strings.TrimSpace(raw)
		switch id {
		case "":
			continue
		case "all":
			// nil means all enabled
			r.enabledToolsets = nil
			return
		case "default":
			for _, def := range r.defaultToolsetIDs {
				enabled[def] = true
			}
		default:
			tsID := ToolsetID(id)
			enabled[tsID] = true
			if !validIDs[tsID] {
				r.unrecognizedToolsets = append(r.unrecognizedToolsets, id)
			}
		}
	}
	r.enabledToolsets = enabled
}

func sortedIDs(set map[ToolsetID]bool) []ToolsetID {
	ids := make([]ToolsetID, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// UnrecognizedToolsets returns toolset IDs that were requested but do not
// match any registered toolset. Useful for warning users about typos.
func (r *Inventory) UnrecognizedToolsets() []string {
	return r.unrecognizedToolsets
}

// ToolsetIDs returns a sorted list of all toolset IDs in this inventory.
func (r *Inventory) ToolsetIDs() []ToolsetID {
	return r.toolsetIDs
}

// DefaultToolsetIDs returns the sorted IDs of toolsets marked Default.
func (r *Inventory) DefaultToolsetIDs() []ToolsetID {
	return r.defaultToolsetIDs
}

// ReadOnly reports whether write tools are filtered out.
func (r *Inventory) ReadOnly() bool {
	return r.readOnly
}

func (r *Inventory) isToolsetEnabled(toolsetID ToolsetID) bool {
	if r.enabledToolsets != nil {
		return r.enabledToolsets[toolsetID]
	}
	return true
}

func (r *Inventory) isToolEnabled(tool *ServerTool) bool {
	if r.readOnly && !tool.IsReadOnly() {
		return false
	}
	return r.isToolsetEnabled(tool.Toolset.ID)
}

// AvailableTools returns the tools that pass all current filters, sorted
// deterministically by toolset ID, then tool name.
func (r *Inventory) AvailableTools() []ServerTool {
	var result []ServerTool
	for i := range r.tools {
		if r.isToolEnabled(&r.tools[i]) {
			result = append(result, r.tools[i])
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Toolset.ID != result[j].Toolset.ID {
			return result[i].Toolset.ID < result[j].Toolset.ID
		}
		return result[i].Tool.Name < result[j].Tool.Name
	})
	return result
}

// AvailableResourceTemplates returns resource templates that pass all
// current filters, sorted by toolset ID, then template name.
func (r *Inventory) AvailableResourceTemplates() []ServerResourceTemplate {
	var result []ServerResourceTemplate
	for i := range r.resourceTemplates {
		if r.isToolsetEnabled(r.resourceTemplates[i].Toolset.ID) {
			result = append(result, r.resourceTemplates[i])
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Toolset.ID != result[j].Toolset.ID {
			return result[i].Toolset.ID < result[j].Toolset.ID
		}
		return result[i].Template.Name < result[j].Template.Name
	})
	return result
}

// AvailablePrompts returns prompts that pass all current filters, sorted
// by toolset ID, then prompt name.
func (r *Inventory) AvailablePrompts() []ServerPrompt {
	var result []ServerPrompt
	for i := range r.prompts {
		if r.isToolsetEnabled(r.prompts[i].Toolset.ID) {
			result = append(result, r.prompts[i])
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Toolset.ID != result[j].Toolset.ID {
			return result[i].Toolset.ID < result[j].Toolset.ID
		}
		return result[i].Prompt.Name < result[j].Prompt.Name
	})
	return result
}

// FindToolByName searches the AVAILABLE tools for one matching the given
// name, so filtered-out tools (write tools in read-only mode, disabled
// toolsets) are indistinguishable from tools that never existed. Returns
// the tool and its toolset ID, or ToolDoesNotExistError.
func (r *Inventory) FindToolByName(toolName string) (*ServerTool, ToolsetID, error) {
	for i := range r.tools {
		if r.tools[i].Tool.Name == toolName && r.isToolEnabled(&r.tools[i]) {
			return &r.tools[i], r.tools[i].Toolset.ID, nil
		}
	}
	return nil, "", NewToolDoesNotExistError(toolName)
}

// FindPromptByName searches the available prompts for one matching the
// given name. Returns PromptDoesNotExistError when absent.
func (r *Inventory) FindPromptByName(name string) (*ServerPrompt, error) {
	for i := range r.prompts {
		if r.prompts[i].Prompt.Name == name && r.isToolsetEnabled(r.prompts[i].Toolset.ID) {
			return &r.prompts[i], nil
		}
	}
	return nil, NewPromptDoesNotExistError(name)
}

// RegisterTools registers all available tools with the server using the
// provided dependencies.
func (r *Inventory) RegisterTools(s *mcp.Server, deps any) {
	for _, tool := range r.AvailableTools() {
		tool.RegisterFunc(s, deps)
	}
}

// RegisterResourceTemplates registers all available resource templates with the server.
func (r *Inventory) RegisterResourceTemplates(s *mcp.Server, deps any) {
	for _, res := range r.AvailableResourceTemplates() {
		templateCopy := res.Template
		s.AddResourceTemplate(&templateCopy, res.Handler(deps))
	}
}

// RegisterPrompts registers all available prompts with the server.
func (r *Inventory) RegisterPrompts(s *mcp.Server) {
	for _, prompt := range r.AvailablePrompts() {
		promptCopy := prompt.Prompt
		s.AddPrompt(&promptCopy, prompt.Handler)
	}
}

// RegisterAll registers all available tools, resources, and prompts with the server.
func (r *Inventory) RegisterAll(s *mcp.Server, deps any) {
	r.RegisterTools(s, deps)
	r.RegisterResourceTemplates(s, deps)
	r.RegisterPrompts(s)
}
