package main

import (
	"fmt"
	"os"
	"sort"
	"strings"

	gh "github.com/gitpulse/gitpulse-mcp-server/pkg/github"
	"github.com/google/jsonschema-go/jsonschema"
	"github.com/spf13/cobra"
)

var docsCmd = &cobra.Command{
	Use:    "docs",
	Short:  "Generate markdown documentation for the tool catalogue",
	Hidden: true,
	RunE: func(cmd *cobra.Command, _ []string) error {
		out, err := cmd.Flags().GetString("out")
		if err != nil {
			return err
		}

		doc := generateCatalogueDocs()
		if out == "" {
			fmt.Fprint(cmd.OutOrStdout(), doc)
			return nil
		}
		return os.WriteFile(out, []byte(doc), 0o600)
	},
}

func init() {
	docsCmd.Flags().String("out", "", "file to write documentation to (defaults to stdout)")
}

// generateCatalogueDocs renders the full inventory as markdown, grouped
// by toolset. Kept in sync with the code automatically since it reads
// the same definitions the server registers.
func generateCatalogueDocs() string {
	inv := gh.NewInventory().WithToolsets([]string{"all"}).Build()

	var sb strings.Builder
	sb.WriteString("# Tool Catalogue\n\n")

	grouped := map[string][]string{}
	for _, tool := range inv.AvailableTools() {
		entry := fmt.Sprintf("### %s\n\n%s\n\n%s\n", tool.Tool.Name, tool.Tool.Description, describeParams(tool.Tool.InputSchema))
		if !tool.IsReadOnly() {
			entry += "\n**Requires a token with write access.**\n"
		}
		grouped[string(tool.Toolset.ID)] = append(grouped[string(tool.Toolset.ID)], entry)
	}

	toolsets := make([]string, 0, len(grouped))
	for id := range grouped {
		toolsets = append(toolsets, id)
	}
	sort.Strings(toolsets)

	for _, id := range toolsets {
		sb.WriteString(fmt.Sprintf("## Toolset: %s\n\n", id))
		for _, entry := range grouped[id] {
			sb.WriteString(entry)
			sb.WriteString("\n")
		}
	}

	sb.WriteString("## Resources\n\n")
	for _, res := range inv.AvailableResourceTemplates() {
		sb.WriteString(fmt.Sprintf("- `%s` - %s\n", res.Template.URITemplate, res.Template.Description))
	}

	sb.WriteString("\n## Prompts\n\n")
	for _, prompt := range inv.AvailablePrompts() {
		sb.WriteString(fmt.Sprintf("- `%s` - %s\n", prompt.Prompt.Name, prompt.Prompt.Description))
	}

	return sb.String()
}

func describeParams(schema any) string {
	s, ok := schema.(*jsonschema.Schema)
	if !ok || s == nil || len(s.Properties) == 0 {
		return "Parameters: none"
	}

	required := map[string]bool{}
	for _, name := range s.Required {
		required[name] = true
	}

	names := make([]string, 0, len(s.Properties))
	for name := range s.Properties {
		names = append(names, name)
	}
	sort.Strings(names)

	var sb strings.Builder
	sb.WriteString("Parameters:\n")
	for _, name := range names {
		prop := s.Properties[name]
		suffix := "optional"
		if required[name] {
			suffix = "required"
		}
		sb.WriteString(fmt.Sprintf("- `%s` (%s, %s): %s\n", name, prop.Type, suffix, prop.Description))
	}
	return sb.String()
}
