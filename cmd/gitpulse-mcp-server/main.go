package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/gitpulse/gitpulse-mcp-server/internal/ghmcp"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Set via ldflags at release time.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

const defaultPort = "8000"

var rootCmd = &cobra.Command{
	Use:     "gitpulse-mcp-server",
	Short:   "GitPulse MCP server for GitHub repository monitoring",
	Long:    "A Model Context Protocol server exposing GitHub repository activity: commits, pull requests, issues, releases, and workflow runs.",
	Version: fmt.Sprintf("%s (commit %s, built %s)", version, commit, date),
	RunE: func(cmd *cobra.Command, _ []string) error {
		// MCP_TRANSPORT=http or --http selects the HTTP surface,
		// otherwise the server speaks stdio.
		if viper.GetBool("http") || viper.GetString("transport") == "http" {
			return runHTTP(cmd)
		}
		return runStdio(cmd)
	},
}

var stdioCmd = &cobra.Command{
	Use:   "stdio",
	Short: "Serve MCP over stdin/stdout",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runStdio(cmd)
	},
}

var httpCmd = &cobra.Command{
	Use:   "http",
	Short: "Serve MCP over HTTP with REST and SSE surfaces",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runHTTP(cmd)
	},
}

func init() {
	rootCmd.SetVersionTemplate("{{.Short}}\n{{.Version}}\n")

	rootCmd.PersistentFlags().StringSlice("toolsets", nil, "comma-separated toolsets to enable ('all', 'default', or explicit IDs)")
	rootCmd.PersistentFlags().Bool("read-only", false, "restrict the server to read-only tools")
	rootCmd.PersistentFlags().String("log-file", "", "path to log file (defaults to stderr)")
	rootCmd.PersistentFlags().Bool("http", false, "serve over HTTP instead of stdio")
	rootCmd.PersistentFlags().String("port", defaultPort, "port for the HTTP transport")

	_ = viper.BindPFlag("toolsets", rootCmd.PersistentFlags().Lookup("toolsets"))
	_ = viper.BindPFlag("read-only", rootCmd.PersistentFlags().Lookup("read-only"))
	_ = viper.BindPFlag("log-file", rootCmd.PersistentFlags().Lookup("log-file"))
	_ = viper.BindPFlag("http", rootCmd.PersistentFlags().Lookup("http"))
	_ = viper.BindPFlag("port", rootCmd.PersistentFlags().Lookup("port"))

	_ = viper.BindEnv("token", "GITHUB_TOKEN")
	_ = viper.BindEnv("port", "PORT")
	_ = viper.BindEnv("transport", "MCP_TRANSPORT")
	_ = viper.BindEnv("toolsets", "GITPULSE_TOOLSETS")
	_ = viper.BindEnv("read-only", "GITPULSE_READ_ONLY")

	rootCmd.AddCommand(stdioCmd)
	rootCmd.AddCommand(httpCmd)
	rootCmd.AddCommand(docsCmd)
}

func serverConfig() (ghmcp.MCPServerConfig, error) {
	logger, err := newLogger(viper.GetString("log-file"))
	if err != nil {
		return ghmcp.MCPServerConfig{}, err
	}
	return ghmcp.MCPServerConfig{
		Version:         version,
		Token:           viper.GetString("token"),
		EnabledToolsets: toolsetsOrNil(),
		ReadOnly:        viper.GetBool("read-only"),
		Logger:          logger,
	}, nil
}

// toolsetsOrNil preserves the nil/empty distinction: an unset flag means
// "use defaults" while an explicitly empty value disables everything.
func toolsetsOrNil() []string {
	if !viper.IsSet("toolsets") {
		return nil
	}
	return viper.GetStringSlice("toolsets")
}

func runStdio(_ *cobra.Command) error {
	cfg, err := serverConfig()
	if err != nil {
		return err
	}
	return ghmcp.RunStdioServer(ghmcp.StdioServerConfig{MCPServerConfig: cfg})
}

func runHTTP(_ *cobra.Command) error {
	cfg, err := serverConfig()
	if err != nil {
		return err
	}
	port := viper.GetString("port")
	if port == "" {
		port = defaultPort
	}
	return ghmcp.RunHTTPServer(ghmcp.HTTPServerConfig{
		MCPServerConfig: cfg,
		Port:            port,
	})
}

// newLogger writes structured logs to the given file, or stderr when no
// file is configured. Stdout is reserved for the stdio MCP transport.
func newLogger(outPath string) (*slog.Logger, error) {
	if outPath == "" {
		return slog.New(slog.NewTextHandler(os.Stderr, nil)), nil
	}
	file, err := os.OpenFile(outPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o666)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return slog.New(slog.NewTextHandler(file, nil)), nil
}

func main() {
	// .env is optional; real environments set variables directly
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "warning: could not load .env: %v\n", err)
	}

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}
