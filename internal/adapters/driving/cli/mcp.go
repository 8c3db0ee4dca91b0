package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/cfgswitch/internal/adapters/driving/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  `Commands for the Model Context Protocol (MCP) server integration.`,
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server so AI assistants can list and
switch providers, check for drift and toggle prompts.

By default, the server communicates over stdio using JSON-RPC.
Use --port to start an HTTP server instead.

Examples:
  # Stdio mode (default)
  cfgswitch mcp serve

  # HTTP mode (for MCP Inspector, remote access)
  cfgswitch mcp serve --port 8080

Client configuration:
  {
    "mcpServers": {
      "cfgswitch": {
        "command": "/path/to/cfgswitch",
        "args": ["mcp", "serve"]
      }
    }
  }`,
	Args: cobra.NoArgs,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().IntP("port", "p", 0, "HTTP port (0 = use stdio)")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	port, err := cmd.Flags().GetInt("port")
	if err != nil {
		return fmt.Errorf("getting port flag: %w", err)
	}

	rt, err := currentRuntime()
	if err != nil {
		return err
	}

	server, err := mcp.NewServer(&mcp.Ports{Scopes: rt.Scopes})
	if err != nil {
		return err
	}

	if port > 0 {
		addr := fmt.Sprintf(":%d", port)
		fmt.Fprintf(cmd.OutOrStdout(), "MCP server listening on http://localhost%s\n", addr)
		return server.RunHTTP(cmd.Context(), addr)
	}

	return server.Run(cmd.Context())
}
