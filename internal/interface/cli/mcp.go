package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/neilberkman/tickr/cmd/tickr/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "serve-mcp",
	Short: "Start MCP server for agent integration",
	Long: `Start an MCP (Model Context Protocol) server on stdio so an agent can
list entries, look one up and read tracking totals.

Configure in your MCP client's config file:
  {
    "mcpServers": {
      "tickr": {
        "command": "tickr",
        "args": ["serve-mcp"]
      }
    }
  }
`,
	RunE: runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// stdout carries the protocol
	if err := mcp.StartServer(cfg.DBPath, newLogger(cfg, os.Stderr)); err != nil {
		return fmt.Errorf("MCP server failed: %w", err)
	}
	return nil
}
