package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/minjae-ko/docchat/cmd/docchat/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "serve-mcp",
	Short: "Start an MCP server exposing the document Q&A backend",
	Long: `Start an MCP (Model Context Protocol) server over stdio that lets
assistants query the indexed documents and browse the file registry.

Configure in your assistant's MCP config:
  {
    "mcpServers": {
      "docchat": {
        "command": "docchat",
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
	if err := mcp.StartServer(cfg); err != nil {
		return fmt.Errorf("MCP server failed: %w", err)
	}
	return nil
}
