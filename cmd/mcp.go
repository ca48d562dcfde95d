package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/cicidi/product-sales-prediction/internal/mcpserver"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Expose registry tools to MCP clients over stdio",
	RunE:  runMCP,
}

func runMCP(_ *cobra.Command, _ []string) error {
	container, err := newContainer()
	if err != nil {
		return err
	}
	defer container.Close()

	if err := container.LoadTools(context.Background()); err != nil {
		container.Logger().Warn("Tool registry unavailable, serving no tools", "error", err)
	}

	srv := mcpserver.New("salesbot", version, container.ToolSet().Current().All(), container.Logger())
	return srv.ServeStdio()
}
