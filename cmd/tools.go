package cmd

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cicidi/product-sales-prediction/internal/toolschema"
)

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "Inspect tools published by the registry",
}

var toolsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registry tools",
	Args:  cobra.NoArgs,
	RunE:  runToolsList,
}

var toolsDescribeCmd = &cobra.Command{
	Use:   "describe <name>",
	Short: "Show the description and parameter schema of a tool",
	Args:  cobra.ExactArgs(1),
	RunE:  runToolsDescribe,
}

func init() {
	toolsCmd.AddCommand(toolsListCmd)
	toolsCmd.AddCommand(toolsDescribeCmd)
}

func loadBoundTools() ([]*toolschema.BoundTool, error) {
	container, err := newContainer()
	if err != nil {
		return nil, err
	}
	defer container.Close()

	if err := container.LoadTools(context.Background()); err != nil {
		return nil, err
	}
	return toolschema.BoundTools(container.ToolSet().Current()), nil
}

func runToolsList(_ *cobra.Command, _ []string) error {
	bound, err := loadBoundTools()
	if err != nil {
		return err
	}
	if len(bound) == 0 {
		fmt.Println("No tools published.")
		return nil
	}
	for _, t := range bound {
		d := t.Descriptor()
		fmt.Printf("- %s (%s): %s\n", t.Name(), d.DisplayName, d.Description)
	}
	return nil
}

func runToolsDescribe(_ *cobra.Command, args []string) error {
	bound, err := loadBoundTools()
	if err != nil {
		return err
	}
	for _, t := range bound {
		if t.Name() != args[0] && t.Descriptor().Name != args[0] {
			continue
		}
		fmt.Printf("%s  (registry name: %s)\n\n%s\n\n", t.Name(), t.Descriptor().Name, t.Description())
		var pretty json.RawMessage = t.Parameters()
		out, err := json.MarshalIndent(pretty, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	}
	return fmt.Errorf("tool %q not found", args[0])
}
