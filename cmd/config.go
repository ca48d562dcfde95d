package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cicidi/product-sales-prediction/internal/config"
	"github.com/cicidi/product-sales-prediction/internal/shared/cmdutils"
)

var configCmd = &cobra.Command{
	Use:     "config",
	Aliases: []string{"onboard"},
	Short:   "Manage the salesbot configuration file",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default config, or refresh an existing one with new defaults",
	Args:  cobra.NoArgs,
	RunE:  runConfigInit,
}

var configSchemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the JSON Schema of the config file",
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		data, err := config.JSONSchema()
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	},
}

func init() {
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configSchemaCmd)
}

func runConfigInit(_ *cobra.Command, _ []string) error {
	cfgPath := configPath()

	if _, err := os.Stat(cfgPath); err == nil {
		existing, loadErr := config.Load(cfgPath)
		if loadErr != nil {
			def := config.DefaultConfig()
			existing = &def
		}
		if err := config.Save(existing, cfgPath); err != nil {
			return err
		}
		fmt.Printf("✓ Config refreshed at %s\n", cfgPath)
	} else {
		cfg := config.DefaultConfig()
		if err := config.Save(&cfg, cfgPath); err != nil {
			return err
		}
		fmt.Printf("✓ Created config at %s\n", cfgPath)
	}

	fmt.Printf("\n%s salesbot is ready!\n\n", cmdutils.Logo)
	fmt.Println("Next steps:")
	fmt.Printf("  1. Add an API key to %s (or set %s / %s)\n", cfgPath, config.EnvOpenAIKey, config.EnvAnthropicKey)
	fmt.Printf("  2. Point registry.baseUrl at your tool registry (or set %s)\n", config.EnvRegistryURL)
	fmt.Println("  3. Chat: salesbot chat -m \"What sold best last month?\"")
	return nil
}
