package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/cicidi/product-sales-prediction/internal/config/provider"
	"github.com/cicidi/product-sales-prediction/internal/registry"
	"github.com/cicidi/product-sales-prediction/internal/shared/cmdutils"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show salesbot status",
	RunE:  runStatus,
}

func runStatus(_ *cobra.Command, _ []string) error {
	cfgPath := configPath()

	fmt.Printf("%s salesbot Status\n\n", cmdutils.Logo)

	_, statErr := os.Stat(cfgPath)
	cfgMark := "✗"
	if statErr == nil {
		cfgMark = "✓"
	}
	fmt.Printf("Config:    %s %s\n", cfgPath, cfgMark)

	cfg, err := loadConfig()
	if err != nil {
		fmt.Printf("  (could not load config: %v)\n", err)
		return nil
	}

	fmt.Printf("Model:     %s\n", cfg.Agents.Defaults.Model)
	fmt.Printf("Judge:     %s\n", cfg.Judge.Kind)
	fmt.Printf("Sessions:  %s\n\n", cfg.SessionsDir())

	fmt.Println("Providers:")
	for _, name := range []string{provider.ProviderOpenAI, provider.ProviderAnthropic} {
		p := cfg.Providers.ByName(name)
		switch {
		case p.APIKey != "" && p.APIBase != "":
			fmt.Printf("  %-12s ✓ %s\n", name, p.APIBase)
		case p.APIKey != "":
			fmt.Printf("  %-12s ✓\n", name)
		default:
			fmt.Printf("  %-12s (not set)\n", name)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client := registry.New(cfg.Registry.BaseURL, newLogger())
	fmt.Printf("\nRegistry:  %s\n", client.BaseURL())
	st, err := client.Status(ctx)
	if err != nil {
		fmt.Printf("  ✗ %v\n", err)
		return nil
	}
	fmt.Printf("  ✓ %s (version %s, %d tools)\n", st.Status, st.Version, st.ToolCount)
	return nil
}
