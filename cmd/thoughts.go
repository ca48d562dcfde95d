package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cicidi/product-sales-prediction/internal/memory"
)

var thoughtsCmd = &cobra.Command{
	Use:   "thoughts [session-id]",
	Short: "Show recorded orchestrator thoughts",
	Long:  "Without arguments lists sessions with recorded thoughts. Requires memory.thoughtDb in the config.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runThoughts,
}

func runThoughts(_ *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	path := cfg.ThoughtDBPath()
	if path == "" {
		return fmt.Errorf("thought store disabled: set memory.thoughtDb in %s", configPath())
	}

	db, err := memory.OpenThoughtDB(path)
	if err != nil {
		return err
	}
	defer db.Close()

	if len(args) == 0 {
		ids, err := db.Sessions()
		if err != nil {
			return err
		}
		for _, id := range ids {
			fmt.Println(id)
		}
		return nil
	}

	entries, err := db.List(args[0])
	if err != nil {
		return err
	}
	for _, e := range entries {
		fmt.Printf("%s  %s\n", e.Timestamp, e.Text)
	}
	return nil
}
