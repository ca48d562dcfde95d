package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cicidi/product-sales-prediction/internal/config"
	"github.com/cicidi/product-sales-prediction/internal/session"
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "Inspect stored conversation history",
}

var sessionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List sessions, newest first",
	Args:  cobra.NoArgs,
	RunE:  runSessionsList,
}

var sessionsShowCmd = &cobra.Command{
	Use:   "show <session-id>",
	Short: "Print the history of a session",
	Args:  cobra.ExactArgs(1),
	RunE:  runSessionsShow,
}

func init() {
	sessionsCmd.AddCommand(sessionsListCmd)
	sessionsCmd.AddCommand(sessionsShowCmd)
}

// sessionManager opens the history store without resolving an LLM provider.
func sessionManager() (*session.Manager, *config.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	m, err := session.NewManager(cfg.SessionsDir(), newLogger())
	return m, cfg, err
}

func runSessionsList(_ *cobra.Command, _ []string) error {
	m, _, err := sessionManager()
	if err != nil {
		return err
	}
	infos := m.ListSessions()
	if len(infos) == 0 {
		fmt.Printf("No sessions in %s\n", m.Dir())
		return nil
	}
	for _, info := range infos {
		fmt.Printf("%-36s %4d turns  %s\n", info.ID, info.Turns, info.UpdatedAt)
	}
	return nil
}

func runSessionsShow(_ *cobra.Command, args []string) error {
	m, _, err := sessionManager()
	if err != nil {
		return err
	}
	conv, err := m.GetOrCreate(args[0])
	if err != nil {
		return err
	}
	if conv.Len() == 0 {
		fmt.Printf("Session %s has no history.\n", args[0])
		return nil
	}
	for _, t := range conv.FullHistory() {
		fmt.Printf("[%s]\nUser: %s\nAssistant: %s\n\n", t.Timestamp, t.User, t.Reply)
	}
	return nil
}
