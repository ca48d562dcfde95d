package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/cicidi/product-sales-prediction/internal/agent"
	"github.com/cicidi/product-sales-prediction/internal/shared/cmdutils"
)

var (
	chatMessage    string
	chatSession    string
	chatNewSession bool
)

var chatCmd = &cobra.Command{
	Use:     "chat",
	Aliases: []string{"agent"},
	Short:   "Talk to the sales assistant",
	RunE:    runChat,
}

func init() {
	chatCmd.Flags().StringVarP(&chatMessage, "message", "m", "", "Send a single message and exit")
	chatCmd.Flags().StringVarP(&chatSession, "session", "s", "cli:direct", "Session ID")
	chatCmd.Flags().BoolVar(&chatNewSession, "new", false, "Start a fresh session with a random ID")
}

var exitCommands = map[string]bool{
	"exit":  true,
	"quit":  true,
	"/exit": true,
	"/quit": true,
	":q":    true,
}

func runChat(_ *cobra.Command, _ []string) error {
	container, err := newContainer()
	if err != nil {
		return err
	}
	defer container.Close()

	pool, err := container.Pool()
	if err != nil {
		return err
	}

	sessionID := chatSession
	if chatNewSession {
		sessionID = uuid.NewString()
	}
	orch, err := pool.Get(sessionID)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := container.LoadTools(ctx); err != nil {
		container.Logger().Warn("Tool registry unavailable, continuing without tools", "error", err)
		fmt.Fprintf(os.Stderr, "  ! tool registry unavailable: %v\n", err)
	}

	if chatMessage != "" {
		return runSingleMessage(ctx, orch, chatMessage)
	}
	return runInteractive(ctx, orch)
}

// runSingleMessage sends one message and prints the reply.
func runSingleMessage(ctx context.Context, orch *agent.Orchestrator, message string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	fmt.Fprintf(os.Stderr, "  ↳ thinking...\n")
	cmdutils.PrintResponse(orch.Run(ctx, message))
	return nil
}

// runInteractive reads lines from stdin and answers each before prompting
// again. Ctrl+C cancels ctx and ends the loop.
func runInteractive(ctx context.Context, orch *agent.Orchestrator) error {
	fmt.Printf("%s Interactive mode, session %s (type 'exit' or Ctrl+C to quit)\n\n",
		cmdutils.Logo, orch.Conversation().SessionID())

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	for {
		fmt.Print("You: ")

		var line string
		select {
		case <-ctx.Done():
			fmt.Println("\nGoodbye!")
			return nil
		case l, ok := <-lines:
			if !ok {
				fmt.Println("\nGoodbye!")
				return nil
			}
			line = strings.TrimSpace(l)
		}

		if line == "" {
			continue
		}
		if exitCommands[strings.ToLower(line)] {
			fmt.Println("Goodbye!")
			return nil
		}

		cmdutils.PrintResponse(orch.Run(ctx, line))
	}
}
