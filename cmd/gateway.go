package cmd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/cicidi/product-sales-prediction/internal/gateway"
	"github.com/cicidi/product-sales-prediction/internal/shared/cmdutils"
)

var gatewayPort int

var gatewayCmd = &cobra.Command{
	Use:   "gateway",
	Short: "Serve the assistant over a websocket gateway",
	RunE:  runGateway,
}

func init() {
	gatewayCmd.Flags().IntVarP(&gatewayPort, "port", "p", 0, "Gateway port (overrides gateway.port)")
}

func runGateway(_ *cobra.Command, _ []string) error {
	container, err := newContainer()
	if err != nil {
		return err
	}
	defer container.Close()

	pool, err := container.Pool()
	if err != nil {
		return err
	}
	cfg := container.Config()
	logger := container.Logger()

	refreshSvc := container.RefreshService()
	if err := refreshSvc.Validate(); err != nil {
		return err
	}

	port := cfg.Gateway.Port
	if gatewayPort > 0 {
		port = gatewayPort
	}
	addr := net.JoinHostPort(cfg.Gateway.Host, strconv.Itoa(port))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := container.LoadTools(ctx); err != nil {
		logger.Warn("Initial tool load failed, serving without tools", "error", err)
	}
	fmt.Printf("%s Loaded %d tools from %s\n", cmdutils.Logo, container.ToolSet().Current().Len(), cfg.Registry.BaseURL)

	toolCount := func() int { return container.ToolSet().Current().Len() }
	srv := gateway.New(addr, pool, container.Registry(), toolCount, logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return srv.Start(gctx) })
	g.Go(func() error { return refreshSvc.Start(gctx) })

	fmt.Printf("%s Gateway listening on ws://%s/ws. Press Ctrl+C to stop.\n", cmdutils.Logo, addr)

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(os.Stderr, "gateway error: %v\n", err)
		return err
	}
	fmt.Println("\nShutdown complete.")
	return nil
}
