package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/arthur-debert/drivepool/cmd/drivepool"
	"github.com/arthur-debert/drivepool/pkg/ui/styles"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := drivepool.NewRootCmd()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, styles.Get("Error").Render(fmt.Sprintf("Error: %v", err)))
		stop()
		os.Exit(1)
	}
}
