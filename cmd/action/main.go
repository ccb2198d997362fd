package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/zanner-cms/action/internal/config"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand(config.Load).ExecuteContext(ctx); err != nil {
		slog.Error("action exited with error", "error", err)
		stop()
		os.Exit(1)
	}
}
