package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/okian/sleeplab/internal/cmd"
)

func main() {
	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := cmd.Execute(ctx)
	stop()
	os.Exit(code)
}
