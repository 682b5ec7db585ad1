package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"elatprep/internal/failures"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	cmd := newRootCommand()
	err := cmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		if errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, "elatprep: interrupted")
		} else {
			fmt.Fprintln(os.Stderr, "elatprep:", err)
		}
		os.Exit(failures.ExitCode(err))
	}
}
