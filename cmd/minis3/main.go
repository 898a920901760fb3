// Command minis3 is a command-line client for S3-compatible storage.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

var version = "dev"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	st := newState(ctx, os.Stdout, os.Stderr)
	err := newApp(st).Run(os.Args)
	cancel()
	if err != nil {
		fmt.Fprintf(os.Stderr, "minis3: %v\n", err)
		os.Exit(1)
	}
}
