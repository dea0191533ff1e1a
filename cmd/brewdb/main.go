// Command brewdb manages the brewing recipe database.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/roach88/brewdb/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := cli.NewRootCommand().ExecuteContext(ctx)
	stop()
	os.Exit(cli.GetExitCode(err))
}
