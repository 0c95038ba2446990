// Command labposts mirrors a remote collection of posts and edits it from
// the command line or an interactive terminal view.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"labposts/internal/cli"
	"labposts/internal/commands"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	d := cli.NewDispatcher(commands.DefaultRegistry, cli.DefaultBackend)
	return d.Run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
}
