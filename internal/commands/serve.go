package commands

import (
	"context"
	"fmt"
	"io"
	"net"

	"github.com/spf13/pflag"

	"labposts/internal/backend/memory"
	"labposts/internal/config"
	"labposts/internal/exitcode"
	"labposts/internal/seed"
	"labposts/internal/server"
)

func init() {
	Register(&ServeCmd{})
}

// ServeCmd runs the stand-in posts server over the seed fixtures until the
// context is cancelled.
type ServeCmd struct {
	addr string
}

// SetAddr sets the listen address (for testing).
func (c *ServeCmd) SetAddr(addr string) {
	c.addr = addr
}

func (c *ServeCmd) Name() string        { return "serve" }
func (c *ServeCmd) Aliases() []string   { return nil }
func (c *ServeCmd) Synopsis() string    { return "Serve the seed posts over HTTP" }
func (c *ServeCmd) Usage() string       { return "labposts serve [--addr <host:port>]" }
func (c *ServeCmd) NeedsSession() bool  { return false }
func (c *ServeCmd) NeedsSettings() bool { return true }

func (c *ServeCmd) RegisterFlags(fs *pflag.FlagSet) {
	fs.StringVar(&c.addr, "addr", "", "")
}

func (c *ServeCmd) Run(ctx context.Context, cfg *config.Config, sess *Session, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}
	addr := c.addr
	if addr == "" {
		addr = cfg.Settings.Server.Addr
	}

	posts := seed.Items()
	store := memory.New(posts, memory.WithLatency(cfg.Settings.SeedLatency))
	srv := server.New(store, sess.Logger)

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.BackendError
	}
	if !cfg.Quiet {
		fmt.Fprintf(out, "serving %d posts on %s\n", len(posts), ln.Addr())
	}
	sess.Logger.Info("serving posts", "addr", ln.Addr().String())
	if err := srv.Serve(ctx, ln); err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.BackendError
	}
	return exitcode.Success
}
