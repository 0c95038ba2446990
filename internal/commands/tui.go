package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/pflag"

	"labposts/internal/config"
	"labposts/internal/exitcode"
	"labposts/internal/tui"
)

func init() {
	Register(&TUICmd{})
}

// TUICmd opens the interactive list.
type TUICmd struct{}

func (c *TUICmd) Name() string       { return "tui" }
func (c *TUICmd) Aliases() []string  { return nil }
func (c *TUICmd) Synopsis() string   { return "Open the interactive list" }
func (c *TUICmd) Usage() string      { return "labposts tui" }
func (c *TUICmd) NeedsSession() bool { return true }
func (c *TUICmd) Interactive() bool  { return true }

func (c *TUICmd) RegisterFlags(fs *pflag.FlagSet) {}

func (c *TUICmd) Run(ctx context.Context, cfg *config.Config, sess *Session, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}
	if err := tui.Run(ctx, sess.Mirror, sess.In, out); err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.BackendError
	}
	return exitcode.Success
}
