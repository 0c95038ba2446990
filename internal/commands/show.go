package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/pflag"

	"labposts/internal/config"
	"labposts/internal/exitcode"
	"labposts/internal/output"
)

func init() {
	Register(&ShowCmd{})
}

// ShowCmd implements the show command. It reads one post straight from
// the gateway and leaves the mirror alone.
type ShowCmd struct {
	format string
}

// SetFormat sets the output format (for testing).
func (c *ShowCmd) SetFormat(format string) {
	c.format = format
}

func (c *ShowCmd) Name() string       { return "show" }
func (c *ShowCmd) Aliases() []string  { return nil }
func (c *ShowCmd) Synopsis() string   { return "Show a single post" }
func (c *ShowCmd) Usage() string      { return "labposts show [--format text|json|yaml] <id>" }
func (c *ShowCmd) NeedsSession() bool { return true }

func (c *ShowCmd) RegisterFlags(fs *pflag.FlagSet) {
	fs.StringVarP(&c.format, "format", "o", string(output.FormatText), "")
}

func (c *ShowCmd) Run(ctx context.Context, cfg *config.Config, sess *Session, args []string, out, errOut io.Writer) int {
	id, err := ParseItemRef(args)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}
	format, err := output.ParseFormat(c.format)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	res := sess.Gateway.Fetch(ctx, id)
	if !res.OK {
		return reportFailure(errOut, res)
	}
	if err := output.WriteItem(out, format, res.Value); err != nil {
		fmt.Fprintf(errOut, "error: writing output: %v\n", err)
		return exitcode.BackendError
	}
	return exitcode.Success
}
