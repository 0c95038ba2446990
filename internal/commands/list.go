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
	Register(&ListCmd{})
}

// ListCmd implements the list command.
// Handles both `labposts` (no args) and `labposts list`.
type ListCmd struct {
	format string
}

// SetFormat sets the output format (for testing).
func (c *ListCmd) SetFormat(format string) {
	c.format = format
}

func (c *ListCmd) Name() string       { return "list" }
func (c *ListCmd) Aliases() []string  { return []string{"ls"} }
func (c *ListCmd) Synopsis() string   { return "Fetch and list posts" }
func (c *ListCmd) Usage() string      { return "labposts list [--format text|json|yaml]" }
func (c *ListCmd) NeedsSession() bool { return true }

func (c *ListCmd) RegisterFlags(fs *pflag.FlagSet) {
	fs.StringVarP(&c.format, "format", "o", string(output.FormatText), "")
}

func (c *ListCmd) Run(ctx context.Context, cfg *config.Config, sess *Session, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}
	format, err := output.ParseFormat(c.format)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	res := sess.Mirror.Refresh(ctx)
	if !res.OK {
		return reportFailure(errOut, res)
	}
	items := res.Value

	if format == output.FormatText {
		if len(items) == 0 {
			if !cfg.Quiet {
				fmt.Fprintln(out, "no items found")
			}
			return exitcode.Success
		}
		for _, item := range items {
			output.FormatItem(out, item)
		}
		if !cfg.Quiet {
			output.FormatStats(out, items)
		}
		return exitcode.Success
	}

	if err := output.WriteItems(out, format, items); err != nil {
		fmt.Fprintf(errOut, "error: writing output: %v\n", err)
		return exitcode.BackendError
	}
	return exitcode.Success
}
