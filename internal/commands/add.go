package commands

import (
	"context"
	"io"
	"strings"

	"github.com/spf13/pflag"

	"labposts/internal/config"
	"labposts/internal/exitcode"
	"labposts/internal/output"
)

func init() {
	Register(&AddCmd{})
}

// AddCmd implements the add command.
type AddCmd struct {
	body string
}

// SetBody sets the description (for testing).
func (c *AddCmd) SetBody(body string) {
	c.body = body
}

func (c *AddCmd) Name() string       { return "add" }
func (c *AddCmd) Aliases() []string  { return []string{"create"} }
func (c *AddCmd) Synopsis() string   { return "Create a post" }
func (c *AddCmd) Usage() string      { return "labposts add [--body <text>] <title...>" }
func (c *AddCmd) NeedsSession() bool { return true }

func (c *AddCmd) RegisterFlags(fs *pflag.FlagSet) {
	fs.StringVarP(&c.body, "body", "b", "", "")
}

func (c *AddCmd) Run(ctx context.Context, cfg *config.Config, sess *Session, args []string, out, errOut io.Writer) int {
	title := strings.Join(args, " ")

	res := sess.Mirror.AddItem(ctx, title, c.body)
	if !res.OK {
		return reportFailure(errOut, res)
	}

	if !cfg.Quiet {
		output.FormatItem(out, res.Value)
	}
	return exitcode.Success
}
