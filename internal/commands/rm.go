package commands

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/pflag"

	"labposts/internal/config"
	"labposts/internal/exitcode"
)

func init() {
	Register(&RmCmd{})
}

// RmCmd implements the rm command.
type RmCmd struct {
	yes bool
}

// SetYes skips the confirmation prompt (for testing).
func (c *RmCmd) SetYes(yes bool) {
	c.yes = yes
}

func (c *RmCmd) Name() string       { return "rm" }
func (c *RmCmd) Aliases() []string  { return []string{"delete"} }
func (c *RmCmd) Synopsis() string   { return "Delete a post" }
func (c *RmCmd) Usage() string      { return "labposts rm [--yes] <id>" }
func (c *RmCmd) NeedsSession() bool { return true }

func (c *RmCmd) RegisterFlags(fs *pflag.FlagSet) {
	fs.BoolVarP(&c.yes, "yes", "y", false, "")
}

func (c *RmCmd) Run(ctx context.Context, cfg *config.Config, sess *Session, args []string, out, errOut io.Writer) int {
	id, err := ParseItemRef(args)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	if res := sess.Mirror.Refresh(ctx); !res.OK {
		return reportFailure(errOut, res)
	}
	item, ok := sess.Mirror.Item(id)
	if !ok {
		fmt.Fprintf(errOut, "error: item not found: %d\n", id)
		return exitcode.UserError
	}

	if !c.yes {
		fmt.Fprintf(out, "Delete #%d %q? [y/N] ", item.ID, item.Title)
		if !confirm(sess.In) {
			fmt.Fprintln(out, "aborted")
			return exitcode.Success
		}
	}

	res := sess.Mirror.RemoveItem(ctx, id)
	if !res.OK {
		return reportFailure(errOut, res)
	}

	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}

// confirm reads one line from in and reports whether it is y or yes.
func confirm(in io.Reader) bool {
	if in == nil {
		return false
	}
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}
