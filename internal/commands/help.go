package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/pflag"

	"labposts/internal/config"
	"labposts/internal/exitcode"
)

func init() {
	Register(&HelpCmd{})
}

// HelpCmd implements the help command.
type HelpCmd struct{}

func (c *HelpCmd) Name() string       { return "help" }
func (c *HelpCmd) Aliases() []string  { return nil }
func (c *HelpCmd) Synopsis() string   { return "Print usage" }
func (c *HelpCmd) Usage() string      { return "labposts help" }
func (c *HelpCmd) NeedsSession() bool { return false }

func (c *HelpCmd) RegisterFlags(fs *pflag.FlagSet) {}

func (c *HelpCmd) Run(ctx context.Context, cfg *config.Config, sess *Session, args []string, out, errOut io.Writer) int {
	WriteHelp(out, DefaultRegistry)
	return exitcode.Success
}

// WriteHelp prints usage for every command in r.
func WriteHelp(w io.Writer, r *Registry) {
	cmds := r.All()
	width := len("labposts")
	for _, cmd := range cmds {
		width = max(width, len(cmd.Usage()))
	}

	fmt.Fprintln(w, "Usage:")
	fmt.Fprintf(w, "  %-*s  %s\n", width, "labposts", "Same as list")
	for _, cmd := range cmds {
		fmt.Fprintf(w, "  %-*s  %s\n", width, cmd.Usage(), cmd.Synopsis())
	}
	fmt.Fprint(w, commonFlagsText)
}

const commonFlagsText = `
Common flags:
  --config <dir>          Override config directory
  --source remote|seed    Override the post source
  --quiet                 Suppress informational output
  --debug                 Print debug logs to stderr
`
