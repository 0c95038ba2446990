package commands

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/pflag"

	"labposts/internal/config"
	"labposts/internal/exitcode"
	"labposts/internal/mirror"
	"labposts/internal/output"
)

func init() {
	Register(&EditCmd{})
}

// EditCmd implements the edit command. Flags not given keep the post's
// current values; the post is always sent in full.
type EditCmd struct {
	title optString
	body  optString
}

// SetTitle sets the new title (for testing).
func (c *EditCmd) SetTitle(title string) { c.title.Set(title) }

// SetBody sets the new description (for testing).
func (c *EditCmd) SetBody(body string) { c.body.Set(body) }

func (c *EditCmd) Name() string       { return "edit" }
func (c *EditCmd) Aliases() []string  { return nil }
func (c *EditCmd) Synopsis() string   { return "Replace a post's title and body" }
func (c *EditCmd) Usage() string      { return "labposts edit [--title <text>] [--body <text>] <id>" }
func (c *EditCmd) NeedsSession() bool { return true }

func (c *EditCmd) RegisterFlags(fs *pflag.FlagSet) {
	c.title, c.body = optString{}, optString{}
	fs.VarP(&c.title, "title", "t", "")
	fs.VarP(&c.body, "body", "b", "")
}

func (c *EditCmd) Run(ctx context.Context, cfg *config.Config, sess *Session, args []string, out, errOut io.Writer) int {
	id, err := ParseItemRef(args)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}
	if !c.title.set && !c.body.set {
		fmt.Fprintln(errOut, "error: nothing to change (use --title or --body)")
		return exitcode.UserError
	}

	if res := sess.Mirror.Refresh(ctx); !res.OK {
		return reportFailure(errOut, res)
	}

	if err := sess.Mirror.BeginEdit(id); err != nil {
		if errors.Is(err, mirror.ErrItemNotFound) {
			fmt.Fprintf(errOut, "error: item not found: %d\n", id)
			return exitcode.UserError
		}
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}
	session := sess.Mirror.Snapshot().EditSession
	sess.Mirror.SetEditDraft(c.title.or(session.DraftTitle), c.body.or(session.DraftDescription))

	res := sess.Mirror.CommitEdit(ctx)
	if !res.OK {
		sess.Mirror.CancelEdit()
		return reportFailure(errOut, res)
	}

	if !cfg.Quiet {
		output.FormatItem(out, res.Value)
	}
	return exitcode.Success
}
