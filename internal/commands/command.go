// Package commands provides the command interface and implementations.
package commands

import (
	"context"
	"io"
	"log/slog"

	"github.com/spf13/pflag"

	"labposts/internal/config"
	"labposts/internal/mirror"
	"labposts/internal/service"
)

// Command defines the interface for CLI commands.
type Command interface {
	// Name returns the primary command name.
	Name() string

	// Aliases returns alternative names for the command.
	Aliases() []string

	// Synopsis returns a short description for help output.
	Synopsis() string

	// Usage returns the usage string for help output.
	Usage() string

	// NeedsSession returns true if the command works on posts.
	// help and version return false.
	NeedsSession() bool

	// RegisterFlags registers command-specific flags.
	RegisterFlags(fs *pflag.FlagSet)

	// Run executes the command.
	// cfg is always provided.
	// sess is nil if NeedsSession() returns false, unless the command
	// implements SettingsUser, in which case it carries only Logger and In.
	// args contains positional arguments after flag parsing.
	// Returns exit code.
	Run(ctx context.Context, cfg *config.Config, sess *Session, args []string, out, errOut io.Writer) int
}

// Interactive is implemented by commands that own the terminal. Their logs
// go to the configured log file or nowhere.
type Interactive interface {
	Interactive() bool
}

// SettingsUser is implemented by commands that need loaded settings and a
// logger but no backend.
type SettingsUser interface {
	NeedsSettings() bool
}

// Session is what a command runs against: one backend, the gateway over it
// and the mirror controller over the gateway.
type Session struct {
	Backend service.Backend
	Gateway *service.Gateway
	Mirror  *mirror.Controller
	Logger  *slog.Logger

	// In is read for confirmations.
	In io.Reader
}

// NewSession wires the gateway and mirror over backend using cfg settings.
func NewSession(backend service.Backend, cfg *config.Config, logger *slog.Logger, in io.Reader) *Session {
	gw := service.NewGateway(backend, cfg.Settings.ListLimit)
	return &Session{
		Backend: backend,
		Gateway: gw,
		Mirror: mirror.New(gw,
			mirror.WithLogger(logger),
			mirror.WithPreserveCompleted(cfg.Settings.PreserveCompleted),
		),
		Logger: logger,
		In:     in,
	}
}
