package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"

	"labposts/internal/backend/jsonplaceholder"
	"labposts/internal/backend/memory"
	"labposts/internal/commands"
	"labposts/internal/config"
	"labposts/internal/exitcode"
	"labposts/internal/seed"
	"labposts/internal/service"
)

// BackendFactory creates a Backend from config.
// Used to inject the backend during dispatch.
type BackendFactory func(ctx context.Context, cfg *config.Config, logger *slog.Logger) (service.Backend, error)

// DefaultBackend returns the seed store or the HTTP client, per cfg.
func DefaultBackend(ctx context.Context, cfg *config.Config, logger *slog.Logger) (service.Backend, error) {
	s := cfg.Settings
	if s.Source == config.SourceSeed {
		return memory.New(seed.Items(), memory.WithLatency(s.SeedLatency)), nil
	}

	client, err := jsonplaceholder.New(s.BaseURL,
		jsonplaceholder.WithTimeout(s.Timeout),
		jsonplaceholder.WithRateLimit(s.RateLimit),
		jsonplaceholder.WithLogger(logger),
	)
	if err != nil {
		return nil, err
	}
	return client, nil
}

// Dispatcher handles command-line parsing and dispatch.
type Dispatcher struct {
	registry *commands.Registry
	factory  BackendFactory
}

// NewDispatcher creates a new dispatcher with the given registry and backend factory.
func NewDispatcher(registry *commands.Registry, factory BackendFactory) *Dispatcher {
	if factory == nil {
		factory = DefaultBackend
	}
	return &Dispatcher{
		registry: registry,
		factory:  factory,
	}
}

// Run parses arguments and dispatches to the appropriate command.
// in is read for confirmations and by the TUI.
// Returns the exit code.
func (d *Dispatcher) Run(ctx context.Context, args []string, in io.Reader, out, errOut io.Writer) int {
	// No args -> dispatch to "list" command with no args
	if len(args) == 0 {
		args = []string{"list"}
	}

	cmdName := args[0]

	// If first token starts with -, it's an error (flags require a command)
	if strings.HasPrefix(cmdName, "-") {
		fmt.Fprintf(errOut, "error: unknown command: %s\n", cmdName)
		return exitcode.UserError
	}

	cmd, ok := d.registry.Find(cmdName)
	if !ok {
		fmt.Fprintf(errOut, "error: unknown command: %s\n", cmdName)
		return exitcode.UserError
	}

	return d.dispatchCommand(ctx, cmd, args[1:], in, out, errOut)
}

func (d *Dispatcher) dispatchCommand(ctx context.Context, cmd commands.Command, args []string, in io.Reader, out, errOut io.Writer) int {
	fs := pflag.NewFlagSet(cmd.Name(), pflag.ContinueOnError)
	fs.SetOutput(io.Discard) // We handle errors ourselves

	// Common flags
	var configDir, source string
	var quiet, debug bool

	fs.StringVar(&configDir, "config", "", "")
	fs.StringVar(&source, "source", "", "")
	fs.BoolVarP(&quiet, "quiet", "q", false, "")
	fs.BoolVar(&debug, "debug", false, "")

	cmd.RegisterFlags(fs)

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			fmt.Fprintf(out, "Usage: %s\n", cmd.Usage())
			return exitcode.Success
		}
		fmt.Fprintf(errOut, "error: %s\n", err)
		return exitcode.UserError
	}
	positionalArgs := fs.Args()

	cfg, err := config.New(configDir)
	if err != nil {
		fmt.Fprintf(errOut, "error: %s\n", err)
		return exitcode.UserError
	}
	cfg.Quiet = quiet
	cfg.Debug = debug

	settingsOnly := false
	if su, ok := cmd.(commands.SettingsUser); ok {
		settingsOnly = !cmd.NeedsSession() && su.NeedsSettings()
	}
	if !cmd.NeedsSession() && !settingsOnly {
		return cmd.Run(ctx, cfg, nil, positionalArgs, out, errOut)
	}

	if err := cfg.Load(); err != nil {
		fmt.Fprintf(errOut, "error: config error: %v\n", err)
		return exitcode.ConfigError
	}
	if source != "" {
		cfg.Settings.Source = source
		if err := cfg.Settings.Validate(); err != nil {
			fmt.Fprintf(errOut, "error: %v\n", err)
			return exitcode.UserError
		}
	}

	interactive := false
	if ic, ok := cmd.(commands.Interactive); ok {
		interactive = ic.Interactive()
	}
	logger, closeLog, err := newLogger(cfg, errOut, interactive)
	if err != nil {
		fmt.Fprintf(errOut, "error: config error: %v\n", err)
		return exitcode.ConfigError
	}
	defer closeLog()
	logger.Debug("settings loaded", "dir", cfg.Dir, "source", cfg.Settings.Source, "base_url", cfg.Settings.BaseURL)

	if settingsOnly {
		return cmd.Run(ctx, cfg, &commands.Session{Logger: logger, In: in}, positionalArgs, out, errOut)
	}

	backend, err := d.factory(ctx, cfg, logger)
	if err != nil {
		fmt.Fprintf(errOut, "error: config error: %v\n", err)
		return exitcode.ConfigError
	}

	sess := commands.NewSession(backend, cfg, logger, in)
	return cmd.Run(ctx, cfg, sess, positionalArgs, out, errOut)
}

// newLogger builds the slog logger for a command. Logs go to the configured
// log file, or to errOut unless the command owns the terminal. A relative
// log file lives in the config directory.
func newLogger(cfg *config.Config, errOut io.Writer, interactive bool) (*slog.Logger, func(), error) {
	level := slog.LevelWarn
	if cfg.Debug {
		level = slog.LevelDebug
	}

	var w io.Writer = errOut
	closeFn := func() {}
	switch {
	case cfg.Settings.LogFile != "":
		path := cfg.Settings.LogFile
		if !filepath.IsAbs(path) {
			if err := cfg.EnsureDir(); err != nil {
				return nil, nil, fmt.Errorf("creating config dir: %w", err)
			}
			path = filepath.Join(cfg.Dir, path)
		}
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
		if err != nil {
			return nil, nil, fmt.Errorf("opening log file: %w", err)
		}
		w = f
		closeFn = func() { f.Close() }
	case interactive:
		w = io.Discard
	}

	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})), closeFn, nil
}
