package cli_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"labposts/internal/backend/jsonplaceholder"
	"labposts/internal/backend/memory"
	"labposts/internal/cli"
	"labposts/internal/commands"
	"labposts/internal/config"
	"labposts/internal/exitcode"
	"labposts/internal/service"
	"labposts/internal/testutil"
)

// testFactory creates a backend factory that returns the given FakeBackend.
func testFactory(backend *testutil.FakeBackend) cli.BackendFactory {
	return func(ctx context.Context, cfg *config.Config, logger *slog.Logger) (service.Backend, error) {
		return backend, nil
	}
}

func run(t *testing.T, d *cli.Dispatcher, args ...string) (stdout, stderr string, code int) {
	t.Helper()
	var out, errOut bytes.Buffer
	// Every run gets its own config dir so a developer's settings never leak in.
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		args = append(args, "--config", t.TempDir())
	}
	code = d.Run(context.Background(), args, strings.NewReader(""), &out, &errOut)
	return out.String(), errOut.String(), code
}

func TestDispatcher_UnknownCommand(t *testing.T) {
	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, testFactory(testutil.NewFakeBackend()))

	_, stderr, code := run(t, dispatcher, "unknowncmd")

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	expected := "error: unknown command: unknowncmd\n"
	if stderr != expected {
		t.Errorf("expected %q, got %q", expected, stderr)
	}
}

func TestDispatcher_FlagBeforeCommand(t *testing.T) {
	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, testFactory(testutil.NewFakeBackend()))

	_, stderr, code := run(t, dispatcher, "--quiet")

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	expected := "error: unknown command: --quiet\n"
	if stderr != expected {
		t.Errorf("expected %q, got %q", expected, stderr)
	}
}

func TestDispatcher_HelpCommand(t *testing.T) {
	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, testFactory(testutil.NewFakeBackend()))

	stdout, stderr, code := run(t, dispatcher, "help")

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	if !strings.Contains(stdout, "Usage:") {
		t.Error("expected help output to contain 'Usage:'")
	}
}

func TestDispatcher_UnknownFlag(t *testing.T) {
	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, testFactory(testutil.NewFakeBackend()))

	_, stderr, code := run(t, dispatcher, "help", "--unknown")

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	expected := "error: unknown flag: --unknown\n"
	if stderr != expected {
		t.Errorf("expected %q, got %q", expected, stderr)
	}
}

func TestDispatcher_NoArgsLists(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	backend := testutil.NewFakeBackend(service.Item{ID: 1, Title: "only"})
	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, testFactory(backend))

	var out, errOut bytes.Buffer
	code := dispatcher.Run(context.Background(), nil, nil, &out, &errOut)

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d (%s)", exitcode.Success, code, errOut.String())
	}
	if backend.Calls["list"] != 1 {
		t.Errorf("expected no-arg run to list, got %d list calls", backend.Calls["list"])
	}
	if !strings.HasPrefix(out.String(), "   1  [ ] only\n") {
		t.Errorf("unexpected stdout %q", out.String())
	}
}

func TestDispatcher_ListWithFlags(t *testing.T) {
	backend := testutil.NewFakeBackend(service.Item{ID: 1, Title: "only"})
	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, testFactory(backend))

	stdout, stderr, code := run(t, dispatcher, "list", "--quiet", "--format", "text")

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d (%s)", exitcode.Success, code, stderr)
	}
	if stdout != "   1  [ ] only\n" {
		t.Errorf("unexpected stdout %q", stdout)
	}
}

func TestDispatcher_FlagNeedsValue(t *testing.T) {
	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, testFactory(testutil.NewFakeBackend()))

	var out, errOut bytes.Buffer
	code := dispatcher.Run(context.Background(), []string{"edit", "1", "--title"}, nil, &out, &errOut)

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if !strings.HasPrefix(errOut.String(), "error: flag needs an argument") {
		t.Errorf("unexpected stderr %q", errOut.String())
	}
}

func TestDispatcher_ConfigError(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("list_limit: 0\n"), 0600); err != nil {
		t.Fatal(err)
	}
	backend := testutil.NewFakeBackend()
	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, testFactory(backend))

	var out, errOut bytes.Buffer
	code := dispatcher.Run(context.Background(), []string{"list", "--config", dir}, nil, &out, &errOut)

	if code != exitcode.ConfigError {
		t.Errorf("expected exit code %d, got %d", exitcode.ConfigError, code)
	}
	if !strings.HasPrefix(errOut.String(), "error: config error:") {
		t.Errorf("unexpected stderr %q", errOut.String())
	}
	if backend.TotalCalls() != 0 {
		t.Error("expected no backend calls on config error")
	}
}

func TestDispatcher_ConfigNotLoadedForHelp(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("timeout: [\n"), 0600); err != nil {
		t.Fatal(err)
	}
	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, nil)

	var out, errOut bytes.Buffer
	code := dispatcher.Run(context.Background(), []string{"version", "--config", dir}, nil, &out, &errOut)
	if code != exitcode.Success {
		t.Errorf("expected version to ignore a broken settings file, got %d (%s)", code, errOut.String())
	}
}

func TestDispatcher_BadSource(t *testing.T) {
	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, testFactory(testutil.NewFakeBackend()))

	_, stderr, code := run(t, dispatcher, "list", "--source", "ftp")

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if !strings.Contains(stderr, "unknown source") {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

func TestDispatcher_FactoryError(t *testing.T) {
	factory := func(ctx context.Context, cfg *config.Config, logger *slog.Logger) (service.Backend, error) {
		return nil, errors.New("boom")
	}
	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, factory)

	_, stderr, code := run(t, dispatcher, "list")

	if code != exitcode.ConfigError {
		t.Errorf("expected exit code %d, got %d", exitcode.ConfigError, code)
	}
	if stderr != "error: config error: boom\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

func TestDispatcher_SeedSource(t *testing.T) {
	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, nil)

	stdout, stderr, code := run(t, dispatcher, "list", "--source", "seed", "--quiet")

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d (%s)", exitcode.Success, code, stderr)
	}
	if lines := strings.Count(stdout, "\n"); lines != 10 {
		t.Errorf("expected 10 seed posts, got %d lines:\n%s", lines, stdout)
	}
}

func TestDispatcher_DebugLogsToStderr(t *testing.T) {
	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, testFactory(testutil.NewFakeBackend()))

	_, stderr, code := run(t, dispatcher, "list", "--debug", "--quiet")

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if !strings.Contains(stderr, "settings loaded") {
		t.Errorf("expected debug log on stderr, got %q", stderr)
	}
}

func TestDefaultBackend(t *testing.T) {
	cfg, _ := config.New(t.TempDir())
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	backend, err := cli.DefaultBackend(context.Background(), cfg, logger)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := backend.(*jsonplaceholder.Client); !ok {
		t.Errorf("expected HTTP client for remote source, got %T", backend)
	}

	cfg.Settings.Source = config.SourceSeed
	backend, err = cli.DefaultBackend(context.Background(), cfg, logger)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := backend.(*memory.Store); !ok {
		t.Errorf("expected memory store for seed source, got %T", backend)
	}
}

func TestDispatcher_ServeSkipsBackend(t *testing.T) {
	factory := func(ctx context.Context, cfg *config.Config, logger *slog.Logger) (service.Backend, error) {
		t.Error("serve should not build a backend")
		return testutil.NewFakeBackend(), nil
	}
	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, factory)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out, errOut bytes.Buffer
	args := []string{"serve", "--addr", "127.0.0.1:0", "--quiet", "--config", t.TempDir()}
	code := dispatcher.Run(ctx, args, nil, &out, &errOut)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d (%s)", exitcode.Success, code, errOut.String())
	}
}

func TestDispatcher_ServeLoadsSettings(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("list_limit: 0\n"), 0600); err != nil {
		t.Fatal(err)
	}
	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, nil)

	var out, errOut bytes.Buffer
	code := dispatcher.Run(context.Background(), []string{"serve", "--config", dir}, nil, &out, &errOut)

	if code != exitcode.ConfigError {
		t.Errorf("expected exit code %d, got %d", exitcode.ConfigError, code)
	}
}

func TestDispatcher_RelativeLogFileInConfigDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "fresh")
	t.Setenv("LABPOSTS_LOG_FILE", "labposts.log")
	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, testFactory(testutil.NewFakeBackend()))

	var out, errOut bytes.Buffer
	code := dispatcher.Run(context.Background(), []string{"list", "--debug", "--quiet", "--config", dir}, nil, &out, &errOut)

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d (%s)", exitcode.Success, code, errOut.String())
	}
	if errOut.Len() != 0 {
		t.Errorf("expected logs in the file, got stderr %q", errOut.String())
	}
	data, err := os.ReadFile(filepath.Join(dir, "labposts.log"))
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}
	if !strings.Contains(string(data), "settings loaded") {
		t.Errorf("expected debug log in file, got %q", data)
	}
}
