package cli_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"kanori/internal/cli"
	"kanori/internal/commands"
	"kanori/internal/config"
	"kanori/internal/exitcode"
	"kanori/internal/service"
	"kanori/internal/testutil"
)

// testFactory creates a service factory that returns the given FakeService.
func testFactory(svc *testutil.FakeService) cli.ServiceFactory {
	return func(ctx context.Context, cfg *config.Config) (service.Service, error) {
		return svc, nil
	}
}

func dispatch(t *testing.T, factory cli.ServiceFactory, args ...string) (stdout, stderr string, code int) {
	t.Helper()
	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, factory)

	var outBuf, errBuf bytes.Buffer
	code = dispatcher.Run(context.Background(), args, &outBuf, &errBuf)
	return outBuf.String(), errBuf.String(), code
}

func TestDispatcher_UnknownCommand(t *testing.T) {
	_, stderr, code := dispatch(t, testFactory(testutil.NewFakeService()), "unknowncmd")

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	expected := "error: unknown command: unknowncmd\n"
	if stderr != expected {
		t.Errorf("expected %q, got %q", expected, stderr)
	}
}

func TestDispatcher_FlagBeforeCommand(t *testing.T) {
	_, stderr, code := dispatch(t, testFactory(testutil.NewFakeService()), "--quiet")

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	expected := "error: unknown command: --quiet\n"
	if stderr != expected {
		t.Errorf("expected %q, got %q", expected, stderr)
	}
}

func TestDispatcher_HelpCommand(t *testing.T) {
	stdout, stderr, code := dispatch(t, nil, "help", "--config", t.TempDir())

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

func TestDispatcher_VersionCommand(t *testing.T) {
	stdout, stderr, code := dispatch(t, nil, "version", "--config", t.TempDir())

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	if stdout != "kanori 0.1.0\n" {
		t.Errorf("expected 'kanori 0.1.0\\n', got %q", stdout)
	}
}

func TestDispatcher_FlagErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"unknown flag", []string{"help", "--unknown"}, "error: unknown flag: --unknown\n"},
		{"unknown shorthand", []string{"board", "-z"}, "error: unknown shorthand flag: 'z' in -z\n"},
		{"missing value", []string{"board", "--lane"}, "error: flag needs an argument: --lane\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, stderr, code := dispatch(t, testFactory(testutil.NewFakeService()), tt.args...)
			if code != exitcode.UserError {
				t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
			}
			if stderr != tt.want {
				t.Errorf("expected %q, got %q", tt.want, stderr)
			}
		})
	}
}

func TestDispatcher_CommandHelpFlag(t *testing.T) {
	stdout, _, code := dispatch(t, nil, "move", "--help")

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stdout != "Usage: kanori move <id> <status> [index]\n" {
		t.Errorf("unexpected usage %q", stdout)
	}
}

func TestDispatcher_NoArgsShowsBoard(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddTask(1, "Write report", service.StatusToday)
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	stdout, stderr, code := dispatch(t, testFactory(svc))

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d (stderr %q)", exitcode.Success, code, stderr)
	}
	if !strings.Contains(stdout, "TODAY (1)\n------------\n   1  Write report\n") {
		t.Errorf("unexpected board %q", stdout)
	}
}

func TestDispatcher_NotLoggedIn(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.SetAuthenticated(false)

	stdout, stderr, code := dispatch(t, testFactory(svc), "board", "--config", t.TempDir())

	if code != exitcode.AuthError {
		t.Errorf("expected exit code %d, got %d", exitcode.AuthError, code)
	}
	if stdout != "" {
		t.Errorf("expected no stdout, got %q", stdout)
	}
	if stderr != "error: not logged in (run: kanori login)\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

func TestDispatcher_AnonymousCommandSkipsAuthCheck(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.SetAuthenticated(false)

	stdout, stderr, code := dispatch(t, testFactory(svc), "logout", "--config", t.TempDir())

	if code != exitcode.Success || stdout != "not logged in\n" || stderr != "" {
		t.Errorf("unexpected result %d %q %q", code, stdout, stderr)
	}
}

func TestDispatcher_LocalCommandSkipsFactory(t *testing.T) {
	factory := func(ctx context.Context, cfg *config.Config) (service.Service, error) {
		t.Error("factory must not be called for local commands")
		return nil, errors.New("unreachable")
	}

	stdout, _, code := dispatch(t, factory, "bounds", "--config", t.TempDir())
	if code != exitcode.Success || stdout != "not set\n" {
		t.Errorf("unexpected result %d %q", code, stdout)
	}
}

func TestDispatcher_FactoryError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"backend", errors.New("read credentials: permission denied"), exitcode.BackendError},
		{"auth", fmt.Errorf("%w: corrupt credentials", service.ErrSessionExpired), exitcode.AuthError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			factory := func(ctx context.Context, cfg *config.Config) (service.Service, error) {
				return nil, tt.err
			}
			_, stderr, code := dispatch(t, factory, "board", "--config", t.TempDir())
			if code != tt.want {
				t.Errorf("expected exit code %d, got %d", tt.want, code)
			}
			if stderr != "error: "+tt.err.Error()+"\n" {
				t.Errorf("unexpected stderr %q", stderr)
			}
		})
	}
}

func TestDispatcher_InvalidSettings(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, config.SettingsFile), []byte("api_base = [oops"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, stderr, code := dispatch(t, nil, "version", "--config", dir)
	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if !strings.HasPrefix(stderr, "error: invalid config.toml: ") {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

func TestDispatcher_DebugLogsToStderr(t *testing.T) {
	_, stderr, code := dispatch(t, nil, "version", "--debug", "--config", t.TempDir())
	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if !strings.Contains(stderr, "level=DEBUG msg=dispatch command=version") {
		t.Errorf("expected debug log, got %q", stderr)
	}
}
