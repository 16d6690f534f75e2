package commands

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/pflag"

	"kanori/internal/config"
	"kanori/internal/exitcode"
	"kanori/internal/service"
)

func init() {
	Register(&LoginCmd{})
	Register(&RegisterCmd{})
	Register(&LogoutCmd{})
	Register(&WhoamiCmd{})
}

// authenticator is implemented by services that know whether a session is held.
type authenticator interface {
	Authenticated() bool
}

// LoginCmd implements the login command.
type LoginCmd struct {
	anonymous
	email  string
	prompt Prompter
}

// SetPrompt replaces the password prompt (for testing).
func (c *LoginCmd) SetPrompt(p Prompter) {
	c.prompt = p
}

func (c *LoginCmd) Name() string      { return "login" }
func (c *LoginCmd) Aliases() []string { return nil }
func (c *LoginCmd) Synopsis() string  { return "Log in to the kanori server" }
func (c *LoginCmd) Usage() string     { return "kanori login <username> | --email <address>" }

func (c *LoginCmd) RegisterFlags(fs *pflag.FlagSet) {
	fs.StringVar(&c.email, "email", "", "")
}

func (c *LoginCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	req := service.LoginRequest{Email: strings.TrimSpace(c.email)}
	switch {
	case len(args) == 1 && req.Email == "":
		req.Username = strings.TrimSpace(args[0])
	case len(args) == 0 && req.Email != "":
	default:
		return usage(errOut, "usage: %s", c.Usage())
	}

	prompt := c.prompt
	if prompt == nil {
		prompt = terminalPrompt(errOut)
	}
	password, err := prompt("Password: ")
	if err != nil {
		return fail(errOut, err)
	}
	if password == "" {
		return usage(errOut, "password required")
	}
	req.Password = password

	if err := cfg.EnsureDir(); err != nil {
		return fail(errOut, err)
	}
	user, err := svc.Login(ctx, req)
	if err != nil {
		return fail(errOut, err)
	}

	if !cfg.Quiet {
		printLoggedIn(out, user)
	}
	return exitcode.Success
}

func printLoggedIn(out io.Writer, user *service.User) {
	if user == nil || user.Username == "" {
		fmt.Fprintln(out, "ok")
		return
	}
	fmt.Fprintf(out, "logged in as %s\n", user.Username)
}

// RegisterCmd creates an account and logs in.
type RegisterCmd struct {
	anonymous
	email  string
	prompt Prompter
}

// SetPrompt replaces the password prompt (for testing).
func (c *RegisterCmd) SetPrompt(p Prompter) {
	c.prompt = p
}

func (c *RegisterCmd) Name() string      { return "register" }
func (c *RegisterCmd) Aliases() []string { return []string{"signup"} }
func (c *RegisterCmd) Synopsis() string  { return "Create an account" }
func (c *RegisterCmd) Usage() string     { return "kanori register --email <address> <username>" }

func (c *RegisterCmd) RegisterFlags(fs *pflag.FlagSet) {
	fs.StringVar(&c.email, "email", "", "")
}

func (c *RegisterCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if len(args) != 1 || strings.TrimSpace(c.email) == "" {
		return usage(errOut, "usage: %s", c.Usage())
	}

	prompt := c.prompt
	if prompt == nil {
		prompt = terminalPrompt(errOut)
	}
	password, err := prompt("Password: ")
	if err != nil {
		return fail(errOut, err)
	}
	confirm, err := prompt("Confirm password: ")
	if err != nil {
		return fail(errOut, err)
	}
	if password == "" {
		return usage(errOut, "password required")
	}
	if password != confirm {
		return usage(errOut, "passwords do not match")
	}

	if err := cfg.EnsureDir(); err != nil {
		return fail(errOut, err)
	}
	user, err := svc.Register(ctx, service.RegisterRequest{
		Username:        strings.TrimSpace(args[0]),
		Email:           strings.TrimSpace(c.email),
		Password:        password,
		PasswordConfirm: confirm,
	})
	if err != nil {
		return fail(errOut, err)
	}

	if !cfg.Quiet {
		printLoggedIn(out, user)
	}
	return exitcode.Success
}

// LogoutCmd implements the logout command.
type LogoutCmd struct {
	anonymous
	noFlags
}

func (c *LogoutCmd) Name() string      { return "logout" }
func (c *LogoutCmd) Aliases() []string { return nil }
func (c *LogoutCmd) Synopsis() string  { return "Remove stored credentials" }
func (c *LogoutCmd) Usage() string     { return "kanori logout" }

func (c *LogoutCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if a, ok := svc.(authenticator); ok && !a.Authenticated() {
		if !cfg.Quiet {
			fmt.Fprintln(out, "not logged in")
		}
		return exitcode.Success
	}

	if err := svc.Logout(ctx); err != nil {
		fmt.Fprintf(errOut, "error: failed to remove credentials: %v\n", err)
		return exitcode.AuthError
	}

	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}

// WhoamiCmd prints the logged-in user.
type WhoamiCmd struct {
	authenticated
	noFlags
}

func (c *WhoamiCmd) Name() string      { return "whoami" }
func (c *WhoamiCmd) Aliases() []string { return nil }
func (c *WhoamiCmd) Synopsis() string  { return "Show the logged-in user" }
func (c *WhoamiCmd) Usage() string     { return "kanori whoami" }

func (c *WhoamiCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	user, err := svc.Me(ctx)
	if err != nil {
		return fail(errOut, err)
	}
	if user.Email != "" {
		fmt.Fprintf(out, "%s <%s>\n", user.Username, user.Email)
	} else {
		fmt.Fprintln(out, user.Username)
	}
	return exitcode.Success
}
