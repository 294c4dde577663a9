package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"graphterm/internal/auth"
	"graphterm/internal/terminal"
)

// errNotLoggedIn is returned by commands that need a session
var errNotLoggedIn = errors.New("not logged in (run: graphterm login)")

var loginUser string

// loginCmd signs in without starting the dashboard
var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in and store the session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		in := bufio.NewReader(cmd.InOrStdin())
		out := cmd.OutOrStdout()

		username := loginUser
		if username == "" {
			if username, err = prompt(in, out, "Username: "); err != nil {
				return err
			}
		}
		password, err := readPassword(in, out)
		if err != nil {
			return err
		}

		login, err := a.flow.Login(cmd.Context(), username, password)
		if err != nil {
			return fmt.Errorf("%d %s", auth.Status(err), auth.Message(err))
		}
		fmt.Fprintf(out, "Logged in as %s\n", login)
		return nil
	},
}

// logoutCmd drops the stored session
var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove the stored session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		if err := a.flow.Logout(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
		return nil
	},
}

// statusCmd validates the stored session
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check whether the stored session is still valid",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		if !a.sessions.Validate(cmd.Context()) {
			return errNotLoggedIn
		}
		user, _ := a.sessions.Username()
		fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s (session: %s)\n", user, a.store.Path())
		return nil
	},
}

// execCmd runs one terminal command line and prints its output
var execCmd = &cobra.Command{
	Use:   "exec <command> [args...]",
	Short: "Run a single terminal command, e.g. exec graphctl audit",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		if !a.sessions.Validate(cmd.Context()) {
			return errNotLoggedIn
		}
		user, _ := a.sessions.Username()
		return execLine(cmd.Context(), cmd.OutOrStdout(),
			terminal.New(user, a.presenter(), terminal.WithHostname(a.cfg.Hostname)),
			strings.Join(args, " "))
	},
}

// execLine submits one line and writes everything it produced
func execLine(ctx context.Context, out io.Writer, t *terminal.Interpreter, line string) error {
	skip := len(t.Lines()) + 1 // greeting and the echoed prompt
	if job := t.SubmitLine(line); job != nil {
		t.Complete(job.Run(ctx))
	}

	failed := false
	for _, l := range t.Lines()[min(skip, len(t.Lines())):] {
		if l.Kind == terminal.LineError {
			failed = true
		}
		fmt.Fprintln(out, l.Text)
	}
	if failed {
		return errors.New("command failed")
	}
	return nil
}

// prompt reads one trimmed line
func prompt(in *bufio.Reader, out io.Writer, label string) (string, error) {
	fmt.Fprint(out, label)
	line, err := in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// readPassword reads without echo on a terminal, as a plain line otherwise
func readPassword(in *bufio.Reader, out io.Writer) (string, error) {
	fd := int(os.Stdin.Fd()) //nolint:gosec // stdin descriptor fits in int
	if !term.IsTerminal(fd) {
		return prompt(in, out, "Password: ")
	}
	fmt.Fprint(out, "Password: ")
	pass, err := term.ReadPassword(fd)
	fmt.Fprintln(out)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(pass), nil
}
