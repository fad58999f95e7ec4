package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/unidet/portal/internal/core/domain"
	"github.com/unidet/portal/internal/core/service"
)

func (a *app) loginCmd() *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in as an administrator",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			v, err := a.guard.LoginView(ctx)
			if err != nil {
				return err
			}
			if v.Decision != service.Allow {
				fmt.Fprintln(a.out, "already logged in; run `portalctl logout` first")
				return nil
			}

			if email == "" {
				if email, err = a.prompt("Email: "); err != nil {
					return err
				}
			}
			if password == "" {
				if password, err = a.readPassword("Password: "); err != nil {
					return err
				}
			}

			s, err := a.auth.Login(ctx, email, password)
			if err != nil {
				var le *service.LoginError
				if errors.As(err, &le) {
					return errors.New(le.UserMessage())
				}
				return err
			}
			if s.Subject != nil {
				fmt.Fprintf(a.out, "logged in as %s (%s)\n", s.Subject.Email, s.Subject.Role)
			} else {
				fmt.Fprintln(a.out, "logged in")
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "administrator email")
	cmd.Flags().StringVar(&password, "password", os.Getenv("PORTAL_PASSWORD"), "password (env PORTAL_PASSWORD; prompted when empty)")
	return cmd
}

func (a *app) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the administrator session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.auth.Logout(cmd.Context(), domain.ScopeAdmin); err != nil {
				return err
			}
			fmt.Fprintln(a.out, "logged out")
			return nil
		},
	}
}

func (a *app) whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the stored administrator",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := a.auth.Current(cmd.Context(), domain.ScopeAdmin)
			if err != nil {
				return err
			}
			if s == nil {
				fmt.Fprintln(a.out, "not logged in")
				return nil
			}
			return a.print(map[string]any{
				"user":     s.Subject,
				"elevated": s.Subject.Elevated(),
			})
		},
	}
}

func (a *app) prompt(label string) (string, error) {
	fmt.Fprint(a.out, label)
	line, err := a.in.ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("read %s: %w", strings.TrimSuffix(strings.TrimSpace(label), ":"), err)
	}
	return strings.TrimSpace(line), nil
}

// readPassword hides the input when stdin is a terminal.
func (a *app) readPassword(label string) (string, error) {
	f, ok := a.stdin.(*os.File)
	if !ok || a.in.Buffered() > 0 || !term.IsTerminal(int(f.Fd())) {
		return a.prompt(label)
	}
	fmt.Fprint(a.out, label)
	raw, err := term.ReadPassword(int(f.Fd()))
	fmt.Fprintln(a.out)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(raw), nil
}
