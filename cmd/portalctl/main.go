package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/unidet/portal/internal/core/domain"
	"github.com/unidet/portal/internal/core/service"
	"github.com/unidet/portal/internal/infrastructure/backend"
	"github.com/unidet/portal/internal/infrastructure/session"
	"github.com/unidet/portal/pkg/logger"
)

const (
	appName        = "unidet-portal"
	defaultAPIBase = "http://localhost:8080/unidet-api/public"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := BuildRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", describe(err))
		os.Exit(1)
	}
}

// describe turns the errors operators hit most into instructions.
func describe(err error) string {
	switch {
	case domain.IsAuthRequired(err):
		return "administrator session required; run `portalctl login`"
	case errors.Is(err, domain.ErrRuleViolation), errors.Is(err, domain.ErrValidation):
		return domain.UserMessage(err, err.Error())
	}
	return err.Error()
}

// app carries what every command needs once the persistent flags are parsed.
type app struct {
	apiBase  string
	stateDir string
	logLevel string
	yes      bool

	api      *backend.Client
	sessions *service.SessionStore
	auth     *service.AuthService
	guard    *service.Guard
	log      zerolog.Logger

	stdin io.Reader
	in    *bufio.Reader
	out   io.Writer
}

func BuildRootCmd() *cobra.Command {
	a := &app{}

	apiDefault := os.Getenv("PORTAL_API_BASE_URL")
	if apiDefault == "" {
		apiDefault = defaultAPIBase
	}

	cmd := &cobra.Command{
		Use:          "portalctl",
		Short:        "Administer the UNIDET website from the command line",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}
	cmd.PersistentFlags().StringVar(&a.apiBase, "api", apiDefault, "backend base URL (env PORTAL_API_BASE_URL)")
	cmd.PersistentFlags().StringVar(&a.stateDir, "state-dir", "", "session directory (default <user config dir>/"+appName+"/session)")
	cmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "warn", "trace, debug, info, warn or error")
	cmd.PersistentFlags().BoolVarP(&a.yes, "yes", "y", false, "approve destructive operations without asking")

	cmd.AddCommand(
		a.loginCmd(),
		a.logoutCmd(),
		a.whoamiCmd(),
		resourceCmd(a, "news", "Manage news posts", service.NewsResource),
		resourceCmd(a, "events", "Manage events", service.EventsResource),
		a.coursesCmd(),
		resourceCmd(a, "services", "Manage student services", service.ServicesResource),
		resourceCmd(a, "faq", "Manage frequently asked questions", service.FAQResource),
		resourceCmd(a, "admissions", "Manage admission steps", service.AdmissionsResource),
		a.regulationCmd(),
		a.contactCmd(),
		a.usersCmd(),
	)
	return cmd
}

func (a *app) setup(cmd *cobra.Command) error {
	a.stdin = cmd.InOrStdin()
	a.in = bufio.NewReader(a.stdin)
	a.out = cmd.OutOrStdout()

	logger.Init(logger.Options{Level: a.logLevel, Pretty: true, Output: cmd.ErrOrStderr(), App: "portalctl"})
	a.log = logger.Component("cli")

	if a.stateDir == "" {
		dir, err := session.DefaultDir(appName)
		if err != nil {
			return fmt.Errorf("locate state directory: %w", err)
		}
		a.stateDir = dir
	}
	store, err := session.NewFileStore(a.stateDir)
	if err != nil {
		return err
	}

	a.sessions = service.NewSessionStore(store, logger.Component("session"))
	a.api = backend.New(a.sessions, backend.Options{
		BaseURL: a.apiBase,
		Logger:  logger.Component("backend"),
		OnAuthRequired: func(_ context.Context, status int) {
			a.log.Debug().Int("status", status).Msg("administrator session cleared")
		},
	})
	a.auth = service.NewAuthService(a.api, a.sessions, logger.Component("auth"))
	a.guard = service.NewGuard(a.sessions)
	return nil
}

// requireAdmin applies the same guard the web panel uses before any admin
// command talks to the backend.
func (a *app) requireAdmin(ctx context.Context, elevated bool) error {
	v, err := a.guard.Check(ctx, service.Route{Elevated: elevated}, service.LandingPath)
	if err != nil {
		return err
	}
	switch v.Decision {
	case service.RedirectLogin:
		return &domain.AuthRequiredError{}
	case service.RedirectLanding:
		return domain.NewRuleError("this command requires the superadmin role")
	}
	return nil
}

// confirmer asks on the terminal unless --yes was given.
func (a *app) confirmer() service.Confirmer {
	return service.ConfirmFunc(func(_ context.Context, prompt string) bool {
		if a.yes {
			return true
		}
		fmt.Fprintf(a.out, "%s [y/N] ", prompt)
		line, _ := a.in.ReadString('\n')
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y", "yes":
			return true
		}
		return false
	})
}

// cancelled reports a declined confirmation as a normal outcome.
func (a *app) cancelled(err error) error {
	if errors.Is(err, domain.ErrNotConfirmed) {
		fmt.Fprintln(a.out, "cancelled")
		return nil
	}
	return err
}

func (a *app) print(v any) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printRefreshed prints the data a change reloaded. When the change was
// stored but the reload failed there is nothing to print, only a warning.
func printRefreshed[T any](a *app, res service.Refreshed[T], view func(T) any) error {
	if res.Error != "" {
		a.log.Warn().Msg(res.Error)
		return nil
	}
	return a.print(view(res.Data))
}
