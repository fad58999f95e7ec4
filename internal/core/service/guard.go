package service

import (
	"context"
	"net/url"
	"strings"

	"github.com/unidet/portal/internal/core/domain"
	"github.com/unidet/portal/internal/core/ports"
)

const (
	// LoginViewPath is the administrator login view.
	LoginViewPath = "/admin"
	// LandingPath is the default administrator view.
	LandingPath = "/admin/news"
	// ReturnParam carries the originally requested location through login.
	ReturnParam = "from"
)

type Decision int

const (
	Allow Decision = iota
	RedirectLogin
	RedirectLanding
)

func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case RedirectLogin:
		return "redirect_login"
	case RedirectLanding:
		return "redirect_landing"
	default:
		return "unknown"
	}
}

// Route describes what a protected view demands of the session.
type Route struct {
	Elevated bool
}

// Verdict is the outcome of a navigation check. Location is set for
// redirects only.
type Verdict struct {
	Decision Decision
	Location string
}

// Guard decides whether an administrator view may render.
type Guard struct {
	sessions ports.SessionStore
}

func NewGuard(sessions ports.SessionStore) *Guard {
	return &Guard{sessions: sessions}
}

// Check evaluates a navigation to requested. Without an administrator token
// the caller is sent to login with requested preserved; a non-elevated
// subject on an elevated route is sent to the landing view.
func (g *Guard) Check(ctx context.Context, route Route, requested string) (Verdict, error) {
	token, err := g.sessions.Token(ctx, domain.ScopeAdmin)
	if err != nil {
		return Verdict{}, err
	}
	if token == "" {
		return Verdict{Decision: RedirectLogin, Location: LoginLocation(requested)}, nil
	}
	if !route.Elevated {
		return Verdict{Decision: Allow}, nil
	}

	subject, err := g.sessions.Subject(ctx, domain.ScopeAdmin)
	if err != nil {
		return Verdict{}, err
	}
	if !subject.Elevated() {
		return Verdict{Decision: RedirectLanding, Location: LandingPath}, nil
	}
	return Verdict{Decision: Allow}, nil
}

// LoginView sends an already authenticated administrator to the landing view
// instead of showing the form again.
func (g *Guard) LoginView(ctx context.Context) (Verdict, error) {
	token, err := g.sessions.Token(ctx, domain.ScopeAdmin)
	if err != nil {
		return Verdict{}, err
	}
	if token != "" {
		return Verdict{Decision: RedirectLanding, Location: LandingPath}, nil
	}
	return Verdict{Decision: Allow}, nil
}

// LoginLocation is the login view with requested attached as the return
// location.
func LoginLocation(requested string) string {
	if requested == "" || !isAdminPath(requested) {
		return LoginViewPath
	}
	return LoginViewPath + "?" + url.Values{ReturnParam: {requested}}.Encode()
}

// ReturnTo picks the post-login destination. Only local administrator paths
// are honoured; anything else lands on the default view.
func ReturnTo(from string) string {
	if !isAdminPath(from) {
		return LandingPath
	}
	return from
}

func isAdminPath(p string) bool {
	if strings.HasPrefix(p, "//") || strings.Contains(p, `\`) {
		return false
	}
	u, err := url.Parse(p)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return false
	}
	if u.Path == LoginViewPath || u.Path == LoginViewPath+"/login" {
		return false
	}
	return strings.HasPrefix(u.Path, LoginViewPath+"/")
}
