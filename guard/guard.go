// Package guard gates navigations. Guards run in a fixed order (auth before
// role) and the first guard that refuses wins, producing a redirect instead
// of the navigation.
package guard

import (
	"context"
	"net/url"

	"github.com/opencampus/vitrine/users"
)

// CallbackPath is the OAuth callback route. It completes the token handshake
// itself, so it must stay reachable without any guard in the way.
const CallbackPath = "/auth/callback"

// LoginPath is where unauthenticated navigations are sent, with the original
// path preserved in the redirect query parameter.
const LoginPath = "/login"

// Navigation is one attempted route transition.
type Navigation struct {
	Path          string
	Query         url.Values
	RequiredRoles []users.Role
}

// Decision is a guard verdict: allow, or redirect somewhere else.
type Decision struct {
	RedirectTo string
}

func Allow() Decision {
	return Decision{}
}

func Redirect(target string) Decision {
	return Decision{RedirectTo: target}
}

func (d Decision) Allowed() bool {
	return d.RedirectTo == ""
}

// Session is the slice of the session facade the guards need.
type Session interface {
	Authenticated() bool
	Role() users.Role
	TokenExpired() bool
	Refresh(ctx context.Context) bool
}

// Guard checks one aspect of a navigation.
type Guard interface {
	Evaluate(ctx context.Context, nav *Navigation) Decision
}

// Chain runs guards in order; the first non-allow decision wins.
type Chain struct {
	guards []Guard
}

func NewChain(guards ...Guard) *Chain {
	return &Chain{guards: guards}
}

func (c *Chain) Evaluate(ctx context.Context, nav *Navigation) Decision {
	for _, g := range c.guards {
		if decision := g.Evaluate(ctx, nav); !decision.Allowed() {
			return decision
		}
	}
	return Allow()
}

// loginRedirect builds the login redirect preserving the original path.
func loginRedirect(nav *Navigation) Decision {
	q := url.Values{"redirect": []string{nav.Path}}
	return Redirect(LoginPath + "?" + q.Encode())
}
