package guard

import (
	"context"

	"github.com/rs/zerolog"
)

// AuthGuard is the base guard: it requires a live session, allowing itself
// one refresh attempt for an expired token before redirecting to login. A
// failed refresh is final for the navigation, never retried in a loop.
type AuthGuard struct {
	session Session
	log     zerolog.Logger
}

func NewAuthGuard(session Session, log zerolog.Logger) *AuthGuard {
	return &AuthGuard{session: session, log: log}
}

func (g *AuthGuard) Evaluate(ctx context.Context, nav *Navigation) Decision {
	// The callback page completes the handshake itself; a navigation carrying
	// tokens must reach it unchallenged.
	if nav.Path == CallbackPath && (nav.Query.Get("token") != "" || nav.Query.Get("refresh_token") != "") {
		return Allow()
	}

	if !g.session.Authenticated() {
		return loginRedirect(nav)
	}

	if g.session.TokenExpired() {
		if !g.session.Refresh(ctx) {
			g.log.Debug().Str("path", nav.Path).Msg("refresh failed, redirecting to login")
			return loginRedirect(nav)
		}
	}
	return Allow()
}
