package guard

import "context"

// RoleGuard enforces declared route roles. It layers on top of AuthGuard and
// assumes the session is already authenticated; a navigation by the wrong
// role is sent to that user's own dashboard rather than login.
type RoleGuard struct {
	session Session
}

func NewRoleGuard(session Session) *RoleGuard {
	return &RoleGuard{session: session}
}

func (g *RoleGuard) Evaluate(_ context.Context, nav *Navigation) Decision {
	if len(nav.RequiredRoles) == 0 {
		return Allow()
	}

	role := g.session.Role()
	for _, required := range nav.RequiredRoles {
		if role == required {
			return Allow()
		}
	}
	return Redirect(role.DashboardPath())
}

var _ Guard = (*RoleGuard)(nil)
var _ Guard = (*AuthGuard)(nil)
