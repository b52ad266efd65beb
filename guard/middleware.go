package guard

import (
	"net/http"

	"github.com/opencampus/vitrine/users"
)

// Middleware adapts a chain to HTTP handlers. rolesFor maps an incoming
// request onto the roles its route declares; nil means no role requirements.
func Middleware(chain *Chain, rolesFor func(*http.Request) []users.Role) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			nav := &Navigation{
				Path:  r.URL.Path,
				Query: r.URL.Query(),
			}
			if rolesFor != nil {
				nav.RequiredRoles = rolesFor(r)
			}

			if decision := chain.Evaluate(r.Context(), nav); !decision.Allowed() {
				http.Redirect(w, r, decision.RedirectTo, http.StatusSeeOther)
				return
			}
			next(w, r)
		}
	}
}
