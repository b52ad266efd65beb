package server

import (
	"net/http"

	"github.com/opencampus/vitrine/guard"
	"github.com/opencampus/vitrine/users"
)

func ChainMiddleware(routeFunction http.HandlerFunc, mw ...func(http.HandlerFunc) http.HandlerFunc) http.HandlerFunc {
	chainedHandler := routeFunction
	// Apply middleware in reverse order
	for i := len(mw) - 1; i >= 0; i-- {
		chainedHandler = mw[i](chainedHandler)
	}
	return chainedHandler
}

// routeRoles declares which roles each guarded navigation requires. Routes
// not listed carry no role requirement (the auth guard still applies).
var routeRoles = map[string][]users.Role{
	RouteStudentDashboard: {users.RoleStudent},
	RouteTeacherDashboard: {users.RoleTeacher},
	RouteAdminDashboard:   {users.RoleAdmin},
}

func (s *Server) rolesFor(r *http.Request) []users.Role {
	return routeRoles[r.URL.Path]
}

// PublicMiddleware is the stack for unguarded routes.
func (s *Server) PublicMiddleware() []func(http.HandlerFunc) http.HandlerFunc {
	return []func(http.HandlerFunc) http.HandlerFunc{
		s.LoggingMiddleware,
		s.RecoverMiddleware,
		s.CorsMiddleware,
	}
}

// GuardedMiddleware layers the guard chain on top of the public stack.
func (s *Server) GuardedMiddleware() []func(http.HandlerFunc) http.HandlerFunc {
	return append(s.PublicMiddleware(), guard.Middleware(s.chain, s.rolesFor))
}

func (s *Server) LoggingMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.env == "DEV" {
			s.log.Debug().Str("method", r.Method).Str("path", r.URL.Path).Msg("request")
		}
		next(w, r)
	}
}

func (s *Server) RecoverMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.log.Error().Interface("panic", rec).Str("path", r.URL.Path).Msg("handler panicked")
				respondError(w, http.StatusInternalServerError, "internal error")
			}
		}()
		next(w, r)
	}
}

func (s *Server) CorsMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" && s.config.GetAllowedOrigins().IsAllowedOrigin(origin) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", s.config.GetAllowedMethods())
			w.Header().Set("Access-Control-Allow-Headers", s.config.GetAllowedHeaders())
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next(w, r)
	}
}
