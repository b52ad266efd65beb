package server

import "net/http"

func (s *Server) initRoutes() {
	public := s.PublicMiddleware()
	guarded := s.GuardedMiddleware()

	// Session endpoints. Login, register and the callback must stay outside
	// the guard chain or nobody could ever sign in.
	s.RegisterRouteFunc("GET "+RouteLogin, ChainMiddleware(s.LoginPageHandler(), public...))
	s.RegisterRouteFunc("POST "+RouteAPILogin, ChainMiddleware(s.LoginSubmissionHandler(), public...))
	s.RegisterRouteFunc("POST "+RouteAPIRegister, ChainMiddleware(s.RegisterHandler(), public...))
	s.RegisterRouteFunc("POST "+RouteAPILogout, ChainMiddleware(s.LogoutHandler(), public...))
	s.RegisterRouteFunc("GET "+RouteAPISession, ChainMiddleware(s.SessionHandler(), public...))
	s.RegisterRouteFunc("GET "+RouteOAuth, ChainMiddleware(s.OAuthLoginHandler(), public...))
	// Both methods: providers redirect with GET, form_post responds with POST.
	s.RegisterRouteFunc("GET "+RouteCallback, ChainMiddleware(s.OAuthCallbackHandler(), public...))
	s.RegisterRouteFunc("POST "+RouteCallback, ChainMiddleware(s.OAuthCallbackHandler(), public...))

	// Role dashboards.
	s.RegisterRouteFunc("GET "+RouteStudentDashboard, ChainMiddleware(s.StudentDashboardHandler(), guarded...))
	s.RegisterRouteFunc("GET "+RouteTeacherDashboard, ChainMiddleware(s.TeacherDashboardHandler(), guarded...))
	s.RegisterRouteFunc("GET "+RouteAdminDashboard, ChainMiddleware(s.AdminDashboardHandler(), guarded...))

	// Showcase resources. Listings are public, mutations go through the
	// guard chain.
	s.RegisterRouteFunc("GET "+RouteAPIProjects, ChainMiddleware(s.ProjectListHandler(), public...))
	s.RegisterRouteFunc("GET "+RouteAPIProjects+"/{id}", ChainMiddleware(s.ProjectHandler(), public...))
	s.RegisterRouteFunc("POST "+RouteAPIProjects, ChainMiddleware(s.ProjectCreateHandler(), guarded...))
	s.RegisterRouteFunc("PUT "+RouteAPIProjects+"/{id}", ChainMiddleware(s.ProjectUpdateHandler(), guarded...))
	s.RegisterRouteFunc("DELETE "+RouteAPIProjects+"/{id}", ChainMiddleware(s.ProjectDeleteHandler(), guarded...))
	s.RegisterRouteFunc("POST "+RouteAPIProjects+"/{id}/like", ChainMiddleware(s.ProjectLikeHandler(), guarded...))
	s.RegisterRouteFunc("DELETE "+RouteAPIProjects+"/{id}/like", ChainMiddleware(s.ProjectUnlikeHandler(), guarded...))
	s.RegisterRouteFunc("POST "+RouteAPIProjects+"/{id}/view", ChainMiddleware(s.ProjectViewHandler(), public...))

	s.RegisterRouteFunc("GET "+RouteAPICategories, ChainMiddleware(s.MetadataListHandler(metadataCategories), public...))
	s.RegisterRouteFunc("GET "+RouteAPICourses, ChainMiddleware(s.MetadataListHandler(metadataCourses), public...))
	s.RegisterRouteFunc("GET "+RouteAPITags, ChainMiddleware(s.MetadataListHandler(metadataTags), public...))

	// Lookup-list maintenance; the backend enforces the admin role.
	s.RegisterRouteFunc("POST "+RouteAPICategories, ChainMiddleware(s.MetadataMutationHandler(metadataCategories), guarded...))
	s.RegisterRouteFunc("DELETE "+RouteAPICategories+"/{id}", ChainMiddleware(s.MetadataMutationHandler(metadataCategories), guarded...))
	s.RegisterRouteFunc("POST "+RouteAPICourses, ChainMiddleware(s.MetadataMutationHandler(metadataCourses), guarded...))
	s.RegisterRouteFunc("DELETE "+RouteAPICourses+"/{id}", ChainMiddleware(s.MetadataMutationHandler(metadataCourses), guarded...))
	s.RegisterRouteFunc("POST "+RouteAPITags, ChainMiddleware(s.MetadataMutationHandler(metadataTags), guarded...))
	s.RegisterRouteFunc("DELETE "+RouteAPITags+"/{id}", ChainMiddleware(s.MetadataMutationHandler(metadataTags), guarded...))

	s.RegisterRouteFunc("GET "+RouteAPIUserSearch, ChainMiddleware(s.UserSearchHandler(), guarded...))

	s.RegisterRouteFunc("GET /", ChainMiddleware(s.HomeHandler(), public...))
}

// HomeHandler lands authenticated users on their dashboard and everyone else
// on the public project listing.
func (s *Server) HomeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			respondError(w, http.StatusNotFound, "not found")
			return
		}
		if target := s.session.Role().DashboardPath(); s.session.Authenticated() && target != "/" {
			http.Redirect(w, r, target, http.StatusSeeOther)
			return
		}
		http.Redirect(w, r, RouteAPIProjects, http.StatusSeeOther)
	}
}
