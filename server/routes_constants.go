package server

const (
	RouteLogin    = "/login"
	RouteCallback = "/auth/callback"
	RouteOAuth    = "/auth/login"

	RouteAPILogin    = "/api/login"
	RouteAPIRegister = "/api/register"
	RouteAPILogout   = "/api/logout"
	RouteAPISession  = "/api/session"

	RouteStudentDashboard = "/student"
	RouteTeacherDashboard = "/teacher"
	RouteAdminDashboard   = "/admin"

	RouteAPIProjects   = "/api/projects"
	RouteAPICategories = "/api/categories"
	RouteAPICourses    = "/api/courses"
	RouteAPITags       = "/api/tags"
	RouteAPIUserSearch = "/api/users/search"
)
