package server

import (
	"net/http"

	"github.com/opencampus/vitrine/backend"
)

// StudentDashboardHandler summarises the signed-in student's own showcase:
// their projects plus the lookup lists the submission form needs.
func (s *Server) StudentDashboardHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := s.session.User()
		if user == nil {
			respondError(w, http.StatusUnauthorized, "authentication required")
			return
		}

		projects, err := s.api.Projects(r.Context(),
			backend.ListOptions{AuthorID: user.ID, Sort: "newest"}, s.session.AccessToken())
		if err != nil {
			s.respondBackendError(w, err)
			return
		}
		categories, err := s.api.Categories(r.Context())
		if err != nil {
			s.respondBackendError(w, err)
			return
		}
		courses, err := s.api.Courses(r.Context())
		if err != nil {
			s.respondBackendError(w, err)
			return
		}

		respondJSON(w, http.StatusOK, map[string]any{
			"user":       s.userPayload(user),
			"projects":   projects,
			"categories": categories,
			"courses":    courses,
		})
	}
}

// TeacherDashboardHandler shows the newest submissions across the whole
// showcase so teachers can review recent work.
func (s *Server) TeacherDashboardHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := s.session.User()
		if user == nil {
			respondError(w, http.StatusUnauthorized, "authentication required")
			return
		}

		recent, err := s.api.Projects(r.Context(),
			backend.ListOptions{Sort: "newest"}, s.session.AccessToken())
		if err != nil {
			s.respondBackendError(w, err)
			return
		}
		courses, err := s.api.Courses(r.Context())
		if err != nil {
			s.respondBackendError(w, err)
			return
		}

		respondJSON(w, http.StatusOK, map[string]any{
			"user":    s.userPayload(user),
			"recent":  recent,
			"courses": courses,
		})
	}
}

// AdminDashboardHandler reports catalogue totals for the admin landing page.
func (s *Server) AdminDashboardHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := s.session.User()
		if user == nil {
			respondError(w, http.StatusUnauthorized, "authentication required")
			return
		}

		projects, err := s.api.Projects(r.Context(),
			backend.ListOptions{Limit: 1}, s.session.AccessToken())
		if err != nil {
			s.respondBackendError(w, err)
			return
		}
		categories, err := s.api.Categories(r.Context())
		if err != nil {
			s.respondBackendError(w, err)
			return
		}
		courses, err := s.api.Courses(r.Context())
		if err != nil {
			s.respondBackendError(w, err)
			return
		}
		tags, err := s.api.Tags(r.Context())
		if err != nil {
			s.respondBackendError(w, err)
			return
		}

		respondJSON(w, http.StatusOK, map[string]any{
			"user": s.userPayload(user),
			"totals": map[string]int{
				"projects":   projects.Total,
				"categories": len(categories),
				"courses":    len(courses),
				"tags":       len(tags),
			},
		})
	}
}
