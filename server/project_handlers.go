package server

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/opencampus/vitrine/backend"
	apperrors "github.com/opencampus/vitrine/internal/errors"
)

// listOptionsFromQuery lifts the listing parameters off the request so the
// browser-facing query shape matches what the backend expects.
func listOptionsFromQuery(r *http.Request) backend.ListOptions {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))
	return backend.ListOptions{
		Page:     page,
		Limit:    limit,
		Search:   q.Get("search"),
		Category: q.Get("category"),
		Course:   q.Get("course"),
		Tag:      q.Get("tag"),
		AuthorID: q.Get("author"),
		Sort:     q.Get("sort"),
	}
}

// Listings are public; the token only personalises fields like liked_by_me.
func (s *Server) ProjectListHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, err := s.api.Projects(r.Context(), listOptionsFromQuery(r), s.session.AccessToken())
		if err != nil {
			s.respondBackendError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, page)
	}
}

func (s *Server) ProjectHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		project, err := s.api.Project(r.Context(), r.PathValue("id"), s.session.AccessToken())
		if err != nil {
			s.respondBackendError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, project)
	}
}

// Mutations relay through the session's authenticated fetch so they pick up
// the refresh-and-retry behaviour.

func (s *Server) ProjectCreateHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.forward(w, r, http.MethodPost, "/projects")
	}
}

func (s *Server) ProjectUpdateHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.forward(w, r, http.MethodPut, "/projects/"+url.PathEscape(r.PathValue("id")))
	}
}

func (s *Server) ProjectDeleteHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.forward(w, r, http.MethodDelete, "/projects/"+url.PathEscape(r.PathValue("id")))
	}
}

func (s *Server) ProjectLikeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.forward(w, r, http.MethodPost, "/projects/"+url.PathEscape(r.PathValue("id"))+"/like")
	}
}

func (s *Server) ProjectUnlikeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.forward(w, r, http.MethodDelete, "/projects/"+url.PathEscape(r.PathValue("id"))+"/like")
	}
}

// ProjectViewHandler records a view. Failures are swallowed; losing a view
// count never breaks a page load.
func (s *Server) ProjectViewHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.api.RecordView(r.Context(), r.PathValue("id"), s.session.AccessToken()); err != nil {
			s.log.Debug().Err(err).Str("project", r.PathValue("id")).Msg("view not recorded")
		}
		respondJSON(w, http.StatusOK, nil)
	}
}

// respondBackendError maps backend errors onto the statuses the frontend
// switches on.
func (s *Server) respondBackendError(w http.ResponseWriter, err error) {
	switch {
	case apperrors.Is(err, apperrors.ErrNotFound):
		respondError(w, http.StatusNotFound, "not found")
	case apperrors.Is(err, apperrors.ErrUnauthorized):
		respondError(w, http.StatusUnauthorized, "authentication required")
	case apperrors.Is(err, apperrors.ErrForbidden):
		respondError(w, http.StatusForbidden, "forbidden")
	case apperrors.Is(err, apperrors.ErrBackendUnavailable):
		respondError(w, http.StatusBadGateway, "showcase backend unavailable")
	default:
		s.log.Error().Err(err).Msg("backend request failed")
		respondError(w, http.StatusInternalServerError, "internal error")
	}
}
