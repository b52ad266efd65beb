package server

import (
	"net/http"
	"net/url"
)

type metadataKind string

const (
	metadataCategories metadataKind = "categories"
	metadataCourses    metadataKind = "courses"
	metadataTags       metadataKind = "tags"
)

// MetadataListHandler serves the lookup lists the project forms are built
// from. One handler covers all three kinds; they only differ in which backend
// call they fan out to.
func (s *Server) MetadataListHandler(kind metadataKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var (
			data any
			err  error
		)
		switch kind {
		case metadataCategories:
			data, err = s.api.Categories(r.Context())
		case metadataCourses:
			data, err = s.api.Courses(r.Context())
		case metadataTags:
			data, err = s.api.Tags(r.Context())
		default:
			respondError(w, http.StatusNotFound, "not found")
			return
		}
		if err != nil {
			s.respondBackendError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, data)
	}
}

// UserSearchHandler looks up users by name or email for the collaborator
// picker. Guarded; the backend also requires a bearer token for it.
func (s *Server) UserSearchHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("q") == "" {
			respondError(w, http.StatusBadRequest, "missing q parameter")
			return
		}
		s.forward(w, r, http.MethodGet, "/users/search")
	}
}

// MetadataMutationHandler relays admin create/delete calls for a lookup
// list. The backend enforces the admin role; the guard chain only requires a
// live session here.
func (s *Server) MetadataMutationHandler(kind metadataKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		path := "/" + string(kind)
		if id := r.PathValue("id"); id != "" {
			path += "/" + url.PathEscape(id)
		}
		s.forward(w, r, r.Method, path)
	}
}
