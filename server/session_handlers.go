package server

import (
	"encoding/json"
	"net/http"

	apperrors "github.com/opencampus/vitrine/internal/errors"
	"github.com/opencampus/vitrine/internal/utils"
	"github.com/opencampus/vitrine/session"
	"github.com/opencampus/vitrine/users"
)

// LoginPageHandler answers the login navigation. The portal serves no HTML;
// the SPA in front of it renders the form and posts to the API route.
func (s *Server) LoginPageHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]any{
			"message":  "authentication required",
			"redirect": r.URL.Query().Get("redirect"),
		})
	}
}

func (s *Server) LoginSubmissionHandler() http.HandlerFunc {
	type loginRequest struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		profile, err := s.session.Login(r.Context(), req.Email, req.Password)
		if err != nil {
			s.respondSessionError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, s.userPayload(profile))
	}
}

func (s *Server) RegisterHandler() http.HandlerFunc {
	type registerRequest struct {
		Name            string `json:"name"`
		Email           string `json:"email"`
		Password        string `json:"password"`
		ConfirmPassword string `json:"confirm_password"`
		Role            string `json:"role"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		var req registerRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		profile, err := s.session.Register(r.Context(), session.RegisterRequest{
			Name:            req.Name,
			Email:           req.Email,
			Password:        req.Password,
			ConfirmPassword: req.ConfirmPassword,
			Role:            req.Role,
		})
		if err != nil {
			s.respondSessionError(w, err)
			return
		}
		respondJSON(w, http.StatusCreated, s.userPayload(profile))
	}
}

func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.session.Logout(r.Context())
		respondJSON(w, http.StatusOK, map[string]any{"loggedOut": true})
	}
}

// SessionHandler returns the current session snapshot.
func (s *Server) SessionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		state := s.session.State()
		payload := map[string]any{
			"authenticated": state.Authenticated,
			"loading":       state.Loading,
		}
		if state.Error != "" {
			payload["error"] = state.Error
		}
		if state.User != nil {
			payload["user"] = s.userPayload(state.User)
		}
		respondJSON(w, http.StatusOK, payload)
	}
}

func (s *Server) userPayload(profile *users.Profile) map[string]any {
	return map[string]any{
		"id":                     profile.ID,
		"name":                   profile.Name,
		"email":                  profile.Email,
		"role":                   profile.Role,
		"avatar":                 profile.Avatar,
		"initials":               utils.Initials(profile.Name),
		"dashboard":              profile.Role.DashboardPath(),
		"needsSecurityQuestions": s.session.NeedsSecurityQuestions(),
	}
}

// respondSessionError maps the session error taxonomy onto HTTP statuses.
func (s *Server) respondSessionError(w http.ResponseWriter, err error) {
	switch {
	case apperrors.Is(err, apperrors.ErrInvalidEmail),
		apperrors.Is(err, apperrors.ErrPasswordTooShort),
		apperrors.Is(err, apperrors.ErrPasswordMismatch),
		apperrors.Is(err, apperrors.ErrValidation):
		respondError(w, http.StatusBadRequest, err.Error())
	case apperrors.Is(err, apperrors.ErrInvalidCredentials):
		respondError(w, http.StatusUnauthorized, apperrors.ErrInvalidCredentials.Error())
	case apperrors.Is(err, apperrors.ErrSessionExpired),
		apperrors.Is(err, apperrors.ErrNotAuthenticated):
		respondError(w, http.StatusUnauthorized, err.Error())
	case apperrors.Is(err, apperrors.ErrBackendUnavailable):
		respondError(w, http.StatusBadGateway, apperrors.ErrBackendUnavailable.Error())
	default:
		respondError(w, http.StatusInternalServerError, "something went wrong")
	}
}
