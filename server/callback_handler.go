package server

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"github.com/opencampus/vitrine/server/authstate"
)

// OAuthLoginHandler starts the social-login handshake: it parks the PKCE
// verifier and nonce under a fresh state and sends the user to the provider.
func (s *Server) OAuthLoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.oidc == nil {
			respondError(w, http.StatusNotFound, "social login is not configured")
			return
		}

		state := uuid.New().String()
		nonce := uuid.New().String()
		verifier, challenge, err := generatePKCE()
		if err != nil {
			respondError(w, http.StatusInternalServerError, "could not start login")
			return
		}

		if err := s.authState.Upsert(state, &authstate.FlowState{
			CodeVerifier: verifier,
			Nonce:        nonce,
			ReturnURL:    r.URL.Query().Get("redirect"),
			CreatedAt:    time.Now(),
		}); err != nil {
			respondError(w, http.StatusInternalServerError, "could not start login")
			return
		}

		authURL := s.oidc.OAuth2Config.AuthCodeURL(state,
			oauth2.SetAuthURLParam("code_challenge", challenge),
			oauth2.SetAuthURLParam("code_challenge_method", "S256"),
			oauth2.SetAuthURLParam("nonce", nonce),
		)
		http.Redirect(w, r, authURL, http.StatusSeeOther)
	}
}

// OAuthCallbackHandler completes the handshake. Two shapes arrive here:
//
//   - token (+ optional refresh_token) query parameters: the backend already
//     issued the pair and redirected straight back. Install and go.
//   - code + state: a provider authorization code; exchange it (verifying
//     PKCE and nonce) for the token pair.
//
// No guard runs in front of this route; it is the one that creates the
// session the guards would check for.
func (s *Server) OAuthCallbackHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// Parse form to support both GET (query params) and POST (form_post
		// response mode).
		if errParam := r.FormValue("error"); errParam != "" {
			respondError(w, http.StatusBadRequest,
				fmt.Sprintf("authorization failed: %s - %s", errParam, r.FormValue("error_description")))
			return
		}

		if access := r.FormValue("token"); access != "" {
			s.completeHandshake(w, r, access, r.FormValue("refresh_token"), r.FormValue("redirect"))
			return
		}

		code := r.FormValue("code")
		state := r.FormValue("state")
		if code == "" || state == "" {
			respondError(w, http.StatusBadRequest, "missing token or code parameter")
			return
		}
		if s.oidc == nil {
			respondError(w, http.StatusBadRequest, "social login is not configured")
			return
		}

		flow, err := s.authState.Get(state)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid state parameter")
			return
		}
		// State is single use.
		_ = s.authState.Delete(state)

		oauthToken, err := s.oidc.OAuth2Config.Exchange(r.Context(), code,
			oauth2.SetAuthURLParam("code_verifier", flow.CodeVerifier))
		if err != nil {
			respondError(w, http.StatusBadGateway, "token exchange failed")
			return
		}

		rawIDToken, ok := oauthToken.Extra("id_token").(string)
		if !ok {
			respondError(w, http.StatusBadGateway, "no ID token in response")
			return
		}
		idToken, err := s.oidc.Verifier.Verify(r.Context(), rawIDToken)
		if err != nil {
			respondError(w, http.StatusUnauthorized, "ID token verification failed")
			return
		}

		var claims struct {
			Nonce string `json:"nonce"`
		}
		if err := idToken.Claims(&claims); err != nil || claims.Nonce != flow.Nonce {
			respondError(w, http.StatusUnauthorized, "invalid nonce")
			return
		}

		s.completeHandshake(w, r, oauthToken.AccessToken, oauthToken.RefreshToken, flow.ReturnURL)
	}
}

// completeHandshake installs the token pair and lands on the user's dashboard.
func (s *Server) completeHandshake(w http.ResponseWriter, r *http.Request, access, refresh, returnURL string) {
	profile, err := s.session.AcceptTokens(r.Context(), access, refresh)
	if err != nil {
		s.log.Debug().Err(err).Msg("callback handshake failed")
		s.respondSessionError(w, err)
		return
	}

	target := returnURL
	if target == "" {
		target = profile.Role.DashboardPath()
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func generatePKCE() (verifier, challenge string, err error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", "", err
	}
	verifier = base64.RawURLEncoding.EncodeToString(buf)
	hash := sha256.Sum256([]byte(verifier))
	challenge = base64.RawURLEncoding.EncodeToString(hash[:])
	return verifier, challenge, nil
}
