// Package server is the portal gateway: it fronts navigation with the guard
// chain, exposes the session operations as JSON endpoints, and forwards
// resource calls to the showcase backend with the session's bearer token.
package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"

	"github.com/opencampus/vitrine/backend"
	"github.com/opencampus/vitrine/credentials"
	"github.com/opencampus/vitrine/guard"
	"github.com/opencampus/vitrine/internal/config"
	"github.com/opencampus/vitrine/server/authstate"
	"github.com/opencampus/vitrine/session"
)

// OidcConfig holds the social-login provider wiring; nil when disabled.
type OidcConfig struct {
	Provider     *oidc.Provider
	OAuth2Config *oauth2.Config
	Verifier     *oidc.IDTokenVerifier
}

type Server struct {
	env       string
	mux       *http.ServeMux
	routes    []string
	config    config.Config
	session   *session.Manager
	api       *backend.Client
	chain     *guard.Chain
	authState authstate.Repo
	oidc      *OidcConfig
	log       zerolog.Logger
}

func New(ctx context.Context, cfg config.Config, log zerolog.Logger) (*Server, error) {
	api := backend.New(cfg.GetBackendURL(),
		backend.WithLogger(log.With().Str("component", "backend").Logger()),
		backend.WithHTTPClient(&http.Client{Timeout: cfg.GetBackendTimeout()}),
	)

	store := credentials.NewFileStore(cfg.GetDataFolder(), log)
	sess, err := session.NewManager(store, api,
		session.WithLogger(log.With().Str("component", "session").Logger()),
		session.WithExpiryBuffer(cfg.GetExpiryBuffer()),
		session.WithSecurityQuestionsMode(cfg.GetSecurityQuestionsMode()),
	)
	if err != nil {
		return nil, fmt.Errorf("[Server New] failed to create session manager: %w", err)
	}

	s := &Server{
		env:       cfg.GetEnv(),
		mux:       http.NewServeMux(),
		config:    cfg,
		session:   sess,
		api:       api,
		authState: authstate.NewInMemoryRepo(),
		log:       log,
	}
	s.chain = guard.NewChain(
		guard.NewAuthGuard(sess, log.With().Str("guard", "auth").Logger()),
		guard.NewRoleGuard(sess),
	)

	if issuer := cfg.GetOAuthIssuerURL(); issuer != "" {
		if err := s.initOidc(ctx, issuer); err != nil {
			return nil, fmt.Errorf("[Server New] failed to configure OIDC provider: %w", err)
		}
	}

	// Reattach a previous session before the first navigation hits a guard.
	if sess.Restore(ctx) {
		log.Info().Str("user", sess.User().ID).Msg("session restored")
	}

	s.initRoutes()
	s.logRoutes()
	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// Session exposes the facade for embedding callers (and tests).
func (s *Server) Session() *session.Manager {
	return s.session
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

func (s *Server) initOidc(ctx context.Context, issuer string) error {
	provider, err := oidc.NewProvider(ctx, issuer)
	if err != nil {
		return err
	}
	oauthCfg := &oauth2.Config{
		ClientID:     s.config.GetOAuthClientID(),
		ClientSecret: s.config.GetOAuthClientSecret(),
		Endpoint:     provider.Endpoint(),
		RedirectURL:  s.config.GetBaseURL() + guard.CallbackPath,
		Scopes:       s.config.GetOAuthScopes(),
	}
	s.oidc = &OidcConfig{
		Provider:     provider,
		OAuth2Config: oauthCfg,
		Verifier:     provider.Verifier(&oidc.Config{ClientID: oauthCfg.ClientID}),
	}
	return nil
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)
		if len(parts) > 1 {
			s.log.Debug().Str("method", parts[0]).Str("path", parts[1]).Msg("route")
		} else {
			s.log.Debug().Str("path", parts[0]).Msg("route")
		}
	}
}
