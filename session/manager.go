// Package session owns the client-side authentication lifecycle: the token
// pair, the current user, token refresh and the authenticated fetch helper.
// It is the only writer of the credential store; UI layers read state
// snapshots and never touch tokens directly.
package session

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/opencampus/vitrine/backend"
	"github.com/opencampus/vitrine/credentials"
	"github.com/opencampus/vitrine/internal/config"
	apperrors "github.com/opencampus/vitrine/internal/errors"
	"github.com/opencampus/vitrine/token"
	"github.com/opencampus/vitrine/users"
)

// State is a point-in-time snapshot of the session, safe to hand to UI code.
type State struct {
	User          *users.Profile
	Authenticated bool
	Loading       bool
	Error         string
}

// Manager is the session facade. A process holds exactly one instance,
// created at startup and injected into guards and handlers.
type Manager struct {
	store    credentials.Store
	api      *backend.Client
	http     *http.Client
	log      zerolog.Logger
	validate *validator.Validate

	expiryBuffer time.Duration
	sqMode       config.SecurityQuestionsMode

	refreshGroup singleflight.Group

	mu            sync.RWMutex
	user          *users.Profile
	authenticated bool
	loading       bool
	lastErr       string
}

// Option modifies a Manager instance.
type Option func(*Manager)

// WithLogger sets the session logger.
func WithLogger(log zerolog.Logger) Option {
	return func(m *Manager) {
		m.log = log
	}
}

// WithHTTPClient replaces the client used by Do (primarily for testing).
func WithHTTPClient(h *http.Client) Option {
	return func(m *Manager) {
		m.http = h
	}
}

// WithExpiryBuffer overrides the refresh window.
func WithExpiryBuffer(buffer time.Duration) Option {
	return func(m *Manager) {
		m.expiryBuffer = buffer
	}
}

// WithSecurityQuestionsMode selects which security-questions rule applies.
func WithSecurityQuestionsMode(mode config.SecurityQuestionsMode) Option {
	return func(m *Manager) {
		m.sqMode = mode
	}
}

// NewManager creates the session facade over a credential store and backend
// client.
func NewManager(store credentials.Store, api *backend.Client, options ...Option) (*Manager, error) {
	if store == nil {
		return nil, errors.New("[NewManager] credential store is required")
	}
	if api == nil {
		return nil, errors.New("[NewManager] backend client is required")
	}

	m := &Manager{
		store:        store,
		api:          api,
		http:         &http.Client{},
		log:          zerolog.Nop(),
		validate:     validator.New(),
		expiryBuffer: token.DefaultExpiryBuffer,
		sqMode:       config.SecurityQuestionsFlagDriven,
	}
	for _, opt := range options {
		opt(m)
	}
	return m, nil
}

// State returns a snapshot. The core invariant is enforced here: an
// authenticated session must hold a decodable access token and a user; when
// that no longer holds, the session is torn down before the snapshot is
// taken. Expiry is deliberately not part of the check: an expired-but-present
// token is the guards' cue to refresh, and tearing it down here would race
// that refresh.
func (m *Manager) State() State {
	m.mu.RLock()
	authenticated := m.authenticated
	user := m.user
	m.mu.RUnlock()

	if authenticated && (user == nil || token.Decode(m.store.Access()) == nil) {
		m.log.Warn().Msg("session invariant violated, logging out")
		m.store.Clear()
		m.reset("")
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	return State{
		User:          m.user,
		Authenticated: m.authenticated,
		Loading:       m.loading,
		Error:         m.lastErr,
	}
}

// Authenticated reports whether a user is logged in.
func (m *Manager) Authenticated() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.authenticated
}

// User returns the cached profile, or nil when logged out.
func (m *Manager) User() *users.Profile {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.user
}

// Role returns the current user's role, RoleUnknown when logged out.
func (m *Manager) Role() users.Role {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.user == nil {
		return users.RoleUnknown
	}
	return m.user.Role
}

// AccessToken returns the raw stored access token, empty when signed out.
// Callers that just want an authenticated request should prefer Do.
func (m *Manager) AccessToken() string {
	return m.store.Access()
}

// TokenExpired reports whether the stored access token is absent, malformed
// or inside the refresh window.
func (m *Manager) TokenExpired() bool {
	return token.ExpiredWithin(token.Decode(m.store.Access()), m.expiryBuffer)
}

// Login validates the credentials locally, then exchanges them with the
// backend and loads the user profile. Validation failures never reach the
// network. Any failure past validation leaves a clean logged-out state.
func (m *Manager) Login(ctx context.Context, email, password string) (*users.Profile, error) {
	if err := m.validateLogin(email, password); err != nil {
		return nil, err
	}

	m.setLoading(true)
	defer m.setLoading(false)

	pair, err := m.api.Login(ctx, email, password)
	if err != nil {
		m.store.Clear()
		m.reset(err.Error())
		return nil, errors.Wrap(err, "[Manager.Login]")
	}

	m.store.SetTokens(pair.AccessToken, pair.RefreshToken)

	profile, err := m.fetchProfile(ctx, pair.AccessToken)
	if err != nil {
		m.store.Clear()
		m.reset(err.Error())
		return nil, errors.Wrap(err, "[Manager.Login] load profile")
	}

	m.setUser(profile)
	m.log.Info().Str("user", profile.ID).Str("role", string(profile.Role)).Msg("logged in")
	return profile, nil
}

// Register signs a new user up and logs them in.
func (m *Manager) Register(ctx context.Context, req RegisterRequest) (*users.Profile, error) {
	if err := m.validateRegister(req); err != nil {
		return nil, err
	}

	m.setLoading(true)
	defer m.setLoading(false)

	pair, err := m.api.Signup(ctx, backend.SignupRequest{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		m.store.Clear()
		m.reset(err.Error())
		return nil, errors.Wrap(err, "[Manager.Register]")
	}

	m.store.SetTokens(pair.AccessToken, pair.RefreshToken)

	profile, err := m.fetchProfile(ctx, pair.AccessToken)
	if err != nil {
		m.store.Clear()
		m.reset(err.Error())
		return nil, errors.Wrap(err, "[Manager.Register] load profile")
	}

	m.setUser(profile)
	return profile, nil
}

// AcceptTokens installs backend-issued tokens obtained out of band (the OAuth
// callback handshake) and loads the user profile.
func (m *Manager) AcceptTokens(ctx context.Context, access, refresh string) (*users.Profile, error) {
	if token.Decode(access) == nil {
		return nil, apperrors.ErrMalformedToken
	}

	m.store.SetTokens(access, refresh)

	profile, err := m.fetchProfile(ctx, access)
	if err != nil {
		m.store.Clear()
		m.reset(err.Error())
		return nil, errors.Wrap(err, "[Manager.AcceptTokens] load profile")
	}

	m.setUser(profile)
	return profile, nil
}

// Logout clears tokens and state unconditionally, then tells the backend on a
// best-effort basis. A failed notification never resurrects the session.
func (m *Manager) Logout(ctx context.Context) {
	m.mu.RLock()
	user := m.user
	m.mu.RUnlock()
	access := m.store.Access()

	m.store.Clear()
	m.reset("")

	if user != nil && access != "" {
		if err := m.api.Logout(ctx, user.ID, access); err != nil {
			m.log.Debug().Err(err).Msg("backend logout notification failed")
		}
	}
}

// NeedsSecurityQuestions applies the configured rule. The two rules observed
// in the wild disagree; see config.SecurityQuestionsMode.
func (m *Manager) NeedsSecurityQuestions() bool {
	switch m.sqMode {
	case config.SecurityQuestionsAlwaysPrompt:
		m.mu.RLock()
		defer m.mu.RUnlock()
		return m.user != nil && !m.user.HasSecurityQuestions
	default:
		claims := token.Decode(m.store.Access())
		return claims != nil && claims.NeedsSecurityQuestions
	}
}

// fetchProfile loads the user identified by the token's subject.
func (m *Manager) fetchProfile(ctx context.Context, access string) (*users.Profile, error) {
	claims := token.Decode(access)
	if claims == nil || claims.Subject == "" {
		return nil, apperrors.ErrMalformedToken
	}
	return m.api.User(ctx, claims.Subject, access)
}

func (m *Manager) setUser(profile *users.Profile) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.user = profile
	m.authenticated = true
	m.lastErr = ""
}

func (m *Manager) reset(errMsg string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.user = nil
	m.authenticated = false
	m.lastErr = errMsg
}

func (m *Manager) setLoading(loading bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loading = loading
}
