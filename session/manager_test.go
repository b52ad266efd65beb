package session_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/opencampus/vitrine/backend"
	"github.com/opencampus/vitrine/credentials"
	"github.com/opencampus/vitrine/internal/config"
	apperrors "github.com/opencampus/vitrine/internal/errors"
	"github.com/opencampus/vitrine/session"
)

const (
	testUserID    = "u1"
	testUserEmail = "user@test.com"
	testPassword  = "secret123"
)

func mintAccessToken(t *testing.T, userID string, ttl time.Duration, extra jwtlib.MapClaims) string {
	t.Helper()
	claims := jwtlib.MapClaims{
		"id":   userID,
		"exp":  time.Now().Add(ttl).Unix(),
		"iat":  time.Now().Unix(),
		"role": "STUDENT",
	}
	for k, v := range extra {
		claims[k] = v
	}
	signed, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return signed
}

// fakeBackend is an httptest stand-in for the showcase REST API with call
// counters and switchable failure modes.
type fakeBackend struct {
	t   *testing.T
	srv *httptest.Server

	loginCalls   atomic.Int64
	refreshCalls atomic.Int64
	userCalls    atomic.Int64
	logoutCalls  atomic.Int64

	down          atomic.Bool // drop connections (transport failure)
	refreshStatus atomic.Int64
	logoutStatus  atomic.Int64
	refreshDelay  time.Duration

	mu             sync.Mutex
	accessToken    string // returned by login and refresh
	rotatedRefresh string // returned by refresh when non-empty
}

func newFakeBackend(t *testing.T) *fakeBackend {
	fb := &fakeBackend{t: t}
	fb.refreshStatus.Store(http.StatusOK)
	fb.logoutStatus.Store(http.StatusOK)
	fb.setAccessToken(mintAccessToken(t, testUserID, time.Hour, nil))
	fb.srv = httptest.NewServer(http.HandlerFunc(fb.handle))
	t.Cleanup(fb.srv.Close)
	return fb
}

func (fb *fakeBackend) setAccessToken(token string) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	fb.accessToken = token
}

func (fb *fakeBackend) currentAccessToken() string {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	return fb.accessToken
}

func (fb *fakeBackend) envelope(w http.ResponseWriter, status int, data any) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{"success": status < 300, "data": data})
}

func (fb *fakeBackend) handle(w http.ResponseWriter, r *http.Request) {
	if fb.down.Load() {
		hj, ok := w.(http.Hijacker)
		require.True(fb.t, ok)
		conn, _, err := hj.Hijack()
		require.NoError(fb.t, err)
		conn.Close()
		return
	}

	switch {
	case r.URL.Path == "/users/login":
		fb.loginCalls.Add(1)
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["email"] != testUserEmail || body["password"] != testPassword {
			fb.envelope(w, http.StatusUnauthorized, nil)
			return
		}
		fb.envelope(w, http.StatusOK, map[string]string{
			"access_token":  fb.currentAccessToken(),
			"refresh_token": "R",
		})

	case r.URL.Path == "/users/refresh":
		fb.refreshCalls.Add(1)
		if fb.refreshDelay > 0 {
			time.Sleep(fb.refreshDelay)
		}
		status := int(fb.refreshStatus.Load())
		if status != http.StatusOK {
			fb.envelope(w, status, nil)
			return
		}
		fb.mu.Lock()
		rotated := fb.rotatedRefresh
		fb.mu.Unlock()
		fb.envelope(w, http.StatusOK, map[string]string{
			"access_token":  fb.currentAccessToken(),
			"refresh_token": rotated,
		})

	case strings.HasPrefix(r.URL.Path, "/users/logout/"):
		fb.logoutCalls.Add(1)
		fb.envelope(w, int(fb.logoutStatus.Load()), nil)

	case strings.HasPrefix(r.URL.Path, "/users/"):
		fb.userCalls.Add(1)
		fb.envelope(w, http.StatusOK, map[string]any{
			"id":    testUserID,
			"name":  "Ada Lovelace",
			"email": testUserEmail,
			"role":  "STUDENT",
		})

	default:
		fb.envelope(w, http.StatusNotFound, nil)
	}
}

func (fb *fakeBackend) totalCalls() int64 {
	return fb.loginCalls.Load() + fb.refreshCalls.Load() + fb.userCalls.Load() + fb.logoutCalls.Load()
}

func newTestManager(t *testing.T, fb *fakeBackend, options ...session.Option) (*session.Manager, *credentials.MemoryStore) {
	t.Helper()
	store := credentials.NewMemoryStore()
	options = append([]session.Option{session.WithLogger(zerolog.Nop())}, options...)
	m, err := session.NewManager(store, backend.New(fb.srv.URL), options...)
	require.NoError(t, err)
	return m, store
}

func TestLoginStoresTokensAndUser(t *testing.T) {
	fb := newFakeBackend(t)
	m, store := newTestManager(t, fb)

	profile, err := m.Login(context.Background(), testUserEmail, testPassword)
	require.NoError(t, err)
	require.Equal(t, testUserID, profile.ID)

	state := m.State()
	require.True(t, state.Authenticated)
	require.Equal(t, testUserID, state.User.ID)
	require.Equal(t, fb.currentAccessToken(), store.Access())
	require.Equal(t, "R", store.Refresh())
}

func TestLoginRejectedClearsState(t *testing.T) {
	fb := newFakeBackend(t)
	m, store := newTestManager(t, fb)

	_, err := m.Login(context.Background(), testUserEmail, "wrong-password")
	require.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
	require.False(t, m.Authenticated())
	require.Empty(t, store.Access())
}

func TestLoginValidationNeverTouchesNetwork(t *testing.T) {
	fb := newFakeBackend(t)
	m, _ := newTestManager(t, fb)

	_, err := m.Login(context.Background(), "not-an-email", testPassword)
	require.ErrorIs(t, err, apperrors.ErrInvalidEmail)

	_, err = m.Login(context.Background(), testUserEmail, "")
	require.ErrorIs(t, err, apperrors.ErrValidation)

	require.Zero(t, fb.totalCalls())
}

func TestRegisterValidation(t *testing.T) {
	fb := newFakeBackend(t)
	m, _ := newTestManager(t, fb)

	_, err := m.Register(context.Background(), session.RegisterRequest{
		Name: "Ada", Email: testUserEmail, Password: "short", ConfirmPassword: "short",
	})
	require.ErrorIs(t, err, apperrors.ErrPasswordTooShort)

	_, err = m.Register(context.Background(), session.RegisterRequest{
		Name: "Ada", Email: testUserEmail, Password: "longenough1", ConfirmPassword: "different1",
	})
	require.ErrorIs(t, err, apperrors.ErrPasswordMismatch)

	require.Zero(t, fb.totalCalls())
}

func TestLogoutAlwaysClears(t *testing.T) {
	fb := newFakeBackend(t)
	fb.logoutStatus.Store(http.StatusInternalServerError) // notification fails
	m, store := newTestManager(t, fb)

	_, err := m.Login(context.Background(), testUserEmail, testPassword)
	require.NoError(t, err)

	m.Logout(context.Background())

	require.False(t, m.Authenticated())
	require.Nil(t, m.User())
	require.Empty(t, store.Access())
	require.Empty(t, store.Refresh())
	require.Equal(t, int64(1), fb.logoutCalls.Load(), "backend is still notified best-effort")
}

func TestConcurrentRefreshSingleFlight(t *testing.T) {
	fb := newFakeBackend(t)
	fb.refreshDelay = 100 * time.Millisecond
	m, store := newTestManager(t, fb)

	store.SetTokens(mintAccessToken(t, testUserID, -time.Minute, nil), "R")

	const callers = 10
	results := make([]bool, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = m.Refresh(context.Background())
		}(i)
	}
	wg.Wait()

	require.Equal(t, int64(1), fb.refreshCalls.Load(), "concurrent callers must collapse into one exchange")
	for _, ok := range results {
		require.True(t, ok, "every caller receives the shared result")
	}
	require.Equal(t, fb.currentAccessToken(), store.Access())
}

func TestRefreshWithoutRefreshTokenFailsFast(t *testing.T) {
	fb := newFakeBackend(t)
	m, store := newTestManager(t, fb)

	store.SetTokens(mintAccessToken(t, testUserID, -time.Minute, nil), "")

	require.False(t, m.Refresh(context.Background()))
	require.Zero(t, fb.refreshCalls.Load())
}

func TestRefreshFailureLeavesTokensUntouched(t *testing.T) {
	fb := newFakeBackend(t)
	fb.refreshStatus.Store(http.StatusInternalServerError)
	m, store := newTestManager(t, fb)

	expired := mintAccessToken(t, testUserID, -time.Minute, nil)
	store.SetTokens(expired, "R")

	require.False(t, m.Refresh(context.Background()))
	require.Equal(t, expired, store.Access(), "a failed refresh must not clear tokens")
	require.Equal(t, "R", store.Refresh())
}

func TestRefreshKeepsOldRefreshTokenWhenNotRotated(t *testing.T) {
	fb := newFakeBackend(t)
	m, store := newTestManager(t, fb)
	store.SetTokens(mintAccessToken(t, testUserID, -time.Minute, nil), "R")

	require.True(t, m.Refresh(context.Background()))
	require.Equal(t, "R", store.Refresh())

	// And rotation replaces it.
	fb.mu.Lock()
	fb.rotatedRefresh = "R2"
	fb.mu.Unlock()
	require.True(t, m.Refresh(context.Background()))
	require.Equal(t, "R2", store.Refresh())
}

func TestRestoreWithoutTokenMakesNoNetworkCalls(t *testing.T) {
	fb := newFakeBackend(t)
	m, _ := newTestManager(t, fb)

	require.False(t, m.Restore(context.Background()))
	require.Zero(t, fb.totalCalls())
}

func TestRestoreMalformedTokenClearsWithoutNetwork(t *testing.T) {
	fb := newFakeBackend(t)
	m, store := newTestManager(t, fb)
	store.SetTokens("garbage-token", "R")

	require.False(t, m.Restore(context.Background()))
	require.Empty(t, store.Access())
	require.Empty(t, store.Refresh())
	require.Zero(t, fb.totalCalls())
}

func TestRestoreExpiredTokenRefreshFailureClears(t *testing.T) {
	fb := newFakeBackend(t)
	fb.refreshStatus.Store(http.StatusUnauthorized)
	m, store := newTestManager(t, fb)
	store.SetTokens(mintAccessToken(t, testUserID, -time.Minute, nil), "R")

	require.False(t, m.Restore(context.Background()))
	require.Empty(t, store.Access())
	require.Equal(t, int64(1), fb.refreshCalls.Load(), "exactly one refresh attempt")
}

func TestRestoreExpiredTokenRefreshSuccess(t *testing.T) {
	fb := newFakeBackend(t)
	m, store := newTestManager(t, fb)
	store.SetTokens(mintAccessToken(t, testUserID, -time.Minute, nil), "R")

	require.True(t, m.Restore(context.Background()))
	require.True(t, m.Authenticated())
	require.Equal(t, testUserID, m.User().ID)
	require.Equal(t, fb.currentAccessToken(), store.Access(), "store holds the refreshed access token")
}

func TestRestoreValidToken(t *testing.T) {
	fb := newFakeBackend(t)
	m, store := newTestManager(t, fb)
	store.SetTokens(mintAccessToken(t, testUserID, time.Hour, nil), "R")

	require.True(t, m.Restore(context.Background()))
	require.Zero(t, fb.refreshCalls.Load(), "a live token needs no refresh")
	require.Equal(t, int64(1), fb.userCalls.Load())
}

func TestRestoreNetworkFailureKeepsCachedSession(t *testing.T) {
	fb := newFakeBackend(t)
	m, store := newTestManager(t, fb)

	_, err := m.Login(context.Background(), testUserEmail, testPassword)
	require.NoError(t, err)

	// Token ages past the buffer while the backend is unreachable.
	store.SetTokens(mintAccessToken(t, testUserID, -time.Minute, nil), "R")
	fb.down.Store(true)

	require.True(t, m.Restore(context.Background()), "a network failure with a cached profile keeps the session")
	require.True(t, m.Authenticated())
	require.NotEmpty(t, store.Access(), "tokens survive a transient failure")
}

func TestRestoreNetworkFailureWithoutCacheKeepsTokens(t *testing.T) {
	fb := newFakeBackend(t)
	m, store := newTestManager(t, fb)

	expired := mintAccessToken(t, testUserID, -time.Minute, nil)
	store.SetTokens(expired, "R")
	fb.down.Store(true)

	require.False(t, m.Restore(context.Background()), "nothing cached, no session yet")
	require.False(t, m.Authenticated())
	require.Equal(t, expired, store.Access(), "tokens survive for the next attempt")
	require.Equal(t, "R", store.Refresh())
}

func TestNeedsSecurityQuestionsModes(t *testing.T) {
	fb := newFakeBackend(t)
	withFlag := mintAccessToken(t, testUserID, time.Hour, jwtlib.MapClaims{"needsSecurityQuestions": true})

	flagDriven, store := newTestManager(t, fb)
	store.SetTokens(withFlag, "R")
	require.True(t, flagDriven.NeedsSecurityQuestions())
	store.SetTokens(mintAccessToken(t, testUserID, time.Hour, nil), "R")
	require.False(t, flagDriven.NeedsSecurityQuestions())

	alwaysPrompt, _ := newTestManager(t, fb,
		session.WithSecurityQuestionsMode(config.SecurityQuestionsAlwaysPrompt))
	_, err := alwaysPrompt.Login(context.Background(), testUserEmail, testPassword)
	require.NoError(t, err)
	// Profile has no security questions configured, so the override prompts.
	require.True(t, alwaysPrompt.NeedsSecurityQuestions())
}

func TestStateInvariantViolationLogsOut(t *testing.T) {
	fb := newFakeBackend(t)
	m, store := newTestManager(t, fb)

	_, err := m.Login(context.Background(), testUserEmail, testPassword)
	require.NoError(t, err)

	// Someone clobbers the stored token behind the facade's back.
	store.SetTokens("garbage", "R")

	state := m.State()
	require.False(t, state.Authenticated)
	require.Nil(t, state.User)
}
