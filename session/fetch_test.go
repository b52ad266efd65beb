package session_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	apperrors "github.com/opencampus/vitrine/internal/errors"
)

// targetServer is the protected resource Do talks to. It rejects a
// configurable number of leading requests with 401.
type targetServer struct {
	srv        *httptest.Server
	calls      atomic.Int64
	rejections atomic.Int64 // 401s still to serve
	lastAuth   atomic.Value
	lastBody   atomic.Value
}

func newTargetServer(t *testing.T) *targetServer {
	ts := &targetServer{}
	ts.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ts.calls.Add(1)
		ts.lastAuth.Store(r.Header.Get("Authorization"))
		body, _ := io.ReadAll(r.Body)
		ts.lastBody.Store(string(body))
		if ts.rejections.Load() > 0 {
			ts.rejections.Add(-1)
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	t.Cleanup(ts.srv.Close)
	return ts
}

func TestDoWithoutSession(t *testing.T) {
	fb := newFakeBackend(t)
	m, _ := newTestManager(t, fb)
	ts := newTargetServer(t)

	req, err := http.NewRequest(http.MethodGet, ts.srv.URL, nil)
	require.NoError(t, err)

	_, err = m.Do(context.Background(), req)
	require.ErrorIs(t, err, apperrors.ErrNotAuthenticated)
	require.Zero(t, ts.calls.Load())
}

func TestDoHappyPath(t *testing.T) {
	fb := newFakeBackend(t)
	m, _ := newTestManager(t, fb)
	ts := newTargetServer(t)

	_, err := m.Login(context.Background(), testUserEmail, testPassword)
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodGet, ts.srv.URL, nil)
	require.NoError(t, err)

	resp, err := m.Do(context.Background(), req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, int64(1), ts.calls.Load())
	require.Zero(t, fb.refreshCalls.Load())
	auth, _ := ts.lastAuth.Load().(string)
	require.True(t, strings.HasPrefix(auth, "Bearer "))
}

func TestDoRetriesOnceAfter401(t *testing.T) {
	fb := newFakeBackend(t)
	m, _ := newTestManager(t, fb)
	ts := newTargetServer(t)
	ts.rejections.Store(1)

	_, err := m.Login(context.Background(), testUserEmail, testPassword)
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodGet, ts.srv.URL, nil)
	require.NoError(t, err)

	resp, err := m.Do(context.Background(), req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, int64(2), ts.calls.Load(), "exactly two calls to the target")
	require.Equal(t, int64(1), fb.refreshCalls.Load(), "exactly one refresh exchange")
}

func TestDoSecond401IsFatal(t *testing.T) {
	fb := newFakeBackend(t)
	m, store := newTestManager(t, fb)
	ts := newTargetServer(t)
	ts.rejections.Store(2)

	_, err := m.Login(context.Background(), testUserEmail, testPassword)
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodGet, ts.srv.URL, nil)
	require.NoError(t, err)

	_, err = m.Do(context.Background(), req)
	require.ErrorIs(t, err, apperrors.ErrSessionExpired)
	require.Equal(t, int64(2), ts.calls.Load(), "never retried more than once")
	require.False(t, m.Authenticated())
	require.Empty(t, store.Access(), "fatal expiry logs the user out")
}

func TestDoRefreshesExpiredTokenUpFront(t *testing.T) {
	fb := newFakeBackend(t)
	m, store := newTestManager(t, fb)
	ts := newTargetServer(t)

	store.SetTokens(mintAccessToken(t, testUserID, -time.Minute, nil), "R")

	req, err := http.NewRequest(http.MethodGet, ts.srv.URL, nil)
	require.NoError(t, err)

	resp, err := m.Do(context.Background(), req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, int64(1), fb.refreshCalls.Load())
	require.Equal(t, int64(1), ts.calls.Load())
	auth, _ := ts.lastAuth.Load().(string)
	require.Equal(t, "Bearer "+fb.currentAccessToken(), auth, "target sees the refreshed token")
}

func TestDoExpiredTokenUnrefreshableEndsSession(t *testing.T) {
	fb := newFakeBackend(t)
	fb.refreshStatus.Store(http.StatusUnauthorized)
	m, store := newTestManager(t, fb)
	ts := newTargetServer(t)

	store.SetTokens(mintAccessToken(t, testUserID, -time.Minute, nil), "R")

	req, err := http.NewRequest(http.MethodGet, ts.srv.URL, nil)
	require.NoError(t, err)

	_, err = m.Do(context.Background(), req)
	require.ErrorIs(t, err, apperrors.ErrSessionExpired)
	require.Zero(t, ts.calls.Load(), "the doomed request is never sent")
	require.Empty(t, store.Access())
}

func TestDoTransientRefreshFailureKeepsTokens(t *testing.T) {
	fb := newFakeBackend(t)
	m, store := newTestManager(t, fb)
	ts := newTargetServer(t)

	expired := mintAccessToken(t, testUserID, -time.Minute, nil)
	store.SetTokens(expired, "R")
	fb.down.Store(true)

	req, err := http.NewRequest(http.MethodGet, ts.srv.URL, nil)
	require.NoError(t, err)

	_, err = m.Do(context.Background(), req)
	require.ErrorIs(t, err, apperrors.ErrBackendUnavailable)
	require.Equal(t, expired, store.Access(), "transient failures never log out")
	require.Equal(t, "R", store.Refresh())
}

func TestDoTransientRefreshFailureAfter401KeepsTokens(t *testing.T) {
	fb := newFakeBackend(t)
	m, store := newTestManager(t, fb)
	ts := newTargetServer(t)
	ts.rejections.Store(1)

	_, err := m.Login(context.Background(), testUserEmail, testPassword)
	require.NoError(t, err)
	access := store.Access()
	fb.down.Store(true)

	req, err := http.NewRequest(http.MethodGet, ts.srv.URL, nil)
	require.NoError(t, err)

	_, err = m.Do(context.Background(), req)
	require.ErrorIs(t, err, apperrors.ErrBackendUnavailable)
	require.Equal(t, int64(1), ts.calls.Load(), "no retry without a fresh token")
	require.Equal(t, access, store.Access(), "transient failures never log out")
	require.Equal(t, "R", store.Refresh())
	require.True(t, m.Authenticated())
}

func TestDoReplaysRequestBody(t *testing.T) {
	fb := newFakeBackend(t)
	m, _ := newTestManager(t, fb)
	ts := newTargetServer(t)
	ts.rejections.Store(1)

	_, err := m.Login(context.Background(), testUserEmail, testPassword)
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodPost, ts.srv.URL, strings.NewReader(`{"title":"Line Follower"}`))
	require.NoError(t, err)

	resp, err := m.Do(context.Background(), req)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, _ := ts.lastBody.Load().(string)
	require.Equal(t, `{"title":"Line Follower"}`, body, "the retry carries the same body")
}
