package session

import (
	"context"
	"net/http"

	"github.com/pkg/errors"

	apperrors "github.com/opencampus/vitrine/internal/errors"
)

// Do sends an authenticated request. It is the only network helper with
// automatic retry semantics: an expired token is refreshed up front, a 401
// response triggers one refresh and one replay, and a second 401 ends the
// session with ErrSessionExpired. It never retries more than once. A refresh
// that fails on the network surfaces as an error with the session intact;
// only an auth rejection tears it down.
func (m *Manager) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	if m.store.Access() == "" {
		return nil, apperrors.ErrNotAuthenticated
	}

	if m.TokenExpired() {
		if err := m.refresh(ctx); err != nil {
			if apperrors.Is(err, apperrors.ErrBackendUnavailable) {
				// Transient: don't end the session, surface the failure.
				return nil, errors.Wrap(err, "[Manager.Do] refresh")
			}
			m.expireSession(ctx)
			return nil, apperrors.ErrSessionExpired
		}
	}

	resp, err := m.send(ctx, req)
	if err != nil {
		return nil, errors.Wrap(err, "[Manager.Do]")
	}
	if resp.StatusCode != http.StatusUnauthorized {
		return resp, nil
	}
	resp.Body.Close()

	if err := m.refresh(ctx); err != nil {
		if apperrors.Is(err, apperrors.ErrBackendUnavailable) {
			return nil, errors.Wrap(err, "[Manager.Do] refresh after 401")
		}
		m.expireSession(ctx)
		return nil, apperrors.ErrSessionExpired
	}

	resp, err = m.send(ctx, req)
	if err != nil {
		return nil, errors.Wrap(err, "[Manager.Do] retry")
	}
	if resp.StatusCode == http.StatusUnauthorized {
		resp.Body.Close()
		m.expireSession(ctx)
		return nil, apperrors.ErrSessionExpired
	}
	return resp, nil
}

// send replays a clone of the request with the current access token. Cloning
// keeps the original request body reusable via GetBody for the retry.
func (m *Manager) send(ctx context.Context, req *http.Request) (*http.Response, error) {
	clone := req.Clone(ctx)
	if req.GetBody != nil {
		body, err := req.GetBody()
		if err != nil {
			return nil, errors.Wrap(err, "[Manager.send] reread body")
		}
		clone.Body = body
	}
	clone.Header.Set("Authorization", "Bearer "+m.store.Access())
	return m.http.Do(clone)
}

// expireSession tears the session down after an unrecoverable auth failure.
func (m *Manager) expireSession(ctx context.Context) {
	m.log.Info().Msg("session expired")
	m.Logout(ctx)
	m.mu.Lock()
	m.lastErr = apperrors.ErrSessionExpired.Error()
	m.mu.Unlock()
}
