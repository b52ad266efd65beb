package session

import (
	"context"

	apperrors "github.com/opencampus/vitrine/internal/errors"
)

// refreshKey collapses all concurrent refresh attempts onto one in-flight
// exchange; there is only ever one credential pair to refresh.
const refreshKey = "refresh"

// Refresh performs the refresh-token exchange. Concurrent callers share a
// single backend call and receive the same result; without this, two parallel
// 401s would each refresh and the second exchange would invalidate the
// first's new token under rotating backends.
//
// A missing refresh token fails immediately. A failed exchange leaves the
// stored tokens untouched: a transient network error must not log the user
// out, and an auth rejection is the caller's cue to end the session, not
// this method's.
func (m *Manager) Refresh(ctx context.Context) bool {
	return m.refresh(ctx) == nil
}

// refresh returns the classified failure so callers can tell a dead session
// (ErrNoRefreshToken, ErrUnauthorized) from a flaky network
// (ErrBackendUnavailable).
func (m *Manager) refresh(ctx context.Context) error {
	_, err, shared := m.refreshGroup.Do(refreshKey, func() (any, error) {
		refreshToken := m.store.Refresh()
		if refreshToken == "" {
			return nil, apperrors.ErrNoRefreshToken
		}

		pair, err := m.api.Refresh(ctx, refreshToken)
		if err != nil {
			m.log.Debug().Err(err).Msg("token refresh failed")
			return nil, err
		}

		// Keep the old refresh token unless the backend rotated it.
		if pair.RefreshToken != "" {
			m.store.SetTokens(pair.AccessToken, pair.RefreshToken)
		} else {
			m.store.SetAccess(pair.AccessToken)
		}

		profile, err := m.fetchProfile(ctx, pair.AccessToken)
		if err != nil {
			// The exchange itself succeeded; the tokens are good. Tolerate a
			// transient profile failure when we still hold a cached user.
			if apperrors.Is(err, apperrors.ErrBackendUnavailable) && m.User() != nil {
				m.log.Debug().Err(err).Msg("profile re-fetch failed after refresh, keeping cached user")
				return nil, nil
			}
			return nil, err
		}
		m.setUser(profile)
		return nil, nil
	})

	if shared {
		m.log.Debug().Msg("joined in-flight refresh")
	}
	return err
}
