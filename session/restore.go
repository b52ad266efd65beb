package session

import (
	"context"

	apperrors "github.com/opencampus/vitrine/internal/errors"
	"github.com/opencampus/vitrine/token"
)

// Restore reattaches a previous session from the credential store. Called
// once at startup.
//
// No stored token returns false without touching the network. A malformed
// token clears the store, also without touching the network. An expired token
// gets exactly one refresh attempt: an auth rejection ends the session, a
// transient failure keeps tokens (and any cached user) so the next navigation
// can retry. A live token only needs the profile fetch, where the same
// network/auth distinction applies.
func (m *Manager) Restore(ctx context.Context) bool {
	access := m.store.Access()
	if access == "" {
		return false
	}

	claims := token.Decode(access)
	if claims == nil {
		m.store.Clear()
		m.reset("")
		return false
	}

	if token.ExpiredWithin(claims, m.expiryBuffer) {
		err := m.refresh(ctx)
		if err == nil {
			return true
		}
		if apperrors.Is(err, apperrors.ErrBackendUnavailable) {
			if m.User() != nil {
				m.log.Debug().Err(err).Msg("restore refresh hit a network failure, keeping session")
				return true
			}
			// Tokens stay put so the next attempt can retry the exchange.
			m.log.Debug().Err(err).Msg("restore refresh hit a network failure, keeping tokens")
			return false
		}
		m.store.Clear()
		m.reset("")
		return false
	}

	profile, err := m.fetchProfile(ctx, access)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrBackendUnavailable) {
			if m.User() != nil {
				m.log.Debug().Err(err).Msg("restore profile fetch hit a network failure, keeping session")
				return true
			}
			// Token still live, backend unreachable, nothing cached: leave
			// the tokens for the next attempt but report no session yet.
			return false
		}
		m.store.Clear()
		m.reset("")
		return false
	}

	m.setUser(profile)
	return true
}
