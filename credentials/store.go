// Package credentials holds the persisted token pair. It is the portal's
// analogue of the browser's local storage: two string values under fixed
// keys, whose absence simply means "logged out".
package credentials

import "sync"

// Storage keys, kept identical to the browser build so the backend contract
// stays in one shape.
const (
	AccessTokenKey  = "access_token"
	RefreshTokenKey = "refresh_token"
)

// Store owns the credential pair. Implementations never surface errors:
// absent or unreadable storage reads as "no token", failed persists are
// dropped silently. All writers funnel through the session manager.
type Store interface {
	// Access returns the stored access token, or "" when logged out.
	Access() string
	// Refresh returns the stored refresh token, or "" when none is held.
	Refresh() string
	// SetTokens stores a new pair. An empty refresh token clears the old one;
	// use SetAccess to rotate only the access token.
	SetTokens(access, refresh string)
	// SetAccess replaces the access token and keeps the refresh token.
	SetAccess(access string)
	// Clear removes both tokens.
	Clear()
}

// MemoryStore is a process-local Store, used in tests and embedded callers.
type MemoryStore struct {
	mu      sync.RWMutex
	access  string
	refresh string
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Access() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.access
}

func (s *MemoryStore) Refresh() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.refresh
}

func (s *MemoryStore) SetTokens(access, refresh string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.access = access
	s.refresh = refresh
}

func (s *MemoryStore) SetAccess(access string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.access = access
}

func (s *MemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.access = ""
	s.refresh = ""
}
