package credentials

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"
)

const credentialsFileName = "credentials.json"

// FileStore persists the token pair as a JSON file under the data folder.
// Reads and writes are best-effort: an unreadable file means logged out and a
// failed persist never fails the caller, so a store pointed at an unwritable
// location degrades to memory-only behaviour.
type FileStore struct {
	path string
	log  zerolog.Logger

	mu      sync.RWMutex
	access  string
	refresh string
}

var _ Store = (*FileStore)(nil)

func NewFileStore(dataFolder string, log zerolog.Logger) *FileStore {
	s := &FileStore{
		path: filepath.Join(dataFolder, credentialsFileName),
		log:  log,
	}
	s.load()
	return s
}

func (s *FileStore) Access() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.access
}

func (s *FileStore) Refresh() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.refresh
}

func (s *FileStore) SetTokens(access, refresh string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.access = access
	s.refresh = refresh
	s.persist()
}

func (s *FileStore) SetAccess(access string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.access = access
	s.persist()
}

func (s *FileStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.access = ""
	s.refresh = ""
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		s.log.Debug().Err(err).Str("path", s.path).Msg("could not remove credentials file")
	}
}

func (s *FileStore) load() {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return // no stored credentials
	}
	var stored map[string]string
	if err := json.Unmarshal(data, &stored); err != nil {
		s.log.Debug().Err(err).Str("path", s.path).Msg("ignoring corrupt credentials file")
		return
	}
	s.access = stored[AccessTokenKey]
	s.refresh = stored[RefreshTokenKey]
}

// persist writes the current pair; caller holds the lock.
func (s *FileStore) persist() {
	stored := map[string]string{
		AccessTokenKey:  s.access,
		RefreshTokenKey: s.refresh,
	}
	data, err := json.MarshalIndent(stored, "", "  ")
	if err != nil {
		return
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		s.log.Debug().Err(err).Str("path", s.path).Msg("could not create credentials folder")
		return
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		s.log.Debug().Err(err).Str("path", s.path).Msg("could not persist credentials")
	}
}
