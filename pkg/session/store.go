package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
)

// ConfigFileName is the credential file created in the home directory.
const ConfigFileName = ".cloudplayarc"

// Store persists one session.
type Store interface {
	// Load returns the saved credentials, or ErrNoCredentials.
	Load(ctx context.Context) (Credentials, error)

	// Save replaces the saved credentials.
	Save(ctx context.Context, creds Credentials) error

	// Delete forgets the saved credentials. Deleting an empty store is not
	// an error.
	Delete(ctx context.Context) error
}

// DefaultPath resolves the credential file: $APPDATA, then $HOME, then the
// working directory.
func DefaultPath() string {
	home := os.Getenv("APPDATA")
	if home == "" {
		home = os.Getenv("HOME")
	}
	if home == "" {
		log.Warn().Msg("Unable to find home directory for " + ConfigFileName)
	}
	return filepath.Join(home, ConfigFileName)
}

// FileStore keeps credentials as JSON in a single file.
type FileStore struct {
	path string
}

// NewFileStore creates a store backed by path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the backing file path.
func (s *FileStore) Path() string {
	return s.path
}

// Load implements Store.
func (s *FileStore) Load(ctx context.Context) (creds Credentials, err error) {
	defer func() { observe("file", "load", err) }()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Credentials{}, ErrNoCredentials
		}
		return Credentials{}, fmt.Errorf("read %s: %w", s.path, err)
	}
	return decodeCredentials(data)
}

// Save implements Store. The file is written with owner-only permissions.
func (s *FileStore) Save(ctx context.Context, creds Credentials) (err error) {
	defer func() { observe("file", "save", err) }()

	data, err := json.Marshal(creds)
	if err != nil {
		return fmt.Errorf("marshal credentials: %w", err)
	}
	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename %s: %w", tmp, err)
	}
	return nil
}

// Delete implements Store.
func (s *FileStore) Delete(ctx context.Context) (err error) {
	defer func() { observe("file", "delete", err) }()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove %s: %w", s.path, err)
	}
	return nil
}

func decodeCredentials(data []byte) (Credentials, error) {
	var creds Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return Credentials{}, fmt.Errorf("decode credentials: %w", err)
	}
	if !creds.Complete() {
		return Credentials{}, ErrIncompleteCredentials
	}
	return creds, nil
}
