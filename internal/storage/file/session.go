// Package file stores the session token in a local YAML file.
package file

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/go-faster/errors"
	"gopkg.in/yaml.v3"

	"github.com/xenking/kart-storefront/internal/domain/session"
)

var _ session.Repository = (*SessionRepository)(nil)

type sessionFile struct {
	Token   string    `yaml:"token"`
	SavedAt time.Time `yaml:"saved_at"`
}

// SessionRepository keeps the token in a file readable only by the owner.
type SessionRepository struct {
	path string
	now  func() time.Time

	mu sync.Mutex
}

// NewSessionRepository returns a repository backed by the file at path.
// The file and its parent directory are created on first Set.
func NewSessionRepository(path string) *SessionRepository {
	return &SessionRepository{path: path, now: time.Now}
}

// DefaultPath returns the session file location under the user config dir.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", errors.Wrap(err, "user config dir")
	}
	return filepath.Join(dir, "kart-storefront", "session.yaml"), nil
}

// Get returns the stored token or session.ErrNoToken.
func (r *SessionRepository) Get(_ context.Context) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := os.ReadFile(r.path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", session.ErrNoToken
	}
	if err != nil {
		return "", errors.Wrapf(err, "read %s", r.path)
	}

	var f sessionFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return "", errors.Wrapf(err, "parse %s", r.path)
	}
	token := strings.TrimSpace(f.Token)
	if token == "" {
		return "", session.ErrNoToken
	}
	return token, nil
}

// Set writes the token, replacing any previous one.
func (r *SessionRepository) Set(_ context.Context, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := yaml.Marshal(sessionFile{Token: token, SavedAt: r.now().UTC()})
	if err != nil {
		return errors.Wrap(err, "encode session")
	}
	if err := os.MkdirAll(filepath.Dir(r.path), 0o700); err != nil {
		return errors.Wrap(err, "create session dir")
	}

	tmp := r.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return errors.Wrapf(err, "write %s", tmp)
	}
	if err := os.Rename(tmp, r.path); err != nil {
		_ = os.Remove(tmp)
		return errors.Wrapf(err, "replace %s", r.path)
	}
	return nil
}

// Clear removes the file. A missing file is not an error.
func (r *SessionRepository) Clear(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := os.Remove(r.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return errors.Wrapf(err, "remove %s", r.path)
	}
	return nil
}
