package importer

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Stager owns the staging directory where uploaded files live between
// preview and commit. Every staged file is named by a freshly generated
// token; the client-supplied filename is kept only as metadata and
// never touches the filesystem.
type Stager struct {
	dir string
}

// NewStager creates the staging directory if needed and returns a
// Stager rooted there.
func NewStager(dir string) (*Stager, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create staging dir: %w", err)
	}
	return &Stager{dir: dir}, nil
}

// Dir returns the staging directory path.
func (s *Stager) Dir() string { return s.dir }

// Put writes the upload under a new token and returns it. The token is
// a random hex string plus the original file extension; concurrent
// uploads can never collide and tokens are never reused.
func (s *Stager) Put(r io.Reader, originalName string) (string, error) {
	ext := strings.ToLower(filepath.Ext(filepath.Base(originalName)))
	if ext == "" {
		ext = ".csv"
	}
	token := strings.ReplaceAll(uuid.New().String(), "-", "") + ext

	f, err := os.Create(filepath.Join(s.dir, token))
	if err != nil {
		return "", fmt.Errorf("create staged file: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("write staged file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("close staged file: %w", err)
	}
	return token, nil
}

// Resolve maps a token back to its staged file path. Tokens that do not
// name a plain file directly inside the staging dir are invalid, as are
// tokens whose file the janitor has already reclaimed.
func (s *Stager) Resolve(token string) (string, error) {
	token = strings.TrimSpace(token)
	if token == "" || filepath.Base(token) != token || token == "." || token == ".." {
		return "", &InvalidTokenError{Token: token}
	}

	path := filepath.Join(s.dir, token)
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return "", &InvalidTokenError{Token: token}
	}
	return path, nil
}

// Remove deletes the staged file behind a token. Called after a
// successful commit; the token is dead afterwards.
func (s *Stager) Remove(token string) error {
	path, err := s.Resolve(token)
	if err != nil {
		return err
	}
	return os.Remove(path)
}
