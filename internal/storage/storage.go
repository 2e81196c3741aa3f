// File: internal/storage/storage.go
package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// MaxUploadBytes caps accepted attachments at 25 MiB.
const MaxUploadBytes = 25 << 20

var (
	ErrFileTooLarge    = errors.New("file exceeds maximum upload size")
	ErrUnsupportedType = errors.New("unsupported file type")
	ErrFileNotFound    = errors.New("file not found")
)

// AcceptedExtensions is the union of every provider's media type table:
// anything at least one provider can consume may be stored.
var AcceptedExtensions = func() map[string]bool {
	accepted := make(map[string]bool)
	for ext := range AnthropicMIMETypes {
		accepted[ext] = true
	}
	for ext := range OpenAIMIMETypes {
		accepted[ext] = true
	}
	return accepted
}()

// LocalStore persists uploads on the local filesystem under a single
// directory. Stored names are timestamp plus a random suffix so original
// filenames can never collide or escape the directory.
type LocalStore struct {
	dir string
}

func NewLocalStore(dir string) (*LocalStore, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("upload directory cannot be empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory %s: %w", dir, err)
	}
	return &LocalStore{dir: dir}, nil
}

func (s *LocalStore) Dir() string { return s.dir }

// Save writes the upload and returns the stored file's full path.
func (s *LocalStore) Save(data []byte, originalName string) (string, error) {
	if len(data) == 0 {
		return "", errors.New("file data cannot be empty")
	}
	if len(data) > MaxUploadBytes {
		return "", ErrFileTooLarge
	}

	ext := strings.ToLower(filepath.Ext(originalName))
	if !AcceptedExtensions[ext] {
		return "", ErrUnsupportedType
	}

	name := fmt.Sprintf("%d-%s%s", time.Now().UnixMilli(), uuid.NewString()[:8], ext)
	path := filepath.Join(s.dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write upload: %w", err)
	}
	return path, nil
}

// Resolve maps a stored file name back to its path, rejecting anything
// that would traverse outside the upload directory.
func (s *LocalStore) Resolve(name string) (string, error) {
	if name == "" || name != filepath.Base(name) {
		return "", ErrFileNotFound
	}
	path := filepath.Join(s.dir, name)
	if _, err := os.Stat(path); err != nil {
		return "", ErrFileNotFound
	}
	return path, nil
}

func (s *LocalStore) Exists(name string) bool {
	_, err := s.Resolve(name)
	return err == nil
}

func (s *LocalStore) ReadAll(name string) ([]byte, error) {
	path, err := s.Resolve(name)
	if err != nil {
		return nil, err
	}
	return os.ReadFile(path)
}

func (s *LocalStore) Remove(name string) error {
	path, err := s.Resolve(name)
	if err != nil {
		return err
	}
	return os.Remove(path)
}
