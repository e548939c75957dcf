package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// LocalStorage writes files under root and exposes them under publicPrefix,
// which the API router serves as static files.
type LocalStorage struct {
	root         string
	publicPrefix string
}

func NewLocalStorage(root, publicPrefix string) (*LocalStorage, error) {
	if root == "" {
		return nil, fmt.Errorf("local storage root is empty")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	prefix := "/" + strings.Trim(publicPrefix, "/")
	return &LocalStorage{root: root, publicPrefix: prefix}, nil
}

func (s *LocalStorage) Root() string         { return s.root }
func (s *LocalStorage) PublicPrefix() string { return s.publicPrefix }

func (s *LocalStorage) Upload(_ context.Context, key string, data []byte, _ string) (string, error) {
	full, err := s.resolve(key)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("create dir: %w", err)
	}

	// write to a temp file first so readers never see a partial image
	tmp := full + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return "", fmt.Errorf("write file: %w", err)
	}
	if err := os.Rename(tmp, full); err != nil {
		_ = os.Remove(tmp)
		return "", fmt.Errorf("rename file: %w", err)
	}

	return path.Join(s.publicPrefix, filepath.ToSlash(key)), nil
}

func (s *LocalStorage) DeleteURL(_ context.Context, url string) error {
	key, ok := strings.CutPrefix(url, s.publicPrefix+"/")
	if !ok {
		return nil
	}
	full, err := s.resolve(key)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove %s: %w", key, err)
	}
	return nil
}

// resolve maps key into root and refuses anything escaping it.
func (s *LocalStorage) resolve(key string) (string, error) {
	clean := path.Clean("/" + filepath.ToSlash(key))
	if clean == "/" {
		return "", fmt.Errorf("invalid key %q", key)
	}
	return filepath.Join(s.root, filepath.FromSlash(strings.TrimPrefix(clean, "/"))), nil
}
