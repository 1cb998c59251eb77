// Package blob stores uploaded photos content addressed: the file
// name is the base64url form of the HighwayHash-256 of the bytes, so
// re-uploading identical content is idempotent and rows only ever
// reference hashes.
package blob

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/minio/highwayhash"

	"github.com/techfest-sliet/festd/internal/domain"
)

// hashKey is a fixed hashing key. The hash is used for addressing,
// not authentication, so the key carries no secret.
var hashKey = make([]byte, 32)

type Store struct{ dir string }

func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create blob dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Put writes data and returns its 32-byte content hash.
func (s *Store) Put(data []byte) ([]byte, error) {
	h, err := highwayhash.New(hashKey)
	if err != nil {
		return nil, err
	}
	h.Write(data)
	sum := h.Sum(nil)
	path := s.path(sum)
	if _, err := os.Stat(path); err == nil {
		return sum, nil
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return nil, fmt.Errorf("write blob: %w", err)
	}
	return sum, nil
}

// Get reads the content stored under hash.
func (s *Store) Get(hash []byte) ([]byte, error) {
	data, err := os.ReadFile(s.path(hash))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read blob: %w", err)
	}
	return data, nil
}

func (s *Store) path(hash []byte) string {
	return filepath.Join(s.dir, base64.RawURLEncoding.EncodeToString(hash))
}
