// Package storage persists raw file bytes under generated, collision-safe
// names inside a per-entity directory. Stored names are unrelated to the
// logical paths recorded in the database, so path collisions across versions
// can never overwrite each other's bytes.
package storage

import (
	"crypto/md5"
	"encoding/hex"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

const (
	// maxExtLen bounds the original extension carried into the stored name,
	// dot included. Longer extensions are truncated, not rejected.
	maxExtLen = 10
	// maxAttempts bounds the name-collision retry loop. Exhausting it is a
	// server fault, never a silent overwrite.
	maxAttempts = 10
)

// ErrNameConflict means every generated name collided with an existing file.
var ErrNameConflict = errors.New("storage: blob name conflict")

// NameGenerator produces candidate on-disk names. It is an injected strategy
// so tests can substitute deterministic or colliding generators.
type NameGenerator interface {
	NextName(ext string) string
}

// UUIDNames generates uuid-based names, the production strategy.
type UUIDNames struct{}

func (UUIDNames) NextName(ext string) string {
	return uuid.NewString() + ext
}

// Blob is the handle returned by Write. Checksum is the hex MD5 of the raw
// bytes, computed at write time.
type Blob struct {
	Name     string
	Checksum string
}

type Store struct {
	root  string
	names NameGenerator
}

func NewStore(root string, names NameGenerator) *Store {
	return &Store{root: root, names: names}
}

// Write stores data under dir (a relative directory inside the storage root)
// with a freshly generated name preserving the extension of originalPath.
func (s *Store) Write(dir, originalPath string, data []byte) (Blob, error) {
	target := filepath.Join(s.root, dir)
	if err := os.MkdirAll(target, 0o755); err != nil {
		return Blob{}, err
	}
	ext := filepath.Ext(originalPath)
	if len(ext) > maxExtLen {
		ext = ext[:maxExtLen]
	}
	for attempt := 0; attempt < maxAttempts; attempt++ {
		name := s.names.NextName(ext)
		file, err := os.OpenFile(filepath.Join(target, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		if err != nil {
			return Blob{}, err
		}
		if _, err := file.Write(data); err != nil {
			file.Close()
			os.Remove(file.Name())
			return Blob{}, err
		}
		if err := file.Close(); err != nil {
			os.Remove(file.Name())
			return Blob{}, err
		}
		sum := md5.Sum(data)
		return Blob{Name: name, Checksum: hex.EncodeToString(sum[:])}, nil
	}
	return Blob{}, ErrNameConflict
}

// Read returns the stored bytes for a blob previously written under dir.
func (s *Store) Read(dir, name string) ([]byte, error) {
	return os.ReadFile(filepath.Join(s.root, dir, name))
}

// RemoveDir deletes a per-entity directory and everything below it, used when
// a course or assignment is destroyed.
func (s *Store) RemoveDir(dir string) error {
	return os.RemoveAll(filepath.Join(s.root, dir))
}
