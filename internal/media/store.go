package media

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

var ErrInvalidRef = errors.New("invalid media reference")

// Store keeps photos and documents as files named by random ids. References
// returned by Save are opaque to the rest of the program.
type Store struct {
	dir string
}

func NewStore(dir string) (*Store, error) {
	if dir == "" {
		return nil, fmt.Errorf("media dir is empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create media dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Save copies r into a new file and returns its reference.
func (s *Store) Save(r io.Reader, ext string) (string, error) {
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))
	ref := uuid.NewString()
	if ext != "" {
		ref += "." + ext
	}
	f, err := os.OpenFile(filepath.Join(s.dir, ref), os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return "", fmt.Errorf("create media file: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("write media file: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close media file: %w", err)
	}
	return ref, nil
}

// Import copies the file at path into the store.
func (s *Store) Import(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return s.Save(f, filepath.Ext(path))
}

// Path resolves a reference to a file path inside the store.
func (s *Store) Path(ref string) (string, error) {
	base := strings.TrimSuffix(ref, filepath.Ext(ref))
	if _, err := uuid.Parse(base); err != nil || filepath.Base(ref) != ref {
		return "", fmt.Errorf("%q: %w", ref, ErrInvalidRef)
	}
	return filepath.Join(s.dir, ref), nil
}

// Open returns a reader for a stored file.
func (s *Store) Open(ref string) (io.ReadCloser, error) {
	path, err := s.Path(ref)
	if err != nil {
		return nil, err
	}
	return os.Open(path)
}
