package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FileMedium stores each key as <key>.json inside a directory. Writes go
// through a temporary file and a rename, so readers in other processes see
// either the old or the new collection, never a partial one.
type FileMedium struct {
	dir string
}

// NewFileMedium creates the data directory if needed and returns a medium
// rooted at it.
func NewFileMedium(dir string) (*FileMedium, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	return &FileMedium{dir: dir}, nil
}

// Dir returns the data directory.
func (m *FileMedium) Dir() string {
	return m.dir
}

// KeyForPath maps a file inside the data directory back to its key. ok is
// false for files the medium did not write (temporaries, foreign files).
func (m *FileMedium) KeyForPath(path string) (key string, ok bool) {
	if filepath.Dir(filepath.Clean(path)) != filepath.Clean(m.dir) {
		return "", false
	}
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") || !strings.HasSuffix(base, ".json") {
		return "", false
	}
	return strings.TrimSuffix(base, ".json"), true
}

func (m *FileMedium) path(key string) string {
	return filepath.Join(m.dir, key+".json")
}

func (m *FileMedium) Load(key string) ([]byte, error) {
	data, err := os.ReadFile(m.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading %s: %w", key, err)
	}
	return data, nil
}

func (m *FileMedium) Store(key string, data []byte) error {
	if key == "" || strings.ContainsAny(key, `/\`) {
		return fmt.Errorf("storing blob: invalid key %q", key)
	}
	tmp, err := os.CreateTemp(m.dir, "."+key+"-*.tmp")
	if err != nil {
		return fmt.Errorf("storing %s: creating temp file: %w", key, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("storing %s: writing temp file: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("storing %s: closing temp file: %w", key, err)
	}
	if err := os.Rename(tmpName, m.path(key)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("storing %s: replacing file: %w", key, err)
	}
	return nil
}

func (m *FileMedium) Remove(key string) error {
	if err := os.Remove(m.path(key)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing %s: %w", key, err)
	}
	return nil
}

func (m *FileMedium) Close() error { return nil }
