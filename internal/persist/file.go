package persist

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/afero"

	"github.com/dtroode/gophsocial/internal/model"
)

const snapshotExt = ".json"

var _ model.SnapshotStore = (*FileStore)(nil)

// FileStore keeps each snapshot as a JSON file in one directory, so state
// survives between runs without a server-side backend.
type FileStore struct {
	fs  afero.Fs
	dir string

	mu sync.Mutex
}

// NewFileStore creates dir on fsys if needed.
func NewFileStore(fsys afero.Fs, dir string) (*FileStore, error) {
	if dir == "" {
		return nil, errors.New("snapshot directory must not be empty")
	}
	if err := fsys.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create snapshot directory: %w", err)
	}
	return &FileStore{fs: fsys, dir: dir}, nil
}

// Dir returns the directory snapshots are written to.
func (f *FileStore) Dir() string {
	return f.dir
}

func (f *FileStore) path(name string) (string, error) {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("invalid snapshot name %q", name)
	}
	return filepath.Join(f.dir, name+snapshotExt), nil
}

// Save writes payload to a temporary file and renames it into place.
func (f *FileStore) Save(_ context.Context, name string, payload []byte) error {
	path, err := f.path(name)
	if err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	tmp := path + ".tmp"
	if err := afero.WriteFile(f.fs, tmp, payload, 0o600); err != nil {
		return fmt.Errorf("failed to write snapshot %s: %w", name, err)
	}
	if err := f.fs.Rename(tmp, path); err != nil {
		_ = f.fs.Remove(tmp)
		return fmt.Errorf("failed to replace snapshot %s: %w", name, err)
	}
	return nil
}

func (f *FileStore) Load(_ context.Context, name string) ([]byte, error) {
	path, err := f.path(name)
	if err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	payload, err := afero.ReadFile(f.fs, path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot %s: %w", name, err)
	}
	return payload, nil
}

// Delete removes a snapshot. A missing snapshot is not an error.
func (f *FileStore) Delete(_ context.Context, name string) error {
	path, err := f.path(name)
	if err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.fs.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete snapshot %s: %w", name, err)
	}
	return nil
}
