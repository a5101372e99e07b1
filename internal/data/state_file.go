package data

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/lifestream-app/lifestream/internal/biz/repo"
)

// fileStateRepo stores each key as a JSON file in a directory
type fileStateRepo struct {
	dir string
}

// NewFileStateRepo creates a file-backed store rooted at dir
func NewFileStateRepo(dir string) (repo.StateRepo, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create state directory: %w", err)
	}
	return &fileStateRepo{dir: dir}, nil
}

// pathFor maps "lifestream/userData" to <dir>/lifestream_userData.json
func (r *fileStateRepo) pathFor(key string) string {
	name := strings.Map(func(c rune) rune {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '-', c == '.':
			return c
		}
		return '_'
	}, key)
	return filepath.Join(r.dir, name+".json")
}

// Save writes to a temp file and renames it over the target
func (r *fileStateRepo) Save(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	target := r.pathFor(key)

	tmp, err := os.CreateTemp(r.dir, ".state-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(value); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		return fmt.Errorf("failed to replace %s: %w", key, err)
	}
	return nil
}

// Load reads the file for key, or nil when missing
func (r *fileStateRepo) Load(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(r.pathFor(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", key, err)
	}
	return data, nil
}

// Close is a no-op
func (r *fileStateRepo) Close() error {
	return nil
}
