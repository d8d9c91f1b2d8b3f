package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"jobscout/pkg/models"
)

// FileBackend keeps each key in its own JSON file under dir. Writes go to a
// temp file that is renamed into place, so a crash never leaves a torn file.
type FileBackend struct {
	dir string
	mu  sync.Mutex
}

// NewFileBackend creates dir if needed
func NewFileBackend(dir string) (*FileBackend, error) {
	if dir == "" {
		return nil, fmt.Errorf("storage directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create storage directory: %w", err)
	}
	return &FileBackend{dir: dir}, nil
}

func (b *FileBackend) path(key string) string {
	return filepath.Join(b.dir, fileName(key))
}

// fileName escapes every byte outside [A-Za-z0-9_.-] as %XX, so distinct
// keys always map to distinct files and none can leave the directory
func fileName(key string) string {
	var sb strings.Builder
	for i := 0; i < len(key); i++ {
		c := key[i]
		switch {
		case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9',
			c == '_', c == '.', c == '-':
			sb.WriteByte(c)
		default:
			fmt.Fprintf(&sb, "%%%02X", c)
		}
	}
	sb.WriteString(".json")
	return sb.String()
}

// Load reads the set stored under key
func (b *FileBackend) Load(ctx context.Context, key string) ([]models.JobPosting, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	data, err := os.ReadFile(b.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return []models.JobPosting{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read saved jobs: %w", err)
	}
	return decode(data)
}

// Save replaces the set stored under key
func (b *FileBackend) Save(ctx context.Context, key string, jobs []models.JobPosting) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := encode(jobs)
	if err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	tmp, err := os.CreateTemp(b.dir, ".saved-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write saved jobs: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync saved jobs: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, b.path(key)); err != nil {
		return fmt.Errorf("replace saved jobs: %w", err)
	}
	return nil
}

// Ping checks that the directory is still writable
func (b *FileBackend) Ping(ctx context.Context) error {
	info, err := os.Stat(b.dir)
	if err != nil {
		return fmt.Errorf("storage directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("storage path %s is not a directory", b.dir)
	}
	return nil
}

// Close is a no-op
func (b *FileBackend) Close() error {
	return nil
}

// Name returns the backend name
func (b *FileBackend) Name() string {
	return "file"
}
