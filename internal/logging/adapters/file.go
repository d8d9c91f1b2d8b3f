package adapters

import (
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"jobscout/internal/logging/types"
)

// FileAdapter appends entries to a file and rotates it by size
type FileAdapter struct {
	name        string
	config      FileConfig
	currentFile *os.File
	currentSize int64
	mu          sync.Mutex
}

// FileConfig represents configuration for the file adapter
type FileConfig struct {
	FilePath    string      `yaml:"file_path"`
	Format      string      `yaml:"format"`      // json or text
	MaxSize     int64       `yaml:"max_size"`    // bytes, 0 disables rotation
	MaxBackups  int         `yaml:"max_backups"` // rotated files to keep
	Compress    bool        `yaml:"compress"`    // gzip rotated files
	CreateDirs  bool        `yaml:"create_dirs"`
	FileMode    os.FileMode `yaml:"file_mode"`
	SyncOnWrite bool        `yaml:"sync_on_write"`
}

// NewFileAdapter creates a new file adapter
func NewFileAdapter(name string, config FileConfig) (*FileAdapter, error) {
	if config.FilePath == "" {
		return nil, fmt.Errorf("file_path is required")
	}
	if config.FileMode == 0 {
		config.FileMode = 0o644
	}
	if config.MaxBackups == 0 {
		config.MaxBackups = 10
	}
	if config.Format == "" {
		config.Format = "json"
	}

	if config.CreateDirs {
		if err := os.MkdirAll(filepath.Dir(config.FilePath), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create directories: %w", err)
		}
	}

	adapter := &FileAdapter{name: name, config: config}
	if err := adapter.openFile(); err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	return adapter, nil
}

// Write writes a log entry to the file
func (a *FileAdapter) Write(entry *types.LogEntry) error {
	output, err := formatEntry(entry, a.config.Format, false)
	if err != nil {
		return fmt.Errorf("failed to format log entry: %w", err)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.currentFile == nil {
		return fmt.Errorf("log file %s is closed", a.config.FilePath)
	}

	if a.config.MaxSize > 0 && a.currentSize >= a.config.MaxSize {
		if err := a.rotate(); err != nil {
			return fmt.Errorf("failed to rotate log file: %w", err)
		}
	}

	n, err := a.currentFile.WriteString(output + "\n")
	if err != nil {
		return fmt.Errorf("failed to write to log file: %w", err)
	}
	a.currentSize += int64(n)

	if a.config.SyncOnWrite {
		return a.currentFile.Sync()
	}
	return nil
}

// Close closes the file adapter
func (a *FileAdapter) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.currentFile == nil {
		return nil
	}
	err := a.currentFile.Close()
	a.currentFile = nil
	return err
}

// Health returns the health status of the adapter
func (a *FileAdapter) Health() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.currentFile == nil {
		return fmt.Errorf("log file is not open")
	}
	if _, err := a.currentFile.Stat(); err != nil {
		return fmt.Errorf("log file is not accessible: %w", err)
	}
	return nil
}

// Name returns the name of the adapter
func (a *FileAdapter) Name() string {
	return a.name
}

func (a *FileAdapter) openFile() error {
	file, err := os.OpenFile(a.config.FilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, a.config.FileMode)
	if err != nil {
		return err
	}

	stat, err := file.Stat()
	if err != nil {
		file.Close()
		return err
	}

	a.currentFile = file
	a.currentSize = stat.Size()
	return nil
}

// rotate moves the current file aside and opens a fresh one. Compression and
// backup pruning failures are reported on stderr but never block logging.
func (a *FileAdapter) rotate() error {
	if err := a.currentFile.Close(); err != nil {
		return fmt.Errorf("failed to close current log file: %w", err)
	}
	a.currentFile = nil

	backupPath := fmt.Sprintf("%s.%s", a.config.FilePath, time.Now().Format("20060102-150405.000"))
	if err := os.Rename(a.config.FilePath, backupPath); err != nil {
		return fmt.Errorf("failed to rename log file: %w", err)
	}

	if a.config.Compress {
		if err := gzipFile(backupPath); err != nil {
			fmt.Fprintf(os.Stderr, "failed to compress rotated log file %s: %v\n", backupPath, err)
		}
	}

	if err := a.pruneBackups(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to clean up old log backups: %v\n", err)
	}

	return a.openFile()
}

func gzipFile(path string) error {
	src, err := os.Open(path)
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := os.Create(path + ".gz")
	if err != nil {
		return err
	}

	zw := gzip.NewWriter(dst)
	if _, err := io.Copy(zw, src); err != nil {
		dst.Close()
		return err
	}
	if err := zw.Close(); err != nil {
		dst.Close()
		return err
	}
	if err := dst.Close(); err != nil {
		return err
	}
	return os.Remove(path)
}

// pruneBackups keeps the newest MaxBackups rotated files. Backup names embed
// a sortable timestamp, so lexical order is age order.
func (a *FileAdapter) pruneBackups() error {
	dir := filepath.Dir(a.config.FilePath)
	prefix := filepath.Base(a.config.FilePath) + "."

	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}

	var backups []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasPrefix(entry.Name(), prefix) {
			backups = append(backups, entry.Name())
		}
	}
	if len(backups) <= a.config.MaxBackups {
		return nil
	}

	sort.Sort(sort.Reverse(sort.StringSlice(backups)))
	for _, name := range backups[a.config.MaxBackups:] {
		if err := os.Remove(filepath.Join(dir, name)); err != nil {
			return err
		}
	}
	return nil
}
