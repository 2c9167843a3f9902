// Package store persists registry contents as a YAML file.
package store

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/reglet-dev/facet/domain/entities"
	"github.com/reglet-dev/facet/domain/ports"
)

// stateFormat is the version written into every state file.
const stateFormat = 1

// fileStoreConfig holds configuration for the FileStore.
type fileStoreConfig struct {
	path     string      // Path to the state file
	dirPerm  os.FileMode // Permission for created directories
	filePerm os.FileMode // Permission for the state file
}

func defaultFileStoreConfig() fileStoreConfig {
	return fileStoreConfig{
		path:     filepath.Join(os.Getenv("HOME"), ".facet", "state.yaml"),
		dirPerm:  0o755, // User config directory
		filePerm: 0o600, // User-only read/write (secure default)
	}
}

// FileStoreOption configures a FileStore instance.
type FileStoreOption func(*fileStoreConfig)

// WithPath sets the path to the state file.
func WithPath(path string) FileStoreOption {
	return func(c *fileStoreConfig) {
		c.path = path
	}
}

// WithFilePermissions sets the file permissions for the state file.
// Default is 0o600 (user-only). Use with caution.
func WithFilePermissions(perm os.FileMode) FileStoreOption {
	return func(c *fileStoreConfig) {
		c.filePerm = perm
	}
}

// WithDirPermissions sets the directory permissions for the state directory.
// Default is 0o755.
func WithDirPermissions(perm os.FileMode) FileStoreOption {
	return func(c *fileStoreConfig) {
		c.dirPerm = perm
	}
}

type stateDocument struct {
	Format  int                    `yaml:"format"`
	Modules []entities.ModuleEntry `yaml:"modules"`
}

// FileStore provides file-based persistence for registry contents.
type FileStore struct {
	config fileStoreConfig
}

var _ ports.StateStore = (*FileStore)(nil)

// NewFileStore creates a new FileStore with the given options.
func NewFileStore(opts ...FileStoreOption) *FileStore {
	cfg := defaultFileStoreConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &FileStore{config: cfg}
}

// Load retrieves the stored module entries.
func (s *FileStore) Load() ([]entities.ModuleEntry, error) {
	data, err := os.ReadFile(s.config.path)
	if os.IsNotExist(err) {
		// Nothing stored yet
		return []entities.ModuleEntry{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read state store: %w", err)
	}

	var doc stateDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse state store: %w", err)
	}
	if doc.Format != stateFormat {
		return nil, fmt.Errorf("state store %s has format %d, want %d", s.config.path, doc.Format, stateFormat)
	}
	if doc.Modules == nil {
		doc.Modules = []entities.ModuleEntry{}
	}
	return doc.Modules, nil
}

// Save replaces the stored entries. The file is written next to its final
// location and renamed into place.
func (s *FileStore) Save(entries []entities.ModuleEntry) error {
	if entries == nil {
		entries = []entities.ModuleEntry{}
	}
	data, err := yaml.Marshal(stateDocument{Format: stateFormat, Modules: entries})
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	dir := filepath.Dir(s.config.path)
	if err := os.MkdirAll(dir, s.config.dirPerm); err != nil {
		return fmt.Errorf("failed to create state store directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".state-*.yaml")
	if err != nil {
		return fmt.Errorf("failed to write state store: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write state store: %w", err)
	}
	if err := tmp.Chmod(s.config.filePerm); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write state store: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write state store: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.config.path); err != nil {
		return fmt.Errorf("failed to write state store: %w", err)
	}
	return nil
}

// Path returns the path to the backing store.
func (s *FileStore) Path() string {
	return s.config.path
}
