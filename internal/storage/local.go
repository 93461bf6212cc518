package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const reportsSubdir = "medical_reports"

// LocalStore is a FileStore backed by a directory on local disk. Files are
// stored under <root>/medical_reports with a uuid prefix so two uploads with
// the same original name never collide.
type LocalStore struct {
	root   string
	logger zerolog.Logger
}

// NewLocalStore creates the storage directory if needed and returns a store
// rooted at dir.
func NewLocalStore(dir string, logger zerolog.Logger) (*LocalStore, error) {
	path := filepath.Join(dir, reportsSubdir)
	if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &LocalStore{root: path, logger: logger}, nil
}

// Save writes src to disk under a uuid-prefixed version of originalName.
func (s *LocalStore) Save(originalName string, src io.Reader) (string, error) {
	if originalName == "" {
		return "", ErrMissingFileName
	}

	// Keep only the base name; clients control originalName.
	base := filepath.Base(strings.ReplaceAll(originalName, "\\", "/"))
	name := uuid.New().String() + "_" + base

	dst, err := os.Create(filepath.Join(s.root, name))
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		// Half-written files are useless; drop them.
		_ = os.Remove(dst.Name())
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	return name, nil
}

// Remove deletes the named file from disk.
func (s *LocalStore) Remove(name string) error {
	if name == "" {
		return ErrMissingFileName
	}
	err := os.Remove(filepath.Join(s.root, filepath.Base(name)))
	if os.IsNotExist(err) {
		return ErrFileNotFound
	}
	return err
}

// Exists reports whether the named file is present on disk.
func (s *LocalStore) Exists(name string) bool {
	if name == "" {
		return false
	}
	_, err := os.Stat(filepath.Join(s.root, filepath.Base(name)))
	return err == nil
}

// URL returns the public path under which the file is served.
func (s *LocalStore) URL(name string) string {
	return "/media/" + reportsSubdir + "/" + name
}

// Root returns the directory files are stored in, for static file serving.
func (s *LocalStore) Root() string {
	return s.root
}

// Sweep removes files no report row references anymore. A crash between a
// report's row delete and its file delete leaves such files behind; this
// runs at startup to clean them up.
func (s *LocalStore) Sweep(referenced map[string]bool) ([]string, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, fmt.Errorf("failed to read upload directory: %w", err)
	}

	var removed []string
	for _, entry := range entries {
		if entry.IsDir() || referenced[entry.Name()] {
			continue
		}
		if err := os.Remove(filepath.Join(s.root, entry.Name())); err != nil {
			s.logger.Warn().Err(err).Str("file", entry.Name()).Msg("Failed to remove orphaned file")
			continue
		}
		removed = append(removed, entry.Name())
	}

	if len(removed) > 0 {
		s.logger.Info().Int("count", len(removed)).Msg("Removed orphaned report files")
	}

	return removed, nil
}
