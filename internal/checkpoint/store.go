// Package checkpoint persists the digest of the last notified feed so
// repeated runs stay silent about content they already reported.
package checkpoint

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"renjiwatch/internal/logger"
)

// Store reads and writes the checkpoint file. The same configured path
// is used for both directions.
type Store struct {
	path string
	log  *logger.Logger
}

// NewStore creates a store for the given file path.
func NewStore(path string, log *logger.Logger) *Store {
	return &Store{
		path: path,
		log:  log,
	}
}

// Read returns the persisted digest and whether one was found. A
// missing file is the normal first-run state; an unreadable file is
// logged and treated as absent.
func (s *Store) Read() (string, bool) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			s.log.Warn("failed to read checkpoint, treating as absent", "path", s.path, "error", err)
		}

		return "", false
	}

	return strings.TrimSpace(string(data)), true
}

// Write overwrites the checkpoint with the given digest.
func (s *Store) Write(digest string) error {
	if err := os.WriteFile(s.path, []byte(digest), 0644); err != nil {
		return fmt.Errorf("failed to write checkpoint file: %w", err)
	}

	s.log.Info("checkpoint persisted", "path", s.path)

	return nil
}
