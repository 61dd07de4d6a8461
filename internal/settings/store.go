package settings

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/jutukuva/overlay-captions/internal/utils"
)

// Store reads and writes the settings file.
type Store struct {
	path   string
	logger *slog.Logger
}

// NewStore creates a store for the given file path. An empty path resolves
// to the default per-user location.
func NewStore(path string, logger *slog.Logger) *Store {
	if path == "" {
		path = utils.SettingsPath()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{path: path, logger: logger}
}

// Path returns the settings file location.
func (s *Store) Path() string {
	return s.path
}

// Load reads the settings file. Missing, unreadable or malformed content
// falls back to defaults; individual missing fields fall back field by field
// because the file is decoded over a fully defaulted record. Load never
// fails the caller.
func (s *Store) Load() AppSettings {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn("settings file unreadable, using defaults",
				"path", s.path, "error", err)
		}
		return Default()
	}

	loaded := Default()
	if err := json.Unmarshal(data, &loaded); err != nil {
		s.logger.Warn("settings file malformed, using defaults",
			"path", s.path, "error", err)
		return Default()
	}

	return loaded
}

// Save writes the record atomically: encode to a temporary file next to the
// target, then rename over it, so a failed save leaves the previous
// successful save untouched.
func (s *Store) Save(settings AppSettings) error {
	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("create settings directory: %w", err)
	}

	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("replace settings file: %w", err)
	}

	return nil
}
