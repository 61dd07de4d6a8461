package settings

import (
	"log/slog"
	"sync"
)

// Service owns the in-memory settings snapshot and serializes access and
// persistence. Commands read and replace the snapshot through it; saves go
// through the same lock so concurrent writers cannot interleave on the file.
type Service struct {
	mu      sync.RWMutex
	store   *Store
	current AppSettings
	logger  *slog.Logger
}

// NewService loads the initial snapshot from the store.
func NewService(store *Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:   store,
		current: store.Load(),
		logger:  logger,
	}
}

// Get returns a copy of the current snapshot.
func (s *Service) Get() AppSettings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.Clone()
}

// Overlay returns the overlay section of the current snapshot.
func (s *Service) Overlay() OverlaySettings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.Overlay
}

// Replace swaps the snapshot and persists it. The in-memory snapshot is
// updated before the persistence attempt and is not rolled back when the
// save fails; the previous file contents survive a failed save.
func (s *Service) Replace(settings AppSettings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.current = settings.Clone()
	return s.store.Save(s.current)
}

// Reset replaces the snapshot with defaults, persists and returns the new
// snapshot.
func (s *Service) Reset() (AppSettings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.current = Default()
	if err := s.store.Save(s.current); err != nil {
		return s.current.Clone(), err
	}
	return s.current.Clone(), nil
}

// SetLastSessionCode updates the persisted convenience field. A nil code
// clears it.
func (s *Service) SetLastSessionCode(code *string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if code == nil {
		s.current.LastSessionCode = nil
	} else {
		c := *code
		s.current.LastSessionCode = &c
	}
	return s.store.Save(s.current)
}

// LastSessionCode returns the persisted session code, or nil when unset.
func (s *Service) LastSessionCode() *string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.current.LastSessionCode == nil {
		return nil
	}
	code := *s.current.LastSessionCode
	return &code
}

// ApplyLoaded replaces the in-memory snapshot without persisting. Used when
// the settings file changed on disk and has already been re-read.
func (s *Service) ApplyLoaded(settings AppSettings) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = settings.Clone()
}
