package transcript

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Service records incoming captions and trims history past the retention
// window.
type Service struct {
	store  Store
	logger *slog.Logger

	retention time.Duration
	interval  time.Duration

	mu       sync.Mutex
	started  bool
	stopChan chan struct{}
	doneChan chan struct{}
}

// NewService wraps store with retention housekeeping. retention <= 0 keeps
// captions forever.
func NewService(store Store, retention, interval time.Duration, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if interval <= 0 {
		interval = 6 * time.Hour
	}
	return &Service{
		store:     store,
		logger:    logger,
		retention: retention,
		interval:  interval,
	}
}

// Record stores one caption line. Blank text and blank session codes are
// skipped so keepalive updates never land in history.
func (s *Service) Record(ctx context.Context, sessionCode, text string) error {
	if strings.TrimSpace(text) == "" || strings.TrimSpace(sessionCode) == "" {
		return nil
	}

	record := &CaptionRecord{
		ID:          uuid.NewString(),
		SessionCode: sessionCode,
		Text:        text,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.store.Append(ctx, record); err != nil {
		return fmt.Errorf("record caption: %w", err)
	}
	return nil
}

// Start launches the retention loop. No-op when retention is disabled.
func (s *Service) Start() {
	if s.retention <= 0 {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return
	}
	s.started = true
	s.stopChan = make(chan struct{})
	s.doneChan = make(chan struct{})

	go s.retentionLoop(s.stopChan, s.doneChan)
}

// Close stops the retention loop and waits for it to finish.
func (s *Service) Close() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	s.started = false
	stopChan := s.stopChan
	doneChan := s.doneChan
	s.stopChan = nil
	s.doneChan = nil
	s.mu.Unlock()

	close(stopChan)
	<-doneChan
}

func (s *Service) retentionLoop(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	s.purgeOnce()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			s.purgeOnce()
		}
	}
}

func (s *Service) purgeOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cutoff := time.Now().Add(-s.retention)
	removed, err := s.store.PurgeOlderThan(ctx, cutoff)
	if err != nil {
		s.logger.Warn(fmt.Sprintf("Failed to purge caption history: %v", err))
		return
	}
	if removed > 0 {
		s.logger.Info(fmt.Sprintf("Purged %d captions older than %s", removed, s.retention))
	}
}
