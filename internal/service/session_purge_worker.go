package service

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// SessionPurgeWorker periodically removes expired sessions from the session store
type SessionPurgeWorker struct {
	authService *AuthService
	logger      zerolog.Logger
	interval    time.Duration
	stopCh      chan struct{}
	doneCh      chan struct{}
	mu          sync.Mutex
	running     bool
}

// DefaultSessionPurgeInterval is how often expired sessions are removed
const DefaultSessionPurgeInterval = 10 * time.Minute

// NewSessionPurgeWorker creates a new purge worker
func NewSessionPurgeWorker(authService *AuthService, logger zerolog.Logger, interval time.Duration) *SessionPurgeWorker {
	if interval <= 0 {
		interval = DefaultSessionPurgeInterval
	}

	return &SessionPurgeWorker{
		authService: authService,
		logger:      logger.With().Str("component", "session_purge_worker").Logger(),
		interval:    interval,
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
	}
}

// Start begins purging in the background. Calling Start twice has no effect.
func (w *SessionPurgeWorker) Start(ctx context.Context) {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return
	}
	w.running = true
	w.mu.Unlock()

	w.logger.Info().Dur("interval", w.interval).Msg("Starting session purge worker")

	go w.run(ctx)
}

// Stop stops the worker and waits for the loop to exit
func (w *SessionPurgeWorker) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.mu.Unlock()

	close(w.stopCh)
	<-w.doneCh
	w.logger.Info().Msg("Session purge worker stopped")
}

// IsRunning returns whether the worker is currently running
func (w *SessionPurgeWorker) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

func (w *SessionPurgeWorker) run(ctx context.Context) {
	defer func() {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
		close(w.doneCh)
	}()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.PurgeOnce(ctx)
		}
	}
}

// PurgeOnce removes expired sessions now and returns how many were removed
func (w *SessionPurgeWorker) PurgeOnce(ctx context.Context) int64 {
	removed, err := w.authService.PurgeExpired(ctx)
	if err != nil {
		w.logger.Error().Err(err).Msg("Failed to purge expired sessions")
		return 0
	}
	if removed > 0 {
		w.logger.Info().Int64("removed", removed).Msg("Purged expired sessions")
	}
	return removed
}
