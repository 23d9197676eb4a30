package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/loanapply/internal/loan/metrics"
	"github.com/aussiebroadwan/loanapply/internal/loan/store"
)

// HousekeepingService periodically removes staged uploads that were never
// confirmed. A file is removed once it is older than TTL and no persisted
// application references its path.
type HousekeepingService struct {
	Store    store.Store
	Stager   *FileStager
	Logger   *slog.Logger
	Metrics  *metrics.Metrics
	Interval time.Duration
	TTL      time.Duration

	Now func() time.Time

	// Internal channels for lifecycle management
	stopCh chan struct{}
	doneCh chan struct{}
}

// NewHousekeepingService creates a new housekeeping service with the given interval.
// If interval is 0 or negative, defaults to 1 hour.
func NewHousekeepingService(
	st store.Store,
	stager *FileStager,
	logger *slog.Logger,
	interval, ttl time.Duration,
) *HousekeepingService {
	if interval <= 0 {
		interval = 1 * time.Hour
	}

	return &HousekeepingService{
		Store:    st,
		Stager:   stager,
		Logger:   logger,
		Interval: interval,
		TTL:      ttl,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start begins the background worker that periodically runs cleanup.
// This is non-blocking and should be called after the database is ready.
// Call Stop() to gracefully shutdown the worker.
func (s *HousekeepingService) Start() {
	go s.run()
	s.Logger.Info("housekeeping service started", "interval", s.Interval, "ttl", s.TTL)
}

// Stop gracefully shuts down the background worker.
// Blocks until the worker has finished any in-progress cleanup.
func (s *HousekeepingService) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("housekeeping service stopped")
}

// run is the main background worker loop.
func (s *HousekeepingService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	// Run cleanup immediately on startup
	s.Sweep(context.Background())

	for {
		select {
		case <-ticker.C:
			s.Sweep(context.Background())
		case <-s.stopCh:
			return
		}
	}
}

// Sweep removes expired, unreferenced staged files and returns how many
// were deleted. A zero TTL disables it. Failures on one file don't stop
// the others.
func (s *HousekeepingService) Sweep(ctx context.Context) int {
	if s.TTL <= 0 {
		return 0
	}
	s.Logger.Info("starting housekeeping cleanup")

	files, err := s.Stager.ListStaged()
	if err != nil {
		s.Logger.Error("failed to list staged uploads", "error", err)
		s.Metrics.IncHousekeepingRun(metrics.OutcomeError)
		return 0
	}

	cutoff := s.now().Add(-s.TTL)
	removed := 0
	for _, f := range files {
		if f.ModTime.After(cutoff) {
			continue
		}

		referenced, err := s.Store.Applications().IsDocumentReferenced(ctx, f.Path)
		if err != nil {
			s.Logger.Error("failed to check staged upload", "path", f.Path, "error", err)
			continue
		}
		if referenced {
			continue
		}

		if err := s.Stager.Remove(f.Path); err != nil {
			s.Logger.Error("failed to remove staged upload", "path", f.Path, "error", err)
			continue
		}
		s.Logger.Debug("removed staged upload", "path", f.Path)
		removed++
	}

	s.Metrics.AddStagedFilesRemoved(removed)
	s.Metrics.IncHousekeepingRun(metrics.OutcomeOK)
	s.Logger.Info("housekeeping cleanup completed", "scanned", len(files), "removed", removed)
	return removed
}

func (s *HousekeepingService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}
