// Package scheduler runs periodic maintenance jobs on cron schedules.
package scheduler

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/avolkau/bookvault/internal/covers"
)

// CoversCleanupScheduler periodically prunes stale entries from the
// cover cache.
type CoversCleanupScheduler struct {
	cache     *covers.Cache
	retention time.Duration
	schedule  string

	cron      *cron.Cron
	mu        sync.Mutex
	isRunning bool
}

// NewCoversCleanupScheduler creates a new scheduler instance.
func NewCoversCleanupScheduler(cache *covers.Cache, retention time.Duration, schedule string) *CoversCleanupScheduler {
	return &CoversCleanupScheduler{
		cache:     cache,
		retention: retention,
		schedule:  schedule,
		cron:      cron.New(cron.WithParser(cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow))),
	}
}

// Start schedules the cleanup job.
func (s *CoversCleanupScheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	if _, err := s.cron.AddFunc(s.schedule, s.runCleanup); err != nil {
		return fmt.Errorf("failed to schedule covers cleanup '%s': %w", s.schedule, err)
	}

	s.cron.Start()
	s.isRunning = true

	log.Printf("Covers cleanup scheduler: started with schedule '%s', retention %s", s.schedule, s.retention)
	return nil
}

// Stop halts the scheduler, waiting for a running job to finish.
func (s *CoversCleanupScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	ctx := s.cron.Stop()
	<-ctx.Done()
	s.isRunning = false

	log.Printf("Covers cleanup scheduler: stopped")
}

func (s *CoversCleanupScheduler) runCleanup() {
	removed, err := s.cache.Prune(s.retention)
	if err != nil {
		log.Printf("Covers cleanup failed: %v", err)
		return
	}
	if removed > 0 {
		log.Printf("Covers cleanup: removed %d stale cover(s)", removed)
	}
}
