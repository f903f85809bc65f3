package service

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"tradelens/internal/domain"
	"tradelens/internal/port"
	"tradelens/internal/report"
)

// JanitorConfig holds session retention settings.
type JanitorConfig struct {
	Schedule  string
	MaxAge    time.Duration
	BatchSize int
	Bucket    string
}

// SessionJanitor deletes sessions older than MaxAge, together with their
// uploaded files and archived reports, on a cron schedule.
type SessionJanitor struct {
	repo    port.SessionRepository
	storage port.ObjectStorage
	cfg     JanitorConfig
	now     func() time.Time

	mu   sync.Mutex
	cron *cron.Cron
}

// NewSessionJanitor creates a janitor. Call Start to schedule it.
func NewSessionJanitor(repo port.SessionRepository, storage port.ObjectStorage, cfg JanitorConfig) *SessionJanitor {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 100
	}
	return &SessionJanitor{repo: repo, storage: storage, cfg: cfg, now: time.Now}
}

// Start schedules Sweep. It returns an error when the schedule does not parse.
func (j *SessionJanitor) Start(ctx context.Context) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.cron != nil {
		return nil
	}

	c := cron.New()
	if _, err := c.AddFunc(j.cfg.Schedule, func() {
		if _, err := j.Sweep(ctx); err != nil {
			log.Printf("sessionJanitor: sweep failed: %v", err)
		}
	}); err != nil {
		return fmt.Errorf("invalid retention schedule %q: %w", j.cfg.Schedule, err)
	}
	c.Start()
	j.cron = c

	log.Printf("sessionJanitor: started (schedule=%s, maxAge=%s)", j.cfg.Schedule, j.cfg.MaxAge)
	return nil
}

// Stop halts the schedule and waits for a running sweep to finish.
func (j *SessionJanitor) Stop() {
	j.mu.Lock()
	c := j.cron
	j.cron = nil
	j.mu.Unlock()
	if c == nil {
		return
	}
	<-c.Stop().Done()
	log.Printf("sessionJanitor: stopped")
}

// Sweep deletes expired sessions in batches and returns how many were removed.
// A session whose files cannot be deleted is kept for the next sweep.
func (j *SessionJanitor) Sweep(ctx context.Context) (int, error) {
	cutoff := j.now().Add(-j.cfg.MaxAge)
	deleted := 0

	for {
		sessions, err := j.repo.ListCreatedBefore(ctx, cutoff, j.cfg.BatchSize)
		if err != nil {
			return deleted, fmt.Errorf("listing expired sessions: %w", err)
		}

		progressed := false
		for i := range sessions {
			s := &sessions[i]
			if err := deleteSessionObjects(ctx, j.storage, j.cfg.Bucket, s); err != nil {
				log.Printf("sessionJanitor: keeping session %s, storage cleanup failed: %v", s.ID, err)
				continue
			}
			if err := j.repo.Delete(ctx, s.ID); err != nil {
				log.Printf("sessionJanitor: deleting session %s: %v", s.ID, err)
				continue
			}
			deleted++
			progressed = true
		}

		if len(sessions) < j.cfg.BatchSize || !progressed {
			break
		}
	}

	if deleted > 0 {
		log.Printf("sessionJanitor: removed %d sessions created before %s", deleted, cutoff.Format(time.RFC3339))
	}
	return deleted, nil
}

// deleteSessionObjects removes the uploaded files and any archived reports of s.
func deleteSessionObjects(ctx context.Context, storage port.ObjectStorage, bucket string, s *domain.ComparisonSession) error {
	keys := append(s.FileKeys(), report.ArchiveKeys(s)...)
	for _, key := range keys {
		if err := storage.Delete(ctx, bucket, key); err != nil {
			return fmt.Errorf("deleting %s: %w", key, err)
		}
	}
	return nil
}
