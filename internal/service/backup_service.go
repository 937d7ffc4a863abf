package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"mindmap/internal/flow"
)

// ─────────────────────────────────────────────────────────────
// Backup Service: scheduled flow exports
// ─────────────────────────────────────────────────────────────
//
// Every run writes one <mindmap-id>-<timestamp>.json file per mindmap into
// the backup directory and keeps the newest `keep` files per mindmap.

const backupJobID = "backup"

const backupStampLayout = "20060102-150405"

// BackupService exports all mindmaps on a cron schedule.
type BackupService struct {
	mindmaps *MindmapService
	dir      string
	keep     int
	emitter  EventEmitter
	logger   *zap.Logger
	now      func() time.Time

	mu        sync.Mutex
	cronSched *cron.Cron
	jobs      jobGuard
}

// NewBackupService creates a BackupService. keep <= 0 keeps every file.
func NewBackupService(mindmaps *MindmapService, dir string, keep int, emitter EventEmitter, logger *zap.Logger) *BackupService {
	if emitter == nil {
		emitter = NopEmitter{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BackupService{
		mindmaps: mindmaps,
		dir:      dir,
		keep:     keep,
		emitter:  emitter,
		logger:   logger.Named("backup"),
		now:      time.Now,
	}
}

// Start schedules backups with a standard five-field cron expression.
// An empty schedule disables them.
func (s *BackupService) Start(ctx context.Context, schedule string) error {
	s.Stop()
	if strings.TrimSpace(schedule) == "" {
		return nil
	}

	c := cron.New()
	_, err := c.AddFunc(schedule, func() {
		if _, err := s.RunNow(ctx); err != nil {
			s.logger.Error("scheduled backup failed", zap.Error(err))
		}
	})
	if err != nil {
		return fmt.Errorf("backup schedule %q: %w", schedule, err)
	}
	c.Start()

	s.mu.Lock()
	s.cronSched = c
	s.mu.Unlock()
	s.logger.Info("backups scheduled", zap.String("schedule", schedule), zap.String("dir", s.dir))
	return nil
}

// Stop halts the scheduler. Runs in progress are not interrupted.
func (s *BackupService) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cronSched != nil {
		s.cronSched.Stop()
		s.cronSched = nil
	}
}

// WaitRunning blocks until a running backup finishes or ctx is cancelled.
// Used for graceful shutdown.
func (s *BackupService) WaitRunning(ctx context.Context) {
	s.jobs.wait(ctx)
}

// RunNow exports every mindmap and returns the written paths. It returns
// ErrJobRunning if a backup is already running.
func (s *BackupService) RunNow(ctx context.Context) ([]string, error) {
	release, ok := s.jobs.acquire(backupJobID)
	if !ok {
		return nil, fmt.Errorf("backup: %w", ErrJobRunning)
	}
	defer release()

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return nil, fmt.Errorf("create backup dir: %w", err)
	}
	list, err := s.mindmaps.ListMindmaps()
	if err != nil {
		return nil, err
	}

	stamp := s.now().UTC().Format(backupStampLayout)
	var written []string
	for _, m := range list {
		if err := ctx.Err(); err != nil {
			return written, err
		}
		f, err := s.mindmaps.ExportFlow(m.ID)
		if err != nil {
			return written, fmt.Errorf("export %s: %w", m.ID, err)
		}
		path := filepath.Join(s.dir, m.ID+"-"+stamp+".json")
		if err := flow.WriteFile(path, f); err != nil {
			return written, err
		}
		written = append(written, path)
		if err := s.prune(m.ID); err != nil {
			s.logger.Warn("prune backups", zap.String("mindmap", m.ID), zap.Error(err))
		}
	}

	s.logger.Info("backup complete", zap.Int("mindmaps", len(written)))
	s.emitter.Emit(ctx, "backup:completed", written)
	return written, nil
}

// prune deletes the oldest backups of one mindmap beyond s.keep. The
// timestamp suffix sorts lexically in time order.
func (s *BackupService) prune(mindmapID string) error {
	if s.keep <= 0 {
		return nil
	}
	matches, err := filepath.Glob(filepath.Join(s.dir, mindmapID+"-*.json"))
	if err != nil {
		return err
	}
	prefix := mindmapID + "-"
	var own []string
	for _, p := range matches {
		stamp := strings.TrimSuffix(strings.TrimPrefix(filepath.Base(p), prefix), ".json")
		if _, err := time.Parse(backupStampLayout, stamp); err == nil {
			own = append(own, p)
		}
	}
	if len(own) <= s.keep {
		return nil
	}
	sort.Strings(own)
	for _, p := range own[:len(own)-s.keep] {
		if err := os.Remove(p); err != nil {
			return err
		}
	}
	return nil
}
