package core

// scheduler.go runs background maintenance for the service.
//
// One loop handles two jobs on every tick:
//  1. Expire sessions idle longer than the configured TTL
//  2. Purge audit entries older than the retention period
//
// The loop is long-running and stops with its context. Failures are logged
// and never stop the loop.

import (
	"context"
	"log/slog"
	"time"
)

// StartSweeper runs Sweep and PurgeAudit every Session.SweepInterval until
// ctx is cancelled. It blocks; run it in its own goroutine.
func (s *Service) StartSweeper(ctx context.Context) {
	interval := s.cfg.Session.SweepInterval
	slog.Info("session sweeper started",
		"interval", interval,
		"ttl", s.cfg.Session.TTL,
		"audit_retention_days", s.cfg.Audit.RetentionDays,
	)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("session sweeper stopped")
			return
		case <-ticker.C:
			s.runMaintenance(ctx)
		}
	}
}

func (s *Service) runMaintenance(ctx context.Context) {
	start := time.Now()

	expired := s.Sweep(ctx)

	purged, err := s.PurgeAudit(ctx)
	if err != nil {
		slog.Error("audit purge failed", "error", err)
	}

	slog.Debug("maintenance completed",
		"sessions_expired", expired,
		"audit_purged", purged,
		"duration_ms", time.Since(start).Milliseconds(),
	)
}

// Sweep removes sessions idle for longer than Session.TTL and returns how
// many were removed.
func (s *Service) Sweep(ctx context.Context) int {
	cutoff := s.now().Add(-s.cfg.Session.TTL)

	s.mu.Lock()
	var expired []string
	for id, sess := range s.sessions {
		if sess.idleSince().Before(cutoff) {
			delete(s.sessions, id)
			expired = append(expired, id)
		}
	}
	s.mu.Unlock()

	for _, id := range expired {
		slog.Info("session expired", "session_id", id)
		s.record(ctx, newAuditEntry(ctx, id, ActionSessionExpired))
	}
	return len(expired)
}

// PurgeAudit drops audit entries older than Audit.RetentionDays.
func (s *Service) PurgeAudit(ctx context.Context) (int64, error) {
	cutoff := s.now().AddDate(0, 0, -s.cfg.Audit.RetentionDays)
	n, err := s.audit.Purge(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		slog.Info("purged audit entries", "entries_purged", n)
	}
	return n, nil
}
