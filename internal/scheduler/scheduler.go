// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package scheduler runs periodic maintenance jobs.
package scheduler

import (
	"context"
	"log/slog"

	"github.com/robfig/cron/v3"
)

// Purger removes expired analytics data.
type Purger interface {
	PurgeExpired(ctx context.Context) (int64, error)
}

// Scheduler handles scheduled maintenance like analytics retention.
type Scheduler struct {
	cron   *cron.Cron
	purger Purger
	logger *slog.Logger
}

// New creates a new scheduler instance.
func New(purger Purger, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		cron:   cron.New(),
		purger: purger,
		logger: logger,
	}
}

// Start begins the scheduler with a nightly analytics purge job.
func (s *Scheduler) Start() error {
	// Run at 03:10 every day
	_, err := s.cron.AddFunc("10 3 * * *", s.runPurge)
	if err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info("scheduler started", "jobs", len(s.cron.Entries()))
	return nil
}

// Stop gracefully stops the scheduler.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("scheduler stopped")
}

func (s *Scheduler) runPurge() {
	n, err := s.purger.PurgeExpired(context.Background())
	if err != nil {
		s.logger.Error("scheduled analytics purge failed", "error", err)
		return
	}
	if n > 0 {
		s.logger.Info("scheduled analytics purge complete", "removed", n)
	}
}
