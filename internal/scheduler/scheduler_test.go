// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package scheduler

import (
	"context"
	"io"
	"log/slog"
	"testing"
)

type fakePurger struct {
	calls int
}

func (f *fakePurger) PurgeExpired(_ context.Context) (int64, error) {
	f.calls++
	return 3, nil
}

func TestSchedulerStartStop(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s := New(&fakePurger{}, logger)

	if err := s.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if got := len(s.cron.Entries()); got != 1 {
		t.Errorf("registered %d jobs, want 1", got)
	}
	s.Stop()
}

func TestRunPurge(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	p := &fakePurger{}
	s := New(p, logger)

	s.runPurge()
	if p.calls != 1 {
		t.Errorf("purger called %d times, want 1", p.calls)
	}
}
