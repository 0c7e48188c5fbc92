// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package scheduler runs the admin panel's periodic maintenance jobs.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Default schedules.
const (
	CleanupSchedule    = "*/10 * * * *"
	EventPruneSchedule = "@daily"
)

// DefaultEventRetention is how long audit events are kept.
const DefaultEventRetention = 30 * 24 * time.Hour

// Cleaner drops stale in-memory entries.
type Cleaner interface {
	Cleanup()
}

// EventPruner deletes audit events older than cutoff.
type EventPruner interface {
	DeleteEventsBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type job struct {
	name     string
	schedule string
	entryID  cron.EntryID
	run      func()
}

// JobInfo is the public view of a registered job.
type JobInfo struct {
	Name     string
	Schedule string
	LastRun  time.Time
	NextRun  time.Time
}

// Scheduler wraps a cron instance with named jobs.
type Scheduler struct {
	cron   *cron.Cron
	logger *slog.Logger

	mu   sync.RWMutex
	jobs map[string]*job
}

// New creates a scheduler. Panicking jobs are recovered and logged.
func New(logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		cron:   cron.New(cron.WithChain(cron.Recover(cron.DefaultLogger))),
		logger: logger,
		jobs:   make(map[string]*job),
	}
}

// AddJob registers fn under name on a standard cron schedule.
func (s *Scheduler) AddJob(name, schedule string, fn func()) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.jobs[name]; exists {
		return fmt.Errorf("job already registered: %s", name)
	}
	id, err := s.cron.AddFunc(schedule, fn)
	if err != nil {
		return fmt.Errorf("invalid cron expression %q: %w", schedule, err)
	}
	s.jobs[name] = &job{name: name, schedule: schedule, entryID: id, run: fn}
	s.logger.Debug("registered scheduled job", "name", name, "schedule", schedule)
	return nil
}

// AddCleanup runs c.Cleanup on CleanupSchedule.
func (s *Scheduler) AddCleanup(name string, c Cleaner) error {
	return s.AddJob(name, CleanupSchedule, c.Cleanup)
}

// AddEventPruning deletes events older than retention once a day.
func (s *Scheduler) AddEventPruning(p EventPruner, retention time.Duration) error {
	if retention <= 0 {
		retention = DefaultEventRetention
	}
	return s.AddJob("prune-events", EventPruneSchedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()

		n, err := p.DeleteEventsBefore(ctx, time.Now().Add(-retention))
		if err != nil {
			s.logger.Error("failed to prune events", "error", err)
			return
		}
		if n > 0 {
			s.logger.Info("pruned old events", "count", n)
		}
	})
}

// List returns all jobs sorted by name.
func (s *Scheduler) List() []JobInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]JobInfo, 0, len(s.jobs))
	for _, j := range s.jobs {
		entry := s.cron.Entry(j.entryID)
		out = append(out, JobInfo{
			Name:     j.name,
			Schedule: j.schedule,
			LastRun:  entry.Prev,
			NextRun:  entry.Next,
		})
	}
	sort.Slice(out, func(i, k int) bool { return out[i].Name < out[k].Name })
	return out
}

// TriggerNow runs a job synchronously.
func (s *Scheduler) TriggerNow(name string) error {
	s.mu.RLock()
	j, ok := s.jobs[name]
	s.mu.RUnlock()
	if !ok {
		return fmt.Errorf("job not found: %s", name)
	}
	s.logger.Info("manually triggering job", "name", name)
	j.run()
	return nil
}

// Start begins running jobs in the background.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("scheduler started", "jobs", len(s.cron.Entries()))
}

// Stop waits for running jobs to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info("scheduler stopped")
}
