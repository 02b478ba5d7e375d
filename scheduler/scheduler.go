// Package scheduler runs the background jobs of the interactions API: catalog
// reloads on a cron expression and pruning of idle prescription sessions.
package scheduler

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/giygas/interactions-api/interfaces"
	"github.com/giygas/interactions-api/logging"
	"github.com/giygas/interactions-api/metrics"
)

// ErrEmptyCatalog is returned when a loader yields no drugs or no rules
var ErrEmptyCatalog = errors.New("catalog is empty")

// Compile-time checks
var (
	_ interfaces.Scheduler      = (*Scheduler)(nil)
	_ interfaces.ReloadReporter = (*Scheduler)(nil)
)

// Options configures the jobs. An empty ReloadCron disables periodic reloads;
// a zero SessionTTL disables pruning.
type Options struct {
	ReloadCron   string
	SessionTTL   time.Duration
	PruneEvery   time.Duration
	MonitorEvery time.Duration
}

// Scheduler handles catalog reloads and session pruning using dependency injection
type Scheduler struct {
	catalog   interfaces.CatalogReplacer
	loader    interfaces.CatalogLoader
	sessions  interfaces.SessionStore
	opts      Options
	scheduler *gocron.Scheduler

	reloading atomic.Bool
	mu        sync.RWMutex
	lastErr   error
}

// NewScheduler creates a new scheduler instance with injected dependencies.
// sessions may be nil when no session store is served.
func NewScheduler(catalog interfaces.CatalogReplacer, loader interfaces.CatalogLoader, sessions interfaces.SessionStore, opts Options) *Scheduler {
	if opts.PruneEvery <= 0 {
		opts.PruneEvery = time.Minute
	}
	if opts.MonitorEvery <= 0 {
		opts.MonitorEvery = time.Hour
	}

	s := gocron.NewScheduler(time.Local)
	s.SingletonModeAll()

	return &Scheduler{
		catalog:   catalog,
		loader:    loader,
		sessions:  sessions,
		opts:      opts,
		scheduler: s,
	}
}

// Start performs the initial catalog load, then schedules the jobs
func (s *Scheduler) Start() error {
	if err := s.Reload(); err != nil {
		logging.Error("Failed to perform initial catalog load", "error", err)
		return fmt.Errorf("initial catalog load failed: %w", err)
	}

	if s.opts.ReloadCron != "" {
		_, err := s.scheduler.Cron(s.opts.ReloadCron).Do(func() {
			if err := s.Reload(); err != nil {
				logging.Error("Failed to reload catalog, keeping previous version", "error", err)
			}
		})
		if err != nil {
			logging.Error("Failed to schedule catalog reloads", "error", err)
			return fmt.Errorf("failed to schedule catalog reloads: %w", err)
		}
	}

	if s.sessions != nil && s.opts.SessionTTL > 0 {
		_, err := s.scheduler.Every(s.opts.PruneEvery).WaitForSchedule().Do(s.pruneSessions)
		if err != nil {
			logging.Error("Failed to schedule session pruning", "error", err)
			return fmt.Errorf("failed to schedule session pruning: %w", err)
		}
	}

	_, err := s.scheduler.Every(s.opts.MonitorEvery).WaitForSchedule().Do(s.monitorCatalog)
	if err != nil {
		return fmt.Errorf("failed to schedule catalog monitoring: %w", err)
	}

	s.scheduler.StartAsync()
	logging.Info("Scheduler started",
		"catalog_source", s.loader.Source(),
		"reload_cron", s.opts.ReloadCron,
		"session_ttl", s.opts.SessionTTL.String())

	return nil
}

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

// Reload loads the catalog and swaps it in. On failure the current catalog stays
// in service. Concurrent calls are skipped.
func (s *Scheduler) Reload() error {
	if !s.reloading.CompareAndSwap(false, true) {
		logging.Info("Catalog reload already in progress, skipping...")
		return nil
	}
	defer s.reloading.Store(false)

	start := time.Now()
	drugs, rules, err := s.loader.Load()
	if err == nil && (len(drugs) == 0 || len(rules) == 0) {
		err = fmt.Errorf("%w: %d drugs, %d rules from %s", ErrEmptyCatalog, len(drugs), len(rules), s.loader.Source())
	}

	s.mu.Lock()
	s.lastErr = err
	s.mu.Unlock()

	if err != nil {
		metrics.CatalogReloadsTotal.WithLabelValues("failure").Inc()
		return fmt.Errorf("failed to load catalog from %s: %w", s.loader.Source(), err)
	}

	s.catalog.Replace(drugs, rules)
	metrics.CatalogReloadsTotal.WithLabelValues("success").Inc()
	metrics.RecordCatalog(len(drugs), len(rules))

	logging.Info("Catalog loaded",
		"source", s.loader.Source(),
		"duration", time.Since(start).String(),
		"drug_count", len(drugs),
		"rule_count", len(rules))

	return nil
}

// LastReloadError returns the error of the last reload, nil after a success
func (s *Scheduler) LastReloadError() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr
}

// IsReloading reports whether a reload is running
func (s *Scheduler) IsReloading() bool {
	return s.reloading.Load()
}

func (s *Scheduler) pruneSessions() {
	s.sessions.PruneIdle(s.opts.SessionTTL)
	metrics.SessionsActive.Set(float64(s.sessions.Len()))
}

// monitorCatalog warns when reloads keep failing
func (s *Scheduler) monitorCatalog() {
	if err := s.LastReloadError(); err != nil {
		logging.Warn("Catalog is stale, last reload failed",
			"last_loaded", s.catalog.LastLoaded().Format(time.RFC3339),
			"error", err)
	}
}
