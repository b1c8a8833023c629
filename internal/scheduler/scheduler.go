package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"email-catalog-go/internal/config"
	"email-catalog-go/internal/metrics"
	"email-catalog-go/internal/repository"
)

// StatsScheduler periodically refreshes the catalog size gauges from the
// database so /metrics reflects the stored totals.
type StatsScheduler struct {
	cron      *cron.Cron
	entryID   cron.EntryID
	config    *config.StatsConfig
	repo      *repository.Repository
	metrics   *metrics.Metrics
	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	isRunning bool
	lastRun   time.Time
	mu        sync.RWMutex
}

// NewStatsScheduler creates a new stats scheduler
func NewStatsScheduler(cfg *config.StatsConfig, repo *repository.Repository, m *metrics.Metrics) *StatsScheduler {
	ctx, cancel := context.WithCancel(context.Background())

	return &StatsScheduler{
		cron:    cron.New(cron.WithSeconds()),
		config:  cfg,
		repo:    repo,
		metrics: m,
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Start starts the scheduler
func (s *StatsScheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("stats scheduler is already running")
	}

	schedule := fmt.Sprintf("@every %ds", s.config.IntervalSeconds)

	entryID, err := s.cron.AddFunc(schedule, s.refresh)
	if err != nil {
		return fmt.Errorf("failed to add cron job: %w", err)
	}

	s.entryID = entryID
	s.cron.Start()
	s.isRunning = true

	// Populate the gauges immediately rather than waiting a full interval.
	go s.refresh()

	logrus.Infof("Stats scheduler started with interval: %d seconds", s.config.IntervalSeconds)
	return nil
}

// Stop stops the scheduler
func (s *StatsScheduler) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return fmt.Errorf("stats scheduler is not running")
	}

	ctx := s.cron.Stop()
	<-ctx.Done()
	s.cancel()
	s.isRunning = false

	logrus.Info("Stats scheduler stopped")
	return nil
}

// Wait blocks until any in-flight refresh completes
func (s *StatsScheduler) Wait() {
	s.wg.Wait()
}

// IsRunning reports whether the scheduler is active
func (s *StatsScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// LastRun returns the time of the last completed refresh
func (s *StatsScheduler) LastRun() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastRun
}

// RunOnce triggers a refresh outside the schedule
func (s *StatsScheduler) RunOnce() {
	s.refresh()
}

func (s *StatsScheduler) refresh() {
	s.wg.Add(1)
	defer s.wg.Done()

	ctx, cancel := context.WithTimeout(s.ctx, 10*time.Second)
	defer cancel()

	companies, err := s.repo.CountCompanies(ctx)
	if err != nil {
		logrus.Errorf("Failed to count companies: %v", err)
		return
	}
	emails, err := s.repo.CountEmails(ctx)
	if err != nil {
		logrus.Errorf("Failed to count emails: %v", err)
		return
	}

	s.metrics.CompaniesTotal.Set(float64(companies))
	s.metrics.EmailsTotal.Set(float64(emails))

	s.mu.Lock()
	s.lastRun = time.Now()
	s.mu.Unlock()
}
