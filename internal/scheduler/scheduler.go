package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"realestate-trade-map/internal/config"
	"realestate-trade-map/internal/metrics"
)

// jobTimeout bounds one refresh run, including cache warming.
const jobTimeout = 10 * time.Minute

// Datasets is the part of the dataset service the scheduler drives.
type Datasets interface {
	Refresh(ctx context.Context) error
	Warm(ctx context.Context) error
}

// ReindexFunc pushes the refreshed records to the search mirror.
type ReindexFunc func(ctx context.Context) (int, error)

// Status describes the last run.
type Status struct {
	Enabled   bool      `json:"enabled"`
	Running   bool      `json:"running"`
	CronSpec  string    `json:"cron_spec,omitempty"`
	LastRun   time.Time `json:"last_run,omitempty"`
	LastError string    `json:"last_error,omitempty"`
}

// Scheduler refreshes the dataset manifest on a daily schedule
type Scheduler struct {
	cron     *cron.Cron
	datasets Datasets
	reindex  ReindexFunc
	config   config.SchedulerConfig

	mu        sync.Mutex
	isRunning bool
	cronSpec  string
	lastRun   time.Time
	lastErr   error
}

// NewScheduler creates a new scheduler. reindex may be nil.
func NewScheduler(datasets Datasets, reindex ReindexFunc, cfg config.SchedulerConfig) *Scheduler {
	return &Scheduler{
		cron:     cron.New(),
		datasets: datasets,
		reindex:  reindex,
		config:   cfg,
	}
}

// Start starts the scheduler
func (s *Scheduler) Start() error {
	if !s.config.Enabled {
		log.Println("Scheduler: Daily refresh is disabled in configuration")
		return nil
	}

	cronSpec := parseDailyRunTime(s.config.DailyRunTime)

	_, err := s.cron.AddFunc(cronSpec, func() {
		log.Println("Scheduler: Starting daily refresh job...")
		if err := s.RunNow(context.Background()); err != nil {
			log.Printf("Scheduler: Daily refresh failed: %v", err)
		} else {
			log.Println("Scheduler: Daily refresh completed successfully")
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule refresh: %w", err)
	}

	s.cron.Start()

	s.mu.Lock()
	s.isRunning = true
	s.cronSpec = cronSpec
	s.mu.Unlock()

	log.Printf("Scheduler: Started with daily run at %s (cron: %s)", s.config.DailyRunTime, cronSpec)
	return nil
}

// Stop stops the scheduler and waits for a running job.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	running := s.isRunning
	s.isRunning = false
	s.mu.Unlock()

	if running {
		<-s.cron.Stop().Done()
		log.Println("Scheduler: Stopped")
	}
}

// RunNow refreshes the manifest, warms the cache for the active datasets and
// reindexes them when a search mirror is configured.
func (s *Scheduler) RunNow(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, jobTimeout)
	defer cancel()

	err := s.run(ctx)

	s.mu.Lock()
	s.lastRun = time.Now()
	s.lastErr = err
	s.mu.Unlock()

	if err != nil {
		metrics.ManifestRefreshes.WithLabelValues("error").Inc()
		return err
	}
	metrics.ManifestRefreshes.WithLabelValues("ok").Inc()
	return nil
}

func (s *Scheduler) run(ctx context.Context) error {
	if err := s.datasets.Refresh(ctx); err != nil {
		return err
	}
	if err := s.datasets.Warm(ctx); err != nil {
		return fmt.Errorf("failed to warm cache: %w", err)
	}
	if s.reindex != nil && s.config.Reindex {
		n, err := s.reindex(ctx)
		if err != nil {
			return fmt.Errorf("failed to reindex: %w", err)
		}
		log.Printf("Scheduler: Reindexed %d documents", n)
	}
	return nil
}

// Status returns the scheduler state and the outcome of the last run.
func (s *Scheduler) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := Status{
		Enabled:  s.config.Enabled,
		Running:  s.isRunning,
		CronSpec: s.cronSpec,
		LastRun:  s.lastRun,
	}
	if s.lastErr != nil {
		st.LastError = s.lastErr.Error()
	}
	return st
}

// parseDailyRunTime converts HH:MM format to cron specification
// Example: "04:00" -> "0 4 * * *"
func parseDailyRunTime(timeStr string) string {
	var hour, minute int
	n, _ := fmt.Sscanf(timeStr, "%d:%d", &hour, &minute)
	if n == 2 && hour >= 0 && hour < 24 && minute >= 0 && minute < 60 {
		return fmt.Sprintf("%d %d * * *", minute, hour)
	}

	log.Printf("Scheduler: Failed to parse time '%s', using default 04:00", timeStr)
	return "0 4 * * *"
}
