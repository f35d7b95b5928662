package ingest

import (
	"context"
	"fmt"

	"papercut/config"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// SettingsLoader returns the current feed settings. It is called on every
// tick so edits to the settings file apply without a restart.
type SettingsLoader func() (config.FeedSettings, error)

// Scheduler runs the Runner periodically. Overlapping ticks are skipped.
type Scheduler struct {
	cron     *cron.Cron
	runner   *Runner
	settings SettingsLoader
	logger   *zap.Logger
}

func NewScheduler(runner *Runner, settings SettingsLoader, logger *zap.Logger) *Scheduler {
	cronLogger := cron.PrintfLogger(zap.NewStdLog(logger))
	return &Scheduler{
		cron:     cron.New(cron.WithChain(cron.SkipIfStillRunning(cronLogger))),
		runner:   runner,
		settings: settings,
		logger:   logger,
	}
}

// Start registers the job under spec (standard 5-field cron syntax) and
// starts the scheduler in its own goroutine.
func (s *Scheduler) Start(spec string) error {
	_, err := s.cron.AddFunc(spec, func() {
		if _, err := s.RunOnce(context.Background()); err != nil {
			s.logger.Error("scheduled feed run failed", zap.Error(err))
		}
	})
	if err != nil {
		return fmt.Errorf("failed to add cron job: %w", err)
	}

	s.cron.Start()
	s.logger.Info("feed scheduler started", zap.String("schedule", spec))
	return nil
}

// Stop stops the scheduler; the returned context is done once a running
// job has finished.
func (s *Scheduler) Stop() context.Context {
	ctx := s.cron.Stop()
	s.logger.Info("feed scheduler stopped")
	return ctx
}

// RunOnce loads the settings and runs the feed unless it is disabled.
func (s *Scheduler) RunOnce(ctx context.Context) (Summary, error) {
	settings, err := s.settings()
	if err != nil {
		return Summary{}, fmt.Errorf("failed to load feed settings: %w", err)
	}
	if !settings.Enabled {
		s.logger.Info("feed crawl disabled by config")
		return Summary{}, nil
	}
	return s.runner.Run(ctx, settings)
}
