package scheduler

import (
	"log/slog"

	"github.com/robfig/cron/v3"

	"ollamagate/internal/db"
)

// Scheduler runs the recurring maintenance jobs, currently only the daily
// usage-counter reset.
type Scheduler struct {
	db     db.Service
	c      *cron.Cron
	logger *slog.Logger
}

func NewScheduler(dbService db.Service, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		db:     dbService,
		c:      cron.New(),
		logger: logger.With("component", "scheduler"),
	}
}

func (s *Scheduler) Start() error {
	_, err := s.c.AddFunc("@daily", s.resetUsage)
	if err != nil {
		return err
	}
	s.c.Start()
	return nil
}

func (s *Scheduler) Stop() {
	s.c.Stop()
}

func (s *Scheduler) resetUsage() {
	s.logger.Info("Running daily job: resetting API key usage counts")
	if err := s.db.ResetAllAPIKeyUsage(); err != nil {
		s.logger.Error("Failed to reset API key usage", "error", err)
	}
}
