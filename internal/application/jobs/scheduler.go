// Package jobs runs the periodic application housekeeping.
package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/rakesh-tirumalaparapu/zipp/internal/application/models"
	id "github.com/rakesh-tirumalaparapu/zipp/pkg/domain"
)

const refreshTimeout = 10 * time.Second

// StatusCounter is satisfied by the application stores.
type StatusCounter interface {
	CountByStatus(ctx context.Context, customerID *id.UserID) (models.StatusCounts, error)
}

// GaugeSink receives the refreshed counts.
type GaugeSink interface {
	SetStatusCounts(counts models.StatusCounts)
}

type Scheduler struct {
	cron     *cron.Cron
	counter  StatusCounter
	sink     GaugeSink
	schedule string
	logger   *slog.Logger
}

func NewScheduler(counter StatusCounter, sink GaugeSink, schedule string, logger *slog.Logger) *Scheduler {
	cronLogger := cron.PrintfLogger(slog.NewLogLogger(logger.Handler(), slog.LevelInfo))
	return &Scheduler{
		cron:     cron.New(cron.WithChain(cron.Recover(cronLogger))),
		counter:  counter,
		sink:     sink,
		schedule: schedule,
		logger:   logger,
	}
}

// Start refreshes once, registers the job and starts the cron loop.
func (s *Scheduler) Start() error {
	s.RefreshStatusGauge()
	if _, err := s.cron.AddFunc(s.schedule, s.RefreshStatusGauge); err != nil {
		return err
	}
	s.logger.Info("scheduled status gauge job", "schedule", s.schedule)
	s.cron.Start()
	return nil
}

// Stop returns a context that is done once running jobs finish.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

func (s *Scheduler) RefreshStatusGauge() {
	ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
	defer cancel()

	counts, err := s.counter.CountByStatus(ctx, nil)
	if err != nil {
		s.logger.ErrorContext(ctx, "status gauge refresh failed", "error", err)
		return
	}
	s.sink.SetStatusCounts(counts)
}
