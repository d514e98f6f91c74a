package booking

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const overdueSchedule = "@every 15m"

// OverdueScheduler runs the overdue sweep on a cron schedule, relabelling
// active bookings past their end date.
type OverdueScheduler struct {
	service   BookingService
	logger    *zap.Logger
	scheduler *cron.Cron
}

func NewOverdueScheduler(service BookingService, logger *zap.Logger) *OverdueScheduler {
	return &OverdueScheduler{
		service: service,
		logger:  logger,
	}
}

func (s *OverdueScheduler) Start() error {
	s.scheduler = cron.New()
	if _, err := s.scheduler.AddFunc(overdueSchedule, s.sweep); err != nil {
		return err
	}
	s.scheduler.Start()
	return nil
}

// Stop halts the scheduler and waits for an in-flight sweep to finish.
func (s *OverdueScheduler) Stop() error {
	if s.scheduler != nil {
		<-s.scheduler.Stop().Done()
	}
	return nil
}

func (s *OverdueScheduler) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	n, err := s.service.MarkOverdue(ctx)
	if err != nil {
		s.logger.Error("overdue sweep failed", zap.Error(err))
		return
	}
	if n > 0 {
		s.logger.Info("marked overdue bookings", zap.Int("count", n))
	}
}
