package booking

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"
)

type sweepService struct {
	BookingService
	calls int
	err   error
}

func (s *sweepService) MarkOverdue(ctx context.Context) (int, error) {
	s.calls++
	return 3, s.err
}

func TestOverdueSchedulerStartStop(t *testing.T) {
	sched := NewOverdueScheduler(&sweepService{}, zap.NewNop())

	if err := sched.Start(); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	if got := len(sched.scheduler.Entries()); got != 1 {
		t.Errorf("scheduled %d jobs, want 1", got)
	}
	if err := sched.Stop(); err != nil {
		t.Errorf("Stop() error: %v", err)
	}
}

func TestOverdueSchedulerStopBeforeStart(t *testing.T) {
	sched := NewOverdueScheduler(&sweepService{}, zap.NewNop())
	if err := sched.Stop(); err != nil {
		t.Errorf("Stop() before Start() error: %v", err)
	}
}

func TestOverdueSweepInvokesService(t *testing.T) {
	svc := &sweepService{}
	sched := NewOverdueScheduler(svc, zap.NewNop())

	sched.sweep()
	if svc.calls != 1 {
		t.Errorf("MarkOverdue called %d times, want 1", svc.calls)
	}

	svc.err = errors.New("mongo down")
	sched.sweep()
	if svc.calls != 2 {
		t.Errorf("MarkOverdue called %d times, want 2", svc.calls)
	}
}
