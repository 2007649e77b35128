package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

// Scheduler runs the nightly maintenance job (approver-name repair) on a
// cron schedule in UTC.
type Scheduler struct {
	cron    *cron.Cron
	ctx     context.Context
	cancel  context.CancelFunc
	jobFunc func(ctx context.Context) error
}

func New() *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron:   cron.New(cron.WithLocation(time.UTC)),
		ctx:    ctx,
		cancel: cancel,
	}
}

// SetJob sets the function the schedule triggers.
func (s *Scheduler) SetJob(f func(ctx context.Context) error) {
	s.jobFunc = f
}

// Start registers the cron entry and starts the scheduler. spec uses the
// standard 5-field cron syntax.
func (s *Scheduler) Start(spec string) error {
	if s.jobFunc == nil {
		log.Println("scheduler: no job configured, nothing to schedule")
		return nil
	}
	_, err := s.cron.AddFunc(spec, func() {
		log.Printf("scheduler: triggered job (%s)", spec)
		if err := s.jobFunc(s.ctx); err != nil {
			log.Printf("scheduler: job failed: %v", err)
		}
	})
	if err != nil {
		return err
	}
	s.cron.Start()
	log.Printf("scheduler started with spec %q (UTC)", spec)
	return nil
}

func (s *Scheduler) Stop() {
	if s.cron != nil {
		ctx := s.cron.Stop()
		<-ctx.Done()
	}
	if s.cancel != nil {
		s.cancel()
	}
	log.Println("scheduler stopped")
}

func (s *Scheduler) IsRunning() bool {
	return s.cron != nil && len(s.cron.Entries()) > 0
}
